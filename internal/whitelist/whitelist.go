package whitelist

import (
	"sort"
	"strings"

	"go.uber.org/zap"
)

// Checker holds the trusted sender domains: the safe-domain corpus unioned with
// public webmail providers. Entries are stored in "@domain" form and never
// change after construction.
type Checker struct {
	domains map[string]struct{}
	sorted  []string
	logger  *zap.Logger
}

// NewChecker creates a new trusted domain checker
func NewChecker(safeDomains, freeDomains []string, logger *zap.Logger) *Checker {
	domains := make(map[string]struct{}, len(safeDomains)+len(freeDomains))
	for _, list := range [][]string{safeDomains, freeDomains} {
		for _, domain := range list {
			if normalized := Normalize(domain); normalized != "" {
				domains[normalized] = struct{}{}
			}
		}
	}

	sorted := make([]string, 0, len(domains))
	for domain := range domains {
		sorted = append(sorted, domain)
	}
	sort.Strings(sorted)

	if logger != nil {
		logger.Info("Initialized trusted domain checker",
			zap.Int("safe_domains", len(safeDomains)),
			zap.Int("free_domains", len(freeDomains)),
			zap.Int("unique_domains", len(sorted)))
	}

	return &Checker{
		domains: domains,
		sorted:  sorted,
		logger:  logger,
	}
}

// Normalize lowercases a domain and gives it the leading "@"
func Normalize(domain string) string {
	domain = strings.ToLower(strings.TrimSpace(domain))
	domain = strings.TrimPrefix(domain, "@")
	if domain == "" {
		return ""
	}
	return "@" + domain
}

// IsTrusted checks if the domain is in the trusted set
func (c *Checker) IsTrusted(domain string) bool {
	_, ok := c.domains[Normalize(domain)]
	if ok && c.logger != nil {
		c.logger.Debug("Domain is trusted", zap.String("domain", domain))
	}
	return ok
}

// Domains returns the trusted domains in lexical order
func (c *Checker) Domains() []string {
	return c.sorted
}

// Len returns the number of trusted domains
func (c *Checker) Len() int {
	return len(c.sorted)
}
