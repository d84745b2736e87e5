package detector

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/mikey/phishing-detector/internal/core"
	"go.uber.org/zap"
	"golang.org/x/net/idna"
	"golang.org/x/sync/errgroup"
)

// NoURLsReason is the single reason reported for a body without links
const NoURLsReason = "No URLs found in the message body"

// URLConfig holds the URL scoring knobs
type URLConfig struct {
	MaxDomains int
	Workers    int

	UnresolvedPenalty int

	AgeVeryNewDays    int
	AgeVeryNewPenalty int
	AgeNewDays        int
	AgeNewPenalty     int
	AgeRecentDays     int
	AgeRecentPenalty  int

	ExpirySoonDays          int
	ExpirySoonPenalty       int
	ExpiryWithinYearDays    int
	ExpiryWithinYearPenalty int

	UpdateWindowDays int
	UpdatePenalty    int

	IPPenalty        int
	HTTPPenalty      int
	MalformedPenalty int
	MaxLength        int
	LengthPenalty    int
	AtSignPenalty    int
}

// DefaultURLConfig returns the default URL scoring knobs
func DefaultURLConfig() URLConfig {
	return URLConfig{
		MaxDomains:              6,
		Workers:                 6,
		UnresolvedPenalty:       3,
		AgeVeryNewDays:          30,
		AgeVeryNewPenalty:       3,
		AgeNewDays:              121,
		AgeNewPenalty:           2,
		AgeRecentDays:           366,
		AgeRecentPenalty:        1,
		ExpirySoonDays:          180,
		ExpirySoonPenalty:       2,
		ExpiryWithinYearDays:    365,
		ExpiryWithinYearPenalty: 1,
		UpdateWindowDays:        365,
		UpdatePenalty:           1,
		IPPenalty:               2,
		HTTPPenalty:             1,
		MalformedPenalty:        2,
		MaxLength:               75,
		LengthPenalty:           1,
		AtSignPenalty:           2,
	}
}

// Clock supplies the current time for WHOIS date arithmetic
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// URLRiskAnalyzer scores the links in a message body
type URLRiskAnalyzer struct {
	cfg      URLConfig
	resolver core.Resolver
	whois    core.WhoisClient
	clock    Clock
	logger   *zap.Logger
}

// NewURLRiskAnalyzer creates a new URL analyzer. A nil clock uses wall time.
func NewURLRiskAnalyzer(cfg URLConfig, resolver core.Resolver, whois core.WhoisClient, clock Clock, logger *zap.Logger) *URLRiskAnalyzer {
	if clock == nil {
		clock = systemClock{}
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	return &URLRiskAnalyzer{
		cfg:      cfg,
		resolver: resolver,
		whois:    whois,
		clock:    clock,
		logger:   logger,
	}
}

// Analyze extracts the URLs of body, keeps the longest URL per domain and
// assesses the first MaxDomains domains concurrently. Assessments and reasons
// are in first-seen domain order.
func (a *URLRiskAnalyzer) Analyze(ctx context.Context, body string) core.URLResult {
	urls := ExtractURLs(body)
	if len(urls) == 0 {
		return core.URLResult{Reasons: []string{NoURLsReason}}
	}

	domains, longest := groupByDomain(urls)
	result := core.URLResult{
		URLCount:          len(urls),
		UniqueDomainCount: len(domains),
	}

	selected := domains
	if len(selected) > a.cfg.MaxDomains {
		selected = selected[:max(a.cfg.MaxDomains, 0)]
	}

	assessments := make([]core.URLAssessment, len(selected))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(a.cfg.Workers)
	for i, domain := range selected {
		i, domain := i, domain
		g.Go(func() error {
			assessments[i] = a.assess(gctx, domain, longest[domain])
			return nil
		})
	}
	_ = g.Wait()

	result.Assessments = assessments
	for _, assessment := range assessments {
		result.Score += assessment.Score
		result.Reasons = append(result.Reasons, assessment.Reasons...)
	}

	if skipped := len(domains) - len(selected); skipped > 0 {
		result.Reasons = append(result.Reasons, fmt.Sprintf(
			"Only the first %d of %d domains were analyzed; %d were skipped", len(selected), len(domains), skipped))
	}

	return result
}

// assess runs the per-domain checks on the representative URL of a domain.
func (a *URLRiskAnalyzer) assess(ctx context.Context, domain, rawURL string) core.URLAssessment {
	assessment := core.URLAssessment{URL: rawURL, Domain: domain}
	add := func(penalty int, reason string) {
		assessment.Score += penalty
		assessment.Reasons = append(assessment.Reasons, reason)
	}

	host := hostOnly(domain)
	isIP := IsIPHost(host)

	if !isIP && !a.resolvable(ctx, host) {
		add(a.cfg.UnresolvedPenalty, fmt.Sprintf(
			"Domain %s could not be resolved, which is a strong indicator of a suspicious URL", domain))
		return assessment
	}

	if isIP {
		add(0, fmt.Sprintf("Host %s is an IP address; no WHOIS record to check", domain))
	} else {
		a.checkReputation(ctx, host, add)
	}

	if isIP {
		add(a.cfg.IPPenalty, "URL uses an IP address instead of a domain name, which is often used to obscure the destination")
	} else {
		add(0, "URL does not use an IP address")
	}

	// the scheme compares case-insensitively
	switch scheme := strings.ToLower(rawURL[:min(len(rawURL), len("https://"))]); {
	case scheme == "https://":
		add(0, "URL uses HTTPS")
	case strings.HasPrefix(scheme, "http://"):
		add(a.cfg.HTTPPenalty, "URL uses HTTP; information sent to the site is not encrypted")
	default:
		add(a.cfg.MalformedPenalty, "URL does not start with a well-formed http:// or https:// scheme")
	}

	if n := len(rawURL); n > a.cfg.MaxLength {
		add(a.cfg.LengthPenalty, fmt.Sprintf("URL is unusually long (%d characters)", n))
	} else {
		add(0, fmt.Sprintf("URL length is normal (%d characters)", n))
	}

	if strings.Contains(rawURL, "@") {
		add(a.cfg.AtSignPenalty, "URL contains an '@' symbol, which can hide the real destination")
	} else {
		add(0, "URL does not contain an '@' symbol")
	}

	return assessment
}

func (a *URLRiskAnalyzer) resolvable(ctx context.Context, host string) bool {
	ascii, err := normalizeHost(host)
	if err != nil {
		a.logger.Debug("Invalid hostname", zap.String("host", host), zap.Error(err))
		return false
	}
	if err := a.resolver.Resolve(ctx, ascii); err != nil {
		a.logger.Debug("Hostname did not resolve", zap.String("host", ascii), zap.Error(err))
		return false
	}
	return true
}

// checkReputation scores the WHOIS registration dates of host. A failed
// lookup is logged and scores nothing.
func (a *URLRiskAnalyzer) checkReputation(ctx context.Context, host string, add func(int, string)) {
	ascii, _ := normalizeHost(host)
	record, err := a.whois.Lookup(ctx, ascii)
	if err != nil {
		a.logger.Warn("WHOIS lookup failed", zap.String("host", ascii), zap.Error(err))
		add(0, fmt.Sprintf("WHOIS lookup for %s failed; registration dates were not checked", host))
		return
	}

	now := a.clock.Now().UTC()

	if record.Created != nil {
		age := daysBetween(*record.Created, now)
		switch {
		case age < a.cfg.AgeVeryNewDays:
			add(a.cfg.AgeVeryNewPenalty, fmt.Sprintf(
				"Domain is very new (%d days old), which is often a sign of a suspicious domain", age))
		case age < a.cfg.AgeNewDays:
			add(a.cfg.AgeNewPenalty, fmt.Sprintf(
				"Domain is relatively new (%d days old), which can be a sign of a suspicious domain", age))
		case age < a.cfg.AgeRecentDays:
			add(a.cfg.AgeRecentPenalty, fmt.Sprintf(
				"Domain is less than a year old (%d days), which may warrant caution", age))
		default:
			add(0, "Domain is older than a year, which is generally a good sign")
		}
	} else {
		add(0, "WHOIS record has no creation date")
	}

	if record.Expires != nil {
		left := daysBetween(now, *record.Expires)
		switch {
		case left < a.cfg.ExpirySoonDays:
			add(a.cfg.ExpirySoonPenalty, fmt.Sprintf(
				"Domain expires in %d days, which is a sign of a short-lived domain", left))
		case left < a.cfg.ExpiryWithinYearDays:
			add(a.cfg.ExpiryWithinYearPenalty, fmt.Sprintf(
				"Domain expires within a year (%d days); phishing domains are rarely renewed for longer", left))
		default:
			add(0, "Domain expiry date is more than a year away")
		}
	} else {
		add(0, "WHOIS record has no expiry date")
	}

	switch {
	case record.Updated == nil:
		add(0, "WHOIS record has no update date")
	case record.Expires == nil:
		add(0, "Domain update date cannot be compared with a missing expiry date")
	default:
		span := daysBetween(*record.Updated, *record.Expires)
		if span <= a.cfg.UpdateWindowDays {
			add(a.cfg.UpdatePenalty, fmt.Sprintf(
				"Domain was last updated %d days ago and that update extends its lifespan by only %d days",
				daysBetween(*record.Updated, now), span))
		} else {
			add(0, fmt.Sprintf("Domain's last update extends its lifespan by %d days", span))
		}
	}
}

// daysBetween returns whole days from a to b, rounded down.
func daysBetween(a, b time.Time) int {
	return int(math.Floor(b.Sub(a).Hours() / 24))
}

// normalizeHost lowercases a hostname and converts it to its ASCII form.
func normalizeHost(host string) (string, error) {
	host = strings.TrimSuffix(strings.ToLower(host), ".")
	return idna.Lookup.ToASCII(host)
}
