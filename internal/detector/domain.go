package detector

import (
	"fmt"

	"github.com/mikey/phishing-detector/internal/core"
	"github.com/mikey/phishing-detector/internal/textdist"
	"github.com/mikey/phishing-detector/internal/whitelist"
	"go.uber.org/zap"
)

// DomainConfig holds the sender domain scoring knobs
type DomainConfig struct {
	UnrecognizedPenalty int
	SimilarityThreshold int
}

// DefaultDomainConfig returns the default sender domain scoring knobs
func DefaultDomainConfig() DomainConfig {
	return DomainConfig{
		UnrecognizedPenalty: 2,
		SimilarityThreshold: 4,
	}
}

const noSimilarDomains = "No similar domains found"

// DomainTrustChecker scores a sender by exact membership in the trusted set and
// by edit distance to its entries.
type DomainTrustChecker struct {
	trusted *whitelist.Checker
	cfg     DomainConfig
	logger  *zap.Logger
}

// NewDomainTrustChecker creates a new sender domain checker
func NewDomainTrustChecker(trusted *whitelist.Checker, cfg DomainConfig, logger *zap.Logger) *DomainTrustChecker {
	return &DomainTrustChecker{
		trusted: trusted,
		cfg:     cfg,
		logger:  logger,
	}
}

// Check scores the sender field of a message.
//
// A sender with no extractable address is treated as an unrecognized domain:
// it takes the base penalty but has nothing to compare for similarity.
// Every trusted entry within the threshold adds its distance to the score; the
// message names the closest one (first in lexical order on ties).
func (c *DomainTrustChecker) Check(sender string) core.DomainResult {
	address, err := ExtractAddress(sender)
	if err != nil {
		c.logger.Debug("Could not extract sender address", zap.Error(err))
		return core.DomainResult{
			DomainMessage:     "Warning: could not determine the sender domain",
			SimilarityMessage: noSimilarDomains,
			Score:             c.cfg.UnrecognizedPenalty,
		}
	}

	domain := DomainOf(address)
	if c.trusted.IsTrusted(domain) {
		return core.DomainResult{
			Domain:            domain,
			Trusted:           true,
			DomainMessage:     fmt.Sprintf("%s is a safe domain", domain),
			SimilarityMessage: noSimilarDomains,
		}
	}

	result := core.DomainResult{
		Domain:            domain,
		DomainMessage:     fmt.Sprintf("Warning: %s is an unrecognized domain", domain),
		SimilarityMessage: noSimilarDomains,
		Score:             c.cfg.UnrecognizedPenalty,
	}

	best, bestDistance := "", -1
	for _, safe := range c.trusted.Domains() {
		distance := textdist.Levenshtein(domain, safe)
		if distance > c.cfg.SimilarityThreshold {
			continue
		}
		if distance == 0 {
			// an exact match must have been caught by IsTrusted
			c.logger.Error("Trusted domain set is inconsistent",
				zap.String("domain", domain),
				zap.String("entry", safe))
			continue
		}
		result.Score += distance
		if bestDistance < 0 || distance < bestDistance {
			best, bestDistance = safe, distance
		}
	}

	if bestDistance > 0 {
		result.SimilarityMessage = fmt.Sprintf(
			"Warning: %s is similar to safe domain %s (distance %d)", domain, best, bestDistance)
	}

	return result
}
