// Package risk combines the detector outputs into a single RiskReport.
package risk

import (
	"github.com/mikey/phishing-detector/internal/core"
)

// Config holds the caps and thresholds of the aggregation.
// The phishing cutoff is independent of the risk-level boundaries.
type Config struct {
	DomainCap  int
	URLCap     int
	KeywordCap int

	VeryHighThreshold int
	HighThreshold     int
	MediumThreshold   int
	LowThreshold      int

	PhishingCutoff int
}

// DefaultConfig returns the default caps and thresholds
func DefaultConfig() Config {
	return Config{
		DomainCap:         15,
		URLCap:            6,
		KeywordCap:        15,
		VeryHighThreshold: 16,
		HighThreshold:     12,
		MediumThreshold:   8,
		LowThreshold:      4,
		PhishingCutoff:    8,
	}
}

// CautionSuffix is appended to a trusted domain message when the total score
// is above the medium threshold.
const CautionSuffix = " (Caution: this message scores as potential phishing despite the trusted sender domain)"

// Aggregator caps, sums and classifies detector scores
type Aggregator struct {
	cfg Config
}

// NewAggregator creates a new aggregator
func NewAggregator(cfg Config) *Aggregator {
	return &Aggregator{cfg: cfg}
}

// Aggregate builds a fresh RiskReport from the three detector results
func (a *Aggregator) Aggregate(domain core.DomainResult, keywords core.KeywordResult, urls core.URLResult) *core.RiskReport {
	domainScore := capScore(domain.Score, a.cfg.DomainCap)
	urlScore := capScore(urls.Score, a.cfg.URLCap)
	keywordScore := capScore(keywords.Score, a.cfg.KeywordCap)
	total := domainScore + urlScore + keywordScore

	report := &core.RiskReport{
		Classification:    a.Classify(total),
		DomainMessage:     domain.DomainMessage,
		SimilarityMessage: domain.SimilarityMessage,
		KeywordFindings:   keywords.Findings,
		KeywordScore:      keywordScore,
		URLAssessments:    urls.Assessments,
		URLReasons:        urls.Reasons,
		URLScore:          urlScore,
		URLCount:          urls.URLCount,
		UniqueDomainCount: urls.UniqueDomainCount,
		DomainScore:       domainScore,
		TotalScore:        total,
		RiskLevel:         a.Level(total),
	}

	if domain.Trusted && total > a.cfg.MediumThreshold {
		report.DomainMessage += CautionSuffix
	}

	return report
}

// Level maps a total score to a risk level, highest band first
func (a *Aggregator) Level(total int) core.RiskLevel {
	switch {
	case total >= a.cfg.VeryHighThreshold:
		return core.RiskVeryHigh
	case total >= a.cfg.HighThreshold:
		return core.RiskHigh
	case total >= a.cfg.MediumThreshold:
		return core.RiskMedium
	case total >= a.cfg.LowThreshold:
		return core.RiskLow
	default:
		return core.RiskVeryLow
	}
}

// Classify returns PHISHING when total exceeds the cutoff
func (a *Aggregator) Classify(total int) core.Classification {
	if total > a.cfg.PhishingCutoff {
		return core.ClassificationPhishing
	}
	return core.ClassificationSafe
}

func capScore(score, ceiling int) int {
	return min(max(score, 0), ceiling)
}
