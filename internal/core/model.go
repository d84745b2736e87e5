package core

import (
	"time"
)

// Email represents an email message
type Email struct {
	From    string
	To      []string
	Subject string
	Body    string
	Headers map[string][]string
}

// Location identifies where in a message a keyword was found
type Location string

const (
	LocationSubject   Location = "SUBJECT"
	LocationEarlyBody Location = "EARLY_BODY"
	LocationLateBody  Location = "LATE_BODY"
)

// Finding is a single suspicious keyword hit
type Finding struct {
	Location Location
	Keyword  string
}

// URLAssessment holds the score and reasons for the representative URL of one domain
type URLAssessment struct {
	URL     string
	Domain  string
	Score   int
	Reasons []string
}

// Classification is the binary verdict for a message
type Classification string

const (
	ClassificationSafe     Classification = "SAFE"
	ClassificationPhishing Classification = "PHISHING"
)

// RiskLevel is the discrete banding of the aggregated score
type RiskLevel string

const (
	RiskVeryLow  RiskLevel = "VERY_LOW"
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskVeryHigh RiskLevel = "VERY_HIGH"
)

// DomainResult is the output of the sender domain trust check
type DomainResult struct {
	Domain            string
	Trusted           bool
	DomainMessage     string
	SimilarityMessage string
	Score             int
}

// KeywordResult is the output of the keyword scan
type KeywordResult struct {
	Findings []Finding
	Score    int
}

// URLResult is the output of the embedded URL analysis
type URLResult struct {
	Reasons           []string
	Score             int
	Assessments       []URLAssessment
	URLCount          int
	UniqueDomainCount int
}

// RiskReport is the complete outcome of scoring one message.
// Component scores are capped values; TotalScore is their sum.
type RiskReport struct {
	Classification    Classification
	DomainMessage     string
	SimilarityMessage string
	KeywordFindings   []Finding
	KeywordScore      int
	URLAssessments    []URLAssessment
	URLReasons        []string
	URLScore          int
	URLCount          int
	UniqueDomainCount int
	DomainScore       int
	TotalScore        int
	RiskLevel         RiskLevel
}

// IsPhishing reports whether the message was classified as phishing
func (r *RiskReport) IsPhishing() bool {
	return r.Classification == ClassificationPhishing
}

// DomainRecord is a normalized WHOIS registration record.
// All timestamps are UTC with the zone information discarded; nil means unknown.
type DomainRecord struct {
	Domain  string
	Created *time.Time
	Updated *time.Time
	Expires *time.Time
}

// WhoisCacheEntry is a cached WHOIS answer for a hostname
type WhoisCacheEntry struct {
	Host      string
	Record    DomainRecord
	LookedUp  time.Time
	ExpiresAt time.Time
}
