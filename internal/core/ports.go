package core

import (
	"context"
	"time"
)

// WhoisClient looks up domain registration data
type WhoisClient interface {
	// Lookup returns the normalized registration record for a hostname
	Lookup(ctx context.Context, host string) (*DomainRecord, error)
}

// Resolver checks whether a hostname resolves in DNS
type Resolver interface {
	// Resolve returns nil when the host has at least one address
	Resolve(ctx context.Context, host string) error
}

// WhoisCache defines the interface for caching WHOIS lookups
type WhoisCache interface {
	// Get retrieves a cached entry for a host
	Get(ctx context.Context, host string) (*WhoisCacheEntry, error)

	// Set stores a cache entry
	Set(ctx context.Context, entry *WhoisCacheEntry) error

	// Delete removes a cache entry
	Delete(ctx context.Context, host string) error

	// Cleanup removes expired entries
	Cleanup(ctx context.Context) error
}

// DomainChecker scores the sender of a message
type DomainChecker interface {
	Check(sender string) DomainResult
}

// KeywordDetector scores suspicious words in a message
type KeywordDetector interface {
	Score(subject, body string) KeywordResult
}

// URLAnalyzer scores the links embedded in a message body
type URLAnalyzer interface {
	Analyze(ctx context.Context, body string) URLResult
}

// Aggregator combines detector outputs into a report
type Aggregator interface {
	Aggregate(domain DomainResult, keywords KeywordResult, urls URLResult) *RiskReport
}

// AssessmentObserver is notified of every finished assessment
type AssessmentObserver interface {
	ObserveAssessment(report *RiskReport, elapsed time.Duration)
}
