package config

import (
	"time"

	"github.com/mikey/phishing-detector/internal/detector"
	"github.com/mikey/phishing-detector/internal/retry"
	"github.com/mikey/phishing-detector/internal/risk"
)

// ServerConfig represents the Postfix content filter configuration
type ServerConfig struct {
	FilterType         string
	ListenAddress      string
	BlockPhishing      bool
	StatusHeader       string
	ScoreHeader        string
	LevelHeader        string
	ReasonHeader       string
	AssessmentIDHeader string
	PostfixAddress     string
	PostfixPort        int
	PostfixEnabled     bool
	ModifySubject      bool
	SubjectPrefix      string
	Timeout            time.Duration
}

// MetricsConfig represents the Prometheus endpoint configuration
type MetricsConfig struct {
	Enabled       bool
	ListenAddress string
	Path          string
}

// WhoisConfig represents the WHOIS client configuration
type WhoisConfig struct {
	Timeout time.Duration
	Retry   retry.Policy
}

// CacheConfig represents the WHOIS cache configuration
type CacheConfig struct {
	Type             string
	Enabled          bool
	TTL              time.Duration
	CleanupFrequency time.Duration
	SQLitePath       string
	MySQLDSN         string
	RedisAddress     string
	RedisPassword    string
	RedisDB          int
}

// DNSConfig represents the resolver configuration
type DNSConfig struct {
	Mode    string
	Servers []string
	Timeout time.Duration
}

// SourcesConfig lists where keywords and trusted domains are loaded from.
// Empty lists fall back to the built-in defaults.
type SourcesConfig struct {
	Keywords         []string
	SafeDomains      []string
	FreeEmailDomains []string
	MaxPhraseWords   int
}

// ReportConfig represents the email report configuration
type ReportConfig struct {
	Enabled      bool
	SMTPAddress  string
	From         string
	To           []string
	Username     string
	Password     string
	OnlyPhishing bool
}

// GetServer returns the Postfix filter configuration
func (c *Config) GetServer() ServerConfig {
	timeout, _ := c.GetDuration("server.timeout")
	return ServerConfig{
		FilterType:         c.GetString("server.filter_type"),
		ListenAddress:      c.GetString("server.listen_address"),
		BlockPhishing:      c.GetBool("server.block_phishing"),
		StatusHeader:       c.GetString("server.headers.status"),
		ScoreHeader:        c.GetString("server.headers.score"),
		LevelHeader:        c.GetString("server.headers.level"),
		ReasonHeader:       c.GetString("server.headers.reason"),
		AssessmentIDHeader: c.GetString("server.headers.assessment_id"),
		PostfixAddress:     c.GetString("server.postfix.address"),
		PostfixPort:        c.GetInt("server.postfix.port"),
		PostfixEnabled:     c.GetBool("server.postfix.enabled"),
		ModifySubject:      c.GetBool("server.modify_subject"),
		SubjectPrefix:      c.GetString("server.subject_prefix"),
		Timeout:            timeout,
	}
}

// GetMetrics returns the metrics endpoint configuration
func (c *Config) GetMetrics() MetricsConfig {
	return MetricsConfig{
		Enabled:       c.GetBool("metrics.enabled"),
		ListenAddress: c.GetString("metrics.listen_address"),
		Path:          c.GetString("metrics.path"),
	}
}

// GetDomainDetector returns the sender domain scoring knobs
func (c *Config) GetDomainDetector() detector.DomainConfig {
	return detector.DomainConfig{
		UnrecognizedPenalty: c.GetInt("detector.domain.unrecognized_penalty"),
		SimilarityThreshold: c.GetInt("detector.domain.similarity_threshold"),
	}
}

// GetKeywordDetector returns the keyword scoring knobs
func (c *Config) GetKeywordDetector() detector.KeywordConfig {
	return detector.KeywordConfig{
		SubjectWeight:   c.GetInt("detector.keyword.subject_weight"),
		EarlyBodyWeight: c.GetInt("detector.keyword.early_body_weight"),
		LateBodyWeight:  c.GetInt("detector.keyword.late_body_weight"),
		EarlyBodyWords:  c.GetInt("detector.keyword.early_body_words"),
	}
}

// GetURLDetector returns the URL scoring knobs
func (c *Config) GetURLDetector() detector.URLConfig {
	return detector.URLConfig{
		MaxDomains:              c.GetInt("detector.url.max_domains"),
		Workers:                 c.GetInt("detector.url.workers"),
		UnresolvedPenalty:       c.GetInt("detector.url.unresolved_penalty"),
		AgeVeryNewDays:          c.GetInt("detector.url.age.very_new_days"),
		AgeVeryNewPenalty:       c.GetInt("detector.url.age.very_new_penalty"),
		AgeNewDays:              c.GetInt("detector.url.age.new_days"),
		AgeNewPenalty:           c.GetInt("detector.url.age.new_penalty"),
		AgeRecentDays:           c.GetInt("detector.url.age.recent_days"),
		AgeRecentPenalty:        c.GetInt("detector.url.age.recent_penalty"),
		ExpirySoonDays:          c.GetInt("detector.url.expiry.soon_days"),
		ExpirySoonPenalty:       c.GetInt("detector.url.expiry.soon_penalty"),
		ExpiryWithinYearDays:    c.GetInt("detector.url.expiry.within_year_days"),
		ExpiryWithinYearPenalty: c.GetInt("detector.url.expiry.within_year_penalty"),
		UpdateWindowDays:        c.GetInt("detector.url.update.window_days"),
		UpdatePenalty:           c.GetInt("detector.url.update.penalty"),
		IPPenalty:               c.GetInt("detector.url.ip_penalty"),
		HTTPPenalty:             c.GetInt("detector.url.http_penalty"),
		MalformedPenalty:        c.GetInt("detector.url.malformed_penalty"),
		MaxLength:               c.GetInt("detector.url.max_length"),
		LengthPenalty:           c.GetInt("detector.url.length_penalty"),
		AtSignPenalty:           c.GetInt("detector.url.at_sign_penalty"),
	}
}

// GetRisk returns the aggregation caps and thresholds
func (c *Config) GetRisk() risk.Config {
	return risk.Config{
		DomainCap:         c.GetInt("risk.caps.domain"),
		URLCap:            c.GetInt("risk.caps.url"),
		KeywordCap:        c.GetInt("risk.caps.keyword"),
		VeryHighThreshold: c.GetInt("risk.levels.very_high"),
		HighThreshold:     c.GetInt("risk.levels.high"),
		MediumThreshold:   c.GetInt("risk.levels.medium"),
		LowThreshold:      c.GetInt("risk.levels.low"),
		PhishingCutoff:    c.GetInt("risk.phishing_cutoff"),
	}
}

// GetWhois returns the WHOIS client configuration
func (c *Config) GetWhois() WhoisConfig {
	timeout, _ := c.GetDuration("whois.timeout")
	base, _ := c.GetDuration("whois.retry.base_delay")
	maxDelay, _ := c.GetDuration("whois.retry.max_delay")

	backoff := retry.Linear(base)
	if c.GetString("whois.retry.backoff") == "exponential" {
		backoff = retry.Exponential(base, maxDelay)
	}

	return WhoisConfig{
		Timeout: timeout,
		Retry: retry.Policy{
			MaxAttempts: c.GetInt("whois.retry.max_attempts"),
			Backoff:     backoff,
		},
	}
}

// GetCache returns the WHOIS cache configuration
func (c *Config) GetCache() CacheConfig {
	ttl, _ := c.GetDuration("cache.ttl")
	cleanup, _ := c.GetDuration("cache.cleanup_frequency")
	return CacheConfig{
		Type:             c.GetString("cache.type"),
		Enabled:          c.GetBool("cache.enabled"),
		TTL:              ttl,
		CleanupFrequency: cleanup,
		SQLitePath:       c.GetString("cache.sqlite_path"),
		MySQLDSN:         c.GetString("cache.mysql_dsn"),
		RedisAddress:     c.GetString("cache.redis.address"),
		RedisPassword:    c.GetString("cache.redis.password"),
		RedisDB:          c.GetInt("cache.redis.db"),
	}
}

// GetDNS returns the resolver configuration
func (c *Config) GetDNS() DNSConfig {
	timeout, _ := c.GetDuration("dns.timeout")
	return DNSConfig{
		Mode:    c.GetString("dns.mode"),
		Servers: c.GetStringSlice("dns.servers"),
		Timeout: timeout,
	}
}

// GetSources returns the keyword and domain source locations
func (c *Config) GetSources() SourcesConfig {
	return SourcesConfig{
		Keywords:         c.GetStringSlice("sources.keywords"),
		SafeDomains:      c.GetStringSlice("sources.safe_domains"),
		FreeEmailDomains: c.GetStringSlice("sources.free_email_domains"),
		MaxPhraseWords:   c.GetInt("detector.keyword.max_phrase_words"),
	}
}

// GetReport returns the email report configuration
func (c *Config) GetReport() ReportConfig {
	return ReportConfig{
		Enabled:      c.GetBool("report.enabled"),
		SMTPAddress:  c.GetString("report.smtp_address"),
		From:         c.GetString("report.from"),
		To:           c.GetStringSlice("report.to"),
		Username:     c.GetString("report.username"),
		Password:     c.GetString("report.password"),
		OnlyPhishing: c.GetBool("report.only_phishing"),
	}
}

// GetMaxBodySize returns the number of body bytes scored per message
func (c *Config) GetMaxBodySize() int {
	return c.GetInt("detector.max_body_size")
}
