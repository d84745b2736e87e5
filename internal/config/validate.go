package config

import (
	"github.com/rotisserie/eris"
	"github.com/spf13/cast"
)

// ErrInvalid is wrapped by every validation failure
var ErrInvalid = eris.New("invalid configuration")

var nonNegativeKeys = []string{
	"detector.domain.unrecognized_penalty",
	"detector.domain.similarity_threshold",
	"detector.keyword.subject_weight",
	"detector.keyword.early_body_weight",
	"detector.keyword.late_body_weight",
	"detector.keyword.early_body_words",
	"detector.keyword.max_phrase_words",
	"detector.url.max_domains",
	"detector.url.unresolved_penalty",
	"detector.url.age.very_new_days",
	"detector.url.age.very_new_penalty",
	"detector.url.age.new_days",
	"detector.url.age.new_penalty",
	"detector.url.age.recent_days",
	"detector.url.age.recent_penalty",
	"detector.url.expiry.soon_days",
	"detector.url.expiry.soon_penalty",
	"detector.url.expiry.within_year_days",
	"detector.url.expiry.within_year_penalty",
	"detector.url.update.window_days",
	"detector.url.update.penalty",
	"detector.url.ip_penalty",
	"detector.url.http_penalty",
	"detector.url.malformed_penalty",
	"detector.url.max_length",
	"detector.url.length_penalty",
	"detector.url.at_sign_penalty",
	"detector.max_body_size",
	"risk.caps.domain",
	"risk.caps.url",
	"risk.caps.keyword",
	"risk.levels.very_high",
	"risk.levels.high",
	"risk.levels.medium",
	"risk.levels.low",
	"risk.phishing_cutoff",
	"whois.retry.max_attempts",
}

var durationKeys = []string{
	"server.timeout",
	"whois.timeout",
	"whois.retry.base_delay",
	"whois.retry.max_delay",
	"dns.timeout",
	"cache.ttl",
	"cache.cleanup_frequency",
}

var choices = map[string][]string{
	"server.filter_type":  {"postfix", "cli"},
	"cache.type":          {"memory", "sqlite", "mysql", "redis"},
	"dns.mode":            {"system", "direct"},
	"whois.retry.backoff": {"linear", "exponential"},
	"logging.level":       {"debug", "info", "warn", "error"},
}

// Validate checks every numeric knob, duration and enumerated setting.
// It runs once at startup; scoring never sees an invalid value.
func (c *Config) Validate() error {
	for _, key := range nonNegativeKeys {
		n, err := cast.ToIntE(c.v.Get(key))
		if err != nil {
			return eris.Wrapf(ErrInvalid, "%s must be an integer: %v", key, err)
		}
		if n < 0 {
			return eris.Wrapf(ErrInvalid, "%s must not be negative, got %d", key, n)
		}
	}

	if n := c.GetInt("detector.url.workers"); n < 1 {
		return eris.Wrapf(ErrInvalid, "detector.url.workers must be at least 1, got %d", n)
	}

	levels := []string{"risk.levels.very_high", "risk.levels.high", "risk.levels.medium", "risk.levels.low"}
	for i := 1; i < len(levels); i++ {
		if c.GetInt(levels[i-1]) <= c.GetInt(levels[i]) {
			return eris.Wrapf(ErrInvalid, "%s must be greater than %s", levels[i-1], levels[i])
		}
	}

	for _, key := range durationKeys {
		if _, err := c.GetDuration(key); err != nil {
			return eris.Wrap(ErrInvalid, err.Error())
		}
	}

	for key, allowed := range choices {
		if !contains(allowed, c.GetString(key)) {
			return eris.Wrapf(ErrInvalid, "%s must be one of %v, got %q", key, allowed, c.GetString(key))
		}
	}

	return nil
}

func contains(values []string, v string) bool {
	for _, candidate := range values {
		if candidate == v {
			return true
		}
	}
	return false
}
