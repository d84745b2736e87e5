package config

import (
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New loads configuration from config.yaml, a .env file and PHISH_*
// environment variables, in increasing order of precedence, and validates it.
func New() (*Config, error) {
	// a missing .env file is fine
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/phishing-detector/")
	v.AddConfigPath("$HOME/.phishing-detector")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	setDefaults(v)

	v.AutomaticEnv()
	v.SetEnvPrefix("PHISH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "failed to read config file")
		}
	}

	cfg := &Config{v: v}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewFromFile loads configuration from an explicit file path
func NewFromFile(path string) (*Config, error) {
	v := NewEmptyViper()
	v.SetConfigFile(path)
	v.AutomaticEnv()
	v.SetEnvPrefix("PHISH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := v.ReadInConfig(); err != nil {
		return nil, eris.Wrapf(err, "failed to read config file %s", path)
	}

	cfg := &Config{v: v}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.filter_type", "postfix")
	v.SetDefault("server.listen_address", "0.0.0.0:10025")
	v.SetDefault("server.block_phishing", false)
	v.SetDefault("server.headers.status", "X-Phishing-Status")
	v.SetDefault("server.headers.score", "X-Phishing-Score")
	v.SetDefault("server.headers.level", "X-Phishing-Level")
	v.SetDefault("server.headers.reason", "X-Phishing-Reason")
	v.SetDefault("server.headers.assessment_id", "X-Phishing-Assessment-ID")
	v.SetDefault("server.postfix.address", "127.0.0.1")
	v.SetDefault("server.postfix.port", 10026)
	v.SetDefault("server.postfix.enabled", true)
	v.SetDefault("server.modify_subject", false)
	v.SetDefault("server.subject_prefix", "[PHISHING] ")
	v.SetDefault("server.timeout", "60s")

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.listen_address", "127.0.0.1:9464")
	v.SetDefault("metrics.path", "/metrics")

	// Sender domain defaults
	v.SetDefault("detector.domain.unrecognized_penalty", 2)
	v.SetDefault("detector.domain.similarity_threshold", 4)

	// Keyword defaults
	v.SetDefault("detector.keyword.subject_weight", 3)
	v.SetDefault("detector.keyword.early_body_weight", 2)
	v.SetDefault("detector.keyword.late_body_weight", 1)
	v.SetDefault("detector.keyword.early_body_words", 100)
	v.SetDefault("detector.keyword.max_phrase_words", 5)

	// URL defaults
	v.SetDefault("detector.url.max_domains", 6)
	v.SetDefault("detector.url.workers", 6)
	v.SetDefault("detector.url.unresolved_penalty", 3)
	v.SetDefault("detector.url.age.very_new_days", 30)
	v.SetDefault("detector.url.age.very_new_penalty", 3)
	v.SetDefault("detector.url.age.new_days", 121)
	v.SetDefault("detector.url.age.new_penalty", 2)
	v.SetDefault("detector.url.age.recent_days", 366)
	v.SetDefault("detector.url.age.recent_penalty", 1)
	v.SetDefault("detector.url.expiry.soon_days", 180)
	v.SetDefault("detector.url.expiry.soon_penalty", 2)
	v.SetDefault("detector.url.expiry.within_year_days", 365)
	v.SetDefault("detector.url.expiry.within_year_penalty", 1)
	v.SetDefault("detector.url.update.window_days", 365)
	v.SetDefault("detector.url.update.penalty", 1)
	v.SetDefault("detector.url.ip_penalty", 2)
	v.SetDefault("detector.url.http_penalty", 1)
	v.SetDefault("detector.url.malformed_penalty", 2)
	v.SetDefault("detector.url.max_length", 75)
	v.SetDefault("detector.url.length_penalty", 1)
	v.SetDefault("detector.url.at_sign_penalty", 2)

	// Body handling
	v.SetDefault("detector.max_body_size", 1024*1024)

	// Risk defaults
	v.SetDefault("risk.caps.domain", 15)
	v.SetDefault("risk.caps.url", 6)
	v.SetDefault("risk.caps.keyword", 15)
	v.SetDefault("risk.levels.very_high", 16)
	v.SetDefault("risk.levels.high", 12)
	v.SetDefault("risk.levels.medium", 8)
	v.SetDefault("risk.levels.low", 4)
	v.SetDefault("risk.phishing_cutoff", 8)

	// WHOIS defaults
	v.SetDefault("whois.timeout", "10s")
	v.SetDefault("whois.retry.max_attempts", 3)
	v.SetDefault("whois.retry.backoff", "linear")
	v.SetDefault("whois.retry.base_delay", "2s")
	v.SetDefault("whois.retry.max_delay", "10s")

	// DNS defaults
	v.SetDefault("dns.mode", "system")
	v.SetDefault("dns.servers", []string{})
	v.SetDefault("dns.timeout", "5s")

	// Cache defaults
	v.SetDefault("cache.type", "memory")
	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.ttl", "24h")
	v.SetDefault("cache.cleanup_frequency", "1h")
	v.SetDefault("cache.sqlite_path", "/data/whois_cache.db")
	v.SetDefault("cache.mysql_dsn", "user:password@tcp(localhost:3306)/phishing_detector")
	v.SetDefault("cache.redis.address", "localhost:6379")
	v.SetDefault("cache.redis.password", "")
	v.SetDefault("cache.redis.db", 0)

	// Source defaults
	v.SetDefault("sources.keywords", []string{})
	v.SetDefault("sources.safe_domains", []string{})
	v.SetDefault("sources.free_email_domains", []string{})

	// Report defaults
	v.SetDefault("report.enabled", false)
	v.SetDefault("report.smtp_address", "localhost:25")
	v.SetDefault("report.from", "phishing-detector@localhost")
	v.SetDefault("report.to", []string{})
	v.SetDefault("report.username", "")
	v.SetDefault("report.password", "")
	v.SetDefault("report.only_phishing", true)

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	d, err := time.ParseDuration(c.GetString(key))
	if err != nil {
		return 0, eris.Wrapf(err, "invalid duration for %s", key)
	}
	return d, nil
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
