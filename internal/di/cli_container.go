package di

import (
	"flag"
	"strings"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/phishing-detector/internal/config"
	"github.com/mikey/phishing-detector/internal/logging"
)

// CLIFlags contains all command line flags for the CLI application
type CLIFlags struct {
	// Input flags
	InputFile  string
	Verbose    bool
	JSONLog    bool
	ConfigFile string

	// Source flags
	SafeDomains string
	Keywords    string

	// Network flags
	NoCache    bool
	DNSServers string

	// Report flags
	ReportTo string
}

// ParseFlags parses command line flags and returns a CLIFlags struct
func ParseFlags() *CLIFlags {
	flags := &CLIFlags{}

	flag.StringVar(&flags.InputFile, "file", "", "Input email file (use stdin if not specified)")
	flag.BoolVar(&flags.Verbose, "verbose", false, "Enable verbose logging")
	flag.BoolVar(&flags.JSONLog, "json-log", false, "Output logs in JSON format")
	flag.StringVar(&flags.ConfigFile, "config", "", "Path to config file (overrides the flags below)")

	flag.StringVar(&flags.SafeDomains, "safe-domains", "", "Comma-separated safe domain files (.txt, .json or .yaml)")
	flag.StringVar(&flags.Keywords, "keywords", "", "Comma-separated keyword files (.txt or .csv)")

	flag.BoolVar(&flags.NoCache, "no-cache", false, "Disable the in-memory WHOIS cache")
	flag.StringVar(&flags.DNSServers, "dns-servers", "", "Comma-separated DNS servers to query directly instead of the system resolver")

	flag.StringVar(&flags.ReportTo, "report-to", "", "Comma-separated addresses to mail the assessment report to")

	flag.Parse()
	return flags
}

// BuildCLIContainer creates and configures a dependency injection container for the CLI application
func BuildCLIContainer(flags *CLIFlags) (*dig.Container, error) {
	container := dig.New()

	// Register flags
	if err := container.Provide(func() *CLIFlags { return flags }); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(func(flags *CLIFlags) (*zap.Logger, error) {
		return logging.InitConsoleLogger(flags.Verbose, flags.JSONLog)
	}); err != nil {
		return nil, err
	}

	// Register configuration
	if err := container.Provide(func(flags *CLIFlags, logger *zap.Logger) (*config.Config, error) {
		if flags.ConfigFile != "" {
			cfg, err := config.NewFromFile(flags.ConfigFile)
			if err != nil {
				return nil, err
			}
			cfg.GetViper().Set("server.filter_type", "cli")
			cfg.GetViper().Set("cli.verbose", flags.Verbose)
			logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
			return cfg, nil
		}

		cfg := createConfigFromFlags(flags)
		if err := cfg.Validate(); err != nil {
			return nil, err
		}
		return cfg, nil
	}); err != nil {
		return nil, err
	}

	// Metrics are collected but not served by the CLI
	if err := container.Provide(prometheus.NewRegistry); err != nil {
		return nil, err
	}

	if err := provideScoring(container); err != nil {
		return nil, err
	}

	return container, nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags(flags *CLIFlags) *config.Config {
	v := config.NewEmptyViper()

	// Set some cli specific settings
	v.Set("server.filter_type", "cli")
	v.Set("cli.verbose", flags.Verbose)

	v.Set("sources.safe_domains", splitList(flags.SafeDomains))
	v.Set("sources.keywords", splitList(flags.Keywords))

	v.Set("cache.type", "memory")
	v.Set("cache.enabled", !flags.NoCache)
	v.Set("cache.cleanup_frequency", "0s")

	if servers := splitList(flags.DNSServers); len(servers) > 0 {
		v.Set("dns.mode", "direct")
		v.Set("dns.servers", servers)
	}

	if to := splitList(flags.ReportTo); len(to) > 0 {
		v.Set("report.enabled", true)
		v.Set("report.to", to)
		v.Set("report.only_phishing", false)
	}

	return config.NewFromViper(v)
}

func splitList(s string) []string {
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
