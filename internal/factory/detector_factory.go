package factory

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/mikey/phishing-detector/internal/adapters/resolver"
	"github.com/mikey/phishing-detector/internal/adapters/sources"
	"github.com/mikey/phishing-detector/internal/adapters/whois"
	"github.com/mikey/phishing-detector/internal/config"
	"github.com/mikey/phishing-detector/internal/core"
	"github.com/mikey/phishing-detector/internal/detector"
	"github.com/mikey/phishing-detector/internal/metrics"
	"github.com/mikey/phishing-detector/internal/risk"
	"github.com/mikey/phishing-detector/internal/whitelist"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// DetectorFactory builds the detectors and their network clients from configuration
type DetectorFactory struct {
	cfg     *config.Config
	logger  *zap.Logger
	metrics *metrics.Collectors
}

// NewDetectorFactory creates a new detector factory. collectors may be nil.
func NewDetectorFactory(cfg *config.Config, logger *zap.Logger, collectors *metrics.Collectors) *DetectorFactory {
	return &DetectorFactory{
		cfg:     cfg,
		logger:  logger,
		metrics: collectors,
	}
}

// CreateTrustedDomains loads the safe-domain corpus and the webmail providers
func (f *DetectorFactory) CreateTrustedDomains() (*whitelist.Checker, error) {
	src := f.cfg.GetSources()

	var safe []string
	for _, path := range src.SafeDomains {
		domains, err := sources.LoadDomains(path)
		if err != nil {
			return nil, err
		}
		safe = append(safe, domains...)
	}
	if len(src.SafeDomains) == 0 {
		f.logger.Warn("No safe domain sources configured, only webmail providers are trusted")
	}

	free := sources.DefaultFreeEmailDomains()
	if len(src.FreeEmailDomains) > 0 {
		free = nil
		for _, path := range src.FreeEmailDomains {
			domains, err := sources.LoadDomains(path)
			if err != nil {
				return nil, err
			}
			free = append(free, domains...)
		}
	}

	return whitelist.NewChecker(safe, free, f.logger.Named("whitelist")), nil
}

// CreateDomainChecker creates the sender domain trust checker
func (f *DetectorFactory) CreateDomainChecker(trusted *whitelist.Checker) core.DomainChecker {
	return detector.NewDomainTrustChecker(trusted, f.cfg.GetDomainDetector(), f.logger.Named("domain"))
}

// CreateKeywordDetector loads the keyword list and creates the keyword scorer.
// Files ending in .csv are read by first column; with no sources the built-in
// list is used.
func (f *DetectorFactory) CreateKeywordDetector() (core.KeywordDetector, error) {
	src := f.cfg.GetSources()

	keywordSources := make([]sources.KeywordSource, 0, len(src.Keywords))
	for _, path := range src.Keywords {
		keywordSources = append(keywordSources, KeywordSourceFor(path))
	}
	if len(keywordSources) == 0 {
		keywordSources = append(keywordSources, sources.Embedded{})
	}

	keywords, err := sources.LoadKeywords(src.MaxPhraseWords, keywordSources...)
	if err != nil {
		return nil, err
	}
	f.logger.Info("Loaded keywords", zap.Int("count", len(keywords)))

	return detector.NewKeywordScorer(keywords, f.cfg.GetKeywordDetector()), nil
}

// KeywordSourceFor picks a keyword source by file extension
func KeywordSourceFor(path string) sources.KeywordSource {
	if strings.EqualFold(filepath.Ext(path), ".csv") {
		return sources.CSVFile{Path: path, SkipHeader: true}
	}
	return sources.TextFile{Path: path}
}

// CreateResolver creates the DNS resolver selected by dns.mode
func (f *DetectorFactory) CreateResolver() (core.Resolver, error) {
	dnsCfg := f.cfg.GetDNS()
	logger := f.logger.Named("dns")

	switch dnsCfg.Mode {
	case "system":
		return resolver.NewSystemResolver(f.metrics, logger), nil
	case "direct":
		return resolver.NewDirectResolver(dnsCfg.Servers, dnsCfg.Timeout, f.metrics, logger)
	default:
		return nil, eris.Errorf("unsupported DNS mode: %s", dnsCfg.Mode)
	}
}

// CreateWhoisClient creates the WHOIS client, wrapped in cache when it is non-nil
func (f *DetectorFactory) CreateWhoisClient(cache core.WhoisCache, ttl time.Duration) core.WhoisClient {
	whoisCfg := f.cfg.GetWhois()
	logger := f.logger.Named("whois")

	client := whois.NewClient(whoisCfg.Timeout, whoisCfg.Retry, logger)
	if cache == nil {
		return client
	}
	return whois.NewCachedClient(client, cache, ttl, f.metrics, logger)
}

// CreateURLAnalyzer creates the URL risk analyzer
func (f *DetectorFactory) CreateURLAnalyzer(dns core.Resolver, whoisClient core.WhoisClient) core.URLAnalyzer {
	return detector.NewURLRiskAnalyzer(f.cfg.GetURLDetector(), dns, whoisClient, nil, f.logger.Named("url"))
}

// CreateAggregator creates the risk aggregator
func (f *DetectorFactory) CreateAggregator() core.Aggregator {
	return risk.NewAggregator(f.cfg.GetRisk())
}
