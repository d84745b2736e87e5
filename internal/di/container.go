package di

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.uber.org/dig"
	"go.uber.org/zap"

	"github.com/mikey/phishing-detector/internal/config"
	"github.com/mikey/phishing-detector/internal/core"
	"github.com/mikey/phishing-detector/internal/factory"
	"github.com/mikey/phishing-detector/internal/logging"
	"github.com/mikey/phishing-detector/internal/metrics"
	"github.com/mikey/phishing-detector/internal/ports"
	"github.com/mikey/phishing-detector/internal/utils"
	"github.com/mikey/phishing-detector/internal/whitelist"
)

// BuildContainer creates and configures a dependency injection container
func BuildContainer() (*dig.Container, error) {
	container := dig.New()

	// Register configuration
	if err := container.Provide(config.New); err != nil {
		return nil, err
	}

	// Register logger
	if err := container.Provide(logging.InitLogger); err != nil {
		return nil, err
	}

	// Register metrics registry with the runtime collectors
	if err := container.Provide(func() *prometheus.Registry {
		reg := prometheus.NewRegistry()
		reg.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
		return reg
	}); err != nil {
		return nil, err
	}

	if err := provideScoring(container); err != nil {
		return nil, err
	}

	return container, nil
}

// provideScoring registers everything from the metric collectors up to the
// email filter. It expects *config.Config, *zap.Logger and
// *prometheus.Registry to be provided already.
func provideScoring(container *dig.Container) error {
	// Register metric collectors
	if err := container.Provide(func(reg *prometheus.Registry) *metrics.Collectors {
		return metrics.New(reg)
	}); err != nil {
		return err
	}
	if err := container.Provide(func(c *metrics.Collectors) core.AssessmentObserver {
		return c
	}); err != nil {
		return err
	}

	// Register factories
	if err := container.Provide(factory.NewCacheFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewDetectorFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewFilterFactory); err != nil {
		return err
	}
	if err := container.Provide(factory.NewReportFactory); err != nil {
		return err
	}

	// Register WHOIS cache, nil when disabled
	if err := container.Provide(func(f *factory.CacheFactory) (core.WhoisCache, error) {
		return f.CreateWhoisCache()
	}); err != nil {
		return err
	}

	// Register network clients
	if err := container.Provide(func(f *factory.DetectorFactory) (core.Resolver, error) {
		return f.CreateResolver()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.DetectorFactory, cf *factory.CacheFactory, cache core.WhoisCache) core.WhoisClient {
		return f.CreateWhoisClient(cache, cf.GetCacheTTL())
	}); err != nil {
		return err
	}

	// Register detectors
	if err := container.Provide(func(f *factory.DetectorFactory) (*whitelist.Checker, error) {
		return f.CreateTrustedDomains()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.DetectorFactory, trusted *whitelist.Checker) core.DomainChecker {
		return f.CreateDomainChecker(trusted)
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.DetectorFactory) (core.KeywordDetector, error) {
		return f.CreateKeywordDetector()
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.DetectorFactory, dns core.Resolver, whois core.WhoisClient) core.URLAnalyzer {
		return f.CreateURLAnalyzer(dns, whois)
	}); err != nil {
		return err
	}
	if err := container.Provide(func(f *factory.DetectorFactory) core.Aggregator {
		return f.CreateAggregator()
	}); err != nil {
		return err
	}

	// Register text processor
	if err := container.Provide(func(logger *zap.Logger) *utils.TextProcessor {
		return utils.NewTextProcessor(logger.Named("text"))
	}); err != nil {
		return err
	}

	// Register detector service
	if err := container.Provide(func(
		domains core.DomainChecker,
		keywords core.KeywordDetector,
		urls core.URLAnalyzer,
		aggregator core.Aggregator,
		observer core.AssessmentObserver,
		text *utils.TextProcessor,
		cfg *config.Config,
		logger *zap.Logger,
	) *core.DetectorService {
		return core.NewDetectorService(domains, keywords, urls, aggregator, observer, text, cfg.GetMaxBodySize(), logger)
	}); err != nil {
		return err
	}

	// Register report sender, nil when disabled
	if err := container.Provide(func(f *factory.ReportFactory) ports.ReportSender {
		return f.CreateReportSender()
	}); err != nil {
		return err
	}

	// Register email filter
	if err := container.Provide(func(f *factory.FilterFactory) (ports.EmailFilter, error) {
		return f.CreateEmailFilter()
	}); err != nil {
		return err
	}

	return nil
}
