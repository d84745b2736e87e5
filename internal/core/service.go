package core

import (
	"context"
	"time"

	"github.com/mikey/phishing-detector/internal/utils"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// DetectorService is the core service for phishing detection
type DetectorService struct {
	domains     DomainChecker
	keywords    KeywordDetector
	urls        URLAnalyzer
	aggregator  Aggregator
	observer    AssessmentObserver
	text        *utils.TextProcessor
	maxBodySize int
	logger      *zap.Logger
}

// NewDetectorService creates a new phishing detection service.
// observer may be nil.
func NewDetectorService(
	domains DomainChecker,
	keywords KeywordDetector,
	urls URLAnalyzer,
	aggregator Aggregator,
	observer AssessmentObserver,
	text *utils.TextProcessor,
	maxBodySize int,
	logger *zap.Logger,
) *DetectorService {
	return &DetectorService{
		domains:     domains,
		keywords:    keywords,
		urls:        urls,
		aggregator:  aggregator,
		observer:    observer,
		text:        text,
		maxBodySize: maxBodySize,
		logger:      logger,
	}
}

// Assess scores one message. The three detectors share no state and run
// concurrently; detector failures degrade into reasons, so a report is always
// returned.
func (s *DetectorService) Assess(ctx context.Context, sender, subject, body string) *RiskReport {
	start := time.Now()

	var (
		domain   DomainResult
		keywords KeywordResult
		urls     URLResult
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		domain = s.domains.Check(sender)
		return nil
	})
	g.Go(func() error {
		keywords = s.keywords.Score(subject, body)
		return nil
	})
	g.Go(func() error {
		urls = s.urls.Analyze(gctx, body)
		return nil
	})
	_ = g.Wait()

	report := s.aggregator.Aggregate(domain, keywords, urls)
	elapsed := time.Since(start)

	if s.observer != nil {
		s.observer.ObserveAssessment(report, elapsed)
	}
	s.logReport(report, elapsed)

	return report
}

// AssessEmail sanitizes and bounds the message text, then assesses it
func (s *DetectorService) AssessEmail(ctx context.Context, email *Email) *RiskReport {
	subject := s.text.SanitizeUTF8(email.Subject)
	body := s.text.ProcessText(email.Body, s.maxBodySize)
	return s.Assess(ctx, email.From, subject, body)
}

// logReport writes one line per assessment. Raw URLs are only logged at debug
// level and always redacted.
func (s *DetectorService) logReport(report *RiskReport, elapsed time.Duration) {
	s.logger.Info("Assessed message",
		zap.String("classification", string(report.Classification)),
		zap.String("risk_level", string(report.RiskLevel)),
		zap.Int("total_score", report.TotalScore),
		zap.Int("domain_score", report.DomainScore),
		zap.Int("url_score", report.URLScore),
		zap.Int("keyword_score", report.KeywordScore),
		zap.Int("keyword_count", len(report.KeywordFindings)),
		zap.Int("url_count", report.URLCount),
		zap.Int("unique_domains", report.UniqueDomainCount),
		zap.Strings("url_reasons", uniqueStrings(report.URLReasons)),
		zap.Duration("elapsed", elapsed))

	if ce := s.logger.Check(zap.DebugLevel, "Assessed URLs"); ce != nil {
		urls := make([]string, 0, len(report.URLAssessments))
		for _, assessment := range report.URLAssessments {
			urls = append(urls, s.text.RedactURL(assessment.URL))
		}
		ce.Write(zap.Strings("urls", urls))
	}
}

func uniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	return out
}
