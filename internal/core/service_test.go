package core

import (
	"context"
	"testing"
	"time"

	"github.com/mikey/phishing-detector/internal/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type stubDomains struct{ sender string }

func (s *stubDomains) Check(sender string) DomainResult {
	s.sender = sender
	return DomainResult{DomainMessage: "domain", Score: 2}
}

type stubKeywords struct{ subject, body string }

func (s *stubKeywords) Score(subject, body string) KeywordResult {
	s.subject, s.body = subject, body
	return KeywordResult{Findings: []Finding{{Location: LocationSubject, Keyword: "urgent"}}, Score: 3}
}

type stubURLs struct{ body string }

func (s *stubURLs) Analyze(_ context.Context, body string) URLResult {
	s.body = body
	return URLResult{Reasons: []string{"r"}, Score: 4, URLCount: 1, UniqueDomainCount: 1}
}

type sumAggregator struct{}

func (sumAggregator) Aggregate(d DomainResult, k KeywordResult, u URLResult) *RiskReport {
	return &RiskReport{
		DomainMessage:   d.DomainMessage,
		DomainScore:     d.Score,
		KeywordScore:    k.Score,
		KeywordFindings: k.Findings,
		URLScore:        u.Score,
		URLReasons:      u.Reasons,
		TotalScore:      d.Score + k.Score + u.Score,
	}
}

type recordingObserver struct {
	reports []*RiskReport
}

func (o *recordingObserver) ObserveAssessment(report *RiskReport, _ time.Duration) {
	o.reports = append(o.reports, report)
}

func newTestService(maxBody int) (*DetectorService, *stubDomains, *stubKeywords, *stubURLs, *recordingObserver) {
	domains, keywords, urls, observer := &stubDomains{}, &stubKeywords{}, &stubURLs{}, &recordingObserver{}
	logger := zap.NewNop()
	svc := NewDetectorService(domains, keywords, urls, sumAggregator{}, observer, utils.NewTextProcessor(logger), maxBody, logger)
	return svc, domains, keywords, urls, observer
}

func TestAssessCombinesDetectors(t *testing.T) {
	svc, domains, keywords, urls, observer := newTestService(0)

	report := svc.Assess(context.Background(), "Alice <alice@example.com>", "Urgent", "body text")

	require.NotNil(t, report)
	assert.Equal(t, 9, report.TotalScore)
	assert.Equal(t, "Alice <alice@example.com>", domains.sender)
	assert.Equal(t, "Urgent", keywords.subject)
	assert.Equal(t, "body text", keywords.body)
	assert.Equal(t, "body text", urls.body)
	assert.Equal(t, []*RiskReport{report}, observer.reports)
}

func TestAssessEmailSanitizesAndTruncates(t *testing.T) {
	svc, domains, keywords, urls, _ := newTestService(5)

	svc.AssessEmail(context.Background(), &Email{
		From:    "bob@example.com",
		Subject: "Hi\xff",
		Body:    "abc\xffdefgh",
	})

	assert.Equal(t, "bob@example.com", domains.sender)
	assert.Equal(t, "Hi", keywords.subject)
	assert.Equal(t, "abcde", keywords.body)
	assert.Equal(t, "abcde", urls.body)
}

func TestAssessWithoutObserver(t *testing.T) {
	logger := zap.NewNop()
	svc := NewDetectorService(&stubDomains{}, &stubKeywords{}, &stubURLs{}, sumAggregator{}, nil, utils.NewTextProcessor(logger), 0, logger)

	assert.NotPanics(t, func() {
		svc.Assess(context.Background(), "", "", "")
	})
}

func TestUniqueStrings(t *testing.T) {
	assert.Equal(t, []string{"a", "b"}, uniqueStrings([]string{"a", "b", "a"}))
	assert.Equal(t, []string{}, uniqueStrings(nil))
}
