package filter

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/emersion/go-smtp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/mikey/phishing-detector/internal/core"
	"github.com/mikey/phishing-detector/internal/ports"
	"github.com/mikey/phishing-detector/internal/risk"
	"github.com/mikey/phishing-detector/internal/utils"
)

type stubDomains struct{ sender string }

func (s *stubDomains) Check(sender string) core.DomainResult {
	s.sender = sender
	return core.DomainResult{DomainMessage: "Domain example.net is not recognised", Score: 2}
}

type stubKeywords struct{ score int }

func (s *stubKeywords) Score(_, _ string) core.KeywordResult {
	if s.score == 0 {
		return core.KeywordResult{}
	}
	return core.KeywordResult{
		Findings: []core.Finding{{Location: core.LocationSubject, Keyword: "verify"}},
		Score:    s.score,
	}
}

type stubURLs struct{}

func (stubURLs) Analyze(_ context.Context, _ string) core.URLResult {
	return core.URLResult{Reasons: []string{"No URLs found in the message body"}}
}

type recordingSender struct {
	ids []string
	to  [][]string
	err error
}

func (r *recordingSender) Send(_ context.Context, to []string, id string, _ *core.RiskReport) error {
	r.ids = append(r.ids, id)
	r.to = append(r.to, to)
	return r.err
}

type forwarded struct {
	sender     string
	recipients []string
	data       []byte
}

func newTestFilter(keywordScore int, cfg PostfixConfig, reports *recordingSender) (*PostfixFilter, *stubDomains, *[]forwarded) {
	logger := zap.NewNop()
	domains := &stubDomains{}
	service := core.NewDetectorService(
		domains,
		&stubKeywords{score: keywordScore},
		stubURLs{},
		risk.NewAggregator(risk.DefaultConfig()),
		nil,
		utils.NewTextProcessor(logger),
		1024*1024,
		logger,
	)

	cfg.Headers = HeaderNames{
		Status:       "X-Phishing-Status",
		Score:        "X-Phishing-Score",
		Level:        "X-Phishing-Level",
		Reason:       "X-Phishing-Reason",
		AssessmentID: "X-Phishing-Assessment-ID",
	}
	cfg.PostfixEnabled = true

	var reportSender ports.ReportSender
	if reports != nil {
		reportSender = reports
	}

	f := NewPostfixFilter(service, reportSender, logger, cfg)
	f.newID = func() string { return "test-id" }

	var sent []forwarded
	f.forward = func(sender string, recipients []string, data []byte) error {
		sent = append(sent, forwarded{sender: sender, recipients: recipients, data: data})
		return nil
	}
	return f, domains, &sent
}

const testMessage = "From: \"Support\" <support@example.net>\r\n" +
	"To: alice@example.org\r\n" +
	"Subject: Verify your account\r\n" +
	"X-Phishing-Status: SAFE\r\n" +
	"\r\n" +
	"Please verify your account today.\r\n"

func runSession(f *PostfixFilter, message string) error {
	session, err := (&smtpBackend{filter: f}).NewSession(nil)
	if err != nil {
		return err
	}
	if err := session.Mail("bounce@example.net", nil); err != nil {
		return err
	}
	if err := session.Rcpt("alice@example.org", nil); err != nil {
		return err
	}
	return session.Data(strings.NewReader(message))
}

func TestPostfixFilterStampsSafeMessage(t *testing.T) {
	f, domains, sent := newTestFilter(0, PostfixConfig{}, nil)

	require.NoError(t, runSession(f, testMessage))
	require.Len(t, *sent, 1)

	out := string((*sent)[0].data)
	assert.Equal(t, "bounce@example.net", (*sent)[0].sender)
	assert.Equal(t, []string{"alice@example.org"}, (*sent)[0].recipients)
	assert.Contains(t, out, "X-Phishing-Status: SAFE\r\n")
	assert.Contains(t, out, "X-Phishing-Score: 2\r\n")
	assert.Contains(t, out, "X-Phishing-Level: VERY_LOW\r\n")
	// keys are written in canonical MIME form
	assert.Contains(t, out, "X-Phishing-Assessment-Id: test-id\r\n")
	assert.Contains(t, out, "X-Phishing-Reason: Domain example.net is not recognised; No URLs found in the message body\r\n")
	assert.Contains(t, out, "Subject: Verify your account\r\n")
	assert.True(t, strings.HasSuffix(out, "\r\n\r\nPlease verify your account today.\r\n"))
	assert.Equal(t, 1, strings.Count(out, "X-Phishing-Status:"))

	// the header sender is scored, not the envelope sender
	assert.Equal(t, `"Support" <support@example.net>`, domains.sender)
}

func TestPostfixFilterRewritesPhishingSubject(t *testing.T) {
	f, _, sent := newTestFilter(9, PostfixConfig{ModifySubject: true}, nil)

	require.NoError(t, runSession(f, testMessage))
	require.Len(t, *sent, 1)

	out := string((*sent)[0].data)
	assert.Contains(t, out, "X-Phishing-Status: PHISHING\r\n")
	assert.Contains(t, out, "Subject: [PHISHING] Verify your account\r\n")
	assert.NotContains(t, out, "Subject: Verify your account\r\n")
}

func TestPostfixFilterRewritesEncodedSubject(t *testing.T) {
	f, _, sent := newTestFilter(9, PostfixConfig{ModifySubject: true, SubjectPrefix: "[SUSPECT] "}, nil)

	message := strings.Replace(testMessage, "Subject: Verify your account", "Subject: =?utf-8?q?V=C3=A9rifiez?=", 1)
	require.NoError(t, runSession(f, message))
	require.Len(t, *sent, 1)

	var subject string
	for _, line := range strings.Split(string((*sent)[0].data), "\r\n") {
		if strings.HasPrefix(line, "Subject: ") {
			subject = strings.TrimPrefix(line, "Subject: ")
		}
	}
	assert.Equal(t, "[SUSPECT] Vérifiez", decodeHeader(subject))
}

func TestPostfixFilterRejectsWhenBlocking(t *testing.T) {
	f, _, sent := newTestFilter(9, PostfixConfig{BlockPhishing: true}, nil)

	err := runSession(f, testMessage)
	require.Error(t, err)

	var smtpErr *smtp.SMTPError
	require.True(t, errors.As(err, &smtpErr))
	assert.Equal(t, 550, smtpErr.Code)
	assert.Equal(t, smtp.EnhancedCode{5, 7, 1}, smtpErr.EnhancedCode)
	assert.Empty(t, *sent)
}

func TestPostfixFilterDispatchesReports(t *testing.T) {
	reports := &recordingSender{}
	cfg := PostfixConfig{ReportTo: []string{"soc@example.org"}, ReportOnlyPhishing: true}

	safe, _, _ := newTestFilter(0, cfg, reports)
	require.NoError(t, runSession(safe, testMessage))
	assert.Empty(t, reports.ids)

	phishing, _, _ := newTestFilter(9, cfg, reports)
	require.NoError(t, runSession(phishing, testMessage))
	assert.Equal(t, []string{"test-id"}, reports.ids)
	assert.Equal(t, [][]string{{"soc@example.org"}}, reports.to)
}

func TestPostfixFilterReportFailureDoesNotBlockDelivery(t *testing.T) {
	reports := &recordingSender{err: errors.New("relay down")}
	f, _, sent := newTestFilter(9, PostfixConfig{ReportTo: []string{"soc@example.org"}}, reports)

	require.NoError(t, runSession(f, testMessage))
	assert.Len(t, *sent, 1)
}

func TestReasonSummaryIsBounded(t *testing.T) {
	report := &core.RiskReport{
		DomainMessage: "Domain é.example is not recognised",
		URLReasons:    []string{strings.Repeat("é", 400), strings.Repeat("é", 400)},
	}

	summary := reasonSummary(report)
	assert.LessOrEqual(t, len(summary), maxReasonLength)
	assert.NotContains(t, summary, "\n")
}

func TestCliFilterRendersReport(t *testing.T) {
	f, _, _ := newTestFilter(9, PostfixConfig{}, nil)
	reports := &recordingSender{}

	cli, err := NewCliFilter(f.service, reports, []string{"soc@example.org"}, zap.NewNop(), true)
	require.NoError(t, err)
	var out bytes.Buffer
	cli.out = &out

	email, err := ParseMessage([]byte(testMessage))
	require.NoError(t, err)

	result, err := cli.ProcessEmail(context.Background(), email)
	require.NoError(t, err)
	assert.Equal(t, core.ClassificationPhishing, result.Classification)
	assert.Contains(t, out.String(), "Classification: PHISHING")
	assert.Contains(t, out.String(), "Body preview:")
	assert.Len(t, reports.ids, 1)
}
