package filter

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/emersion/go-message/textproto"
	"github.com/emersion/go-smtp"
	"github.com/google/uuid"
	"github.com/mikey/phishing-detector/internal/core"
	"github.com/mikey/phishing-detector/internal/ports"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

const maxReasonLength = 512

// HeaderNames are the header fields stamped on every filtered message
type HeaderNames struct {
	Status       string
	Score        string
	Level        string
	Reason       string
	AssessmentID string
}

// PostfixConfig configures the Postfix content filter
type PostfixConfig struct {
	ListenAddress  string
	BlockPhishing  bool
	Headers        HeaderNames
	PostfixAddress string
	PostfixPort    int
	PostfixEnabled bool
	SubjectPrefix  string
	ModifySubject  bool
	Timeout        time.Duration

	ReportTo           []string
	ReportOnlyPhishing bool
}

// PostfixFilter implements a Postfix content filter
type PostfixFilter struct {
	service *core.DetectorService
	reports ports.ReportSender
	logger  *zap.Logger
	cfg     PostfixConfig
	server  *smtp.Server

	newID   func() string
	forward func(sender string, recipients []string, data []byte) error
}

// NewPostfixFilter creates a new Postfix content filter. reports may be nil.
func NewPostfixFilter(service *core.DetectorService, reports ports.ReportSender, logger *zap.Logger, cfg PostfixConfig) *PostfixFilter {
	if cfg.SubjectPrefix == "" && cfg.ModifySubject {
		cfg.SubjectPrefix = "[PHISHING] "
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	f := &PostfixFilter{
		service: service,
		reports: reports,
		logger:  logger,
		cfg:     cfg,
		newID:   uuid.NewString,
	}
	f.forward = f.sendToPostfix
	return f
}

// Start starts the Postfix filter service
func (f *PostfixFilter) Start() error {
	f.server = smtp.NewServer(&smtpBackend{filter: f})

	f.server.Addr = f.cfg.ListenAddress
	f.server.Domain = "localhost"
	f.server.ReadTimeout = 30 * time.Second
	f.server.WriteTimeout = 30 * time.Second
	f.server.MaxMessageBytes = 30 * 1024 * 1024
	f.server.MaxRecipients = 50

	f.logger.Info("Postfix filter starting", zap.String("address", f.cfg.ListenAddress))

	go func() {
		if err := f.server.ListenAndServe(); err != nil && err != smtp.ErrServerClosed {
			f.logger.Error("SMTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop stops the Postfix filter service
func (f *PostfixFilter) Stop() error {
	if f.server != nil {
		return f.server.Close()
	}
	return nil
}

// ProcessEmail scores an email without touching the mail flow
func (f *PostfixFilter) ProcessEmail(ctx context.Context, email *core.Email) (*core.RiskReport, error) {
	return f.service.AssessEmail(ctx, email), nil
}

// filterMessage scores raw, stamps the verdict headers on it and returns the
// rewritten message. A non-nil error means the message must not be delivered.
func (f *PostfixFilter) filterMessage(ctx context.Context, sender string, recipients []string, raw []byte) ([]byte, error) {
	email, err := parseMIME(raw)
	if err != nil {
		return nil, err
	}
	if email.From == "" {
		email.From = sender
	}
	email.To = recipients

	id := f.newID()
	report := f.service.AssessEmail(ctx, email)

	f.dispatchReport(ctx, id, report)

	if report.IsPhishing() && f.cfg.BlockPhishing {
		f.logger.Info("Rejecting phishing email",
			zap.String("assessment_id", id),
			zap.String("from", sender),
			zap.Int("score", report.TotalScore),
			zap.String("risk_level", string(report.RiskLevel)))
		return nil, &smtp.SMTPError{
			Code:         550,
			EnhancedCode: smtp.EnhancedCode{5, 7, 1},
			Message:      fmt.Sprintf("Rejected as phishing (score %d, risk %s)", report.TotalScore, report.RiskLevel),
		}
	}

	return f.stampHeaders(raw, id, report)
}

func (f *PostfixFilter) stampHeaders(raw []byte, id string, report *core.RiskReport) ([]byte, error) {
	br := bufio.NewReader(bytes.NewReader(raw))
	header, err := textproto.ReadHeader(br)
	if err != nil {
		return nil, eris.Wrap(err, "failed to read message header")
	}
	body, err := io.ReadAll(br)
	if err != nil {
		return nil, eris.Wrap(err, "failed to read message body")
	}

	names := f.cfg.Headers
	setField(&header, names.Reason, reasonSummary(report))
	setField(&header, names.Level, string(report.RiskLevel))
	setField(&header, names.Score, strconv.Itoa(report.TotalScore))
	setField(&header, names.Status, string(report.Classification))
	setField(&header, names.AssessmentID, id)

	if report.IsPhishing() && f.cfg.ModifySubject && f.cfg.SubjectPrefix != "" {
		subject := decodeHeader(header.Get("Subject"))
		if !strings.HasPrefix(subject, f.cfg.SubjectPrefix) {
			header.Set("Subject", encodeHeader(f.cfg.SubjectPrefix+subject))
		}
	}

	var out bytes.Buffer
	if err := textproto.WriteHeader(&out, header); err != nil {
		return nil, eris.Wrap(err, "failed to write message header")
	}
	out.Write(body)
	return out.Bytes(), nil
}

// setField replaces any existing field, so senders cannot pre-stamp a verdict
func setField(header *textproto.Header, name, value string) {
	if name != "" {
		header.Set(name, value)
	}
}

func (f *PostfixFilter) dispatchReport(ctx context.Context, id string, report *core.RiskReport) {
	if f.reports == nil || len(f.cfg.ReportTo) == 0 {
		return
	}
	if f.cfg.ReportOnlyPhishing && !report.IsPhishing() {
		return
	}
	if err := f.reports.Send(ctx, f.cfg.ReportTo, id, report); err != nil {
		f.logger.Warn("Failed to send assessment report",
			zap.String("assessment_id", id),
			zap.Error(err))
	}
}

// reasonSummary folds the report into a single header-safe line
func reasonSummary(report *core.RiskReport) string {
	parts := []string{report.DomainMessage}
	if len(report.KeywordFindings) > 0 {
		parts = append(parts, fmt.Sprintf("%d suspicious keywords", len(report.KeywordFindings)))
	}
	seen := make(map[string]struct{})
	for _, reason := range report.URLReasons {
		if _, ok := seen[reason]; ok {
			continue
		}
		seen[reason] = struct{}{}
		parts = append(parts, reason)
	}

	summary := strings.Join(strings.Fields(strings.Join(parts, "; ")), " ")
	if len(summary) > maxReasonLength {
		summary = summary[:maxReasonLength]
		for !utf8.ValidString(summary) {
			summary = summary[:len(summary)-1]
		}
	}
	return summary
}

// sendToPostfix hands the processed email back to Postfix on the re-injection port
func (f *PostfixFilter) sendToPostfix(sender string, recipients []string, data []byte) error {
	postfixAddr := net.JoinHostPort(f.cfg.PostfixAddress, strconv.Itoa(f.cfg.PostfixPort))

	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", postfixAddr, 10*time.Second)
	if err != nil {
		return eris.Wrapf(err, "failed to connect to Postfix at %s", postfixAddr)
	}

	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return eris.Wrap(err, "failed to set connection deadline")
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return eris.Wrap(err, "EHLO failed")
	}

	if err := c.Mail(sender, nil); err != nil {
		return eris.Wrap(err, "MAIL FROM failed")
	}

	recipientOK := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			f.logger.Warn("RCPT TO failed for recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
			continue
		}
		recipientOK = true
	}
	if !recipientOK {
		return eris.New("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return eris.Wrap(err, "DATA command failed")
	}
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return eris.Wrap(err, "failed to send email data")
	}
	if err := wc.Close(); err != nil {
		return eris.Wrap(err, "failed to close data writer")
	}

	// the message is already queued
	if err := c.Quit(); err != nil {
		f.logger.Warn("QUIT command failed", zap.Error(err))
	}

	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	filter *PostfixFilter
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{filter: b.filter}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	filter     *PostfixFilter
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = nil
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Data scores the message and forwards it to Postfix
func (s *smtpSession) Data(r io.Reader) error {
	f := s.filter

	raw, err := io.ReadAll(r)
	if err != nil {
		f.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), f.cfg.Timeout)
	defer cancel()

	filtered, err := f.filterMessage(ctx, s.sender, s.recipients, raw)
	if err != nil {
		var smtpErr *smtp.SMTPError
		if !errors.As(err, &smtpErr) {
			f.logger.Error("Failed to filter message", zap.String("sender", s.sender), zap.Error(err))
		}
		return err
	}

	if !f.cfg.PostfixEnabled {
		f.logger.Warn("Postfix forwarding disabled, this is likely a misconfiguration")
		return nil
	}

	if err := f.forward(s.sender, s.recipients, filtered); err != nil {
		f.logger.Error("Failed to send email back to Postfix",
			zap.Error(err),
			zap.String("sender", s.sender))
		return err
	}

	return nil
}

// Logout handles SMTP logout
func (s *smtpSession) Logout() error {
	return nil
}
