package report

import (
	"bytes"
	"context"
	"time"

	"github.com/emersion/go-sasl"
	"github.com/emersion/go-smtp"
	"github.com/mikey/phishing-detector/internal/core"
	"github.com/mikey/phishing-detector/internal/ports"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

var _ ports.ReportSender = (*SMTPDispatcher)(nil)

// SMTPDispatcher mails reports through an SMTP relay
type SMTPDispatcher struct {
	addr     string
	from     string
	username string
	password string
	sendMail func(addr string, auth sasl.Client, from string, to []string, msg []byte) error
	now      func() time.Time
	logger   *zap.Logger
}

// NewSMTPDispatcher creates a dispatcher. PLAIN auth is used when username is set.
func NewSMTPDispatcher(addr, from, username, password string, logger *zap.Logger) *SMTPDispatcher {
	return &SMTPDispatcher{
		addr:     addr,
		from:     from,
		username: username,
		password: password,
		sendMail: func(addr string, auth sasl.Client, from string, to []string, msg []byte) error {
			return smtp.SendMail(addr, auth, from, to, bytes.NewReader(msg))
		},
		now:    time.Now,
		logger: logger,
	}
}

// Send composes and mails report to the recipients
func (d *SMTPDispatcher) Send(ctx context.Context, to []string, assessmentID string, report *core.RiskReport) error {
	if len(to) == 0 {
		return eris.New("no report recipients")
	}

	var buf bytes.Buffer
	err := Compose(&buf, Message{
		From:         d.from,
		To:           to,
		AssessmentID: assessmentID,
		Date:         d.now(),
	}, report)
	if err != nil {
		return err
	}

	var auth sasl.Client
	if d.username != "" {
		auth = sasl.NewPlainClient("", d.username, d.password)
	}

	done := make(chan error, 1)
	go func() {
		done <- d.sendMail(d.addr, auth, d.from, to, buf.Bytes())
	}()

	select {
	case <-ctx.Done():
		return eris.Wrap(ctx.Err(), "report dispatch cancelled")
	case err := <-done:
		if err != nil {
			return eris.Wrapf(err, "failed to send report via %s", d.addr)
		}
	}

	d.logger.Info("Report sent",
		zap.String("assessment_id", assessmentID),
		zap.Int("recipients", len(to)))
	return nil
}
