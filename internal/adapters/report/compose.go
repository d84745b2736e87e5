package report

import (
	"fmt"
	"io"
	"time"

	"github.com/emersion/go-message/mail"
	"github.com/mikey/phishing-detector/internal/core"
	"github.com/rotisserie/eris"
)

// Message describes the envelope of a report email
type Message struct {
	From         string
	To           []string
	Subject      string
	AssessmentID string
	Date         time.Time
}

// Compose writes report as a plain-text RFC 5322 message
func Compose(w io.Writer, msg Message, report *core.RiskReport) error {
	var h mail.Header
	h.SetDate(msg.Date)
	h.SetAddressList("From", []*mail.Address{{Address: msg.From}})

	to := make([]*mail.Address, 0, len(msg.To))
	for _, addr := range msg.To {
		to = append(to, &mail.Address{Address: addr})
	}
	h.SetAddressList("To", to)

	subject := msg.Subject
	if subject == "" {
		subject = fmt.Sprintf("Phishing assessment: %s (%s)", report.Classification, report.RiskLevel)
	}
	h.SetSubject(subject)
	h.SetContentType("text/plain", map[string]string{"charset": "utf-8"})
	if msg.AssessmentID != "" {
		h.Set(HeaderAssessmentID, msg.AssessmentID)
	}

	wc, err := mail.CreateSingleInlineWriter(w, h)
	if err != nil {
		return eris.Wrap(err, "failed to create message writer")
	}
	if err := Render(wc, report); err != nil {
		wc.Close()
		return eris.Wrap(err, "failed to write report")
	}
	if err := wc.Close(); err != nil {
		return eris.Wrap(err, "failed to finish message")
	}
	return nil
}

// HeaderAssessmentID carries the id that ties a message to its log line
const HeaderAssessmentID = "X-Phishing-Assessment-ID"
