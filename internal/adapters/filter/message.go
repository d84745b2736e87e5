package filter

import (
	"bytes"
	"mime"
	"strings"

	"github.com/emersion/go-message/charset"
	"github.com/jhillyerd/enmime"
	"github.com/mikey/phishing-detector/internal/core"
	"github.com/rotisserie/eris"
)

// DefaultSubject is used for plain-text input that carries no Subject line
const DefaultSubject = "No Subject"

// ErrEmptyMessage is returned when there is nothing to score
var ErrEmptyMessage = eris.New("empty message")

var headerDecoder = &mime.WordDecoder{CharsetReader: charset.Reader}

// ParseMessage turns raw input into an Email. Input carrying both From: and
// To: headers is parsed as MIME; anything else is read as plain text with an
// optional Subject: line.
func ParseMessage(raw []byte) (*core.Email, error) {
	if len(bytes.TrimSpace(raw)) == 0 {
		return nil, ErrEmptyMessage
	}

	if bytes.Contains(raw, []byte("From:")) && bytes.Contains(raw, []byte("To:")) {
		return parseMIME(raw)
	}
	return parsePlain(string(raw)), nil
}

func parseMIME(raw []byte) (*core.Email, error) {
	env, err := enmime.ReadEnvelope(bytes.NewReader(raw))
	if err != nil {
		return nil, eris.Wrap(err, "failed to parse MIME message")
	}

	email := &core.Email{
		From:    env.GetHeader("From"),
		Subject: env.GetHeader("Subject"),
		Body:    env.Text,
		Headers: make(map[string][]string),
	}
	if email.Body == "" {
		email.Body = env.HTML
	}

	if to, err := env.AddressList("To"); err == nil {
		for _, addr := range to {
			email.To = append(email.To, addr.Address)
		}
	}

	if env.Root != nil {
		for key, values := range env.Root.Header {
			email.Headers[key] = values
		}
	}

	return email, nil
}

func parsePlain(content string) *core.Email {
	email := &core.Email{Headers: make(map[string][]string)}
	lines := strings.Split(strings.ReplaceAll(content, "\r\n", "\n"), "\n")

	for i, line := range lines {
		lower := strings.ToLower(line)
		switch {
		case strings.HasPrefix(lower, "from:") && email.From == "":
			email.From = strings.TrimSpace(line[len("from:"):])
		case strings.HasPrefix(lower, "subject:"):
			email.Subject = strings.TrimSpace(line[len("subject:"):])
			email.Body = strings.TrimSpace(strings.Join(lines[i+1:], "\n"))
			return email
		}
	}

	email.Subject = DefaultSubject
	email.Body = strings.TrimSpace(content)
	return email
}

// decodeHeader decodes RFC 2047 encoded words, returning the input unchanged
// when it cannot be decoded
func decodeHeader(value string) string {
	decoded, err := headerDecoder.DecodeHeader(value)
	if err != nil {
		return value
	}
	return decoded
}

// encodeHeader Q-encodes value when it is not plain ASCII
func encodeHeader(value string) string {
	return mime.QEncoding.Encode("utf-8", value)
}
