package detector

import (
	"strings"

	"github.com/rotisserie/eris"
)

// ErrNoAddress is returned when no email-like token can be found in a sender field
var ErrNoAddress = eris.New("no email address found in sender field")

const addressPunctuation = `.,;:><"' `

// ExtractAddress pulls the email address out of a header-like sender field such
// as `"Alice" <alice@example.com>` or free text containing a bare address.
// The result is lowercase.
func ExtractAddress(sender string) (string, error) {
	text := strings.ToLower(strings.TrimSpace(sender))

	if start := strings.Index(text, "<"); start >= 0 {
		if end := strings.Index(text[start+1:], ">"); end >= 0 {
			candidate := strings.TrimSpace(text[start+1 : start+1+end])
			if strings.Contains(candidate, "@") {
				return candidate, nil
			}
		}
	}

	stripped := strings.NewReplacer("(", " ", ")", " ", `"`, " ", "'", " ").Replace(text)
	for _, token := range strings.Fields(stripped) {
		if strings.Contains(token, "@") && strings.Contains(token, ".") {
			token = strings.Trim(token, addressPunctuation)
			if strings.Contains(token, "@") {
				return token, nil
			}
		}
	}

	return "", eris.Wrapf(ErrNoAddress, "sender %q", truncate(sender, 64))
}

// DomainOf returns the "@domain" part of an address, split once on "@"
func DomainOf(address string) string {
	_, domain, found := strings.Cut(address, "@")
	if !found {
		return ""
	}
	return "@" + domain
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
