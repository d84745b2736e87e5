package detector

import (
	"testing"

	"github.com/mikey/phishing-detector/internal/whitelist"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestExtractAddress(t *testing.T) {
	tests := []struct {
		name    string
		sender  string
		want    string
		wantErr bool
	}{
		{name: "display name", sender: `"Alice" <Alice@Example.com>`, want: "alice@example.com"},
		{name: "bare address", sender: "alice@example.com", want: "alice@example.com"},
		{name: "free text", sender: "From: Bob (bob@corp.example.org), sent today", want: "bob@corp.example.org"},
		{name: "quoted token", sender: `reply to 'carol@mail.net'.`, want: "carol@mail.net"},
		{name: "brackets without at", sender: "Support <helpdesk> support@help.io", want: "support@help.io"},
		{name: "no address", sender: "Alice Smith", wantErr: true},
		{name: "at without dot", sender: "alice@localhost", wantErr: true},
		{name: "empty", sender: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractAddress(tt.sender)
			if tt.wantErr {
				assert.True(t, eris.Is(err, ErrNoAddress))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestDomainOf(t *testing.T) {
	assert.Equal(t, "@bank.com", DomainOf("alice@bank.com"))
	assert.Equal(t, "@b@c.com", DomainOf("a@b@c.com"))
	assert.Equal(t, "", DomainOf("nobody"))
}

func newDomainChecker(safe ...string) *DomainTrustChecker {
	trusted := whitelist.NewChecker(safe, nil, zap.NewNop())
	return NewDomainTrustChecker(trusted, DefaultDomainConfig(), zap.NewNop())
}

func TestDomainTrustCheckerSafe(t *testing.T) {
	c := newDomainChecker("@bank.com")

	result := c.Check("Alice <alice@bank.com>")

	assert.True(t, result.Trusted)
	assert.Zero(t, result.Score)
	assert.Contains(t, result.DomainMessage, "is a safe domain")
	assert.Equal(t, "No similar domains found", result.SimilarityMessage)
}

func TestDomainTrustCheckerLookalike(t *testing.T) {
	c := newDomainChecker("@bank.com")

	result := c.Check("Alice <alice@bnak.com>")

	assert.False(t, result.Trusted)
	assert.Equal(t, "@bnak.com", result.Domain)
	assert.Equal(t, 2+2, result.Score)
	assert.Contains(t, result.DomainMessage, "unrecognized")
	assert.Contains(t, result.SimilarityMessage, "@bank.com")
	assert.Contains(t, result.SimilarityMessage, "distance 2")
}

func TestDomainTrustCheckerKeepsClosestMatch(t *testing.T) {
	c := newDomainChecker("@bank.co", "@bank.com")

	result := c.Check("x@bank.cm")

	// both entries are within the threshold: distances 1 and 1, plus the base penalty
	assert.Equal(t, 2+1+1, result.Score)
	assert.Contains(t, result.SimilarityMessage, "@bank.co ")
}

func TestDomainTrustCheckerUnrelated(t *testing.T) {
	c := newDomainChecker("@bank.com")

	result := c.Check("someone@totally-different-host.org")

	assert.Equal(t, 2, result.Score)
	assert.Equal(t, "No similar domains found", result.SimilarityMessage)
}

func TestDomainTrustCheckerNoAddress(t *testing.T) {
	c := newDomainChecker("@bank.com")

	result := c.Check("Just A Name")

	assert.False(t, result.Trusted)
	assert.Equal(t, 2, result.Score)
	assert.Empty(t, result.Domain)
	assert.Contains(t, result.DomainMessage, "could not determine")
}
