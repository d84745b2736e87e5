package whois

import (
	"context"
	"errors"
	"testing"
	"time"

	whoisparser "github.com/likexian/whois-parser"
	"github.com/mikey/phishing-detector/internal/retry"
	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type noSleep struct{}

func (noSleep) Sleep(ctx context.Context, _ time.Duration) error { return ctx.Err() }

func TestNormalizeDate(t *testing.T) {
	want := time.Date(1997, 9, 15, 4, 0, 0, 0, time.UTC)

	tests := []struct {
		name string
		raw  string
		want *time.Time
	}{
		{"rfc3339 utc", "1997-09-15T04:00:00Z", &want},
		{"rfc3339 offset", "1997-09-15T07:00:00+03:00", &want},
		{"compact offset", "1997-09-15T00:00:00-0400", &want},
		{"naive", "1997-09-15 04:00:00", &want},
		{"list takes first", "1997-09-15T04:00:00Z, 2001-01-01T00:00:00Z", &want},
		{"multi line takes first", "1997-09-15T04:00:00Z\n2001-01-01T00:00:00Z", &want},
		{"empty", "", nil},
		{"garbage", "not a date", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeDate(tt.raw)
			if tt.want == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.True(t, tt.want.Equal(*got), "got %v", got)
			assert.Equal(t, time.UTC, got.Location())
		})
	}
}

func TestNormalizeDateDayOnly(t *testing.T) {
	for _, raw := range []string{"1997-09-15", "15-Sep-1997", "1997.09.15", "19970915"} {
		got := NormalizeDate(raw)
		require.NotNil(t, got, raw)
		assert.Equal(t, time.Date(1997, 9, 15, 0, 0, 0, 0, time.UTC), *got, raw)
	}
}

func TestRegistrableDomain(t *testing.T) {
	assert.Equal(t, "example.com", RegistrableDomain("login.secure.example.com"))
	assert.Equal(t, "example.co.uk", RegistrableDomain("www.example.co.uk"))
	assert.Equal(t, "example.com", RegistrableDomain("Example.COM."))
	assert.Equal(t, "com", RegistrableDomain("com"))
}

func TestClientLookupRetriesTransientFailures(t *testing.T) {
	calls := 0
	c := &Client{
		query: func(domain string) (string, error) {
			calls++
			assert.Equal(t, "example.com", domain)
			return "", errors.New("connection reset")
		},
		policy: retry.Policy{MaxAttempts: 3, Backoff: retry.Linear(time.Second), Sleeper: noSleep{}},
		logger: zap.NewNop(),
	}

	record, err := c.Lookup(context.Background(), "www.example.com")

	assert.Nil(t, record)
	require.Error(t, err)
	assert.True(t, eris.Is(err, retry.ErrExhausted))
	assert.Equal(t, 3, calls)
}

func TestClientLookupHonorsContext(t *testing.T) {
	block := make(chan struct{})
	defer close(block)
	c := &Client{
		query: func(string) (string, error) {
			<-block
			return "", nil
		},
		policy: retry.Policy{MaxAttempts: 1},
		logger: zap.NewNop(),
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()

	_, err := c.Lookup(ctx, "example.com")

	assert.Error(t, err)
}

func TestParseErrorMarksDeterministicAnswers(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		noRecord bool
	}{
		{"not found", whoisparser.ErrNotFoundDomain, true},
		{"reserved", whoisparser.ErrReservedDomain, true},
		{"premium", whoisparser.ErrPremiumDomain, true},
		{"blocked", whoisparser.ErrBlockedDomain, true},
		{"garbled", errors.New("unexpected response"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := parseError("example.com", tt.err)

			require.Error(t, err)
			assert.Equal(t, tt.noRecord, eris.Is(err, ErrNoRecord))
		})
	}
}

func TestParseErrorIsNotRetried(t *testing.T) {
	calls := 0
	policy := retry.Policy{MaxAttempts: 3, Backoff: retry.Linear(time.Second), Sleeper: noSleep{}}

	err := policy.Do(context.Background(), func(context.Context) error {
		calls++
		err := parseError("example.com", whoisparser.ErrReservedDomain)
		if eris.Is(err, ErrNoRecord) {
			return retry.Permanent(err)
		}
		return err
	})

	require.Error(t, err)
	assert.True(t, eris.Is(err, ErrNoRecord))
	assert.False(t, eris.Is(err, retry.ErrExhausted))
	assert.Equal(t, 1, calls)
}
