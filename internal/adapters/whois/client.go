// Package whois looks up domain registration records and normalizes their
// dates before they reach the scoring logic.
package whois

import (
	"context"
	"errors"
	"time"

	"github.com/likexian/whois"
	whoisparser "github.com/likexian/whois-parser"
	"github.com/mikey/phishing-detector/internal/core"
	"github.com/mikey/phishing-detector/internal/retry"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ErrNoRecord is returned when the registry has no record for a domain
var ErrNoRecord = eris.New("no WHOIS record")

// Client queries WHOIS servers with retries
type Client struct {
	query  func(domain string) (string, error)
	policy retry.Policy
	logger *zap.Logger
}

// NewClient creates a new WHOIS client
func NewClient(timeout time.Duration, policy retry.Policy, logger *zap.Logger) *Client {
	c := whois.NewClient()
	if timeout > 0 {
		c.SetTimeout(timeout)
	}
	return &Client{
		query: func(domain string) (string, error) {
			return c.Whois(domain)
		},
		policy: policy,
		logger: logger,
	}
}

// Lookup returns the registration record of the registrable domain of host.
// Missing, reserved, premium and blocked domains are not retried.
func (c *Client) Lookup(ctx context.Context, host string) (*core.DomainRecord, error) {
	domain := RegistrableDomain(host)

	var record *core.DomainRecord
	attempt := 0
	err := c.policy.Do(ctx, func(ctx context.Context) error {
		attempt++
		text, err := c.fetch(ctx, domain)
		if err != nil {
			c.logger.Debug("WHOIS query failed",
				zap.String("domain", domain),
				zap.Int("attempt", attempt),
				zap.Error(err))
			return err
		}

		record, err = parseRecord(domain, text)
		if eris.Is(err, ErrNoRecord) {
			return retry.Permanent(err)
		}
		return err
	})
	if err != nil {
		return nil, eris.Wrapf(err, "WHOIS lookup for %s", domain)
	}

	return record, nil
}

// fetch runs the blocking query and gives up when ctx is done.
func (c *Client) fetch(ctx context.Context, domain string) (string, error) {
	type answer struct {
		text string
		err  error
	}

	ch := make(chan answer, 1)
	go func() {
		text, err := c.query(domain)
		ch <- answer{text: text, err: err}
	}()

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case a := <-ch:
		return a.text, a.err
	}
}

func parseRecord(domain, text string) (*core.DomainRecord, error) {
	info, err := whoisparser.Parse(text)
	if err != nil {
		return nil, parseError(domain, err)
	}
	if info.Domain == nil {
		return nil, eris.Wrapf(ErrNoRecord, "domain %s", domain)
	}

	return &core.DomainRecord{
		Domain:  domain,
		Created: NormalizeDate(info.Domain.CreatedDate),
		Updated: NormalizeDate(info.Domain.UpdatedDate),
		Expires: NormalizeDate(info.Domain.ExpirationDate),
	}, nil
}

// parseError maps registry answers that will not change on a retry to
// ErrNoRecord.
func parseError(domain string, err error) error {
	switch {
	case errors.Is(err, whoisparser.ErrNotFoundDomain),
		errors.Is(err, whoisparser.ErrReservedDomain),
		errors.Is(err, whoisparser.ErrPremiumDomain),
		errors.Is(err, whoisparser.ErrBlockedDomain):
		return eris.Wrapf(ErrNoRecord, "domain %s: %v", domain, err)
	default:
		return eris.Wrap(err, "failed to parse WHOIS response")
	}
}
