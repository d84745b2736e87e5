// Package resolver decides whether a hostname resolves in DNS.
package resolver

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/miekg/dns"
	"github.com/mikey/phishing-detector/internal/metrics"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/net/idna"
)

var (
	// ErrInvalidHostname is returned for hostnames that fail syntax checks
	ErrInvalidHostname = eris.New("invalid hostname")
	// ErrUnresolved is returned when a hostname has no addresses
	ErrUnresolved = eris.New("hostname did not resolve")
)

// ValidateHostname checks the syntax of a hostname and returns its ASCII form
func ValidateHostname(host string) (string, error) {
	host = strings.TrimSuffix(strings.ToLower(strings.TrimSpace(host)), ".")
	if host == "" || !strings.Contains(host, ".") {
		return "", eris.Wrapf(ErrInvalidHostname, "%q", host)
	}
	ascii, err := idna.Registration.ToASCII(host)
	if err != nil {
		return "", eris.Wrapf(ErrInvalidHostname, "%q: %v", host, err)
	}
	return ascii, nil
}

// SystemResolver resolves through the operating system resolver and
// inherits its timeouts.
type SystemResolver struct {
	resolver *net.Resolver
	metrics  *metrics.Collectors
	logger   *zap.Logger
}

// NewSystemResolver creates a resolver backed by net.DefaultResolver
func NewSystemResolver(collectors *metrics.Collectors, logger *zap.Logger) *SystemResolver {
	return &SystemResolver{
		resolver: net.DefaultResolver,
		metrics:  collectors,
		logger:   logger,
	}
}

// Resolve implements core.Resolver
func (r *SystemResolver) Resolve(ctx context.Context, host string) error {
	ascii, err := ValidateHostname(host)
	if err != nil {
		r.metrics.DNSFailure()
		return err
	}

	addrs, err := r.resolver.LookupHost(ctx, ascii)
	if err != nil || len(addrs) == 0 {
		r.metrics.DNSFailure()
		r.logger.Debug("DNS lookup failed", zap.String("host", ascii), zap.Error(err))
		return eris.Wrapf(ErrUnresolved, "%s", ascii)
	}
	return nil
}

// DirectResolver sends A and AAAA queries straight to configured servers
type DirectResolver struct {
	client  *dns.Client
	servers []string
	metrics *metrics.Collectors
	logger  *zap.Logger
}

// NewDirectResolver creates a resolver that queries servers (host or
// host:port). With no servers it falls back to /etc/resolv.conf.
func NewDirectResolver(servers []string, timeout time.Duration, collectors *metrics.Collectors, logger *zap.Logger) (*DirectResolver, error) {
	if len(servers) == 0 {
		conf, err := dns.ClientConfigFromFile("/etc/resolv.conf")
		if err != nil {
			return nil, eris.Wrap(err, "failed to read resolv.conf")
		}
		for _, s := range conf.Servers {
			servers = append(servers, net.JoinHostPort(s, conf.Port))
		}
	}
	if len(servers) == 0 {
		return nil, eris.New("no DNS servers configured")
	}

	normalized := make([]string, 0, len(servers))
	for _, s := range servers {
		if _, _, err := net.SplitHostPort(s); err != nil {
			s = net.JoinHostPort(s, "53")
		}
		normalized = append(normalized, s)
	}

	return &DirectResolver{
		client:  &dns.Client{Timeout: timeout},
		servers: normalized,
		metrics: collectors,
		logger:  logger,
	}, nil
}

// Resolve implements core.Resolver. Servers are tried in order until one
// gives an authoritative answer; NXDOMAIN stops the search.
func (r *DirectResolver) Resolve(ctx context.Context, host string) error {
	ascii, err := ValidateHostname(host)
	if err != nil {
		r.metrics.DNSFailure()
		return err
	}

	for _, qtype := range []uint16{dns.TypeA, dns.TypeAAAA} {
		found, err := r.query(ctx, ascii, qtype)
		if err != nil {
			r.metrics.DNSFailure()
			return err
		}
		if found {
			return nil
		}
	}

	r.metrics.DNSFailure()
	return eris.Wrapf(ErrUnresolved, "%s", ascii)
}

func (r *DirectResolver) query(ctx context.Context, host string, qtype uint16) (bool, error) {
	m := new(dns.Msg)
	m.SetQuestion(dns.Fqdn(host), qtype)

	var lastErr error
	for _, server := range r.servers {
		in, _, err := r.client.ExchangeContext(ctx, m, server)
		if err != nil {
			r.logger.Debug("DNS query failed",
				zap.String("host", host),
				zap.String("server", server),
				zap.Error(err))
			lastErr = err
			continue
		}

		switch in.Rcode {
		case dns.RcodeSuccess:
			return hasAddress(in.Answer), nil
		case dns.RcodeNameError:
			return false, eris.Wrapf(ErrUnresolved, "%s: NXDOMAIN", host)
		default:
			lastErr = eris.Errorf("%s from %s", dns.RcodeToString[in.Rcode], server)
		}
	}

	return false, eris.Wrapf(ErrUnresolved, "%s: %v", host, lastErr)
}

func hasAddress(answers []dns.RR) bool {
	for _, rr := range answers {
		switch rr.(type) {
		case *dns.A, *dns.AAAA:
			return true
		}
	}
	return false
}
