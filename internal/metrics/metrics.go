// Package metrics exposes Prometheus collectors for the detector pipeline.
// All methods are safe on a nil *Collectors.
package metrics

import (
	"time"

	"github.com/mikey/phishing-detector/internal/core"
	"github.com/prometheus/client_golang/prometheus"
)

// WHOIS lookup outcomes
const (
	WhoisHit   = "hit"
	WhoisMiss  = "miss"
	WhoisError = "error"
)

// Collectors holds the registered metrics
type Collectors struct {
	assessments  *prometheus.CounterVec
	whoisLookups *prometheus.CounterVec
	dnsFailures  prometheus.Counter
	duration     prometheus.Histogram
}

// New creates the collectors and registers them with reg
func New(reg prometheus.Registerer) *Collectors {
	c := &Collectors{
		assessments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "phishing_detector",
			Name:      "assessments_total",
			Help:      "Messages assessed, by classification and risk level.",
		}, []string{"classification", "risk_level"}),
		whoisLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "phishing_detector",
			Name:      "whois_lookups_total",
			Help:      "WHOIS lookups, by outcome.",
		}, []string{"outcome"}),
		dnsFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "phishing_detector",
			Name:      "dns_failures_total",
			Help:      "Hostnames that did not resolve.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "phishing_detector",
			Name:      "assessment_duration_seconds",
			Help:      "Time taken to assess one message.",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.5, 1, 2, 5, 10, 30},
		}),
	}

	reg.MustRegister(c.assessments, c.whoisLookups, c.dnsFailures, c.duration)
	return c
}

// ObserveAssessment records a finished assessment
func (c *Collectors) ObserveAssessment(report *core.RiskReport, elapsed time.Duration) {
	if c == nil || report == nil {
		return
	}
	c.assessments.WithLabelValues(string(report.Classification), string(report.RiskLevel)).Inc()
	c.duration.Observe(elapsed.Seconds())
}

// WhoisLookup records a WHOIS lookup outcome
func (c *Collectors) WhoisLookup(outcome string) {
	if c == nil {
		return
	}
	c.whoisLookups.WithLabelValues(outcome).Inc()
}

// DNSFailure records a hostname that did not resolve
func (c *Collectors) DNSFailure() {
	if c == nil {
		return
	}
	c.dnsFailures.Inc()
}
