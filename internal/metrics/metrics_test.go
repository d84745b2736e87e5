package metrics

import (
	"testing"
	"time"

	"github.com/mikey/phishing-detector/internal/core"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCollectors(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.ObserveAssessment(&core.RiskReport{Classification: core.ClassificationPhishing, RiskLevel: core.RiskHigh}, time.Second)
	c.WhoisLookup(WhoisHit)
	c.WhoisLookup(WhoisHit)
	c.WhoisLookup(WhoisError)
	c.DNSFailure()

	assert.Equal(t, 1.0, testutil.ToFloat64(c.assessments.WithLabelValues("PHISHING", "HIGH")))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.whoisLookups.WithLabelValues(WhoisHit)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.whoisLookups.WithLabelValues(WhoisError)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.dnsFailures))
	assert.Equal(t, 1, testutil.CollectAndCount(c.duration))
}

func TestNilCollectorsAreNoops(t *testing.T) {
	var c *Collectors

	assert.NotPanics(t, func() {
		c.ObserveAssessment(&core.RiskReport{}, time.Second)
		c.WhoisLookup(WhoisMiss)
		c.DNSFailure()
	})
}
