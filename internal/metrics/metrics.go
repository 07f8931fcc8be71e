// Package metrics exposes Prometheus metrics for the auth flow.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector implements services.AuthMetrics on Prometheus.
type Collector struct {
	attempts           *prometheus.CounterVec
	registrationRetry  prometheus.Counter
	passwordVerifyTime prometheus.Histogram
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		attempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "storefront_auth_attempts_total",
			Help: "Authentication attempts by method and outcome.",
		}, []string{"method", "outcome"}),
		registrationRetry: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "storefront_auth_registration_retries_total",
			Help: "Retries of the passwordless registration-then-login composite.",
		}),
		passwordVerifyTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "storefront_auth_password_verify_seconds",
			Help:    "Time spent comparing a password against its stored hash.",
			Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1},
		}),
	}

	reg.MustRegister(c.attempts, c.registrationRetry, c.passwordVerifyTime)
	return c
}

func (c *Collector) RecordAttempt(method, outcome string) {
	c.attempts.WithLabelValues(method, outcome).Inc()
}

func (c *Collector) RecordRegistrationRetry() {
	c.registrationRetry.Inc()
}

func (c *Collector) ObservePasswordVerify(d time.Duration) {
	c.passwordVerifyTime.Observe(d.Seconds())
}

// Handler returns the scrape handler for gatherer.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
