// Package metrics defines the service's Prometheus instruments. Standalone
// package so HTTP, linker and provider code can share them without import
// cycles.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	HandshakesStarted = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auth_handshakes_started_total",
		Help: "Three-legged OAuth handshakes started",
	})

	// Outcome: "ok" | "invalid_handshake" | "provider_error".
	HandshakesCompleted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "auth_handshakes_completed_total",
		Help: "Handshake callbacks processed, by outcome",
	}, []string{"outcome"})

	ProviderRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "auth_provider_request_duration_seconds",
		Help:    "Latency of outbound provider calls",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider", "op"})

	// Persistence failures after the response was already sent. Anything
	// here means a linked account write was lost.
	DetachedPersistFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "auth_detached_persist_failures_total",
		Help: "Failed fire-and-forget persistence operations",
	})
)

// Register registers all instruments on the given registry (or the default
// if nil). Already-registered instruments are tolerated so tests can call
// this repeatedly.
func Register(reg prometheus.Registerer) error {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	for _, c := range []prometheus.Collector{
		HandshakesStarted,
		HandshakesCompleted,
		ProviderRequestDuration,
		DetachedPersistFailures,
	} {
		if err := reg.Register(c); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); !ok {
				return err
			}
		}
	}
	return nil
}
