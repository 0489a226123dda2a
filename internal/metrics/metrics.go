// Package metrics defines the Prometheus collectors for outbound provider calls.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Provider calls by provider (geocode, directions, tiles) and outcome.
	ProviderRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tourmap",
		Subsystem: "provider",
		Name:      "requests_total",
		Help:      "Total outbound provider requests",
	}, []string{"provider", "outcome"})

	ProviderDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "tourmap",
		Subsystem: "provider",
		Name:      "request_duration_seconds",
		Help:      "Outbound provider request latency in seconds",
		Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"provider"})

	TilesPerStitch = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "tourmap",
		Subsystem: "stitch",
		Name:      "tiles",
		Help:      "Number of tiles in a stitched raster",
		Buckets:   prometheus.ExponentialBuckets(1, 2, 9),
	})

	RendersTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "tourmap",
		Subsystem: "pipeline",
		Name:      "renders_total",
		Help:      "Total route map renders by result shape and outcome",
	}, []string{"shape", "outcome"})
)

// Outcome labels.
const (
	OutcomeOK    = "ok"
	OutcomeError = "error"
)

// ObserveProvider records one outbound call.
func ObserveProvider(provider string, start time.Time, err error) {
	ProviderDuration.WithLabelValues(provider).Observe(time.Since(start).Seconds())

	outcome := OutcomeOK
	if err != nil {
		outcome = OutcomeError
	}
	ProviderRequests.WithLabelValues(provider, outcome).Inc()
}

// Handler exposes the default registry.
func Handler() http.Handler {
	return promhttp.Handler()
}
