// Package observability provides Prometheus metrics for monitoring.
package observability

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the application.
type Metrics struct {
	// Decision metrics
	DecisionsTotal   *prometheus.CounterVec
	ConfidenceScore  *prometheus.HistogramVec
	GateConfirmed    *prometheus.CounterVec
	PriceSpread      *prometheus.GaugeVec
	PriceUnavailable *prometheus.CounterVec

	// Execution metrics
	ExecutionsTotal   *prometheus.CounterVec
	ExecutionDuration prometheus.Histogram
	BreakerOpen       prometheus.Gauge
	BreakerFailures   prometheus.Gauge

	// Cycle metrics
	CyclesTotal      *prometheus.CounterVec
	CycleDuration    prometheus.Histogram
	LastCycleSuccess prometheus.Gauge

	// Upstream metrics
	UpstreamLatency *prometheus.HistogramVec
	UpstreamErrors  *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = "bnb_arb_agent"
	}

	return &Metrics{
		DecisionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "decision",
			Name:      "decisions_total",
			Help:      "Total decisions produced by token and action",
		}, []string{"token", "action"}),
		ConfidenceScore: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "decision",
			Name:      "confidence_score",
			Help:      "Confidence score distribution by token",
			Buckets:   prometheus.LinearBuckets(0, 10, 11),
		}, []string{"token"}),
		GateConfirmed: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "decision",
			Name:      "gate_confirmed_total",
			Help:      "Arbitrage gate outcomes by token and result",
		}, []string{"token", "confirmed"}),
		PriceSpread: promauto.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "price",
			Name:      "spread_fraction",
			Help:      "Latest CEX/DEX price spread as a fraction",
		}, []string{"token"}),
		PriceUnavailable: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "price",
			Name:      "unavailable_total",
			Help:      "Cycles where a price side was unavailable",
		}, []string{"token", "side"}),

		ExecutionsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "execution",
			Name:      "attempts_total",
			Help:      "Execution attempts by token and terminal status",
		}, []string{"token", "status"}),
		ExecutionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "execution",
			Name:      "duration_seconds",
			Help:      "Wall time of one execution attempt",
			Buckets:   prometheus.ExponentialBuckets(0.1, 2, 10),
		}),
		BreakerOpen: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "execution",
			Name:      "breaker_open",
			Help:      "1 when the circuit breaker is open",
		}),
		BreakerFailures: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "execution",
			Name:      "breaker_consecutive_failures",
			Help:      "Current consecutive failure count",
		}),

		CyclesTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cycle",
			Name:      "runs_total",
			Help:      "Decision cycles by status",
		}, []string{"status"}),
		CycleDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "cycle",
			Name:      "duration_seconds",
			Help:      "Wall time of one full decision cycle",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 10),
		}),
		LastCycleSuccess: promauto.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "cycle",
			Name:      "last_success_timestamp_seconds",
			Help:      "Unix time of the last successful cycle",
		}),

		UpstreamLatency: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "request_duration_seconds",
			Help:      "Latency of upstream calls by source",
			Buckets:   prometheus.ExponentialBuckets(0.05, 2, 10),
		}, []string{"source"}),
		UpstreamErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "upstream",
			Name:      "errors_total",
			Help:      "Upstream call failures by source",
		}, []string{"source"}),
	}
}

// Handler returns an HTTP handler for the /metrics endpoint.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveBreaker mirrors a breaker snapshot into the gauges.
func (m *Metrics) ObserveBreaker(isOpen bool, failures int) {
	if isOpen {
		m.BreakerOpen.Set(1)
	} else {
		m.BreakerOpen.Set(0)
	}
	m.BreakerFailures.Set(float64(failures))
}
