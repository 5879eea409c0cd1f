package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "donation_portal"

var (
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of HTTP requests",
	}, []string{"method", "route", "status_code"})

	DonationsSubmitted = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "donations_submitted_total",
		Help:      "Donations broadcast to the chain",
	}, []string{"chain_id", "asset_kind"})

	ValidationFailures = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "donation_validation_failures_total",
		Help:      "Donation requests rejected before dispatch",
	}, []string{"kind"})

	LifecycleTransitions = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "lifecycle_transitions_total",
		Help:      "Transaction lifecycle transitions",
	}, []string{"kind", "state"})

	PriceFeedRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "price_feed_requests_total",
		Help:      "Outbound price feed lookups by result",
	}, []string{"result"})
)

func collectorsList() []prometheus.Collector {
	return []prometheus.Collector{
		HTTPRequestDuration,
		DonationsSubmitted,
		ValidationFailures,
		LifecycleTransitions,
		PriceFeedRequests,
	}
}

// NewHandler builds a registry with the go/process collectors and the service metrics.
func NewHandler() http.Handler {
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	for _, c := range collectorsList() {
		registry.MustRegister(c)
	}
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// ChainLabel formats a chain id for use as a label value.
func ChainLabel(chainID uint64) string {
	return strconv.FormatUint(chainID, 10)
}
