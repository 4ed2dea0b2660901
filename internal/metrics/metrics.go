// Package metrics registers the Prometheus collectors shared by the events
// API and the desk.
package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventdesk_http_requests_total",
			Help: "HTTP requests by server, method, route and status",
		},
		[]string{"server", "method", "route", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventdesk_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"server", "route"},
	)

	GatewayCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventdesk_gateway_calls_total",
			Help: "Calls from the desk to the events API by operation and outcome",
		},
		[]string{"op", "outcome"},
	)

	GatewayCallDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "eventdesk_gateway_call_duration_seconds",
			Help:    "Duration of calls to the events API",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"op"},
	)

	ListingFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "eventdesk_listing_fallbacks_total",
			Help: "Fallbacks from the full listing to the scoped listing by result",
		},
		[]string{"result"},
	)

	DeskSessionsOpen = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "eventdesk_desk_sessions_open",
			Help: "Desk sessions opened and not yet closed by this process",
		},
	)
)

func init() {
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
	prometheus.MustRegister(GatewayCallsTotal)
	prometheus.MustRegister(GatewayCallDuration)
	prometheus.MustRegister(ListingFallbacksTotal)
	prometheus.MustRegister(DeskSessionsOpen)
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveRequest records one served HTTP request.
func ObserveRequest(server, method, route string, status int, elapsed time.Duration) {
	HTTPRequestsTotal.WithLabelValues(server, method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(server, route).Observe(elapsed.Seconds())
}

// ObserveGatewayCall records one call to the events API.
func ObserveGatewayCall(op, outcome string, elapsed time.Duration) {
	GatewayCallsTotal.WithLabelValues(op, outcome).Inc()
	GatewayCallDuration.WithLabelValues(op).Observe(elapsed.Seconds())
}
