// Package metrics provides Prometheus instrumentation for the SkillSwap
// backend. It exposes gauges for connection and chat counts, counters for
// message and match throughput, and histograms for latency tracking.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// ConnectionsTotal tracks the current number of active WebSocket connections.
	ConnectionsTotal = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "skillswap_connections_total",
		Help: "Current number of active WebSocket connections",
	})

	// MessagesTotal counts the total number of chat messages processed, labeled
	// by type: "sent", "received", or "rejected".
	MessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "skillswap_messages_total",
		Help: "Total number of chat messages processed",
	}, []string{"type"}) // type = "sent", "received", "rejected"

	// MessageLatency records message relay latency in seconds.
	MessageLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "skillswap_message_latency_seconds",
		Help:    "Message relay latency in seconds",
		Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	})

	// MatchComputeDuration records the time taken to score a user against the
	// full candidate pool.
	MatchComputeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "skillswap_match_compute_duration_seconds",
		Help:    "Time taken to compute ranked matches for one user",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	})

	// MatchRefreshTotal counts match recompute requests, labeled by outcome:
	// "ok" or "error".
	MatchRefreshTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "skillswap_match_refresh_total",
		Help: "Total number of match recompute requests",
	}, []string{"outcome"}) // outcome = "ok", "error"

	// ActiveChats tracks the current number of matches with an open chat relay.
	ActiveChats = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "skillswap_active_chats",
		Help: "Current number of matches with an open chat relay",
	})

	// ReportsTotal counts abuse reports filed, labeled by reason.
	ReportsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "skillswap_reports_total",
		Help: "Total number of abuse reports filed",
	}, []string{"reason"})

	// SuspensionsTotal counts automatic account suspensions.
	SuspensionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "skillswap_suspensions_total",
		Help: "Total number of automatic account suspensions",
	})

	// HTTPRequestDuration records API request latency, labeled by route and
	// status code class.
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "skillswap_http_request_duration_seconds",
		Help:    "HTTP API request latency in seconds",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5},
	}, []string{"route", "code"})
)

func init() {
	prometheus.MustRegister(
		ConnectionsTotal,
		MessagesTotal,
		MessageLatency,
		MatchComputeDuration,
		MatchRefreshTotal,
		ActiveChats,
		ReportsTotal,
		SuspensionsTotal,
		HTTPRequestDuration,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
