// Package metrics provides Prometheus instrumentation for the moderation
// bot. It exposes counters for webhook and enforcement throughput, a
// histogram for decision latency, and a gauge for connected feed clients.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// UpdatesTotal counts webhook requests by outcome: "ok", "forbidden",
	// or "bad_request".
	UpdatesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "modbot_updates_total",
		Help: "Total webhook updates received",
	}, []string{"outcome"})

	// MessagesTotal counts evaluated messages by gate result: "checked"
	// (probation or always-moderate, matcher ran) or "trusted" (past the
	// window, passed through).
	MessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "modbot_messages_total",
		Help: "Total messages evaluated, by gate outcome",
	}, []string{"gate"})

	// EnforcementsTotal counts messages that matched a keyword and were
	// dispatched for deletion.
	EnforcementsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "modbot_enforcements_total",
		Help: "Total messages dispatched for deletion",
	})

	// DeletionsTotal counts deletions the enforcer completed, by result:
	// "ok" or "error".
	DeletionsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "modbot_deletions_total",
		Help: "Total delete calls performed by the enforcer",
	}, []string{"result"})

	// DecisionLatency records end-to-end decision latency (counter +
	// matcher) in seconds.
	DecisionLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "modbot_decision_latency_seconds",
		Help:    "Moderation decision latency in seconds",
		Buckets: []float64{.0005, .001, .005, .01, .025, .05, .1, .25, .5, 1},
	})

	// CounterFailures counts probation-store errors. Each one is a message
	// that passed through unfiltered under the fail-open policy.
	CounterFailures = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "modbot_counter_failures_total",
		Help: "Probation counter store failures (messages passed through)",
	})

	// FeedClients tracks connected operator feed WebSocket clients.
	FeedClients = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "modbot_feed_clients",
		Help: "Currently connected operator feed clients",
	})
)

func init() {
	prometheus.MustRegister(
		UpdatesTotal,
		MessagesTotal,
		EnforcementsTotal,
		DeletionsTotal,
		DecisionLatency,
		CounterFailures,
		FeedClients,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}
