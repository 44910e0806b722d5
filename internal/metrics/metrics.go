// Package metrics holds the Prometheus collectors shared by the warehouse
// service and the simulator.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FeedPolls = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warehouse_feed_polls_total",
		Help: "Total number of change feed polls, labelled by feed and result.",
	}, []string{"feed", "result"})

	FeedDeliveries = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warehouse_feed_deliveries_total",
		Help: "Total number of snapshots delivered to subscribers, labelled by feed.",
	}, []string{"feed"})

	FeedPollDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "warehouse_feed_poll_duration_seconds",
		Help:    "Duration of a single change feed fetch.",
		Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
	}, []string{"feed"})

	Upserts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warehouse_upserts_total",
		Help: "Total number of entity upserts, labelled by entity type and outcome.",
	}, []string{"type", "outcome"})

	NormalizeFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warehouse_normalize_failures_total",
		Help: "Total number of attributes replaced by a default during normalization.",
	}, []string{"type", "field"})

	SimulatorTicks = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warehouse_simulator_ticks_total",
		Help: "Total number of simulator ticks, labelled by result.",
	}, []string{"result"})

	SimulatorAlerts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "warehouse_simulator_alerts_total",
		Help: "Total number of alerts raised by the simulator.",
	})

	WebSocketClients = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "warehouse_websocket_clients",
		Help: "Current number of connected WebSocket clients.",
	})

	HTTPRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "warehouse_http_requests_total",
		Help: "Total number of API requests, labelled by method, route and status code.",
	}, []string{"method", "route", "status"})

	ComponentUp = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "warehouse_component_up",
		Help: "Result of the last health probe per component (1 healthy, 0 unreachable).",
	}, []string{"component"})
)

// Poll results.
const (
	ResultOK    = "ok"
	ResultError = "error"
)
