// Package metrics declares the prometheus instrument inventory.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Polling Metrics
var (
	// PollCyclesTotal tracks poll cycles by result
	PollCyclesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "poll_cycles_total",
			Help: "Total feed poll cycles by result (ok/error)",
		},
		[]string{"result"},
	)

	// FeedErrorsTotal tracks feed fetch failures by kind
	FeedErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_errors_total",
			Help: "Total feed fetch failures by kind (api/transport)",
		},
		[]string{"kind"},
	)

	// ActivePollLoops tracks the number of rooms with a running poll loop
	ActivePollLoops = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "active_poll_loops",
			Help: "Number of rooms with an active feed poll loop",
		},
	)
)

// Ingestion Metrics
var (
	// CommentsIngestedTotal tracks accepted comments by channel
	CommentsIngestedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "comments_ingested_total",
			Help: "Total comments accepted after dedup, by channel (dashboard/player)",
		},
		[]string{"channel"},
	)

	// ReactionsIngestedTotal tracks accepted reactions
	ReactionsIngestedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reactions_ingested_total",
			Help: "Total reactions accepted",
		},
	)
)

// Hub Metrics
var (
	// HubConnectedClients tracks connected WebSocket clients across all rooms
	HubConnectedClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "hub_connected_clients",
			Help: "Current number of connected WebSocket clients across all rooms",
		},
	)

	// HubSlowClientsEvicted tracks slow clients evicted due to a full buffer
	HubSlowClientsEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "hub_slow_clients_evicted_total",
			Help: "Total slow WebSocket clients evicted due to buffer full",
		},
	)
)

// WebSocket Connection Metrics
var (
	// WebSocketConnectionsTotal tracks connection attempts by result
	WebSocketConnectionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_connections_total",
			Help: "Total WebSocket connection attempts by result (success/error/rejected)",
		},
		[]string{"result"},
	)

	// WebSocketConnectionsRejected tracks rejected connection attempts by reason
	WebSocketConnectionsRejected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "websocket_connections_rejected_total",
			Help: "Total WebSocket connections rejected by reason (rate_limit/per_ip_limit/global_limit)",
		},
		[]string{"reason"},
	)
)

// Build Information Metrics
var (
	// BuildInfo is a gauge that always returns 1, with build metadata as labels
	BuildInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "build_info",
			Help: "Build information with version, commit, build_time, and go_version labels (value is always 1)",
		},
		[]string{"version", "commit", "build_time", "go_version"},
	)
)

// HTTP Error Metrics
// Note: http_errors_total{type} is provided by internal/errors package
