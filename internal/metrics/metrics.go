// Package metrics declares the Prometheus instrumentation for the session,
// room, matchmaking, call-signaling, router, rate-limit, and Redis bus
// subsystems. Of these, only the session gauge (internal/transport), the
// circuit-breaker metrics (internal/bus), and the rate-limit counters
// (internal/ratelimit) are updated elsewhere in the service; the room,
// matchmaker, call, router, and redis metrics are registered and exported
// but nothing sets them.
//
// Naming convention: namespace_subsystem_name
//   - namespace: strangerchat (application-level grouping)
//   - subsystem: session, room, matchmaker, call, router, circuit_breaker,
//     ratelimit, redis
//   - name: specific metric
//
// Metric types:
//   - Gauge: current state (active sessions, queue depth, active pairs)
//   - Counter: cumulative events (messages routed, errors)
//   - Histogram: latency distributions (event processing time)
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveSessions tracks the current number of live connections.
	ActiveSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "strangerchat",
		Subsystem: "session",
		Name:      "active",
		Help:      "Current number of live sessions",
	})

	// ActiveRooms tracks the current number of non-empty regular rooms.
	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "strangerchat",
		Subsystem: "room",
		Name:      "active",
		Help:      "Current number of active regular rooms",
	})

	// RoomMembers tracks membership count per regular room.
	RoomMembers = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "strangerchat",
		Subsystem: "room",
		Name:      "members",
		Help:      "Number of members in each regular room",
	}, []string{"room"})

	// MatchmakerQueueDepth tracks the size of the general and interest queues.
	MatchmakerQueueDepth = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "strangerchat",
		Subsystem: "matchmaker",
		Name:      "queue_depth",
		Help:      "Current depth of a waiting queue",
	}, []string{"queue"})

	// ActivePairs tracks the number of active stranger pairings.
	ActivePairs = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "strangerchat",
		Subsystem: "matchmaker",
		Name:      "active_pairs",
		Help:      "Current number of active stranger pairings",
	})

	// PairsFormed counts successful pairings since start.
	PairsFormed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "strangerchat",
		Subsystem: "matchmaker",
		Name:      "pairs_formed_total",
		Help:      "Total stranger pairings formed",
	})

	// ActiveCalls tracks the number of live calls by kind.
	ActiveCalls = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "strangerchat",
		Subsystem: "call",
		Name:      "active",
		Help:      "Current number of active calls",
	}, []string{"kind"})

	// SignalsForwarded counts WebRTC signaling payloads relayed.
	SignalsForwarded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "strangerchat",
		Subsystem: "call",
		Name:      "signals_forwarded_total",
		Help:      "Total WebRTC signaling payloads forwarded",
	}, []string{"event", "status"})

	// EventsRouted counts inbound events processed by the router.
	EventsRouted = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "strangerchat",
		Subsystem: "router",
		Name:      "events_total",
		Help:      "Total inbound events processed",
	}, []string{"event", "status"})

	// EventProcessingDuration tracks router handling latency per event type.
	EventProcessingDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "strangerchat",
		Subsystem: "router",
		Name:      "event_duration_seconds",
		Help:      "Time spent processing an inbound event",
		Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
	}, []string{"event"})

	// CircuitBreakerState tracks the redis bus circuit breaker state.
	// 0: Closed (healthy), 1: Open (failing), 2: Half-Open (recovering)
	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "strangerchat",
		Subsystem: "circuit_breaker",
		Name:      "state",
		Help:      "Current state of the circuit breaker (0: Closed, 1: Open, 2: Half-Open)",
	}, []string{"service"})

	// CircuitBreakerFailures counts requests rejected by an open breaker.
	CircuitBreakerFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "strangerchat",
		Subsystem: "circuit_breaker",
		Name:      "failures_total",
		Help:      "Total requests rejected by the circuit breaker",
	}, []string{"service"})

	// RateLimitExceeded counts requests over the configured rate.
	RateLimitExceeded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "strangerchat",
		Subsystem: "ratelimit",
		Name:      "exceeded_total",
		Help:      "Total requests that exceeded the rate limit",
	}, []string{"endpoint", "reason"})

	// RateLimitRequests counts requests checked against a limiter.
	RateLimitRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "strangerchat",
		Subsystem: "ratelimit",
		Name:      "requests_total",
		Help:      "Total requests checked against the rate limiter",
	}, []string{"endpoint"})

	// RedisOperationsTotal counts bus operations by outcome.
	RedisOperationsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "strangerchat",
		Subsystem: "redis",
		Name:      "operations_total",
		Help:      "Total number of Redis bus operations",
	}, []string{"operation", "status"})

	// RedisOperationDuration tracks bus operation latency.
	RedisOperationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "strangerchat",
		Subsystem: "redis",
		Name:      "operation_duration_seconds",
		Help:      "Duration of Redis bus operations",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})
)

// IncSession records a new session connecting.
func IncSession() {
	ActiveSessions.Inc()
}

// DecSession records a session disconnecting.
func DecSession() {
	ActiveSessions.Dec()
}
