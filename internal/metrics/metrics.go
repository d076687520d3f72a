// Package metrics defines the Prometheus instruments exported by FARMA.
//
// Instruments are registered on the default registry at package init via
// promauto and served by the API server on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recommendation outcomes.
const (
	OutcomeFound = "found"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
)

// Geo lookup results.
const (
	GeoResultHit      = "hit"
	GeoResultMiss     = "miss"
	GeoResultError    = "error"
	GeoResultRejected = "rejected"
)

var (
	// Conversation metrics
	ChatTurns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farma_chat_turns_total",
			Help: "Total number of processed chat turns by the state the turn started in",
		},
		[]string{"state"},
	)

	StateTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farma_state_transitions_total",
			Help: "Total number of conversation state transitions",
		},
		[]string{"from", "to"},
	)

	ConversationResets = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "farma_conversation_resets_total",
			Help: "Total number of conversations reset by keyword",
		},
	)

	// Recommendation metrics
	Recommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farma_recommendations_total",
			Help: "Total number of recommendation runs by outcome",
		},
		[]string{"outcome"}, // "found", "empty", "error"
	)

	RecommendationDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "farma_recommendation_duration_seconds",
			Help:    "Duration of recommendation engine runs in seconds",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Geo lookup metrics
	GeoLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farma_geo_lookups_total",
			Help: "Total number of geo lookups by kind and result",
		},
		[]string{"kind", "result"}, // kind: "reverse", "search"
	)

	GeoCircuitState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "farma_geo_circuit_state",
			Help: "Geo lookup circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
	)

	// Session metrics
	SessionsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "farma_sessions_active",
			Help: "Current number of stored chat sessions",
		},
	)

	SessionsEvicted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "farma_sessions_evicted_total",
			Help: "Total number of chat sessions removed for inactivity",
		},
	)

	// SMS channel metrics
	SMSMessages = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "farma_sms_messages_total",
			Help: "Total number of SMS channel messages by direction and result",
		},
		[]string{"direction", "result"}, // direction: "inbound", "outbound"
	)
)
