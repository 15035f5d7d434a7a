// Package metrics declares the room server's Prometheus instruments.
//
// Naming convention, mirroring the teacher's internal/v1/metrics/metrics.go:
// namespace_subsystem_name, where namespace groups the whole application,
// subsystem groups one feature area, and name is the specific metric.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveRooms counts the rooms created since the server started; rooms
	// are never retired, so it does not go down when a room empties.
	ActiveRooms = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "ember",
		Subsystem: "room",
		Name:      "rooms_active",
		Help:      "Current number of active rooms",
	})

	// ConnectedSessions tracks the current number of sessions joined to
	// any room (Gauge - current state).
	ConnectedSessions = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "ember",
		Subsystem: "room",
		Name:      "sessions_connected",
		Help:      "Current number of connected sessions across all rooms",
	})

	// RoomSessions tracks the number of sessions joined to each room
	// (GaugeVec keyed by room name - current state per room).
	RoomSessions = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: "ember",
		Subsystem: "room",
		Name:      "room_sessions",
		Help:      "Current number of sessions joined to each room",
	}, []string{"room"})

	// MessagesSent tracks the total number of chat messages accepted by
	// Cmd::Send (CounterVec - cumulative).
	MessagesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ember",
		Subsystem: "room",
		Name:      "messages_sent_total",
		Help:      "Total chat messages accepted",
	}, []string{"room"})

	// RateLimitExceeded tracks the total number of Cmd::Send packets
	// rejected by internal/ratelimit (CounterVec - cumulative).
	RateLimitExceeded = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "ember",
		Subsystem: "ratelimit",
		Name:      "send_rejected_total",
		Help:      "Total Send commands rejected for exceeding the rate limit",
	}, []string{"room"})
)

// RoomCreated records a new room entering the registry. The registry
// never retires a room once created, so ActiveRooms only grows for the
// life of the process; it still answers "how many distinct rooms has
// this server hosted since start."
func RoomCreated() {
	ActiveRooms.Inc()
}

// SessionJoined records a session joining room.
func SessionJoined(room string) {
	ConnectedSessions.Inc()
	RoomSessions.WithLabelValues(room).Inc()
}

// SessionParted records a session leaving room.
func SessionParted(room string) {
	ConnectedSessions.Dec()
	RoomSessions.WithLabelValues(room).Dec()
}

// MessageSent records one accepted chat message in room.
func MessageSent(room string) {
	MessagesSent.WithLabelValues(room).Inc()
}

// SendRateLimited records one Send command rejected for exceeding the
// rate limit in room.
func SendRateLimited(room string) {
	RateLimitExceeded.WithLabelValues(room).Inc()
}
