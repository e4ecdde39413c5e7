// Package metrics holds the Prometheus collectors for marketplace activity.
// HTTP traffic is instrumented separately by middleware.Metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	BookingsCreated = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutor_bookings_created_total",
			Help: "Bookings created, by requester role.",
		},
		[]string{"role"},
	)

	BookingConflicts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tutor_booking_conflicts_total",
			Help: "Booking requests rejected because the tutor was already booked.",
		},
	)

	BookingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tutor_booking_transitions_total",
			Help: "Booking status transitions, by source and target status.",
		},
		[]string{"from", "to"},
	)

	ReviewsCreated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tutor_reviews_created_total",
			Help: "Reviews submitted for completed bookings.",
		},
	)

	MessagesSent = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tutor_messages_sent_total",
			Help: "Direct messages persisted.",
		},
	)

	// RealtimeDropped counts events discarded because a client buffer was full.
	RealtimeDropped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "tutor_realtime_events_dropped_total",
			Help: "Realtime events dropped for slow websocket clients.",
		},
	)

	RealtimeConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "tutor_realtime_connections",
			Help: "Open websocket connections.",
		},
	)
)

func init() {
	prometheus.MustRegister(
		BookingsCreated,
		BookingConflicts,
		BookingTransitions,
		ReviewsCreated,
		MessagesSent,
		RealtimeDropped,
		RealtimeConnections,
	)
}
