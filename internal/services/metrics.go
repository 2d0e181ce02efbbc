package services

import "github.com/prometheus/client_golang/prometheus"

var (
	// bookingTransitions counts applied booking status changes.
	bookingTransitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salon_booking_transitions_total",
			Help: "Booking status changes applied, by source and target status.",
		},
		[]string{"from", "to"},
	)

	// ratingRecomputes counts rating aggregate recomputations by trigger.
	ratingRecomputes = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "salon_rating_recomputes_total",
			Help: "Salon rating recomputations, by triggering review operation.",
		},
		[]string{"trigger"},
	)
)

func init() {
	prometheus.MustRegister(bookingTransitions, ratingRecomputes)
}
