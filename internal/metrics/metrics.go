package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tablebook",
			Name:      "http_requests_total",
			Help:      "HTTP requests by endpoint.",
		},
		[]string{"endpoint"},
	)

	bookings = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "tablebook",
			Name:      "bookings_total",
			Help:      "Booking attempts by outcome.",
		},
		[]string{"outcome"},
	)

	conflictsDetected = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tablebook",
			Name:      "conflicts_detected_total",
			Help:      "Reservations found blocking a candidate interval.",
		},
	)

	alternativesServed = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "tablebook",
			Name:      "alternatives_served_total",
			Help:      "Alternative slots returned to rejected requests.",
		},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, bookings, conflictsDetected, alternativesServed)
	})
}

// IncHTTP increments the counter for an endpoint label.
func IncHTTP(endpoint string) {
	httpRequests.WithLabelValues(endpoint).Inc()
}

// IncBooking counts a booking attempt outcome (allocated, rejected,
// conflict, lost_race, error).
func IncBooking(outcome string) {
	bookings.WithLabelValues(outcome).Inc()
}

// AddConflicts counts blocking reservations surfaced to callers.
func AddConflicts(n int) {
	conflictsDetected.Add(float64(n))
}

// AddAlternatives counts suggestions returned to callers.
func AddAlternatives(n int) {
	alternativesServed.Add(float64(n))
}
