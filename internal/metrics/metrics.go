package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Metrics groups the engine's collectors. Each instance owns its registry
// so tests can build as many as they like.
type Metrics struct {
	Registry *prometheus.Registry

	ReservationAttempts *prometheus.CounterVec
	ReservationDuration prometheus.Histogram
	Transitions         *prometheus.CounterVec
	SweepRuns           *prometheus.CounterVec
	SweptBookings       *prometheus.CounterVec
	HTTPRequests        *prometheus.CounterVec
}

func New() *Metrics {
	m := &Metrics{
		Registry: prometheus.NewRegistry(),
		ReservationAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "seat_reservation_attempts_total",
				Help: "Reservation transactions by outcome",
			},
			[]string{"outcome"},
		),
		ReservationDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "seat_reservation_duration_seconds",
				Help:    "Duration of the reservation transaction",
				Buckets: prometheus.ExponentialBuckets(0.005, 2, 12),
			},
		),
		Transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "booking_transitions_total",
				Help: "Booking status transitions by target status and outcome",
			},
			[]string{"to", "outcome"},
		),
		SweepRuns: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "expiry_sweep_runs_total",
				Help: "Expiry sweeper ticks by outcome",
			},
			[]string{"outcome"},
		),
		SweptBookings: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "expiry_swept_bookings_total",
				Help: "Bookings handled by the expiry sweeper by result",
			},
			[]string{"result"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "HTTP requests by route and status",
			},
			[]string{"method", "route", "status"},
		),
	}
	m.Registry.MustRegister(
		m.ReservationAttempts,
		m.ReservationDuration,
		m.Transitions,
		m.SweepRuns,
		m.SweptBookings,
		m.HTTPRequests,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}
