package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	bookingsCreated = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bookings_created_total",
			Help: "Total bookings created",
		},
	)

	bookingTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booking_status_transitions_total",
			Help: "Booking status transitions by target status",
		},
		[]string{"to"},
	)

	paymentOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "payment_operations_total",
			Help: "Payment operations by kind and outcome",
		},
		[]string{"operation", "outcome"},
	)

	paymentAmounts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "payment_amount_subunits",
			Help:    "Charge amounts in currency subunits",
			Buckets: prometheus.ExponentialBuckets(10000, 4, 8),
		},
	)

	reconcilerRepairs = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reconciler_repairs_total",
			Help: "Bookings repaired by the payment reconciler",
		},
	)

	reconcilerRuns = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "reconciler_runs_total",
			Help: "Reconciler sweep executions",
		},
	)
)

func TrackBookingCreated() {
	bookingsCreated.Inc()
}

func TrackBookingTransition(to string) {
	bookingTransitions.WithLabelValues(to).Inc()
}

func TrackPaymentOperation(operation, outcome string) {
	paymentOperations.WithLabelValues(operation, outcome).Inc()
}

func TrackPaymentAmount(subunits int64) {
	paymentAmounts.Observe(float64(subunits))
}

func TrackReconcilerRun(repaired int) {
	reconcilerRuns.Inc()
	reconcilerRepairs.Add(float64(repaired))
}
