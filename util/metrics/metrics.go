package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CheckoutInitiated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rentall_checkout_initiated_total",
		Help: "Checkout requests forwarded to the payment gateway",
	})

	// Reconcile outcomes: reserved, replay, rejected, conflict_aborted, error.
	ReconcileOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "rentall_reconcile_total",
		Help: "Payment reconciliation outcomes",
	}, []string{"outcome"})

	CartConflicts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "rentall_cart_conflicts_total",
		Help: "Availability conflicts detected during cart validation",
	})
)
