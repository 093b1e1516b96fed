// Package metrics defines and registers all custom Prometheus metrics for
// the StillMaster API. It is the single source of truth for metric names,
// labels, and help strings. Metrics register with the default registry at
// package init via promauto.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "stillmaster"

// --- Order metrics ---

// OrdersCreatedTotal counts orders that were persisted successfully.
var OrdersCreatedTotal = promauto.NewCounter(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_created_total",
		Help:      "Total number of orders created.",
	},
)

// OrdersRejectedTotal counts order creation attempts rejected by a
// business rule.
// Label:
//   - reason: "customer_not_found", "stock_not_found", "insufficient_stock"
var OrdersRejectedTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "orders_rejected_total",
		Help:      "Total number of order creation attempts rejected, by reason.",
	},
	[]string{"reason"},
)

// OrderCreationDuration measures order creation end-to-end, including
// stock reservation and persistence.
var OrderCreationDuration = promauto.NewHistogram(
	prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "order_creation_duration_seconds",
		Help:      "Duration of order creation from validation to persistence.",
		Buckets:   prometheus.DefBuckets,
	},
)

// --- Inventory metrics ---

// StockAdjustmentsTotal counts applied ledger adjustments.
// Labels:
//   - direction: "in" or "out"
//   - reason: movement reason (e.g. "order_created", "order_cancelled")
var StockAdjustmentsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stock_adjustments_total",
		Help:      "Total number of stock quantity adjustments applied, by direction and reason.",
	},
	[]string{"direction", "reason"},
)

// MovementQueueDepth tracks pending audit records per writer worker.
// Label:
//   - worker_id: numeric worker index (e.g. "0", "1", …)
var MovementQueueDepth = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "movement_queue_depth",
		Help:      "Current number of stock movements pending in each writer worker channel.",
	},
	[]string{"worker_id"},
)

// --- Auth metrics ---

// LoginAttemptsTotal counts login attempts.
// Label:
//   - result: "success" or "failure"
var LoginAttemptsTotal = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts, by result.",
	},
	[]string{"result"},
)
