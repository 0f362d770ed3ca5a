// Package metrics holds the Prometheus collectors of the ledger.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "shop_ledger"

// HTTPRequestDuration observes request latency per route and status.
var HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "Latency of HTTP requests.",
	Buckets:   prometheus.DefBuckets,
}, []string{"method", "route", "status"})

// MovementsRecorded counts movements written to the log by kind.
var MovementsRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "ledger",
	Name:      "movements_recorded_total",
	Help:      "Movements recorded by kind.",
}, []string{"kind"})

// MovementCorrections counts amount edits and voids.
var MovementCorrections = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "ledger",
	Name:      "movement_corrections_total",
	Help:      "Movement amount edits and voids.",
}, []string{"operation"})

// BalanceAdjustments counts balance mutations applied to accounts.
var BalanceAdjustments = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "ledger",
	Name:      "balance_adjustments_total",
	Help:      "Account balance adjustments applied.",
})

// TransfersProcessed counts transfer state transitions.
var TransfersProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "ledger",
	Name:      "transfers_total",
	Help:      "Transfers by resulting status.",
}, []string{"status"})

// NotesApplied counts applied notes by side.
var NotesApplied = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "allocation",
	Name:      "notes_applied_total",
	Help:      "Credit and debit notes applied.",
}, []string{"side"})

// AllocationRemainders counts applications that left a standing balance.
var AllocationRemainders = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "allocation",
	Name:      "remainders_total",
	Help:      "Note applications that left a standing remainder.",
}, []string{"side"})

// Reconciliations counts reconciliation rows opened and closed.
var Reconciliations = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "reconciliation",
	Name:      "operations_total",
	Help:      "Reconciliation opens and closes.",
}, []string{"operation"})

// StatementsComposed counts cash-flow statements by basis.
var StatementsComposed = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "reporting",
	Name:      "cashflow_statements_total",
	Help:      "Cash-flow statements composed by basis.",
}, []string{"basis"})

// BalanceSheetDifference exposes the last computed accounting difference.
var BalanceSheetDifference = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: namespace,
	Subsystem: "reporting",
	Name:      "balance_sheet_difference",
	Help:      "Assets minus liabilities and equity of the last balance sheet.",
})
