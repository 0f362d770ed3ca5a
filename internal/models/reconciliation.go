package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// DailyCashReconciliation represents a row of the daily_cash_reconciliations table.
type DailyCashReconciliation struct {
	ReconciliationID      string              `db:"reconciliation_id"`
	AccountID             string              `db:"account_id"`
	BusinessDate          time.Time           `db:"business_date"`
	OpenedAt              time.Time           `db:"opened_at"`
	OpeningSystemBalance  decimal.Decimal     `db:"opening_system_balance"`
	OpeningCountedBalance decimal.NullDecimal `db:"opening_counted_balance"`
	OpeningVariance       decimal.NullDecimal `db:"opening_variance"`
	OpeningNotes          string              `db:"opening_notes"`
	ClosedAt              *time.Time          `db:"closed_at"`
	ClosingSystemBalance  decimal.NullDecimal `db:"closing_system_balance"`
	ClosingCountedBalance decimal.NullDecimal `db:"closing_counted_balance"`
	ClosingVariance       decimal.NullDecimal `db:"closing_variance"`
	ClosingNotes          string              `db:"closing_notes"`
	AuditFields
}
