package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountCategory mirrors the category column of accounts.
type AccountCategory string

// Account represents a row of the accounts table.
type Account struct {
	AccountID    string          `db:"account_id"`
	Name         string          `db:"name"`
	Category     AccountCategory `db:"category"`
	CurrencyCode string          `db:"currency_code"`
	Description  string          `db:"description"`
	Balance      decimal.Decimal `db:"balance"`
	IsActive     bool            `db:"is_active"`
	IsDefault    bool            `db:"is_default"`
	DeletedAt    *time.Time      `db:"deleted_at"` // Nullable
	AuditFields
}
