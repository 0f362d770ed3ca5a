package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// AccountCategory classifies where the money of a financial account physically lives.
type AccountCategory string

const (
	CategoryCash        AccountCategory = "CASH"
	CategoryBank        AccountCategory = "BANK"
	CategoryMobileMoney AccountCategory = "MOBILE_MONEY"
	CategorySavings     AccountCategory = "SAVINGS"
)

// IsValid reports whether c is a known category.
func (c AccountCategory) IsValid() bool {
	switch c {
	case CategoryCash, CategoryBank, CategoryMobileMoney, CategorySavings:
		return true
	}
	return false
}

// Account represents a financial account holding a running balance.
// Balance is the algebraic sum of every effective movement and completed transfer leg applied to it.
type Account struct {
	AccountID    string          `json:"accountID"`
	Name         string          `json:"name"`
	Category     AccountCategory `json:"category"`
	CurrencyCode string          `json:"currencyCode"`
	Description  string          `json:"description"`
	Balance      decimal.Decimal `json:"balance"`
	IsActive     bool            `json:"isActive"`
	IsDefault    bool            `json:"isDefault"`
	DeletedAt    *time.Time      `json:"deletedAt,omitempty"`
	AuditFields
}

// IsDeleted reports whether the account carries a tombstone.
func (a Account) IsDeleted() bool {
	return a.DeletedAt != nil
}

// AccountIDs extracts the identifiers of accounts in order.
func AccountIDs(accounts []Account) []string {
	ids := make([]string, 0, len(accounts))
	for _, a := range accounts {
		ids = append(ids, a.AccountID)
	}
	return ids
}
