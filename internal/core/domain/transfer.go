package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// TransferStatus is the lifecycle state of an internal transfer.
type TransferStatus string

const (
	TransferPending   TransferStatus = "PENDING"
	TransferCompleted TransferStatus = "COMPLETED"
	TransferReversed  TransferStatus = "REVERSED"
)

// Transfer moves money between two financial accounts of the business.
// Only completed transfers affect balances; a reversal undoes both legs.
type Transfer struct {
	TransferID    string           `json:"transferID"`
	FromAccountID string           `json:"fromAccountID"`
	ToAccountID   string           `json:"toAccountID"`
	Amount        decimal.Decimal  `json:"amount"`
	Status        TransferStatus   `json:"status"`
	CurrencyCode  string           `json:"currencyCode"`
	Fee           *decimal.Decimal `json:"fee,omitempty"`
	ExchangeRate  *decimal.Decimal `json:"exchangeRate,omitempty"`
	TransferDate  time.Time        `json:"transferDate"`
	CompletedAt   *time.Time       `json:"completedAt,omitempty"`
	ReversedAt    *time.Time       `json:"reversedAt,omitempty"`
	Description   string           `json:"description"`
	AuditFields
}

// BalanceChanges returns the signed balance delta per account for completing the transfer.
func (t Transfer) BalanceChanges() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		t.FromAccountID: t.Amount.Neg(),
		t.ToAccountID:   t.Amount,
	}
}

// ReversalChanges returns the signed balance delta per account for reversing the transfer.
func (t Transfer) ReversalChanges() map[string]decimal.Decimal {
	return map[string]decimal.Decimal{
		t.FromAccountID: t.Amount,
		t.ToAccountID:   t.Amount.Neg(),
	}
}
