package domain

import (
	"time"

	"github.com/SscSPs/shop_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// BusinessDay strips the time of day from t after converting it to UTC.
func BusinessDay(t time.Time) time.Time {
	u := t.UTC()
	return time.Date(u.Year(), u.Month(), u.Day(), 0, 0, 0, 0, time.UTC)
}

// IsMidnightUTC reports whether t lies exactly on a UTC day boundary.
func IsMidnightUTC(t time.Time) bool {
	return t.UTC().Equal(BusinessDay(t))
}

// IsExactlyToday reports whether [start, end) is the UTC day containing now.
func IsExactlyToday(start, end, now time.Time) bool {
	today := BusinessDay(now)
	return start.UTC().Equal(today) && end.UTC().Equal(today.AddDate(0, 0, 1))
}

// Reconciliation is the opening and closing snapshot of one account for one business day.
type Reconciliation struct {
	ReconciliationID      string           `json:"reconciliationID"`
	AccountID             string           `json:"accountID"`
	BusinessDate          time.Time        `json:"businessDate"`
	OpenedAt              time.Time        `json:"openedAt"`
	OpeningSystemBalance  decimal.Decimal  `json:"openingSystemBalance"`
	OpeningCountedBalance *decimal.Decimal `json:"openingCountedBalance,omitempty"`
	OpeningVariance       *decimal.Decimal `json:"openingVariance,omitempty"`
	OpeningNotes          string           `json:"openingNotes"`
	ClosedAt              *time.Time       `json:"closedAt,omitempty"`
	ClosingSystemBalance  *decimal.Decimal `json:"closingSystemBalance,omitempty"`
	ClosingCountedBalance *decimal.Decimal `json:"closingCountedBalance,omitempty"`
	ClosingVariance       *decimal.Decimal `json:"closingVariance,omitempty"`
	ClosingNotes          string           `json:"closingNotes"`
	AuditFields
}

// IsClosed reports whether the day has been closed for the account.
func (r Reconciliation) IsClosed() bool {
	return r.ClosedAt != nil
}

func variance(counted *decimal.Decimal, system decimal.Decimal) *decimal.Decimal {
	if counted == nil {
		return nil
	}
	v := counted.Sub(system)
	return &v
}

// OpenReconciliation captures the opening snapshot. The system balance is immutable afterwards.
func OpenReconciliation(id, accountID string, day time.Time, systemBalance decimal.Decimal, counted *decimal.Decimal, notes, userID string, now time.Time) Reconciliation {
	return Reconciliation{
		ReconciliationID:      id,
		AccountID:             accountID,
		BusinessDate:          BusinessDay(day),
		OpenedAt:              now,
		OpeningSystemBalance:  systemBalance,
		OpeningCountedBalance: counted,
		OpeningVariance:       variance(counted, systemBalance),
		OpeningNotes:          notes,
		AuditFields:           NewAuditFields(userID, now),
	}
}

// Close captures the closing snapshot. Closing twice is a conflict.
func (r *Reconciliation) Close(systemBalance decimal.Decimal, counted *decimal.Decimal, notes, userID string, now time.Time) error {
	if r.IsClosed() {
		return apperrors.NewConflictError("reconciliation for account %s on %s is already closed", r.AccountID, r.BusinessDate.Format(time.DateOnly))
	}
	r.ClosedAt = &now
	r.ClosingSystemBalance = &systemBalance
	r.ClosingCountedBalance = counted
	r.ClosingVariance = variance(counted, systemBalance)
	r.ClosingNotes = notes
	r.Touch(userID, now)
	return nil
}

// SkippedAccount explains why a bulk operation left an account untouched.
type SkippedAccount struct {
	AccountID string `json:"accountID"`
	Reason    string `json:"reason"`
}

// BulkReconciliationResult is returned by OpenAll and CloseAll.
type BulkReconciliationResult struct {
	BusinessDate time.Time        `json:"businessDate"`
	Processed    []Reconciliation `json:"processed"`
	Skipped      []SkippedAccount `json:"skipped"`
}
