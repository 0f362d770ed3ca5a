package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Note represents a row of the notes table.
type Note struct {
	NoteID             string          `db:"note_id"`
	Side               string          `db:"side"`
	PartyID            string          `db:"party_id"`
	TargetDocumentID   *string         `db:"target_document_id"` // Nullable
	Amount             decimal.Decimal `db:"amount"`
	Reason             string          `db:"reason"`
	Description        string          `db:"description"`
	Status             string          `db:"status"`
	AppliedAt          *time.Time      `db:"applied_at"`
	RemainderAmount    decimal.Decimal `db:"remainder_amount"`
	ProfitAmount       decimal.Decimal `db:"profit_amount"`
	LossAmount         decimal.Decimal `db:"loss_amount"`
	ApplicationSummary string          `db:"application_summary"`
	DeletedAt          *time.Time      `db:"deleted_at"`
	AuditFields
}

// StandingBalance represents a row of the standing_balances table.
type StandingBalance struct {
	StandingBalanceID string          `db:"standing_balance_id"`
	NoteID            string          `db:"note_id"`
	Side              string          `db:"side"`
	PartyID           string          `db:"party_id"`
	Amount            decimal.Decimal `db:"amount"`
	Status            string          `db:"status"`
	SettledAt         *time.Time      `db:"settled_at"`
	AuditFields
}
