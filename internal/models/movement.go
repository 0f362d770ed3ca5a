package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Movement represents a row of the movements table.
type Movement struct {
	MovementID   string          `db:"movement_id"`
	Kind         string          `db:"kind"`
	Amount       decimal.Decimal `db:"amount"`
	AccountID    *string         `db:"account_id"`    // Nullable: unattributed movement
	DocumentType *string         `db:"document_type"` // Nullable
	DocumentID   *string         `db:"document_id"`   // Nullable
	PartyID      *string         `db:"party_id"`      // Nullable
	NoteID       *string         `db:"note_id"`       // Nullable
	OccurredAt   time.Time       `db:"occurred_at"`
	Description  string          `db:"description"`
	VoidedAt     *time.Time      `db:"voided_at"` // Nullable
	AuditFields
}

// MovementAmountEdit represents a row of the movement_amount_edits table.
type MovementAmountEdit struct {
	EditID     string          `db:"edit_id"`
	MovementID string          `db:"movement_id"`
	OldAmount  decimal.Decimal `db:"old_amount"`
	NewAmount  decimal.Decimal `db:"new_amount"`
	EditedAt   time.Time       `db:"edited_at"`
	EditedBy   string          `db:"edited_by"`
}

// Transfer represents a row of the transfers table.
type Transfer struct {
	TransferID    string              `db:"transfer_id"`
	FromAccountID string              `db:"from_account_id"`
	ToAccountID   string              `db:"to_account_id"`
	Amount        decimal.Decimal     `db:"amount"`
	Status        string              `db:"status"`
	CurrencyCode  string              `db:"currency_code"`
	Fee           decimal.NullDecimal `db:"fee"`
	ExchangeRate  decimal.NullDecimal `db:"exchange_rate"`
	TransferDate  time.Time           `db:"transfer_date"`
	CompletedAt   *time.Time          `db:"completed_at"`
	ReversedAt    *time.Time          `db:"reversed_at"`
	Description   string              `db:"description"`
	AuditFields
}
