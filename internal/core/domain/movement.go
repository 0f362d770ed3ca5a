package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// MovementKind identifies the business event behind a cash movement.
type MovementKind string

const (
	SalePayment         MovementKind = "SALE_PAYMENT"
	SaleRefund          MovementKind = "SALE_REFUND"
	PurchasePayment     MovementKind = "PURCHASE_PAYMENT"
	PurchaseRefund      MovementKind = "PURCHASE_REFUND"
	CapitalContribution MovementKind = "CAPITAL_CONTRIBUTION"
	CapitalWithdrawal   MovementKind = "CAPITAL_WITHDRAWAL"
	Expenditure         MovementKind = "EXPENDITURE"
	TaxPayment          MovementKind = "TAX_PAYMENT"
)

// Direction says whether money enters or leaves the business.
type Direction string

const (
	Inflow  Direction = "IN"
	Outflow Direction = "OUT"
)

// IsValid reports whether k is a known kind.
func (k MovementKind) IsValid() bool {
	switch k {
	case SalePayment, SaleRefund, PurchasePayment, PurchaseRefund,
		CapitalContribution, CapitalWithdrawal, Expenditure, TaxPayment:
		return true
	}
	return false
}

// Direction returns the cash direction implied by the kind.
func (k MovementKind) Direction() Direction {
	switch k {
	case SalePayment, PurchaseRefund, CapitalContribution:
		return Inflow
	default:
		return Outflow
	}
}

// DocumentType returns the document a movement of this kind settles, if any.
func (k MovementKind) DocumentType() (DocumentType, bool) {
	switch k {
	case SalePayment, SaleRefund:
		return DocumentSale, true
	case PurchasePayment, PurchaseRefund:
		return DocumentPurchase, true
	}
	return "", false
}

// IsCapital reports whether the kind belongs to the owner capital log.
func (k MovementKind) IsCapital() bool {
	switch k {
	case CapitalContribution, CapitalWithdrawal, Expenditure, TaxPayment:
		return true
	}
	return false
}

// IsPayment reports whether the kind reduces a document's outstanding amount.
func (k MovementKind) IsPayment() bool {
	return k == SalePayment || k == PurchasePayment
}

// Movement is one dated cash movement. AccountID nil means the movement is unattributed.
type Movement struct {
	MovementID   string          `json:"movementID"`
	Kind         MovementKind    `json:"kind"`
	Amount       decimal.Decimal `json:"amount"`
	AccountID    *string         `json:"accountID,omitempty"`
	DocumentType *DocumentType   `json:"documentType,omitempty"`
	DocumentID   *string         `json:"documentID,omitempty"`
	PartyID      *string         `json:"partyID,omitempty"`
	NoteID       *string         `json:"noteID,omitempty"`
	OccurredAt   time.Time       `json:"occurredAt"`
	Description  string          `json:"description"`
	VoidedAt     *time.Time      `json:"voidedAt,omitempty"`
	AuditFields
}

// IsVoided reports whether the movement carries a void tombstone.
func (m Movement) IsVoided() bool {
	return m.VoidedAt != nil
}

// IsUnattributed reports whether the movement is not linked to any account.
func (m Movement) IsUnattributed() bool {
	return m.AccountID == nil
}

// IsEditable reports whether the amount of the movement may be edited or voided.
// Refund movements are produced by refund workflows and are reverted through them.
func (m Movement) IsEditable() bool {
	return !m.IsVoided() && (m.Kind.IsPayment() || m.Kind.IsCapital())
}

// MovementAmountEdit is the audit row written for every amount edit.
type MovementAmountEdit struct {
	EditID     string          `json:"editID"`
	MovementID string          `json:"movementID"`
	OldAmount  decimal.Decimal `json:"oldAmount"`
	NewAmount  decimal.Decimal `json:"newAmount"`
	EditedAt   time.Time       `json:"editedAt"`
	EditedBy   string          `json:"editedBy"`
}

// Delta is the signed change in amount introduced by the edit.
func (e MovementAmountEdit) Delta() decimal.Decimal {
	return e.NewAmount.Sub(e.OldAmount)
}

// MovementFilter narrows movement listings.
type MovementFilter struct {
	AccountID *string
	Kind      *MovementKind
	From      *time.Time
	To        *time.Time
}
