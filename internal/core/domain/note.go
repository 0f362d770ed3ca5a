package domain

import (
	"time"

	"github.com/SscSPs/shop_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// NoteSide tells whether a note credits a customer or debits a supplier.
type NoteSide string

const (
	CreditNoteSide NoteSide = "CREDIT"
	DebitNoteSide  NoteSide = "DEBIT"
)

// DocumentType returns the document type the note adjusts.
func (s NoteSide) DocumentType() DocumentType {
	if s == DebitNoteSide {
		return DocumentPurchase
	}
	return DocumentSale
}

// RefundKind returns the movement kind used to pay out a standing remainder.
func (s NoteSide) RefundKind() MovementKind {
	if s == DebitNoteSide {
		return PurchaseRefund
	}
	return SaleRefund
}

// NoteStatus is the lifecycle state of a note.
type NoteStatus string

const (
	NotePending   NoteStatus = "PENDING"
	NoteApplied   NoteStatus = "APPLIED"
	NoteRefunded  NoteStatus = "REFUNDED"
	NoteCancelled NoteStatus = "CANCELLED"
)

// NoteReason explains why a note was issued.
type NoteReason string

const (
	ReasonGeneral         NoteReason = "GENERAL"
	ReasonReturn          NoteReason = "RETURN"
	ReasonPriceAdjustment NoteReason = "PRICE_ADJUSTMENT"
	ReasonDamaged         NoteReason = "DAMAGED"
	ReasonLost            NoteReason = "LOST"
)

// IsValid reports whether r is a known reason.
func (r NoteReason) IsValid() bool {
	switch r {
	case ReasonGeneral, ReasonReturn, ReasonPriceAdjustment, ReasonDamaged, ReasonLost:
		return true
	}
	return false
}

// IsDamageOrLoss reports whether goods covered by the note cannot go back into stock.
func (r NoteReason) IsDamageOrLoss() bool {
	return r == ReasonDamaged || r == ReasonLost
}

// NoteItem references a line of a sale (credit) or purchase (debit) being returned.
// ProductID, UnitPrice and UnitCost are copied from the document line when the note is applied.
type NoteItem struct {
	NoteItemID     string          `json:"noteItemID"`
	NoteID         string          `json:"noteID"`
	DocumentItemID string          `json:"documentItemID"`
	ProductID      string          `json:"productID"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unitPrice"`
	UnitCost       decimal.Decimal `json:"unitCost"`
}

// Note is a credit note (customer side) or debit note (supplier side).
// The target document reference is one-directional; documents never point back to notes.
type Note struct {
	NoteID             string          `json:"noteID"`
	Side               NoteSide        `json:"side"`
	PartyID            string          `json:"partyID"`
	TargetDocumentID   *string         `json:"targetDocumentID,omitempty"`
	Amount             decimal.Decimal `json:"amount"`
	Reason             NoteReason      `json:"reason"`
	Description        string          `json:"description"`
	Items              []NoteItem      `json:"items"`
	Status             NoteStatus      `json:"status"`
	AppliedAt          *time.Time      `json:"appliedAt,omitempty"`
	RemainderAmount    decimal.Decimal `json:"remainderAmount"`
	ProfitAmount       decimal.Decimal `json:"profitAmount"`
	LossAmount         decimal.Decimal `json:"lossAmount"`
	ApplicationSummary string          `json:"applicationSummary"`
	DeletedAt          *time.Time      `json:"deletedAt,omitempty"`
	AuditFields
}

// EnsureEditable rejects edits and deletes outside the pending state.
func (n Note) EnsureEditable() error {
	if n.DeletedAt != nil {
		return apperrors.NewNotFoundError("note", n.NoteID)
	}
	if n.Status != NotePending {
		return apperrors.NewConflictError("note %s is %s and can no longer be edited", n.NoteID, n.Status)
	}
	return nil
}

// EnsureApplicable guards against applying a note twice.
func (n Note) EnsureApplicable() error {
	if n.DeletedAt != nil {
		return apperrors.NewNotFoundError("note", n.NoteID)
	}
	if n.Status != NotePending {
		return apperrors.NewConflictError("note %s is already %s", n.NoteID, n.Status)
	}
	return nil
}

// EnsureRefundable allows a refund only for applied notes with an open remainder.
func (n Note) EnsureRefundable() error {
	if n.Status != NoteApplied {
		return apperrors.NewConflictError("note %s is %s; only applied notes can be refunded", n.NoteID, n.Status)
	}
	if n.RemainderAmount.LessThanOrEqual(decimal.Zero) {
		return apperrors.NewConflictError("note %s has no standing remainder to refund", n.NoteID)
	}
	return nil
}

// EnsureCancellable allows cancelling pending or applied notes.
func (n Note) EnsureCancellable() error {
	if n.DeletedAt != nil {
		return apperrors.NewNotFoundError("note", n.NoteID)
	}
	if n.Status != NotePending && n.Status != NoteApplied {
		return apperrors.NewConflictError("note %s is already %s", n.NoteID, n.Status)
	}
	return nil
}

// NoteAllocation persists one line of an applied note's allocation.
type NoteAllocation struct {
	NoteID     string          `json:"noteID"`
	DocumentID string          `json:"documentID"`
	Amount     decimal.Decimal `json:"amount"`
	Sequence   int             `json:"sequence"`
}

// StandingBalanceStatus is the state of an unexhausted note remainder.
type StandingBalanceStatus string

const (
	StandingOpen      StandingBalanceStatus = "OPEN"
	StandingRefunded  StandingBalanceStatus = "REFUNDED"
	StandingCancelled StandingBalanceStatus = "CANCELLED"
)

// StandingBalance is a credit held for a customer or a debit held against a supplier
// with no target document.
type StandingBalance struct {
	StandingBalanceID string                `json:"standingBalanceID"`
	NoteID            string                `json:"noteID"`
	Side              NoteSide              `json:"side"`
	PartyID           string                `json:"partyID"`
	Amount            decimal.Decimal       `json:"amount"`
	Status            StandingBalanceStatus `json:"status"`
	SettledAt         *time.Time            `json:"settledAt,omitempty"`
	AuditFields
}

// ItemEffect is the inventory and profit consequence of one returned line.
type ItemEffect struct {
	DocumentItemID string
	ProductID      string
	Quantity       decimal.Decimal
	Restock        bool
	StockChange    StockChange
}

// NoteEffects aggregates the side effects of applying a note.
type NoteEffects struct {
	Items  []ItemEffect
	Profit decimal.Decimal
	Loss   decimal.Decimal
}

// CreditNoteEffects computes the consequences of a credit note on the sale lines it returns.
// Non damage returns go back into stock at the captured unit cost. The loss absorbs whatever
// the customer is credited beyond the reversed margin and restocked cost, so equity moves by
// exactly -amount + restocked cost.
func CreditNoteEffects(note Note, lines map[string]SaleItem) (NoteEffects, error) {
	eff := NoteEffects{Profit: decimal.Zero, Loss: decimal.Zero}
	returnedValue := decimal.Zero
	damagedCost := decimal.Zero
	for _, it := range note.Items {
		line, ok := lines[it.DocumentItemID]
		if !ok {
			return NoteEffects{}, apperrors.NewValidationError("sale item %s not found for credit note %s", it.DocumentItemID, note.NoteID)
		}
		if it.Quantity.LessThanOrEqual(decimal.Zero) || it.Quantity.GreaterThan(line.RemainingQuantity()) {
			return NoteEffects{}, apperrors.NewValidationError("return quantity %s for sale item %s exceeds remaining %s", it.Quantity, line.SaleItemID, line.RemainingQuantity())
		}
		cost := it.Quantity.Mul(line.UnitCost)
		returnedValue = returnedValue.Add(it.Quantity.Mul(line.UnitPrice))
		restock := !note.Reason.IsDamageOrLoss()
		effect := ItemEffect{DocumentItemID: line.SaleItemID, ProductID: line.ProductID, Quantity: it.Quantity, Restock: restock}
		if restock {
			effect.StockChange = StockChange{ProductID: line.ProductID, QuantityDelta: it.Quantity, ValueDelta: cost}
		} else {
			damagedCost = damagedCost.Add(cost)
		}
		eff.Items = append(eff.Items, effect)
	}
	eff.Loss = damagedCost.Add(note.Amount.Sub(returnedValue))
	return eff, nil
}

// DebitNoteEffects computes the consequences of a debit note on the purchase lines it returns.
// Returned goods leave inventory at their purchase cost unless they were damaged or lost, in
// which case they are already gone. Profit is the amount recovered beyond that cost.
func DebitNoteEffects(note Note, lines map[string]PurchaseItem) (NoteEffects, error) {
	eff := NoteEffects{Profit: note.Amount, Loss: decimal.Zero}
	for _, it := range note.Items {
		line, ok := lines[it.DocumentItemID]
		if !ok {
			return NoteEffects{}, apperrors.NewValidationError("purchase item %s not found for debit note %s", it.DocumentItemID, note.NoteID)
		}
		if it.Quantity.LessThanOrEqual(decimal.Zero) || it.Quantity.GreaterThan(line.RemainingQuantity()) {
			return NoteEffects{}, apperrors.NewValidationError("return quantity %s for purchase item %s exceeds remaining %s", it.Quantity, line.PurchaseItemID, line.RemainingQuantity())
		}
		cost := it.Quantity.Mul(line.UnitCost)
		effect := ItemEffect{DocumentItemID: line.PurchaseItemID, ProductID: line.ProductID, Quantity: it.Quantity}
		if !note.Reason.IsDamageOrLoss() {
			effect.StockChange = StockChange{ProductID: line.ProductID, QuantityDelta: it.Quantity.Neg(), ValueDelta: cost.Neg()}
			eff.Profit = eff.Profit.Sub(cost)
		}
		eff.Items = append(eff.Items, effect)
	}
	return eff, nil
}
