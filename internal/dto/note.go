package dto

import (
	"time"

	"github.com/SscSPs/shop_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// NoteItemRequest references a document line being returned.
type NoteItemRequest struct {
	DocumentItemID string          `json:"documentItemID" binding:"required"`
	Quantity       decimal.Decimal `json:"quantity" binding:"required,dgt0"`
}

// CreateNoteRequest creates a pending credit or debit note.
type CreateNoteRequest struct {
	PartyID          string            `json:"partyID" binding:"required"`
	TargetDocumentID *string           `json:"targetDocumentID"`
	Amount           decimal.Decimal   `json:"amount" binding:"required,dgt0"`
	Reason           domain.NoteReason `json:"reason" binding:"required,oneof=GENERAL RETURN PRICE_ADJUSTMENT DAMAGED LOST"`
	Description      string            `json:"description" binding:"max=500"`
	Items            []NoteItemRequest `json:"items" binding:"omitempty,dive"`
}

// UpdateNoteRequest edits a pending note. Items, when present, replace the existing ones.
type UpdateNoteRequest struct {
	TargetDocumentID *string            `json:"targetDocumentID"`
	Amount           *decimal.Decimal   `json:"amount" binding:"omitempty,dgt0"`
	Reason           *domain.NoteReason `json:"reason" binding:"omitempty,oneof=GENERAL RETURN PRICE_ADJUSTMENT DAMAGED LOST"`
	Description      *string            `json:"description" binding:"omitempty,max=500"`
	Items            *[]NoteItemRequest `json:"items" binding:"omitempty,dive"`
}

// ApplyNoteRequest optionally names the document to reduce first.
type ApplyNoteRequest struct {
	PreferredDocumentID *string `json:"preferredDocumentID"`
}

// RefundNoteRequest pays out a note's standing remainder.
type RefundNoteRequest struct {
	AccountID  *string    `json:"accountID" binding:"omitempty,uuid"`
	RefundedAt *time.Time `json:"refundedAt"`
}

// ListNotesParams selects the notes issued against one document.
type ListNotesParams struct {
	DocumentID string `form:"documentId" binding:"required"`
}

// NoteResponse defines the data returned for a note.
type NoteResponse struct {
	domain.Note
	Allocations []domain.NoteAllocation `json:"allocations,omitempty"`
}

// ToNoteResponse converts a domain.Note to NoteResponse DTO
func ToNoteResponse(n *domain.Note, allocations []domain.NoteAllocation) NoteResponse {
	return NoteResponse{Note: *n, Allocations: allocations}
}

// ToListNoteResponse converts notes to DTOs.
func ToListNoteResponse(notes []domain.Note) []NoteResponse {
	res := make([]NoteResponse, len(notes))
	for i := range notes {
		res[i] = ToNoteResponse(&notes[i], nil)
	}
	return res
}
