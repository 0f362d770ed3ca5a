package dto

import (
	"time"

	"github.com/SscSPs/shop_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// RecordMovementRequest records a capital account movement.
type RecordMovementRequest struct {
	Kind        domain.MovementKind `json:"kind" binding:"required,oneof=CAPITAL_CONTRIBUTION CAPITAL_WITHDRAWAL EXPENDITURE TAX_PAYMENT"`
	Amount      decimal.Decimal     `json:"amount" binding:"required,dgt0"`
	AccountID   *string             `json:"accountID" binding:"omitempty,uuid"`
	OccurredAt  *time.Time          `json:"occurredAt"` // defaults to now
	Description string              `json:"description" binding:"max=500"`
}

// EditMovementAmountRequest changes the amount of an existing movement.
type EditMovementAmountRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required,dgt0"`
}

// ListMovementsParams defines query parameters for listing movements.
type ListMovementsParams struct {
	AccountID *string              `form:"accountID" binding:"omitempty,uuid"`
	Kind      *domain.MovementKind `form:"kind"`
	From      *time.Time           `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To        *time.Time           `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	Limit     int                  `form:"limit,default=20" binding:"min=1,max=100"`
	NextToken *string              `form:"nextToken"`
}

// MovementResponse defines the data returned for a movement.
type MovementResponse struct {
	MovementID   string               `json:"movementID"`
	Kind         domain.MovementKind  `json:"kind"`
	Direction    domain.Direction     `json:"direction"`
	Amount       decimal.Decimal      `json:"amount"`
	AccountID    *string              `json:"accountID,omitempty"`
	DocumentType *domain.DocumentType `json:"documentType,omitempty"`
	DocumentID   *string              `json:"documentID,omitempty"`
	PartyID      *string              `json:"partyID,omitempty"`
	NoteID       *string              `json:"noteID,omitempty"`
	OccurredAt   time.Time            `json:"occurredAt"`
	Description  string               `json:"description"`
	VoidedAt     *time.Time           `json:"voidedAt,omitempty"`
	CreatedAt    time.Time            `json:"createdAt"`
	CreatedBy    string               `json:"createdBy"`
}

// ListMovementsResponse wraps a page of movements.
type ListMovementsResponse struct {
	Movements []MovementResponse `json:"movements"`
	NextToken *string            `json:"nextToken,omitempty"`
}

// ToMovementResponse converts a domain.Movement to MovementResponse DTO
func ToMovementResponse(m *domain.Movement) MovementResponse {
	return MovementResponse{
		MovementID:   m.MovementID,
		Kind:         m.Kind,
		Direction:    m.Kind.Direction(),
		Amount:       m.Amount,
		AccountID:    m.AccountID,
		DocumentType: m.DocumentType,
		DocumentID:   m.DocumentID,
		PartyID:      m.PartyID,
		NoteID:       m.NoteID,
		OccurredAt:   m.OccurredAt,
		Description:  m.Description,
		VoidedAt:     m.VoidedAt,
		CreatedAt:    m.CreatedAt,
		CreatedBy:    m.CreatedBy,
	}
}

// ToListMovementsResponse converts a page of movements.
func ToListMovementsResponse(movements []domain.Movement, nextToken *string) ListMovementsResponse {
	res := make([]MovementResponse, len(movements))
	for i := range movements {
		res[i] = ToMovementResponse(&movements[i])
	}
	return ListMovementsResponse{Movements: res, NextToken: nextToken}
}
