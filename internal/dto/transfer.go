package dto

import (
	"time"

	"github.com/SscSPs/shop_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateTransferRequest moves money between two accounts.
type CreateTransferRequest struct {
	FromAccountID string           `json:"fromAccountID" binding:"required,uuid"`
	ToAccountID   string           `json:"toAccountID" binding:"required,uuid,nefield=FromAccountID"`
	Amount        decimal.Decimal  `json:"amount" binding:"required,dgt0"`
	CurrencyCode  string           `json:"currencyCode" binding:"omitempty,len=3"`
	Fee           *decimal.Decimal `json:"fee" binding:"omitempty,dgte0"`
	ExchangeRate  *decimal.Decimal `json:"exchangeRate" binding:"omitempty,dgt0"`
	TransferDate  *time.Time       `json:"transferDate"`
	Description   string           `json:"description" binding:"max=500"`
	Pending       bool             `json:"pending"` // leave the transfer pending instead of completing it
}

// ListTransfersParams defines query parameters for listing transfers.
type ListTransfersParams struct {
	AccountID *string `form:"accountID" binding:"omitempty,uuid"`
	Limit     int     `form:"limit,default=20" binding:"min=1,max=100"`
	Offset    int     `form:"offset,default=0" binding:"min=0"`
}

// TransferResponse defines the data returned for a transfer.
type TransferResponse struct {
	TransferID    string                `json:"transferID"`
	FromAccountID string                `json:"fromAccountID"`
	ToAccountID   string                `json:"toAccountID"`
	Amount        decimal.Decimal       `json:"amount"`
	Status        domain.TransferStatus `json:"status"`
	CurrencyCode  string                `json:"currencyCode"`
	Fee           *decimal.Decimal      `json:"fee,omitempty"`
	ExchangeRate  *decimal.Decimal      `json:"exchangeRate,omitempty"`
	TransferDate  time.Time             `json:"transferDate"`
	CompletedAt   *time.Time            `json:"completedAt,omitempty"`
	ReversedAt    *time.Time            `json:"reversedAt,omitempty"`
	Description   string                `json:"description"`
	CreatedBy     string                `json:"createdBy"`
}

// ToTransferResponse converts a domain.Transfer to TransferResponse DTO
func ToTransferResponse(t *domain.Transfer) TransferResponse {
	return TransferResponse{
		TransferID:    t.TransferID,
		FromAccountID: t.FromAccountID,
		ToAccountID:   t.ToAccountID,
		Amount:        t.Amount,
		Status:        t.Status,
		CurrencyCode:  t.CurrencyCode,
		Fee:           t.Fee,
		ExchangeRate:  t.ExchangeRate,
		TransferDate:  t.TransferDate,
		CompletedAt:   t.CompletedAt,
		ReversedAt:    t.ReversedAt,
		Description:   t.Description,
		CreatedBy:     t.CreatedBy,
	}
}

// ToListTransferResponse converts transfers to DTOs.
func ToListTransferResponse(transfers []domain.Transfer) []TransferResponse {
	res := make([]TransferResponse, len(transfers))
	for i := range transfers {
		res[i] = ToTransferResponse(&transfers[i])
	}
	return res
}
