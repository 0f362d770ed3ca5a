package dto

import (
	"time"

	"github.com/SscSPs/shop_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CreateAccountRequest defines the data needed to create a new financial account.
type CreateAccountRequest struct {
	Name           string                 `json:"name" binding:"required,max=120"`
	Category       domain.AccountCategory `json:"category" binding:"required,oneof=CASH BANK MOBILE_MONEY SAVINGS"`
	CurrencyCode   string                 `json:"currencyCode" binding:"required,len=3"`
	Description    string                 `json:"description"`
	IsDefault      bool                   `json:"isDefault"`
	OpeningBalance *decimal.Decimal       `json:"openingBalance" binding:"omitempty,dgte0"` // recorded as a capital contribution
}

// UpdateAccountRequest defines the data allowed for updating an account.
// Use pointers to distinguish between zero-value updates and fields not provided.
type UpdateAccountRequest struct {
	Name        *string                 `json:"name" binding:"omitempty,max=120"`
	Category    *domain.AccountCategory `json:"category" binding:"omitempty,oneof=CASH BANK MOBILE_MONEY SAVINGS"`
	Description *string                 `json:"description"`
	IsActive    *bool                   `json:"isActive"`
	IsDefault   *bool                   `json:"isDefault"`
}

// ListAccountsParams defines query parameters for listing accounts.
type ListAccountsParams struct {
	IncludeInactive bool `form:"includeInactive"`
}

// AccountResponse defines the data returned for an account.
type AccountResponse struct {
	AccountID     string                 `json:"accountID"`
	Name          string                 `json:"name"`
	Category      domain.AccountCategory `json:"category"`
	CurrencyCode  string                 `json:"currencyCode"`
	Description   string                 `json:"description"`
	Balance       decimal.Decimal        `json:"balance"`
	IsActive      bool                   `json:"isActive"`
	IsDefault     bool                   `json:"isDefault"`
	DeletedAt     *time.Time             `json:"deletedAt,omitempty"`
	CreatedAt     time.Time              `json:"createdAt"`
	CreatedBy     string                 `json:"createdBy"`
	LastUpdatedAt time.Time              `json:"lastUpdatedAt"`
	LastUpdatedBy string                 `json:"lastUpdatedBy"`
}

// AccountBalanceResponse defines the data returned for an account balance query.
type AccountBalanceResponse struct {
	AccountID string          `json:"accountID"`
	Balance   decimal.Decimal `json:"balance"`
}

// ToAccountResponse converts a domain.Account to AccountResponse DTO
func ToAccountResponse(acc *domain.Account) AccountResponse {
	return AccountResponse{
		AccountID:     acc.AccountID,
		Name:          acc.Name,
		Category:      acc.Category,
		CurrencyCode:  acc.CurrencyCode,
		Description:   acc.Description,
		Balance:       acc.Balance,
		IsActive:      acc.IsActive,
		IsDefault:     acc.IsDefault,
		DeletedAt:     acc.DeletedAt,
		CreatedAt:     acc.CreatedAt,
		CreatedBy:     acc.CreatedBy,
		LastUpdatedAt: acc.LastUpdatedAt,
		LastUpdatedBy: acc.LastUpdatedBy,
	}
}

// ToListAccountResponse converts a slice of domain.Account to a slice of AccountResponse DTOs
func ToListAccountResponse(accounts []domain.Account) []AccountResponse {
	res := make([]AccountResponse, len(accounts))
	for i := range accounts {
		res[i] = ToAccountResponse(&accounts[i])
	}
	return res
}
