package dto

import (
	"time"

	"github.com/SscSPs/shop_ledger/internal/core/domain"
)

// CashFlowParams are the query parameters of the cash-flow endpoints.
type CashFlowParams struct {
	StartUTC              *time.Time `form:"startUtc" binding:"omitempty,utc" time_format:"2006-01-02T15:04:05Z07:00"`
	EndUTC                *time.Time `form:"endUtc" binding:"omitempty,utc" time_format:"2006-01-02T15:04:05Z07:00"`
	IncludeApproxBalances *bool      `form:"includeApproxBalances"`
	FinancialAccountID    *string    `form:"financialAccountId" binding:"omitempty,uuid"`
}

// CashFlowResponse is the composed cash-flow statement.
type CashFlowResponse struct {
	domain.CashFlowStatement
	Basis string `json:"basis"`
}

// BalanceSheetResponse is the composed balance sheet.
type BalanceSheetResponse struct {
	domain.BalanceSheet
	Balanced bool `json:"balanced"`
}

// ToCashFlowResponse converts a statement to its DTO.
func ToCashFlowResponse(s *domain.CashFlowStatement) CashFlowResponse {
	return CashFlowResponse{CashFlowStatement: *s, Basis: s.Basis()}
}

// ToBalanceSheetResponse converts a balance sheet to its DTO.
func ToBalanceSheetResponse(b *domain.BalanceSheet) BalanceSheetResponse {
	return BalanceSheetResponse{BalanceSheet: *b, Balanced: b.Difference.IsZero()}
}
