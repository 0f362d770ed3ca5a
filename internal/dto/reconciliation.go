package dto

import (
	"time"

	"github.com/SscSPs/shop_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// ReconciliationRequest opens or closes one account's business day.
type ReconciliationRequest struct {
	FinancialAccountID string           `json:"financialAccountId" binding:"required,uuid"`
	BusinessDateUTC    BusinessDate     `json:"businessDateUtc"`
	CountedBalance     *decimal.Decimal `json:"countedBalance"`
	Notes              string           `json:"notes" binding:"max=1000"`
}

// BulkReconciliationRequest opens or closes every non-deleted account for a business day.
type BulkReconciliationRequest struct {
	BusinessDateUTC BusinessDate `json:"businessDateUtc"`
}

// ListReconciliationsParams selects the business day to list.
type ListReconciliationsParams struct {
	BusinessDateUTC    time.Time `form:"businessDateUtc" binding:"required" time_format:"2006-01-02" time_utc:"1"`
	FinancialAccountID *string   `form:"financialAccountId" binding:"omitempty,uuid"`
}

// ReconciliationResponse defines the data returned for a reconciliation row.
type ReconciliationResponse struct {
	domain.Reconciliation
	BusinessDateUTC string `json:"businessDateUtc"`
}

// BulkReconciliationResponse reports processed and skipped accounts.
type BulkReconciliationResponse struct {
	BusinessDateUTC string                   `json:"businessDateUtc"`
	Processed       []ReconciliationResponse `json:"processed"`
	Skipped         []domain.SkippedAccount  `json:"skipped"`
}

// ToReconciliationResponse converts a domain.Reconciliation to its DTO.
func ToReconciliationResponse(r *domain.Reconciliation) ReconciliationResponse {
	return ReconciliationResponse{Reconciliation: *r, BusinessDateUTC: r.BusinessDate.Format(time.DateOnly)}
}

// ToListReconciliationResponse converts reconciliation rows to DTOs.
func ToListReconciliationResponse(recs []domain.Reconciliation) []ReconciliationResponse {
	res := make([]ReconciliationResponse, len(recs))
	for i := range recs {
		res[i] = ToReconciliationResponse(&recs[i])
	}
	return res
}

// ToBulkReconciliationResponse converts a bulk result.
func ToBulkReconciliationResponse(r *domain.BulkReconciliationResult) BulkReconciliationResponse {
	skipped := r.Skipped
	if skipped == nil {
		skipped = []domain.SkippedAccount{}
	}
	return BulkReconciliationResponse{
		BusinessDateUTC: r.BusinessDate.Format(time.DateOnly),
		Processed:       ToListReconciliationResponse(r.Processed),
		Skipped:         skipped,
	}
}
