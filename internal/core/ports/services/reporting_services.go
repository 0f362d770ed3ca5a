package services

import (
	"context"
	"time"

	"github.com/SscSPs/shop_ledger/internal/core/domain"
)

// CashFlowQuery selects the account set and range of a statement.
// An empty AccountID means every non-deleted account plus unattributed movements.
type CashFlowQuery struct {
	AccountID   *string
	StartUTC    time.Time
	EndUTC      time.Time
	AllowApprox bool
}

// ReportingService composes read-only statements.
type ReportingService interface {
	ComposeCashFlow(ctx context.Context, q CashFlowQuery) (*domain.CashFlowStatement, error)
	TodayCashFlow(ctx context.Context, accountID *string, allowApprox bool) (*domain.CashFlowStatement, error)
	BalanceSheet(ctx context.Context) (*domain.BalanceSheet, error)
}
