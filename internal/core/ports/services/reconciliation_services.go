package services

import (
	"context"
	"time"

	"github.com/SscSPs/shop_ledger/internal/core/domain"
	"github.com/SscSPs/shop_ledger/internal/dto"
)

// ReconciliationSvcFacade manages daily opening and closing snapshots.
type ReconciliationSvcFacade interface {
	Open(ctx context.Context, req dto.ReconciliationRequest, userID string) (*domain.Reconciliation, error)
	Close(ctx context.Context, req dto.ReconciliationRequest, userID string) (*domain.Reconciliation, error)
	OpenAll(ctx context.Context, businessDate time.Time, userID string) (*domain.BulkReconciliationResult, error)
	CloseAll(ctx context.Context, businessDate time.Time, userID string) (*domain.BulkReconciliationResult, error)
	Get(ctx context.Context, accountID string, businessDate time.Time) (*domain.Reconciliation, error)
	ListForDay(ctx context.Context, businessDate time.Time) ([]domain.Reconciliation, error)
}
