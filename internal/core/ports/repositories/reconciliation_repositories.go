package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/shop_ledger/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// ReconciliationRepositoryFacade persists daily cash reconciliations.
type ReconciliationRepositoryFacade interface {
	// SaveReconciliation inserts an opening row; a second row for the same account and day is ErrDuplicate.
	SaveReconciliation(ctx context.Context, tx pgx.Tx, rec domain.Reconciliation) error

	// FindReconciliation returns the row for account and business day.
	FindReconciliation(ctx context.Context, tx pgx.Tx, accountID string, businessDate time.Time) (*domain.Reconciliation, error)

	// FindReconciliationForUpdate locks the row for account and business day.
	FindReconciliationForUpdate(ctx context.Context, tx pgx.Tx, accountID string, businessDate time.Time) (*domain.Reconciliation, error)

	// CloseReconciliation persists the closing snapshot.
	CloseReconciliation(ctx context.Context, tx pgx.Tx, rec domain.Reconciliation) error

	// ListReconciliationsForDay returns all rows for the business day keyed by account.
	ListReconciliationsForDay(ctx context.Context, tx pgx.Tx, businessDate time.Time) (map[string]domain.Reconciliation, error)
}
