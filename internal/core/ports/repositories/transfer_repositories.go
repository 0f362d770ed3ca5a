package repositories

import (
	"context"

	"github.com/SscSPs/shop_ledger/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// TransferRepositoryFacade defines persistence for internal transfers.
type TransferRepositoryFacade interface {
	SaveTransfer(ctx context.Context, tx pgx.Tx, transfer domain.Transfer) error
	FindTransferByID(ctx context.Context, tx pgx.Tx, transferID string) (*domain.Transfer, error)

	// FindTransferForUpdate locks the transfer row.
	FindTransferForUpdate(ctx context.Context, tx pgx.Tx, transferID string) (*domain.Transfer, error)

	// UpdateTransferStatus persists status, completion and reversal fields.
	UpdateTransferStatus(ctx context.Context, tx pgx.Tx, transfer domain.Transfer) error

	ListTransfers(ctx context.Context, tx pgx.Tx, accountID *string, limit int, offset int) ([]domain.Transfer, error)
}
