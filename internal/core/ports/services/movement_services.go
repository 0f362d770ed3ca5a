package services

import (
	"context"

	"github.com/SscSPs/shop_ledger/internal/core/domain"
	"github.com/SscSPs/shop_ledger/internal/dto"
)

// MovementSvcFacade defines operations on the movement log.
type MovementSvcFacade interface {
	// RecordMovement records a capital movement (contribution, withdrawal, expenditure, tax payment).
	RecordMovement(ctx context.Context, req dto.RecordMovementRequest, userID string) (*domain.Movement, error)
	GetMovement(ctx context.Context, movementID string) (*domain.Movement, error)
	ListMovements(ctx context.Context, params dto.ListMovementsParams) ([]domain.Movement, *string, error)

	// EditMovementAmount propagates the delta to the linked account and document.
	EditMovementAmount(ctx context.Context, movementID string, req dto.EditMovementAmountRequest, userID string) (*domain.Movement, error)

	// VoidMovement tombstones the movement and reverses its effects.
	VoidMovement(ctx context.Context, movementID string, userID string) (*domain.Movement, error)
}

// TransferSvcFacade defines operations on internal transfers.
type TransferSvcFacade interface {
	CreateTransfer(ctx context.Context, req dto.CreateTransferRequest, userID string) (*domain.Transfer, error)
	CompleteTransfer(ctx context.Context, transferID string, userID string) (*domain.Transfer, error)
	ReverseTransfer(ctx context.Context, transferID string, userID string) (*domain.Transfer, error)
	GetTransfer(ctx context.Context, transferID string) (*domain.Transfer, error)
	ListTransfers(ctx context.Context, params dto.ListTransfersParams) ([]domain.Transfer, error)
}
