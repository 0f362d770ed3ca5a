package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/shop_ledger/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// MovementReader defines read operations for the movement log.
type MovementReader interface {
	FindMovementByID(ctx context.Context, tx pgx.Tx, movementID string) (*domain.Movement, error)

	// ListMovements returns movements newest first using token based pagination.
	ListMovements(ctx context.Context, tx pgx.Tx, filter domain.MovementFilter, limit int, nextToken *string) ([]domain.Movement, *string, error)

	// ListMovementsForDocument returns the effective movements linked to a document.
	ListMovementsForDocument(ctx context.Context, tx pgx.Tx, documentType domain.DocumentType, documentID string) ([]domain.Movement, error)
}

// MovementWriter defines write operations for the movement log.
type MovementWriter interface {
	SaveMovement(ctx context.Context, tx pgx.Tx, movement domain.Movement) error

	// FindMovementForUpdate locks the movement row.
	FindMovementForUpdate(ctx context.Context, tx pgx.Tx, movementID string) (*domain.Movement, error)

	UpdateMovementAmount(ctx context.Context, tx pgx.Tx, movementID string, amount decimal.Decimal, userID string, now time.Time) error
	VoidMovement(ctx context.Context, tx pgx.Tx, movementID string, userID string, now time.Time) error
	SaveAmountEdit(ctx context.Context, tx pgx.Tx, edit domain.MovementAmountEdit) error
}

// MovementRepositoryFacade combines movement read and write operations.
type MovementRepositoryFacade interface {
	MovementReader
	MovementWriter
}
