package repositories

import (
	"context"

	"github.com/jackc/pgx/v5"
)

// TransactionManager runs units of work inside database transactions.
type TransactionManager interface {
	// WithinTx runs fn inside a read-write transaction, committing when fn returns nil
	// and rolling back otherwise.
	WithinTx(ctx context.Context, fn func(tx pgx.Tx) error) error

	// WithinReadOnlyTx runs fn inside a REPEATABLE READ, READ ONLY transaction so every
	// query observes the same snapshot.
	WithinReadOnlyTx(ctx context.Context, fn func(tx pgx.Tx) error) error
}
