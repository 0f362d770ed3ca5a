package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/shop_ledger/internal/core/domain"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountReader defines read operations for financial accounts.
type AccountReader interface {
	// FindAccountByID retrieves an account, including soft-deleted ones.
	FindAccountByID(ctx context.Context, tx pgx.Tx, accountID string) (*domain.Account, error)

	// FindAccountByName retrieves a non-deleted account by its unique name.
	FindAccountByName(ctx context.Context, tx pgx.Tx, name string) (*domain.Account, error)

	// ListAccounts returns non-deleted accounts ordered by name.
	ListAccounts(ctx context.Context, tx pgx.Tx, includeInactive bool) ([]domain.Account, error)

	// ListAccountsLiveSince returns every account, inactive ones included, that was not deleted
	// before since, ordered by ID.
	ListAccountsLiveSince(ctx context.Context, tx pgx.Tx, since time.Time) ([]domain.Account, error)

	// FindAccountsByIDs retrieves multiple accounts keyed by ID.
	FindAccountsByIDs(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error)
}

// AccountWriter defines write operations for financial accounts.
type AccountWriter interface {
	SaveAccount(ctx context.Context, tx pgx.Tx, account domain.Account) error
	UpdateAccount(ctx context.Context, tx pgx.Tx, account domain.Account) error

	// ClearDefaultAccount unsets the default flag on every account.
	ClearDefaultAccount(ctx context.Context, tx pgx.Tx, userID string, now time.Time) error
}

// AccountTransactionSupport defines the balance primitives used by business events.
type AccountTransactionSupport interface {
	// LockAccounts locks the given accounts FOR UPDATE in ascending ID order.
	LockAccounts(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error)

	// AdjustBalance adds signedAmount to the account balance and returns the new balance.
	AdjustBalance(ctx context.Context, tx pgx.Tx, accountID string, signedAmount decimal.Decimal, userID string, now time.Time) (decimal.Decimal, error)
}

// AccountRepositoryFacade combines all account-related repository interfaces.
type AccountRepositoryFacade interface {
	AccountReader
	AccountWriter
	AccountTransactionSupport
}
