package pgsql

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/shop_ledger/internal/apperrors"
	"github.com/SscSPs/shop_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/shop_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/shop_ledger/internal/models"
	"github.com/SscSPs/shop_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const accountColumns = `account_id, name, category, currency_code, description, balance, is_active, is_default,
	deleted_at, created_at, created_by, last_updated_at, last_updated_by`

type PgxAccountRepository struct {
	BaseRepository
}

// newPgxAccountRepository creates a new repository for account data.
func newPgxAccountRepository(pool *pgxpool.Pool) *PgxAccountRepository {
	return &PgxAccountRepository{BaseRepository: BaseRepository{Pool: pool}}
}

// Ensure PgxAccountRepository implements portsrepo.AccountRepositoryFacade
var _ portsrepo.AccountRepositoryFacade = (*PgxAccountRepository)(nil)

func scanAccount(row pgx.Row) (models.Account, error) {
	var m models.Account
	err := row.Scan(
		&m.AccountID,
		&m.Name,
		&m.Category,
		&m.CurrencyCode,
		&m.Description,
		&m.Balance,
		&m.IsActive,
		&m.IsDefault,
		&m.DeletedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func collectAccounts(rows pgx.Rows) ([]models.Account, error) {
	defer rows.Close()
	accounts := []models.Account{}
	for rows.Next() {
		m, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account row: %w", err)
		}
		accounts = append(accounts, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating account rows: %w", err)
	}
	return accounts, nil
}

// SaveAccount inserts a new account.
func (r *PgxAccountRepository) SaveAccount(ctx context.Context, tx pgx.Tx, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := `
		INSERT INTO accounts (account_id, name, category, currency_code, description, balance, is_active, is_default,
			deleted_at, created_at, created_by, last_updated_at, last_updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13);
	`
	_, err := r.db(tx).Exec(ctx, query,
		m.AccountID, m.Name, m.Category, m.CurrencyCode, m.Description, m.Balance, m.IsActive, m.IsDefault,
		m.DeletedAt, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "account %q", m.Name)
	}
	return nil
}

// FindAccountByID retrieves an account by its ID, including soft-deleted ones.
func (r *PgxAccountRepository) FindAccountByID(ctx context.Context, tx pgx.Tx, accountID string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = $1;`
	m, err := scanAccount(r.db(tx).QueryRow(ctx, query, accountID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("account", accountID)
		}
		return nil, fmt.Errorf("failed to find account by ID %s: %w", accountID, err)
	}
	acc := mapping.ToDomainAccount(m)
	return &acc, nil
}

// FindAccountByName retrieves a live account by name, case-insensitively.
func (r *PgxAccountRepository) FindAccountByName(ctx context.Context, tx pgx.Tx, name string) (*domain.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE lower(name) = lower($1) AND deleted_at IS NULL;`
	m, err := scanAccount(r.db(tx).QueryRow(ctx, query, name))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("account", name)
		}
		return nil, fmt.Errorf("failed to find account by name %s: %w", name, err)
	}
	acc := mapping.ToDomainAccount(m)
	return &acc, nil
}

// ListAccounts returns live accounts ordered by name.
func (r *PgxAccountRepository) ListAccounts(ctx context.Context, tx pgx.Tx, includeInactive bool) ([]domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE deleted_at IS NULL AND ($1 OR is_active)
		ORDER BY name, account_id;
	`
	rows, err := r.db(tx).Query(ctx, query, includeInactive)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	ms, err := collectAccounts(rows)
	if err != nil {
		return nil, err
	}
	return mapping.ToDomainAccountSlice(ms), nil
}

// ListAccountsLiveSince returns accounts not deleted before since, inactive ones included.
func (r *PgxAccountRepository) ListAccountsLiveSince(ctx context.Context, tx pgx.Tx, since time.Time) ([]domain.Account, error) {
	query := `
		SELECT ` + accountColumns + `
		FROM accounts
		WHERE deleted_at IS NULL OR deleted_at >= $1
		ORDER BY account_id;
	`
	rows, err := r.db(tx).Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts live since %s: %w", since.Format(time.RFC3339), err)
	}
	ms, err := collectAccounts(rows)
	if err != nil {
		return nil, err
	}
	return mapping.ToDomainAccountSlice(ms), nil
}

// FindAccountsByIDs retrieves multiple accounts by their IDs.
func (r *PgxAccountRepository) FindAccountsByIDs(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ANY($1);`
	rows, err := r.db(tx).Query(ctx, query, accountIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query accounts by IDs: %w", err)
	}
	ms, err := collectAccounts(rows)
	if err != nil {
		return nil, err
	}
	accountsMap := make(map[string]domain.Account, len(ms))
	for _, m := range ms {
		accountsMap[m.AccountID] = mapping.ToDomainAccount(m)
	}
	return accountsMap, nil
}

// UpdateAccount persists the mutable fields of an account.
func (r *PgxAccountRepository) UpdateAccount(ctx context.Context, tx pgx.Tx, account domain.Account) error {
	m := mapping.ToModelAccount(account)
	query := `
		UPDATE accounts
		SET name = $2, category = $3, description = $4, is_active = $5, is_default = $6, deleted_at = $7,
			last_updated_at = $8, last_updated_by = $9
		WHERE account_id = $1;
	`
	cmdTag, err := r.db(tx).Exec(ctx, query,
		m.AccountID, m.Name, m.Category, m.Description, m.IsActive, m.IsDefault, m.DeletedAt,
		m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "account %q", m.Name)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("account", m.AccountID)
	}
	return nil
}

// ClearDefaultAccount unsets the default flag wherever it is set.
func (r *PgxAccountRepository) ClearDefaultAccount(ctx context.Context, tx pgx.Tx, userID string, now time.Time) error {
	query := `UPDATE accounts SET is_default = FALSE, last_updated_at = $1, last_updated_by = $2 WHERE is_default;`
	if _, err := r.db(tx).Exec(ctx, query, now, userID); err != nil {
		return fmt.Errorf("failed to clear default account: %w", err)
	}
	return nil
}

// LockAccounts locks the rows FOR UPDATE in ascending ID order and returns them.
func (r *PgxAccountRepository) LockAccounts(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	if len(accountIDs) == 0 {
		return map[string]domain.Account{}, nil
	}
	ids := make([]string, len(accountIDs))
	copy(ids, accountIDs)
	sort.Strings(ids)

	query := `SELECT ` + accountColumns + ` FROM accounts WHERE account_id = ANY($1) ORDER BY account_id FOR UPDATE;`
	rows, err := r.db(tx).Query(ctx, query, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to lock accounts: %w", err)
	}
	ms, err := collectAccounts(rows)
	if err != nil {
		return nil, err
	}
	locked := make(map[string]domain.Account, len(ms))
	for _, m := range ms {
		locked[m.AccountID] = mapping.ToDomainAccount(m)
	}
	for _, id := range ids {
		if _, ok := locked[id]; !ok {
			return nil, apperrors.NewNotFoundError("account", id)
		}
	}
	return locked, nil
}

// AdjustBalance adds signedAmount to the balance and returns the new balance.
func (r *PgxAccountRepository) AdjustBalance(ctx context.Context, tx pgx.Tx, accountID string, signedAmount decimal.Decimal, userID string, now time.Time) (decimal.Decimal, error) {
	query := `
		UPDATE accounts
		SET balance = balance + $2, last_updated_at = $3, last_updated_by = $4
		WHERE account_id = $1
		RETURNING balance;
	`
	var balance decimal.Decimal
	err := r.db(tx).QueryRow(ctx, query, accountID, signedAmount, now, userID).Scan(&balance)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, apperrors.NewNotFoundError("account", accountID)
		}
		return decimal.Zero, fmt.Errorf("failed to adjust balance of account %s: %w", accountID, err)
	}
	return balance, nil
}
