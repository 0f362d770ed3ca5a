package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/shop_ledger/internal/apperrors"
	"github.com/SscSPs/shop_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/shop_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/shop_ledger/internal/models"
	"github.com/SscSPs/shop_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const reconciliationColumns = `reconciliation_id, account_id, business_date, opened_at, opening_system_balance,
	opening_counted_balance, opening_variance, opening_notes, closed_at, closing_system_balance,
	closing_counted_balance, closing_variance, closing_notes, created_at, created_by, last_updated_at, last_updated_by`

// PgxReconciliationRepository persists daily cash reconciliation snapshots.
type PgxReconciliationRepository struct {
	BaseRepository
}

func newPgxReconciliationRepository(pool *pgxpool.Pool) *PgxReconciliationRepository {
	return &PgxReconciliationRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.ReconciliationRepositoryFacade = (*PgxReconciliationRepository)(nil)

func scanReconciliation(row pgx.Row) (models.DailyCashReconciliation, error) {
	var m models.DailyCashReconciliation
	err := row.Scan(
		&m.ReconciliationID,
		&m.AccountID,
		&m.BusinessDate,
		&m.OpenedAt,
		&m.OpeningSystemBalance,
		&m.OpeningCountedBalance,
		&m.OpeningVariance,
		&m.OpeningNotes,
		&m.ClosedAt,
		&m.ClosingSystemBalance,
		&m.ClosingCountedBalance,
		&m.ClosingVariance,
		&m.ClosingNotes,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveReconciliation inserts the opening snapshot of a day.
func (r *PgxReconciliationRepository) SaveReconciliation(ctx context.Context, tx pgx.Tx, rec domain.Reconciliation) error {
	m := mapping.ToModelReconciliation(rec)
	query := `
		INSERT INTO daily_cash_reconciliations (` + reconciliationColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17);
	`
	_, err := r.db(tx).Exec(ctx, query,
		m.ReconciliationID, m.AccountID, m.BusinessDate, m.OpenedAt, m.OpeningSystemBalance,
		m.OpeningCountedBalance, m.OpeningVariance, m.OpeningNotes, m.ClosedAt, m.ClosingSystemBalance,
		m.ClosingCountedBalance, m.ClosingVariance, m.ClosingNotes, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "reconciliation for account %s on %s", rec.AccountID, rec.BusinessDate.Format(time.DateOnly))
	}
	return nil
}

func (r *PgxReconciliationRepository) findReconciliation(ctx context.Context, tx pgx.Tx, accountID string, businessDate time.Time, lock bool) (*domain.Reconciliation, error) {
	day := domain.BusinessDay(businessDate)
	query := `SELECT ` + reconciliationColumns + ` FROM daily_cash_reconciliations WHERE account_id = $1 AND business_date = $2`
	if lock {
		query += ` FOR UPDATE`
	}
	m, err := scanReconciliation(r.db(tx).QueryRow(ctx, query, accountID, day))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("reconciliation", accountID+"@"+day.Format(time.DateOnly))
		}
		return nil, fmt.Errorf("failed to find reconciliation for account %s: %w", accountID, err)
	}
	rec := mapping.ToDomainReconciliation(m)
	return &rec, nil
}

// FindReconciliation returns the row for the account and business day.
func (r *PgxReconciliationRepository) FindReconciliation(ctx context.Context, tx pgx.Tx, accountID string, businessDate time.Time) (*domain.Reconciliation, error) {
	return r.findReconciliation(ctx, tx, accountID, businessDate, false)
}

// FindReconciliationForUpdate locks the row for the account and business day.
func (r *PgxReconciliationRepository) FindReconciliationForUpdate(ctx context.Context, tx pgx.Tx, accountID string, businessDate time.Time) (*domain.Reconciliation, error) {
	return r.findReconciliation(ctx, tx, accountID, businessDate, true)
}

// CloseReconciliation writes the closing snapshot once.
func (r *PgxReconciliationRepository) CloseReconciliation(ctx context.Context, tx pgx.Tx, rec domain.Reconciliation) error {
	m := mapping.ToModelReconciliation(rec)
	query := `
		UPDATE daily_cash_reconciliations
		SET closed_at = $2, closing_system_balance = $3, closing_counted_balance = $4, closing_variance = $5,
			closing_notes = $6, last_updated_at = $7, last_updated_by = $8
		WHERE reconciliation_id = $1 AND closed_at IS NULL;
	`
	cmdTag, err := r.db(tx).Exec(ctx, query,
		m.ReconciliationID, m.ClosedAt, m.ClosingSystemBalance, m.ClosingCountedBalance, m.ClosingVariance,
		m.ClosingNotes, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "reconciliation %s", m.ReconciliationID)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewConflictError("reconciliation %s is already closed", m.ReconciliationID)
	}
	return nil
}

// ListReconciliationsForDay returns every row of the business day keyed by account.
func (r *PgxReconciliationRepository) ListReconciliationsForDay(ctx context.Context, tx pgx.Tx, businessDate time.Time) (map[string]domain.Reconciliation, error) {
	query := `SELECT ` + reconciliationColumns + ` FROM daily_cash_reconciliations WHERE business_date = $1`
	rows, err := r.db(tx).Query(ctx, query, domain.BusinessDay(businessDate))
	if err != nil {
		return nil, fmt.Errorf("failed to list reconciliations: %w", err)
	}
	defer rows.Close()

	out := map[string]domain.Reconciliation{}
	for rows.Next() {
		m, err := scanReconciliation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan reconciliation row: %w", err)
		}
		out[m.AccountID] = mapping.ToDomainReconciliation(m)
	}
	return out, rows.Err()
}
