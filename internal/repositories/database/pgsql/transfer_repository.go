package pgsql

import (
	"context"
	"errors"
	"fmt"

	"github.com/SscSPs/shop_ledger/internal/apperrors"
	"github.com/SscSPs/shop_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/shop_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/shop_ledger/internal/models"
	"github.com/SscSPs/shop_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const transferColumns = `transfer_id, from_account_id, to_account_id, amount, status, currency_code, fee, exchange_rate,
	transfer_date, completed_at, reversed_at, description, created_at, created_by, last_updated_at, last_updated_by`

// PgxTransferRepository persists internal transfers.
type PgxTransferRepository struct {
	BaseRepository
}

func newPgxTransferRepository(pool *pgxpool.Pool) *PgxTransferRepository {
	return &PgxTransferRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.TransferRepositoryFacade = (*PgxTransferRepository)(nil)

func scanTransfer(row pgx.Row) (models.Transfer, error) {
	var m models.Transfer
	err := row.Scan(
		&m.TransferID,
		&m.FromAccountID,
		&m.ToAccountID,
		&m.Amount,
		&m.Status,
		&m.CurrencyCode,
		&m.Fee,
		&m.ExchangeRate,
		&m.TransferDate,
		&m.CompletedAt,
		&m.ReversedAt,
		&m.Description,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

// SaveTransfer inserts a transfer.
func (r *PgxTransferRepository) SaveTransfer(ctx context.Context, tx pgx.Tx, transfer domain.Transfer) error {
	m := mapping.ToModelTransfer(transfer)
	query := `
		INSERT INTO transfers (` + transferColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16);
	`
	_, err := r.db(tx).Exec(ctx, query,
		m.TransferID, m.FromAccountID, m.ToAccountID, m.Amount, m.Status, m.CurrencyCode, m.Fee, m.ExchangeRate,
		m.TransferDate, m.CompletedAt, m.ReversedAt, m.Description, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "transfer %s", m.TransferID)
	}
	return nil
}

func (r *PgxTransferRepository) findTransfer(ctx context.Context, tx pgx.Tx, transferID string, lock bool) (*domain.Transfer, error) {
	query := `SELECT ` + transferColumns + ` FROM transfers WHERE transfer_id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	m, err := scanTransfer(r.db(tx).QueryRow(ctx, query, transferID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("transfer", transferID)
		}
		return nil, fmt.Errorf("failed to find transfer %s: %w", transferID, err)
	}
	t := mapping.ToDomainTransfer(m)
	return &t, nil
}

// FindTransferByID retrieves a transfer.
func (r *PgxTransferRepository) FindTransferByID(ctx context.Context, tx pgx.Tx, transferID string) (*domain.Transfer, error) {
	return r.findTransfer(ctx, tx, transferID, false)
}

// FindTransferForUpdate locks the transfer row.
func (r *PgxTransferRepository) FindTransferForUpdate(ctx context.Context, tx pgx.Tx, transferID string) (*domain.Transfer, error) {
	return r.findTransfer(ctx, tx, transferID, true)
}

// UpdateTransferStatus persists the lifecycle fields of a transfer.
func (r *PgxTransferRepository) UpdateTransferStatus(ctx context.Context, tx pgx.Tx, transfer domain.Transfer) error {
	query := `
		UPDATE transfers
		SET status = $2, completed_at = $3, reversed_at = $4, last_updated_at = $5, last_updated_by = $6
		WHERE transfer_id = $1;
	`
	cmdTag, err := r.db(tx).Exec(ctx, query,
		transfer.TransferID, string(transfer.Status), transfer.CompletedAt, transfer.ReversedAt,
		transfer.LastUpdatedAt, transfer.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update transfer %s: %w", transfer.TransferID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("transfer", transfer.TransferID)
	}
	return nil
}

// ListTransfers lists transfers newest first, optionally touching one account.
func (r *PgxTransferRepository) ListTransfers(ctx context.Context, tx pgx.Tx, accountID *string, limit int, offset int) ([]domain.Transfer, error) {
	query := `
		SELECT ` + transferColumns + `
		FROM transfers
		WHERE $1::text IS NULL OR from_account_id = $1 OR to_account_id = $1
		ORDER BY transfer_date DESC, transfer_id DESC
		LIMIT $2 OFFSET $3;
	`
	rows, err := r.db(tx).Query(ctx, query, accountID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list transfers: %w", err)
	}
	defer rows.Close()

	transfers := []domain.Transfer{}
	for rows.Next() {
		m, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan transfer row: %w", err)
		}
		transfers = append(transfers, mapping.ToDomainTransfer(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transfer rows: %w", err)
	}
	return transfers, nil
}
