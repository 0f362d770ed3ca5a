package pgsql

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/SscSPs/shop_ledger/internal/apperrors"
	"github.com/SscSPs/shop_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/shop_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/shop_ledger/internal/models"
	"github.com/SscSPs/shop_ledger/internal/utils/mapping"
	"github.com/SscSPs/shop_ledger/internal/utils/pagination"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

const movementColumns = `movement_id, kind, amount, account_id, document_type, document_id, party_id, note_id,
	occurred_at, description, voided_at, created_at, created_by, last_updated_at, last_updated_by`

// PgxMovementRepository persists the movement log.
type PgxMovementRepository struct {
	BaseRepository
}

func newPgxMovementRepository(pool *pgxpool.Pool) *PgxMovementRepository {
	return &PgxMovementRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.MovementRepositoryFacade = (*PgxMovementRepository)(nil)

func scanMovement(row pgx.Row) (models.Movement, error) {
	var m models.Movement
	err := row.Scan(
		&m.MovementID,
		&m.Kind,
		&m.Amount,
		&m.AccountID,
		&m.DocumentType,
		&m.DocumentID,
		&m.PartyID,
		&m.NoteID,
		&m.OccurredAt,
		&m.Description,
		&m.VoidedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func collectMovements(rows pgx.Rows) ([]domain.Movement, error) {
	defer rows.Close()
	movements := []domain.Movement{}
	for rows.Next() {
		m, err := scanMovement(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan movement row: %w", err)
		}
		movements = append(movements, mapping.ToDomainMovement(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating movement rows: %w", err)
	}
	return movements, nil
}

// SaveMovement appends a movement to the log.
func (r *PgxMovementRepository) SaveMovement(ctx context.Context, tx pgx.Tx, movement domain.Movement) error {
	m := mapping.ToModelMovement(movement)
	query := `
		INSERT INTO movements (` + movementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15);
	`
	_, err := r.db(tx).Exec(ctx, query,
		m.MovementID, m.Kind, m.Amount, m.AccountID, m.DocumentType, m.DocumentID, m.PartyID, m.NoteID,
		m.OccurredAt, m.Description, m.VoidedAt, m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "movement %s", m.MovementID)
	}
	return nil
}

func (r *PgxMovementRepository) findMovement(ctx context.Context, tx pgx.Tx, movementID string, lock bool) (*domain.Movement, error) {
	query := `SELECT ` + movementColumns + ` FROM movements WHERE movement_id = $1`
	if lock {
		query += ` FOR UPDATE`
	}
	m, err := scanMovement(r.db(tx).QueryRow(ctx, query, movementID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("movement", movementID)
		}
		return nil, fmt.Errorf("failed to find movement %s: %w", movementID, err)
	}
	mov := mapping.ToDomainMovement(m)
	return &mov, nil
}

// FindMovementByID retrieves a movement, voided or not.
func (r *PgxMovementRepository) FindMovementByID(ctx context.Context, tx pgx.Tx, movementID string) (*domain.Movement, error) {
	return r.findMovement(ctx, tx, movementID, false)
}

// FindMovementForUpdate locks the movement row.
func (r *PgxMovementRepository) FindMovementForUpdate(ctx context.Context, tx pgx.Tx, movementID string) (*domain.Movement, error) {
	return r.findMovement(ctx, tx, movementID, true)
}

// ListMovements returns effective movements newest first with keyset pagination.
func (r *PgxMovementRepository) ListMovements(ctx context.Context, tx pgx.Tx, filter domain.MovementFilter, limit int, nextToken *string) ([]domain.Movement, *string, error) {
	conditions := []string{"voided_at IS NULL"}
	args := []any{}
	addArg := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if filter.AccountID != nil {
		conditions = append(conditions, "account_id = "+addArg(*filter.AccountID))
	}
	if filter.Kind != nil {
		conditions = append(conditions, "kind = "+addArg(string(*filter.Kind)))
	}
	if filter.From != nil {
		conditions = append(conditions, "occurred_at >= "+addArg(*filter.From))
	}
	if filter.To != nil {
		conditions = append(conditions, "occurred_at < "+addArg(*filter.To))
	}
	if nextToken != nil && *nextToken != "" {
		lastAt, lastID, err := pagination.DecodeToken(*nextToken)
		if err != nil {
			return nil, nil, apperrors.NewValidationError("%s", err.Error())
		}
		conditions = append(conditions, fmt.Sprintf("(occurred_at, movement_id) < (%s, %s)", addArg(lastAt), addArg(lastID)))
	}

	query := `SELECT ` + movementColumns + ` FROM movements WHERE ` + strings.Join(conditions, " AND ") +
		` ORDER BY occurred_at DESC, movement_id DESC LIMIT ` + addArg(limit+1)

	rows, err := r.db(tx).Query(ctx, query, args...)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list movements: %w", err)
	}
	movements, err := collectMovements(rows)
	if err != nil {
		return nil, nil, err
	}

	var next *string
	if len(movements) > limit {
		movements = movements[:limit]
		last := movements[len(movements)-1]
		token := pagination.EncodeToken(last.OccurredAt, last.MovementID)
		next = &token
	}
	return movements, next, nil
}

// ListMovementsForDocument returns the effective movements linked to a document in business time order.
func (r *PgxMovementRepository) ListMovementsForDocument(ctx context.Context, tx pgx.Tx, documentType domain.DocumentType, documentID string) ([]domain.Movement, error) {
	query := `
		SELECT ` + movementColumns + `
		FROM movements
		WHERE document_type = $1 AND document_id = $2 AND voided_at IS NULL
		ORDER BY occurred_at, movement_id;
	`
	rows, err := r.db(tx).Query(ctx, query, string(documentType), documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list movements for %s %s: %w", documentType, documentID, err)
	}
	return collectMovements(rows)
}

// UpdateMovementAmount rewrites the amount of an effective movement.
func (r *PgxMovementRepository) UpdateMovementAmount(ctx context.Context, tx pgx.Tx, movementID string, amount decimal.Decimal, userID string, now time.Time) error {
	query := `
		UPDATE movements SET amount = $2, last_updated_at = $3, last_updated_by = $4
		WHERE movement_id = $1 AND voided_at IS NULL;
	`
	cmdTag, err := r.db(tx).Exec(ctx, query, movementID, amount, now, userID)
	if err != nil {
		return mapWriteError(err, "movement %s", movementID)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("movement", movementID)
	}
	return nil
}

// VoidMovement tombstones an effective movement.
func (r *PgxMovementRepository) VoidMovement(ctx context.Context, tx pgx.Tx, movementID string, userID string, now time.Time) error {
	query := `
		UPDATE movements SET voided_at = $2, last_updated_at = $2, last_updated_by = $3
		WHERE movement_id = $1 AND voided_at IS NULL;
	`
	cmdTag, err := r.db(tx).Exec(ctx, query, movementID, now, userID)
	if err != nil {
		return fmt.Errorf("failed to void movement %s: %w", movementID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("movement", movementID)
	}
	return nil
}

// SaveAmountEdit records the audit row of an amount edit.
func (r *PgxMovementRepository) SaveAmountEdit(ctx context.Context, tx pgx.Tx, edit domain.MovementAmountEdit) error {
	m := mapping.ToModelMovementAmountEdit(edit)
	query := `
		INSERT INTO movement_amount_edits (edit_id, movement_id, old_amount, new_amount, edited_at, edited_by)
		VALUES ($1, $2, $3, $4, $5, $6);
	`
	if _, err := r.db(tx).Exec(ctx, query, m.EditID, m.MovementID, m.OldAmount, m.NewAmount, m.EditedAt, m.EditedBy); err != nil {
		return mapWriteError(err, "amount edit of movement %s", m.MovementID)
	}
	return nil
}
