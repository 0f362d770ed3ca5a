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

const noteColumns = `note_id, side, party_id, target_document_id, amount, reason, description, status, applied_at,
	remainder_amount, profit_amount, loss_amount, application_summary, deleted_at,
	created_at, created_by, last_updated_at, last_updated_by`

const noteItemColumns = `note_item_id, note_id, document_item_id, product_id, quantity, unit_price, unit_cost`

const standingBalanceColumns = `standing_balance_id, note_id, side, party_id, amount, status, settled_at,
	created_at, created_by, last_updated_at, last_updated_by`

// PgxNoteRepository persists credit notes, debit notes and their standing balances.
type PgxNoteRepository struct {
	BaseRepository
}

func newPgxNoteRepository(pool *pgxpool.Pool) *PgxNoteRepository {
	return &PgxNoteRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.NoteRepositoryFacade = (*PgxNoteRepository)(nil)

func scanNote(row pgx.Row) (models.Note, error) {
	var m models.Note
	err := row.Scan(
		&m.NoteID,
		&m.Side,
		&m.PartyID,
		&m.TargetDocumentID,
		&m.Amount,
		&m.Reason,
		&m.Description,
		&m.Status,
		&m.AppliedAt,
		&m.RemainderAmount,
		&m.ProfitAmount,
		&m.LossAmount,
		&m.ApplicationSummary,
		&m.DeletedAt,
		&m.CreatedAt,
		&m.CreatedBy,
		&m.LastUpdatedAt,
		&m.LastUpdatedBy,
	)
	return m, err
}

func queueNoteItems(batch *pgx.Batch, note domain.Note) {
	for _, it := range note.Items {
		batch.Queue(`INSERT INTO note_items (`+noteItemColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			it.NoteItemID, note.NoteID, it.DocumentItemID, it.ProductID, it.Quantity, it.UnitPrice, it.UnitCost,
		)
	}
}

// SaveNote inserts the note header and its items in one batch.
func (r *PgxNoteRepository) SaveNote(ctx context.Context, tx pgx.Tx, note domain.Note) error {
	m := mapping.ToModelNote(note)
	batch := &pgx.Batch{}
	batch.Queue(`INSERT INTO notes (`+noteColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)`,
		m.NoteID, m.Side, m.PartyID, m.TargetDocumentID, m.Amount, m.Reason, m.Description, m.Status, m.AppliedAt,
		m.RemainderAmount, m.ProfitAmount, m.LossAmount, m.ApplicationSummary, m.DeletedAt,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	queueNoteItems(batch, note)
	return execBatch(ctx, r.db(tx), batch, "note "+note.NoteID)
}

// UpdateNote persists the note header and replaces its items.
func (r *PgxNoteRepository) UpdateNote(ctx context.Context, tx pgx.Tx, note domain.Note) error {
	m := mapping.ToModelNote(note)
	batch := &pgx.Batch{}
	batch.Queue(`
		UPDATE notes
		SET party_id = $2, target_document_id = $3, amount = $4, reason = $5, description = $6, status = $7,
			applied_at = $8, remainder_amount = $9, profit_amount = $10, loss_amount = $11,
			application_summary = $12, deleted_at = $13, last_updated_at = $14, last_updated_by = $15
		WHERE note_id = $1`,
		m.NoteID, m.PartyID, m.TargetDocumentID, m.Amount, m.Reason, m.Description, m.Status,
		m.AppliedAt, m.RemainderAmount, m.ProfitAmount, m.LossAmount,
		m.ApplicationSummary, m.DeletedAt, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	batch.Queue(`DELETE FROM note_items WHERE note_id = $1`, note.NoteID)
	queueNoteItems(batch, note)
	return execBatch(ctx, r.db(tx), batch, "note "+note.NoteID)
}

func (r *PgxNoteRepository) loadItems(ctx context.Context, tx pgx.Tx, notes []domain.Note) error {
	if len(notes) == 0 {
		return nil
	}
	ids := make([]string, len(notes))
	index := make(map[string]int, len(notes))
	for i, n := range notes {
		ids[i] = n.NoteID
		index[n.NoteID] = i
		notes[i].Items = []domain.NoteItem{}
	}
	rows, err := r.db(tx).Query(ctx, `SELECT `+noteItemColumns+` FROM note_items WHERE note_id = ANY($1) ORDER BY note_id, note_item_id`, ids)
	if err != nil {
		return fmt.Errorf("failed to load note items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it domain.NoteItem
		if err := rows.Scan(&it.NoteItemID, &it.NoteID, &it.DocumentItemID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.UnitCost); err != nil {
			return fmt.Errorf("failed to scan note item row: %w", err)
		}
		i := index[it.NoteID]
		notes[i].Items = append(notes[i].Items, it)
	}
	return rows.Err()
}

func (r *PgxNoteRepository) findNote(ctx context.Context, tx pgx.Tx, noteID string, lock bool) (*domain.Note, error) {
	query := `SELECT ` + noteColumns + ` FROM notes WHERE note_id = $1 AND deleted_at IS NULL`
	if lock {
		query += ` FOR UPDATE`
	}
	m, err := scanNote(r.db(tx).QueryRow(ctx, query, noteID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("note", noteID)
		}
		return nil, fmt.Errorf("failed to find note %s: %w", noteID, err)
	}
	notes := []domain.Note{mapping.ToDomainNote(m)}
	if err := r.loadItems(ctx, tx, notes); err != nil {
		return nil, err
	}
	return &notes[0], nil
}

// FindNoteByID retrieves a live note with its items.
func (r *PgxNoteRepository) FindNoteByID(ctx context.Context, tx pgx.Tx, noteID string) (*domain.Note, error) {
	return r.findNote(ctx, tx, noteID, false)
}

// FindNoteForUpdate locks the note row and loads its items.
func (r *PgxNoteRepository) FindNoteForUpdate(ctx context.Context, tx pgx.Tx, noteID string) (*domain.Note, error) {
	return r.findNote(ctx, tx, noteID, true)
}

// ListNotesForDocument returns the live notes of the document side that either target the
// document or hold an allocation line against it.
func (r *PgxNoteRepository) ListNotesForDocument(ctx context.Context, tx pgx.Tx, documentType domain.DocumentType, documentID string) ([]domain.Note, error) {
	side := domain.CreditNoteSide
	if documentType == domain.DocumentPurchase {
		side = domain.DebitNoteSide
	}
	query := `
		SELECT ` + noteColumns + `
		FROM notes n
		WHERE n.side = $1 AND n.deleted_at IS NULL
			AND (n.target_document_id = $2
				OR EXISTS (SELECT 1 FROM note_allocations a WHERE a.note_id = n.note_id AND a.document_id = $2))
		ORDER BY n.created_at, n.note_id;
	`
	rows, err := r.db(tx).Query(ctx, query, string(side), documentID)
	if err != nil {
		return nil, fmt.Errorf("failed to list notes for %s %s: %w", documentType, documentID, err)
	}
	notes := []domain.Note{}
	for rows.Next() {
		m, err := scanNote(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan note row: %w", err)
		}
		notes = append(notes, mapping.ToDomainNote(m))
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating note rows: %w", err)
	}
	if err := r.loadItems(ctx, tx, notes); err != nil {
		return nil, err
	}
	return notes, nil
}

// SaveAllocations inserts the allocation lines of an applied note.
func (r *PgxNoteRepository) SaveAllocations(ctx context.Context, tx pgx.Tx, allocations []domain.NoteAllocation) error {
	batch := &pgx.Batch{}
	for _, a := range allocations {
		batch.Queue(`INSERT INTO note_allocations (note_id, sequence, document_id, amount) VALUES ($1, $2, $3, $4)`,
			a.NoteID, a.Sequence, a.DocumentID, a.Amount)
	}
	return execBatch(ctx, r.db(tx), batch, "note allocations")
}

// ListAllocations returns the allocation lines of a note in application order.
func (r *PgxNoteRepository) ListAllocations(ctx context.Context, tx pgx.Tx, noteID string) ([]domain.NoteAllocation, error) {
	rows, err := r.db(tx).Query(ctx, `SELECT note_id, document_id, amount, sequence FROM note_allocations WHERE note_id = $1 ORDER BY sequence`, noteID)
	if err != nil {
		return nil, fmt.Errorf("failed to list allocations of note %s: %w", noteID, err)
	}
	defer rows.Close()
	allocations := []domain.NoteAllocation{}
	for rows.Next() {
		var a domain.NoteAllocation
		if err := rows.Scan(&a.NoteID, &a.DocumentID, &a.Amount, &a.Sequence); err != nil {
			return nil, fmt.Errorf("failed to scan allocation row: %w", err)
		}
		allocations = append(allocations, a)
	}
	return allocations, rows.Err()
}

// SaveStandingBalance inserts a standing balance.
func (r *PgxNoteRepository) SaveStandingBalance(ctx context.Context, tx pgx.Tx, balance domain.StandingBalance) error {
	m := mapping.ToModelStandingBalance(balance)
	_, err := r.db(tx).Exec(ctx, `INSERT INTO standing_balances (`+standingBalanceColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
		m.StandingBalanceID, m.NoteID, m.Side, m.PartyID, m.Amount, m.Status, m.SettledAt,
		m.CreatedAt, m.CreatedBy, m.LastUpdatedAt, m.LastUpdatedBy,
	)
	if err != nil {
		return mapWriteError(err, "standing balance of note %s", m.NoteID)
	}
	return nil
}

// FindOpenStandingBalanceForNote locks the open standing balance of a note.
func (r *PgxNoteRepository) FindOpenStandingBalanceForNote(ctx context.Context, tx pgx.Tx, noteID string) (*domain.StandingBalance, error) {
	var m models.StandingBalance
	err := r.db(tx).QueryRow(ctx, `SELECT `+standingBalanceColumns+` FROM standing_balances WHERE note_id = $1 AND status = 'OPEN' FOR UPDATE`, noteID).Scan(
		&m.StandingBalanceID, &m.NoteID, &m.Side, &m.PartyID, &m.Amount, &m.Status, &m.SettledAt,
		&m.CreatedAt, &m.CreatedBy, &m.LastUpdatedAt, &m.LastUpdatedBy,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("standing balance for note", noteID)
		}
		return nil, fmt.Errorf("failed to find standing balance for note %s: %w", noteID, err)
	}
	sb := mapping.ToDomainStandingBalance(m)
	return &sb, nil
}

// UpdateStandingBalance persists the settlement of a standing balance.
func (r *PgxNoteRepository) UpdateStandingBalance(ctx context.Context, tx pgx.Tx, balance domain.StandingBalance) error {
	cmdTag, err := r.db(tx).Exec(ctx, `
		UPDATE standing_balances
		SET status = $2, settled_at = $3, last_updated_at = $4, last_updated_by = $5
		WHERE standing_balance_id = $1`,
		balance.StandingBalanceID, string(balance.Status), balance.SettledAt, balance.LastUpdatedAt, balance.LastUpdatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to update standing balance %s: %w", balance.StandingBalanceID, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("standing balance", balance.StandingBalanceID)
	}
	return nil
}
