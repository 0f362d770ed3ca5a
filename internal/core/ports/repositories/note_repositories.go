package repositories

import (
	"context"

	"github.com/SscSPs/shop_ledger/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// NoteReader defines read operations for credit and debit notes.
type NoteReader interface {
	FindNoteByID(ctx context.Context, tx pgx.Tx, noteID string) (*domain.Note, error)

	// ListNotesForDocument resolves the notes that target or were allocated to a document.
	ListNotesForDocument(ctx context.Context, tx pgx.Tx, documentType domain.DocumentType, documentID string) ([]domain.Note, error)

	ListAllocations(ctx context.Context, tx pgx.Tx, noteID string) ([]domain.NoteAllocation, error)
}

// NoteWriter defines write operations for notes.
type NoteWriter interface {
	SaveNote(ctx context.Context, tx pgx.Tx, note domain.Note) error

	// FindNoteForUpdate locks the note row and loads its items.
	FindNoteForUpdate(ctx context.Context, tx pgx.Tx, noteID string) (*domain.Note, error)

	// UpdateNote persists the note header and replaces its items.
	UpdateNote(ctx context.Context, tx pgx.Tx, note domain.Note) error

	SaveAllocations(ctx context.Context, tx pgx.Tx, allocations []domain.NoteAllocation) error
}

// StandingBalanceRepository persists unexhausted note remainders.
type StandingBalanceRepository interface {
	SaveStandingBalance(ctx context.Context, tx pgx.Tx, balance domain.StandingBalance) error
	FindOpenStandingBalanceForNote(ctx context.Context, tx pgx.Tx, noteID string) (*domain.StandingBalance, error)
	UpdateStandingBalance(ctx context.Context, tx pgx.Tx, balance domain.StandingBalance) error
}

// NoteRepositoryFacade combines note and standing balance persistence.
type NoteRepositoryFacade interface {
	NoteReader
	NoteWriter
	StandingBalanceRepository
}
