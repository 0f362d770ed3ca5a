package services

import (
	"context"

	"github.com/SscSPs/shop_ledger/internal/core/domain"
	"github.com/SscSPs/shop_ledger/internal/dto"
)

// NoteReaderSvc defines read operations on notes.
type NoteReaderSvc interface {
	GetNote(ctx context.Context, side domain.NoteSide, noteID string) (*domain.Note, []domain.NoteAllocation, error)
	ListNotesForDocument(ctx context.Context, side domain.NoteSide, documentID string) ([]domain.Note, error)
}

// NoteWriterSvc defines the note lifecycle.
type NoteWriterSvc interface {
	CreateNote(ctx context.Context, side domain.NoteSide, req dto.CreateNoteRequest, userID string) (*domain.Note, error)
	UpdateNote(ctx context.Context, side domain.NoteSide, noteID string, req dto.UpdateNoteRequest, userID string) (*domain.Note, error)
	DeleteNote(ctx context.Context, side domain.NoteSide, noteID string, userID string) error

	// ApplyNote runs the debt allocation engine; the note carries the application summary.
	ApplyNote(ctx context.Context, side domain.NoteSide, noteID string, req dto.ApplyNoteRequest, userID string) (*domain.Note, []domain.NoteAllocation, error)
	RefundNote(ctx context.Context, side domain.NoteSide, noteID string, req dto.RefundNoteRequest, userID string) (*domain.Note, error)
	CancelNote(ctx context.Context, side domain.NoteSide, noteID string, userID string) (*domain.Note, error)
}

// NoteSvcFacade combines note read and write operations.
type NoteSvcFacade interface {
	NoteReaderSvc
	NoteWriterSvc
}
