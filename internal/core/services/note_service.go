package services

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/shop_ledger/internal/apperrors"
	"github.com/SscSPs/shop_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/shop_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/shop_ledger/internal/core/ports/services"
	"github.com/SscSPs/shop_ledger/internal/dto"
	"github.com/SscSPs/shop_ledger/internal/metrics"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// NoteService runs the credit and debit note lifecycle, including debt allocation.
type NoteService struct {
	BaseService
	txManager     portsrepo.TransactionManager
	noteRepo      portsrepo.NoteRepositoryFacade
	saleRepo      portsrepo.SaleRepositoryFacade
	purchaseRepo  portsrepo.PurchaseRepositoryFacade
	inventoryRepo portsrepo.InventoryRepositoryFacade
	ledger        *ledger
}

// NewNoteService creates a new NoteService.
func NewNoteService(repos portsrepo.RepositoryProvider, options ...ServiceOption) *NoteService {
	return &NoteService{
		BaseService:   applyOptions(options),
		txManager:     repos.TxManager,
		noteRepo:      repos.NoteRepo,
		saleRepo:      repos.SaleRepo,
		purchaseRepo:  repos.PurchaseRepo,
		inventoryRepo: repos.InventoryRepo,
		ledger:        newLedger(repos),
	}
}

var _ portssvc.NoteSvcFacade = (*NoteService)(nil)

func sideNoun(side domain.NoteSide) string {
	if side == domain.DebitNoteSide {
		return "purchase"
	}
	return "sale"
}

func noteEntity(side domain.NoteSide) string {
	if side == domain.DebitNoteSide {
		return "debit note"
	}
	return "credit note"
}

// checkSide hides notes of the other side behind a not-found error.
func checkSide(note *domain.Note, side domain.NoteSide) error {
	if note.Side != side {
		return apperrors.NewNotFoundError(noteEntity(side), note.NoteID)
	}
	return nil
}

func checkNoteItems(items []dto.NoteItemRequest) error {
	seen := make(map[string]struct{}, len(items))
	for _, it := range items {
		if _, ok := seen[it.DocumentItemID]; ok {
			return apperrors.NewValidationError("document item %s is listed more than once", it.DocumentItemID)
		}
		if it.Quantity.LessThanOrEqual(decimal.Zero) {
			return apperrors.NewValidationError("return quantity for %s must be positive", it.DocumentItemID)
		}
		seen[it.DocumentItemID] = struct{}{}
	}
	return nil
}

func (s *NoteService) buildItems(noteID string, items []dto.NoteItemRequest) []domain.NoteItem {
	out := make([]domain.NoteItem, 0, len(items))
	for _, it := range items {
		out = append(out, domain.NoteItem{
			NoteItemID:     s.NewID(),
			NoteID:         noteID,
			DocumentItemID: it.DocumentItemID,
			Quantity:       it.Quantity,
		})
	}
	return out
}

// checkTarget verifies that the target document exists and belongs to the party.
func (s *NoteService) checkTarget(ctx context.Context, tx pgx.Tx, side domain.NoteSide, partyID string, targetID *string) error {
	if targetID == nil {
		return nil
	}
	var owner string
	if side == domain.DebitNoteSide {
		p, err := s.purchaseRepo.FindPurchaseByID(ctx, tx, *targetID)
		if err != nil {
			return err
		}
		owner = p.SupplierID
	} else {
		sale, err := s.saleRepo.FindSaleByID(ctx, tx, *targetID)
		if err != nil {
			return err
		}
		owner = sale.CustomerID
	}
	if owner != partyID {
		return apperrors.NewValidationError("%s %s does not belong to party %s", sideNoun(side), *targetID, partyID)
	}
	return nil
}

// GetNote returns a note and, once applied, its allocation lines.
func (s *NoteService) GetNote(ctx context.Context, side domain.NoteSide, noteID string) (*domain.Note, []domain.NoteAllocation, error) {
	note, err := s.noteRepo.FindNoteByID(ctx, nil, noteID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find note", slog.String("note_id", noteID))
		}
		return nil, nil, err
	}
	if err := checkSide(note, side); err != nil {
		return nil, nil, err
	}
	allocations, err := s.noteRepo.ListAllocations(ctx, nil, noteID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list note allocations", slog.String("note_id", noteID))
		return nil, nil, err
	}
	return note, allocations, nil
}

// ListNotesForDocument lists notes targeting or allocated to a document.
func (s *NoteService) ListNotesForDocument(ctx context.Context, side domain.NoteSide, documentID string) ([]domain.Note, error) {
	notes, err := s.noteRepo.ListNotesForDocument(ctx, nil, side.DocumentType(), documentID)
	if err != nil {
		s.LogError(ctx, err, "Failed to list notes", slog.String("document_id", documentID))
		return nil, err
	}
	return notes, nil
}

// CreateNote records a pending note. Pending notes have no ledger effect.
func (s *NoteService) CreateNote(ctx context.Context, side domain.NoteSide, req dto.CreateNoteRequest, userID string) (*domain.Note, error) {
	if strings.TrimSpace(req.PartyID) == "" {
		return nil, apperrors.NewValidationError("party is required")
	}
	if !req.Reason.IsValid() {
		return nil, apperrors.NewValidationError("unknown note reason %q", req.Reason)
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperrors.NewValidationError("note amount must be positive")
	}
	if err := checkNoteItems(req.Items); err != nil {
		return nil, err
	}

	now := s.Now()
	note := domain.Note{
		NoteID:           s.NewID(),
		Side:             side,
		PartyID:          req.PartyID,
		TargetDocumentID: req.TargetDocumentID,
		Amount:           req.Amount,
		Reason:           req.Reason,
		Description:      req.Description,
		Status:           domain.NotePending,
		RemainderAmount:  decimal.Zero,
		ProfitAmount:     decimal.Zero,
		LossAmount:       decimal.Zero,
		AuditFields:      domain.NewAuditFields(userID, now),
	}
	note.Items = s.buildItems(note.NoteID, req.Items)

	err := s.txManager.WithinTx(ctx, func(tx pgx.Tx) error {
		if err := s.checkTarget(ctx, tx, side, note.PartyID, note.TargetDocumentID); err != nil {
			return err
		}
		return s.noteRepo.SaveNote(ctx, tx, note)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create note", slog.String("side", string(side)))
		return nil, err
	}

	s.LogInfo(ctx, "Note created", slog.String("note_id", note.NoteID), slog.String("side", string(side)))
	return &note, nil
}

// UpdateNote edits a pending note.
func (s *NoteService) UpdateNote(ctx context.Context, side domain.NoteSide, noteID string, req dto.UpdateNoteRequest, userID string) (*domain.Note, error) {
	now := s.Now()
	var note *domain.Note
	err := s.txManager.WithinTx(ctx, func(tx pgx.Tx) error {
		var err error
		note, err = s.noteRepo.FindNoteForUpdate(ctx, tx, noteID)
		if err != nil {
			return err
		}
		if err := checkSide(note, side); err != nil {
			return err
		}
		if err := note.EnsureEditable(); err != nil {
			return err
		}

		if req.TargetDocumentID != nil {
			if err := s.checkTarget(ctx, tx, side, note.PartyID, req.TargetDocumentID); err != nil {
				return err
			}
			note.TargetDocumentID = req.TargetDocumentID
		}
		if req.Amount != nil {
			if req.Amount.LessThanOrEqual(decimal.Zero) {
				return apperrors.NewValidationError("note amount must be positive")
			}
			note.Amount = *req.Amount
		}
		if req.Reason != nil {
			if !req.Reason.IsValid() {
				return apperrors.NewValidationError("unknown note reason %q", *req.Reason)
			}
			note.Reason = *req.Reason
		}
		if req.Description != nil {
			note.Description = *req.Description
		}
		if req.Items != nil {
			if err := checkNoteItems(*req.Items); err != nil {
				return err
			}
			note.Items = s.buildItems(note.NoteID, *req.Items)
		}
		note.Touch(userID, now)
		return s.noteRepo.UpdateNote(ctx, tx, *note)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to update note", slog.String("note_id", noteID))
		return nil, err
	}

	s.LogInfo(ctx, "Note updated", slog.String("note_id", noteID))
	return note, nil
}

// DeleteNote soft deletes a pending note.
func (s *NoteService) DeleteNote(ctx context.Context, side domain.NoteSide, noteID string, userID string) error {
	now := s.Now()
	err := s.txManager.WithinTx(ctx, func(tx pgx.Tx) error {
		note, err := s.noteRepo.FindNoteForUpdate(ctx, tx, noteID)
		if err != nil {
			return err
		}
		if err := checkSide(note, side); err != nil {
			return err
		}
		if err := note.EnsureEditable(); err != nil {
			return err
		}
		note.DeletedAt = &now
		note.Touch(userID, now)
		return s.noteRepo.UpdateNote(ctx, tx, *note)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to delete note", slog.String("note_id", noteID))
		return err
	}
	s.LogInfo(ctx, "Note deleted", slog.String("note_id", noteID))
	return nil
}

// ApplyNote applies a pending note: returned lines go back to (or out of) stock, the amount is
// allocated across the party's open documents oldest first and any remainder becomes a
// standing balance.
func (s *NoteService) ApplyNote(ctx context.Context, side domain.NoteSide, noteID string, req dto.ApplyNoteRequest, userID string) (*domain.Note, []domain.NoteAllocation, error) {
	now := s.Now()
	var (
		note        *domain.Note
		allocations []domain.NoteAllocation
		result      domain.AllocationResult
	)
	err := s.txManager.WithinTx(ctx, func(tx pgx.Tx) error {
		var err error
		note, err = s.noteRepo.FindNoteForUpdate(ctx, tx, noteID)
		if err != nil {
			return err
		}
		if err := checkSide(note, side); err != nil {
			return err
		}
		if err := note.EnsureApplicable(); err != nil {
			return err
		}

		preferred := note.TargetDocumentID
		if req.PreferredDocumentID != nil {
			preferred = req.PreferredDocumentID
		}

		var effects domain.NoteEffects
		if side == domain.DebitNoteSide {
			result, effects, err = s.applyToPurchases(ctx, tx, note, preferred, userID, now)
		} else {
			result, effects, err = s.applyToSales(ctx, tx, note, preferred, userID, now)
		}
		if err != nil {
			return err
		}

		allocations = make([]domain.NoteAllocation, 0, len(result.AppliedTo))
		for i, line := range result.AppliedTo {
			allocations = append(allocations, domain.NoteAllocation{
				NoteID:     note.NoteID,
				DocumentID: line.DocumentID,
				Amount:     line.Amount,
				Sequence:   i + 1,
			})
		}
		if err := s.noteRepo.SaveAllocations(ctx, tx, allocations); err != nil {
			return err
		}

		if result.Remainder.GreaterThan(decimal.Zero) {
			balance := domain.StandingBalance{
				StandingBalanceID: s.NewID(),
				NoteID:            note.NoteID,
				Side:              side,
				PartyID:           note.PartyID,
				Amount:            result.Remainder,
				Status:            domain.StandingOpen,
				AuditFields:       domain.NewAuditFields(userID, now),
			}
			if err := s.noteRepo.SaveStandingBalance(ctx, tx, balance); err != nil {
				return err
			}
		}

		note.Status = domain.NoteApplied
		note.AppliedAt = &now
		note.RemainderAmount = result.Remainder
		note.ProfitAmount = effects.Profit
		note.LossAmount = effects.Loss
		note.ApplicationSummary = result.Summary(sideNoun(side))
		note.Touch(userID, now)
		return s.noteRepo.UpdateNote(ctx, tx, *note)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to apply note", slog.String("note_id", noteID))
		return nil, nil, err
	}

	metrics.NotesApplied.WithLabelValues(string(side)).Inc()
	if result.Remainder.GreaterThan(decimal.Zero) {
		metrics.AllocationRemainders.WithLabelValues(string(side)).Inc()
	}

	s.LogInfo(ctx, "Note applied",
		slog.String("note_id", noteID),
		slog.String("applied", result.TotalApplied.String()),
		slog.String("remainder", result.Remainder.String()))
	return note, allocations, nil
}

func noteItemIDs(note *domain.Note) []string {
	ids := make([]string, 0, len(note.Items))
	for _, it := range note.Items {
		ids = append(ids, it.DocumentItemID)
	}
	return ids
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func (s *NoteService) applyToSales(ctx context.Context, tx pgx.Tx, note *domain.Note, preferred *string, userID string, now time.Time) (domain.AllocationResult, domain.NoteEffects, error) {
	lines := map[string]domain.SaleItem{}
	if len(note.Items) > 0 {
		var err error
		if lines, err = s.saleRepo.FindSaleItemsByIDs(ctx, tx, noteItemIDs(note)); err != nil {
			return domain.AllocationResult{}, domain.NoteEffects{}, err
		}
	}
	wanted := map[string]struct{}{}
	if preferred != nil {
		wanted[*preferred] = struct{}{}
	}
	for _, line := range lines {
		wanted[line.SaleID] = struct{}{}
	}

	// Sales are locked in ascending ID order before any of their items are written.
	locked, err := s.saleRepo.LockSalesForCustomer(ctx, tx, note.PartyID, sortedKeys(wanted))
	if err != nil {
		return domain.AllocationResult{}, domain.NoteEffects{}, err
	}
	sales := make(map[string]*domain.Sale, len(locked))
	for i := range locked {
		sales[locked[i].SaleID] = &locked[i]
	}
	for _, id := range sortedKeys(wanted) {
		doc, ok := sales[id]
		if !ok {
			return domain.AllocationResult{}, domain.NoteEffects{}, apperrors.NewNotFoundError("sale", id)
		}
		if doc.CustomerID != note.PartyID {
			return domain.AllocationResult{}, domain.NoteEffects{}, apperrors.NewValidationError("sale %s does not belong to customer %s", id, note.PartyID)
		}
	}
	for itemID, line := range lines {
		for _, it := range sales[line.SaleID].Items {
			if it.SaleItemID == itemID {
				lines[itemID] = it
			}
		}
	}

	effects, err := domain.CreditNoteEffects(*note, lines)
	if err != nil {
		return domain.AllocationResult{}, domain.NoteEffects{}, err
	}

	touched := map[string]struct{}{}
	returned := make([]domain.SaleItem, 0, len(effects.Items))
	changes := make([]domain.StockChange, 0, len(effects.Items))
	for _, e := range effects.Items {
		line := lines[e.DocumentItemID]
		line.ReturnedQuantity = line.ReturnedQuantity.Add(e.Quantity)
		returned = append(returned, line)
		if e.Restock {
			changes = append(changes, e.StockChange)
		}
		sale := sales[line.SaleID]
		for i := range sale.Items {
			if sale.Items[i].SaleItemID == line.SaleItemID {
				sale.Items[i].ReturnedQuantity = line.ReturnedQuantity
			}
		}
		touched[line.SaleID] = struct{}{}
	}
	for i := range note.Items {
		line := lines[note.Items[i].DocumentItemID]
		note.Items[i].ProductID = line.ProductID
		note.Items[i].UnitPrice = line.UnitPrice
		note.Items[i].UnitCost = line.UnitCost
	}
	if err := s.saleRepo.UpdateSaleItemReturns(ctx, tx, returned); err != nil {
		return domain.AllocationResult{}, domain.NoteEffects{}, err
	}
	if err := s.inventoryRepo.ApplyStockChanges(ctx, tx, changes, now); err != nil {
		return domain.AllocationResult{}, domain.NoteEffects{}, err
	}

	docs := make([]domain.OpenDocument, 0, len(sales))
	for _, id := range sortedKeys(sales) {
		docs = append(docs, sales[id].AsOpenDocument())
	}
	result, err := domain.Allocate(note.Amount, note.PartyID, preferred, docs)
	if err != nil {
		return domain.AllocationResult{}, domain.NoteEffects{}, err
	}
	for _, line := range result.AppliedTo {
		sale := sales[line.DocumentID]
		sale.NoteAdjustment = sale.NoteAdjustment.Add(line.Amount)
		touched[line.DocumentID] = struct{}{}
	}

	for _, id := range sortedKeys(touched) {
		sale := sales[id]
		sale.Recalculate()
		sale.Touch(userID, now)
		if err := s.saleRepo.UpdateSaleLedger(ctx, tx, *sale, userID, now); err != nil {
			return domain.AllocationResult{}, domain.NoteEffects{}, err
		}
	}
	return result, effects, nil
}

func (s *NoteService) applyToPurchases(ctx context.Context, tx pgx.Tx, note *domain.Note, preferred *string, userID string, now time.Time) (domain.AllocationResult, domain.NoteEffects, error) {
	lines := map[string]domain.PurchaseItem{}
	if len(note.Items) > 0 {
		var err error
		if lines, err = s.purchaseRepo.FindPurchaseItemsByIDs(ctx, tx, noteItemIDs(note)); err != nil {
			return domain.AllocationResult{}, domain.NoteEffects{}, err
		}
	}
	wanted := map[string]struct{}{}
	if preferred != nil {
		wanted[*preferred] = struct{}{}
	}
	for _, line := range lines {
		wanted[line.PurchaseID] = struct{}{}
	}

	// Purchases are locked in ascending ID order before any of their items are written.
	locked, err := s.purchaseRepo.LockPurchasesForSupplier(ctx, tx, note.PartyID, sortedKeys(wanted))
	if err != nil {
		return domain.AllocationResult{}, domain.NoteEffects{}, err
	}
	purchases := make(map[string]*domain.Purchase, len(locked))
	for i := range locked {
		purchases[locked[i].PurchaseID] = &locked[i]
	}
	for _, id := range sortedKeys(wanted) {
		doc, ok := purchases[id]
		if !ok {
			return domain.AllocationResult{}, domain.NoteEffects{}, apperrors.NewNotFoundError("purchase", id)
		}
		if doc.SupplierID != note.PartyID {
			return domain.AllocationResult{}, domain.NoteEffects{}, apperrors.NewValidationError("purchase %s does not belong to supplier %s", id, note.PartyID)
		}
	}
	for itemID, line := range lines {
		for _, it := range purchases[line.PurchaseID].Items {
			if it.PurchaseItemID == itemID {
				lines[itemID] = it
			}
		}
	}

	effects, err := domain.DebitNoteEffects(*note, lines)
	if err != nil {
		return domain.AllocationResult{}, domain.NoteEffects{}, err
	}

	touched := map[string]struct{}{}
	returned := make([]domain.PurchaseItem, 0, len(effects.Items))
	changes := make([]domain.StockChange, 0, len(effects.Items))
	for _, e := range effects.Items {
		line := lines[e.DocumentItemID]
		line.ReturnedQuantity = line.ReturnedQuantity.Add(e.Quantity)
		returned = append(returned, line)
		if !e.StockChange.QuantityDelta.IsZero() {
			changes = append(changes, e.StockChange)
		}
		purchase := purchases[line.PurchaseID]
		for i := range purchase.Items {
			if purchase.Items[i].PurchaseItemID == line.PurchaseItemID {
				purchase.Items[i].ReturnedQuantity = line.ReturnedQuantity
			}
		}
		touched[line.PurchaseID] = struct{}{}
	}
	for i := range note.Items {
		line := lines[note.Items[i].DocumentItemID]
		note.Items[i].ProductID = line.ProductID
		note.Items[i].UnitCost = line.UnitCost
	}
	if err := s.purchaseRepo.UpdatePurchaseItemReturns(ctx, tx, returned); err != nil {
		return domain.AllocationResult{}, domain.NoteEffects{}, err
	}
	if err := s.inventoryRepo.ApplyStockChanges(ctx, tx, changes, now); err != nil {
		return domain.AllocationResult{}, domain.NoteEffects{}, err
	}

	docs := make([]domain.OpenDocument, 0, len(purchases))
	for _, id := range sortedKeys(purchases) {
		docs = append(docs, purchases[id].AsOpenDocument())
	}
	result, err := domain.Allocate(note.Amount, note.PartyID, preferred, docs)
	if err != nil {
		return domain.AllocationResult{}, domain.NoteEffects{}, err
	}
	for _, line := range result.AppliedTo {
		purchase := purchases[line.DocumentID]
		purchase.NoteAdjustment = purchase.NoteAdjustment.Add(line.Amount)
		touched[line.DocumentID] = struct{}{}
	}

	for _, id := range sortedKeys(touched) {
		purchase := purchases[id]
		purchase.Recalculate()
		purchase.Touch(userID, now)
		if err := s.purchaseRepo.UpdatePurchaseLedger(ctx, tx, *purchase, userID, now); err != nil {
			return domain.AllocationResult{}, domain.NoteEffects{}, err
		}
	}
	return result, effects, nil
}

// RefundNote pays the standing remainder of an applied note back to the party
// (credit notes) or in from the supplier (debit notes).
func (s *NoteService) RefundNote(ctx context.Context, side domain.NoteSide, noteID string, req dto.RefundNoteRequest, userID string) (*domain.Note, error) {
	now := s.Now()
	var (
		note *domain.Note
		m    domain.Movement
	)
	err := s.txManager.WithinTx(ctx, func(tx pgx.Tx) error {
		if req.AccountID != nil {
			if _, err := s.ledger.lockUsableAccount(ctx, tx, *req.AccountID); err != nil {
				return err
			}
		}
		var err error
		note, err = s.noteRepo.FindNoteForUpdate(ctx, tx, noteID)
		if err != nil {
			return err
		}
		if err := checkSide(note, side); err != nil {
			return err
		}
		if err := note.EnsureRefundable(); err != nil {
			return err
		}
		balance, err := s.noteRepo.FindOpenStandingBalanceForNote(ctx, tx, noteID)
		if err != nil {
			return err
		}

		m = newMovement(s.NewID(), side.RefundKind(), balance.Amount, req.AccountID, paymentTime(req.RefundedAt, now),
			"Refund of "+noteEntity(side)+" "+noteID, userID, now)
		m.NoteID = &note.NoteID
		m.PartyID = &note.PartyID
		if err := s.ledger.post(ctx, tx, m, userID, now); err != nil {
			return err
		}

		balance.Status = domain.StandingRefunded
		balance.SettledAt = &now
		balance.Touch(userID, now)
		if err := s.noteRepo.UpdateStandingBalance(ctx, tx, *balance); err != nil {
			return err
		}

		note.Status = domain.NoteRefunded
		note.Touch(userID, now)
		return s.noteRepo.UpdateNote(ctx, tx, *note)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to refund note", slog.String("note_id", noteID))
		return nil, err
	}
	metrics.MovementsRecorded.WithLabelValues(string(m.Kind)).Inc()

	s.LogInfo(ctx, "Note refunded",
		slog.String("note_id", noteID),
		slog.String("movement_id", m.MovementID),
		slog.String("amount", m.Amount.String()))
	return note, nil
}

// CancelNote cancels a pending note, or an applied one whose open remainder is then forfeited.
// Allocations already made stay in place.
func (s *NoteService) CancelNote(ctx context.Context, side domain.NoteSide, noteID string, userID string) (*domain.Note, error) {
	now := s.Now()
	var note *domain.Note
	err := s.txManager.WithinTx(ctx, func(tx pgx.Tx) error {
		var err error
		note, err = s.noteRepo.FindNoteForUpdate(ctx, tx, noteID)
		if err != nil {
			return err
		}
		if err := checkSide(note, side); err != nil {
			return err
		}
		if err := note.EnsureCancellable(); err != nil {
			return err
		}

		if note.Status == domain.NoteApplied && note.RemainderAmount.GreaterThan(decimal.Zero) {
			balance, err := s.noteRepo.FindOpenStandingBalanceForNote(ctx, tx, noteID)
			if err != nil {
				return err
			}
			balance.Status = domain.StandingCancelled
			balance.SettledAt = &now
			balance.Touch(userID, now)
			if err := s.noteRepo.UpdateStandingBalance(ctx, tx, *balance); err != nil {
				return err
			}
			if side == domain.DebitNoteSide {
				note.ProfitAmount = note.ProfitAmount.Sub(balance.Amount)
			} else {
				note.LossAmount = note.LossAmount.Sub(balance.Amount)
			}
		}

		note.Status = domain.NoteCancelled
		note.Touch(userID, now)
		return s.noteRepo.UpdateNote(ctx, tx, *note)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to cancel note", slog.String("note_id", noteID))
		return nil, err
	}

	s.LogInfo(ctx, "Note cancelled", slog.String("note_id", noteID))
	return note, nil
}
