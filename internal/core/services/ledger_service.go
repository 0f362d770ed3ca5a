package services

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/shop_ledger/internal/apperrors"
	"github.com/SscSPs/shop_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/shop_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/shop_ledger/internal/utils/accounting"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// ledger posts movements and keeps account balances and document ledger fields in step.
// Every method runs inside the caller's transaction. Locks are taken accounts first, then
// documents in ascending ID order, then document items, then inventory rows.
type ledger struct {
	accountRepo  portsrepo.AccountRepositoryFacade
	movementRepo portsrepo.MovementRepositoryFacade
	saleRepo     portsrepo.SaleRepositoryFacade
	purchaseRepo portsrepo.PurchaseRepositoryFacade
}

func newLedger(repos portsrepo.RepositoryProvider) *ledger {
	return &ledger{
		accountRepo:  repos.AccountRepo,
		movementRepo: repos.MovementRepo,
		saleRepo:     repos.SaleRepo,
		purchaseRepo: repos.PurchaseRepo,
	}
}

// lockUsableAccount locks an account that may receive new movements.
func (l *ledger) lockUsableAccount(ctx context.Context, tx pgx.Tx, accountID string) (domain.Account, error) {
	locked, err := l.accountRepo.LockAccounts(ctx, tx, []string{accountID})
	if err != nil {
		return domain.Account{}, err
	}
	acc := locked[accountID]
	if acc.IsDeleted() {
		return domain.Account{}, apperrors.NewNotFoundError("account", accountID)
	}
	if !acc.IsActive {
		return domain.Account{}, apperrors.NewValidationError("account %s is inactive", accountID)
	}
	return acc, nil
}

// adjust applies a signed delta to an account already locked by the caller.
func (l *ledger) adjust(ctx context.Context, tx pgx.Tx, accountID string, delta decimal.Decimal, userID string, now time.Time) (decimal.Decimal, error) {
	if delta.IsZero() {
		return decimal.Zero, nil
	}
	return l.accountRepo.AdjustBalance(ctx, tx, accountID, delta, userID, now)
}

// post appends a movement and applies it to its account, if any.
func (l *ledger) post(ctx context.Context, tx pgx.Tx, m domain.Movement, userID string, now time.Time) error {
	if m.Amount.LessThanOrEqual(decimal.Zero) {
		return apperrors.NewValidationError("movement amount must be positive")
	}
	signed, err := accounting.CalculateSignedAmount(m.Kind, m.Amount)
	if err != nil {
		return apperrors.NewValidationError("%s", err.Error())
	}
	if m.AccountID != nil {
		if _, err := l.lockUsableAccount(ctx, tx, *m.AccountID); err != nil {
			return err
		}
	}
	if err := l.movementRepo.SaveMovement(ctx, tx, m); err != nil {
		return err
	}
	if m.AccountID != nil {
		if _, err := l.adjust(ctx, tx, *m.AccountID, signed, userID, now); err != nil {
			return err
		}
	}
	return nil
}

// newMovement builds a movement stamped with the actor and instant.
func newMovement(id string, kind domain.MovementKind, amount decimal.Decimal, accountID *string, occurredAt time.Time, description, userID string, now time.Time) domain.Movement {
	return domain.Movement{
		MovementID:  id,
		Kind:        kind,
		Amount:      amount,
		AccountID:   accountID,
		OccurredAt:  occurredAt.UTC(),
		Description: description,
		AuditFields: domain.NewAuditFields(userID, now),
	}
}

// linkDocument attaches a movement to a sale or purchase and its party.
func linkDocument(m *domain.Movement, docType domain.DocumentType, documentID, partyID string) {
	m.DocumentType = &docType
	m.DocumentID = &documentID
	m.PartyID = &partyID
}

// settle changes the paid amount of the linked document by paidDelta.
// A document can never be paid beyond its total.
func (l *ledger) settle(ctx context.Context, tx pgx.Tx, docType domain.DocumentType, documentID string, paidDelta decimal.Decimal, userID string, now time.Time) error {
	switch docType {
	case domain.DocumentSale:
		_, err := l.settleSale(ctx, tx, documentID, paidDelta, userID, now)
		return err
	case domain.DocumentPurchase:
		_, err := l.settlePurchase(ctx, tx, documentID, paidDelta, userID, now)
		return err
	}
	return fmt.Errorf("unknown document type %q", docType)
}

func checkPaid(total, paid, noteAdjustment decimal.Decimal, documentID string) error {
	if paid.LessThan(decimal.Zero) {
		return apperrors.NewValidationError("paid amount of %s would become negative", documentID)
	}
	if paid.Add(noteAdjustment).GreaterThan(total) {
		return fmt.Errorf("%w: %s would be paid %s against a total of %s", apperrors.ErrInsufficientFunds,
			documentID, paid.Add(noteAdjustment).StringFixed(2), total.StringFixed(2))
	}
	return nil
}

func (l *ledger) settleSale(ctx context.Context, tx pgx.Tx, saleID string, paidDelta decimal.Decimal, userID string, now time.Time) (*domain.Sale, error) {
	sale, err := l.saleRepo.FindSaleForUpdate(ctx, tx, saleID)
	if err != nil {
		return nil, err
	}
	if sale.IsRefunded {
		return nil, apperrors.NewConflictError("sale %s has been refunded", saleID)
	}
	paid := sale.PaidAmount.Add(paidDelta)
	if err := checkPaid(sale.TotalAmount, paid, sale.NoteAdjustment, saleID); err != nil {
		return nil, err
	}
	sale.PaidAmount = paid
	sale.Recalculate()
	if err := l.saleRepo.UpdateSaleLedger(ctx, tx, *sale, userID, now); err != nil {
		return nil, err
	}
	return sale, nil
}

func (l *ledger) settlePurchase(ctx context.Context, tx pgx.Tx, purchaseID string, paidDelta decimal.Decimal, userID string, now time.Time) (*domain.Purchase, error) {
	purchase, err := l.purchaseRepo.FindPurchaseForUpdate(ctx, tx, purchaseID)
	if err != nil {
		return nil, err
	}
	paid := purchase.PaidAmount.Add(paidDelta)
	if err := checkPaid(purchase.TotalAmount, paid, purchase.NoteAdjustment, purchaseID); err != nil {
		return nil, err
	}
	purchase.PaidAmount = paid
	purchase.Recalculate()
	if err := l.purchaseRepo.UpdatePurchaseLedger(ctx, tx, *purchase, userID, now); err != nil {
		return nil, err
	}
	return purchase, nil
}
