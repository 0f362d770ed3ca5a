package services

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/SscSPs/shop_ledger/internal/apperrors"
	"github.com/SscSPs/shop_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/shop_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/shop_ledger/internal/core/ports/services"
	"github.com/SscSPs/shop_ledger/internal/dto"
	"github.com/SscSPs/shop_ledger/internal/metrics"
	"github.com/jackc/pgx/v5"
)

// ReconciliationService captures daily opening and closing balance snapshots.
type ReconciliationService struct {
	BaseService
	txManager          portsrepo.TransactionManager
	accountRepo        portsrepo.AccountRepositoryFacade
	reconciliationRepo portsrepo.ReconciliationRepositoryFacade
}

// NewReconciliationService creates a new ReconciliationService.
func NewReconciliationService(repos portsrepo.RepositoryProvider, options ...ServiceOption) *ReconciliationService {
	return &ReconciliationService{
		BaseService:        applyOptions(options),
		txManager:          repos.TxManager,
		accountRepo:        repos.AccountRepo,
		reconciliationRepo: repos.ReconciliationRepo,
	}
}

var _ portssvc.ReconciliationSvcFacade = (*ReconciliationService)(nil)

// lockForSnapshot locks the account so its balance cannot move while it is captured.
// A missing account is a bad request rather than a missing resource.
func (s *ReconciliationService) lockForSnapshot(ctx context.Context, tx pgx.Tx, accountID string) (domain.Account, error) {
	locked, err := s.accountRepo.LockAccounts(ctx, tx, []string{accountID})
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return domain.Account{}, apperrors.NewValidationError("account %s does not exist", accountID)
		}
		return domain.Account{}, err
	}
	acc := locked[accountID]
	if acc.IsDeleted() {
		return domain.Account{}, apperrors.NewValidationError("account %s does not exist", accountID)
	}
	return acc, nil
}

// Open captures the opening snapshot of an account for a business day.
func (s *ReconciliationService) Open(ctx context.Context, req dto.ReconciliationRequest, userID string) (*domain.Reconciliation, error) {
	now := s.Now()
	day := domain.BusinessDay(req.BusinessDateUTC.Time)
	var rec domain.Reconciliation
	err := s.txManager.WithinTx(ctx, func(tx pgx.Tx) error {
		acc, err := s.lockForSnapshot(ctx, tx, req.FinancialAccountID)
		if err != nil {
			return err
		}
		rec = domain.OpenReconciliation(s.NewID(), acc.AccountID, day, acc.Balance, req.CountedBalance, req.Notes, userID, now)
		if err := s.reconciliationRepo.SaveReconciliation(ctx, tx, rec); err != nil {
			if errors.Is(err, apperrors.ErrDuplicate) {
				return apperrors.NewConflictError("account %s is already open for %s", acc.AccountID, day.Format(time.DateOnly))
			}
			return err
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to open reconciliation", slog.String("account_id", req.FinancialAccountID))
		return nil, err
	}
	metrics.Reconciliations.WithLabelValues("open").Inc()

	s.LogInfo(ctx, "Reconciliation opened",
		slog.String("account_id", rec.AccountID),
		slog.String("business_date", day.Format(time.DateOnly)),
		slog.String("system_balance", rec.OpeningSystemBalance.String()))
	return &rec, nil
}

// Close captures the closing snapshot of an open business day.
func (s *ReconciliationService) Close(ctx context.Context, req dto.ReconciliationRequest, userID string) (*domain.Reconciliation, error) {
	now := s.Now()
	day := domain.BusinessDay(req.BusinessDateUTC.Time)
	var rec *domain.Reconciliation
	err := s.txManager.WithinTx(ctx, func(tx pgx.Tx) error {
		acc, err := s.lockForSnapshot(ctx, tx, req.FinancialAccountID)
		if err != nil {
			return err
		}
		rec, err = s.reconciliationRepo.FindReconciliationForUpdate(ctx, tx, acc.AccountID, day)
		if err != nil {
			return err
		}
		if err := rec.Close(acc.Balance, req.CountedBalance, req.Notes, userID, now); err != nil {
			return err
		}
		return s.reconciliationRepo.CloseReconciliation(ctx, tx, *rec)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to close reconciliation", slog.String("account_id", req.FinancialAccountID))
		return nil, err
	}
	metrics.Reconciliations.WithLabelValues("close").Inc()

	s.LogInfo(ctx, "Reconciliation closed",
		slog.String("account_id", rec.AccountID),
		slog.String("business_date", day.Format(time.DateOnly)),
		slog.String("system_balance", rec.ClosingSystemBalance.String()))
	return rec, nil
}

// bulk locks every non-deleted account and runs step for each one that has no reason to be skipped.
func (s *ReconciliationService) bulk(ctx context.Context, businessDate time.Time, operation string,
	step func(tx pgx.Tx, acc domain.Account, existing *domain.Reconciliation) (*domain.Reconciliation, string, error),
) (*domain.BulkReconciliationResult, error) {
	day := domain.BusinessDay(businessDate)
	result := &domain.BulkReconciliationResult{
		BusinessDate: day,
		Processed:    []domain.Reconciliation{},
		Skipped:      []domain.SkippedAccount{},
	}
	err := s.txManager.WithinTx(ctx, func(tx pgx.Tx) error {
		accounts, err := s.accountRepo.ListAccounts(ctx, tx, true)
		if err != nil {
			return err
		}
		ids := make([]string, 0, len(accounts))
		for _, acc := range accounts {
			ids = append(ids, acc.AccountID)
		}
		locked, err := s.accountRepo.LockAccounts(ctx, tx, ids)
		if err != nil {
			return err
		}
		existing, err := s.reconciliationRepo.ListReconciliationsForDay(ctx, tx, day)
		if err != nil {
			return err
		}

		sort.Strings(ids)
		for _, id := range ids {
			acc := locked[id]
			var current *domain.Reconciliation
			if rec, ok := existing[id]; ok {
				current = &rec
			}
			rec, skipped, err := step(tx, acc, current)
			if err != nil {
				return err
			}
			if skipped != "" {
				result.Skipped = append(result.Skipped, domain.SkippedAccount{AccountID: id, Reason: skipped})
				continue
			}
			result.Processed = append(result.Processed, *rec)
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed bulk reconciliation", slog.String("operation", operation))
		return nil, err
	}
	metrics.Reconciliations.WithLabelValues(operation).Add(float64(len(result.Processed)))

	s.LogInfo(ctx, "Bulk reconciliation finished",
		slog.String("operation", operation),
		slog.String("business_date", day.Format(time.DateOnly)),
		slog.Int("processed", len(result.Processed)),
		slog.Int("skipped", len(result.Skipped)))
	return result, nil
}

// OpenAll opens the business day for every non-deleted account that has no row for it yet.
func (s *ReconciliationService) OpenAll(ctx context.Context, businessDate time.Time, userID string) (*domain.BulkReconciliationResult, error) {
	now := s.Now()
	day := domain.BusinessDay(businessDate)
	return s.bulk(ctx, businessDate, "open", func(tx pgx.Tx, acc domain.Account, existing *domain.Reconciliation) (*domain.Reconciliation, string, error) {
		if existing != nil {
			return nil, "already opened", nil
		}
		rec := domain.OpenReconciliation(s.NewID(), acc.AccountID, day, acc.Balance, nil, "", userID, now)
		if err := s.reconciliationRepo.SaveReconciliation(ctx, tx, rec); err != nil {
			return nil, "", err
		}
		return &rec, "", nil
	})
}

// CloseAll closes the business day for every non-deleted account that is open and not yet closed.
func (s *ReconciliationService) CloseAll(ctx context.Context, businessDate time.Time, userID string) (*domain.BulkReconciliationResult, error) {
	now := s.Now()
	return s.bulk(ctx, businessDate, "close", func(tx pgx.Tx, acc domain.Account, existing *domain.Reconciliation) (*domain.Reconciliation, string, error) {
		if existing == nil {
			return nil, "not opened", nil
		}
		if existing.IsClosed() {
			return nil, "already closed", nil
		}
		if err := existing.Close(acc.Balance, nil, "", userID, now); err != nil {
			return nil, "", err
		}
		if err := s.reconciliationRepo.CloseReconciliation(ctx, tx, *existing); err != nil {
			return nil, "", err
		}
		return existing, "", nil
	})
}

// Get returns one account's reconciliation row for a business day.
func (s *ReconciliationService) Get(ctx context.Context, accountID string, businessDate time.Time) (*domain.Reconciliation, error) {
	rec, err := s.reconciliationRepo.FindReconciliation(ctx, nil, accountID, businessDate)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find reconciliation", slog.String("account_id", accountID))
		}
		return nil, err
	}
	return rec, nil
}

// ListForDay returns every reconciliation row of a business day ordered by account.
func (s *ReconciliationService) ListForDay(ctx context.Context, businessDate time.Time) ([]domain.Reconciliation, error) {
	recs, err := s.reconciliationRepo.ListReconciliationsForDay(ctx, nil, domain.BusinessDay(businessDate))
	if err != nil {
		s.LogError(ctx, err, "Failed to list reconciliations")
		return nil, err
	}
	out := make([]domain.Reconciliation, 0, len(recs))
	for _, id := range sortedKeys(recs) {
		out = append(out, recs[id])
	}
	return out, nil
}
