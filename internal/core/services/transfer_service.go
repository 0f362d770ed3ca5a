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
	"github.com/SscSPs/shop_ledger/internal/utils/accounting"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// TransferService moves money between the business's own accounts.
type TransferService struct {
	BaseService
	txManager    portsrepo.TransactionManager
	transferRepo portsrepo.TransferRepositoryFacade
	accountRepo  portsrepo.AccountRepositoryFacade
	ledger       *ledger
}

// NewTransferService creates a new TransferService.
func NewTransferService(repos portsrepo.RepositoryProvider, options ...ServiceOption) *TransferService {
	return &TransferService{
		BaseService:  applyOptions(options),
		txManager:    repos.TxManager,
		transferRepo: repos.TransferRepo,
		accountRepo:  repos.AccountRepo,
		ledger:       newLedger(repos),
	}
}

var _ portssvc.TransferSvcFacade = (*TransferService)(nil)

// lockPair locks both accounts in ascending ID order. requireUsable rejects deleted and inactive
// accounts; otherwise only deleted accounts are rejected.
func (s *TransferService) lockPair(ctx context.Context, tx pgx.Tx, t domain.Transfer, requireUsable bool) (map[string]domain.Account, error) {
	locked, err := s.accountRepo.LockAccounts(ctx, tx, []string{t.FromAccountID, t.ToAccountID})
	if err != nil {
		return nil, err
	}
	for _, id := range []string{t.FromAccountID, t.ToAccountID} {
		acc := locked[id]
		if acc.IsDeleted() {
			return nil, apperrors.NewNotFoundError("account", id)
		}
		if requireUsable && !acc.IsActive {
			return nil, apperrors.NewValidationError("account %s is inactive", id)
		}
	}
	return locked, nil
}

// applyChanges adjusts every account of a net-zero change set in ascending ID order.
func (s *TransferService) applyChanges(ctx context.Context, tx pgx.Tx, changes map[string]decimal.Decimal, userID string, now time.Time) error {
	if err := accounting.ValidateBalanceChanges(changes); err != nil {
		return apperrors.NewValidationError("%s", err.Error())
	}
	ids := make([]string, 0, len(changes))
	for id := range changes {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if _, err := s.ledger.adjust(ctx, tx, id, changes[id], userID, now); err != nil {
			return err
		}
	}
	return nil
}

// CreateTransfer records a transfer and completes it unless it is requested as pending.
// Fee and exchange rate are informational; both legs move the same amount.
func (s *TransferService) CreateTransfer(ctx context.Context, req dto.CreateTransferRequest, userID string) (*domain.Transfer, error) {
	if req.FromAccountID == req.ToAccountID {
		return nil, apperrors.NewValidationError("a transfer needs two different accounts")
	}
	if req.Amount.LessThanOrEqual(decimal.Zero) {
		return nil, apperrors.NewValidationError("transfer amount must be positive")
	}

	now := s.Now()
	transferDate := now
	if req.TransferDate != nil {
		transferDate = req.TransferDate.UTC()
	}
	transfer := domain.Transfer{
		TransferID:    s.NewID(),
		FromAccountID: req.FromAccountID,
		ToAccountID:   req.ToAccountID,
		Amount:        req.Amount,
		Status:        domain.TransferPending,
		CurrencyCode:  strings.ToUpper(req.CurrencyCode),
		Fee:           req.Fee,
		ExchangeRate:  req.ExchangeRate,
		TransferDate:  transferDate,
		Description:   req.Description,
		AuditFields:   domain.NewAuditFields(userID, now),
	}

	err := s.txManager.WithinTx(ctx, func(tx pgx.Tx) error {
		locked, err := s.lockPair(ctx, tx, transfer, true)
		if err != nil {
			return err
		}
		if transfer.CurrencyCode == "" {
			transfer.CurrencyCode = locked[transfer.FromAccountID].CurrencyCode
		}
		if !req.Pending {
			if err := s.applyChanges(ctx, tx, transfer.BalanceChanges(), userID, now); err != nil {
				return err
			}
			transfer.Status = domain.TransferCompleted
			transfer.CompletedAt = &now
		}
		return s.transferRepo.SaveTransfer(ctx, tx, transfer)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create transfer",
			slog.String("from_account_id", req.FromAccountID),
			slog.String("to_account_id", req.ToAccountID))
		return nil, err
	}
	metrics.TransfersProcessed.WithLabelValues(string(transfer.Status)).Inc()

	s.LogInfo(ctx, "Transfer created",
		slog.String("transfer_id", transfer.TransferID),
		slog.String("status", string(transfer.Status)),
		slog.String("amount", transfer.Amount.String()))
	return &transfer, nil
}

// CompleteTransfer applies a pending transfer to both balances.
func (s *TransferService) CompleteTransfer(ctx context.Context, transferID string, userID string) (*domain.Transfer, error) {
	now := s.Now()
	var transfer domain.Transfer
	err := s.txManager.WithinTx(ctx, func(tx pgx.Tx) error {
		t, err := s.transferRepo.FindTransferForUpdate(ctx, tx, transferID)
		if err != nil {
			return err
		}
		if t.Status != domain.TransferPending {
			return apperrors.NewConflictError("transfer %s is %s; only pending transfers can be completed", transferID, t.Status)
		}
		if _, err := s.lockPair(ctx, tx, *t, true); err != nil {
			return err
		}
		if err := s.applyChanges(ctx, tx, t.BalanceChanges(), userID, now); err != nil {
			return err
		}
		t.Status = domain.TransferCompleted
		t.CompletedAt = &now
		t.Touch(userID, now)
		transfer = *t
		return s.transferRepo.UpdateTransferStatus(ctx, tx, *t)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to complete transfer", slog.String("transfer_id", transferID))
		return nil, err
	}
	metrics.TransfersProcessed.WithLabelValues(string(domain.TransferCompleted)).Inc()
	s.LogInfo(ctx, "Transfer completed", slog.String("transfer_id", transferID))
	return &transfer, nil
}

// ReverseTransfer undoes both legs of a completed transfer.
func (s *TransferService) ReverseTransfer(ctx context.Context, transferID string, userID string) (*domain.Transfer, error) {
	now := s.Now()
	var transfer domain.Transfer
	err := s.txManager.WithinTx(ctx, func(tx pgx.Tx) error {
		t, err := s.transferRepo.FindTransferForUpdate(ctx, tx, transferID)
		if err != nil {
			return err
		}
		if t.Status != domain.TransferCompleted {
			return apperrors.NewConflictError("transfer %s is %s; only completed transfers can be reversed", transferID, t.Status)
		}
		if _, err := s.lockPair(ctx, tx, *t, false); err != nil {
			return err
		}
		if err := s.applyChanges(ctx, tx, t.ReversalChanges(), userID, now); err != nil {
			return err
		}
		t.Status = domain.TransferReversed
		t.ReversedAt = &now
		t.Touch(userID, now)
		transfer = *t
		return s.transferRepo.UpdateTransferStatus(ctx, tx, *t)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to reverse transfer", slog.String("transfer_id", transferID))
		return nil, err
	}
	metrics.TransfersProcessed.WithLabelValues(string(domain.TransferReversed)).Inc()
	s.LogInfo(ctx, "Transfer reversed", slog.String("transfer_id", transferID))
	return &transfer, nil
}

// GetTransfer returns a transfer.
func (s *TransferService) GetTransfer(ctx context.Context, transferID string) (*domain.Transfer, error) {
	t, err := s.transferRepo.FindTransferByID(ctx, nil, transferID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find transfer", slog.String("transfer_id", transferID))
		}
		return nil, err
	}
	return t, nil
}

// ListTransfers lists transfers newest first.
func (s *TransferService) ListTransfers(ctx context.Context, params dto.ListTransfersParams) ([]domain.Transfer, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultMovementPageSize
	}
	transfers, err := s.transferRepo.ListTransfers(ctx, nil, params.AccountID, limit, params.Offset)
	if err != nil {
		s.LogError(ctx, err, "Failed to list transfers")
		return nil, err
	}
	return transfers, nil
}
