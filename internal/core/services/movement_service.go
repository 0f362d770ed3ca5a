package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/SscSPs/shop_ledger/internal/apperrors"
	"github.com/SscSPs/shop_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/shop_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/shop_ledger/internal/core/ports/services"
	"github.com/SscSPs/shop_ledger/internal/dto"
	"github.com/SscSPs/shop_ledger/internal/metrics"
	"github.com/SscSPs/shop_ledger/internal/utils/accounting"
	"github.com/jackc/pgx/v5"
)

const defaultMovementPageSize = 20

// MovementService records capital movements and corrects any movement after the fact.
type MovementService struct {
	BaseService
	txManager    portsrepo.TransactionManager
	movementRepo portsrepo.MovementRepositoryFacade
	accountRepo  portsrepo.AccountRepositoryFacade
	ledger       *ledger
}

// NewMovementService creates a new MovementService.
func NewMovementService(repos portsrepo.RepositoryProvider, options ...ServiceOption) *MovementService {
	return &MovementService{
		BaseService:  applyOptions(options),
		txManager:    repos.TxManager,
		movementRepo: repos.MovementRepo,
		accountRepo:  repos.AccountRepo,
		ledger:       newLedger(repos),
	}
}

var _ portssvc.MovementSvcFacade = (*MovementService)(nil)

// RecordMovement records a contribution, withdrawal, expenditure or tax payment.
// Without an account the movement is unattributed.
func (s *MovementService) RecordMovement(ctx context.Context, req dto.RecordMovementRequest, userID string) (*domain.Movement, error) {
	if !req.Kind.IsCapital() {
		return nil, apperrors.NewValidationError("movement kind %q cannot be recorded directly", req.Kind)
	}
	now := s.Now()
	occurredAt := now
	if req.OccurredAt != nil {
		occurredAt = req.OccurredAt.UTC()
	}
	m := newMovement(s.NewID(), req.Kind, req.Amount, req.AccountID, occurredAt, req.Description, userID, now)

	err := s.txManager.WithinTx(ctx, func(tx pgx.Tx) error {
		return s.ledger.post(ctx, tx, m, userID, now)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to record movement", slog.String("kind", string(req.Kind)))
		return nil, err
	}
	metrics.MovementsRecorded.WithLabelValues(string(m.Kind)).Inc()
	if m.AccountID != nil {
		metrics.BalanceAdjustments.Inc()
	}

	s.LogInfo(ctx, "Movement recorded",
		slog.String("movement_id", m.MovementID),
		slog.String("kind", string(m.Kind)),
		slog.String("amount", m.Amount.String()))
	return &m, nil
}

// GetMovement returns a movement, voided or not.
func (s *MovementService) GetMovement(ctx context.Context, movementID string) (*domain.Movement, error) {
	m, err := s.movementRepo.FindMovementByID(ctx, nil, movementID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find movement", slog.String("movement_id", movementID))
		}
		return nil, err
	}
	return m, nil
}

// ListMovements pages through effective movements newest first.
func (s *MovementService) ListMovements(ctx context.Context, params dto.ListMovementsParams) ([]domain.Movement, *string, error) {
	limit := params.Limit
	if limit <= 0 {
		limit = defaultMovementPageSize
	}
	if params.Kind != nil && !params.Kind.IsValid() {
		return nil, nil, apperrors.NewValidationError("unknown movement kind %q", *params.Kind)
	}
	filter := domain.MovementFilter{AccountID: params.AccountID, Kind: params.Kind, From: params.From, To: params.To}
	movements, next, err := s.movementRepo.ListMovements(ctx, nil, filter, limit, params.NextToken)
	if err != nil {
		s.LogError(ctx, err, "Failed to list movements")
		return nil, nil, err
	}
	return movements, next, nil
}

// lockCorrectable locks the account of a movement being corrected. Inactive accounts may be
// corrected, deleted ones may not.
func (s *MovementService) lockCorrectable(ctx context.Context, tx pgx.Tx, m *domain.Movement) error {
	if m.AccountID == nil {
		return nil
	}
	locked, err := s.accountRepo.LockAccounts(ctx, tx, []string{*m.AccountID})
	if err != nil {
		return err
	}
	if locked[*m.AccountID].IsDeleted() {
		return apperrors.NewConflictError("account %s of movement %s is deleted", *m.AccountID, m.MovementID)
	}
	return nil
}

// EditMovementAmount changes the amount and propagates the delta to the account and document.
func (s *MovementService) EditMovementAmount(ctx context.Context, movementID string, req dto.EditMovementAmountRequest, userID string) (*domain.Movement, error) {
	if !req.Amount.IsPositive() {
		return nil, apperrors.NewValidationError("movement amount must be positive")
	}
	now := s.Now()
	var edited domain.Movement
	changed := false
	err := s.txManager.WithinTx(ctx, func(tx pgx.Tx) error {
		m, err := s.movementRepo.FindMovementForUpdate(ctx, tx, movementID)
		if err != nil {
			return err
		}
		if !m.IsEditable() {
			return apperrors.NewConflictError("movement %s cannot be edited", movementID)
		}
		if m.Amount.Equal(req.Amount) {
			edited = *m
			return nil
		}

		edit := domain.MovementAmountEdit{
			EditID:     s.NewID(),
			MovementID: movementID,
			OldAmount:  m.Amount,
			NewAmount:  req.Amount,
			EditedAt:   now,
			EditedBy:   userID,
		}
		if err := s.lockCorrectable(ctx, tx, m); err != nil {
			return err
		}
		if m.DocumentType != nil && m.DocumentID != nil {
			paidDelta := accounting.DocumentPaidDelta(m.Kind, edit.Delta())
			if err := s.ledger.settle(ctx, tx, *m.DocumentType, *m.DocumentID, paidDelta, userID, now); err != nil {
				return err
			}
		}
		if m.AccountID != nil {
			signed, err := accounting.CalculateSignedAmount(m.Kind, edit.Delta())
			if err != nil {
				return err
			}
			if _, err := s.ledger.adjust(ctx, tx, *m.AccountID, signed, userID, now); err != nil {
				return err
			}
		}
		if err := s.movementRepo.UpdateMovementAmount(ctx, tx, movementID, req.Amount, userID, now); err != nil {
			return err
		}
		if err := s.movementRepo.SaveAmountEdit(ctx, tx, edit); err != nil {
			return err
		}

		m.Amount = req.Amount
		m.Touch(userID, now)
		edited = *m
		changed = true
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to edit movement amount", slog.String("movement_id", movementID))
		return nil, err
	}
	if changed {
		metrics.MovementCorrections.WithLabelValues("edit").Inc()
		s.LogInfo(ctx, "Movement amount edited",
			slog.String("movement_id", movementID),
			slog.String("amount", req.Amount.String()))
	}
	return &edited, nil
}

// VoidMovement tombstones a movement and reverses its account and document effects.
func (s *MovementService) VoidMovement(ctx context.Context, movementID string, userID string) (*domain.Movement, error) {
	now := s.Now()
	var voided domain.Movement
	err := s.txManager.WithinTx(ctx, func(tx pgx.Tx) error {
		m, err := s.movementRepo.FindMovementForUpdate(ctx, tx, movementID)
		if err != nil {
			return err
		}
		if m.IsVoided() {
			return apperrors.NewConflictError("movement %s is already voided", movementID)
		}
		if !m.IsEditable() {
			return apperrors.NewConflictError("movement %s cannot be voided", movementID)
		}
		if err := s.lockCorrectable(ctx, tx, m); err != nil {
			return err
		}
		if m.DocumentType != nil && m.DocumentID != nil {
			paidDelta := accounting.DocumentPaidDelta(m.Kind, m.Amount).Neg()
			if err := s.ledger.settle(ctx, tx, *m.DocumentType, *m.DocumentID, paidDelta, userID, now); err != nil {
				return err
			}
		}
		if m.AccountID != nil {
			signed, err := accounting.CalculateSignedAmount(m.Kind, m.Amount)
			if err != nil {
				return err
			}
			if _, err := s.ledger.adjust(ctx, tx, *m.AccountID, signed.Neg(), userID, now); err != nil {
				return err
			}
		}
		if err := s.movementRepo.VoidMovement(ctx, tx, movementID, userID, now); err != nil {
			return err
		}
		m.VoidedAt = &now
		m.Touch(userID, now)
		voided = *m
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to void movement", slog.String("movement_id", movementID))
		return nil, err
	}
	metrics.MovementCorrections.WithLabelValues("void").Inc()
	s.LogInfo(ctx, "Movement voided", slog.String("movement_id", movementID))
	return &voided, nil
}
