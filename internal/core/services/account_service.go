package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/SscSPs/shop_ledger/internal/apperrors"
	"github.com/SscSPs/shop_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/shop_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/shop_ledger/internal/core/ports/services"
	"github.com/SscSPs/shop_ledger/internal/dto"
	"github.com/SscSPs/shop_ledger/internal/metrics"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// AccountService manages financial accounts and their stored balances.
type AccountService struct {
	BaseService
	txManager   portsrepo.TransactionManager
	accountRepo portsrepo.AccountRepositoryFacade
	ledger      *ledger
}

// NewAccountService creates a new AccountService.
func NewAccountService(repos portsrepo.RepositoryProvider, options ...ServiceOption) *AccountService {
	return &AccountService{
		BaseService: applyOptions(options),
		txManager:   repos.TxManager,
		accountRepo: repos.AccountRepo,
		ledger:      newLedger(repos),
	}
}

var _ portssvc.AccountSvcFacade = (*AccountService)(nil)

// CreateAccount creates an account. An opening balance is booked as a capital contribution
// so the balance stays equal to the sum of the account's movements.
func (s *AccountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, apperrors.NewValidationError("account name is required")
	}
	if !req.Category.IsValid() {
		return nil, apperrors.NewValidationError("unknown account category %q", req.Category)
	}

	now := s.Now()
	account := domain.Account{
		AccountID:    s.NewID(),
		Name:         name,
		Category:     req.Category,
		CurrencyCode: strings.ToUpper(req.CurrencyCode),
		Description:  req.Description,
		Balance:      decimal.Zero,
		IsActive:     true,
		IsDefault:    req.IsDefault,
		AuditFields:  domain.NewAuditFields(userID, now),
	}

	var opening *domain.Movement
	err := s.txManager.WithinTx(ctx, func(tx pgx.Tx) error {
		if err := s.ensureNameAvailable(ctx, tx, name, ""); err != nil {
			return err
		}
		if account.IsDefault {
			if err := s.accountRepo.ClearDefaultAccount(ctx, tx, userID, now); err != nil {
				return err
			}
		}
		if err := s.accountRepo.SaveAccount(ctx, tx, account); err != nil {
			return err
		}
		if req.OpeningBalance != nil && req.OpeningBalance.GreaterThan(decimal.Zero) {
			m := newMovement(s.NewID(), domain.CapitalContribution, *req.OpeningBalance, &account.AccountID, now, "Opening balance", userID, now)
			if err := s.ledger.post(ctx, tx, m, userID, now); err != nil {
				return err
			}
			account.Balance = m.Amount
			opening = &m
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create account", slog.String("name", name))
		return nil, err
	}
	if opening != nil {
		metrics.MovementsRecorded.WithLabelValues(string(opening.Kind)).Inc()
		metrics.BalanceAdjustments.Inc()
	}

	s.LogInfo(ctx, "Account created successfully",
		slog.String("account_id", account.AccountID),
		slog.String("category", string(account.Category)))
	return &account, nil
}

func (s *AccountService) ensureNameAvailable(ctx context.Context, tx pgx.Tx, name, accountID string) error {
	existing, err := s.accountRepo.FindAccountByName(ctx, tx, name)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return err
	}
	if existing.AccountID != accountID {
		return apperrors.NewConflictError("an account named %q already exists", name)
	}
	return nil
}

// GetAccountByID returns a live account.
func (s *AccountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	account, err := s.accountRepo.FindAccountByID(ctx, nil, accountID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find account by ID", slog.String("account_id", accountID))
		}
		return nil, err
	}
	if account.IsDeleted() {
		return nil, apperrors.NewNotFoundError("account", accountID)
	}
	return account, nil
}

// ListAccounts lists live accounts.
func (s *AccountService) ListAccounts(ctx context.Context, includeInactive bool) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListAccounts(ctx, nil, includeInactive)
	if err != nil {
		s.LogError(ctx, err, "Failed to list accounts")
		return nil, err
	}
	if accounts == nil {
		return []domain.Account{}, nil
	}
	return accounts, nil
}

// GetBalance returns the stored balance of a live account.
func (s *AccountService) GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	account, err := s.GetAccountByID(ctx, accountID)
	if err != nil {
		return decimal.Zero, err
	}
	return account.Balance, nil
}

func (s *AccountService) lockLive(ctx context.Context, tx pgx.Tx, accountID string) (domain.Account, error) {
	locked, err := s.accountRepo.LockAccounts(ctx, tx, []string{accountID})
	if err != nil {
		return domain.Account{}, err
	}
	account := locked[accountID]
	if account.IsDeleted() {
		return domain.Account{}, apperrors.NewNotFoundError("account", accountID)
	}
	return account, nil
}

// UpdateAccount changes the descriptive fields and flags of an account. The balance is never
// written here.
func (s *AccountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	now := s.Now()
	var updated domain.Account
	err := s.txManager.WithinTx(ctx, func(tx pgx.Tx) error {
		account, err := s.lockLive(ctx, tx, accountID)
		if err != nil {
			return err
		}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				return apperrors.NewValidationError("account name cannot be empty")
			}
			if err := s.ensureNameAvailable(ctx, tx, name, accountID); err != nil {
				return err
			}
			account.Name = name
		}
		if req.Category != nil {
			if !req.Category.IsValid() {
				return apperrors.NewValidationError("unknown account category %q", *req.Category)
			}
			account.Category = *req.Category
		}
		if req.Description != nil {
			account.Description = *req.Description
		}
		if req.IsActive != nil {
			account.IsActive = *req.IsActive
			if !account.IsActive {
				account.IsDefault = false
			}
		}
		if req.IsDefault != nil {
			if *req.IsDefault && !account.IsActive {
				return apperrors.NewValidationError("an inactive account cannot be the default")
			}
			if *req.IsDefault && !account.IsDefault {
				if err := s.accountRepo.ClearDefaultAccount(ctx, tx, userID, now); err != nil {
					return err
				}
			}
			account.IsDefault = *req.IsDefault
		}

		account.Touch(userID, now)
		updated = account
		return s.accountRepo.UpdateAccount(ctx, tx, account)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to update account", slog.String("account_id", accountID))
		return nil, err
	}

	s.LogInfo(ctx, "Account updated successfully", slog.String("account_id", accountID))
	return &updated, nil
}

// DeleteAccount soft-deletes an account. Accounts still holding money cannot be deleted.
func (s *AccountService) DeleteAccount(ctx context.Context, accountID string, userID string) error {
	now := s.Now()
	err := s.txManager.WithinTx(ctx, func(tx pgx.Tx) error {
		account, err := s.lockLive(ctx, tx, accountID)
		if err != nil {
			return err
		}
		if !account.Balance.IsZero() {
			return apperrors.NewConflictError("account %s still holds a balance of %s", accountID, account.Balance.StringFixed(2))
		}
		account.DeletedAt = &now
		account.IsDefault = false
		account.Touch(userID, now)
		return s.accountRepo.UpdateAccount(ctx, tx, account)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to delete account", slog.String("account_id", accountID))
		return err
	}
	s.LogInfo(ctx, "Account deleted", slog.String("account_id", accountID))
	return nil
}

// RestoreAccount clears the tombstone of a deleted account.
func (s *AccountService) RestoreAccount(ctx context.Context, accountID string, userID string) (*domain.Account, error) {
	now := s.Now()
	var restored domain.Account
	err := s.txManager.WithinTx(ctx, func(tx pgx.Tx) error {
		locked, err := s.accountRepo.LockAccounts(ctx, tx, []string{accountID})
		if err != nil {
			return err
		}
		account := locked[accountID]
		if !account.IsDeleted() {
			return apperrors.NewConflictError("account %s is not deleted", accountID)
		}
		if err := s.ensureNameAvailable(ctx, tx, account.Name, accountID); err != nil {
			return err
		}
		account.DeletedAt = nil
		account.Touch(userID, now)
		restored = account
		return s.accountRepo.UpdateAccount(ctx, tx, account)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to restore account", slog.String("account_id", accountID))
		return nil, err
	}
	s.LogInfo(ctx, "Account restored", slog.String("account_id", accountID))
	return &restored, nil
}
