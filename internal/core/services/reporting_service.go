package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/SscSPs/shop_ledger/internal/apperrors"
	"github.com/SscSPs/shop_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/shop_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/shop_ledger/internal/core/ports/services"
	"github.com/SscSPs/shop_ledger/internal/metrics"
	"github.com/jackc/pgx/v5"
)

// ReportingService composes cash-flow statements and balance sheets from one consistent read.
type ReportingService struct {
	BaseService
	txManager          portsrepo.TransactionManager
	accountRepo        portsrepo.AccountRepositoryFacade
	reconciliationRepo portsrepo.ReconciliationRepositoryFacade
	reportingRepo      portsrepo.ReportingRepository
}

// NewReportingService creates a new ReportingService.
func NewReportingService(repos portsrepo.RepositoryProvider, options ...ServiceOption) *ReportingService {
	return &ReportingService{
		BaseService:        applyOptions(options),
		txManager:          repos.TxManager,
		accountRepo:        repos.AccountRepo,
		reconciliationRepo: repos.ReconciliationRepo,
		reportingRepo:      repos.ReportingRepo,
	}
}

var _ portssvc.ReportingService = (*ReportingService)(nil)

func validateRange(q portssvc.CashFlowQuery, now time.Time) error {
	if !q.EndUTC.After(q.StartUTC) {
		return apperrors.NewValidationError("endUtc must be after startUtc")
	}
	if q.AllowApprox && q.EndUTC.After(now) && !domain.IsExactlyToday(q.StartUTC, q.EndUTC, now) {
		return apperrors.NewValidationError("approximate balances cannot look into the future except for today")
	}
	return nil
}

// ComposeCashFlow builds the statement for one account or, without an account, for every
// active account plus unattributed movements.
func (s *ReportingService) ComposeCashFlow(ctx context.Context, q portssvc.CashFlowQuery) (*domain.CashFlowStatement, error) {
	now := s.Now()
	q.StartUTC, q.EndUTC = q.StartUTC.UTC(), q.EndUTC.UTC()
	if err := validateRange(q, now); err != nil {
		return nil, err
	}

	in := domain.CashFlowInput{Start: q.StartUTC, End: q.EndUTC, AllowApprox: q.AllowApprox, CompanyWide: q.AccountID == nil}
	err := s.txManager.WithinReadOnlyTx(ctx, func(tx pgx.Tx) error {
		if q.AccountID != nil {
			acc, err := s.accountRepo.FindAccountByID(ctx, tx, *q.AccountID)
			if err != nil {
				return err
			}
			if acc.IsDeleted() {
				return apperrors.NewNotFoundError("account", *q.AccountID)
			}
			in.Accounts = []domain.Account{*acc}
		} else {
			accounts, err := s.accountRepo.ListAccountsLiveSince(ctx, tx, q.StartUTC)
			if err != nil {
				return err
			}
			in.Accounts = accounts
		}

		if domain.IsMidnightUTC(q.StartUTC) && domain.IsMidnightUTC(q.EndUTC) {
			if err := s.loadSnapshots(ctx, tx, &in); err != nil {
				return err
			}
		}
		if q.AccountID != nil && domain.IsExactlyToday(q.StartUTC, q.EndUTC, now) {
			if err := s.narrowToReconciliation(ctx, tx, &in); err != nil {
				return err
			}
		}

		from := in.Start
		if !in.WindowStart.IsZero() && in.WindowStart.Before(from) {
			from = in.WindowStart
		}
		entries, err := s.reportingRepo.FlowsBetween(ctx, tx, domain.AccountIDs(in.Accounts), in.CompanyWide, from, nil)
		if err != nil {
			return err
		}
		in.Entries = entries
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to compose cash flow")
		return nil, err
	}

	stmt := domain.ComposeCashFlow(in)
	metrics.StatementsComposed.WithLabelValues(stmt.Basis()).Inc()

	s.LogDebug(ctx, "Cash flow composed",
		slog.Time("start", stmt.StartUTC),
		slog.Time("end", stmt.EndUTC),
		slog.String("basis", stmt.Basis()),
		slog.Int("accounts", len(stmt.Accounts)))
	return &stmt, nil
}

// loadSnapshots reads the opening row of the first day and the closing row of the last day.
func (s *ReportingService) loadSnapshots(ctx context.Context, tx pgx.Tx, in *domain.CashFlowInput) error {
	first, err := s.reconciliationRepo.ListReconciliationsForDay(ctx, tx, in.Start)
	if err != nil {
		return err
	}
	last, err := s.reconciliationRepo.ListReconciliationsForDay(ctx, tx, in.End.AddDate(0, 0, -1))
	if err != nil {
		return err
	}
	in.Snapshots = make(map[string]domain.SnapshotPair, len(in.Accounts))
	for _, acc := range in.Accounts {
		var pair domain.SnapshotPair
		if rec, ok := first[acc.AccountID]; ok {
			opening := rec.OpeningSystemBalance
			pair.Opening = &opening
		}
		if rec, ok := last[acc.AccountID]; ok && rec.IsClosed() {
			pair.Closing = rec.ClosingSystemBalance
		}
		in.Snapshots[acc.AccountID] = pair
	}
	return nil
}

// narrowToReconciliation limits a single-account today statement to the flows recorded
// between the day's opening and closing snapshots.
func (s *ReportingService) narrowToReconciliation(ctx context.Context, tx pgx.Tx, in *domain.CashFlowInput) error {
	rec, err := s.reconciliationRepo.FindReconciliation(ctx, tx, in.Accounts[0].AccountID, in.Start)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil
		}
		return err
	}
	in.WindowStart = rec.OpenedAt
	if rec.ClosedAt != nil {
		in.WindowEnd = *rec.ClosedAt
	}
	in.AnchorOpening = true
	if in.Snapshots == nil {
		opening := rec.OpeningSystemBalance
		in.Snapshots = map[string]domain.SnapshotPair{rec.AccountID: {Opening: &opening, Closing: rec.ClosingSystemBalance}}
	}
	return nil
}

// TodayCashFlow composes the statement of the current UTC day.
func (s *ReportingService) TodayCashFlow(ctx context.Context, accountID *string, allowApprox bool) (*domain.CashFlowStatement, error) {
	today := domain.BusinessDay(s.Now())
	return s.ComposeCashFlow(ctx, portssvc.CashFlowQuery{
		AccountID:   accountID,
		StartUTC:    today,
		EndUTC:      today.AddDate(0, 0, 1),
		AllowApprox: allowApprox,
	})
}

// BalanceSheet composes the point-in-time balance sheet. A non-zero difference is reported,
// never corrected.
func (s *ReportingService) BalanceSheet(ctx context.Context) (*domain.BalanceSheet, error) {
	var figures domain.BalanceSheetFigures
	err := s.txManager.WithinReadOnlyTx(ctx, func(tx pgx.Tx) error {
		var err error
		figures, err = s.reportingRepo.BalanceSheetFigures(ctx, tx)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to compose balance sheet")
		return nil, err
	}

	bs := domain.ComposeBalanceSheet(figures, s.Now())
	diff, _ := bs.Difference.Float64()
	metrics.BalanceSheetDifference.Set(diff)
	if !bs.Difference.IsZero() {
		s.GetLogger(ctx).Warn("Balance sheet does not balance", slog.String("difference", bs.Difference.String()))
	}
	return &bs, nil
}
