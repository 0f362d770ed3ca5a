package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/SscSPs/shop_ledger/internal/apperrors"
	"github.com/SscSPs/shop_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/shop_ledger/internal/core/ports/services"
	"github.com/SscSPs/shop_ledger/internal/core/services"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type ReportingServiceTestSuite struct {
	suite.Suite
	repos   *mockRepos
	service *services.ReportingService
	today   time.Time
}

func (suite *ReportingServiceTestSuite) SetupTest() {
	suite.repos = newMockRepos()
	suite.service = services.NewReportingService(suite.repos.provider(), testOptions()...)
	suite.today = domain.BusinessDay(fixedNow)
}

func flow(accountID string, dir domain.Direction, amount string, at time.Time) domain.FlowEntry {
	category := domain.FlowSalePayments
	if dir == domain.Outflow {
		category = domain.FlowExpenditures
	}
	return domain.FlowEntry{SourceID: "m-" + amount, AccountID: ptr(accountID), Category: category, Direction: dir, Amount: d(amount), OccurredAt: at}
}

func (suite *ReportingServiceTestSuite) TestComposeCashFlow_InvertedRange() {
	_, err := suite.service.ComposeCashFlow(context.Background(), portssvc.CashFlowQuery{
		StartUTC: suite.today,
		EndUTC:   suite.today,
	})
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ReportingServiceTestSuite) TestComposeCashFlow_ApproximateFutureRange() {
	_, err := suite.service.ComposeCashFlow(context.Background(), portssvc.CashFlowQuery{
		StartUTC:    suite.today,
		EndUTC:      suite.today.AddDate(0, 0, 2),
		AllowApprox: true,
	})
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *ReportingServiceTestSuite) TestComposeCashFlow_ExactFromSnapshots() {
	ctx := context.Background()
	start := suite.today.AddDate(0, 0, -3)
	end := suite.today.AddDate(0, 0, -1)
	first := domain.OpenReconciliation("r-1", "acc-1", start, d("100"), nil, "", "u-1", start.Add(time.Hour))
	last := domain.OpenReconciliation("r-2", "acc-1", end.AddDate(0, 0, -1), d("120"), nil, "", "u-1", start.Add(25*time.Hour))
	suite.Require().NoError(last.Close(d("130"), nil, "", "u-1", start.Add(40*time.Hour)))

	suite.repos.accounts.On("ListAccountsLiveSince", ctx, mock.Anything, start).Return([]domain.Account{activeAccount("acc-1", "175")}, nil).Once()
	suite.repos.reconciliations.On("ListReconciliationsForDay", ctx, mock.Anything, start).
		Return(map[string]domain.Reconciliation{"acc-1": first}, nil).Once()
	suite.repos.reconciliations.On("ListReconciliationsForDay", ctx, mock.Anything, end.AddDate(0, 0, -1)).
		Return(map[string]domain.Reconciliation{"acc-1": last}, nil).Once()
	suite.repos.reporting.On("FlowsBetween", ctx, mock.Anything, []string{"acc-1"}, true, start, (*time.Time)(nil)).
		Return([]domain.FlowEntry{
			flow("acc-1", domain.Inflow, "30", start.Add(10*time.Hour)),
			flow("acc-1", domain.Inflow, "45", suite.today.Add(time.Hour)),
		}, nil).Once()

	stmt, err := suite.service.ComposeCashFlow(ctx, portssvc.CashFlowQuery{StartUTC: start, EndUTC: end})

	suite.Require().NoError(err)
	suite.Equal("EXACT", stmt.Basis())
	suite.True(stmt.Opening.Equal(d("100")))
	suite.True(stmt.Closing.Equal(d("130")))
	suite.True(stmt.TotalInflow.Equal(d("30")))
	suite.NotNil(stmt.Unattributed)
	suite.repos.assertExpectations(suite.T())
}

func (suite *ReportingServiceTestSuite) TestComposeCashFlow_WithoutApproxLeavesBalancesEmpty() {
	ctx := context.Background()
	start := suite.today.AddDate(0, 0, -2)
	end := suite.today.AddDate(0, 0, -1)

	suite.repos.accounts.On("FindAccountByID", ctx, mock.Anything, "acc-1").Return(ptr(activeAccount("acc-1", "50")), nil).Once()
	suite.repos.reconciliations.On("ListReconciliationsForDay", ctx, mock.Anything, mock.Anything).
		Return(map[string]domain.Reconciliation{}, nil).Twice()
	suite.repos.reporting.On("FlowsBetween", ctx, mock.Anything, []string{"acc-1"}, false, start, (*time.Time)(nil)).
		Return([]domain.FlowEntry{}, nil).Once()

	stmt, err := suite.service.ComposeCashFlow(ctx, portssvc.CashFlowQuery{AccountID: ptr("acc-1"), StartUTC: start, EndUTC: end})

	suite.Require().NoError(err)
	suite.Equal("FLOWS_ONLY", stmt.Basis())
	suite.Nil(stmt.Opening)
	suite.Nil(stmt.Unattributed)
}

func (suite *ReportingServiceTestSuite) TestTodayCashFlow_AnchorsOnOpeningSnapshot() {
	ctx := context.Background()
	openedAt := suite.today.Add(8 * time.Hour)
	rec := domain.OpenReconciliation("r-1", "acc-1", suite.today, d("100"), nil, "", "u-1", openedAt)

	suite.repos.accounts.On("FindAccountByID", ctx, mock.Anything, "acc-1").Return(ptr(activeAccount("acc-1", "150")), nil).Once()
	suite.repos.reconciliations.On("ListReconciliationsForDay", ctx, mock.Anything, suite.today).
		Return(map[string]domain.Reconciliation{"acc-1": rec}, nil).Twice()
	suite.repos.reconciliations.On("FindReconciliation", ctx, mock.Anything, "acc-1", suite.today).Return(&rec, nil).Once()
	suite.repos.reporting.On("FlowsBetween", ctx, mock.Anything, []string{"acc-1"}, false, suite.today, (*time.Time)(nil)).
		Return([]domain.FlowEntry{
			flow("acc-1", domain.Inflow, "70", suite.today.Add(10*time.Hour)),
			flow("acc-1", domain.Outflow, "20", suite.today.Add(12*time.Hour)),
		}, nil).Once()

	stmt, err := suite.service.TodayCashFlow(ctx, ptr("acc-1"), true)

	suite.Require().NoError(err)
	suite.Equal("APPROXIMATE", stmt.Basis())
	suite.True(stmt.Opening.Equal(d("100")))
	suite.True(stmt.Closing.Equal(d("150")))
	suite.True(stmt.NetFlow.Equal(d("50")))
	suite.repos.assertExpectations(suite.T())
}

func (suite *ReportingServiceTestSuite) TestComposeCashFlow_CompanyWideKeepsInactiveAccounts() {
	ctx := context.Background()
	start := suite.today.AddDate(0, 0, -1)
	retired := activeAccount("acc-2", "0")
	retired.IsActive = false
	moved := domain.Transfer{
		TransferID: "t-1", FromAccountID: "acc-2", ToAccountID: "acc-1", Amount: d("200"),
		Status: domain.TransferCompleted, TransferDate: start.Add(10 * time.Hour),
	}

	suite.repos.accounts.On("ListAccountsLiveSince", ctx, mock.Anything, start).
		Return([]domain.Account{activeAccount("acc-1", "300"), retired}, nil).Once()
	suite.repos.reconciliations.On("ListReconciliationsForDay", ctx, mock.Anything, start).
		Return(map[string]domain.Reconciliation{}, nil).Twice()
	suite.repos.reporting.On("FlowsBetween", ctx, mock.Anything, []string{"acc-1", "acc-2"}, true, start, (*time.Time)(nil)).
		Return(domain.TransferFlowEntries(moved), nil).Once()

	stmt, err := suite.service.ComposeCashFlow(ctx, portssvc.CashFlowQuery{StartUTC: start, EndUTC: suite.today, AllowApprox: true})

	suite.Require().NoError(err)
	suite.Equal([]string{"acc-1", "acc-2"}, stmt.AccountIDs)
	suite.True(stmt.TotalInflow.IsZero(), "transfer between own accounts is not company income")
	suite.True(stmt.NetFlow.IsZero())
	suite.True(stmt.Opening.Equal(d("300")), stmt.Opening.String())
	suite.True(stmt.Closing.Equal(d("300")), stmt.Closing.String())
	suite.True(stmt.UnexplainedDifference.IsZero())
	suite.repos.assertExpectations(suite.T())
}

func (suite *ReportingServiceTestSuite) TestComposeCashFlow_ReversalAfterWindowStaysOnItsDay() {
	ctx := context.Background()
	start := suite.today.AddDate(0, 0, -2)
	end := suite.today.AddDate(0, 0, -1)
	reversedAt := end.Add(10 * time.Hour)
	reversed := domain.Transfer{
		TransferID: "t-1", FromAccountID: "acc-1", ToAccountID: "acc-2", Amount: d("200"),
		Status: domain.TransferReversed, TransferDate: start.Add(-12 * time.Hour), ReversedAt: &reversedAt,
	}

	suite.repos.accounts.On("FindAccountByID", ctx, mock.Anything, "acc-1").Return(ptr(activeAccount("acc-1", "1000")), nil).Once()
	suite.repos.reconciliations.On("ListReconciliationsForDay", ctx, mock.Anything, start).
		Return(map[string]domain.Reconciliation{}, nil).Twice()
	suite.repos.reporting.On("FlowsBetween", ctx, mock.Anything, []string{"acc-1"}, false, start, (*time.Time)(nil)).
		Return(domain.FlowsWithin(domain.TransferFlowEntries(reversed), start, nil), nil).Once()

	stmt, err := suite.service.ComposeCashFlow(ctx, portssvc.CashFlowQuery{AccountID: ptr("acc-1"), StartUTC: start, EndUTC: end, AllowApprox: true})

	suite.Require().NoError(err)
	suite.True(stmt.Opening.Equal(d("800")), stmt.Opening.String())
	suite.True(stmt.Closing.Equal(d("800")), stmt.Closing.String())
	suite.True(stmt.NetFlow.IsZero())
	suite.repos.assertExpectations(suite.T())
}

func (suite *ReportingServiceTestSuite) TestBalanceSheet_ReportsDifference() {
	ctx := context.Background()
	figures := domain.BalanceSheetFigures{
		Accounts:            []domain.Account{activeAccount("acc-1", "500")},
		SaleOutstanding:     d("200"),
		InventoryValue:      d("300"),
		PurchaseOutstanding: d("100"),
		Contributions:       d("800"),
		RealizedProfit:      d("90"),
	}
	suite.repos.reporting.On("BalanceSheetFigures", ctx, mock.Anything).Return(figures, nil).Once()

	bs, err := suite.service.BalanceSheet(ctx)

	suite.Require().NoError(err)
	suite.True(bs.Assets.Total.Equal(d("1000")))
	suite.True(bs.Liabilities.Total.Equal(d("100")))
	suite.True(bs.Equity.Total.Equal(d("890")))
	suite.True(bs.Difference.Equal(d("10")))
}

func TestReportingServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ReportingServiceTestSuite))
}
