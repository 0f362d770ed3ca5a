package services_test

import (
	"context"
	"testing"

	"github.com/SscSPs/shop_ledger/internal/apperrors"
	"github.com/SscSPs/shop_ledger/internal/core/domain"
	"github.com/SscSPs/shop_ledger/internal/core/services"
	"github.com/SscSPs/shop_ledger/internal/dto"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type SaleServiceTestSuite struct {
	suite.Suite
	repos   *mockRepos
	service *services.SaleService
	userID  string
}

func (suite *SaleServiceTestSuite) SetupTest() {
	suite.repos = newMockRepos()
	suite.service = services.NewSaleService(suite.repos.provider(), testOptions()...)
	suite.userID = "u-1"
}

func (suite *SaleServiceTestSuite) openSale() *domain.Sale {
	sale := &domain.Sale{
		SaleID:       "s-1",
		CustomerID:   "c-1",
		DocumentDate: fixedNow,
		TotalAmount:  d("110"),
		TaxAmount:    d("10"),
		PaidAmount:   d("60"),
		Items: []domain.SaleItem{
			{SaleItemID: "si-1", SaleID: "s-1", ProductID: "p-1", Quantity: d("2"), UnitPrice: d("50"), UnitCost: d("30"), ReturnedQuantity: d("0")},
		},
	}
	sale.Recalculate()
	return sale
}

func (suite *SaleServiceTestSuite) TestCreateSale_WithInitialPayment() {
	ctx := context.Background()
	req := dto.CreateSaleRequest{
		CustomerID:   "c-1",
		DocumentDate: fixedNow,
		TaxAmount:    d("10"),
		Items:        []dto.SaleItemRequest{{ProductID: "p-1", Quantity: d("2"), UnitPrice: d("50")}},
		InitialPayment: &dto.PaymentRequest{
			Amount:    d("60"),
			AccountID: ptr("acc-1"),
		},
	}

	suite.repos.inventory.On("FindInventoryItems", ctx, mock.Anything, []string{"p-1"}).
		Return(map[string]domain.InventoryItem{"p-1": {ProductID: "p-1", OnHandQuantity: d("10"), TotalValue: d("300")}}, nil).Once()
	suite.repos.sales.On("SaveSale", ctx, mock.Anything, mock.MatchedBy(func(s domain.Sale) bool {
		return s.SaleID == "id-1" && s.TotalAmount.Equal(d("110")) && s.Items[0].UnitCost.Equal(d("30")) && s.OutstandingAmount.Equal(d("110"))
	})).Return(nil).Once()
	suite.repos.inventory.On("ApplyStockChanges", ctx, mock.Anything, mock.MatchedBy(func(c []domain.StockChange) bool {
		return len(c) == 1 && c[0].QuantityDelta.Equal(d("-2")) && c[0].ValueDelta.Equal(d("-60"))
	}), fixedNow).Return(nil).Once()
	suite.repos.accounts.On("LockAccounts", ctx, mock.Anything, []string{"acc-1"}).
		Return(lockedAccounts(activeAccount("acc-1", "0")), nil).Once()
	suite.repos.movements.On("SaveMovement", ctx, mock.Anything, mock.MatchedBy(func(m domain.Movement) bool {
		return m.Kind == domain.SalePayment && *m.DocumentID == "id-1" && *m.PartyID == "c-1"
	})).Return(nil).Once()
	suite.repos.accounts.On("AdjustBalance", ctx, mock.Anything, "acc-1", decEq("60"), suite.userID, fixedNow).Return(d("60"), nil).Once()

	saved := domain.Sale{SaleID: "id-1", CustomerID: "c-1", TotalAmount: d("110"), TaxAmount: d("10"), PaidAmount: d("0")}
	saved.Recalculate()
	suite.repos.sales.On("FindSaleForUpdate", ctx, mock.Anything, "id-1").Return(&saved, nil).Once()
	suite.repos.sales.On("UpdateSaleLedger", ctx, mock.Anything, mock.MatchedBy(func(s domain.Sale) bool {
		return s.PaidAmount.Equal(d("60")) && s.OutstandingAmount.Equal(d("50")) && !s.IsPaid
	}), suite.userID, fixedNow).Return(nil).Once()

	sale, err := suite.service.CreateSale(ctx, req, suite.userID)

	suite.Require().NoError(err)
	suite.True(sale.OutstandingAmount.Equal(d("50")))
	suite.repos.assertExpectations(suite.T())
}

func (suite *SaleServiceTestSuite) TestCreateSale_RequiresItems() {
	_, err := suite.service.CreateSale(context.Background(), dto.CreateSaleRequest{CustomerID: "c-1"}, suite.userID)
	suite.ErrorIs(err, apperrors.ErrValidation)
}

func (suite *SaleServiceTestSuite) TestRecordSalePayment_RejectsOverpayment() {
	ctx := context.Background()
	sale := suite.openSale()

	suite.repos.sales.On("FindSaleByID", ctx, mock.Anything, "s-1").Return(sale, nil).Once()
	suite.repos.accounts.On("LockAccounts", ctx, mock.Anything, []string{"acc-1"}).
		Return(lockedAccounts(activeAccount("acc-1", "0")), nil).Once()
	suite.repos.movements.On("SaveMovement", ctx, mock.Anything, mock.Anything).Return(nil).Once()
	suite.repos.accounts.On("AdjustBalance", ctx, mock.Anything, "acc-1", decEq("51"), suite.userID, fixedNow).Return(d("51"), nil).Once()
	suite.repos.sales.On("FindSaleForUpdate", ctx, mock.Anything, "s-1").Return(sale, nil).Once()

	_, _, err := suite.service.RecordSalePayment(ctx, "s-1", dto.PaymentRequest{Amount: d("51"), AccountID: ptr("acc-1")}, suite.userID)

	suite.ErrorIs(err, apperrors.ErrInsufficientFunds)
	suite.repos.sales.AssertNotCalled(suite.T(), "UpdateSaleLedger", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SaleServiceTestSuite) TestRecordSalePayment_InactiveAccount() {
	ctx := context.Background()
	inactive := activeAccount("acc-1", "0")
	inactive.IsActive = false

	suite.repos.sales.On("FindSaleByID", ctx, mock.Anything, "s-1").Return(suite.openSale(), nil).Once()
	suite.repos.accounts.On("LockAccounts", ctx, mock.Anything, []string{"acc-1"}).Return(lockedAccounts(inactive), nil).Once()

	_, _, err := suite.service.RecordSalePayment(ctx, "s-1", dto.PaymentRequest{Amount: d("10"), AccountID: ptr("acc-1")}, suite.userID)

	suite.ErrorIs(err, apperrors.ErrValidation)
	suite.repos.movements.AssertNotCalled(suite.T(), "SaveMovement", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *SaleServiceTestSuite) TestRefundSale_ReturnsPaymentAndRestocks() {
	ctx := context.Background()
	sale := suite.openSale()

	suite.repos.accounts.On("LockAccounts", ctx, mock.Anything, []string{"acc-1"}).
		Return(lockedAccounts(activeAccount("acc-1", "500")), nil).Twice()
	lockSale := suite.repos.sales.On("FindSaleForUpdate", ctx, mock.Anything, "s-1").Return(sale, nil).Once()
	suite.repos.movements.On("SaveMovement", ctx, mock.Anything, mock.MatchedBy(func(m domain.Movement) bool {
		return m.Kind == domain.SaleRefund && m.Amount.Equal(d("60")) && *m.DocumentID == "s-1"
	})).Return(nil).Once()
	suite.repos.accounts.On("AdjustBalance", ctx, mock.Anything, "acc-1", decEq("-60"), suite.userID, fixedNow).Return(d("440"), nil).Once()
	suite.repos.sales.On("UpdateSaleItemReturns", ctx, mock.Anything, mock.MatchedBy(func(items []domain.SaleItem) bool {
		return len(items) == 1 && items[0].ReturnedQuantity.Equal(d("2"))
	})).Return(nil).Once().NotBefore(lockSale)
	suite.repos.inventory.On("ApplyStockChanges", ctx, mock.Anything, mock.MatchedBy(func(c []domain.StockChange) bool {
		return len(c) == 1 && c[0].QuantityDelta.Equal(d("2")) && c[0].ValueDelta.Equal(d("60"))
	}), fixedNow).Return(nil).Once().NotBefore(lockSale)
	suite.repos.sales.On("UpdateSaleLedger", ctx, mock.Anything, mock.MatchedBy(func(s domain.Sale) bool {
		return s.IsRefunded && s.PaidAmount.IsZero() && s.OutstandingAmount.IsZero() && s.Profit.IsZero()
	}), suite.userID, fixedNow).Return(nil).Once()

	refunded, refund, err := suite.service.RefundSale(ctx, "s-1", dto.RefundSaleRequest{AccountID: ptr("acc-1")}, suite.userID)

	suite.Require().NoError(err)
	suite.True(refunded.IsRefunded)
	suite.Require().NotNil(refund)
	suite.True(refund.Amount.Equal(d("60")))
	suite.repos.assertExpectations(suite.T())
}

func (suite *SaleServiceTestSuite) TestRefundSale_Twice() {
	ctx := context.Background()
	sale := suite.openSale()
	sale.IsRefunded = true

	suite.repos.sales.On("FindSaleForUpdate", ctx, mock.Anything, "s-1").Return(sale, nil).Once()

	_, _, err := suite.service.RefundSale(ctx, "s-1", dto.RefundSaleRequest{}, suite.userID)
	suite.ErrorIs(err, apperrors.ErrConflict)
}

func TestSaleServiceTestSuite(t *testing.T) {
	suite.Run(t, new(SaleServiceTestSuite))
}

type PurchaseServiceTestSuite struct {
	suite.Suite
	repos   *mockRepos
	service *services.PurchaseService
}

func (suite *PurchaseServiceTestSuite) SetupTest() {
	suite.repos = newMockRepos()
	suite.service = services.NewPurchaseService(suite.repos.provider(), testOptions()...)
}

func (suite *PurchaseServiceTestSuite) TestCreatePurchase_StocksAtCost() {
	ctx := context.Background()
	req := dto.CreatePurchaseRequest{
		SupplierID:   "sup-1",
		DocumentDate: fixedNow,
		Items:        []dto.PurchaseItemRequest{{ProductID: "p-1", Quantity: d("10"), UnitCost: d("8")}},
	}

	suite.repos.purchases.On("SavePurchase", ctx, mock.Anything, mock.MatchedBy(func(p domain.Purchase) bool {
		return p.TotalAmount.Equal(d("80")) && p.OutstandingAmount.Equal(d("80")) && len(p.Items) == 1
	})).Return(nil).Once()
	suite.repos.inventory.On("ApplyStockChanges", ctx, mock.Anything, mock.MatchedBy(func(c []domain.StockChange) bool {
		return len(c) == 1 && c[0].QuantityDelta.Equal(d("10")) && c[0].ValueDelta.Equal(d("80"))
	}), fixedNow).Return(nil).Once()

	purchase, err := suite.service.CreatePurchase(ctx, req, "u-1")

	suite.Require().NoError(err)
	suite.False(purchase.IsPaid)
	suite.repos.assertExpectations(suite.T())
}

func (suite *PurchaseServiceTestSuite) TestRecordPurchasePayment_Unattributed() {
	ctx := context.Background()
	purchase := &domain.Purchase{PurchaseID: "p-1", SupplierID: "sup-1", TotalAmount: d("80"), PaidAmount: d("0")}
	purchase.Recalculate()

	suite.repos.purchases.On("FindPurchaseByID", ctx, mock.Anything, "p-1").Return(purchase, nil).Once()
	suite.repos.movements.On("SaveMovement", ctx, mock.Anything, mock.MatchedBy(func(m domain.Movement) bool {
		return m.Kind == domain.PurchasePayment && m.AccountID == nil
	})).Return(nil).Once()
	suite.repos.purchases.On("FindPurchaseForUpdate", ctx, mock.Anything, "p-1").Return(purchase, nil).Once()
	suite.repos.purchases.On("UpdatePurchaseLedger", ctx, mock.Anything, mock.MatchedBy(func(p domain.Purchase) bool {
		return p.IsPaid && p.OutstandingAmount.IsZero()
	}), "u-1", fixedNow).Return(nil).Once()

	paid, m, err := suite.service.RecordPurchasePayment(ctx, "p-1", dto.PaymentRequest{Amount: d("80")}, "u-1")

	suite.Require().NoError(err)
	suite.True(paid.IsPaid)
	suite.Nil(m.AccountID)
	suite.repos.accounts.AssertNotCalled(suite.T(), "AdjustBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	suite.repos.assertExpectations(suite.T())
}

func TestPurchaseServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PurchaseServiceTestSuite))
}
