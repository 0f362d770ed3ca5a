package handlers_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"time"

	"github.com/SscSPs/shop_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/shop_ledger/internal/core/ports/services"
	"github.com/SscSPs/shop_ledger/internal/dto"
	"github.com/SscSPs/shop_ledger/internal/handlers"
	"github.com/SscSPs/shop_ledger/internal/middleware"
	"github.com/SscSPs/shop_ledger/internal/platform/config"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

// --- Mock AccountService ---
type MockAccountService struct {
	mock.Mock
}

func (m *MockAccountService) GetAccountByID(ctx context.Context, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) ListAccounts(ctx context.Context, includeInactive bool) ([]domain.Account, error) {
	args := m.Called(ctx, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}
func (m *MockAccountService) GetBalance(ctx context.Context, accountID string) (decimal.Decimal, error) {
	args := m.Called(ctx, accountID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}
func (m *MockAccountService) CreateAccount(ctx context.Context, req dto.CreateAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) UpdateAccount(ctx context.Context, accountID string, req dto.UpdateAccountRequest, userID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}
func (m *MockAccountService) DeleteAccount(ctx context.Context, accountID string, userID string) error {
	args := m.Called(ctx, accountID, userID)
	return args.Error(0)
}
func (m *MockAccountService) RestoreAccount(ctx context.Context, accountID string, userID string) (*domain.Account, error) {
	args := m.Called(ctx, accountID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

var _ portssvc.AccountSvcFacade = (*MockAccountService)(nil)

// --- Mock MovementService ---
type MockMovementService struct {
	mock.Mock
}

func (m *MockMovementService) RecordMovement(ctx context.Context, req dto.RecordMovementRequest, userID string) (*domain.Movement, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Movement), args.Error(1)
}
func (m *MockMovementService) GetMovement(ctx context.Context, movementID string) (*domain.Movement, error) {
	args := m.Called(ctx, movementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Movement), args.Error(1)
}
func (m *MockMovementService) ListMovements(ctx context.Context, params dto.ListMovementsParams) ([]domain.Movement, *string, error) {
	args := m.Called(ctx, params)
	var next *string
	if args.Get(1) != nil {
		next = args.Get(1).(*string)
	}
	if args.Get(0) == nil {
		return nil, next, args.Error(2)
	}
	return args.Get(0).([]domain.Movement), next, args.Error(2)
}
func (m *MockMovementService) EditMovementAmount(ctx context.Context, movementID string, req dto.EditMovementAmountRequest, userID string) (*domain.Movement, error) {
	args := m.Called(ctx, movementID, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Movement), args.Error(1)
}
func (m *MockMovementService) VoidMovement(ctx context.Context, movementID string, userID string) (*domain.Movement, error) {
	args := m.Called(ctx, movementID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Movement), args.Error(1)
}

var _ portssvc.MovementSvcFacade = (*MockMovementService)(nil)

// --- Mock TransferService ---
type MockTransferService struct {
	mock.Mock
}

func (m *MockTransferService) transfer(args mock.Arguments) (*domain.Transfer, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transfer), args.Error(1)
}
func (m *MockTransferService) CreateTransfer(ctx context.Context, req dto.CreateTransferRequest, userID string) (*domain.Transfer, error) {
	return m.transfer(m.Called(ctx, req, userID))
}
func (m *MockTransferService) CompleteTransfer(ctx context.Context, transferID string, userID string) (*domain.Transfer, error) {
	return m.transfer(m.Called(ctx, transferID, userID))
}
func (m *MockTransferService) ReverseTransfer(ctx context.Context, transferID string, userID string) (*domain.Transfer, error) {
	return m.transfer(m.Called(ctx, transferID, userID))
}
func (m *MockTransferService) GetTransfer(ctx context.Context, transferID string) (*domain.Transfer, error) {
	return m.transfer(m.Called(ctx, transferID))
}
func (m *MockTransferService) ListTransfers(ctx context.Context, params dto.ListTransfersParams) ([]domain.Transfer, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transfer), args.Error(1)
}

var _ portssvc.TransferSvcFacade = (*MockTransferService)(nil)

// --- Mock SaleService ---
type MockSaleService struct {
	mock.Mock
}

func (m *MockSaleService) saleAndMovement(args mock.Arguments) (*domain.Sale, *domain.Movement, error) {
	var sale *domain.Sale
	var movement *domain.Movement
	if args.Get(0) != nil {
		sale = args.Get(0).(*domain.Sale)
	}
	if args.Get(1) != nil {
		movement = args.Get(1).(*domain.Movement)
	}
	return sale, movement, args.Error(2)
}
func (m *MockSaleService) CreateSale(ctx context.Context, req dto.CreateSaleRequest, userID string) (*domain.Sale, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Sale), args.Error(1)
}
func (m *MockSaleService) GetSale(ctx context.Context, saleID string) (*domain.Sale, error) {
	args := m.Called(ctx, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Sale), args.Error(1)
}
func (m *MockSaleService) RecordSalePayment(ctx context.Context, saleID string, req dto.PaymentRequest, userID string) (*domain.Sale, *domain.Movement, error) {
	return m.saleAndMovement(m.Called(ctx, saleID, req, userID))
}
func (m *MockSaleService) RefundSale(ctx context.Context, saleID string, req dto.RefundSaleRequest, userID string) (*domain.Sale, *domain.Movement, error) {
	return m.saleAndMovement(m.Called(ctx, saleID, req, userID))
}
func (m *MockSaleService) ListSaleMovements(ctx context.Context, saleID string) ([]domain.Movement, error) {
	args := m.Called(ctx, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Movement), args.Error(1)
}

var _ portssvc.SaleSvcFacade = (*MockSaleService)(nil)

// --- Mock PurchaseService ---
type MockPurchaseService struct {
	mock.Mock
}

func (m *MockPurchaseService) CreatePurchase(ctx context.Context, req dto.CreatePurchaseRequest, userID string) (*domain.Purchase, error) {
	args := m.Called(ctx, req, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Purchase), args.Error(1)
}
func (m *MockPurchaseService) GetPurchase(ctx context.Context, purchaseID string) (*domain.Purchase, error) {
	args := m.Called(ctx, purchaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Purchase), args.Error(1)
}
func (m *MockPurchaseService) RecordPurchasePayment(ctx context.Context, purchaseID string, req dto.PaymentRequest, userID string) (*domain.Purchase, *domain.Movement, error) {
	args := m.Called(ctx, purchaseID, req, userID)
	var purchase *domain.Purchase
	var movement *domain.Movement
	if args.Get(0) != nil {
		purchase = args.Get(0).(*domain.Purchase)
	}
	if args.Get(1) != nil {
		movement = args.Get(1).(*domain.Movement)
	}
	return purchase, movement, args.Error(2)
}
func (m *MockPurchaseService) ListPurchaseMovements(ctx context.Context, purchaseID string) ([]domain.Movement, error) {
	args := m.Called(ctx, purchaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Movement), args.Error(1)
}

var _ portssvc.PurchaseSvcFacade = (*MockPurchaseService)(nil)

// --- Mock NoteService ---
type MockNoteService struct {
	mock.Mock
}

func (m *MockNoteService) note(args mock.Arguments) (*domain.Note, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Note), args.Error(1)
}
func (m *MockNoteService) noteWithAllocations(args mock.Arguments) (*domain.Note, []domain.NoteAllocation, error) {
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var allocations []domain.NoteAllocation
	if args.Get(1) != nil {
		allocations = args.Get(1).([]domain.NoteAllocation)
	}
	return args.Get(0).(*domain.Note), allocations, args.Error(2)
}
func (m *MockNoteService) GetNote(ctx context.Context, side domain.NoteSide, noteID string) (*domain.Note, []domain.NoteAllocation, error) {
	return m.noteWithAllocations(m.Called(ctx, side, noteID))
}
func (m *MockNoteService) ListNotesForDocument(ctx context.Context, side domain.NoteSide, documentID string) ([]domain.Note, error) {
	args := m.Called(ctx, side, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Note), args.Error(1)
}
func (m *MockNoteService) CreateNote(ctx context.Context, side domain.NoteSide, req dto.CreateNoteRequest, userID string) (*domain.Note, error) {
	return m.note(m.Called(ctx, side, req, userID))
}
func (m *MockNoteService) UpdateNote(ctx context.Context, side domain.NoteSide, noteID string, req dto.UpdateNoteRequest, userID string) (*domain.Note, error) {
	return m.note(m.Called(ctx, side, noteID, req, userID))
}
func (m *MockNoteService) DeleteNote(ctx context.Context, side domain.NoteSide, noteID string, userID string) error {
	return m.Called(ctx, side, noteID, userID).Error(0)
}
func (m *MockNoteService) ApplyNote(ctx context.Context, side domain.NoteSide, noteID string, req dto.ApplyNoteRequest, userID string) (*domain.Note, []domain.NoteAllocation, error) {
	return m.noteWithAllocations(m.Called(ctx, side, noteID, req, userID))
}
func (m *MockNoteService) RefundNote(ctx context.Context, side domain.NoteSide, noteID string, req dto.RefundNoteRequest, userID string) (*domain.Note, error) {
	return m.note(m.Called(ctx, side, noteID, req, userID))
}
func (m *MockNoteService) CancelNote(ctx context.Context, side domain.NoteSide, noteID string, userID string) (*domain.Note, error) {
	return m.note(m.Called(ctx, side, noteID, userID))
}

var _ portssvc.NoteSvcFacade = (*MockNoteService)(nil)

// --- Mock ReconciliationService ---
type MockReconciliationService struct {
	mock.Mock
}

func (m *MockReconciliationService) rec(args mock.Arguments) (*domain.Reconciliation, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reconciliation), args.Error(1)
}
func (m *MockReconciliationService) bulk(args mock.Arguments) (*domain.BulkReconciliationResult, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BulkReconciliationResult), args.Error(1)
}
func (m *MockReconciliationService) Open(ctx context.Context, req dto.ReconciliationRequest, userID string) (*domain.Reconciliation, error) {
	return m.rec(m.Called(ctx, req, userID))
}
func (m *MockReconciliationService) Close(ctx context.Context, req dto.ReconciliationRequest, userID string) (*domain.Reconciliation, error) {
	return m.rec(m.Called(ctx, req, userID))
}
func (m *MockReconciliationService) OpenAll(ctx context.Context, businessDate time.Time, userID string) (*domain.BulkReconciliationResult, error) {
	return m.bulk(m.Called(ctx, businessDate, userID))
}
func (m *MockReconciliationService) CloseAll(ctx context.Context, businessDate time.Time, userID string) (*domain.BulkReconciliationResult, error) {
	return m.bulk(m.Called(ctx, businessDate, userID))
}
func (m *MockReconciliationService) Get(ctx context.Context, accountID string, businessDate time.Time) (*domain.Reconciliation, error) {
	return m.rec(m.Called(ctx, accountID, businessDate))
}
func (m *MockReconciliationService) ListForDay(ctx context.Context, businessDate time.Time) ([]domain.Reconciliation, error) {
	args := m.Called(ctx, businessDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reconciliation), args.Error(1)
}

var _ portssvc.ReconciliationSvcFacade = (*MockReconciliationService)(nil)

// --- Mock ReportingService ---
type MockReportingService struct {
	mock.Mock
}

func (m *MockReportingService) statement(args mock.Arguments) (*domain.CashFlowStatement, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.CashFlowStatement), args.Error(1)
}
func (m *MockReportingService) ComposeCashFlow(ctx context.Context, q portssvc.CashFlowQuery) (*domain.CashFlowStatement, error) {
	return m.statement(m.Called(ctx, q))
}
func (m *MockReportingService) TodayCashFlow(ctx context.Context, accountID *string, allowApprox bool) (*domain.CashFlowStatement, error) {
	return m.statement(m.Called(ctx, accountID, allowApprox))
}
func (m *MockReportingService) BalanceSheet(ctx context.Context) (*domain.BalanceSheet, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.BalanceSheet), args.Error(1)
}

var _ portssvc.ReportingService = (*MockReportingService)(nil)

// handlerSuite wires every mock service behind the real router and auth middleware.
type handlerSuite struct {
	suite.Suite
	router         *gin.Engine
	jwtSecret      string
	token          string
	accounts       *MockAccountService
	movements      *MockMovementService
	transfers      *MockTransferService
	sales          *MockSaleService
	purchases      *MockPurchaseService
	notes          *MockNoteService
	reconciliation *MockReconciliationService
	reporting      *MockReportingService
}

func (suite *handlerSuite) generateTestToken(userID string) string {
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		IssuedAt:  jwt.NewNumericDate(time.Now()),
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(suite.jwtSecret))
	suite.Require().NoError(err)
	return signed
}

func (suite *handlerSuite) SetupSuite() {
	middleware.SetupValidator()
}

func (suite *handlerSuite) SetupTest() {
	gin.SetMode(gin.TestMode)
	suite.jwtSecret = "test-secret-key-that-is-long-enough"
	suite.token = suite.generateTestToken(testUserID)

	suite.accounts = new(MockAccountService)
	suite.movements = new(MockMovementService)
	suite.transfers = new(MockTransferService)
	suite.sales = new(MockSaleService)
	suite.purchases = new(MockPurchaseService)
	suite.notes = new(MockNoteService)
	suite.reconciliation = new(MockReconciliationService)
	suite.reporting = new(MockReportingService)

	cfg := &config.Config{
		IsProduction:   true,
		AuthEnabled:    true,
		JWTSecret:      suite.jwtSecret,
		RateLimit:      "1000-S",
		AllowedOrigins: []string{"http://localhost:3000"},
		RequestTimeout: 5 * time.Second,
	}
	suite.router = gin.New()
	suite.Require().NoError(handlers.RegisterRoutes(suite.router, cfg, &portssvc.ServiceContainer{
		Account:        suite.accounts,
		Movement:       suite.movements,
		Transfer:       suite.transfers,
		Sale:           suite.sales,
		Purchase:       suite.purchases,
		Note:           suite.notes,
		Reconciliation: suite.reconciliation,
		Reporting:      suite.reporting,
	}))
}

func (suite *handlerSuite) TearDownTest() {
	mock.AssertExpectationsForObjects(suite.T(),
		suite.accounts, suite.movements, suite.transfers, suite.sales,
		suite.purchases, suite.notes, suite.reconciliation, suite.reporting)
}

// do sends an authenticated request and records the response.
func (suite *handlerSuite) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Authorization", "Bearer "+suite.token)
	w := httptest.NewRecorder()
	suite.router.ServeHTTP(w, req)
	return w
}

const (
	testUserID    = "user-123"
	testAccountID = "7f0c5d7e-8a51-4c43-9a63-0c6f2f1b2a10"
)
