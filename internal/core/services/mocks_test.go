package services_test

import (
	"context"
	"time"

	"github.com/SscSPs/shop_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/shop_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/mock"
)

// --- Mock TransactionManager ---
// Runs the unit of work inline with a nil transaction.
type MockTxManager struct{}

var _ portsrepo.TransactionManager = (*MockTxManager)(nil)

func (m *MockTxManager) WithinTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

func (m *MockTxManager) WithinReadOnlyTx(ctx context.Context, fn func(tx pgx.Tx) error) error {
	return fn(nil)
}

// --- Mock AccountRepository ---
type MockAccountRepository struct {
	mock.Mock
}

var _ portsrepo.AccountRepositoryFacade = (*MockAccountRepository)(nil)

func (m *MockAccountRepository) FindAccountByID(ctx context.Context, tx pgx.Tx, accountID string) (*domain.Account, error) {
	args := m.Called(ctx, tx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountByName(ctx context.Context, tx pgx.Tx, name string) (*domain.Account, error) {
	args := m.Called(ctx, tx, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccounts(ctx context.Context, tx pgx.Tx, includeInactive bool) ([]domain.Account, error) {
	args := m.Called(ctx, tx, includeInactive)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) ListAccountsLiveSince(ctx context.Context, tx pgx.Tx, since time.Time) ([]domain.Account, error) {
	args := m.Called(ctx, tx, since)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) FindAccountsByIDs(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) SaveAccount(ctx context.Context, tx pgx.Tx, account domain.Account) error {
	return m.Called(ctx, tx, account).Error(0)
}

func (m *MockAccountRepository) UpdateAccount(ctx context.Context, tx pgx.Tx, account domain.Account) error {
	return m.Called(ctx, tx, account).Error(0)
}

func (m *MockAccountRepository) ClearDefaultAccount(ctx context.Context, tx pgx.Tx, userID string, now time.Time) error {
	return m.Called(ctx, tx, userID, now).Error(0)
}

func (m *MockAccountRepository) LockAccounts(ctx context.Context, tx pgx.Tx, accountIDs []string) (map[string]domain.Account, error) {
	args := m.Called(ctx, tx, accountIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Account), args.Error(1)
}

func (m *MockAccountRepository) AdjustBalance(ctx context.Context, tx pgx.Tx, accountID string, signedAmount decimal.Decimal, userID string, now time.Time) (decimal.Decimal, error) {
	args := m.Called(ctx, tx, accountID, signedAmount, userID, now)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

// --- Mock MovementRepository ---
type MockMovementRepository struct {
	mock.Mock
}

var _ portsrepo.MovementRepositoryFacade = (*MockMovementRepository)(nil)

func (m *MockMovementRepository) FindMovementByID(ctx context.Context, tx pgx.Tx, movementID string) (*domain.Movement, error) {
	args := m.Called(ctx, tx, movementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Movement), args.Error(1)
}

func (m *MockMovementRepository) ListMovements(ctx context.Context, tx pgx.Tx, filter domain.MovementFilter, limit int, nextToken *string) ([]domain.Movement, *string, error) {
	args := m.Called(ctx, tx, filter, limit, nextToken)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	var returnedNextToken *string
	if args.Get(1) != nil {
		tokenVal := args.Get(1).(string)
		returnedNextToken = &tokenVal
	}
	return args.Get(0).([]domain.Movement), returnedNextToken, args.Error(2)
}

func (m *MockMovementRepository) ListMovementsForDocument(ctx context.Context, tx pgx.Tx, documentType domain.DocumentType, documentID string) ([]domain.Movement, error) {
	args := m.Called(ctx, tx, documentType, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Movement), args.Error(1)
}

func (m *MockMovementRepository) SaveMovement(ctx context.Context, tx pgx.Tx, movement domain.Movement) error {
	return m.Called(ctx, tx, movement).Error(0)
}

func (m *MockMovementRepository) FindMovementForUpdate(ctx context.Context, tx pgx.Tx, movementID string) (*domain.Movement, error) {
	args := m.Called(ctx, tx, movementID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Movement), args.Error(1)
}

func (m *MockMovementRepository) UpdateMovementAmount(ctx context.Context, tx pgx.Tx, movementID string, amount decimal.Decimal, userID string, now time.Time) error {
	return m.Called(ctx, tx, movementID, amount, userID, now).Error(0)
}

func (m *MockMovementRepository) VoidMovement(ctx context.Context, tx pgx.Tx, movementID string, userID string, now time.Time) error {
	return m.Called(ctx, tx, movementID, userID, now).Error(0)
}

func (m *MockMovementRepository) SaveAmountEdit(ctx context.Context, tx pgx.Tx, edit domain.MovementAmountEdit) error {
	return m.Called(ctx, tx, edit).Error(0)
}

// --- Mock TransferRepository ---
type MockTransferRepository struct {
	mock.Mock
}

var _ portsrepo.TransferRepositoryFacade = (*MockTransferRepository)(nil)

func (m *MockTransferRepository) SaveTransfer(ctx context.Context, tx pgx.Tx, transfer domain.Transfer) error {
	return m.Called(ctx, tx, transfer).Error(0)
}

func (m *MockTransferRepository) FindTransferByID(ctx context.Context, tx pgx.Tx, transferID string) (*domain.Transfer, error) {
	args := m.Called(ctx, tx, transferID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transfer), args.Error(1)
}

func (m *MockTransferRepository) FindTransferForUpdate(ctx context.Context, tx pgx.Tx, transferID string) (*domain.Transfer, error) {
	args := m.Called(ctx, tx, transferID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Transfer), args.Error(1)
}

func (m *MockTransferRepository) UpdateTransferStatus(ctx context.Context, tx pgx.Tx, transfer domain.Transfer) error {
	return m.Called(ctx, tx, transfer).Error(0)
}

func (m *MockTransferRepository) ListTransfers(ctx context.Context, tx pgx.Tx, accountID *string, limit int, offset int) ([]domain.Transfer, error) {
	args := m.Called(ctx, tx, accountID, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Transfer), args.Error(1)
}

// --- Mock SaleRepository ---
type MockSaleRepository struct {
	mock.Mock
}

var _ portsrepo.SaleRepositoryFacade = (*MockSaleRepository)(nil)

func (m *MockSaleRepository) SaveSale(ctx context.Context, tx pgx.Tx, sale domain.Sale) error {
	return m.Called(ctx, tx, sale).Error(0)
}

func (m *MockSaleRepository) FindSaleByID(ctx context.Context, tx pgx.Tx, saleID string) (*domain.Sale, error) {
	args := m.Called(ctx, tx, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Sale), args.Error(1)
}

func (m *MockSaleRepository) FindSaleForUpdate(ctx context.Context, tx pgx.Tx, saleID string) (*domain.Sale, error) {
	args := m.Called(ctx, tx, saleID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Sale), args.Error(1)
}

func (m *MockSaleRepository) LockSalesForCustomer(ctx context.Context, tx pgx.Tx, customerID string, saleIDs []string) ([]domain.Sale, error) {
	args := m.Called(ctx, tx, customerID, saleIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Sale), args.Error(1)
}

func (m *MockSaleRepository) UpdateSaleLedger(ctx context.Context, tx pgx.Tx, sale domain.Sale, userID string, now time.Time) error {
	return m.Called(ctx, tx, sale, userID, now).Error(0)
}

func (m *MockSaleRepository) FindSaleItemsByIDs(ctx context.Context, tx pgx.Tx, itemIDs []string) (map[string]domain.SaleItem, error) {
	args := m.Called(ctx, tx, itemIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.SaleItem), args.Error(1)
}

func (m *MockSaleRepository) UpdateSaleItemReturns(ctx context.Context, tx pgx.Tx, items []domain.SaleItem) error {
	return m.Called(ctx, tx, items).Error(0)
}

// --- Mock PurchaseRepository ---
type MockPurchaseRepository struct {
	mock.Mock
}

var _ portsrepo.PurchaseRepositoryFacade = (*MockPurchaseRepository)(nil)

func (m *MockPurchaseRepository) SavePurchase(ctx context.Context, tx pgx.Tx, purchase domain.Purchase) error {
	return m.Called(ctx, tx, purchase).Error(0)
}

func (m *MockPurchaseRepository) FindPurchaseByID(ctx context.Context, tx pgx.Tx, purchaseID string) (*domain.Purchase, error) {
	args := m.Called(ctx, tx, purchaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Purchase), args.Error(1)
}

func (m *MockPurchaseRepository) FindPurchaseForUpdate(ctx context.Context, tx pgx.Tx, purchaseID string) (*domain.Purchase, error) {
	args := m.Called(ctx, tx, purchaseID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Purchase), args.Error(1)
}

func (m *MockPurchaseRepository) LockPurchasesForSupplier(ctx context.Context, tx pgx.Tx, supplierID string, purchaseIDs []string) ([]domain.Purchase, error) {
	args := m.Called(ctx, tx, supplierID, purchaseIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Purchase), args.Error(1)
}

func (m *MockPurchaseRepository) UpdatePurchaseLedger(ctx context.Context, tx pgx.Tx, purchase domain.Purchase, userID string, now time.Time) error {
	return m.Called(ctx, tx, purchase, userID, now).Error(0)
}

func (m *MockPurchaseRepository) FindPurchaseItemsByIDs(ctx context.Context, tx pgx.Tx, itemIDs []string) (map[string]domain.PurchaseItem, error) {
	args := m.Called(ctx, tx, itemIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.PurchaseItem), args.Error(1)
}

func (m *MockPurchaseRepository) UpdatePurchaseItemReturns(ctx context.Context, tx pgx.Tx, items []domain.PurchaseItem) error {
	return m.Called(ctx, tx, items).Error(0)
}

// --- Mock InventoryRepository ---
type MockInventoryRepository struct {
	mock.Mock
}

var _ portsrepo.InventoryRepositoryFacade = (*MockInventoryRepository)(nil)

func (m *MockInventoryRepository) FindInventoryItems(ctx context.Context, tx pgx.Tx, productIDs []string) (map[string]domain.InventoryItem, error) {
	args := m.Called(ctx, tx, productIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.InventoryItem), args.Error(1)
}

func (m *MockInventoryRepository) ApplyStockChanges(ctx context.Context, tx pgx.Tx, changes []domain.StockChange, now time.Time) error {
	return m.Called(ctx, tx, changes, now).Error(0)
}

// --- Mock NoteRepository ---
type MockNoteRepository struct {
	mock.Mock
}

var _ portsrepo.NoteRepositoryFacade = (*MockNoteRepository)(nil)

func (m *MockNoteRepository) FindNoteByID(ctx context.Context, tx pgx.Tx, noteID string) (*domain.Note, error) {
	args := m.Called(ctx, tx, noteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Note), args.Error(1)
}

func (m *MockNoteRepository) ListNotesForDocument(ctx context.Context, tx pgx.Tx, documentType domain.DocumentType, documentID string) ([]domain.Note, error) {
	args := m.Called(ctx, tx, documentType, documentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Note), args.Error(1)
}

func (m *MockNoteRepository) ListAllocations(ctx context.Context, tx pgx.Tx, noteID string) ([]domain.NoteAllocation, error) {
	args := m.Called(ctx, tx, noteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.NoteAllocation), args.Error(1)
}

func (m *MockNoteRepository) SaveNote(ctx context.Context, tx pgx.Tx, note domain.Note) error {
	return m.Called(ctx, tx, note).Error(0)
}

func (m *MockNoteRepository) FindNoteForUpdate(ctx context.Context, tx pgx.Tx, noteID string) (*domain.Note, error) {
	args := m.Called(ctx, tx, noteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Note), args.Error(1)
}

func (m *MockNoteRepository) UpdateNote(ctx context.Context, tx pgx.Tx, note domain.Note) error {
	return m.Called(ctx, tx, note).Error(0)
}

func (m *MockNoteRepository) SaveAllocations(ctx context.Context, tx pgx.Tx, allocations []domain.NoteAllocation) error {
	return m.Called(ctx, tx, allocations).Error(0)
}

func (m *MockNoteRepository) SaveStandingBalance(ctx context.Context, tx pgx.Tx, balance domain.StandingBalance) error {
	return m.Called(ctx, tx, balance).Error(0)
}

func (m *MockNoteRepository) FindOpenStandingBalanceForNote(ctx context.Context, tx pgx.Tx, noteID string) (*domain.StandingBalance, error) {
	args := m.Called(ctx, tx, noteID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.StandingBalance), args.Error(1)
}

func (m *MockNoteRepository) UpdateStandingBalance(ctx context.Context, tx pgx.Tx, balance domain.StandingBalance) error {
	return m.Called(ctx, tx, balance).Error(0)
}

// --- Mock ReconciliationRepository ---
type MockReconciliationRepository struct {
	mock.Mock
}

var _ portsrepo.ReconciliationRepositoryFacade = (*MockReconciliationRepository)(nil)

func (m *MockReconciliationRepository) SaveReconciliation(ctx context.Context, tx pgx.Tx, rec domain.Reconciliation) error {
	return m.Called(ctx, tx, rec).Error(0)
}

func (m *MockReconciliationRepository) FindReconciliation(ctx context.Context, tx pgx.Tx, accountID string, businessDate time.Time) (*domain.Reconciliation, error) {
	args := m.Called(ctx, tx, accountID, businessDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reconciliation), args.Error(1)
}

func (m *MockReconciliationRepository) FindReconciliationForUpdate(ctx context.Context, tx pgx.Tx, accountID string, businessDate time.Time) (*domain.Reconciliation, error) {
	args := m.Called(ctx, tx, accountID, businessDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reconciliation), args.Error(1)
}

func (m *MockReconciliationRepository) CloseReconciliation(ctx context.Context, tx pgx.Tx, rec domain.Reconciliation) error {
	return m.Called(ctx, tx, rec).Error(0)
}

func (m *MockReconciliationRepository) ListReconciliationsForDay(ctx context.Context, tx pgx.Tx, businessDate time.Time) (map[string]domain.Reconciliation, error) {
	args := m.Called(ctx, tx, businessDate)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]domain.Reconciliation), args.Error(1)
}

// --- Mock ReportingRepository ---
type MockReportingRepository struct {
	mock.Mock
}

var _ portsrepo.ReportingRepository = (*MockReportingRepository)(nil)

func (m *MockReportingRepository) FlowsBetween(ctx context.Context, tx pgx.Tx, accountIDs []string, includeUnattributed bool, from time.Time, to *time.Time) ([]domain.FlowEntry, error) {
	args := m.Called(ctx, tx, accountIDs, includeUnattributed, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.FlowEntry), args.Error(1)
}

func (m *MockReportingRepository) BalanceSheetFigures(ctx context.Context, tx pgx.Tx) (domain.BalanceSheetFigures, error) {
	args := m.Called(ctx, tx)
	return args.Get(0).(domain.BalanceSheetFigures), args.Error(1)
}

// mockRepos bundles the mocks into a provider.
type mockRepos struct {
	accounts        *MockAccountRepository
	movements       *MockMovementRepository
	transfers       *MockTransferRepository
	sales           *MockSaleRepository
	purchases       *MockPurchaseRepository
	inventory       *MockInventoryRepository
	notes           *MockNoteRepository
	reconciliations *MockReconciliationRepository
	reporting       *MockReportingRepository
}

func newMockRepos() *mockRepos {
	return &mockRepos{
		accounts:        new(MockAccountRepository),
		movements:       new(MockMovementRepository),
		transfers:       new(MockTransferRepository),
		sales:           new(MockSaleRepository),
		purchases:       new(MockPurchaseRepository),
		inventory:       new(MockInventoryRepository),
		notes:           new(MockNoteRepository),
		reconciliations: new(MockReconciliationRepository),
		reporting:       new(MockReportingRepository),
	}
}

func (r *mockRepos) provider() portsrepo.RepositoryProvider {
	return portsrepo.RepositoryProvider{
		TxManager:          &MockTxManager{},
		AccountRepo:        r.accounts,
		MovementRepo:       r.movements,
		TransferRepo:       r.transfers,
		SaleRepo:           r.sales,
		PurchaseRepo:       r.purchases,
		InventoryRepo:      r.inventory,
		NoteRepo:           r.notes,
		ReconciliationRepo: r.reconciliations,
		ReportingRepo:      r.reporting,
	}
}

func (r *mockRepos) assertExpectations(t mock.TestingT) {
	mock.AssertExpectationsForObjects(t, r.accounts, r.movements, r.transfers, r.sales, r.purchases,
		r.inventory, r.notes, r.reconciliations, r.reporting)
}
