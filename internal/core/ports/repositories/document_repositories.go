package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/shop_ledger/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// SaleRepositoryFacade persists the ledger fields of sales.
type SaleRepositoryFacade interface {
	SaveSale(ctx context.Context, tx pgx.Tx, sale domain.Sale) error
	FindSaleByID(ctx context.Context, tx pgx.Tx, saleID string) (*domain.Sale, error)

	// FindSaleForUpdate locks the sale row and loads its items.
	FindSaleForUpdate(ctx context.Context, tx pgx.Tx, saleID string) (*domain.Sale, error)

	// LockSalesForCustomer locks, in ascending ID order, every non-refunded sale of the customer
	// with outstanding > 0 together with the listed live sales, and loads their items.
	LockSalesForCustomer(ctx context.Context, tx pgx.Tx, customerID string, saleIDs []string) ([]domain.Sale, error)

	// UpdateSaleLedger persists paid, adjustment, outstanding, flags and profit.
	UpdateSaleLedger(ctx context.Context, tx pgx.Tx, sale domain.Sale, userID string, now time.Time) error

	// FindSaleItemsByIDs reads sale lines keyed by item ID without locking them.
	FindSaleItemsByIDs(ctx context.Context, tx pgx.Tx, itemIDs []string) (map[string]domain.SaleItem, error)

	UpdateSaleItemReturns(ctx context.Context, tx pgx.Tx, items []domain.SaleItem) error
}

// PurchaseRepositoryFacade persists the ledger fields of purchases.
type PurchaseRepositoryFacade interface {
	SavePurchase(ctx context.Context, tx pgx.Tx, purchase domain.Purchase) error
	FindPurchaseByID(ctx context.Context, tx pgx.Tx, purchaseID string) (*domain.Purchase, error)
	FindPurchaseForUpdate(ctx context.Context, tx pgx.Tx, purchaseID string) (*domain.Purchase, error)
	LockPurchasesForSupplier(ctx context.Context, tx pgx.Tx, supplierID string, purchaseIDs []string) ([]domain.Purchase, error)
	UpdatePurchaseLedger(ctx context.Context, tx pgx.Tx, purchase domain.Purchase, userID string, now time.Time) error
	FindPurchaseItemsByIDs(ctx context.Context, tx pgx.Tx, itemIDs []string) (map[string]domain.PurchaseItem, error)
	UpdatePurchaseItemReturns(ctx context.Context, tx pgx.Tx, items []domain.PurchaseItem) error
}

// InventoryRepositoryFacade keeps stock positions valued at cost.
type InventoryRepositoryFacade interface {
	FindInventoryItems(ctx context.Context, tx pgx.Tx, productIDs []string) (map[string]domain.InventoryItem, error)

	// ApplyStockChanges upserts quantity and value deltas per product.
	ApplyStockChanges(ctx context.Context, tx pgx.Tx, changes []domain.StockChange, now time.Time) error
}
