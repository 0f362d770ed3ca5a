package pgsql

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/SscSPs/shop_ledger/internal/apperrors"
	"github.com/SscSPs/shop_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/shop_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const purchaseColumns = `purchase_id, supplier_id, document_date, total_amount, paid_amount, note_adjustment,
	outstanding_amount, is_paid, is_complete, deleted_at, created_at, created_by, last_updated_at, last_updated_by`

const purchaseItemColumns = `purchase_item_id, purchase_id, product_id, quantity, unit_cost, returned_quantity`

// PgxPurchaseRepository persists the ledger side of purchases.
type PgxPurchaseRepository struct {
	BaseRepository
}

func newPgxPurchaseRepository(pool *pgxpool.Pool) *PgxPurchaseRepository {
	return &PgxPurchaseRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.PurchaseRepositoryFacade = (*PgxPurchaseRepository)(nil)

func scanPurchase(row pgx.Row) (domain.Purchase, error) {
	var p domain.Purchase
	err := row.Scan(
		&p.PurchaseID,
		&p.SupplierID,
		&p.DocumentDate,
		&p.TotalAmount,
		&p.PaidAmount,
		&p.NoteAdjustment,
		&p.OutstandingAmount,
		&p.IsPaid,
		&p.IsComplete,
		&p.DeletedAt,
		&p.CreatedAt,
		&p.CreatedBy,
		&p.LastUpdatedAt,
		&p.LastUpdatedBy,
	)
	p.DocumentDate = p.DocumentDate.UTC()
	return p, err
}

func scanPurchaseItem(row pgx.Row) (domain.PurchaseItem, error) {
	var it domain.PurchaseItem
	err := row.Scan(&it.PurchaseItemID, &it.PurchaseID, &it.ProductID, &it.Quantity, &it.UnitCost, &it.ReturnedQuantity)
	return it, err
}

// SavePurchase inserts the purchase header and its items in one batch.
func (r *PgxPurchaseRepository) SavePurchase(ctx context.Context, tx pgx.Tx, purchase domain.Purchase) error {
	batch := &pgx.Batch{}
	batch.Queue(`INSERT INTO purchases (`+purchaseColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)`,
		purchase.PurchaseID, purchase.SupplierID, purchase.DocumentDate, purchase.TotalAmount, purchase.PaidAmount,
		purchase.NoteAdjustment, purchase.OutstandingAmount, purchase.IsPaid, purchase.IsComplete, purchase.DeletedAt,
		purchase.CreatedAt, purchase.CreatedBy, purchase.LastUpdatedAt, purchase.LastUpdatedBy,
	)
	for _, it := range purchase.Items {
		batch.Queue(`INSERT INTO purchase_items (`+purchaseItemColumns+`) VALUES ($1, $2, $3, $4, $5, $6)`,
			it.PurchaseItemID, purchase.PurchaseID, it.ProductID, it.Quantity, it.UnitCost, it.ReturnedQuantity,
		)
	}
	return execBatch(ctx, r.db(tx), batch, "purchase "+purchase.PurchaseID)
}

func (r *PgxPurchaseRepository) loadItems(ctx context.Context, tx pgx.Tx, purchases []domain.Purchase) error {
	if len(purchases) == 0 {
		return nil
	}
	ids := make([]string, len(purchases))
	index := make(map[string]int, len(purchases))
	for i, p := range purchases {
		ids[i] = p.PurchaseID
		index[p.PurchaseID] = i
		purchases[i].Items = []domain.PurchaseItem{}
	}
	rows, err := r.db(tx).Query(ctx, `SELECT `+purchaseItemColumns+` FROM purchase_items WHERE purchase_id = ANY($1) ORDER BY purchase_id, purchase_item_id`, ids)
	if err != nil {
		return fmt.Errorf("failed to load purchase items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		it, err := scanPurchaseItem(rows)
		if err != nil {
			return fmt.Errorf("failed to scan purchase item row: %w", err)
		}
		i := index[it.PurchaseID]
		purchases[i].Items = append(purchases[i].Items, it)
	}
	return rows.Err()
}

func (r *PgxPurchaseRepository) findPurchase(ctx context.Context, tx pgx.Tx, purchaseID string, lock bool) (*domain.Purchase, error) {
	query := `SELECT ` + purchaseColumns + ` FROM purchases WHERE purchase_id = $1 AND deleted_at IS NULL`
	if lock {
		query += ` FOR UPDATE`
	}
	purchase, err := scanPurchase(r.db(tx).QueryRow(ctx, query, purchaseID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("purchase", purchaseID)
		}
		return nil, fmt.Errorf("failed to find purchase %s: %w", purchaseID, err)
	}
	purchases := []domain.Purchase{purchase}
	if err := r.loadItems(ctx, tx, purchases); err != nil {
		return nil, err
	}
	return &purchases[0], nil
}

// FindPurchaseByID retrieves a live purchase with its items.
func (r *PgxPurchaseRepository) FindPurchaseByID(ctx context.Context, tx pgx.Tx, purchaseID string) (*domain.Purchase, error) {
	return r.findPurchase(ctx, tx, purchaseID, false)
}

// FindPurchaseForUpdate locks the purchase row and loads its items.
func (r *PgxPurchaseRepository) FindPurchaseForUpdate(ctx context.Context, tx pgx.Tx, purchaseID string) (*domain.Purchase, error) {
	return r.findPurchase(ctx, tx, purchaseID, true)
}

// LockPurchasesForSupplier locks the supplier's open purchases and the listed ones in ascending ID order.
func (r *PgxPurchaseRepository) LockPurchasesForSupplier(ctx context.Context, tx pgx.Tx, supplierID string, purchaseIDs []string) ([]domain.Purchase, error) {
	query := `
		SELECT ` + purchaseColumns + `
		FROM purchases
		WHERE deleted_at IS NULL
			AND ((supplier_id = $1 AND outstanding_amount > 0) OR purchase_id = ANY($2))
		ORDER BY purchase_id
		FOR UPDATE;
	`
	if purchaseIDs == nil {
		purchaseIDs = []string{}
	}
	rows, err := r.db(tx).Query(ctx, query, supplierID, purchaseIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to lock purchases for supplier %s: %w", supplierID, err)
	}
	purchases := []domain.Purchase{}
	for rows.Next() {
		p, err := scanPurchase(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan purchase row: %w", err)
		}
		purchases = append(purchases, p)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating purchase rows: %w", err)
	}
	if err := r.loadItems(ctx, tx, purchases); err != nil {
		return nil, err
	}
	return purchases, nil
}

// UpdatePurchaseLedger persists the derived ledger fields of a purchase.
func (r *PgxPurchaseRepository) UpdatePurchaseLedger(ctx context.Context, tx pgx.Tx, purchase domain.Purchase, userID string, now time.Time) error {
	query := `
		UPDATE purchases
		SET paid_amount = $2, note_adjustment = $3, outstanding_amount = $4, is_paid = $5,
			last_updated_at = $6, last_updated_by = $7
		WHERE purchase_id = $1;
	`
	cmdTag, err := r.db(tx).Exec(ctx, query,
		purchase.PurchaseID, purchase.PaidAmount, purchase.NoteAdjustment, purchase.OutstandingAmount, purchase.IsPaid, now, userID,
	)
	if err != nil {
		return mapWriteError(err, "purchase %s", purchase.PurchaseID)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("purchase", purchase.PurchaseID)
	}
	return nil
}

// FindPurchaseItemsByIDs loads purchase lines keyed by item ID.
func (r *PgxPurchaseRepository) FindPurchaseItemsByIDs(ctx context.Context, tx pgx.Tx, itemIDs []string) (map[string]domain.PurchaseItem, error) {
	items := make(map[string]domain.PurchaseItem, len(itemIDs))
	if len(itemIDs) == 0 {
		return items, nil
	}
	rows, err := r.db(tx).Query(ctx, `SELECT `+purchaseItemColumns+` FROM purchase_items WHERE purchase_item_id = ANY($1) ORDER BY purchase_item_id`, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to find purchase items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		it, err := scanPurchaseItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan purchase item row: %w", err)
		}
		items[it.PurchaseItemID] = it
	}
	return items, rows.Err()
}

// UpdatePurchaseItemReturns persists the returned quantity of each line.
func (r *PgxPurchaseRepository) UpdatePurchaseItemReturns(ctx context.Context, tx pgx.Tx, items []domain.PurchaseItem) error {
	batch := &pgx.Batch{}
	for _, it := range items {
		batch.Queue(`UPDATE purchase_items SET returned_quantity = $2 WHERE purchase_item_id = $1`, it.PurchaseItemID, it.ReturnedQuantity)
	}
	return execBatch(ctx, r.db(tx), batch, "purchase item returns")
}
