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

const saleColumns = `sale_id, customer_id, document_date, total_amount, tax_amount, paid_amount, note_adjustment,
	outstanding_amount, is_paid, is_complete, is_refunded, profit, deleted_at,
	created_at, created_by, last_updated_at, last_updated_by`

const saleItemColumns = `sale_item_id, sale_id, product_id, quantity, unit_price, unit_cost, returned_quantity`

// PgxSaleRepository persists the ledger side of sales.
type PgxSaleRepository struct {
	BaseRepository
}

func newPgxSaleRepository(pool *pgxpool.Pool) *PgxSaleRepository {
	return &PgxSaleRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.SaleRepositoryFacade = (*PgxSaleRepository)(nil)

func scanSale(row pgx.Row) (domain.Sale, error) {
	var s domain.Sale
	err := row.Scan(
		&s.SaleID,
		&s.CustomerID,
		&s.DocumentDate,
		&s.TotalAmount,
		&s.TaxAmount,
		&s.PaidAmount,
		&s.NoteAdjustment,
		&s.OutstandingAmount,
		&s.IsPaid,
		&s.IsComplete,
		&s.IsRefunded,
		&s.Profit,
		&s.DeletedAt,
		&s.CreatedAt,
		&s.CreatedBy,
		&s.LastUpdatedAt,
		&s.LastUpdatedBy,
	)
	s.DocumentDate = s.DocumentDate.UTC()
	return s, err
}

func scanSaleItem(row pgx.Row) (domain.SaleItem, error) {
	var it domain.SaleItem
	err := row.Scan(&it.SaleItemID, &it.SaleID, &it.ProductID, &it.Quantity, &it.UnitPrice, &it.UnitCost, &it.ReturnedQuantity)
	return it, err
}

// SaveSale inserts the sale header and its items in one batch.
func (r *PgxSaleRepository) SaveSale(ctx context.Context, tx pgx.Tx, sale domain.Sale) error {
	batch := &pgx.Batch{}
	batch.Queue(`INSERT INTO sales (`+saleColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)`,
		sale.SaleID, sale.CustomerID, sale.DocumentDate, sale.TotalAmount, sale.TaxAmount, sale.PaidAmount, sale.NoteAdjustment,
		sale.OutstandingAmount, sale.IsPaid, sale.IsComplete, sale.IsRefunded, sale.Profit, sale.DeletedAt,
		sale.CreatedAt, sale.CreatedBy, sale.LastUpdatedAt, sale.LastUpdatedBy,
	)
	for _, it := range sale.Items {
		batch.Queue(`INSERT INTO sale_items (`+saleItemColumns+`) VALUES ($1, $2, $3, $4, $5, $6, $7)`,
			it.SaleItemID, sale.SaleID, it.ProductID, it.Quantity, it.UnitPrice, it.UnitCost, it.ReturnedQuantity,
		)
	}
	return execBatch(ctx, r.db(tx), batch, "sale "+sale.SaleID)
}

func (r *PgxSaleRepository) loadItems(ctx context.Context, tx pgx.Tx, sales []domain.Sale) error {
	if len(sales) == 0 {
		return nil
	}
	ids := make([]string, len(sales))
	index := make(map[string]int, len(sales))
	for i, s := range sales {
		ids[i] = s.SaleID
		index[s.SaleID] = i
		sales[i].Items = []domain.SaleItem{}
	}
	rows, err := r.db(tx).Query(ctx, `SELECT `+saleItemColumns+` FROM sale_items WHERE sale_id = ANY($1) ORDER BY sale_id, sale_item_id`, ids)
	if err != nil {
		return fmt.Errorf("failed to load sale items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		it, err := scanSaleItem(rows)
		if err != nil {
			return fmt.Errorf("failed to scan sale item row: %w", err)
		}
		i := index[it.SaleID]
		sales[i].Items = append(sales[i].Items, it)
	}
	return rows.Err()
}

func (r *PgxSaleRepository) findSale(ctx context.Context, tx pgx.Tx, saleID string, lock bool) (*domain.Sale, error) {
	query := `SELECT ` + saleColumns + ` FROM sales WHERE sale_id = $1 AND deleted_at IS NULL`
	if lock {
		query += ` FOR UPDATE`
	}
	sale, err := scanSale(r.db(tx).QueryRow(ctx, query, saleID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFoundError("sale", saleID)
		}
		return nil, fmt.Errorf("failed to find sale %s: %w", saleID, err)
	}
	sales := []domain.Sale{sale}
	if err := r.loadItems(ctx, tx, sales); err != nil {
		return nil, err
	}
	return &sales[0], nil
}

// FindSaleByID retrieves a live sale with its items.
func (r *PgxSaleRepository) FindSaleByID(ctx context.Context, tx pgx.Tx, saleID string) (*domain.Sale, error) {
	return r.findSale(ctx, tx, saleID, false)
}

// FindSaleForUpdate locks the sale row and loads its items.
func (r *PgxSaleRepository) FindSaleForUpdate(ctx context.Context, tx pgx.Tx, saleID string) (*domain.Sale, error) {
	return r.findSale(ctx, tx, saleID, true)
}

// LockSalesForCustomer locks the customer's open sales and the listed ones in ascending ID order.
func (r *PgxSaleRepository) LockSalesForCustomer(ctx context.Context, tx pgx.Tx, customerID string, saleIDs []string) ([]domain.Sale, error) {
	query := `
		SELECT ` + saleColumns + `
		FROM sales
		WHERE deleted_at IS NULL
			AND ((customer_id = $1 AND outstanding_amount > 0 AND NOT is_refunded) OR sale_id = ANY($2))
		ORDER BY sale_id
		FOR UPDATE;
	`
	if saleIDs == nil {
		saleIDs = []string{}
	}
	rows, err := r.db(tx).Query(ctx, query, customerID, saleIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to lock sales for customer %s: %w", customerID, err)
	}
	sales := []domain.Sale{}
	for rows.Next() {
		s, err := scanSale(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan sale row: %w", err)
		}
		sales = append(sales, s)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating sale rows: %w", err)
	}
	if err := r.loadItems(ctx, tx, sales); err != nil {
		return nil, err
	}
	return sales, nil
}

// UpdateSaleLedger persists the derived ledger fields of a sale.
func (r *PgxSaleRepository) UpdateSaleLedger(ctx context.Context, tx pgx.Tx, sale domain.Sale, userID string, now time.Time) error {
	query := `
		UPDATE sales
		SET paid_amount = $2, note_adjustment = $3, outstanding_amount = $4, is_paid = $5,
			is_refunded = $6, profit = $7, last_updated_at = $8, last_updated_by = $9
		WHERE sale_id = $1;
	`
	cmdTag, err := r.db(tx).Exec(ctx, query,
		sale.SaleID, sale.PaidAmount, sale.NoteAdjustment, sale.OutstandingAmount, sale.IsPaid,
		sale.IsRefunded, sale.Profit, now, userID,
	)
	if err != nil {
		return mapWriteError(err, "sale %s", sale.SaleID)
	}
	if cmdTag.RowsAffected() == 0 {
		return apperrors.NewNotFoundError("sale", sale.SaleID)
	}
	return nil
}

// FindSaleItemsByIDs loads sale lines keyed by item ID.
func (r *PgxSaleRepository) FindSaleItemsByIDs(ctx context.Context, tx pgx.Tx, itemIDs []string) (map[string]domain.SaleItem, error) {
	items := make(map[string]domain.SaleItem, len(itemIDs))
	if len(itemIDs) == 0 {
		return items, nil
	}
	rows, err := r.db(tx).Query(ctx, `SELECT `+saleItemColumns+` FROM sale_items WHERE sale_item_id = ANY($1) ORDER BY sale_item_id`, itemIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to find sale items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		it, err := scanSaleItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sale item row: %w", err)
		}
		items[it.SaleItemID] = it
	}
	return items, rows.Err()
}

// UpdateSaleItemReturns persists the returned quantity of each line.
func (r *PgxSaleRepository) UpdateSaleItemReturns(ctx context.Context, tx pgx.Tx, items []domain.SaleItem) error {
	batch := &pgx.Batch{}
	for _, it := range items {
		batch.Queue(`UPDATE sale_items SET returned_quantity = $2 WHERE sale_item_id = $1`, it.SaleItemID, it.ReturnedQuantity)
	}
	return execBatch(ctx, r.db(tx), batch, "sale item returns")
}
