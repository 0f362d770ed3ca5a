package pgsql

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/SscSPs/shop_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/shop_ledger/internal/core/ports/repositories"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// PgxInventoryRepository keeps per product stock positions.
type PgxInventoryRepository struct {
	BaseRepository
}

func newPgxInventoryRepository(pool *pgxpool.Pool) *PgxInventoryRepository {
	return &PgxInventoryRepository{BaseRepository: BaseRepository{Pool: pool}}
}

var _ portsrepo.InventoryRepositoryFacade = (*PgxInventoryRepository)(nil)

// FindInventoryItems locks and returns the stock positions of the products.
// Products without a row are absent from the map.
func (r *PgxInventoryRepository) FindInventoryItems(ctx context.Context, tx pgx.Tx, productIDs []string) (map[string]domain.InventoryItem, error) {
	items := make(map[string]domain.InventoryItem, len(productIDs))
	if len(productIDs) == 0 {
		return items, nil
	}
	query := `
		SELECT product_id, on_hand_quantity, total_value, last_updated_at
		FROM inventory_items
		WHERE product_id = ANY($1)
		ORDER BY product_id
		FOR UPDATE;
	`
	rows, err := r.db(tx).Query(ctx, query, productIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to find inventory items: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var it domain.InventoryItem
		if err := rows.Scan(&it.ProductID, &it.OnHandQuantity, &it.TotalValue, &it.LastUpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan inventory row: %w", err)
		}
		items[it.ProductID] = it
	}
	return items, rows.Err()
}

// ApplyStockChanges merges changes per product and upserts them in product order.
func (r *PgxInventoryRepository) ApplyStockChanges(ctx context.Context, tx pgx.Tx, changes []domain.StockChange, now time.Time) error {
	merged := map[string]domain.StockChange{}
	for _, c := range changes {
		m := merged[c.ProductID]
		m.ProductID = c.ProductID
		m.QuantityDelta = m.QuantityDelta.Add(c.QuantityDelta)
		m.ValueDelta = m.ValueDelta.Add(c.ValueDelta)
		merged[c.ProductID] = m
	}
	productIDs := make([]string, 0, len(merged))
	for id, c := range merged {
		if c.QuantityDelta.Equal(decimal.Zero) && c.ValueDelta.Equal(decimal.Zero) {
			continue
		}
		productIDs = append(productIDs, id)
	}
	sort.Strings(productIDs)

	batch := &pgx.Batch{}
	for _, id := range productIDs {
		c := merged[id]
		batch.Queue(`
			INSERT INTO inventory_items (product_id, on_hand_quantity, total_value, last_updated_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (product_id) DO UPDATE
			SET on_hand_quantity = inventory_items.on_hand_quantity + EXCLUDED.on_hand_quantity,
				total_value = inventory_items.total_value + EXCLUDED.total_value,
				last_updated_at = EXCLUDED.last_updated_at`,
			id, c.QuantityDelta, c.ValueDelta, now,
		)
	}
	return execBatch(ctx, r.db(tx), batch, "stock changes")
}
