package pgsql

import (
	"context"
	"fmt"
	"time"

	"github.com/SscSPs/shop_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/shop_ledger/internal/core/ports/repositories"
	"github.com/SscSPs/shop_ledger/internal/models"
	"github.com/SscSPs/shop_ledger/internal/utils/mapping"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// reportingRepository implements the ReportingRepository interface
type reportingRepository struct {
	BaseRepository
}

// newReportingRepository creates a new reporting repository
func newReportingRepository(db *pgxpool.Pool) *reportingRepository {
	return &reportingRepository{
		BaseRepository: BaseRepository{Pool: db},
	}
}

var _ portsrepo.ReportingRepository = (*reportingRepository)(nil)

// FlowsBetween replays the movements and transfer legs of the account set, voided and reversed
// ones included, so that every correction lands on the date it was made.
func (r *reportingRepository) FlowsBetween(ctx context.Context, tx pgx.Tx, accountIDs []string, includeUnattributed bool, from time.Time, to *time.Time) ([]domain.FlowEntry, error) {
	if accountIDs == nil {
		accountIDs = []string{}
	}

	movementQuery := `
		SELECT ` + movementColumns + `
		FROM movements
		WHERE (account_id = ANY($1) OR ($3 AND account_id IS NULL))
			AND (occurred_at >= $2
				OR voided_at >= $2
				OR EXISTS (
					SELECT 1 FROM movement_amount_edits e
					WHERE e.movement_id = movements.movement_id AND e.edited_at >= $2
				))
		ORDER BY occurred_at, movement_id
	`
	rows, err := r.db(tx).Query(ctx, movementQuery, accountIDs, from, includeUnattributed)
	if err != nil {
		return nil, fmt.Errorf("error querying movement flows: %w", err)
	}
	movements, err := collectMovements(rows)
	if err != nil {
		return nil, err
	}
	edits, err := r.amountEdits(ctx, tx, movements)
	if err != nil {
		return nil, err
	}

	entries := make([]domain.FlowEntry, 0, len(movements))
	for _, m := range movements {
		entries = append(entries, domain.MovementFlowEntries(m, edits[m.MovementID])...)
	}

	transferQuery := `
		SELECT ` + transferColumns + `
		FROM transfers
		WHERE status IN ('COMPLETED', 'REVERSED')
			AND (from_account_id = ANY($1) OR to_account_id = ANY($1))
			AND (transfer_date >= $2 OR reversed_at >= $2)
		ORDER BY transfer_date, transfer_id
	`
	rows, err = r.db(tx).Query(ctx, transferQuery, accountIDs, from)
	if err != nil {
		return nil, fmt.Errorf("error querying transfer flows: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		m, err := scanTransfer(rows)
		if err != nil {
			return nil, fmt.Errorf("error scanning transfer flow: %w", err)
		}
		entries = append(entries, domain.TransferFlowEntries(mapping.ToDomainTransfer(m))...)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating transfer flows: %w", err)
	}
	return domain.FlowsWithin(entries, from, to), nil
}

// amountEdits loads the edit history of the given movements keyed by movement ID.
func (r *reportingRepository) amountEdits(ctx context.Context, tx pgx.Tx, movements []domain.Movement) (map[string][]domain.MovementAmountEdit, error) {
	edits := make(map[string][]domain.MovementAmountEdit)
	if len(movements) == 0 {
		return edits, nil
	}
	ids := make([]string, 0, len(movements))
	for _, m := range movements {
		ids = append(ids, m.MovementID)
	}
	rows, err := r.db(tx).Query(ctx, `
		SELECT edit_id, movement_id, old_amount, new_amount, edited_at, edited_by
		FROM movement_amount_edits
		WHERE movement_id = ANY($1)
		ORDER BY edited_at, edit_id
	`, ids)
	if err != nil {
		return nil, fmt.Errorf("error querying amount edits: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var m models.MovementAmountEdit
		if err := rows.Scan(&m.EditID, &m.MovementID, &m.OldAmount, &m.NewAmount, &m.EditedAt, &m.EditedBy); err != nil {
			return nil, fmt.Errorf("error scanning amount edit: %w", err)
		}
		edits[m.MovementID] = append(edits[m.MovementID], mapping.ToDomainMovementAmountEdit(m))
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating amount edits: %w", err)
	}
	return edits, nil
}

// BalanceSheetFigures aggregates every balance sheet figure at the transaction snapshot.
func (r *reportingRepository) BalanceSheetFigures(ctx context.Context, tx pgx.Tx) (domain.BalanceSheetFigures, error) {
	var f domain.BalanceSheetFigures

	// Deleted accounts still count while they hold money.
	rows, err := r.db(tx).Query(ctx, `SELECT `+accountColumns+` FROM accounts WHERE deleted_at IS NULL OR balance <> 0 ORDER BY account_id`)
	if err != nil {
		return f, fmt.Errorf("error querying account balances: %w", err)
	}
	accounts, err := collectAccounts(rows)
	if err != nil {
		return f, err
	}
	f.Accounts = mapping.ToDomainAccountSlice(accounts)

	query := `
		SELECT
			(SELECT COALESCE(SUM(CASE WHEN kind IN ('SALE_PAYMENT', 'PURCHASE_REFUND', 'CAPITAL_CONTRIBUTION') THEN amount ELSE -amount END), 0)
				FROM movements WHERE account_id IS NULL AND voided_at IS NULL),
			(SELECT COALESCE(SUM(outstanding_amount), 0) FROM sales WHERE NOT is_refunded AND deleted_at IS NULL),
			(SELECT COALESCE(SUM(amount), 0) FROM standing_balances WHERE status = 'OPEN' AND side = 'CREDIT'),
			(SELECT COALESCE(SUM(outstanding_amount), 0) FROM purchases WHERE deleted_at IS NULL),
			(SELECT COALESCE(SUM(amount), 0) FROM standing_balances WHERE status = 'OPEN' AND side = 'DEBIT'),
			(SELECT COALESCE(SUM(total_value), 0) FROM inventory_items),
			(SELECT COALESCE(SUM(cost), 0) FROM fixed_assets WHERE disposed_at IS NULL),
			(SELECT COALESCE(SUM(accumulated_depreciation), 0) FROM fixed_assets WHERE disposed_at IS NULL),
			(SELECT COALESCE(SUM(tax_amount), 0) FROM sales WHERE NOT is_refunded AND deleted_at IS NULL),
			(SELECT COALESCE(SUM(amount), 0) FROM movements WHERE kind = 'TAX_PAYMENT' AND voided_at IS NULL),
			(SELECT COALESCE(SUM(amount), 0) FROM movements WHERE kind = 'CAPITAL_CONTRIBUTION' AND voided_at IS NULL),
			(SELECT COALESCE(SUM(amount), 0) FROM movements WHERE kind = 'CAPITAL_WITHDRAWAL' AND voided_at IS NULL),
			(SELECT COALESCE(SUM(amount), 0) FROM movements WHERE kind = 'EXPENDITURE' AND voided_at IS NULL),
			(SELECT COALESCE(SUM(profit), 0) FROM sales WHERE is_paid AND NOT is_refunded AND deleted_at IS NULL),
			(SELECT COALESCE(SUM(profit), 0) FROM sales WHERE NOT is_paid AND NOT is_refunded AND deleted_at IS NULL),
			(SELECT COALESCE(SUM(profit_amount), 0) FROM notes WHERE side = 'DEBIT' AND applied_at IS NOT NULL AND deleted_at IS NULL),
			(SELECT COALESCE(SUM(loss_amount), 0) FROM notes WHERE side = 'CREDIT' AND applied_at IS NOT NULL AND deleted_at IS NULL)
	`
	err = r.db(tx).QueryRow(ctx, query).Scan(
		&f.UnattributedCash,
		&f.SaleOutstanding,
		&f.CustomerCredits,
		&f.PurchaseOutstanding,
		&f.SupplierDebits,
		&f.InventoryValue,
		&f.FixedAssetCost,
		&f.FixedAssetDepreciation,
		&f.SaleTax,
		&f.TaxPaid,
		&f.Contributions,
		&f.Withdrawals,
		&f.Expenditures,
		&f.RealizedProfit,
		&f.InProgressProfit,
		&f.DebitNoteProfit,
		&f.CreditNoteLoss,
	)
	if err != nil {
		return f, fmt.Errorf("error querying balance sheet figures: %w", err)
	}
	return f, nil
}
