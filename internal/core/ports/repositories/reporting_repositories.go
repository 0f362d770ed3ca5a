package repositories

import (
	"context"
	"time"

	"github.com/SscSPs/shop_ledger/internal/core/domain"
	"github.com/jackc/pgx/v5"
)

// ReportingRepository provides the read primitives of the statement composers.
type ReportingRepository interface {
	// FlowsBetween replays the flows of the account set dated in [from, to), including the dated
	// corrections left by amount edits, voids and transfer reversals. A nil to means no upper
	// bound. Unattributed movements are included when includeUnattributed is set.
	FlowsBetween(ctx context.Context, tx pgx.Tx, accountIDs []string, includeUnattributed bool, from time.Time, to *time.Time) ([]domain.FlowEntry, error)

	// BalanceSheetFigures aggregates every figure of the balance sheet.
	BalanceSheetFigures(ctx context.Context, tx pgx.Tx) (domain.BalanceSheetFigures, error)
}
