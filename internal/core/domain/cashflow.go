package domain

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"
)

// FlowCategory groups flows in a cash-flow breakdown.
type FlowCategory string

const (
	FlowSalePayments         FlowCategory = "SALE_PAYMENTS"
	FlowSaleRefunds          FlowCategory = "SALE_REFUNDS"
	FlowPurchasePayments     FlowCategory = "PURCHASE_PAYMENTS"
	FlowPurchaseRefunds      FlowCategory = "PURCHASE_REFUNDS"
	FlowCapitalContributions FlowCategory = "CAPITAL_CONTRIBUTIONS"
	FlowCapitalWithdrawals   FlowCategory = "CAPITAL_WITHDRAWALS"
	FlowExpenditures         FlowCategory = "EXPENDITURES"
	FlowTaxPayments          FlowCategory = "TAX_PAYMENTS"
	FlowTransfersIn          FlowCategory = "TRANSFERS_IN"
	FlowTransfersOut         FlowCategory = "TRANSFERS_OUT"
)

// CategoryForKind maps a movement kind to its breakdown category.
func CategoryForKind(k MovementKind) FlowCategory {
	switch k {
	case SalePayment:
		return FlowSalePayments
	case SaleRefund:
		return FlowSaleRefunds
	case PurchasePayment:
		return FlowPurchasePayments
	case PurchaseRefund:
		return FlowPurchaseRefunds
	case CapitalContribution:
		return FlowCapitalContributions
	case CapitalWithdrawal:
		return FlowCapitalWithdrawals
	case TaxPayment:
		return FlowTaxPayments
	default:
		return FlowExpenditures
	}
}

// FlowEntry is one replayable cash flow: a movement, one leg of a transfer, or a later correction of
// either. A correction is dated when it was made and carries a negative amount when it reduces the flow.
type FlowEntry struct {
	SourceID              string          `json:"sourceID"`
	AccountID             *string         `json:"accountID,omitempty"`
	CounterpartyAccountID *string         `json:"counterpartyAccountID,omitempty"`
	Category              FlowCategory    `json:"category"`
	Direction             Direction       `json:"direction"`
	Amount                decimal.Decimal `json:"amount"`
	OccurredAt            time.Time       `json:"occurredAt"`
	Correction            bool            `json:"correction,omitempty"`
}

// Signed returns the amount with inflows positive and outflows negative.
func (e FlowEntry) Signed() decimal.Decimal {
	if e.Direction == Outflow {
		return e.Amount.Neg()
	}
	return e.Amount
}

// IsTransfer reports whether the entry is a transfer leg.
func (e FlowEntry) IsTransfer() bool {
	return e.CounterpartyAccountID != nil
}

// MovementFlowEntry converts a movement into a flow entry at its current amount.
func MovementFlowEntry(m Movement) FlowEntry {
	return FlowEntry{
		SourceID:   m.MovementID,
		AccountID:  m.AccountID,
		Category:   CategoryForKind(m.Kind),
		Direction:  m.Kind.Direction(),
		Amount:     m.Amount,
		OccurredAt: m.OccurredAt,
	}
}

// correctionAt never dates a correction before the flow it corrects.
func correctionAt(occurredAt, at time.Time) time.Time {
	if at.Before(occurredAt) {
		return occurredAt
	}
	return at
}

// MovementFlowEntries replays a movement as it happened: the amount first recorded at OccurredAt,
// then every amount edit at its edit time and the void at its void time.
func MovementFlowEntries(m Movement, edits []MovementAmountEdit) []FlowEntry {
	sorted := make([]MovementAmountEdit, len(edits))
	copy(sorted, edits)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].EditedAt.Equal(sorted[j].EditedAt) {
			return sorted[i].EditID < sorted[j].EditID
		}
		return sorted[i].EditedAt.Before(sorted[j].EditedAt)
	})

	first := MovementFlowEntry(m)
	if len(sorted) > 0 {
		first.Amount = sorted[0].OldAmount
	}
	entries := []FlowEntry{first}
	for _, e := range sorted {
		if e.Delta().IsZero() {
			continue
		}
		c := MovementFlowEntry(m)
		c.Amount = e.Delta()
		c.OccurredAt = correctionAt(m.OccurredAt, e.EditedAt)
		c.Correction = true
		entries = append(entries, c)
	}
	if m.VoidedAt != nil {
		c := MovementFlowEntry(m)
		c.Amount = m.Amount.Neg()
		c.OccurredAt = correctionAt(m.OccurredAt, *m.VoidedAt)
		c.Correction = true
		entries = append(entries, c)
	}
	return entries
}

// TransferFlowEntries converts a transfer into its two legs, plus two inverse legs dated at the
// reversal when it was reversed. Pending transfers have no flows.
func TransferFlowEntries(t Transfer) []FlowEntry {
	if t.Status == TransferPending {
		return nil
	}
	from, to := t.FromAccountID, t.ToAccountID
	entries := []FlowEntry{
		{SourceID: t.TransferID, AccountID: &from, CounterpartyAccountID: &to, Category: FlowTransfersOut, Direction: Outflow, Amount: t.Amount, OccurredAt: t.TransferDate},
		{SourceID: t.TransferID, AccountID: &to, CounterpartyAccountID: &from, Category: FlowTransfersIn, Direction: Inflow, Amount: t.Amount, OccurredAt: t.TransferDate},
	}
	if t.Status == TransferReversed && t.ReversedAt != nil {
		at := correctionAt(t.TransferDate, *t.ReversedAt)
		undo := t.Amount.Neg()
		entries = append(entries,
			FlowEntry{SourceID: t.TransferID, AccountID: &from, CounterpartyAccountID: &to, Category: FlowTransfersOut, Direction: Outflow, Amount: undo, OccurredAt: at, Correction: true},
			FlowEntry{SourceID: t.TransferID, AccountID: &to, CounterpartyAccountID: &from, Category: FlowTransfersIn, Direction: Inflow, Amount: undo, OccurredAt: at, Correction: true},
		)
	}
	return entries
}

// FlowsWithin keeps the entries dated at or after from and, when to is set, before to.
func FlowsWithin(entries []FlowEntry, from time.Time, to *time.Time) []FlowEntry {
	kept := make([]FlowEntry, 0, len(entries))
	for _, e := range entries {
		if e.OccurredAt.Before(from) {
			continue
		}
		if to != nil && !e.OccurredAt.Before(*to) {
			continue
		}
		kept = append(kept, e)
	}
	return kept
}

// Breakdown sums flow amounts per category.
type Breakdown map[FlowCategory]decimal.Decimal

func (b Breakdown) add(c FlowCategory, amt decimal.Decimal) {
	b[c] = b[c].Add(amt)
}

// FlowTotals is the inflow and outflow summary of a set of entries.
type FlowTotals struct {
	Inflows      Breakdown       `json:"inflows"`
	Outflows     Breakdown       `json:"outflows"`
	TotalInflow  decimal.Decimal `json:"totalInflow"`
	TotalOutflow decimal.Decimal `json:"totalOutflow"`
	NetFlow      decimal.Decimal `json:"netFlow"`
}

func newFlowTotals() FlowTotals {
	return FlowTotals{Inflows: Breakdown{}, Outflows: Breakdown{}, TotalInflow: decimal.Zero, TotalOutflow: decimal.Zero, NetFlow: decimal.Zero}
}

func (t *FlowTotals) add(e FlowEntry) {
	if e.Direction == Inflow {
		t.Inflows.add(e.Category, e.Amount)
		t.TotalInflow = t.TotalInflow.Add(e.Amount)
	} else {
		t.Outflows.add(e.Category, e.Amount)
		t.TotalOutflow = t.TotalOutflow.Add(e.Amount)
	}
	t.NetFlow = t.TotalInflow.Sub(t.TotalOutflow)
}

// AccountFlow is the per-account line of a statement. Internal transfers are kept here.
type AccountFlow struct {
	AccountID   string           `json:"accountID"`
	AccountName string           `json:"accountName"`
	Opening     *decimal.Decimal `json:"opening,omitempty"`
	Closing     *decimal.Decimal `json:"closing,omitempty"`
	FlowTotals
}

// CashFlowStatement is the composed statement for an account set and a range.
type CashFlowStatement struct {
	StartUTC              time.Time        `json:"startUtc"`
	EndUTC                time.Time        `json:"endUtc"`
	AccountIDs            []string         `json:"accountIDs"`
	CompanyWide           bool             `json:"companyWide"`
	Opening               *decimal.Decimal `json:"opening,omitempty"`
	Closing               *decimal.Decimal `json:"closing,omitempty"`
	IsApprox              bool             `json:"isApprox"`
	FlowTotals
	Accounts              []AccountFlow    `json:"accounts"`
	Unattributed          *FlowTotals      `json:"unattributed,omitempty"`
	UnexplainedDifference *decimal.Decimal `json:"unexplainedDifference,omitempty"`
}

// Basis names how the opening and closing balances were obtained.
func (s CashFlowStatement) Basis() string {
	switch {
	case s.Opening == nil:
		return "FLOWS_ONLY"
	case s.IsApprox:
		return "APPROXIMATE"
	}
	return "EXACT"
}

// SnapshotPair holds the exact boundary balances of one account, nil when not recorded.
type SnapshotPair struct {
	Opening *decimal.Decimal
	Closing *decimal.Decimal
}

// CashFlowInput is everything ComposeCashFlow needs, read at one logical instant.
// Entries must hold every flow of the account set dated at or after WindowStart,
// including future dated ones, because current balances already contain them.
type CashFlowInput struct {
	Start       time.Time
	End         time.Time
	WindowStart time.Time
	WindowEnd   time.Time
	Accounts    []Account
	Entries     []FlowEntry
	Snapshots   map[string]SnapshotPair
	AllowApprox bool
	CompanyWide bool
	// AnchorOpening uses a recorded opening snapshot as the opening balance even when the
	// statement is approximate. Backdated flows then show up in UnexplainedDifference.
	AnchorOpening bool
}

// NetSince sums the signed flows of accountID dated at or after t.
func NetSince(entries []FlowEntry, accountID string, t time.Time) decimal.Decimal {
	net := decimal.Zero
	for _, e := range entries {
		if e.AccountID == nil || *e.AccountID != accountID {
			continue
		}
		if !e.OccurredAt.Before(t) {
			net = net.Add(e.Signed())
		}
	}
	return net
}

func inWindow(e FlowEntry, from, to time.Time) bool {
	return !e.OccurredAt.Before(from) && e.OccurredAt.Before(to)
}

// ComposeCashFlow builds a statement. Balances come from snapshots when every account has both
// boundaries recorded, otherwise from replay when approximation is allowed; otherwise they are
// left empty. IsApprox covers the opening and closing pair of the whole set.
func ComposeCashFlow(in CashFlowInput) CashFlowStatement {
	windowStart, windowEnd := in.WindowStart, in.WindowEnd
	if windowStart.IsZero() {
		windowStart = in.Start
	}
	if windowEnd.IsZero() {
		windowEnd = in.End
	}

	inSet := make(map[string]bool, len(in.Accounts))
	for _, a := range in.Accounts {
		inSet[a.AccountID] = true
	}
	sortedAccounts := make([]Account, len(in.Accounts))
	copy(sortedAccounts, in.Accounts)
	sort.Slice(sortedAccounts, func(i, j int) bool { return sortedAccounts[i].AccountID < sortedAccounts[j].AccountID })

	exact := len(sortedAccounts) > 0
	for _, a := range sortedAccounts {
		snap, ok := in.Snapshots[a.AccountID]
		if !ok || snap.Opening == nil || snap.Closing == nil {
			exact = false
			break
		}
	}

	stmt := CashFlowStatement{
		StartUTC:    in.Start.UTC(),
		EndUTC:      in.End.UTC(),
		AccountIDs:  AccountIDs(sortedAccounts),
		CompanyWide: in.CompanyWide,
		IsApprox:    !exact,
		FlowTotals:  newFlowTotals(),
		Accounts:    make([]AccountFlow, 0, len(sortedAccounts)),
	}

	withBalances := exact || in.AllowApprox
	totalOpening, totalClosing := decimal.Zero, decimal.Zero
	for _, a := range sortedAccounts {
		line := AccountFlow{AccountID: a.AccountID, AccountName: a.Name, FlowTotals: newFlowTotals()}
		for _, e := range in.Entries {
			if e.AccountID != nil && *e.AccountID == a.AccountID && inWindow(e, windowStart, windowEnd) {
				line.add(e)
			}
		}
		if withBalances {
			var opening, closing decimal.Decimal
			if exact {
				snap := in.Snapshots[a.AccountID]
				opening, closing = *snap.Opening, *snap.Closing
			} else {
				opening = a.Balance.Sub(NetSince(in.Entries, a.AccountID, windowStart))
				closing = a.Balance.Sub(NetSince(in.Entries, a.AccountID, windowEnd))
				if snap, ok := in.Snapshots[a.AccountID]; ok && in.AnchorOpening && snap.Opening != nil {
					opening = *snap.Opening
				}
			}
			line.Opening, line.Closing = &opening, &closing
			totalOpening = totalOpening.Add(opening)
			totalClosing = totalClosing.Add(closing)
		}
		stmt.Accounts = append(stmt.Accounts, line)
	}

	accountNet := decimal.Zero
	for _, e := range in.Entries {
		if !inWindow(e, windowStart, windowEnd) {
			continue
		}
		if e.AccountID == nil {
			if !in.CompanyWide {
				continue
			}
			if stmt.Unattributed == nil {
				u := newFlowTotals()
				stmt.Unattributed = &u
			}
			stmt.Unattributed.add(e)
			stmt.add(e)
			continue
		}
		if !inSet[*e.AccountID] {
			continue
		}
		if e.IsTransfer() && inSet[*e.CounterpartyAccountID] {
			continue
		}
		stmt.add(e)
		accountNet = accountNet.Add(e.Signed())
	}
	if in.CompanyWide && stmt.Unattributed == nil {
		u := newFlowTotals()
		stmt.Unattributed = &u
	}

	if withBalances {
		stmt.Opening, stmt.Closing = &totalOpening, &totalClosing
		diff := totalClosing.Sub(totalOpening).Sub(accountNet)
		stmt.UnexplainedDifference = &diff
	}
	return stmt
}
