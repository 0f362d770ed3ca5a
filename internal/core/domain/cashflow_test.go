package domain_test

import (
	"testing"
	"time"

	"github.com/SscSPs/shop_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decPtr(s string) *decimal.Decimal {
	v := d(s)
	return &v
}

func movementEntry(id, account string, kind domain.MovementKind, amount string, at time.Time) domain.FlowEntry {
	m := domain.Movement{MovementID: id, Kind: kind, Amount: d(amount), OccurredAt: at}
	if account != "" {
		m.AccountID = strPtr(account)
	}
	return domain.MovementFlowEntry(m)
}

func TestComposeCashFlow_ApproxReplay(t *testing.T) {
	accounts := []domain.Account{
		{AccountID: "a", Name: "Till", Balance: d("1000")},
		{AccountID: "b", Name: "Bank", Balance: d("500")},
	}
	noon := func(n int) time.Time { return day(n).Add(12 * time.Hour) }
	entries := []domain.FlowEntry{
		movementEntry("m1", "a", domain.SalePayment, "300", noon(2)),
		movementEntry("m2", "a", domain.Expenditure, "50", noon(3)),
		movementEntry("m3", "b", domain.CapitalContribution, "200", noon(4)),
		movementEntry("m4", "", domain.SalePayment, "70", noon(2)),
	}
	entries = append(entries, domain.TransferFlowEntries(domain.Transfer{TransferID: "t1", FromAccountID: "a", ToAccountID: "b", Amount: d("100"), TransferDate: noon(2)})...)

	stmt := domain.ComposeCashFlow(domain.CashFlowInput{
		Start: day(2), End: day(4), Accounts: accounts, Entries: entries,
		AllowApprox: true, CompanyWide: true,
	})

	assert.True(t, stmt.IsApprox)
	require.NotNil(t, stmt.Opening)
	// a: 1000 - (300 - 50 - 100) = 850; b: 500 - (200 + 100) = 200
	assert.True(t, stmt.Opening.Equal(d("1050")), stmt.Opening.String())
	// a closing: 1000 - 0 = 1000; b closing: 500 - 200 = 300
	assert.True(t, stmt.Closing.Equal(d("1300")), stmt.Closing.String())

	// internal transfer excluded from aggregate, unattributed included
	assert.True(t, stmt.TotalInflow.Equal(d("370")), stmt.TotalInflow.String())
	assert.True(t, stmt.TotalOutflow.Equal(d("50")))
	_, hasTransfer := stmt.Inflows[domain.FlowTransfersIn]
	assert.False(t, hasTransfer)

	require.NotNil(t, stmt.Unattributed)
	assert.True(t, stmt.Unattributed.TotalInflow.Equal(d("70")))

	require.Len(t, stmt.Accounts, 2)
	assert.True(t, stmt.Accounts[0].Outflows[domain.FlowTransfersOut].Equal(d("100")), "per-account lines keep transfers")
	assert.True(t, stmt.Accounts[1].Inflows[domain.FlowTransfersIn].Equal(d("100")))

	require.NotNil(t, stmt.UnexplainedDifference)
	assert.True(t, stmt.UnexplainedDifference.IsZero(), stmt.UnexplainedDifference.String())
}

func TestComposeCashFlow_TransferNeutrality(t *testing.T) {
	accounts := []domain.Account{{AccountID: "a", Balance: d("0")}, {AccountID: "b", Balance: d("0")}}
	entries := domain.TransferFlowEntries(domain.Transfer{TransferID: "t1", FromAccountID: "a", ToAccountID: "b", Amount: d("250"), TransferDate: day(2).Add(time.Hour)})

	stmt := domain.ComposeCashFlow(domain.CashFlowInput{Start: day(2), End: day(3), Accounts: accounts, Entries: entries, AllowApprox: true})
	assert.True(t, stmt.NetFlow.IsZero())
	assert.True(t, stmt.TotalInflow.IsZero())
	assert.True(t, stmt.TotalOutflow.IsZero())
	assert.Nil(t, stmt.Unattributed, "unattributed bucket only on company-wide statements")

	single := domain.ComposeCashFlow(domain.CashFlowInput{Start: day(2), End: day(3), Accounts: accounts[:1], Entries: entries, AllowApprox: true})
	assert.True(t, single.TotalOutflow.Equal(d("250")), "transfer to an account outside the set counts")
}

func TestComposeCashFlow_ExactFromSnapshots(t *testing.T) {
	accounts := []domain.Account{{AccountID: "a", Balance: d("999")}}
	stmt := domain.ComposeCashFlow(domain.CashFlowInput{
		Start: day(2), End: day(3), Accounts: accounts,
		Entries:   []domain.FlowEntry{movementEntry("m1", "a", domain.SalePayment, "40", day(2).Add(time.Hour))},
		Snapshots: map[string]domain.SnapshotPair{"a": {Opening: decPtr("100"), Closing: decPtr("140")}},
	})
	assert.False(t, stmt.IsApprox)
	assert.True(t, stmt.Opening.Equal(d("100")))
	assert.True(t, stmt.Closing.Equal(d("140")))
	assert.True(t, stmt.UnexplainedDifference.IsZero())
}

func TestComposeCashFlow_MissingClosingSnapshotIsApprox(t *testing.T) {
	accounts := []domain.Account{{AccountID: "x", Balance: d("80")}}
	in := domain.CashFlowInput{
		Start: day(1), End: day(2), Accounts: accounts,
		Snapshots: map[string]domain.SnapshotPair{"x": {Opening: nil, Closing: nil}},
	}

	stmt := domain.ComposeCashFlow(in)
	assert.True(t, stmt.IsApprox)
	assert.Nil(t, stmt.Opening, "no balances without approximation")
	assert.Nil(t, stmt.Closing)

	in.AllowApprox = true
	stmt = domain.ComposeCashFlow(in)
	assert.True(t, stmt.IsApprox)
	assert.True(t, stmt.Opening.Equal(d("80")))
}

func TestComposeCashFlow_NarrowedWindow(t *testing.T) {
	openedAt := day(4).Add(8 * time.Hour)
	accounts := []domain.Account{{AccountID: "a", Balance: d("160")}}
	entries := []domain.FlowEntry{
		movementEntry("early", "a", domain.SalePayment, "10", day(4).Add(7*time.Hour)),
		movementEntry("late", "a", domain.SalePayment, "50", day(4).Add(9*time.Hour)),
	}

	stmt := domain.ComposeCashFlow(domain.CashFlowInput{
		Start: day(4), End: day(5), WindowStart: openedAt, Accounts: accounts,
		Entries: entries, AllowApprox: true,
	})
	assert.True(t, stmt.TotalInflow.Equal(d("50")))
	assert.True(t, stmt.Opening.Equal(d("110")))
	assert.True(t, stmt.Closing.Equal(d("160")))
}

func TestComposeCashFlow_AnchoredOpeningSurfacesBackdating(t *testing.T) {
	openedAt := day(4).Add(8 * time.Hour)
	accounts := []domain.Account{{AccountID: "a", Balance: d("175")}}
	entries := []domain.FlowEntry{
		movementEntry("sale", "a", domain.SalePayment, "50", day(4).Add(9*time.Hour)),
		// recorded after the day was opened but dated before it
		movementEntry("backdated", "a", domain.SalePayment, "25", day(4).Add(7*time.Hour)),
	}

	stmt := domain.ComposeCashFlow(domain.CashFlowInput{
		Start: day(4), End: day(5), WindowStart: openedAt, Accounts: accounts, Entries: entries,
		Snapshots:     map[string]domain.SnapshotPair{"a": {Opening: decPtr("100")}},
		AllowApprox:   true,
		AnchorOpening: true,
	})
	assert.True(t, stmt.IsApprox)
	assert.True(t, stmt.Opening.Equal(d("100")))
	assert.True(t, stmt.Closing.Equal(d("175")))
	assert.True(t, stmt.TotalInflow.Equal(d("50")))
	require.NotNil(t, stmt.UnexplainedDifference)
	assert.True(t, stmt.UnexplainedDifference.Equal(d("25")), stmt.UnexplainedDifference.String())
}

func TestMovementFlowEntries_DatesEditsAndVoids(t *testing.T) {
	voidedAt := day(5).Add(9 * time.Hour)
	m := domain.Movement{MovementID: "m1", Kind: domain.SalePayment, Amount: d("150"), AccountID: strPtr("a"), OccurredAt: day(1), VoidedAt: &voidedAt}
	edits := []domain.MovementAmountEdit{
		{EditID: "e2", MovementID: "m1", OldAmount: d("120"), NewAmount: d("150"), EditedAt: day(4)},
		{EditID: "e1", MovementID: "m1", OldAmount: d("100"), NewAmount: d("120"), EditedAt: day(3)},
	}

	entries := domain.MovementFlowEntries(m, edits)

	require.Len(t, entries, 4)
	assert.True(t, entries[0].Amount.Equal(d("100")), "first entry keeps the amount first recorded")
	assert.Equal(t, day(1), entries[0].OccurredAt)
	assert.False(t, entries[0].Correction)
	assert.True(t, entries[1].Amount.Equal(d("20")))
	assert.Equal(t, day(3), entries[1].OccurredAt)
	assert.True(t, entries[2].Amount.Equal(d("30")))
	assert.Equal(t, day(4), entries[2].OccurredAt)
	assert.True(t, entries[3].Amount.Equal(d("-150")))
	assert.Equal(t, voidedAt, entries[3].OccurredAt)
	for _, e := range entries[1:] {
		assert.True(t, e.Correction)
		assert.Equal(t, domain.FlowSalePayments, e.Category)
	}
}

func TestMovementFlowEntries_CorrectionNeverPrecedesMovement(t *testing.T) {
	m := domain.Movement{MovementID: "m1", Kind: domain.Expenditure, Amount: d("40"), AccountID: strPtr("a"), OccurredAt: day(6)}
	edits := []domain.MovementAmountEdit{{EditID: "e1", MovementID: "m1", OldAmount: d("50"), NewAmount: d("40"), EditedAt: day(2)}}

	entries := domain.MovementFlowEntries(m, edits)

	require.Len(t, entries, 2)
	assert.Equal(t, day(6), entries[1].OccurredAt)
	assert.True(t, entries[1].Signed().Equal(d("10")), "a smaller expenditure gives money back")
}

func TestComposeCashFlow_WindowStraddlingAmountEdit(t *testing.T) {
	accounts := []domain.Account{{AccountID: "a", Balance: d("150")}}
	m := domain.Movement{MovementID: "m1", Kind: domain.SalePayment, Amount: d("150"), AccountID: strPtr("a"), OccurredAt: day(1).Add(time.Hour)}
	edits := []domain.MovementAmountEdit{{EditID: "e1", MovementID: "m1", OldAmount: d("100"), NewAmount: d("150"), EditedAt: day(3).Add(time.Hour)}}
	entries := domain.MovementFlowEntries(m, edits)

	before := domain.ComposeCashFlow(domain.CashFlowInput{Start: day(2), End: day(3), Accounts: accounts, Entries: entries, AllowApprox: true})
	assert.True(t, before.Opening.Equal(d("100")), before.Opening.String())
	assert.True(t, before.Closing.Equal(d("100")), before.Closing.String())
	assert.True(t, before.NetFlow.IsZero())

	straddling := domain.ComposeCashFlow(domain.CashFlowInput{Start: day(1), End: day(4), Accounts: accounts, Entries: entries, AllowApprox: true})
	assert.True(t, straddling.Opening.IsZero(), straddling.Opening.String())
	assert.True(t, straddling.Closing.Equal(d("150")))
	assert.True(t, straddling.Inflows[domain.FlowSalePayments].Equal(d("150")))
	assert.True(t, straddling.UnexplainedDifference.IsZero())
}

func TestComposeCashFlow_ReversalAfterWindow(t *testing.T) {
	// a held 1000, sent 200 to b on day 1 and got it back on day 3.
	reversedAt := day(3).Add(10 * time.Hour)
	transfer := domain.Transfer{
		TransferID: "t1", FromAccountID: "a", ToAccountID: "b", Amount: d("200"),
		Status: domain.TransferReversed, TransferDate: day(1).Add(12 * time.Hour), ReversedAt: &reversedAt,
	}
	voidedAt := day(3).Add(11 * time.Hour)
	expense := domain.Movement{MovementID: "m1", Kind: domain.Expenditure, Amount: d("30"), AccountID: strPtr("a"), OccurredAt: day(1).Add(13 * time.Hour), VoidedAt: &voidedAt}

	entries := domain.TransferFlowEntries(transfer)
	entries = append(entries, domain.MovementFlowEntries(expense, nil)...)
	accounts := []domain.Account{{AccountID: "a", Balance: d("1000")}}

	stmt := domain.ComposeCashFlow(domain.CashFlowInput{
		Start: day(2), End: day(3), Accounts: accounts,
		Entries: domain.FlowsWithin(entries, day(2), nil), AllowApprox: true,
	})

	assert.True(t, stmt.Opening.Equal(d("770")), stmt.Opening.String())
	assert.True(t, stmt.Closing.Equal(d("770")), stmt.Closing.String())
	assert.True(t, stmt.NetFlow.IsZero())

	reversalDay := domain.ComposeCashFlow(domain.CashFlowInput{
		Start: day(3), End: day(4), Accounts: accounts,
		Entries: domain.FlowsWithin(entries, day(3), nil), AllowApprox: true,
	})
	assert.True(t, reversalDay.Opening.Equal(d("770")))
	assert.True(t, reversalDay.Closing.Equal(d("1000")))
	assert.True(t, reversalDay.NetFlow.Equal(d("230")), reversalDay.NetFlow.String())
	assert.True(t, reversalDay.UnexplainedDifference.IsZero())
}

func TestTransferFlowEntries_PendingHasNoFlows(t *testing.T) {
	assert.Empty(t, domain.TransferFlowEntries(domain.Transfer{TransferID: "t1", FromAccountID: "a", ToAccountID: "b", Amount: d("5"), Status: domain.TransferPending}))
}

func TestFlowsWithin(t *testing.T) {
	entries := []domain.FlowEntry{
		movementEntry("m1", "a", domain.SalePayment, "1", day(1)),
		movementEntry("m2", "a", domain.SalePayment, "2", day(2)),
		movementEntry("m3", "a", domain.SalePayment, "3", day(3)),
	}
	to := day(3)
	kept := domain.FlowsWithin(entries, day(2), &to)
	require.Len(t, kept, 1)
	assert.Equal(t, "m2", kept[0].SourceID)
	assert.Len(t, domain.FlowsWithin(entries, day(2), nil), 2)
}
