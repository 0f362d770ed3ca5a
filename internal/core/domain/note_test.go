package domain_test

import (
	"testing"

	"github.com/SscSPs/shop_ledger/internal/apperrors"
	"github.com/SscSPs/shop_ledger/internal/core/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func saleLines() map[string]domain.SaleItem {
	return map[string]domain.SaleItem{
		"si-1": {SaleItemID: "si-1", SaleID: "s-1", ProductID: "prod-1", Quantity: d("5"), UnitPrice: d("20"), UnitCost: d("12"), ReturnedQuantity: d("1")},
	}
}

func TestCreditNoteEffects_ReturnRestocks(t *testing.T) {
	note := domain.Note{NoteID: "cn-1", Side: domain.CreditNoteSide, Amount: d("40"), Reason: domain.ReasonReturn,
		Items: []domain.NoteItem{{DocumentItemID: "si-1", Quantity: d("2")}}}

	eff, err := domain.CreditNoteEffects(note, saleLines())
	require.NoError(t, err)
	require.Len(t, eff.Items, 1)
	assert.True(t, eff.Items[0].Restock)
	assert.True(t, eff.Items[0].StockChange.QuantityDelta.Equal(d("2")))
	assert.True(t, eff.Items[0].StockChange.ValueDelta.Equal(d("24")))
	assert.True(t, eff.Loss.IsZero())
}

func TestCreditNoteEffects_DamageReversesProfitWithoutRestock(t *testing.T) {
	note := domain.Note{NoteID: "cn-2", Side: domain.CreditNoteSide, Amount: d("40"), Reason: domain.ReasonDamaged,
		Items: []domain.NoteItem{{DocumentItemID: "si-1", Quantity: d("2")}}}

	eff, err := domain.CreditNoteEffects(note, saleLines())
	require.NoError(t, err)
	assert.False(t, eff.Items[0].Restock)
	assert.True(t, eff.Items[0].StockChange.QuantityDelta.IsZero())
	assert.True(t, eff.Loss.Equal(d("24")), "loss on damage is quantity times unit cost")
}

func TestCreditNoteEffects_PriceAdjustmentIsLoss(t *testing.T) {
	note := domain.Note{NoteID: "cn-3", Side: domain.CreditNoteSide, Amount: d("15"), Reason: domain.ReasonPriceAdjustment}

	eff, err := domain.CreditNoteEffects(note, nil)
	require.NoError(t, err)
	assert.Empty(t, eff.Items)
	assert.True(t, eff.Loss.Equal(d("15")))
}

func TestCreditNoteEffects_RejectsOverReturn(t *testing.T) {
	note := domain.Note{NoteID: "cn-4", Amount: d("100"), Reason: domain.ReasonReturn,
		Items: []domain.NoteItem{{DocumentItemID: "si-1", Quantity: d("5")}}}

	_, err := domain.CreditNoteEffects(note, saleLines())
	assert.ErrorIs(t, err, apperrors.ErrValidation)

	note.Items[0].DocumentItemID = "missing"
	_, err = domain.CreditNoteEffects(note, saleLines())
	assert.ErrorIs(t, err, apperrors.ErrValidation)
}

func TestDebitNoteEffects(t *testing.T) {
	lines := map[string]domain.PurchaseItem{
		"pi-1": {PurchaseItemID: "pi-1", PurchaseID: "p-1", ProductID: "prod-1", Quantity: d("10"), UnitCost: d("8")},
	}
	note := domain.Note{NoteID: "dn-1", Side: domain.DebitNoteSide, Amount: d("30"), Reason: domain.ReasonReturn,
		Items: []domain.NoteItem{{DocumentItemID: "pi-1", Quantity: d("3")}}}

	eff, err := domain.DebitNoteEffects(note, lines)
	require.NoError(t, err)
	assert.True(t, eff.Items[0].StockChange.QuantityDelta.Equal(d("-3")))
	assert.True(t, eff.Profit.Equal(d("6")))

	note.Reason = domain.ReasonLost
	eff, err = domain.DebitNoteEffects(note, lines)
	require.NoError(t, err)
	assert.True(t, eff.Items[0].StockChange.QuantityDelta.IsZero())
	assert.True(t, eff.Profit.Equal(d("30")))
}

func TestNoteLifecycleGuards(t *testing.T) {
	note := domain.Note{NoteID: "n-1", Status: domain.NotePending}
	assert.NoError(t, note.EnsureEditable())
	assert.NoError(t, note.EnsureApplicable())
	assert.NoError(t, note.EnsureCancellable())
	assert.ErrorIs(t, note.EnsureRefundable(), apperrors.ErrConflict)

	note.Status = domain.NoteApplied
	assert.ErrorIs(t, note.EnsureEditable(), apperrors.ErrConflict)
	assert.ErrorIs(t, note.EnsureApplicable(), apperrors.ErrConflict)
	assert.ErrorIs(t, note.EnsureRefundable(), apperrors.ErrConflict, "no remainder")
	note.RemainderAmount = d("5")
	assert.NoError(t, note.EnsureRefundable())

	note.Status = domain.NoteRefunded
	assert.ErrorIs(t, note.EnsureCancellable(), apperrors.ErrConflict)
}
