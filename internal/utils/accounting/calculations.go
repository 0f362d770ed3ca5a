package accounting

import (
	"fmt"

	"github.com/SscSPs/shop_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// CalculateSignedAmount applies the sign implied by the movement kind to an amount.
// Inflows increase the linked account balance, outflows decrease it.
// This is used in both services and repositories to ensure consistent accounting logic.
func CalculateSignedAmount(kind domain.MovementKind, amount decimal.Decimal) (decimal.Decimal, error) {
	if !kind.IsValid() {
		return decimal.Zero, fmt.Errorf("unknown movement kind '%s'", kind)
	}
	if kind.Direction() == domain.Outflow {
		return amount.Neg(), nil
	}
	return amount, nil
}

// DocumentPaidDelta returns how a movement of the given kind changes the paid amount of
// its document. Refunds move money the other way and reduce the paid amount.
func DocumentPaidDelta(kind domain.MovementKind, amount decimal.Decimal) decimal.Decimal {
	switch kind {
	case domain.SalePayment, domain.PurchasePayment:
		return amount
	case domain.SaleRefund, domain.PurchaseRefund:
		return amount.Neg()
	}
	return decimal.Zero
}

// ValidateBalanceChanges checks that a set of per-account balance changes nets to zero,
// which holds for every completed transfer.
func ValidateBalanceChanges(changes map[string]decimal.Decimal) error {
	if len(changes) < 2 {
		return fmt.Errorf("a transfer must touch at least two accounts")
	}
	sum := decimal.Zero
	for _, delta := range changes {
		sum = sum.Add(delta)
	}
	if !sum.IsZero() {
		return fmt.Errorf("balance changes do not net to zero: sum is %s", sum.String())
	}
	return nil
}
