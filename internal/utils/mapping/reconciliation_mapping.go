package mapping

import (
	"github.com/SscSPs/shop_ledger/internal/core/domain"
	"github.com/SscSPs/shop_ledger/internal/models"
)

// ToModelReconciliation converts a domain Reconciliation to its row form.
func ToModelReconciliation(d domain.Reconciliation) models.DailyCashReconciliation {
	m := models.DailyCashReconciliation{
		ReconciliationID:      d.ReconciliationID,
		AccountID:             d.AccountID,
		BusinessDate:          d.BusinessDate,
		OpenedAt:              d.OpenedAt,
		OpeningSystemBalance:  d.OpeningSystemBalance,
		OpeningCountedBalance: ToNullDecimal(d.OpeningCountedBalance),
		OpeningVariance:       ToNullDecimal(d.OpeningVariance),
		OpeningNotes:          d.OpeningNotes,
		ClosedAt:              d.ClosedAt,
		ClosingSystemBalance:  ToNullDecimal(d.ClosingSystemBalance),
		ClosingCountedBalance: ToNullDecimal(d.ClosingCountedBalance),
		ClosingVariance:       ToNullDecimal(d.ClosingVariance),
		ClosingNotes:          d.ClosingNotes,
		AuditFields:           ToModelAuditFields(d.AuditFields),
	}
	return m
}

// ToDomainReconciliation converts a row back to a domain Reconciliation.
func ToDomainReconciliation(m models.DailyCashReconciliation) domain.Reconciliation {
	return domain.Reconciliation{
		ReconciliationID:      m.ReconciliationID,
		AccountID:             m.AccountID,
		BusinessDate:          domain.BusinessDay(m.BusinessDate),
		OpenedAt:              m.OpenedAt.UTC(),
		OpeningSystemBalance:  m.OpeningSystemBalance,
		OpeningCountedBalance: FromNullDecimal(m.OpeningCountedBalance),
		OpeningVariance:       FromNullDecimal(m.OpeningVariance),
		OpeningNotes:          m.OpeningNotes,
		ClosedAt:              m.ClosedAt,
		ClosingSystemBalance:  FromNullDecimal(m.ClosingSystemBalance),
		ClosingCountedBalance: FromNullDecimal(m.ClosingCountedBalance),
		ClosingVariance:       FromNullDecimal(m.ClosingVariance),
		ClosingNotes:          m.ClosingNotes,
		AuditFields:           ToDomainAuditFields(m.AuditFields),
	}
}
