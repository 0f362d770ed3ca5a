package mapping

import (
	"github.com/SscSPs/shop_ledger/internal/core/domain"
	"github.com/SscSPs/shop_ledger/internal/models"
)

// ToModelNote converts a domain Note header to a model Note. Items are stored separately.
func ToModelNote(d domain.Note) models.Note {
	return models.Note{
		NoteID:             d.NoteID,
		Side:               string(d.Side),
		PartyID:            d.PartyID,
		TargetDocumentID:   d.TargetDocumentID,
		Amount:             d.Amount,
		Reason:             string(d.Reason),
		Description:        d.Description,
		Status:             string(d.Status),
		AppliedAt:          d.AppliedAt,
		RemainderAmount:    d.RemainderAmount,
		ProfitAmount:       d.ProfitAmount,
		LossAmount:         d.LossAmount,
		ApplicationSummary: d.ApplicationSummary,
		DeletedAt:          d.DeletedAt,
		AuditFields:        ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainNote converts a model Note to a domain Note without items.
func ToDomainNote(m models.Note) domain.Note {
	return domain.Note{
		NoteID:             m.NoteID,
		Side:               domain.NoteSide(m.Side),
		PartyID:            m.PartyID,
		TargetDocumentID:   m.TargetDocumentID,
		Amount:             m.Amount,
		Reason:             domain.NoteReason(m.Reason),
		Description:        m.Description,
		Status:             domain.NoteStatus(m.Status),
		AppliedAt:          m.AppliedAt,
		RemainderAmount:    m.RemainderAmount,
		ProfitAmount:       m.ProfitAmount,
		LossAmount:         m.LossAmount,
		ApplicationSummary: m.ApplicationSummary,
		DeletedAt:          m.DeletedAt,
		AuditFields:        ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelStandingBalance converts a domain StandingBalance to its row form.
func ToModelStandingBalance(d domain.StandingBalance) models.StandingBalance {
	return models.StandingBalance{
		StandingBalanceID: d.StandingBalanceID,
		NoteID:            d.NoteID,
		Side:              string(d.Side),
		PartyID:           d.PartyID,
		Amount:            d.Amount,
		Status:            string(d.Status),
		SettledAt:         d.SettledAt,
		AuditFields:       ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainStandingBalance converts a row to a domain StandingBalance.
func ToDomainStandingBalance(m models.StandingBalance) domain.StandingBalance {
	return domain.StandingBalance{
		StandingBalanceID: m.StandingBalanceID,
		NoteID:            m.NoteID,
		Side:              domain.NoteSide(m.Side),
		PartyID:           m.PartyID,
		Amount:            m.Amount,
		Status:            domain.StandingBalanceStatus(m.Status),
		SettledAt:         m.SettledAt,
		AuditFields:       ToDomainAuditFields(m.AuditFields),
	}
}
