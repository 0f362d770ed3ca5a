package mapping

import (
	"github.com/SscSPs/shop_ledger/internal/core/domain"
	"github.com/SscSPs/shop_ledger/internal/models"
)

// ToModelMovement converts a domain Movement to a model Movement
func ToModelMovement(d domain.Movement) models.Movement {
	var docType *string
	if d.DocumentType != nil {
		s := string(*d.DocumentType)
		docType = &s
	}
	return models.Movement{
		MovementID:   d.MovementID,
		Kind:         string(d.Kind),
		Amount:       d.Amount,
		AccountID:    d.AccountID,
		DocumentType: docType,
		DocumentID:   d.DocumentID,
		PartyID:      d.PartyID,
		NoteID:       d.NoteID,
		OccurredAt:   d.OccurredAt,
		Description:  d.Description,
		VoidedAt:     d.VoidedAt,
		AuditFields:  ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainMovement converts a model Movement to a domain Movement
func ToDomainMovement(m models.Movement) domain.Movement {
	var docType *domain.DocumentType
	if m.DocumentType != nil {
		t := domain.DocumentType(*m.DocumentType)
		docType = &t
	}
	return domain.Movement{
		MovementID:   m.MovementID,
		Kind:         domain.MovementKind(m.Kind),
		Amount:       m.Amount,
		AccountID:    m.AccountID,
		DocumentType: docType,
		DocumentID:   m.DocumentID,
		PartyID:      m.PartyID,
		NoteID:       m.NoteID,
		OccurredAt:   m.OccurredAt.UTC(),
		Description:  m.Description,
		VoidedAt:     m.VoidedAt,
		AuditFields:  ToDomainAuditFields(m.AuditFields),
	}
}

// ToModelMovementAmountEdit converts an edit audit row.
func ToModelMovementAmountEdit(d domain.MovementAmountEdit) models.MovementAmountEdit {
	return models.MovementAmountEdit{
		EditID:     d.EditID,
		MovementID: d.MovementID,
		OldAmount:  d.OldAmount,
		NewAmount:  d.NewAmount,
		EditedAt:   d.EditedAt,
		EditedBy:   d.EditedBy,
	}
}

// ToDomainMovementAmountEdit converts an edit audit row.
func ToDomainMovementAmountEdit(m models.MovementAmountEdit) domain.MovementAmountEdit {
	return domain.MovementAmountEdit{
		EditID:     m.EditID,
		MovementID: m.MovementID,
		OldAmount:  m.OldAmount,
		NewAmount:  m.NewAmount,
		EditedAt:   m.EditedAt.UTC(),
		EditedBy:   m.EditedBy,
	}
}

// ToModelTransfer converts a domain Transfer to a model Transfer
func ToModelTransfer(d domain.Transfer) models.Transfer {
	return models.Transfer{
		TransferID:    d.TransferID,
		FromAccountID: d.FromAccountID,
		ToAccountID:   d.ToAccountID,
		Amount:        d.Amount,
		Status:        string(d.Status),
		CurrencyCode:  d.CurrencyCode,
		Fee:           ToNullDecimal(d.Fee),
		ExchangeRate:  ToNullDecimal(d.ExchangeRate),
		TransferDate:  d.TransferDate,
		CompletedAt:   d.CompletedAt,
		ReversedAt:    d.ReversedAt,
		Description:   d.Description,
		AuditFields:   ToModelAuditFields(d.AuditFields),
	}
}

// ToDomainTransfer converts a model Transfer to a domain Transfer
func ToDomainTransfer(m models.Transfer) domain.Transfer {
	return domain.Transfer{
		TransferID:    m.TransferID,
		FromAccountID: m.FromAccountID,
		ToAccountID:   m.ToAccountID,
		Amount:        m.Amount,
		Status:        domain.TransferStatus(m.Status),
		CurrencyCode:  m.CurrencyCode,
		Fee:           FromNullDecimal(m.Fee),
		ExchangeRate:  FromNullDecimal(m.ExchangeRate),
		TransferDate:  m.TransferDate.UTC(),
		CompletedAt:   m.CompletedAt,
		ReversedAt:    m.ReversedAt,
		Description:   m.Description,
		AuditFields:   ToDomainAuditFields(m.AuditFields),
	}
}
