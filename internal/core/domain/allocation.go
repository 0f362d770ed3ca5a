package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/SscSPs/shop_ledger/internal/apperrors"
	"github.com/shopspring/decimal"
)

// OpenDocument is a sale or purchase seen by the allocation engine.
type OpenDocument struct {
	DocumentID   string
	PartyID      string
	DocumentDate time.Time
	Outstanding  decimal.Decimal
}

// AllocationLine records how much of the lump amount one document absorbed.
type AllocationLine struct {
	DocumentID     string          `json:"documentID"`
	Amount         decimal.Decimal `json:"amount"`
	OutstandingNow decimal.Decimal `json:"outstandingNow"`
	FullyPaid      bool            `json:"fullyPaid"`
}

// AllocationResult is the outcome of spreading a lump amount over a party's open documents.
type AllocationResult struct {
	AppliedTo    []AllocationLine `json:"appliedTo"`
	TotalApplied decimal.Decimal  `json:"totalApplied"`
	Remainder    decimal.Decimal  `json:"remainder"`
}

// AppliedAmount returns the amount allocated to documentID, zero if none.
func (r AllocationResult) AppliedAmount(documentID string) decimal.Decimal {
	for _, l := range r.AppliedTo {
		if l.DocumentID == documentID {
			return l.Amount
		}
	}
	return decimal.Zero
}

// SortOldestFirst orders documents by document date ascending, ties broken by document ID.
func SortOldestFirst(docs []OpenDocument) []OpenDocument {
	sorted := make([]OpenDocument, len(docs))
	copy(sorted, docs)
	sort.SliceStable(sorted, func(i, j int) bool {
		if !sorted[i].DocumentDate.Equal(sorted[j].DocumentDate) {
			return sorted[i].DocumentDate.Before(sorted[j].DocumentDate)
		}
		return sorted[i].DocumentID < sorted[j].DocumentID
	})
	return sorted
}

// Allocate spreads amount over the party's open documents.
// The preferred document, when given, is reduced first; the rest are reduced oldest first.
// Whatever cannot be absorbed is returned as the remainder.
func Allocate(amount decimal.Decimal, partyID string, preferredDocumentID *string, docs []OpenDocument) (AllocationResult, error) {
	if amount.LessThanOrEqual(decimal.Zero) {
		return AllocationResult{}, apperrors.NewValidationError("allocation amount must be positive")
	}
	for _, d := range docs {
		if d.PartyID != partyID {
			return AllocationResult{}, apperrors.NewValidationError("document %s does not belong to party %s", d.DocumentID, partyID)
		}
	}

	ordered := SortOldestFirst(docs)
	if preferredDocumentID != nil {
		idx := -1
		for i, d := range ordered {
			if d.DocumentID == *preferredDocumentID {
				idx = i
				break
			}
		}
		if idx > 0 {
			preferred := ordered[idx]
			ordered = append(ordered[:idx:idx], ordered[idx+1:]...)
			ordered = append([]OpenDocument{preferred}, ordered...)
		}
	}

	result := AllocationResult{AppliedTo: make([]AllocationLine, 0), TotalApplied: decimal.Zero}
	remaining := amount
	for _, d := range ordered {
		if remaining.IsZero() {
			break
		}
		if d.Outstanding.LessThanOrEqual(decimal.Zero) {
			continue
		}
		applied := decimal.Min(remaining, d.Outstanding)
		left := d.Outstanding.Sub(applied)
		result.AppliedTo = append(result.AppliedTo, AllocationLine{
			DocumentID:     d.DocumentID,
			Amount:         applied,
			OutstandingNow: left,
			FullyPaid:      left.IsZero(),
		})
		result.TotalApplied = result.TotalApplied.Add(applied)
		remaining = remaining.Sub(applied)
	}
	result.Remainder = remaining
	return result, nil
}

// Summary renders a human readable description of the allocation.
func (r AllocationResult) Summary(noun string) string {
	var b strings.Builder
	if len(r.AppliedTo) == 0 {
		b.WriteString(fmt.Sprintf("No open %ss to apply against.", noun))
	} else {
		parts := make([]string, 0, len(r.AppliedTo))
		for _, l := range r.AppliedTo {
			state := "partially paid"
			if l.FullyPaid {
				state = "fully paid"
			}
			parts = append(parts, fmt.Sprintf("%s %s: %s applied (%s, %s outstanding)", noun, l.DocumentID, l.Amount.StringFixed(2), state, l.OutstandingNow.StringFixed(2)))
		}
		b.WriteString(fmt.Sprintf("Applied %s across %d %s(s). ", r.TotalApplied.StringFixed(2), len(r.AppliedTo), noun))
		b.WriteString(strings.Join(parts, "; "))
		b.WriteString(".")
	}
	if r.Remainder.GreaterThan(decimal.Zero) {
		b.WriteString(fmt.Sprintf(" Remainder %s recorded as a standing balance.", r.Remainder.StringFixed(2)))
	}
	return b.String()
}
