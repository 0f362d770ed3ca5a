package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// DocumentType distinguishes the receivable and payable sides.
type DocumentType string

const (
	DocumentSale     DocumentType = "SALE"
	DocumentPurchase DocumentType = "PURCHASE"
)

// Outstanding computes total − paid − noteAdjustment clamped at zero, and whether the document is settled.
func Outstanding(total, paid, noteAdjustment decimal.Decimal) (decimal.Decimal, bool) {
	out := total.Sub(paid).Sub(noteAdjustment)
	if out.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, true
	}
	return out, false
}

// SaleItem is one line of a sale. UnitCost is the inventory cost captured when the sale was made.
type SaleItem struct {
	SaleItemID       string          `json:"saleItemID"`
	SaleID           string          `json:"saleID"`
	ProductID        string          `json:"productID"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitPrice        decimal.Decimal `json:"unitPrice"`
	UnitCost         decimal.Decimal `json:"unitCost"`
	ReturnedQuantity decimal.Decimal `json:"returnedQuantity"`
}

// RemainingQuantity is the quantity not yet returned.
func (i SaleItem) RemainingQuantity() decimal.Decimal {
	return i.Quantity.Sub(i.ReturnedQuantity)
}

// Profit is the margin on the remaining quantity.
func (i SaleItem) Profit() decimal.Decimal {
	return i.RemainingQuantity().Mul(i.UnitPrice.Sub(i.UnitCost))
}

// Sale carries the ledger-relevant fields of a customer sale.
type Sale struct {
	SaleID            string          `json:"saleID"`
	CustomerID        string          `json:"customerID"`
	DocumentDate      time.Time       `json:"documentDate"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	TaxAmount         decimal.Decimal `json:"taxAmount"`
	PaidAmount        decimal.Decimal `json:"paidAmount"`
	NoteAdjustment    decimal.Decimal `json:"noteAdjustment"`
	OutstandingAmount decimal.Decimal `json:"outstandingAmount"`
	IsPaid            bool            `json:"isPaid"`
	IsComplete        bool            `json:"isComplete"`
	IsRefunded        bool            `json:"isRefunded"`
	Profit            decimal.Decimal `json:"profit"`
	Items             []SaleItem      `json:"items"`
	DeletedAt         *time.Time      `json:"deletedAt,omitempty"`
	AuditFields
}

// Recalculate refreshes outstanding, paid flag and profit from the primary fields.
func (s *Sale) Recalculate() {
	if s.IsRefunded {
		s.OutstandingAmount = decimal.Zero
		s.IsPaid = true
		s.Profit = decimal.Zero
		return
	}
	s.OutstandingAmount, s.IsPaid = Outstanding(s.TotalAmount, s.PaidAmount, s.NoteAdjustment)
	profit := decimal.Zero
	for _, it := range s.Items {
		profit = profit.Add(it.Profit())
	}
	s.Profit = profit
}

// Payable returns the largest payment the sale can still absorb.
func (s Sale) Payable() decimal.Decimal {
	return s.OutstandingAmount
}

// AsOpenDocument projects the sale for allocation.
func (s Sale) AsOpenDocument() OpenDocument {
	return OpenDocument{DocumentID: s.SaleID, PartyID: s.CustomerID, DocumentDate: s.DocumentDate, Outstanding: s.OutstandingAmount}
}

// PurchaseItem is one line of a purchase.
type PurchaseItem struct {
	PurchaseItemID   string          `json:"purchaseItemID"`
	PurchaseID       string          `json:"purchaseID"`
	ProductID        string          `json:"productID"`
	Quantity         decimal.Decimal `json:"quantity"`
	UnitCost         decimal.Decimal `json:"unitCost"`
	ReturnedQuantity decimal.Decimal `json:"returnedQuantity"`
}

// RemainingQuantity is the quantity not yet returned to the supplier.
func (i PurchaseItem) RemainingQuantity() decimal.Decimal {
	return i.Quantity.Sub(i.ReturnedQuantity)
}

// Purchase carries the ledger-relevant fields of a supplier purchase.
type Purchase struct {
	PurchaseID        string          `json:"purchaseID"`
	SupplierID        string          `json:"supplierID"`
	DocumentDate      time.Time       `json:"documentDate"`
	TotalAmount       decimal.Decimal `json:"totalAmount"`
	PaidAmount        decimal.Decimal `json:"paidAmount"`
	NoteAdjustment    decimal.Decimal `json:"noteAdjustment"`
	OutstandingAmount decimal.Decimal `json:"outstandingAmount"`
	IsPaid            bool            `json:"isPaid"`
	IsComplete        bool            `json:"isComplete"`
	Items             []PurchaseItem  `json:"items"`
	DeletedAt         *time.Time      `json:"deletedAt,omitempty"`
	AuditFields
}

// Recalculate refreshes outstanding and the paid flag.
func (p *Purchase) Recalculate() {
	p.OutstandingAmount, p.IsPaid = Outstanding(p.TotalAmount, p.PaidAmount, p.NoteAdjustment)
}

// AsOpenDocument projects the purchase for allocation.
func (p Purchase) AsOpenDocument() OpenDocument {
	return OpenDocument{DocumentID: p.PurchaseID, PartyID: p.SupplierID, DocumentDate: p.DocumentDate, Outstanding: p.OutstandingAmount}
}

// InventoryItem is the stock position of a product. Value is carried at cost.
type InventoryItem struct {
	ProductID      string          `json:"productID"`
	OnHandQuantity decimal.Decimal `json:"onHandQuantity"`
	TotalValue     decimal.Decimal `json:"totalValue"`
	LastUpdatedAt  time.Time       `json:"lastUpdatedAt"`
}

// UnitCost is the weighted average cost of the on-hand quantity.
func (i InventoryItem) UnitCost() decimal.Decimal {
	if i.OnHandQuantity.IsZero() {
		return decimal.Zero
	}
	return i.TotalValue.Div(i.OnHandQuantity).Round(4)
}

// StockChange is a signed movement of quantity and value for one product.
type StockChange struct {
	ProductID     string
	QuantityDelta decimal.Decimal
	ValueDelta    decimal.Decimal
}
