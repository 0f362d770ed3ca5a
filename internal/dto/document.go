package dto

import (
	"time"

	"github.com/SscSPs/shop_ledger/internal/core/domain"
	"github.com/shopspring/decimal"
)

// SaleItemRequest is one line of a new sale. UnitCost defaults to the current inventory cost.
type SaleItemRequest struct {
	ProductID string           `json:"productID" binding:"required"`
	Quantity  decimal.Decimal  `json:"quantity" binding:"required,dgt0"`
	UnitPrice decimal.Decimal  `json:"unitPrice" binding:"required,dgte0"`
	UnitCost  *decimal.Decimal `json:"unitCost" binding:"omitempty,dgte0"`
}

// PaymentRequest settles part of a document, optionally into or out of an account.
type PaymentRequest struct {
	Amount      decimal.Decimal `json:"amount" binding:"required,dgt0"`
	AccountID   *string         `json:"accountID" binding:"omitempty,uuid"`
	PaidAt      *time.Time      `json:"paidAt"`
	Description string          `json:"description" binding:"max=500"`
}

// CreateSaleRequest records the ledger side of a sale.
type CreateSaleRequest struct {
	CustomerID     string            `json:"customerID" binding:"required"`
	DocumentDate   time.Time         `json:"documentDate" binding:"required"`
	TaxAmount      decimal.Decimal   `json:"taxAmount" binding:"dgte0"`
	Items          []SaleItemRequest `json:"items" binding:"required,min=1,dive"`
	InitialPayment *PaymentRequest   `json:"initialPayment"`
}

// RefundSaleRequest refunds everything paid on a sale.
type RefundSaleRequest struct {
	AccountID *string    `json:"accountID" binding:"omitempty,uuid"`
	RefundAt  *time.Time `json:"refundAt"`
	Reason    string     `json:"reason" binding:"max=500"`
}

// PurchaseItemRequest is one line of a new purchase.
type PurchaseItemRequest struct {
	ProductID string          `json:"productID" binding:"required"`
	Quantity  decimal.Decimal `json:"quantity" binding:"required,dgt0"`
	UnitCost  decimal.Decimal `json:"unitCost" binding:"required,dgte0"`
}

// CreatePurchaseRequest records the ledger side of a purchase.
type CreatePurchaseRequest struct {
	SupplierID     string                `json:"supplierID" binding:"required"`
	DocumentDate   time.Time             `json:"documentDate" binding:"required"`
	Items          []PurchaseItemRequest `json:"items" binding:"required,min=1,dive"`
	InitialPayment *PaymentRequest       `json:"initialPayment"`
}

// SaleResponse defines the data returned for a sale.
type SaleResponse struct {
	domain.Sale
}

// PurchaseResponse defines the data returned for a purchase.
type PurchaseResponse struct {
	domain.Purchase
}

// DocumentPaymentResponse returns the settled document and the movement that settled it.
type DocumentPaymentResponse struct {
	Document any               `json:"document"`
	Movement *MovementResponse `json:"movement,omitempty"`
}

// ToDocumentPaymentResponse pairs a document with the movement that changed it, if any.
func ToDocumentPaymentResponse(document any, m *domain.Movement) DocumentPaymentResponse {
	res := DocumentPaymentResponse{Document: document}
	if m != nil {
		mr := ToMovementResponse(m)
		res.Movement = &mr
	}
	return res
}

// ToSaleResponse converts a domain.Sale to SaleResponse DTO
func ToSaleResponse(s *domain.Sale) SaleResponse {
	return SaleResponse{Sale: *s}
}

// ToPurchaseResponse converts a domain.Purchase to PurchaseResponse DTO
func ToPurchaseResponse(p *domain.Purchase) PurchaseResponse {
	return PurchaseResponse{Purchase: *p}
}
