package services

import (
	"context"

	"github.com/SscSPs/shop_ledger/internal/core/domain"
	"github.com/SscSPs/shop_ledger/internal/dto"
)

// SaleSvcFacade defines the receivable side of the movement log.
type SaleSvcFacade interface {
	CreateSale(ctx context.Context, req dto.CreateSaleRequest, userID string) (*domain.Sale, error)
	GetSale(ctx context.Context, saleID string) (*domain.Sale, error)
	RecordSalePayment(ctx context.Context, saleID string, req dto.PaymentRequest, userID string) (*domain.Sale, *domain.Movement, error)
	RefundSale(ctx context.Context, saleID string, req dto.RefundSaleRequest, userID string) (*domain.Sale, *domain.Movement, error)
	ListSaleMovements(ctx context.Context, saleID string) ([]domain.Movement, error)
}

// PurchaseSvcFacade defines the payable side of the movement log.
type PurchaseSvcFacade interface {
	CreatePurchase(ctx context.Context, req dto.CreatePurchaseRequest, userID string) (*domain.Purchase, error)
	GetPurchase(ctx context.Context, purchaseID string) (*domain.Purchase, error)
	RecordPurchasePayment(ctx context.Context, purchaseID string, req dto.PaymentRequest, userID string) (*domain.Purchase, *domain.Movement, error)
	ListPurchaseMovements(ctx context.Context, purchaseID string) ([]domain.Movement, error)
}
