package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/SscSPs/shop_ledger/internal/apperrors"
	"github.com/SscSPs/shop_ledger/internal/core/domain"
	portsrepo "github.com/SscSPs/shop_ledger/internal/core/ports/repositories"
	portssvc "github.com/SscSPs/shop_ledger/internal/core/ports/services"
	"github.com/SscSPs/shop_ledger/internal/dto"
	"github.com/SscSPs/shop_ledger/internal/metrics"
	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

func paymentTime(at *time.Time, now time.Time) time.Time {
	if at != nil {
		return at.UTC()
	}
	return now
}

// SaleService writes the ledger side of customer sales.
type SaleService struct {
	BaseService
	txManager     portsrepo.TransactionManager
	saleRepo      portsrepo.SaleRepositoryFacade
	inventoryRepo portsrepo.InventoryRepositoryFacade
	movementRepo  portsrepo.MovementRepositoryFacade
	ledger        *ledger
}

// NewSaleService creates a new SaleService.
func NewSaleService(repos portsrepo.RepositoryProvider, options ...ServiceOption) *SaleService {
	return &SaleService{
		BaseService:   applyOptions(options),
		txManager:     repos.TxManager,
		saleRepo:      repos.SaleRepo,
		inventoryRepo: repos.InventoryRepo,
		movementRepo:  repos.MovementRepo,
		ledger:        newLedger(repos),
	}
}

var _ portssvc.SaleSvcFacade = (*SaleService)(nil)

// CreateSale records a sale, takes its goods out of stock at cost and books the optional
// initial payment.
func (s *SaleService) CreateSale(ctx context.Context, req dto.CreateSaleRequest, userID string) (*domain.Sale, error) {
	if strings.TrimSpace(req.CustomerID) == "" {
		return nil, apperrors.NewValidationError("customer is required")
	}
	if len(req.Items) == 0 {
		return nil, apperrors.NewValidationError("a sale needs at least one item")
	}
	if req.TaxAmount.LessThan(decimal.Zero) {
		return nil, apperrors.NewValidationError("tax amount cannot be negative")
	}

	now := s.Now()
	sale := domain.Sale{
		SaleID:         s.NewID(),
		CustomerID:     req.CustomerID,
		DocumentDate:   req.DocumentDate.UTC(),
		TaxAmount:      req.TaxAmount,
		PaidAmount:     decimal.Zero,
		NoteAdjustment: decimal.Zero,
		IsComplete:     true,
		AuditFields:    domain.NewAuditFields(userID, now),
	}
	productIDs := make([]string, 0, len(req.Items))
	for _, it := range req.Items {
		if it.Quantity.LessThanOrEqual(decimal.Zero) || it.UnitPrice.LessThan(decimal.Zero) {
			return nil, apperrors.NewValidationError("item %s needs a positive quantity and a non-negative price", it.ProductID)
		}
		productIDs = append(productIDs, it.ProductID)
	}

	var payment *domain.Movement
	err := s.txManager.WithinTx(ctx, func(tx pgx.Tx) error {
		stock, err := s.inventoryRepo.FindInventoryItems(ctx, tx, productIDs)
		if err != nil {
			return err
		}
		total := req.TaxAmount
		changes := make([]domain.StockChange, 0, len(req.Items))
		for _, it := range req.Items {
			unitCost := stock[it.ProductID].UnitCost()
			if it.UnitCost != nil {
				unitCost = *it.UnitCost
			}
			sale.Items = append(sale.Items, domain.SaleItem{
				SaleItemID:       s.NewID(),
				SaleID:           sale.SaleID,
				ProductID:        it.ProductID,
				Quantity:         it.Quantity,
				UnitPrice:        it.UnitPrice,
				UnitCost:         unitCost,
				ReturnedQuantity: decimal.Zero,
			})
			total = total.Add(it.Quantity.Mul(it.UnitPrice))
			changes = append(changes, domain.StockChange{ProductID: it.ProductID, QuantityDelta: it.Quantity.Neg(), ValueDelta: it.Quantity.Mul(unitCost).Neg()})
		}
		sale.TotalAmount = total
		sale.Recalculate()

		if err := s.saleRepo.SaveSale(ctx, tx, sale); err != nil {
			return err
		}
		if err := s.inventoryRepo.ApplyStockChanges(ctx, tx, changes, now); err != nil {
			return err
		}

		if req.InitialPayment != nil {
			m := newMovement(s.NewID(), domain.SalePayment, req.InitialPayment.Amount, req.InitialPayment.AccountID,
				paymentTime(req.InitialPayment.PaidAt, now), req.InitialPayment.Description, userID, now)
			linkDocument(&m, domain.DocumentSale, sale.SaleID, sale.CustomerID)
			if err := s.ledger.post(ctx, tx, m, userID, now); err != nil {
				return err
			}
			settled, err := s.ledger.settleSale(ctx, tx, sale.SaleID, m.Amount, userID, now)
			if err != nil {
				return err
			}
			sale = *settled
			payment = &m
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create sale", slog.String("customer_id", req.CustomerID))
		return nil, err
	}
	if payment != nil {
		metrics.MovementsRecorded.WithLabelValues(string(payment.Kind)).Inc()
	}

	s.LogInfo(ctx, "Sale created",
		slog.String("sale_id", sale.SaleID),
		slog.String("total", sale.TotalAmount.String()),
		slog.String("outstanding", sale.OutstandingAmount.String()))
	return &sale, nil
}

// GetSale returns a live sale with its items.
func (s *SaleService) GetSale(ctx context.Context, saleID string) (*domain.Sale, error) {
	sale, err := s.saleRepo.FindSaleByID(ctx, nil, saleID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find sale", slog.String("sale_id", saleID))
		}
		return nil, err
	}
	return sale, nil
}

// RecordSalePayment books a customer payment. Paying more than is outstanding is rejected.
func (s *SaleService) RecordSalePayment(ctx context.Context, saleID string, req dto.PaymentRequest, userID string) (*domain.Sale, *domain.Movement, error) {
	now := s.Now()
	var (
		sale *domain.Sale
		m    domain.Movement
	)
	err := s.txManager.WithinTx(ctx, func(tx pgx.Tx) error {
		current, err := s.saleRepo.FindSaleByID(ctx, tx, saleID)
		if err != nil {
			return err
		}
		m = newMovement(s.NewID(), domain.SalePayment, req.Amount, req.AccountID, paymentTime(req.PaidAt, now), req.Description, userID, now)
		linkDocument(&m, domain.DocumentSale, saleID, current.CustomerID)
		if err := s.ledger.post(ctx, tx, m, userID, now); err != nil {
			return err
		}
		sale, err = s.ledger.settleSale(ctx, tx, saleID, req.Amount, userID, now)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to record sale payment", slog.String("sale_id", saleID))
		return nil, nil, err
	}
	metrics.MovementsRecorded.WithLabelValues(string(m.Kind)).Inc()

	s.LogInfo(ctx, "Sale payment recorded",
		slog.String("sale_id", saleID),
		slog.String("movement_id", m.MovementID),
		slog.String("outstanding", sale.OutstandingAmount.String()))
	return sale, &m, nil
}

// RefundSale pays back everything received for a sale, restocks the goods still held by the
// customer and reverses the sale's profit.
func (s *SaleService) RefundSale(ctx context.Context, saleID string, req dto.RefundSaleRequest, userID string) (*domain.Sale, *domain.Movement, error) {
	now := s.Now()
	var (
		sale   *domain.Sale
		refund *domain.Movement
	)
	err := s.txManager.WithinTx(ctx, func(tx pgx.Tx) error {
		if req.AccountID != nil {
			if _, err := s.ledger.lockUsableAccount(ctx, tx, *req.AccountID); err != nil {
				return err
			}
		}
		var err error
		sale, err = s.saleRepo.FindSaleForUpdate(ctx, tx, saleID)
		if err != nil {
			return err
		}
		if sale.IsRefunded {
			return apperrors.NewConflictError("sale %s is already refunded", saleID)
		}

		if sale.PaidAmount.GreaterThan(decimal.Zero) {
			reason := req.Reason
			if reason == "" {
				reason = "Sale refund"
			}
			m := newMovement(s.NewID(), domain.SaleRefund, sale.PaidAmount, req.AccountID, paymentTime(req.RefundAt, now), reason, userID, now)
			linkDocument(&m, domain.DocumentSale, saleID, sale.CustomerID)
			if err := s.ledger.post(ctx, tx, m, userID, now); err != nil {
				return err
			}
			refund = &m
		}

		changes := []domain.StockChange{}
		returned := make([]domain.SaleItem, 0, len(sale.Items))
		for i, it := range sale.Items {
			remaining := it.RemainingQuantity()
			if remaining.LessThanOrEqual(decimal.Zero) {
				continue
			}
			changes = append(changes, domain.StockChange{ProductID: it.ProductID, QuantityDelta: remaining, ValueDelta: remaining.Mul(it.UnitCost)})
			sale.Items[i].ReturnedQuantity = it.Quantity
			returned = append(returned, sale.Items[i])
		}
		if err := s.saleRepo.UpdateSaleItemReturns(ctx, tx, returned); err != nil {
			return err
		}
		if err := s.inventoryRepo.ApplyStockChanges(ctx, tx, changes, now); err != nil {
			return err
		}

		sale.PaidAmount = decimal.Zero
		sale.IsRefunded = true
		sale.Recalculate()
		sale.Touch(userID, now)
		return s.saleRepo.UpdateSaleLedger(ctx, tx, *sale, userID, now)
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to refund sale", slog.String("sale_id", saleID))
		return nil, nil, err
	}
	if refund != nil {
		metrics.MovementsRecorded.WithLabelValues(string(refund.Kind)).Inc()
	}

	s.LogInfo(ctx, "Sale refunded", slog.String("sale_id", saleID))
	return sale, refund, nil
}

// ListSaleMovements lists the effective movements settling a sale.
func (s *SaleService) ListSaleMovements(ctx context.Context, saleID string) ([]domain.Movement, error) {
	if _, err := s.GetSale(ctx, saleID); err != nil {
		return nil, err
	}
	return s.movementRepo.ListMovementsForDocument(ctx, nil, domain.DocumentSale, saleID)
}

// PurchaseService writes the ledger side of supplier purchases.
type PurchaseService struct {
	BaseService
	txManager     portsrepo.TransactionManager
	purchaseRepo  portsrepo.PurchaseRepositoryFacade
	inventoryRepo portsrepo.InventoryRepositoryFacade
	movementRepo  portsrepo.MovementRepositoryFacade
	ledger        *ledger
}

// NewPurchaseService creates a new PurchaseService.
func NewPurchaseService(repos portsrepo.RepositoryProvider, options ...ServiceOption) *PurchaseService {
	return &PurchaseService{
		BaseService:   applyOptions(options),
		txManager:     repos.TxManager,
		purchaseRepo:  repos.PurchaseRepo,
		inventoryRepo: repos.InventoryRepo,
		movementRepo:  repos.MovementRepo,
		ledger:        newLedger(repos),
	}
}

var _ portssvc.PurchaseSvcFacade = (*PurchaseService)(nil)

// CreatePurchase records a purchase, puts its goods into stock at cost and books the optional
// initial payment.
func (s *PurchaseService) CreatePurchase(ctx context.Context, req dto.CreatePurchaseRequest, userID string) (*domain.Purchase, error) {
	if strings.TrimSpace(req.SupplierID) == "" {
		return nil, apperrors.NewValidationError("supplier is required")
	}
	if len(req.Items) == 0 {
		return nil, apperrors.NewValidationError("a purchase needs at least one item")
	}

	now := s.Now()
	purchase := domain.Purchase{
		PurchaseID:     s.NewID(),
		SupplierID:     req.SupplierID,
		DocumentDate:   req.DocumentDate.UTC(),
		PaidAmount:     decimal.Zero,
		NoteAdjustment: decimal.Zero,
		IsComplete:     true,
		AuditFields:    domain.NewAuditFields(userID, now),
	}
	total := decimal.Zero
	changes := make([]domain.StockChange, 0, len(req.Items))
	for _, it := range req.Items {
		if it.Quantity.LessThanOrEqual(decimal.Zero) || it.UnitCost.LessThan(decimal.Zero) {
			return nil, apperrors.NewValidationError("item %s needs a positive quantity and a non-negative cost", it.ProductID)
		}
		purchase.Items = append(purchase.Items, domain.PurchaseItem{
			PurchaseItemID:   s.NewID(),
			PurchaseID:       purchase.PurchaseID,
			ProductID:        it.ProductID,
			Quantity:         it.Quantity,
			UnitCost:         it.UnitCost,
			ReturnedQuantity: decimal.Zero,
		})
		cost := it.Quantity.Mul(it.UnitCost)
		total = total.Add(cost)
		changes = append(changes, domain.StockChange{ProductID: it.ProductID, QuantityDelta: it.Quantity, ValueDelta: cost})
	}
	purchase.TotalAmount = total
	purchase.Recalculate()

	var payment *domain.Movement
	err := s.txManager.WithinTx(ctx, func(tx pgx.Tx) error {
		if err := s.purchaseRepo.SavePurchase(ctx, tx, purchase); err != nil {
			return err
		}
		if err := s.inventoryRepo.ApplyStockChanges(ctx, tx, changes, now); err != nil {
			return err
		}
		if req.InitialPayment != nil {
			m := newMovement(s.NewID(), domain.PurchasePayment, req.InitialPayment.Amount, req.InitialPayment.AccountID,
				paymentTime(req.InitialPayment.PaidAt, now), req.InitialPayment.Description, userID, now)
			linkDocument(&m, domain.DocumentPurchase, purchase.PurchaseID, purchase.SupplierID)
			if err := s.ledger.post(ctx, tx, m, userID, now); err != nil {
				return err
			}
			settled, err := s.ledger.settlePurchase(ctx, tx, purchase.PurchaseID, m.Amount, userID, now)
			if err != nil {
				return err
			}
			purchase = *settled
			payment = &m
		}
		return nil
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to create purchase", slog.String("supplier_id", req.SupplierID))
		return nil, err
	}
	if payment != nil {
		metrics.MovementsRecorded.WithLabelValues(string(payment.Kind)).Inc()
	}

	s.LogInfo(ctx, "Purchase created",
		slog.String("purchase_id", purchase.PurchaseID),
		slog.String("total", purchase.TotalAmount.String()))
	return &purchase, nil
}

// GetPurchase returns a live purchase with its items.
func (s *PurchaseService) GetPurchase(ctx context.Context, purchaseID string) (*domain.Purchase, error) {
	purchase, err := s.purchaseRepo.FindPurchaseByID(ctx, nil, purchaseID)
	if err != nil {
		if !errors.Is(err, apperrors.ErrNotFound) {
			s.LogError(ctx, err, "Failed to find purchase", slog.String("purchase_id", purchaseID))
		}
		return nil, err
	}
	return purchase, nil
}

// RecordPurchasePayment books a payment to the supplier. Paying more than is outstanding is rejected.
func (s *PurchaseService) RecordPurchasePayment(ctx context.Context, purchaseID string, req dto.PaymentRequest, userID string) (*domain.Purchase, *domain.Movement, error) {
	now := s.Now()
	var (
		purchase *domain.Purchase
		m        domain.Movement
	)
	err := s.txManager.WithinTx(ctx, func(tx pgx.Tx) error {
		current, err := s.purchaseRepo.FindPurchaseByID(ctx, tx, purchaseID)
		if err != nil {
			return err
		}
		m = newMovement(s.NewID(), domain.PurchasePayment, req.Amount, req.AccountID, paymentTime(req.PaidAt, now), req.Description, userID, now)
		linkDocument(&m, domain.DocumentPurchase, purchaseID, current.SupplierID)
		if err := s.ledger.post(ctx, tx, m, userID, now); err != nil {
			return err
		}
		purchase, err = s.ledger.settlePurchase(ctx, tx, purchaseID, req.Amount, userID, now)
		return err
	})
	if err != nil {
		s.LogError(ctx, err, "Failed to record purchase payment", slog.String("purchase_id", purchaseID))
		return nil, nil, err
	}
	metrics.MovementsRecorded.WithLabelValues(string(m.Kind)).Inc()

	s.LogInfo(ctx, "Purchase payment recorded",
		slog.String("purchase_id", purchaseID),
		slog.String("movement_id", m.MovementID))
	return purchase, &m, nil
}

// ListPurchaseMovements lists the effective movements settling a purchase.
func (s *PurchaseService) ListPurchaseMovements(ctx context.Context, purchaseID string) ([]domain.Movement, error) {
	if _, err := s.GetPurchase(ctx, purchaseID); err != nil {
		return nil, err
	}
	return s.movementRepo.ListMovementsForDocument(ctx, nil, domain.DocumentPurchase, purchaseID)
}
