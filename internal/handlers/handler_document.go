package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/shop_ledger/internal/core/ports/services"
	"github.com/SscSPs/shop_ledger/internal/dto"
	"github.com/SscSPs/shop_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// documentHandler serves the ledger side of sales and purchases.
type documentHandler struct {
	saleService     portssvc.SaleSvcFacade
	purchaseService portssvc.PurchaseSvcFacade
}

func registerSaleRoutes(rg *gin.RouterGroup, saleService portssvc.SaleSvcFacade) {
	h := &documentHandler{saleService: saleService}

	sales := rg.Group("/sales")
	{
		sales.POST("", h.createSale)
		sales.GET("/:id", h.getSale)
		sales.GET("/:id/movements", h.listSaleMovements)
		sales.POST("/:id/payments", h.recordSalePayment)
		sales.POST("/:id/refund", h.refundSale)
	}
}

func registerPurchaseRoutes(rg *gin.RouterGroup, purchaseService portssvc.PurchaseSvcFacade) {
	h := &documentHandler{purchaseService: purchaseService}

	purchases := rg.Group("/purchases")
	{
		purchases.POST("", h.createPurchase)
		purchases.GET("/:id", h.getPurchase)
		purchases.GET("/:id/movements", h.listPurchaseMovements)
		purchases.POST("/:id/payments", h.recordPurchasePayment)
	}
}

// createSale godoc
// @Summary Record a sale
// @Description Records the sale total, takes the items out of stock and books an optional initial payment.
// @Tags sales
// @Accept  json
// @Produce  json
// @Param   sale body dto.CreateSaleRequest true "Sale details"
// @Success 201 {object} dto.SaleResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 422 {object} map[string]string "Initial payment exceeds the total"
// @Security BearerAuth
// @Router /sales [post]
func (h *documentHandler) createSale(c *gin.Context) {
	var req dto.CreateSaleRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	sale, err := h.saleService.CreateSale(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "Failed to create sale")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Sale created", slog.String("sale_id", sale.SaleID))
	c.JSON(http.StatusCreated, dto.ToSaleResponse(sale))
}

// getSale godoc
// @Summary Get a sale
// @Tags sales
// @Produce  json
// @Param   id path string true "Sale ID"
// @Success 200 {object} dto.SaleResponse
// @Failure 404 {object} map[string]string "Sale not found"
// @Security BearerAuth
// @Router /sales/{id} [get]
func (h *documentHandler) getSale(c *gin.Context) {
	sale, err := h.saleService.GetSale(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve sale")
		return
	}
	c.JSON(http.StatusOK, dto.ToSaleResponse(sale))
}

// listSaleMovements godoc
// @Summary List the movements of a sale
// @Tags sales
// @Produce  json
// @Param   id path string true "Sale ID"
// @Success 200 {object} dto.ListMovementsResponse
// @Security BearerAuth
// @Router /sales/{id}/movements [get]
func (h *documentHandler) listSaleMovements(c *gin.Context) {
	movements, err := h.saleService.ListSaleMovements(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to list sale movements")
		return
	}
	c.JSON(http.StatusOK, dto.ToListMovementsResponse(movements, nil))
}

// recordSalePayment godoc
// @Summary Record a customer payment
// @Tags sales
// @Accept  json
// @Produce  json
// @Param   id path string true "Sale ID"
// @Param   payment body dto.PaymentRequest true "Payment"
// @Success 201 {object} dto.DocumentPaymentResponse
// @Failure 404 {object} map[string]string "Sale not found"
// @Failure 409 {object} map[string]string "Sale has been refunded"
// @Failure 422 {object} map[string]string "Payment exceeds the outstanding amount"
// @Security BearerAuth
// @Router /sales/{id}/payments [post]
func (h *documentHandler) recordSalePayment(c *gin.Context) {
	var req dto.PaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	sale, m, err := h.saleService.RecordSalePayment(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		respondError(c, err, "Failed to record sale payment")
		return
	}
	c.JSON(http.StatusCreated, dto.ToDocumentPaymentResponse(dto.ToSaleResponse(sale), m))
}

// refundSale godoc
// @Summary Refund a sale
// @Description Pays back everything paid on the sale and returns the remaining items to stock.
// @Tags sales
// @Accept  json
// @Produce  json
// @Param   id path string true "Sale ID"
// @Param   refund body dto.RefundSaleRequest false "Refund options"
// @Success 200 {object} dto.DocumentPaymentResponse
// @Failure 404 {object} map[string]string "Sale not found"
// @Failure 409 {object} map[string]string "Sale already refunded"
// @Security BearerAuth
// @Router /sales/{id}/refund [post]
func (h *documentHandler) refundSale(c *gin.Context) {
	var req dto.RefundSaleRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	sale, m, err := h.saleService.RefundSale(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		respondError(c, err, "Failed to refund sale")
		return
	}
	c.JSON(http.StatusOK, dto.ToDocumentPaymentResponse(dto.ToSaleResponse(sale), m))
}

// createPurchase godoc
// @Summary Record a purchase
// @Description Records the purchase total, stocks the items at cost and books an optional initial payment.
// @Tags purchases
// @Accept  json
// @Produce  json
// @Param   purchase body dto.CreatePurchaseRequest true "Purchase details"
// @Success 201 {object} dto.PurchaseResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 422 {object} map[string]string "Initial payment exceeds the total"
// @Security BearerAuth
// @Router /purchases [post]
func (h *documentHandler) createPurchase(c *gin.Context) {
	var req dto.CreatePurchaseRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	purchase, err := h.purchaseService.CreatePurchase(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "Failed to create purchase")
		return
	}
	c.JSON(http.StatusCreated, dto.ToPurchaseResponse(purchase))
}

// getPurchase godoc
// @Summary Get a purchase
// @Tags purchases
// @Produce  json
// @Param   id path string true "Purchase ID"
// @Success 200 {object} dto.PurchaseResponse
// @Failure 404 {object} map[string]string "Purchase not found"
// @Security BearerAuth
// @Router /purchases/{id} [get]
func (h *documentHandler) getPurchase(c *gin.Context) {
	purchase, err := h.purchaseService.GetPurchase(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve purchase")
		return
	}
	c.JSON(http.StatusOK, dto.ToPurchaseResponse(purchase))
}

// listPurchaseMovements godoc
// @Summary List the movements of a purchase
// @Tags purchases
// @Produce  json
// @Param   id path string true "Purchase ID"
// @Success 200 {object} dto.ListMovementsResponse
// @Security BearerAuth
// @Router /purchases/{id}/movements [get]
func (h *documentHandler) listPurchaseMovements(c *gin.Context) {
	movements, err := h.purchaseService.ListPurchaseMovements(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to list purchase movements")
		return
	}
	c.JSON(http.StatusOK, dto.ToListMovementsResponse(movements, nil))
}

// recordPurchasePayment godoc
// @Summary Record a supplier payment
// @Tags purchases
// @Accept  json
// @Produce  json
// @Param   id path string true "Purchase ID"
// @Param   payment body dto.PaymentRequest true "Payment"
// @Success 201 {object} dto.DocumentPaymentResponse
// @Failure 404 {object} map[string]string "Purchase not found"
// @Failure 422 {object} map[string]string "Payment exceeds the outstanding amount"
// @Security BearerAuth
// @Router /purchases/{id}/payments [post]
func (h *documentHandler) recordPurchasePayment(c *gin.Context) {
	var req dto.PaymentRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	purchase, m, err := h.purchaseService.RecordPurchasePayment(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		respondError(c, err, "Failed to record purchase payment")
		return
	}
	c.JSON(http.StatusCreated, dto.ToDocumentPaymentResponse(dto.ToPurchaseResponse(purchase), m))
}
