package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/shop_ledger/internal/core/ports/services"
	"github.com/SscSPs/shop_ledger/internal/dto"
	"github.com/gin-gonic/gin"
)

type reconciliationHandler struct {
	reconciliationService portssvc.ReconciliationSvcFacade
}

func registerReconciliationRoutes(rg *gin.RouterGroup, reconciliationService portssvc.ReconciliationSvcFacade) {
	h := &reconciliationHandler{reconciliationService: reconciliationService}

	recs := rg.Group("/reconciliations")
	{
		recs.GET("", h.listReconciliations)
		recs.POST("/open", h.open)
		recs.POST("/close", h.close)
		recs.POST("/open-all", h.openAll)
		recs.POST("/close-all", h.closeAll)
	}
}

func requireBusinessDate(c *gin.Context, d dto.BusinessDate) bool {
	if d.IsZero() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "businessDateUtc is required"})
		return false
	}
	return true
}

// open godoc
// @Summary Open an account's business day
// @Description Captures the opening system balance and, when given, the counted balance and variance.
// @Tags reconciliations
// @Accept  json
// @Produce  json
// @Param   reconciliation body dto.ReconciliationRequest true "Account and business day"
// @Success 201 {object} dto.ReconciliationResponse
// @Failure 400 {object} map[string]string "Invalid input or unknown account"
// @Failure 409 {object} map[string]string "Day already opened"
// @Security BearerAuth
// @Router /reconciliations/open [post]
func (h *reconciliationHandler) open(c *gin.Context) {
	var req dto.ReconciliationRequest
	if !bindJSON(c, &req) || !requireBusinessDate(c, req.BusinessDateUTC) {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	rec, err := h.reconciliationService.Open(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "Failed to open reconciliation")
		return
	}
	c.JSON(http.StatusCreated, dto.ToReconciliationResponse(rec))
}

// close godoc
// @Summary Close an account's business day
// @Tags reconciliations
// @Accept  json
// @Produce  json
// @Param   reconciliation body dto.ReconciliationRequest true "Account and business day"
// @Success 200 {object} dto.ReconciliationResponse
// @Failure 400 {object} map[string]string "Invalid input or unknown account"
// @Failure 404 {object} map[string]string "Day was never opened"
// @Failure 409 {object} map[string]string "Day already closed"
// @Security BearerAuth
// @Router /reconciliations/close [post]
func (h *reconciliationHandler) close(c *gin.Context) {
	var req dto.ReconciliationRequest
	if !bindJSON(c, &req) || !requireBusinessDate(c, req.BusinessDateUTC) {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	rec, err := h.reconciliationService.Close(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "Failed to close reconciliation")
		return
	}
	c.JSON(http.StatusOK, dto.ToReconciliationResponse(rec))
}

// openAll godoc
// @Summary Open the business day for every non-deleted account
// @Description Accounts that already have a row for the day are skipped.
// @Tags reconciliations
// @Accept  json
// @Produce  json
// @Param   day body dto.BulkReconciliationRequest true "Business day"
// @Success 200 {object} dto.BulkReconciliationResponse
// @Security BearerAuth
// @Router /reconciliations/open-all [post]
func (h *reconciliationHandler) openAll(c *gin.Context) {
	var req dto.BulkReconciliationRequest
	if !bindJSON(c, &req) || !requireBusinessDate(c, req.BusinessDateUTC) {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	result, err := h.reconciliationService.OpenAll(c.Request.Context(), req.BusinessDateUTC.Time, userID)
	if err != nil {
		respondError(c, err, "Failed to open business day")
		return
	}
	c.JSON(http.StatusOK, dto.ToBulkReconciliationResponse(result))
}

// closeAll godoc
// @Summary Close the business day for every non-deleted account
// @Description Accounts that were never opened or are already closed are skipped.
// @Tags reconciliations
// @Accept  json
// @Produce  json
// @Param   day body dto.BulkReconciliationRequest true "Business day"
// @Success 200 {object} dto.BulkReconciliationResponse
// @Security BearerAuth
// @Router /reconciliations/close-all [post]
func (h *reconciliationHandler) closeAll(c *gin.Context) {
	var req dto.BulkReconciliationRequest
	if !bindJSON(c, &req) || !requireBusinessDate(c, req.BusinessDateUTC) {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	result, err := h.reconciliationService.CloseAll(c.Request.Context(), req.BusinessDateUTC.Time, userID)
	if err != nil {
		respondError(c, err, "Failed to close business day")
		return
	}
	c.JSON(http.StatusOK, dto.ToBulkReconciliationResponse(result))
}

// listReconciliations godoc
// @Summary List reconciliation rows of a business day
// @Tags reconciliations
// @Produce  json
// @Param   businessDateUtc query string true "Business day (YYYY-MM-DD)"
// @Param   financialAccountId query string false "Only this account"
// @Success 200 {array} dto.ReconciliationResponse
// @Failure 404 {object} map[string]string "No row for the account and day"
// @Security BearerAuth
// @Router /reconciliations [get]
func (h *reconciliationHandler) listReconciliations(c *gin.Context) {
	var params dto.ListReconciliationsParams
	if !bindQuery(c, &params) {
		return
	}
	if params.FinancialAccountID != nil {
		rec, err := h.reconciliationService.Get(c.Request.Context(), *params.FinancialAccountID, params.BusinessDateUTC)
		if err != nil {
			respondError(c, err, "Failed to retrieve reconciliation")
			return
		}
		c.JSON(http.StatusOK, []dto.ReconciliationResponse{dto.ToReconciliationResponse(rec)})
		return
	}
	recs, err := h.reconciliationService.ListForDay(c.Request.Context(), params.BusinessDateUTC)
	if err != nil {
		respondError(c, err, "Failed to list reconciliations")
		return
	}
	c.JSON(http.StatusOK, dto.ToListReconciliationResponse(recs))
}
