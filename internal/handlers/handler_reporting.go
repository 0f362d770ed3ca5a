package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/shop_ledger/internal/core/ports/services"
	"github.com/SscSPs/shop_ledger/internal/dto"
	"github.com/gin-gonic/gin"
)

// reportingHandler handles HTTP requests related to financial reports
type reportingHandler struct {
	reportingService portssvc.ReportingService
}

// newReportingHandler creates a new reportingHandler
func newReportingHandler(rs portssvc.ReportingService) *reportingHandler {
	return &reportingHandler{
		reportingService: rs,
	}
}

// registerReportingRoutes registers routes related to financial reports
func registerReportingRoutes(rg *gin.RouterGroup, reportingService portssvc.ReportingService) {
	h := newReportingHandler(reportingService)

	cashflow := rg.Group("/cashflow/company")
	{
		cashflow.GET("/today", h.getTodayCashFlow)
		cashflow.GET("/range", h.getRangeCashFlow(true))
		cashflow.GET("/statement", h.getRangeCashFlow(false))
	}
	rg.GET("/balancesheet/today", h.getBalanceSheet)
}

func includeApprox(p dto.CashFlowParams, fallback bool) bool {
	if p.IncludeApproxBalances == nil {
		return fallback
	}
	return *p.IncludeApproxBalances
}

// getTodayCashFlow godoc
// @Summary Cash flow of the current UTC day
// @Description Company-wide unless an account is given. A single account with an open reconciliation is measured from its opening snapshot.
// @Tags reports
// @Produce json
// @Param   includeApproxBalances query bool false "Derive balances from current balances when snapshots are missing" default(true)
// @Param   financialAccountId query string false "Single account"
// @Success 200 {object} dto.CashFlowResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to compose cash flow"
// @Security BearerAuth
// @Router /cashflow/company/today [get]
func (h *reportingHandler) getTodayCashFlow(c *gin.Context) {
	var params dto.CashFlowParams
	if !bindQuery(c, &params) {
		return
	}
	stmt, err := h.reportingService.TodayCashFlow(c.Request.Context(), params.FinancialAccountID, includeApprox(params, true))
	if err != nil {
		respondError(c, err, "Failed to compose cash flow")
		return
	}
	c.JSON(http.StatusOK, dto.ToCashFlowResponse(stmt))
}

// getRangeCashFlow godoc
// @Summary Cash flow over an explicit range
// @Description The range endpoint approximates missing balances by default, the statement endpoint does not.
// @Tags reports
// @Produce json
// @Param   startUtc query string true "Range start (RFC3339, UTC)"
// @Param   endUtc query string true "Range end, exclusive (RFC3339, UTC)"
// @Param   includeApproxBalances query bool false "Derive balances from current balances when snapshots are missing"
// @Param   financialAccountId query string false "Single account"
// @Success 200 {object} dto.CashFlowResponse
// @Failure 400 {object} map[string]string "Missing, inverted or future range"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to compose cash flow"
// @Security BearerAuth
// @Router /cashflow/company/range [get]
// @Router /cashflow/company/statement [get]
func (h *reportingHandler) getRangeCashFlow(defaultApprox bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		var params dto.CashFlowParams
		if !bindQuery(c, &params) {
			return
		}
		if params.StartUTC == nil || params.EndUTC == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "startUtc and endUtc are required"})
			return
		}
		stmt, err := h.reportingService.ComposeCashFlow(c.Request.Context(), portssvc.CashFlowQuery{
			AccountID:   params.FinancialAccountID,
			StartUTC:    *params.StartUTC,
			EndUTC:      *params.EndUTC,
			AllowApprox: includeApprox(params, defaultApprox),
		})
		if err != nil {
			respondError(c, err, "Failed to compose cash flow")
			return
		}
		c.JSON(http.StatusOK, dto.ToCashFlowResponse(stmt))
	}
}

// getBalanceSheet godoc
// @Summary Balance sheet as of now
// @Description The difference between assets and liabilities plus equity is reported, never corrected.
// @Tags reports
// @Produce json
// @Success 200 {object} dto.BalanceSheetResponse
// @Failure 500 {object} map[string]string "Failed to compose balance sheet"
// @Security BearerAuth
// @Router /balancesheet/today [get]
func (h *reportingHandler) getBalanceSheet(c *gin.Context) {
	bs, err := h.reportingService.BalanceSheet(c.Request.Context())
	if err != nil {
		respondError(c, err, "Failed to compose balance sheet")
		return
	}
	c.JSON(http.StatusOK, dto.ToBalanceSheetResponse(bs))
}
