package handlers

import (
	"log/slog"
	"net/http"

	portssvc "github.com/SscSPs/shop_ledger/internal/core/ports/services"
	"github.com/SscSPs/shop_ledger/internal/dto"
	"github.com/SscSPs/shop_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

type movementHandler struct {
	movementService portssvc.MovementSvcFacade
}

func registerMovementRoutes(rg *gin.RouterGroup, movementService portssvc.MovementSvcFacade) {
	h := &movementHandler{movementService: movementService}

	movements := rg.Group("/movements")
	{
		movements.POST("", h.recordMovement)
		movements.GET("", h.listMovements)
		movements.GET("/:id", h.getMovement)
		movements.PUT("/:id/amount", h.editMovementAmount)
		movements.POST("/:id/void", h.voidMovement)
	}
}

// recordMovement godoc
// @Summary Record a capital movement
// @Description Records a contribution, withdrawal, expenditure or tax payment. Without an account the movement is unattributed.
// @Tags movements
// @Accept  json
// @Produce  json
// @Param   movement body dto.RecordMovementRequest true "Movement details"
// @Success 201 {object} dto.MovementResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Account not found"
// @Failure 500 {object} map[string]string "Failed to record movement"
// @Security BearerAuth
// @Router /movements [post]
func (h *movementHandler) recordMovement(c *gin.Context) {
	var req dto.RecordMovementRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	m, err := h.movementService.RecordMovement(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "Failed to record movement")
		return
	}
	c.JSON(http.StatusCreated, dto.ToMovementResponse(m))
}

// listMovements godoc
// @Summary List movements
// @Description Lists movements newest first with token pagination.
// @Tags movements
// @Produce  json
// @Param   accountID query string false "Account filter"
// @Param   kind query string false "Movement kind filter"
// @Param   from query string false "Occurred at or after (RFC3339)"
// @Param   to query string false "Occurred before (RFC3339)"
// @Param   limit query int false "Page size" default(20)
// @Param   nextToken query string false "Token from the previous page"
// @Success 200 {object} dto.ListMovementsResponse
// @Failure 400 {object} map[string]string "Invalid query parameters"
// @Failure 500 {object} map[string]string "Failed to list movements"
// @Security BearerAuth
// @Router /movements [get]
func (h *movementHandler) listMovements(c *gin.Context) {
	var params dto.ListMovementsParams
	if !bindQuery(c, &params) {
		return
	}
	movements, next, err := h.movementService.ListMovements(c.Request.Context(), params)
	if err != nil {
		respondError(c, err, "Failed to list movements")
		return
	}
	c.JSON(http.StatusOK, dto.ToListMovementsResponse(movements, next))
}

// getMovement godoc
// @Summary Get a movement
// @Tags movements
// @Produce  json
// @Param   id path string true "Movement ID"
// @Success 200 {object} dto.MovementResponse
// @Failure 404 {object} map[string]string "Movement not found"
// @Security BearerAuth
// @Router /movements/{id} [get]
func (h *movementHandler) getMovement(c *gin.Context) {
	m, err := h.movementService.GetMovement(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve movement")
		return
	}
	c.JSON(http.StatusOK, dto.ToMovementResponse(m))
}

// editMovementAmount godoc
// @Summary Edit the amount of a movement
// @Description Propagates the difference to the account balance and the linked document.
// @Tags movements
// @Accept  json
// @Produce  json
// @Param   id path string true "Movement ID"
// @Param   amount body dto.EditMovementAmountRequest true "New amount"
// @Success 200 {object} dto.MovementResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Movement not found"
// @Failure 409 {object} map[string]string "Movement cannot be edited"
// @Failure 422 {object} map[string]string "Document would be overpaid"
// @Security BearerAuth
// @Router /movements/{id}/amount [put]
func (h *movementHandler) editMovementAmount(c *gin.Context) {
	var req dto.EditMovementAmountRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	m, err := h.movementService.EditMovementAmount(c.Request.Context(), c.Param("id"), req, userID)
	if err != nil {
		respondError(c, err, "Failed to edit movement")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Movement amount edited", slog.String("movement_id", m.MovementID))
	c.JSON(http.StatusOK, dto.ToMovementResponse(m))
}

// voidMovement godoc
// @Summary Void a movement
// @Description Tombstones the movement and reverses its account and document effects.
// @Tags movements
// @Produce  json
// @Param   id path string true "Movement ID"
// @Success 200 {object} dto.MovementResponse
// @Failure 404 {object} map[string]string "Movement not found"
// @Failure 409 {object} map[string]string "Movement already voided"
// @Security BearerAuth
// @Router /movements/{id}/void [post]
func (h *movementHandler) voidMovement(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	m, err := h.movementService.VoidMovement(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err, "Failed to void movement")
		return
	}
	c.JSON(http.StatusOK, dto.ToMovementResponse(m))
}
