package handlers

import (
	"net/http"

	portssvc "github.com/SscSPs/shop_ledger/internal/core/ports/services"
	"github.com/SscSPs/shop_ledger/internal/dto"
	"github.com/gin-gonic/gin"
)

type transferHandler struct {
	transferService portssvc.TransferSvcFacade
}

func registerTransferRoutes(rg *gin.RouterGroup, transferService portssvc.TransferSvcFacade) {
	h := &transferHandler{transferService: transferService}

	transfers := rg.Group("/transfers")
	{
		transfers.POST("", h.createTransfer)
		transfers.GET("", h.listTransfers)
		transfers.GET("/:id", h.getTransfer)
		transfers.POST("/:id/complete", h.completeTransfer)
		transfers.POST("/:id/reverse", h.reverseTransfer)
	}
}

// createTransfer godoc
// @Summary Create a transfer between two accounts
// @Description Completes the transfer immediately unless it is requested as pending.
// @Tags transfers
// @Accept  json
// @Produce  json
// @Param   transfer body dto.CreateTransferRequest true "Transfer details"
// @Success 201 {object} dto.TransferResponse
// @Failure 400 {object} map[string]string "Invalid input or inactive account"
// @Failure 404 {object} map[string]string "Account not found"
// @Security BearerAuth
// @Router /transfers [post]
func (h *transferHandler) createTransfer(c *gin.Context) {
	var req dto.CreateTransferRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	t, err := h.transferService.CreateTransfer(c.Request.Context(), req, userID)
	if err != nil {
		respondError(c, err, "Failed to create transfer")
		return
	}
	c.JSON(http.StatusCreated, dto.ToTransferResponse(t))
}

// listTransfers godoc
// @Summary List transfers
// @Tags transfers
// @Produce  json
// @Param   accountID query string false "Either leg's account"
// @Param   limit query int false "Page size" default(20)
// @Param   offset query int false "Offset" default(0)
// @Success 200 {array} dto.TransferResponse
// @Security BearerAuth
// @Router /transfers [get]
func (h *transferHandler) listTransfers(c *gin.Context) {
	var params dto.ListTransfersParams
	if !bindQuery(c, &params) {
		return
	}
	transfers, err := h.transferService.ListTransfers(c.Request.Context(), params)
	if err != nil {
		respondError(c, err, "Failed to list transfers")
		return
	}
	c.JSON(http.StatusOK, dto.ToListTransferResponse(transfers))
}

// getTransfer godoc
// @Summary Get a transfer
// @Tags transfers
// @Produce  json
// @Param   id path string true "Transfer ID"
// @Success 200 {object} dto.TransferResponse
// @Failure 404 {object} map[string]string "Transfer not found"
// @Security BearerAuth
// @Router /transfers/{id} [get]
func (h *transferHandler) getTransfer(c *gin.Context) {
	t, err := h.transferService.GetTransfer(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve transfer")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransferResponse(t))
}

// completeTransfer godoc
// @Summary Complete a pending transfer
// @Tags transfers
// @Produce  json
// @Param   id path string true "Transfer ID"
// @Success 200 {object} dto.TransferResponse
// @Failure 409 {object} map[string]string "Transfer is not pending"
// @Security BearerAuth
// @Router /transfers/{id}/complete [post]
func (h *transferHandler) completeTransfer(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	t, err := h.transferService.CompleteTransfer(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err, "Failed to complete transfer")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransferResponse(t))
}

// reverseTransfer godoc
// @Summary Reverse a completed transfer
// @Tags transfers
// @Produce  json
// @Param   id path string true "Transfer ID"
// @Success 200 {object} dto.TransferResponse
// @Failure 409 {object} map[string]string "Transfer is not completed"
// @Security BearerAuth
// @Router /transfers/{id}/reverse [post]
func (h *transferHandler) reverseTransfer(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	t, err := h.transferService.ReverseTransfer(c.Request.Context(), c.Param("id"), userID)
	if err != nil {
		respondError(c, err, "Failed to reverse transfer")
		return
	}
	c.JSON(http.StatusOK, dto.ToTransferResponse(t))
}
