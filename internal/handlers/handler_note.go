package handlers

import (
	"log/slog"
	"net/http"

	"github.com/SscSPs/shop_ledger/internal/core/domain"
	portssvc "github.com/SscSPs/shop_ledger/internal/core/ports/services"
	"github.com/SscSPs/shop_ledger/internal/dto"
	"github.com/SscSPs/shop_ledger/internal/middleware"
	"github.com/gin-gonic/gin"
)

// noteHandler serves credit notes or debit notes depending on side.
type noteHandler struct {
	side        domain.NoteSide
	noteService portssvc.NoteSvcFacade
}

// registerNoteRoutes mounts the note lifecycle under path for one side.
func registerNoteRoutes(rg *gin.RouterGroup, path string, side domain.NoteSide, noteService portssvc.NoteSvcFacade) {
	h := &noteHandler{side: side, noteService: noteService}

	notes := rg.Group(path)
	{
		notes.POST("", h.createNote)
		notes.GET("", h.listNotes)
		notes.GET("/:id", h.getNote)
		notes.PUT("/:id", h.updateNote)
		notes.DELETE("/:id", h.deleteNote)
		notes.POST("/:id/apply", h.applyNote)
		notes.POST("/:id/refund", h.refundNote)
		notes.POST("/:id/cancel", h.cancelNote)
	}
}

// createNote godoc
// @Summary Create a pending credit or debit note
// @Tags notes
// @Accept  json
// @Produce  json
// @Param   note body dto.CreateNoteRequest true "Note details"
// @Success 201 {object} dto.NoteResponse
// @Failure 400 {object} map[string]string "Invalid input"
// @Failure 404 {object} map[string]string "Target document not found"
// @Security BearerAuth
// @Router /creditnotes [post]
// @Router /debitnotes [post]
func (h *noteHandler) createNote(c *gin.Context) {
	var req dto.CreateNoteRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	note, err := h.noteService.CreateNote(c.Request.Context(), h.side, req, userID)
	if err != nil {
		respondError(c, err, "Failed to create note")
		return
	}
	c.JSON(http.StatusCreated, dto.ToNoteResponse(note, nil))
}

// listNotes godoc
// @Summary List the notes issued against a document
// @Tags notes
// @Produce  json
// @Param   documentId query string true "Sale or purchase ID"
// @Success 200 {array} dto.NoteResponse
// @Security BearerAuth
// @Router /creditnotes [get]
// @Router /debitnotes [get]
func (h *noteHandler) listNotes(c *gin.Context) {
	var params dto.ListNotesParams
	if !bindQuery(c, &params) {
		return
	}
	notes, err := h.noteService.ListNotesForDocument(c.Request.Context(), h.side, params.DocumentID)
	if err != nil {
		respondError(c, err, "Failed to list notes")
		return
	}
	c.JSON(http.StatusOK, dto.ToListNoteResponse(notes))
}

// getNote godoc
// @Summary Get a note with its allocations
// @Tags notes
// @Produce  json
// @Param   id path string true "Note ID"
// @Success 200 {object} dto.NoteResponse
// @Failure 404 {object} map[string]string "Note not found"
// @Security BearerAuth
// @Router /creditnotes/{id} [get]
// @Router /debitnotes/{id} [get]
func (h *noteHandler) getNote(c *gin.Context) {
	note, allocations, err := h.noteService.GetNote(c.Request.Context(), h.side, c.Param("id"))
	if err != nil {
		respondError(c, err, "Failed to retrieve note")
		return
	}
	c.JSON(http.StatusOK, dto.ToNoteResponse(note, allocations))
}

// updateNote godoc
// @Summary Update a pending note
// @Tags notes
// @Accept  json
// @Produce  json
// @Param   id path string true "Note ID"
// @Param   note body dto.UpdateNoteRequest true "Fields to change"
// @Success 200 {object} dto.NoteResponse
// @Failure 409 {object} map[string]string "Note is no longer pending"
// @Security BearerAuth
// @Router /creditnotes/{id} [put]
// @Router /debitnotes/{id} [put]
func (h *noteHandler) updateNote(c *gin.Context) {
	var req dto.UpdateNoteRequest
	if !bindJSON(c, &req) {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	note, err := h.noteService.UpdateNote(c.Request.Context(), h.side, c.Param("id"), req, userID)
	if err != nil {
		respondError(c, err, "Failed to update note")
		return
	}
	c.JSON(http.StatusOK, dto.ToNoteResponse(note, nil))
}

// deleteNote godoc
// @Summary Delete a pending note
// @Tags notes
// @Param   id path string true "Note ID"
// @Success 204 "No Content"
// @Failure 409 {object} map[string]string "Note is no longer pending"
// @Security BearerAuth
// @Router /creditnotes/{id} [delete]
// @Router /debitnotes/{id} [delete]
func (h *noteHandler) deleteNote(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	if err := h.noteService.DeleteNote(c.Request.Context(), h.side, c.Param("id"), userID); err != nil {
		respondError(c, err, "Failed to delete note")
		return
	}
	c.Status(http.StatusNoContent)
}

// applyNote godoc
// @Summary Apply a note
// @Description Allocates the note over the party's open documents, preferred document first, then oldest first. Any remainder becomes a standing balance.
// @Tags notes
// @Accept  json
// @Produce  json
// @Param   id path string true "Note ID"
// @Param   apply body dto.ApplyNoteRequest false "Preferred document"
// @Success 200 {object} dto.NoteResponse
// @Failure 400 {object} map[string]string "Party mismatch or invalid items"
// @Failure 409 {object} map[string]string "Note is not pending"
// @Security BearerAuth
// @Router /creditnotes/{id}/apply [post]
// @Router /debitnotes/{id}/apply [post]
func (h *noteHandler) applyNote(c *gin.Context) {
	var req dto.ApplyNoteRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	note, allocations, err := h.noteService.ApplyNote(c.Request.Context(), h.side, c.Param("id"), req, userID)
	if err != nil {
		respondError(c, err, "Failed to apply note")
		return
	}
	middleware.GetLoggerFromCtx(c.Request.Context()).Info("Note applied",
		slog.String("note_id", note.NoteID),
		slog.Int("allocations", len(allocations)))
	c.JSON(http.StatusOK, dto.ToNoteResponse(note, allocations))
}

// refundNote godoc
// @Summary Refund the standing remainder of a note
// @Tags notes
// @Accept  json
// @Produce  json
// @Param   id path string true "Note ID"
// @Param   refund body dto.RefundNoteRequest false "Refund account"
// @Success 200 {object} dto.NoteResponse
// @Failure 409 {object} map[string]string "Nothing left to refund"
// @Security BearerAuth
// @Router /creditnotes/{id}/refund [post]
// @Router /debitnotes/{id}/refund [post]
func (h *noteHandler) refundNote(c *gin.Context) {
	var req dto.RefundNoteRequest
	if !bindOptionalJSON(c, &req) {
		return
	}
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	note, err := h.noteService.RefundNote(c.Request.Context(), h.side, c.Param("id"), req, userID)
	if err != nil {
		respondError(c, err, "Failed to refund note")
		return
	}
	c.JSON(http.StatusOK, dto.ToNoteResponse(note, nil))
}

// cancelNote godoc
// @Summary Cancel a note
// @Description A pending note is simply cancelled; an applied note forfeits its standing remainder.
// @Tags notes
// @Produce  json
// @Param   id path string true "Note ID"
// @Success 200 {object} dto.NoteResponse
// @Failure 409 {object} map[string]string "Note cannot be cancelled"
// @Security BearerAuth
// @Router /creditnotes/{id}/cancel [post]
// @Router /debitnotes/{id}/cancel [post]
func (h *noteHandler) cancelNote(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	note, err := h.noteService.CancelNote(c.Request.Context(), h.side, c.Param("id"), userID)
	if err != nil {
		respondError(c, err, "Failed to cancel note")
		return
	}
	c.JSON(http.StatusOK, dto.ToNoteResponse(note, nil))
}
