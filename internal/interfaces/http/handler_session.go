package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"loremaster/internal/entities"
)

func (h *Handler) ListNotes(c *gin.Context) {
	sessionID, err := pathID(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	notes, err := h.uc.Sessions.ListNotes(c.Request.Context(), h.viewer(c), sessionID)
	if err != nil {
		h.fail(c, err)
		return
	}
	if notes == nil {
		notes = []entities.SessionNote{}
	}
	c.JSON(http.StatusOK, notes)
}

func (h *Handler) CreateNote(c *gin.Context) {
	sessionID, err := pathID(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	var req entities.SessionNote
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, bindError(err))
		return
	}
	req.Content = SanitizeString(req.Content)

	n, err := h.uc.Sessions.CreateNote(c.Request.Context(), h.viewer(c), sessionID, &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, n)
}

func (h *Handler) UpdateNote(c *gin.Context) {
	sessionID, err := pathID(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	noteID, err := pathID(c, "noteId")
	if err != nil {
		h.fail(c, err)
		return
	}
	var req entities.SessionNote
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, bindError(err))
		return
	}
	req.Content = SanitizeString(req.Content)

	n, err := h.uc.Sessions.UpdateNote(c.Request.Context(), h.viewer(c), sessionID, noteID, &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, n)
}

func (h *Handler) DeleteNote(c *gin.Context) {
	sessionID, err := pathID(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	noteID, err := pathID(c, "noteId")
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.uc.Sessions.DeleteNote(c.Request.Context(), h.viewer(c), sessionID, noteID); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
