package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"loremaster/internal/apperr"
	"loremaster/internal/usecases"
)

func (h *Handler) Register(c *gin.Context) {
	var req usecases.RegisterInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, bindError(err))
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	req.Email = strings.TrimSpace(req.Email)
	if !ValidUsername(req.Username) {
		h.fail(c, apperr.Validation("username must be 3-50 characters: letters, digits, underscore or hyphen"))
		return
	}

	res, err := h.uc.Auth.Register(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.log.Info().Int("user_id", res.User.ID).Str("username", res.User.Username).Msg("user registered")
	c.JSON(http.StatusCreated, res)
}

func (h *Handler) Login(c *gin.Context) {
	var req usecases.LoginInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, bindError(err))
		return
	}
	req.Username = strings.TrimSpace(req.Username)

	res, err := h.uc.Auth.Login(c.Request.Context(), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *Handler) Me(c *gin.Context) {
	u, err := h.uc.Auth.Me(c.Request.Context(), h.identity(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) ChangePassword(c *gin.Context) {
	var req usecases.ChangePasswordInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, bindError(err))
		return
	}
	if err := h.uc.Auth.ChangePassword(c.Request.Context(), h.identity(c), req); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
