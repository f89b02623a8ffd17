package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"loremaster/internal/entities"
	"loremaster/internal/usecases"
)

func (h *Handler) ListCampaigns(c *gin.Context) {
	list, err := h.uc.Campaigns.List(c.Request.Context(), h.identity(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	if list == nil {
		list = []entities.CampaignMembership{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) CreateCampaign(c *gin.Context) {
	var req entities.Campaign
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, bindError(err))
		return
	}
	req.Name = strings.TrimSpace(req.Name)

	id := h.identity(c)
	if err := h.uc.Campaigns.Create(c.Request.Context(), id, &req); err != nil {
		h.fail(c, err)
		return
	}
	h.log.Info().Int("campaign_id", req.ID).Int("user_id", id.UserID).Msg("campaign created")
	c.JSON(http.StatusCreated, req)
}

func (h *Handler) GetCampaign(c *gin.Context) {
	m, err := h.uc.Campaigns.Get(c.Request.Context(), h.viewer(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) UpdateCampaign(c *gin.Context) {
	var req entities.Campaign
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, bindError(err))
		return
	}
	req.Name = strings.TrimSpace(req.Name)

	updated, err := h.uc.Campaigns.Update(c.Request.Context(), h.viewer(c), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, updated)
}

func (h *Handler) DeleteCampaign(c *gin.Context) {
	v := h.viewer(c)
	if err := h.uc.Campaigns.Delete(c.Request.Context(), v); err != nil {
		h.fail(c, err)
		return
	}
	h.log.Info().Int("campaign_id", v.CampaignID).Int("user_id", v.UserID).Msg("campaign deleted")
	c.Status(http.StatusNoContent)
}

func (h *Handler) ListParticipants(c *gin.Context) {
	list, err := h.uc.Campaigns.ListParticipants(c.Request.Context(), h.viewer(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	if list == nil {
		list = []entities.Participant{}
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handler) InviteParticipant(c *gin.Context) {
	var req usecases.InviteInput
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, bindError(err))
		return
	}
	req.Username = strings.TrimSpace(req.Username)

	p, err := h.uc.Campaigns.Invite(c.Request.Context(), h.viewer(c), req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

type roleRequest struct {
	Role entities.Role `json:"role"`
}

func (h *Handler) UpdateParticipant(c *gin.Context) {
	userID, err := pathID(c, "userId")
	if err != nil {
		h.fail(c, err)
		return
	}
	var req roleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, bindError(err))
		return
	}

	p, err := h.uc.Campaigns.UpdateParticipantRole(c.Request.Context(), h.viewer(c), userID, req.Role)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) RemoveParticipant(c *gin.Context) {
	userID, err := pathID(c, "userId")
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.uc.Campaigns.RemoveParticipant(c.Request.Context(), h.viewer(c), userID); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
