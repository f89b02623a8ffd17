package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"loremaster/internal/entities"
)

// questChild reads :id and, when sub is set, :subId.
func questChild(c *gin.Context, sub bool) (questID, id int, err error) {
	if questID, err = pathID(c, "id"); err != nil {
		return 0, 0, err
	}
	if sub {
		if id, err = pathID(c, "subId"); err != nil {
			return 0, 0, err
		}
	}
	return questID, id, nil
}

func (h *Handler) AddObjective(c *gin.Context) {
	questID, _, err := questChild(c, false)
	if err != nil {
		h.fail(c, err)
		return
	}
	var req entities.QuestObjective
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, bindError(err))
		return
	}
	o, err := h.uc.Quests.AddObjective(c.Request.Context(), h.viewer(c), questID, &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, o)
}

func (h *Handler) UpdateObjective(c *gin.Context) {
	questID, id, err := questChild(c, true)
	if err != nil {
		h.fail(c, err)
		return
	}
	var req entities.QuestObjective
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, bindError(err))
		return
	}
	o, err := h.uc.Quests.UpdateObjective(c.Request.Context(), h.viewer(c), questID, id, &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, o)
}

func (h *Handler) DeleteObjective(c *gin.Context) {
	questID, id, err := questChild(c, true)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.uc.Quests.DeleteObjective(c.Request.Context(), h.viewer(c), questID, id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) AddMilestone(c *gin.Context) {
	questID, _, err := questChild(c, false)
	if err != nil {
		h.fail(c, err)
		return
	}
	var req entities.QuestMilestone
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, bindError(err))
		return
	}
	m, err := h.uc.Quests.AddMilestone(c.Request.Context(), h.viewer(c), questID, &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, m)
}

func (h *Handler) UpdateMilestone(c *gin.Context) {
	questID, id, err := questChild(c, true)
	if err != nil {
		h.fail(c, err)
		return
	}
	var req entities.QuestMilestone
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, bindError(err))
		return
	}
	m, err := h.uc.Quests.UpdateMilestone(c.Request.Context(), h.viewer(c), questID, id, &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *Handler) DeleteMilestone(c *gin.Context) {
	questID, id, err := questChild(c, true)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.uc.Quests.DeleteMilestone(c.Request.Context(), h.viewer(c), questID, id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) AddLink(c *gin.Context) {
	questID, _, err := questChild(c, false)
	if err != nil {
		h.fail(c, err)
		return
	}
	var req entities.QuestLink
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, bindError(err))
		return
	}
	l, err := h.uc.Quests.AddLink(c.Request.Context(), h.viewer(c), questID, &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, l)
}

func (h *Handler) DeleteLink(c *gin.Context) {
	questID, id, err := questChild(c, true)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.uc.Quests.DeleteLink(c.Request.Context(), h.viewer(c), questID, id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type sessionIDsRequest struct {
	SessionIDs []int `json:"session_ids"`
}

func (h *Handler) SetQuestSessions(c *gin.Context) {
	questID, _, err := questChild(c, false)
	if err != nil {
		h.fail(c, err)
		return
	}
	var req sessionIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, bindError(err))
		return
	}
	ids, err := h.uc.Quests.SetSessions(c.Request.Context(), h.viewer(c), questID, req.SessionIDs)
	if err != nil {
		h.fail(c, err)
		return
	}
	if ids == nil {
		ids = []int{}
	}
	c.JSON(http.StatusOK, gin.H{"session_ids": ids})
}
