package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"loremaster/internal/entities"
)

func (h *Handler) ListTags(c *gin.Context) {
	tags, err := h.uc.Tags.List(c.Request.Context(), h.viewer(c))
	if err != nil {
		h.fail(c, err)
		return
	}
	if tags == nil {
		tags = []entities.Tag{}
	}
	c.JSON(http.StatusOK, tags)
}

func (h *Handler) CreateTag(c *gin.Context) {
	var req entities.Tag
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, bindError(err))
		return
	}
	t, err := h.uc.Tags.Create(c.Request.Context(), h.viewer(c), &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (h *Handler) UpdateTag(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	var req entities.Tag
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, bindError(err))
		return
	}
	t, err := h.uc.Tags.Update(c.Request.Context(), h.viewer(c), id, &req)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *Handler) DeleteTag(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.uc.Tags.Delete(c.Request.Context(), h.viewer(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// entityRef reads :entityType and :entityId.
func entityRef(c *gin.Context) (entities.EntityType, int, error) {
	t, err := pathEntityType(c)
	if err != nil {
		return "", 0, err
	}
	id, err := pathID(c, "entityId")
	if err != nil {
		return "", 0, err
	}
	return t, id, nil
}

func (h *Handler) GetEntityTags(c *gin.Context) {
	t, id, err := entityRef(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	tags, err := h.uc.Tags.ForEntity(c.Request.Context(), h.viewer(c), t, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if tags == nil {
		tags = []entities.Tag{}
	}
	c.JSON(http.StatusOK, tags)
}

type tagIDsRequest struct {
	TagIDs []int `json:"tag_ids"`
}

func (h *Handler) SetEntityTags(c *gin.Context) {
	t, id, err := entityRef(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	var req tagIDsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.fail(c, bindError(err))
		return
	}
	tags, err := h.uc.Tags.SetForEntity(c.Request.Context(), h.viewer(c), t, id, req.TagIDs)
	if err != nil {
		h.fail(c, err)
		return
	}
	if tags == nil {
		tags = []entities.Tag{}
	}
	c.JSON(http.StatusOK, tags)
}
