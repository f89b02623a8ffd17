package http

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"loremaster/internal/access"
	"loremaster/internal/entities"
)

// entityService is the shape shared by every campaign-scoped entity usecase.
type entityService[T any] interface {
	List(ctx context.Context, v access.Viewer, f entities.ListFilter) ([]T, error)
	Get(ctx context.Context, v access.Viewer, id int) (*T, error)
	Create(ctx context.Context, v access.Viewer, in *T) (*T, error)
	Update(ctx context.Context, v access.Viewer, id int, in *T) (*T, error)
	Delete(ctx context.Context, v access.Viewer, id int) error
}

// registerEntity mounts list/get/create/update/delete for one entity kind.
// write runs in front of the mutating routes.
func registerEntity[T any](g *gin.RouterGroup, path string, h *Handler, svc entityService[T], write ...gin.HandlerFunc) {
	chain := func(last gin.HandlerFunc) []gin.HandlerFunc {
		return append(append([]gin.HandlerFunc{}, write...), last)
	}

	g.GET(path, func(c *gin.Context) {
		f, err := listFilter(c)
		if err != nil {
			h.fail(c, err)
			return
		}
		items, err := svc.List(c.Request.Context(), h.viewer(c), f)
		if err != nil {
			h.fail(c, err)
			return
		}
		if items == nil {
			items = []T{}
		}
		c.JSON(http.StatusOK, items)
	})

	g.GET(path+"/:id", func(c *gin.Context) {
		id, err := pathID(c, "id")
		if err != nil {
			h.fail(c, err)
			return
		}
		item, err := svc.Get(c.Request.Context(), h.viewer(c), id)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	})

	g.POST(path, chain(func(c *gin.Context) {
		in := new(T)
		if err := c.ShouldBindJSON(in); err != nil {
			h.fail(c, bindError(err))
			return
		}
		item, err := svc.Create(c.Request.Context(), h.viewer(c), in)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusCreated, item)
	})...)

	g.PUT(path+"/:id", chain(func(c *gin.Context) {
		id, err := pathID(c, "id")
		if err != nil {
			h.fail(c, err)
			return
		}
		in := new(T)
		if err := c.ShouldBindJSON(in); err != nil {
			h.fail(c, bindError(err))
			return
		}
		item, err := svc.Update(c.Request.Context(), h.viewer(c), id, in)
		if err != nil {
			h.fail(c, err)
			return
		}
		c.JSON(http.StatusOK, item)
	})...)

	g.DELETE(path+"/:id", chain(func(c *gin.Context) {
		id, err := pathID(c, "id")
		if err != nil {
			h.fail(c, err)
			return
		}
		if err := svc.Delete(c.Request.Context(), h.viewer(c), id); err != nil {
			h.fail(c, err)
			return
		}
		c.Status(http.StatusNoContent)
	})...)
}

func (h *Handler) LocationChildren(c *gin.Context) {
	id, err := pathID(c, "id")
	if err != nil {
		h.fail(c, err)
		return
	}
	children, err := h.uc.Locations.Children(c.Request.Context(), h.viewer(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if children == nil {
		children = []entities.Location{}
	}
	c.JSON(http.StatusOK, children)
}
