package http

import (
	"fmt"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"loremaster/internal/apperr"
	"loremaster/internal/entities"
)

func (h *Handler) ListImages(c *gin.Context) {
	t, id, err := entityRef(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	images, err := h.uc.Images.List(c.Request.Context(), h.viewer(c), t, id)
	if err != nil {
		h.fail(c, err)
		return
	}
	if images == nil {
		images = []entities.EntityImage{}
	}
	c.JSON(http.StatusOK, images)
}

// UploadImage accepts a multipart "file" field of at most maxBytes.
func (h *Handler) UploadImage(maxBytes int64) gin.HandlerFunc {
	return func(c *gin.Context) {
		t, id, err := entityRef(c)
		if err != nil {
			h.fail(c, err)
			return
		}

		fh, err := c.FormFile("file")
		if err != nil {
			h.fail(c, bindError(err))
			return
		}
		if fh.Size > maxBytes {
			h.fail(c, apperr.Validation(fmt.Sprintf("file exceeds %d bytes", maxBytes)))
			return
		}
		f, err := fh.Open()
		if err != nil {
			h.fail(c, apperr.Internal("failed to read upload", err))
			return
		}
		defer f.Close()

		data, err := io.ReadAll(io.LimitReader(f, maxBytes+1))
		if err != nil {
			h.fail(c, apperr.Internal("failed to read upload", err))
			return
		}
		if int64(len(data)) > maxBytes {
			h.fail(c, apperr.Validation(fmt.Sprintf("file exceeds %d bytes", maxBytes)))
			return
		}

		img, err := h.uc.Images.Upload(c.Request.Context(), h.viewer(c), t, id, fh.Filename, data)
		if err != nil {
			h.fail(c, err)
			return
		}
		h.log.Info().Int("campaign_id", img.CampaignID).Int("image_id", img.ID).Str("mime", img.MimeType).Msg("image uploaded")
		c.JSON(http.StatusCreated, img)
	}
}

func (h *Handler) GetImageFile(c *gin.Context) {
	id, err := pathID(c, "imageId")
	if err != nil {
		h.fail(c, err)
		return
	}
	file, err := h.uc.Images.Open(c.Request.Context(), h.viewer(c), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.Header("Content-Type", file.MimeType)
	c.Header("Content-Disposition", fmt.Sprintf("inline; filename=%q", file.Name))
	c.File(file.Path)
}

func (h *Handler) DeleteImage(c *gin.Context) {
	id, err := pathID(c, "imageId")
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.uc.Images.Delete(c.Request.Context(), h.viewer(c), id); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
