package http

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"loremaster/internal/apperr"
)

// errorBody is the JSON shape of every error response.
func errorBody(e *apperr.Error) gin.H {
	return gin.H{"error": e.Message, "code": e.Code}
}

// respondError writes err as JSON. Internal causes are logged, never sent.
func respondError(c *gin.Context, log zerolog.Logger, err error) {
	e := apperr.As(err)
	if e.Code == apperr.CodeInternal {
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error", "code": e.Code})
		return
	}
	c.JSON(e.Code.HTTPStatus(), errorBody(e))
}

func abortWithError(c *gin.Context, err error) {
	e := apperr.As(err)
	if e.Code == apperr.CodeInternal {
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "internal server error", "code": e.Code})
		return
	}
	c.AbortWithStatusJSON(e.Code.HTTPStatus(), errorBody(e))
}

func (m *Middleware) abortLogged(c *gin.Context, err error) {
	if apperr.CodeOf(err) == apperr.CodeInternal {
		m.log.Error().Err(err).Str("path", c.FullPath()).Msg("role resolution failed")
	}
	abortWithError(c, err)
}

// bindError converts a JSON binding failure into a Validation error.
func bindError(err error) error {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		return apperr.Validation("request body too large")
	}
	return apperr.Wrap(apperr.CodeValidation, "invalid request body", err)
}
