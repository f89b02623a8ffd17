package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHTTPStatus(t *testing.T) {
	cases := map[Code]int{
		CodeUnauthorized: http.StatusUnauthorized,
		CodeForbidden:    http.StatusForbidden,
		CodeNotFound:     http.StatusNotFound,
		CodeValidation:   http.StatusBadRequest,
		CodeConflict:     http.StatusBadRequest,
		CodeInternal:     http.StatusInternalServerError,
		Code("OTHER"):    http.StatusInternalServerError,
	}
	for code, want := range cases {
		assert.Equal(t, want, code.HTTPStatus(), code)
	}
}

func TestIsMatchesByCode(t *testing.T) {
	err := fmt.Errorf("load character: %w", NotFound("character not found"))

	assert.True(t, errors.Is(err, ErrNotFound))
	assert.False(t, errors.Is(err, ErrForbidden))
	assert.Equal(t, CodeNotFound, CodeOf(err))
}

func TestAsConvertsForeignErrors(t *testing.T) {
	cause := errors.New("connection reset")
	e := As(cause)

	assert.Equal(t, CodeInternal, e.Code)
	assert.ErrorIs(t, e, cause)
	assert.Equal(t, "internal server error", e.Message)
}

func TestErrorStringIncludesCause(t *testing.T) {
	e := Internal("failed to save tag", errors.New("disk full"))
	assert.Equal(t, "failed to save tag: disk full", e.Error())
	assert.Equal(t, "conflict", ErrConflict.Error())
}
