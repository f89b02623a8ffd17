package http

import (
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loremaster/internal/apperr"
	"loremaster/internal/entities"
)

func TestValidUsername(t *testing.T) {
	assert.True(t, ValidUsername("dm_alice"))
	assert.True(t, ValidUsername("bob-2"))
	assert.False(t, ValidUsername("al"))
	assert.False(t, ValidUsername("robert'); drop"))
	assert.False(t, ValidUsername(""))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "abc", SanitizeString("a\x00bc"))
	assert.Equal(t, "ab", SanitizeString("a\xffb"))
	assert.Equal(t, "héllo", TruncateString("héllo world", 5))
}

func TestListFilter(t *testing.T) {
	gin.SetMode(gin.TestMode)

	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?type=npc&search=+Vex+&parent_id=4", nil)
	f, err := listFilter(c)
	require.NoError(t, err)
	assert.Equal(t, "npc", f.Type)
	assert.Equal(t, "Vex", f.Search)
	require.NotNil(t, f.ParentID)
	assert.Equal(t, 4, *f.ParentID)

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?parent_id=root", nil)
	f, err = listFilter(c)
	require.NoError(t, err)
	assert.True(t, f.RootOnly)

	c, _ = gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("GET", "/?parent_id=abc", nil)
	_, err = listFilter(c)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestPathEntityType(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())

	c.Params = gin.Params{{Key: "entityType", Value: "world-info"}}
	typ, err := pathEntityType(c)
	require.NoError(t, err)
	assert.Equal(t, entities.EntityWorldInfo, typ)

	c.Params = gin.Params{{Key: "entityType", Value: "users"}}
	_, err = pathEntityType(c)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}
