package usecases

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loremaster/internal/access"
	"loremaster/internal/apperr"
	"loremaster/internal/testutil/memstore"
)

func newAuth(t *testing.T) *AuthUsecase {
	t.Helper()
	return NewAuthUsecase(memstore.New().Users(), "test-secret", time.Hour)
}

func TestRegisterLoginAndParseToken(t *testing.T) {
	ctx := context.Background()
	uc := newAuth(t)

	reg, err := uc.Register(ctx, RegisterInput{Username: " alice ", Email: "Alice@Example.com", Password: "hunter22!"})
	require.NoError(t, err)
	assert.Equal(t, "alice", reg.User.Username)
	assert.Equal(t, "alice@example.com", reg.User.Email)

	id, err := uc.ParseToken(reg.Token)
	require.NoError(t, err)
	assert.Equal(t, access.Identity{UserID: reg.User.ID, Username: "alice"}, id)

	login, err := uc.Login(ctx, LoginInput{Username: "alice", Password: "hunter22!"})
	require.NoError(t, err)
	assert.Equal(t, reg.User.ID, login.User.ID)

	me, err := uc.Me(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "alice", me.Username)
}

func TestRegisterRejectsDuplicatesAndBadInput(t *testing.T) {
	ctx := context.Background()
	uc := newAuth(t)

	_, err := uc.Register(ctx, RegisterInput{Username: "alice", Email: "a@example.com", Password: "password1"})
	require.NoError(t, err)

	_, err = uc.Register(ctx, RegisterInput{Username: "alice", Email: "b@example.com", Password: "password1"})
	requireCode(t, err, apperr.CodeConflict)

	_, err = uc.Register(ctx, RegisterInput{Username: "bob", Email: "not-an-email", Password: "password1"})
	requireCode(t, err, apperr.CodeValidation)

	_, err = uc.Register(ctx, RegisterInput{Username: "bob", Email: "bob@example.com", Password: "short"})
	requireCode(t, err, apperr.CodeValidation)

	_, err = uc.Register(ctx, RegisterInput{Username: "bob", Email: "bob@example.com", Password: strings.Repeat("x", 73)})
	requireCode(t, err, apperr.CodeValidation)
}

func TestLoginFailuresLookTheSame(t *testing.T) {
	ctx := context.Background()
	uc := newAuth(t)
	_, err := uc.Register(ctx, RegisterInput{Username: "alice", Email: "a@example.com", Password: "password1"})
	require.NoError(t, err)

	_, errWrong := uc.Login(ctx, LoginInput{Username: "alice", Password: "password2"})
	_, errUnknown := uc.Login(ctx, LoginInput{Username: "nobody", Password: "password1"})

	requireCode(t, errWrong, apperr.CodeUnauthorized)
	requireCode(t, errUnknown, apperr.CodeUnauthorized)
	assert.Equal(t, errWrong.Error(), errUnknown.Error())
}

func TestParseTokenRejectsExpiredAndForeignTokens(t *testing.T) {
	ctx := context.Background()
	uc := newAuth(t)
	res, err := uc.Register(ctx, RegisterInput{Username: "alice", Email: "a@example.com", Password: "password1"})
	require.NoError(t, err)

	uc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, err = uc.ParseToken(res.Token)
	requireCode(t, err, apperr.CodeUnauthorized)

	other := NewAuthUsecase(memstore.New().Users(), "another-secret", time.Hour)
	_, err = other.ParseToken(newAuthToken(t, uc))
	requireCode(t, err, apperr.CodeUnauthorized)

	_, err = uc.ParseToken("not.a.token")
	requireCode(t, err, apperr.CodeUnauthorized)
}

// newAuthToken signs a fresh token with uc's secret at the real current time.
func newAuthToken(t *testing.T, uc *AuthUsecase) string {
	t.Helper()
	uc.now = time.Now
	res, err := uc.Register(context.Background(), RegisterInput{Username: "carol", Email: "c@example.com", Password: "password1"})
	require.NoError(t, err)
	return res.Token
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()
	uc := newAuth(t)
	res, err := uc.Register(ctx, RegisterInput{Username: "alice", Email: "a@example.com", Password: "password1"})
	require.NoError(t, err)
	id := access.Identity{UserID: res.User.ID, Username: "alice"}

	err = uc.ChangePassword(ctx, id, ChangePasswordInput{CurrentPassword: "wrong-one", NewPassword: "password2"})
	requireCode(t, err, apperr.CodeValidation)

	require.NoError(t, uc.ChangePassword(ctx, id, ChangePasswordInput{CurrentPassword: "password1", NewPassword: "password2"}))

	_, err = uc.Login(ctx, LoginInput{Username: "alice", Password: "password1"})
	requireCode(t, err, apperr.CodeUnauthorized)
	_, err = uc.Login(ctx, LoginInput{Username: "alice", Password: "password2"})
	require.NoError(t, err)
}
