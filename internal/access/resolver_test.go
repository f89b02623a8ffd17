package access

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loremaster/internal/apperr"
	"loremaster/internal/entities"
)

type fakeMembership struct {
	owners       map[int]int
	participants map[[2]int]entities.Role
	err          error
}

func (f *fakeMembership) GetCampaignOwner(_ context.Context, campaignID int) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	owner, ok := f.owners[campaignID]
	if !ok {
		return 0, apperr.NotFound("campaign not found")
	}
	return owner, nil
}

func (f *fakeMembership) GetParticipantRole(_ context.Context, campaignID, userID int) (entities.Role, error) {
	return f.participants[[2]int{campaignID, userID}], nil
}

func TestResolveOwnerIsAlwaysDM(t *testing.T) {
	store := &fakeMembership{
		owners: map[int]int{1: 10},
		// A stale or tampered participant row must not downgrade the owner.
		participants: map[[2]int]entities.Role{{1, 10}: entities.RolePlayer},
	}
	role, err := NewResolver(store).Resolve(context.Background(), 1, 10)
	require.NoError(t, err)
	assert.Equal(t, entities.RoleDM, role)
}

func TestResolveParticipantRoles(t *testing.T) {
	store := &fakeMembership{
		owners: map[int]int{1: 10},
		participants: map[[2]int]entities.Role{
			{1, 20}: entities.RoleDM,
			{1, 30}: entities.RolePlayer,
		},
	}
	r := NewResolver(store)

	role, err := r.Resolve(context.Background(), 1, 20)
	require.NoError(t, err)
	assert.Equal(t, entities.RoleDM, role)

	role, err = r.Resolve(context.Background(), 1, 30)
	require.NoError(t, err)
	assert.Equal(t, entities.RolePlayer, role)

	role, err = r.Resolve(context.Background(), 1, 40)
	require.NoError(t, err)
	assert.Equal(t, entities.RoleNone, role)
}

func TestResolveMissingCampaign(t *testing.T) {
	r := NewResolver(&fakeMembership{owners: map[int]int{}})
	role, err := r.Resolve(context.Background(), 99, 10)
	require.NoError(t, err)
	assert.Equal(t, entities.RoleNone, role)
}

func TestResolveStorageFailure(t *testing.T) {
	boom := errors.New("pool exhausted")
	_, err := NewResolver(&fakeMembership{err: boom}).Resolve(context.Background(), 1, 10)
	assert.ErrorIs(t, err, boom)
}

func TestViewerPackagesRole(t *testing.T) {
	store := &fakeMembership{owners: map[int]int{5: 1}}
	v, err := NewResolver(store).Viewer(context.Background(), 5, 1)
	require.NoError(t, err)
	assert.Equal(t, Viewer{CampaignID: 5, UserID: 1, Role: entities.RoleDM}, v)
}

func TestContextRoundTrip(t *testing.T) {
	ctx := WithIdentity(context.Background(), Identity{UserID: 3, Username: "kira"})
	ctx = WithViewer(ctx, Viewer{CampaignID: 1, UserID: 3, Role: entities.RolePlayer})

	id, ok := IdentityFromContext(ctx)
	require.True(t, ok)
	assert.Equal(t, "kira", id.Username)

	v, ok := ViewerFromContext(ctx)
	require.True(t, ok)
	assert.True(t, v.IsPlayer())

	_, ok = ViewerFromContext(context.Background())
	assert.False(t, ok)
}
