package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loremaster/internal/apperr"
	"loremaster/internal/entities"
)

func TestTagsAreUniquePerCampaign(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	uc := NewTagUsecase(f.store.Tags(), f.store.Lookup())

	villain, err := uc.Create(ctx, f.dmV, &entities.Tag{Name: "Villain", Color: "#aa0000"})
	require.NoError(t, err)

	_, err = uc.Create(ctx, f.dmV, &entities.Tag{Name: " villain "})
	requireCode(t, err, apperr.CodeConflict)

	_, err = uc.Create(ctx, f.dmV, &entities.Tag{Name: "Ally", Color: "red"})
	requireCode(t, err, apperr.CodeValidation)

	_, err = uc.Create(ctx, f.playerV, &entities.Tag{Name: "Mine"})
	requireCode(t, err, apperr.CodeForbidden)

	ally, err := uc.Create(ctx, f.dmV, &entities.Tag{Name: "Ally"})
	require.NoError(t, err)
	_, err = uc.Update(ctx, f.dmV, ally.ID, &entities.Tag{Name: "VILLAIN"})
	requireCode(t, err, apperr.CodeConflict)

	tags, err := uc.List(ctx, f.playerV)
	require.NoError(t, err)
	require.Len(t, tags, 2)
	assert.Equal(t, "Ally", tags[0].Name)
	assert.Equal(t, villain.ID, tags[1].ID)
}

func TestEntityTagsFollowEntityVisibility(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	uc := NewTagUsecase(f.store.Tags(), f.store.Lookup())
	chars := newCharacters(f)

	villain, err := uc.Create(ctx, f.dmV, &entities.Tag{Name: "Villain"})
	require.NoError(t, err)
	pirate, err := uc.Create(ctx, f.dmV, &entities.Tag{Name: "Pirate"})
	require.NoError(t, err)

	vex, err := chars.Create(ctx, f.dmV, &entities.Character{Name: "Captain Vex"})
	require.NoError(t, err)
	twist, err := chars.Create(ctx, f.dmV, &entities.Character{Name: "Twist", Visibility: entities.VisibilityHidden})
	require.NoError(t, err)

	tags, err := uc.SetForEntity(ctx, f.dmV, entities.EntityCharacter, vex.ID, []int{villain.ID, pirate.ID, villain.ID})
	require.NoError(t, err)
	assert.Len(t, tags, 2)

	_, err = uc.ForEntity(ctx, f.playerV, entities.EntityCharacter, vex.ID)
	requireCode(t, err, apperr.CodeNotFound)

	_, err = uc.SetForEntity(ctx, f.dmV, entities.EntityCharacter, twist.ID, []int{pirate.ID})
	require.NoError(t, err, "dms manage tags on hidden entities")
	_, err = uc.ForEntity(ctx, f.dmV, entities.EntityCharacter, twist.ID)
	requireCode(t, err, apperr.CodeNotFound)

	other := &entities.Campaign{Name: "Elsewhere", OwnerID: f.dm.ID}
	require.NoError(t, f.store.Campaigns().Create(ctx, other))
	foreign := &entities.Tag{Name: "Foreign", CampaignID: other.ID}
	require.NoError(t, f.store.Tags().Create(ctx, foreign))

	_, err = uc.SetForEntity(ctx, f.dmV, entities.EntityCharacter, vex.ID, []int{pirate.ID, foreign.ID})
	requireCode(t, err, apperr.CodeValidation)
	tags, err = uc.ForEntity(ctx, f.dmV, entities.EntityCharacter, vex.ID)
	require.NoError(t, err)
	assert.Len(t, tags, 2, "a rejected replace leaves the set untouched")

	require.NoError(t, uc.Delete(ctx, f.dmV, villain.ID))
	tags, err = uc.ForEntity(ctx, f.dmV, entities.EntityCharacter, vex.ID)
	require.NoError(t, err)
	require.Len(t, tags, 1)
	assert.Equal(t, "Pirate", tags[0].Name)

	_, err = uc.SetForEntity(ctx, f.dmV, entities.EntityType("dragon"), vex.ID, nil)
	requireCode(t, err, apperr.CodeValidation)
	_, err = uc.SetForEntity(ctx, f.dmV, entities.EntityLocation, 9999, nil)
	requireCode(t, err, apperr.CodeNotFound)
}
