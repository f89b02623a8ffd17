package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loremaster/internal/apperr"
	"loremaster/internal/entities"
)

func TestLocationTree(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	uc := NewLocationUsecase(f.store.Locations(), f.files)

	world, err := uc.Create(ctx, f.dmV, &entities.Location{Name: "Faerun", Visibility: entities.VisibilityPlayerVisible})
	require.NoError(t, err)
	city, err := uc.Create(ctx, f.dmV, &entities.Location{Name: "Waterdeep", ParentID: &world.ID, Visibility: entities.VisibilityPlayerVisible})
	require.NoError(t, err)
	lair, err := uc.Create(ctx, f.dmV, &entities.Location{Name: "Xanathar's Lair", ParentID: &city.ID})
	require.NoError(t, err)

	children, err := uc.Children(ctx, f.playerV, city.ID)
	require.NoError(t, err)
	assert.Empty(t, children, "dm-only children stay hidden")

	children, err = uc.Children(ctx, f.dmV, city.ID)
	require.NoError(t, err)
	require.Len(t, children, 1)
	assert.Equal(t, lair.ID, children[0].ID)

	roots, err := uc.List(ctx, f.dmV, entities.ListFilter{RootOnly: true})
	require.NoError(t, err)
	require.Len(t, roots, 1)
	assert.Equal(t, world.ID, roots[0].ID)

	_, err = uc.Update(ctx, f.dmV, world.ID, &entities.Location{Name: "Faerun", ParentID: &world.ID})
	requireCode(t, err, apperr.CodeValidation)

	_, err = uc.Update(ctx, f.dmV, world.ID, &entities.Location{Name: "Faerun", ParentID: &lair.ID})
	requireCode(t, err, apperr.CodeValidation)

	_, err = uc.Create(ctx, f.dmV, &entities.Location{Name: "Nowhere", ParentID: intPtr(9999)})
	requireCode(t, err, apperr.CodeValidation)

	requireCode(t, uc.Delete(ctx, f.dmV, city.ID), apperr.CodeValidation)
	require.NoError(t, uc.Delete(ctx, f.dmV, lair.ID))
	require.NoError(t, uc.Delete(ctx, f.dmV, city.ID))

	_, err = uc.Create(ctx, f.playerV, &entities.Location{Name: "Player town"})
	requireCode(t, err, apperr.CodeForbidden)
}

func TestFactionHeadquarters(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	locations := NewLocationUsecase(f.store.Locations(), f.files)
	uc := NewFactionUsecase(f.store.Factions(), f.store.Locations(), f.files)

	hq, err := locations.Create(ctx, f.dmV, &entities.Location{Name: "Blackstaff Tower"})
	require.NoError(t, err)

	_, err = uc.Create(ctx, f.dmV, &entities.Faction{Name: "Zhentarim", HeadquartersLocationID: intPtr(4242)})
	requireCode(t, err, apperr.CodeValidation)

	faction, err := uc.Create(ctx, f.dmV, &entities.Faction{Name: "Harpers", HeadquartersLocationID: &hq.ID})
	require.NoError(t, err)

	require.NoError(t, locations.Delete(ctx, f.dmV, hq.ID))
	got, err := uc.Get(ctx, f.dmV, faction.ID)
	require.NoError(t, err)
	assert.Nil(t, got.HeadquartersLocationID)
}

func TestLoreEntriesFollowVisibility(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	wi := NewWorldInfoUsecase(f.store.WorldInfo(), f.files)
	items := NewContentItemUsecase(f.store.ContentItems(), f.files)
	creatures := NewCreatureUsecase(f.store.Creatures(), f.files)

	_, err := wi.Create(ctx, f.dmV, &entities.WorldInfo{Title: "The Weave", Category: "magic", Visibility: entities.VisibilityPlayerVisible})
	require.NoError(t, err)
	secret, err := wi.Create(ctx, f.dmV, &entities.WorldInfo{Title: "The Lich's Phylactery", Category: "magic"})
	require.NoError(t, err)

	entries, err := wi.List(ctx, f.playerV, entities.ListFilter{Category: "magic"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "The Weave", entries[0].Title)

	entries, err = wi.List(ctx, f.dmV, entities.ListFilter{Search: "phylactery"})
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, secret.ID, entries[0].ID)

	_, err = wi.Get(ctx, f.playerV, secret.ID)
	requireCode(t, err, apperr.CodeNotFound)

	updated, err := wi.Update(ctx, f.dmV, secret.ID, &entities.WorldInfo{Title: "Revealed", Visibility: entities.VisibilityPlayerVisible})
	require.NoError(t, err)
	require.NotNil(t, updated.UpdatedBy)
	assert.Equal(t, f.dm.ID, updated.CreatedBy)

	got, err := wi.Get(ctx, f.playerV, secret.ID)
	require.NoError(t, err)
	assert.Equal(t, "Revealed", got.Title)

	item, err := items.Create(ctx, f.dmV, &entities.ContentItem{Name: "Flame Tongue", Rarity: "rare"})
	require.NoError(t, err)
	assert.Equal(t, entities.VisibilityDMOnly, item.Visibility)
	_, err = items.Update(ctx, f.playerV, item.ID, &entities.ContentItem{Name: "Mine"})
	requireCode(t, err, apperr.CodeForbidden)

	beast, err := creatures.Create(ctx, f.dmV, &entities.Creature{
		Name:          "Owlbear",
		ArmorClass:    13,
		HitPoints:     59,
		AbilityScores: &entities.AbilityScores{Strength: 20, Dexterity: 12, Constitution: 17, Intelligence: 3, Wisdom: 12, Charisma: 7},
	})
	require.NoError(t, err)
	_, err = creatures.Create(ctx, f.dmV, &entities.Creature{Name: "Broken", HitPoints: -1})
	requireCode(t, err, apperr.CodeValidation)
	require.NoError(t, creatures.Delete(ctx, f.dmV, beast.ID))
	requireCode(t, creatures.Delete(ctx, f.dmV, beast.ID), apperr.CodeNotFound)
}
