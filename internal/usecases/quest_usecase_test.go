package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loremaster/internal/apperr"
	"loremaster/internal/entities"
)

func newQuests(f *fixture) *QuestUsecase {
	return NewQuestUsecase(f.store.Quests(), f.store.Sessions(), f.store.Lookup(), f.files)
}

func TestQuestBundleCreate(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	uc := newQuests(f)
	sessions := NewSessionUsecase(f.store.Sessions(), f.files)
	chars := newCharacters(f)

	s1, err := sessions.Create(ctx, f.dmV, &entities.Session{Title: "Session 1", SessionNumber: 1, Visibility: entities.VisibilityPlayerVisible})
	require.NoError(t, err)
	villain, err := chars.Create(ctx, f.dmV, &entities.Character{Name: "Captain Vex"})
	require.NoError(t, err)
	ally, err := chars.Create(ctx, f.dmV, &entities.Character{Name: "Innkeeper", Visibility: entities.VisibilityPlayerVisible})
	require.NoError(t, err)

	q, err := uc.Create(ctx, f.dmV, &entities.Quest{
		Title:      "Stop the Tide",
		Visibility: entities.VisibilityPlayerVisible,
		Objectives: []entities.QuestObjective{
			{Description: "Find the ship", SortOrder: 2},
			{Description: "Board it", SortOrder: 1},
		},
		Milestones: []entities.QuestMilestone{{Title: "Ship found", SessionID: &s1.ID}},
		Links: []entities.QuestLink{
			{EntityType: entities.EntityCharacter, EntityID: villain.ID, LinkType: "antagonist"},
			{EntityType: entities.EntityCharacter, EntityID: ally.ID, LinkType: "quest giver", Visibility: entities.VisibilityPlayerVisible},
		},
		SessionIDs: []int{s1.ID},
	})
	require.NoError(t, err)
	assert.Equal(t, entities.QuestActive, q.Status)
	assert.Equal(t, entities.QuestSide, q.QuestType)
	require.Len(t, q.Objectives, 2)
	assert.Equal(t, "Board it", q.Objectives[0].Description)
	assert.Len(t, q.Milestones, 1)
	assert.Len(t, q.Links, 2)
	assert.Equal(t, []int{s1.ID}, q.SessionIDs)

	seen, err := uc.Get(ctx, f.playerV, q.ID)
	require.NoError(t, err)
	require.Len(t, seen.Links, 1, "links carry their own visibility")
	assert.Equal(t, ally.ID, seen.Links[0].EntityID)

	_, err = uc.Create(ctx, f.dmV, &entities.Quest{
		Title: "Broken",
		Links: []entities.QuestLink{{EntityType: entities.EntityLocation, EntityID: 9999}},
	})
	requireCode(t, err, apperr.CodeValidation)

	_, err = uc.Create(ctx, f.dmV, &entities.Quest{Title: "Too important", Priority: 11})
	requireCode(t, err, apperr.CodeValidation)

	_, err = uc.Create(ctx, f.dmV, &entities.Quest{Title: "Orphan", SessionIDs: []int{9999}})
	requireCode(t, err, apperr.CodeValidation)

	_, err = uc.Create(ctx, f.playerV, &entities.Quest{Title: "Mine"})
	requireCode(t, err, apperr.CodeForbidden)
}

func TestQuestUpdateReplacesOnlyProvidedSets(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	uc := newQuests(f)

	q, err := uc.Create(ctx, f.dmV, &entities.Quest{
		Title:      "Stop the Tide",
		QuestType:  entities.QuestMain,
		Objectives: []entities.QuestObjective{{Description: "Find the ship"}},
		Milestones: []entities.QuestMilestone{{Title: "Ship found"}},
	})
	require.NoError(t, err)

	updated, err := uc.Update(ctx, f.dmV, q.ID, &entities.Quest{
		Title:      "Stop the Crimson Tide",
		Status:     entities.QuestCompleted,
		Objectives: []entities.QuestObjective{{Description: "Sink the ship", IsCompleted: true}},
	})
	require.NoError(t, err)
	assert.Equal(t, entities.QuestCompleted, updated.Status)
	assert.Equal(t, entities.QuestMain, updated.QuestType, "empty type keeps the stored one")
	require.Len(t, updated.Objectives, 1)
	assert.Equal(t, "Sink the ship", updated.Objectives[0].Description)
	require.Len(t, updated.Milestones, 1, "absent milestones are left alone")

	_, err = uc.Update(ctx, f.dmV, q.ID, &entities.Quest{Title: "Bad", Status: "abandoned"})
	requireCode(t, err, apperr.CodeValidation)

	list, err := uc.List(ctx, f.dmV, entities.ListFilter{Status: string(entities.QuestCompleted)})
	require.NoError(t, err)
	assert.Len(t, list, 1)
	_, err = uc.List(ctx, f.dmV, entities.ListFilter{Status: "bogus"})
	requireCode(t, err, apperr.CodeValidation)
}

func TestQuestSubEntities(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	uc := newQuests(f)
	sessions := NewSessionUsecase(f.store.Sessions(), f.files)

	q, err := uc.Create(ctx, f.dmV, &entities.Quest{Title: "Stop the Tide"})
	require.NoError(t, err)
	s1, err := sessions.Create(ctx, f.dmV, &entities.Session{Title: "Session 1"})
	require.NoError(t, err)

	o, err := uc.AddObjective(ctx, f.dmV, q.ID, &entities.QuestObjective{Description: "Find the ship"})
	require.NoError(t, err)
	o, err = uc.UpdateObjective(ctx, f.dmV, q.ID, o.ID, &entities.QuestObjective{Description: "Find the ship", IsCompleted: true})
	require.NoError(t, err)
	assert.True(t, o.IsCompleted)
	_, err = uc.AddObjective(ctx, f.dmV, q.ID, &entities.QuestObjective{})
	requireCode(t, err, apperr.CodeValidation)
	_, err = uc.AddObjective(ctx, f.playerV, q.ID, &entities.QuestObjective{Description: "Cheat"})
	requireCode(t, err, apperr.CodeForbidden)

	m, err := uc.AddMilestone(ctx, f.dmV, q.ID, &entities.QuestMilestone{Title: "Ship found", SessionID: &s1.ID})
	require.NoError(t, err)
	_, err = uc.UpdateMilestone(ctx, f.dmV, q.ID, m.ID, &entities.QuestMilestone{Title: "Ship found", SessionID: intPtr(9999)})
	requireCode(t, err, apperr.CodeValidation)

	ids, err := uc.SetSessions(ctx, f.dmV, q.ID, []int{s1.ID})
	require.NoError(t, err)
	assert.Equal(t, []int{s1.ID}, ids)

	require.NoError(t, sessions.Delete(ctx, f.dmV, s1.ID))
	got, err := uc.Get(ctx, f.dmV, q.ID)
	require.NoError(t, err)
	assert.Empty(t, got.SessionIDs)
	require.Len(t, got.Milestones, 1)
	assert.Nil(t, got.Milestones[0].SessionID)

	require.NoError(t, uc.DeleteObjective(ctx, f.dmV, q.ID, o.ID))
	requireCode(t, uc.DeleteObjective(ctx, f.dmV, q.ID, o.ID), apperr.CodeNotFound)

	ids, err = uc.SetSessions(ctx, f.dmV, q.ID, nil)
	require.NoError(t, err)
	assert.Empty(t, ids)

	require.NoError(t, uc.Delete(ctx, f.dmV, q.ID))
	_, err = uc.Get(ctx, f.dmV, q.ID)
	requireCode(t, err, apperr.CodeNotFound)
}
