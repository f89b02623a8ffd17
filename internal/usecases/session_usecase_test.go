package usecases

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loremaster/internal/access"
	"loremaster/internal/apperr"
	"loremaster/internal/entities"
)

func TestSessionOwnership(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	uc := NewSessionUsecase(f.store.Sessions(), f.files)

	recap, err := uc.Create(ctx, f.playerV, &entities.Session{Title: "My recap", SessionNumber: 3})
	require.NoError(t, err)
	assert.Equal(t, entities.VisibilityPlayerVisible, recap.Visibility)
	assert.Equal(t, f.player.ID, recap.CreatedBy)

	prep, err := uc.Create(ctx, f.dmV, &entities.Session{Title: "Prep", SessionNumber: 4})
	require.NoError(t, err)
	assert.Equal(t, entities.VisibilityDMOnly, prep.Visibility)

	_, err = newCampaigns(f).Invite(ctx, f.dmV, InviteInput{Username: f.outsider.Username})
	require.NoError(t, err)
	second := access.Viewer{CampaignID: f.campaign.ID, UserID: f.outsider.ID, Role: entities.RolePlayer}

	list, err := uc.List(ctx, second, entities.ListFilter{})
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, recap.ID, list[0].ID)

	_, err = uc.Get(ctx, f.playerV, prep.ID)
	requireCode(t, err, apperr.CodeNotFound)

	edited, err := uc.Update(ctx, f.playerV, recap.ID, &entities.Session{Title: "My recap (edited)", SessionNumber: 3})
	require.NoError(t, err)
	assert.Equal(t, entities.VisibilityPlayerVisible, edited.Visibility)
	assert.Equal(t, f.player.ID, edited.CreatedBy)

	shared, err := uc.Create(ctx, f.dmV, &entities.Session{Title: "Session 5", Visibility: entities.VisibilityPlayerVisible})
	require.NoError(t, err)
	_, err = uc.Update(ctx, f.playerV, shared.ID, &entities.Session{Title: "Hijacked"})
	requireCode(t, err, apperr.CodeForbidden)
	requireCode(t, uc.Delete(ctx, f.playerV, shared.ID), apperr.CodeForbidden)

	_, err = uc.Update(ctx, f.dmV, recap.ID, &entities.Session{Title: "Moderated"})
	require.NoError(t, err)
	require.NoError(t, uc.Delete(ctx, f.playerV, recap.ID))
}

func TestDMManagesHiddenSessions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	uc := NewSessionUsecase(f.store.Sessions(), f.files)

	secret, err := uc.Create(ctx, f.dmV, &entities.Session{Title: "Behind the screen", Visibility: entities.VisibilityHidden})
	require.NoError(t, err)

	_, err = uc.Get(ctx, f.dmV, secret.ID)
	requireCode(t, err, apperr.CodeNotFound)

	updated, err := uc.Update(ctx, f.dmV, secret.ID, &entities.Session{Title: "Still behind the screen"})
	require.NoError(t, err)
	assert.Equal(t, entities.VisibilityHidden, updated.Visibility)

	requireCode(t, uc.Delete(ctx, f.playerV, secret.ID), apperr.CodeNotFound)
	require.NoError(t, uc.Delete(ctx, f.dmV, secret.ID))
}

func TestSessionNotes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	uc := NewSessionUsecase(f.store.Sessions(), f.files)
	campaigns := newCampaigns(f)

	_, err := campaigns.Invite(ctx, f.dmV, InviteInput{Username: f.outsider.Username})
	require.NoError(t, err)
	other := access.Viewer{CampaignID: f.campaign.ID, UserID: f.outsider.ID, Role: entities.RolePlayer}

	s, err := uc.Create(ctx, f.dmV, &entities.Session{Title: "Session 1", Visibility: entities.VisibilityPlayerVisible})
	require.NoError(t, err)

	shared, err := uc.CreateNote(ctx, f.playerV, s.ID, &entities.SessionNote{Content: "We found the map"})
	require.NoError(t, err)
	assert.Equal(t, entities.VisibilityPlayerVisible, shared.Visibility)
	assert.Equal(t, f.player.ID, shared.AuthorID)

	private, err := uc.CreateNote(ctx, f.playerV, s.ID, &entities.SessionNote{Content: "I pocketed a gem", Visibility: entities.VisibilityDMOnly})
	require.NoError(t, err)

	_, err = uc.CreateNote(ctx, f.playerV, s.ID, &entities.SessionNote{Content: "x", Visibility: entities.VisibilityHidden})
	requireCode(t, err, apperr.CodeValidation)

	mine, err := uc.ListNotes(ctx, f.playerV, s.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 2, "authors see their own private notes")

	theirs, err := uc.ListNotes(ctx, other, s.ID)
	require.NoError(t, err)
	require.Len(t, theirs, 1)
	assert.Equal(t, shared.ID, theirs[0].ID)

	all, err := uc.ListNotes(ctx, f.dmV, s.ID)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = uc.UpdateNote(ctx, other, s.ID, shared.ID, &entities.SessionNote{Content: "vandalised"})
	requireCode(t, err, apperr.CodeForbidden)
	_, err = uc.UpdateNote(ctx, other, s.ID, private.ID, &entities.SessionNote{Content: "peek"})
	requireCode(t, err, apperr.CodeNotFound)

	edited, err := uc.UpdateNote(ctx, f.playerV, s.ID, private.ID, &entities.SessionNote{Content: "I pocketed two gems"})
	require.NoError(t, err)
	assert.Equal(t, entities.VisibilityDMOnly, edited.Visibility)

	require.NoError(t, uc.DeleteNote(ctx, f.dmV, s.ID, shared.ID))
	requireCode(t, uc.DeleteNote(ctx, f.dmV, s.ID, shared.ID), apperr.CodeNotFound)
}
