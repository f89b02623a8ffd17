package repository

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loremaster/internal/access"
	"loremaster/internal/apperr"
	"loremaster/internal/entities"
)

func newMock(t *testing.T) pgxmock.PgxPoolIface {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock
}

func q(sql string) string { return regexp.QuoteMeta(sql) }

func TestTranslate(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want apperr.Code
	}{
		{"no rows", pgx.ErrNoRows, apperr.CodeNotFound},
		{"unique", &pgconn.PgError{Code: pgUniqueViolation}, apperr.CodeConflict},
		{"foreign key", &pgconn.PgError{Code: pgForeignKeyViolation}, apperr.CodeValidation},
		{"check", &pgconn.PgError{Code: pgCheckViolation}, apperr.CodeValidation},
		{"bad text", &pgconn.PgError{Code: pgInvalidText}, apperr.CodeValidation},
		{"other pg", &pgconn.PgError{Code: "57014"}, apperr.CodeInternal},
		{"plain", errors.New("connection reset"), apperr.CodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, apperr.CodeOf(translate(tc.err, "thing")))
		})
	}
	assert.NoError(t, translate(nil, "thing"))
	assert.EqualError(t, translate(pgx.ErrNoRows, "tag"), "tag not found")
}

func TestCampaignCreateAddsOwnerInSameTx(t *testing.T) {
	mock := newMock(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(q("INSERT INTO campaigns (owner_id, name, description)")).
		WithArgs(7, "Crimson Tide", "").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(3, now, now))
	mock.ExpectExec(q("INSERT INTO campaign_participants (campaign_id, user_id, role)")).
		WithArgs(3, 7, entities.RoleDM).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))
	mock.ExpectCommit()

	c := &entities.Campaign{OwnerID: 7, Name: "Crimson Tide"}
	require.NoError(t, NewCampaignRepository(mock).Create(context.Background(), c))
	assert.Equal(t, 3, c.ID)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCampaignCreateRollsBack(t *testing.T) {
	mock := newMock(t)
	now := time.Now()

	mock.ExpectBegin()
	mock.ExpectQuery(q("INSERT INTO campaigns")).
		WithArgs(7, "Crimson Tide", "").
		WillReturnRows(pgxmock.NewRows([]string{"id", "created_at", "updated_at"}).AddRow(3, now, now))
	mock.ExpectExec(q("INSERT INTO campaign_participants")).
		WithArgs(3, 7, entities.RoleDM).
		WillReturnError(&pgconn.PgError{Code: pgForeignKeyViolation})
	mock.ExpectRollback()

	err := NewCampaignRepository(mock).Create(context.Background(), &entities.Campaign{OwnerID: 7, Name: "Crimson Tide"})
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetParticipantRoleWithoutRow(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(q("SELECT role FROM campaign_participants WHERE campaign_id = $1 AND user_id = $2")).
		WithArgs(3, 9).
		WillReturnError(pgx.ErrNoRows)

	role, err := NewCampaignRepository(mock).GetParticipantRole(context.Background(), 3, 9)
	require.NoError(t, err)
	assert.Equal(t, entities.RoleNone, role)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestCharacterListPushesVisibilityIntoSQL(t *testing.T) {
	cols := []string{"id", "campaign_id", "name", "character_type", "description", "sheet",
		"player_user_id", "visibility", "created_by", "updated_by", "created_at", "updated_at"}

	t.Run("player", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(q("FROM characters c WHERE c.campaign_id = $1 AND (c.visibility = $2 OR (c.character_type = $3 AND c.player_user_id = $4)) AND c.character_type = $5 ORDER BY c.name, c.id")).
			WithArgs(5, "player-visible", "player", 11, "npc").
			WillReturnRows(pgxmock.NewRows(cols))

		v := access.Viewer{CampaignID: 5, UserID: 11, Role: entities.RolePlayer}
		out, err := NewCharacterRepository(mock).List(context.Background(), v, entities.ListFilter{Type: "npc"})
		require.NoError(t, err)
		assert.Empty(t, out)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("dm", func(t *testing.T) {
		mock := newMock(t)
		mock.ExpectQuery(q("FROM characters c WHERE c.campaign_id = $1 AND c.visibility <> $2 AND (c.name ILIKE $3 OR c.description ILIKE $4)")).
			WithArgs(5, "hidden", "%vex%", "%vex%").
			WillReturnRows(pgxmock.NewRows(cols))

		v := access.Viewer{CampaignID: 5, UserID: 1, Role: entities.RoleDM}
		_, err := NewCharacterRepository(mock).List(context.Background(), v, entities.ListFilter{Search: "vex"})
		require.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestLocationIsAncestor(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery("WITH RECURSIVE chain").
		WithArgs(4, 5, 1).
		WillReturnRows(pgxmock.NewRows([]string{"exists"}).AddRow(true))

	found, err := NewLocationRepository(mock).IsAncestor(context.Background(), 5, 1, 4)
	require.NoError(t, err)
	assert.True(t, found)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteEntityRemovesPolymorphicRefs(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(q("DELETE FROM locations WHERE campaign_id = $1 AND id = $2")).
		WithArgs(5, 9).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))
	for _, table := range []string{"entity_tags", "entity_images", "quest_links"} {
		mock.ExpectExec(q("DELETE FROM "+table+" WHERE entity_id = $1 AND entity_type = $2")).
			WithArgs(9, "location").
			WillReturnResult(pgxmock.NewResult("DELETE", 0))
	}
	mock.ExpectCommit()

	require.NoError(t, NewLocationRepository(mock).Delete(context.Background(), 5, 9))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteEntityMissingRow(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(q("DELETE FROM factions WHERE campaign_id = $1 AND id = $2")).
		WithArgs(5, 9).
		WillReturnResult(pgxmock.NewResult("DELETE", 0))
	mock.ExpectRollback()

	err := NewFactionRepository(mock).Delete(context.Background(), 5, 9)
	assert.Equal(t, apperr.CodeNotFound, apperr.CodeOf(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceTagsRejectsForeignTag(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT COUNT(*) FROM tags WHERE campaign_id = $1 AND id = ANY($2)")).
		WithArgs(5, []int{1, 2}).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectRollback()

	err := NewTagRepository(mock).ReplaceForEntity(context.Background(), 5, entities.EntityCharacter, 9, []int{2, 1, 2})
	assert.Equal(t, apperr.CodeValidation, apperr.CodeOf(err))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestReplaceTags(t *testing.T) {
	mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectQuery(q("SELECT COUNT(*) FROM tags")).
		WithArgs(5, []int{1, 2}).
		WillReturnRows(pgxmock.NewRows([]string{"count"}).AddRow(2))
	mock.ExpectExec(q("DELETE FROM entity_tags WHERE entity_type = $1 AND entity_id = $2")).
		WithArgs(entities.EntityCharacter, 9).
		WillReturnResult(pgxmock.NewResult("DELETE", 3))
	for _, id := range []int{1, 2} {
		mock.ExpectExec(q("INSERT INTO entity_tags (tag_id, entity_type, entity_id)")).
			WithArgs(id, entities.EntityCharacter, 9).
			WillReturnResult(pgxmock.NewResult("INSERT", 1))
	}
	mock.ExpectCommit()

	require.NoError(t, NewTagRepository(mock).ReplaceForEntity(context.Background(), 5, entities.EntityCharacter, 9, []int{2, 1}))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestTagConflictMessage(t *testing.T) {
	mock := newMock(t)
	mock.ExpectQuery(q("INSERT INTO tags")).
		WithArgs(5, "Villain", "").
		WillReturnError(&pgconn.PgError{Code: pgUniqueViolation})

	err := NewTagRepository(mock).Create(context.Background(), &entities.Tag{CampaignID: 5, Name: "Villain"})
	assert.Equal(t, apperr.CodeConflict, apperr.CodeOf(err))
	assert.Contains(t, err.Error(), "already exists")
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestSearchEscapesLikeWildcards(t *testing.T) {
	mock := newMock(t)
	pattern := `%100\%\_pure\\%`
	mock.ExpectQuery(q("FROM factions WHERE campaign_id = $1 AND visibility <> $2 AND (name ILIKE $3 OR description ILIKE $4 OR goals ILIKE $5)")).
		WithArgs(5, "hidden", pattern, pattern, pattern).
		WillReturnRows(pgxmock.NewRows([]string{"id"}))

	v := access.Viewer{CampaignID: 5, UserID: 1, Role: entities.RoleDM}
	_, err := NewFactionRepository(mock).List(context.Background(), v, entities.ListFilter{Search: `100%_pure\`})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}
