package access

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"loremaster/internal/entities"
)

func intPtr(i int) *int { return &i }

// expectedVisible is the visibility rule written out as a single boolean formula.
func expectedVisible(v Viewer, c entities.Character) bool {
	isDM := v.Role == entities.RoleDM
	isPlayer := v.Role == entities.RolePlayer
	own := c.CharacterType == entities.CharacterPlayer && c.PlayerUserID != nil && *c.PlayerUserID == v.UserID
	return (isDM && c.Visibility != entities.VisibilityHidden) ||
		(isPlayer && (c.Visibility == entities.VisibilityPlayerVisible || own))
}

func TestCanSeeCharacterMatchesFormula(t *testing.T) {
	roles := []entities.Role{entities.RoleDM, entities.RolePlayer, entities.RoleNone}
	visibilities := []entities.Visibility{entities.VisibilityDMOnly, entities.VisibilityPlayerVisible, entities.VisibilityHidden}
	types := []entities.CharacterType{entities.CharacterPlayer, entities.CharacterNPC, entities.CharacterAntagonist}
	owners := []*int{nil, intPtr(7), intPtr(8)}

	for _, role := range roles {
		for _, vis := range visibilities {
			for _, typ := range types {
				for _, owner := range owners {
					v := Viewer{CampaignID: 1, UserID: 7, Role: role}
					c := entities.Character{CharacterType: typ, Visibility: vis, PlayerUserID: owner}
					name := fmt.Sprintf("%s/%s/%s/%v", role, vis, typ, owner)
					assert.Equal(t, expectedVisible(v, c), CanSeeCharacter(v, &c), name)

					info := entities.VisibilityInfo{Type: entities.EntityCharacter, Visibility: vis, CharacterType: typ, PlayerUserID: owner}
					assert.Equal(t, expectedVisible(v, c), CanSeeInfo(v, info), name)
				}
			}
		}
	}
}

func TestPlayerSeesOwnHiddenSheet(t *testing.T) {
	v := Viewer{UserID: 7, Role: entities.RolePlayer}
	c := entities.Character{CharacterType: entities.CharacterPlayer, Visibility: entities.VisibilityHidden, PlayerUserID: intPtr(7)}
	assert.True(t, CanSeeCharacter(v, &c))

	// The exception is for characters only.
	info := entities.VisibilityInfo{Type: entities.EntityLocation, Visibility: entities.VisibilityHidden, CharacterType: entities.CharacterPlayer, PlayerUserID: intPtr(7)}
	assert.False(t, CanSeeInfo(v, info))
}

func TestVisibilityPredicateSQL(t *testing.T) {
	sql, args, err := VisibilityPredicate(Viewer{Role: entities.RoleDM}, "l.visibility").ToSql()
	require.NoError(t, err)
	assert.Equal(t, "l.visibility <> ?", sql)
	assert.Equal(t, []any{"hidden"}, args)

	sql, args, err = VisibilityPredicate(Viewer{Role: entities.RolePlayer}, "visibility").ToSql()
	require.NoError(t, err)
	assert.Equal(t, "visibility = ?", sql)
	assert.Equal(t, []any{"player-visible"}, args)

	sql, args, err = VisibilityPredicate(Viewer{}, "visibility").ToSql()
	require.NoError(t, err)
	assert.Equal(t, "FALSE", sql)
	assert.Empty(t, args)
}

func TestCharacterVisibilityPredicateSQL(t *testing.T) {
	sql, args, err := CharacterVisibilityPredicate(Viewer{UserID: 7, Role: entities.RolePlayer}, "c.").ToSql()
	require.NoError(t, err)
	assert.Equal(t, "(c.visibility = ? OR (c.character_type = ? AND c.player_user_id = ?))", sql)
	assert.Equal(t, []any{"player-visible", "player", 7}, args)

	sql, _, err = CharacterVisibilityPredicate(Viewer{UserID: 7, Role: entities.RoleDM}, "").ToSql()
	require.NoError(t, err)
	assert.Equal(t, "visibility <> ?", sql)
}

func TestFilterCharacters(t *testing.T) {
	chars := []entities.Character{
		{ID: 1, CharacterType: entities.CharacterNPC, Visibility: entities.VisibilityDMOnly},
		{ID: 2, CharacterType: entities.CharacterNPC, Visibility: entities.VisibilityPlayerVisible},
		{ID: 3, CharacterType: entities.CharacterPlayer, Visibility: entities.VisibilityDMOnly, PlayerUserID: intPtr(7)},
		{ID: 4, CharacterType: entities.CharacterPlayer, Visibility: entities.VisibilityHidden},
	}

	player := FilterCharacters(Viewer{UserID: 7, Role: entities.RolePlayer}, chars)
	require.Len(t, player, 2)
	assert.Equal(t, 2, player[0].ID)
	assert.Equal(t, 3, player[1].ID)

	dm := FilterCharacters(Viewer{UserID: 1, Role: entities.RoleDM}, chars)
	assert.Len(t, dm, 3)
}

func TestSanitizeCharacter(t *testing.T) {
	sheet := &entities.CharacterSheet{Class: "Lich"}
	npc := entities.Character{CharacterType: entities.CharacterAntagonist, Sheet: sheet}
	pc := entities.Character{CharacterType: entities.CharacterPlayer, Sheet: sheet}

	dmCopy := npc
	SanitizeCharacter(Viewer{Role: entities.RoleDM}, &dmCopy)
	assert.NotNil(t, dmCopy.Sheet)

	list := []entities.Character{npc, pc}
	SanitizeCharacters(Viewer{Role: entities.RolePlayer}, list)
	assert.Nil(t, list[0].Sheet)
	assert.NotNil(t, list[1].Sheet)
}
