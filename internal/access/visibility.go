package access

import (
	sq "github.com/Masterminds/squirrel"

	"loremaster/internal/entities"
)

// CanSee reports whether the viewer may read an entity with visibility vis.
func CanSee(v Viewer, vis entities.Visibility) bool {
	switch v.Role {
	case entities.RoleDM:
		return vis != entities.VisibilityHidden
	case entities.RolePlayer:
		return vis == entities.VisibilityPlayerVisible
	}
	return false
}

// CanSeeCharacter adds the own-sheet exception: a player always sees the
// player-type character assigned to them, whatever its visibility.
func CanSeeCharacter(v Viewer, c *entities.Character) bool {
	if isOwnCharacter(v, c.CharacterType, c.PlayerUserID) {
		return true
	}
	return CanSee(v, c.Visibility)
}

// CanSeeInfo applies the rule matching info's entity type.
func CanSeeInfo(v Viewer, info entities.VisibilityInfo) bool {
	if info.Type == entities.EntityCharacter && isOwnCharacter(v, info.CharacterType, info.PlayerUserID) {
		return true
	}
	return CanSee(v, info.Visibility)
}

func isOwnCharacter(v Viewer, t entities.CharacterType, playerUserID *int) bool {
	return v.Role == entities.RolePlayer &&
		t == entities.CharacterPlayer &&
		playerUserID != nil && *playerUserID == v.UserID
}

// VisibilityPredicate is the SQL form of CanSee for the given column.
// With no role it matches nothing.
func VisibilityPredicate(v Viewer, column string) sq.Sqlizer {
	switch v.Role {
	case entities.RoleDM:
		return sq.NotEq{column: string(entities.VisibilityHidden)}
	case entities.RolePlayer:
		return sq.Eq{column: string(entities.VisibilityPlayerVisible)}
	}
	return sq.Expr("FALSE")
}

// CharacterVisibilityPredicate is the SQL form of CanSeeCharacter. prefix is
// the table alias including the trailing dot, or "".
func CharacterVisibilityPredicate(v Viewer, prefix string) sq.Sqlizer {
	base := VisibilityPredicate(v, prefix+"visibility")
	if v.Role != entities.RolePlayer {
		return base
	}
	return sq.Or{
		base,
		sq.And{
			sq.Eq{prefix + "character_type": string(entities.CharacterPlayer)},
			sq.Eq{prefix + "player_user_id": v.UserID},
		},
	}
}

// FilterCharacters keeps the characters v may see, in order.
func FilterCharacters(v Viewer, in []entities.Character) []entities.Character {
	out := make([]entities.Character, 0, len(in))
	for i := range in {
		if CanSeeCharacter(v, &in[i]) {
			out = append(out, in[i])
		}
	}
	return out
}
