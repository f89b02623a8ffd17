package access

import (
	sq "github.com/Masterminds/squirrel"

	"loremaster/internal/apperr"
	"loremaster/internal/entities"
)

// RequireDM rejects every role but dm.
func RequireDM(v Viewer) error {
	if !v.IsDM() {
		return apperr.Forbidden("DM role required")
	}
	return nil
}

// RequireMember rejects callers with no role in the campaign.
func RequireMember(v Viewer) error {
	if !v.Role.Valid() {
		return apperr.Forbidden("not a participant of this campaign")
	}
	return nil
}

// CheckVisibility validates vis, substituting def when it is empty.
func CheckVisibility(vis *entities.Visibility, def entities.Visibility) error {
	if *vis == "" {
		*vis = def
	}
	if !vis.Valid() {
		return apperr.Validation("visibility must be one of dm-only, player-visible, hidden")
	}
	return nil
}

// PrepareCharacterCreate enforces who may create which character and fills the
// role-dependent defaults. Players can only create their own player character.
func PrepareCharacterCreate(v Viewer, c *entities.Character) error {
	switch v.Role {
	case entities.RoleDM:
		if c.CharacterType == "" {
			c.CharacterType = entities.CharacterNPC
		}
		if !c.CharacterType.Valid() {
			return apperr.Validation("character_type must be one of player, npc, antagonist")
		}
		if c.CharacterType != entities.CharacterPlayer {
			c.PlayerUserID = nil
		}
		if err := CheckVisibility(&c.Visibility, entities.VisibilityDMOnly); err != nil {
			return err
		}
	case entities.RolePlayer:
		if c.CharacterType != "" && c.CharacterType != entities.CharacterPlayer {
			return apperr.Forbidden("players may only create player characters")
		}
		self := v.UserID
		c.CharacterType = entities.CharacterPlayer
		c.PlayerUserID = &self
		if err := CheckVisibility(&c.Visibility, entities.VisibilityPlayerVisible); err != nil {
			return err
		}
	default:
		return apperr.Forbidden("not a participant of this campaign")
	}
	c.CampaignID = v.CampaignID
	c.CreatedBy = v.UserID
	return nil
}

// ApplyCharacterUpdate merges in onto existing according to the viewer's edit
// scope and returns the row to store.
//
//	dm:                       every field
//	player, own character:    description, sheet, visibility
//	player, authored npc:     every field except type and owner
func ApplyCharacterUpdate(v Viewer, existing, in *entities.Character) (*entities.Character, error) {
	out := *existing
	editor := v.UserID
	out.UpdatedBy = &editor

	switch {
	case v.IsDM():
		out.Name = in.Name
		out.Description = in.Description
		out.Sheet = in.Sheet
		if in.CharacterType != "" {
			out.CharacterType = in.CharacterType
		}
		if !out.CharacterType.Valid() {
			return nil, apperr.Validation("character_type must be one of player, npc, antagonist")
		}
		if in.PlayerUserIDSet || in.PlayerUserID != nil {
			out.PlayerUserID = in.PlayerUserID
		}
		if out.CharacterType != entities.CharacterPlayer {
			out.PlayerUserID = nil
		}
	case isOwnCharacter(v, existing.CharacterType, existing.PlayerUserID):
		out.Description = in.Description
		out.Sheet = in.Sheet
	case v.IsPlayer() && existing.CharacterType != entities.CharacterPlayer && existing.CreatedBy == v.UserID:
		out.Name = in.Name
		out.Description = in.Description
		out.Sheet = in.Sheet
	default:
		return nil, apperr.Forbidden("you may not edit this character")
	}

	if in.Visibility != "" {
		out.Visibility = in.Visibility
	}
	if !out.Visibility.Valid() {
		return nil, apperr.Validation("visibility must be one of dm-only, player-visible, hidden")
	}
	return &out, nil
}

// AuthorizeCharacterDelete allows DMs, and players deleting NPCs they authored.
func AuthorizeCharacterDelete(v Viewer, existing *entities.Character) error {
	if v.IsDM() {
		return nil
	}
	if v.IsPlayer() && existing.CharacterType != entities.CharacterPlayer && existing.CreatedBy == v.UserID {
		return nil
	}
	return apperr.Forbidden("you may not delete this character")
}

// PrepareSessionCreate stamps the author and the role-dependent default visibility.
func PrepareSessionCreate(v Viewer, s *entities.Session) error {
	def := entities.VisibilityDMOnly
	switch v.Role {
	case entities.RoleDM:
	case entities.RolePlayer:
		def = entities.VisibilityPlayerVisible
	default:
		return apperr.Forbidden("not a participant of this campaign")
	}
	if err := CheckVisibility(&s.Visibility, def); err != nil {
		return err
	}
	s.CampaignID = v.CampaignID
	s.CreatedBy = v.UserID
	return nil
}

// AuthorizeSessionWrite allows DMs, and players touching sessions they created.
func AuthorizeSessionWrite(v Viewer, existing *entities.Session) error {
	if v.IsDM() || (v.IsPlayer() && existing.CreatedBy == v.UserID) {
		return nil
	}
	return apperr.Forbidden("you may only modify sessions you created")
}

// PrepareNoteCreate stamps the author and checks the note visibility, which
// cannot be hidden.
func PrepareNoteCreate(v Viewer, n *entities.SessionNote) error {
	if err := RequireMember(v); err != nil {
		return err
	}
	if n.Visibility == "" {
		n.Visibility = entities.VisibilityPlayerVisible
	}
	if !n.Visibility.ValidForNote() {
		return apperr.Validation("note visibility must be dm-only or player-visible")
	}
	n.CampaignID = v.CampaignID
	n.AuthorID = v.UserID
	return nil
}

// AuthorizeNoteWrite allows DMs and the note's author.
func AuthorizeNoteWrite(v Viewer, existing *entities.SessionNote) error {
	if v.IsDM() || (v.IsPlayer() && existing.AuthorID == v.UserID) {
		return nil
	}
	return apperr.Forbidden("you may only modify your own notes")
}

// CanSeeNote: DMs see every note; players see shared notes and their own.
func CanSeeNote(v Viewer, n *entities.SessionNote) bool {
	switch v.Role {
	case entities.RoleDM:
		return true
	case entities.RolePlayer:
		return n.Visibility == entities.VisibilityPlayerVisible || n.AuthorID == v.UserID
	}
	return false
}

// NotePredicate is the SQL form of CanSeeNote.
func NotePredicate(v Viewer, prefix string) sq.Sqlizer {
	switch v.Role {
	case entities.RoleDM:
		return sq.Expr("TRUE")
	case entities.RolePlayer:
		return sq.Or{
			sq.Eq{prefix + "visibility": string(entities.VisibilityPlayerVisible)},
			sq.Eq{prefix + "author_id": v.UserID},
		}
	}
	return sq.Expr("FALSE")
}
