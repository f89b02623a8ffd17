package access

import "loremaster/internal/entities"

// SanitizeCharacter strips fields the viewer may not see. Players may know an
// NPC or antagonist exists but not its stat block.
func SanitizeCharacter(v Viewer, c *entities.Character) {
	if v.Role == entities.RoleDM || c == nil {
		return
	}
	if c.CharacterType != entities.CharacterPlayer {
		c.Sheet = nil
	}
}

// SanitizeCharacters applies SanitizeCharacter to each element.
func SanitizeCharacters(v Viewer, cs []entities.Character) {
	for i := range cs {
		SanitizeCharacter(v, &cs[i])
	}
}
