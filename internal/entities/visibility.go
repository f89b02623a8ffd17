package entities

import "time"

// Visibility controls whether players can see an entity.
type Visibility string

const (
	VisibilityDMOnly        Visibility = "dm-only"
	VisibilityPlayerVisible Visibility = "player-visible"
	VisibilityHidden        Visibility = "hidden"
)

func (v Visibility) Valid() bool {
	switch v {
	case VisibilityDMOnly, VisibilityPlayerVisible, VisibilityHidden:
		return true
	}
	return false
}

// ValidForNote reports whether v is allowed on a player session note,
// which cannot be hidden.
func (v Visibility) ValidForNote() bool {
	return v == VisibilityDMOnly || v == VisibilityPlayerVisible
}

// Role is a participant's effective role within a campaign.
// The zero value means the user has no relationship to the campaign.
type Role string

const (
	RoleNone   Role = ""
	RoleDM     Role = "dm"
	RolePlayer Role = "player"
)

func (r Role) Valid() bool {
	return r == RoleDM || r == RolePlayer
}

// EntityType names a taggable, linkable, image-bearing campaign entity kind.
type EntityType string

const (
	EntityCharacter   EntityType = "character"
	EntityLocation    EntityType = "location"
	EntityFaction     EntityType = "faction"
	EntityWorldInfo   EntityType = "world_info"
	EntityQuest       EntityType = "quest"
	EntitySession     EntityType = "session"
	EntityCreature    EntityType = "creature"
	EntityContentItem EntityType = "content_item"
)

var entityTables = map[EntityType]string{
	EntityCharacter:   "characters",
	EntityLocation:    "locations",
	EntityFaction:     "factions",
	EntityWorldInfo:   "world_info",
	EntityQuest:       "quests",
	EntitySession:     "sessions",
	EntityCreature:    "creatures",
	EntityContentItem: "content_items",
}

func (t EntityType) Valid() bool {
	_, ok := entityTables[t]
	return ok
}

// Table returns the storage table for the entity type. Callers must check Valid first.
func (t EntityType) Table() string {
	return entityTables[t]
}

// Audit carries the creator/editor columns shared by every entity row.
type Audit struct {
	CreatedBy int       `json:"created_by"`
	UpdatedBy *int      `json:"updated_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// VisibilityInfo is the minimal projection needed to decide whether an entity
// of any kind is visible to a viewer.
type VisibilityInfo struct {
	Type          EntityType
	ID            int
	Visibility    Visibility
	CharacterType CharacterType
	PlayerUserID  *int
}
