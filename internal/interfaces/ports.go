package interfaces

import (
	"context"

	"loremaster/internal/access"
	"loremaster/internal/entities"
)

// Stores return apperr errors: NotFound for missing rows, Conflict for unique
// violations, Validation for broken references, Internal otherwise. List
// methods push the viewer's visibility rule into the query.

type UserStore interface {
	Create(ctx context.Context, u *entities.User) error
	GetByID(ctx context.Context, id int) (*entities.User, error)
	GetByUsername(ctx context.Context, username string) (*entities.User, error)
	UpdatePassword(ctx context.Context, id int, hash string) error
}

type CampaignStore interface {
	access.MembershipLookup

	Create(ctx context.Context, c *entities.Campaign) error
	GetByID(ctx context.Context, id int) (*entities.Campaign, error)
	ListForUser(ctx context.Context, userID int) ([]entities.CampaignMembership, error)
	Update(ctx context.Context, c *entities.Campaign) error
	Delete(ctx context.Context, id int) error

	ListParticipants(ctx context.Context, campaignID int) ([]entities.Participant, error)
	GetParticipant(ctx context.Context, campaignID, userID int) (*entities.Participant, error)
	AddParticipant(ctx context.Context, p *entities.Participant) error
	UpdateParticipantRole(ctx context.Context, campaignID, userID int, role entities.Role) error
	RemoveParticipant(ctx context.Context, campaignID, userID int) error
}

type CharacterStore interface {
	List(ctx context.Context, v access.Viewer, f entities.ListFilter) ([]entities.Character, error)
	GetByID(ctx context.Context, campaignID, id int) (*entities.Character, error)
	Create(ctx context.Context, c *entities.Character) error
	Update(ctx context.Context, c *entities.Character) error
	Delete(ctx context.Context, campaignID, id int) error
}

type LocationStore interface {
	List(ctx context.Context, v access.Viewer, f entities.ListFilter) ([]entities.Location, error)
	GetByID(ctx context.Context, campaignID, id int) (*entities.Location, error)
	Create(ctx context.Context, l *entities.Location) error
	Update(ctx context.Context, l *entities.Location) error
	Delete(ctx context.Context, campaignID, id int) error
	CountChildren(ctx context.Context, campaignID, id int) (int, error)
	// IsAncestor reports whether ancestorID appears on the parent chain of id.
	IsAncestor(ctx context.Context, campaignID, ancestorID, id int) (bool, error)
}

type FactionStore interface {
	List(ctx context.Context, v access.Viewer, f entities.ListFilter) ([]entities.Faction, error)
	GetByID(ctx context.Context, campaignID, id int) (*entities.Faction, error)
	Create(ctx context.Context, f *entities.Faction) error
	Update(ctx context.Context, f *entities.Faction) error
	Delete(ctx context.Context, campaignID, id int) error
}

type WorldInfoStore interface {
	List(ctx context.Context, v access.Viewer, f entities.ListFilter) ([]entities.WorldInfo, error)
	GetByID(ctx context.Context, campaignID, id int) (*entities.WorldInfo, error)
	Create(ctx context.Context, w *entities.WorldInfo) error
	Update(ctx context.Context, w *entities.WorldInfo) error
	Delete(ctx context.Context, campaignID, id int) error
}

type CreatureStore interface {
	List(ctx context.Context, v access.Viewer, f entities.ListFilter) ([]entities.Creature, error)
	GetByID(ctx context.Context, campaignID, id int) (*entities.Creature, error)
	Create(ctx context.Context, c *entities.Creature) error
	Update(ctx context.Context, c *entities.Creature) error
	Delete(ctx context.Context, campaignID, id int) error
}

type ContentItemStore interface {
	List(ctx context.Context, v access.Viewer, f entities.ListFilter) ([]entities.ContentItem, error)
	GetByID(ctx context.Context, campaignID, id int) (*entities.ContentItem, error)
	Create(ctx context.Context, i *entities.ContentItem) error
	Update(ctx context.Context, i *entities.ContentItem) error
	Delete(ctx context.Context, campaignID, id int) error
}

type QuestStore interface {
	List(ctx context.Context, v access.Viewer, f entities.ListFilter) ([]entities.Quest, error)
	GetByID(ctx context.Context, campaignID, id int) (*entities.Quest, error)
	// LoadDetails fills objectives, milestones, session ids and the links v may see.
	LoadDetails(ctx context.Context, v access.Viewer, q *entities.Quest) error
	// CreateBundle and UpdateBundle write the quest and any non-nil sub-entity
	// slices in one transaction. Non-nil slices replace the stored set.
	CreateBundle(ctx context.Context, q *entities.Quest) error
	UpdateBundle(ctx context.Context, q *entities.Quest) error
	Delete(ctx context.Context, campaignID, id int) error

	AddObjective(ctx context.Context, o *entities.QuestObjective) error
	UpdateObjective(ctx context.Context, o *entities.QuestObjective) error
	DeleteObjective(ctx context.Context, questID, id int) error
	AddMilestone(ctx context.Context, m *entities.QuestMilestone) error
	UpdateMilestone(ctx context.Context, m *entities.QuestMilestone) error
	DeleteMilestone(ctx context.Context, questID, id int) error
	AddLink(ctx context.Context, l *entities.QuestLink) error
	DeleteLink(ctx context.Context, questID, id int) error
	ReplaceSessions(ctx context.Context, campaignID, questID int, sessionIDs []int) error
}

type SessionStore interface {
	List(ctx context.Context, v access.Viewer, f entities.ListFilter) ([]entities.Session, error)
	GetByID(ctx context.Context, campaignID, id int) (*entities.Session, error)
	Create(ctx context.Context, s *entities.Session) error
	Update(ctx context.Context, s *entities.Session) error
	Delete(ctx context.Context, campaignID, id int) error

	ListNotes(ctx context.Context, v access.Viewer, sessionID int) ([]entities.SessionNote, error)
	GetNote(ctx context.Context, sessionID, id int) (*entities.SessionNote, error)
	CreateNote(ctx context.Context, n *entities.SessionNote) error
	UpdateNote(ctx context.Context, n *entities.SessionNote) error
	DeleteNote(ctx context.Context, sessionID, id int) error
}

type TagStore interface {
	List(ctx context.Context, campaignID int) ([]entities.Tag, error)
	GetByID(ctx context.Context, campaignID, id int) (*entities.Tag, error)
	Create(ctx context.Context, t *entities.Tag) error
	Update(ctx context.Context, t *entities.Tag) error
	Delete(ctx context.Context, campaignID, id int) error
	ListForEntity(ctx context.Context, campaignID int, entityType entities.EntityType, entityID int) ([]entities.Tag, error)
	// ReplaceForEntity swaps the entity's tag set atomically. If any tag id is
	// not in the campaign nothing changes and a Validation error is returned.
	ReplaceForEntity(ctx context.Context, campaignID int, entityType entities.EntityType, entityID int, tagIDs []int) error
}

type ImageStore interface {
	Create(ctx context.Context, img *entities.EntityImage) error
	GetByID(ctx context.Context, campaignID, id int) (*entities.EntityImage, error)
	ListForEntity(ctx context.Context, campaignID int, entityType entities.EntityType, entityID int) ([]entities.EntityImage, error)
	Delete(ctx context.Context, campaignID, id int) error
}

// EntityLookup answers visibility questions about an entity of any kind.
type EntityLookup interface {
	GetVisibilityInfo(ctx context.Context, campaignID int, entityType entities.EntityType, id int) (*entities.VisibilityInfo, error)
}

// FileStorage keeps image blobs under a campaign/entity-type/entity-id namespace.
type FileStorage interface {
	Save(campaignID int, entityType entities.EntityType, entityID int, data []byte) (relPath, mimeType string, err error)
	Open(relPath string) (string, error)
	Remove(relPath string) error
	RemoveEntity(campaignID int, entityType entities.EntityType, entityID int) error
	RemoveCampaign(campaignID int) error
}
