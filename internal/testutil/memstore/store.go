// Package memstore is an in-memory implementation of the storage ports for
// tests. It mirrors the relational behaviour the usecases depend on: ids are
// assigned on insert, visibility rules apply to lists, missing rows are
// NotFound, unique violations are Conflict and broken references are
// Validation. Lists are ordered by id.
package memstore

import (
	"sort"
	"strings"
	"sync"
	"time"

	"loremaster/internal/access"
	"loremaster/internal/apperr"
	"loremaster/internal/entities"
)

type participantKey struct{ campaignID, userID int }

type entityRef struct {
	t  entities.EntityType
	id int
}

type Store struct {
	mu     sync.Mutex
	nextID int
	now    func() time.Time

	users        map[int]*entities.User
	campaigns    map[int]*entities.Campaign
	participants map[participantKey]*entities.Participant

	characters *table[entities.Character]
	locations  *table[entities.Location]
	factions   *table[entities.Faction]
	worldInfo  *table[entities.WorldInfo]
	creatures  *table[entities.Creature]
	items      *table[entities.ContentItem]
	quests     *table[entities.Quest]
	sessions   *table[entities.Session]

	objectives    map[int]*entities.QuestObjective
	milestones    map[int]*entities.QuestMilestone
	links         map[int]*entities.QuestLink
	questSessions map[int]map[int]bool
	notes         map[int]*entities.SessionNote

	tags       map[int]*entities.Tag
	entityTags map[entityRef]map[int]bool
	images     map[int]*entities.EntityImage
}

func New() *Store {
	s := &Store{
		now:           func() time.Time { return time.Now().UTC() },
		users:         map[int]*entities.User{},
		campaigns:     map[int]*entities.Campaign{},
		participants:  map[participantKey]*entities.Participant{},
		objectives:    map[int]*entities.QuestObjective{},
		milestones:    map[int]*entities.QuestMilestone{},
		links:         map[int]*entities.QuestLink{},
		questSessions: map[int]map[int]bool{},
		notes:         map[int]*entities.SessionNote{},
		tags:          map[int]*entities.Tag{},
		entityTags:    map[entityRef]map[int]bool{},
		images:        map[int]*entities.EntityImage{},
	}

	s.characters = newTable(s, entities.EntityCharacter, "character",
		func(c *entities.Character) rowMeta {
			return rowMeta{&c.ID, &c.CampaignID, &c.Visibility, &c.Audit}
		},
		func(c *entities.Character, f entities.ListFilter) bool {
			return (f.Type == "" || string(c.CharacterType) == f.Type) &&
				contains(f.Search, c.Name, c.Description)
		})
	s.characters.visible = access.CanSeeCharacter
	s.characters.check = func(c *entities.Character) error {
		if c.PlayerUserID != nil && s.users[*c.PlayerUserID] == nil {
			return brokenRef()
		}
		return nil
	}

	s.locations = newTable(s, entities.EntityLocation, "location",
		func(l *entities.Location) rowMeta {
			return rowMeta{&l.ID, &l.CampaignID, &l.Visibility, &l.Audit}
		},
		func(l *entities.Location, f entities.ListFilter) bool {
			switch {
			case f.RootOnly && l.ParentID != nil:
				return false
			case f.ParentID != nil && (l.ParentID == nil || *l.ParentID != *f.ParentID):
				return false
			}
			return (f.Type == "" || l.LocationType == f.Type) &&
				contains(f.Search, l.Name, l.Description)
		})
	s.locations.check = func(l *entities.Location) error {
		if l.ParentID != nil && s.locations.rows[*l.ParentID] == nil {
			return brokenRef()
		}
		return nil
	}

	s.factions = newTable(s, entities.EntityFaction, "faction",
		func(f *entities.Faction) rowMeta {
			return rowMeta{&f.ID, &f.CampaignID, &f.Visibility, &f.Audit}
		},
		func(x *entities.Faction, f entities.ListFilter) bool {
			return (f.Type == "" || x.FactionType == f.Type) &&
				contains(f.Search, x.Name, x.Description, x.Goals)
		})
	s.factions.check = func(f *entities.Faction) error {
		if f.HeadquartersLocationID != nil && s.locations.rows[*f.HeadquartersLocationID] == nil {
			return brokenRef()
		}
		return nil
	}

	s.worldInfo = newTable(s, entities.EntityWorldInfo, "world info",
		func(w *entities.WorldInfo) rowMeta {
			return rowMeta{&w.ID, &w.CampaignID, &w.Visibility, &w.Audit}
		},
		func(w *entities.WorldInfo, f entities.ListFilter) bool {
			return (f.Category == "" || w.Category == f.Category) &&
				contains(f.Search, w.Title, w.Content)
		})

	s.creatures = newTable(s, entities.EntityCreature, "creature",
		func(c *entities.Creature) rowMeta {
			return rowMeta{&c.ID, &c.CampaignID, &c.Visibility, &c.Audit}
		},
		func(c *entities.Creature, f entities.ListFilter) bool {
			return (f.Type == "" || c.CreatureType == f.Type) &&
				contains(f.Search, c.Name, c.Description)
		})

	s.items = newTable(s, entities.EntityContentItem, "content item",
		func(i *entities.ContentItem) rowMeta {
			return rowMeta{&i.ID, &i.CampaignID, &i.Visibility, &i.Audit}
		},
		func(i *entities.ContentItem, f entities.ListFilter) bool {
			return (f.Category == "" || i.Category == f.Category) &&
				contains(f.Search, i.Name, i.Description)
		})

	s.quests = newTable(s, entities.EntityQuest, "quest",
		func(q *entities.Quest) rowMeta {
			return rowMeta{&q.ID, &q.CampaignID, &q.Visibility, &q.Audit}
		},
		func(q *entities.Quest, f entities.ListFilter) bool {
			return (f.Status == "" || string(q.Status) == f.Status) &&
				(f.Type == "" || string(q.QuestType) == f.Type) &&
				contains(f.Search, q.Title, q.Description)
		})

	s.sessions = newTable(s, entities.EntitySession, "session",
		func(x *entities.Session) rowMeta {
			return rowMeta{&x.ID, &x.CampaignID, &x.Visibility, &x.Audit}
		},
		func(x *entities.Session, f entities.ListFilter) bool {
			return contains(f.Search, x.Title, x.Summary)
		})

	s.cascades()
	return s
}

// SetClock replaces the timestamp source.
func (s *Store) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

func (s *Store) id() int {
	s.nextID++
	return s.nextID
}

func brokenRef() error {
	return apperr.Validation("referenced record does not exist or is still in use")
}

func notFound(what string) error {
	return apperr.NotFound(what + " not found")
}

func contains(term string, fields ...string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

func lower(s string) string { return strings.ToLower(s) }

func equalFold(a, b string) bool { return strings.EqualFold(a, b) }

func sortedKeys[V any](m map[int]V) []int {
	keys := make([]int, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// deleteRefs drops the polymorphic rows pointing at an entity.
func (s *Store) deleteRefs(t entities.EntityType, id int) {
	ref := entityRef{t, id}
	delete(s.entityTags, ref)
	for k, img := range s.images {
		if img.EntityType == t && img.EntityID == id {
			delete(s.images, k)
		}
	}
	for k, l := range s.links {
		if l.EntityType == t && l.EntityID == id {
			delete(s.links, k)
		}
	}
}
