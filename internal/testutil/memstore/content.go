package memstore

import (
	"context"
	"sort"

	"loremaster/internal/access"
	"loremaster/internal/apperr"
	"loremaster/internal/entities"
)

func (s *Store) Characters() *table[entities.Character]     { return s.characters }
func (s *Store) Factions() *table[entities.Faction]         { return s.factions }
func (s *Store) WorldInfo() *table[entities.WorldInfo]      { return s.worldInfo }
func (s *Store) Creatures() *table[entities.Creature]       { return s.creatures }
func (s *Store) ContentItems() *table[entities.ContentItem] { return s.items }

// cascades installs the delete side effects the schema would apply.
func (s *Store) cascades() {
	s.locations.onDelete = func(id int) error {
		for _, l := range s.locations.rows {
			if l.ParentID != nil && *l.ParentID == id {
				return brokenRef()
			}
		}
		for _, f := range s.factions.rows {
			if f.HeadquartersLocationID != nil && *f.HeadquartersLocationID == id {
				f.HeadquartersLocationID = nil
			}
		}
		return nil
	}
	s.sessions.onDelete = func(id int) error {
		for k, n := range s.notes {
			if n.SessionID == id {
				delete(s.notes, k)
			}
		}
		for _, set := range s.questSessions {
			delete(set, id)
		}
		for _, m := range s.milestones {
			if m.SessionID != nil && *m.SessionID == id {
				m.SessionID = nil
			}
		}
		return nil
	}
	s.quests.onDelete = func(id int) error {
		for k, o := range s.objectives {
			if o.QuestID == id {
				delete(s.objectives, k)
			}
		}
		for k, m := range s.milestones {
			if m.QuestID == id {
				delete(s.milestones, k)
			}
		}
		for k, l := range s.links {
			if l.QuestID == id {
				delete(s.links, k)
			}
		}
		delete(s.questSessions, id)
		return nil
	}
}

// Locations implements interfaces.LocationStore.
type Locations struct {
	*table[entities.Location]
}

func (s *Store) Locations() *Locations { return &Locations{s.locations} }

func (l *Locations) CountChildren(_ context.Context, campaignID, id int) (int, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()

	n := 0
	for _, row := range l.rows {
		if row.CampaignID == campaignID && row.ParentID != nil && *row.ParentID == id {
			n++
		}
	}
	return n, nil
}

func (l *Locations) IsAncestor(_ context.Context, campaignID, ancestorID, id int) (bool, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()

	seen := map[int]bool{}
	for cur := id; !seen[cur]; {
		seen[cur] = true
		row, ok := l.rows[cur]
		if !ok || row.CampaignID != campaignID {
			return false, nil
		}
		if cur == ancestorID {
			return true, nil
		}
		if row.ParentID == nil {
			return false, nil
		}
		cur = *row.ParentID
	}
	return false, nil
}

// Sessions implements interfaces.SessionStore.
type Sessions struct {
	*table[entities.Session]
}

func (s *Store) Sessions() *Sessions { return &Sessions{s.sessions} }

func (x *Sessions) ListNotes(_ context.Context, v access.Viewer, sessionID int) ([]entities.SessionNote, error) {
	x.s.mu.Lock()
	defer x.s.mu.Unlock()

	out := []entities.SessionNote{}
	for _, id := range sortedKeys(x.s.notes) {
		n := x.s.notes[id]
		if n.SessionID == sessionID && n.CampaignID == v.CampaignID && access.CanSeeNote(v, n) {
			out = append(out, *n)
		}
	}
	return out, nil
}

func (x *Sessions) GetNote(_ context.Context, sessionID, id int) (*entities.SessionNote, error) {
	x.s.mu.Lock()
	defer x.s.mu.Unlock()

	n, ok := x.s.notes[id]
	if !ok || n.SessionID != sessionID {
		return nil, notFound("note")
	}
	cp := *n
	return &cp, nil
}

func (x *Sessions) CreateNote(_ context.Context, n *entities.SessionNote) error {
	x.s.mu.Lock()
	defer x.s.mu.Unlock()

	if _, ok := x.rows[n.SessionID]; !ok {
		return brokenRef()
	}
	now := x.s.now()
	n.ID = x.s.id()
	n.CreatedAt = now
	n.UpdatedAt = now
	cp := *n
	x.s.notes[n.ID] = &cp
	return nil
}

func (x *Sessions) UpdateNote(_ context.Context, n *entities.SessionNote) error {
	x.s.mu.Lock()
	defer x.s.mu.Unlock()

	existing, ok := x.s.notes[n.ID]
	if !ok || existing.SessionID != n.SessionID {
		return notFound("note")
	}
	existing.Content = n.Content
	existing.Visibility = n.Visibility
	existing.UpdatedAt = x.s.now()
	n.UpdatedAt = existing.UpdatedAt
	return nil
}

func (x *Sessions) DeleteNote(_ context.Context, sessionID, id int) error {
	x.s.mu.Lock()
	defer x.s.mu.Unlock()

	n, ok := x.s.notes[id]
	if !ok || n.SessionID != sessionID {
		return notFound("note")
	}
	delete(x.s.notes, id)
	return nil
}

// Tags implements interfaces.TagStore.
type Tags struct{ s *Store }

func (s *Store) Tags() *Tags { return &Tags{s} }

func tagConflict() error {
	return apperr.Conflict("a tag with this name already exists in the campaign")
}

func (s *Store) tagNameTaken(campaignID, exceptID int, name string) bool {
	for _, t := range s.tags {
		if t.CampaignID == campaignID && t.ID != exceptID && equalFold(t.Name, name) {
			return true
		}
	}
	return false
}

func (s *Store) untag(tagID int) {
	for _, set := range s.entityTags {
		delete(set, tagID)
	}
}

func sortTags(tags []entities.Tag) {
	sort.Slice(tags, func(i, j int) bool {
		a, b := lower(tags[i].Name), lower(tags[j].Name)
		if a != b {
			return a < b
		}
		return tags[i].ID < tags[j].ID
	})
}

func (t *Tags) List(_ context.Context, campaignID int) ([]entities.Tag, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	out := []entities.Tag{}
	for _, tag := range t.s.tags {
		if tag.CampaignID == campaignID {
			out = append(out, *tag)
		}
	}
	sortTags(out)
	return out, nil
}

func (t *Tags) GetByID(_ context.Context, campaignID, id int) (*entities.Tag, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	tag, ok := t.s.tags[id]
	if !ok || tag.CampaignID != campaignID {
		return nil, notFound("tag")
	}
	cp := *tag
	return &cp, nil
}

func (t *Tags) Create(_ context.Context, in *entities.Tag) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	if t.s.campaigns[in.CampaignID] == nil {
		return brokenRef()
	}
	if t.s.tagNameTaken(in.CampaignID, 0, in.Name) {
		return tagConflict()
	}
	in.ID = t.s.id()
	in.CreatedAt = t.s.now()
	cp := *in
	t.s.tags[in.ID] = &cp
	return nil
}

func (t *Tags) Update(_ context.Context, in *entities.Tag) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	existing, ok := t.s.tags[in.ID]
	if !ok || existing.CampaignID != in.CampaignID {
		return notFound("tag")
	}
	if t.s.tagNameTaken(in.CampaignID, in.ID, in.Name) {
		return tagConflict()
	}
	existing.Name = in.Name
	existing.Color = in.Color
	in.CreatedAt = existing.CreatedAt
	return nil
}

func (t *Tags) Delete(_ context.Context, campaignID, id int) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	tag, ok := t.s.tags[id]
	if !ok || tag.CampaignID != campaignID {
		return notFound("tag")
	}
	delete(t.s.tags, id)
	t.s.untag(id)
	return nil
}

func (t *Tags) ListForEntity(_ context.Context, campaignID int, entityType entities.EntityType, entityID int) ([]entities.Tag, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	out := []entities.Tag{}
	for id := range t.s.entityTags[entityRef{entityType, entityID}] {
		if tag, ok := t.s.tags[id]; ok && tag.CampaignID == campaignID {
			out = append(out, *tag)
		}
	}
	sortTags(out)
	return out, nil
}

func (t *Tags) ReplaceForEntity(_ context.Context, campaignID int, entityType entities.EntityType, entityID int, tagIDs []int) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	set := map[int]bool{}
	for _, id := range tagIDs {
		tag, ok := t.s.tags[id]
		if !ok || tag.CampaignID != campaignID {
			return apperr.Validation("one or more tags do not belong to this campaign")
		}
		set[id] = true
	}
	t.s.entityTags[entityRef{entityType, entityID}] = set
	return nil
}

// Images implements interfaces.ImageStore.
type Images struct{ s *Store }

func (s *Store) Images() *Images { return &Images{s} }

func (i *Images) Create(_ context.Context, img *entities.EntityImage) error {
	i.s.mu.Lock()
	defer i.s.mu.Unlock()

	if i.s.campaigns[img.CampaignID] == nil {
		return brokenRef()
	}
	img.ID = i.s.id()
	img.CreatedAt = i.s.now()
	cp := *img
	i.s.images[img.ID] = &cp
	return nil
}

func (i *Images) GetByID(_ context.Context, campaignID, id int) (*entities.EntityImage, error) {
	i.s.mu.Lock()
	defer i.s.mu.Unlock()

	img, ok := i.s.images[id]
	if !ok || img.CampaignID != campaignID {
		return nil, notFound("image")
	}
	cp := *img
	return &cp, nil
}

func (i *Images) ListForEntity(_ context.Context, campaignID int, entityType entities.EntityType, entityID int) ([]entities.EntityImage, error) {
	i.s.mu.Lock()
	defer i.s.mu.Unlock()

	out := []entities.EntityImage{}
	for _, id := range sortedKeys(i.s.images) {
		img := i.s.images[id]
		if img.CampaignID == campaignID && img.EntityType == entityType && img.EntityID == entityID {
			out = append(out, *img)
		}
	}
	return out, nil
}

func (i *Images) Delete(_ context.Context, campaignID, id int) error {
	i.s.mu.Lock()
	defer i.s.mu.Unlock()

	img, ok := i.s.images[id]
	if !ok || img.CampaignID != campaignID {
		return notFound("image")
	}
	delete(i.s.images, id)
	return nil
}

// Lookup implements interfaces.EntityLookup.
type Lookup struct{ s *Store }

func (s *Store) Lookup() *Lookup { return &Lookup{s} }

func (l *Lookup) GetVisibilityInfo(_ context.Context, campaignID int, entityType entities.EntityType, id int) (*entities.VisibilityInfo, error) {
	l.s.mu.Lock()
	defer l.s.mu.Unlock()

	info := entities.VisibilityInfo{Type: entityType, ID: id}
	var vis *entities.Visibility
	var cid int
	s := l.s
	switch entityType {
	case entities.EntityCharacter:
		if c, ok := s.characters.rows[id]; ok {
			vis, cid = &c.Visibility, c.CampaignID
			info.CharacterType = c.CharacterType
			info.PlayerUserID = c.PlayerUserID
		}
	case entities.EntityLocation:
		if r, ok := s.locations.rows[id]; ok {
			vis, cid = &r.Visibility, r.CampaignID
		}
	case entities.EntityFaction:
		if r, ok := s.factions.rows[id]; ok {
			vis, cid = &r.Visibility, r.CampaignID
		}
	case entities.EntityWorldInfo:
		if r, ok := s.worldInfo.rows[id]; ok {
			vis, cid = &r.Visibility, r.CampaignID
		}
	case entities.EntityQuest:
		if r, ok := s.quests.rows[id]; ok {
			vis, cid = &r.Visibility, r.CampaignID
		}
	case entities.EntitySession:
		if r, ok := s.sessions.rows[id]; ok {
			vis, cid = &r.Visibility, r.CampaignID
		}
	case entities.EntityCreature:
		if r, ok := s.creatures.rows[id]; ok {
			vis, cid = &r.Visibility, r.CampaignID
		}
	case entities.EntityContentItem:
		if r, ok := s.items.rows[id]; ok {
			vis, cid = &r.Visibility, r.CampaignID
		}
	default:
		return nil, apperr.Validation("unknown entity type")
	}
	if vis == nil || cid != campaignID {
		return nil, notFound(string(entityType))
	}
	info.Visibility = *vis
	return &info, nil
}
