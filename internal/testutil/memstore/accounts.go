package memstore

import (
	"context"
	"strings"

	"loremaster/internal/apperr"
	"loremaster/internal/entities"
)

// Users implements interfaces.UserStore.
type Users struct{ s *Store }

func (s *Store) Users() *Users { return &Users{s} }

func (u *Users) Create(_ context.Context, in *entities.User) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	for _, existing := range u.s.users {
		if existing.Username == in.Username || strings.EqualFold(existing.Email, in.Email) {
			return apperr.Conflict("user already exists")
		}
	}
	in.ID = u.s.id()
	in.CreatedAt = u.s.now()
	cp := *in
	u.s.users[in.ID] = &cp
	return nil
}

func (u *Users) GetByID(_ context.Context, id int) (*entities.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	existing, ok := u.s.users[id]
	if !ok {
		return nil, notFound("user")
	}
	cp := *existing
	return &cp, nil
}

func (u *Users) GetByUsername(_ context.Context, username string) (*entities.User, error) {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	for _, existing := range u.s.users {
		if existing.Username == username {
			cp := *existing
			return &cp, nil
		}
	}
	return nil, notFound("user")
}

func (u *Users) UpdatePassword(_ context.Context, id int, hash string) error {
	u.s.mu.Lock()
	defer u.s.mu.Unlock()

	existing, ok := u.s.users[id]
	if !ok {
		return notFound("user")
	}
	existing.PasswordHash = hash
	return nil
}

// Campaigns implements interfaces.CampaignStore.
type Campaigns struct{ s *Store }

func (s *Store) Campaigns() *Campaigns { return &Campaigns{s} }

// Create inserts the campaign and the owner's dm participant row.
func (c *Campaigns) Create(_ context.Context, in *entities.Campaign) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	owner, ok := c.s.users[in.OwnerID]
	if !ok {
		return brokenRef()
	}
	now := c.s.now()
	in.ID = c.s.id()
	in.CreatedAt = now
	in.UpdatedAt = now
	cp := *in
	c.s.campaigns[in.ID] = &cp
	c.s.participants[participantKey{in.ID, owner.ID}] = &entities.Participant{
		CampaignID: in.ID,
		UserID:     owner.ID,
		Username:   owner.Username,
		Role:       entities.RoleDM,
		JoinedAt:   now,
	}
	return nil
}

func (c *Campaigns) GetByID(_ context.Context, id int) (*entities.Campaign, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	existing, ok := c.s.campaigns[id]
	if !ok {
		return nil, notFound("campaign")
	}
	cp := *existing
	return &cp, nil
}

func (c *Campaigns) ListForUser(_ context.Context, userID int) ([]entities.CampaignMembership, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	out := []entities.CampaignMembership{}
	for _, id := range sortedKeys(c.s.campaigns) {
		camp := c.s.campaigns[id]
		m := entities.CampaignMembership{Campaign: *camp, IsOwner: camp.OwnerID == userID}
		switch p := c.s.participants[participantKey{id, userID}]; {
		case m.IsOwner:
			m.Role = entities.RoleDM
		case p != nil:
			m.Role = p.Role
		default:
			continue
		}
		out = append(out, m)
	}
	return out, nil
}

func (c *Campaigns) Update(_ context.Context, in *entities.Campaign) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	existing, ok := c.s.campaigns[in.ID]
	if !ok {
		return notFound("campaign")
	}
	existing.Name = in.Name
	existing.Description = in.Description
	existing.UpdatedAt = c.s.now()
	*in = *existing
	return nil
}

// Delete removes the campaign and everything scoped to it.
func (c *Campaigns) Delete(_ context.Context, id int) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	if _, ok := c.s.campaigns[id]; !ok {
		return notFound("campaign")
	}
	delete(c.s.campaigns, id)
	for k := range c.s.participants {
		if k.campaignID == id {
			delete(c.s.participants, k)
		}
	}

	s := c.s
	s.characters.removeCampaign(id)
	s.factions.removeCampaign(id)
	s.locations.removeCampaign(id)
	s.worldInfo.removeCampaign(id)
	s.creatures.removeCampaign(id)
	s.items.removeCampaign(id)
	s.quests.removeCampaign(id)
	s.sessions.removeCampaign(id)

	for k, o := range s.objectives {
		if s.quests.rows[o.QuestID] == nil {
			delete(s.objectives, k)
		}
	}
	for k, m := range s.milestones {
		if s.quests.rows[m.QuestID] == nil {
			delete(s.milestones, k)
		}
	}
	for k, l := range s.links {
		if s.quests.rows[l.QuestID] == nil {
			delete(s.links, k)
		}
	}
	for q := range s.questSessions {
		if s.quests.rows[q] == nil {
			delete(s.questSessions, q)
		}
	}
	for k, n := range s.notes {
		if n.CampaignID == id {
			delete(s.notes, k)
		}
	}
	for k, t := range s.tags {
		if t.CampaignID == id {
			delete(s.tags, k)
			s.untag(k)
		}
	}
	for k, img := range s.images {
		if img.CampaignID == id {
			delete(s.images, k)
		}
	}
	return nil
}

func (c *Campaigns) GetCampaignOwner(_ context.Context, campaignID int) (int, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	existing, ok := c.s.campaigns[campaignID]
	if !ok {
		return 0, notFound("campaign")
	}
	return existing.OwnerID, nil
}

func (c *Campaigns) GetParticipantRole(_ context.Context, campaignID, userID int) (entities.Role, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	if p, ok := c.s.participants[participantKey{campaignID, userID}]; ok {
		return p.Role, nil
	}
	return entities.RoleNone, nil
}

func (c *Campaigns) ListParticipants(_ context.Context, campaignID int) ([]entities.Participant, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	out := []entities.Participant{}
	for _, uid := range sortedKeys(c.s.users) {
		if p, ok := c.s.participants[participantKey{campaignID, uid}]; ok {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (c *Campaigns) GetParticipant(_ context.Context, campaignID, userID int) (*entities.Participant, error) {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	p, ok := c.s.participants[participantKey{campaignID, userID}]
	if !ok {
		return nil, notFound("participant")
	}
	cp := *p
	return &cp, nil
}

func (c *Campaigns) AddParticipant(_ context.Context, p *entities.Participant) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	user, ok := c.s.users[p.UserID]
	if !ok || c.s.campaigns[p.CampaignID] == nil {
		return brokenRef()
	}
	key := participantKey{p.CampaignID, p.UserID}
	if _, exists := c.s.participants[key]; exists {
		return apperr.Conflict("user is already a participant of this campaign")
	}
	p.Username = user.Username
	p.JoinedAt = c.s.now()
	cp := *p
	c.s.participants[key] = &cp
	return nil
}

func (c *Campaigns) UpdateParticipantRole(_ context.Context, campaignID, userID int, role entities.Role) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	p, ok := c.s.participants[participantKey{campaignID, userID}]
	if !ok {
		return notFound("participant")
	}
	p.Role = role
	return nil
}

func (c *Campaigns) RemoveParticipant(_ context.Context, campaignID, userID int) error {
	c.s.mu.Lock()
	defer c.s.mu.Unlock()

	key := participantKey{campaignID, userID}
	if _, ok := c.s.participants[key]; !ok {
		return notFound("participant")
	}
	delete(c.s.participants, key)
	return nil
}
