package memstore

import (
	"context"
	"sort"

	"loremaster/internal/access"
	"loremaster/internal/entities"
)

// Quests implements interfaces.QuestStore.
type Quests struct {
	*table[entities.Quest]
}

func (s *Store) Quests() *Quests { return &Quests{s.quests} }

// bare strips the sub-entities so only the quest row is stored.
func bare(q *entities.Quest) *entities.Quest {
	cp := *q
	cp.Objectives, cp.Milestones, cp.Links, cp.SessionIDs = nil, nil, nil, nil
	return &cp
}

func (q *Quests) LoadDetails(_ context.Context, v access.Viewer, quest *entities.Quest) error {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()

	quest.Objectives = []entities.QuestObjective{}
	for _, id := range sortedKeys(q.s.objectives) {
		if o := q.s.objectives[id]; o.QuestID == quest.ID {
			quest.Objectives = append(quest.Objectives, *o)
		}
	}
	sort.SliceStable(quest.Objectives, func(i, j int) bool {
		return quest.Objectives[i].SortOrder < quest.Objectives[j].SortOrder
	})

	quest.Milestones = []entities.QuestMilestone{}
	for _, id := range sortedKeys(q.s.milestones) {
		if m := q.s.milestones[id]; m.QuestID == quest.ID {
			quest.Milestones = append(quest.Milestones, *m)
		}
	}

	quest.Links = []entities.QuestLink{}
	for _, id := range sortedKeys(q.s.links) {
		if l := q.s.links[id]; l.QuestID == quest.ID && access.CanSee(v, l.Visibility) {
			quest.Links = append(quest.Links, *l)
		}
	}

	quest.SessionIDs = sortedKeys(q.s.questSessions[quest.ID])
	return nil
}

// checkChildren validates the references a bundle write would insert.
func (q *Quests) checkChildren(quest *entities.Quest) error {
	for _, m := range quest.Milestones {
		if m.SessionID != nil && q.s.sessions.rows[*m.SessionID] == nil {
			return brokenRef()
		}
	}
	for _, sid := range quest.SessionIDs {
		if q.s.sessions.rows[sid] == nil {
			return brokenRef()
		}
	}
	return nil
}

func (q *Quests) CreateBundle(_ context.Context, quest *entities.Quest) error {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()

	if err := q.checkChildren(quest); err != nil {
		return err
	}
	row := bare(quest)
	if err := q.insert(row); err != nil {
		return err
	}
	quest.ID, quest.CreatedAt, quest.UpdatedAt = row.ID, row.CreatedAt, row.UpdatedAt
	q.writeChildren(quest, false)
	return nil
}

func (q *Quests) UpdateBundle(_ context.Context, quest *entities.Quest) error {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()

	if err := q.checkChildren(quest); err != nil {
		return err
	}
	row := bare(quest)
	if err := q.update(row); err != nil {
		return err
	}
	quest.UpdatedAt = row.UpdatedAt
	q.writeChildren(quest, true)
	return nil
}

func (q *Quests) writeChildren(quest *entities.Quest, replace bool) {
	s := q.s
	if quest.Objectives != nil {
		if replace {
			for k, o := range s.objectives {
				if o.QuestID == quest.ID {
					delete(s.objectives, k)
				}
			}
		}
		for i := range quest.Objectives {
			o := &quest.Objectives[i]
			o.QuestID, o.ID = quest.ID, s.id()
			cp := *o
			s.objectives[o.ID] = &cp
		}
	}
	if quest.Milestones != nil {
		if replace {
			for k, m := range s.milestones {
				if m.QuestID == quest.ID {
					delete(s.milestones, k)
				}
			}
		}
		for i := range quest.Milestones {
			m := &quest.Milestones[i]
			m.QuestID, m.ID = quest.ID, s.id()
			cp := *m
			s.milestones[m.ID] = &cp
		}
	}
	if quest.Links != nil {
		if replace {
			for k, l := range s.links {
				if l.QuestID == quest.ID {
					delete(s.links, k)
				}
			}
		}
		for i := range quest.Links {
			l := &quest.Links[i]
			l.QuestID, l.ID = quest.ID, s.id()
			cp := *l
			s.links[l.ID] = &cp
		}
	}
	if quest.SessionIDs != nil {
		set := map[int]bool{}
		for _, sid := range quest.SessionIDs {
			set[sid] = true
		}
		s.questSessions[quest.ID] = set
	}
}

func (q *Quests) AddObjective(_ context.Context, o *entities.QuestObjective) error {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()

	if q.rows[o.QuestID] == nil {
		return brokenRef()
	}
	o.ID = q.s.id()
	cp := *o
	q.s.objectives[o.ID] = &cp
	return nil
}

func (q *Quests) UpdateObjective(_ context.Context, o *entities.QuestObjective) error {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()

	existing, ok := q.s.objectives[o.ID]
	if !ok || existing.QuestID != o.QuestID {
		return notFound("objective")
	}
	cp := *o
	q.s.objectives[o.ID] = &cp
	return nil
}

func (q *Quests) DeleteObjective(_ context.Context, questID, id int) error {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()

	existing, ok := q.s.objectives[id]
	if !ok || existing.QuestID != questID {
		return notFound("objective")
	}
	delete(q.s.objectives, id)
	return nil
}

func (q *Quests) AddMilestone(_ context.Context, m *entities.QuestMilestone) error {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()

	if q.rows[m.QuestID] == nil || (m.SessionID != nil && q.s.sessions.rows[*m.SessionID] == nil) {
		return brokenRef()
	}
	m.ID = q.s.id()
	cp := *m
	q.s.milestones[m.ID] = &cp
	return nil
}

func (q *Quests) UpdateMilestone(_ context.Context, m *entities.QuestMilestone) error {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()

	existing, ok := q.s.milestones[m.ID]
	if !ok || existing.QuestID != m.QuestID {
		return notFound("milestone")
	}
	if m.SessionID != nil && q.s.sessions.rows[*m.SessionID] == nil {
		return brokenRef()
	}
	cp := *m
	q.s.milestones[m.ID] = &cp
	return nil
}

func (q *Quests) DeleteMilestone(_ context.Context, questID, id int) error {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()

	existing, ok := q.s.milestones[id]
	if !ok || existing.QuestID != questID {
		return notFound("milestone")
	}
	delete(q.s.milestones, id)
	return nil
}

func (q *Quests) AddLink(_ context.Context, l *entities.QuestLink) error {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()

	if q.rows[l.QuestID] == nil {
		return brokenRef()
	}
	l.ID = q.s.id()
	cp := *l
	q.s.links[l.ID] = &cp
	return nil
}

func (q *Quests) DeleteLink(_ context.Context, questID, id int) error {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()

	existing, ok := q.s.links[id]
	if !ok || existing.QuestID != questID {
		return notFound("link")
	}
	delete(q.s.links, id)
	return nil
}

func (q *Quests) ReplaceSessions(_ context.Context, campaignID, questID int, sessionIDs []int) error {
	q.s.mu.Lock()
	defer q.s.mu.Unlock()

	if _, err := q.get(campaignID, questID); err != nil {
		return err
	}
	set := map[int]bool{}
	for _, sid := range sessionIDs {
		if q.s.sessions.rows[sid] == nil {
			return brokenRef()
		}
		set[sid] = true
	}
	q.s.questSessions[questID] = set
	return nil
}
