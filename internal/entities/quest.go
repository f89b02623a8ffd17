package entities

type QuestStatus string

const (
	QuestActive    QuestStatus = "active"
	QuestCompleted QuestStatus = "completed"
	QuestFailed    QuestStatus = "failed"
	QuestOnHold    QuestStatus = "on-hold"
)

func (s QuestStatus) Valid() bool {
	switch s {
	case QuestActive, QuestCompleted, QuestFailed, QuestOnHold:
		return true
	}
	return false
}

type QuestType string

const (
	QuestMain     QuestType = "main"
	QuestSide     QuestType = "side"
	QuestPersonal QuestType = "personal"
)

func (t QuestType) Valid() bool {
	return t == QuestMain || t == QuestSide || t == QuestPersonal
}

type Quest struct {
	ID          int         `json:"id"`
	CampaignID  int         `json:"campaign_id"`
	Title       string      `json:"title" validate:"required,max=255"`
	Description string      `json:"description"`
	Status      QuestStatus `json:"status"`
	QuestType   QuestType   `json:"quest_type"`
	Priority    int         `json:"priority" validate:"min=0,max=10"`
	Visibility  Visibility  `json:"visibility"`
	Audit

	Objectives []QuestObjective `json:"objectives,omitempty" validate:"dive"`
	Milestones []QuestMilestone `json:"milestones,omitempty" validate:"dive"`
	Links      []QuestLink      `json:"links,omitempty" validate:"dive"`
	SessionIDs []int            `json:"session_ids,omitempty"`
}

type QuestObjective struct {
	ID          int    `json:"id"`
	QuestID     int    `json:"quest_id"`
	Description string `json:"description" validate:"required"`
	IsCompleted bool   `json:"is_completed"`
	SortOrder   int    `json:"sort_order"`
}

type QuestMilestone struct {
	ID          int    `json:"id"`
	QuestID     int    `json:"quest_id"`
	Title       string `json:"title" validate:"required,max=255"`
	Description string `json:"description"`
	IsCompleted bool   `json:"is_completed"`
	SessionID   *int   `json:"session_id"`
}

// QuestLink points from a quest to another campaign entity and carries its own
// visibility, independent of the quest's.
type QuestLink struct {
	ID         int        `json:"id"`
	QuestID    int        `json:"quest_id"`
	EntityType EntityType `json:"entity_type"`
	EntityID   int        `json:"entity_id"`
	LinkType   string     `json:"link_type" validate:"max=50"`
	Visibility Visibility `json:"visibility"`
}
