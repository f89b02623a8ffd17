package entities

import "time"

// Session is a single game session of a campaign.
type Session struct {
	ID            int        `json:"id"`
	CampaignID    int        `json:"campaign_id"`
	Title         string     `json:"title" validate:"required,max=255"`
	SessionNumber int        `json:"session_number" validate:"min=0"`
	SessionDate   *time.Time `json:"session_date"`
	Summary       string     `json:"summary"`
	Visibility    Visibility `json:"visibility"`
	Audit
}

// SessionNote is a participant's note on a session.
type SessionNote struct {
	ID         int        `json:"id"`
	SessionID  int        `json:"session_id"`
	CampaignID int        `json:"campaign_id"`
	AuthorID   int        `json:"author_id"`
	Content    string     `json:"content" validate:"required"`
	Visibility Visibility `json:"visibility"`
	CreatedAt  time.Time  `json:"created_at"`
	UpdatedAt  time.Time  `json:"updated_at"`
}
