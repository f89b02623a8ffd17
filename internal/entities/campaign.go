package entities

import "time"

type Campaign struct {
	ID          int       `json:"id"`
	OwnerID     int       `json:"owner_id"`
	Name        string    `json:"name" validate:"required,max=255"`
	Description string    `json:"description"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CampaignMembership is a campaign as listed for one user, with that user's role.
type CampaignMembership struct {
	Campaign
	Role    Role `json:"role"`
	IsOwner bool `json:"is_owner"`
}

type Participant struct {
	CampaignID int       `json:"campaign_id"`
	UserID     int       `json:"user_id"`
	Username   string    `json:"username"`
	Role       Role      `json:"role"`
	InvitedBy  *int      `json:"invited_by"`
	JoinedAt   time.Time `json:"joined_at"`
}
