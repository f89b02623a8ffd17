package entities

import "time"

type Tag struct {
	ID         int       `json:"id"`
	CampaignID int       `json:"campaign_id"`
	Name       string    `json:"name" validate:"required,max=50"`
	Color      string    `json:"color" validate:"omitempty,hexcolor"`
	CreatedAt  time.Time `json:"created_at"`
}
