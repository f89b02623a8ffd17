package entities

type Location struct {
	ID           int        `json:"id"`
	CampaignID   int        `json:"campaign_id"`
	Name         string     `json:"name" validate:"required,max=255"`
	LocationType string     `json:"location_type" validate:"max=100"`
	Description  string     `json:"description"`
	ParentID     *int       `json:"parent_id"`
	Visibility   Visibility `json:"visibility"`
	Audit
}
