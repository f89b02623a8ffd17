package entities

// WorldInfo is a free-form lore entry.
type WorldInfo struct {
	ID         int        `json:"id"`
	CampaignID int        `json:"campaign_id"`
	Title      string     `json:"title" validate:"required,max=255"`
	Category   string     `json:"category" validate:"max=100"`
	Content    string     `json:"content"`
	Visibility Visibility `json:"visibility"`
	Audit
}
