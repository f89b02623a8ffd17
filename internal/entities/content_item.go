package entities

// ContentItem is a campaign item such as equipment, a handout or a treasure.
type ContentItem struct {
	ID          int        `json:"id"`
	CampaignID  int        `json:"campaign_id"`
	Name        string     `json:"name" validate:"required,max=255"`
	Category    string     `json:"category" validate:"max=100"`
	Rarity      string     `json:"rarity" validate:"max=50"`
	Description string     `json:"description"`
	Visibility  Visibility `json:"visibility"`
	Audit
}
