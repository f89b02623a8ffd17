package entities

type Faction struct {
	ID                     int        `json:"id"`
	CampaignID             int        `json:"campaign_id"`
	Name                   string     `json:"name" validate:"required,max=255"`
	FactionType            string     `json:"faction_type" validate:"max=100"`
	Description            string     `json:"description"`
	Goals                  string     `json:"goals"`
	HeadquartersLocationID *int       `json:"headquarters_location_id"`
	Visibility             Visibility `json:"visibility"`
	Audit
}
