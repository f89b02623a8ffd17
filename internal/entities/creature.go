package entities

type Creature struct {
	ID              int            `json:"id"`
	CampaignID      int            `json:"campaign_id"`
	Name            string         `json:"name" validate:"required,max=255"`
	CreatureType    string         `json:"creature_type" validate:"max=100"`
	Size            string         `json:"size" validate:"max=50"`
	Alignment       string         `json:"alignment" validate:"max=50"`
	ChallengeRating string         `json:"challenge_rating" validate:"max=20"`
	ArmorClass      int            `json:"armor_class" validate:"min=0"`
	HitPoints       int            `json:"hit_points" validate:"min=0"`
	Speed           string         `json:"speed" validate:"max=100"`
	Description     string         `json:"description"`
	AbilityScores   *AbilityScores `json:"ability_scores"`
	Stats           *CreatureStats `json:"stats"`
	Visibility      Visibility     `json:"visibility"`
	Audit
}

// CreatureFeature is a named trait, action or reaction in a stat block.
type CreatureFeature struct {
	Name        string `json:"name" validate:"required"`
	Description string `json:"description"`

	Raw Raw `json:"-"`
}

type creatureFeatureFields CreatureFeature

func (f *CreatureFeature) UnmarshalJSON(data []byte) error {
	var fields creatureFeatureFields
	raw, err := decodeDocument(data, &fields)
	if err != nil {
		return err
	}
	*f = CreatureFeature(fields)
	f.Raw = raw
	return nil
}

func (f CreatureFeature) MarshalJSON() ([]byte, error) {
	return encodeDocument(creatureFeatureFields(f), f.Raw)
}

// CreatureStats is the semi-structured remainder of a stat block.
type CreatureStats struct {
	SavingThrows        map[string]int    `json:"saving_throws,omitempty"`
	Skills              map[string]int    `json:"skills,omitempty"`
	Senses              []string          `json:"senses,omitempty"`
	Languages           []string          `json:"languages,omitempty"`
	DamageResistances   []string          `json:"damage_resistances,omitempty"`
	DamageImmunities    []string          `json:"damage_immunities,omitempty"`
	ConditionImmunities []string          `json:"condition_immunities,omitempty"`
	Traits              []CreatureFeature `json:"traits,omitempty" validate:"dive"`
	Actions             []CreatureFeature `json:"actions,omitempty" validate:"dive"`
	Reactions           []CreatureFeature `json:"reactions,omitempty" validate:"dive"`
	LegendaryActions    []CreatureFeature `json:"legendary_actions,omitempty" validate:"dive"`

	Raw Raw `json:"-"`
}

type creatureStatsFields CreatureStats

func (s *CreatureStats) UnmarshalJSON(data []byte) error {
	var f creatureStatsFields
	raw, err := decodeDocument(data, &f)
	if err != nil {
		return err
	}
	*s = CreatureStats(f)
	s.Raw = raw
	return nil
}

func (s CreatureStats) MarshalJSON() ([]byte, error) {
	return encodeDocument(creatureStatsFields(s), s.Raw)
}
