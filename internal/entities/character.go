package entities

import "encoding/json"

// CharacterType distinguishes player characters from DM-run characters.
type CharacterType string

const (
	CharacterPlayer     CharacterType = "player"
	CharacterNPC        CharacterType = "npc"
	CharacterAntagonist CharacterType = "antagonist"
)

func (t CharacterType) Valid() bool {
	return t == CharacterPlayer || t == CharacterNPC || t == CharacterAntagonist
}

type Character struct {
	ID            int             `json:"id"`
	CampaignID    int             `json:"campaign_id"`
	Name          string          `json:"name" validate:"required,max=255"`
	CharacterType CharacterType   `json:"character_type"`
	Description   string          `json:"description"`
	Sheet         *CharacterSheet `json:"sheet"`
	PlayerUserID  *int            `json:"player_user_id"`
	Visibility    Visibility      `json:"visibility"`
	Audit

	// PlayerUserIDSet records that a decoded request carried player_user_id,
	// so an explicit null can be told apart from an omitted field.
	PlayerUserIDSet bool `json:"-"`
}

type characterFields Character

func (c *Character) UnmarshalJSON(data []byte) error {
	var f characterFields
	if err := json.Unmarshal(data, &f); err != nil {
		return err
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return err
	}
	*c = Character(f)
	_, c.PlayerUserIDSet = keys["player_user_id"]
	return nil
}

// AbilityScores is the six-stat block shared by character sheets and creatures.
type AbilityScores struct {
	Strength     int `json:"strength" validate:"min=0,max=30"`
	Dexterity    int `json:"dexterity" validate:"min=0,max=30"`
	Constitution int `json:"constitution" validate:"min=0,max=30"`
	Intelligence int `json:"intelligence" validate:"min=0,max=30"`
	Wisdom       int `json:"wisdom" validate:"min=0,max=30"`
	Charisma     int `json:"charisma" validate:"min=0,max=30"`

	Raw Raw `json:"-"`
}

type abilityScoresFields AbilityScores

func (a *AbilityScores) UnmarshalJSON(data []byte) error {
	var f abilityScoresFields
	raw, err := decodeDocument(data, &f)
	if err != nil {
		return err
	}
	*a = AbilityScores(f)
	a.Raw = raw
	return nil
}

func (a AbilityScores) MarshalJSON() ([]byte, error) {
	return encodeDocument(abilityScoresFields(a), a.Raw)
}

type HitPoints struct {
	Current   int `json:"current"`
	Max       int `json:"max" validate:"min=0"`
	Temporary int `json:"temporary" validate:"min=0"`

	Raw Raw `json:"-"`
}

type hitPointsFields HitPoints

func (h *HitPoints) UnmarshalJSON(data []byte) error {
	var f hitPointsFields
	raw, err := decodeDocument(data, &f)
	if err != nil {
		return err
	}
	*h = HitPoints(f)
	h.Raw = raw
	return nil
}

func (h HitPoints) MarshalJSON() ([]byte, error) {
	return encodeDocument(hitPointsFields(h), h.Raw)
}

// CharacterSheet is the mechanical stat block stored as a JSONB document.
type CharacterSheet struct {
	Class         string         `json:"class,omitempty" validate:"max=100"`
	Level         int            `json:"level,omitempty" validate:"min=0,max=30"`
	Race          string         `json:"race,omitempty" validate:"max=100"`
	Background    string         `json:"background,omitempty" validate:"max=100"`
	Alignment     string         `json:"alignment,omitempty" validate:"max=50"`
	AbilityScores *AbilityScores `json:"ability_scores,omitempty"`
	HitPoints     *HitPoints     `json:"hit_points,omitempty"`
	ArmorClass    int            `json:"armor_class,omitempty" validate:"min=0"`
	Speed         int            `json:"speed,omitempty" validate:"min=0"`
	Skills        map[string]int `json:"skills,omitempty"`
	Inventory     []string       `json:"inventory,omitempty"`
	Features      []string       `json:"features,omitempty"`
	Notes         string         `json:"notes,omitempty"`

	Raw Raw `json:"-"`
}

type characterSheetFields CharacterSheet

func (s *CharacterSheet) UnmarshalJSON(data []byte) error {
	var f characterSheetFields
	raw, err := decodeDocument(data, &f)
	if err != nil {
		return err
	}
	*s = CharacterSheet(f)
	s.Raw = raw
	return nil
}

func (s CharacterSheet) MarshalJSON() ([]byte, error) {
	return encodeDocument(characterSheetFields(s), s.Raw)
}
