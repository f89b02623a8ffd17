package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"loremaster/internal/access"
	"loremaster/internal/entities"
)

var characterColumns = []string{
	"c.id", "c.campaign_id", "c.name", "c.character_type", "c.description", "c.sheet",
	"c.player_user_id", "c.visibility", "c.created_by", "c.updated_by", "c.created_at", "c.updated_at",
}

type CharacterRepository struct {
	db DB
}

func NewCharacterRepository(db DB) *CharacterRepository {
	return &CharacterRepository{db: db}
}

func scanCharacter(row pgx.Row) (*entities.Character, error) {
	var c entities.Character
	err := row.Scan(&c.ID, &c.CampaignID, &c.Name, &c.CharacterType, &c.Description, &c.Sheet,
		&c.PlayerUserID, &c.Visibility, &c.CreatedBy, &c.UpdatedBy, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// List returns the campaign's characters visible to v, ordered by name.
func (r *CharacterRepository) List(ctx context.Context, v access.Viewer, f entities.ListFilter) ([]entities.Character, error) {
	b := psql.Select(characterColumns...).From("characters c").
		Where(sq.Eq{"c.campaign_id": v.CampaignID}).
		Where(access.CharacterVisibilityPredicate(v, "c.")).
		OrderBy("c.name", "c.id")
	if f.Type != "" {
		b = b.Where(sq.Eq{"c.character_type": f.Type})
	}
	if f.Search != "" {
		b = b.Where(searchPredicate(f.Search, "c.name", "c.description"))
	}

	rows, err := query(ctx, r.db, b)
	if err != nil {
		return nil, translate(err, "character")
	}
	defer rows.Close()

	out := []entities.Character{}
	for rows.Next() {
		c, err := scanCharacter(rows)
		if err != nil {
			return nil, translate(err, "character")
		}
		out = append(out, *c)
	}
	return out, translate(rows.Err(), "character")
}

// GetByID loads a character regardless of visibility; callers apply the
// visibility rule.
func (r *CharacterRepository) GetByID(ctx context.Context, campaignID, id int) (*entities.Character, error) {
	row, err := queryRow(ctx, r.db, psql.Select(characterColumns...).From("characters c").
		Where(sq.Eq{"c.id": id, "c.campaign_id": campaignID}))
	if err != nil {
		return nil, err
	}
	c, err := scanCharacter(row)
	if err != nil {
		return nil, translate(err, "character")
	}
	return c, nil
}

func (r *CharacterRepository) Create(ctx context.Context, c *entities.Character) error {
	row, err := queryRow(ctx, r.db, psql.Insert("characters").
		Columns("campaign_id", "name", "character_type", "description", "sheet",
			"player_user_id", "visibility", "created_by").
		Values(c.CampaignID, c.Name, c.CharacterType, c.Description, c.Sheet,
			c.PlayerUserID, c.Visibility, c.CreatedBy).
		Suffix("RETURNING id, created_at, updated_at"))
	if err != nil {
		return err
	}
	return translate(row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt), "character")
}

func (r *CharacterRepository) Update(ctx context.Context, c *entities.Character) error {
	row, err := queryRow(ctx, r.db, psql.Update("characters").
		Set("name", c.Name).
		Set("character_type", c.CharacterType).
		Set("description", c.Description).
		Set("sheet", c.Sheet).
		Set("player_user_id", c.PlayerUserID).
		Set("visibility", c.Visibility).
		Set("updated_by", c.UpdatedBy).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": c.ID, "campaign_id": c.CampaignID}).
		Suffix("RETURNING updated_at"))
	if err != nil {
		return err
	}
	return translate(row.Scan(&c.UpdatedAt), "character")
}

func (r *CharacterRepository) Delete(ctx context.Context, campaignID, id int) error {
	return deleteEntity(ctx, r.db, "characters", string(entities.EntityCharacter), campaignID, id, "character")
}
