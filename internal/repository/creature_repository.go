package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"loremaster/internal/access"
	"loremaster/internal/entities"
)

var creatureColumns = []string{
	"id", "campaign_id", "name", "creature_type", "size", "alignment", "challenge_rating",
	"armor_class", "hit_points", "speed", "description", "ability_scores", "stats",
	"visibility", "created_by", "updated_by", "created_at", "updated_at",
}

// CreatureRepository stores bestiary entries. Ability scores and the free-form
// stat block live in JSONB columns.
type CreatureRepository struct {
	db DB
}

func NewCreatureRepository(db DB) *CreatureRepository {
	return &CreatureRepository{db: db}
}

func scanCreature(row pgx.Row) (*entities.Creature, error) {
	var c entities.Creature
	err := row.Scan(&c.ID, &c.CampaignID, &c.Name, &c.CreatureType, &c.Size, &c.Alignment, &c.ChallengeRating,
		&c.ArmorClass, &c.HitPoints, &c.Speed, &c.Description, &c.AbilityScores, &c.Stats,
		&c.Visibility, &c.CreatedBy, &c.UpdatedBy, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

func (r *CreatureRepository) List(ctx context.Context, v access.Viewer, f entities.ListFilter) ([]entities.Creature, error) {
	b := psql.Select(creatureColumns...).From("creatures").
		Where(sq.Eq{"campaign_id": v.CampaignID}).
		Where(access.VisibilityPredicate(v, "visibility")).
		OrderBy("name", "id")
	if f.Type != "" {
		b = b.Where(sq.Eq{"creature_type": f.Type})
	}
	if f.Search != "" {
		b = b.Where(searchPredicate(f.Search, "name", "description"))
	}

	rows, err := query(ctx, r.db, b)
	if err != nil {
		return nil, translate(err, "creature")
	}
	defer rows.Close()

	out := []entities.Creature{}
	for rows.Next() {
		c, err := scanCreature(rows)
		if err != nil {
			return nil, translate(err, "creature")
		}
		out = append(out, *c)
	}
	return out, translate(rows.Err(), "creature")
}

func (r *CreatureRepository) GetByID(ctx context.Context, campaignID, id int) (*entities.Creature, error) {
	row, err := queryRow(ctx, r.db, psql.Select(creatureColumns...).From("creatures").
		Where(sq.Eq{"id": id, "campaign_id": campaignID}))
	if err != nil {
		return nil, err
	}
	c, err := scanCreature(row)
	if err != nil {
		return nil, translate(err, "creature")
	}
	return c, nil
}

func (r *CreatureRepository) Create(ctx context.Context, c *entities.Creature) error {
	row, err := queryRow(ctx, r.db, psql.Insert("creatures").
		Columns("campaign_id", "name", "creature_type", "size", "alignment", "challenge_rating",
			"armor_class", "hit_points", "speed", "description", "ability_scores", "stats",
			"visibility", "created_by").
		Values(c.CampaignID, c.Name, c.CreatureType, c.Size, c.Alignment, c.ChallengeRating,
			c.ArmorClass, c.HitPoints, c.Speed, c.Description, c.AbilityScores, c.Stats,
			c.Visibility, c.CreatedBy).
		Suffix("RETURNING id, created_at, updated_at"))
	if err != nil {
		return err
	}
	return translate(row.Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt), "creature")
}

func (r *CreatureRepository) Update(ctx context.Context, c *entities.Creature) error {
	row, err := queryRow(ctx, r.db, psql.Update("creatures").
		Set("name", c.Name).
		Set("creature_type", c.CreatureType).
		Set("size", c.Size).
		Set("alignment", c.Alignment).
		Set("challenge_rating", c.ChallengeRating).
		Set("armor_class", c.ArmorClass).
		Set("hit_points", c.HitPoints).
		Set("speed", c.Speed).
		Set("description", c.Description).
		Set("ability_scores", c.AbilityScores).
		Set("stats", c.Stats).
		Set("visibility", c.Visibility).
		Set("updated_by", c.UpdatedBy).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": c.ID, "campaign_id": c.CampaignID}).
		Suffix("RETURNING updated_at"))
	if err != nil {
		return err
	}
	return translate(row.Scan(&c.UpdatedAt), "creature")
}

func (r *CreatureRepository) Delete(ctx context.Context, campaignID, id int) error {
	return deleteEntity(ctx, r.db, "creatures", string(entities.EntityCreature), campaignID, id, "creature")
}
