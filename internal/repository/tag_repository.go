package repository

import (
	"context"
	"sort"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"loremaster/internal/apperr"
	"loremaster/internal/entities"
)

// TagRepository stores campaign tags and their polymorphic entity associations.
type TagRepository struct {
	db DB
}

func NewTagRepository(db DB) *TagRepository {
	return &TagRepository{db: db}
}

func scanTag(row pgx.Row) (*entities.Tag, error) {
	var t entities.Tag
	if err := row.Scan(&t.ID, &t.CampaignID, &t.Name, &t.Color, &t.CreatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func tagError(err error) error {
	err = translate(err, "tag")
	if apperr.CodeOf(err) == apperr.CodeConflict {
		return apperr.Wrap(apperr.CodeConflict, "a tag with this name already exists in the campaign", err)
	}
	return err
}

func collectTags(rows pgx.Rows) ([]entities.Tag, error) {
	defer rows.Close()
	out := []entities.Tag{}
	for rows.Next() {
		t, err := scanTag(rows)
		if err != nil {
			return nil, translate(err, "tag")
		}
		out = append(out, *t)
	}
	return out, translate(rows.Err(), "tag")
}

func (r *TagRepository) List(ctx context.Context, campaignID int) ([]entities.Tag, error) {
	rows, err := r.db.Query(ctx,
		"SELECT id, campaign_id, name, color, created_at FROM tags WHERE campaign_id = $1 ORDER BY lower(name), id",
		campaignID)
	if err != nil {
		return nil, translate(err, "tag")
	}
	return collectTags(rows)
}

func (r *TagRepository) GetByID(ctx context.Context, campaignID, id int) (*entities.Tag, error) {
	t, err := scanTag(r.db.QueryRow(ctx,
		"SELECT id, campaign_id, name, color, created_at FROM tags WHERE id = $1 AND campaign_id = $2",
		id, campaignID))
	if err != nil {
		return nil, translate(err, "tag")
	}
	return t, nil
}

// Create inserts a tag. Names are unique per campaign, case-insensitively.
func (r *TagRepository) Create(ctx context.Context, t *entities.Tag) error {
	err := r.db.QueryRow(ctx,
		"INSERT INTO tags (campaign_id, name, color) VALUES ($1, $2, $3) RETURNING id, created_at",
		t.CampaignID, t.Name, t.Color).Scan(&t.ID, &t.CreatedAt)
	if err != nil {
		return tagError(err)
	}
	return nil
}

func (r *TagRepository) Update(ctx context.Context, t *entities.Tag) error {
	err := r.db.QueryRow(ctx,
		"UPDATE tags SET name = $1, color = $2 WHERE id = $3 AND campaign_id = $4 RETURNING created_at",
		t.Name, t.Color, t.ID, t.CampaignID).Scan(&t.CreatedAt)
	if err != nil {
		return tagError(err)
	}
	return nil
}

// Delete removes the tag; its associations cascade.
func (r *TagRepository) Delete(ctx context.Context, campaignID, id int) error {
	return execOne(ctx, r.db, psql.Delete("tags").Where(sq.Eq{"id": id, "campaign_id": campaignID}), "tag")
}

func (r *TagRepository) ListForEntity(ctx context.Context, campaignID int, entityType entities.EntityType, entityID int) ([]entities.Tag, error) {
	rows, err := r.db.Query(ctx, `
		SELECT t.id, t.campaign_id, t.name, t.color, t.created_at
		FROM entity_tags et
		JOIN tags t ON t.id = et.tag_id
		WHERE t.campaign_id = $1 AND et.entity_type = $2 AND et.entity_id = $3
		ORDER BY lower(t.name), t.id`,
		campaignID, entityType, entityID)
	if err != nil {
		return nil, translate(err, "tag")
	}
	return collectTags(rows)
}

// ReplaceForEntity deletes the entity's associations and inserts the new set
// in one transaction. Duplicate ids are collapsed.
func (r *TagRepository) ReplaceForEntity(ctx context.Context, campaignID int, entityType entities.EntityType, entityID int, tagIDs []int) error {
	ids := uniqueInts(tagIDs)
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		if len(ids) > 0 {
			var n int
			if err := tx.QueryRow(ctx,
				"SELECT COUNT(*) FROM tags WHERE campaign_id = $1 AND id = ANY($2)",
				campaignID, ids).Scan(&n); err != nil {
				return translate(err, "tag")
			}
			if n != len(ids) {
				return apperr.Validation("one or more tags do not belong to this campaign")
			}
		}

		if _, err := tx.Exec(ctx,
			"DELETE FROM entity_tags WHERE entity_type = $1 AND entity_id = $2",
			entityType, entityID); err != nil {
			return translate(err, "tag")
		}
		for _, id := range ids {
			if _, err := tx.Exec(ctx,
				"INSERT INTO entity_tags (tag_id, entity_type, entity_id) VALUES ($1, $2, $3)",
				id, entityType, entityID); err != nil {
				return translate(err, "tag")
			}
		}
		return nil
	})
}

func uniqueInts(in []int) []int {
	seen := make(map[int]struct{}, len(in))
	out := make([]int, 0, len(in))
	for _, v := range in {
		if _, ok := seen[v]; ok {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}
