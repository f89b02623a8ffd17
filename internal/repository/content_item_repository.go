package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"loremaster/internal/access"
	"loremaster/internal/entities"
)

var contentItemColumns = []string{
	"id", "campaign_id", "name", "category", "rarity", "description",
	"visibility", "created_by", "updated_by", "created_at", "updated_at",
}

type ContentItemRepository struct {
	db DB
}

func NewContentItemRepository(db DB) *ContentItemRepository {
	return &ContentItemRepository{db: db}
}

func scanContentItem(row pgx.Row) (*entities.ContentItem, error) {
	var i entities.ContentItem
	err := row.Scan(&i.ID, &i.CampaignID, &i.Name, &i.Category, &i.Rarity, &i.Description,
		&i.Visibility, &i.CreatedBy, &i.UpdatedBy, &i.CreatedAt, &i.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &i, nil
}

func (r *ContentItemRepository) List(ctx context.Context, v access.Viewer, f entities.ListFilter) ([]entities.ContentItem, error) {
	b := psql.Select(contentItemColumns...).From("content_items").
		Where(sq.Eq{"campaign_id": v.CampaignID}).
		Where(access.VisibilityPredicate(v, "visibility")).
		OrderBy("name", "id")
	if f.Category != "" {
		b = b.Where(sq.Eq{"category": f.Category})
	}
	if f.Search != "" {
		b = b.Where(searchPredicate(f.Search, "name", "description"))
	}

	rows, err := query(ctx, r.db, b)
	if err != nil {
		return nil, translate(err, "content item")
	}
	defer rows.Close()

	out := []entities.ContentItem{}
	for rows.Next() {
		i, err := scanContentItem(rows)
		if err != nil {
			return nil, translate(err, "content item")
		}
		out = append(out, *i)
	}
	return out, translate(rows.Err(), "content item")
}

func (r *ContentItemRepository) GetByID(ctx context.Context, campaignID, id int) (*entities.ContentItem, error) {
	row, err := queryRow(ctx, r.db, psql.Select(contentItemColumns...).From("content_items").
		Where(sq.Eq{"id": id, "campaign_id": campaignID}))
	if err != nil {
		return nil, err
	}
	i, err := scanContentItem(row)
	if err != nil {
		return nil, translate(err, "content item")
	}
	return i, nil
}

func (r *ContentItemRepository) Create(ctx context.Context, i *entities.ContentItem) error {
	row, err := queryRow(ctx, r.db, psql.Insert("content_items").
		Columns("campaign_id", "name", "category", "rarity", "description", "visibility", "created_by").
		Values(i.CampaignID, i.Name, i.Category, i.Rarity, i.Description, i.Visibility, i.CreatedBy).
		Suffix("RETURNING id, created_at, updated_at"))
	if err != nil {
		return err
	}
	return translate(row.Scan(&i.ID, &i.CreatedAt, &i.UpdatedAt), "content item")
}

func (r *ContentItemRepository) Update(ctx context.Context, i *entities.ContentItem) error {
	row, err := queryRow(ctx, r.db, psql.Update("content_items").
		Set("name", i.Name).
		Set("category", i.Category).
		Set("rarity", i.Rarity).
		Set("description", i.Description).
		Set("visibility", i.Visibility).
		Set("updated_by", i.UpdatedBy).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": i.ID, "campaign_id": i.CampaignID}).
		Suffix("RETURNING updated_at"))
	if err != nil {
		return err
	}
	return translate(row.Scan(&i.UpdatedAt), "content item")
}

func (r *ContentItemRepository) Delete(ctx context.Context, campaignID, id int) error {
	return deleteEntity(ctx, r.db, "content_items", string(entities.EntityContentItem), campaignID, id, "content item")
}
