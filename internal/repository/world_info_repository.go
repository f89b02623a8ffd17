package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"loremaster/internal/access"
	"loremaster/internal/entities"
)

var worldInfoColumns = []string{
	"id", "campaign_id", "title", "category", "content",
	"visibility", "created_by", "updated_by", "created_at", "updated_at",
}

type WorldInfoRepository struct {
	db DB
}

func NewWorldInfoRepository(db DB) *WorldInfoRepository {
	return &WorldInfoRepository{db: db}
}

func scanWorldInfo(row pgx.Row) (*entities.WorldInfo, error) {
	var w entities.WorldInfo
	err := row.Scan(&w.ID, &w.CampaignID, &w.Title, &w.Category, &w.Content,
		&w.Visibility, &w.CreatedBy, &w.UpdatedBy, &w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &w, nil
}

func (r *WorldInfoRepository) List(ctx context.Context, v access.Viewer, f entities.ListFilter) ([]entities.WorldInfo, error) {
	b := psql.Select(worldInfoColumns...).From("world_info").
		Where(sq.Eq{"campaign_id": v.CampaignID}).
		Where(access.VisibilityPredicate(v, "visibility")).
		OrderBy("category", "title", "id")
	if f.Category != "" {
		b = b.Where(sq.Eq{"category": f.Category})
	}
	if f.Search != "" {
		b = b.Where(searchPredicate(f.Search, "title", "content"))
	}

	rows, err := query(ctx, r.db, b)
	if err != nil {
		return nil, translate(err, "world info")
	}
	defer rows.Close()

	out := []entities.WorldInfo{}
	for rows.Next() {
		w, err := scanWorldInfo(rows)
		if err != nil {
			return nil, translate(err, "world info")
		}
		out = append(out, *w)
	}
	return out, translate(rows.Err(), "world info")
}

func (r *WorldInfoRepository) GetByID(ctx context.Context, campaignID, id int) (*entities.WorldInfo, error) {
	row, err := queryRow(ctx, r.db, psql.Select(worldInfoColumns...).From("world_info").
		Where(sq.Eq{"id": id, "campaign_id": campaignID}))
	if err != nil {
		return nil, err
	}
	w, err := scanWorldInfo(row)
	if err != nil {
		return nil, translate(err, "world info")
	}
	return w, nil
}

func (r *WorldInfoRepository) Create(ctx context.Context, w *entities.WorldInfo) error {
	row, err := queryRow(ctx, r.db, psql.Insert("world_info").
		Columns("campaign_id", "title", "category", "content", "visibility", "created_by").
		Values(w.CampaignID, w.Title, w.Category, w.Content, w.Visibility, w.CreatedBy).
		Suffix("RETURNING id, created_at, updated_at"))
	if err != nil {
		return err
	}
	return translate(row.Scan(&w.ID, &w.CreatedAt, &w.UpdatedAt), "world info")
}

func (r *WorldInfoRepository) Update(ctx context.Context, w *entities.WorldInfo) error {
	row, err := queryRow(ctx, r.db, psql.Update("world_info").
		Set("title", w.Title).
		Set("category", w.Category).
		Set("content", w.Content).
		Set("visibility", w.Visibility).
		Set("updated_by", w.UpdatedBy).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": w.ID, "campaign_id": w.CampaignID}).
		Suffix("RETURNING updated_at"))
	if err != nil {
		return err
	}
	return translate(row.Scan(&w.UpdatedAt), "world info")
}

func (r *WorldInfoRepository) Delete(ctx context.Context, campaignID, id int) error {
	return deleteEntity(ctx, r.db, "world_info", string(entities.EntityWorldInfo), campaignID, id, "world info")
}
