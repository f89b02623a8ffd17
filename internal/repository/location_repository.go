package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"loremaster/internal/access"
	"loremaster/internal/entities"
)

var locationColumns = []string{
	"id", "campaign_id", "name", "location_type", "description", "parent_id",
	"visibility", "created_by", "updated_by", "created_at", "updated_at",
}

type LocationRepository struct {
	db DB
}

func NewLocationRepository(db DB) *LocationRepository {
	return &LocationRepository{db: db}
}

func scanLocation(row pgx.Row) (*entities.Location, error) {
	var l entities.Location
	err := row.Scan(&l.ID, &l.CampaignID, &l.Name, &l.LocationType, &l.Description, &l.ParentID,
		&l.Visibility, &l.CreatedBy, &l.UpdatedBy, &l.CreatedAt, &l.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &l, nil
}

func (r *LocationRepository) List(ctx context.Context, v access.Viewer, f entities.ListFilter) ([]entities.Location, error) {
	b := psql.Select(locationColumns...).From("locations").
		Where(sq.Eq{"campaign_id": v.CampaignID}).
		Where(access.VisibilityPredicate(v, "visibility")).
		OrderBy("name", "id")
	switch {
	case f.RootOnly:
		b = b.Where(sq.Eq{"parent_id": nil})
	case f.ParentID != nil:
		b = b.Where(sq.Eq{"parent_id": *f.ParentID})
	}
	if f.Type != "" {
		b = b.Where(sq.Eq{"location_type": f.Type})
	}
	if f.Search != "" {
		b = b.Where(searchPredicate(f.Search, "name", "description"))
	}

	rows, err := query(ctx, r.db, b)
	if err != nil {
		return nil, translate(err, "location")
	}
	defer rows.Close()

	out := []entities.Location{}
	for rows.Next() {
		l, err := scanLocation(rows)
		if err != nil {
			return nil, translate(err, "location")
		}
		out = append(out, *l)
	}
	return out, translate(rows.Err(), "location")
}

func (r *LocationRepository) GetByID(ctx context.Context, campaignID, id int) (*entities.Location, error) {
	row, err := queryRow(ctx, r.db, psql.Select(locationColumns...).From("locations").
		Where(sq.Eq{"id": id, "campaign_id": campaignID}))
	if err != nil {
		return nil, err
	}
	l, err := scanLocation(row)
	if err != nil {
		return nil, translate(err, "location")
	}
	return l, nil
}

func (r *LocationRepository) Create(ctx context.Context, l *entities.Location) error {
	row, err := queryRow(ctx, r.db, psql.Insert("locations").
		Columns("campaign_id", "name", "location_type", "description", "parent_id", "visibility", "created_by").
		Values(l.CampaignID, l.Name, l.LocationType, l.Description, l.ParentID, l.Visibility, l.CreatedBy).
		Suffix("RETURNING id, created_at, updated_at"))
	if err != nil {
		return err
	}
	return translate(row.Scan(&l.ID, &l.CreatedAt, &l.UpdatedAt), "location")
}

func (r *LocationRepository) Update(ctx context.Context, l *entities.Location) error {
	row, err := queryRow(ctx, r.db, psql.Update("locations").
		Set("name", l.Name).
		Set("location_type", l.LocationType).
		Set("description", l.Description).
		Set("parent_id", l.ParentID).
		Set("visibility", l.Visibility).
		Set("updated_by", l.UpdatedBy).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": l.ID, "campaign_id": l.CampaignID}).
		Suffix("RETURNING updated_at"))
	if err != nil {
		return err
	}
	return translate(row.Scan(&l.UpdatedAt), "location")
}

func (r *LocationRepository) Delete(ctx context.Context, campaignID, id int) error {
	return deleteEntity(ctx, r.db, "locations", string(entities.EntityLocation), campaignID, id, "location")
}

func (r *LocationRepository) CountChildren(ctx context.Context, campaignID, id int) (int, error) {
	var n int
	err := r.db.QueryRow(ctx,
		"SELECT COUNT(*) FROM locations WHERE campaign_id = $1 AND parent_id = $2",
		campaignID, id).Scan(&n)
	if err != nil {
		return 0, translate(err, "location")
	}
	return n, nil
}

// IsAncestor walks the parent chain starting at id (inclusive) and reports
// whether ancestorID is on it. UNION stops the walk on rows already seen, so
// a corrupt cycle cannot loop forever.
func (r *LocationRepository) IsAncestor(ctx context.Context, campaignID, ancestorID, id int) (bool, error) {
	var found bool
	err := r.db.QueryRow(ctx, `
		WITH RECURSIVE chain AS (
			SELECT id, parent_id FROM locations WHERE id = $1 AND campaign_id = $2
			UNION
			SELECT l.id, l.parent_id FROM locations l JOIN chain ON l.id = chain.parent_id
		)
		SELECT EXISTS (SELECT 1 FROM chain WHERE id = $3)`,
		id, campaignID, ancestorID).Scan(&found)
	if err != nil {
		return false, translate(err, "location")
	}
	return found, nil
}
