package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"loremaster/internal/access"
	"loremaster/internal/entities"
)

var factionColumns = []string{
	"id", "campaign_id", "name", "faction_type", "description", "goals", "headquarters_location_id",
	"visibility", "created_by", "updated_by", "created_at", "updated_at",
}

type FactionRepository struct {
	db DB
}

func NewFactionRepository(db DB) *FactionRepository {
	return &FactionRepository{db: db}
}

func scanFaction(row pgx.Row) (*entities.Faction, error) {
	var f entities.Faction
	err := row.Scan(&f.ID, &f.CampaignID, &f.Name, &f.FactionType, &f.Description, &f.Goals,
		&f.HeadquartersLocationID, &f.Visibility, &f.CreatedBy, &f.UpdatedBy, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

func (r *FactionRepository) List(ctx context.Context, v access.Viewer, f entities.ListFilter) ([]entities.Faction, error) {
	b := psql.Select(factionColumns...).From("factions").
		Where(sq.Eq{"campaign_id": v.CampaignID}).
		Where(access.VisibilityPredicate(v, "visibility")).
		OrderBy("name", "id")
	if f.Type != "" {
		b = b.Where(sq.Eq{"faction_type": f.Type})
	}
	if f.Search != "" {
		b = b.Where(searchPredicate(f.Search, "name", "description", "goals"))
	}

	rows, err := query(ctx, r.db, b)
	if err != nil {
		return nil, translate(err, "faction")
	}
	defer rows.Close()

	out := []entities.Faction{}
	for rows.Next() {
		fa, err := scanFaction(rows)
		if err != nil {
			return nil, translate(err, "faction")
		}
		out = append(out, *fa)
	}
	return out, translate(rows.Err(), "faction")
}

func (r *FactionRepository) GetByID(ctx context.Context, campaignID, id int) (*entities.Faction, error) {
	row, err := queryRow(ctx, r.db, psql.Select(factionColumns...).From("factions").
		Where(sq.Eq{"id": id, "campaign_id": campaignID}))
	if err != nil {
		return nil, err
	}
	f, err := scanFaction(row)
	if err != nil {
		return nil, translate(err, "faction")
	}
	return f, nil
}

func (r *FactionRepository) Create(ctx context.Context, f *entities.Faction) error {
	row, err := queryRow(ctx, r.db, psql.Insert("factions").
		Columns("campaign_id", "name", "faction_type", "description", "goals",
			"headquarters_location_id", "visibility", "created_by").
		Values(f.CampaignID, f.Name, f.FactionType, f.Description, f.Goals,
			f.HeadquartersLocationID, f.Visibility, f.CreatedBy).
		Suffix("RETURNING id, created_at, updated_at"))
	if err != nil {
		return err
	}
	return translate(row.Scan(&f.ID, &f.CreatedAt, &f.UpdatedAt), "faction")
}

func (r *FactionRepository) Update(ctx context.Context, f *entities.Faction) error {
	row, err := queryRow(ctx, r.db, psql.Update("factions").
		Set("name", f.Name).
		Set("faction_type", f.FactionType).
		Set("description", f.Description).
		Set("goals", f.Goals).
		Set("headquarters_location_id", f.HeadquartersLocationID).
		Set("visibility", f.Visibility).
		Set("updated_by", f.UpdatedBy).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": f.ID, "campaign_id": f.CampaignID}).
		Suffix("RETURNING updated_at"))
	if err != nil {
		return err
	}
	return translate(row.Scan(&f.UpdatedAt), "faction")
}

func (r *FactionRepository) Delete(ctx context.Context, campaignID, id int) error {
	return deleteEntity(ctx, r.db, "factions", string(entities.EntityFaction), campaignID, id, "faction")
}
