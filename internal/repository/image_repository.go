package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"loremaster/internal/entities"
)

type ImageRepository struct {
	db DB
}

func NewImageRepository(db DB) *ImageRepository {
	return &ImageRepository{db: db}
}

const imageSelect = `SELECT id, campaign_id, entity_type, entity_id, file_path, original_name,
	mime_type, size_bytes, uploaded_by, created_at FROM entity_images`

func scanImage(row pgx.Row) (*entities.EntityImage, error) {
	var img entities.EntityImage
	err := row.Scan(&img.ID, &img.CampaignID, &img.EntityType, &img.EntityID, &img.FilePath, &img.OriginalName,
		&img.MimeType, &img.SizeBytes, &img.UploadedBy, &img.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &img, nil
}

func (r *ImageRepository) Create(ctx context.Context, img *entities.EntityImage) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO entity_images (campaign_id, entity_type, entity_id, file_path, original_name, mime_type, size_bytes, uploaded_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8) RETURNING id, created_at`,
		img.CampaignID, img.EntityType, img.EntityID, img.FilePath, img.OriginalName,
		img.MimeType, img.SizeBytes, img.UploadedBy).Scan(&img.ID, &img.CreatedAt)
	return translate(err, "image")
}

func (r *ImageRepository) GetByID(ctx context.Context, campaignID, id int) (*entities.EntityImage, error) {
	img, err := scanImage(r.db.QueryRow(ctx, imageSelect+" WHERE id = $1 AND campaign_id = $2", id, campaignID))
	if err != nil {
		return nil, translate(err, "image")
	}
	return img, nil
}

func (r *ImageRepository) ListForEntity(ctx context.Context, campaignID int, entityType entities.EntityType, entityID int) ([]entities.EntityImage, error) {
	rows, err := r.db.Query(ctx,
		imageSelect+" WHERE campaign_id = $1 AND entity_type = $2 AND entity_id = $3 ORDER BY created_at, id",
		campaignID, entityType, entityID)
	if err != nil {
		return nil, translate(err, "image")
	}
	defer rows.Close()

	out := []entities.EntityImage{}
	for rows.Next() {
		img, err := scanImage(rows)
		if err != nil {
			return nil, translate(err, "image")
		}
		out = append(out, *img)
	}
	return out, translate(rows.Err(), "image")
}

func (r *ImageRepository) Delete(ctx context.Context, campaignID, id int) error {
	return execOne(ctx, r.db, psql.Delete("entity_images").Where(sq.Eq{"id": id, "campaign_id": campaignID}), "image")
}
