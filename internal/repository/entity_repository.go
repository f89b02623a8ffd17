package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"loremaster/internal/apperr"
	"loremaster/internal/entities"
)

// EntityRepository answers questions about an entity of any type, used by the
// polymorphic tag, image and quest-link endpoints.
type EntityRepository struct {
	db DB
}

func NewEntityRepository(db DB) *EntityRepository {
	return &EntityRepository{db: db}
}

func (r *EntityRepository) GetVisibilityInfo(ctx context.Context, campaignID int, entityType entities.EntityType, id int) (*entities.VisibilityInfo, error) {
	if !entityType.Valid() {
		return nil, apperr.Validation("unknown entity type")
	}
	info := entities.VisibilityInfo{Type: entityType, ID: id}

	if entityType == entities.EntityCharacter {
		row, err := queryRow(ctx, r.db, psql.Select("visibility", "character_type", "player_user_id").
			From("characters").
			Where(sq.Eq{"id": id, "campaign_id": campaignID}))
		if err != nil {
			return nil, err
		}
		if err := row.Scan(&info.Visibility, &info.CharacterType, &info.PlayerUserID); err != nil {
			return nil, translate(err, string(entityType))
		}
		return &info, nil
	}

	row, err := queryRow(ctx, r.db, psql.Select("visibility").
		From(entityType.Table()).
		Where(sq.Eq{"id": id, "campaign_id": campaignID}))
	if err != nil {
		return nil, err
	}
	if err := row.Scan(&info.Visibility); err != nil {
		return nil, translate(err, string(entityType))
	}
	return &info, nil
}
