package repository

import (
	"context"
	"errors"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"loremaster/internal/apperr"
	"loremaster/internal/entities"
)

// CampaignRepository stores campaigns and their participant rows. It also
// serves as the membership lookup for role resolution.
type CampaignRepository struct {
	db DB
}

func NewCampaignRepository(db DB) *CampaignRepository {
	return &CampaignRepository{db: db}
}

// Create inserts the campaign and the owner's dm participant row together.
func (r *CampaignRepository) Create(ctx context.Context, c *entities.Campaign) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		err := tx.QueryRow(ctx,
			`INSERT INTO campaigns (owner_id, name, description) VALUES ($1, $2, $3)
			 RETURNING id, created_at, updated_at`,
			c.OwnerID, c.Name, c.Description).Scan(&c.ID, &c.CreatedAt, &c.UpdatedAt)
		if err != nil {
			return translate(err, "campaign")
		}
		_, err = tx.Exec(ctx,
			"INSERT INTO campaign_participants (campaign_id, user_id, role) VALUES ($1, $2, $3)",
			c.ID, c.OwnerID, entities.RoleDM)
		return translate(err, "participant")
	})
}

func (r *CampaignRepository) GetByID(ctx context.Context, id int) (*entities.Campaign, error) {
	var c entities.Campaign
	err := r.db.QueryRow(ctx,
		"SELECT id, owner_id, name, description, created_at, updated_at FROM campaigns WHERE id = $1",
		id).Scan(&c.ID, &c.OwnerID, &c.Name, &c.Description, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, translate(err, "campaign")
	}
	return &c, nil
}

// ListForUser returns the campaigns the user owns or participates in, most
// recently updated first.
func (r *CampaignRepository) ListForUser(ctx context.Context, userID int) ([]entities.CampaignMembership, error) {
	rows, err := r.db.Query(ctx, `
		SELECT c.id, c.owner_id, c.name, c.description, c.created_at, c.updated_at,
		       CASE WHEN c.owner_id = $1 THEN 'dm' ELSE p.role END
		FROM campaigns c
		LEFT JOIN campaign_participants p ON p.campaign_id = c.id AND p.user_id = $1
		WHERE c.owner_id = $1 OR p.user_id IS NOT NULL
		ORDER BY c.updated_at DESC, c.id DESC`, userID)
	if err != nil {
		return nil, translate(err, "campaign")
	}
	defer rows.Close()

	out := []entities.CampaignMembership{}
	for rows.Next() {
		var m entities.CampaignMembership
		if err := rows.Scan(&m.ID, &m.OwnerID, &m.Name, &m.Description, &m.CreatedAt, &m.UpdatedAt, &m.Role); err != nil {
			return nil, translate(err, "campaign")
		}
		m.IsOwner = m.OwnerID == userID
		out = append(out, m)
	}
	return out, translate(rows.Err(), "campaign")
}

func (r *CampaignRepository) Update(ctx context.Context, c *entities.Campaign) error {
	row, err := queryRow(ctx, r.db, psql.Update("campaigns").
		Set("name", c.Name).
		Set("description", c.Description).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": c.ID}).
		Suffix("RETURNING owner_id, created_at, updated_at"))
	if err != nil {
		return err
	}
	return translate(row.Scan(&c.OwnerID, &c.CreatedAt, &c.UpdatedAt), "campaign")
}

// Delete removes the campaign. Child rows go with it through ON DELETE CASCADE.
func (r *CampaignRepository) Delete(ctx context.Context, id int) error {
	return execOne(ctx, r.db, psql.Delete("campaigns").Where(sq.Eq{"id": id}), "campaign")
}

func (r *CampaignRepository) GetCampaignOwner(ctx context.Context, campaignID int) (int, error) {
	var ownerID int
	err := r.db.QueryRow(ctx, "SELECT owner_id FROM campaigns WHERE id = $1", campaignID).Scan(&ownerID)
	if err != nil {
		return 0, translate(err, "campaign")
	}
	return ownerID, nil
}

func (r *CampaignRepository) GetParticipantRole(ctx context.Context, campaignID, userID int) (entities.Role, error) {
	var role entities.Role
	err := r.db.QueryRow(ctx,
		"SELECT role FROM campaign_participants WHERE campaign_id = $1 AND user_id = $2",
		campaignID, userID).Scan(&role)
	if errors.Is(err, pgx.ErrNoRows) {
		return entities.RoleNone, nil
	}
	if err != nil {
		return entities.RoleNone, translate(err, "participant")
	}
	return role, nil
}

const participantSelect = `
	SELECT p.campaign_id, p.user_id, u.username, p.role, p.invited_by, p.joined_at
	FROM campaign_participants p
	JOIN users u ON u.id = p.user_id`

func scanParticipant(row pgx.Row) (*entities.Participant, error) {
	var p entities.Participant
	if err := row.Scan(&p.CampaignID, &p.UserID, &p.Username, &p.Role, &p.InvitedBy, &p.JoinedAt); err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *CampaignRepository) ListParticipants(ctx context.Context, campaignID int) ([]entities.Participant, error) {
	rows, err := r.db.Query(ctx, participantSelect+" WHERE p.campaign_id = $1 ORDER BY p.joined_at, p.user_id", campaignID)
	if err != nil {
		return nil, translate(err, "participant")
	}
	defer rows.Close()

	out := []entities.Participant{}
	for rows.Next() {
		p, err := scanParticipant(rows)
		if err != nil {
			return nil, translate(err, "participant")
		}
		out = append(out, *p)
	}
	return out, translate(rows.Err(), "participant")
}

func (r *CampaignRepository) GetParticipant(ctx context.Context, campaignID, userID int) (*entities.Participant, error) {
	p, err := scanParticipant(r.db.QueryRow(ctx,
		participantSelect+" WHERE p.campaign_id = $1 AND p.user_id = $2", campaignID, userID))
	if err != nil {
		return nil, translate(err, "participant")
	}
	return p, nil
}

// AddParticipant inserts a participant row. A user already in the campaign
// yields a Conflict error.
func (r *CampaignRepository) AddParticipant(ctx context.Context, p *entities.Participant) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO campaign_participants (campaign_id, user_id, role, invited_by)
		 VALUES ($1, $2, $3, $4) RETURNING joined_at`,
		p.CampaignID, p.UserID, p.Role, p.InvitedBy).Scan(&p.JoinedAt)
	if err != nil {
		if apperr.CodeOf(translate(err, "participant")) == apperr.CodeConflict {
			return apperr.Conflict("user is already a participant of this campaign")
		}
		return translate(err, "participant")
	}
	return nil
}

func (r *CampaignRepository) UpdateParticipantRole(ctx context.Context, campaignID, userID int, role entities.Role) error {
	return execOne(ctx, r.db, psql.Update("campaign_participants").
		Set("role", role).
		Where(sq.Eq{"campaign_id": campaignID, "user_id": userID}), "participant")
}

func (r *CampaignRepository) RemoveParticipant(ctx context.Context, campaignID, userID int) error {
	return execOne(ctx, r.db, psql.Delete("campaign_participants").
		Where(sq.Eq{"campaign_id": campaignID, "user_id": userID}), "participant")
}
