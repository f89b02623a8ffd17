package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"loremaster/internal/access"
	"loremaster/internal/entities"
)

var sessionColumns = []string{
	"id", "campaign_id", "title", "session_number", "session_date", "summary",
	"visibility", "created_by", "updated_by", "created_at", "updated_at",
}

var noteColumns = []string{
	"n.id", "n.session_id", "n.campaign_id", "n.author_id", "n.content", "n.visibility", "n.created_at", "n.updated_at",
}

// SessionRepository stores game sessions and the notes written on them.
type SessionRepository struct {
	db DB
}

func NewSessionRepository(db DB) *SessionRepository {
	return &SessionRepository{db: db}
}

func scanSession(row pgx.Row) (*entities.Session, error) {
	var s entities.Session
	err := row.Scan(&s.ID, &s.CampaignID, &s.Title, &s.SessionNumber, &s.SessionDate, &s.Summary,
		&s.Visibility, &s.CreatedBy, &s.UpdatedBy, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

func scanNote(row pgx.Row) (*entities.SessionNote, error) {
	var n entities.SessionNote
	err := row.Scan(&n.ID, &n.SessionID, &n.CampaignID, &n.AuthorID, &n.Content, &n.Visibility, &n.CreatedAt, &n.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &n, nil
}

// List returns visible sessions, newest session number first.
func (r *SessionRepository) List(ctx context.Context, v access.Viewer, f entities.ListFilter) ([]entities.Session, error) {
	b := psql.Select(sessionColumns...).From("sessions").
		Where(sq.Eq{"campaign_id": v.CampaignID}).
		Where(access.VisibilityPredicate(v, "visibility")).
		OrderBy("session_number DESC", "id DESC")
	if f.Search != "" {
		b = b.Where(searchPredicate(f.Search, "title", "summary"))
	}

	rows, err := query(ctx, r.db, b)
	if err != nil {
		return nil, translate(err, "session")
	}
	defer rows.Close()

	out := []entities.Session{}
	for rows.Next() {
		s, err := scanSession(rows)
		if err != nil {
			return nil, translate(err, "session")
		}
		out = append(out, *s)
	}
	return out, translate(rows.Err(), "session")
}

func (r *SessionRepository) GetByID(ctx context.Context, campaignID, id int) (*entities.Session, error) {
	row, err := queryRow(ctx, r.db, psql.Select(sessionColumns...).From("sessions").
		Where(sq.Eq{"id": id, "campaign_id": campaignID}))
	if err != nil {
		return nil, err
	}
	s, err := scanSession(row)
	if err != nil {
		return nil, translate(err, "session")
	}
	return s, nil
}

func (r *SessionRepository) Create(ctx context.Context, s *entities.Session) error {
	row, err := queryRow(ctx, r.db, psql.Insert("sessions").
		Columns("campaign_id", "title", "session_number", "session_date", "summary", "visibility", "created_by").
		Values(s.CampaignID, s.Title, s.SessionNumber, s.SessionDate, s.Summary, s.Visibility, s.CreatedBy).
		Suffix("RETURNING id, created_at, updated_at"))
	if err != nil {
		return err
	}
	return translate(row.Scan(&s.ID, &s.CreatedAt, &s.UpdatedAt), "session")
}

func (r *SessionRepository) Update(ctx context.Context, s *entities.Session) error {
	row, err := queryRow(ctx, r.db, psql.Update("sessions").
		Set("title", s.Title).
		Set("session_number", s.SessionNumber).
		Set("session_date", s.SessionDate).
		Set("summary", s.Summary).
		Set("visibility", s.Visibility).
		Set("updated_by", s.UpdatedBy).
		Set("updated_at", sq.Expr("NOW()")).
		Where(sq.Eq{"id": s.ID, "campaign_id": s.CampaignID}).
		Suffix("RETURNING updated_at"))
	if err != nil {
		return err
	}
	return translate(row.Scan(&s.UpdatedAt), "session")
}

// Delete removes the session. Notes and quest associations cascade; milestone
// references are nulled by the schema.
func (r *SessionRepository) Delete(ctx context.Context, campaignID, id int) error {
	return deleteEntity(ctx, r.db, "sessions", string(entities.EntitySession), campaignID, id, "session")
}

// ListNotes returns the session's notes v may read, oldest first.
func (r *SessionRepository) ListNotes(ctx context.Context, v access.Viewer, sessionID int) ([]entities.SessionNote, error) {
	rows, err := query(ctx, r.db, psql.Select(noteColumns...).From("session_notes n").
		Where(sq.Eq{"n.session_id": sessionID, "n.campaign_id": v.CampaignID}).
		Where(access.NotePredicate(v, "n.")).
		OrderBy("n.created_at", "n.id"))
	if err != nil {
		return nil, translate(err, "note")
	}
	defer rows.Close()

	out := []entities.SessionNote{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, translate(err, "note")
		}
		out = append(out, *n)
	}
	return out, translate(rows.Err(), "note")
}

func (r *SessionRepository) GetNote(ctx context.Context, sessionID, id int) (*entities.SessionNote, error) {
	row, err := queryRow(ctx, r.db, psql.Select(noteColumns...).From("session_notes n").
		Where(sq.Eq{"n.id": id, "n.session_id": sessionID}))
	if err != nil {
		return nil, err
	}
	n, err := scanNote(row)
	if err != nil {
		return nil, translate(err, "note")
	}
	return n, nil
}

func (r *SessionRepository) CreateNote(ctx context.Context, n *entities.SessionNote) error {
	err := r.db.QueryRow(ctx,
		`INSERT INTO session_notes (session_id, campaign_id, author_id, content, visibility)
		 VALUES ($1, $2, $3, $4, $5) RETURNING id, created_at, updated_at`,
		n.SessionID, n.CampaignID, n.AuthorID, n.Content, n.Visibility).Scan(&n.ID, &n.CreatedAt, &n.UpdatedAt)
	return translate(err, "note")
}

func (r *SessionRepository) UpdateNote(ctx context.Context, n *entities.SessionNote) error {
	err := r.db.QueryRow(ctx,
		`UPDATE session_notes SET content = $1, visibility = $2, updated_at = NOW()
		 WHERE id = $3 AND session_id = $4 RETURNING updated_at`,
		n.Content, n.Visibility, n.ID, n.SessionID).Scan(&n.UpdatedAt)
	return translate(err, "note")
}

func (r *SessionRepository) DeleteNote(ctx context.Context, sessionID, id int) error {
	return execOne(ctx, r.db, psql.Delete("session_notes").Where(sq.Eq{"id": id, "session_id": sessionID}), "note")
}
