package repository

import (
	"context"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"loremaster/internal/access"
	"loremaster/internal/entities"
)

var questColumns = []string{
	"id", "campaign_id", "title", "description", "status", "quest_type", "priority",
	"visibility", "created_by", "updated_by", "created_at", "updated_at",
}

// QuestRepository stores quests together with their objectives, milestones,
// entity links and session associations.
type QuestRepository struct {
	db DB
}

func NewQuestRepository(db DB) *QuestRepository {
	return &QuestRepository{db: db}
}

func scanQuest(row pgx.Row) (*entities.Quest, error) {
	var q entities.Quest
	err := row.Scan(&q.ID, &q.CampaignID, &q.Title, &q.Description, &q.Status, &q.QuestType, &q.Priority,
		&q.Visibility, &q.CreatedBy, &q.UpdatedBy, &q.CreatedAt, &q.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &q, nil
}

// List returns visible quests without their sub-entities, highest priority first.
func (r *QuestRepository) List(ctx context.Context, v access.Viewer, f entities.ListFilter) ([]entities.Quest, error) {
	b := psql.Select(questColumns...).From("quests").
		Where(sq.Eq{"campaign_id": v.CampaignID}).
		Where(access.VisibilityPredicate(v, "visibility")).
		OrderBy("priority DESC", "title", "id")
	if f.Status != "" {
		b = b.Where(sq.Eq{"status": f.Status})
	}
	if f.Type != "" {
		b = b.Where(sq.Eq{"quest_type": f.Type})
	}
	if f.Search != "" {
		b = b.Where(searchPredicate(f.Search, "title", "description"))
	}

	rows, err := query(ctx, r.db, b)
	if err != nil {
		return nil, translate(err, "quest")
	}
	defer rows.Close()

	out := []entities.Quest{}
	for rows.Next() {
		q, err := scanQuest(rows)
		if err != nil {
			return nil, translate(err, "quest")
		}
		out = append(out, *q)
	}
	return out, translate(rows.Err(), "quest")
}

func (r *QuestRepository) GetByID(ctx context.Context, campaignID, id int) (*entities.Quest, error) {
	row, err := queryRow(ctx, r.db, psql.Select(questColumns...).From("quests").
		Where(sq.Eq{"id": id, "campaign_id": campaignID}))
	if err != nil {
		return nil, err
	}
	q, err := scanQuest(row)
	if err != nil {
		return nil, translate(err, "quest")
	}
	return q, nil
}

// LoadDetails fills q's sub-entities. Links are filtered by their own
// visibility against v.
func (r *QuestRepository) LoadDetails(ctx context.Context, v access.Viewer, q *entities.Quest) error {
	var err error
	if q.Objectives, err = r.objectives(ctx, q.ID); err != nil {
		return err
	}
	if q.Milestones, err = r.milestones(ctx, q.ID); err != nil {
		return err
	}
	if q.Links, err = r.links(ctx, v, q.ID); err != nil {
		return err
	}
	q.SessionIDs, err = r.sessionIDs(ctx, q.ID)
	return err
}

func (r *QuestRepository) objectives(ctx context.Context, questID int) ([]entities.QuestObjective, error) {
	rows, err := r.db.Query(ctx,
		"SELECT id, quest_id, description, is_completed, sort_order FROM quest_objectives WHERE quest_id = $1 ORDER BY sort_order, id",
		questID)
	if err != nil {
		return nil, translate(err, "objective")
	}
	defer rows.Close()

	out := []entities.QuestObjective{}
	for rows.Next() {
		var o entities.QuestObjective
		if err := rows.Scan(&o.ID, &o.QuestID, &o.Description, &o.IsCompleted, &o.SortOrder); err != nil {
			return nil, translate(err, "objective")
		}
		out = append(out, o)
	}
	return out, translate(rows.Err(), "objective")
}

func (r *QuestRepository) milestones(ctx context.Context, questID int) ([]entities.QuestMilestone, error) {
	rows, err := r.db.Query(ctx,
		"SELECT id, quest_id, title, description, is_completed, session_id FROM quest_milestones WHERE quest_id = $1 ORDER BY id",
		questID)
	if err != nil {
		return nil, translate(err, "milestone")
	}
	defer rows.Close()

	out := []entities.QuestMilestone{}
	for rows.Next() {
		var m entities.QuestMilestone
		if err := rows.Scan(&m.ID, &m.QuestID, &m.Title, &m.Description, &m.IsCompleted, &m.SessionID); err != nil {
			return nil, translate(err, "milestone")
		}
		out = append(out, m)
	}
	return out, translate(rows.Err(), "milestone")
}

func (r *QuestRepository) links(ctx context.Context, v access.Viewer, questID int) ([]entities.QuestLink, error) {
	rows, err := query(ctx, r.db, psql.Select("id", "quest_id", "entity_type", "entity_id", "link_type", "visibility").
		From("quest_links").
		Where(sq.Eq{"quest_id": questID}).
		Where(access.VisibilityPredicate(v, "visibility")).
		OrderBy("id"))
	if err != nil {
		return nil, translate(err, "link")
	}
	defer rows.Close()

	out := []entities.QuestLink{}
	for rows.Next() {
		var l entities.QuestLink
		if err := rows.Scan(&l.ID, &l.QuestID, &l.EntityType, &l.EntityID, &l.LinkType, &l.Visibility); err != nil {
			return nil, translate(err, "link")
		}
		out = append(out, l)
	}
	return out, translate(rows.Err(), "link")
}

func (r *QuestRepository) sessionIDs(ctx context.Context, questID int) ([]int, error) {
	rows, err := r.db.Query(ctx, "SELECT session_id FROM quest_sessions WHERE quest_id = $1 ORDER BY session_id", questID)
	if err != nil {
		return nil, translate(err, "quest session")
	}
	defer rows.Close()

	out := []int{}
	for rows.Next() {
		var id int
		if err := rows.Scan(&id); err != nil {
			return nil, translate(err, "quest session")
		}
		out = append(out, id)
	}
	return out, translate(rows.Err(), "quest session")
}

// CreateBundle inserts the quest and every provided sub-entity in one transaction.
func (r *QuestRepository) CreateBundle(ctx context.Context, q *entities.Quest) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		row, err := queryRow(ctx, tx, psql.Insert("quests").
			Columns("campaign_id", "title", "description", "status", "quest_type", "priority", "visibility", "created_by").
			Values(q.CampaignID, q.Title, q.Description, q.Status, q.QuestType, q.Priority, q.Visibility, q.CreatedBy).
			Suffix("RETURNING id, created_at, updated_at"))
		if err != nil {
			return err
		}
		if err := row.Scan(&q.ID, &q.CreatedAt, &q.UpdatedAt); err != nil {
			return translate(err, "quest")
		}
		return writeQuestChildren(ctx, tx, q, false)
	})
}

// UpdateBundle updates the quest row and replaces each non-nil sub-entity set,
// all in one transaction.
func (r *QuestRepository) UpdateBundle(ctx context.Context, q *entities.Quest) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		row, err := queryRow(ctx, tx, psql.Update("quests").
			Set("title", q.Title).
			Set("description", q.Description).
			Set("status", q.Status).
			Set("quest_type", q.QuestType).
			Set("priority", q.Priority).
			Set("visibility", q.Visibility).
			Set("updated_by", q.UpdatedBy).
			Set("updated_at", sq.Expr("NOW()")).
			Where(sq.Eq{"id": q.ID, "campaign_id": q.CampaignID}).
			Suffix("RETURNING updated_at"))
		if err != nil {
			return err
		}
		if err := row.Scan(&q.UpdatedAt); err != nil {
			return translate(err, "quest")
		}
		return writeQuestChildren(ctx, tx, q, true)
	})
}

func writeQuestChildren(ctx context.Context, tx pgx.Tx, q *entities.Quest, replace bool) error {
	if q.Objectives != nil {
		if replace {
			if _, err := tx.Exec(ctx, "DELETE FROM quest_objectives WHERE quest_id = $1", q.ID); err != nil {
				return translate(err, "objective")
			}
		}
		for i := range q.Objectives {
			q.Objectives[i].QuestID = q.ID
			if err := insertObjective(ctx, tx, &q.Objectives[i]); err != nil {
				return err
			}
		}
	}
	if q.Milestones != nil {
		if replace {
			if _, err := tx.Exec(ctx, "DELETE FROM quest_milestones WHERE quest_id = $1", q.ID); err != nil {
				return translate(err, "milestone")
			}
		}
		for i := range q.Milestones {
			q.Milestones[i].QuestID = q.ID
			if err := insertMilestone(ctx, tx, &q.Milestones[i]); err != nil {
				return err
			}
		}
	}
	if q.Links != nil {
		if replace {
			if _, err := tx.Exec(ctx, "DELETE FROM quest_links WHERE quest_id = $1", q.ID); err != nil {
				return translate(err, "link")
			}
		}
		for i := range q.Links {
			q.Links[i].QuestID = q.ID
			if err := insertLink(ctx, tx, &q.Links[i]); err != nil {
				return err
			}
		}
	}
	if q.SessionIDs != nil {
		return replaceQuestSessions(ctx, tx, q.ID, q.SessionIDs)
	}
	return nil
}

func insertObjective(ctx context.Context, db DB, o *entities.QuestObjective) error {
	err := db.QueryRow(ctx,
		"INSERT INTO quest_objectives (quest_id, description, is_completed, sort_order) VALUES ($1, $2, $3, $4) RETURNING id",
		o.QuestID, o.Description, o.IsCompleted, o.SortOrder).Scan(&o.ID)
	return translate(err, "objective")
}

func insertMilestone(ctx context.Context, db DB, m *entities.QuestMilestone) error {
	err := db.QueryRow(ctx,
		"INSERT INTO quest_milestones (quest_id, title, description, is_completed, session_id) VALUES ($1, $2, $3, $4, $5) RETURNING id",
		m.QuestID, m.Title, m.Description, m.IsCompleted, m.SessionID).Scan(&m.ID)
	return translate(err, "milestone")
}

func insertLink(ctx context.Context, db DB, l *entities.QuestLink) error {
	err := db.QueryRow(ctx,
		"INSERT INTO quest_links (quest_id, entity_type, entity_id, link_type, visibility) VALUES ($1, $2, $3, $4, $5) RETURNING id",
		l.QuestID, l.EntityType, l.EntityID, l.LinkType, l.Visibility).Scan(&l.ID)
	return translate(err, "link")
}

func replaceQuestSessions(ctx context.Context, tx pgx.Tx, questID int, sessionIDs []int) error {
	if _, err := tx.Exec(ctx, "DELETE FROM quest_sessions WHERE quest_id = $1", questID); err != nil {
		return translate(err, "quest session")
	}
	for _, sid := range sessionIDs {
		if _, err := tx.Exec(ctx,
			"INSERT INTO quest_sessions (quest_id, session_id) VALUES ($1, $2) ON CONFLICT DO NOTHING",
			questID, sid); err != nil {
			return translate(err, "quest session")
		}
	}
	return nil
}

func (r *QuestRepository) Delete(ctx context.Context, campaignID, id int) error {
	return deleteEntity(ctx, r.db, "quests", string(entities.EntityQuest), campaignID, id, "quest")
}

func (r *QuestRepository) AddObjective(ctx context.Context, o *entities.QuestObjective) error {
	return insertObjective(ctx, r.db, o)
}

func (r *QuestRepository) UpdateObjective(ctx context.Context, o *entities.QuestObjective) error {
	return execOne(ctx, r.db, psql.Update("quest_objectives").
		Set("description", o.Description).
		Set("is_completed", o.IsCompleted).
		Set("sort_order", o.SortOrder).
		Where(sq.Eq{"id": o.ID, "quest_id": o.QuestID}), "objective")
}

func (r *QuestRepository) DeleteObjective(ctx context.Context, questID, id int) error {
	return execOne(ctx, r.db, psql.Delete("quest_objectives").Where(sq.Eq{"id": id, "quest_id": questID}), "objective")
}

func (r *QuestRepository) AddMilestone(ctx context.Context, m *entities.QuestMilestone) error {
	return insertMilestone(ctx, r.db, m)
}

func (r *QuestRepository) UpdateMilestone(ctx context.Context, m *entities.QuestMilestone) error {
	return execOne(ctx, r.db, psql.Update("quest_milestones").
		Set("title", m.Title).
		Set("description", m.Description).
		Set("is_completed", m.IsCompleted).
		Set("session_id", m.SessionID).
		Where(sq.Eq{"id": m.ID, "quest_id": m.QuestID}), "milestone")
}

func (r *QuestRepository) DeleteMilestone(ctx context.Context, questID, id int) error {
	return execOne(ctx, r.db, psql.Delete("quest_milestones").Where(sq.Eq{"id": id, "quest_id": questID}), "milestone")
}

func (r *QuestRepository) AddLink(ctx context.Context, l *entities.QuestLink) error {
	return insertLink(ctx, r.db, l)
}

func (r *QuestRepository) DeleteLink(ctx context.Context, questID, id int) error {
	return execOne(ctx, r.db, psql.Delete("quest_links").Where(sq.Eq{"id": id, "quest_id": questID}), "link")
}

// ReplaceSessions swaps the quest's session associations atomically.
func (r *QuestRepository) ReplaceSessions(ctx context.Context, campaignID, questID int, sessionIDs []int) error {
	return withTx(ctx, r.db, func(tx pgx.Tx) error {
		var exists bool
		if err := tx.QueryRow(ctx,
			"SELECT EXISTS (SELECT 1 FROM quests WHERE id = $1 AND campaign_id = $2)",
			questID, campaignID).Scan(&exists); err != nil {
			return translate(err, "quest")
		}
		if !exists {
			return translate(pgx.ErrNoRows, "quest")
		}
		return replaceQuestSessions(ctx, tx, questID, sessionIDs)
	})
}
