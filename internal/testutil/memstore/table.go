package memstore

import (
	"context"

	"loremaster/internal/access"
	"loremaster/internal/entities"
)

// rowMeta points at the columns every campaign entity shares.
type rowMeta struct {
	id         *int
	campaignID *int
	visibility *entities.Visibility
	audit      *entities.Audit
}

// table is one campaign-scoped entity kind. Its method set matches the
// per-entity store ports.
type table[T any] struct {
	s     *Store
	kind  entities.EntityType
	what  string
	rows  map[int]*T
	meta  func(*T) rowMeta
	match func(*T, entities.ListFilter) bool

	visible  func(access.Viewer, *T) bool
	check    func(*T) error
	onDelete func(id int) error
}

func newTable[T any](s *Store, kind entities.EntityType, what string, meta func(*T) rowMeta, match func(*T, entities.ListFilter) bool) *table[T] {
	t := &table[T]{s: s, kind: kind, what: what, rows: map[int]*T{}, meta: meta, match: match}
	t.visible = func(v access.Viewer, row *T) bool {
		return access.CanSee(v, *t.meta(row).visibility)
	}
	return t
}

func (t *table[T]) List(_ context.Context, v access.Viewer, f entities.ListFilter) ([]T, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	out := []T{}
	for _, id := range sortedKeys(t.rows) {
		row := t.rows[id]
		if *t.meta(row).campaignID != v.CampaignID || !t.visible(v, row) || !t.match(row, f) {
			continue
		}
		out = append(out, *row)
	}
	return out, nil
}

func (t *table[T]) GetByID(_ context.Context, campaignID, id int) (*T, error) {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()

	row, err := t.get(campaignID, id)
	if err != nil {
		return nil, err
	}
	cp := *row
	return &cp, nil
}

func (t *table[T]) get(campaignID, id int) (*T, error) {
	row, ok := t.rows[id]
	if !ok || *t.meta(row).campaignID != campaignID {
		return nil, notFound(t.what)
	}
	return row, nil
}

func (t *table[T]) Create(_ context.Context, in *T) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	return t.insert(in)
}

func (t *table[T]) insert(in *T) error {
	m := t.meta(in)
	if t.s.campaigns[*m.campaignID] == nil {
		return brokenRef()
	}
	if t.check != nil {
		if err := t.check(in); err != nil {
			return err
		}
	}
	now := t.s.now()
	*m.id = t.s.id()
	m.audit.CreatedAt = now
	m.audit.UpdatedAt = now

	cp := *in
	t.rows[*m.id] = &cp
	return nil
}

func (t *table[T]) Update(_ context.Context, in *T) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	return t.update(in)
}

func (t *table[T]) update(in *T) error {
	m := t.meta(in)
	existing, err := t.get(*m.campaignID, *m.id)
	if err != nil {
		return err
	}
	if t.check != nil {
		if err := t.check(in); err != nil {
			return err
		}
	}
	old := t.meta(existing)
	m.audit.CreatedBy = old.audit.CreatedBy
	m.audit.CreatedAt = old.audit.CreatedAt
	m.audit.UpdatedAt = t.s.now()

	cp := *in
	t.rows[*m.id] = &cp
	return nil
}

func (t *table[T]) Delete(_ context.Context, campaignID, id int) error {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	return t.remove(campaignID, id)
}

func (t *table[T]) remove(campaignID, id int) error {
	if _, err := t.get(campaignID, id); err != nil {
		return err
	}
	if t.onDelete != nil {
		if err := t.onDelete(id); err != nil {
			return err
		}
	}
	delete(t.rows, id)
	t.s.deleteRefs(t.kind, id)
	return nil
}

// removeCampaign drops every row of the campaign without running hooks.
func (t *table[T]) removeCampaign(campaignID int) {
	for id, row := range t.rows {
		if *t.meta(row).campaignID == campaignID {
			delete(t.rows, id)
			t.s.deleteRefs(t.kind, id)
		}
	}
}
