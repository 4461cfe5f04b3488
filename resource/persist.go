package resource

import (
	"context"
	"time"

	"github.com/rs/rest-layer-orm/schema"
)

// plan is the ordered work of a persist call: to-one tasks resolving the
// root foreign keys, the root save, then the to-many tasks which need the
// root primary key.
type plan struct {
	preSave  []task
	postSave []task
}

func (s *Service) plan(m *schema.Model, payload map[string]interface{}) (*plan, error) {
	p := &plan{}
	for _, a := range m.Associations {
		value, found := payload[a.Name]
		if !found || isEmpty(value) {
			continue
		}
		st, found := strategies[a.Kind]
		if !found {
			return nil, typeErrorf("no persistence strategy for %s", a)
		}
		t, err := st(s, a, value)
		if err != nil {
			return nil, err
		}
		if t == nil {
			continue
		}
		if a.Kind == schema.ToOne {
			p.preSave = append(p.preSave, t)
		} else {
			p.postSave = append(p.postSave, t)
		}
	}
	return p, nil
}

func (p *plan) run(ctx context.Context, tx Tx, root *Record) error {
	for _, t := range p.preSave {
		if err := t(ctx, tx, root); err != nil {
			return err
		}
	}
	if err := saveRoot(ctx, tx, root); err != nil {
		return err
	}
	for _, t := range p.postSave {
		if err := t(ctx, tx, root); err != nil {
			return err
		}
	}
	return nil
}

// Persist stores the record of type t described by payload together with
// the related records found under its association names, in one
// transaction. A payload carrying the primary key updates the existing
// record.
//
// Related data is handled per association kind:
//
//   - to-one: an id, or an object holding only the id, references an
//     existing record; any other object is created (or updated when it has
//     an id) through the association handlers, before the root is saved.
//   - to-many: each id-only entry is attached to the root, other entries are
//     created or updated with their link to the root, after the root is
//     saved.
//
// Related entries are handled one level deep: an entry carrying data for
// an association of its own type is rejected with a KindBadRequest error.
// Every referenced id must exist. On success, the root record is returned
// reloaded with all its associations. On failure nothing is stored and the
// error of the failing step is returned.
func (s *Service) Persist(ctx context.Context, t schema.Type, payload map[string]interface{}) (r *Record, err error) {
	defer func(start time.Time) {
		s.trace(ctx, "Persist", typeName(t), start, err)
	}(time.Now())
	m, err := s.resolve(t)
	if err != nil {
		return nil, err
	}
	if len(payload) == 0 {
		return nil, badRequestf("empty payload")
	}
	root, err := Build(ctx, m, payload)
	if err != nil {
		return nil, err
	}
	p, err := s.plan(m, payload)
	if err != nil {
		return nil, err
	}
	isNew := root.IsNew()
	err = s.transaction(ctx, func(ctx context.Context, tx Tx) error {
		if err := p.run(ctx, tx, root); err != nil {
			return err
		}
		r, err = s.reload(ctx, tx, root)
		return err
	})
	if err != nil {
		if isNew {
			delete(root.Values, m.PrimaryKey)
			root.isNew = true
		}
		return nil, err
	}
	return r, nil
}

// saveRoot inserts a new root or updates the stored one.
func saveRoot(ctx context.Context, tx Tx, root *Record) error {
	if root.IsNew() {
		if err := tx.Insert(ctx, root); err != nil {
			return err
		}
		root.markPersisted()
		return nil
	}
	m := root.Model
	values := make(map[string]interface{}, len(root.Values))
	for k, v := range root.Values {
		if k != m.PrimaryKey {
			values[k] = v
		}
	}
	q := byIDs(m, root.ID())
	var (
		n   int
		err error
	)
	if len(values) > 0 {
		n, err = tx.Update(ctx, m, q, values)
	} else {
		n, err = tx.Count(ctx, m, q)
	}
	if err != nil {
		return err
	}
	if n == 0 {
		return notFoundf("%s %v not found", m.Name, root.ID())
	}
	return nil
}

// reload reads back the persisted root with all its associations.
func (s *Service) reload(ctx context.Context, q Querier, root *Record) (*Record, error) {
	m := root.Model
	records, err := s.find(ctx, q, m, populate(m, byIDs(m, root.ID())))
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, notFoundf("%s %v not found", m.Name, root.ID())
	}
	return records[0], nil
}
