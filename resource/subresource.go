package resource

import (
	"context"
	"time"

	"github.com/rs/rest-layer-orm/schema"
)

// subResource returns the association of m designated by sub, an
// association name or a target type name.
func (s *Service) subResource(m *schema.Model, sub string) (*schema.Association, error) {
	a := m.AssociationTo(sub)
	if a == nil {
		return nil, notFoundf("%s has no association to %s", m.Name, sub)
	}
	return a, nil
}

// FindSubResources returns the records related through sub to the record of
// type t with the given id, filtered by q. sub is an association name or a
// target type name.
func (s *Service) FindSubResources(ctx context.Context, t schema.Type, id interface{}, sub string, q *Query) (records []*Record, err error) {
	defer func(start time.Time) {
		s.trace(ctx, "FindSubResources", typeName(t), start, err)
	}(time.Now())
	m, err := s.resolve(t)
	if err != nil {
		return nil, err
	}
	a, err := s.subResource(m, sub)
	if err != nil {
		return nil, err
	}
	target := a.TargetModel()
	pid, err := parseID(m, id)
	if err != nil {
		return nil, err
	}
	if q, err = checkQuery(target, q); err != nil {
		return nil, err
	}
	if s.storage == nil {
		return nil, ErrNoStorage
	}
	parents, err := fetchAll(ctx, s.storage, m, []interface{}{pid})
	if err != nil {
		return nil, err
	}
	if q, err = relatedQuery(ctx, s.storage, a, parents[0], q); err != nil || q == nil {
		return []*Record{}, err
	}
	return s.find(ctx, s.storage, target, q)
}

// relatedQuery narrows q to the targets of a related to owner. A nil query
// is returned when nothing is related.
func relatedQuery(ctx context.Context, qr Querier, a *schema.Association, owner *Record, q *Query) (*Query, error) {
	target := a.TargetModel()
	switch a.Kind {
	case schema.ToOne:
		fk := owner.Get(a.ForeignKey)
		if fk == nil {
			return nil, nil
		}
		return q.restrict(target.PrimaryKey, fk), nil
	case schema.ToMany:
		return q.restrict(a.ForeignKey, owner.ID()), nil
	case schema.ToManyThrough:
		ids, err := linkedIDs(ctx, qr, a, owner.ID())
		if err != nil || len(ids) == 0 {
			return nil, err
		}
		return q.restrict(target.PrimaryKey, ids...), nil
	}
	return nil, typeErrorf("invalid association kind %v", a.Kind)
}

// CreateSubResources persists payload, an object or a list of objects (or
// ids), as records related through sub to the record of type t with the
// given id. Entries are created, updated or attached the same way Persist
// handles related data. A to-one association accepts a single entry and
// updates the parent foreign key. Everything runs in one transaction.
func (s *Service) CreateSubResources(ctx context.Context, t schema.Type, id interface{}, sub string, payload interface{}) (records []*Record, err error) {
	defer func(start time.Time) {
		s.trace(ctx, "CreateSubResources", typeName(t), start, err)
	}(time.Now())
	m, err := s.resolve(t)
	if err != nil {
		return nil, err
	}
	a, err := s.subResource(m, sub)
	if err != nil {
		return nil, err
	}
	pid, err := parseID(m, id)
	if err != nil {
		return nil, err
	}
	var entries []interface{}
	switch v := payload.(type) {
	case map[string]interface{}:
		entries = []interface{}{v}
	case []interface{}:
		entries = v
	case []map[string]interface{}:
		for _, e := range v {
			entries = append(entries, e)
		}
	default:
		return nil, badRequestf("invalid payload: expected an object or a list")
	}
	if len(entries) == 0 {
		return nil, badRequestf("empty payload")
	}
	var work task
	if a.Kind == schema.ToOne {
		if len(entries) > 1 {
			return nil, badRequestf("%s: expected a single entry", a.Name)
		}
		if work, err = s.persistToOne(a, entries[0]); err != nil {
			return nil, err
		}
	} else if work, err = s.persistToMany(a, entries); err != nil {
		return nil, err
	}
	owner := LoadRecord(m, map[string]interface{}{m.PrimaryKey: pid})
	err = s.transaction(ctx, func(ctx context.Context, tx Tx) error {
		if _, err := fetchAll(ctx, tx, m, []interface{}{pid}); err != nil {
			return err
		}
		if err := work(ctx, tx, owner); err != nil {
			return err
		}
		if a.Kind == schema.ToOne {
			values := map[string]interface{}{a.ForeignKey: owner.Get(a.ForeignKey)}
			if _, err := tx.Update(ctx, m, byIDs(m, pid), values); err != nil {
				return err
			}
			records = []*Record{owner.RelatedOne(a.Name)}
			return nil
		}
		records = owner.Related(a.Name)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

// DeleteSubResources removes the relations through sub between the record
// of type t with the given id and the targets matching q, and returns their
// number. Targets of a to-many association are deleted; the join records of
// a many-to-many association are deleted, leaving the targets; the foreign
// key of a to-one association is cleared, leaving the target.
func (s *Service) DeleteSubResources(ctx context.Context, t schema.Type, id interface{}, sub string, q *Query) (deleted int, err error) {
	defer func(start time.Time) {
		s.trace(ctx, "DeleteSubResources", typeName(t), start, err)
	}(time.Now())
	m, err := s.resolve(t)
	if err != nil {
		return 0, err
	}
	a, err := s.subResource(m, sub)
	if err != nil {
		return 0, err
	}
	target := a.TargetModel()
	pid, err := parseID(m, id)
	if err != nil {
		return 0, err
	}
	if q, err = checkQuery(target, q); err != nil {
		return 0, err
	}
	err = s.transaction(ctx, func(ctx context.Context, tx Tx) error {
		parents, err := fetchAll(ctx, tx, m, []interface{}{pid})
		if err != nil {
			return err
		}
		rq, err := relatedQuery(ctx, tx, a, parents[0], q)
		if err != nil || rq == nil {
			return err
		}
		switch a.Kind {
		case schema.ToMany:
			deleted, err = deleteMatching(ctx, tx, target, rq)
			return err
		case schema.ToManyThrough:
			matching, err := tx.Find(ctx, target, rq)
			if err != nil {
				return err
			}
			ids := ownerIDs(matching)
			if len(ids) == 0 {
				return nil
			}
			deleted, err = tx.Delete(ctx, a.Through.JoinModel(), &Query{Where: map[string]interface{}{
				a.Through.SourceKey: pid,
				a.Through.TargetKey: ids,
			}})
			return err
		default:
			n, err := tx.Count(ctx, target, rq)
			if err != nil || n == 0 {
				return err
			}
			values := map[string]interface{}{a.ForeignKey: nil}
			if _, err := tx.Update(ctx, m, byIDs(m, pid), values); err != nil {
				return err
			}
			deleted = 1
			return nil
		}
	})
	if err != nil {
		return 0, err
	}
	return deleted, nil
}
