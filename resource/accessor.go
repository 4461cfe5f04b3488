package resource

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/rest-layer-orm/schema"
)

// fetchAll returns the records of m with the given (parsed) ids, in ids
// order. A KindNotFound error listing the missing ids is returned if any of
// them does not exist.
func fetchAll(ctx context.Context, q Querier, m *schema.Model, ids []interface{}) ([]*Record, error) {
	ids = uniqueValues(ids)
	if len(ids) == 0 {
		return []*Record{}, nil
	}
	found, err := q.Find(ctx, m, byIDs(m, ids...))
	if err != nil {
		return nil, err
	}
	byID := make(map[interface{}]*Record, len(found))
	for _, r := range found {
		byID[key(r.ID())] = r
	}
	records := make([]*Record, 0, len(ids))
	var missing []string
	for _, id := range ids {
		r, found := byID[key(id)]
		if !found {
			missing = append(missing, fmt.Sprint(id))
			continue
		}
		records = append(records, r)
	}
	if len(missing) > 0 {
		return nil, notFoundf("%s not found: %s", m.Name, strings.Join(missing, ", "))
	}
	return records, nil
}

// addToMany attaches the existing target records with the given ids to
// owner. Links already in place are kept: for a ToMany association the
// foreign key of each target is pointed at owner, for a ToManyThrough one the
// missing join records are inserted.
func addToMany(ctx context.Context, tx Tx, a *schema.Association, owner *Record, ids []interface{}) ([]*Record, error) {
	target := a.TargetModel()
	records, err := fetchAll(ctx, tx, target, ids)
	if err != nil || len(records) == 0 {
		return records, err
	}
	switch a.Kind {
	case schema.ToMany:
		values := map[string]interface{}{a.ForeignKey: owner.ID()}
		if _, err := tx.Update(ctx, target, byIDs(target, uniqueValues(ids)...), values); err != nil {
			return nil, err
		}
		for _, r := range records {
			r.Values[a.ForeignKey] = owner.ID()
		}
	case schema.ToManyThrough:
		if err := link(ctx, tx, a, owner.ID(), ids); err != nil {
			return nil, err
		}
	default:
		return nil, typeErrorf("cannot add to %s association %s", a.Kind, a)
	}
	return records, nil
}

// link inserts the join records between ownerID and each of targetIDs which
// are not linked yet.
func link(ctx context.Context, tx Tx, a *schema.Association, ownerID interface{}, targetIDs []interface{}) error {
	join := a.Through.JoinModel()
	sk, tk := a.Through.SourceKey, a.Through.TargetKey
	targetIDs = uniqueValues(targetIDs)
	existing, err := tx.Find(ctx, join, &Query{Where: map[string]interface{}{
		sk: ownerID,
		tk: targetIDs,
	}})
	if err != nil {
		return err
	}
	linked := make(map[interface{}]struct{}, len(existing))
	for _, r := range existing {
		linked[key(r.Get(tk))] = struct{}{}
	}
	for _, id := range targetIDs {
		if _, found := linked[key(id)]; found {
			continue
		}
		r, err := Build(ctx, join, map[string]interface{}{sk: ownerID, tk: id})
		if err != nil {
			return err
		}
		if err := tx.Insert(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

// linkedIDs returns the ids of the targets linked to ownerIDs through the
// join type of a.
func linkedIDs(ctx context.Context, q Querier, a *schema.Association, ownerIDs ...interface{}) ([]interface{}, error) {
	joins, err := q.Find(ctx, a.Through.JoinModel(), &Query{Where: map[string]interface{}{
		a.Through.SourceKey: ownerIDs,
	}})
	if err != nil {
		return nil, err
	}
	ids := make([]interface{}, 0, len(joins))
	for _, j := range joins {
		if id := j.Get(a.Through.TargetKey); id != nil {
			ids = append(ids, id)
		}
	}
	return uniqueValues(ids), nil
}

// loadRelations loads the associations listed in includes on records.
func loadRelations(ctx context.Context, q Querier, m *schema.Model, records []*Record, includes []Include) error {
	if len(records) == 0 {
		return nil
	}
	for _, inc := range includes {
		a := m.Association(inc.As)
		if a == nil {
			return badRequestf("%s has no association %q", m.Name, inc.As)
		}
		var err error
		switch a.Kind {
		case schema.ToOne:
			err = loadToOne(ctx, q, a, records)
		case schema.ToMany:
			err = loadToMany(ctx, q, a, records)
		case schema.ToManyThrough:
			err = loadThrough(ctx, q, a, records)
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func loadToOne(ctx context.Context, q Querier, a *schema.Association, records []*Record) error {
	target := a.TargetModel()
	fks := make([]interface{}, 0, len(records))
	for _, r := range records {
		if fk := r.Get(a.ForeignKey); fk != nil {
			fks = append(fks, fk)
		}
	}
	byID := map[interface{}]*Record{}
	if fks = uniqueValues(fks); len(fks) > 0 {
		related, err := q.Find(ctx, target, byIDs(target, fks...))
		if err != nil {
			return err
		}
		for _, r := range related {
			byID[key(r.ID())] = r
		}
	}
	for _, r := range records {
		var related *Record
		if fk := r.Get(a.ForeignKey); fk != nil {
			related = byID[key(fk)]
		}
		r.setRelation(a.Name, related)
	}
	return nil
}

func ownerIDs(records []*Record) []interface{} {
	ids := make([]interface{}, 0, len(records))
	for _, r := range records {
		if id := r.ID(); id != nil {
			ids = append(ids, id)
		}
	}
	return uniqueValues(ids)
}

func loadToMany(ctx context.Context, q Querier, a *schema.Association, records []*Record) error {
	target := a.TargetModel()
	related, err := q.Find(ctx, target, &Query{
		Where: map[string]interface{}{a.ForeignKey: ownerIDs(records)},
		Sort:  []string{target.PrimaryKey},
	})
	if err != nil {
		return err
	}
	groups := map[interface{}][]*Record{}
	for _, r := range related {
		k := key(r.Get(a.ForeignKey))
		groups[k] = append(groups[k], r)
	}
	for _, r := range records {
		l := groups[key(r.ID())]
		if l == nil {
			l = []*Record{}
		}
		r.setRelation(a.Name, l)
	}
	return nil
}

func loadThrough(ctx context.Context, q Querier, a *schema.Association, records []*Record) error {
	target := a.TargetModel()
	sk, tk := a.Through.SourceKey, a.Through.TargetKey
	joins, err := q.Find(ctx, a.Through.JoinModel(), &Query{
		Where: map[string]interface{}{sk: ownerIDs(records)},
		Sort:  []string{a.Through.JoinModel().PrimaryKey},
	})
	if err != nil {
		return err
	}
	tids := make([]interface{}, 0, len(joins))
	for _, j := range joins {
		tids = append(tids, j.Get(tk))
	}
	byID := map[interface{}]*Record{}
	if tids = uniqueValues(tids); len(tids) > 0 {
		related, err := q.Find(ctx, target, byIDs(target, tids...))
		if err != nil {
			return err
		}
		for _, r := range related {
			byID[key(r.ID())] = r
		}
	}
	groups := map[interface{}][]*Record{}
	for _, j := range joins {
		r, found := byID[key(j.Get(tk))]
		if !found {
			continue
		}
		k := key(j.Get(sk))
		groups[k] = append(groups[k], r)
	}
	for _, r := range records {
		l := groups[key(r.ID())]
		if l == nil {
			l = []*Record{}
		}
		r.setRelation(a.Name, l)
	}
	return nil
}
