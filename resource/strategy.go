package resource

import (
	"context"
	"fmt"

	"github.com/rs/rest-layer-orm/schema"
	"golang.org/x/sync/errgroup"
)

// task is a deferred unit of work of a persist plan. It captures the
// association and payload fragment it handles and runs against the open
// transaction with the root record being persisted.
type task func(ctx context.Context, tx Tx, root *Record) error

// strategy turns the payload value of an association into a task. Values are
// checked when the task is built so malformed payloads fail before any store
// call.
type strategy func(s *Service, a *schema.Association, value interface{}) (task, error)

var strategies = map[schema.Kind]strategy{
	schema.ToOne:         (*Service).persistToOne,
	schema.ToMany:        (*Service).persistToMany,
	schema.ToManyThrough: (*Service).persistToMany,
}

// persistToOne handles the value of a to-one association. A bare id or an
// object holding only the target primary key attaches the existing target;
// any other object is written through the association handlers. In every
// case the root foreign key is set before the root is saved.
func (s *Service) persistToOne(a *schema.Association, value interface{}) (task, error) {
	target := a.TargetModel()
	var data map[string]interface{}
	switch v := value.(type) {
	case map[string]interface{}:
		data = v
	case []interface{}, []map[string]interface{}:
		return nil, badRequestf("%s: expected an object or an id, got a list", a.Name)
	default:
		data = map[string]interface{}{target.PrimaryKey: v}
	}
	entry, id, err := splitEntry(target, data)
	if err != nil {
		return nil, badRequestf("%s: %v", a.Name, err)
	}
	if entry == nil {
		return func(ctx context.Context, tx Tx, root *Record) error {
			related, err := fetchAll(ctx, tx, target, []interface{}{id})
			if err != nil {
				return err
			}
			root.Set(a.ForeignKey, id)
			root.setRelation(a.Name, related[0])
			return nil
		}, nil
	}
	return func(ctx context.Context, tx Tx, root *Record) error {
		related, err := s.dispatch(ctx, tx, target, id, entry)
		if err != nil {
			return err
		}
		fk := related.ID()
		if fk == nil {
			fk = id
		}
		root.Set(a.ForeignKey, fk)
		root.setRelation(a.Name, related)
		return nil
	}, nil
}

// persistToMany handles the list value of a to-many association (with or
// without join type). Attach-only entries are added to the existing links
// once the root primary key is known, then the other entries are written
// concurrently, each with its link to the root set.
func (s *Service) persistToMany(a *schema.Association, value interface{}) (task, error) {
	target := a.TargetModel()
	var entries []interface{}
	switch v := value.(type) {
	case []interface{}:
		entries = v
	case []map[string]interface{}:
		entries = make([]interface{}, 0, len(v))
		for _, e := range v {
			entries = append(entries, e)
		}
	default:
		return nil, badRequestf("%s: expected a list", a.Name)
	}
	var (
		attach []interface{}
		writes []map[string]interface{}
		ids    []interface{}
	)
	for i, e := range entries {
		data, ok := e.(map[string]interface{})
		if !ok {
			if e == nil {
				return nil, badRequestf("%s[%d]: null entry", a.Name, i)
			}
			data = map[string]interface{}{target.PrimaryKey: e}
		}
		entry, id, err := splitEntry(target, data)
		if err != nil {
			return nil, badRequestf("%s[%d]: %v", a.Name, i, err)
		}
		if entry == nil {
			attach = append(attach, id)
			continue
		}
		writes = append(writes, entry)
		ids = append(ids, id)
	}
	attach = uniqueValues(attach)
	return func(ctx context.Context, tx Tx, root *Record) error {
		ownerID := root.ID()
		related, err := addToMany(ctx, tx, a, root, attach)
		if err != nil {
			return err
		}
		written := make([]*Record, len(writes))
		g, gctx := errgroup.WithContext(ctx)
		for i := range writes {
			g.Go(func() error {
				entry := make(map[string]interface{}, len(writes[i])+1)
				for k, v := range writes[i] {
					entry[k] = v
				}
				if a.Kind == schema.ToMany {
					entry[a.ForeignKey] = ownerID
				}
				r, err := s.dispatch(gctx, tx, target, ids[i], entry)
				if err != nil {
					return err
				}
				if a.Kind == schema.ToManyThrough {
					if err := link(gctx, tx, a, ownerID, []interface{}{r.ID()}); err != nil {
						return err
					}
				}
				written[i] = r
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return err
		}
		root.setRelation(a.Name, append(related, written...))
		return nil
	}, nil
}

// splitEntry parses the primary key of a related payload entry. A nil entry
// is returned for attach-only entries (the primary key and nothing else).
// The returned entry never holds a nil primary key.
func splitEntry(m *schema.Model, data map[string]interface{}) (map[string]interface{}, interface{}, error) {
	for k := range data {
		if m.IsAssociation(k) {
			return nil, nil, fmt.Errorf("nested association %q is not supported", k)
		}
	}
	raw, hasID := data[m.PrimaryKey]
	var id interface{}
	if hasID && raw != nil {
		var err error
		if id, err = m.ParseID(raw); err != nil {
			return nil, nil, err
		}
		if len(data) == 1 {
			return nil, id, nil
		}
	}
	entry := make(map[string]interface{}, len(data))
	for k, v := range data {
		if k != m.PrimaryKey {
			entry[k] = v
		}
	}
	if id != nil {
		entry[m.PrimaryKey] = id
	}
	return entry, id, nil
}

// dispatch writes one related record through the handler registered for
// its type and intent.
func (s *Service) dispatch(ctx context.Context, tx Tx, m *schema.Model, id interface{}, data map[string]interface{}) (*Record, error) {
	h, err := s.handlers.Resolve(m.Name, id)
	if err != nil {
		return nil, err
	}
	return h.HandleAssociation(ctx, tx, m, data)
}
