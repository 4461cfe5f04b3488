// Package mem is an in-memory transactional storage for the resource
// package. It is meant for tests and prototypes; data is lost when the
// process exits.
package mem

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/rs/rest-layer-orm/resource"
	"github.com/rs/rest-layer-orm/schema"
)

// MemoryHandler is a resource.Storer storing records in memory. Only one
// transaction can be open at a time; writes issued outside of a
// transaction run in an implicit one.
type MemoryHandler struct {
	sync.RWMutex
	tables tables
	// txLock is held by the open transaction.
	txLock chan struct{}
	// If latency is set, the handler will introduce an artificial latency on
	// all operations.
	Latency time.Duration
}

var _ resource.Storer = (*MemoryHandler)(nil)

// NewHandler creates an empty memory handler.
func NewHandler() *MemoryHandler {
	return &MemoryHandler{
		tables: tables{},
		txLock: make(chan struct{}, 1),
	}
}

// NewSlowHandler creates an empty memory handler with specified latency.
func NewSlowHandler(latency time.Duration) *MemoryHandler {
	h := NewHandler()
	h.Latency = latency
	return h
}

// Find implements resource.Querier.
func (m *MemoryHandler) Find(ctx context.Context, model *schema.Model, q *resource.Query) (records []*resource.Record, err error) {
	err = handleWithLatency(m.Latency, ctx, func() error {
		m.RLock()
		defer m.RUnlock()
		records = m.tables.find(model, q)
		return nil
	})
	return records, err
}

// Count implements resource.Querier.
func (m *MemoryHandler) Count(ctx context.Context, model *schema.Model, q *resource.Query) (total int, err error) {
	err = handleWithLatency(m.Latency, ctx, func() error {
		m.RLock()
		defer m.RUnlock()
		total = len(m.tables.match(model, q))
		return nil
	})
	return total, err
}

// Insert implements resource.Querier.
func (m *MemoryHandler) Insert(ctx context.Context, r *resource.Record) error {
	return m.autoCommit(ctx, func(tx *memTx) error {
		return tx.Insert(ctx, r)
	})
}

// Update implements resource.Querier.
func (m *MemoryHandler) Update(ctx context.Context, model *schema.Model, q *resource.Query, values map[string]interface{}) (updated int, err error) {
	err = m.autoCommit(ctx, func(tx *memTx) error {
		updated, err = tx.Update(ctx, model, q, values)
		return err
	})
	return updated, err
}

// Delete implements resource.Querier.
func (m *MemoryHandler) Delete(ctx context.Context, model *schema.Model, q *resource.Query) (deleted int, err error) {
	err = m.autoCommit(ctx, func(tx *memTx) error {
		deleted, err = tx.Delete(ctx, model, q)
		return err
	})
	return deleted, err
}

// Begin implements resource.Storer. It waits for the transaction currently
// open, if any, to be committed or rolled back.
func (m *MemoryHandler) Begin(ctx context.Context) (resource.Tx, error) {
	return m.begin(ctx)
}

func (m *MemoryHandler) begin(ctx context.Context) (*memTx, error) {
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case m.txLock <- struct{}{}:
	}
	m.RLock()
	defer m.RUnlock()
	return &memTx{
		handler: m,
		latency: m.Latency,
		tables:  m.tables.clone(),
	}, nil
}

func (m *MemoryHandler) autoCommit(ctx context.Context, f func(tx *memTx) error) error {
	tx, err := m.begin(ctx)
	if err != nil {
		return err
	}
	if err := f(tx); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// Len returns the number of records of the given type.
func (m *MemoryHandler) Len(model *schema.Model) int {
	m.RLock()
	defer m.RUnlock()
	if t, found := m.tables[model.Table]; found {
		return len(t.ids)
	}
	return 0
}

type row map[string]interface{}

// table holds the rows of one record type in insertion order.
type table struct {
	rows map[interface{}]row
	ids  []interface{}
	seq  int64
}

type tables map[string]*table

func (ts tables) clone() tables {
	c := make(tables, len(ts))
	for name, t := range ts {
		ct := &table{
			rows: make(map[interface{}]row, len(t.rows)),
			ids:  append([]interface{}(nil), t.ids...),
			seq:  t.seq,
		}
		for id, r := range t.rows {
			ct.rows[id] = r.clone()
		}
		c[name] = ct
	}
	return c
}

func (r row) clone() row {
	c := make(row, len(r))
	for k, v := range r {
		c[k] = v
	}
	return c
}

func (ts tables) table(m *schema.Model) *table {
	t, found := ts[m.Table]
	if !found {
		t = &table{rows: map[interface{}]row{}}
		ts[m.Table] = t
	}
	return t
}

// match returns the ids of the rows of m matching the where of q.
func (ts tables) match(m *schema.Model, q *resource.Query) []interface{} {
	t, found := ts[m.Table]
	if !found {
		return nil
	}
	var ids []interface{}
	for _, id := range t.ids {
		if matchRow(t.rows[id], q) {
			ids = append(ids, id)
		}
	}
	return ids
}

func matchRow(r row, q *resource.Query) bool {
	if q == nil {
		return true
	}
	for field, cond := range q.Where {
		v := r[field]
		switch c := cond.(type) {
		case nil:
			if v != nil {
				return false
			}
		case []interface{}:
			found := false
			for _, item := range c {
				if resource.Equal(v, item) {
					found = true
					break
				}
			}
			if !found {
				return false
			}
		default:
			if !resource.Equal(v, c) {
				return false
			}
		}
	}
	return true
}

func (ts tables) find(m *schema.Model, q *resource.Query) []*resource.Record {
	ids := ts.match(m, q)
	records := make([]*resource.Record, 0, len(ids))
	t := ts[m.Table]
	for _, id := range ids {
		records = append(records, resource.LoadRecord(m, t.rows[id].clone()))
	}
	if q == nil {
		return records
	}
	if len(q.Sort) > 0 {
		sort.Stable(sortableRecords{q.Sort, records})
	}
	start := q.Offset
	if start > len(records) {
		start = len(records)
	}
	end := len(records)
	if q.Limit > 0 && start+q.Limit < end {
		end = start + q.Limit
	}
	return records[start:end]
}

func (ts tables) insert(r *resource.Record) error {
	m := r.Model
	t := ts.table(m)
	id := resource.NormalizeValue(r.ID())
	if id == nil {
		t.seq++
		id = t.seq
		r.Set(m.PrimaryKey, id)
	} else if i, ok := id.(int64); ok && i > t.seq {
		t.seq = i
	}
	if _, found := t.rows[id]; found {
		return &resource.Error{
			Kind:    resource.KindConflict,
			Message: fmt.Sprintf("%s %v already exists", m.Name, id),
		}
	}
	stored := make(row, len(r.Values))
	for k, v := range r.Values {
		stored[k] = resource.NormalizeValue(v)
	}
	t.rows[id] = stored
	t.ids = append(t.ids, id)
	return nil
}

func (ts tables) update(m *schema.Model, q *resource.Query, values map[string]interface{}) int {
	ids := ts.match(m, q)
	t := ts[m.Table]
	for _, id := range ids {
		r := t.rows[id]
		for k, v := range values {
			if k == m.PrimaryKey {
				continue
			}
			r[k] = resource.NormalizeValue(v)
		}
	}
	return len(ids)
}

func (ts tables) delete(m *schema.Model, q *resource.Query) int {
	ids := ts.match(m, q)
	if len(ids) == 0 {
		return 0
	}
	t := ts[m.Table]
	deleted := make(map[interface{}]struct{}, len(ids))
	for _, id := range ids {
		delete(t.rows, id)
		deleted[id] = struct{}{}
	}
	kept := t.ids[:0]
	for _, id := range t.ids {
		if _, found := deleted[id]; !found {
			kept = append(kept, id)
		}
	}
	t.ids = kept
	return len(ids)
}
