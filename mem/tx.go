package mem

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/rest-layer-orm/resource"
	"github.com/rs/rest-layer-orm/schema"
)

// ErrTxDone is returned when committing or rolling back a transaction
// already committed or rolled back.
var ErrTxDone = errors.New("mem: transaction has already been committed or rolled back")

// memTx works on a private copy of the handler tables which replaces them
// on commit.
type memTx struct {
	mu      sync.Mutex
	handler *MemoryHandler
	latency time.Duration
	tables  tables
	done    bool
}

var _ resource.Tx = (*memTx)(nil)

func (tx *memTx) do(ctx context.Context, f func() error) error {
	return handleWithLatency(tx.latency, ctx, func() error {
		tx.mu.Lock()
		defer tx.mu.Unlock()
		if tx.done {
			return ErrTxDone
		}
		return f()
	})
}

func (tx *memTx) Find(ctx context.Context, m *schema.Model, q *resource.Query) (records []*resource.Record, err error) {
	err = tx.do(ctx, func() error {
		records = tx.tables.find(m, q)
		return nil
	})
	return records, err
}

func (tx *memTx) Count(ctx context.Context, m *schema.Model, q *resource.Query) (total int, err error) {
	err = tx.do(ctx, func() error {
		total = len(tx.tables.match(m, q))
		return nil
	})
	return total, err
}

func (tx *memTx) Insert(ctx context.Context, r *resource.Record) error {
	return tx.do(ctx, func() error {
		return tx.tables.insert(r)
	})
}

func (tx *memTx) Update(ctx context.Context, m *schema.Model, q *resource.Query, values map[string]interface{}) (updated int, err error) {
	err = tx.do(ctx, func() error {
		updated = tx.tables.update(m, q, values)
		return nil
	})
	return updated, err
}

func (tx *memTx) Delete(ctx context.Context, m *schema.Model, q *resource.Query) (deleted int, err error) {
	err = tx.do(ctx, func() error {
		deleted = tx.tables.delete(m, q)
		return nil
	})
	return deleted, err
}

func (tx *memTx) Commit() error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.done {
		return ErrTxDone
	}
	tx.done = true
	tx.handler.Lock()
	tx.handler.tables = tx.tables
	tx.handler.Unlock()
	<-tx.handler.txLock
	return nil
}

func (tx *memTx) Rollback() error {
	tx.mu.Lock()
	defer tx.mu.Unlock()
	if tx.done {
		return ErrTxDone
	}
	tx.done = true
	tx.tables = nil
	<-tx.handler.txLock
	return nil
}
