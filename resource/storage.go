package resource

import (
	"context"

	"github.com/rs/rest-layer-orm/schema"
)

// Querier defines the record level operations of a store. It is implemented
// by both a Storer (outside of any transaction) and a Tx.
//
// Queries passed to a Querier only use Where, Sort, Offset and Limit;
// includes are resolved by the Service. Where keys are attribute names of the
// model. A nil Where value matches null, a []interface{} value matches any of
// its elements (an empty list matches nothing).
//
// If the operation is not immediate, implementations must listen for
// cancellation on the passed ctx and return ctx.Err() when interrupted.
type Querier interface {
	// Find returns records of m matching q. An empty list is returned with no
	// error when nothing matches.
	Find(ctx context.Context, m *schema.Model, q *Query) ([]*Record, error)
	// Count returns the number of records of m matching q (Offset and Limit
	// are ignored).
	Count(ctx context.Context, m *schema.Model, q *Query) (int, error)
	// Insert stores a new record. When the record has no primary key value,
	// the store assigns one and sets it on r.Values. An existing key must
	// produce an error matching ErrConflict.
	Insert(ctx context.Context, r *Record) error
	// Update sets values on every record of m matching q and returns the
	// number of matched records.
	Update(ctx context.Context, m *schema.Model, q *Query, values map[string]interface{}) (int, error)
	// Delete removes every record of m matching q and returns their number.
	Delete(ctx context.Context, m *schema.Model, q *Query) (int, error)
}

// Tx is an open store transaction. A Tx must be safe for concurrent use as
// independent writes of a to-many batch are issued in parallel.
type Tx interface {
	Querier
	// Commit makes every write performed through the Tx durable.
	Commit() error
	// Rollback discards every write performed through the Tx.
	Rollback() error
}

// Storer defines the interface of a relational store the Service persists
// records to.
type Storer interface {
	Querier
	// Begin opens a new transaction.
	Begin(ctx context.Context) (Tx, error)
}
