package resource

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/rs/rest-layer-orm/schema"
	"github.com/stretchr/testify/require"
)

var errUnexpectedCall = errors.New("unexpected store call")

// testStorer is a Storer recording its calls. Each operation fails unless
// the matching function is set.
type testStorer struct {
	mu     sync.Mutex
	calls  []string
	find   func(ctx context.Context, m *schema.Model, q *Query) ([]*Record, error)
	count  func(ctx context.Context, m *schema.Model, q *Query) (int, error)
	insert func(ctx context.Context, r *Record) error
	update func(ctx context.Context, m *schema.Model, q *Query, values map[string]interface{}) (int, error)
	delete func(ctx context.Context, m *schema.Model, q *Query) (int, error)
	begin  func(ctx context.Context) (Tx, error)
}

func (s *testStorer) record(call string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, call)
}

func (s *testStorer) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *testStorer) Find(ctx context.Context, m *schema.Model, q *Query) ([]*Record, error) {
	s.record("Find")
	if s.find == nil {
		return nil, errUnexpectedCall
	}
	return s.find(ctx, m, q)
}

func (s *testStorer) Count(ctx context.Context, m *schema.Model, q *Query) (int, error) {
	s.record("Count")
	if s.count == nil {
		return 0, errUnexpectedCall
	}
	return s.count(ctx, m, q)
}

func (s *testStorer) Insert(ctx context.Context, r *Record) error {
	s.record("Insert")
	if s.insert == nil {
		return errUnexpectedCall
	}
	return s.insert(ctx, r)
}

func (s *testStorer) Update(ctx context.Context, m *schema.Model, q *Query, values map[string]interface{}) (int, error) {
	s.record("Update")
	if s.update == nil {
		return 0, errUnexpectedCall
	}
	return s.update(ctx, m, q, values)
}

func (s *testStorer) Delete(ctx context.Context, m *schema.Model, q *Query) (int, error) {
	s.record("Delete")
	if s.delete == nil {
		return 0, errUnexpectedCall
	}
	return s.delete(ctx, m, q)
}

func (s *testStorer) Begin(ctx context.Context) (Tx, error) {
	s.record("Begin")
	if s.begin == nil {
		return nil, errUnexpectedCall
	}
	return s.begin(ctx)
}

// testTx is a Tx backed by a testStorer.
type testTx struct {
	*testStorer
	commit   func() error
	rollback func() error
}

func (tx *testTx) Commit() error {
	tx.record("Commit")
	if tx.commit == nil {
		return nil
	}
	return tx.commit()
}

func (tx *testTx) Rollback() error {
	tx.record("Rollback")
	if tx.rollback == nil {
		return nil
	}
	return tx.rollback()
}

// newTestTxStorer returns a storer whose Begin returns tx, sharing its call
// log.
func newTestTxStorer(tx *testTx) *testStorer {
	if tx.testStorer == nil {
		tx.testStorer = &testStorer{}
	}
	tx.testStorer.begin = func(ctx context.Context) (Tx, error) {
		return tx, nil
	}
	return tx.testStorer
}

func newTestIndex(t *testing.T) *schema.Index {
	t.Helper()
	user := &schema.Model{
		Name: "User",
		Fields: schema.Fields{
			"name": {Required: true, Validator: &schema.String{MaxLen: 150}},
		},
		Associations: []*schema.Association{
			{Kind: schema.ToMany, Name: "Tasks", Target: schema.Name("Task")},
		},
	}
	task := &schema.Model{
		Name: "Task",
		Fields: schema.Fields{
			"name": {Required: true, Validator: &schema.String{}},
		},
		Associations: []*schema.Association{
			{Kind: schema.ToOne, Name: "User", Target: schema.Name("User")},
		},
	}
	index, err := schema.NewIndex(user, task)
	require.NoError(t, err)
	require.NoError(t, index.Compile())
	return index
}

func newTestService(t *testing.T, s Storer, opts ...Option) *Service {
	t.Helper()
	svc, err := NewService(newTestIndex(t), s, opts...)
	require.NoError(t, err)
	return svc
}
