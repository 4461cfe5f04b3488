package resource

import (
	"context"
	"strings"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/rest-layer-orm/schema"
)

// Service persists and queries records of the types of an index into a
// store. It holds no per call state and is safe for concurrent use; each
// write operation runs in its own transaction.
type Service struct {
	index    *schema.Index
	storage  Storer
	handlers *Handlers
	conf     Conf
	metrics  *metrics
	hooks    map[string]*eventHandler
}

// Option configures a Service.
type Option func(s *Service) error

// WithHandlers sets the association handler registry. NewHandlers() is used
// by default.
func WithHandlers(h *Handlers) Option {
	return func(s *Service) error {
		s.handlers = h
		return nil
	}
}

// WithConf sets the configuration of the service. DefaultConf is used by
// default.
func WithConf(c Conf) Option {
	return func(s *Service) error {
		s.conf = c
		return nil
	}
}

// WithMetrics registers the operation metrics of the service on reg.
func WithMetrics(reg prometheus.Registerer) Option {
	return func(s *Service) (err error) {
		s.metrics, err = newMetrics(reg)
		return err
	}
}

// NewService creates a service over the record types of index, stored in
// storage. The index is compiled if needed.
func NewService(index *schema.Index, storage Storer, opts ...Option) (*Service, error) {
	if !index.Compiled() {
		if err := index.Compile(); err != nil {
			return nil, err
		}
	}
	s := &Service{
		index:    index,
		storage:  storage,
		handlers: NewHandlers(),
		conf:     DefaultConf,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	if s.handlers == nil {
		s.handlers = NewHandlers()
	}
	return s, nil
}

// Index returns the record type index of the service.
func (s *Service) Index() *schema.Index {
	return s.index
}

// Storage returns the store of the service.
func (s *Service) Storage() Storer {
	return s.storage
}

// Handlers returns the association handler registry of the service.
func (s *Service) Handlers() *Handlers {
	return s.handlers
}

// Conf returns the configuration of the service.
func (s *Service) Conf() Conf {
	return s.conf
}

func (s *Service) resolve(t schema.Type) (*schema.Model, error) {
	m, err := s.index.Resolve(t)
	if err != nil {
		return nil, &Error{Kind: KindType, Message: err.Error(), Err: err}
	}
	return m, nil
}

func typeName(t schema.Type) string {
	if t == nil {
		return ""
	}
	return t.TypeName()
}

// parseID converts an id argument, failing with a KindType error.
func parseID(m *schema.Model, id interface{}) (interface{}, error) {
	if id == nil {
		return nil, badRequestf("%s: missing %s", m.Name, m.PrimaryKey)
	}
	pid, err := m.ParseID(id)
	if err != nil {
		return nil, &Error{Kind: KindType, Message: err.Error(), Err: err}
	}
	return pid, nil
}

// checkQuery validates q against m and returns a copy with its where values
// normalized by the field validators.
func checkQuery(m *schema.Model, q *Query) (*Query, error) {
	c := q.Clone()
	for name, value := range c.Where {
		f, found := m.Fields[name]
		if !found || f.Hidden {
			return nil, badRequestf("invalid query: unknown field `%s'", name)
		}
		switch v := value.(type) {
		case nil:
		case []interface{}:
			l := make([]interface{}, 0, len(v))
			for _, item := range v {
				nv, err := f.Validate(item)
				if err != nil {
					return nil, badRequestf("invalid query: %s: %v", name, err)
				}
				l = append(l, nv)
			}
			c.Where[name] = l
		default:
			nv, err := f.Validate(v)
			if err != nil {
				return nil, badRequestf("invalid query: %s: %v", name, err)
			}
			c.Where[name] = nv
		}
	}
	for _, s := range c.Sort {
		name := strings.TrimPrefix(s, "-")
		if f, found := m.Fields[name]; !found || f.Hidden {
			return nil, badRequestf("invalid sort: unknown field `%s'", name)
		}
	}
	if c.Offset < 0 {
		return nil, badRequestf("invalid offset: %d", c.Offset)
	}
	for _, inc := range c.Include {
		a := m.Association(inc.As)
		if a == nil {
			return nil, badRequestf("invalid include: %s has no association %q", m.Name, inc.As)
		}
		if inc.Model != nil && inc.Model != a.TargetModel() {
			return nil, badRequestf("invalid include: %s targets %s, not %s", a, a.Target.TypeName(), inc.Model.Name)
		}
	}
	return c, nil
}

// find returns the records of m matching q with their includes loaded.
func (s *Service) find(ctx context.Context, qr Querier, m *schema.Model, q *Query) ([]*Record, error) {
	records, err := qr.Find(ctx, m, q)
	if err != nil {
		return nil, err
	}
	if err := loadRelations(ctx, qr, m, records, q.Include); err != nil {
		return nil, err
	}
	return records, nil
}

// Find returns the records of type t matching q, with their includes
// loaded. Total is the number of matching records regardless of
// pagination.
func (s *Service) Find(ctx context.Context, t schema.Type, q *Query) (list *RecordList, err error) {
	defer func(start time.Time) {
		s.trace(ctx, "Find", typeName(t), start, err)
	}(time.Now())
	m, err := s.resolve(t)
	if err != nil {
		return nil, err
	}
	if s.storage == nil {
		return nil, ErrNoStorage
	}
	if q, err = checkQuery(m, q); err != nil {
		return nil, err
	}
	records, err := s.find(ctx, s.storage, m, q)
	if err != nil {
		return nil, err
	}
	list = &RecordList{Offset: q.Offset, Limit: q.Limit, Records: records, Total: len(records)}
	if q.Offset > 0 || (q.Limit > 0 && len(records) == q.Limit) {
		if list.Total, err = s.storage.Count(ctx, m, q); err != nil {
			return nil, err
		}
	}
	return list, nil
}

// FindOne returns the first record of type t matching q. A KindNotFound
// error is returned if none matches.
func (s *Service) FindOne(ctx context.Context, t schema.Type, q *Query) (r *Record, err error) {
	defer func(start time.Time) {
		s.trace(ctx, "FindOne", typeName(t), start, err)
	}(time.Now())
	m, err := s.resolve(t)
	if err != nil {
		return nil, err
	}
	if s.storage == nil {
		return nil, ErrNoStorage
	}
	if q, err = checkQuery(m, q); err != nil {
		return nil, err
	}
	q.Limit = 1
	records, err := s.find(ctx, s.storage, m, q)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, notFoundf("%s not found", m.Name)
	}
	return records[0], nil
}

// Delete removes the record of type t with the given id along with the join
// records linking it. A KindNotFound error is returned if it does not exist.
func (s *Service) Delete(ctx context.Context, t schema.Type, id interface{}) (err error) {
	defer func(start time.Time) {
		s.trace(ctx, "Delete", typeName(t), start, err)
	}(time.Now())
	m, err := s.resolve(t)
	if err != nil {
		return err
	}
	pid, err := parseID(m, id)
	if err != nil {
		return err
	}
	return s.transaction(ctx, func(ctx context.Context, tx Tx) error {
		if err := unlinkOwned(ctx, tx, m, []interface{}{pid}); err != nil {
			return err
		}
		n, err := tx.Delete(ctx, m, byIDs(m, pid))
		if err != nil {
			return err
		}
		if n == 0 {
			return notFoundf("%s %v not found", m.Name, pid)
		}
		return nil
	})
}

// DeleteAll removes every record of type t matching q, in one transaction,
// and returns their number.
func (s *Service) DeleteAll(ctx context.Context, t schema.Type, q *Query) (deleted int, err error) {
	defer func(start time.Time) {
		s.trace(ctx, "DeleteAll", typeName(t), start, err)
	}(time.Now())
	m, err := s.resolve(t)
	if err != nil {
		return 0, err
	}
	if q, err = checkQuery(m, q); err != nil {
		return 0, err
	}
	err = s.transaction(ctx, func(ctx context.Context, tx Tx) error {
		deleted, err = deleteMatching(ctx, tx, m, q)
		return err
	})
	return deleted, err
}

// deleteMatching deletes the records of m matching q and the join records
// linking them.
func deleteMatching(ctx context.Context, tx Tx, m *schema.Model, q *Query) (int, error) {
	dq := q
	if q.Offset > 0 || q.Limit > 0 || hasThrough(m) {
		records, err := tx.Find(ctx, m, q)
		if err != nil {
			return 0, err
		}
		ids := ownerIDs(records)
		if len(ids) == 0 {
			return 0, nil
		}
		if err := unlinkOwned(ctx, tx, m, ids); err != nil {
			return 0, err
		}
		dq = byIDs(m, ids...)
	}
	return tx.Delete(ctx, m, dq)
}

func hasThrough(m *schema.Model) bool {
	for _, a := range m.Associations {
		if a.Kind == schema.ToManyThrough {
			return true
		}
	}
	return false
}

// unlinkOwned deletes the join records of the many-to-many associations
// declared by m for the records with the given ids.
func unlinkOwned(ctx context.Context, tx Tx, m *schema.Model, ids []interface{}) error {
	for _, a := range m.Associations {
		if a.Kind != schema.ToManyThrough {
			continue
		}
		q := &Query{Where: map[string]interface{}{a.Through.SourceKey: ids}}
		if _, err := tx.Delete(ctx, a.Through.JoinModel(), q); err != nil {
			return err
		}
	}
	return nil
}
