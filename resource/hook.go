package resource

import (
	"context"
	"errors"

	"github.com/rs/rest-layer-orm/schema"
)

// InsertEventHandler is an interface to be implemented by an event handler
// that want to be called before a record is inserted. The record may be
// modified; a returned error aborts the transaction. This interface is to be
// used with the Service.Use() method.
type InsertEventHandler interface {
	OnInsert(ctx context.Context, r *Record) error
}

// InsertEventHandlerFunc converts a function into an InsertEventHandler.
type InsertEventHandlerFunc func(ctx context.Context, r *Record) error

// OnInsert implements InsertEventHandler
func (e InsertEventHandlerFunc) OnInsert(ctx context.Context, r *Record) error {
	return e(ctx, r)
}

// InsertedEventHandler is an interface to be implemented by an event handler
// that want to be called after a record has been inserted. The handler may
// replace the error.
type InsertedEventHandler interface {
	OnInserted(ctx context.Context, r *Record, err *error)
}

// InsertedEventHandlerFunc converts a function into an InsertedEventHandler.
type InsertedEventHandlerFunc func(ctx context.Context, r *Record, err *error)

// OnInserted implements InsertedEventHandler
func (e InsertedEventHandlerFunc) OnInserted(ctx context.Context, r *Record, err *error) {
	e(ctx, r, err)
}

// UpdateEventHandler is an interface to be implemented by an event handler
// that want to be called before the records of m matching q are updated
// with values. values may be modified.
type UpdateEventHandler interface {
	OnUpdate(ctx context.Context, m *schema.Model, q *Query, values map[string]interface{}) error
}

// UpdateEventHandlerFunc converts a function into an UpdateEventHandler.
type UpdateEventHandlerFunc func(ctx context.Context, m *schema.Model, q *Query, values map[string]interface{}) error

// OnUpdate implements UpdateEventHandler
func (e UpdateEventHandlerFunc) OnUpdate(ctx context.Context, m *schema.Model, q *Query, values map[string]interface{}) error {
	return e(ctx, m, q, values)
}

// UpdatedEventHandler is an interface to be implemented by an event handler
// that want to be called after records have been updated.
type UpdatedEventHandler interface {
	OnUpdated(ctx context.Context, m *schema.Model, q *Query, updated *int, err *error)
}

// UpdatedEventHandlerFunc converts a function into an UpdatedEventHandler.
type UpdatedEventHandlerFunc func(ctx context.Context, m *schema.Model, q *Query, updated *int, err *error)

// OnUpdated implements UpdatedEventHandler
func (e UpdatedEventHandlerFunc) OnUpdated(ctx context.Context, m *schema.Model, q *Query, updated *int, err *error) {
	e(ctx, m, q, updated, err)
}

// DeleteEventHandler is an interface to be implemented by an event handler
// that want to be called before the records of m matching q are deleted.
type DeleteEventHandler interface {
	OnDelete(ctx context.Context, m *schema.Model, q *Query) error
}

// DeleteEventHandlerFunc converts a function into a DeleteEventHandler.
type DeleteEventHandlerFunc func(ctx context.Context, m *schema.Model, q *Query) error

// OnDelete implements DeleteEventHandler
func (e DeleteEventHandlerFunc) OnDelete(ctx context.Context, m *schema.Model, q *Query) error {
	return e(ctx, m, q)
}

// DeletedEventHandler is an interface to be implemented by an event handler
// that want to be called after records have been deleted.
type DeletedEventHandler interface {
	OnDeleted(ctx context.Context, m *schema.Model, q *Query, deleted *int, err *error)
}

// DeletedEventHandlerFunc converts a function into a DeletedEventHandler.
type DeletedEventHandlerFunc func(ctx context.Context, m *schema.Model, q *Query, deleted *int, err *error)

// OnDeleted implements DeletedEventHandler
func (e DeletedEventHandlerFunc) OnDeleted(ctx context.Context, m *schema.Model, q *Query, deleted *int, err *error) {
	e(ctx, m, q, deleted, err)
}

type eventHandler struct {
	onInsertH   []InsertEventHandler
	onInsertedH []InsertedEventHandler
	onUpdateH   []UpdateEventHandler
	onUpdatedH  []UpdatedEventHandler
	onDeleteH   []DeleteEventHandler
	onDeletedH  []DeletedEventHandler
}

func (h *eventHandler) use(e interface{}) error {
	found := false
	if e, ok := e.(InsertEventHandler); ok {
		h.onInsertH = append(h.onInsertH, e)
		found = true
	}
	if e, ok := e.(InsertedEventHandler); ok {
		h.onInsertedH = append(h.onInsertedH, e)
		found = true
	}
	if e, ok := e.(UpdateEventHandler); ok {
		h.onUpdateH = append(h.onUpdateH, e)
		found = true
	}
	if e, ok := e.(UpdatedEventHandler); ok {
		h.onUpdatedH = append(h.onUpdatedH, e)
		found = true
	}
	if e, ok := e.(DeleteEventHandler); ok {
		h.onDeleteH = append(h.onDeleteH, e)
		found = true
	}
	if e, ok := e.(DeletedEventHandler); ok {
		h.onDeletedH = append(h.onDeletedH, e)
		found = true
	}
	if !found {
		return errors.New("does not implement any event handler interface")
	}
	return nil
}

func (h *eventHandler) onInsert(ctx context.Context, r *Record) error {
	for _, e := range h.onInsertH {
		if err := e.OnInsert(ctx, r); err != nil {
			return err
		}
	}
	return nil
}

func (h *eventHandler) onInserted(ctx context.Context, r *Record, err *error) {
	for _, e := range h.onInsertedH {
		e.OnInserted(ctx, r, err)
	}
}

func (h *eventHandler) onUpdate(ctx context.Context, m *schema.Model, q *Query, values map[string]interface{}) error {
	for _, e := range h.onUpdateH {
		if err := e.OnUpdate(ctx, m, q, values); err != nil {
			return err
		}
	}
	return nil
}

func (h *eventHandler) onUpdated(ctx context.Context, m *schema.Model, q *Query, updated *int, err *error) {
	for _, e := range h.onUpdatedH {
		e.OnUpdated(ctx, m, q, updated, err)
	}
}

func (h *eventHandler) onDelete(ctx context.Context, m *schema.Model, q *Query) error {
	for _, e := range h.onDeleteH {
		if err := e.OnDelete(ctx, m, q); err != nil {
			return err
		}
	}
	return nil
}

func (h *eventHandler) onDeleted(ctx context.Context, m *schema.Model, q *Query, deleted *int, err *error) {
	for _, e := range h.onDeletedH {
		e.OnDeleted(ctx, m, q, deleted, err)
	}
}

// Use attaches an event handler to the record type named typeName. The
// handler must implement at least one of the *EventHandler interfaces. An
// empty typeName attaches the handler to every record type.
//
// Handlers are called for each write issued inside a service transaction,
// including writes of related records, unless the context was marked with
// WithDisableHooks. Handlers of related records written in parallel may be
// called concurrently. Handlers must be attached before the service is used.
func (s *Service) Use(typeName string, e interface{}) error {
	if typeName != "" {
		if _, found := s.index.Get(typeName); !found {
			return typeErrorf("cannot attach event handler: unknown type %q", typeName)
		}
	}
	if s.hooks == nil {
		s.hooks = map[string]*eventHandler{}
	}
	h := s.hooks[typeName]
	if h == nil {
		h = &eventHandler{}
	}
	if err := h.use(e); err != nil {
		return err
	}
	s.hooks[typeName] = h
	return nil
}

type ctxKey int

const (
	ctxKeyDisableHooks ctxKey = iota
)

// WithDisableHooks returns a new context where event handlers are marked not
// to run.
func WithDisableHooks(ctx context.Context) context.Context {
	return context.WithValue(ctx, ctxKeyDisableHooks, true)
}

func hooksDisabled(ctx context.Context) bool {
	b, ok := ctx.Value(ctxKeyDisableHooks).(bool)
	return ok && b
}

// hookedTx calls the event handlers of the service around the writes of tx.
type hookedTx struct {
	Tx
	hooks map[string]*eventHandler
}

func (s *Service) hookTx(ctx context.Context, tx Tx) Tx {
	if len(s.hooks) == 0 || hooksDisabled(ctx) {
		return tx
	}
	return hookedTx{Tx: tx, hooks: s.hooks}
}

// handlers returns the handlers of the type named name followed by the ones
// attached to every type.
func (t hookedTx) handlers(name string) []*eventHandler {
	hs := make([]*eventHandler, 0, 2)
	if h := t.hooks[name]; h != nil {
		hs = append(hs, h)
	}
	if h := t.hooks[""]; h != nil {
		hs = append(hs, h)
	}
	return hs
}

func (t hookedTx) Insert(ctx context.Context, r *Record) (err error) {
	hs := t.handlers(r.Model.Name)
	for _, h := range hs {
		if err = h.onInsert(ctx, r); err != nil {
			return err
		}
	}
	err = t.Tx.Insert(ctx, r)
	for _, h := range hs {
		h.onInserted(ctx, r, &err)
	}
	return err
}

func (t hookedTx) Update(ctx context.Context, m *schema.Model, q *Query, values map[string]interface{}) (n int, err error) {
	hs := t.handlers(m.Name)
	for _, h := range hs {
		if err = h.onUpdate(ctx, m, q, values); err != nil {
			return 0, err
		}
	}
	n, err = t.Tx.Update(ctx, m, q, values)
	for _, h := range hs {
		h.onUpdated(ctx, m, q, &n, &err)
	}
	return n, err
}

func (t hookedTx) Delete(ctx context.Context, m *schema.Model, q *Query) (n int, err error) {
	hs := t.handlers(m.Name)
	for _, h := range hs {
		if err = h.onDelete(ctx, m, q); err != nil {
			return 0, err
		}
	}
	n, err = t.Tx.Delete(ctx, m, q)
	for _, h := range hs {
		h.onDeleted(ctx, m, q, &n, &err)
	}
	return n, err
}
