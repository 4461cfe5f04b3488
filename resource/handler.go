package resource

import (
	"context"
	"sync"

	"github.com/rs/rest-layer-orm/schema"
)

// Intent tells whether an association handler creates or updates a related
// record.
type Intent int

const (
	// CreateIntent is the intent for related data carrying no primary key.
	CreateIntent Intent = iota
	// UpdateIntent is the intent for related data carrying a primary key.
	UpdateIntent
)

func (i Intent) String() string {
	if i == UpdateIntent {
		return "update"
	}
	return "create"
}

// AssociationHandler performs the write of one related record inside the
// transaction of a persist call.
type AssociationHandler interface {
	HandleAssociation(ctx context.Context, tx Tx, m *schema.Model, data map[string]interface{}) (*Record, error)
}

// AssociationHandlerFunc converts a function into an AssociationHandler.
type AssociationHandlerFunc func(ctx context.Context, tx Tx, m *schema.Model, data map[string]interface{}) (*Record, error)

// HandleAssociation implements AssociationHandler.
func (f AssociationHandlerFunc) HandleAssociation(ctx context.Context, tx Tx, m *schema.Model, data map[string]interface{}) (*Record, error) {
	return f(ctx, tx, m, data)
}

type handlerKey struct {
	typeName string
	intent   Intent
}

// Handlers is the registry of association handlers, keyed by target type
// and intent, with one generic fallback per intent.
type Handlers struct {
	mu       sync.RWMutex
	handlers map[handlerKey]AssociationHandler
}

// NewHandlers returns a registry holding the default CreateAssociation and
// UpdateAssociation handlers as generic fallbacks.
func NewHandlers() *Handlers {
	h := &Handlers{handlers: map[handlerKey]AssociationHandler{}}
	h.RegisterDefault(CreateIntent, AssociationHandlerFunc(CreateAssociation))
	h.RegisterDefault(UpdateIntent, AssociationHandlerFunc(UpdateAssociation))
	return h
}

// Register sets the handler used for the given target type and intent,
// overriding the generic one for that type.
func (h *Handlers) Register(typeName string, intent Intent, handler AssociationHandler) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.handlers == nil {
		h.handlers = map[handlerKey]AssociationHandler{}
	}
	h.handlers[handlerKey{typeName, intent}] = handler
}

// RegisterDefault sets the generic handler used for intent when no type
// specific handler is registered.
func (h *Handlers) RegisterDefault(intent Intent, handler AssociationHandler) {
	h.Register("", intent, handler)
}

// Resolve returns the handler for the target type named typeName. The intent
// is Create when id is nil, Update otherwise. The type specific handler is
// tried first, then the generic one. A KindType error naming both candidates
// is returned when none is registered.
func (h *Handlers) Resolve(typeName string, id interface{}) (AssociationHandler, error) {
	intent := CreateIntent
	if id != nil {
		intent = UpdateIntent
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	candidates := []handlerKey{{typeName, intent}, {"", intent}}
	for _, k := range candidates {
		if handler, found := h.handlers[k]; found && handler != nil {
			return handler, nil
		}
	}
	e := typeErrorf("no %s association handler: tried %q and %q", intent, typeName+"/"+intent.String(), "*/"+intent.String())
	e.Code = 500
	return nil, e
}

// CreateAssociation is the default Create handler: it inserts a new record
// of type m built from data.
func CreateAssociation(ctx context.Context, tx Tx, m *schema.Model, data map[string]interface{}) (*Record, error) {
	r, err := Build(ctx, m, data)
	if err != nil {
		return nil, err
	}
	if err := tx.Insert(ctx, r); err != nil {
		return nil, err
	}
	r.markPersisted()
	return r, nil
}

// UpdateAssociation is the default Update handler: it updates the record of
// type m whose primary key is the one of data with the other attributes of
// data. A KindNotFound error is returned if no such record exists.
func UpdateAssociation(ctx context.Context, tx Tx, m *schema.Model, data map[string]interface{}) (*Record, error) {
	id, err := m.ParseID(data[m.PrimaryKey])
	if err != nil {
		return nil, badRequestf("%v", err)
	}
	attrs := make(map[string]interface{}, len(data))
	for k, v := range data {
		if k != m.PrimaryKey {
			attrs[k] = v
		}
	}
	values, err := m.Validate(ctx, attrs, false)
	if err != nil {
		return nil, validationError(err)
	}
	if len(values) > 0 {
		n, err := tx.Update(ctx, m, byIDs(m, id), values)
		if err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, notFoundf("%s %v not found", m.Name, id)
		}
	}
	records, err := fetchAll(ctx, tx, m, []interface{}{id})
	if err != nil {
		return nil, err
	}
	records[0].markPersisted()
	return records[0], nil
}
