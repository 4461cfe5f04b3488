package resource

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/rs/rest-layer-orm/schema"
)

// Record is an in-memory, possibly unsaved, instance of a record type.
type Record struct {
	// Model is the record type.
	Model *schema.Model
	// Values holds the attributes of the record, including its primary key
	// once assigned and the foreign keys of its to-one associations.
	Values map[string]interface{}
	// Relations holds loaded related records by association name: a *Record
	// (or nil) for to-one associations, a []*Record for to-many ones.
	Relations map[string]interface{}

	isNew bool
}

// RecordList is a page of records.
type RecordList struct {
	// Total is the number of records matching the query regardless of the
	// pagination.
	Total int
	// Offset is the index of the first record of the list.
	Offset int
	// Limit is the max number of records requested (0 means no limit).
	Limit int
	// Records holds the records of the page.
	Records []*Record
}

// NewRecord returns a new empty record of type m.
func NewRecord(m *schema.Model) *Record {
	return &Record{
		Model:     m,
		Values:    map[string]interface{}{},
		Relations: map[string]interface{}{},
		isNew:     true,
	}
}

// LoadRecord returns a record of type m holding values read from a store.
func LoadRecord(m *schema.Model, values map[string]interface{}) *Record {
	if values == nil {
		values = map[string]interface{}{}
	}
	return &Record{
		Model:     m,
		Values:    values,
		Relations: map[string]interface{}{},
	}
}

// Build creates an unsaved record of type m from the non association
// attributes of payload. The record is new iff payload carries no primary
// key. Attributes are validated (and defaults/hooks applied) by the model;
// validation failures are returned as a KindBadRequest error.
func Build(ctx context.Context, m *schema.Model, payload map[string]interface{}) (*Record, error) {
	isNew := true
	if id, found := payload[m.PrimaryKey]; found && id != nil {
		isNew = false
	}
	values, err := m.Validate(ctx, payload, isNew)
	if err != nil {
		return nil, validationError(err)
	}
	r := NewRecord(m)
	r.Values = values
	r.isNew = isNew
	return r, nil
}

// validationError converts a model validation error into a KindBadRequest
// error carrying the per field issues.
func validationError(err error) *Error {
	var issues schema.ErrorMap
	if errors.As(err, &issues) {
		return &Error{
			Kind:    KindBadRequest,
			Message: "Document contains error(s)",
			Issues:  issues,
		}
	}
	return &Error{Kind: KindBadRequest, Message: err.Error()}
}

// ID returns the primary key of the record, nil until assigned.
func (r *Record) ID() interface{} {
	return r.Values[r.Model.PrimaryKey]
}

// IsNew returns true if the record has not been persisted yet.
func (r *Record) IsNew() bool {
	return r.isNew
}

// Get returns the attribute named name.
func (r *Record) Get(name string) interface{} {
	return r.Values[name]
}

// Set sets the attribute named name.
func (r *Record) Set(name string, value interface{}) {
	r.Values[name] = value
}

// Relation returns the loaded relation named name.
func (r *Record) Relation(name string) (interface{}, bool) {
	v, found := r.Relations[name]
	return v, found
}

// Related returns the loaded to-many relation named name.
func (r *Record) Related(name string) []*Record {
	l, _ := r.Relations[name].([]*Record)
	return l
}

// RelatedOne returns the loaded to-one relation named name.
func (r *Record) RelatedOne(name string) *Record {
	o, _ := r.Relations[name].(*Record)
	return o
}

func (r *Record) setRelation(name string, v interface{}) {
	if r.Relations == nil {
		r.Relations = map[string]interface{}{}
	}
	r.Relations[name] = v
}

// markPersisted flags the record as stored.
func (r *Record) markPersisted() {
	r.isNew = false
}

// Payload returns the representation of the record: its attributes without
// the hidden ones, plus the loaded relations.
func (r *Record) Payload() map[string]interface{} {
	p := make(map[string]interface{}, len(r.Values)+len(r.Relations))
	for k, v := range r.Values {
		if f, found := r.Model.Fields[k]; found && f.Hidden {
			continue
		}
		p[k] = v
	}
	for k, v := range r.Relations {
		switch rel := v.(type) {
		case *Record:
			if rel == nil {
				p[k] = nil
				continue
			}
			p[k] = rel.Payload()
		case []*Record:
			l := make([]map[string]interface{}, 0, len(rel))
			for _, item := range rel {
				l = append(l, item.Payload())
			}
			p[k] = l
		default:
			p[k] = nil
		}
	}
	return p
}

// MarshalJSON implements json.Marshaler.
func (r *Record) MarshalJSON() ([]byte, error) {
	return json.Marshal(r.Payload())
}
