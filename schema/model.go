package schema

import (
	"context"
	"fmt"
)

// Type designates a record type. It is either a resolved *Model or a Name
// still to be resolved against an Index. No other implementation exists.
type Type interface {
	// TypeName returns the name of the designated record type.
	TypeName() string
	isType()
}

// Name is an unresolved reference to a record type.
type Name string

// TypeName implements Type.
func (n Name) TypeName() string { return string(n) }

func (Name) isType() {}

// Model describes a record type: its attributes, its primary key and the
// associations it declares toward other record types.
type Model struct {
	// Name is the name of the record type (i.e.: User).
	Name string
	// Table is the storage table name. When empty, the pluralized snake case
	// form of Name is used (i.e.: users).
	Table string
	// PrimaryKey is the name of the primary key attribute ("id" by default).
	// When the field is not declared, a store assigned integer is used.
	PrimaryKey string
	// Fields lists the typed attributes of the record type.
	Fields Fields
	// Associations lists the relations declared by this type, in declaration
	// order.
	Associations []*Association
}

// TypeName implements Type.
func (m *Model) TypeName() string { return m.Name }

func (*Model) isType() {}

// GetField returns the field named name or nil if not declared.
func (m *Model) GetField(name string) *Field {
	if f, found := m.Fields[name]; found {
		return &f
	}
	return nil
}

// PrimaryField returns the field definition of the primary key.
func (m *Model) PrimaryField() Field {
	if f, found := m.Fields[m.PrimaryKey]; found {
		return f
	}
	return SerialField
}

// Association returns the association named name or nil.
func (m *Model) Association(name string) *Association {
	for _, a := range m.Associations {
		if a.Name == name {
			return a
		}
	}
	return nil
}

// AssociationTo returns the first association whose name or target type
// name is name.
func (m *Model) AssociationTo(name string) *Association {
	if a := m.Association(name); a != nil {
		return a
	}
	for _, a := range m.Associations {
		if a.Target != nil && a.Target.TypeName() == name {
			return a
		}
	}
	return nil
}

// IsAssociation returns true if name is the payload key of an association.
func (m *Model) IsAssociation(name string) bool {
	return m.Association(name) != nil
}

// ParseID converts id into a valid primary key value. Strings are parsed
// for integer keys so ids taken from URL paths can be used as is.
func (m *Model) ParseID(id interface{}) (interface{}, error) {
	if id == nil {
		return nil, fmt.Errorf("%s: missing %s", m.Name, m.PrimaryKey)
	}
	f := m.PrimaryField()
	var (
		v   interface{}
		err error
	)
	s, isString := id.(string)
	switch i := f.Validator.(type) {
	case *Integer:
		if isString {
			v, err = i.Parse(s)
			break
		}
		v, err = f.Validate(id)
	case Integer:
		if isString {
			v, err = i.Parse(s)
			break
		}
		v, err = f.Validate(id)
	default:
		v, err = f.Validate(id)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: invalid %s %v: %v", m.Name, m.PrimaryKey, id, err)
	}
	return v, nil
}

// Validate validates and normalizes the attributes of values. The returned
// map is a new map; values is left untouched. On creation (isNew), defaults
// and OnInit hooks are applied and required fields are enforced. On update,
// OnUpdate hooks are applied. Keys naming an association are ignored.
//
// Validation issues are reported as an ErrorMap.
func (m *Model) Validate(ctx context.Context, values map[string]interface{}, isNew bool) (map[string]interface{}, error) {
	errs := ErrorMap{}
	out := make(map[string]interface{}, len(m.Fields))
	for name, value := range values {
		if m.IsAssociation(name) {
			continue
		}
		f, found := m.Fields[name]
		if !found {
			errs.Add(name, "unknown field")
			continue
		}
		if f.ReadOnly && name != m.PrimaryKey && f.OnInit == nil && f.OnUpdate == nil {
			errs.Add(name, "read-only")
			continue
		}
		v, err := f.Validate(value)
		if err != nil {
			errs.Add(name, err.Error())
			continue
		}
		out[name] = v
	}
	for _, name := range m.Fields.Names() {
		f := m.Fields[name]
		hook := f.OnUpdate
		if isNew {
			hook = f.OnInit
			if _, found := out[name]; !found && f.Default != nil {
				out[name] = f.Default
			}
		}
		if hook != nil {
			out[name] = hook(ctx, out[name])
		}
		if _, failed := errs[name]; failed {
			continue
		}
		if isNew && f.Required {
			if v, found := out[name]; !found || v == nil {
				errs.Add(name, "required")
			}
		}
	}
	if len(errs) > 0 {
		return nil, errs
	}
	return out, nil
}
