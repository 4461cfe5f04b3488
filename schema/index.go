package schema

import (
	"fmt"
	"sync"

	"github.com/go-openapi/inflect"
)

// Index is the registry of record types. It resolves type names and
// association targets.
type Index struct {
	mu       sync.RWMutex
	models   map[string]*Model
	order    []*Model
	compiled bool
}

// NewIndex creates an index holding the given record types.
func NewIndex(models ...*Model) (*Index, error) {
	i := &Index{models: map[string]*Model{}}
	for _, m := range models {
		if err := i.Add(m); err != nil {
			return nil, err
		}
	}
	return i, nil
}

// Add registers a record type. The index must be (re)compiled afterward.
func (i *Index) Add(m *Model) error {
	i.mu.Lock()
	defer i.mu.Unlock()
	if m == nil || m.Name == "" {
		return fmt.Errorf("cannot add a model without name")
	}
	if _, found := i.models[m.Name]; found {
		return fmt.Errorf("cannot add `%s': already registered", m.Name)
	}
	i.models[m.Name] = m
	i.order = append(i.order, m)
	i.compiled = false
	return nil
}

// Get returns the record type registered under name.
func (i *Index) Get(name string) (*Model, bool) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	m, found := i.models[name]
	return m, found
}

// Models returns the registered record types in registration order.
func (i *Index) Models() []*Model {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return append([]*Model(nil), i.order...)
}

// Resolve returns the record type designated by t. A *Model is returned as
// is when registered, a Name is looked up.
func (i *Index) Resolve(t Type) (*Model, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: nil type", ErrUnknownType)
	}
	m, found := i.Get(t.TypeName())
	if !found {
		return nil, fmt.Errorf("%w %q", ErrUnknownType, t.TypeName())
	}
	if mt, ok := t.(*Model); ok && mt != m {
		return nil, fmt.Errorf("%w %q: not the registered model", ErrUnknownType, t.TypeName())
	}
	return m, nil
}

// Compile applies defaults to every registered type, resolves association
// targets and foreign keys, and compiles field validators. Missing foreign
// key fields are added using the referenced primary key's validator.
func (i *Index) Compile() error {
	i.mu.Lock()
	defer i.mu.Unlock()
	var errs ErrorSlice
	for _, m := range i.order {
		if err := compileModel(m); err != nil {
			errs = errs.Append(fmt.Errorf("%s: %v", m.Name, err))
		}
	}
	if len(errs) > 0 {
		return errs
	}
	for _, m := range i.order {
		for _, a := range m.Associations {
			if err := i.compileAssociation(m, a); err != nil {
				errs = errs.Append(fmt.Errorf("%s.%s: %v", m.Name, a.Name, err))
			}
		}
	}
	if len(errs) > 0 {
		return errs
	}
	i.compiled = true
	return nil
}

// Compiled returns true if the index has been compiled since the last Add.
func (i *Index) Compiled() bool {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.compiled
}

func compileModel(m *Model) error {
	if m.Table == "" {
		m.Table = inflect.Pluralize(inflect.Underscore(m.Name))
	}
	if m.PrimaryKey == "" {
		m.PrimaryKey = "id"
	}
	if m.Fields == nil {
		m.Fields = Fields{}
	}
	if _, found := m.Fields[m.PrimaryKey]; !found {
		m.Fields[m.PrimaryKey] = SerialField
	}
	var errs ErrorSlice
	for _, name := range m.Fields.Names() {
		if err := m.Fields[name].Compile(); err != nil {
			errs = errs.Append(fmt.Errorf("%s: %v", name, err))
		}
	}
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (i *Index) resolve(t Type) (*Model, error) {
	if t == nil {
		return nil, fmt.Errorf("%w: missing target", ErrUnknownType)
	}
	m, found := i.models[t.TypeName()]
	if !found {
		return nil, fmt.Errorf("%w %q", ErrUnknownType, t.TypeName())
	}
	return m, nil
}

func (i *Index) compileAssociation(m *Model, a *Association) error {
	target, err := i.resolve(a.Target)
	if err != nil {
		return err
	}
	a.source = m
	a.target = target
	a.Target = target
	if a.Name == "" {
		a.Name = target.Name
	}
	if _, found := m.Fields[a.Name]; found {
		return fmt.Errorf("association name conflicts with field `%s'", a.Name)
	}
	switch a.Kind {
	case ToOne:
		if a.ForeignKey == "" {
			a.ForeignKey = foreignKey(a.Name)
		}
		ensureForeignKey(m, a.ForeignKey, target)
	case ToMany:
		if a.ForeignKey == "" {
			a.ForeignKey = foreignKey(m.Name)
		}
		ensureForeignKey(target, a.ForeignKey, m)
	case ToManyThrough:
		if a.Through == nil || a.Through.Model == nil {
			return fmt.Errorf("%s association requires a join type", a.Kind)
		}
		join, err := i.resolve(a.Through.Model)
		if err != nil {
			return err
		}
		a.Through.model = join
		a.Through.Model = join
		if a.Through.SourceKey == "" {
			a.Through.SourceKey = foreignKey(m.Name)
		}
		if a.Through.TargetKey == "" {
			a.Through.TargetKey = foreignKey(target.Name)
		}
		if a.Through.SourceKey == a.Through.TargetKey {
			return fmt.Errorf("join keys must differ (both `%s')", a.Through.SourceKey)
		}
		ensureForeignKey(join, a.Through.SourceKey, m)
		ensureForeignKey(join, a.Through.TargetKey, target)
	default:
		return fmt.Errorf("invalid association kind %v", a.Kind)
	}
	return nil
}

// foreignKey returns the default foreign key name for the type or
// association name (i.e.: BlogPost -> blog_post_id).
func foreignKey(name string) string {
	return inflect.Underscore(name) + "_id"
}

// ensureForeignKey adds the foreign key field to m when not declared, typed
// after the referenced type's primary key.
func ensureForeignKey(m *Model, name string, ref *Model) {
	if _, found := m.Fields[name]; found {
		return
	}
	pk := ref.PrimaryField()
	m.Fields[name] = Field{
		Description: fmt.Sprintf("Reference to %s", ref.Name),
		Validator:   pk.Validator,
	}
}
