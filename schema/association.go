package schema

import "fmt"

// Kind is the kind of an association.
type Kind int

const (
	// ToOne is a many-to-one relation: the foreign key is an attribute of the
	// source type referencing the target's primary key (i.e.: Task.user_id).
	ToOne Kind = iota
	// ToMany is a one-to-many relation: the foreign key is an attribute of
	// the target type referencing the source's primary key.
	ToMany
	// ToManyThrough is a many-to-many relation materialized by a join type
	// holding one foreign key toward each side.
	ToManyThrough
)

func (k Kind) String() string {
	switch k {
	case ToOne:
		return "to_one"
	case ToMany:
		return "to_many"
	case ToManyThrough:
		return "to_many_through"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// ParseKind converts the textual form of a Kind.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "to_one", "belongs_to":
		return ToOne, nil
	case "to_many", "has_many":
		return ToMany, nil
	case "to_many_through", "belongs_to_many":
		return ToManyThrough, nil
	}
	return 0, fmt.Errorf("invalid association kind %q", s)
}

// Association is a directional relation between a source record type (the
// one declaring it) and a target record type.
type Association struct {
	// Kind is the kind of relation.
	Kind Kind
	// Name is the payload key holding related data (i.e.: Tasks, User). It
	// defaults to the target type name.
	Name string
	// Target is the related record type. A Name is resolved to a *Model when
	// the Index is compiled.
	Target Type
	// ForeignKey is the referencing attribute: on the source for ToOne, on
	// the target for ToMany. Unused for ToManyThrough (see Through).
	ForeignKey string
	// Through describes the join type of a ToManyThrough association.
	Through *Through

	source *Model
	target *Model
}

// Through describes the join record type of a many-to-many association.
type Through struct {
	// Model is the join record type.
	Model Type
	// SourceKey is the join attribute referencing the source primary key.
	SourceKey string
	// TargetKey is the join attribute referencing the target primary key.
	TargetKey string

	model *Model
}

// JoinModel returns the resolved join record type.
func (t *Through) JoinModel() *Model {
	return t.model
}

// Source returns the record type declaring the association.
func (a *Association) Source() *Model {
	return a.source
}

// TargetModel returns the resolved target record type. It is nil until the
// Index holding the source type is compiled.
func (a *Association) TargetModel() *Model {
	return a.target
}

func (a *Association) String() string {
	source := "?"
	if a.source != nil {
		source = a.source.Name
	}
	return fmt.Sprintf("%s.%s(%s)", source, a.Name, a.Kind)
}
