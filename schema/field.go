package schema

import (
	"context"
	"sort"
)

// Fields defines a map of name -> field pairs
type Fields map[string]Field

// Names returns the field names sorted alphabetically.
func (f Fields) Names() []string {
	names := make([]string, 0, len(f))
	for name := range f {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Field specifies the info for a single attribute of a record type.
type Field struct {
	// Description stores a short description of the field useful for automatic
	// documentation generation.
	Description string
	// Required throws an error when the field is not provided at creation.
	Required bool
	// ReadOnly throws an error when a field is changed by the client.
	// Default and OnInit/OnUpdate hooks can be used to set/change read-only
	// fields.
	ReadOnly bool
	// Hidden allows writes but hides the field's content from the client.
	Hidden bool
	// Default defines the value be stored on the field when when the record
	// is created and this field is not provided by the client.
	Default interface{}
	// OnInit can be set to a function to generate the value of this field
	// when a record is created. The function takes the current value if any
	// and returns the value to be stored.
	OnInit func(ctx context.Context, value interface{}) interface{}
	// OnUpdate can be set to a function to generate the value of this field
	// when a record is updated. The function takes the current value if any
	// and returns the value to be stored.
	OnUpdate func(ctx context.Context, value interface{}) interface{}
	// Validator is used to validate and normalize the field's value. Pass
	// pointers so the Compiler interface can be discovered.
	Validator FieldValidator
}

// Compile compiles the field validator when it implements Compiler.
func (f Field) Compile() error {
	if c, ok := f.Validator.(Compiler); ok {
		return c.Compile()
	}
	return nil
}

// Validate validates and normalizes value using the field's validator. A nil
// value is always accepted, required-ness is checked at the record level.
func (f Field) Validate(value interface{}) (interface{}, error) {
	if value == nil || f.Validator == nil {
		return value, nil
	}
	return f.Validator.Validate(value)
}

// FieldValidator is an interface for all individual validators. It takes a
// value to validate as argument and returned the normalized value or an error
// if validation failed.
type FieldValidator interface {
	Validate(value interface{}) (interface{}, error)
}

// FieldValidatorFunc is an adapter to allow the use of ordinary functions as
// field validators. If f is a function with the appropriate signature,
// FieldValidatorFunc(f) is a FieldValidator that calls f.
type FieldValidatorFunc func(value interface{}) (interface{}, error)

// Validate calls f(value).
func (f FieldValidatorFunc) Validate(value interface{}) (interface{}, error) {
	return f(value)
}

// Compiler is implemented by validators needing a preparation step (regexp
// compilation, layout defaults...) before being used.
type Compiler interface {
	Compile() error
}
