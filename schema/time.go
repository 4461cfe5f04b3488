package schema

import (
	"context"
	"errors"
	"time"
)

var (
	// Now is a field hook handler that returns the current time, to be used in
	// schema with OnInit and OnUpdate.
	Now = func(ctx context.Context, value interface{}) interface{} {
		return time.Now().UTC()
	}
	// CreatedField is a common field configuration for "created" fields. It
	// stores the creation date of the record.
	CreatedField = Field{
		Description: "The time at which the record has been inserted",
		ReadOnly:    true,
		OnInit:      Now,
		Validator:   &Time{},
	}

	// UpdatedField is a common field configuration for "updated" fields. It
	// stores the current date each time the record is modified.
	UpdatedField = Field{
		Description: "The time at which the record has been last updated",
		ReadOnly:    true,
		OnInit:      Now,
		OnUpdate:    Now,
		Validator:   &Time{},
	}

	formats = []string{
		time.RFC3339,
		time.RFC3339Nano,
		"2006-01-02 15:04:05.999999999-07:00",
		"2006-01-02 15:04:05",
		time.RFC1123,
		time.RFC1123Z,
	}
)

// Time validates time based values
type Time struct {
	TimeLayouts []string // TimeLayouts is set of time layouts we want to validate.
	layouts     []string
}

// Compile the time formats.
func (v *Time) Compile() error {
	if len(v.TimeLayouts) == 0 {
		v.layouts = formats
		return nil
	}
	v.layouts = append([]string(nil), v.TimeLayouts...)
	return nil
}

// Validate validates and normalize time based value.
func (v Time) Validate(value interface{}) (interface{}, error) {
	layouts := v.layouts
	if layouts == nil {
		layouts = formats
	}
	if b, ok := value.([]byte); ok {
		value = string(b)
	}
	if s, ok := value.(string); ok {
		for _, layout := range layouts {
			if t, err := time.Parse(layout, s); err == nil {
				value = t
				break
			}
		}
	}
	t, ok := value.(time.Time)
	if !ok {
		return nil, errors.New("not a time")
	}
	return t.UTC(), nil
}
