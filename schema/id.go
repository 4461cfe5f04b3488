package schema

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rs/xid"
)

var (
	// NewID is a field hook handler that generates a new globally unique id if
	// none exist, to be used in schema with OnInit.
	NewID = func(ctx context.Context, value interface{}) interface{} {
		if value == nil {
			value = xid.New().String()
		}
		return value
	}

	// NewUUID is a field hook handler generating a random (v4) UUID if none
	// exist, to be used with OnInit.
	NewUUID = func(ctx context.Context, value interface{}) interface{} {
		if value == nil {
			value = uuid.NewString()
		}
		return value
	}

	// IDField is a common field configuration that generates a globally
	// unique id for new records.
	IDField = Field{
		Description: "The record's id",
		ReadOnly:    true,
		OnInit:      NewID,
		Validator: &String{
			// This regexp matches a base32 id
			Regexp: "^[0-9a-v]{20}$",
		},
	}

	// UUIDField is a common field configuration generating a UUID for new
	// records.
	UUIDField = Field{
		Description: "The record's id",
		ReadOnly:    true,
		OnInit:      NewUUID,
		Validator:   &UUID{},
	}

	// SerialField is the default primary key: an integer assigned by the
	// store on insert.
	SerialField = Field{
		Description: "The record's id",
		ReadOnly:    true,
		Validator:   &Integer{},
	}
)

// UUID validates UUID values and normalizes them to their canonical string
// form.
type UUID struct{}

// Validate implements FieldValidator.
func (v UUID) Validate(value interface{}) (interface{}, error) {
	switch val := value.(type) {
	case uuid.UUID:
		return val.String(), nil
	case [16]byte:
		return uuid.UUID(val).String(), nil
	case []byte:
		if len(val) == 16 {
			u, err := uuid.FromBytes(val)
			if err != nil {
				return nil, errors.New("not a UUID")
			}
			return u.String(), nil
		}
		value = string(val)
	}
	s, ok := value.(string)
	if !ok {
		return nil, errors.New("not a UUID")
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return nil, errors.New("not a UUID")
	}
	return u.String(), nil
}
