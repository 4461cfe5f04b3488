package schema

import "errors"

// Bool validates Boolean based values.
type Bool struct {
}

// Validate validates and normalize Boolean based value. Integers 0 and 1 are
// accepted as some SQL backends store booleans as integers.
func (v Bool) Validate(value interface{}) (interface{}, error) {
	switch b := value.(type) {
	case bool:
		return b, nil
	case int64:
		if b == 0 || b == 1 {
			return b == 1, nil
		}
	}
	return nil, errors.New("not a Boolean")
}
