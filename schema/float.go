package schema

import (
	"errors"
	"fmt"
)

// Float validates float based values
type Float struct {
	Allowed []float64
	Min     *float64
	Max     *float64
}

// Validate validates and normalize float based value
func (v Float) Validate(value interface{}) (interface{}, error) {
	var f float64
	switch val := value.(type) {
	case float64:
		f = val
	case float32:
		f = float64(val)
	default:
		i, err := toInt64(value)
		if err != nil {
			return nil, errors.New("not a float")
		}
		f = float64(i)
	}
	if v.Min != nil && f < *v.Min {
		return nil, fmt.Errorf("is lower than %f", *v.Min)
	}
	if v.Max != nil && f > *v.Max {
		return nil, fmt.Errorf("is greater than %f", *v.Max)
	}
	if len(v.Allowed) > 0 {
		found := false
		for _, allowed := range v.Allowed {
			if f == allowed {
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("not one of the allowed values")
		}
	}
	return f, nil
}
