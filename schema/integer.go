package schema

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Integer validates integer based values. Valid values are normalized to
// int64.
type Integer struct {
	Allowed    []int64
	Boundaries *Boundaries
}

// Boundaries defines min/max for an integer.
type Boundaries struct {
	Min float64
	Max float64
}

// Validate validates and normalize integer based value.
func (v Integer) Validate(value interface{}) (interface{}, error) {
	i, err := toInt64(value)
	if err != nil {
		return nil, err
	}
	if v.Boundaries != nil {
		if float64(i) < v.Boundaries.Min {
			return nil, fmt.Errorf("is lower than %.0f", v.Boundaries.Min)
		}
		if float64(i) > v.Boundaries.Max {
			return nil, fmt.Errorf("is greater than %.0f", v.Boundaries.Max)
		}
	}
	if len(v.Allowed) > 0 {
		found := false
		for _, allowed := range v.Allowed {
			if i == allowed {
				found = true
				break
			}
		}
		if !found {
			return nil, errors.New("not one of the allowed values")
		}
	}
	return i, nil
}

// Parse converts a textual representation (i.e.: an id taken from a URL
// path) into a valid integer.
func (v Integer) Parse(s string) (interface{}, error) {
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil, errors.New("not an integer")
	}
	return v.Validate(i)
}

func toInt64(value interface{}) (int64, error) {
	switch val := value.(type) {
	case int:
		return int64(val), nil
	case int8:
		return int64(val), nil
	case int16:
		return int64(val), nil
	case int32:
		return int64(val), nil
	case int64:
		return val, nil
	case uint:
		return int64(val), nil
	case uint8:
		return int64(val), nil
	case uint16:
		return int64(val), nil
	case uint32:
		return int64(val), nil
	case uint64:
		if val > math.MaxInt64 {
			return 0, errors.New("out of range")
		}
		return int64(val), nil
	case float32:
		return floatToInt64(float64(val))
	case float64:
		return floatToInt64(val)
	case json.Number:
		i, err := val.Int64()
		if err != nil {
			return 0, errors.New("not an integer")
		}
		return i, nil
	}
	return 0, errors.New("not an integer")
}

// floatToInt64 accepts floats carrying an integral value as decoded JSON
// numbers are float64.
func floatToInt64(f float64) (int64, error) {
	if f != math.Trunc(f) || f > math.MaxInt64 || f < math.MinInt64 {
		return 0, errors.New("not an integer")
	}
	return int64(f), nil
}
