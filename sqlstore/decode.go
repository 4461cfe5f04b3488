package sqlstore

import (
	"fmt"
	"strconv"
	"time"

	"github.com/rs/rest-layer-orm/schema"
)

// encode converts a record value into a driver argument.
func encode(v interface{}) interface{} {
	switch val := v.(type) {
	case time.Time:
		return val.UTC()
	case uint64:
		return int64(val)
	}
	return v
}

// decodeRow converts the column values read for m into record values.
func decodeRow(m *schema.Model, row map[string]interface{}) (map[string]interface{}, error) {
	values := make(map[string]interface{}, len(row))
	for col, v := range row {
		f, found := m.Fields[col]
		if !found {
			continue
		}
		dv, err := decode(f, v)
		if err != nil {
			return nil, fmt.Errorf("%s.%s: %w", m.Table, col, err)
		}
		values[col] = dv
	}
	return values, nil
}

// decode converts a value read from the database to the type produced by the
// validator of f. Stored values are trusted: no validation is performed.
func decode(f schema.Field, v interface{}) (interface{}, error) {
	if v == nil {
		return nil, nil
	}
	switch f.Validator.(type) {
	case *schema.Integer, schema.Integer:
		return toInt64(v)
	case *schema.Float, schema.Float:
		return toFloat64(v)
	case *schema.Bool, schema.Bool:
		return toBool(v)
	case *schema.Time, schema.Time:
		return toTime(v)
	case *schema.UUID, schema.UUID:
		return schema.UUID{}.Validate(v)
	case *schema.Password, schema.Password:
		if s, ok := v.(string); ok {
			return []byte(s), nil
		}
		return v, nil
	}
	if b, ok := v.([]byte); ok {
		return string(b), nil
	}
	return v, nil
}

func toInt64(v interface{}) (int64, error) {
	switch val := v.(type) {
	case int64:
		return val, nil
	case int32:
		return int64(val), nil
	case int:
		return int64(val), nil
	case uint64:
		return int64(val), nil
	case float64:
		return int64(val), nil
	case bool:
		if val {
			return 1, nil
		}
		return 0, nil
	case []byte:
		return strconv.ParseInt(string(val), 10, 64)
	case string:
		return strconv.ParseInt(val, 10, 64)
	}
	return 0, fmt.Errorf("cannot convert %T to integer", v)
}

func toFloat64(v interface{}) (float64, error) {
	switch val := v.(type) {
	case float64:
		return val, nil
	case float32:
		return float64(val), nil
	case int64:
		return float64(val), nil
	case []byte:
		return strconv.ParseFloat(string(val), 64)
	case string:
		return strconv.ParseFloat(val, 64)
	}
	return 0, fmt.Errorf("cannot convert %T to float", v)
}

func toBool(v interface{}) (bool, error) {
	switch val := v.(type) {
	case bool:
		return val, nil
	case int64:
		return val != 0, nil
	case []byte:
		return strconv.ParseBool(string(val))
	case string:
		return strconv.ParseBool(val)
	}
	return false, fmt.Errorf("cannot convert %T to bool", v)
}

// timeLayouts are the text forms of times returned by drivers not parsing
// them.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05.999999999Z07:00",
	"2006-01-02 15:04:05.999999999",
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

func toTime(v interface{}) (time.Time, error) {
	var s string
	switch val := v.(type) {
	case time.Time:
		return val.UTC(), nil
	case []byte:
		s = string(val)
	case string:
		s = val
	default:
		return time.Time{}, fmt.Errorf("cannot convert %T to time", v)
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse time %q", s)
}
