package resource

import (
	"fmt"
	"math"
	"reflect"
	"time"
)

// NormalizeValue converts v to a canonical form so values read from
// different sources (JSON payloads, SQL drivers, Go callers) compare equal:
// integers become int64 (as do integral floats), byte slices become strings
// and times are converted to UTC.
func NormalizeValue(v interface{}) interface{} {
	switch val := v.(type) {
	case int:
		return int64(val)
	case int8:
		return int64(val)
	case int16:
		return int64(val)
	case int32:
		return int64(val)
	case uint:
		return int64(val)
	case uint8:
		return int64(val)
	case uint16:
		return int64(val)
	case uint32:
		return int64(val)
	case uint64:
		if val <= math.MaxInt64 {
			return int64(val)
		}
	case float32:
		return NormalizeValue(float64(val))
	case float64:
		if val == math.Trunc(val) && val >= math.MinInt64 && val <= math.MaxInt64 {
			return int64(val)
		}
	case []byte:
		return string(val)
	case time.Time:
		return val.UTC()
	}
	return v
}

// Equal compares two attribute values after normalization.
func Equal(a, b interface{}) bool {
	a, b = NormalizeValue(a), NormalizeValue(b)
	if ta, ok := a.(time.Time); ok {
		tb, ok := b.(time.Time)
		return ok && ta.Equal(tb)
	}
	if !isComparable(a) || !isComparable(b) {
		return false
	}
	return a == b
}

func isComparable(v interface{}) bool {
	return v == nil || reflect.TypeOf(v).Comparable()
}

// key returns a map key for v.
func key(v interface{}) interface{} {
	v = NormalizeValue(v)
	if !isComparable(v) {
		return fmt.Sprintf("%#v", v)
	}
	return v
}

// isEmpty returns true for payload values carrying no relation data.
func isEmpty(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return val == ""
	case map[string]interface{}:
		return len(val) == 0
	case []interface{}:
		return len(val) == 0
	case []map[string]interface{}:
		return len(val) == 0
	}
	return false
}

// uniqueValues returns values without duplicates, preserving order.
func uniqueValues(values []interface{}) []interface{} {
	seen := make(map[interface{}]struct{}, len(values))
	out := make([]interface{}, 0, len(values))
	for _, v := range values {
		k := key(v)
		if _, found := seen[k]; found {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, v)
	}
	return out
}
