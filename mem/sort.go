package mem

import (
	"time"

	"github.com/rs/rest-layer-orm/resource"
)

// sortableRecords is a record slice implementing sort.Interface.
type sortableRecords struct {
	sort    []string
	records []*resource.Record
}

func (s sortableRecords) Len() int {
	return len(s.records)
}

func (s sortableRecords) Swap(i, j int) {
	s.records[i], s.records[j] = s.records[j], s.records[i]
}

func (s sortableRecords) Less(i, j int) bool {
	for _, exp := range s.sort {
		var field1, field2 interface{}
		if exp[0] == '-' {
			field1 = s.records[j].Get(exp[1:])
			field2 = s.records[i].Get(exp[1:])
		} else {
			field1 = s.records[i].Get(exp)
			field2 = s.records[j].Get(exp)
		}
		if c := compare(field1, field2); c != 0 {
			return c < 0
		}
	}
	return false
}

// compare orders two normalized values. Null sorts first, values of
// different types are considered equal.
func compare(a, b interface{}) int {
	a, b = resource.NormalizeValue(a), resource.NormalizeValue(b)
	switch {
	case a == nil && b == nil:
		return 0
	case a == nil:
		return -1
	case b == nil:
		return 1
	}
	switch t := a.(type) {
	case int64:
		switch u := b.(type) {
		case int64:
			return cmp(t < u, t > u)
		case float64:
			return cmp(float64(t) < u, float64(t) > u)
		}
	case float64:
		switch u := b.(type) {
		case float64:
			return cmp(t < u, t > u)
		case int64:
			return cmp(t < float64(u), t > float64(u))
		}
	case string:
		if u, ok := b.(string); ok {
			return cmp(t < u, t > u)
		}
	case bool:
		if u, ok := b.(bool); ok {
			return cmp(!t && u, t && !u)
		}
	case time.Time:
		if u, ok := b.(time.Time); ok {
			return cmp(t.Before(u), t.After(u))
		}
	}
	return 0
}

func cmp(less, greater bool) int {
	switch {
	case less:
		return -1
	case greater:
		return 1
	}
	return 0
}
