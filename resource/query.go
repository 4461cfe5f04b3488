package resource

import "github.com/rs/rest-layer-orm/schema"

// Query selects records of a record type.
type Query struct {
	// Where holds equality constraints by attribute name. A []interface{}
	// value matches any of its elements and a nil value matches null.
	Where map[string]interface{}
	// Sort is a list of attribute names. To invert the sort, a minus (-) can
	// be prefixed.
	Sort []string
	// Offset is the number of records to skip.
	Offset int
	// Limit is the max number of records returned. Zero or a negative value
	// means no limit.
	Limit int
	// Include lists the associations to eagerly load.
	Include []Include
}

// Include requests the eager loading of an association.
type Include struct {
	// Model is the target record type of the association.
	Model *schema.Model
	// As is the name of the association on the queried type.
	As string
}

// NewQuery returns a query with the given where constraints.
func NewQuery(where map[string]interface{}) *Query {
	return &Query{Where: where}
}

// Clone returns a deep copy of q. Cloning a nil query returns an empty one.
func (q *Query) Clone() *Query {
	c := &Query{Where: map[string]interface{}{}}
	if q == nil {
		return c
	}
	for k, v := range q.Where {
		if l, ok := v.([]interface{}); ok {
			v = append([]interface{}(nil), l...)
		}
		c.Where[k] = v
	}
	c.Sort = append([]string(nil), q.Sort...)
	c.Offset = q.Offset
	c.Limit = q.Limit
	c.Include = append([]Include(nil), q.Include...)
	return c
}

// restrict narrows the query to records whose field matches one of values.
// An existing constraint on field is intersected with values.
func (q *Query) restrict(field string, values ...interface{}) *Query {
	c := q.Clone()
	existing, found := c.Where[field]
	if found {
		var allowed []interface{}
		if l, ok := existing.([]interface{}); ok {
			allowed = l
		} else {
			allowed = []interface{}{existing}
		}
		kept := []interface{}{}
		for _, v := range values {
			for _, a := range allowed {
				if Equal(v, a) {
					kept = append(kept, v)
					break
				}
			}
		}
		values = kept
	}
	if len(values) == 1 {
		c.Where[field] = values[0]
	} else {
		c.Where[field] = values
	}
	return c
}

// byIDs returns a query selecting the records of m with the given keys.
func byIDs(m *schema.Model, ids ...interface{}) *Query {
	q := &Query{Where: map[string]interface{}{}}
	if len(ids) == 1 {
		q.Where[m.PrimaryKey] = ids[0]
	} else {
		q.Where[m.PrimaryKey] = ids
	}
	return q
}
