package resource

import "github.com/rs/rest-layer-orm/schema"

// Populate returns a copy of q with one include per association declared by
// t appended to its includes. Nested associations are not followed and
// existing includes are kept as is. q is not modified.
func (s *Service) Populate(t schema.Type, q *Query) (*Query, error) {
	m, err := s.resolve(t)
	if err != nil {
		return nil, err
	}
	return populate(m, q), nil
}

func populate(m *schema.Model, q *Query) *Query {
	c := q.Clone()
	for _, a := range m.Associations {
		c.Include = append(c.Include, Include{Model: a.TargetModel(), As: a.Name})
	}
	return c
}
