package rest

import (
	"context"
	"net/http"

	"github.com/rs/rest-layer-orm/resource"
)

// itemGet handles GET and HEAD requests on an item URL.
func itemGet(ctx context.Context, s *resource.Service, route *RouteMatch) (status int, headers http.Header, body interface{}) {
	id, e := route.ItemID()
	if e != nil {
		return e.Code, nil, e
	}
	q, e := route.Query(route.Model, 0)
	if e != nil {
		return e.Code, nil, e
	}
	q.Where[route.Model.PrimaryKey] = id
	record, err := s.FindOne(ctx, route.Model, q)
	if err != nil {
		return errorResponse(err)
	}
	return http.StatusOK, nil, record
}
