package rest

import (
	"context"
	"net/http"

	"github.com/rs/rest-layer-orm/resource"
)

// listGet handles GET and HEAD requests on a resource URL.
func listGet(ctx context.Context, s *resource.Service, route *RouteMatch) (status int, headers http.Header, body interface{}) {
	q, e := route.Query(route.Model, s.Conf().PaginationDefaultLimit)
	if e != nil {
		return e.Code, nil, e
	}
	list, err := s.Find(ctx, route.Model, q)
	if err != nil {
		return errorResponse(err)
	}
	return http.StatusOK, nil, list
}
