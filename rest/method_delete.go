package rest

import (
	"context"
	"net/http"
	"strconv"

	"github.com/rs/rest-layer-orm/resource"
)

// listDelete handles DELETE requests on a resource URL.
func listDelete(ctx context.Context, s *resource.Service, route *RouteMatch) (status int, headers http.Header, body interface{}) {
	q, e := route.Query(route.Model, 0)
	if e != nil {
		return e.Code, nil, e
	}
	total, err := s.DeleteAll(ctx, route.Model, q)
	if err != nil {
		return errorResponse(err)
	}
	headers = http.Header{}
	headers.Set("X-Total", strconv.Itoa(total))
	return http.StatusNoContent, headers, nil
}
