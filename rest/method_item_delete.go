package rest

import (
	"context"
	"net/http"

	"github.com/rs/rest-layer-orm/resource"
)

// itemDelete handles DELETE requests on an item URL.
func itemDelete(ctx context.Context, s *resource.Service, route *RouteMatch) (status int, headers http.Header, body interface{}) {
	id, e := route.ItemID()
	if e != nil {
		return e.Code, nil, e
	}
	if err := s.Delete(ctx, route.Model, id); err != nil {
		return errorResponse(err)
	}
	return http.StatusNoContent, nil, nil
}
