package rest

import (
	"context"
	"fmt"
	"net/http"

	"github.com/rs/rest-layer-orm/resource"
)

// listPost handles POST requests on a resource URL.
func listPost(ctx context.Context, s *resource.Service, r *http.Request, route *RouteMatch) (status int, headers http.Header, body interface{}) {
	var payload map[string]interface{}
	if e := decodePayload(r, &payload); e != nil {
		return e.Code, nil, e
	}
	record, err := s.Persist(ctx, route.Model, payload)
	if err != nil {
		return errorResponse(err)
	}
	// See https://www.subbu.org/blog/2008/10/location-vs-content-location
	headers = http.Header{}
	headers.Set("Content-Location", fmt.Sprintf("%s/%v", r.URL.Path, record.ID()))
	return http.StatusCreated, headers, record
}
