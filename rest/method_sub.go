package rest

import (
	"context"
	"net/http"
	"strconv"

	"github.com/rs/rest-layer-orm/resource"
)

// subGet handles GET and HEAD requests on a sub-resource URL
// (/{type}/{id}/{association}).
func subGet(ctx context.Context, s *resource.Service, route *RouteMatch) (status int, headers http.Header, body interface{}) {
	id, e := route.ItemID()
	if e != nil {
		return e.Code, nil, e
	}
	q, e := route.Query(route.Sub.TargetModel(), 0)
	if e != nil {
		return e.Code, nil, e
	}
	records, err := s.FindSubResources(ctx, route.Model, id, route.Sub.Name, q)
	if err != nil {
		return errorResponse(err)
	}
	return http.StatusOK, nil, &resource.RecordList{Total: len(records), Records: records}
}

// subPost handles POST requests on a sub-resource URL. The body is an object
// or a list of objects or ids.
func subPost(ctx context.Context, s *resource.Service, r *http.Request, route *RouteMatch) (status int, headers http.Header, body interface{}) {
	id, e := route.ItemID()
	if e != nil {
		return e.Code, nil, e
	}
	var payload interface{}
	if e := decodePayload(r, &payload); e != nil {
		return e.Code, nil, e
	}
	records, err := s.CreateSubResources(ctx, route.Model, id, route.Sub.Name, payload)
	if err != nil {
		return errorResponse(err)
	}
	return http.StatusCreated, nil, &resource.RecordList{Total: len(records), Records: records}
}

// subDelete handles DELETE requests on a sub-resource URL.
func subDelete(ctx context.Context, s *resource.Service, route *RouteMatch) (status int, headers http.Header, body interface{}) {
	id, e := route.ItemID()
	if e != nil {
		return e.Code, nil, e
	}
	q, e := route.Query(route.Sub.TargetModel(), 0)
	if e != nil {
		return e.Code, nil, e
	}
	total, err := s.DeleteSubResources(ctx, route.Model, id, route.Sub.Name, q)
	if err != nil {
		return errorResponse(err)
	}
	headers = http.Header{}
	headers.Set("X-Total", strconv.Itoa(total))
	return http.StatusNoContent, headers, nil
}
