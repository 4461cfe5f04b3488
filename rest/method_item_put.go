package rest

import (
	"context"
	"net/http"

	"github.com/rs/rest-layer-orm/resource"
)

// itemPut handles PUT requests on an item URL. The given attributes and
// relations are persisted on the existing record.
func itemPut(ctx context.Context, s *resource.Service, r *http.Request, route *RouteMatch) (status int, headers http.Header, body interface{}) {
	id, e := route.ItemID()
	if e != nil {
		return e.Code, nil, e
	}
	var payload map[string]interface{}
	if e := decodePayload(r, &payload); e != nil {
		return e.Code, nil, e
	}
	if payload == nil {
		payload = map[string]interface{}{}
	}
	payload[route.Model.PrimaryKey] = id
	record, err := s.Persist(ctx, route.Model, payload)
	if err != nil {
		return errorResponse(err)
	}
	return http.StatusOK, nil, record
}
