package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"reflect"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/rs/rest-layer-orm/resource"
)

// itemPatch handles PATCH requests on an item URL. The body is a JSON merge
// patch (RFC 7396) applied to the current representation of the record;
// the attributes it changes and the relations it carries are persisted.
func itemPatch(ctx context.Context, s *resource.Service, r *http.Request, route *RouteMatch) (status int, headers http.Header, body interface{}) {
	id, e := route.ItemID()
	if e != nil {
		return e.Code, nil, e
	}
	patch, e := readBody(r, true)
	if e != nil {
		return e.Code, nil, e
	}
	m := route.Model
	original, err := s.FindOne(ctx, m, resource.NewQuery(map[string]interface{}{m.PrimaryKey: id}))
	if err != nil {
		return errorResponse(err)
	}
	doc, err := json.Marshal(original.Payload())
	if err != nil {
		return errorResponse(err)
	}
	merged, err := jsonpatch.MergePatch(doc, patch)
	if err != nil {
		e := &Error{http.StatusUnprocessableEntity, fmt.Sprintf("Invalid merge patch: %s", err), nil}
		return e.Code, nil, e
	}
	var before, after map[string]interface{}
	if err := json.Unmarshal(doc, &before); err != nil {
		return errorResponse(err)
	}
	if err := json.Unmarshal(merged, &after); err != nil {
		return errorResponse(err)
	}
	payload := map[string]interface{}{m.PrimaryKey: id}
	for k, v := range after {
		if k == m.PrimaryKey {
			continue
		}
		if old, found := before[k]; !found || !reflect.DeepEqual(old, v) {
			payload[k] = v
		}
	}
	for k := range before {
		if _, found := after[k]; !found {
			payload[k] = nil
		}
	}
	record, err := s.Persist(ctx, m, payload)
	if err != nil {
		return errorResponse(err)
	}
	return http.StatusOK, nil, record
}
