package rest

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/rs/rest-layer-orm/schema"
)

// RouteMatch represents a REST request's matched resource with the method to
// apply and its parameters.
type RouteMatch struct {
	// Method is the HTTP method used on the resource.
	Method string
	// Model is the record type designated by the first path segment.
	Model *schema.Model
	// ID is the raw record id taken from the second path segment if any.
	ID string
	// Sub is the association designated by the third path segment if any.
	Sub *schema.Association
	// Params is the list of client provided parameters (query-string).
	Params url.Values
}

// FindRoute returns the route matching the request path. Paths are of the
// form /{type}[/{id}[/{sub}]] where type is a record type name or table and
// sub an association name or target type name of that type.
func FindRoute(index *schema.Index, req *http.Request) (*RouteMatch, *Error) {
	path := strings.Trim(req.URL.Path, "/")
	if path == "" {
		return nil, ErrNotFound
	}
	parts := strings.Split(path, "/")
	if len(parts) > 3 {
		return nil, ErrNotFound
	}
	m := lookupModel(index, parts[0])
	if m == nil {
		return nil, &Error{http.StatusNotFound, "Resource Not Found", nil}
	}
	route := &RouteMatch{
		Method: req.Method,
		Model:  m,
		Params: req.URL.Query(),
	}
	if len(parts) > 1 {
		route.ID = parts[1]
	}
	if len(parts) > 2 {
		if route.Sub = m.AssociationTo(parts[2]); route.Sub == nil {
			return nil, &Error{http.StatusNotFound, "Resource Not Found", nil}
		}
	}
	return route, nil
}

func lookupModel(index *schema.Index, name string) *schema.Model {
	if m, found := index.Get(name); found {
		return m
	}
	for _, m := range index.Models() {
		if m.Table == name || strings.EqualFold(m.Name, name) {
			return m
		}
	}
	return nil
}

// ItemID returns the parsed id of the matched record.
func (r *RouteMatch) ItemID() (interface{}, *Error) {
	id, err := r.Model.ParseID(r.ID)
	if err != nil {
		return nil, &Error{http.StatusBadRequest, err.Error(), nil}
	}
	return id, nil
}
