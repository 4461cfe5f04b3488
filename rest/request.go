package rest

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/rs/rest-layer-orm/resource"
	"github.com/rs/rest-layer-orm/schema"
)

// readBody reads the JSON body of the request after checking its content
// type. Merge patches are accepted when allowPatch is true.
func readBody(r *http.Request, allowPatch bool) ([]byte, *Error) {
	// Check content-type, if not specified, assume it's JSON and fail later
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt := strings.TrimSpace(strings.SplitN(ct, ";", 2)[0])
		if mt != "application/json" && !(allowPatch && mt == "application/merge-patch+json") {
			return nil, &Error{501, fmt.Sprintf("Invalid Content-Type header: `%s' not supported", ct), nil}
		}
	}
	defer r.Body.Close()
	b, err := io.ReadAll(r.Body)
	if err != nil {
		return nil, &Error{400, fmt.Sprintf("Cannot read body: %s", err.Error()), nil}
	}
	return b, nil
}

// decodePayload decodes the JSON payload of the request into v.
func decodePayload(r *http.Request, v interface{}) *Error {
	b, e := readBody(r, false)
	if e != nil {
		return e
	}
	if err := json.Unmarshal(b, v); err != nil {
		return &Error{400, fmt.Sprintf("Malformed body: %s", err.Error()), nil}
	}
	return nil
}

// Query builds the query defined by the where, sort, limit, offset and
// include query-string parameters for the record type m. The include
// parameter is a comma separated list of association names; `*` includes
// every association.
func (r *RouteMatch) Query(m *schema.Model, defaultLimit int) (*resource.Query, *Error) {
	q := &resource.Query{Where: map[string]interface{}{}, Limit: defaultLimit}
	if where := r.Params.Get("where"); where != "" {
		d := json.NewDecoder(strings.NewReader(where))
		d.UseNumber()
		if err := d.Decode(&q.Where); err != nil {
			return nil, &Error{422, fmt.Sprintf("Invalid `where` parameter: %s", err), nil}
		}
		for k, v := range q.Where {
			q.Where[k] = fromJSON(v)
		}
	}
	if sort := r.Params.Get("sort"); sort != "" {
		q.Sort = strings.Split(sort, ",")
	}
	if v := r.Params.Get("limit"); v != "" {
		i, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return nil, &Error{422, "Invalid `limit` parameter", nil}
		}
		q.Limit = int(i)
	}
	if v := r.Params.Get("offset"); v != "" {
		i, err := strconv.ParseUint(v, 10, 32)
		if err != nil {
			return nil, &Error{422, "Invalid `offset` parameter", nil}
		}
		q.Offset = int(i)
	}
	if include := r.Params.Get("include"); include != "" {
		for _, name := range strings.Split(include, ",") {
			if name == "*" {
				for _, a := range m.Associations {
					q.Include = append(q.Include, resource.Include{Model: a.TargetModel(), As: a.Name})
				}
				continue
			}
			a := m.Association(name)
			if a == nil {
				return nil, &Error{422, fmt.Sprintf("Invalid `include` parameter: unknown association `%s'", name), nil}
			}
			q.Include = append(q.Include, resource.Include{Model: a.TargetModel(), As: a.Name})
		}
	}
	return q, nil
}

// fromJSON converts json.Number values to int64 or float64.
func fromJSON(v interface{}) interface{} {
	switch val := v.(type) {
	case json.Number:
		if i, err := val.Int64(); err == nil {
			return i
		}
		f, _ := val.Float64()
		return f
	case []interface{}:
		for i := range val {
			val[i] = fromJSON(val[i])
		}
	}
	return v
}
