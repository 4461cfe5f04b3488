package rest

import (
	"context"
	"net/http"
	"strings"

	"github.com/rs/rest-layer-orm/resource"
)

// processRequest calls the method handler matching the given route and
// returns either a Record, a RecordList, a list of records, nil or an Error.
func processRequest(ctx context.Context, s *resource.Service, r *http.Request, route *RouteMatch) (status int, headers http.Header, body interface{}) {
	conf := s.Conf()
	deny := func() (int, http.Header, interface{}) {
		return ErrInvalidMethod.Code, nil, ErrInvalidMethod
	}
	switch {
	case route.Sub != nil:
		switch route.Method {
		case http.MethodOptions:
			return http.StatusOK, allowHeader(
				allow(conf.IsModeAllowed(resource.Read), "GET", "HEAD"),
				allow(conf.IsModeAllowed(resource.Update), "POST", "DELETE"),
			), nil
		case http.MethodHead, http.MethodGet:
			if !conf.IsModeAllowed(resource.Read) {
				return deny()
			}
			return subGet(ctx, s, route)
		case http.MethodPost:
			if !conf.IsModeAllowed(resource.Update) {
				return deny()
			}
			return subPost(ctx, s, r, route)
		case http.MethodDelete:
			if !conf.IsModeAllowed(resource.Update) {
				return deny()
			}
			return subDelete(ctx, s, route)
		}
	case route.ID != "":
		switch route.Method {
		case http.MethodOptions:
			headers = allowHeader(
				allow(conf.IsModeAllowed(resource.Delete), "DELETE"),
				allow(conf.IsModeAllowed(resource.Read), "GET", "HEAD"),
				allow(conf.IsModeAllowed(resource.Update), "PATCH"),
				allow(conf.IsModeAllowed(resource.Replace), "PUT"),
			)
			if conf.IsModeAllowed(resource.Update) {
				// See http://tools.ietf.org/html/rfc5789#section-3
				headers.Set("Allow-Patch", "application/merge-patch+json")
			}
			return http.StatusOK, headers, nil
		case http.MethodHead, http.MethodGet:
			if !conf.IsModeAllowed(resource.Read) {
				return deny()
			}
			return itemGet(ctx, s, route)
		case http.MethodPut:
			if !conf.IsModeAllowed(resource.Replace) {
				return deny()
			}
			return itemPut(ctx, s, r, route)
		case http.MethodPatch:
			if !conf.IsModeAllowed(resource.Update) {
				return deny()
			}
			return itemPatch(ctx, s, r, route)
		case http.MethodDelete:
			if !conf.IsModeAllowed(resource.Delete) {
				return deny()
			}
			return itemDelete(ctx, s, route)
		}
	default:
		switch route.Method {
		case http.MethodOptions:
			return http.StatusOK, allowHeader(
				allow(conf.IsModeAllowed(resource.Clear), "DELETE"),
				allow(conf.IsModeAllowed(resource.List), "GET", "HEAD"),
				allow(conf.IsModeAllowed(resource.Create), "POST"),
			), nil
		case http.MethodHead, http.MethodGet:
			if !conf.IsModeAllowed(resource.List) {
				return deny()
			}
			return listGet(ctx, s, route)
		case http.MethodPost:
			if !conf.IsModeAllowed(resource.Create) {
				return deny()
			}
			return listPost(ctx, s, r, route)
		case http.MethodDelete:
			if !conf.IsModeAllowed(resource.Clear) {
				return deny()
			}
			return listDelete(ctx, s, route)
		}
	}
	return deny()
}

func allow(allowed bool, methods ...string) []string {
	if !allowed {
		return nil
	}
	return methods
}

// allowHeader builds an Allow header from the allowed method groups.
func allowHeader(groups ...[]string) http.Header {
	headers := http.Header{}
	var methods []string
	for _, g := range groups {
		methods = append(methods, g...)
	}
	if len(methods) > 0 {
		headers.Set("Allow", strings.Join(methods, ", "))
	}
	return headers
}

// errorResponse returns the response tuple of err.
func errorResponse(err error) (int, http.Header, interface{}) {
	e := NewError(err)
	return e.Code, nil, e
}
