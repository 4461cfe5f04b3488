package rest

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/rest-layer-orm/resource"
)

// Handler is a net/http compatible handler used to serve the record types of
// a resource.Service as a REST API.
type Handler struct {
	// ResponseFormatter can be changed to extend the DefaultResponseFormatter.
	ResponseFormatter ResponseFormatter
	// ResponseSender can be changed to extend the DefaultResponseSender.
	ResponseSender ResponseSender
	// RequestTimeout is the default timeout for requests after which the whole
	// request is abandoned. The default value is no timeout.
	RequestTimeout time.Duration
	service        *resource.Service
}

// NewHandler creates a new REST API HTTP handler serving s.
func NewHandler(s *resource.Service) (*Handler, error) {
	if s == nil {
		return nil, fmt.Errorf("missing service")
	}
	return &Handler{
		ResponseFormatter: DefaultResponseFormatter{},
		ResponseSender:    DefaultResponseSender{},
		service:           s,
	}, nil
}

// getTimeout get request timeout info from request or server config
func (h *Handler) getTimeout(r *http.Request) (time.Duration, error) {
	// If timeout is passed as argument, use it's value over default timeout.
	if t := r.URL.Query().Get("timeout"); t != "" {
		return time.ParseDuration(t)
	}
	return h.RequestTimeout, nil
}

// getContext creates a context with timeout if timeout is specified in the
// request or server configuration. The context is canceled as soon as the
// client connection is closed.
func (h *Handler) getContext(r *http.Request) (context.Context, context.CancelFunc, *Error) {
	timeout, err := h.getTimeout(r)
	if err != nil {
		return nil, nil, &Error{422, fmt.Sprintf("Cannot parse timeout parameter: %s", err), nil}
	}
	if timeout > 0 {
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		return ctx, cancel, nil
	}
	ctx, cancel := context.WithCancel(r.Context())
	return ctx, cancel, nil
}

// ServeHTTP handles requests as a http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	// Skip body if method is HEAD
	skipBody := r.Method == http.MethodHead
	ctx, cancel, e := h.getContext(r)
	if e != nil {
		h.sendError(r.Context(), w, e, skipBody)
		return
	}
	defer cancel()
	route, e := FindRoute(h.service.Index(), r)
	if e != nil {
		h.sendError(ctx, w, e, skipBody)
		return
	}
	status, headers, res := processRequest(ctx, h.service, r, route)
	if headers == nil {
		headers = http.Header{}
	}
	var body interface{}
	switch res := res.(type) {
	case *resource.Record:
		ctx, body = h.ResponseFormatter.FormatRecord(ctx, headers, res, skipBody)
	case *resource.RecordList:
		ctx, body = h.ResponseFormatter.FormatList(ctx, headers, res, skipBody)
	case error:
		ctx, body = h.ResponseFormatter.FormatError(ctx, headers, res, skipBody)
	default:
		body = res
	}
	h.ResponseSender.Send(ctx, w, status, headers, body)
}

func (h *Handler) sendError(ctx context.Context, w http.ResponseWriter, e *Error, skipBody bool) {
	headers := http.Header{}
	ctx, body := h.ResponseFormatter.FormatError(ctx, headers, e, skipBody)
	h.ResponseSender.Send(ctx, w, e.Code, headers, body)
}
