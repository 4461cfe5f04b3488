package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/rest-layer-orm/resource"
)

var (
	// ErrNotFound represents a 404 HTTP error.
	ErrNotFound = &Error{http.StatusNotFound, "Not Found", nil}
	// ErrInvalidMethod happens when the used HTTP method is not supported for
	// this resource.
	ErrInvalidMethod = &Error{http.StatusMethodNotAllowed, "Invalid Method", nil}
	// ErrClientClosedRequest is returned when the client closed the connection
	// before the server was able to finish processing the request.
	ErrClientClosedRequest = &Error{499, "Client Closed Request", nil}
	// ErrNotImplemented happens when a requested feature is not implemented.
	ErrNotImplemented = &Error{http.StatusNotImplemented, "Not Implemented", nil}
	// ErrGatewayTimeout is returned when the specified timeout for the request
	// has been reached before the server was able to process it.
	ErrGatewayTimeout = &Error{http.StatusGatewayTimeout, "Deadline Exceeded", nil}
	// ErrUnknown is thrown when the origin of the error can't be identified.
	ErrUnknown = &Error{520, "Unknown Error", nil}
)

// Error defines a REST error with optional per fields error details.
type Error struct {
	// Code defines the error code to be used for the error and for the HTTP
	// status.
	Code int
	// Message is the error message.
	Message string
	// Issues holds per fields errors if any.
	Issues map[string][]interface{}
}

// NewError returns a rest.Error from an standard error.
//
// Errors returned by the resource package are mapped using their kind.
func NewError(err error) *Error {
	if err == nil {
		return nil
	}
	var e *Error
	if errors.As(err, &e) {
		return e
	}
	switch {
	case errors.Is(err, context.Canceled):
		return ErrClientClosedRequest
	case errors.Is(err, context.DeadlineExceeded):
		return ErrGatewayTimeout
	}
	var re *resource.Error
	if errors.As(err, &re) {
		return &Error{re.StatusCode(), re.Error(), re.Issues}
	}
	return &Error{ErrUnknown.Code, err.Error(), nil}
}

// Error returns the error as string
func (e *Error) Error() string {
	return e.Message
}
