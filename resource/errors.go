package resource

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorKind classifies errors returned by the Service so callers can map
// them to a transport level response code.
type ErrorKind int

const (
	// KindUnknown is an unclassified error.
	KindUnknown ErrorKind = iota
	// KindBadRequest is returned on malformed payloads or queries.
	KindBadRequest
	// KindNotFound is returned when a record or an association can't be
	// found.
	KindNotFound
	// KindConflict is returned when the store rejected a write because of a
	// constraint (unique, foreign key...).
	KindConflict
	// KindType is returned when no association handler can be resolved or
	// when an argument has the wrong type.
	KindType
	// KindDatabase is returned when rolling back a failed transaction failed
	// too: the store state may be inconsistent.
	KindDatabase
	// KindNoStorage is returned when no storage is set on the Service.
	KindNoStorage
)

func (k ErrorKind) String() string {
	switch k {
	case KindBadRequest:
		return "bad_request"
	case KindNotFound:
		return "not_found"
	case KindConflict:
		return "conflict"
	case KindType:
		return "type_error"
	case KindDatabase:
		return "database_error"
	case KindNoStorage:
		return "no_storage"
	}
	return "unknown"
}

var (
	// ErrBadRequest matches any error of kind KindBadRequest with errors.Is.
	ErrBadRequest = &Error{Kind: KindBadRequest, Message: "Bad Request"}
	// ErrNotFound matches any error of kind KindNotFound with errors.Is.
	ErrNotFound = &Error{Kind: KindNotFound, Message: "Not Found"}
	// ErrConflict matches any error of kind KindConflict with errors.Is.
	ErrConflict = &Error{Kind: KindConflict, Message: "Conflict"}
	// ErrType matches any error of kind KindType with errors.Is.
	ErrType = &Error{Kind: KindType, Message: "Type Error"}
	// ErrDatabase matches any error of kind KindDatabase with errors.Is.
	ErrDatabase = &Error{Kind: KindDatabase, Message: "Database Error"}
	// ErrNoStorage is returned when not storage handler has been set on the
	// Service.
	ErrNoStorage = &Error{Kind: KindNoStorage, Message: "No Storage Defined"}
)

// Error is an error carrying a machine-checkable kind.
type Error struct {
	// Kind classifies the error.
	Kind ErrorKind
	// Code overrides the HTTP status derived from Kind when non zero.
	Code int
	// Message is the error message.
	Message string
	// Issues holds per field errors if any.
	Issues map[string][]interface{}
	// Err is the underlying error if any.
	Err error
	// Rollback is the error returned while rolling back a transaction after
	// Err occurred (KindDatabase only).
	Rollback error
}

// Error implements the error interface.
func (e *Error) Error() string {
	switch {
	case e.Rollback != nil:
		return fmt.Sprintf("%s: %v (rollback: %v)", e.Message, e.Err, e.Rollback)
	case e.Err != nil && e.Message != "":
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	case e.Err != nil:
		return e.Err.Error()
	}
	return e.Message
}

// Unwrap returns the underlying errors.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	if e.Rollback != nil {
		errs = append(errs, e.Rollback)
	}
	return errs
}

// Is reports whether target is an *Error of the same kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// StatusCode returns the HTTP status matching the error.
func (e *Error) StatusCode() int {
	if e.Code != 0 {
		return e.Code
	}
	switch e.Kind {
	case KindBadRequest, KindType:
		return http.StatusBadRequest
	case KindNotFound:
		return http.StatusNotFound
	case KindConflict:
		return http.StatusConflict
	case KindNoStorage:
		return http.StatusNotImplemented
	}
	return http.StatusInternalServerError
}

// KindOf returns the kind of err or KindUnknown.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func badRequestf(format string, a ...interface{}) *Error {
	return &Error{Kind: KindBadRequest, Message: fmt.Sprintf(format, a...)}
}

func notFoundf(format string, a ...interface{}) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf(format, a...)}
}

func typeErrorf(format string, a ...interface{}) *Error {
	return &Error{Kind: KindType, Message: fmt.Sprintf(format, a...)}
}
