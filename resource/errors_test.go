package resource

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorKinds(t *testing.T) {
	for _, tc := range []struct {
		err    *Error
		match  error
		status int
	}{
		{badRequestf("bad"), ErrBadRequest, http.StatusBadRequest},
		{notFoundf("missing"), ErrNotFound, http.StatusNotFound},
		{&Error{Kind: KindConflict}, ErrConflict, http.StatusConflict},
		{typeErrorf("type"), ErrType, http.StatusBadRequest},
		{&Error{Kind: KindDatabase}, ErrDatabase, http.StatusInternalServerError},
		{&Error{Kind: KindNoStorage}, ErrNoStorage, http.StatusNotImplemented},
		{&Error{Kind: KindType, Code: 500}, ErrType, http.StatusInternalServerError},
	} {
		wrapped := fmt.Errorf("persist: %w", tc.err)
		assert.True(t, errors.Is(wrapped, tc.match), tc.err.Kind.String())
		assert.Equal(t, tc.err.Kind, KindOf(wrapped))
		assert.Equal(t, tc.status, tc.err.StatusCode())
	}
	assert.False(t, errors.Is(notFoundf("missing"), ErrBadRequest))
	assert.Equal(t, KindUnknown, KindOf(errors.New("plain")))
}

func TestErrorMessage(t *testing.T) {
	cause := errors.New("cause")
	assert.Equal(t, "msg", (&Error{Message: "msg"}).Error())
	assert.Equal(t, "msg: cause", (&Error{Message: "msg", Err: cause}).Error())
	assert.Equal(t, "cause", (&Error{Err: cause}).Error())
	assert.True(t, errors.Is(&Error{Kind: KindConflict, Err: cause}, cause))
}
