package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rs/rest-layer-orm/resource"
	"github.com/rs/rest-layer-orm/rest"
)

func TestDefaultResponseFormatterList(t *testing.T) {
	f := rest.DefaultResponseFormatter{}
	m := newIndex(t).Models()[0]
	l := &resource.RecordList{
		Total:   3,
		Offset:  2,
		Records: []*resource.Record{resource.LoadRecord(m, map[string]interface{}{"id": 1, "name": "a"})},
	}
	headers := http.Header{}
	_, body := f.FormatList(context.Background(), headers, l, false)
	assert.Equal(t, "3", headers.Get("X-Total"))
	assert.Equal(t, "2", headers.Get("X-Offset"))
	assert.Equal(t, []map[string]interface{}{{"id": 1, "name": "a"}}, body)

	headers = http.Header{}
	_, body = f.FormatList(context.Background(), headers, &resource.RecordList{Total: -1}, true)
	assert.Nil(t, body)
	assert.Empty(t, headers.Get("X-Total"))
}

func TestDefaultResponseFormatterError(t *testing.T) {
	var buf bytes.Buffer
	ctx := zerolog.New(&buf).WithContext(context.Background())
	f := rest.DefaultResponseFormatter{}

	_, body := f.FormatError(ctx, http.Header{}, errors.New("boom"), false)
	assert.Equal(t, map[string]interface{}{"code": 520, "message": "boom"}, body)
	assert.Contains(t, buf.String(), `"message":"Server error"`)

	buf.Reset()
	_, body = f.FormatError(ctx, http.Header{}, rest.ErrNotFound, true)
	assert.Nil(t, body)
	assert.Empty(t, buf.String())
}

func TestResponseRequestID(t *testing.T) {
	vars := initEmpty()(t)
	h, err := rest.NewHandler(vars.Service)
	require.NoError(t, err)
	handler := hlog.RequestIDHandler("req_id", "Request-Id")(h)

	w := httptest.NewRecorder()
	handler.ServeHTTP(w, httptest.NewRequest("GET", "/users/1", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, w.Header().Get("Request-Id"), body["request_id"])
	assert.NotEmpty(t, body["request_id"])
}

type unmarshalable struct{}

func (unmarshalable) MarshalJSON() ([]byte, error) {
	return nil, errors.New("nope")
}

func TestDefaultResponseSenderMarshalError(t *testing.T) {
	w := httptest.NewRecorder()
	rest.DefaultResponseSender{}.Send(context.Background(), w, http.StatusOK, http.Header{"X-Foo": {"bar"}}, unmarshalable{})
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.Equal(t, "bar", w.Header().Get("X-Foo"))
	assert.Contains(t, w.Body.String(), `"code": 500`)
}
