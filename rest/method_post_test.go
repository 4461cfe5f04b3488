package rest_test

import (
	"net/http"
	"testing"

	"github.com/rs/rest-layer-orm/resource"
	"github.com/stretchr/testify/assert"
)

func TestHandlerPostList(t *testing.T) {
	tests := map[string]requestTest{
		"root": {
			Init:           initEmpty(),
			NewRequest:     newRequest("POST", "/users", `{"name": "Foo Bar", "email": "foo@bar.com"}`),
			ResponseCode:   http.StatusCreated,
			ResponseHeader: http.Header{"Content-Location": []string{"/users/1"}},
			ResponseBody:   `{"id": 1, "name": "Foo Bar", "email": "foo@bar.com", "Tasks": []}`,
		},
		"withRelations": {
			Init:         initEmpty(),
			NewRequest:   newRequest("POST", "/users", `{"name": "New Foo", "Tasks": [{"name": "Task"}]}`),
			ResponseCode: http.StatusCreated,
			ResponseBody: `{"id": 1, "name": "New Foo", "Tasks": [{"id": 1, "name": "Task", "done": false, "user_id": 1}]}`,
			ExtraTest: func(t *testing.T, vars *requestTestVars) {
				assert.Equal(t, 1, vars.Store.Len(vars.Model("Task")))
			},
		},
		"attachToOne": {
			Init:         initSeeded(),
			NewRequest:   newRequest("POST", "/tasks", `{"name": "New Task", "User": {"id": 2}}`),
			ResponseCode: http.StatusCreated,
			ResponseBody: `{"id": 2, "name": "New Task", "done": false, "user_id": 2, "User": {"id": 2, "name": "b"}}`,
		},
		"missingReference": {
			Init:         initSeeded(),
			NewRequest:   newRequest("POST", "/users", `{"name": "New User", "Tasks": [{"id": 999}]}`),
			ResponseCode: http.StatusNotFound,
			ResponseBody: `{"code": 404, "message": "Task not found: 999"}`,
			ExtraTest: func(t *testing.T, vars *requestTestVars) {
				assert.Equal(t, 2, vars.Store.Len(vars.Model("User")))
			},
		},
		"emptyPayload": {
			Init:         initEmpty(),
			NewRequest:   newRequest("POST", "/users", `{}`),
			ResponseCode: http.StatusBadRequest,
			ResponseBody: `{"code": 400, "message": "empty payload"}`,
		},
		"invalidField": {
			Init:         initEmpty(),
			NewRequest:   newRequest("POST", "/users", `{"name": 1}`),
			ResponseCode: http.StatusBadRequest,
			ResponseBody: `{"code": 400, "message": "Document contains error(s)", "issues": {"name": ["not a string"]}}`,
		},
		"missingRequired": {
			Init:         initEmpty(),
			NewRequest:   newRequest("POST", "/users", `{"email": "x@example.com"}`),
			ResponseCode: http.StatusBadRequest,
			ResponseBody: `{"code": 400, "message": "Document contains error(s)", "issues": {"name": ["required"]}}`,
		},
		"malformedBody": {
			Init:         initEmpty(),
			NewRequest:   newRequest("POST", "/users", `{`),
			ResponseCode: http.StatusBadRequest,
			ResponseBody: `{"code": 400, "message": "Malformed body: unexpected end of JSON input"}`,
		},
		"invalidContentType": {
			Init: initEmpty(),
			NewRequest: func() (*http.Request, error) {
				r, err := newRequest("POST", "/users", `{"name": "a"}`)()
				if err == nil {
					r.Header.Set("Content-Type", "text/plain")
				}
				return r, err
			},
			ResponseCode: http.StatusNotImplemented,
			ResponseBody: "{\"code\": 501, \"message\": \"Invalid Content-Type header: `text/plain' not supported\"}",
		},
		"readOnly": {
			Init:         initEmpty(withConf([]resource.Mode{resource.Read, resource.List})),
			NewRequest:   newRequest("POST", "/users", `{"name": "a"}`),
			ResponseCode: http.StatusMethodNotAllowed,
			ResponseBody: `{"code": 405, "message": "Invalid Method"}`,
		},
	}
	for n, tc := range tests {
		t.Run(n, tc.Test)
	}
}
