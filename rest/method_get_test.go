package rest_test

import (
	"net/http"
	"testing"
)

func TestHandlerGetList(t *testing.T) {
	tests := map[string]requestTest{
		"pathNotFound": {
			Init:         initEmpty(),
			NewRequest:   newRequest("GET", "/projects", ""),
			ResponseCode: http.StatusNotFound,
			ResponseBody: `{"code": 404, "message": "Resource Not Found"}`,
		},
		"empty": {
			Init:           initEmpty(),
			NewRequest:     newRequest("GET", "/users", ""),
			ResponseCode:   http.StatusOK,
			ResponseHeader: http.Header{"X-Total": []string{"0"}},
			ResponseBody:   `[]`,
		},
		"all": {
			Init:           initSeeded(),
			NewRequest:     newRequest("GET", "/users", ""),
			ResponseCode:   http.StatusOK,
			ResponseHeader: http.Header{"X-Total": []string{"2"}},
			ResponseBody: `[
				{"id": 1, "name": "a", "email": "a@example.com"},
				{"id": 2, "name": "b"}
			]`,
		},
		"byTypeName": {
			Init:         initSeeded(),
			NewRequest:   newRequest("GET", "/User?sort=-name", ""),
			ResponseCode: http.StatusOK,
			ResponseBody: `[
				{"id": 2, "name": "b"},
				{"id": 1, "name": "a", "email": "a@example.com"}
			]`,
		},
		"where": {
			Init:         initSeeded(),
			NewRequest:   newRequest("GET", withQuery("/users", map[string]string{"where": `{"name": "b"}`}), ""),
			ResponseCode: http.StatusOK,
			ResponseBody: `[{"id": 2, "name": "b"}]`,
		},
		"whereList": {
			Init:         initSeeded(),
			NewRequest:   newRequest("GET", withQuery("/users", map[string]string{"where": `{"id": [2, 3]}`}), ""),
			ResponseCode: http.StatusOK,
			ResponseBody: `[{"id": 2, "name": "b"}]`,
		},
		"include": {
			Init:         initSeeded(),
			NewRequest:   newRequest("GET", "/users?include=Tasks", ""),
			ResponseCode: http.StatusOK,
			ResponseBody: `[
				{"id": 1, "name": "a", "email": "a@example.com", "Tasks": [{"id": 1, "name": "t1", "done": false, "user_id": 1}]},
				{"id": 2, "name": "b", "Tasks": []}
			]`,
		},
		"includeAll": {
			Init:         initSeeded(),
			NewRequest:   newRequest("GET", "/tasks?include=*", ""),
			ResponseCode: http.StatusOK,
			ResponseBody: `[
				{"id": 1, "name": "t1", "done": false, "user_id": 1, "User": {"id": 1, "name": "a", "email": "a@example.com"}}
			]`,
		},
		"paginated": {
			Init:         initSeeded(),
			NewRequest:   newRequest("GET", "/users?limit=1&offset=1", ""),
			ResponseCode: http.StatusOK,
			ResponseHeader: http.Header{
				"X-Total":  []string{"2"},
				"X-Offset": []string{"1"},
			},
			ResponseBody: `[{"id": 2, "name": "b"}]`,
		},
		"head": {
			Init:           initSeeded(),
			NewRequest:     newRequest("HEAD", "/users", ""),
			ResponseCode:   http.StatusOK,
			ResponseHeader: http.Header{"X-Total": []string{"2"}},
		},
		"invalidSort": {
			Init:         initSeeded(),
			NewRequest:   newRequest("GET", "/users?sort=age", ""),
			ResponseCode: http.StatusBadRequest,
			ResponseBody: "{\"code\": 400, \"message\": \"invalid sort: unknown field `age'\"}",
		},
		"invalidWhere": {
			Init:         initSeeded(),
			NewRequest:   newRequest("GET", withQuery("/users", map[string]string{"where": `{"id": "x"}`}), ""),
			ResponseCode: http.StatusBadRequest,
			ResponseBody: `{"code": 400, "message": "invalid query: id: not an integer"}`,
		},
		"invalidLimit": {
			Init:         initSeeded(),
			NewRequest:   newRequest("GET", "/users?limit=-1", ""),
			ResponseCode: 422,
			ResponseBody: "{\"code\": 422, \"message\": \"Invalid `limit` parameter\"}",
		},
		"invalidInclude": {
			Init:         initSeeded(),
			NewRequest:   newRequest("GET", "/users?include=Projects", ""),
			ResponseCode: 422,
			ResponseBody: "{\"code\": 422, \"message\": \"Invalid `include` parameter: unknown association `Projects'\"}",
		},
		"invalidTimeout": {
			Init:         initSeeded(),
			NewRequest:   newRequest("GET", "/users?timeout=soon", ""),
			ResponseCode: 422,
			ResponseBody: `{"code": 422, "message": "Cannot parse timeout parameter: time: invalid duration \"soon\""}`,
		},
		"notAllowed": {
			Init:         initSeeded(withConf(nil)),
			NewRequest:   newRequest("GET", "/users", ""),
			ResponseCode: http.StatusMethodNotAllowed,
			ResponseBody: `{"code": 405, "message": "Invalid Method"}`,
		},
	}
	for n, tc := range tests {
		t.Run(n, tc.Test)
	}
}

func TestHandlerGetItem(t *testing.T) {
	tests := map[string]requestTest{
		"found": {
			Init:         initSeeded(),
			NewRequest:   newRequest("GET", "/users/1", ""),
			ResponseCode: http.StatusOK,
			ResponseBody: `{"id": 1, "name": "a", "email": "a@example.com"}`,
		},
		"include": {
			Init:         initSeeded(),
			NewRequest:   newRequest("GET", "/tasks/1?include=User", ""),
			ResponseCode: http.StatusOK,
			ResponseBody: `{"id": 1, "name": "t1", "done": false, "user_id": 1, "User": {"id": 1, "name": "a", "email": "a@example.com"}}`,
		},
		"notFound": {
			Init:         initSeeded(),
			NewRequest:   newRequest("GET", "/users/9", ""),
			ResponseCode: http.StatusNotFound,
			ResponseBody: `{"code": 404, "message": "User not found"}`,
		},
		"invalidID": {
			Init:         initSeeded(),
			NewRequest:   newRequest("GET", "/users/abc", ""),
			ResponseCode: http.StatusBadRequest,
			ResponseBody: `{"code": 400, "message": "User: invalid id abc: not an integer"}`,
		},
		"head": {
			Init:         initSeeded(),
			NewRequest:   newRequest("HEAD", "/users/1", ""),
			ResponseCode: http.StatusOK,
		},
		"tooDeep": {
			Init:         initSeeded(),
			NewRequest:   newRequest("GET", "/users/1/Tasks/1", ""),
			ResponseCode: http.StatusNotFound,
			ResponseBody: `{"code": 404, "message": "Not Found"}`,
		},
	}
	for n, tc := range tests {
		t.Run(n, tc.Test)
	}
}
