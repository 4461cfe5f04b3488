package rest_test

import (
	"net/http"
	"testing"

	"github.com/rs/rest-layer-orm/resource"
)

func TestHandlerOptions(t *testing.T) {
	tests := map[string]requestTest{
		"list": {
			Init:           initEmpty(),
			NewRequest:     newRequest("OPTIONS", "/users", ""),
			ResponseCode:   http.StatusOK,
			ResponseHeader: http.Header{"Allow": []string{"DELETE, GET, HEAD, POST"}},
		},
		"item": {
			Init:         initEmpty(),
			NewRequest:   newRequest("OPTIONS", "/users/1", ""),
			ResponseCode: http.StatusOK,
			ResponseHeader: http.Header{
				"Allow":       []string{"DELETE, GET, HEAD, PATCH, PUT"},
				"Allow-Patch": []string{"application/merge-patch+json"},
			},
		},
		"sub": {
			Init:           initEmpty(),
			NewRequest:     newRequest("OPTIONS", "/users/1/Tasks", ""),
			ResponseCode:   http.StatusOK,
			ResponseHeader: http.Header{"Allow": []string{"GET, HEAD, POST, DELETE"}},
		},
		"readOnly": {
			Init:           initEmpty(withConf([]resource.Mode{resource.Read, resource.List})),
			NewRequest:     newRequest("OPTIONS", "/users/1", ""),
			ResponseCode:   http.StatusOK,
			ResponseHeader: http.Header{"Allow": []string{"GET, HEAD"}},
		},
		"unsupportedMethod": {
			Init:         initEmpty(),
			NewRequest:   newRequest("TRACE", "/users", ""),
			ResponseCode: http.StatusMethodNotAllowed,
			ResponseBody: `{"code": 405, "message": "Invalid Method"}`,
		},
	}
	for n, tc := range tests {
		t.Run(n, tc.Test)
	}
}
