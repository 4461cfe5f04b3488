package rest_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/rs/rest-layer-orm/internal/testutil"
	"github.com/rs/rest-layer-orm/mem"
	"github.com/rs/rest-layer-orm/resource"
	"github.com/rs/rest-layer-orm/rest"
	"github.com/rs/rest-layer-orm/schema"
)

// requestTest is a reusable type for testing HTTP requests against a
// handler. Best used in a map, E.g.:
//
//	tests := map[string]requestTest{...}
//	for n, tc := range tests {
//		t.Run(n, tc.Test)
//	}
type requestTest struct {
	Init           func(t *testing.T) *requestTestVars
	NewRequest     func() (*http.Request, error)
	ResponseCode   int
	ResponseHeader http.Header // Only checks provided headers, not that all headers are equal.
	ResponseBody   string
	ExtraTest      requestCheckerFunc
}

type requestCheckerFunc func(*testing.T, *requestTestVars)

// requestTestVars provides test runtime variables.
type requestTestVars struct {
	Service *resource.Service
	Store   *mem.MemoryHandler
}

// Model returns the record type named name.
func (v *requestTestVars) Model(name string) *schema.Model {
	m, _ := v.Service.Index().Get(name)
	return m
}

// Test runs tt in parallel mode. It can be passed as a second parameter to
// Run(name, f) for the *testing.T type.
func (tt *requestTest) Test(t *testing.T) {
	t.Parallel()
	vars := tt.Init(t)
	h, err := rest.NewHandler(vars.Service)
	if err != nil {
		t.Errorf("rest.NewHandler failed: %s", err)
		return
	}
	r, err := tt.NewRequest()
	if err != nil || r == nil {
		t.Errorf("tt.NewRequest failed: %s", err)
		return
	}
	w := httptest.NewRecorder()

	h.ServeHTTP(w, r)
	if tt.ResponseCode != w.Code {
		t.Errorf("Expected HTTP response code %d, got %d", tt.ResponseCode, w.Code)
	}
	header := w.Header()
	for k, evs := range tt.ResponseHeader {
		if eCnt, aCnt := len(evs), len(header[k]); eCnt != aCnt {
			t.Errorf("expected HTTP Header %q to have %d items, got %d items", k, eCnt, aCnt)
			continue
		}
		for i, ev := range evs {
			if av := header[k][i]; ev != av {
				t.Errorf("Expected HTTP header[%q][%d] to equal %q, got %q", k, i, ev, av)
			}
		}
	}
	b, _ := io.ReadAll(w.Body)
	if len(tt.ResponseBody) > 0 {
		testutil.JSONEq(t, []byte(tt.ResponseBody), b)
	} else if len(b) > 0 {
		t.Errorf("Expected empty response body, got:\n%s", b)
	}

	if tt.ExtraTest != nil {
		tt.ExtraTest(t, vars)
	}
}

func newIndex(t *testing.T) *schema.Index {
	t.Helper()
	index, err := schema.NewIndex(
		&schema.Model{
			Name: "User",
			Fields: schema.Fields{
				"name":  {Required: true, Validator: &schema.String{}},
				"email": {Validator: &schema.String{}},
			},
			Associations: []*schema.Association{
				{Kind: schema.ToMany, Name: "Tasks", Target: schema.Name("Task")},
			},
		},
		&schema.Model{
			Name: "Task",
			Fields: schema.Fields{
				"name": {Required: true, Validator: &schema.String{}},
				"done": {Default: false, Validator: &schema.Bool{}},
			},
			Associations: []*schema.Association{
				{Kind: schema.ToOne, Name: "User", Target: schema.Name("User")},
			},
		},
	)
	if err != nil {
		t.Fatal(err)
	}
	return index
}

// initEmpty returns a service without data.
func initEmpty(opts ...resource.Option) func(t *testing.T) *requestTestVars {
	return func(t *testing.T) *requestTestVars {
		store := mem.NewHandler()
		s, err := resource.NewService(newIndex(t), store, opts...)
		if err != nil {
			t.Fatal(err)
		}
		return &requestTestVars{Service: s, Store: store}
	}
}

// initSeeded returns a service holding the users a (id 1, owning task t1)
// and b (id 2).
func initSeeded(opts ...resource.Option) func(t *testing.T) *requestTestVars {
	return func(t *testing.T) *requestTestVars {
		vars := initEmpty(opts...)(t)
		ctx := context.Background()
		for _, payload := range []map[string]interface{}{
			{"name": "a", "email": "a@example.com", "Tasks": []interface{}{map[string]interface{}{"name": "t1"}}},
			{"name": "b"},
		} {
			if _, err := vars.Service.Persist(ctx, schema.Name("User"), payload); err != nil {
				t.Fatal(err)
			}
		}
		return vars
	}
}

func newRequest(method, target, body string) func() (*http.Request, error) {
	return func() (*http.Request, error) {
		var r io.Reader
		if body != "" {
			r = strings.NewReader(body)
		}
		return http.NewRequest(method, target, r)
	}
}

func withQuery(path string, params map[string]string) string {
	v := url.Values{}
	for k, p := range params {
		v.Set(k, p)
	}
	return path + "?" + v.Encode()
}

func withConf(modes []resource.Mode) resource.Option {
	return resource.WithConf(resource.Conf{AllowedModes: modes, PaginationDefaultLimit: 20})
}
