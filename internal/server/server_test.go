package server

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	binding "github.com/gqlwire/gqlwire/internal/binding"
	reqid "github.com/gqlwire/gqlwire/internal/reqid"
	schema "github.com/gqlwire/gqlwire/internal/schema"
	wiring "github.com/gqlwire/gqlwire/internal/wiring"
)

func newTestHandler(t *testing.T, register func(*wiring.Registry), opts ...Option) *Handler {
	t.Helper()
	sdl := `type Query { hello(name: String): String  tenant: String  page: String }`
	sch, err := schema.BuildFromSDL(sdl)
	if err != nil {
		t.Fatalf("schema: %v", err)
	}
	reg := wiring.NewRegistry()
	if register != nil {
		register(reg)
	}
	w, err := reg.Build(sch)
	if err != nil {
		t.Fatalf("wiring: %v", err)
	}
	h, err := New(w, opts...)
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	return h
}

func postQuery(t *testing.T, h *Handler, body string, mod func(*http.Request)) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest("POST", "/", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if mod != nil {
		mod(req)
	}
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	return w
}

func TestPostQuery(t *testing.T) {
	h := newTestHandler(t, func(reg *wiring.Registry) {
		reg.Field("Query", "hello", func(ctx context.Context, args []any) (any, error) {
			if args[0] == nil {
				return "world", nil
			}
			return args[0], nil
		}, binding.Arg("name", schema.NamedType("String")))
	})

	w := postQuery(t, h, `{"query":"{ hello }"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if got := w.Body.String(); !strings.Contains(got, `"hello":"world"`) {
		t.Fatalf("unexpected body: %s", got)
	}
}

func TestScopeBinding(t *testing.T) {
	h := newTestHandler(t, func(reg *wiring.Registry) {
		reg.Field("Query", "tenant", func(ctx context.Context, args []any) (any, error) {
			return args[0], nil
		}, binding.Header("tenant", binding.WithKey("X-Tenant")))
		reg.Field("Query", "page", func(ctx context.Context, args []any) (any, error) {
			return args[0], nil
		}, binding.Param("page"))
	})

	req := httptest.NewRequest("POST", "/?page=3", bytes.NewBufferString(`{"query":"{ tenant page }"}`))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Tenant", "acme")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	got := w.Body.String()
	if !strings.Contains(got, `"tenant":"acme"`) || !strings.Contains(got, `"page":"3"`) {
		t.Fatalf("scope values not bound: %s", got)
	}
}

func TestGetQuery(t *testing.T) {
	h := newTestHandler(t, func(reg *wiring.Registry) {
		reg.Field("Query", "hello", func(ctx context.Context, args []any) (any, error) {
			return args[0], nil
		}, binding.Arg("name", schema.NamedType("String")))
	})

	params := url.Values{}
	params.Set("query", `query($n: String) { hello(name: $n) }`)
	params.Set("variables", `{"n":"via-get"}`)
	req := httptest.NewRequest("GET", "/?"+params.Encode(), nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if got := w.Body.String(); !strings.Contains(got, "via-get") {
		t.Fatalf("unexpected body: %s", got)
	}
}

func TestBatchedRequests(t *testing.T) {
	h := newTestHandler(t, func(reg *wiring.Registry) {
		reg.Field("Query", "hello", func(ctx context.Context, args []any) (any, error) {
			return "world", nil
		})
	})

	w := postQuery(t, h, `[{"query":"{ hello }"},{"query":"{ hello }"}]`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var arr []json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &arr); err != nil || len(arr) != 2 {
		t.Fatalf("expected batch of 2, got %s", w.Body.String())
	}
}

func TestCORSAndPreflight(t *testing.T) {
	h := newTestHandler(t, func(reg *wiring.Registry) {
		reg.Field("Query", "hello", func(ctx context.Context, args []any) (any, error) {
			return "world", nil
		})
	}, WithCORS("*"))

	// simple request
	w := postQuery(t, h, `{"query":"{ hello }"}`, func(r *http.Request) {
		r.Header.Set("Origin", "http://example.com")
	})
	if w.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing CORS header")
	}

	// preflight
	pre := httptest.NewRequest("OPTIONS", "/", nil)
	pre.Header.Set("Origin", "http://example.com")
	pre.Header.Set("Access-Control-Request-Headers", "X-Test")
	pw := httptest.NewRecorder()
	h.ServeHTTP(pw, pre)
	if pw.Code != http.StatusNoContent {
		t.Fatalf("preflight status %d", pw.Code)
	}
	if pw.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("preflight missing CORS header")
	}
	if pw.Header().Get("Access-Control-Allow-Headers") != "X-Test" {
		t.Fatalf("preflight missing allow headers")
	}
}

func TestMaxBodyBytes(t *testing.T) {
	h := newTestHandler(t, nil, WithMaxBodyBytes(10))

	w := postQuery(t, h, `{"query":"1234567890"}`, nil)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413 got %d", w.Code)
	}
}

func TestRequestID(t *testing.T) {
	var capturedID int64
	h := newTestHandler(t, func(reg *wiring.Registry) {
		reg.Field("Query", "hello", func(ctx context.Context, args []any) (any, error) {
			capturedID, _ = reqid.FromContext(ctx)
			return "world", nil
		})
	})

	w := postQuery(t, h, `{"query":"{ hello }"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if capturedID == 0 {
		t.Fatalf("missing request id in context")
	}
}

func TestErrorPathInResponse(t *testing.T) {
	h := newTestHandler(t, func(reg *wiring.Registry) {
		reg.Field("Query", "hello", func(ctx context.Context, args []any) (any, error) {
			return nil, context.DeadlineExceeded
		})
	})

	w := postQuery(t, h, `{"query":"{ hello }"}`, nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	var res struct {
		Errors []struct {
			Message string `json:"message"`
			Path    []any  `json:"path"`
		} `json:"errors"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if len(res.Errors) != 1 || len(res.Errors[0].Path) != 1 || res.Errors[0].Path[0] != "hello" {
		t.Fatalf("expected error path [hello], got %s", w.Body.String())
	}
}

func TestGraphiQLPage(t *testing.T) {
	h := newTestHandler(t, nil)

	req := httptest.NewRequest("GET", "/", nil)
	req.Header.Set("Accept", "text/html")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Fatalf("content type %q", ct)
	}
	if !strings.Contains(w.Body.String(), "GraphiQL") {
		t.Fatalf("not the IDE page")
	}
}

func TestMethodNotAllowed(t *testing.T) {
	h := newTestHandler(t, nil)

	req := httptest.NewRequest("PUT", "/", nil)
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	if w.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405 got %d", w.Code)
	}
}
