package middleware

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
)

type observation struct {
	method, route string
	status        int
}

type stubObserver struct {
	seen []observation
}

func (s *stubObserver) ObserveRequest(method, route string, status int, _ time.Duration) {
	s.seen = append(s.seen, observation{method, route, status})
}

func TestRequestIDGeneratesAndEchoes(t *testing.T) {
	var fromCtx string
	handler := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = RequestIDFromContext(r.Context())
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	if fromCtx == "" || rec.Header().Get("X-Request-ID") != fromCtx {
		t.Fatalf("expected generated id to be echoed, ctx=%q header=%q", fromCtx, rec.Header().Get("X-Request-ID"))
	}

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if fromCtx != "abc" {
		t.Fatalf("expected inbound id to be kept, got %q", fromCtx)
	}

	for _, unsafe := range []string{"../../etc", "a b", "id/with/slash", strings.Repeat("x", maxRequestIDLen+1)} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("X-Request-ID", unsafe)
		rec = httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		if fromCtx == unsafe || fromCtx == "" {
			t.Fatalf("expected %q to be replaced, got %q", unsafe, fromCtx)
		}
	}
}

func TestLoggerReportsRoutePattern(t *testing.T) {
	var buf bytes.Buffer
	obs := &stubObserver{}

	r := chi.NewRouter()
	r.Use(Logger(zerolog.New(&buf), obs))
	r.Get("/v1/results/{id}", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/v1/results/xyz", nil))

	if len(obs.seen) != 1 || obs.seen[0].route != "/v1/results/{id}" || obs.seen[0].status != http.StatusNotFound {
		t.Fatalf("unexpected observation %+v", obs.seen)
	}
	if !strings.Contains(buf.String(), `"path":"/v1/results/xyz"`) {
		t.Fatalf("expected access log line, got %s", buf.String())
	}
}

func TestCORS(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusOK) })

	cases := []struct {
		name      string
		allowed   []string
		origin    string
		method    string
		preflight bool
		want      string
		status    int
	}{
		{"listed", []string{"https://app.example"}, "https://app.example", http.MethodGet, false, "https://app.example", http.StatusOK},
		{"unlisted", []string{"https://app.example"}, "https://evil.example", http.MethodGet, false, "", http.StatusOK},
		{"wildcard", []string{"*"}, "https://any.example", http.MethodGet, false, "https://any.example", http.StatusOK},
		{"preflight", []string{"*"}, "https://any.example", http.MethodOptions, true, "https://any.example", http.StatusNoContent},
		{"unlisted preflight", []string{"https://app.example"}, "https://evil.example", http.MethodOptions, true, "", http.StatusForbidden},
		{"no origin", []string{"https://app.example"}, "", http.MethodGet, false, "", http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, "/v1/generate", nil)
			if tc.origin != "" {
				req.Header.Set("Origin", tc.origin)
			}
			if tc.preflight {
				req.Header.Set("Access-Control-Request-Method", http.MethodPost)
			}
			rec := httptest.NewRecorder()
			CORS(tc.allowed)(next).ServeHTTP(rec, req)
			if got := rec.Header().Get("Access-Control-Allow-Origin"); got != tc.want {
				t.Fatalf("allow origin = %q, want %q", got, tc.want)
			}
			if rec.Code != tc.status {
				t.Fatalf("status = %d, want %d", rec.Code, tc.status)
			}
			if tc.status == http.StatusNoContent && rec.Header().Get("Access-Control-Allow-Methods") != corsAllowMethods {
				t.Fatalf("preflight methods = %q", rec.Header().Get("Access-Control-Allow-Methods"))
			}
		})
	}
}
