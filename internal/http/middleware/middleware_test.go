package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestLoggingMiddlewareSetsRequestID(t *testing.T) {
	var captured string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		captured = RequestIDFromContext(r.Context())
		w.WriteHeader(http.StatusNoContent)
	})

	handler := LoggingMiddleware(nil, nil, next)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/games", nil))

	if captured == "" {
		t.Fatal("expected request ID in context")
	}
	if rec.Header().Get("X-Request-ID") != captured {
		t.Fatal("response header must carry the request ID")
	}
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}
}

func TestLoggingMiddlewareKeepsValidIncomingID(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	handler := LoggingMiddleware(nil, nil, next)

	req := httptest.NewRequest(http.MethodGet, "/games", nil)
	req.Header.Set("X-Request-ID", "client-id-123")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Header().Get("X-Request-ID") != "client-id-123" {
		t.Fatalf("expected incoming ID kept, got %q", rec.Header().Get("X-Request-ID"))
	}
}

func TestLoggingMiddlewareReplacesInvalidIncomingID(t *testing.T) {
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	handler := LoggingMiddleware(nil, nil, next)

	req := httptest.NewRequest(http.MethodGet, "/games", nil)
	req.Header.Set("X-Request-ID", "bad id with spaces")
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	got := rec.Header().Get("X-Request-ID")
	if got == "" || strings.Contains(got, " ") {
		t.Fatalf("expected regenerated ID, got %q", got)
	}
}

func TestLoggingMiddlewareLogsCompletion(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	handler := LoggingMiddleware(logger, nil, next)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/models/BOS/projection", nil))

	out := buf.String()
	if !strings.Contains(out, "request complete") {
		t.Fatalf("expected completion log, got %s", out)
	}
	if !strings.Contains(out, "418") {
		t.Fatalf("expected status in log, got %s", out)
	}
}

func TestNormalizePath(t *testing.T) {
	cases := map[string]string{
		"/health":                       "/health",
		"/games":                        "/games",
		"/games/range":                  "/games/range",
		"/games/401584701":              "/games/:id",
		"/teams":                        "/teams",
		"/teams/BOS/averages":           "/teams/:team/averages",
		"/models":                       "/models",
		"/models/BOS":                   "/models/:team",
		"/models/BOS/projection":        "/models/:team/projection",
		"/models/BOS/backtest":          "/models/:team/backtest",
		"/metrics":                      "/metrics",
		"":                              "",
	}
	for in, want := range cases {
		if got := normalizePath(in); got != want {
			t.Errorf("normalizePath(%q) = %q, want %q", in, got, want)
		}
	}
}
