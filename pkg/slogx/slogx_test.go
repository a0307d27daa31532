package slogx_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aussiebroadwan/tasks/pkg/idx"
	"github.com/aussiebroadwan/tasks/pkg/slogx"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	require.Equal(t, slog.LevelDebug, slogx.ParseLevel("DEBUG"))
	require.Equal(t, slog.LevelWarn, slogx.ParseLevel("warning"))
	require.Equal(t, slog.LevelError, slogx.ParseLevel("error"))
	require.Equal(t, slog.LevelInfo, slogx.ParseLevel("whatever"))
}

func TestNewWritesServiceFields(t *testing.T) {
	var buf bytes.Buffer
	logger := slogx.New(slogx.Config{Service: "tasks-api", Version: "v0", Env: "test", Format: "json", Writer: &buf})
	logger.Info("hello")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	require.Equal(t, "tasks-api", entry["service"])
	require.Equal(t, "hello", entry["msg"])
}

func TestHTTPMiddlewareRequestID(t *testing.T) {
	var buf bytes.Buffer
	base := slog.New(slog.NewJSONHandler(&buf, nil))

	var fromCtx *slog.Logger
	h := slogx.HTTPMiddleware(base)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fromCtx = slogx.FromContext(r.Context())
		w.WriteHeader(http.StatusTeapot)
	}))

	t.Run("generates id when missing", func(t *testing.T) {
		buf.Reset()
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/livez", nil))

		_, err := idx.Parse(rec.Header().Get(slogx.RequestIDHeader))
		require.NoError(t, err)
		require.NotNil(t, fromCtx)
		require.Contains(t, buf.String(), `"status":418`)
	})

	t.Run("keeps valid client id", func(t *testing.T) {
		id := idx.New().String()
		req := httptest.NewRequest(http.MethodGet, "/livez", nil)
		req.Header.Set(slogx.RequestIDHeader, id)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.Equal(t, id, rec.Header().Get(slogx.RequestIDHeader))
	})

	t.Run("replaces junk client id", func(t *testing.T) {
		buf.Reset()
		req := httptest.NewRequest(http.MethodGet, "/livez", nil)
		req.Header.Set(slogx.RequestIDHeader, "evil\nline")
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		require.NotEqual(t, "evil\nline", rec.Header().Get(slogx.RequestIDHeader))
		require.False(t, strings.Contains(buf.String(), "evil"))
	})
}
