package http

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/aussiebroadwan/tasks/internal/tasks/service"
	"github.com/aussiebroadwan/tasks/internal/tasks/session"
	"github.com/aussiebroadwan/tasks/internal/tasks/session/drivers/memory"
	"github.com/aussiebroadwan/tasks/internal/tasks/store/drivers/sqlite"
	"github.com/aussiebroadwan/tasks/pkg/cryptox"
	"github.com/aussiebroadwan/tasks/pkg/jwtx"
	"github.com/aussiebroadwan/tasks/pkg/metricsx"
	"github.com/aussiebroadwan/tasks/pkg/tasksdk"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	*httptest.Server
	client *tasksdk.Client
	signer *jwtx.HMACSigner
}

func newTestServer(t *testing.T, sessions session.Cache) *testServer {
	t.Helper()

	st, err := sqlite.NewStore(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = st.Close() })
	require.NoError(t, st.ApplyMigrations())

	if sessions == nil {
		sessions = memory.New()
	}

	signer, verifier, err := jwtx.NewHMAC([]byte("router-test-secret"), "tasks-test")
	require.NoError(t, err)

	metrics := metricsx.New("tasks")
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	router := NewRouter("test", st, sessions, metrics, logger)
	router.AuthService = &service.AuthService{
		Store:    st,
		Sessions: sessions,
		Hasher:   cryptox.NewBcryptHasher(4),
		Signer:   signer,
		Verifier: verifier,
		Metrics:  metrics,
	}
	router.TaskService = &service.TaskService{Store: st, Metrics: metrics}
	router.ApplyRoutes()

	srv := httptest.NewServer(router)
	t.Cleanup(srv.Close)

	return &testServer{Server: srv, client: tasksdk.NewClient(srv.URL), signer: signer}
}

func (s *testServer) do(t *testing.T, method, path, token, body string) *http.Response {
	t.Helper()
	req, err := http.NewRequest(method, s.URL+path, strings.NewReader(body))
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := s.Client().Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestAliceAndBob(t *testing.T) {
	srv := newTestServer(t, nil)
	ctx := context.Background()

	alice, err := srv.client.Register(ctx, "alice", "pw1")
	require.NoError(t, err)
	require.Equal(t, "alice", alice.Username)

	aliceSession, err := srv.client.Login(ctx, "alice", "pw1")
	require.NoError(t, err)

	task, err := aliceSession.CreateTask(ctx, tasksdk.TaskRequest{Title: "t1"})
	require.NoError(t, err)
	require.Equal(t, &tasksdk.Task{ID: 1, Title: "t1", Status: tasksdk.StatusInProgress}, task)

	got, err := aliceSession.GetTask(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, task, got)

	_, err = srv.client.Register(ctx, "bob", "pw2")
	require.NoError(t, err)
	bobSession, err := srv.client.Login(ctx, "bob", "pw2")
	require.NoError(t, err)

	_, err = bobSession.GetTask(ctx, 1)
	require.ErrorIs(t, err, tasksdk.ErrForbidden)

	_, err = bobSession.GetTask(ctx, 42)
	require.ErrorIs(t, err, tasksdk.ErrTaskNotFound)

	bobTasks, err := bobSession.ListTasks(ctx, "")
	require.NoError(t, err)
	require.Empty(t, bobTasks)
}

func TestAuthErrors(t *testing.T) {
	srv := newTestServer(t, nil)
	ctx := context.Background()

	_, err := srv.client.Register(ctx, "alice", "pw1")
	require.NoError(t, err)

	resp := srv.do(t, http.MethodPost, "/auth/register", "", `{"username":"alice","password":"x"}`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	require.Equal(t, "Username already registered", decodeBody(t, resp)["detail"])

	resp = srv.do(t, http.MethodPost, "/auth/login", "", `{"username":"alice","password":"wrong"}`)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "Invalid credentials", decodeBody(t, resp)["detail"])

	resp = srv.do(t, http.MethodPost, "/auth/refresh", "", `{"refresh_token":"nope"}`)
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
	require.Equal(t, "Invalid token", decodeBody(t, resp)["detail"])

	resp = srv.do(t, http.MethodPost, "/auth/logout", "", "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = srv.do(t, http.MethodPost, "/auth/login", "", `not json`)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestLogoutThenRefresh(t *testing.T) {
	srv := newTestServer(t, nil)
	ctx := context.Background()

	_, err := srv.client.Register(ctx, "alice", "pw1")
	require.NoError(t, err)
	s, err := srv.client.Login(ctx, "alice", "pw1")
	require.NoError(t, err)

	pair, err := srv.client.Refresh(ctx, s.RefreshToken())
	require.NoError(t, err)
	require.Equal(t, s.RefreshToken(), pair.RefreshToken)

	resp := srv.do(t, http.MethodGet, "/tasks/", s.RefreshToken(), "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp = srv.do(t, http.MethodPost, "/auth/logout", s.AccessToken(), "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Successfully logged out", decodeBody(t, resp)["msg"])

	_, err = srv.client.Refresh(ctx, s.RefreshToken())
	require.ErrorIs(t, err, tasksdk.ErrInvalidToken)
}

func TestExpiredAccessTokenRejected(t *testing.T) {
	srv := newTestServer(t, nil)

	expired, err := srv.signer.Sign(jwtx.NewClaims("alice", "tasks-test", -time.Minute, time.Now()))
	require.NoError(t, err)

	resp := srv.do(t, http.MethodGet, "/tasks/", expired, "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	require.Equal(t, "Bearer", resp.Header.Get("WWW-Authenticate"))
	require.Equal(t, "Invalid token", decodeBody(t, resp)["detail"])

	resp = srv.do(t, http.MethodGet, "/tasks/", "", "")
	require.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestTaskEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)
	ctx := context.Background()

	_, err := srv.client.Register(ctx, "alice", "pw1")
	require.NoError(t, err)
	s, err := srv.client.Login(ctx, "alice", "pw1")
	require.NoError(t, err)
	tok := s.AccessToken()

	desc := "details"
	created, err := s.CreateTask(ctx, tasksdk.TaskRequest{Title: "a", Description: &desc, Status: tasksdk.StatusDone})
	require.NoError(t, err)
	require.Equal(t, "details", *created.Description)
	_, err = s.CreateTask(ctx, tasksdk.TaskRequest{Title: "b"})
	require.NoError(t, err)

	done, err := s.ListTasks(ctx, tasksdk.StatusDone)
	require.NoError(t, err)
	require.Len(t, done, 1)
	require.Equal(t, created.ID, done[0].ID)

	t.Run("invalid status filter", func(t *testing.T) {
		resp := srv.do(t, http.MethodGet, "/tasks/?status=finished", tok, "")
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("invalid body status", func(t *testing.T) {
		resp := srv.do(t, http.MethodPost, "/tasks/", tok, `{"title":"x","status":"finished"}`)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "Invalid status", decodeBody(t, resp)["detail"])
	})

	t.Run("missing title", func(t *testing.T) {
		resp := srv.do(t, http.MethodPost, "/tasks/", tok, `{"description":"x"}`)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "Title is required", decodeBody(t, resp)["detail"])
	})

	t.Run("blank title on update", func(t *testing.T) {
		resp := srv.do(t, http.MethodPut, "/tasks/"+strconv.FormatInt(created.ID, 10), tok, `{"title":"   "}`)
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "Title is required", decodeBody(t, resp)["detail"])
	})

	t.Run("non numeric id", func(t *testing.T) {
		resp := srv.do(t, http.MethodGet, "/tasks/abc", tok, "")
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("null description in json", func(t *testing.T) {
		resp := srv.do(t, http.MethodGet, "/tasks/2", tok, "")
		require.Equal(t, http.StatusOK, resp.StatusCode)
		body := decodeBody(t, resp)
		require.Contains(t, body, "description")
		require.Nil(t, body["description"])
		require.NotContains(t, body, "user_id")
	})

	updated, err := s.UpdateTask(ctx, created.ID, tasksdk.TaskRequest{Title: "renamed"})
	require.NoError(t, err)
	require.Equal(t, "renamed", updated.Title)
	require.Equal(t, tasksdk.StatusInProgress, updated.Status)
	require.Nil(t, updated.Description)

	resp := srv.do(t, http.MethodDelete, "/tasks/1", tok, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	require.Equal(t, "Task deleted successfully", decodeBody(t, resp)["data"])

	require.ErrorIs(t, s.DeleteTask(ctx, created.ID), tasksdk.ErrTaskNotFound)
}

type downCache struct{ session.Cache }

func (downCache) Ping(context.Context) error { return errors.New("connection refused") }

func TestHealthEndpoints(t *testing.T) {
	srv := newTestServer(t, nil)
	ctx := context.Background()

	live, err := srv.client.GetLiveness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", live.Status)
	require.Equal(t, "test", live.Version)

	ready, err := srv.client.GetReadiness(ctx)
	require.NoError(t, err)
	require.Equal(t, "ok", ready.Checks.Database)
	require.Equal(t, "ok", ready.Checks.Cache)

	resp := srv.do(t, http.MethodGet, "/metrics", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.Contains(t, string(raw), "tasks_http_requests_total")
}

func TestReadyzReportsCacheOutage(t *testing.T) {
	srv := newTestServer(t, downCache{Cache: memory.New()})

	resp := srv.do(t, http.MethodGet, "/readyz", "", "")
	require.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var health tasksdk.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	require.Equal(t, "degraded", health.Status)
	require.Equal(t, "ok", health.Checks.Database)
	require.Equal(t, "error: connection refused", health.Checks.Cache)
}

func TestRequestIDEchoed(t *testing.T) {
	srv := newTestServer(t, nil)

	resp := srv.do(t, http.MethodGet, "/livez", "", "")
	require.NotEmpty(t, resp.Header.Get("X-Request-ID"))
}
