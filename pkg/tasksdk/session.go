package tasksdk

import (
	"context"
	"errors"
	"net/http"
	"net/url"
	"strconv"
	"sync"
)

// Session is an authenticated client. It is safe for concurrent use.
type Session struct {
	client *Client

	mu           sync.RWMutex
	accessToken  string
	refreshToken string
}

// NewSession wraps an existing token pair.
func (c *Client) NewSession(accessToken, refreshToken string) *Session {
	return &Session{client: c, accessToken: accessToken, refreshToken: refreshToken}
}

// AccessToken returns the current access token.
func (s *Session) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken returns the current refresh token.
func (s *Session) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// Logout drops the server-side session. The Session must not be used
// afterwards.
func (s *Session) Logout(ctx context.Context) error {
	return s.client.do(ctx, http.MethodPost, "/auth/logout", s.AccessToken(), nil, &MessageResponse{})
}

func (s *Session) CreateTask(ctx context.Context, in TaskRequest) (*Task, error) {
	var out Task
	if err := s.do(ctx, http.MethodPost, "/tasks/", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListTasks returns the caller's tasks. An empty status lists all of them.
func (s *Session) ListTasks(ctx context.Context, status string) ([]Task, error) {
	path := "/tasks/"
	if status != "" {
		path += "?" + url.Values{"status": {status}}.Encode()
	}

	var out []Task
	if err := s.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *Session) GetTask(ctx context.Context, id int64) (*Task, error) {
	var out Task
	if err := s.do(ctx, http.MethodGet, taskPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) UpdateTask(ctx context.Context, id int64, in TaskRequest) (*Task, error) {
	var out Task
	if err := s.do(ctx, http.MethodPut, taskPath(id), in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (s *Session) DeleteTask(ctx context.Context, id int64) error {
	return s.do(ctx, http.MethodDelete, taskPath(id), nil, &DataResponse{})
}

func taskPath(id int64) string {
	return "/tasks/" + strconv.FormatInt(id, 10)
}

// do sends an authenticated request. On an invalid token it refreshes the
// access token once and retries.
func (s *Session) do(ctx context.Context, method, path string, in, out any) error {
	token := s.AccessToken()
	err := s.client.do(ctx, method, path, token, in, out)
	if !errors.Is(err, ErrInvalidToken) {
		return err
	}

	if rerr := s.refresh(ctx, token); rerr != nil {
		return err
	}
	return s.client.do(ctx, method, path, s.AccessToken(), in, out)
}

// refresh swaps in a new access token unless another goroutine already
// replaced stale.
func (s *Session) refresh(ctx context.Context, stale string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.accessToken != stale {
		return nil
	}
	if s.refreshToken == "" {
		return errors.New("no refresh token available")
	}

	pair, err := s.client.Refresh(ctx, s.refreshToken)
	if err != nil {
		return err
	}
	s.accessToken = pair.AccessToken
	s.refreshToken = pair.RefreshToken
	return nil
}
