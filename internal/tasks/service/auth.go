package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aussiebroadwan/tasks/internal/tasks/domain"
	"github.com/aussiebroadwan/tasks/internal/tasks/session"
	"github.com/aussiebroadwan/tasks/internal/tasks/store"
	"github.com/aussiebroadwan/tasks/pkg/cryptox"
	"github.com/aussiebroadwan/tasks/pkg/jwtx"
	"github.com/aussiebroadwan/tasks/pkg/metricsx"
	"github.com/aussiebroadwan/tasks/pkg/slogx"
)

var (
	ErrUsernameTaken      = errors.New("username_taken")
	ErrInvalidCredentials = errors.New("invalid_credentials")
	ErrInvalidToken       = errors.New("invalid_token")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrInvalidRequest     = errors.New("invalid_request")
)

type AuthService struct {
	Store    store.Store
	Sessions session.Cache
	Hasher   *cryptox.BcryptHasher
	Signer   jwtx.Signer
	Verifier jwtx.Verifier
	Metrics  *metricsx.Metrics

	AccessTTL  time.Duration
	RefreshTTL time.Duration
	// SessionTTL is how long the cached refresh token outlives issuance.
	// It is longer than RefreshTTL, so the signed expiry is what ends a
	// session in practice.
	SessionTTL time.Duration
}

// Register creates a user. No tokens are issued.
func (s *AuthService) Register(ctx context.Context, username, password string) (domain.User, error) {
	l := slogx.FromContext(ctx)

	if strings.TrimSpace(username) == "" || password == "" {
		return domain.User{}, fmt.Errorf("%w: username and password are required", ErrInvalidRequest)
	}

	_, err := s.Store.Users().GetUserByUsername(ctx, username)
	switch {
	case err == nil:
		s.Metrics.AuthEvent(metricsx.EventRegister, false)
		return domain.User{}, ErrUsernameTaken
	case !errors.Is(err, store.ErrNotFound):
		return domain.User{}, err
	}

	hash, err := s.Hasher.Hash(password)
	if err != nil {
		if errors.Is(err, cryptox.ErrPasswordTooLong) {
			return domain.User{}, fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		return domain.User{}, err
	}

	// The pre-check above races with concurrent registrations; the unique
	// index settles it.
	user, err := s.Store.Users().CreateUser(ctx, username, hash)
	if err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			s.Metrics.AuthEvent(metricsx.EventRegister, false)
			return domain.User{}, ErrUsernameTaken
		}
		return domain.User{}, err
	}

	s.Metrics.AuthEvent(metricsx.EventRegister, true)
	l.Info("user registered", slog.Int64("user_id", user.ID), slog.String("username", user.Username))
	return user, nil
}

// Login checks credentials and issues a fresh token pair. The refresh token
// replaces whatever the user had cached before.
func (s *AuthService) Login(ctx context.Context, username, password string) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	user, err := s.Store.Users().GetUserByUsername(ctx, username)
	found := err == nil
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return domain.TokenPair{}, err
	}

	// Always run one bcrypt comparison so an unknown username costs the same
	// as a wrong password.
	hash := user.PasswordHash
	if !found {
		hash = s.Hasher.DummyHash()
	}
	if err := s.Hasher.Verify(password, hash); err != nil || !found {
		s.Metrics.AuthEvent(metricsx.EventLogin, false)
		l.Info("login failed", slog.String("username", username))
		return domain.TokenPair{}, ErrInvalidCredentials
	}

	pair, err := s.issuePair(user.Username)
	if err != nil {
		return domain.TokenPair{}, err
	}

	if err := s.Sessions.Set(ctx, session.RefreshKey(user.Username), pair.RefreshToken, s.sessionTTL()); err != nil {
		return domain.TokenPair{}, fmt.Errorf("store refresh token: %w", err)
	}

	s.Metrics.AuthEvent(metricsx.EventLogin, true)
	l.Info("login succeeded", slog.String("username", user.Username))
	return pair, nil
}

// Refresh mints a new access token for the subject of a valid refresh token.
//
// The presented token is not compared with the cached one: any unexpired
// refresh token for the user works while some session is cached. The returned
// refresh token is the cached value so the client matches the cache.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (domain.TokenPair, error) {
	l := slogx.FromContext(ctx)

	claims, err := jwtx.VerifyType(s.Verifier, refreshToken, jwtx.TypeRefresh)
	if err != nil {
		s.Metrics.AuthEvent(metricsx.EventRefresh, false)
		l.Info("refresh token rejected", slog.String("reason", err.Error()))
		return domain.TokenPair{}, ErrInvalidToken
	}
	username := claims.Subject

	cached, err := s.Sessions.Get(ctx, session.RefreshKey(username))
	if err != nil {
		if errors.Is(err, session.ErrMiss) {
			s.Metrics.AuthEvent(metricsx.EventRefresh, false)
			l.Info("refresh without session", slog.String("username", username))
			return domain.TokenPair{}, ErrInvalidToken
		}
		return domain.TokenPair{}, fmt.Errorf("load refresh token: %w", err)
	}

	access, err := s.Signer.Issue(username, jwtx.TypeAccess, s.accessTTL())
	if err != nil {
		return domain.TokenPair{}, err
	}

	s.Metrics.AuthEvent(metricsx.EventRefresh, true)
	l.Info("access token refreshed", slog.String("username", username))
	return domain.TokenPair{AccessToken: access, RefreshToken: cached}, nil
}

// Logout drops the cached refresh token for the access token's subject. It
// succeeds whether or not a session was cached.
func (s *AuthService) Logout(ctx context.Context, accessToken string) error {
	l := slogx.FromContext(ctx)

	claims, err := jwtx.VerifyType(s.Verifier, accessToken, jwtx.TypeAccess)
	if err != nil {
		s.Metrics.AuthEvent(metricsx.EventLogout, false)
		return ErrInvalidToken
	}

	if err := s.Sessions.Delete(ctx, session.RefreshKey(claims.Subject)); err != nil {
		return fmt.Errorf("delete refresh token: %w", err)
	}

	s.Metrics.AuthEvent(metricsx.EventLogout, true)
	l.Info("logged out", slog.String("username", claims.Subject))
	return nil
}

// Authenticate resolves a bearer access token to a username. Refresh tokens
// are refused. Every failure is reported as ErrUnauthorized.
func (s *AuthService) Authenticate(_ context.Context, token string) (string, error) {
	claims, err := jwtx.VerifyType(s.Verifier, token, jwtx.TypeAccess)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnauthorized, err)
	}
	return claims.Subject, nil
}

func (s *AuthService) issuePair(username string) (domain.TokenPair, error) {
	access, err := s.Signer.Issue(username, jwtx.TypeAccess, s.accessTTL())
	if err != nil {
		return domain.TokenPair{}, err
	}
	refresh, err := s.Signer.Issue(username, jwtx.TypeRefresh, s.refreshTTL())
	if err != nil {
		return domain.TokenPair{}, err
	}
	return domain.TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *AuthService) accessTTL() time.Duration {
	if s.AccessTTL > 0 {
		return s.AccessTTL
	}
	return jwtx.DefaultAccessTokenTTL
}

func (s *AuthService) refreshTTL() time.Duration {
	if s.RefreshTTL > 0 {
		return s.RefreshTTL
	}
	return jwtx.DefaultRefreshTokenTTL
}

func (s *AuthService) sessionTTL() time.Duration {
	if s.SessionTTL > 0 {
		return s.SessionTTL
	}
	return session.DefaultTTL
}
