package auth

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/lwei/stockmon/internal/api"
	"github.com/lwei/stockmon/internal/model"
)

// Session tracks the logged-in user on top of a TokenStore and the API
// client. It mirrors the backend's session model: holding a valid bearer
// token is the only thing that makes a user "logged in".
type Session struct {
	client *api.Client
	tokens TokenStore
	logger *slog.Logger

	mu   sync.RWMutex
	user *model.User
}

// NewSession creates a session manager. logger may be nil.
func NewSession(client *api.Client, tokens TokenStore, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.Default()
	}
	return &Session{
		client: client,
		tokens: tokens,
		logger: logger,
	}
}

// Login authenticates with the backend, stores the returned token and loads
// the account profile.
func (s *Session) Login(ctx context.Context, username, password string) (*model.User, error) {
	resp, err := s.client.Login(ctx, username, password)
	if err != nil {
		return nil, err
	}
	if resp.AccessToken == "" {
		return nil, fmt.Errorf("login response contained no access token")
	}
	if err := s.tokens.SetToken(resp.AccessToken); err != nil {
		return nil, fmt.Errorf("store token: %w", err)
	}

	user, err := s.fetchUser(ctx)
	if err != nil {
		return nil, err
	}

	s.logger.Info("logged in", "username", user.Username, "user_id", user.ID)
	return user, nil
}

// Register creates a new account. It does not log the account in.
func (s *Session) Register(ctx context.Context, username, password, email string) (*model.User, error) {
	return s.client.Register(ctx, username, password, email)
}

// CheckAuth verifies that a stored token is still accepted by the backend.
// It returns false when no token is stored or the token is rejected; a
// rejected token is cleared.
func (s *Session) CheckAuth(ctx context.Context) bool {
	if !s.tokens.HasToken() {
		return false
	}
	if _, err := s.fetchUser(ctx); err != nil {
		s.logger.Warn("stored credential rejected", "err", err)
		s.Logout()
		return false
	}
	return true
}

// CurrentUser returns the cached account profile, or nil before login.
func (s *Session) CurrentUser() *model.User {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.user
}

// IsAuthenticated reports whether a credential is present.
func (s *Session) IsAuthenticated() bool {
	return s.tokens.HasToken()
}

// Logout drops the cached profile and clears the stored credential.
func (s *Session) Logout() {
	s.mu.Lock()
	s.user = nil
	s.mu.Unlock()

	if err := s.tokens.Clear(); err != nil {
		s.logger.Warn("failed to clear credential", "err", err)
	}
}

func (s *Session) fetchUser(ctx context.Context) (*model.User, error) {
	user, err := s.client.Me(ctx)
	if err != nil {
		return nil, err
	}
	s.mu.Lock()
	s.user = user
	s.mu.Unlock()
	return user, nil
}
