// Package auth manages the bearer credential and the login session.
package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// TokenStore holds the bearer credential. Implementations must be safe for
// concurrent use: the transport reads the token while the session layer may
// be replacing or clearing it.
type TokenStore interface {
	// Token returns the stored credential, or "" when logged out.
	Token() string

	// SetToken stores a new credential.
	SetToken(token string) error

	// Clear removes the credential.
	Clear() error

	// HasToken reports whether a credential is present.
	HasToken() bool
}

// MemoryStore keeps the token in memory only. Used by tests and short-lived
// tools that log in on every run.
type MemoryStore struct {
	mu    sync.RWMutex
	token string
}

// NewMemoryStore creates an empty in-memory token store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *MemoryStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.token = token
	return nil
}

func (s *MemoryStore) Clear() error {
	return s.SetToken("")
}

func (s *MemoryStore) HasToken() bool {
	return s.Token() != ""
}

// FileStore persists the token to a single file so the session survives
// process restarts. The file is created with 0600 permissions.
type FileStore struct {
	path string

	mu    sync.RWMutex
	token string
}

// NewFileStore creates a token store backed by path, loading any previously
// persisted credential.
func NewFileStore(path string) (*FileStore, error) {
	s := &FileStore{path: path}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read token file: %w", err)
	}
	s.token = strings.TrimSpace(string(data))
	return s, nil
}

func (s *FileStore) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *FileStore) SetToken(token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(token+"\n"), 0600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	s.token = token
	return nil
}

func (s *FileStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token file: %w", err)
	}
	s.token = ""
	return nil
}

func (s *FileStore) HasToken() bool {
	return s.Token() != ""
}
