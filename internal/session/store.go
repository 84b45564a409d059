// Package session owns the shopper's bearer token. The in-memory value is the
// one every request reads; the backend keeps it across restarts.
package session

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
)

// TokenKey is the single key the token is persisted under.
const TokenKey = "token"

var ErrStoreClosed = errors.New("session store closed")

// Backend persists the token. Load returns "" when nothing is stored and
// Delete of a missing key is not an error.
type Backend interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Delete(ctx context.Context) error
	Close() error
}

type Store struct {
	mu      sync.RWMutex
	token   string
	backend Backend
	closed  bool
}

// Open builds a Store whose initial token is whatever the backend holds.
// The backend is read only here.
func Open(ctx context.Context, backend Backend) (*Store, error) {
	token, err := backend.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load session token: %w", err)
	}
	return &Store{token: strings.TrimSpace(token), backend: backend}, nil
}

func (s *Store) Token() (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token, s.token != ""
}

// SetToken persists token and then makes it current. A blank token clears
// both. When persistence fails the current token is left as it was.
func (s *Store) SetToken(ctx context.Context, token string) error {
	token = strings.TrimSpace(token)

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrStoreClosed
	}

	if token == "" {
		if err := s.backend.Delete(ctx); err != nil {
			return fmt.Errorf("delete session token: %w", err)
		}
	} else if err := s.backend.Save(ctx, token); err != nil {
		return fmt.Errorf("save session token: %w", err)
	}

	s.token = token
	return nil
}

// Clear is SetToken with an empty token.
func (s *Store) Clear(ctx context.Context) error {
	return s.SetToken(ctx, "")
}

func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.backend.Close()
}
