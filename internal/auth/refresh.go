package auth

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
)

// RefreshTokenTTL is the lifetime of a refresh token.
const RefreshTokenTTL = 7 * 24 * time.Hour

var ErrRefreshTokenNotFound = errors.New("refresh token not found")

// TokenStore keeps refresh tokens and the user they belong to.
type TokenStore interface {
	Save(ctx context.Context, token string, userID uuid.UUID, ttl time.Duration) error
	Lookup(ctx context.Context, token string) (uuid.UUID, error)
	Revoke(ctx context.Context, token string) error
}

// NewRefreshToken returns an opaque random token.
func NewRefreshToken() string {
	return uuid.NewString() + uuid.NewString()
}

type refreshEntry struct {
	userID    uuid.UUID
	expiresAt time.Time
}

// MemoryTokenStore is a process-local TokenStore.
type MemoryTokenStore struct {
	mu     sync.Mutex
	tokens map[string]refreshEntry
}

func NewMemoryTokenStore() *MemoryTokenStore {
	return &MemoryTokenStore{tokens: map[string]refreshEntry{}}
}

func (s *MemoryTokenStore) Save(_ context.Context, token string, userID uuid.UUID, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tokens[token] = refreshEntry{userID: userID, expiresAt: time.Now().Add(ttl)}
	return nil
}

func (s *MemoryTokenStore) Lookup(_ context.Context, token string) (uuid.UUID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.tokens[token]
	if !ok {
		return uuid.Nil, ErrRefreshTokenNotFound
	}
	if time.Now().After(entry.expiresAt) {
		delete(s.tokens, token)
		return uuid.Nil, ErrRefreshTokenNotFound
	}
	return entry.userID, nil
}

func (s *MemoryTokenStore) Revoke(_ context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.tokens, token)
	return nil
}
