package auth

import (
	"context"
	"sync"
	"time"

	"github.com/ledgerkit-io/qbo-client/internal/constants"
)

// Token holds one OAuth2 bearer credential as issued by the provider.
// ExpiresAt is always derived from the server-reported TTL; the only
// client-side value ever stored is the far-future placeholder used before a
// real issuance.
type Token struct {
	AccessToken           string    `json:"access_token"`
	RefreshToken          string    `json:"refresh_token,omitempty"`
	TokenType             string    `json:"token_type"`
	ExpiresIn             int64     `json:"expires_in"`
	RefreshTokenExpiresIn int64     `json:"x_refresh_token_expires_in,omitempty"`
	ExpiresAt             time.Time `json:"-"`
}

// Valid reports whether the token can still be sent with a request. Tokens
// within the expiry buffer count as expired so a request does not leave with
// a credential about to lapse mid-flight.
func (t *Token) Valid() bool {
	if t == nil || t.AccessToken == "" {
		return false
	}

	if t.ExpiresAt.IsZero() {
		return true
	}

	return time.Now().Add(constants.TokenExpiryBuffer).Before(t.ExpiresAt)
}

// TokenStore holds the current token behind a read/write lock. Set replaces
// the whole token in one step, so a concurrent reader never observes a new
// access token paired with a stale expiry or refresh token.
type TokenStore struct {
	mu    sync.RWMutex
	token *Token
}

// NewTokenStore creates an empty token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Get returns the current token, or nil if none has been set.
func (s *TokenStore) Get() *Token {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token
}

// Set atomically replaces the stored token.
func (s *TokenStore) Set(token *Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
}

// Clear removes the stored token.
func (s *TokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = nil
}

// TokenManager supplies bearer tokens to the HTTP layer and refreshes them
// on demand. Implementations must be safe for concurrent use; a refresh only
// affects requests built after it completes, requests already in flight keep
// the token they were built with.
type TokenManager interface {
	GetToken(ctx context.Context) (string, error)
	RefreshToken(ctx context.Context) error
	SetToken(token string, expiresAt time.Time)
}
