package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOAuth2TokenManager_GetToken(t *testing.T) {
	t.Run("returns existing valid token", func(t *testing.T) {
		manager := NewOAuth2TokenManager(&OAuth2Config{
			AccessToken: "existing-token",
		})

		token, err := manager.GetToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "existing-token", token)
	})

	t.Run("seeded token carries the far-future placeholder expiry", func(t *testing.T) {
		manager := NewOAuth2TokenManager(&OAuth2Config{
			AccessToken: "existing-token",
		})

		assert.False(t, manager.IsExpired())
		assert.True(t, manager.Expiry().After(time.Now().Add(24*time.Hour)))
	})

	t.Run("refreshes expired token using refresh token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "/oauth2/v1/tokens/bearer", r.URL.Path)
			assert.Equal(t, "POST", r.Method)

			username, password, ok := r.BasicAuth()
			assert.True(t, ok)
			assert.Equal(t, "client-id", username)
			assert.Equal(t, "client-secret", password)

			err := r.ParseForm()
			require.NoError(t, err)
			assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
			assert.Equal(t, "old-refresh-token", r.Form.Get("refresh_token"))

			response := Token{
				AccessToken:           "new-access-token",
				RefreshToken:          "new-refresh-token",
				ExpiresIn:             3600,
				RefreshTokenExpiresIn: 8726400,
				TokenType:             "bearer",
			}
			_ = json.NewEncoder(w).Encode(response)
		}))
		defer server.Close()

		manager := NewOAuth2TokenManager(&OAuth2Config{
			TokenURL:     server.URL + "/oauth2/v1/tokens/bearer",
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			RefreshToken: "old-refresh-token",
		})

		manager.store.Set(&Token{
			AccessToken:  "expired-token",
			RefreshToken: "old-refresh-token",
			ExpiresAt:    time.Now().Add(-1 * time.Hour),
		})

		token, err := manager.GetToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "new-access-token", token)

		stored := manager.store.Get()
		assert.Equal(t, "new-refresh-token", stored.RefreshToken)
		assert.WithinDuration(t, time.Now().Add(time.Hour), stored.ExpiresAt, 5*time.Second)
	})

	t.Run("surfaces structured token endpoint errors", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			response := map[string]string{
				"error":             "invalid_grant",
				"error_description": "Incorrect or invalid refresh token",
			}
			_ = json.NewEncoder(w).Encode(response)
		}))
		defer server.Close()

		manager := NewOAuth2TokenManager(&OAuth2Config{
			TokenURL:     server.URL,
			ClientID:     "bad-client",
			ClientSecret: "bad-secret",
			RefreshToken: "stale",
		})

		token, err := manager.GetToken(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidClient)
		assert.Contains(t, err.Error(), "invalid_grant")
		assert.Contains(t, err.Error(), "Incorrect or invalid refresh token")
		assert.Empty(t, token)
	})

	t.Run("falls back to raw body for unstructured errors", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte("upstream unavailable"))
		}))
		defer server.Close()

		manager := NewOAuth2TokenManager(&OAuth2Config{
			TokenURL:     server.URL,
			RefreshToken: "stale",
		})

		err := manager.RefreshToken(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidClient)
		assert.Contains(t, err.Error(), "upstream unavailable")
	})

	t.Run("disabled auto-refresh refuses a lapsed token", func(t *testing.T) {
		var refreshCalls int

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			refreshCalls++

			response := Token{
				AccessToken: "renewed-token",
				ExpiresIn:   3600,
				TokenType:   "bearer",
			}
			_ = json.NewEncoder(w).Encode(response)
		}))
		defer server.Close()

		manager := NewOAuth2TokenManager(&OAuth2Config{
			TokenURL:           server.URL,
			ClientID:           "client-id",
			ClientSecret:       "client-secret",
			RefreshToken:       "refresh-1",
			DisableAutoRefresh: true,
		})

		manager.store.Set(&Token{
			AccessToken:  "expired-token",
			RefreshToken: "refresh-1",
			ExpiresAt:    time.Now().Add(-1 * time.Hour),
		})

		token, err := manager.GetToken(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTokenExpired)
		assert.Empty(t, token)
		assert.Zero(t, refreshCalls, "GetToken must not hit the token endpoint")

		// An explicit refresh still works and unblocks GetToken.
		require.NoError(t, manager.RefreshToken(context.Background()))
		assert.Equal(t, 1, refreshCalls)

		token, err = manager.GetToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "renewed-token", token)
	})

	t.Run("no refresh token available", func(t *testing.T) {
		manager := NewOAuth2TokenManager(&OAuth2Config{
			TokenURL: "http://example.com/oauth2/v1/tokens/bearer",
		})

		token, err := manager.GetToken(context.Background())
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrNoRefreshToken)
		assert.Empty(t, token)
	})
}

func TestOAuth2TokenManager_SetToken(t *testing.T) {
	manager := NewOAuth2TokenManager(&OAuth2Config{RefreshToken: "keep-me"})

	expiresAt := time.Now().Add(1 * time.Hour)
	manager.SetToken("manual-token", expiresAt)

	token, err := manager.GetToken(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "manual-token", token)

	stored := manager.store.Get()
	assert.Equal(t, "manual-token", stored.AccessToken)
	assert.Equal(t, "bearer", stored.TokenType)
	assert.Equal(t, "keep-me", stored.RefreshToken)
	assert.Equal(t, expiresAt.Unix(), stored.ExpiresAt.Unix())
}

func TestOAuth2TokenManager_RefreshIsAtomic(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		response := Token{
			AccessToken:  "refreshed-token",
			RefreshToken: "refreshed-refresh",
			ExpiresIn:    3600,
			TokenType:    "bearer",
		}
		_ = json.NewEncoder(w).Encode(response)
	}))
	defer server.Close()

	manager := NewOAuth2TokenManager(&OAuth2Config{
		TokenURL:     server.URL,
		ClientID:     "client-id",
		ClientSecret: "client-secret",
		RefreshToken: "initial-refresh",
	})

	manager.store.Set(&Token{
		AccessToken:  "old-token",
		RefreshToken: "initial-refresh",
		ExpiresAt:    time.Now().Add(-time.Minute),
	})

	var waitGroup sync.WaitGroup

	// Readers racing a refresh must only ever observe a self-consistent
	// credential: either the old pair or the new pair, never a mix.
	for _i := 0; _i < 8; _i++ {
		waitGroup.Add(1)

		go func() {
			defer waitGroup.Done()

			for _i := 0; _i < 50; _i++ {
				token := manager.store.Get()
				if token == nil {
					continue
				}

				switch token.AccessToken {
				case "old-token":
					assert.Equal(t, "initial-refresh", token.RefreshToken)
				case "refreshed-token":
					assert.Equal(t, "refreshed-refresh", token.RefreshToken)
					assert.True(t, token.ExpiresAt.After(time.Now()))
				}
			}
		}()
	}

	err := manager.RefreshToken(context.Background())
	require.NoError(t, err)

	waitGroup.Wait()

	assert.False(t, manager.IsExpired())
}
