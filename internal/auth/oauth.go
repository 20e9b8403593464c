package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/ledgerkit-io/qbo-client/internal/constants"
)

// Static errors for err113 compliance.
var (
	ErrNoRefreshToken = errors.New("no refresh token available")
	ErrInvalidClient  = errors.New("token endpoint rejected the client")
	ErrTokenExpired   = errors.New("access token expired and auto-refresh is disabled")
)

// OAuth2Config configures the OAuth2 token manager. TokenURL is the token
// endpoint from the provider's discovery document.
type OAuth2Config struct {
	TokenURL     string
	ClientID     string
	ClientSecret string
	AccessToken  string
	RefreshToken string

	// DisableAutoRefresh stops GetToken from refreshing a lapsed token on
	// its own. Callers then get ErrTokenExpired until RefreshToken is
	// invoked explicitly.
	DisableAutoRefresh bool

	// HTTPClient is used for token endpoint calls. Defaults to a plain
	// client with a short timeout.
	HTTPClient *http.Client
}

// OAuth2TokenManager manages a bearer token with refresh-token renewal.
// The refresh mutex serializes refreshes; readers of the store are never
// blocked by a refresh in progress and keep serving the old token until the
// replacement lands.
type OAuth2TokenManager struct {
	config     *OAuth2Config
	store      *TokenStore
	httpClient *http.Client
	refreshMu  sync.Mutex
}

// NewOAuth2TokenManager creates a token manager from config. A configured
// access token is seeded with the far-future placeholder expiry; the real
// TTL arrives with the first refresh response.
func NewOAuth2TokenManager(config *OAuth2Config) *OAuth2TokenManager {
	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: constants.ShortHTTPTimeout}
	}

	manager := &OAuth2TokenManager{
		config:     config,
		store:      NewTokenStore(),
		httpClient: httpClient,
	}

	if config.AccessToken != "" {
		manager.store.Set(&Token{
			AccessToken:  config.AccessToken,
			RefreshToken: config.RefreshToken,
			TokenType:    "bearer",
			ExpiresAt:    time.Now().Add(constants.FarFutureExpiry),
		})
	}

	return manager
}

// GetToken returns a valid access token, refreshing first if the stored one
// has expired and a refresh token is available. With auto-refresh disabled a
// lapsed token is never renewed here; the caller gets ErrTokenExpired until
// an explicit RefreshToken call installs a fresh credential.
func (m *OAuth2TokenManager) GetToken(ctx context.Context) (string, error) {
	token := m.store.Get()
	if token.Valid() {
		return token.AccessToken, nil
	}

	if m.config.DisableAutoRefresh {
		return "", ErrTokenExpired
	}

	err := m.RefreshToken(ctx)
	if err != nil {
		return "", err
	}

	return m.store.Get().AccessToken, nil
}

// RefreshToken exchanges the current refresh token for a new credential and
// atomically replaces the stored token. Requests already holding the old
// token are not invalidated; they fail normally if the provider has revoked
// it.
func (m *OAuth2TokenManager) RefreshToken(ctx context.Context) error {
	m.refreshMu.Lock()
	defer m.refreshMu.Unlock()

	refreshToken := m.currentRefreshToken()
	if refreshToken == "" {
		return ErrNoRefreshToken
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.config.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("building token request: %w", err)
	}

	req.SetBasicAuth(m.config.ClientID, m.config.ClientSecret)
	req.Header.Set("Content-Type", constants.ContentTypeForm)
	req.Header.Set("Accept", constants.ContentTypeJSON)

	resp, err := m.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("requesting token: %w", err)
	}

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("%w: %s", ErrInvalidClient, tokenErrorDetail(body))
	}

	var issued Token

	err = json.Unmarshal(body, &issued)
	if err != nil {
		return fmt.Errorf("parsing token response: %w", err)
	}

	// All three fields land in one Set so a reader never sees a mixed
	// credential.
	issued.ExpiresAt = time.Now().Add(time.Duration(issued.ExpiresIn) * time.Second)
	m.store.Set(&issued)

	return nil
}

// SetToken manually installs an access token with a known expiry.
func (m *OAuth2TokenManager) SetToken(token string, expiresAt time.Time) {
	current := m.store.Get()

	refreshToken := m.config.RefreshToken
	if current != nil && current.RefreshToken != "" {
		refreshToken = current.RefreshToken
	}

	m.store.Set(&Token{
		AccessToken:  token,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresAt:    expiresAt,
	})
}

// IsExpired reports whether the stored token is missing or past its expiry.
func (m *OAuth2TokenManager) IsExpired() bool {
	return !m.store.Get().Valid()
}

// Expiry returns the stored token's expiration time, or the zero time when
// no token is held.
func (m *OAuth2TokenManager) Expiry() time.Time {
	token := m.store.Get()
	if token == nil {
		return time.Time{}
	}

	return token.ExpiresAt
}

func (m *OAuth2TokenManager) currentRefreshToken() string {
	if token := m.store.Get(); token != nil && token.RefreshToken != "" {
		return token.RefreshToken
	}

	return m.config.RefreshToken
}

// tokenErrorDetail extracts the provider's structured OAuth error body,
// falling back to the raw body when the shape does not match.
func tokenErrorDetail(body []byte) string {
	var oauthErr struct {
		Error       string `json:"error"`
		Description string `json:"error_description"`
	}

	err := json.Unmarshal(body, &oauthErr)
	if err != nil || oauthErr.Error == "" {
		return strings.TrimSpace(string(body))
	}

	if oauthErr.Description == "" {
		return oauthErr.Error
	}

	return oauthErr.Error + ": " + oauthErr.Description
}
