package qboclient_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/ledgerkit-io/qbo-client/pkg/qbo"
	"github.com/ledgerkit-io/qbo-client/pkg/qboclient"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_Validation(t *testing.T) {
	t.Parallel()

	t.Run("nil config", func(t *testing.T) {
		t.Parallel()

		_, err := qboclient.New(context.Background(), nil)
		require.ErrorIs(t, err, qbo.ErrMissingCompanyID)
	})

	t.Run("missing company id", func(t *testing.T) {
		t.Parallel()

		_, err := qboclient.New(context.Background(), &qbo.Config{AccessToken: "tok"})
		require.ErrorIs(t, err, qbo.ErrMissingCompanyID)
	})

	t.Run("no credentials at all", func(t *testing.T) {
		t.Parallel()

		_, err := qboclient.New(context.Background(), &qbo.Config{CompanyID: "123"})
		require.ErrorIs(t, err, qbo.ErrMissingCredentials)
	})
}

func TestNew_SkipsDiscoveryWithTokenURL(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "/company/123/companyinfo/123", request.URL.Path)
		assert.Equal(t, "Bearer tok", request.Header.Get("Authorization"))
		_, _ = writer.Write([]byte(`{"CompanyInfo":{"Id":"123","CompanyName":"Acme Corp"},"time":"t"}`))
	}))
	defer server.Close()

	client, err := qboclient.New(context.Background(), &qbo.Config{
		CompanyID:   "123",
		AccessToken: "tok",
		TokenURL:    "http://unused.invalid/token",
		BaseURL:     server.URL,
	})
	require.NoError(t, err)
	assert.Equal(t, "123", client.CompanyID())

	info, err := client.Company().GetCompanyInfo(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Acme Corp", info.CompanyName)
}

func TestNew_RefreshTokenFlow(t *testing.T) {
	t.Parallel()

	tokenServer := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		require.NoError(t, request.ParseForm())
		assert.Equal(t, "refresh_token", request.PostForm.Get("grant_type"))
		assert.Equal(t, "refresh-1", request.PostForm.Get("refresh_token"))

		clientID, clientSecret, ok := request.BasicAuth()
		require.True(t, ok)
		assert.Equal(t, "id", clientID)
		assert.Equal(t, "secret", clientSecret)

		_, _ = writer.Write([]byte(`{
			"access_token": "fresh-token",
			"refresh_token": "refresh-2",
			"token_type": "bearer",
			"expires_in": 3600,
			"x_refresh_token_expires_in": 8726400
		}`))
	}))
	defer tokenServer.Close()

	apiServer := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "Bearer fresh-token", request.Header.Get("Authorization"))
		_, _ = writer.Write([]byte(`{"Customer":{"Id":"9","DisplayName":"Acme"},"time":"t"}`))
	}))
	defer apiServer.Close()

	client, err := qboclient.New(context.Background(), &qbo.Config{
		CompanyID:    "123",
		ClientID:     "id",
		ClientSecret: "secret",
		RefreshToken: "refresh-1",
		TokenURL:     tokenServer.URL,
		BaseURL:      apiServer.URL,
	})
	require.NoError(t, err)

	// No access token was configured, so the first call triggers a refresh.
	customer, err := client.Customers().Get(context.Background(), "9")
	require.NoError(t, err)
	assert.Equal(t, "Acme", customer.DisplayName)
}

func TestNew_DisableAutoRefresh(t *testing.T) {
	t.Parallel()

	var refreshes int32

	tokenServer := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		atomic.AddInt32(&refreshes, 1)
		_, _ = writer.Write([]byte(`{
			"access_token": "fresh-token",
			"refresh_token": "refresh-2",
			"token_type": "bearer",
			"expires_in": 3600
		}`))
	}))
	defer tokenServer.Close()

	apiServer := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		assert.Equal(t, "Bearer fresh-token", request.Header.Get("Authorization"))
		_, _ = writer.Write([]byte(`{"Customer":{"Id":"9","DisplayName":"Acme"},"time":"t"}`))
	}))
	defer apiServer.Close()

	client, err := qboclient.New(context.Background(), &qbo.Config{
		CompanyID:          "123",
		ClientID:           "id",
		ClientSecret:       "secret",
		RefreshToken:       "refresh-1",
		TokenURL:           tokenServer.URL,
		BaseURL:            apiServer.URL,
		DisableAutoRefresh: true,
	})
	require.NoError(t, err)

	// No access token was configured, so the first call finds only a lapsed
	// credential and must fail instead of refreshing on its own.
	_, err = client.Customers().Get(context.Background(), "9")
	require.Error(t, err)
	assert.True(t, qbo.IsAuthError(err))
	assert.Zero(t, atomic.LoadInt32(&refreshes), "no implicit refresh may happen")

	// An explicit refresh installs a fresh credential and calls go through.
	require.NoError(t, client.RefreshToken(context.Background()))
	assert.Equal(t, int32(1), atomic.LoadInt32(&refreshes))

	customer, err := client.Customers().Get(context.Background(), "9")
	require.NoError(t, err)
	assert.Equal(t, "Acme", customer.DisplayName)
}

func TestNew_WithMemoryCache(t *testing.T) {
	t.Parallel()

	var hits int32

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		atomic.AddInt32(&hits, 1)
		_, _ = writer.Write([]byte(`{"CompanyInfo":{"Id":"123","CompanyName":"Acme Corp"},"time":"t"}`))
	}))
	defer server.Close()

	client, err := qboclient.New(context.Background(), &qbo.Config{
		CompanyID:   "123",
		AccessToken: "tok",
		TokenURL:    "http://unused.invalid/token",
		BaseURL:     server.URL,
		Cache:       qbo.DefaultCacheConfig(),
	})
	require.NoError(t, err)

	for _i := 0; _i < 3; _i++ {
		_, err := client.Company().GetCompanyInfo(context.Background())
		require.NoError(t, err)
	}

	assert.Equal(t, int32(1), atomic.LoadInt32(&hits), "repeat reads are served from cache")
}

func TestNewWithEnvironment_OverridesConfig(t *testing.T) {
	t.Parallel()

	_, err := qboclient.NewWithEnvironment(context.Background(), nil, qbo.Production)
	require.ErrorIs(t, err, qbo.ErrMissingCompanyID)
}

func TestNewWithToken_Validation(t *testing.T) {
	t.Parallel()

	_, err := qboclient.NewWithToken(context.Background(), "", "tok", qbo.Sandbox)
	require.ErrorIs(t, err, qbo.ErrMissingCompanyID)
}

func TestNewWithRefreshToken_Validation(t *testing.T) {
	t.Parallel()

	_, err := qboclient.NewWithRefreshToken(context.Background(), "123", "id", "secret", "", qbo.Sandbox)
	require.ErrorIs(t, err, qbo.ErrMissingCredentials)
}
