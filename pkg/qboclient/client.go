package qboclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/ledgerkit-io/qbo-client/internal/auth"
	internalclient "github.com/ledgerkit-io/qbo-client/internal/client"
	"github.com/ledgerkit-io/qbo-client/internal/constants"
	qbohttp "github.com/ledgerkit-io/qbo-client/internal/http"
	"github.com/ledgerkit-io/qbo-client/pkg/qbo"
)

// New creates a qbo.Client from config. The environment's discovery document
// is fetched once here; the resulting token endpoint, transport, and rate
// limiter windows are fixed for the client's lifetime.
func New(ctx context.Context, config *qbo.Config) (qbo.Client, error) {
	if config == nil || config.CompanyID == "" {
		return nil, qbo.ErrMissingCompanyID
	}

	if config.AccessToken == "" && config.RefreshToken == "" {
		return nil, qbo.ErrMissingCredentials
	}

	environment := config.Environment
	if environment == "" {
		environment = qbo.Sandbox
	}

	discovery, err := resolveDiscovery(ctx, environment, config.TokenURL)
	if err != nil {
		return nil, err
	}

	tokenURL := config.TokenURL
	if tokenURL == "" {
		tokenURL = discovery.TokenEndpoint
	}

	tokenManager := auth.NewOAuth2TokenManager(&auth.OAuth2Config{
		TokenURL:           tokenURL,
		ClientID:           config.ClientID,
		ClientSecret:       config.ClientSecret,
		AccessToken:        config.AccessToken,
		RefreshToken:       config.RefreshToken,
		DisableAutoRefresh: config.DisableAutoRefresh,
	})

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = environment.EndpointURL()
	}

	opts, err := transportOptions(config)
	if err != nil {
		return nil, err
	}

	httpClient := qbohttp.NewClient(baseURL, tokenManager, opts...)

	clientContext := internalclient.NewContext(&internalclient.ContextConfig{
		CompanyID:    config.CompanyID,
		Environment:  environment,
		Discovery:    discovery,
		TokenManager: tokenManager,
		HTTPClient:   httpClient,
		AutoRefresh:  config.RefreshToken != "" && !config.DisableAutoRefresh,
		Logger:       config.Logger,
	})

	return internalclient.New(clientContext), nil
}

// NewWithToken creates a client from a bare access token. The token is used
// until the provider rejects it; there is no refresh path.
func NewWithToken(ctx context.Context, companyID, accessToken string, environment qbo.Environment) (qbo.Client, error) {
	return New(ctx, &qbo.Config{
		CompanyID:   companyID,
		AccessToken: accessToken,
		Environment: environment,
	})
}

// NewWithRefreshToken creates a client that renews its own credential.
func NewWithRefreshToken(ctx context.Context, companyID, clientID, clientSecret, refreshToken string, environment qbo.Environment) (qbo.Client, error) {
	return New(ctx, &qbo.Config{
		CompanyID:    companyID,
		ClientID:     clientID,
		ClientSecret: clientSecret,
		RefreshToken: refreshToken,
		Environment:  environment,
	})
}

// NewWithEnvironment creates a client from config with the environment forced,
// regardless of what config carries.
func NewWithEnvironment(ctx context.Context, config *qbo.Config, environment qbo.Environment) (qbo.Client, error) {
	if config == nil {
		return nil, qbo.ErrMissingCompanyID
	}

	override := *config
	override.Environment = environment

	return New(ctx, &override)
}

// resolveDiscovery fetches the environment's discovery document. With an
// explicit token URL override the fetch is skipped; the token endpoint is the
// only field the client itself consumes.
func resolveDiscovery(ctx context.Context, environment qbo.Environment, tokenURL string) (*qbo.DiscoveryDoc, error) {
	if tokenURL != "" {
		return &qbo.DiscoveryDoc{TokenEndpoint: tokenURL}, nil
	}

	return FetchDiscoveryDoc(ctx, environment)
}

// FetchDiscoveryDoc retrieves the OpenID discovery document for an
// environment.
func FetchDiscoveryDoc(ctx context.Context, environment qbo.Environment) (*qbo.DiscoveryDoc, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, environment.DiscoveryURL(), nil)
	if err != nil {
		return nil, fmt.Errorf("building discovery request: %w", err)
	}

	req.Header.Set("Accept", constants.ContentTypeJSON)

	httpClient := &http.Client{Timeout: constants.ShortHTTPTimeout}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching discovery document: %w", err)
	}

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading discovery document: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: discovery returned status %d", qbo.ErrUnknownEnvironment, resp.StatusCode)
	}

	var doc qbo.DiscoveryDoc

	err = json.Unmarshal(body, &doc)
	if err != nil {
		return nil, fmt.Errorf("parsing discovery document: %w", err)
	}

	return &doc, nil
}

func transportOptions(config *qbo.Config) ([]qbohttp.Option, error) {
	var opts []qbohttp.Option

	if config.Logger != nil {
		opts = append(opts, qbohttp.WithLogger(config.Logger))
	}

	if config.Debug {
		opts = append(opts, qbohttp.WithDebug(true))
	}

	if config.UserAgent != "" {
		opts = append(opts, qbohttp.WithUserAgent(config.UserAgent))
	}

	if config.MinorVersion != "" {
		opts = append(opts, qbohttp.WithMinorVersion(config.MinorVersion))
	}

	if config.HTTPTimeout > 0 {
		opts = append(opts, qbohttp.WithHTTPTimeout(config.HTTPTimeout))
	}

	if config.RetryMax > 0 {
		waitMin := config.RetryWaitMin
		if waitMin == 0 {
			waitMin = constants.DefaultRetryWaitMin
		}

		waitMax := config.RetryWaitMax
		if waitMax == 0 {
			waitMax = constants.DefaultRetryWaitMax
		}

		opts = append(opts, qbohttp.WithRetryConfig(config.RetryMax, waitMin, waitMax))
	}

	if config.Interceptors != nil {
		opts = append(opts, qbohttp.WithInterceptors(config.Interceptors))
	}

	if config.Cache != nil {
		cache, err := qbo.NewCacheFromConfig(config.Cache)
		if err != nil {
			return nil, fmt.Errorf("building response cache: %w", err)
		}

		manager := qbo.NewCacheManager(cache, qbo.DefaultCachingPolicy(), qbo.DefaultCacheOptions())
		opts = append(opts, qbohttp.WithCache(manager))
	}

	return opts, nil
}
