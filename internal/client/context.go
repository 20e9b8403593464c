// Package client implements the qbo.Client interface: the composition root
// holding credentials, transport, and the two rate limiter windows, plus the
// per-entity clients built on top of it.
package client

import (
	"context"
	"fmt"

	"github.com/ledgerkit-io/qbo-client/internal/auth"
	"github.com/ledgerkit-io/qbo-client/internal/constants"
	qbohttp "github.com/ledgerkit-io/qbo-client/internal/http"
	"github.com/ledgerkit-io/qbo-client/internal/ratelimit"
	"github.com/ledgerkit-io/qbo-client/pkg/qbo"
)

// Context is the immutable core shared by every entity client: one company,
// one credential, one transport, and the two rate limiter windows. All entity
// clients built from the same Context contend for the same windows.
type Context struct {
	companyID    string
	environment  qbo.Environment
	discovery    *qbo.DiscoveryDoc
	tokenManager auth.TokenManager
	httpClient   *qbohttp.Client
	limiter      *ratelimit.Limiter
	batchLimiter *ratelimit.Limiter
	autoRefresh  bool
	logger       qbo.Logger
}

// ContextConfig carries the already-resolved pieces a Context is built from.
// Resolution (discovery fetch, credential seeding, transport options) happens
// in the qboclient package.
type ContextConfig struct {
	CompanyID    string
	Environment  qbo.Environment
	Discovery    *qbo.DiscoveryDoc
	TokenManager auth.TokenManager
	HTTPClient   *qbohttp.Client
	AutoRefresh  bool
	Logger       qbo.Logger
}

// NewContext assembles a Context with fresh rate limiter windows.
func NewContext(config *ContextConfig) *Context {
	return &Context{
		companyID:    config.CompanyID,
		environment:  config.Environment,
		discovery:    config.Discovery,
		tokenManager: config.TokenManager,
		httpClient:   config.HTTPClient,
		limiter:      ratelimit.New(constants.RequestRateLimit, constants.RateLimitWindow),
		batchLimiter: ratelimit.New(constants.BatchRateLimit, constants.RateLimitWindow),
		autoRefresh:  config.AutoRefresh,
		logger:       config.Logger,
	}
}

// CompanyID returns the realm this context is bound to.
func (c *Context) CompanyID() string {
	return c.companyID
}

// Environment returns the deployment this context talks to.
func (c *Context) Environment() qbo.Environment {
	return c.environment
}

// Discovery returns the provider metadata fetched at construction.
func (c *Context) Discovery() *qbo.DiscoveryDoc {
	return c.discovery
}

// RefreshToken forces a credential refresh regardless of expiry.
func (c *Context) RefreshToken(ctx context.Context) error {
	err := c.tokenManager.RefreshToken(ctx)
	if err != nil {
		return fmt.Errorf("refreshing token: %w", err)
	}

	return nil
}

// WithPermission runs fn holding a permit from the regular request window.
// The permit is released on every path out of fn, so a panic or error cannot
// leak window capacity.
func (c *Context) WithPermission(ctx context.Context, fn func(ctx context.Context) error) error {
	permit, err := c.limiter.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquiring request permit: %w", err)
	}

	defer permit.Release()

	err = c.ensureFresh(ctx)
	if err != nil {
		return err
	}

	return fn(ctx)
}

// WithBatchPermission is WithPermission against the batch window.
func (c *Context) WithBatchPermission(ctx context.Context, fn func(ctx context.Context) error) error {
	permit, err := c.batchLimiter.Acquire(ctx)
	if err != nil {
		return fmt.Errorf("acquiring batch permit: %w", err)
	}

	defer permit.Release()

	err = c.ensureFresh(ctx)
	if err != nil {
		return err
	}

	return fn(ctx)
}

// ensureFresh refreshes the credential before the call when auto-refresh is
// on and the stored token has lapsed. With auto-refresh off this is a no-op;
// the token manager itself then refuses lapsed tokens with an auth error.
func (c *Context) ensureFresh(ctx context.Context) error {
	if !c.autoRefresh {
		return nil
	}

	type expiryChecker interface {
		IsExpired() bool
	}

	checker, ok := c.tokenManager.(expiryChecker)
	if !ok || !checker.IsExpired() {
		return nil
	}

	if c.logger != nil {
		c.logger.Debug("refreshing expired token before request", map[string]interface{}{
			"company_id": c.companyID,
		})
	}

	return c.RefreshToken(ctx)
}

// path joins URL segments under the context's company.
func (c *Context) path(segments ...string) string {
	p := "company/" + c.companyID
	for _, segment := range segments {
		p += "/" + segment
	}

	return p
}
