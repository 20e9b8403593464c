// Package http implements the transport layer: request building, token
// injection, error classification, and optional response caching. It knows
// nothing about entities or rate limits; callers hand it fully decided
// requests.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"

	"github.com/ledgerkit-io/qbo-client/internal/auth"
	"github.com/ledgerkit-io/qbo-client/internal/constants"
	"github.com/ledgerkit-io/qbo-client/pkg/qbo"
)

// Request describes one API call before it is rendered to an http.Request.
type Request struct {
	Method string
	Path   string

	// Query holds caller parameters. The minor version parameter is always
	// appended after these, regardless of what the caller set.
	Query url.Values

	// Body is JSON-encoded when set. Ignored for GET and DELETE.
	Body interface{}

	// RawBody is sent verbatim with ContentType when set; used for multipart
	// uploads where the writer owns the Content-Type boundary.
	RawBody     []byte
	ContentType string

	// Accept overrides the default application/json accept header.
	Accept string

	Headers map[string]string
}

// Response is the decoded-enough result of one API call.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Client is the HTTP transport. Safe for concurrent use.
type Client struct {
	baseURL      string
	tokenManager auth.TokenManager
	httpClient   *retryablehttp.Client
	logger       qbo.Logger
	debug        bool
	userAgent    string
	minorVersion string
	interceptors *qbo.InterceptorChain
	cache        *qbo.CacheManager
}

// Option configures a Client.
type Option func(*Client)

// WithLogger sets the structured logger.
func WithLogger(logger qbo.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging through the configured logger.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithMinorVersion overrides the API minor version sent with every request.
func WithMinorVersion(version string) Option {
	return func(c *Client) {
		c.minorVersion = version
	}
}

// WithRetryConfig enables transport-level retries for connection failures
// and 5xx responses.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.httpClient.RetryMax = retryMax
		c.httpClient.RetryWaitMin = waitMin
		c.httpClient.RetryWaitMax = waitMax
	}
}

// WithHTTPTimeout bounds each HTTP call.
func WithHTTPTimeout(timeout time.Duration) Option {
	return func(c *Client) {
		c.httpClient.HTTPClient.Timeout = timeout
	}
}

// WithInterceptors installs a request/response interceptor chain.
func WithInterceptors(chain *qbo.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}

// WithCache installs a response cache consulted for GET requests.
func WithCache(manager *qbo.CacheManager) Option {
	return func(c *Client) {
		c.cache = manager
	}
}

// NewClient creates a transport client rooted at baseURL. A nil tokenManager
// sends requests without authentication, which only makes sense in tests.
func NewClient(baseURL string, tokenManager auth.TokenManager, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = constants.DefaultRetryMax
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.HTTPClient.Timeout = constants.DefaultHTTPTimeout
	retryClient.Logger = nil

	client := &Client{
		baseURL:      strings.TrimSuffix(baseURL, "/"),
		tokenManager: tokenManager,
		httpClient:   retryClient,
		userAgent:    "qbo-client/1.0",
		minorVersion: constants.MinorVersion,
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Do executes a request and classifies the outcome. A non-2xx response
// returns both the response and an error so callers can still inspect the
// body.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	interceptReq := &qbo.Request{
		Method:  req.Method,
		Path:    req.Path,
		Headers: httpReq.Header,
	}

	if c.interceptors != nil {
		err = c.interceptors.ExecuteRequestInterceptors(ctx, interceptReq)
		if err != nil {
			return nil, err
		}
	}

	cacheKey := ""
	if c.cache != nil && req.Method == http.MethodGet {
		cacheKey = c.cache.GetCacheKey(req.Method, req.Path, flattenQuery(req.Query))
		if body, ok := c.cache.Get(ctx, cacheKey); ok {
			if c.debug && c.logger != nil {
				c.logger.Debug("HTTP cache hit", map[string]interface{}{"path": req.Path})
			}

			return &Response{StatusCode: http.StatusOK, Body: body}, nil
		}
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Request", map[string]interface{}{
			"method": req.Method,
			"url":    httpReq.URL.String(),
		})
	}

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, qbo.NewTransportError(err)
	}

	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, qbo.NewTransportError(fmt.Errorf("reading response body: %w", err))
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       body,
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("HTTP Response", map[string]interface{}{
			"method":      req.Method,
			"url":         httpReq.URL.String(),
			"status_code": resp.StatusCode,
		})
	}

	var callErr error
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		callErr = classifyError(resp)
	}

	if c.interceptors != nil {
		interceptResp := &qbo.Response{
			StatusCode: resp.StatusCode,
			Headers:    resp.Headers,
			Body:       resp.Body,
			Error:      callErr,
		}

		err = c.interceptors.ExecuteResponseInterceptors(ctx, interceptReq, interceptResp)
		if err != nil {
			return resp, err
		}
	}

	if callErr == nil && cacheKey != "" {
		c.cache.Set(ctx, cacheKey, req.Method, req.Path, resp.StatusCode, resp.Body)
	}

	return resp, callErr
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// PostQuery performs a POST request with query parameters and a JSON body.
func (c *Client) PostQuery(ctx context.Context, path string, query url.Values, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Query: query, Body: body})
}

// Delete performs a DELETE request. Bodies are never attached.
func (c *Client) Delete(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path, Query: query})
}

// buildRequest renders a Request into an http.Request following the fixed
// builder rules: GET and DELETE carry no body, the Authorization header holds
// the current bearer token, and the minor version parameter is appended after
// all caller parameters.
func (c *Client) buildRequest(ctx context.Context, req *Request) (*retryablehttp.Request, error) {
	endpoint := c.baseURL + "/" + strings.TrimPrefix(req.Path, "/")
	endpoint += "?" + c.encodeQuery(req.Query)

	var (
		bodyReader  io.Reader
		contentType string
	)

	switch {
	case req.Method == http.MethodGet || req.Method == http.MethodDelete:
		// No body, whatever the caller set.
	case req.RawBody != nil:
		bodyReader = bytes.NewReader(req.RawBody)
		contentType = req.ContentType
	case req.Body != nil:
		encoded, err := json.Marshal(req.Body)
		if err != nil {
			return nil, qbo.NewDecodeError(fmt.Errorf("encoding request body: %w", err))
		}

		bodyReader = bytes.NewReader(encoded)
		contentType = constants.ContentTypeJSON
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, req.Method, endpoint, bodyReader)
	if err != nil {
		return nil, qbo.NewTransportError(fmt.Errorf("building request: %w", err))
	}

	if c.tokenManager != nil {
		token, err := c.tokenManager.GetToken(ctx)
		if err != nil {
			return nil, qbo.NewAuthError(fmt.Errorf("getting token: %w", err))
		}

		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	accept := req.Accept
	if accept == "" {
		accept = constants.ContentTypeJSON
	}

	httpReq.Header.Set("Accept", accept)
	httpReq.Header.Set("User-Agent", c.userAgent)

	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	return httpReq, nil
}

// encodeQuery renders caller parameters in sorted order and appends the
// minor version parameter last.
func (c *Client) encodeQuery(query url.Values) string {
	var sb strings.Builder

	keys := make([]string, 0, len(query))

	for key := range query {
		if key == constants.MinorVersionParam {
			continue
		}

		keys = append(keys, key)
	}

	sort.Strings(keys)

	for _, key := range keys {
		for _, value := range query[key] {
			if sb.Len() > 0 {
				sb.WriteByte('&')
			}

			sb.WriteString(url.QueryEscape(key))
			sb.WriteByte('=')
			sb.WriteString(url.QueryEscape(value))
		}
	}

	if sb.Len() > 0 {
		sb.WriteByte('&')
	}

	sb.WriteString(constants.MinorVersionParam)
	sb.WriteByte('=')
	sb.WriteString(c.minorVersion)

	return sb.String()
}

// classifyError maps a non-2xx response to an APIError. Bodies carrying a
// Fault envelope keep their structure; anything else is reported raw.
func classifyError(resp *Response) error {
	var envelope struct {
		Fault *qbo.Fault `json:"Fault"`
	}

	err := json.Unmarshal(resp.Body, &envelope)
	if err == nil && envelope.Fault != nil {
		return qbo.NewFaultError(resp.StatusCode, envelope.Fault)
	}

	apiErr := &qbo.APIError{
		Kind:       qbo.ErrorKindBadRequest,
		StatusCode: resp.StatusCode,
		Message:    strings.TrimSpace(string(resp.Body)),
	}

	switch resp.StatusCode {
	case http.StatusUnauthorized, http.StatusForbidden:
		apiErr.Kind = qbo.ErrorKindAuth
	case http.StatusTooManyRequests:
		apiErr.Kind = qbo.ErrorKindThrottled
	}

	return apiErr
}

func flattenQuery(query url.Values) map[string]string {
	if len(query) == 0 {
		return nil
	}

	flat := make(map[string]string, len(query))
	for key := range query {
		flat[key] = query.Get(key)
	}

	return flat
}
