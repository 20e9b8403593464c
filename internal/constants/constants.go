package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations such as discovery fetches.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry configuration for the transport layer. Retries are off by default;
// failed calls are surfaced to the caller rather than silently re-issued.
const (
	// DefaultRetryMax is the default maximum number of transport retries.
	DefaultRetryMax = 0

	// DefaultRetryWaitMin is the minimum backoff between retries when enabled.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum backoff between retries when enabled.
	DefaultRetryWaitMax = 10 * time.Second
)

// QuickBooks Online rate limits. Sandbox and production both allow 500
// requests per minute; batch endpoints are limited to 40 batches per minute.
// After being throttled the provider expects a 60 second wait.
const (
	// RequestRateLimit is the number of regular API calls admitted per window.
	RequestRateLimit = 500

	// BatchRateLimit is the number of batch calls admitted per window.
	BatchRateLimit = 40

	// RateLimitWindow is the wall-clock window both limits are counted over.
	RateLimitWindow = 60 * time.Second
)

// Batch constraints.
const (
	// MaxBatchItems is the provider-side cap on operations per batch call.
	// The batch client documents this as a caller precondition and does not
	// chunk oversized batches itself.
	MaxBatchItems = 30
)

// API versioning.
const (
	// MinorVersion is appended to every request's query string.
	MinorVersion = "75"

	// MinorVersionParam is the query parameter name carrying MinorVersion.
	MinorVersionParam = "minorversion"
)

// Content types.
const (
	// ContentTypeJSON is the default request content type.
	ContentTypeJSON = "application/json"

	// ContentTypeForm is used for OAuth token endpoint requests.
	ContentTypeForm = "application/x-www-form-urlencoded"

	// ContentTypePDF is the accept type for PDF downloads.
	ContentTypePDF = "application/pdf"

	// ContentTypeMultipart marks a request whose Content-Type must be set by
	// the multipart writer (it carries the boundary), not the request builder.
	ContentTypeMultipart = "multipart/form-data"
)

// Token lifetime handling.
const (
	// TokenExpiryBuffer treats tokens expiring within this window as expired
	// so a request does not leave with a token about to lapse mid-flight.
	TokenExpiryBuffer = 30 * time.Second

	// FarFutureExpiry is the placeholder token lifetime used until a real
	// token issuance supplies a server-reported TTL.
	FarFutureExpiry = 999 * time.Hour
)

// Query defaults.
const (
	// DefaultQueryMaxResults caps query result sets when the caller does not
	// specify a limit.
	DefaultQueryMaxResults = 100
)

// CLI output formats.
const (
	// FormatTable renders tabular output.
	FormatTable = "table"

	// FormatJSON renders indented JSON.
	FormatJSON = "json"

	// FormatYAML renders YAML.
	FormatYAML = "yaml"
)

// Cache defaults.
const (
	// DefaultCacheSize is the maximum number of entries in the memory cache.
	DefaultCacheSize = 1000

	// DefaultCacheTTL is the default time-to-live for cached responses.
	DefaultCacheTTL = 5 * time.Minute
)
