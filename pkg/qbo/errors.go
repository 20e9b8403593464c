package qbo

import (
	"errors"
	"fmt"
	"strings"
)

// Static errors for err113 compliance.
var (
	ErrUnknownEnvironment = errors.New("unknown environment")
	ErrMissingCompanyID   = errors.New("company ID is required")
	ErrMissingCredentials = errors.New("an access token or refresh token is required")
	ErrMissingEntityID    = errors.New("entity ID is required")
	ErrMissingSyncToken   = errors.New("entity sync token is required")
	ErrBatchTooLarge      = errors.New("batch exceeds the 30 operation limit")
	ErrThrottled          = errors.New("request was throttled by the provider")
)

// FaultError is one error element inside a Fault envelope.
type FaultError struct {
	Message string `json:"Message"`
	Detail  string `json:"Detail,omitempty"`
	Code    string `json:"code,omitempty"`
	Element string `json:"element,omitempty"`
}

// Fault is the provider's structured error envelope, returned both as a
// top-level response body and per item inside batch responses.
type Fault struct {
	Type   string       `json:"type,omitempty"`
	Errors []FaultError `json:"Error"`
}

func (f *Fault) Error() string {
	if f == nil || len(f.Errors) == 0 {
		return "fault with no error detail"
	}

	parts := make([]string, 0, len(f.Errors))

	for _, e := range f.Errors {
		part := e.Message
		if e.Detail != "" {
			part += ": " + e.Detail
		}

		if e.Code != "" {
			part += " (code " + e.Code + ")"
		}

		parts = append(parts, part)
	}

	return fmt.Sprintf("fault %s: %s", f.Type, strings.Join(parts, "; "))
}

// ErrorKind classifies an APIError by what went wrong, independent of the
// HTTP status that carried it.
type ErrorKind string

const (
	// ErrorKindTransport covers network failures before a response arrived.
	ErrorKindTransport ErrorKind = "transport"

	// ErrorKindBadRequest covers structured provider rejections carrying a
	// Fault envelope.
	ErrorKindBadRequest ErrorKind = "bad_request"

	// ErrorKindDecode covers response bodies that could not be parsed into
	// the expected shape.
	ErrorKindDecode ErrorKind = "decode"

	// ErrorKindAuth covers credential failures from the token endpoint or a
	// 401 from the API.
	ErrorKindAuth ErrorKind = "auth"

	// ErrorKindThrottled covers provider-side rate limiting (429).
	ErrorKindThrottled ErrorKind = "throttled"
)

// APIError is the error type surfaced for any failed API call. Exactly one
// request-level error is produced per call; batch item faults are reported
// through BatchPartialFailureError instead.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	Fault      *Fault
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	switch {
	case e.Fault != nil:
		return fmt.Sprintf("api error (%s, status %d): %s", e.Kind, e.StatusCode, e.Fault.Error())
	case e.Err != nil:
		return fmt.Sprintf("api error (%s): %s", e.Kind, e.Err.Error())
	default:
		return fmt.Sprintf("api error (%s, status %d): %s", e.Kind, e.StatusCode, e.Message)
	}
}

func (e *APIError) Unwrap() error {
	return e.Err
}

// NewTransportError wraps a failure that occurred before any response body
// was available.
func NewTransportError(err error) *APIError {
	return &APIError{Kind: ErrorKindTransport, Err: err}
}

// NewAuthError wraps a credential failure that happened before the request
// left the client, such as a lapsed token that may not be auto-refreshed.
func NewAuthError(err error) *APIError {
	return &APIError{Kind: ErrorKindAuth, Err: err}
}

// NewDecodeError wraps a body that arrived but could not be parsed.
func NewDecodeError(err error) *APIError {
	return &APIError{Kind: ErrorKindDecode, Err: err}
}

// NewFaultError wraps a structured provider rejection.
func NewFaultError(statusCode int, fault *Fault) *APIError {
	kind := ErrorKindBadRequest

	switch statusCode {
	case 401, 403:
		kind = ErrorKindAuth
	case 429:
		kind = ErrorKindThrottled
	}

	return &APIError{Kind: kind, StatusCode: statusCode, Fault: fault}
}

// IsAPIError extracts an APIError from an error chain.
func IsAPIError(err error) (*APIError, bool) {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr, true
	}

	return nil, false
}

// IsNotFound reports whether err is a structured 404 rejection.
func IsNotFound(err error) bool {
	apiErr, ok := IsAPIError(err)

	return ok && apiErr.StatusCode == 404
}

// IsAuthError reports whether err is a credential failure.
func IsAuthError(err error) bool {
	apiErr, ok := IsAPIError(err)

	return ok && apiErr.Kind == ErrorKindAuth
}

// IsThrottled reports whether err is a provider-side rate limit rejection.
func IsThrottled(err error) bool {
	if errors.Is(err, ErrThrottled) {
		return true
	}

	apiErr, ok := IsAPIError(err)

	return ok && apiErr.Kind == ErrorKindThrottled
}

// BatchResultPair couples a batch operation with the provider's response for
// its correlation ID.
type BatchResultPair struct {
	BID       string
	Operation BatchOperation
	Response  *BatchResponseItem
}

// BatchPartialFailureError is returned when a batch response omits one or
// more of the correlation IDs that were sent. Missing holds the operations
// whose fate is unknown, keyed by bId; Partial holds every pair that was
// matched, so callers can keep the successful results while retrying or
// reconciling the missing ones.
type BatchPartialFailureError struct {
	Missing map[string]BatchOperation
	Partial []BatchResultPair
}

func (e *BatchPartialFailureError) Error() string {
	ids := make([]string, 0, len(e.Missing))
	for id := range e.Missing {
		ids = append(ids, id)
	}

	return fmt.Sprintf("batch response missing %d of %d items (%s)",
		len(e.Missing), len(e.Missing)+len(e.Partial), strings.Join(ids, ", "))
}

// IsBatchPartialFailure extracts a BatchPartialFailureError from an error
// chain.
func IsBatchPartialFailure(err error) (*BatchPartialFailureError, bool) {
	var partial *BatchPartialFailureError
	if errors.As(err, &partial) {
		return partial, true
	}

	return nil, false
}
