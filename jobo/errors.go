package jobo

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
)

// Common errors
var (
	// ErrMissingAPIKey is returned by NewClient when no API key is given
	ErrMissingAPIKey = errors.New("jobo: API key is required")
	// ErrAPI matches every *APIError
	ErrAPI = errors.New("jobo: API error")
	// ErrAuthentication matches 401 responses
	ErrAuthentication = errors.New("jobo: authentication failed")
	// ErrRateLimit matches 429 responses
	ErrRateLimit = errors.New("jobo: rate limit exceeded")
	// ErrValidation matches 400 responses
	ErrValidation = errors.New("jobo: invalid request")
	// ErrServer matches 5xx responses
	ErrServer = errors.New("jobo: server error")
)

// ErrorKind classifies a failed API call
type ErrorKind int

const (
	// KindGeneric is any non-2xx status without a more specific kind
	KindGeneric ErrorKind = iota
	// KindAuthentication indicates a missing or invalid API key (401)
	KindAuthentication
	// KindRateLimit indicates the caller exceeded its rate limit (429)
	KindRateLimit
	// KindValidation indicates the server rejected the request (400)
	KindValidation
	// KindServer indicates a server-side failure (5xx)
	KindServer
)

// String returns the string representation of an ErrorKind
func (k ErrorKind) String() string {
	switch k {
	case KindAuthentication:
		return "authentication"
	case KindRateLimit:
		return "rate_limit"
	case KindValidation:
		return "validation"
	case KindServer:
		return "server"
	default:
		return "generic"
	}
}

// APIError is returned for every non-2xx response. It is built once, where
// the response is inspected, and never retried by the client.
type APIError struct {
	Kind       ErrorKind
	StatusCode int
	// Detail is the "detail" field of a JSON error body, or the raw body when
	// it is not JSON.
	Detail string
	Body   string
	// RetryAfterSeconds is the parsed Retry-After header. Only set for
	// KindRateLimit.
	RetryAfterSeconds *int
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Detail)
	}
	return fmt.Sprintf("HTTP %d", e.StatusCode)
}

// Is lets errors.Is match an APIError against the kind sentinels
func (e *APIError) Is(target error) bool {
	switch target {
	case ErrAPI:
		return true
	case ErrAuthentication:
		return e.Kind == KindAuthentication
	case ErrRateLimit:
		return e.Kind == KindRateLimit
	case ErrValidation:
		return e.Kind == KindValidation
	case ErrServer:
		return e.Kind == KindServer
	}
	return false
}

// IsAuthentication checks if the API key was rejected
func (e *APIError) IsAuthentication() bool {
	return e.Kind == KindAuthentication
}

// IsRateLimit checks if the request was rate limited
func (e *APIError) IsRateLimit() bool {
	return e.Kind == KindRateLimit
}

// IsValidation checks if the server rejected the request parameters
func (e *APIError) IsValidation() bool {
	return e.Kind == KindValidation
}

// IsServer checks if the server failed to handle the request
func (e *APIError) IsServer() bool {
	return e.Kind == KindServer
}

// RetryAfter returns the server's retry hint in seconds, if it sent one
func (e *APIError) RetryAfter() (int, bool) {
	if e.RetryAfterSeconds == nil {
		return 0, false
	}
	return *e.RetryAfterSeconds, true
}

// CheckResponse classifies an HTTP response. It returns nil for 2xx statuses
// and an *APIError otherwise.
func CheckResponse(statusCode int, header http.Header, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}
	return classify(statusCode, header, string(body))
}

func classify(statusCode int, header http.Header, body string) *APIError {
	apiErr := &APIError{
		Kind:       kindForStatus(statusCode),
		StatusCode: statusCode,
		Detail:     extractDetail(body),
		Body:       body,
	}
	if apiErr.Kind == KindRateLimit {
		apiErr.RetryAfterSeconds = parseRetryAfter(header)
	}
	return apiErr
}

func kindForStatus(statusCode int) ErrorKind {
	switch {
	case statusCode == http.StatusUnauthorized:
		return KindAuthentication
	case statusCode == http.StatusTooManyRequests:
		return KindRateLimit
	case statusCode == http.StatusBadRequest:
		return KindValidation
	case statusCode >= http.StatusInternalServerError:
		return KindServer
	default:
		return KindGeneric
	}
}

// extractDetail reads the "detail" string of a JSON object body. A body that
// is not a JSON object, or whose detail is not a string, is returned whole.
// TODO: decide with the API owners whether non-JSON bodies (HTML error pages)
// should still be copied into Detail.
func extractDetail(body string) string {
	if !strings.HasPrefix(strings.TrimSpace(body), "{") {
		return body
	}
	var payload struct {
		Detail *string `json:"detail"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err != nil {
		return body
	}
	if payload.Detail == nil {
		return ""
	}
	return *payload.Detail
}

// parseRetryAfter reads Retry-After as a whole number of seconds. HTTP-date
// values are not supported and yield nil.
func parseRetryAfter(header http.Header) *int {
	value := strings.TrimSpace(header.Get("Retry-After"))
	if value == "" {
		return nil
	}
	seconds, err := strconv.Atoi(value)
	if err != nil {
		return nil
	}
	return &seconds
}
