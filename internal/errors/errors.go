// Package errors provides custom error types for the chat client and backend.
package errors

import (
	"errors"
	"fmt"
	"net"
	"strings"
)

// Sentinel errors for common cases
var (
	ErrCatalogFetch     = errors.New("model catalog unavailable")
	ErrGenerationFailed = errors.New("generation request failed")
	ErrClipboardWrite   = errors.New("clipboard write failed")
	ErrInvalidResponse  = errors.New("invalid response format")
	ErrUnknownModel     = errors.New("unknown model")
	ErrPromptRequired   = errors.New("prompt is required")
)

// APIError represents a non-2xx response from the backend
type APIError struct {
	StatusCode int
	Endpoint   string
	Message    string
	Body       string
}

func (e *APIError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("API error [%d] at %s: %s", e.StatusCode, e.Endpoint, e.Message)
	}
	return fmt.Sprintf("API error at %s: %s", e.Endpoint, e.Message)
}

// NewAPIError creates a new APIError
func NewAPIError(statusCode int, endpoint, message string) *APIError {
	return &APIError{
		StatusCode: statusCode,
		Endpoint:   endpoint,
		Message:    message,
	}
}

// WithBody attaches a truncated copy of the response body for diagnostics.
func (e *APIError) WithBody(body string) *APIError {
	const maxBody = 512
	if len(body) > maxBody {
		body = body[:maxBody] + "..."
	}
	e.Body = body
	return e
}

// NetworkError represents a transport failure before any response arrived
type NetworkError struct {
	Op       string
	Endpoint string
	Err      error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error during %s at %s: %v", e.Op, e.Endpoint, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// NewNetworkError creates a new NetworkError
func NewNetworkError(op, endpoint string, err error) *NetworkError {
	return &NetworkError{Op: op, Endpoint: endpoint, Err: err}
}

// CatalogError wraps a failure to obtain the model catalog.
type CatalogError struct {
	Err error
}

func (e *CatalogError) Error() string {
	if e.Err == nil {
		return ErrCatalogFetch.Error()
	}
	return fmt.Sprintf("%s: %v", ErrCatalogFetch, e.Err)
}

func (e *CatalogError) Unwrap() error {
	return e.Err
}

// Is allows comparison with sentinel errors
func (e *CatalogError) Is(target error) bool {
	if target == ErrCatalogFetch {
		return true
	}
	_, ok := target.(*CatalogError)
	return ok
}

// NewCatalogError creates a new CatalogError
func NewCatalogError(err error) *CatalogError {
	return &CatalogError{Err: err}
}

// GenerationError wraps a failed generation request for a model.
type GenerationError struct {
	Model string
	Err   error
}

func (e *GenerationError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s for model %s", ErrGenerationFailed, e.Model)
	}
	return fmt.Sprintf("%s for model %s: %v", ErrGenerationFailed, e.Model, e.Err)
}

func (e *GenerationError) Unwrap() error {
	return e.Err
}

// Is allows comparison with sentinel errors
func (e *GenerationError) Is(target error) bool {
	if target == ErrGenerationFailed {
		return true
	}
	_, ok := target.(*GenerationError)
	return ok
}

// NewGenerationError creates a new GenerationError
func NewGenerationError(model string, err error) *GenerationError {
	return &GenerationError{Model: model, Err: err}
}

// ClipboardError wraps a failed clipboard write. It is only ever logged.
type ClipboardError struct {
	Err error
}

func (e *ClipboardError) Error() string {
	return fmt.Sprintf("%s: %v", ErrClipboardWrite, e.Err)
}

func (e *ClipboardError) Unwrap() error {
	return e.Err
}

// Is allows comparison with sentinel errors
func (e *ClipboardError) Is(target error) bool {
	return target == ErrClipboardWrite
}

// NewClipboardError creates a new ClipboardError
func NewClipboardError(err error) *ClipboardError {
	return &ClipboardError{Err: err}
}

// ParseError represents a response parsing error
type ParseError struct {
	Message string
	Path    string
}

func (e *ParseError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("parse error: %s", e.Message)
	}
	return fmt.Sprintf("parse error at %s: %s", e.Path, e.Message)
}

// Is allows comparison with sentinel errors
func (e *ParseError) Is(target error) bool {
	if target == ErrInvalidResponse {
		return true
	}
	_, ok := target.(*ParseError)
	return ok
}

// NewParseError creates a new ParseError
func NewParseError(message, path string) *ParseError {
	return &ParseError{Message: message, Path: path}
}

// GetHTTPStatus returns the status code carried by err, or 0.
func GetHTTPStatus(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}

// GetEndpoint returns the endpoint carried by err, or "".
func GetEndpoint(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Endpoint
	}
	var netErr *NetworkError
	if errors.As(err, &netErr) {
		return netErr.Endpoint
	}
	return ""
}

// GetResponseBody returns the response body carried by err, or "".
func GetResponseBody(err error) string {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Body
	}
	return ""
}

// IsNetworkError reports whether err is a transport failure.
func IsNetworkError(err error) bool {
	var netErr *NetworkError
	return errors.As(err, &netErr)
}

// IsTimeoutError reports whether err was caused by a timeout.
func IsTimeoutError(err error) bool {
	if err == nil {
		return false
	}
	var ne net.Error
	if errors.As(err, &ne) && ne.Timeout() {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") || strings.Contains(msg, "deadline exceeded")
}
