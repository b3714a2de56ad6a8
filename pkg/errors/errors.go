// Package errors defines the sentinel errors shared by the normalization
// services and maps them onto HTTP status codes.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

var (
	ErrInvalidInput          = errors.New("invalid input")
	ErrRecordNotFound        = errors.New("record not found")
	ErrCacheNotFound         = errors.New("dictionary cache not found")
	ErrCorpusNotFound        = errors.New("dictionary corpus not found")
	ErrDictionaryUnavailable = errors.New("dictionary unavailable")
	ErrLockTimeout           = errors.New("timed out waiting for dictionary lock")
	ErrCheckpointUnavailable = errors.New("checkpoint store unavailable")
	ErrTimeout               = errors.New("operation timed out")
)

// AppError carries the HTTP status a handler should answer with alongside
// the sentinel it wraps.
type AppError struct {
	Err        error
	Message    string
	StatusCode int
}

func (e *AppError) Error() string {
	return fmt.Sprintf("%s: %s", e.Err.Error(), e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func New(sentinel error, statusCode int, message string) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    message,
		StatusCode: statusCode,
	}
}

func Newf(sentinel error, statusCode int, format string, args ...any) *AppError {
	return &AppError{
		Err:        sentinel,
		Message:    fmt.Sprintf(format, args...),
		StatusCode: statusCode,
	}
}

// IsMissingResource reports whether err means a dictionary resource was
// absent rather than unreadable. Missing resources are never retried.
func IsMissingResource(err error) bool {
	return errors.Is(err, ErrCacheNotFound) || errors.Is(err, ErrCorpusNotFound)
}

func HTTPStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}

	switch {
	case errors.Is(err, ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, ErrDictionaryUnavailable), errors.Is(err, ErrCorpusNotFound),
		errors.Is(err, ErrLockTimeout), errors.Is(err, ErrCheckpointUnavailable):
		return http.StatusServiceUnavailable
	case errors.Is(err, ErrTimeout):
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}
