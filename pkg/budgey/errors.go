package budgey

import (
	"context"
	"errors"
	"fmt"

	"github.com/ayzanadeem/Budgey/internal/types"
)

// ErrorKind classifies failures surfaced by the client so callers can decide
// whether a retry is worthwhile.
type ErrorKind string

const (
	// KindInvalidInput marks caller mistakes: blank user ids, out-of-range
	// page sizes, unknown categories. Retrying the same call fails again.
	KindInvalidInput ErrorKind = "INVALID_INPUT"

	// KindTransientFetch marks network/timeout-class failures. The same
	// request is safe to retry.
	KindTransientFetch ErrorKind = "TRANSIENT_FETCH_FAILURE"

	// KindPermissionDenied marks auth failures. Not retryable without
	// re-authentication.
	KindPermissionDenied ErrorKind = "PERMISSION_DENIED"

	// KindDataProcessing marks aggregation/merge invariant violations or
	// malformed upstream records. Deterministic; callers must not blindly
	// retry.
	KindDataProcessing ErrorKind = "DATA_PROCESSING_ERROR"
)

var (
	// ErrInvalidInput is returned for rejected caller input
	ErrInvalidInput = errors.New("invalid input")

	// ErrTransientFetch is returned for retryable fetch failures
	ErrTransientFetch = errors.New("transient fetch failure")

	// ErrPermissionDenied is returned when the backend rejects the caller
	ErrPermissionDenied = errors.New("permission denied")

	// ErrDataProcessing is returned for aggregation or merge failures
	ErrDataProcessing = errors.New("data processing error")
)

// kindSentinels maps each kind to its sentinel for errors.Is matching
var kindSentinels = map[ErrorKind]error{
	KindInvalidInput:     ErrInvalidInput,
	KindTransientFetch:   ErrTransientFetch,
	KindPermissionDenied: ErrPermissionDenied,
	KindDataProcessing:   ErrDataProcessing,
}

// Error is the typed error returned across the client boundary
type Error struct {
	Kind       ErrorKind `json:"kind"`
	Message    string    `json:"message"`
	StatusCode int       `json:"statusCode,omitempty"`
	Err        error     `json:"-"`
}

// Error implements the error interface
func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped error
func (e *Error) Unwrap() error {
	return e.Err
}

// Is checks if the error matches target
func (e *Error) Is(target error) bool {
	if sentinel, ok := kindSentinels[e.Kind]; ok && target == sentinel {
		return true
	}

	t, ok := target.(*Error)
	if !ok {
		return false
	}

	return e.Kind == t.Kind
}

// NewError creates a new typed error
func NewError(kind ErrorKind, message string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an error with a kind and message
func WrapError(err error, kind ErrorKind, message string) *Error {
	return &Error{
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// IsRetryable checks if the error is safe to retry
func IsRetryable(err error) bool {
	return errors.Is(err, ErrTransientFetch)
}

// invalidInputf builds an InvalidInput error from a format string
func invalidInputf(format string, args ...interface{}) *Error {
	return NewError(KindInvalidInput, fmt.Sprintf(format, args...))
}

// mapTransportError converts a transport failure into a typed client error.
// All classification happens here, off status codes and sentinels produced
// by the transport, never off message text.
func mapTransportError(err error, message string) *Error {
	kind := KindTransientFetch

	switch {
	case errors.Is(err, types.ErrNotAuthenticated),
		errors.Is(err, types.ErrPermissionDenied),
		errors.Is(err, types.ErrSessionExpired):
		kind = KindPermissionDenied
	case errors.Is(err, types.ErrInvalidRequest),
		errors.Is(err, types.ErrNotFound):
		kind = KindInvalidInput
	case errors.Is(err, types.ErrMalformedResponse):
		kind = KindDataProcessing
	case errors.Is(err, context.Canceled),
		errors.Is(err, context.DeadlineExceeded),
		errors.Is(err, types.ErrRateLimited),
		errors.Is(err, types.ErrTimeout),
		errors.Is(err, types.ErrServerError):
		kind = KindTransientFetch
	}

	e := &Error{
		Kind:    kind,
		Message: message,
		Err:     err,
	}

	var apiErr *types.Error
	if errors.As(err, &apiErr) {
		e.StatusCode = apiErr.StatusCode
	}

	return e
}
