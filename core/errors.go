package core

import "errors"

// Sentinel errors returned by the registry. Transports map these onto
// protocol status codes.
var (
	// ErrNotFound indicates an unknown run identifier.
	ErrNotFound = errors.New("run not found")
	// ErrNotReady indicates an export was requested before the run reached a
	// terminal status.
	ErrNotReady = errors.New("transcript not available yet")
	// ErrCapacity indicates the registry is at its concurrency ceiling.
	ErrCapacity = errors.New("a simulation is already running; stop it before starting a new one")
)

// SafeError is a failure whose message is intended for end users. Anything
// not wrapped in a SafeError is treated as an internal failure: logged with
// full detail, surfaced to observers only as a generic message.
type SafeError struct {
	msg string
	err error
}

// NewSafeError creates a SafeError with a user-presentable message.
func NewSafeError(msg string) *SafeError { return &SafeError{msg: msg} }

// WrapSafeError attaches a user-presentable message to an underlying cause.
// The cause stays available for diagnostics via Unwrap; only msg is shown.
func WrapSafeError(msg string, err error) *SafeError { return &SafeError{msg: msg, err: err} }

// Error implements the error interface.
func (e *SafeError) Error() string { return e.msg }

// Unwrap exposes the underlying cause, if any.
func (e *SafeError) Unwrap() error { return e.err }

// IsSafe reports whether err (or anything it wraps) is user-presentable.
func IsSafe(err error) bool {
	var se *SafeError
	return errors.As(err, &se)
}
