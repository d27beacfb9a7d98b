// Package errors provides centralized error definitions and error handling
// utilities for the bosun codebase. It defines domain-specific errors,
// error constructors with context wrapping, and classification helpers that
// separate fatal boot failures from degraded-but-survivable conditions.
//
// # Error Types
//
// Domain-specific errors represent errors from specific subsystems:
//   - SessionError: errors related to tmux session management
//   - BootstrapError: errors from host bootstrap steps
//   - ValidationError: malformed configuration (duplicate names, empty commands)
//
// # Usage
//
// Creating errors:
//
//	err := errors.NewSessionError("failed to create session", cause).WithSession("video")
//	err := errors.NewBootstrapError("chmod failed", cause).WithStep("docker-socket")
//
// Checking errors:
//
//	if errors.Is(err, errors.ErrSessionNotFound) { ... }
//	if errors.IsFatal(err) { os.Exit(1) }
package errors

import (
	"errors"
	"fmt"
	"strings"
)

// Re-export standard library functions for convenience.
// This allows callers to import only this package for all error handling.
var (
	Is     = errors.Is
	As     = errors.As
	Unwrap = errors.Unwrap
	New    = errors.New
	Join   = errors.Join
)

// Session-related sentinel errors
var (
	// ErrSessionNotFound indicates that a named session does not exist.
	ErrSessionNotFound = New("session not found")
	// ErrSessionDead indicates that a session exists but its pane process has exited.
	ErrSessionDead = New("session is dead")
	// ErrTmuxUnavailable indicates that the tmux binary could not be run.
	ErrTmuxUnavailable = New("tmux unavailable")
)

// Registry-related sentinel errors
var (
	// ErrDuplicateService indicates that two service specs share a name.
	ErrDuplicateService = New("duplicate service name")
	// ErrEmptyCommand indicates a service spec with no launch command.
	ErrEmptyCommand = New("empty service command")
	// ErrInvalidServiceName indicates a service name unusable as a session name.
	ErrInvalidServiceName = New("invalid service name")
)

// Bootstrap-related sentinel errors
var (
	// ErrBootstrapFailed indicates that a bootstrap step failed unexpectedly.
	ErrBootstrapFailed = New("bootstrap step failed")
)

// Severity distinguishes errors that must abort the boot from errors that
// only degrade one optional subsystem.
type Severity int

const (
	// SeverityDegraded marks conditions that reduce functionality but
	// must not stop the boot (a missing precondition path, for example).
	SeverityDegraded Severity = iota
	// SeverityFatal marks conditions that would leave the fleet running
	// against a corrupt or partially-configured environment.
	SeverityFatal
)

// String returns the string representation of the severity level.
func (s Severity) String() string {
	switch s {
	case SeverityDegraded:
		return "degraded"
	case SeverityFatal:
		return "fatal"
	default:
		return "unknown"
	}
}

// baseError provides common functionality for all error types.
type baseError struct {
	message  string
	cause    error
	severity Severity
}

// Error returns the error message.
func (e *baseError) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %v", e.message, e.cause)
	}
	return e.message
}

// Unwrap returns the underlying error.
func (e *baseError) Unwrap() error {
	return e.cause
}

// Is checks if this error matches the target.
func (e *baseError) Is(target error) bool {
	if e.cause != nil {
		return errors.Is(e.cause, target)
	}
	return false
}

// Severity returns the error severity.
func (e *baseError) Severity() Severity {
	return e.severity
}

// SessionError represents errors related to tmux session management.
//
// Example:
//
//	err := errors.NewSessionError("send-keys failed", cause).WithSession("video")
//	fmt.Println(err) // "session error [session=video]: send-keys failed: ..."
type SessionError struct {
	baseError
	Session string
}

// NewSessionError creates a new SessionError. Session failures are fatal:
// a supervisor that cannot drive its session layer cannot launch the fleet.
func NewSessionError(message string, cause error) *SessionError {
	return &SessionError{
		baseError: baseError{
			message:  message,
			cause:    cause,
			severity: SeverityFatal,
		},
	}
}

// WithSession adds the session name to the error context.
func (e *SessionError) WithSession(name string) *SessionError {
	e.Session = name
	return e
}

// Error returns the formatted error message.
func (e *SessionError) Error() string {
	prefix := "session error"
	if e.Session != "" {
		prefix = fmt.Sprintf("session error [session=%s]", e.Session)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *SessionError) Is(target error) bool {
	if _, ok := target.(*SessionError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// BootstrapError represents an unexpected OS failure during a bootstrap step.
// Missing preconditions are not errors at all; they surface as skipped step
// results. Anything wrapped in a BootstrapError aborts the boot.
type BootstrapError struct {
	baseError
	Step string
}

// NewBootstrapError creates a new BootstrapError.
func NewBootstrapError(message string, cause error) *BootstrapError {
	return &BootstrapError{
		baseError: baseError{
			message:  message,
			cause:    cause,
			severity: SeverityFatal,
		},
	}
}

// WithStep adds the bootstrap step name to the error context.
func (e *BootstrapError) WithStep(step string) *BootstrapError {
	e.Step = step
	return e
}

// Error returns the formatted error message.
func (e *BootstrapError) Error() string {
	prefix := "bootstrap error"
	if e.Step != "" {
		prefix = fmt.Sprintf("bootstrap error [step=%s]", e.Step)
	}
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *BootstrapError) Is(target error) bool {
	if _, ok := target.(*BootstrapError); ok {
		return true
	}
	if errors.Is(target, ErrBootstrapFailed) {
		return true
	}
	return e.baseError.Is(target)
}

// ValidationError represents malformed configuration, rejected at load time
// before any session is created.
type ValidationError struct {
	baseError
	Field string
	Value any
}

// NewValidationError creates a new ValidationError.
func NewValidationError(message string) *ValidationError {
	return &ValidationError{
		baseError: baseError{
			message:  message,
			severity: SeverityFatal,
		},
	}
}

// WithField adds a field name to the error context.
func (e *ValidationError) WithField(field string) *ValidationError {
	e.Field = field
	return e
}

// WithValue adds the invalid value to the error context.
func (e *ValidationError) WithValue(value any) *ValidationError {
	e.Value = value
	return e
}

// WithCause adds a cause to the error.
func (e *ValidationError) WithCause(cause error) *ValidationError {
	e.cause = cause
	return e
}

// Error returns the formatted error message.
func (e *ValidationError) Error() string {
	var parts []string
	if e.Field != "" {
		parts = append(parts, fmt.Sprintf("field=%s", e.Field))
	}
	if e.Value != nil {
		parts = append(parts, fmt.Sprintf("value=%v", e.Value))
	}

	prefix := "validation error"
	if len(parts) > 0 {
		prefix = fmt.Sprintf("validation error [%s]", strings.Join(parts, ", "))
	}

	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", prefix, e.message, e.cause)
	}
	return fmt.Sprintf("%s: %s", prefix, e.message)
}

// Is checks if this error matches the target.
func (e *ValidationError) Is(target error) bool {
	if _, ok := target.(*ValidationError); ok {
		return true
	}
	return e.baseError.Is(target)
}

// severer is implemented by all bosun error types.
type severer interface {
	error
	Severity() Severity
}

// GetSeverity returns the severity level of the error.
// Unknown errors default to fatal: an unclassified failure during boot is
// exactly the "silent partial bootstrap" case the supervisor must not allow.
func GetSeverity(err error) Severity {
	if err == nil {
		return SeverityDegraded
	}

	var se severer
	if As(err, &se) {
		return se.Severity()
	}
	return SeverityFatal
}

// IsFatal reports whether the error must abort the startup sequence.
func IsFatal(err error) bool {
	return err != nil && GetSeverity(err) == SeverityFatal
}

// Wrap wraps an error with an additional context message.
//
// Example:
//
//	err := errors.Wrap(baseErr, "failed to launch tier")
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", message, err)
}

// Wrapf wraps an error with a formatted context message.
func Wrapf(err error, format string, args ...any) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", fmt.Sprintf(format, args...), err)
}
