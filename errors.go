package authflow

import (
	"errors"
	"fmt"
	"sort"
	"strings"
)

var (
	// ErrValidationFailed is an exported constant or variable used by the authflow client.
	ErrValidationFailed = errors.New("validation failed")
	// ErrRemoteRejected is an exported constant or variable used by the authflow client.
	ErrRemoteRejected = errors.New("remote auth service rejected the request")
	// ErrRemoteUnavailable is an exported constant or variable used by the authflow client.
	ErrRemoteUnavailable = errors.New("remote auth service unavailable")
	// ErrSessionExpired is an exported constant or variable used by the authflow client.
	ErrSessionExpired = errors.New("session expired")
	// ErrNoSession is an exported constant or variable used by the authflow client.
	ErrNoSession = errors.New("no active session")
	// ErrRoleInvalid is an exported constant or variable used by the authflow client.
	ErrRoleInvalid = errors.New("invalid role")
	// ErrFlowBusy is an exported constant or variable used by the authflow client.
	ErrFlowBusy = errors.New("flow request already in flight")
	// ErrFlowState is an exported constant or variable used by the authflow client.
	ErrFlowState = errors.New("operation not valid in current flow state")
	// ErrFlowDiscarded is an exported constant or variable used by the authflow client.
	ErrFlowDiscarded = errors.New("flow instance discarded")
	// ErrNoChallenge is an exported constant or variable used by the authflow client.
	ErrNoChallenge = errors.New("no active verification challenge")
	// ErrResendCooldown is an exported constant or variable used by the authflow client.
	ErrResendCooldown = errors.New("resend cooldown active")
	// ErrClientNotReady is an exported constant or variable used by the authflow client.
	ErrClientNotReady = errors.New("client not initialized")
)

// RemoteError carries the remote service's human-readable message alongside
// the rejected/unavailable classification. The message is display-ready and
// is never interpreted by this package.
//
// RemoteError instances are intended to be configured during initialization and then treated as immutable unless documented otherwise.
type RemoteError struct {
	StatusCode int
	Message    string

	kind error
}

// Error describes the error operation and its observable behavior.
//
// Error does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *RemoteError) Error() string {
	if e.Message == "" {
		return e.kind.Error()
	}
	return e.Message
}

// Unwrap describes the unwrap operation and its observable behavior.
//
// Unwrap does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (e *RemoteError) Unwrap() error {
	return e.kind
}

func newRemoteRejected(statusCode int, message string) *RemoteError {
	return &RemoteError{
		StatusCode: statusCode,
		Message:    message,
		kind:       ErrRemoteRejected,
	}
}

func newRemoteUnavailable(statusCode int, message string) *RemoteError {
	if message == "" {
		message = "authentication service is unavailable, please try again"
	}
	return &RemoteError{
		StatusCode: statusCode,
		Message:    message,
		kind:       ErrRemoteUnavailable,
	}
}

// FieldErrors maps field names to validation messages. It is produced before
// any network call and is always attached to the offending fields, never
// shown as a global banner.
type FieldErrors map[string]string

// Error describes the error operation and its observable behavior.
//
// Error does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (f FieldErrors) Error() string {
	if len(f) == 0 {
		return ErrValidationFailed.Error()
	}
	fields := make([]string, 0, len(f))
	for field := range f {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, field+": "+f[field])
	}
	return fmt.Sprintf("%s: %s", ErrValidationFailed.Error(), strings.Join(parts, "; "))
}

// Unwrap describes the unwrap operation and its observable behavior.
//
// Unwrap does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (f FieldErrors) Unwrap() error {
	return ErrValidationFailed
}
