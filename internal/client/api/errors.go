package api

import (
	"errors"
	"fmt"
)

// Failure kinds. Match them with errors.Is.
var (
	// ErrSessionExpired is a 401 from the backend.
	ErrSessionExpired = errors.New("session expired")
	// ErrEntitlementDenied is a 403 from the backend: the plan does not cover the feature.
	ErrEntitlementDenied = errors.New("entitlement denied")
	// ErrRequestFailed covers network failures and every other non-2xx status.
	ErrRequestFailed = errors.New("request failed")
	// ErrLoginRequired is returned without any network call when a bearer
	// endpoint is used while no session is stored.
	ErrLoginRequired = errors.New("login required")
)

// Error is the typed failure returned by every Client call.
type Error struct {
	Kind     error
	Endpoint string
	Status   int    // 0 when the request never got a response
	Code     string // "error" field of the response body
	Message  string // "message" field of the response body
	Body     map[string]any
	Err      error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %v", e.Endpoint, e.Kind)
	if e.Status != 0 {
		msg += fmt.Sprintf(" (status %d)", e.Status)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Retryable reports whether err is a transient failure the user may retry.
// Expired sessions and denied entitlements are not.
func Retryable(err error) bool {
	return errors.Is(err, ErrRequestFailed)
}

// kindForStatus maps a non-2xx status. A 401 only means an expired session
// when a bearer token was sent; on public calls such as login it is a
// rejected request whose message the user should see.
func kindForStatus(status int, mode authMode) error {
	switch status {
	case 401:
		if mode == public {
			return ErrRequestFailed
		}
		return ErrSessionExpired
	case 403:
		return ErrEntitlementDenied
	default:
		return ErrRequestFailed
	}
}
