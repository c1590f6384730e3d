package connection

import (
	"errors"
	"fmt"
)

// Kind classifies every failure of the provider integration before it
// crosses the API boundary. Handlers branch on the kind, never on
// provider-specific error strings.
type Kind string

const (
	// KindConfiguration: client credentials or base URL missing; fatal for
	// the whole integration until fixed by an operator.
	KindConfiguration Kind = "configuration_error"
	// KindAuthorizationDenied: the user declined consent or the provider
	// returned an error on the authorization redirect.
	KindAuthorizationDenied Kind = "authorization_denied"
	// KindCodeExchangeFailed: invalid, expired or reused authorization code.
	// Codes are single-use; the same code must never be retried.
	KindCodeExchangeFailed Kind = "code_exchange_failed"
	// KindTokenExpiredNoRefresh: token expired with no refresh token stored;
	// the local record is deleted and the user must reconnect.
	KindTokenExpiredNoRefresh Kind = "token_expired_no_refresh"
	// KindRefreshFailed: the provider rejected the refresh call; the local
	// record is deleted and the user must reconnect.
	KindRefreshFailed Kind = "refresh_failed"
	// KindUnauthorized: a resource call returned 401/403 despite local state
	// saying authorized; treated as an immediate expiry signal.
	KindUnauthorized Kind = "unauthorized"
	// KindTransient: timeouts, 5xx, connectivity failures. Safe to retry
	// with backoff; must never cause record deletion.
	KindTransient Kind = "network_or_transient"
	// KindNotConnected: no token record exists for the user.
	KindNotConnected Kind = "not_connected"
)

// Retryable reports whether the failure is safe to retry as-is.
func (k Kind) Retryable() bool {
	return k == KindTransient
}

// Error is the classified provider integration error. HTTPStatus and
// ProviderCode are populated when the provider responded; both are zero for
// purely local failures.
type Error struct {
	Kind         Kind
	HTTPStatus   int
	ProviderCode string
	Message      string
	Err          error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// NewError builds a classified error with no provider context.
func NewError(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// KindOf extracts the classification from err, or empty when err is not a
// classified connection error.
func KindOf(err error) Kind {
	var cerr *Error
	if errors.As(err, &cerr) {
		return cerr.Kind
	}
	return ""
}
