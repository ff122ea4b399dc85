package apiclient

import (
	"errors"
	"fmt"
)

// Kind classifies an API failure.
type Kind string

const (
	// KindRejection means the backend declined the request on its merits:
	// wrong password, wrong or expired 2FA code, invalid CAPTCHA.
	KindRejection Kind = "rejection"
	// KindUnauthorized means a bearer-authed call returned 401.
	KindUnauthorized Kind = "unauthorized"
	// KindTransport means no usable response arrived; the operation is
	// safely retryable.
	KindTransport Kind = "transport"
	// KindMalformed means the backend answered with a body the client
	// could not decode.
	KindMalformed Kind = "malformed"
)

// Error is the classified failure returned by every client method.
type Error struct {
	Kind    Kind
	Status  int    // HTTP status, 0 for transport failures
	Message string // backend-provided message when available
	cause   error
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("apiclient: %s (%s)", e.Message, e.Kind)
	}
	if e.cause != nil {
		return fmt.Sprintf("apiclient: %s: %v", e.Kind, e.cause)
	}
	return fmt.Sprintf("apiclient: %s", e.Kind)
}

func (e *Error) Unwrap() error { return e.cause }

const (
	genericTransportMessage = "No response received from server. Please check your network connection and try again."
	genericErrorMessage     = "An error occurred"
)

// UserMessage converts any error into a string safe to display in a form.
// Backend rejection messages pass through; everything else collapses to a
// generic message so internals never leak into the UI.
func UserMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		switch apiErr.Kind {
		case KindTransport:
			return genericTransportMessage
		default:
			if apiErr.Message != "" {
				return apiErr.Message
			}
			return genericErrorMessage
		}
	}
	if err != nil {
		return genericErrorMessage
	}
	return ""
}

func is(err error, kind Kind) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Kind == kind
}

// IsRejection reports whether the backend declined the request on its merits.
func IsRejection(err error) bool { return is(err, KindRejection) }

// IsUnauthorized reports whether the error is a 401 session expiry.
func IsUnauthorized(err error) bool { return is(err, KindUnauthorized) }

// IsTransport reports whether no usable response arrived.
func IsTransport(err error) bool { return is(err, KindTransport) }
