package twofactor

import "errors"

var (
	// ErrMissingUsername indicates the flow was entered without an
	// identity claim; the caller must abort to the login entry point.
	ErrMissingUsername = errors.New("twofactor: no username in verification context")

	// ErrInvalidIntent indicates the intent variant is nil or carries an
	// invalid field combination.
	ErrInvalidIntent = errors.New("twofactor: invalid verification intent")

	// ErrUnknownMethod indicates a method other than APP or EMAIL.
	ErrUnknownMethod = errors.New("twofactor: unknown verification method")

	// ErrInvalidTransition indicates the operation is not valid in the
	// flow's current state.
	ErrInvalidTransition = errors.New("twofactor: operation not valid in current state")

	// ErrVerificationInFlight indicates a submit while a verification
	// request is already outstanding.
	ErrVerificationInFlight = errors.New("twofactor: verification already in flight")

	// ErrIncompleteCode indicates a submit before all six digits are
	// entered.
	ErrIncompleteCode = errors.New("twofactor: code must be exactly six digits")
)
