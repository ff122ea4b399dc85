package register

import "errors"

var (
	// ErrInvalidStep indicates an operation that does not apply to the
	// form's current stage, e.g. submitting before confirmation.
	ErrInvalidStep = errors.New("register: operation not valid at current step")

	// ErrSubmitInFlight indicates a submit while one is already running.
	ErrSubmitInFlight = errors.New("register: submission already in flight")
)
