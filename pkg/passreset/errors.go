package passreset

import "errors"

var (
	// ErrTokenInvalid indicates the reset token was missing, malformed,
	// expired or already used; the only way forward is a fresh link.
	ErrTokenInvalid = errors.New("passreset: reset token is invalid or expired")

	// ErrAlreadyCompleted indicates this context already performed its
	// reset; the token is spent.
	ErrAlreadyCompleted = errors.New("passreset: reset already completed")
)
