package authstate

import "errors"

var (
	// ErrTokenRejected indicates the backend refused the freshly saved
	// token during login hydration; the token has been cleared.
	ErrTokenRejected = errors.New("authstate: token rejected during profile hydration")

	// ErrEmptyToken indicates Login was called without a token.
	ErrEmptyToken = errors.New("authstate: empty session token")
)
