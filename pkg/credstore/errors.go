package credstore

import "errors"

var (
	// ErrEmptyToken indicates an attempt to save an empty token.
	ErrEmptyToken = errors.New("credstore: token cannot be empty")

	// ErrStorePath indicates the file store path could not be prepared.
	ErrStorePath = errors.New("credstore: failed to prepare store path")
)
