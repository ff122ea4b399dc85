// Package authstate owns the answer to "is the caller logged in".
//
// The Controller is the single source of truth for the current session:
// it persists the token through a credstore.Store, hydrates the user
// profile from the backend, and is the only writer of session state besides
// the 401-eviction path - which it also implements, so explicit logout and
// forced eviction share one clearing path and racing them is safe.
//
// A token found in storage is "pending", not authenticated; only a
// successful profile fetch within the current process promotes it. CheckAuth
// is idempotent and safe to run on every process start.
package authstate
