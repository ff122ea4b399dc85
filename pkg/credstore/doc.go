// Package credstore persists the one piece of cross-component shared state
// the client owns: the session token.
//
// Exactly one token is stored at a time; there is no multi-session support.
// The token is written only by the login, logout, and 401-eviction paths,
// and read only by the request-signing step and the auth check. Clear is
// idempotent so the eviction paths can race safely.
//
// MemoryStore backs tests and short-lived processes; FileStore provides
// durable client-local storage across process restarts.
package credstore
