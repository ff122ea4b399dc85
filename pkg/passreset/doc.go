// Package passreset implements the password-reset flows: requesting a reset
// link - anonymously by identifier or from an authenticated session - and
// completing a reset from an emailed token.
//
// The request side is deliberately uninformative: whatever the backend
// answers, the caller gets a message that does not reveal whether the
// identifier matched an account.
//
// The completion side is built around a ResetContext, created by validating
// the token exactly once. The validation outcome is terminal for that
// context: an invalid or missing token can never become valid by re-asking,
// the user must request a fresh link. A context that completed a reset is
// likewise spent.
package passreset
