// Package twofactor implements the second-factor verification flow: method
// selection, code entry, setup-vs-verify branching and the success and
// failure transitions between them.
//
// A Flow is created for exactly one verification attempt from an Intent, a
// tagged variant describing why the user is here:
//
//	LoginChallenge     - the login call answered requiresTwoFactor and the
//	                     user picks APP or EMAIL
//	Reverify           - ordinary login-time verification, method implicitly
//	                     APP, no provisioning call
//	FirstTimeSetup     - post-registration enrollment; completing it does
//	                     NOT establish a session
//	ProfileEnable      - enabling 2FA from the profile surface (APP only)
//	ProfileReconfigure - re-provisioning an existing APP secret from profile
//
// Exactly one intent is chosen at flow entry; a combination of goals that
// does not map onto one variant is a construction-time error, never a
// precedence guess. NewFlow fails with ErrMissingUsername when there is no
// identity claim to verify - the caller must abandon the flow and return to
// the login entry point, since verification cannot proceed without one.
//
// The flow is safe for the event-driven model it runs in: one verification
// request in flight at a time (Submit during StateVerifying is refused), and
// every asynchronous completion is checked against the flow generation
// captured at dispatch, so a response that arrives after Abort can never
// mutate a newer context's state.
package twofactor
