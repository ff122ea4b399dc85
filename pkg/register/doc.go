// Package register implements the staged account-creation form: identity,
// password, then confirmation with a CAPTCHA proof and the choice to enroll
// in two-factor authentication right away.
//
// Each stage gates the next: Next refuses to advance until the current
// stage's fields pass client-side validation, so the backend only ever sees
// a fully formed request. Client validation is a usability filter, not a
// security boundary - the backend re-validates everything.
//
// A successful submission either hands the caller an Enrollment - the
// payload needed to start first-time two-factor setup - or, when the user
// declined 2FA, navigates straight to the login view with a one-shot
// success notice. A rejected submission keeps the typed identity fields but
// always discards the CAPTCHA proof, which is single-use.
package register
