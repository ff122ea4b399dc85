package twofactor

import "github.com/dmitrymomot/authkit/pkg/apiclient"

// Intent is the reason a verification flow was entered. The variant fixes
// the flow's entry state, whether a provisioning call happens, which verify
// endpoint is used, and where success leads.
type Intent interface {
	// Username is the identity claim being verified.
	Username() string

	isIntent()
}

// LoginChallenge means the login call answered with requiresTwoFactor but
// did not name a usable method, so the flow starts at method selection.
type LoginChallenge struct {
	User string
}

// Reverify is the ordinary login-time verification for an account already
// enrolled with an authenticator app. The flow starts directly at code
// entry with no provisioning call.
type Reverify struct {
	User string
}

// FirstTimeSetup is post-registration enrollment. SetupSecret may carry a
// pre-issued otpauth URI from the registration response; when it is empty
// the flow provisions one itself. Completing this intent confirms the
// enrollment only - it never establishes a session.
type FirstTimeSetup struct {
	User        string
	Method      apiclient.Method
	SetupSecret string
}

// ProfileEnable enables 2FA from the profile surface, which offers the
// authenticator app only.
type ProfileEnable struct {
	User string
}

// ProfileReconfigure re-provisions an existing authenticator-app secret
// from the profile surface.
type ProfileReconfigure struct {
	User string
}

func (i LoginChallenge) Username() string     { return i.User }
func (i Reverify) Username() string           { return i.User }
func (i FirstTimeSetup) Username() string     { return i.User }
func (i ProfileEnable) Username() string      { return i.User }
func (i ProfileReconfigure) Username() string { return i.User }

func (LoginChallenge) isIntent()     {}
func (Reverify) isIntent()           {}
func (FirstTimeSetup) isIntent()     {}
func (ProfileEnable) isIntent()      {}
func (ProfileReconfigure) isIntent() {}

// validateIntent enforces the construction-time rules: a username is always
// required, and FirstTimeSetup must name a known method up front because it
// skips method selection entirely.
func validateIntent(intent Intent) error {
	if intent == nil {
		return ErrInvalidIntent
	}
	if intent.Username() == "" {
		return ErrMissingUsername
	}
	if it, ok := intent.(FirstTimeSetup); ok {
		if it.Method != apiclient.MethodApp && it.Method != apiclient.MethodEmail {
			return ErrUnknownMethod
		}
	}
	return nil
}
