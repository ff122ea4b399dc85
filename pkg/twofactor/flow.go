package twofactor

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrymomot/authkit/pkg/apiclient"
	"github.com/dmitrymomot/authkit/pkg/nav"
	"github.com/dmitrymomot/authkit/pkg/qrcode"
)

// State is the flow's observable phase.
type State string

const (
	// StateMethodSelection waits for the user to pick APP or EMAIL.
	StateMethodSelection State = "method_selection"
	// StateAwaitingCode waits for a complete six-digit code.
	StateAwaitingCode State = "awaiting_code"
	// StateVerifying has a verification request in flight.
	StateVerifying State = "verifying"
	// StateSucceeded is terminal; the outcome navigation has fired.
	StateSucceeded State = "succeeded"
	// StateAborted is terminal; the flow was abandoned.
	StateAborted State = "aborted"
)

// API is the slice of the backend client the flow needs.
type API interface {
	SetupTwoFactor(ctx context.Context, username string, method apiclient.Method) (*apiclient.TwoFactorSetupResponse, error)
	VerifyTwoFactor(ctx context.Context, username, code string, firstTimeSetup bool) (*apiclient.TwoFactorVerifyResponse, error)
	VerifyAndEnableTfa(ctx context.Context, code string, method apiclient.Method) (*apiclient.TfaSettings, error)
}

// SessionSink receives the session token minted by a successful login-time
// verification. It is the session controller in production.
type SessionSink interface {
	Login(ctx context.Context, token string) error
}

// Flow drives one verification attempt from entry to its terminal state.
// All methods are safe for concurrent use.
type Flow struct {
	api      API
	sessions SessionSink
	nav      nav.Navigator
	log      *slog.Logger

	mu     sync.Mutex
	intent Intent
	state  State
	method apiclient.Method
	secret string // otpauth:// URI for APP provisioning
	code   CodeEntry
	reason string // user-facing message from the last failure

	// generation changes on Abort; async completions carrying an older
	// generation are dropped instead of mutating the newer context.
	generation uuid.UUID
}

// FlowOption configures flow creation.
type FlowOption func(*Flow)

// WithLogger attaches a structured logger; nil means slog.Default().
func WithLogger(log *slog.Logger) FlowOption {
	return func(f *Flow) {
		if log != nil {
			f.log = log
		}
	}
}

// NewFlow creates a verification flow for the given intent. The intent is
// validated here: failing construction (rather than guessing later) is what
// keeps an ambiguous entry from ever reaching the backend.
func NewFlow(api API, sessions SessionSink, navigator nav.Navigator, intent Intent, opts ...FlowOption) (*Flow, error) {
	if err := validateIntent(intent); err != nil {
		return nil, err
	}

	f := &Flow{
		api:        api,
		sessions:   sessions,
		nav:        navigator,
		log:        slog.Default(),
		intent:     intent,
		generation: uuid.New(),
	}
	for _, opt := range opts {
		opt(f)
	}

	switch it := intent.(type) {
	case LoginChallenge:
		f.state = StateMethodSelection
	case Reverify:
		f.state = StateAwaitingCode
		f.method = apiclient.MethodApp
	case FirstTimeSetup:
		f.state = StateAwaitingCode
		f.method = it.Method
		if it.Method == apiclient.MethodApp {
			f.secret = it.SetupSecret
		}
	case ProfileEnable:
		f.state = StateAwaitingCode
		f.method = apiclient.MethodApp
	case ProfileReconfigure:
		f.state = StateAwaitingCode
		f.method = apiclient.MethodApp
	}
	return f, nil
}

// Start performs the entry-time provisioning the intent calls for: nothing
// for login-time verification, a setup request for enrollment intents that
// do not already carry a secret. A provisioning failure drops the flow back
// to method selection with the failure recorded for display.
func (f *Flow) Start(ctx context.Context) error {
	f.mu.Lock()
	if f.state != StateAwaitingCode {
		f.mu.Unlock()
		return nil
	}

	needSetup := false
	switch it := f.intent.(type) {
	case FirstTimeSetup:
		needSetup = it.SetupSecret == ""
	case ProfileEnable, ProfileReconfigure:
		needSetup = true
	}
	if !needSetup {
		f.mu.Unlock()
		return nil
	}

	user := f.intent.Username()
	method := f.method
	gen := f.generation
	f.mu.Unlock()

	return f.provision(ctx, gen, user, method, StateAwaitingCode)
}

// SelectMethod resolves a method-selection state into code entry. EMAIL
// always provisions (that is what triggers code delivery); APP at login time
// does not, because the account's secret already exists server-side.
func (f *Flow) SelectMethod(ctx context.Context, method apiclient.Method) error {
	if method != apiclient.MethodApp && method != apiclient.MethodEmail {
		return ErrUnknownMethod
	}

	f.mu.Lock()
	if f.state != StateMethodSelection {
		f.mu.Unlock()
		return ErrInvalidTransition
	}
	f.method = method
	f.state = StateAwaitingCode
	f.reason = ""

	if method == apiclient.MethodApp {
		f.mu.Unlock()
		return nil
	}

	user := f.intent.Username()
	gen := f.generation
	f.mu.Unlock()

	return f.provision(ctx, gen, user, method, StateMethodSelection)
}

// provision runs the setup request and folds the result back into the flow,
// unless the flow moved on while the request was in flight. failState is
// where a failure lands: method selection when there was a choice to revise,
// code entry otherwise.
func (f *Flow) provision(ctx context.Context, gen uuid.UUID, user string, method apiclient.Method, failState State) error {
	resp, err := f.api.SetupTwoFactor(ctx, user, method)

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.generation != gen {
		return nil
	}
	if err != nil {
		f.log.DebugContext(ctx, "two-factor provisioning failed",
			slog.String("method", string(method)), slog.Any("error", err))
		f.state = failState
		f.reason = apiclient.UserMessage(err)
		return err
	}
	if method == apiclient.MethodApp {
		f.secret = resp.TfaSetupSecret
	}
	return nil
}

// Type feeds one keystroke into the code buffer. Ignored outside code entry.
func (f *Flow) Type(r rune) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateAwaitingCode {
		return
	}
	f.code.Type(r)
}

// Paste feeds pasted text into the code buffer. Ignored outside code entry.
func (f *Flow) Paste(s string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateAwaitingCode {
		return
	}
	f.code.Paste(s)
}

// Backspace edits the code buffer. Ignored outside code entry.
func (f *Flow) Backspace() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateAwaitingCode {
		return
	}
	f.code.Backspace()
}

// Submit sends the entered code to the verify endpoint the intent calls
// for and, on success, performs the intent's outcome: session establishment
// plus dashboard for login-time intents, a redirect with a one-shot notice
// for enrollment intents. A rejected code clears the buffer and returns the
// flow to code entry; a second Submit while one is in flight is refused.
func (f *Flow) Submit(ctx context.Context) error {
	f.mu.Lock()
	switch f.state {
	case StateVerifying:
		f.mu.Unlock()
		return ErrVerificationInFlight
	case StateAwaitingCode:
	default:
		f.mu.Unlock()
		return ErrInvalidTransition
	}
	if !f.code.Complete() {
		f.mu.Unlock()
		return ErrIncompleteCode
	}

	code := f.code.Code()
	user := f.intent.Username()
	method := f.method
	intent := f.intent
	gen := f.generation
	f.state = StateVerifying
	f.reason = ""
	f.mu.Unlock()

	var token string
	var verr error
	switch intent.(type) {
	case ProfileEnable:
		_, verr = f.api.VerifyAndEnableTfa(ctx, code, method)
	case FirstTimeSetup:
		// Enrollment confirmation only: any token in the response is
		// discarded, the user signs in afterwards.
		_, verr = f.api.VerifyTwoFactor(ctx, user, code, true)
	case ProfileReconfigure:
		_, verr = f.api.VerifyTwoFactor(ctx, user, code, false)
	default: // LoginChallenge, Reverify
		var resp *apiclient.TwoFactorVerifyResponse
		resp, verr = f.api.VerifyTwoFactor(ctx, user, code, false)
		if verr == nil {
			token = resp.Token
		}
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.generation != gen || f.state != StateVerifying {
		return nil
	}
	if verr != nil {
		f.log.DebugContext(ctx, "two-factor verification rejected", slog.Any("error", verr))
		f.state = StateAwaitingCode
		f.code.Clear()
		f.reason = apiclient.UserMessage(verr)
		return verr
	}

	switch intent.(type) {
	case LoginChallenge, Reverify:
		if err := f.sessions.Login(ctx, token); err != nil {
			f.state = StateAwaitingCode
			f.code.Clear()
			f.reason = apiclient.UserMessage(err)
			return err
		}
		f.state = StateSucceeded
		f.nav.GoTo(nav.RouteDashboard)
	case FirstTimeSetup:
		f.state = StateSucceeded
		f.nav.GoToWithMessage(nav.RouteLogin, nav.Message{
			Text:     "Two-factor authentication set up successfully. Please sign in.",
			Severity: nav.SeveritySuccess,
		})
	case ProfileEnable:
		f.state = StateSucceeded
		f.nav.GoToWithMessage(nav.RouteProfile, nav.Message{
			Text:     "Two-factor authentication enabled successfully.",
			Severity: nav.SeveritySuccess,
		})
	case ProfileReconfigure:
		f.state = StateSucceeded
		f.nav.GoToWithMessage(nav.RouteProfile, nav.Message{
			Text:     "Authenticator app reconfigured successfully.",
			Severity: nav.SeveritySuccess,
		})
	}
	return nil
}

// UseOtherMethod returns a login-time flow from code entry to method
// selection, discarding the entered digits. Enrollment intents have no
// method to revise, so the call is refused for them.
func (f *Flow) UseOtherMethod() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.state != StateAwaitingCode {
		return ErrInvalidTransition
	}
	switch f.intent.(type) {
	case LoginChallenge, Reverify:
	default:
		return ErrInvalidTransition
	}

	f.state = StateMethodSelection
	f.method = ""
	f.secret = ""
	f.code.Clear()
	f.reason = ""
	return nil
}

// Abort abandons the flow. The generation bump guarantees that any request
// still in flight resolves into silence rather than into this flow's state.
func (f *Flow) Abort() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.generation = uuid.New()
	f.state = StateAborted
	f.code.Clear()
	f.secret = ""
	f.reason = ""
}

// State reports the flow's current phase.
func (f *Flow) State() State {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state
}

// Method reports the selected verification method, empty before selection.
func (f *Flow) Method() apiclient.Method {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.method
}

// SetupURI returns the otpauth:// provisioning URI, empty unless an APP
// enrollment has been provisioned.
func (f *Flow) SetupURI() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.secret
}

// SetupQR renders the provisioning URI as a QR code PNG at the given pixel
// size (0 means the generator default). Fails when no URI is available.
func (f *Flow) SetupQR(size int) ([]byte, error) {
	f.mu.Lock()
	uri := f.secret
	f.mu.Unlock()
	return qrcode.Generate(uri, size)
}

// Code returns the digits entered so far, in slot order.
func (f *Flow) Code() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.code.Code()
}

// CodeComplete reports whether all six digits are entered.
func (f *Flow) CodeComplete() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.code.Complete()
}

// Focus returns the index of the focused code slot.
func (f *Flow) Focus() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.code.Focus()
}

// FailureReason returns the user-facing message from the most recent
// provisioning or verification failure, cleared on the next attempt.
func (f *Flow) FailureReason() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reason
}

// Intent returns the intent this flow was created for.
func (f *Flow) Intent() Intent {
	return f.intent
}
