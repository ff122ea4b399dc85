package register

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/authkit/pkg/apiclient"
	"github.com/dmitrymomot/authkit/pkg/nav"
	"github.com/dmitrymomot/authkit/pkg/validator"
)

// API is the slice of the backend client the form needs.
type API interface {
	Register(ctx context.Context, req apiclient.RegisterRequest) (*apiclient.RegisterResponse, error)
}

// Step identifies a stage of the registration form.
type Step int

const (
	// StepIdentity collects username and email.
	StepIdentity Step = iota
	// StepPassword collects the password and its confirmation.
	StepPassword
	// StepConfirm collects the CAPTCHA proof and the 2FA enrollment choice.
	StepConfirm
)

// Enrollment is the handoff from a successful registration into first-time
// two-factor setup. The setup secret, when present, was minted by the
// registration call itself and must be used instead of re-provisioning.
type Enrollment struct {
	Username    string
	Method      apiclient.Method
	SetupSecret string
}

// Form drives one registration attempt through its stages. All methods are
// safe for concurrent use.
type Form struct {
	api API
	nav nav.Navigator
	log *slog.Logger

	mu         sync.Mutex
	step       Step
	username   string
	email      string
	password   string
	confirm    string
	captcha    string
	enableTfa  bool
	reason     string
	submitting bool
}

// Option configures form creation.
type Option func(*Form)

// WithLogger attaches a structured logger; nil means slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(f *Form) {
		if log != nil {
			f.log = log
		}
	}
}

// NewForm creates a registration form starting at the identity stage.
func NewForm(api API, navigator nav.Navigator, opts ...Option) *Form {
	f := &Form{
		api: api,
		nav: navigator,
		log: slog.Default(),
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// SetIdentity records the username and email as typed; validation happens
// on Next, so partial input never produces errors mid-keystroke.
func (f *Form) SetIdentity(username, email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.username = username
	f.email = email
}

// SetPassword records the password and its confirmation.
func (f *Form) SetPassword(password, confirm string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.password = password
	f.confirm = confirm
}

// SetCaptcha records the CAPTCHA proof issued by the widget.
func (f *Form) SetCaptcha(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.captcha = token
}

// SetEnableTfa records whether the user opted into two-factor enrollment.
func (f *Form) SetEnableTfa(enabled bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.enableTfa = enabled
}

// Next validates the current stage and advances to the following one. The
// returned error is a validator.ValidationErrors carrying per-field messages
// when the stage is incomplete.
func (f *Form) Next() error {
	f.mu.Lock()
	defer f.mu.Unlock()

	switch f.step {
	case StepIdentity:
		if err := validator.Apply(
			validator.RequiredString("username", f.username),
			validator.MinLenString("username", f.username, 3),
			validator.MaxLenString("username", f.username, 50),
			validator.RequiredString("email", f.email),
			validator.ValidEmail("email", f.email),
		); err != nil {
			return err
		}
		f.step = StepPassword
	case StepPassword:
		if err := validator.Apply(
			validator.RequiredString("password", f.password),
			validator.MinLenString("password", f.password, 6),
			validator.MaxLenString("password", f.password, 100),
			validator.EqualStrings("confirmPassword", f.confirm, f.password),
		); err != nil {
			return err
		}
		f.step = StepConfirm
	default:
		return ErrInvalidStep
	}
	return nil
}

// Back returns to the previous stage, keeping every field as typed.
func (f *Form) Back() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.step > StepIdentity {
		f.step--
	}
}

// Step reports the form's current stage.
func (f *Form) Step() Step {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.step
}

// FailureReason returns the user-facing message from the last rejected
// submission, cleared on the next attempt.
func (f *Form) FailureReason() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.reason
}

// Captcha reports the currently held CAPTCHA proof; empty after a rejected
// submission, signalling the widget must be re-solved.
func (f *Form) Captcha() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.captcha
}

// Submit sends the registration request. It is only valid at the
// confirmation stage with a CAPTCHA proof in hand.
//
// On success with 2FA enrollment the returned Enrollment carries what the
// verification flow needs and the user is taken to the verification view;
// without enrollment the user lands on the login view with a success
// notice. On rejection the CAPTCHA proof is discarded - it is single-use -
// while the identity fields stay for correction.
func (f *Form) Submit(ctx context.Context) (*Enrollment, error) {
	f.mu.Lock()
	if f.submitting {
		f.mu.Unlock()
		return nil, ErrSubmitInFlight
	}
	if f.step != StepConfirm {
		f.mu.Unlock()
		return nil, ErrInvalidStep
	}
	if err := validator.Apply(
		validator.RequiredString("captcha", f.captcha),
	); err != nil {
		f.mu.Unlock()
		return nil, err
	}

	req := apiclient.RegisterRequest{
		Username:        f.username,
		Email:           f.email,
		Password:        f.password,
		CaptchaResponse: f.captcha,
		TfaEnabled:      f.enableTfa,
	}
	f.submitting = true
	f.reason = ""
	f.mu.Unlock()

	resp, err := f.api.Register(ctx, req)

	f.mu.Lock()
	f.submitting = false
	if err != nil {
		f.log.DebugContext(ctx, "registration rejected", slog.Any("error", err))
		f.reason = apiclient.UserMessage(err)
		f.captcha = ""
		f.mu.Unlock()
		return nil, err
	}
	f.mu.Unlock()

	if resp.RequiresTwoFactor {
		enrollment := &Enrollment{
			Username:    req.Username,
			Method:      resp.TfaType,
			SetupSecret: resp.TfaSetupSecret,
		}
		if resp.Username != "" {
			enrollment.Username = resp.Username
		}
		if enrollment.Method == "" {
			enrollment.Method = apiclient.MethodApp
		}
		f.nav.GoTo(nav.RouteVerify)
		return enrollment, nil
	}

	f.nav.GoToWithMessage(nav.RouteLogin, nav.Message{
		Text:     "Registration successful. Please sign in.",
		Severity: nav.SeveritySuccess,
	})
	return nil, nil
}
