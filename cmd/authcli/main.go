// Command authcli is a terminal client for the two-factor authentication
// backend: sign in (including the 2FA challenge), register, manage the
// profile and reset passwords, all against the same API a browser client
// would use.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/dmitrymomot/authkit/pkg/apiclient"
	"github.com/dmitrymomot/authkit/pkg/authstate"
	"github.com/dmitrymomot/authkit/pkg/config"
	"github.com/dmitrymomot/authkit/pkg/credstore"
	"github.com/dmitrymomot/authkit/pkg/logger"
	"github.com/dmitrymomot/authkit/pkg/nav"
	"github.com/dmitrymomot/authkit/pkg/passreset"
	"github.com/dmitrymomot/authkit/pkg/register"
	"github.com/dmitrymomot/authkit/pkg/twofactor"
	"github.com/dmitrymomot/authkit/pkg/validator"
)

const usage = `Usage: authcli <command>

Commands:
  login            sign in, completing the 2FA challenge when required
  register         create an account, optionally enrolling in 2FA
  profile          show the signed-in account
  enable-2fa       enable two-factor authentication on the profile
  disable-2fa      disable two-factor authentication on the profile
  reconfigure-2fa  re-provision the authenticator app secret
  reset-request    request a password reset link
  reset            complete a password reset from an emailed token
  delete-account   permanently delete the signed-in account
  logout           discard the local session
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(2)
	}

	var cfg appConfig
	if err := config.LoadFile("authcli.yaml", &cfg); err != nil {
		fmt.Fprintf(os.Stderr, "authcli: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(
		logger.WithLevel(cfg.logLevel()),
		logger.WithFormat(cfg.LogFormat),
		logger.WithOutput(os.Stderr),
	)
	logger.SetAsDefault(log)

	app, err := newApp(cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "authcli: %v\n", err)
		os.Exit(1)
	}

	if err := app.run(context.Background(), os.Args[1]); err != nil {
		fmt.Fprintf(os.Stderr, "authcli: %v\n", err)
		os.Exit(1)
	}
}

type app struct {
	cfg      appConfig
	log      *slog.Logger
	client   *apiclient.Client
	tokens   credstore.Store
	views    *nav.Recorder
	sessions *authstate.Controller
	in       *bufio.Reader
}

func newApp(cfg appConfig, log *slog.Logger) (*app, error) {
	tokens, err := credstore.NewFileStore(cfg.tokenPath())
	if err != nil {
		return nil, err
	}

	views := nav.NewRecorder(nav.RouteLogin)
	client := apiclient.New(cfg.BaseURL,
		apiclient.WithTokenSource(tokens),
		apiclient.WithLogger(log),
	)
	sessions := authstate.New(client, tokens, views, authstate.WithLogger(log))
	client.SetUnauthorizedHandler(sessions.HandleUnauthorized)

	return &app{
		cfg:      cfg,
		log:      log,
		client:   client,
		tokens:   tokens,
		views:    views,
		sessions: sessions,
		in:       bufio.NewReader(os.Stdin),
	}, nil
}

func (a *app) run(ctx context.Context, command string) error {
	switch command {
	case "login":
		return a.login(ctx)
	case "register":
		return a.register(ctx)
	case "profile":
		return a.profile(ctx)
	case "enable-2fa":
		return a.enableTfa(ctx)
	case "disable-2fa":
		return a.disableTfa(ctx)
	case "reconfigure-2fa":
		return a.reconfigureTfa(ctx)
	case "reset-request":
		return a.resetRequest(ctx)
	case "reset":
		return a.reset(ctx)
	case "delete-account":
		return a.deleteAccount(ctx)
	case "logout":
		a.sessions.Logout()
		fmt.Println("Signed out.")
		return nil
	default:
		fmt.Fprint(os.Stderr, usage)
		return fmt.Errorf("unknown command %q", command)
	}
}

func (a *app) login(ctx context.Context) error {
	username := a.prompt("Username: ")
	password, err := a.promptSecret("Password: ")
	if err != nil {
		return err
	}

	fmt.Printf("CAPTCHA site key: %s\n", a.client.CaptchaSiteKey(ctx))
	captcha := a.prompt("CAPTCHA response: ")

	resp, err := a.client.Login(ctx, username, password, captcha)
	if err != nil {
		return errors.New(apiclient.UserMessage(err))
	}

	if resp.Token != "" {
		if err := a.sessions.Login(ctx, resp.Token); err != nil {
			return err
		}
		fmt.Println("Signed in.")
		return nil
	}
	if !resp.RequiresTwoFactor {
		return errors.New("sign-in did not produce a session")
	}

	// The backend names the enrolled method when there is exactly one;
	// otherwise the user picks.
	var intent twofactor.Intent
	if resp.TfaType == apiclient.MethodApp {
		intent = twofactor.Reverify{User: username}
	} else {
		intent = twofactor.LoginChallenge{User: username}
	}

	flow, err := twofactor.NewFlow(a.client, a.sessions, a.views, intent, twofactor.WithLogger(a.log))
	if err != nil {
		return err
	}
	if err := a.runVerification(ctx, flow); err != nil {
		return err
	}
	fmt.Println("Signed in.")
	return nil
}

func (a *app) register(ctx context.Context) error {
	form := register.NewForm(a.client, a.views, register.WithLogger(a.log))

	for form.Step() == register.StepIdentity {
		form.SetIdentity(a.prompt("Username: "), a.prompt("Email: "))
		a.reportValidation(form.Next())
	}
	for form.Step() == register.StepPassword {
		password, err := a.promptSecret("Password: ")
		if err != nil {
			return err
		}
		confirm, err := a.promptSecret("Confirm password: ")
		if err != nil {
			return err
		}
		form.SetPassword(password, confirm)
		a.reportValidation(form.Next())
	}

	form.SetEnableTfa(strings.EqualFold(a.prompt("Enable two-factor authentication? [y/N]: "), "y"))
	fmt.Printf("CAPTCHA site key: %s\n", a.client.CaptchaSiteKey(ctx))

	for {
		form.SetCaptcha(a.prompt("CAPTCHA response: "))
		enrollment, err := form.Submit(ctx)
		if err != nil {
			if reason := form.FailureReason(); reason != "" {
				fmt.Println(reason)
				continue
			}
			return err
		}
		if enrollment == nil {
			a.printNotice()
			return nil
		}

		flow, err := twofactor.NewFlow(a.client, a.sessions, a.views, twofactor.FirstTimeSetup{
			User:        enrollment.Username,
			Method:      enrollment.Method,
			SetupSecret: enrollment.SetupSecret,
		}, twofactor.WithLogger(a.log))
		if err != nil {
			return err
		}
		if err := a.runVerification(ctx, flow); err != nil {
			return err
		}
		a.printNotice()
		return nil
	}
}

// runVerification drives a verification flow interactively until it
// succeeds or the user gives up with an empty code.
func (a *app) runVerification(ctx context.Context, flow *twofactor.Flow) error {
	if err := flow.Start(ctx); err != nil {
		fmt.Println(flow.FailureReason())
	}

	for {
		switch flow.State() {
		case twofactor.StateMethodSelection:
			choice := strings.ToUpper(a.prompt("Verification method [APP/EMAIL]: "))
			if err := flow.SelectMethod(ctx, apiclient.Method(choice)); err != nil {
				if reason := flow.FailureReason(); reason != "" {
					fmt.Println(reason)
				} else {
					fmt.Println("Choose APP or EMAIL.")
				}
			}
		case twofactor.StateAwaitingCode:
			a.showSetup(flow)
			code := a.prompt("6-digit code (empty to cancel, 'other' to switch method): ")
			switch {
			case code == "":
				flow.Abort()
				return errors.New("verification cancelled")
			case strings.EqualFold(code, "other"):
				if err := flow.UseOtherMethod(); err != nil {
					fmt.Println("No other method available here.")
				}
			default:
				flow.Paste(code)
				if err := flow.Submit(ctx); err != nil {
					fmt.Println(flow.FailureReason())
				}
			}
		case twofactor.StateSucceeded:
			return nil
		default:
			return errors.New("verification flow ended unexpectedly")
		}
	}
}

// showSetup prints the provisioning payload once, writing the QR code to a
// file when one is configured.
func (a *app) showSetup(flow *twofactor.Flow) {
	uri := flow.SetupURI()
	if uri == "" {
		return
	}
	fmt.Printf("Scan this in your authenticator app:\n  %s\n", uri)
	if a.cfg.QRFile == "" {
		return
	}
	png, err := flow.SetupQR(0)
	if err != nil {
		a.log.Warn("failed to render setup QR code", slog.Any("error", err))
		return
	}
	if err := os.WriteFile(a.cfg.QRFile, png, 0o600); err != nil {
		a.log.Warn("failed to write setup QR code", slog.Any("error", err))
		return
	}
	fmt.Printf("QR code written to %s\n", a.cfg.QRFile)
}

func (a *app) profile(ctx context.Context) error {
	a.sessions.CheckAuth(ctx)
	user, ok := a.sessions.User()
	if !ok {
		return errors.New("not signed in")
	}
	fmt.Printf("Username:    %s\nEmail:       %s\n2FA enabled: %t\n", user.Username, user.Email, user.TfaEnabled)
	return nil
}

func (a *app) enableTfa(ctx context.Context) error {
	user, err := a.requireUser(ctx)
	if err != nil {
		return err
	}
	if user.TfaEnabled {
		return errors.New("two-factor authentication is already enabled")
	}

	flow, err := twofactor.NewFlow(a.client, a.sessions, a.views,
		twofactor.ProfileEnable{User: user.Username}, twofactor.WithLogger(a.log))
	if err != nil {
		return err
	}
	if err := a.runVerification(ctx, flow); err != nil {
		return err
	}

	enabled := true
	a.sessions.SetUser(authstate.UserPatch{TfaEnabled: &enabled})
	a.printNotice()
	return nil
}

// disableTfa goes straight through the settings endpoint; unlike enabling,
// turning 2FA off needs no proof of control over the second factor.
func (a *app) disableTfa(ctx context.Context) error {
	if _, err := a.requireUser(ctx); err != nil {
		return err
	}
	settings, err := a.client.TfaSettings(ctx)
	if err != nil {
		return errors.New(apiclient.UserMessage(err))
	}
	if !settings.Enabled {
		return errors.New("two-factor authentication is not enabled")
	}

	if _, err := a.client.UpdateTfaSettings(ctx, false); err != nil {
		return errors.New(apiclient.UserMessage(err))
	}
	disabled := false
	a.sessions.SetUser(authstate.UserPatch{TfaEnabled: &disabled})
	fmt.Println("Two-factor authentication disabled.")
	return nil
}

func (a *app) reconfigureTfa(ctx context.Context) error {
	user, err := a.requireUser(ctx)
	if err != nil {
		return err
	}

	flow, err := twofactor.NewFlow(a.client, a.sessions, a.views,
		twofactor.ProfileReconfigure{User: user.Username}, twofactor.WithLogger(a.log))
	if err != nil {
		return err
	}
	if err := a.runVerification(ctx, flow); err != nil {
		return err
	}
	a.printNotice()
	return nil
}

func (a *app) resetRequest(ctx context.Context) error {
	resets := passreset.New(a.client, passreset.WithLogger(a.log))

	a.sessions.CheckAuth(ctx)
	var msg string
	var err error
	if a.sessions.IsAuthenticated() {
		msg, err = resets.RequestAuthenticated(ctx)
	} else {
		msg, err = resets.Request(ctx, a.prompt("Username or email: "))
	}
	if err != nil {
		return errors.New(apiclient.UserMessage(err))
	}
	fmt.Println(msg)
	return nil
}

func (a *app) reset(ctx context.Context) error {
	resets := passreset.New(a.client, passreset.WithLogger(a.log))

	rc, err := resets.Begin(ctx, a.prompt("Reset token: "))
	if err != nil {
		return errors.New(apiclient.UserMessage(err))
	}
	if !rc.Valid() {
		return errors.New("this reset link is invalid or has expired; request a new one")
	}
	if rc.Username() != "" {
		fmt.Printf("Resetting password for %s\n", rc.Username())
	}

	for {
		password, err := a.promptSecret("New password: ")
		if err != nil {
			return err
		}
		confirm, err := a.promptSecret("Confirm password: ")
		if err != nil {
			return err
		}
		msg, err := rc.Reset(ctx, password, confirm)
		if err != nil {
			if a.reportValidation(err) {
				continue
			}
			return errors.New(apiclient.UserMessage(err))
		}
		fmt.Println(msg)
		return nil
	}
}

func (a *app) deleteAccount(ctx context.Context) error {
	user, err := a.requireUser(ctx)
	if err != nil {
		return err
	}
	if a.prompt(fmt.Sprintf("Type %q to permanently delete this account: ", user.Username)) != user.Username {
		return errors.New("aborted")
	}

	if err := a.client.DeleteAccount(ctx); err != nil {
		return errors.New(apiclient.UserMessage(err))
	}
	a.sessions.Logout()
	fmt.Println("Account deleted.")
	return nil
}

func (a *app) requireUser(ctx context.Context) (apiclient.UserProfile, error) {
	a.sessions.CheckAuth(ctx)
	user, ok := a.sessions.User()
	if !ok {
		return apiclient.UserProfile{}, errors.New("not signed in")
	}
	return user, nil
}

// printNotice flushes the one-shot message left by the last navigation.
func (a *app) printNotice() {
	if msg, ok := a.views.ConsumeMessage(); ok {
		fmt.Println(msg.Text)
	}
}

// reportValidation prints per-field validation messages and reports whether
// err was a validation error.
func (a *app) reportValidation(err error) bool {
	verrs := validator.ExtractValidationErrors(err)
	if verrs == nil {
		return false
	}
	for _, ve := range verrs {
		fmt.Printf("  %s: %s\n", ve.Field, ve.Message)
	}
	return true
}

func (a *app) prompt(label string) string {
	fmt.Print(label)
	line, _ := a.in.ReadString('\n')
	return strings.TrimSpace(line)
}

func (a *app) promptSecret(label string) (string, error) {
	fmt.Print(label)
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		line, _ := a.in.ReadString('\n')
		return strings.TrimSpace(line), nil
	}
	secret, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", err
	}
	return string(secret), nil
}
