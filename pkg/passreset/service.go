package passreset

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/authkit/pkg/apiclient"
	"github.com/dmitrymomot/authkit/pkg/validator"
)

// API is the slice of the backend client the reset flows need.
type API interface {
	InitiatePasswordReset(ctx context.Context, identifier string) (*apiclient.MessageResponse, error)
	ValidatePasswordResetToken(ctx context.Context, token string) (*apiclient.TokenValidationResponse, error)
	ResetPassword(ctx context.Context, token, newPassword string) (*apiclient.MessageResponse, error)
}

// genericRequestMessage is shown after any accepted reset request so the
// response never confirms or denies that the identifier matched an account.
const genericRequestMessage = "If an account exists for that username or email, a password reset link has been sent."

// Service exposes the password-reset operations.
type Service struct {
	api API
	log *slog.Logger
}

// Option configures service creation.
type Option func(*Service)

// WithLogger attaches a structured logger; nil means slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(s *Service) {
		if log != nil {
			s.log = log
		}
	}
}

// New creates a password-reset service.
func New(api API, opts ...Option) *Service {
	s := &Service{
		api: api,
		log: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Request asks for a reset link for the given username or email. The
// returned message is always the generic one, regardless of what the
// backend said about the account.
func (s *Service) Request(ctx context.Context, identifier string) (string, error) {
	if err := validator.Apply(
		validator.RequiredString("identifier", identifier),
	); err != nil {
		return "", err
	}

	if _, err := s.api.InitiatePasswordReset(ctx, identifier); err != nil {
		s.log.DebugContext(ctx, "password reset request failed", slog.Any("error", err))
		return "", err
	}
	return genericRequestMessage, nil
}

// RequestAuthenticated asks for a reset link for the signed-in account; the
// backend resolves the address from the bearer token.
func (s *Service) RequestAuthenticated(ctx context.Context) (string, error) {
	if _, err := s.api.InitiatePasswordReset(ctx, ""); err != nil {
		s.log.DebugContext(ctx, "password reset request failed", slog.Any("error", err))
		return "", err
	}
	return genericRequestMessage, nil
}

// ResetContext is one visit to a reset link. Its validity is decided once,
// at Begin, and never re-checked: a context that started invalid stays
// invalid, and one that completed its reset is spent.
type ResetContext struct {
	svc      *Service
	token    string
	username string
	valid    bool

	mu   sync.Mutex
	done bool
}

// Begin validates the reset token exactly once and returns the resulting
// context. A missing token is invalid without a network call. A transport
// failure is returned alongside an invalid context - the caller may ask the
// user to reopen the link, but this context will not retry.
func (s *Service) Begin(ctx context.Context, token string) (*ResetContext, error) {
	rc := &ResetContext{svc: s, token: token}
	if token == "" {
		return rc, nil
	}

	resp, err := s.api.ValidatePasswordResetToken(ctx, token)
	if err != nil {
		s.log.DebugContext(ctx, "reset token validation failed", slog.Any("error", err))
		return rc, err
	}
	rc.valid = resp.Valid
	rc.username = resp.Username
	return rc, nil
}

// Valid reports whether the token passed its one-time validation.
func (rc *ResetContext) Valid() bool { return rc.valid }

// Username returns the account the token belongs to, when the backend
// disclosed it during validation.
func (rc *ResetContext) Username() string { return rc.username }

// Reset sets the new password using this context's token. The password is
// checked client-side first: at least 8 characters and a matching
// confirmation. The returned message comes from the backend.
func (rc *ResetContext) Reset(ctx context.Context, password, confirm string) (string, error) {
	if !rc.valid {
		return "", ErrTokenInvalid
	}

	rc.mu.Lock()
	defer rc.mu.Unlock()
	if rc.done {
		return "", ErrAlreadyCompleted
	}

	if err := validator.Apply(
		validator.RequiredString("password", password),
		validator.MinLenString("password", password, 8),
		validator.EqualStrings("confirmPassword", confirm, password),
	); err != nil {
		return "", err
	}

	resp, err := rc.svc.api.ResetPassword(ctx, rc.token, password)
	if err != nil {
		rc.svc.log.DebugContext(ctx, "password reset failed", slog.Any("error", err))
		return "", err
	}

	rc.done = true

	msg := resp.Message
	if msg == "" {
		msg = "Password reset successfully. Please sign in with your new password."
	}
	return msg, nil
}
