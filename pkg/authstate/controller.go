package authstate

import (
	"context"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/authkit/pkg/apiclient"
	"github.com/dmitrymomot/authkit/pkg/credstore"
	"github.com/dmitrymomot/authkit/pkg/nav"
)

// ProfileAPI is the slice of the backend client the controller needs.
type ProfileAPI interface {
	GetUserProfile(ctx context.Context) (*apiclient.UserProfile, error)
}

// UserPatch is a trusted local amendment to the cached profile, used to
// reflect a just-confirmed backend change (e.g. a 2FA toggle) without a full
// re-fetch. The next real profile fetch overwrites it unconditionally.
type UserPatch struct {
	TfaEnabled *bool
	Email      *string
}

// Controller owns the authentication session state.
type Controller struct {
	api    ProfileAPI
	tokens credstore.Store
	nav    nav.Navigator
	log    *slog.Logger

	mu            sync.RWMutex
	user          *apiclient.UserProfile
	authenticated bool
	loading       bool

	// evictMu serializes 401 evictions so concurrent failing calls
	// produce exactly one redirect.
	evictMu sync.Mutex
}

// Option configures the controller.
type Option func(*Controller)

// WithLogger attaches a structured logger; nil means slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(c *Controller) {
		if log != nil {
			c.log = log
		}
	}
}

// New creates a session controller. The caller should wire
// HandleUnauthorized into the API client's 401 hook so session eviction
// fires from any request, not just the controller's own.
func New(api ProfileAPI, tokens credstore.Store, navigator nav.Navigator, opts ...Option) *Controller {
	c := &Controller{
		api:    api,
		tokens: tokens,
		nav:    navigator,
		log:    slog.Default(),
		// The session is unknown until the first CheckAuth completes.
		loading: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// CheckAuth re-validates the persisted token against the backend.
//
// No persisted token is the ordinary unauthenticated case, not an error,
// and costs no network call. With a token present, a successful profile
// fetch marks the session authenticated; any failure - rejection, expiry,
// transport, malformed body - clears the token and marks it unauthenticated.
func (c *Controller) CheckAuth(ctx context.Context) {
	if _, ok := c.tokens.Token(); !ok {
		c.setSession(nil, false)
		return
	}

	profile, err := c.api.GetUserProfile(ctx)
	if err != nil {
		c.log.DebugContext(ctx, "stored token failed validation, clearing session", slog.Any("error", err))
		if clearErr := c.tokens.Clear(); clearErr != nil {
			c.log.WarnContext(ctx, "failed to clear token", slog.Any("error", clearErr))
		}
		c.setSession(nil, false)
		return
	}

	c.setSession(profile, true)
}

// Login persists the token, optimistically marks the session authenticated,
// then immediately hydrates the profile. When Login returns nil the profile
// is populated; otherwise the token has been cleared and the session is
// unauthenticated - no third state is reachable.
func (c *Controller) Login(ctx context.Context, token string) error {
	if token == "" {
		return ErrEmptyToken
	}

	// Persist before any dependent call so a concurrent CheckAuth cannot
	// observe an authenticated session without a stored token.
	if err := c.tokens.Save(token); err != nil {
		return err
	}

	c.mu.Lock()
	c.authenticated = true
	c.mu.Unlock()

	c.CheckAuth(ctx)

	if !c.IsAuthenticated() {
		return ErrTokenRejected
	}
	return nil
}

// Logout clears the persisted token and cached profile unconditionally and
// returns the user to the login entry point. Safe to call without a session.
func (c *Controller) Logout() {
	c.clearSession()
	c.nav.GoTo(nav.RouteLogin)
}

// HandleUnauthorized is the 401-eviction path, wired into the API client's
// interceptor. It shares Logout's clearing path but skips the redirect when
// the user is already on the login view, so concurrent 401s cannot cause
// redirect loops.
func (c *Controller) HandleUnauthorized() {
	c.evictMu.Lock()
	defer c.evictMu.Unlock()

	if c.nav.Current() == nav.RouteLogin {
		return
	}
	c.clearSession()
	c.nav.GoTo(nav.RouteLogin)
}

// SetUser applies a trusted local patch to the cached profile. This is an
// optimization for just-confirmed backend changes, not a substitute for
// re-validation; the next CheckAuth silently reconciles any disagreement.
func (c *Controller) SetUser(patch UserPatch) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.user == nil {
		return
	}
	if patch.TfaEnabled != nil {
		c.user.TfaEnabled = *patch.TfaEnabled
	}
	if patch.Email != nil {
		c.user.Email = *patch.Email
	}
}

// User returns a copy of the hydrated profile, if any.
func (c *Controller) User() (apiclient.UserProfile, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.user == nil {
		return apiclient.UserProfile{}, false
	}
	return *c.user, true
}

// IsAuthenticated reports whether the backend has confirmed the current
// token within this process lifetime.
func (c *Controller) IsAuthenticated() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.authenticated
}

// Loading reports whether the initial session check is still pending.
func (c *Controller) Loading() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.loading
}

func (c *Controller) setSession(user *apiclient.UserProfile, authenticated bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.user = user
	c.authenticated = authenticated
	c.loading = false
}

// clearSession is the single session-clearing path shared by Logout and the
// 401 interceptor; whichever fires first wins and the second is a no-op.
func (c *Controller) clearSession() {
	if err := c.tokens.Clear(); err != nil {
		c.log.Warn("failed to clear token", slog.Any("error", err))
	}
	c.mu.Lock()
	c.user = nil
	c.authenticated = false
	c.loading = false
	c.mu.Unlock()
}
