package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/dmitrymomot/authkit/pkg/credstore"
)

// TokenSource is the read side of the credential store: the client only
// signs requests, it never writes the token itself.
type TokenSource interface {
	Token() (string, bool)
}

// Client is a typed HTTP client for the authentication backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	log        *slog.Logger

	mu             sync.RWMutex
	onUnauthorized func()
	captchaSiteKey string
}

// Option configures client creation.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client, e.g. to shorten
// timeouts or to inject a test transport. Nil clients are ignored.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// WithTokenSource sets where bearer tokens are read from.
func WithTokenSource(src TokenSource) Option {
	return func(c *Client) {
		if src != nil {
			c.tokens = src
		}
	}
}

// WithLogger attaches a structured logger; nil means slog.Default().
func WithLogger(log *slog.Logger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

// WithUnauthorizedHandler registers the hook fired on any 401 response.
func WithUnauthorizedHandler(fn func()) Option {
	return func(c *Client) {
		c.onUnauthorized = fn
	}
}

// New creates a client for the backend rooted at baseURL (e.g.
// "https://auth.example.com/api").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: 30 * time.Second},
		tokens:     credstore.NewMemoryStore(),
		log:        slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SetUnauthorizedHandler wires the 401 hook after construction. The session
// controller is built on top of the client, so the hook usually cannot exist
// yet when New runs.
func (c *Client) SetUnauthorizedHandler(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

func (c *Client) unauthorizedHandler() func() {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.onUnauthorized
}

// do executes one request/response cycle: marshal the body, sign with the
// bearer token when present, classify the outcome, decode into out.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return &Error{Kind: KindMalformed, cause: err}
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Kind: KindTransport, cause: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if token, ok := c.tokens.Token(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.log.DebugContext(ctx, "request failed", slog.String("path", path), slog.Any("error", err))
		return &Error{Kind: KindTransport, cause: err}
	}
	defer resp.Body.Close() //nolint:errcheck

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Kind: KindTransport, cause: err}
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized:
		// Cross-cutting session eviction; fires uniformly regardless of
		// which method observed the 401.
		if fn := c.unauthorizedHandler(); fn != nil {
			fn()
		}
		return &Error{Kind: KindUnauthorized, Status: resp.StatusCode, Message: extractMessage(data)}
	case resp.StatusCode >= 400:
		return &Error{Kind: KindRejection, Status: resp.StatusCode, Message: extractMessage(data)}
	}

	if out != nil && len(data) > 0 {
		if err := json.Unmarshal(data, out); err != nil {
			return &Error{Kind: KindMalformed, Status: resp.StatusCode, cause: err}
		}
	}
	return nil
}

// extractMessage pulls a human-readable message out of an error body, which
// the backend sends either as plain text or as {"message": ...}.
func extractMessage(data []byte) string {
	trimmed := strings.TrimSpace(string(data))
	if trimmed == "" {
		return ""
	}

	var body errorResponse
	if err := json.Unmarshal(data, &body); err == nil {
		if body.Message != "" {
			return body.Message
		}
		if body.Error != "" {
			return body.Error
		}
		return ""
	}
	return trimmed
}

// Login submits credentials plus a CAPTCHA proof.
func (c *Client) Login(ctx context.Context, username, password, captchaResponse string) (*LoginResponse, error) {
	var out LoginResponse
	if err := c.do(ctx, http.MethodPost, "/auth/signin", loginRequest{
		Username:        username,
		Password:        password,
		CaptchaResponse: captchaResponse,
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Register creates a new account.
func (c *Client) Register(ctx context.Context, req RegisterRequest) (*RegisterResponse, error) {
	var out RegisterResponse
	if err := c.do(ctx, http.MethodPost, "/auth/signup", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SetupTwoFactor asks the backend to issue a provisioning payload for the
// chosen method; for EMAIL this also triggers code delivery.
func (c *Client) SetupTwoFactor(ctx context.Context, username string, method Method) (*TwoFactorSetupResponse, error) {
	var out TwoFactorSetupResponse
	if err := c.do(ctx, http.MethodPost, "/auth/setup-2fa", setupTwoFactorRequest{
		Username: username,
		TfaType:  method,
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyTwoFactor submits a 6-digit code for the given account.
func (c *Client) VerifyTwoFactor(ctx context.Context, username, code string, firstTimeSetup bool) (*TwoFactorVerifyResponse, error) {
	var out TwoFactorVerifyResponse
	if err := c.do(ctx, http.MethodPost, "/auth/verify-2fa", verifyTwoFactorRequest{
		Username:       username,
		Code:           code,
		FirstTimeSetup: firstTimeSetup,
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetUserProfile fetches the authenticated account's profile.
func (c *Client) GetUserProfile(ctx context.Context) (*UserProfile, error) {
	var out UserProfile
	if err := c.do(ctx, http.MethodGet, "/auth/profile", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteAccount permanently removes the authenticated account.
func (c *Client) DeleteAccount(ctx context.Context) error {
	return c.do(ctx, http.MethodPost, "/auth/delete-account", nil, nil)
}

// InitiatePasswordReset requests a reset email. With an identifier it uses
// the unauthenticated forgot-password endpoint; without one it uses the
// bearer-authed variant where the backend already knows the account. The
// response message is generic either way - the client must never learn, nor
// reveal, whether the identifier matched an account.
func (c *Client) InitiatePasswordReset(ctx context.Context, identifier string) (*MessageResponse, error) {
	var out MessageResponse
	if identifier != "" {
		if err := c.do(ctx, http.MethodPost, "/password/forgot-password", forgotPasswordRequest{Username: identifier}, &out); err != nil {
			return nil, err
		}
		return &out, nil
	}
	if err := c.do(ctx, http.MethodPost, "/password/reset-request", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ValidatePasswordResetToken checks a reset token from a reset link.
func (c *Client) ValidatePasswordResetToken(ctx context.Context, token string) (*TokenValidationResponse, error) {
	var out TokenValidationResponse
	if err := c.do(ctx, http.MethodPost, "/password/validate-token", validateTokenRequest{Token: token}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ResetPassword sets a new password using a validated reset token.
func (c *Client) ResetPassword(ctx context.Context, token, newPassword string) (*MessageResponse, error) {
	var out MessageResponse
	if err := c.do(ctx, http.MethodPost, "/password/reset", resetPasswordRequest{
		Token:       token,
		NewPassword: newPassword,
	}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// TfaSettings fetches the profile's two-factor configuration.
func (c *Client) TfaSettings(ctx context.Context) (*TfaSettings, error) {
	var out TfaSettings
	if err := c.do(ctx, http.MethodGet, "/profile/tfa-settings", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateTfaSettings toggles two-factor authentication on the profile.
// Disabling goes straight through; enabling should instead run the
// verification flow so the backend can confirm the user controls the
// second factor.
func (c *Client) UpdateTfaSettings(ctx context.Context, enabled bool) (*TfaSettings, error) {
	var out TfaSettings
	if err := c.do(ctx, http.MethodPut, "/profile/tfa-settings", tfaSettingsRequest{Enabled: enabled}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerifyAndEnableTfa enables two-factor authentication from the profile
// surface by proving control of the second factor in the same request.
func (c *Client) VerifyAndEnableTfa(ctx context.Context, code string, method Method) (*TfaSettings, error) {
	var out verifyAndEnableTfaResponse
	if err := c.do(ctx, http.MethodPost, "/profile/verify-and-enable-tfa", verifyAndEnableTfaRequest{
		Enabled: true,
		Code:    code,
		TfaType: method,
	}, &out); err != nil {
		return nil, err
	}
	return &out.Data, nil
}

// developmentSiteKey is Google's published reCAPTCHA test key, used when the
// backend cannot provide one so development environments keep working.
const developmentSiteKey = "6LeIxAcTAAAAAJcZVRqyHh71UMIEGNQ_MXjiZKhI"

// CaptchaSiteKey returns the backend's CAPTCHA site key, cached after the
// first successful fetch. An unreachable endpoint falls back to the
// development key rather than blocking login entirely.
func (c *Client) CaptchaSiteKey(ctx context.Context) string {
	c.mu.RLock()
	cached := c.captchaSiteKey
	c.mu.RUnlock()
	if cached != "" {
		return cached
	}

	var out captchaKeyResponse
	if err := c.do(ctx, http.MethodGet, "/auth/captcha-site-key", nil, &out); err != nil || out.SiteKey == "" {
		c.log.DebugContext(ctx, "captcha site key unavailable, using development fallback", slog.Any("error", err))
		return developmentSiteKey
	}

	c.mu.Lock()
	c.captchaSiteKey = out.SiteKey
	c.mu.Unlock()
	return out.SiteKey
}

// BaseURL reports the configured backend root.
func (c *Client) BaseURL() string { return c.baseURL }
