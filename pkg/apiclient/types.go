package apiclient

// Method identifies a second-factor delivery method.
type Method string

const (
	// MethodApp is a TOTP authenticator application.
	MethodApp Method = "APP"
	// MethodEmail is a one-time code delivered by email.
	MethodEmail Method = "EMAIL"
)

// LoginResponse is the result of a credential sign-in. A missing Token with
// RequiresTwoFactor set signals the transition into the verification flow.
type LoginResponse struct {
	Token             string `json:"token,omitempty"`
	RequiresTwoFactor bool   `json:"requiresTwoFactor,omitempty"`
	TfaType           Method `json:"tfaType,omitempty"`
	Username          string `json:"username,omitempty"`
	Email             string `json:"email,omitempty"`
}

// RegisterRequest carries the account-creation fields.
type RegisterRequest struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	CaptchaResponse string `json:"captchaResponse"`
	TfaEnabled      bool   `json:"tfaEnabled"`
}

// RegisterResponse is the result of account creation.
type RegisterResponse struct {
	Success           bool   `json:"success,omitempty"`
	Message           string `json:"message,omitempty"`
	Username          string `json:"username,omitempty"`
	RequiresTwoFactor bool   `json:"requiresTwoFactor,omitempty"`
	TfaSetupSecret    string `json:"tfaSetupSecret,omitempty"`
	TfaType           Method `json:"tfaType,omitempty"`
}

// TwoFactorSetupResponse carries the provisioning payload issued by the
// backend: an otpauth:// URI for APP, opaque for EMAIL.
type TwoFactorSetupResponse struct {
	TfaSetupSecret string `json:"tfaSetupSecret"`
	TfaType        Method `json:"tfaType"`
	Success        bool   `json:"success"`
}

// TwoFactorVerifyResponse is the result of code verification. Token is only
// meaningful for login-time verification; enrollment legs ignore it.
type TwoFactorVerifyResponse struct {
	Token   string `json:"token"`
	Success bool   `json:"success"`
}

// UserProfile is the backend's view of the authenticated account.
type UserProfile struct {
	ID         int64  `json:"id"`
	Username   string `json:"username"`
	Email      string `json:"email"`
	TfaEnabled bool   `json:"tfaEnabled"`
	Role       string `json:"role,omitempty"`
}

// MessageResponse is a bare backend message, deliberately generic for the
// password-reset endpoints so account existence never leaks.
type MessageResponse struct {
	Message string `json:"message"`
}

// TokenValidationResponse is the result of checking a password-reset token.
type TokenValidationResponse struct {
	Valid    bool   `json:"valid"`
	Username string `json:"username"`
}

// TfaSettings reflects the profile's two-factor configuration.
type TfaSettings struct {
	Enabled bool `json:"enabled"`
}

type loginRequest struct {
	Username        string `json:"username"`
	Password        string `json:"password"`
	CaptchaResponse string `json:"captchaResponse"`
}

type setupTwoFactorRequest struct {
	Username string `json:"username"`
	TfaType  Method `json:"tfaType"`
}

type verifyTwoFactorRequest struct {
	Username       string `json:"username"`
	Code           string `json:"code"`
	FirstTimeSetup bool   `json:"firstTimeSetup,omitempty"`
}

type forgotPasswordRequest struct {
	Username string `json:"username"`
}

type validateTokenRequest struct {
	Token string `json:"token"`
}

type resetPasswordRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"newPassword"`
}

type tfaSettingsRequest struct {
	Enabled bool `json:"enabled"`
}

type verifyAndEnableTfaRequest struct {
	Enabled bool   `json:"enabled"`
	Code    string `json:"code"`
	TfaType Method `json:"tfaType"`
}

type verifyAndEnableTfaResponse struct {
	Data TfaSettings `json:"data"`
}

type captchaKeyResponse struct {
	SiteKey string `json:"siteKey"`
}

type errorResponse struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}
