// Package qrcode renders TOTP provisioning URIs (otpauth://...) as QR code
// images so an authenticator app can scan the shared secret during 2FA
// enrollment.
//
// The package is a thin wrapper around skip2/go-qrcode; it does not parse or
// validate the provisioning URI itself, the backend owns that format.
package qrcode
