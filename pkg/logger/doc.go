// Package logger provides a small factory over log/slog used across the
// client packages.
//
// Defaults are production-safe (JSON, INFO); WithDevelopment switches to
// text output at debug level:
//
//	log := logger.New(logger.WithDevelopment("authcli"))
//	logger.SetAsDefault(log)
package logger
