package main

import (
	"log/slog"
	"os"
	"path/filepath"

	"github.com/dmitrymomot/authkit/pkg/logger"
)

type appConfig struct {
	BaseURL   string        `yaml:"base_url" env:"AUTHKIT_BASE_URL" envDefault:"http://localhost:8082/api"`
	TokenFile string        `yaml:"token_file" env:"AUTHKIT_TOKEN_FILE"`
	QRFile    string        `yaml:"qr_file" env:"AUTHKIT_QR_FILE"`
	LogLevel  string        `yaml:"log_level" env:"AUTHKIT_LOG_LEVEL" envDefault:"warn"`
	LogFormat logger.Format `yaml:"log_format" env:"AUTHKIT_LOG_FORMAT" envDefault:"text"`
}

// tokenPath resolves the token file location, defaulting to a dotfile in the
// user's home directory.
func (c appConfig) tokenPath() string {
	if c.TokenFile != "" {
		return c.TokenFile
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ".authkit-token"
	}
	return filepath.Join(home, ".authkit", "token")
}

func (c appConfig) logLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelWarn
	}
	return level
}
