package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/authkit/pkg/config"
)

type testConfig struct {
	BaseURL string `env:"TEST_AUTH_BASE_URL" envDefault:"http://localhost:8082/api" yaml:"base_url"`
	Timeout int    `env:"TEST_AUTH_TIMEOUT" envDefault:"30" yaml:"timeout"`
}

func TestLoad(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		var cfg testConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "http://localhost:8082/api", cfg.BaseURL)
		assert.Equal(t, 30, cfg.Timeout)
	})

	t.Run("environment overrides defaults", func(t *testing.T) {
		t.Setenv("TEST_AUTH_BASE_URL", "https://auth.example.com/api")

		var cfg testConfig
		require.NoError(t, config.Load(&cfg))
		assert.Equal(t, "https://auth.example.com/api", cfg.BaseURL)
	})

	t.Run("nil pointer rejected", func(t *testing.T) {
		err := config.Load[testConfig](nil)
		assert.ErrorIs(t, err, config.ErrNilPointer)
	})
}

func TestLoadFile(t *testing.T) {
	t.Run("reads yaml values", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "client.yaml")
		require.NoError(t, os.WriteFile(path, []byte("base_url: https://file.example.com/api\ntimeout: 10\n"), 0o600))

		var cfg testConfig
		require.NoError(t, config.LoadFile(path, &cfg))
		assert.Equal(t, "https://file.example.com/api", cfg.BaseURL)
		assert.Equal(t, 10, cfg.Timeout)
	})

	t.Run("environment wins over file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "client.yaml")
		require.NoError(t, os.WriteFile(path, []byte("base_url: https://file.example.com/api\n"), 0o600))
		t.Setenv("TEST_AUTH_BASE_URL", "https://env.example.com/api")

		var cfg testConfig
		require.NoError(t, config.LoadFile(path, &cfg))
		assert.Equal(t, "https://env.example.com/api", cfg.BaseURL)
	})

	t.Run("missing file falls back to environment", func(t *testing.T) {
		var cfg testConfig
		require.NoError(t, config.LoadFile(filepath.Join(t.TempDir(), "absent.yaml"), &cfg))
		assert.Equal(t, "http://localhost:8082/api", cfg.BaseURL)
	})

	t.Run("malformed yaml rejected", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte(":\n\t- not yaml"), 0o600))

		var cfg testConfig
		err := config.LoadFile(path, &cfg)
		assert.ErrorIs(t, err, config.ErrParsingFile)
	})
}
