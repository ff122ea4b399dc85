package config

import (
	"errors"
	"os"
	"sync"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

var defaultEnvLoaded sync.Once

// Load parses environment variables into the provided configuration struct.
//
// The default .env file is loaded once per process before the first parse;
// a missing .env file is not an error. Field mapping follows caarlos0/env
// struct tags:
//
//	type ClientConfig struct {
//	    BaseURL string `env:"AUTH_BASE_URL" envDefault:"http://localhost:8082/api"`
//	}
func Load[T any](v *T) error {
	defaultEnvLoaded.Do(func() {
		// The .env file might not exist and that's ok.
		_ = godotenv.Load()
	})
	if v == nil {
		return ErrNilPointer
	}

	if err := env.Parse(v); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// LoadFile reads a YAML config file into v and layers it between tag
// defaults and explicitly set environment variables: default < file < env.
// A missing file is not an error; the environment alone is a valid source.
func LoadFile[T any](path string, v *T) error {
	if v == nil {
		return ErrNilPointer
	}

	// Defaults first, so fields absent from the file still get them.
	if err := Load(v); err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, v); err != nil {
			return errors.Join(ErrParsingFile, err)
		}
	case os.IsNotExist(err):
		return nil
	default:
		return errors.Join(ErrReadingFile, err)
	}

	// Re-apply only variables actually present in the environment; pointing
	// the default tag at an unused name keeps envDefault from clobbering
	// values the file just set.
	if err := env.ParseWithOptions(v, env.Options{DefaultValueTagName: "envFileDefault"}); err != nil {
		return errors.Join(ErrParsingConfig, err)
	}
	return nil
}

// MustLoad works like Load but panics if configuration loading fails.
// Use for configuration the client cannot start without.
func MustLoad[T any](v *T) {
	if err := Load(v); err != nil {
		panic(err)
	}
}
