package config

import "errors"

var (
	// ErrNilPointer is returned when a nil target is passed to Load.
	ErrNilPointer = errors.New("config: nil pointer passed to Load")

	// ErrParsingConfig is returned when environment parsing fails.
	ErrParsingConfig = errors.New("config: failed to parse environment variables")

	// ErrReadingFile is returned when a config file cannot be read.
	ErrReadingFile = errors.New("config: failed to read config file")

	// ErrParsingFile is returned when a config file is not valid YAML.
	ErrParsingFile = errors.New("config: failed to parse config file")
)
