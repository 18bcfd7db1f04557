package config

import "errors"

var (
	// ErrParsing indicates environment variables could not be parsed.
	ErrParsing = errors.New("config.parsing_failed")

	// ErrFile indicates the YAML config file could not be read or decoded.
	ErrFile = errors.New("config.file_invalid")

	// ErrInvalid indicates the resulting configuration fails validation.
	ErrInvalid = errors.New("config.invalid")
)
