package persistence

import "errors"

var (
	// ErrConfigCorrupt means the configuration file is missing or does not
	// validate. It is surfaced to callers, never repaired on read.
	ErrConfigCorrupt = errors.New("configuration corrupt")

	// ErrConfigValidation means a partial update was rejected; the stored
	// document is unchanged.
	ErrConfigValidation = errors.New("configuration validation failed")

	ErrInvalidKey = errors.New("invalid cache key")
)
