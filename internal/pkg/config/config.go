// Package config reads the service settings from a YAML file with
// TRIPMAILER_* environment overrides.
package config

import (
	"io"
	"time"
)

// Config returns zero values for absent or unconvertible keys, so every
// caller can assume a usable default from config.yaml.
type Config interface {
	io.Closer

	GetBool(key string) bool
	GetString(key string) string
	GetInt(key string) int
	GetInt32(key string) int32
	GetUint(key string) uint
	GetFloat64(key string) float64

	// GetSecond reads an integer count of seconds, as in the *_seconds keys.
	GetSecond(key string) time.Duration

	// GetArray accepts a YAML sequence or a comma separated string, the form
	// environment overrides use. Blank elements are dropped.
	GetArray(key string) []string
}
