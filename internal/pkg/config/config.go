package config

import (
	"io"
	"time"
)

// Config is the read-only view over application settings.
//
// Keys are dotted paths ("mailer.smtp.port"). Every getter returns the zero
// value of its type when the key is absent or cannot be converted, so callers
// decide what "unset" means for them (see IsSet).
type Config interface {
	io.Closer

	// IsSet reports whether key has a value from file, environment or defaults.
	IsSet(key string) bool

	GetBool(key string) bool
	GetString(key string) string
	GetInt(key string) int
	GetInt64(key string) int64
	GetFloat64(key string) float64

	// GetSecond interprets an integer value as a number of seconds.
	GetSecond(key string) time.Duration

	// GetBinary decodes a base64 value.
	GetBinary(key string) []byte

	// GetArray returns a list value. Plain strings are accepted in the form
	// <element1>,<element2>,... so lists can be supplied from the environment.
	GetArray(key string) []string

	// GetMap returns a string map. Plain strings are accepted in the form
	// <key1>:<value1>,<key2>:<value2>,...
	GetMap(key string) map[string]string
}
