// Package uid generates identifiers: UUIDv7 strings for correlation IDs and
// Snowflake numbers for send attempts.
package uid

// StringID produces unique string identifiers.
type StringID interface {
	Generate() string
}

// NumberID produces unique, roughly time-ordered numeric identifiers.
type NumberID interface {
	Generate() int64
}
