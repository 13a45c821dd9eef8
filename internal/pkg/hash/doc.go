// Package hash provides helpers for hashing and verifying secrets.
//
// The HTTP API stores operator credentials as bcrypt hashes ("user:hash"
// pairs in configuration) and verifies Basic auth passwords against them, so
// plaintext passwords never sit in config files.
package hash
