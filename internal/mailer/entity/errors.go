package entity

import "errors"

var (
	// ErrInvalidInput marks a bad topic, sender type or request value.
	ErrInvalidInput = errors.New("invalid input")
	// ErrConfig marks configuration missing for the selected transport.
	ErrConfig = errors.New("configuration error")
	// ErrAuth marks a failure to obtain or use transport credentials.
	ErrAuth = errors.New("authentication error")
	// ErrTransport marks an SMTP or HTTP failure during a send.
	ErrTransport = errors.New("transport error")
)
