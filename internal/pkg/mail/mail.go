package mail

import (
	"context"
	"io"
)

// Inline is a MIME part referenced from the HTML body by its Content-ID.
type Inline struct {
	// ContentID is the bare identifier (no angle brackets), e.g. "image1".
	ContentID string
	// Filename is advertised in Content-Disposition.
	Filename string
	// ContentType is the part media type, e.g. "image/png".
	ContentType string
	// Data is the raw (not yet encoded) part content.
	Data []byte
}

// Message represents an email payload.
type Message struct {
	// From is an optional explicit sender; the SMTP default is used when empty.
	From string
	// To lists required recipients.
	To []string
	// Subject is the email subject line. Non-ASCII text is Q-encoded.
	Subject string
	// HTMLBody is the HTML body.
	HTMLBody string
	// TextBody is used when HTMLBody is empty.
	TextBody string
	// Inline lists parts embedded in the HTML body.
	Inline []Inline
}

// Mail abstracts an email transport.
type Mail interface {
	io.Closer
	// Send dispatches the given message.
	Send(ctx context.Context, msg Message) error
}
