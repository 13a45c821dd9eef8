// Package mail builds and delivers MIME email over SMTP.
//
// Messages carry an HTML body and optional inline parts. When inline parts are
// present the message is assembled as multipart/related so HTML can reference
// each part through a cid: URL. Delivery uses STARTTLS and PLAIN auth, and
// failures are classified (ErrAuthentication, *ProtocolError, transport
// errors) so callers can produce a diagnostic per failure kind.
package mail
