package entity

// ImagePage is one rendered PDF page.
type ImagePage struct {
	// Index is 1-based and dense across a document.
	Index       int
	Content     []byte
	ContentType string
}

// InlineImage is an image attached to an OutgoingMessage under a Content-ID.
type InlineImage struct {
	ContentID   string
	Filename    string
	ContentType string
	Content     []byte
}

// OutgoingMessage is a fully composed email. It is built once per send and
// not modified afterwards.
type OutgoingMessage struct {
	From     string
	To       string
	Subject  string
	HTMLBody string
	// Images is empty when pages are embedded in HTMLBody as data URIs.
	Images []InlineImage
}

// SendResult reports the outcome of one dispatch.
type SendResult struct {
	Success bool
	Message string
}

const sentMessage = "Email sent successfully!"

// Sent is the result of a successful dispatch.
func Sent() SendResult {
	return SendResult{Success: true, Message: sentMessage}
}

// Failed is the result of a failed dispatch.
func Failed(msg string) SendResult {
	return SendResult{Success: false, Message: msg}
}

// Document is a source PDF, uploaded or fetched from object storage.
// Data may be nil when Size already exceeds the upload limit.
type Document struct {
	Name string
	Size int64
	Data []byte
}
