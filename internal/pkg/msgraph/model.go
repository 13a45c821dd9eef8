package msgraph

import "encoding/base64"

const odataFileAttachment = "#microsoft.graph.fileAttachment"

// SendMailRequest is the body of the sendMail action.
type SendMailRequest struct {
	Message Message `json:"message"`
	// SaveToSentItems is sent as the string "true"/"false".
	SaveToSentItems string `json:"saveToSentItems"`
}

// Message is the message resource submitted with sendMail.
type Message struct {
	Subject      string           `json:"subject"`
	Body         ItemBody         `json:"body"`
	ToRecipients []Recipient      `json:"toRecipients"`
	Attachments  []FileAttachment `json:"attachments,omitempty"`
}

// ItemBody holds message content. ContentType is "HTML" or "Text".
type ItemBody struct {
	ContentType string `json:"contentType"`
	Content     string `json:"content"`
}

// Recipient wraps an email address.
type Recipient struct {
	EmailAddress EmailAddress `json:"emailAddress"`
}

// EmailAddress is a bare address.
type EmailAddress struct {
	Address string `json:"address"`
}

// FileAttachment is a fileAttachment resource. Inline attachments are
// referenced from HTML through cid:ContentID.
type FileAttachment struct {
	ODataType    string `json:"@odata.type"`
	Name         string `json:"name"`
	ContentType  string `json:"contentType"`
	ContentBytes string `json:"contentBytes"`
	ContentID    string `json:"contentId,omitempty"`
	IsInline     bool   `json:"isInline,omitempty"`
}

// NewInlineAttachment returns a fileAttachment marked inline under contentID.
func NewInlineAttachment(name, contentType, contentID string, data []byte) FileAttachment {
	return FileAttachment{
		ODataType:    odataFileAttachment,
		Name:         name,
		ContentType:  contentType,
		ContentBytes: base64.StdEncoding.EncodeToString(data),
		ContentID:    contentID,
		IsInline:     true,
	}
}

// NewHTMLMessage builds a sendMail request with an HTML body for one recipient.
func NewHTMLMessage(subject, html, to string, attachments []FileAttachment) SendMailRequest {
	return SendMailRequest{
		Message: Message{
			Subject:      subject,
			Body:         ItemBody{ContentType: "HTML", Content: html},
			ToRecipients: []Recipient{{EmailAddress: EmailAddress{Address: to}}},
			Attachments:  attachments,
		},
		SaveToSentItems: "true",
	}
}

type errorResponse struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}
