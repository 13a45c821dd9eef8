package inbound

import "net/http"

type QualityResponse struct {
	Min     int `json:"min"`
	Max     int `json:"max"`
	Step    int `json:"step"`
	Default int `json:"default"`
}

type ConfigResponse struct {
	Transport        string            `json:"transport"`
	Variant          string            `json:"variant"`
	Sender           string            `json:"sender"`
	Recipient        string            `json:"recipient"`
	RecipientOptions []string          `json:"recipient_options"`
	Topics           []string          `json:"topics"`
	SizeChoices      []int             `json:"size_choices"`
	DefaultSize      int               `json:"default_size"`
	Quality          QualityResponse   `json:"quality"`
	Format           string            `json:"format"`
	MaxUploadMB      int64             `json:"max_upload_mb"`
	Issues           map[string]string `json:"issues,omitempty"`
}

type SubjectRequest struct {
	Topic    string `json:"topic"`
	Subtopic string `json:"subtopic"`
}

type SubjectResponse struct {
	Subject string `json:"subject"`
}

type PreviewResponse struct {
	Subject   string `json:"subject"`
	Transport string `json:"transport"`
	Pages     int    `json:"pages"`
	HTML      string `json:"html"`
}

// SendResponse carries the delivery outcome. A failed delivery is reported
// with 502 and the transport's message.
type SendResponse struct {
	ID      string `json:"id"`
	Success bool   `json:"success"`
	Result  string `json:"message"`
	Subject string `json:"subject"`
	Pages   int    `json:"pages"`
	Variant string `json:"variant"`
}

func (s SendResponse) StatusCode() int {
	if !s.Success {
		return http.StatusBadGateway
	}
	return http.StatusOK
}

func (s SendResponse) Message() string {
	return s.Result
}
