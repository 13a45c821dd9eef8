package inbound

import (
	"context"

	"github.com/shandysiswandi/pagemail/internal/mailer/usecase"
	"github.com/shandysiswandi/pagemail/internal/pkg/router"
)

type uc interface {
	Settings(ctx context.Context) usecase.SettingsOutput
	Subject(ctx context.Context, in usecase.SubjectInput) (string, error)
	Preview(ctx context.Context, in usecase.PreviewInput) (*usecase.PreviewOutput, error)
	Send(ctx context.Context, in usecase.SendInput) (*usecase.SendOutput, error)
}

// multipartOverhead is room for form fields and part headers on top of the
// upload limit.
const multipartOverhead = 1 << 20

// RegisterHTTPEndpoint mounts the mailer API. maxUpload bounds the PDF size
// accepted in multipart requests.
func RegisterHTTPEndpoint(r *router.Router, uc uc, maxUpload int64) {
	end := &HTTPEndpoint{uc: uc, maxBody: maxUpload + multipartOverhead}

	r.GET("/api/v1/mailer/config", end.Config)
	r.POST("/api/v1/mailer/subject", end.Subject)
	r.POST("/api/v1/mailer/preview", end.Preview)
	r.POST("/api/v1/mailer/send", end.Send)
}
