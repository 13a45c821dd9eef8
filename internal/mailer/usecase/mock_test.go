package usecase

import (
	"context"
	"image"
	"image/color"
	"testing"
	"time"

	"github.com/shandysiswandi/pagemail/internal/mailer/entity"
	"github.com/shandysiswandi/pagemail/internal/pkg/clock"
	"github.com/shandysiswandi/pagemail/internal/pkg/instrument"
	"github.com/shandysiswandi/pagemail/internal/pkg/validator"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockRasterizer struct{ mock.Mock }

func (m *mockRasterizer) Render(ctx context.Context, pdf []byte) ([]image.Image, error) {
	args := m.Called(ctx, pdf)
	imgs, _ := args.Get(0).([]image.Image)
	return imgs, args.Error(1)
}

type mockDispatcher struct{ mock.Mock }

func (m *mockDispatcher) Send(ctx context.Context, msg entity.OutgoingMessage) entity.SendResult {
	return m.Called(ctx, msg).Get(0).(entity.SendResult)
}

type mockDocuments struct{ mock.Mock }

func (m *mockDocuments) Fetch(ctx context.Context, key string, maxBytes int64) (entity.Document, error) {
	args := m.Called(ctx, key, maxBytes)
	return args.Get(0).(entity.Document), args.Error(1)
}

type fixedID int64

func (f fixedID) Generate() int64 { return int64(f) }

// wednesday is 2024-05-15, two days before a Friday.
var wednesday = time.Date(2024, 5, 15, 9, 30, 0, 0, time.UTC)

func smtpConfig() entity.TransportConfig {
	return entity.TransportConfig{
		SenderType:       entity.SenderGmail,
		SMTPHosts:        entity.DefaultSMTPHosts,
		SMTPPort:         entity.DefaultSMTPPort,
		SenderEmail:      "sender@x.io",
		SenderPassword:   "app-password",
		RecipientEmail:   "team@x.io",
		RecipientOptions: []string{"qa@x.io"},
	}
}

func graphConfig(useMIME bool) entity.TransportConfig {
	return entity.TransportConfig{
		SenderType:         entity.SenderMicrosoftGraph,
		SMTPHosts:          entity.DefaultSMTPHosts,
		SenderEmail:        "sender@x.io",
		RecipientEmail:     "team@x.io",
		TenantID:           "tenant",
		ClientID:           "client",
		ClientSecret:       "secret",
		UseMIMEAttachments: useMIME,
	}
}

type fixture struct {
	uc         *Usecase
	rasterizer *mockRasterizer
	dispatcher *mockDispatcher
	documents  *mockDocuments
}

func newFixture(t *testing.T, cfg entity.TransportConfig, withDocuments bool) fixture {
	t.Helper()

	v, err := validator.NewV10Validator()
	require.NoError(t, err)

	f := fixture{
		rasterizer: new(mockRasterizer),
		dispatcher: new(mockDispatcher),
		documents:  new(mockDocuments),
	}

	dep := Dependency{
		Transport:   cfg,
		SendTimeout: time.Minute,
		Clock:       clock.NewFixed(wednesday),
		Validator:   v,
		UID:         fixedID(42),
		Instrument:  instrument.NewNoop(),
		Rasterizer:  f.rasterizer,
		Dispatcher:  f.dispatcher,
	}
	if withDocuments {
		dep.Documents = f.documents
	}
	f.uc = NewMailer(dep)

	t.Cleanup(func() {
		f.rasterizer.AssertExpectations(t)
		f.dispatcher.AssertExpectations(t)
		f.documents.AssertExpectations(t)
	})

	return f
}

func page(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := range w {
		img.Set(x, h/2, color.Black)
	}
	return img
}

func pdfUpload() *entity.Document {
	data := []byte("%PDF-1.7 fake")
	return &entity.Document{Name: "report.pdf", Size: int64(len(data)), Data: data}
}
