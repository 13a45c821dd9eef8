package usecase

import (
	"context"
	"image"
	"log/slog"
	"time"

	"github.com/shandysiswandi/pagemail/internal/mailer/entity"
	"github.com/shandysiswandi/pagemail/internal/pkg/clock"
	"github.com/shandysiswandi/pagemail/internal/pkg/imaging"
	"github.com/shandysiswandi/pagemail/internal/pkg/instrument"
	"github.com/shandysiswandi/pagemail/internal/pkg/uid"
	"github.com/shandysiswandi/pagemail/internal/pkg/validator"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

type repoRasterizer interface {
	Render(ctx context.Context, pdf []byte) ([]image.Image, error)
}

type repoDispatcher interface {
	Send(ctx context.Context, msg entity.OutgoingMessage) entity.SendResult
}

type repoDocument interface {
	Fetch(ctx context.Context, key string, maxBytes int64) (entity.Document, error)
}

// ConverterConfig controls how pages are re-encoded.
type ConverterConfig struct {
	Format         imaging.Format
	MaxUploadBytes int64
}

type Usecase struct {
	transport   entity.TransportConfig
	issues      map[string]string
	converter   ConverterConfig
	sendTimeout time.Duration

	clock      clock.Clocker
	validator  validator.Validator
	uid        uid.NumberID
	ins        instrument.Instrumentation
	rasterizer repoRasterizer
	dispatcher repoDispatcher
	documents  repoDocument

	sends metric.Int64Counter
}

type Dependency struct {
	Transport   entity.TransportConfig
	Converter   ConverterConfig
	SendTimeout time.Duration

	Clock      clock.Clocker
	Validator  validator.Validator
	UID        uid.NumberID
	Instrument instrument.Instrumentation
	Rasterizer repoRasterizer
	Dispatcher repoDispatcher
	// Documents is nil when object storage is disabled.
	Documents repoDocument
}

func NewMailer(dep Dependency) *Usecase {
	if dep.Converter.Format == "" {
		dep.Converter.Format = imaging.PNG
	}
	if dep.Converter.MaxUploadBytes <= 0 {
		dep.Converter.MaxUploadBytes = DefaultMaxUploadBytes
	}

	sends, err := dep.Instrument.Meter("mailer.usecase").Int64Counter("mailer.sends",
		metric.WithDescription("Number of email dispatch attempts by variant and outcome"))
	if err != nil {
		slog.Error("failed to create mailer send counter", "error", err)
	}

	issues := dep.Transport.Validate()
	for key, msg := range issues {
		slog.Error("mailer configuration issue", "key", key, "issue", msg)
	}

	return &Usecase{
		transport:   dep.Transport,
		issues:      issues,
		converter:   dep.Converter,
		sendTimeout: dep.SendTimeout,
		clock:       dep.Clock,
		validator:   dep.Validator,
		uid:         dep.UID,
		ins:         dep.Instrument,
		rasterizer:  dep.Rasterizer,
		dispatcher:  dep.Dispatcher,
		documents:   dep.Documents,
		sends:       sends,
	}
}

func (s *Usecase) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	return s.ins.Tracer("mailer.usecase").Start(ctx, name)
}
