package transport

import (
	"context"
	"crypto/tls"
	"net/http"
	"time"

	"github.com/shandysiswandi/pagemail/internal/mailer/entity"
	"github.com/shandysiswandi/pagemail/internal/pkg/instrument"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

// sender is one transport path. A failed result comes with the cause for tracing.
type sender interface {
	send(ctx context.Context, msg entity.OutgoingMessage) (entity.SendResult, error)
}

type Dependency struct {
	Instrument instrument.Instrumentation

	// SMTPTLSConfig overrides the STARTTLS client configuration.
	SMTPTLSConfig *tls.Config
	SMTPTimeout   time.Duration

	// GraphBaseURL and GraphAuthorityURL override the public cloud endpoints.
	GraphBaseURL      string
	GraphAuthorityURL string
	HTTPClient        *http.Client
}

// Dispatcher sends OutgoingMessages over the variant chosen at construction.
type Dispatcher struct {
	variant entity.Variant
	sender  sender
	ins     instrument.Instrumentation
}

// New selects the transport path for cfg once.
func New(cfg entity.TransportConfig, dep Dependency) *Dispatcher {
	if dep.Instrument == nil {
		dep.Instrument = instrument.NewNoop()
	}

	variant := cfg.Variant()

	var s sender
	switch variant {
	case entity.VariantGraphAttachments, entity.VariantGraphInline:
		s = newGraphSender(cfg, dep, variant == entity.VariantGraphAttachments)
	default:
		s = newSMTPSender(cfg, dep)
	}

	return &Dispatcher{variant: variant, sender: s, ins: dep.Instrument}
}

// Variant is the transport path in use.
func (d *Dispatcher) Variant() entity.Variant {
	return d.variant
}

// Send performs one delivery attempt. It never retries.
func (d *Dispatcher) Send(ctx context.Context, msg entity.OutgoingMessage) entity.SendResult {
	ctx, span := d.ins.Tracer("mailer.outbound.transport").Start(ctx, "Send")
	defer span.End()

	span.SetAttributes(
		attribute.String("variant", d.variant.String()),
		attribute.Int("images", len(msg.Images)),
	)

	result, err := d.sender.send(ctx, msg)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, result.Message)
	}

	return result
}
