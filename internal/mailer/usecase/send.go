package usecase

import (
	"context"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/shandysiswandi/pagemail/internal/mailer/entity"
	"github.com/shandysiswandi/pagemail/internal/pkg/goerror"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
)

type SendInput struct {
	Topic       string
	Subtopic    string `validate:"required,max=200"`
	Body        string `validate:"required"`
	MaxSize     int    `validate:"oneof=600 800 1024 1280"`
	Quality     int    `validate:"min=10,max=100,step=5"`
	Recipient   string `validate:"omitempty,email"`
	File        *entity.Document
	DocumentKey string `validate:"omitempty,pdfname"`
}

type SendOutput struct {
	ID      int64
	Subject string
	Pages   int
	Variant entity.Variant
	Result  entity.SendResult
}

func (s *Usecase) Send(ctx context.Context, in SendInput) (*SendOutput, error) {
	ctx, span := s.startSpan(ctx, "Send")
	defer span.End()

	in.Subtopic = strings.TrimSpace(in.Subtopic)
	in.Body = strings.TrimSpace(in.Body)
	in.Recipient = strings.TrimSpace(in.Recipient)
	in.DocumentKey = strings.TrimSpace(in.DocumentKey)
	in.MaxSize, in.Quality = withImageDefaults(in.MaxSize, in.Quality)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if len(s.issues) > 0 {
		return nil, goerror.NewMisconfigured(s.issues)
	}

	cfg := s.transport
	if in.Recipient != "" {
		if !cfg.AllowsRecipient(in.Recipient) {
			return nil, goerror.NewInvalidInput(nil, "recipient", "recipient must be one of the configured recipient options")
		}
		cfg = cfg.WithRecipient(in.Recipient)
	}

	subject, err := s.subject(in.Topic, in.Subtopic)
	if err != nil {
		return nil, err
	}

	doc, err := s.source(ctx, in.File, in.DocumentKey)
	if err != nil {
		return nil, err
	}

	pages, err := s.convert(ctx, doc, in.MaxSize, in.Quality)
	if err != nil {
		return nil, err
	}

	msg := BuildMessage(cfg, subject, in.Body, pages)
	out := &SendOutput{
		ID:      s.uid.Generate(),
		Subject: subject,
		Pages:   len(pages),
		Variant: cfg.Variant(),
	}

	out.Result = s.dispatch(ctx, out.ID, out.Variant, msg)
	if !out.Result.Success {
		span.SetStatus(codes.Error, out.Result.Message)
	}

	return out, nil
}

func (s *Usecase) dispatch(ctx context.Context, id int64, variant entity.Variant, msg entity.OutgoingMessage) entity.SendResult {
	if s.sendTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.sendTimeout)
		defer cancel()
	}

	start := time.Now()
	result := s.dispatcher.Send(ctx, msg)

	attrs := []attribute.KeyValue{
		attribute.String("variant", variant.String()),
		attribute.Bool("success", result.Success),
	}
	if s.sends != nil {
		s.sends.Add(ctx, 1, metric.WithAttributes(attrs...))
	}

	logArgs := []any{
		"send_id", strconv.FormatInt(id, 10),
		"variant", variant.String(),
		"to", msg.To,
		"subject", msg.Subject,
		"images", len(msg.Images),
		"latency_ms", time.Since(start).Milliseconds(),
	}
	if result.Success {
		slog.InfoContext(ctx, "email sent", logArgs...)
	} else {
		slog.ErrorContext(ctx, "email send failed", append(logArgs, "error", result.Message)...)
	}

	return result
}

func withImageDefaults(size, quality int) (int, int) {
	if size == 0 {
		size = DefaultMaxSize
	}
	if quality == 0 {
		quality = DefaultQuality
	}
	return size, quality
}
