package usecase

import (
	"context"
	"strings"

	"github.com/shandysiswandi/pagemail/internal/mailer/entity"
	"github.com/shandysiswandi/pagemail/internal/pkg/goerror"
)

type PreviewInput struct {
	Topic       string
	Subtopic    string `validate:"max=200"`
	Body        string
	MaxSize     int `validate:"oneof=600 800 1024 1280"`
	Quality     int `validate:"min=10,max=100,step=5"`
	File        *entity.Document
	DocumentKey string `validate:"omitempty,pdfname"`
}

type PreviewOutput struct {
	Subject   string
	Transport string
	Pages     int
	// HTML embeds every page as a data URI so it renders without attachments.
	HTML string
}

func (s *Usecase) Preview(ctx context.Context, in PreviewInput) (*PreviewOutput, error) {
	ctx, span := s.startSpan(ctx, "Preview")
	defer span.End()

	in.Subtopic = strings.TrimSpace(in.Subtopic)
	in.DocumentKey = strings.TrimSpace(in.DocumentKey)
	in.MaxSize, in.Quality = withImageDefaults(in.MaxSize, in.Quality)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if len(s.issues) > 0 {
		return nil, goerror.NewMisconfigured(s.issues)
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

	images := inlineImages(s.transport.Variant(), pages)

	return &PreviewOutput{
		Subject:   subject,
		Transport: s.transport.Describe(),
		Pages:     len(pages),
		HTML:      ComposeHTML(in.Body, images, entity.StrategyInlineBase64),
	}, nil
}
