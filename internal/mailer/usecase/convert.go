package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/shandysiswandi/pagemail/internal/mailer/entity"
	"github.com/shandysiswandi/pagemail/internal/pkg/goerror"
	"github.com/shandysiswandi/pagemail/internal/pkg/imaging"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const (
	// DefaultMaxUploadBytes caps source PDFs at 50MB.
	DefaultMaxUploadBytes int64 = 50 << 20

	DefaultMaxSize = 600
	DefaultQuality = 75
	MinQuality     = 10
	MaxQuality     = 100
	QualityStep    = 5
)

// SizeChoices are the accepted bounding box edges in pixels.
var SizeChoices = []int{600, 800, 1024, 1280}

func checkDocument(doc entity.Document, maxBytes int64) error {
	if doc.Name == "" {
		return goerror.NewInvalidInput(nil, "file", "No file uploaded")
	}

	if ext := strings.ToLower(filepath.Ext(doc.Name)); ext != ".pdf" {
		return goerror.NewInvalidInput(nil, "file", "Unsupported file type: "+ext)
	}

	if doc.Size > maxBytes {
		return goerror.NewBusiness(fmt.Sprintf("File size too large (max %dMB)", maxBytes>>20), goerror.CodeTooLarge)
	}

	return nil
}

// convert renders every page of doc, fits it into a maxSize square and
// re-encodes it. Page order is preserved.
func (s *Usecase) convert(ctx context.Context, doc entity.Document, maxSize, quality int) ([]entity.ImagePage, error) {
	ctx, span := s.startSpan(ctx, "convert")
	defer span.End()

	if err := checkDocument(doc, s.converter.MaxUploadBytes); err != nil {
		return nil, err
	}

	rendered, err := s.rasterizer.Render(ctx, doc.Data)
	if errors.Is(err, entity.ErrInvalidInput) {
		slog.WarnContext(ctx, "pdf could not be rendered", "file", doc.Name, "error", err)
		return nil, goerror.NewInvalidInput(nil, "file", "Error converting PDF: "+err.Error())
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		slog.ErrorContext(ctx, "failed to render pdf", "file", doc.Name, "error", err)
		return nil, goerror.NewServer(err)
	}

	pages := make([]entity.ImagePage, 0, len(rendered))
	for i, img := range rendered {
		var buf bytes.Buffer
		if err := imaging.Encode(&buf, imaging.Fit(img, maxSize, maxSize), s.converter.Format, quality); err != nil {
			slog.ErrorContext(ctx, "failed to encode page", "file", doc.Name, "page", i+1, "error", err)
			return nil, goerror.NewServer(err)
		}
		pages = append(pages, entity.ImagePage{
			Index:       i + 1,
			Content:     buf.Bytes(),
			ContentType: s.converter.Format.ContentType(),
		})
	}

	span.SetAttributes(attribute.Int("pages", len(pages)))
	slog.InfoContext(ctx, "pdf converted", "file", doc.Name, "pages", len(pages), "max_size", maxSize, "quality", quality)

	return pages, nil
}

// source resolves the PDF either from the upload or from object storage.
func (s *Usecase) source(ctx context.Context, upload *entity.Document, key string) (entity.Document, error) {
	switch {
	case upload != nil && key != "":
		return entity.Document{}, goerror.NewInvalidInput(nil, "document_key", "Provide either file or document_key, not both")
	case upload != nil:
		return *upload, nil
	case key == "":
		return entity.Document{}, goerror.NewInvalidInput(nil, "file", "No file uploaded")
	case s.documents == nil:
		return entity.Document{}, goerror.NewBusiness("Document storage is not configured", goerror.CodeMisconfigured)
	}

	doc, err := s.documents.Fetch(ctx, key, s.converter.MaxUploadBytes)
	if errors.Is(err, goerror.ErrNotFound) {
		return entity.Document{}, goerror.NewBusiness("Document not found", goerror.CodeNotFound)
	}
	if errors.Is(err, entity.ErrInvalidInput) {
		return entity.Document{}, goerror.NewInvalidInput(nil, "document_key", "Invalid document key")
	}
	if err != nil {
		slog.ErrorContext(ctx, "failed to fetch document", "document_key", key, "error", err)
		return entity.Document{}, goerror.NewServer(err)
	}

	return doc, nil
}
