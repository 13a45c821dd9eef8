package inbound

import (
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"strconv"

	"github.com/shandysiswandi/pagemail/internal/mailer/entity"
	"github.com/shandysiswandi/pagemail/internal/mailer/usecase"
	"github.com/shandysiswandi/pagemail/internal/pkg/goerror"
	"github.com/shandysiswandi/pagemail/internal/pkg/router"
)

// HTTPEndpoint exposes the mailer form as a JSON and multipart API.
type HTTPEndpoint struct {
	uc      uc
	maxBody int64
}

// Config reports the active transport, form choices and configuration issues.
func (h *HTTPEndpoint) Config(r *router.Request) (any, error) {
	out := h.uc.Settings(r.Context())

	return ConfigResponse{
		Transport:        out.Transport,
		Variant:          out.Variant.String(),
		Sender:           out.Sender,
		Recipient:        out.Recipient,
		RecipientOptions: out.RecipientOptions,
		Topics:           out.Topics,
		SizeChoices:      out.SizeChoices,
		DefaultSize:      out.DefaultSize,
		Quality: QualityResponse{
			Min:     out.Quality.Min,
			Max:     out.Quality.Max,
			Step:    out.Quality.Step,
			Default: out.Quality.Default,
		},
		Format:      out.Format,
		MaxUploadMB: out.MaxUploadMB,
		Issues:      out.Issues,
	}, nil
}

func (h *HTTPEndpoint) Subject(r *router.Request) (any, error) {
	var req SubjectRequest
	if err := r.DecodeBody(&req); err != nil {
		return nil, err
	}

	subject, err := h.uc.Subject(r.Context(), usecase.SubjectInput{
		Topic:    req.Topic,
		Subtopic: req.Subtopic,
	})
	if err != nil {
		return nil, err
	}

	return SubjectResponse{Subject: subject}, nil
}

// Preview renders the email without sending it.
func (h *HTTPEndpoint) Preview(r *router.Request) (any, error) {
	ctx := r.Context()

	form, err := h.parseForm(ctx, r)
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.Preview(ctx, usecase.PreviewInput{
		Topic:       form.topic,
		Subtopic:    form.subtopic,
		Body:        form.body,
		MaxSize:     form.maxSize,
		Quality:     form.quality,
		File:        form.file,
		DocumentKey: form.documentKey,
	})
	if err != nil {
		return nil, err
	}

	return PreviewResponse{
		Subject:   resp.Subject,
		Transport: resp.Transport,
		Pages:     resp.Pages,
		HTML:      resp.HTML,
	}, nil
}

// Send converts the document and delivers it over the configured transport.
func (h *HTTPEndpoint) Send(r *router.Request) (any, error) {
	ctx := r.Context()

	form, err := h.parseForm(ctx, r)
	if err != nil {
		return nil, err
	}

	resp, err := h.uc.Send(ctx, usecase.SendInput{
		Topic:       form.topic,
		Subtopic:    form.subtopic,
		Body:        form.body,
		MaxSize:     form.maxSize,
		Quality:     form.quality,
		Recipient:   r.FormString("recipient"),
		File:        form.file,
		DocumentKey: form.documentKey,
	})
	if err != nil {
		return nil, err
	}

	return SendResponse{
		ID:      strconv.FormatInt(resp.ID, 10),
		Success: resp.Result.Success,
		Result:  resp.Result.Message,
		Subject: resp.Subject,
		Pages:   resp.Pages,
		Variant: resp.Variant.String(),
	}, nil
}

type mailForm struct {
	topic       string
	subtopic    string
	body        string
	maxSize     int
	quality     int
	file        *entity.Document
	documentKey string
}

func (h *HTTPEndpoint) parseForm(ctx context.Context, r *router.Request) (mailForm, error) {
	if err := r.ParseMultipart(h.maxBody); err != nil {
		return mailForm{}, err
	}

	maxSize, err := r.FormInt("max_size", usecase.DefaultMaxSize)
	if err != nil {
		return mailForm{}, err
	}

	quality, err := r.FormInt("quality", usecase.DefaultQuality)
	if err != nil {
		return mailForm{}, err
	}

	file, err := readUpload(ctx, r.UploadedFile("file"))
	if err != nil {
		return mailForm{}, err
	}

	return mailForm{
		topic:       r.FormString("topic"),
		subtopic:    r.FormString("subtopic"),
		body:        r.FormString("body"),
		maxSize:     maxSize,
		quality:     quality,
		file:        file,
		documentKey: r.FormString("document_key"),
	}, nil
}

func readUpload(ctx context.Context, fh *multipart.FileHeader) (*entity.Document, error) {
	if fh == nil {
		return nil, nil
	}

	f, err := fh.Open()
	if err != nil {
		return nil, goerror.NewInvalidFormat("Uploaded file could not be read")
	}
	defer func() {
		if err := f.Close(); err != nil {
			slog.ErrorContext(ctx, "failed to close uploaded file", "error", err)
		}
	}()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, goerror.NewInvalidFormat("Uploaded file could not be read")
	}

	return &entity.Document{Name: fh.Filename, Size: fh.Size, Data: data}, nil
}
