package usecase

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"testing"

	"github.com/shandysiswandi/pagemail/internal/mailer/entity"
	"github.com/shandysiswandi/pagemail/internal/pkg/goerror"
	"github.com/shandysiswandi/pagemail/internal/pkg/validator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func requireCode(t *testing.T, err error, code goerror.Code) *goerror.Error {
	t.Helper()

	var gerr *goerror.Error
	require.True(t, errors.As(err, &gerr), "expected goerror, got %v", err)
	assert.Equal(t, code, gerr.Code())
	return gerr
}

// fieldsOf returns the per-field messages of validator and goerror failures.
func fieldsOf(err error) map[string]string {
	var verr validator.V10ValidationError
	if errors.As(err, &verr) {
		return verr.Values()
	}
	var gerr *goerror.Error
	if errors.As(err, &gerr) {
		return gerr.Fields()
	}
	return nil
}

func validSend() SendInput {
	return SendInput{
		Topic:    "Onc",
		Subtopic: "Trials",
		Body:     "See attached pages",
		MaxSize:  600,
		Quality:  75,
		File:     pdfUpload(),
	}
}

func TestUsecase_Send(t *testing.T) {
	t.Parallel()

	f := newFixture(t, smtpConfig(), false)
	f.rasterizer.On("Render", mock.Anything, pdfUpload().Data).
		Return([]image.Image{page(1200, 1600), page(300, 200)}, nil).Once()

	var sent entity.OutgoingMessage
	f.dispatcher.On("Send", mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { sent = args.Get(1).(entity.OutgoingMessage) }).
		Return(entity.Sent()).Once()

	out, err := f.uc.Send(context.Background(), validSend())
	require.NoError(t, err)

	assert.Equal(t, int64(42), out.ID)
	assert.Equal(t, "2024-05-17 Onc Trials", out.Subject)
	assert.Equal(t, 2, out.Pages)
	assert.Equal(t, entity.VariantSMTP, out.Variant)
	assert.True(t, out.Result.Success)
	assert.Equal(t, "Email sent successfully!", out.Result.Message)

	assert.Equal(t, "team@x.io", sent.To)
	assert.Equal(t, "2024-05-17 Onc Trials", sent.Subject)
	require.Len(t, sent.Images, 2)
	assert.Equal(t, "image1", sent.Images[0].ContentID)

	first, err := png.Decode(bytes.NewReader(sent.Images[0].Content))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(450, 600), first.Bounds().Size())

	second, err := png.Decode(bytes.NewReader(sent.Images[1].Content))
	require.NoError(t, err)
	assert.Equal(t, image.Pt(300, 200), second.Bounds().Size())
}

func TestUsecase_Send_FailedResult(t *testing.T) {
	t.Parallel()

	f := newFixture(t, graphConfig(true), false)
	f.rasterizer.On("Render", mock.Anything, mock.Anything).Return([]image.Image{page(10, 10)}, nil).Once()
	f.dispatcher.On("Send", mock.Anything, mock.MatchedBy(func(m entity.OutgoingMessage) bool {
		return len(m.Images) == 1 && m.Images[0].ContentID == "page1"
	})).Return(entity.Failed("Microsoft Graph API error with attachments: graph: 401")).Once()

	out, err := f.uc.Send(context.Background(), validSend())
	require.NoError(t, err)
	assert.False(t, out.Result.Success)
	assert.Equal(t, entity.VariantGraphAttachments, out.Variant)
	assert.Contains(t, out.Result.Message, "401")
}

func TestUsecase_Send_Recipient(t *testing.T) {
	t.Parallel()

	f := newFixture(t, smtpConfig(), false)
	f.rasterizer.On("Render", mock.Anything, mock.Anything).Return([]image.Image{page(10, 10)}, nil).Once()
	f.dispatcher.On("Send", mock.Anything, mock.MatchedBy(func(m entity.OutgoingMessage) bool {
		return m.To == "qa@x.io"
	})).Return(entity.Sent()).Once()

	in := validSend()
	in.Recipient = "qa@x.io"
	_, err := f.uc.Send(context.Background(), in)
	require.NoError(t, err)

	in.Recipient = "someone@else.io"
	_, err = f.uc.Send(context.Background(), in)
	gerr := requireCode(t, err, goerror.CodeInvalidInput)
	assert.Contains(t, gerr.Fields(), "recipient")
}

func TestUsecase_Send_Rejects(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		cfg   entity.TransportConfig
		input func(in *SendInput)
		code  goerror.Code
		field string
	}{
		{
			name:  "missing subtopic and body",
			cfg:   smtpConfig(),
			input: func(in *SendInput) { in.Subtopic, in.Body = " ", "" },
			code:  goerror.CodeInvalidInput,
			field: "body",
		},
		{
			name:  "size not offered",
			cfg:   smtpConfig(),
			input: func(in *SendInput) { in.MaxSize = 700 },
			code:  goerror.CodeInvalidInput,
			field: "max_size",
		},
		{
			name:  "quality off step",
			cfg:   smtpConfig(),
			input: func(in *SendInput) { in.Quality = 77 },
			code:  goerror.CodeInvalidInput,
			field: "quality",
		},
		{
			name:  "invalid topic",
			cfg:   smtpConfig(),
			input: func(in *SendInput) { in.Topic = "Derm" },
			code:  goerror.CodeInvalidInput,
			field: "topic",
		},
		{
			name:  "misconfigured",
			cfg:   entity.TransportConfig{SenderType: entity.SenderGmail, SMTPHosts: entity.DefaultSMTPHosts},
			input: func(*SendInput) {},
			code:  goerror.CodeMisconfigured,
			field: "sender_password",
		},
		{
			name:  "not a pdf",
			cfg:   smtpConfig(),
			input: func(in *SendInput) { in.File.Name = "report.docx" },
			code:  goerror.CodeInvalidInput,
			field: "file",
		},
		{
			name:  "too large",
			cfg:   smtpConfig(),
			input: func(in *SendInput) { in.File.Size = DefaultMaxUploadBytes + 1 },
			code:  goerror.CodeTooLarge,
		},
		{
			name:  "no source",
			cfg:   smtpConfig(),
			input: func(in *SendInput) { in.File = nil },
			code:  goerror.CodeInvalidInput,
			field: "file",
		},
		{
			name:  "both sources",
			cfg:   smtpConfig(),
			input: func(in *SendInput) { in.DocumentKey = "docs/report.pdf" },
			code:  goerror.CodeInvalidInput,
			field: "document_key",
		},
		{
			name:  "storage disabled",
			cfg:   smtpConfig(),
			input: func(in *SendInput) { in.File, in.DocumentKey = nil, "docs/report.pdf" },
			code:  goerror.CodeMisconfigured,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			f := newFixture(t, tt.cfg, false)
			in := validSend()
			tt.input(&in)

			out, err := f.uc.Send(context.Background(), in)
			assert.Nil(t, out)
			requireCode(t, err, tt.code)
			if tt.field != "" {
				assert.Contains(t, fieldsOf(err), tt.field)
			}
		})
	}
}

func TestUsecase_Send_FileMessages(t *testing.T) {
	t.Parallel()

	f := newFixture(t, smtpConfig(), false)

	in := validSend()
	in.File.Name = "scan.PNG"
	_, err := f.uc.Send(context.Background(), in)
	gerr := requireCode(t, err, goerror.CodeInvalidInput)
	assert.Equal(t, "Unsupported file type: .png", gerr.Fields()["file"])

	in = validSend()
	in.File.Size = DefaultMaxUploadBytes + 1
	_, err = f.uc.Send(context.Background(), in)
	gerr = requireCode(t, err, goerror.CodeTooLarge)
	assert.Equal(t, "File size too large (max 50MB)", gerr.Msg())
}

func TestUsecase_Send_RenderErrors(t *testing.T) {
	t.Parallel()

	f := newFixture(t, smtpConfig(), false)
	f.rasterizer.On("Render", mock.Anything, mock.Anything).
		Return(nil, fmt.Errorf("%w: pdftoppm: Syntax Error", entity.ErrInvalidInput)).Once()
	f.rasterizer.On("Render", mock.Anything, mock.Anything).
		Return(nil, errors.New("exec: pdftoppm: not found")).Once()

	_, err := f.uc.Send(context.Background(), validSend())
	gerr := requireCode(t, err, goerror.CodeInvalidInput)
	assert.Contains(t, gerr.Fields()["file"], "Error converting PDF")

	_, err = f.uc.Send(context.Background(), validSend())
	requireCode(t, err, goerror.CodeInternal)
}

func TestUsecase_Send_DocumentKey(t *testing.T) {
	t.Parallel()

	doc := entity.Document{Name: "report.pdf", Size: 4, Data: []byte("%PDF")}

	f := newFixture(t, smtpConfig(), true)
	f.documents.On("Fetch", mock.Anything, "docs/report.pdf", DefaultMaxUploadBytes).Return(doc, nil).Once()
	f.documents.On("Fetch", mock.Anything, "docs/missing.pdf", DefaultMaxUploadBytes).Return(entity.Document{}, goerror.ErrNotFound).Once()
	f.rasterizer.On("Render", mock.Anything, doc.Data).Return([]image.Image{page(10, 10)}, nil).Once()
	f.dispatcher.On("Send", mock.Anything, mock.Anything).Return(entity.Sent()).Once()

	in := validSend()
	in.File, in.DocumentKey = nil, "docs/report.pdf"
	out, err := f.uc.Send(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, 1, out.Pages)

	in.DocumentKey = "docs/missing.pdf"
	_, err = f.uc.Send(context.Background(), in)
	requireCode(t, err, goerror.CodeNotFound)

	in.DocumentKey = "docs/readme.txt"
	_, err = f.uc.Send(context.Background(), in)
	requireCode(t, err, goerror.CodeInvalidInput)
	assert.Equal(t, "DocumentKey must be a PDF file", fieldsOf(err)["document_key"])
}

func TestUsecase_Send_Twice(t *testing.T) {
	t.Parallel()

	f := newFixture(t, smtpConfig(), false)
	f.rasterizer.On("Render", mock.Anything, mock.Anything).Return([]image.Image{page(10, 10)}, nil).Twice()
	f.dispatcher.On("Send", mock.Anything, mock.Anything).Return(entity.Sent()).Twice()

	for range 2 {
		out, err := f.uc.Send(context.Background(), validSend())
		require.NoError(t, err)
		assert.True(t, out.Result.Success)
	}
}

func TestUsecase_Preview(t *testing.T) {
	t.Parallel()

	f := newFixture(t, smtpConfig(), false)
	f.rasterizer.On("Render", mock.Anything, mock.Anything).Return([]image.Image{page(10, 10), page(10, 10)}, nil).Once()

	out, err := f.uc.Preview(context.Background(), PreviewInput{Topic: "No Date", Subtopic: "Draft", Body: "Hi", File: pdfUpload()})
	require.NoError(t, err)

	assert.Equal(t, "Draft", out.Subject)
	assert.Equal(t, "GMAIL SMTP", out.Transport)
	assert.Equal(t, 2, out.Pages)
	assert.NotContains(t, out.HTML, "cid:")
	assert.Contains(t, out.HTML, "data:image/png;base64,")
	f.dispatcher.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestUsecase_Settings(t *testing.T) {
	t.Parallel()

	f := newFixture(t, graphConfig(false), false)
	got := f.uc.Settings(context.Background())

	assert.Equal(t, "Microsoft Graph API (Base64 encoding)", got.Transport)
	assert.Equal(t, entity.VariantGraphInline, got.Variant)
	assert.Equal(t, []string{"", "Non-Onc", "Onc", "No Date"}, got.Topics)
	assert.Equal(t, []int{600, 800, 1024, 1280}, got.SizeChoices)
	assert.Equal(t, QualityRange{Min: 10, Max: 100, Step: 5, Default: 75}, got.Quality)
	assert.Equal(t, "png", got.Format)
	assert.Equal(t, int64(50), got.MaxUploadMB)
	assert.Empty(t, got.Issues)

	broken := newFixture(t, entity.TransportConfig{SenderType: entity.SenderMicrosoftGraph}, false)
	assert.Len(t, broken.uc.Settings(context.Background()).Issues, 5)
}
