package inbound

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shandysiswandi/pagemail/internal/mailer/entity"
	"github.com/shandysiswandi/pagemail/internal/mailer/usecase"
	"github.com/shandysiswandi/pagemail/internal/pkg/goerror"
	"github.com/shandysiswandi/pagemail/internal/pkg/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockUsecase struct {
	mock.Mock
}

func (m *mockUsecase) Settings(ctx context.Context) usecase.SettingsOutput {
	return m.Called(ctx).Get(0).(usecase.SettingsOutput)
}

func (m *mockUsecase) Subject(ctx context.Context, in usecase.SubjectInput) (string, error) {
	args := m.Called(ctx, in)
	return args.String(0), args.Error(1)
}

func (m *mockUsecase) Preview(ctx context.Context, in usecase.PreviewInput) (*usecase.PreviewOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*usecase.PreviewOutput)
	return out, args.Error(1)
}

func (m *mockUsecase) Send(ctx context.Context, in usecase.SendInput) (*usecase.SendOutput, error) {
	args := m.Called(ctx, in)
	out, _ := args.Get(0).(*usecase.SendOutput)
	return out, args.Error(1)
}

type envelope struct {
	Message string            `json:"message"`
	Data    json.RawMessage   `json:"data"`
	Error   map[string]string `json:"error"`
}

func serve(t *testing.T, uc *mockUsecase, req *http.Request) (int, envelope) {
	t.Helper()

	r := router.NewRouter(router.Config{})
	RegisterHTTPEndpoint(r, uc, 1<<20)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)

	var env envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env), rec.Body.String())
	return rec.Code, env
}

func multipartRequest(t *testing.T, path string, fields map[string]string, file []byte) *http.Request {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	if file != nil {
		part, err := w.CreateFormFile("file", "report.pdf")
		require.NoError(t, err)
		_, err = part.Write(file)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, path, &buf)
	req.Header.Set("Content-Type", w.FormDataContentType())
	return req
}

func TestHTTPEndpoint_Config(t *testing.T) {
	t.Parallel()

	uc := new(mockUsecase)
	uc.On("Settings", mock.Anything).Return(usecase.SettingsOutput{
		Transport:   "GMAIL SMTP",
		Variant:     entity.VariantSMTP,
		Sender:      "sender@gmail.com",
		Topics:      []string{"", "Non-Onc", "Onc", "No Date"},
		SizeChoices: []int{600, 800, 1024, 1280},
		DefaultSize: 600,
		Quality:     usecase.QualityRange{Min: 10, Max: 100, Step: 5, Default: 75},
		Format:      "png",
		MaxUploadMB: 50,
	})

	code, env := serve(t, uc, httptest.NewRequest(http.MethodGet, "/api/v1/mailer/config", nil))
	require.Equal(t, http.StatusOK, code)

	var got ConfigResponse
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, "GMAIL SMTP", got.Transport)
	assert.Equal(t, "smtp", got.Variant)
	assert.Equal(t, QualityResponse{Min: 10, Max: 100, Step: 5, Default: 75}, got.Quality)
	assert.Empty(t, got.Issues)
}

func TestHTTPEndpoint_Subject(t *testing.T) {
	t.Parallel()

	t.Run("ok", func(t *testing.T) {
		t.Parallel()

		uc := new(mockUsecase)
		uc.On("Subject", mock.Anything, usecase.SubjectInput{Topic: "Onc", Subtopic: "Weekly"}).
			Return("Onc Weekly 05/17/2024", nil)

		req := httptest.NewRequest(http.MethodPost, "/api/v1/mailer/subject", strings.NewReader(`{"topic":"Onc","subtopic":"Weekly"}`))
		req.Header.Set("Content-Type", "application/json")
		code, env := serve(t, uc, req)

		require.Equal(t, http.StatusOK, code)
		assert.JSONEq(t, `{"subject":"Onc Weekly 05/17/2024"}`, string(env.Data))
	})

	t.Run("unknown field", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/mailer/subject", strings.NewReader(`{"topic":"Onc","extra":1}`))
		req.Header.Set("Content-Type", "application/json")
		code, _ := serve(t, new(mockUsecase), req)

		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("invalid topic", func(t *testing.T) {
		t.Parallel()

		uc := new(mockUsecase)
		uc.On("Subject", mock.Anything, mock.Anything).
			Return("", goerror.NewInvalidInput(nil, "topic", "Invalid topic type: Cardio"))

		req := httptest.NewRequest(http.MethodPost, "/api/v1/mailer/subject", strings.NewReader(`{"topic":"Cardio"}`))
		req.Header.Set("Content-Type", "application/json")
		code, env := serve(t, uc, req)

		assert.Equal(t, http.StatusUnprocessableEntity, code)
		assert.Equal(t, "Invalid topic type: Cardio", env.Error["topic"])
	})
}

func TestHTTPEndpoint_Send(t *testing.T) {
	t.Parallel()

	pdf := []byte("%PDF-1.7")
	fields := map[string]string{
		"topic":     "Onc",
		"subtopic":  "Weekly",
		"body":      "Hello",
		"quality":   "80",
		"recipient": "ops@example.com",
	}

	t.Run("sent", func(t *testing.T) {
		t.Parallel()

		uc := new(mockUsecase)
		uc.On("Send", mock.Anything, usecase.SendInput{
			Topic:     "Onc",
			Subtopic:  "Weekly",
			Body:      "Hello",
			MaxSize:   usecase.DefaultMaxSize,
			Quality:   80,
			Recipient: "ops@example.com",
			File:      &entity.Document{Name: "report.pdf", Size: int64(len(pdf)), Data: pdf},
		}).Return(&usecase.SendOutput{
			ID:      42,
			Subject: "Onc Weekly 05/17/2024",
			Pages:   2,
			Variant: entity.VariantSMTP,
			Result:  entity.Sent(),
		}, nil)

		code, env := serve(t, uc, multipartRequest(t, "/api/v1/mailer/send", fields, pdf))

		require.Equal(t, http.StatusOK, code)
		assert.Equal(t, "Email sent successfully!", env.Message)

		var got SendResponse
		require.NoError(t, json.Unmarshal(env.Data, &got))
		assert.Equal(t, "42", got.ID)
		assert.True(t, got.Success)
		assert.Equal(t, 2, got.Pages)
		uc.AssertExpectations(t)
	})

	t.Run("transport failure", func(t *testing.T) {
		t.Parallel()

		uc := new(mockUsecase)
		uc.On("Send", mock.Anything, mock.Anything).Return(&usecase.SendOutput{
			Variant: entity.VariantSMTP,
			Result:  entity.Failed("Authentication failed. Please check your email credentials."),
		}, nil)

		code, env := serve(t, uc, multipartRequest(t, "/api/v1/mailer/send", fields, pdf))

		assert.Equal(t, http.StatusBadGateway, code)
		assert.Equal(t, "Authentication failed. Please check your email credentials.", env.Message)
	})

	t.Run("document key", func(t *testing.T) {
		t.Parallel()

		withKey := map[string]string{"subtopic": "Weekly", "body": "Hi", "document_key": "docs/report.pdf"}
		uc := new(mockUsecase)
		uc.On("Send", mock.Anything, mock.MatchedBy(func(in usecase.SendInput) bool {
			return in.File == nil && in.DocumentKey == "docs/report.pdf" && in.Quality == usecase.DefaultQuality
		})).Return(&usecase.SendOutput{Result: entity.Sent()}, nil)

		code, _ := serve(t, uc, multipartRequest(t, "/api/v1/mailer/send", withKey, nil))

		assert.Equal(t, http.StatusOK, code)
		uc.AssertExpectations(t)
	})

	t.Run("non numeric quality", func(t *testing.T) {
		t.Parallel()

		code, env := serve(t, new(mockUsecase), multipartRequest(t, "/api/v1/mailer/send",
			map[string]string{"quality": "high"}, pdf))

		assert.Equal(t, http.StatusUnprocessableEntity, code)
		assert.Contains(t, env.Error, "quality")
	})

	t.Run("json body rejected", func(t *testing.T) {
		t.Parallel()

		req := httptest.NewRequest(http.MethodPost, "/api/v1/mailer/send", strings.NewReader(`{}`))
		req.Header.Set("Content-Type", "application/json")
		code, _ := serve(t, new(mockUsecase), req)

		assert.Equal(t, http.StatusBadRequest, code)
	})

	t.Run("body over limit", func(t *testing.T) {
		t.Parallel()

		code, _ := serve(t, new(mockUsecase), multipartRequest(t, "/api/v1/mailer/send", fields, make([]byte, 3<<20)))

		assert.Equal(t, http.StatusRequestEntityTooLarge, code)
	})

	t.Run("misconfigured", func(t *testing.T) {
		t.Parallel()

		uc := new(mockUsecase)
		uc.On("Send", mock.Anything, mock.Anything).
			Return(nil, goerror.NewMisconfigured(map[string]string{"sender_email": "SENDER_EMAIL environment variable not set"}))

		code, env := serve(t, uc, multipartRequest(t, "/api/v1/mailer/send", fields, pdf))

		assert.Equal(t, http.StatusServiceUnavailable, code)
		assert.Equal(t, "SENDER_EMAIL environment variable not set", env.Error["sender_email"])
	})
}

func TestHTTPEndpoint_Preview(t *testing.T) {
	t.Parallel()

	pdf := []byte("%PDF-1.7")
	uc := new(mockUsecase)
	uc.On("Preview", mock.Anything, mock.MatchedBy(func(in usecase.PreviewInput) bool {
		return in.MaxSize == 1024 && in.File != nil && in.File.Name == "report.pdf"
	})).Return(&usecase.PreviewOutput{
		Subject:   "Weekly 05/17/2024",
		Transport: "GMAIL SMTP",
		Pages:     1,
		HTML:      `<p>Hi</p><img src="data:image/png;base64,AA==">`,
	}, nil)

	code, env := serve(t, uc, multipartRequest(t, "/api/v1/mailer/preview",
		map[string]string{"subtopic": "Weekly", "max_size": "1024"}, pdf))

	require.Equal(t, http.StatusOK, code)

	var got PreviewResponse
	require.NoError(t, json.Unmarshal(env.Data, &got))
	assert.Equal(t, 1, got.Pages)
	assert.Contains(t, got.HTML, "data:image/png;base64,")
}
