package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"docvault/internal/apperr"
	"docvault/internal/dto"
	"docvault/internal/http/middleware"
	"docvault/internal/model"
	"docvault/internal/service"
	serviceMocks "docvault/internal/service/mocks"
	"docvault/internal/validation"
)

const docID = "0190f0c4-5e1a-7c3b-9d2e-4f5a6b7c8d9e"

func newApp() *fiber.App {
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(zap.NewNop())})
	app.Use(middleware.RequestID())
	return app
}

func decodeError(t *testing.T, resp *http.Response) errorPayload {
	t.Helper()
	var body errorPayload
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return body
}

type uploadPart struct {
	metadata    string
	filename    string
	contentType string
	content     []byte
}

func multipartBody(t *testing.T, p uploadPart) (*bytes.Buffer, string) {
	t.Helper()
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	if p.metadata != "" {
		require.NoError(t, w.WriteField("metadata", p.metadata))
	}
	if p.filename != "" {
		h := make(textproto.MIMEHeader)
		h.Set("Content-Disposition", `form-data; name="file"; filename="`+p.filename+`"`)
		h.Set("Content-Type", p.contentType)
		part, err := w.CreatePart(h)
		require.NoError(t, err)
		_, err = part.Write(p.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return body, w.FormDataContentType()
}

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		body := decodeError(t, resp)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
		assert.Equal(t, "/health", body.Path)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "docvault_test_total", Help: "test"})
	reg.MustRegister(c)
	c.Inc()

	app := fiber.New()
	app.Get("/metrics", Metrics(reg))

	resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body, _ := io.ReadAll(resp.Body)
	assert.Contains(t, string(body), "docvault_test_total 1")
}

func TestUploadDocument(t *testing.T) {
	v := validation.New(1, 100)
	pdf := []byte("%PDF-1.7 hello")

	t.Run("success", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newApp()
		app.Post("/upload", UploadDocument(mockSvc, v))

		body, ct := multipartBody(t, uploadPart{
			metadata:    `{"user":"john-doe","name":"invoice","tags":["finance","2024"]}`,
			filename:    "invoice.pdf",
			contentType: "application/pdf",
			content:     pdf,
		})
		mockSvc.On("Upload", mock.Anything, mock.MatchedBy(func(req service.UploadRequest) bool {
			return req.Owner == "john-doe" &&
				req.Name == "invoice" &&
				assert.ObjectsAreEqual([]string{"finance", "2024"}, req.Tags) &&
				req.Size == int64(len(pdf)) &&
				req.Body != nil
		})).Return(&model.Document{ID: docID}, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusCreated, resp.StatusCode)
		assert.Zero(t, resp.ContentLength)
		raw, _ := io.ReadAll(resp.Body)
		assert.Empty(t, raw)
		mockSvc.AssertExpectations(t)
	})

	tests := []struct {
		name    string
		part    uploadPart
		wantMsg string
	}{
		{
			name:    "missing metadata",
			part:    uploadPart{filename: "a.pdf", contentType: "application/pdf", content: pdf},
			wantMsg: "metadata is required",
		},
		{
			name:    "malformed metadata",
			part:    uploadPart{metadata: "{", filename: "a.pdf", contentType: "application/pdf", content: pdf},
			wantMsg: "metadata must be valid JSON",
		},
		{
			name:    "metadata without tags",
			part:    uploadPart{metadata: `{"user":"u","name":"n"}`, filename: "a.pdf", contentType: "application/pdf", content: pdf},
			wantMsg: "at least one tag is required",
		},
		{
			name:    "missing file",
			part:    uploadPart{metadata: `{"user":"u","name":"n","tags":["t"]}`},
			wantMsg: "file is required and cannot be empty",
		},
		{
			name:    "wrong content type",
			part:    uploadPart{metadata: `{"user":"u","name":"n","tags":["t"]}`, filename: "a.pdf", contentType: "text/plain", content: pdf},
			wantMsg: "only PDF files are allowed",
		},
		{
			name:    "wrong extension",
			part:    uploadPart{metadata: `{"user":"u","name":"n","tags":["t"]}`, filename: "a.txt", contentType: "application/pdf", content: pdf},
			wantMsg: "file must have .pdf extension",
		},
		{
			name:    "too large",
			part:    uploadPart{metadata: `{"user":"u","name":"n","tags":["t"]}`, filename: "a.pdf", contentType: "application/pdf", content: make([]byte, 1024*1024+1)},
			wantMsg: "file size exceeds maximum allowed size of 1 MB",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(serviceMocks.MockDocumentService)
			app := newApp()
			app.Post("/upload", UploadDocument(mockSvc, v))

			body, ct := multipartBody(t, tt.part)
			req := httptest.NewRequest(http.MethodPost, "/upload", body)
			req.Header.Set("Content-Type", ct)
			resp, _ := app.Test(req)

			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
			res := decodeError(t, resp)
			assert.Equal(t, "INVALID_INPUT", res.Error.Code)
			assert.Contains(t, res.Error.Message, tt.wantMsg)
			assert.Equal(t, http.StatusBadRequest, res.Status)
			assert.Equal(t, "/upload", res.Path)
			assert.NotEmpty(t, res.RequestID)
			mockSvc.AssertNotCalled(t, "Upload", mock.Anything, mock.Anything)
		})
	}

	t.Run("service failure hides detail", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newApp()
		app.Post("/upload", UploadDocument(mockSvc, v))

		body, ct := multipartBody(t, uploadPart{
			metadata:    `{"user":"u","name":"n","tags":["t"]}`,
			filename:    "a.pdf",
			contentType: "application/pdf",
			content:     pdf,
		})
		mockSvc.On("Upload", mock.Anything, mock.Anything).
			Return(nil, apperr.UploadFailure("failed to upload document", errors.New("pq: connection refused"))).Once()

		req := httptest.NewRequest(http.MethodPost, "/upload", body)
		req.Header.Set("Content-Type", ct)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
		res := decodeError(t, resp)
		assert.Equal(t, "UPLOAD_FAILED", res.Error.Code)
		assert.Equal(t, "failed to upload document", res.Error.Message)
		assert.NotContains(t, res.Error.Message, "connection refused")
	})
}

func TestSearchDocuments(t *testing.T) {
	page := &dto.SearchResponse{
		Metadata: dto.Metadata{CurrentPage: 0, ItemsPerPage: 20, CurrentItems: 1, TotalPages: 1, TotalItems: 1},
		Documents: []dto.Document{{
			ID: docID, User: "alice", Name: "a.pdf", Tags: []string{"x"}, Size: 3, Type: "application/pdf", CreatedAt: "2024-06-01T12:30:45",
		}},
	}

	t.Run("empty body uses defaults", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newApp()
		app.Post("/search", SearchDocuments(mockSvc, 20))
		mockSvc.On("Search", mock.Anything, dto.SearchFilters{}, 0, 20).Return(page, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/search", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var got map[string]any
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		meta := got["metadata"].(map[string]any)
		assert.Equal(t, float64(1), meta["totalItems"])
		assert.Equal(t, float64(20), meta["itemsPerPage"])
		docs := got["documents"].([]any)
		require.Len(t, docs, 1)
		doc := docs[0].(map[string]any)
		assert.Equal(t, "alice", doc["user"])
		assert.Equal(t, "application/pdf", doc["type"])
		assert.Equal(t, "2024-06-01T12:30:45", doc["createdAt"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("filters and paging", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newApp()
		app.Post("/search", SearchDocuments(mockSvc, 20))
		want := dto.SearchFilters{User: "alice", Name: "rep", Tags: []string{"a", "b"}}
		mockSvc.On("Search", mock.Anything, want, 2, 5).Return(page, nil).Once()

		req := httptest.NewRequest(http.MethodPost, "/search?page=2&size=5",
			strings.NewReader(`{"user":"alice","name":"rep","tags":["a","b"]}`))
		req.Header.Set("Content-Type", "application/json")
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		mockSvc.AssertExpectations(t)
	})

	t.Run("non numeric page", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newApp()
		app.Post("/search", SearchDocuments(mockSvc, 20))

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/search?page=abc", nil))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_INPUT", decodeError(t, resp).Error.Code)
	})

	t.Run("malformed body", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newApp()
		app.Post("/search", SearchDocuments(mockSvc, 20))

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/search", strings.NewReader("{nope")))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("invalid pagination from service", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newApp()
		app.Post("/search", SearchDocuments(mockSvc, 20))
		mockSvc.On("Search", mock.Anything, dto.SearchFilters{}, 0, 1000).
			Return(nil, apperr.InvalidInput("page size must not exceed 100 items")).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/search?size=1000", nil))
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "page size must not exceed 100 items", decodeError(t, resp).Error.Message)
	})
}

func TestDownloadDocument(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		mockSvc := new(serviceMocks.MockDocumentService)
		app := newApp()
		app.Get("/download/:documentId", DownloadDocument(mockSvc))
		mockSvc.On("DownloadURL", mock.Anything, docID).
			Return(&dto.DownloadURLResponse{URL: "https://minio/a.pdf?sig"}, nil).Once()

		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/download/"+docID, nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var got dto.DownloadURLResponse
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&got))
		assert.Equal(t, "https://minio/a.pdf?sig", got.URL)
	})

	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{name: "not found", err: apperr.NotFound("document not found with id: " + docID), wantStatus: http.StatusNotFound, wantCode: "NOT_FOUND"},
		{name: "invalid id", err: apperr.InvalidInput("invalid document ID format, expected UUID"), wantStatus: http.StatusBadRequest, wantCode: "INVALID_INPUT"},
		{name: "storage", err: apperr.Storage("failed to generate download URL", errors.New("x")), wantStatus: http.StatusInternalServerError, wantCode: "STORAGE_ERROR"},
		{name: "unclassified", err: errors.New("boom"), wantStatus: http.StatusInternalServerError, wantCode: "INTERNAL_ERROR"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockSvc := new(serviceMocks.MockDocumentService)
			app := newApp()
			app.Get("/download/:documentId", DownloadDocument(mockSvc))
			mockSvc.On("DownloadURL", mock.Anything, docID).Return(nil, tt.err).Once()

			resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/download/"+docID, nil))
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantCode, decodeError(t, resp).Error.Code)
		})
	}
}

func TestErrorHandler_BodyTooLarge(t *testing.T) {
	app := newApp()
	app.Post("/upload", func(c *fiber.Ctx) error {
		return fiber.ErrRequestEntityTooLarge
	})

	resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/upload", nil))
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	body := decodeError(t, resp)
	assert.Equal(t, "FILE_TOO_LARGE", body.Error.Code)
	assert.Equal(t, MsgFileTooLarge, body.Error.Message)
}

func TestRouting(t *testing.T) {
	app := newApp()
	RegisterRoutes(app, Deps{
		Service:         new(serviceMocks.MockDocumentService),
		Validator:       validation.New(550, 100),
		DefaultPageSize: 20,
		Gatherer:        prometheus.NewRegistry(),
	})

	t.Run("not found route", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/non-existent", nil))
		assert.Equal(t, http.StatusNotFound, resp.StatusCode)
		assert.Equal(t, "NOT_FOUND", decodeError(t, resp).Error.Code)
	})

	t.Run("method not allowed", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodPost, "/health", nil))
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
		assert.Equal(t, "METHOD_NOT_ALLOWED", decodeError(t, resp).Error.Code)
	})

	t.Run("health without db is unavailable", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	})

	t.Run("metrics registered", func(t *testing.T) {
		resp, _ := app.Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})
}
