package handler

import (
	"context"
	"database/sql"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"docvault/internal/apperr"
	"docvault/internal/dto"
	"docvault/internal/service"
	"docvault/internal/validation"
)

// Deps are the collaborators the HTTP routes need.
type Deps struct {
	DB              *sql.DB
	Service         service.DocumentService
	Validator       *validation.Validator
	DefaultPageSize int
	Gatherer        prometheus.Gatherer
}

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
func RegisterRoutes(app *fiber.App, d Deps) {
	app.Get("/health", HealthCheck(d.DB))
	app.Get("/healthz", LivenessProbe())
	if d.Gatherer != nil {
		app.Get("/metrics", Metrics(d.Gatherer))
	}

	app.Post("/upload", UploadDocument(d.Service, d.Validator))
	app.Post("/search", SearchDocuments(d.Service, d.DefaultPageSize))
	app.Get("/download/:documentId", DownloadDocument(d.Service))
}

// HealthCheck checks DB connectivity only.
//
// @Summary Readiness probe
// @Tags health
// @Success 200 {object} map[string]string
// @Failure 503 {object} errorPayload
// @Router /health [get]
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if db == nil || db.PingContext(ctx) != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe always answers 200 while the process serves requests.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// Metrics exposes the Prometheus registry.
func Metrics(g prometheus.Gatherer) fiber.Handler {
	return adaptor.HTTPHandler(promhttp.HandlerFor(g, promhttp.HandlerOpts{}))
}

// UploadDocument accepts a multipart request with a JSON "metadata" part and a "file" part.
//
// @Summary Upload a PDF document
// @Tags documents
// @Accept multipart/form-data
// @Param metadata formData string true "JSON {user, name, tags[]}"
// @Param file formData file true "PDF file"
// @Success 201
// @Failure 400 {object} errorPayload
// @Failure 500 {object} errorPayload
// @Router /upload [post]
func UploadDocument(svc service.DocumentService, v *validation.Validator) fiber.Handler {
	return func(c *fiber.Ctx) error {
		raw := c.FormValue("metadata")
		if strings.TrimSpace(raw) == "" {
			return apperr.InvalidInput("metadata is required")
		}
		var meta dto.UploadMetadata
		if err := json.Unmarshal([]byte(raw), &meta); err != nil {
			return apperr.InvalidInput("metadata must be valid JSON")
		}
		if err := v.ValidateUploadMetadata(&validation.UploadMetadata{User: meta.User, Name: meta.Name, Tags: meta.Tags}); err != nil {
			return err
		}

		fh, err := c.FormFile("file")
		if err != nil {
			return apperr.InvalidInput("file is required and cannot be empty")
		}
		if err := v.ValidateUploadFile(&validation.File{
			Name:        fh.Filename,
			ContentType: fh.Header.Get("Content-Type"),
			Size:        fh.Size,
		}); err != nil {
			return err
		}

		f, err := fh.Open()
		if err != nil {
			return apperr.InvalidInput("cannot open uploaded file")
		}
		defer f.Close()

		if _, err := svc.Upload(c.UserContext(), service.UploadRequest{
			Owner: meta.User,
			Name:  meta.Name,
			Tags:  meta.Tags,
			Body:  f,
			Size:  fh.Size,
		}); err != nil {
			return err
		}
		// SendStatus would write "Created" as the body.
		c.Status(fiber.StatusCreated)
		return nil
	}
}

// SearchDocuments filters documents by an optional JSON body, newest first.
//
// @Summary Search documents
// @Tags documents
// @Accept json
// @Produce json
// @Param filters body dto.SearchFilters false "Optional filters"
// @Param page query int false "Zero-based page" default(0)
// @Param size query int false "Page size"
// @Success 200 {object} dto.SearchResponse
// @Failure 400 {object} errorPayload
// @Router /search [post]
func SearchDocuments(svc service.DocumentService, defaultSize int) fiber.Handler {
	return func(c *fiber.Ctx) error {
		page, err := intQuery(c, "page", 0)
		if err != nil {
			return apperr.InvalidInput("page must be an integer")
		}
		size, err := intQuery(c, "size", defaultSize)
		if err != nil {
			return apperr.InvalidInput("size must be an integer")
		}

		var filters dto.SearchFilters
		if body := c.Body(); len(strings.TrimSpace(string(body))) > 0 {
			if err := json.Unmarshal(body, &filters); err != nil {
				return apperr.InvalidInput("search body must be valid JSON")
			}
		}

		res, err := svc.Search(c.UserContext(), filters, page, size)
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

// DownloadDocument returns a presigned URL for the document.
//
// @Summary Get a download URL
// @Tags documents
// @Produce json
// @Param documentId path string true "Document ID (UUID)"
// @Success 200 {object} dto.DownloadURLResponse
// @Failure 400 {object} errorPayload
// @Failure 404 {object} errorPayload
// @Router /download/{documentId} [get]
func DownloadDocument(svc service.DocumentService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		res, err := svc.DownloadURL(c.UserContext(), c.Params("documentId"))
		if err != nil {
			return err
		}
		return c.JSON(res)
	}
}

func intQuery(c *fiber.Ctx, key string, def int) (int, error) {
	v := c.Query(key)
	if v == "" {
		return def, nil
	}
	return strconv.Atoi(v)
}
