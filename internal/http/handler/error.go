package handler

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"docvault/internal/apperr"
	"docvault/internal/http/middleware"
)

// MsgFileTooLarge is returned when a request body exceeds the configured upload limit.
const MsgFileTooLarge = "File size exceeds the maximum allowed size"

// errorPayload defines the standardized error response body.
type errorPayload struct {
	RequestID string        `json:"request_id"`
	Status    int           `json:"status"`
	Path      string        `json:"path"`
	Timestamp string        `json:"timestamp"`
	Error     errorEnvelope `json:"error"`
}

type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// writeError writes a standardized JSON error response without leaking internal errors.
func writeError(c *fiber.Ctx, status int, code, message string) error {
	res := errorPayload{
		RequestID: middleware.RequestIDFrom(c),
		Status:    status,
		Path:      c.Path(),
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Error: errorEnvelope{
			Code:    code,
			Message: message,
		},
	}
	return c.Status(status).JSON(res)
}

// ErrorHandler returns a Fiber global error handler that standardizes error responses.
// Classified application errors keep their kind; server-side detail is logged, never returned.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return func(c *fiber.Ctx, err error) error {
		var appErr *apperr.Error
		if errors.As(err, &appErr) {
			status := appErr.Kind.Status()
			if status >= fiber.StatusInternalServerError {
				logger.Error("request_failed",
					zap.String("request_id", middleware.RequestIDFrom(c)),
					zap.String("path", c.Path()),
					zap.String("kind", appErr.Kind.String()),
					zap.Error(err),
				)
			}
			return writeError(c, status, appErr.Kind.Code(), appErr.PublicMessage())
		}

		status := fiber.StatusInternalServerError
		var fe *fiber.Error
		if errors.As(err, &fe) {
			status = fe.Code
		}

		switch status {
		case fiber.StatusBadRequest:
			return writeError(c, status, "BAD_REQUEST", "bad request")
		case fiber.StatusNotFound:
			return writeError(c, status, "NOT_FOUND", "resource not found")
		case fiber.StatusMethodNotAllowed:
			return writeError(c, status, "METHOD_NOT_ALLOWED", "method not allowed")
		case fiber.StatusRequestEntityTooLarge:
			return writeError(c, fiber.StatusBadRequest, "FILE_TOO_LARGE", MsgFileTooLarge)
		case fiber.StatusTooManyRequests:
			return writeError(c, status, "TOO_MANY_REQUESTS", "too many requests")
		default:
			logger.Error("request_failed",
				zap.String("request_id", middleware.RequestIDFrom(c)),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
	}
}
