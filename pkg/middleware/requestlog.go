package middleware

import (
	"log/slog"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/google/uuid"
)

// RequestIDHeader carries the per-request correlation id.
const RequestIDHeader = fiber.HeaderXRequestID

// RequestID assigns a UUID to every request that does not already carry one.
func RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:    RequestIDHeader,
		Generator: uuid.NewString,
	})
}

// RequestLogger writes one structured line per request.
// It must run after RequestID.
func RequestLogger(logger *slog.Logger) fiber.Handler {
	logger = logger.With("component", "http")
	return func(c *fiber.Ctx) error {
		start := time.Now()
		err := c.Next()

		status := c.Response().StatusCode()
		if err != nil {
			if fe, ok := err.(*fiber.Error); ok {
				status = fe.Code
			} else {
				status = fiber.StatusInternalServerError
			}
		}
		attrs := []any{
			"request_id", c.GetRespHeader(RequestIDHeader),
			"method", c.Method(),
			"path", c.Path(),
			"status", status,
			"latency", time.Since(start),
			"ip", c.IP(),
		}
		switch {
		case status >= fiber.StatusInternalServerError:
			logger.Error("Request failed", append(attrs, "error", err)...)
		case status >= fiber.StatusBadRequest:
			logger.Warn("Request rejected", attrs...)
		default:
			logger.Info("Request handled", attrs...)
		}
		return err
	}
}
