package rest

import (
	"context"
	"strings"
	"time"

	"github.com/erain9/matchingo/pkg/logging"
	"github.com/erain9/matchingo/pkg/otel"
	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// RequestLogger stores a request ID in the request locals, logs each
// request once it completes and records HTTP metrics when metrics is set.
func RequestLogger(logger zerolog.Logger, metrics *otel.HTTPServerMetrics) fiber.Handler {
	return func(c fiber.Ctx) error {
		start := time.Now()

		// header values alias the request buffer
		requestID := strings.Clone(c.Get(logging.RequestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(logging.RequestIDHeader, requestID)
		c.Locals(logging.RequestIDKey, requestID)
		ctx := requestContext(c)

		method := c.Method()
		metrics.RequestStarted(ctx, method, c.Path())

		if err := c.Next(); err != nil {
			if herr := c.App().Config().ErrorHandler(c, err); herr != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		route := c.Route().Path
		status := c.Response().StatusCode()
		duration := time.Since(start)
		metrics.RequestFinished(ctx, method, route, status, duration)

		var event *zerolog.Event
		switch {
		case status >= fiber.StatusInternalServerError:
			event = logger.Error()
		case status >= fiber.StatusBadRequest:
			event = logger.Warn()
		default:
			event = logger.Info()
		}
		event.Str("request_id", requestID).
			Str("http.method", method).
			Str("http.path", c.Path()).
			Str("http.route", route).
			Int("http.status", status).
			Dur("duration", duration).
			Msg("Request completed")

		return nil
	}
}

// requestContext returns a context carrying the request ID of c. It does
// not reference c, so it stays valid after fiber recycles the request.
func requestContext(c fiber.Ctx) context.Context {
	ctx := context.Background()
	if id, ok := c.Locals(logging.RequestIDKey).(string); ok && id != "" {
		ctx = logging.WithRequestID(ctx, id)
	}
	return ctx
}

// symbolParam copies the :symbol route parameter out of the request buffer
func symbolParam(c fiber.Ctx) string {
	return strings.Clone(c.Params("symbol"))
}
