// Package rest exposes the matching service over HTTP/JSON.
package rest

import (
	"errors"

	"github.com/erain9/matchingo/pkg/otel"
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"
)

// Config configures NewApp
type Config struct {
	Auth    AuthConfig
	Logger  zerolog.Logger
	Metrics *otel.HTTPServerMetrics
}

// NewApp builds the HTTP application:
//
//	GET  /healthz
//	GET  /api/orderbook/:symbol?depth=N
//	POST /api/orders/:symbol          (signed)
//	GET  /api/trades/:symbol?limit=N
func NewApp(service Service, cfg Config) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:      "matchingo",
		ErrorHandler: errorHandler,
	})
	app.Use(RequestLogger(cfg.Logger, cfg.Metrics))

	h := &handlers{service: service}
	app.Get("/healthz", h.health)

	api := app.Group("/api")
	api.Get("/orderbook/:symbol", h.getOrderBook)
	api.Post("/orders/:symbol", HMACAuth(cfg.Auth), h.submitOrder)
	api.Get("/trades/:symbol", h.getTrades)

	return app
}

func errorHandler(c fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	return respondError(c, code, err.Error(), "")
}
