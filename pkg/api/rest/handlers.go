package rest

import (
	"context"
	"errors"
	"strconv"

	"github.com/erain9/matchingo/pkg/core"
	"github.com/erain9/matchingo/pkg/logging"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/shopspring/decimal"
)

// Service is the matching surface the HTTP handlers drive
type Service interface {
	SubmitLimitOrder(ctx context.Context, symbol string, side core.Side, price, quantity decimal.Decimal, tif core.TIF) (core.Order, []core.Trade, error)
	Snapshot(ctx context.Context, symbol string, depth int) (core.Snapshot, error)
	Trades(ctx context.Context, symbol string, limit int) ([]core.Trade, error)
}

// SubmitOrderBody is the JSON body of POST /api/orders/:symbol. Price and
// quantity accept JSON strings or numbers.
type SubmitOrderBody struct {
	Side        string           `json:"side" validate:"required"`
	Price       *decimal.Decimal `json:"price" validate:"required"`
	Quantity    *decimal.Decimal `json:"quantity" validate:"required"`
	TimeInForce string           `json:"timeInForce,omitempty" validate:"omitempty,max=3"`
}

// SubmitOrderResult is the response of POST /api/orders/:symbol
type SubmitOrderResult struct {
	Order  core.Order   `json:"order"`
	Trades []core.Trade `json:"trades"`
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

var validate = validator.New()

type handlers struct {
	service Service
}

func respondError(c fiber.Ctx, status int, msg, details string) error {
	return c.Status(status).JSON(ErrorResponse{Error: msg, Details: details})
}

// serviceError maps engine errors to HTTP statuses
func serviceError(c fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, core.ErrInvalidArgument):
		return respondError(c, fiber.StatusBadRequest, "invalid argument", err.Error())
	case errors.Is(err, core.ErrInvariantViolation):
		logger := logging.FromContext(requestContext(c))
		logger.Error().Err(err).Msg("Order book invariant violated")
		return respondError(c, fiber.StatusInternalServerError, "internal error", err.Error())
	default:
		return respondError(c, fiber.StatusInternalServerError, "internal error", err.Error())
	}
}

func (h *handlers) health(c fiber.Ctx) error {
	return c.SendString("ok")
}

func (h *handlers) getOrderBook(c fiber.Ctx) error {
	depth := core.FullDepth
	if raw := c.Query("depth"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return respondError(c, fiber.StatusBadRequest, "depth must be an integer", err.Error())
		}
		depth = n
	}

	snap, err := h.service.Snapshot(requestContext(c), symbolParam(c), depth)
	if err != nil {
		return serviceError(c, err)
	}
	return c.JSON(snap)
}

func (h *handlers) submitOrder(c fiber.Ctx) error {
	var body SubmitOrderBody
	if err := c.Bind().Body(&body); err != nil {
		return respondError(c, fiber.StatusBadRequest, "malformed request body", err.Error())
	}
	if err := validate.Struct(&body); err != nil {
		return respondError(c, fiber.StatusBadRequest, "invalid request body", err.Error())
	}

	side, err := core.ParseSide(body.Side)
	if err != nil {
		return serviceError(c, err)
	}
	tif, err := core.ParseTIF(body.TimeInForce)
	if err != nil {
		return serviceError(c, err)
	}

	order, trades, err := h.service.SubmitLimitOrder(requestContext(c), symbolParam(c), side, *body.Price, *body.Quantity, tif)
	if err != nil {
		return serviceError(c, err)
	}
	if trades == nil {
		trades = []core.Trade{}
	}
	return c.JSON(SubmitOrderResult{Order: order, Trades: trades})
}

func (h *handlers) getTrades(c fiber.Ctx) error {
	limit := core.DefaultTradesLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return respondError(c, fiber.StatusBadRequest, "limit must be an integer", err.Error())
		}
		limit = n
	}

	trades, err := h.service.Trades(requestContext(c), symbolParam(c), limit)
	if err != nil {
		return serviceError(c, err)
	}
	if trades == nil {
		trades = []core.Trade{}
	}
	return c.JSON(trades)
}
