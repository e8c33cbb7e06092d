package server

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/erain9/matchingo/pkg/backend/memory"
	"github.com/erain9/matchingo/pkg/core"
	"github.com/erain9/matchingo/pkg/logging"
	"github.com/erain9/matchingo/pkg/messaging"
	"github.com/erain9/matchingo/pkg/otel"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/attribute"
)

// TradePublisher receives the outcome of every order that traded
type TradePublisher interface {
	Publish(ctx context.Context, msg *messaging.TradeMessage) bool
}

// MatchingService routes requests to per-symbol books and guarantees that
// at most one operation runs against a symbol at a time. Different symbols
// proceed in parallel.
type MatchingService struct {
	backend   core.OrderBookBackend
	locks     sync.Map // symbol -> *sync.Mutex
	publisher TradePublisher
	metrics   *otel.EngineMetrics
}

// Option configures a MatchingService
type Option func(*MatchingService)

// WithPublisher sends trade messages to p while the symbol lock is held so
// per-symbol publication order equals execution order.
func WithPublisher(p TradePublisher) Option {
	return func(s *MatchingService) {
		s.publisher = p
	}
}

// WithMetrics records engine metrics on m
func WithMetrics(m *otel.EngineMetrics) Option {
	return func(s *MatchingService) {
		s.metrics = m
	}
}

// NewMatchingService creates a service over backend
func NewMatchingService(backend core.OrderBookBackend, opts ...Option) *MatchingService {
	s := &MatchingService{backend: backend}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func normalizeSymbol(symbol string) (string, error) {
	key := memory.NormalizeSymbol(symbol)
	if key == "" {
		return "", fmt.Errorf("%w: symbol must not be empty", core.ErrInvalidSymbol)
	}
	return key, nil
}

// lockFor returns the guard for symbol, creating it on first use. Guards
// are never removed.
func (s *MatchingService) lockFor(symbol string) *sync.Mutex {
	if mu, ok := s.locks.Load(symbol); ok {
		return mu.(*sync.Mutex)
	}
	mu, _ := s.locks.LoadOrStore(symbol, &sync.Mutex{})
	return mu.(*sync.Mutex)
}

// SubmitLimitOrder places a new limit order on symbol's book
func (s *MatchingService) SubmitLimitOrder(ctx context.Context, symbol string, side core.Side, price, quantity decimal.Decimal, tif core.TIF) (core.Order, []core.Trade, error) {
	ctx, span := otel.StartSpan(ctx, otel.SpanSubmitOrder,
		attribute.String(otel.AttributeSymbol, symbol),
		attribute.String(otel.AttributeOrderSide, side.String()),
		attribute.String(otel.AttributeOrderTIF, string(tif)),
		attribute.String(otel.AttributeOrderPrice, price.String()),
		attribute.String(otel.AttributeOrderQuantity, quantity.String()),
	)
	defer span.End()

	key, err := normalizeSymbol(symbol)
	if err != nil {
		otel.RecordError(span, err)
		return core.Order{}, nil, err
	}
	logger := logging.FromContext(ctx).With().Str("symbol", key).Logger()

	mu := s.lockFor(key)
	mu.Lock()
	defer mu.Unlock()

	book := s.backend.GetOrCreate(key)

	start := time.Now()
	_, matchSpan := otel.StartSpan(ctx, otel.SpanMatchOrder)
	order, trades, err := book.SubmitLimitOrder(key, side, price, quantity, tif)
	matchSpan.End()
	s.metrics.RecordMatchDuration(ctx, key, time.Since(start))

	if err != nil {
		otel.RecordError(span, err)
		switch {
		case errors.Is(err, core.ErrInvariantViolation):
			s.metrics.RecordInvariantViolation(ctx, key)
			logger.Error().Err(err).Msg("Order book invariant violated")
		case errors.Is(err, core.ErrInvalidArgument):
			s.metrics.RecordRejected(ctx, key)
			logger.Warn().Err(err).Msg("Order rejected")
		}
		return core.Order{}, nil, err
	}

	s.metrics.RecordSubmitted(ctx, key, side.String(), string(order.TIF()))
	s.metrics.RecordTrades(ctx, key, len(trades))
	otel.AddAttributes(span,
		attribute.String(otel.AttributeOrderID, order.ID()),
		attribute.String(otel.AttributeOrderStatus, string(order.Status())),
		attribute.String(otel.AttributeRemainingQuantity, order.Remaining().String()),
		attribute.Int(otel.AttributeTradeCount, len(trades)),
	)

	logger.Debug().
		Str("order_id", order.ID()).
		Str("side", side.String()).
		Str("price", price.String()).
		Str("quantity", quantity.String()).
		Str("remaining", order.Remaining().String()).
		Int("trades", len(trades)).
		Msg("Order processed")

	if len(trades) > 0 && s.publisher != nil {
		pubCtx, pubSpan := otel.StartSpan(ctx, otel.SpanPublishTrades, attribute.Int(otel.AttributeTradeCount, len(trades)))
		if !s.publisher.Publish(pubCtx, messaging.NewTradeMessage(order, trades)) {
			logger.Warn().Str("order_id", order.ID()).Msg("Trade message not queued")
		}
		pubSpan.End()
	}

	return order, trades, nil
}

// Snapshot returns up to depth levels per side of symbol's book
func (s *MatchingService) Snapshot(ctx context.Context, symbol string, depth int) (core.Snapshot, error) {
	ctx, span := otel.StartSpan(ctx, otel.SpanSnapshot,
		attribute.String(otel.AttributeSymbol, symbol),
		attribute.Int(otel.AttributeDepth, depth),
	)
	defer span.End()

	key, err := normalizeSymbol(symbol)
	if err != nil {
		otel.RecordError(span, err)
		return core.Snapshot{}, err
	}

	mu := s.lockFor(key)
	mu.Lock()
	defer mu.Unlock()

	snap, err := s.backend.GetOrCreate(key).Snapshot(depth)
	if err != nil {
		otel.RecordError(span, err)
		logger := logging.FromContext(ctx)
		logger.Debug().Err(err).Str("symbol", key).Msg("Snapshot rejected")
	}
	return snap, err
}

// Trades returns up to limit of symbol's most recent trades, newest first
func (s *MatchingService) Trades(ctx context.Context, symbol string, limit int) ([]core.Trade, error) {
	ctx, span := otel.StartSpan(ctx, otel.SpanGetTrades,
		attribute.String(otel.AttributeSymbol, symbol),
		attribute.Int(otel.AttributeLimit, limit),
	)
	defer span.End()

	key, err := normalizeSymbol(symbol)
	if err != nil {
		otel.RecordError(span, err)
		return nil, err
	}

	mu := s.lockFor(key)
	mu.Lock()
	defer mu.Unlock()

	trades, err := s.backend.GetOrCreate(key).Trades(limit)
	if err != nil {
		otel.RecordError(span, err)
		logger := logging.FromContext(ctx)
		logger.Debug().Err(err).Str("symbol", key).Msg("Trades query rejected")
	}
	return trades, err
}

// Symbols lists the symbols that have a book
func (s *MatchingService) Symbols() []string {
	return s.backend.Symbols()
}
