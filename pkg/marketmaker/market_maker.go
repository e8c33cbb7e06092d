package marketmaker

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/erain9/matchingo/pkg/api/rpc"
	"github.com/erain9/matchingo/pkg/core"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// MarketMaker keeps a ladder of GTC quotes resting around an external
// reference price. Orders cannot be cancelled, so each round only adds
// the quantity missing at every target level.
type MarketMaker struct {
	cfg          *Config
	logger       zerolog.Logger
	orderPlacer  OrderPlacer
	priceFetcher PriceFetcher
	strategy     Strategy
	stopCh       chan struct{}
	stopOnce     sync.Once
	wg           sync.WaitGroup
}

// NewMarketMaker creates a new market maker service
func NewMarketMaker(cfg *Config, logger zerolog.Logger, orderPlacer OrderPlacer, priceFetcher PriceFetcher, strategy Strategy) *MarketMaker {
	return &MarketMaker{
		cfg:          cfg,
		logger:       logger.With().Str("component", "MarketMaker").Logger(),
		orderPlacer:  orderPlacer,
		priceFetcher: priceFetcher,
		strategy:     strategy,
		stopCh:       make(chan struct{}),
	}
}

// Start begins the market making process
func (m *MarketMaker) Start(ctx context.Context) error {
	m.logger.Info().
		Str("market_symbol", m.cfg.MarketSymbol).
		Dur("update_interval", m.cfg.UpdateInterval).
		Msg("Starting market maker service")

	m.wg.Add(1)
	go m.run(ctx)

	return nil
}

// Stop signals the loop and waits for it to finish. Resting quotes stay
// on the book.
func (m *MarketMaker) Stop(ctx context.Context) error {
	m.logger.Info().Msg("Stopping market maker service")
	m.stopOnce.Do(func() { close(m.stopCh) })

	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		m.logger.Info().Msg("Market maker stopped successfully")
		return nil
	case <-ctx.Done():
		return fmt.Errorf("timeout waiting for market maker to stop: %w", ctx.Err())
	}
}

// run is the main market making loop
func (m *MarketMaker) run(ctx context.Context) {
	defer m.wg.Done()

	ticker := time.NewTicker(m.cfg.UpdateInterval)
	defer ticker.Stop()

	for {
		if _, err := m.updateOrders(ctx); err != nil {
			m.logger.Error().Err(err).Msg("Failed to update orders")
		}

		select {
		case <-ctx.Done():
			m.logger.Info().Msg("Context cancelled, stopping market maker loop")
			return
		case <-m.stopCh:
			m.logger.Info().Msg("Stop signal received, stopping market maker loop")
			return
		case <-ticker.C:
		}
	}
}

// updateOrders performs one round and returns how many orders it placed
func (m *MarketMaker) updateOrders(ctx context.Context) (int, error) {
	price, err := m.priceFetcher.FetchPrice(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to fetch price: %w", err)
	}

	quotes, err := m.strategy.Quotes(ctx, price)
	if err != nil {
		return 0, fmt.Errorf("failed to calculate quotes: %w", err)
	}

	book, err := m.orderPlacer.GetOrderBook(ctx, &rpc.GetOrderBookRequest{Symbol: m.cfg.MarketSymbol})
	if err != nil {
		return 0, fmt.Errorf("failed to read order book: %w", err)
	}
	resting, err := newLadder(book)
	if err != nil {
		return 0, err
	}

	placed := 0
	for _, q := range quotes {
		if resting.crosses(q) {
			m.logger.Debug().
				Stringer("side", q.Side).
				Str("price", q.Price.String()).
				Msg("Skipping quote that would cross the book")
			continue
		}
		missing := q.Quantity.Sub(resting.quantity(q.Side, q.Price))
		if !missing.IsPositive() {
			continue
		}

		req := &rpc.SubmitOrderRequest{
			Symbol:      m.cfg.MarketSymbol,
			Side:        q.Side.String(),
			Price:       q.Price.String(),
			Quantity:    missing.String(),
			TimeInForce: string(core.GTC),
		}
		if _, err := m.orderPlacer.SubmitOrder(ctx, req); err != nil {
			m.logger.Error().Err(err).
				Str("side", req.Side).
				Str("price", req.Price).
				Msg("Failed to place order")
			continue
		}
		placed++
	}

	return placed, nil
}

// ladder is the aggregated resting quantity per side and price
type ladder struct {
	levels  map[core.Side]map[string]decimal.Decimal
	bestBid *decimal.Decimal
	bestAsk *decimal.Decimal
}

func newLadder(book *rpc.GetOrderBookResponse) (*ladder, error) {
	l := &ladder{levels: map[core.Side]map[string]decimal.Decimal{
		core.Buy:  {},
		core.Sell: {},
	}}
	for side, levels := range map[core.Side][]rpc.Level{core.Buy: book.Bids, core.Sell: book.Asks} {
		for i, level := range levels {
			price, err := decimal.NewFromString(level.Price)
			if err != nil {
				return nil, fmt.Errorf("invalid book price %q: %w", level.Price, err)
			}
			qty, err := decimal.NewFromString(level.Quantity)
			if err != nil {
				return nil, fmt.Errorf("invalid book quantity %q: %w", level.Quantity, err)
			}
			l.levels[side][price.String()] = qty
			if i == 0 {
				best := price
				if side == core.Buy {
					l.bestBid = &best
				} else {
					l.bestAsk = &best
				}
			}
		}
	}
	return l, nil
}

func (l *ladder) quantity(side core.Side, price decimal.Decimal) decimal.Decimal {
	return l.levels[side][price.String()]
}

func (l *ladder) crosses(q Quote) bool {
	if q.Side == core.Buy {
		return l.bestAsk != nil && q.Price.GreaterThanOrEqual(*l.bestAsk)
	}
	return l.bestBid != nil && q.Price.LessThanOrEqual(*l.bestBid)
}
