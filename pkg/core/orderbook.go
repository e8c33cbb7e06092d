package core

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

// OrderBook implements price-time priority matching for a single symbol.
// It is not safe for concurrent use; callers serialise access per symbol.
type OrderBook struct {
	symbol  string
	bids    *bookSide
	asks    *bookSide
	history *tradeHistory

	newID  func() string
	now    func() time.Time
	logger zerolog.Logger
}

// OrderBookOption configures an OrderBook.
type OrderBookOption func(*OrderBook)

// WithIDGenerator sets the generator used for order and trade ids.
func WithIDGenerator(gen func() string) OrderBookOption {
	return func(ob *OrderBook) {
		if gen != nil {
			ob.newID = gen
		}
	}
}

// WithClock sets the time source used to stamp orders and trades.
func WithClock(now func() time.Time) OrderBookOption {
	return func(ob *OrderBook) {
		if now != nil {
			ob.now = now
		}
	}
}

// WithTradeHistoryCapacity bounds the number of retained trades. A
// capacity of zero or less keeps DefaultTradeHistoryCapacity; callers that
// must reject such values validate them first (see config.Validate).
func WithTradeHistoryCapacity(capacity int) OrderBookOption {
	return func(ob *OrderBook) {
		if capacity > 0 {
			ob.history = newTradeHistory(capacity)
		}
	}
}

// WithLogger sets the logger used for rejected fills and invariant failures.
func WithLogger(logger zerolog.Logger) OrderBookOption {
	return func(ob *OrderBook) {
		ob.logger = logger
	}
}

// NewOrderBook creates an empty book for symbol.
func NewOrderBook(symbol string, opts ...OrderBookOption) *OrderBook {
	ob := &OrderBook{
		symbol:  symbol,
		bids:    newBookSide(Buy),
		asks:    newBookSide(Sell),
		history: newTradeHistory(DefaultTradeHistoryCapacity),
		newID:   uuid.NewString,
		now:     time.Now,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(ob)
	}
	ob.logger = ob.logger.With().Str("symbol", symbol).Logger()
	return ob
}

// Symbol returns the instrument this book trades
func (ob *OrderBook) Symbol() string {
	return ob.symbol
}

// SubmitLimitOrder builds a fresh order with a generated id and places it.
// The returned order is a copy reflecting its state after matching.
func (ob *OrderBook) SubmitLimitOrder(symbol string, side Side, price, quantity decimal.Decimal, tif TIF) (Order, []Trade, error) {
	order := NewLimitOrder(ob.newID(), symbol, side, price, quantity, tif, ob.now())
	trades, err := ob.PlaceOrder(order)
	if err != nil {
		return Order{}, nil, err
	}
	return *order, trades, nil
}

// PlaceOrder validates order, matches it against the opposite side and
// applies its time in force. A GTC remainder rests in the book, which then
// owns the order.
func (ob *OrderBook) PlaceOrder(order *Order) ([]Trade, error) {
	if err := ob.validate(order); err != nil {
		return nil, err
	}

	switch order.tif {
	case FOK:
		if !ob.canFullyFill(order) {
			ob.logger.Debug().
				Str("order_id", order.id).
				Str("quantity", order.quantity.String()).
				Msg("fill-or-kill order killed, insufficient liquidity")
			return make([]Trade, 0), nil
		}
		trades, err := ob.match(order)
		if err != nil {
			return trades, err
		}
		if !order.remaining.IsZero() {
			return trades, ob.invariant(order, "fill-or-kill order left remaining %s after feasibility check", order.remaining)
		}
		return trades, nil

	case IOC:
		return ob.match(order)

	default:
		trades, err := ob.match(order)
		if err != nil {
			return trades, err
		}
		if order.remaining.Sign() > 0 {
			ob.sideOf(order.side).getOrCreate(order.price).addOrder(order)
		}
		return trades, nil
	}
}

// Snapshot returns up to depth levels per side. Use FullDepth for the whole
// book.
func (ob *OrderBook) Snapshot(depth int) (Snapshot, error) {
	if depth <= 0 {
		return Snapshot{}, fmt.Errorf("%w: depth must be positive, got %d", ErrInvalidDepth, depth)
	}
	return Snapshot{
		Symbol: ob.symbol,
		Bids:   ob.bids.levelsView(depth),
		Asks:   ob.asks.levelsView(depth),
	}, nil
}

// Trades returns up to limit of the most recent trades, newest first.
func (ob *OrderBook) Trades(limit int) ([]Trade, error) {
	if limit < 0 {
		return nil, fmt.Errorf("%w: limit must not be negative, got %d", ErrInvalidLimit, limit)
	}
	return ob.history.latest(limit), nil
}

// BestBid returns the highest resting buy price
func (ob *OrderBook) BestBid() (decimal.Decimal, bool) {
	level, ok := ob.bids.best()
	if !ok {
		return decimal.Zero, false
	}
	return level.price, true
}

// BestAsk returns the lowest resting sell price
func (ob *OrderBook) BestAsk() (decimal.Decimal, bool) {
	level, ok := ob.asks.best()
	if !ok {
		return decimal.Zero, false
	}
	return level.price, true
}

// Depth returns the number of price levels on each side
func (ob *OrderBook) Depth() (bids, asks int) {
	return ob.bids.len(), ob.asks.len()
}

// String implements fmt.Stringer interface
func (ob *OrderBook) String() string {
	builder := strings.Builder{}

	builder.WriteString(ob.symbol)
	builder.WriteString("\nAsk:")
	builder.WriteString(ob.asks.String())
	builder.WriteString("\n")

	builder.WriteString("Bid:")
	builder.WriteString(ob.bids.String())
	builder.WriteString("\n")

	return builder.String()
}

// private methods

func (ob *OrderBook) validate(order *Order) error {
	if order == nil {
		return fmt.Errorf("%w: order is nil", ErrInvalidArgument)
	}
	if order.quantity.Sign() <= 0 {
		return fmt.Errorf("%w: quantity must be positive, got %s", ErrInvalidQuantity, order.quantity)
	}
	if order.remaining.Sign() <= 0 {
		return fmt.Errorf("%w: remaining must be positive, got %s", ErrInvalidRemaining, order.remaining)
	}
	if order.remaining.GreaterThan(order.quantity) {
		return fmt.Errorf("%w: remaining %s exceeds quantity %s", ErrInvalidRemaining, order.remaining, order.quantity)
	}
	if order.price.Sign() <= 0 {
		return fmt.Errorf("%w: price must be positive, got %s", ErrInvalidPrice, order.price)
	}
	if order.symbol != ob.symbol {
		return fmt.Errorf("%w: symbol %q does not match book %q", ErrSymbolMismatch, order.symbol, ob.symbol)
	}
	if order.side != Buy && order.side != Sell {
		return fmt.Errorf("%w: %d", ErrInvalidSide, int(order.side))
	}
	switch order.tif {
	case GTC, IOC, FOK:
	default:
		return fmt.Errorf("%w: %q", ErrInvalidTif, order.tif)
	}
	return nil
}

func (ob *OrderBook) sideOf(side Side) *bookSide {
	if side == Buy {
		return ob.bids
	}
	return ob.asks
}

// canFullyFill sums eligible opposite liquidity from the best price outward
// and reports whether it covers the order's original quantity.
func (ob *OrderBook) canFullyFill(order *Order) bool {
	available := decimal.Zero
	ob.sideOf(order.side.Opposite()).walkEligible(order.price, func(level *PriceLevel) bool {
		available = available.Add(level.totalRemaining)
		return available.LessThan(order.quantity)
	})
	return available.GreaterThanOrEqual(order.quantity)
}

// match consumes eligible opposite liquidity in price-time priority until
// the taker is filled or no crossing level remains.
func (ob *OrderBook) match(taker *Order) ([]Trade, error) {
	opposite := ob.sideOf(taker.side.Opposite())
	trades := make([]Trade, 0)
	drained := make([]*PriceLevel, 0)
	var err error

	opposite.walkEligible(taker.price, func(level *PriceLevel) bool {
		if !level.isEmpty() && level.totalRemaining.Sign() <= 0 {
			err = ob.invariant(taker, "level %s has %d orders but total remaining %s", level.price, level.Len(), level.totalRemaining)
			return false
		}

		for taker.remaining.Sign() > 0 && !level.isEmpty() {
			maker := level.head()
			if maker.remaining.Sign() <= 0 {
				err = ob.invariant(taker, "resting order %s has remaining %s", maker.id, maker.remaining)
				return false
			}

			tradeQty := decimal.Min(taker.remaining, maker.remaining)
			trade := Trade{
				ID:           ob.newID(),
				Symbol:       ob.symbol,
				Price:        maker.price,
				Quantity:     tradeQty,
				TakerOrderID: taker.id,
				MakerOrderID: maker.id,
				TakerSide:    taker.side,
				Timestamp:    ob.now(),
			}

			level.consumeFromHead(tradeQty)
			taker.decreaseRemaining(tradeQty)
			if taker.remaining.Sign() < 0 {
				err = ob.invariant(taker, "taker overfilled, remaining %s", taker.remaining)
				return false
			}

			ob.history.add(trade)
			trades = append(trades, trade)
		}

		if level.isEmpty() {
			drained = append(drained, level)
		}
		return taker.remaining.Sign() > 0
	})

	for _, level := range drained {
		opposite.remove(level)
	}
	return trades, err
}

func (ob *OrderBook) invariant(order *Order, format string, args ...any) error {
	err := fmt.Errorf("%w: "+format, append([]any{ErrInvariantViolation}, args...)...)
	ob.logger.Error().Err(err).Str("order_id", order.id).Msg("order book invariant violated")
	return err
}
