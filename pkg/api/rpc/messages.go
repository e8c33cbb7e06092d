package rpc

import (
	"time"

	"github.com/erain9/matchingo/pkg/core"
)

// SubmitOrderRequest places a limit order. Price and Quantity are decimal
// strings; TimeInForce defaults to GTC when empty.
type SubmitOrderRequest struct {
	Symbol      string `json:"symbol"`
	Side        string `json:"side"`
	Price       string `json:"price"`
	Quantity    string `json:"quantity"`
	TimeInForce string `json:"timeInForce,omitempty"`
}

// SubmitOrderResponse carries the order after matching and the trades it
// produced in execution order.
type SubmitOrderResponse struct {
	Order  OrderRecord `json:"order"`
	Trades []Trade     `json:"trades"`
}

// OrderRecord is the wire form of an order
type OrderRecord struct {
	ID          string    `json:"id" yaml:"id"`
	Symbol      string    `json:"symbol" yaml:"symbol"`
	Side        string    `json:"side" yaml:"side"`
	Price       string    `json:"price" yaml:"price"`
	Quantity    string    `json:"quantity" yaml:"quantity"`
	Remaining   string    `json:"remaining" yaml:"remaining"`
	Status      string    `json:"status" yaml:"status"`
	TimeInForce string    `json:"timeInForce" yaml:"timeInForce"`
	Timestamp   time.Time `json:"timestamp" yaml:"timestamp"`
}

// Trade is the wire form of an execution
type Trade struct {
	ID           string    `json:"id" yaml:"id"`
	Symbol       string    `json:"symbol" yaml:"symbol"`
	Price        string    `json:"price" yaml:"price"`
	Quantity     string    `json:"quantity" yaml:"quantity"`
	TakerOrderID string    `json:"takerOrderId" yaml:"takerOrderId"`
	MakerOrderID string    `json:"makerOrderId" yaml:"makerOrderId"`
	TakerSide    string    `json:"takerSide" yaml:"takerSide"`
	Timestamp    time.Time `json:"timestamp" yaml:"timestamp"`
}

// Level is one aggregated price level
type Level struct {
	Price    string `json:"price" yaml:"price"`
	Quantity string `json:"quantity" yaml:"quantity"`
}

// GetOrderBookRequest asks for a depth-limited snapshot. A nil Depth means
// the whole book.
type GetOrderBookRequest struct {
	Symbol string `json:"symbol"`
	Depth  *int32 `json:"depth,omitempty"`
}

// GetOrderBookResponse lists bids best-first (descending) and asks
// best-first (ascending).
type GetOrderBookResponse struct {
	Symbol string  `json:"symbol" yaml:"symbol"`
	Bids   []Level `json:"bids" yaml:"bids"`
	Asks   []Level `json:"asks" yaml:"asks"`
}

// GetTradesRequest asks for recent trades. A nil Limit means the default
// of 50.
type GetTradesRequest struct {
	Symbol string `json:"symbol"`
	Limit  *int32 `json:"limit,omitempty"`
}

// GetTradesResponse lists trades newest first
type GetTradesResponse struct {
	Symbol string  `json:"symbol" yaml:"symbol"`
	Trades []Trade `json:"trades" yaml:"trades"`
}

// Int32 returns a pointer to v, for the optional request fields.
func Int32(v int32) *int32 {
	return &v
}

// FromOrder converts a core order to its wire form.
func FromOrder(o core.Order) OrderRecord {
	return OrderRecord{
		ID:          o.ID(),
		Symbol:      o.Symbol(),
		Side:        o.Side().String(),
		Price:       o.Price().String(),
		Quantity:    o.Quantity().String(),
		Remaining:   o.Remaining().String(),
		Status:      string(o.Status()),
		TimeInForce: string(o.TIF()),
		Timestamp:   o.Timestamp(),
	}
}

// FromTrades converts core trades, keeping their order.
func FromTrades(trades []core.Trade) []Trade {
	out := make([]Trade, 0, len(trades))
	for _, t := range trades {
		out = append(out, Trade{
			ID:           t.ID,
			Symbol:       t.Symbol,
			Price:        t.Price.String(),
			Quantity:     t.Quantity.String(),
			TakerOrderID: t.TakerOrderID,
			MakerOrderID: t.MakerOrderID,
			TakerSide:    t.TakerSide.String(),
			Timestamp:    t.Timestamp,
		})
	}
	return out
}

// FromLevels converts snapshot levels, keeping their order.
func FromLevels(levels []core.Level) []Level {
	out := make([]Level, 0, len(levels))
	for _, l := range levels {
		out = append(out, Level{Price: l.Price.String(), Quantity: l.Quantity.String()})
	}
	return out
}

// FromSnapshot converts a core snapshot.
func FromSnapshot(s core.Snapshot) *GetOrderBookResponse {
	return &GetOrderBookResponse{
		Symbol: s.Symbol,
		Bids:   FromLevels(s.Bids),
		Asks:   FromLevels(s.Asks),
	}
}
