package core

import (
	"encoding/json"
	"time"

	"github.com/shopspring/decimal"
)

// Trade is an immutable record of one execution between a taker and a
// resting maker. It always prints at the maker's price.
type Trade struct {
	ID           string
	Symbol       string
	Price        decimal.Decimal
	Quantity     decimal.Decimal
	TakerOrderID string
	MakerOrderID string
	TakerSide    Side
	Timestamp    time.Time
}

// MarshalJSON implements Marshaler interface
func (t Trade) MarshalJSON() ([]byte, error) {
	customStruct := struct {
		ID           string    `json:"id"`
		Symbol       string    `json:"symbol"`
		Price        string    `json:"price"`
		Quantity     string    `json:"quantity"`
		TakerOrderID string    `json:"takerOrderId"`
		MakerOrderID string    `json:"makerOrderId"`
		TakerSide    Side      `json:"takerSide"`
		Timestamp    time.Time `json:"timestamp"`
	}{
		ID:           t.ID,
		Symbol:       t.Symbol,
		Price:        t.Price.String(),
		Quantity:     t.Quantity.String(),
		TakerOrderID: t.TakerOrderID,
		MakerOrderID: t.MakerOrderID,
		TakerSide:    t.TakerSide,
		Timestamp:    t.Timestamp,
	}
	return json.Marshal(customStruct)
}

// Level is the aggregate resting quantity at one price.
type Level struct {
	Price    decimal.Decimal `json:"price"`
	Quantity decimal.Decimal `json:"quantity"`
}

// Snapshot is a read-only view of both sides of a book. Bids are sorted by
// price descending, asks ascending.
type Snapshot struct {
	Symbol string  `json:"symbol"`
	Bids   []Level `json:"bids"`
	Asks   []Level `json:"asks"`
}

// BestBid returns the highest bid level if any.
func (s Snapshot) BestBid() (Level, bool) {
	if len(s.Bids) == 0 {
		return Level{}, false
	}
	return s.Bids[0], true
}

// BestAsk returns the lowest ask level if any.
func (s Snapshot) BestAsk() (Level, bool) {
	if len(s.Asks) == 0 {
		return Level{}, false
	}
	return s.Asks[0], true
}

// Spread returns best ask minus best bid when both sides are present.
func (s Snapshot) Spread() (decimal.Decimal, bool) {
	bid, okBid := s.BestBid()
	ask, okAsk := s.BestAsk()
	if !okBid || !okAsk {
		return decimal.Zero, false
	}
	return ask.Price.Sub(bid.Price), true
}
