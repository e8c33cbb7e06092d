package messaging

import (
	"context"
	"time"

	"github.com/erain9/matchingo/pkg/core"
)

// MessageSender defines an interface for publishing executions.
// This keeps the matching service independent of specific transports
// like Kafka or Redis.
type MessageSender interface {
	SendTradeMessage(ctx context.Context, msg *TradeMessage) error
	Close() error
}

// TradeMessage describes the outcome of one submitted order that traded.
type TradeMessage struct {
	Symbol      string    `json:"symbol"`
	OrderID     string    `json:"orderId"`
	Side        string    `json:"side"`
	TimeInForce string    `json:"timeInForce"`
	Price       string    `json:"price"`
	Quantity    string    `json:"quantity"`
	Remaining   string    `json:"remaining"`
	Status      string    `json:"status"`
	Resting     bool      `json:"resting"`
	Trades      []Trade   `json:"trades"`
	Timestamp   time.Time `json:"timestamp"`
}

// Trade represents a single execution inside a TradeMessage
type Trade struct {
	ID           string    `json:"id"`
	Price        string    `json:"price"`
	Quantity     string    `json:"quantity"`
	TakerOrderID string    `json:"takerOrderId"`
	MakerOrderID string    `json:"makerOrderId"`
	Timestamp    time.Time `json:"timestamp"`
}

// NewTradeMessage converts a placed order and its executions.
func NewTradeMessage(order core.Order, trades []core.Trade) *TradeMessage {
	msg := &TradeMessage{
		Symbol:      order.Symbol(),
		OrderID:     order.ID(),
		Side:        order.Side().String(),
		TimeInForce: string(order.TIF()),
		Price:       order.Price().String(),
		Quantity:    order.Quantity().String(),
		Remaining:   order.Remaining().String(),
		Status:      string(order.Status()),
		Resting:     order.TIF() == core.GTC && order.Remaining().Sign() > 0,
		Trades:      make([]Trade, 0, len(trades)),
		Timestamp:   order.Timestamp(),
	}
	for _, t := range trades {
		msg.Trades = append(msg.Trades, Trade{
			ID:           t.ID,
			Price:        t.Price.String(),
			Quantity:     t.Quantity.String(),
			TakerOrderID: t.TakerOrderID,
			MakerOrderID: t.MakerOrderID,
			Timestamp:    t.Timestamp,
		})
	}
	return msg
}

// MultiSender fans a message out to several senders in order.
type MultiSender []MessageSender

// SendTradeMessage sends to every sender and returns the first error.
func (m MultiSender) SendTradeMessage(ctx context.Context, msg *TradeMessage) error {
	var firstErr error
	for _, s := range m {
		if err := s.SendTradeMessage(ctx, msg); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

// Close closes every sender and returns the first error.
func (m MultiSender) Close() error {
	var firstErr error
	for _, s := range m {
		if err := s.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
