package messaging

import (
	"context"
	"errors"
	"testing"

	"github.com/erain9/matchingo/pkg/core"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func placeCrossing(t *testing.T, tif core.TIF, qty string) (core.Order, []core.Trade) {
	t.Helper()
	book := core.NewOrderBook("BTC-USD")
	_, _, err := book.SubmitLimitOrder("BTC-USD", core.Sell, decimal.RequireFromString("100"), decimal.RequireFromString("1"), core.GTC)
	require.NoError(t, err)
	order, trades, err := book.SubmitLimitOrder("BTC-USD", core.Buy, decimal.RequireFromString("101"), decimal.RequireFromString(qty), tif)
	require.NoError(t, err)
	return order, trades
}

func TestNewTradeMessage(t *testing.T) {
	order, trades := placeCrossing(t, core.GTC, "1.5")

	msg := NewTradeMessage(order, trades)

	assert.Equal(t, "BTC-USD", msg.Symbol)
	assert.Equal(t, order.ID(), msg.OrderID)
	assert.Equal(t, "BUY", msg.Side)
	assert.Equal(t, "GTC", msg.TimeInForce)
	assert.Equal(t, "101", msg.Price)
	assert.Equal(t, "1.5", msg.Quantity)
	assert.Equal(t, "0.5", msg.Remaining)
	assert.Equal(t, string(core.StatusPartiallyFilled), msg.Status)
	assert.True(t, msg.Resting)
	require.Len(t, msg.Trades, 1)
	assert.Equal(t, "100", msg.Trades[0].Price)
	assert.Equal(t, "1", msg.Trades[0].Quantity)
	assert.Equal(t, order.ID(), msg.Trades[0].TakerOrderID)
}

func TestNewTradeMessageIOCDoesNotRest(t *testing.T) {
	order, trades := placeCrossing(t, core.IOC, "1.5")

	msg := NewTradeMessage(order, trades)

	assert.False(t, msg.Resting)
	assert.Equal(t, "0.5", msg.Remaining)
}

func TestMultiSender(t *testing.T) {
	first := NewMockMessageSender()
	second := NewMockMessageSender()
	boom := errors.New("boom")
	first.FailWith(boom)

	multi := MultiSender{first, second}
	err := multi.SendTradeMessage(context.Background(), &TradeMessage{Symbol: "ETH-USD"})

	assert.ErrorIs(t, err, boom)
	assert.Len(t, second.Messages(), 1, "later senders still receive the message")

	require.NoError(t, multi.Close())
	assert.True(t, first.Closed())
	assert.True(t, second.Closed())
}
