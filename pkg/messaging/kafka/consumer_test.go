package kafka

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/erain9/matchingo/pkg/messaging"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogTradeMessage(t *testing.T) {
	var buf bytes.Buffer
	logger := zerolog.New(&buf)

	logTradeMessage(logger, &messaging.TradeMessage{
		Symbol:  "BTC-USD",
		OrderID: "o-9",
		Status:  "FILLED",
		Trades:  []messaging.Trade{{ID: "t-1"}, {ID: "t-2"}},
	})

	var entry map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Received trade message", entry["message"])
	assert.Equal(t, "BTC-USD", entry["symbol"])
	assert.Equal(t, "o-9", entry["order_id"])
	assert.EqualValues(t, 2, entry["trade_count"])
}
