package marketmaker

import (
	"context"
	"testing"

	"github.com/erain9/matchingo/pkg/core"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig() *Config {
	return &Config{
		MarketSymbol:      "BTC-USDT",
		NumLevels:         3,
		BaseSpreadPercent: decimal.RequireFromString("0.1"),  // 0.1%
		PriceStepPercent:  decimal.RequireFromString("0.05"), // 0.05%
		OrderSize:         decimal.RequireFromString("0.01"),
		PriceScale:        2,
	}
}

func TestLayeredSymmetricQuoting(t *testing.T) {
	strategy := NewLayeredSymmetricQuoting(testConfig(), zerolog.Nop())

	quotes, err := strategy.Quotes(context.Background(), decimal.RequireFromString("50000"))
	require.NoError(t, err)
	require.Len(t, quotes, 6)

	// half spread 25, step 25
	want := []struct {
		side  core.Side
		price string
	}{
		{core.Buy, "49975"}, {core.Sell, "50025"},
		{core.Buy, "49950"}, {core.Sell, "50050"},
		{core.Buy, "49925"}, {core.Sell, "50075"},
	}
	for i, w := range want {
		assert.Equal(t, w.side, quotes[i].Side, "quote %d", i)
		assert.True(t, quotes[i].Price.Equal(decimal.RequireFromString(w.price)), "quote %d price %s", i, quotes[i].Price)
		assert.True(t, quotes[i].Quantity.Equal(decimal.RequireFromString("0.01")))
	}
}

func TestQuotesRoundAwayFromReference(t *testing.T) {
	strategy := NewLayeredSymmetricQuoting(testConfig(), zerolog.Nop())

	quotes, err := strategy.Quotes(context.Background(), decimal.RequireFromString("123.456"))
	require.NoError(t, err)

	for _, q := range quotes {
		assert.LessOrEqual(t, -q.Price.Exponent(), int32(2), "price %s has too many decimals", q.Price)
		if q.Side == core.Buy {
			assert.True(t, q.Price.LessThan(decimal.RequireFromString("123.456")))
		} else {
			assert.True(t, q.Price.GreaterThan(decimal.RequireFromString("123.456")))
		}
	}
}

func TestQuotesRejectNonPositiveReference(t *testing.T) {
	strategy := NewLayeredSymmetricQuoting(testConfig(), zerolog.Nop())
	_, err := strategy.Quotes(context.Background(), decimal.Zero)
	assert.Error(t, err)
}
