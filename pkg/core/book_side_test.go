package core

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func levelPrices(levels []Level) []string {
	out := make([]string, len(levels))
	for i, l := range levels {
		out[i] = l.Price.String()
	}
	return out
}

func TestBookSideOrdering(t *testing.T) {
	bids := newBookSide(Buy)
	asks := newBookSide(Sell)
	for _, p := range []string{"100", "102", "99.5", "101"} {
		bids.getOrCreate(d(p))
		asks.getOrCreate(d(p))
	}

	assert.Equal(t, []string{"102", "101", "100", "99.5"}, levelPrices(bids.levelsView(FullDepth)))
	assert.Equal(t, []string{"99.5", "100", "101", "102"}, levelPrices(asks.levelsView(FullDepth)))
	assert.Equal(t, []string{"102", "101"}, levelPrices(bids.levelsView(2)))

	best, ok := bids.best()
	require.True(t, ok)
	assert.True(t, best.Price().Equal(d("102")))
	best, ok = asks.best()
	require.True(t, ok)
	assert.True(t, best.Price().Equal(d("99.5")))
}

func TestBookSideNumericKeys(t *testing.T) {
	side := newBookSide(Sell)
	a := side.getOrCreate(d("100"))
	b := side.getOrCreate(d("100.00"))
	assert.Same(t, a, b)
	assert.Equal(t, 1, side.len())

	side.remove(a)
	assert.Equal(t, 0, side.len())
	_, ok := side.best()
	assert.False(t, ok)
}

func TestBookSideWalkEligible(t *testing.T) {
	asks := newBookSide(Sell)
	bids := newBookSide(Buy)
	for _, p := range []string{"10", "11", "12"} {
		asks.getOrCreate(d(p))
		bids.getOrCreate(d(p))
	}

	var seen []string
	asks.walkEligible(d("11"), func(level *PriceLevel) bool {
		seen = append(seen, level.Price().String())
		return true
	})
	assert.Equal(t, []string{"10", "11"}, seen, "a buy at 11 crosses asks up to and including 11")

	seen = nil
	bids.walkEligible(d("11"), func(level *PriceLevel) bool {
		seen = append(seen, level.Price().String())
		return true
	})
	assert.Equal(t, []string{"12", "11"}, seen, "a sell at 11 crosses bids down to and including 11")
}

func TestTradeHistoryRing(t *testing.T) {
	th := newTradeHistory(3)
	assert.Empty(t, th.latest(10))

	for i := 1; i <= 5; i++ {
		th.add(Trade{ID: fmt.Sprintf("t%d", i)})
	}
	assert.Equal(t, 3, th.len())

	ids := func(trades []Trade) []string {
		out := make([]string, len(trades))
		for i, tr := range trades {
			out[i] = tr.ID
		}
		return out
	}
	assert.Equal(t, []string{"t5", "t4", "t3"}, ids(th.latest(10)))
	assert.Equal(t, []string{"t5"}, ids(th.latest(1)))
	assert.Empty(t, th.latest(0))
}
