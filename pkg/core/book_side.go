package core

import (
	"strings"

	"github.com/google/btree"
	"github.com/shopspring/decimal"
)

const bookSideDegree = 16

// bookSide indexes the price levels of one side of the book. Prices are
// compared numerically so 100, 100.0 and 100.00 address the same level.
type bookSide struct {
	side   Side
	levels *btree.BTreeG[*PriceLevel]
}

func newBookSide(side Side) *bookSide {
	return &bookSide{
		side: side,
		levels: btree.NewG(bookSideDegree, func(a, b *PriceLevel) bool {
			return a.price.LessThan(b.price)
		}),
	}
}

func (bs *bookSide) get(price decimal.Decimal) (*PriceLevel, bool) {
	return bs.levels.Get(&PriceLevel{price: price})
}

// getOrCreate returns the level at price, inserting an empty one if needed.
func (bs *bookSide) getOrCreate(price decimal.Decimal) *PriceLevel {
	if level, ok := bs.get(price); ok {
		return level
	}
	level := newPriceLevel(price)
	bs.levels.ReplaceOrInsert(level)
	return level
}

func (bs *bookSide) remove(level *PriceLevel) {
	bs.levels.Delete(level)
}

func (bs *bookSide) len() int {
	return bs.levels.Len()
}

// best returns the level a taker would hit first: the highest bid or the
// lowest ask.
func (bs *bookSide) best() (*PriceLevel, bool) {
	if bs.side == Buy {
		return bs.levels.Max()
	}
	return bs.levels.Min()
}

// walk visits levels from best to worst until fn returns false.
func (bs *bookSide) walk(fn func(level *PriceLevel) bool) {
	if bs.side == Buy {
		bs.levels.Descend(fn)
		return
	}
	bs.levels.Ascend(fn)
}

// crosses reports whether a resting level at levelPrice is eligible for a
// taker limited at limit. Equality crosses.
func (bs *bookSide) crosses(levelPrice, limit decimal.Decimal) bool {
	if bs.side == Sell {
		return levelPrice.LessThanOrEqual(limit)
	}
	return levelPrice.GreaterThanOrEqual(limit)
}

// walkEligible visits levels from best to worst while they cross limit.
func (bs *bookSide) walkEligible(limit decimal.Decimal, fn func(level *PriceLevel) bool) {
	bs.walk(func(level *PriceLevel) bool {
		if !bs.crosses(level.price, limit) {
			return false
		}
		return fn(level)
	})
}

// levelsView returns up to depth aggregated levels from best to worst.
func (bs *bookSide) levelsView(depth int) []Level {
	size := bs.levels.Len()
	if depth < size {
		size = depth
	}
	out := make([]Level, 0, size)
	bs.walk(func(level *PriceLevel) bool {
		if len(out) >= depth {
			return false
		}
		out = append(out, level.level())
		return true
	})
	return out
}

// String implements fmt.Stringer interface
func (bs *bookSide) String() string {
	sb := strings.Builder{}
	bs.walk(func(level *PriceLevel) bool {
		sb.WriteString("\n")
		sb.WriteString(level.String())
		return true
	})
	return sb.String()
}
