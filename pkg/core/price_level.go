package core

import (
	"fmt"

	"github.com/eapache/queue"
	"github.com/shopspring/decimal"
)

// PriceLevel is the FIFO of resting orders at one exact price together with
// the cached sum of their remaining quantities.
type PriceLevel struct {
	price          decimal.Decimal
	orders         *queue.Queue
	totalRemaining decimal.Decimal
}

func newPriceLevel(price decimal.Decimal) *PriceLevel {
	return &PriceLevel{
		price:          price,
		orders:         queue.New(),
		totalRemaining: decimal.Zero,
	}
}

// Price returns the level price
func (pl *PriceLevel) Price() decimal.Decimal {
	return pl.price
}

// TotalRemaining returns the aggregate remaining quantity at this level
func (pl *PriceLevel) TotalRemaining() decimal.Decimal {
	return pl.totalRemaining
}

// Len returns the number of queued orders
func (pl *PriceLevel) Len() int {
	return pl.orders.Length()
}

// Orders returns the queued orders from head to tail.
func (pl *PriceLevel) Orders() []*Order {
	out := make([]*Order, 0, pl.orders.Length())
	for i := 0; i < pl.orders.Length(); i++ {
		out = append(out, pl.orders.Get(i).(*Order))
	}
	return out
}

func (pl *PriceLevel) addOrder(order *Order) {
	pl.orders.Add(order)
	pl.totalRemaining = pl.totalRemaining.Add(order.remaining)
}

func (pl *PriceLevel) head() *Order {
	if pl.orders.Length() == 0 {
		return nil
	}
	return pl.orders.Peek().(*Order)
}

// consumeFromHead fills tradeQty of the head order and pops it once it has
// nothing left.
func (pl *PriceLevel) consumeFromHead(tradeQty decimal.Decimal) {
	head := pl.head()
	if head == nil {
		return
	}
	head.decreaseRemaining(tradeQty)
	pl.totalRemaining = pl.totalRemaining.Sub(tradeQty)
	if head.remaining.Sign() <= 0 {
		pl.orders.Remove()
	}
}

func (pl *PriceLevel) isEmpty() bool {
	return pl.orders.Length() == 0
}

func (pl *PriceLevel) level() Level {
	return Level{Price: pl.price, Quantity: pl.totalRemaining}
}

// String implements fmt.Stringer interface
func (pl *PriceLevel) String() string {
	return fmt.Sprintf("%s -> qty: %s orders: %d", pl.price, pl.totalRemaining, pl.orders.Length())
}
