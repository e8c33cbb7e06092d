package core

import "github.com/eapache/queue"

// tradeHistory is a bounded ring of trades. Appending beyond capacity
// evicts the oldest entry.
type tradeHistory struct {
	capacity int
	trades   *queue.Queue
}

func newTradeHistory(capacity int) *tradeHistory {
	return &tradeHistory{
		capacity: capacity,
		trades:   queue.New(),
	}
}

func (th *tradeHistory) add(trade Trade) {
	th.trades.Add(trade)
	for th.trades.Length() > th.capacity {
		th.trades.Remove()
	}
}

func (th *tradeHistory) len() int {
	return th.trades.Length()
}

// latest returns up to limit trades, newest first.
func (th *tradeHistory) latest(limit int) []Trade {
	n := th.trades.Length()
	if limit < n {
		n = limit
	}
	out := make([]Trade, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, th.trades.Get(-1-i).(Trade))
	}
	return out
}
