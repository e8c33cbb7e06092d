package main

import (
	"fmt"

	"github.com/erain9/matchingo/pkg/core"
	"github.com/shopspring/decimal"
)

func main() {
	book := core.NewOrderBook("BTC-USD")

	fmt.Println("STEP 1: Adding sell orders to the order book")
	for _, ask := range []struct{ price, qty string }{
		{"10.00", "5"},
		{"10.50", "3"},
		{"11.00", "7"},
	} {
		order, _, err := book.SubmitLimitOrder("BTC-USD", core.Sell, decimal.RequireFromString(ask.price), decimal.RequireFromString(ask.qty), core.GTC)
		if err != nil {
			panic(err)
		}
		fmt.Printf("  rested %s\n", order.String())
	}

	fmt.Println("\nSTEP 2: A FOK buy for more than is offered up to its limit is killed")
	order, trades, err := book.SubmitLimitOrder("BTC-USD", core.Buy, decimal.RequireFromString("10.50"), decimal.RequireFromString("9"), core.FOK)
	if err != nil {
		panic(err)
	}
	fmt.Printf("  %s -> %d trades, status %s\n", order.ID(), len(trades), order.Status())

	fmt.Println("\nSTEP 3: A GTC buy sweeps two levels and rests the rest")
	order, trades, err = book.SubmitLimitOrder("BTC-USD", core.Buy, decimal.RequireFromString("10.50"), decimal.RequireFromString("10"), core.GTC)
	if err != nil {
		panic(err)
	}
	for _, t := range trades {
		fmt.Printf("  trade %s @ %s (maker %s)\n", t.Quantity, t.Price, t.MakerOrderID)
	}
	fmt.Printf("  taker remaining %s, status %s\n", order.Remaining(), order.Status())

	fmt.Println("\nSTEP 4: An IOC sell takes what it can and never rests")
	order, trades, err = book.SubmitLimitOrder("BTC-USD", core.Sell, decimal.RequireFromString("10.00"), decimal.RequireFromString("4"), core.IOC)
	if err != nil {
		panic(err)
	}
	fmt.Printf("  %d trades, unfilled %s discarded\n", len(trades), order.Remaining())

	snap, err := book.Snapshot(5)
	if err != nil {
		panic(err)
	}
	fmt.Println("\nBook:")
	for i := len(snap.Asks) - 1; i >= 0; i-- {
		fmt.Printf("  ASK %8s  %s\n", snap.Asks[i].Price, snap.Asks[i].Quantity)
	}
	for _, l := range snap.Bids {
		fmt.Printf("  BID %8s  %s\n", l.Price, l.Quantity)
	}

	recent, err := book.Trades(core.DefaultTradesLimit)
	if err != nil {
		panic(err)
	}
	fmt.Println("\nTrades, newest first:")
	for _, t := range recent {
		fmt.Printf("  %s %s @ %s taker=%s\n", t.TakerSide, t.Quantity, t.Price, t.TakerOrderID)
	}
}
