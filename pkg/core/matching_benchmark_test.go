package core

import (
	"fmt"
	"testing"

	"github.com/shopspring/decimal"
)

func seedAsks(b *testing.B, ob *OrderBook) {
	b.Helper()
	for i := 0; i < 100; i++ {
		price := decimal.NewFromInt(10000 + int64(i)*10).Shift(-2)
		quantity := decimal.NewFromInt(1 + int64(i%5))
		if _, _, err := ob.SubmitLimitOrder(testSymbol, Sell, price, quantity, GTC); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkLimitOrderMatching measures a crossing buy that is refilled each round
func BenchmarkLimitOrderMatching(b *testing.B) {
	ob := NewOrderBook(testSymbol)
	seedAsks(b, ob)
	price := d("100.00")
	qty := d("0.5")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := ob.SubmitLimitOrder(testSymbol, Buy, price, qty, IOC); err != nil {
			b.Fatal(err)
		}
		if _, _, err := ob.SubmitLimitOrder(testSymbol, Sell, price, qty, GTC); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkRestingInsert measures GTC orders that never cross
func BenchmarkRestingInsert(b *testing.B) {
	ob := NewOrderBook(testSymbol)
	qty := d("1")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		price := decimal.NewFromInt(int64(1 + i%500))
		if _, _, err := ob.SubmitLimitOrder(testSymbol, Buy, price, qty, GTC); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkFOKRejection measures the feasibility scan on an infeasible order
func BenchmarkFOKRejection(b *testing.B) {
	ob := NewOrderBook(testSymbol)
	seedAsks(b, ob)
	price := d("110.00")
	qty := d("100000")

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, _, err := ob.SubmitLimitOrder(testSymbol, Buy, price, qty, FOK); err != nil {
			b.Fatal(err)
		}
	}
}

// BenchmarkSnapshot measures a full depth snapshot of a populated book
func BenchmarkSnapshot(b *testing.B) {
	for _, depth := range []int{10, FullDepth} {
		b.Run(fmt.Sprintf("depth-%d", depth), func(b *testing.B) {
			ob := NewOrderBook(testSymbol)
			seedAsks(b, ob)
			b.ResetTimer()
			for i := 0; i < b.N; i++ {
				if _, err := ob.Snapshot(depth); err != nil {
					b.Fatal(err)
				}
			}
		})
	}
}
