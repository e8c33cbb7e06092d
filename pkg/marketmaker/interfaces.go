package marketmaker

import (
	"context"

	"github.com/erain9/matchingo/pkg/api/rpc"
	"github.com/erain9/matchingo/pkg/core"
	"github.com/shopspring/decimal"
)

// PriceFetcher defines the interface for fetching current market prices
type PriceFetcher interface {
	// FetchPrice returns the current reference price for the configured symbol
	FetchPrice(ctx context.Context) (decimal.Decimal, error)
	// Close releases any resources held by the price fetcher
	Close() error
}

// OrderPlacer submits orders and reads the book. Orders cannot be
// cancelled, so the market maker only ever adds liquidity.
type OrderPlacer interface {
	SubmitOrder(ctx context.Context, req *rpc.SubmitOrderRequest) (*rpc.SubmitOrderResponse, error)
	GetOrderBook(ctx context.Context, req *rpc.GetOrderBookRequest) (*rpc.GetOrderBookResponse, error)
	Close() error
}

// Quote is one target price level the strategy wants resting
type Quote struct {
	Side     core.Side
	Price    decimal.Decimal
	Quantity decimal.Decimal
}

// Strategy computes the target ladder around a reference price
type Strategy interface {
	Quotes(ctx context.Context, reference decimal.Decimal) ([]Quote, error)
}
