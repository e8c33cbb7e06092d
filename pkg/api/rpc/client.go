package rpc

import (
	"context"

	"google.golang.org/grpc"
)

// OrderBookServiceClient is the client API for OrderBookService
type OrderBookServiceClient interface {
	SubmitOrder(ctx context.Context, in *SubmitOrderRequest, opts ...grpc.CallOption) (*SubmitOrderResponse, error)
	GetOrderBook(ctx context.Context, in *GetOrderBookRequest, opts ...grpc.CallOption) (*GetOrderBookResponse, error)
	GetTrades(ctx context.Context, in *GetTradesRequest, opts ...grpc.CallOption) (*GetTradesResponse, error)
}

type orderBookServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewOrderBookServiceClient wraps cc. Every call uses the JSON codec.
func NewOrderBookServiceClient(cc grpc.ClientConnInterface) OrderBookServiceClient {
	return &orderBookServiceClient{cc: cc}
}

func (c *orderBookServiceClient) SubmitOrder(ctx context.Context, in *SubmitOrderRequest, opts ...grpc.CallOption) (*SubmitOrderResponse, error) {
	out := new(SubmitOrderResponse)
	if err := c.cc.Invoke(ctx, SubmitOrderMethod, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *orderBookServiceClient) GetOrderBook(ctx context.Context, in *GetOrderBookRequest, opts ...grpc.CallOption) (*GetOrderBookResponse, error) {
	out := new(GetOrderBookResponse)
	if err := c.cc.Invoke(ctx, GetOrderBookMethod, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *orderBookServiceClient) GetTrades(ctx context.Context, in *GetTradesRequest, opts ...grpc.CallOption) (*GetTradesResponse, error) {
	out := new(GetTradesResponse)
	if err := c.cc.Invoke(ctx, GetTradesMethod, in, out, withCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func withCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append([]grpc.CallOption{grpc.CallContentSubtype(CodecName)}, opts...)
}
