package rpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Service and method names
const (
	ServiceName = "matchingo.v1.OrderBookService"

	SubmitOrderMethod  = "/" + ServiceName + "/SubmitOrder"
	GetOrderBookMethod = "/" + ServiceName + "/GetOrderBook"
	GetTradesMethod    = "/" + ServiceName + "/GetTrades"
)

// OrderBookServiceServer is the server API for OrderBookService
type OrderBookServiceServer interface {
	SubmitOrder(context.Context, *SubmitOrderRequest) (*SubmitOrderResponse, error)
	GetOrderBook(context.Context, *GetOrderBookRequest) (*GetOrderBookResponse, error)
	GetTrades(context.Context, *GetTradesRequest) (*GetTradesResponse, error)
}

// UnimplementedOrderBookServiceServer can be embedded to have forward
// compatible implementations.
type UnimplementedOrderBookServiceServer struct{}

func (UnimplementedOrderBookServiceServer) SubmitOrder(context.Context, *SubmitOrderRequest) (*SubmitOrderResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method SubmitOrder not implemented")
}

func (UnimplementedOrderBookServiceServer) GetOrderBook(context.Context, *GetOrderBookRequest) (*GetOrderBookResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetOrderBook not implemented")
}

func (UnimplementedOrderBookServiceServer) GetTrades(context.Context, *GetTradesRequest) (*GetTradesResponse, error) {
	return nil, status.Errorf(codes.Unimplemented, "method GetTrades not implemented")
}

// RegisterOrderBookServiceServer registers srv on s
func RegisterOrderBookServiceServer(s grpc.ServiceRegistrar, srv OrderBookServiceServer) {
	s.RegisterService(&OrderBookServiceDesc, srv)
}

func submitOrderHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(SubmitOrderRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderBookServiceServer).SubmitOrder(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: SubmitOrderMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OrderBookServiceServer).SubmitOrder(ctx, req.(*SubmitOrderRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getOrderBookHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetOrderBookRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderBookServiceServer).GetOrderBook(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetOrderBookMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OrderBookServiceServer).GetOrderBook(ctx, req.(*GetOrderBookRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func getTradesHandler(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
	in := new(GetTradesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(OrderBookServiceServer).GetTrades(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: GetTradesMethod}
	handler := func(ctx context.Context, req interface{}) (interface{}, error) {
		return srv.(OrderBookServiceServer).GetTrades(ctx, req.(*GetTradesRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// OrderBookServiceDesc is the grpc.ServiceDesc for OrderBookService
var OrderBookServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*OrderBookServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "SubmitOrder", Handler: submitOrderHandler},
		{MethodName: "GetOrderBook", Handler: getOrderBookHandler},
		{MethodName: "GetTrades", Handler: getTradesHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "matchingo/v1/orderbook.json",
}
