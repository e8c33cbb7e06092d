// Package server contains the matching service and its gRPC adapter.
package server

import (
	"context"
	"errors"

	"github.com/erain9/matchingo/pkg/api/rpc"
	"github.com/erain9/matchingo/pkg/backend/memory"
	"github.com/erain9/matchingo/pkg/core"
	"github.com/erain9/matchingo/pkg/logging"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// GRPCOrderBookService implements the OrderBookService gRPC interface
type GRPCOrderBookService struct {
	rpc.UnimplementedOrderBookServiceServer
	service *MatchingService
}

// NewGRPCOrderBookService creates a new GRPCOrderBookService
func NewGRPCOrderBookService(service *MatchingService) *GRPCOrderBookService {
	return &GRPCOrderBookService{
		service: service,
	}
}

// statusFromError maps engine errors onto gRPC status codes
func statusFromError(err error) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, core.ErrInvalidArgument):
		return status.Error(codes.InvalidArgument, err.Error())
	case errors.Is(err, core.ErrInvariantViolation):
		return status.Error(codes.Internal, err.Error())
	case errors.Is(err, context.Canceled):
		return status.Error(codes.Canceled, err.Error())
	case errors.Is(err, context.DeadlineExceeded):
		return status.Error(codes.DeadlineExceeded, err.Error())
	default:
		return status.Errorf(codes.Internal, "unexpected error: %v", err)
	}
}

// SubmitOrder implements the SubmitOrder RPC method
func (s *GRPCOrderBookService) SubmitOrder(ctx context.Context, req *rpc.SubmitOrderRequest) (*rpc.SubmitOrderResponse, error) {
	logger := logging.FromContext(ctx).With().Str("method", "SubmitOrder").Logger()
	logger.Debug().
		Str("symbol", req.Symbol).
		Str("side", req.Side).
		Str("price", req.Price).
		Str("quantity", req.Quantity).
		Str("tif", req.TimeInForce).
		Msg("Request received")

	side, err := core.ParseSide(req.Side)
	if err != nil {
		return nil, statusFromError(err)
	}
	price, err := core.ParsePrice(req.Price)
	if err != nil {
		return nil, statusFromError(err)
	}
	quantity, err := core.ParseQuantity(req.Quantity)
	if err != nil {
		return nil, statusFromError(err)
	}
	tif, err := core.ParseTIF(req.TimeInForce)
	if err != nil {
		return nil, statusFromError(err)
	}

	order, trades, err := s.service.SubmitLimitOrder(ctx, req.Symbol, side, price, quantity, tif)
	if err != nil {
		return nil, statusFromError(err)
	}

	return &rpc.SubmitOrderResponse{
		Order:  rpc.FromOrder(order),
		Trades: rpc.FromTrades(trades),
	}, nil
}

// GetOrderBook returns a depth-limited snapshot of a symbol's book
func (s *GRPCOrderBookService) GetOrderBook(ctx context.Context, req *rpc.GetOrderBookRequest) (*rpc.GetOrderBookResponse, error) {
	depth := core.FullDepth
	if req.Depth != nil {
		depth = int(*req.Depth)
	}
	logger := logging.FromContext(ctx)
	logger.Debug().Str("method", "GetOrderBook").Str("symbol", req.Symbol).Int("depth", depth).Msg("Request received")

	snap, err := s.service.Snapshot(ctx, req.Symbol, depth)
	if err != nil {
		return nil, statusFromError(err)
	}
	return rpc.FromSnapshot(snap), nil
}

// GetTrades returns a symbol's most recent trades, newest first
func (s *GRPCOrderBookService) GetTrades(ctx context.Context, req *rpc.GetTradesRequest) (*rpc.GetTradesResponse, error) {
	limit := core.DefaultTradesLimit
	if req.Limit != nil {
		limit = int(*req.Limit)
	}
	logger := logging.FromContext(ctx)
	logger.Debug().Str("method", "GetTrades").Str("symbol", req.Symbol).Int("limit", limit).Msg("Request received")

	trades, err := s.service.Trades(ctx, req.Symbol, limit)
	if err != nil {
		return nil, statusFromError(err)
	}
	return &rpc.GetTradesResponse{
		Symbol: memory.NormalizeSymbol(req.Symbol),
		Trades: rpc.FromTrades(trades),
	}, nil
}
