package marketmaker

import (
	"context"
	"fmt"

	"github.com/erain9/matchingo/pkg/api/rpc"
	"github.com/erain9/matchingo/pkg/otel"
	"github.com/rs/zerolog"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Ensure grpcOrderPlacer implements OrderPlacer interface
var _ OrderPlacer = (*grpcOrderPlacer)(nil)

// grpcOrderPlacer implements the OrderPlacer interface using a gRPC client.
type grpcOrderPlacer struct {
	client rpc.OrderBookServiceClient
	conn   *grpc.ClientConn
	cfg    *Config
	logger zerolog.Logger
}

// NewGRPCOrderPlacer creates a gRPC client for the matching service. The
// connection is established lazily on the first call.
func NewGRPCOrderPlacer(cfg *Config, logger zerolog.Logger) (OrderPlacer, error) {
	logger.Info().Str("address", cfg.MatchingoGRPCAddr).Msg("Connecting to Matchingo gRPC server")

	// Using insecure credentials for now. Add proper TLS in production.
	conn, err := grpc.NewClient(cfg.MatchingoGRPCAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otel.NewGRPCClientStatsHandler()),
		grpc.WithUserAgent("MatchingoMarketMaker/0.2"),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create gRPC client for %s: %w", cfg.MatchingoGRPCAddr, err)
	}

	return newOrderPlacer(rpc.NewOrderBookServiceClient(conn), conn, cfg, logger), nil
}

func newOrderPlacer(client rpc.OrderBookServiceClient, conn *grpc.ClientConn, cfg *Config, logger zerolog.Logger) *grpcOrderPlacer {
	return &grpcOrderPlacer{
		client: client,
		conn:   conn,
		cfg:    cfg,
		logger: logger.With().Str("component", "grpcOrderPlacer").Logger(),
	}
}

// SubmitOrder sends a SubmitOrder request to the Matchingo service.
func (p *grpcOrderPlacer) SubmitOrder(ctx context.Context, req *rpc.SubmitOrderRequest) (*rpc.SubmitOrderResponse, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.cfg.RequestTimeout)
	defer cancel()

	p.logger.Debug().
		Str("symbol", req.Symbol).
		Str("side", req.Side).
		Str("price", req.Price).
		Str("qty", req.Quantity).
		Str("tif", req.TimeInForce).
		Msg("Sending SubmitOrder request")

	resp, err := p.client.SubmitOrder(callCtx, req)
	if err != nil {
		p.logger.Error().Err(err).Str("symbol", req.Symbol).Msg("SubmitOrder RPC failed")
		return nil, fmt.Errorf("SubmitOrder failed: %w", err)
	}

	p.logger.Info().
		Str("symbol", resp.Order.Symbol).
		Str("order_id", resp.Order.ID).
		Str("status", resp.Order.Status).
		Int("trades", len(resp.Trades)).
		Msg("Successfully submitted order")
	return resp, nil
}

// GetOrderBook reads the current aggregated book.
func (p *grpcOrderPlacer) GetOrderBook(ctx context.Context, req *rpc.GetOrderBookRequest) (*rpc.GetOrderBookResponse, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.cfg.RequestTimeout)
	defer cancel()

	resp, err := p.client.GetOrderBook(callCtx, req)
	if err != nil {
		return nil, fmt.Errorf("GetOrderBook failed: %w", err)
	}
	return resp, nil
}

// Close closes the underlying gRPC connection.
func (p *grpcOrderPlacer) Close() error {
	if p.conn != nil {
		p.logger.Info().Msg("Closing gRPC connection")
		return p.conn.Close()
	}
	return nil
}
