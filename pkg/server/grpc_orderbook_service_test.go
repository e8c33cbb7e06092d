package server

import (
	"context"
	"net"
	"testing"

	"github.com/erain9/matchingo/pkg/api/rpc"
	"github.com/erain9/matchingo/pkg/core"
	"github.com/erain9/matchingo/pkg/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func startTestServer(t *testing.T, svc *MatchingService) rpc.OrderBookServiceClient {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	grpcServer := grpc.NewServer(grpc.ChainUnaryInterceptor(logging.UnaryServerInterceptor()))
	RegisterOrderBookService(grpcServer, NewGRPCOrderBookService(svc))
	go func() {
		_ = grpcServer.Serve(lis)
	}()

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)

	t.Cleanup(func() {
		conn.Close()
		grpcServer.Stop()
	})
	return rpc.NewOrderBookServiceClient(conn)
}

func TestGRPCOrderBookService(t *testing.T) {
	ctx := context.Background()
	client := startTestServer(t, newTestService())

	t.Run("SubmitOrder_Rests", func(t *testing.T) {
		resp, err := client.SubmitOrder(ctx, &rpc.SubmitOrderRequest{
			Symbol: "BTC-USD", Side: "SELL", Price: "100.50", Quantity: "2",
		})
		require.NoError(t, err)
		assert.Empty(t, resp.Trades)
		assert.NotEmpty(t, resp.Order.ID)
		assert.Equal(t, "OPEN", resp.Order.Status)
		assert.Equal(t, "GTC", resp.Order.TimeInForce)
		assert.Equal(t, "100.5", resp.Order.Price)
	})

	t.Run("SubmitOrder_Matches", func(t *testing.T) {
		resp, err := client.SubmitOrder(ctx, &rpc.SubmitOrderRequest{
			Symbol: "btc-usd", Side: "buy", Price: "101", Quantity: "0.5", TimeInForce: "ioc",
		})
		require.NoError(t, err)
		require.Len(t, resp.Trades, 1)
		assert.Equal(t, "100.5", resp.Trades[0].Price)
		assert.Equal(t, "0.5", resp.Trades[0].Quantity)
		assert.Equal(t, "BUY", resp.Trades[0].TakerSide)
		assert.Equal(t, resp.Order.ID, resp.Trades[0].TakerOrderID)
		assert.Equal(t, "FILLED", resp.Order.Status)
	})

	t.Run("GetOrderBook", func(t *testing.T) {
		resp, err := client.GetOrderBook(ctx, &rpc.GetOrderBookRequest{Symbol: "BTC-USD"})
		require.NoError(t, err)
		assert.Equal(t, "BTC-USD", resp.Symbol)
		assert.Empty(t, resp.Bids)
		assert.Equal(t, []rpc.Level{{Price: "100.5", Quantity: "1.5"}}, resp.Asks)

		resp, err = client.GetOrderBook(ctx, &rpc.GetOrderBookRequest{Symbol: "BTC-USD", Depth: rpc.Int32(1)})
		require.NoError(t, err)
		assert.Len(t, resp.Asks, 1)
	})

	t.Run("GetTrades", func(t *testing.T) {
		resp, err := client.GetTrades(ctx, &rpc.GetTradesRequest{Symbol: "btc-usd"})
		require.NoError(t, err)
		assert.Equal(t, "BTC-USD", resp.Symbol)
		require.Len(t, resp.Trades, 1)

		resp, err = client.GetTrades(ctx, &rpc.GetTradesRequest{Symbol: "BTC-USD", Limit: rpc.Int32(0)})
		require.NoError(t, err)
		assert.Empty(t, resp.Trades)
	})

	t.Run("InvalidArguments", func(t *testing.T) {
		cases := []struct {
			name string
			call func() error
		}{
			{"BadSide", func() error {
				_, err := client.SubmitOrder(ctx, &rpc.SubmitOrderRequest{Symbol: "BTC-USD", Side: "HOLD", Price: "1", Quantity: "1"})
				return err
			}},
			{"BadPrice", func() error {
				_, err := client.SubmitOrder(ctx, &rpc.SubmitOrderRequest{Symbol: "BTC-USD", Side: "BUY", Price: "abc", Quantity: "1"})
				return err
			}},
			{"ZeroQuantity", func() error {
				_, err := client.SubmitOrder(ctx, &rpc.SubmitOrderRequest{Symbol: "BTC-USD", Side: "BUY", Price: "1", Quantity: "0"})
				return err
			}},
			{"BadTIF", func() error {
				_, err := client.SubmitOrder(ctx, &rpc.SubmitOrderRequest{Symbol: "BTC-USD", Side: "BUY", Price: "1", Quantity: "1", TimeInForce: "DAY"})
				return err
			}},
			{"EmptySymbol", func() error {
				_, err := client.SubmitOrder(ctx, &rpc.SubmitOrderRequest{Side: "BUY", Price: "1", Quantity: "1"})
				return err
			}},
			{"ZeroDepth", func() error {
				_, err := client.GetOrderBook(ctx, &rpc.GetOrderBookRequest{Symbol: "BTC-USD", Depth: rpc.Int32(0)})
				return err
			}},
			{"NegativeLimit", func() error {
				_, err := client.GetTrades(ctx, &rpc.GetTradesRequest{Symbol: "BTC-USD", Limit: rpc.Int32(-1)})
				return err
			}},
		}

		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				err := tc.call()
				require.Error(t, err)
				assert.Equal(t, codes.InvalidArgument, status.Code(err))
			})
		}
	})
}

func TestStatusFromError(t *testing.T) {
	assert.NoError(t, statusFromError(nil))
	assert.Equal(t, codes.InvalidArgument, status.Code(statusFromError(core.ErrInvalidDepth)))
	assert.Equal(t, codes.Internal, status.Code(statusFromError(core.ErrInvariantViolation)))
	assert.Equal(t, codes.Canceled, status.Code(statusFromError(context.Canceled)))
	assert.Equal(t, codes.DeadlineExceeded, status.Code(statusFromError(context.DeadlineExceeded)))
	assert.Equal(t, codes.Internal, status.Code(statusFromError(assert.AnError)))
}
