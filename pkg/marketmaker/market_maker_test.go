package marketmaker

import (
	"context"
	"errors"
	"net"
	"sync"
	"testing"
	"time"

	"github.com/erain9/matchingo/pkg/api/rpc"
	"github.com/erain9/matchingo/pkg/backend/memory"
	"github.com/erain9/matchingo/pkg/core"
	"github.com/erain9/matchingo/pkg/server"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
)

// bookPlacer places orders straight into an in-process order book
type bookPlacer struct {
	mu        sync.Mutex
	book      *core.OrderBook
	submitted []*rpc.SubmitOrderRequest
}

func newBookPlacer() *bookPlacer {
	return &bookPlacer{book: core.NewOrderBook("BTC-USDT")}
}

func (p *bookPlacer) SubmitOrder(_ context.Context, req *rpc.SubmitOrderRequest) (*rpc.SubmitOrderResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	side, err := core.ParseSide(req.Side)
	if err != nil {
		return nil, err
	}
	tif, err := core.ParseTIF(req.TimeInForce)
	if err != nil {
		return nil, err
	}
	order, trades, err := p.book.SubmitLimitOrder(req.Symbol, side,
		decimal.RequireFromString(req.Price), decimal.RequireFromString(req.Quantity), tif)
	if err != nil {
		return nil, err
	}
	p.submitted = append(p.submitted, req)
	return &rpc.SubmitOrderResponse{Order: rpc.FromOrder(order), Trades: rpc.FromTrades(trades)}, nil
}

func (p *bookPlacer) GetOrderBook(_ context.Context, _ *rpc.GetOrderBookRequest) (*rpc.GetOrderBookResponse, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	snap, err := p.book.Snapshot(core.FullDepth)
	if err != nil {
		return nil, err
	}
	return rpc.FromSnapshot(snap), nil
}

func (p *bookPlacer) Close() error { return nil }

func (p *bookPlacer) count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.submitted)
}

type staticPrice struct {
	price decimal.Decimal
	err   error
}

func (s staticPrice) FetchPrice(context.Context) (decimal.Decimal, error) { return s.price, s.err }
func (s staticPrice) Close() error                                        { return nil }

func newTestMarketMaker(placer OrderPlacer, fetcher PriceFetcher) *MarketMaker {
	cfg := testConfig()
	cfg.UpdateInterval = 10 * time.Millisecond
	return NewMarketMaker(cfg, zerolog.Nop(), placer, fetcher,
		NewLayeredSymmetricQuoting(cfg, zerolog.Nop()))
}

func levelQuantity(t *testing.T, levels []rpc.Level, price string) string {
	t.Helper()
	for _, l := range levels {
		if l.Price == price {
			return l.Quantity
		}
	}
	t.Fatalf("no level at %s", price)
	return ""
}

func TestMarketMaker_UpdateOrders(t *testing.T) {
	ctx := context.Background()
	reference := staticPrice{price: decimal.RequireFromString("50000")}

	t.Run("FillsEmptyLadder", func(t *testing.T) {
		placer := newBookPlacer()
		mm := newTestMarketMaker(placer, reference)

		placed, err := mm.updateOrders(ctx)
		require.NoError(t, err)
		assert.Equal(t, 6, placed)

		book, err := placer.GetOrderBook(ctx, nil)
		require.NoError(t, err)
		require.Len(t, book.Bids, 3)
		require.Len(t, book.Asks, 3)
		assert.Equal(t, "49975", book.Bids[0].Price)
		assert.Equal(t, "50025", book.Asks[0].Price)
		assert.Equal(t, "0.01", book.Bids[0].Quantity)
	})

	t.Run("FullLadderPlacesNothing", func(t *testing.T) {
		placer := newBookPlacer()
		mm := newTestMarketMaker(placer, reference)

		_, err := mm.updateOrders(ctx)
		require.NoError(t, err)
		placed, err := mm.updateOrders(ctx)
		require.NoError(t, err)
		assert.Zero(t, placed)
	})

	t.Run("TopsUpPartiallyFilledLevel", func(t *testing.T) {
		placer := newBookPlacer()
		mm := newTestMarketMaker(placer, reference)

		_, err := mm.updateOrders(ctx)
		require.NoError(t, err)

		// an outside seller hits the best bid
		_, err = placer.SubmitOrder(ctx, &rpc.SubmitOrderRequest{
			Symbol: "BTC-USDT", Side: "SELL", Price: "49975", Quantity: "0.004", TimeInForce: "IOC",
		})
		require.NoError(t, err)

		before := placer.count()
		placed, err := mm.updateOrders(ctx)
		require.NoError(t, err)
		require.Equal(t, 1, placed)

		last := placer.submitted[before]
		assert.Equal(t, "BUY", last.Side)
		assert.Equal(t, "49975", last.Price)
		assert.Equal(t, "0.004", last.Quantity)
		assert.Equal(t, "GTC", last.TimeInForce)

		book, err := placer.GetOrderBook(ctx, nil)
		require.NoError(t, err)
		assert.Equal(t, "0.01", levelQuantity(t, book.Bids, "49975"))
	})

	t.Run("SkipsQuotesThatWouldCross", func(t *testing.T) {
		placer := newBookPlacer()
		mm := newTestMarketMaker(placer, reference)

		_, err := placer.SubmitOrder(ctx, &rpc.SubmitOrderRequest{
			Symbol: "BTC-USDT", Side: "SELL", Price: "49950", Quantity: "1",
		})
		require.NoError(t, err)

		placed, err := mm.updateOrders(ctx)
		require.NoError(t, err)
		// bids at 49975 and 49950 would trade, 49925 and all asks rest
		assert.Equal(t, 4, placed)

		book, err := placer.GetOrderBook(ctx, nil)
		require.NoError(t, err)
		require.Len(t, book.Bids, 1)
		assert.Equal(t, "49925", book.Bids[0].Price)
		assert.Equal(t, "1", levelQuantity(t, book.Asks, "49950"))
	})

	t.Run("PriceFetchError", func(t *testing.T) {
		placer := newBookPlacer()
		mm := newTestMarketMaker(placer, staticPrice{err: errors.New("source down")})

		_, err := mm.updateOrders(ctx)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "source down")
		assert.Zero(t, placer.count())
	})
}

func TestMarketMaker_StartStop(t *testing.T) {
	placer := newBookPlacer()
	mm := newTestMarketMaker(placer, staticPrice{price: decimal.RequireFromString("50000")})

	require.NoError(t, mm.Start(context.Background()))
	require.Eventually(t, func() bool { return placer.count() >= 6 }, time.Second, 5*time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, mm.Stop(ctx))
	require.NoError(t, mm.Stop(ctx))

	// the ladder is already full, so later rounds add nothing
	assert.Equal(t, 6, placer.count())
}

func TestGRPCOrderPlacer(t *testing.T) {
	lis := bufconn.Listen(1 << 20)
	grpcServer := grpc.NewServer()
	service := server.NewMatchingService(memory.NewMemoryBackend())
	server.RegisterOrderBookService(grpcServer, server.NewGRPCOrderBookService(service))
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
	t.Cleanup(grpcServer.Stop)

	cfg := testConfig()
	cfg.RequestTimeout = time.Second
	placer := newOrderPlacer(rpc.NewOrderBookServiceClient(conn), conn, cfg, zerolog.Nop())
	defer placer.Close()

	mm := NewMarketMaker(cfg, zerolog.Nop(), placer,
		staticPrice{price: decimal.RequireFromString("50000")},
		NewLayeredSymmetricQuoting(cfg, zerolog.Nop()))

	placed, err := mm.updateOrders(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, placed)

	book, err := placer.GetOrderBook(context.Background(), &rpc.GetOrderBookRequest{Symbol: "btc-usdt"})
	require.NoError(t, err)
	require.Len(t, book.Bids, 3)
	require.Len(t, book.Asks, 3)
	assert.Equal(t, "49975", book.Bids[0].Price)

	_, err = placer.SubmitOrder(context.Background(), &rpc.SubmitOrderRequest{
		Symbol: "BTC-USDT", Side: "HOLD", Price: "1", Quantity: "1",
	})
	require.Error(t, err)
}
