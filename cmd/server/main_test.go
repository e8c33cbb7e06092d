package main

import (
	"context"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/erain9/matchingo/config"
	"github.com/erain9/matchingo/pkg/api/rpc"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/test/bufconn"
)

const bufSize = 1024 * 1024

func TestServerStartup(t *testing.T) {
	app, err := newApplication(config.Default(), zerolog.Nop())
	require.NoError(t, err)
	assert.Nil(t, app.dispatcher, "no sinks are enabled by default")

	lis := bufconn.Listen(bufSize)
	go func() {
		_ = app.grpcServer.Serve(lis)
	}()
	t.Cleanup(app.shutdown)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	defer conn.Close()

	client := rpc.NewOrderBookServiceClient(conn)
	ctx := context.Background()

	_, err = client.SubmitOrder(ctx, &rpc.SubmitOrderRequest{Symbol: "BTC-USD", Side: "SELL", Price: "100", Quantity: "1"})
	require.NoError(t, err)

	// the gRPC and HTTP transports share one matching service
	resp, err := app.httpApp.Test(httptest.NewRequest(http.MethodGet, "/api/orderbook/btc-usd", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.JSONEq(t, `{"symbol":"BTC-USD","bids":[],"asks":[{"price":"100","quantity":"1"}]}`, string(body))
}

func TestBuildSendersDisabled(t *testing.T) {
	senders, err := buildSenders(config.Default(), zerolog.Nop())
	require.NoError(t, err)
	assert.Empty(t, senders)
}

func TestBuildSendersLazyClients(t *testing.T) {
	cfg := config.Default()
	cfg.Redis.Enabled = true
	cfg.Kafka.Enabled = true
	cfg.Kafka.Driver = config.DriverKafkaGo

	// both clients connect lazily, so no broker is needed to build them
	senders, err := buildSenders(cfg, zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, senders, 2)
	assert.NoError(t, senders.Close())
}
