package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"math/rand"
	"os"
	"os/signal"
	"strings"
	"sync"
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
	"github.com/erain9/matchingo/pkg/api/rpc"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// options controls one load run
type options struct {
	Symbols         []string
	Workers         int
	OrdersPerWorker int
	Rate            float64
	MidPrice        float64
	Spread          float64
	Seed            int64
}

// report summarises a load run. Latencies are in microseconds.
type report struct {
	Attempted int64
	Errors    int64
	Trades    int64
	Duration  time.Duration
	Latency   *hdrhistogram.Histogram
	FirstErr  error
}

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	grpcAddr := flag.String("grpc-addr", "localhost:50051", "gRPC server address")
	symbols := flag.String("symbols", "LOAD-USD", "Comma separated symbols to trade")
	workers := flag.Int("workers", 100, "Concurrent workers")
	orders := flag.Int("orders", 100, "Orders per worker")
	rps := flag.Float64("rate", 1000, "Maximum orders per second across all workers")
	mid := flag.Float64("mid", 100, "Mid price orders are placed around")
	spread := flag.Float64("spread", 1, "Orders are priced uniformly within mid +/- spread")
	flag.Parse()

	conn, err := grpc.NewClient(*grpcAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect")
	}
	defer conn.Close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	opts := options{
		Symbols:         strings.Split(*symbols, ","),
		Workers:         *workers,
		OrdersPerWorker: *orders,
		Rate:            *rps,
		MidPrice:        *mid,
		Spread:          *spread,
		Seed:            time.Now().UnixNano(),
	}
	log.Info().Int("workers", opts.Workers).Int("orders_per_worker", opts.OrdersPerWorker).Float64("rate", opts.Rate).Msg("Starting load test")

	rep, err := runLoad(ctx, rpc.NewOrderBookServiceClient(conn), opts)
	if err != nil {
		log.Fatal().Err(err).Msg("Load test aborted")
	}
	rep.print(os.Stdout)

	if rep.Errors > 0 {
		log.Error().Err(rep.FirstErr).Int64("errors", rep.Errors).Msg("Load test finished with errors")
		os.Exit(1)
	}
}

// runLoad submits Workers*OrdersPerWorker random GTC limit orders, paced by
// a shared limiter.
func runLoad(ctx context.Context, client rpc.OrderBookServiceClient, opts options) (*report, error) {
	if opts.Workers <= 0 || opts.OrdersPerWorker <= 0 {
		return nil, errors.New("workers and orders must be positive")
	}
	if len(opts.Symbols) == 0 {
		return nil, errors.New("at least one symbol is required")
	}
	limit := rate.Inf
	if opts.Rate > 0 {
		limit = rate.Limit(opts.Rate)
	}
	limiter := rate.NewLimiter(limit, opts.Workers)

	rep := &report{Latency: hdrhistogram.New(1, int64(time.Minute/time.Microsecond), 3)}
	var mu sync.Mutex
	var wg sync.WaitGroup

	start := time.Now()
	for w := 0; w < opts.Workers; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(opts.Seed + int64(worker)))

			for i := 0; i < opts.OrdersPerWorker; i++ {
				if err := limiter.Wait(ctx); err != nil {
					return
				}
				req := randomOrder(r, opts)

				began := time.Now()
				resp, err := client.SubmitOrder(ctx, req)
				elapsed := time.Since(began)

				mu.Lock()
				rep.Attempted++
				if err != nil {
					rep.Errors++
					if rep.FirstErr == nil {
						rep.FirstErr = err
					}
				} else {
					rep.Trades += int64(len(resp.Trades))
					_ = rep.Latency.RecordValue(elapsed.Microseconds())
				}
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	rep.Duration = time.Since(start)

	if err := ctx.Err(); err != nil && rep.Attempted == 0 {
		return nil, err
	}
	return rep, nil
}

func randomOrder(r *rand.Rand, opts options) *rpc.SubmitOrderRequest {
	side := "BUY"
	if r.Intn(2) == 0 {
		side = "SELL"
	}
	price := opts.MidPrice + (r.Float64()*2-1)*opts.Spread
	if price <= 0 {
		price = opts.MidPrice
	}
	return &rpc.SubmitOrderRequest{
		Symbol:   opts.Symbols[r.Intn(len(opts.Symbols))],
		Side:     side,
		Price:    fmt.Sprintf("%.2f", price),
		Quantity: fmt.Sprintf("%d", 1+r.Intn(10)),
	}
}

func (r *report) print(out io.Writer) {
	throughput := 0.0
	if r.Duration > 0 {
		throughput = float64(r.Attempted) / r.Duration.Seconds()
	}
	fmt.Fprintf(out, "Orders:     %d (%d errors)\n", r.Attempted, r.Errors)
	fmt.Fprintf(out, "Trades:     %d\n", r.Trades)
	fmt.Fprintf(out, "Duration:   %v\n", r.Duration.Round(time.Millisecond))
	fmt.Fprintf(out, "Throughput: %.1f orders/s\n", throughput)
	fmt.Fprintf(out, "Latency:    p50=%dus p90=%dus p99=%dus max=%dus mean=%.0fus\n",
		r.Latency.ValueAtQuantile(50),
		r.Latency.ValueAtQuantile(90),
		r.Latency.ValueAtQuantile(99),
		r.Latency.Max(),
		r.Latency.Mean())
}
