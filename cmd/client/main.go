package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"
	"time"

	"github.com/erain9/matchingo/pkg/api/rpc"
	"github.com/erain9/matchingo/pkg/otel"
	"github.com/fatih/color"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
	"gopkg.in/yaml.v3"
)

// Output formats
const (
	formatTable = "table"
	formatJSON  = "json"
	formatYAML  = "yaml"
)

var errUsage = errors.New("usage")

func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	fs := flag.NewFlagSet("matchingo-client", flag.ExitOnError)
	serverAddr := fs.String("addr", "localhost:50051", "The server address in the format host:port")
	timeout := fs.Duration("timeout", 10*time.Second, "Request timeout")
	output := fs.String("o", formatTable, "Output format: table, json, yaml")
	fs.Usage = func() { printUsage(os.Stderr) }
	_ = fs.Parse(os.Args[1:])

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	conn, err := grpc.NewClient(*serverAddr,
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithStatsHandler(otel.NewGRPCClientStatsHandler()),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to server")
	}
	defer conn.Close()

	client := rpc.NewOrderBookServiceClient(conn)
	if err := run(ctx, client, fs.Args(), *output, os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			printUsage(os.Stderr)
			os.Exit(2)
		}
		log.Fatal().Err(err).Msg("Command failed")
	}
}

// run executes one command against client and writes the result to out
func run(ctx context.Context, client rpc.OrderBookServiceClient, args []string, format string, out io.Writer) error {
	if len(args) < 1 {
		return errUsage
	}
	switch format {
	case formatTable, formatJSON, formatYAML:
	default:
		return fmt.Errorf("unknown output format %q", format)
	}

	command, rest := args[0], args[1:]
	switch command {
	case "submit":
		return submitOrder(ctx, client, rest, format, out)
	case "book":
		return getOrderBook(ctx, client, rest, format, out)
	case "trades":
		return getTrades(ctx, client, rest, format, out)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, command)
	}
}

func submitOrder(ctx context.Context, client rpc.OrderBookServiceClient, args []string, format string, out io.Writer) error {
	if len(args) < 4 || len(args) > 5 {
		return fmt.Errorf("%w: submit <symbol> <BUY|SELL> <price> <quantity> [GTC|IOC|FOK]", errUsage)
	}
	req := &rpc.SubmitOrderRequest{
		Symbol:   args[0],
		Side:     args[1],
		Price:    args[2],
		Quantity: args[3],
	}
	if len(args) == 5 {
		req.TimeInForce = args[4]
	}

	resp, err := client.SubmitOrder(ctx, req)
	if err != nil {
		return fmt.Errorf("SubmitOrder failed: %w", err)
	}

	if format != formatTable {
		return encode(out, format, resp)
	}

	o := resp.Order
	fmt.Fprintf(out, "Order %s %s %s %s@%s remaining=%s status=%s tif=%s\n",
		o.ID, o.Symbol, o.Side, o.Quantity, o.Price, o.Remaining, statusColor(o.Status), o.TimeInForce)
	if len(resp.Trades) > 0 {
		printTrades(out, resp.Trades)
	}
	return nil
}

func getOrderBook(ctx context.Context, client rpc.OrderBookServiceClient, args []string, format string, out io.Writer) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("%w: book <symbol> [depth]", errUsage)
	}
	req := &rpc.GetOrderBookRequest{Symbol: args[0]}
	if len(args) == 2 {
		depth, err := strconv.ParseInt(args[1], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid depth %q: %w", args[1], err)
		}
		req.Depth = rpc.Int32(int32(depth))
	}

	resp, err := client.GetOrderBook(ctx, req)
	if err != nil {
		return fmt.Errorf("GetOrderBook failed: %w", err)
	}

	if format != formatTable {
		return encode(out, format, resp)
	}
	printLadder(out, resp)
	return nil
}

func getTrades(ctx context.Context, client rpc.OrderBookServiceClient, args []string, format string, out io.Writer) error {
	if len(args) < 1 || len(args) > 2 {
		return fmt.Errorf("%w: trades <symbol> [limit]", errUsage)
	}
	req := &rpc.GetTradesRequest{Symbol: args[0]}
	if len(args) == 2 {
		limit, err := strconv.ParseInt(args[1], 10, 32)
		if err != nil {
			return fmt.Errorf("invalid limit %q: %w", args[1], err)
		}
		req.Limit = rpc.Int32(int32(limit))
	}

	resp, err := client.GetTrades(ctx, req)
	if err != nil {
		return fmt.Errorf("GetTrades failed: %w", err)
	}

	if format != formatTable {
		return encode(out, format, resp)
	}
	if len(resp.Trades) == 0 {
		fmt.Fprintf(out, "No trades for %s\n", resp.Symbol)
		return nil
	}
	printTrades(out, resp.Trades)
	return nil
}

func encode(out io.Writer, format string, v interface{}) error {
	if format == formatYAML {
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func statusColor(status string) string {
	switch status {
	case "FILLED":
		return color.GreenString(status)
	case "PARTIALLY_FILLED":
		return color.YellowString(status)
	default:
		return status
	}
}

// printLadder prints asks from worst to best above bids from best to worst
func printLadder(out io.Writer, book *rpc.GetOrderBookResponse) {
	cyan := color.New(color.FgCyan).SprintfFunc()
	red := color.New(color.FgRed).SprintfFunc()
	green := color.New(color.FgGreen).SprintfFunc()

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', tabwriter.AlignRight)
	fmt.Fprintf(w, "%s\t%s\t%s\t\n", cyan("Price"), cyan("Quantity"), cyan("Side"))
	fmt.Fprintf(w, "%s\t%s\t%s\t\n", "-----", "--------", "----")

	for i := len(book.Asks) - 1; i >= 0; i-- {
		fmt.Fprintf(w, "%s\t%s\t%s\t\n", red(book.Asks[i].Price), book.Asks[i].Quantity, red("SELL"))
	}
	fmt.Fprintf(w, "%s\t%s\t%s\t\n", "-----", "--------", "----")
	for _, level := range book.Bids {
		fmt.Fprintf(w, "%s\t%s\t%s\t\n", green(level.Price), level.Quantity, green("BUY"))
	}
	w.Flush()
}

func printTrades(out io.Writer, trades []rpc.Trade) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "TIME\tPRICE\tQUANTITY\tTAKER\tMAKER\tSIDE")
	for _, t := range trades {
		side := color.GreenString(t.TakerSide)
		if t.TakerSide == "SELL" {
			side = color.RedString(t.TakerSide)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.Timestamp.Format(time.RFC3339Nano), t.Price, t.Quantity, t.TakerOrderID, t.MakerOrderID, side)
	}
	w.Flush()
}

func printUsage(out io.Writer) {
	fmt.Fprintln(out, "Usage: client [-addr host:port] [-o table|json|yaml] <command> [arguments]")
	fmt.Fprintln(out)
	fmt.Fprintln(out, "Commands:")
	fmt.Fprintln(out, "  submit <symbol> <BUY|SELL> <price> <quantity> [GTC|IOC|FOK]")
	fmt.Fprintln(out, "  book <symbol> [depth]")
	fmt.Fprintln(out, "  trades <symbol> [limit]")
}
