package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/erain9/matchingo/pkg/logging"
	"github.com/erain9/matchingo/pkg/marketmaker"
)

func main() {
	logger := logging.Setup(logging.Config{Level: "debug", Output: os.Stdout})

	cfg, err := marketmaker.LoadConfig()
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to load configuration")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	orderPlacer, err := marketmaker.NewGRPCOrderPlacer(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to create order placer")
	}
	defer orderPlacer.Close()

	priceFetcher := marketmaker.NewPriceFetcher(cfg, logger)
	defer priceFetcher.Close()

	strategy := marketmaker.NewLayeredSymmetricQuoting(cfg, logger)

	mm := marketmaker.NewMarketMaker(cfg, logger, orderPlacer, priceFetcher, strategy)
	if err := mm.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Failed to start market maker")
	}

	<-ctx.Done()
	logger.Info().Msg("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := mm.Stop(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("Error during shutdown")
		os.Exit(1)
	}

	logger.Info().Msg("Market maker service stopped successfully")
}
