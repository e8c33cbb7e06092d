package main

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/erain9/matchingo/config"
	"github.com/erain9/matchingo/pkg/api/rest"
	"github.com/erain9/matchingo/pkg/backend/memory"
	"github.com/erain9/matchingo/pkg/core"
	"github.com/erain9/matchingo/pkg/db/queue"
	"github.com/erain9/matchingo/pkg/logging"
	"github.com/erain9/matchingo/pkg/messaging"
	"github.com/erain9/matchingo/pkg/messaging/kafka"
	"github.com/erain9/matchingo/pkg/messaging/redis"
	"github.com/erain9/matchingo/pkg/otel"
	"github.com/erain9/matchingo/pkg/server"
	"github.com/gofiber/fiber/v3"
	"github.com/rs/zerolog"
	otelglobal "go.opentelemetry.io/otel"
	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/reflection"
)

const shutdownTimeout = 5 * time.Second

// application holds everything the server process runs
type application struct {
	cfg        *config.Config
	logger     zerolog.Logger
	service    *server.MatchingService
	dispatcher *messaging.Dispatcher
	grpcServer *grpc.Server
	httpApp    *fiber.App
}

func main() {
	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger := logging.Setup(logging.Config{
		Level:  cfg.Server.LogLevel,
		Pretty: strings.EqualFold(cfg.Server.LogFormat, "pretty"),
		Output: os.Stdout,
	})

	cleanup, err := otel.Init(otel.Config{
		ServiceName:      otel.DefaultServiceName,
		ServiceVersion:   cfg.Telemetry.ServiceVersion,
		Endpoint:         cfg.Telemetry.Endpoint,
		CollectorEnabled: cfg.Telemetry.Enabled,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to initialize OpenTelemetry")
	}
	defer cleanup()
	if cfg.Telemetry.Enabled {
		if err := otel.StartRuntimeMetrics(time.Second); err != nil {
			logger.Warn().Err(err).Msg("Runtime metrics unavailable")
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := newApplication(cfg, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("Failed to build server")
	}

	if cfg.Kafka.Enabled && cfg.Kafka.Echo && cfg.Kafka.Driver == config.DriverSarama {
		// developer aid: pretty print what lands on the topic
		if _, err := kafka.SetupConsumer(ctx, logger, []string{cfg.Kafka.BrokerAddr}, cfg.Kafka.Topic); err != nil {
			logger.Warn().Err(err).Msg("Trade echo disabled")
		}
	}

	if err := app.run(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Server stopped with error")
	}
	logger.Info().Msg("Servers shutdown complete")
}

// newApplication wires the matching service, trade publication and both
// transports without starting any listener.
func newApplication(cfg *config.Config, logger zerolog.Logger) (*application, error) {
	meter := otelglobal.GetMeterProvider().Meter(otel.DefaultServiceName)
	engineMetrics, err := otel.NewEngineMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("engine metrics: %w", err)
	}
	httpMetrics, err := otel.NewHTTPServerMetrics(meter)
	if err != nil {
		return nil, fmt.Errorf("http metrics: %w", err)
	}

	backend := memory.NewMemoryBackend(
		core.WithTradeHistoryCapacity(cfg.Engine.TradeHistoryCapacity),
		core.WithLogger(logger),
	)

	opts := []server.Option{server.WithMetrics(engineMetrics)}
	senders, err := buildSenders(cfg, logger)
	if err != nil {
		return nil, err
	}
	var dispatcher *messaging.Dispatcher
	if len(senders) > 0 {
		dispatcher = messaging.NewDispatcher(senders, cfg.Publisher.Buffer, logger)
		opts = append(opts, server.WithPublisher(dispatcher))
	}
	service := server.NewMatchingService(backend, opts...)

	grpcServer := grpc.NewServer(
		grpc.StatsHandler(otel.NewGRPCStatsHandler()),
		grpc.ChainUnaryInterceptor(logging.UnaryServerInterceptor()),
	)
	server.RegisterOrderBookService(grpcServer, server.NewGRPCOrderBookService(service))
	// Enable reflection for tools like grpcurl
	reflection.Register(grpcServer)

	httpApp := rest.NewApp(service, rest.Config{
		Auth: rest.AuthConfig{
			Keys:    map[string]string{cfg.Auth.APIKey: cfg.Auth.APISecret},
			MaxSkew: cfg.Auth.MaxSkew,
		},
		Logger:  logger,
		Metrics: httpMetrics,
	})

	return &application{
		cfg:        cfg,
		logger:     logger,
		service:    service,
		dispatcher: dispatcher,
		grpcServer: grpcServer,
		httpApp:    httpApp,
	}, nil
}

// buildSenders creates one sender per enabled sink
func buildSenders(cfg *config.Config, logger zerolog.Logger) (messaging.MultiSender, error) {
	var senders messaging.MultiSender

	if cfg.Kafka.Enabled {
		var (
			sender messaging.MessageSender
			err    error
		)
		switch cfg.Kafka.Driver {
		case config.DriverSarama:
			sender, err = queue.NewQueueMessageSender([]string{cfg.Kafka.BrokerAddr}, cfg.Kafka.Topic)
		default:
			sender, err = kafka.NewKafkaMessageSender(cfg.Kafka.BrokerAddr, cfg.Kafka.Topic)
		}
		if err != nil {
			_ = senders.Close()
			return nil, fmt.Errorf("kafka sender: %w", err)
		}
		logger.Info().Str("driver", cfg.Kafka.Driver).Str("topic", cfg.Kafka.Topic).Msg("Publishing trades to Kafka")
		senders = append(senders, sender)
	}

	if cfg.Redis.Enabled {
		zapLogger, err := zap.NewProduction()
		if err != nil {
			zapLogger = zap.NewNop()
		}
		client := redis.NewClient(redis.RedisOptions{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		logger.Info().Str("addr", cfg.Redis.Addr).Str("prefix", cfg.Redis.ChannelPrefix).Msg("Publishing trades to Redis")
		senders = append(senders, redis.NewRedisMessageSender(client, cfg.Redis.ChannelPrefix, zapLogger))
	}

	return senders, nil
}

// run serves gRPC and HTTP until ctx is done or a listener fails, then shuts
// everything down.
func (a *application) run(ctx context.Context) error {
	lis, err := net.Listen("tcp", a.cfg.Server.GRPCAddr)
	if err != nil {
		return fmt.Errorf("failed to listen: %w", err)
	}

	errCh := make(chan error, 2)
	go func() {
		a.logger.Info().Str("addr", a.cfg.Server.GRPCAddr).Msg("Starting gRPC server")
		if err := a.grpcServer.Serve(lis); err != nil {
			errCh <- fmt.Errorf("grpc: %w", err)
		}
	}()
	go func() {
		a.logger.Info().Str("addr", a.cfg.Server.HTTPAddr).Msg("Starting HTTP server")
		if err := a.httpApp.Listen(a.cfg.Server.HTTPAddr, fiber.ListenConfig{DisableStartupMessage: true}); err != nil {
			errCh <- fmt.Errorf("http: %w", err)
		}
	}()

	var runErr error
	select {
	case <-ctx.Done():
		a.logger.Info().Msg("Received signal, shutting down")
	case runErr = <-errCh:
	}

	a.shutdown()
	return runErr
}

func (a *application) shutdown() {
	a.grpcServer.GracefulStop()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := a.httpApp.ShutdownWithContext(shutdownCtx); err != nil {
		a.logger.Error().Err(err).Msg("HTTP server shutdown error")
	}

	if a.dispatcher != nil {
		if err := a.dispatcher.Close(); err != nil {
			a.logger.Error().Err(err).Msg("Trade publisher shutdown error")
		}
	}
}
