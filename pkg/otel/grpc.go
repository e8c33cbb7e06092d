package otel

import (
	"go.opentelemetry.io/contrib/instrumentation/google.golang.org/grpc/otelgrpc"
	"go.opentelemetry.io/otel"
	"google.golang.org/grpc/stats"
)

// NewGRPCStatsHandler creates a stats handler for gRPC server telemetry.
func NewGRPCStatsHandler() stats.Handler {
	return otelgrpc.NewServerHandler(
		otelgrpc.WithMeterProvider(otel.GetMeterProvider()),
		otelgrpc.WithTracerProvider(otel.GetTracerProvider()),
	)
}

// NewGRPCClientStatsHandler creates the client side counterpart, used by the
// CLI and load generator.
func NewGRPCClientStatsHandler() stats.Handler {
	return otelgrpc.NewClientHandler(
		otelgrpc.WithMeterProvider(otel.GetMeterProvider()),
		otelgrpc.WithTracerProvider(otel.GetTracerProvider()),
	)
}
