package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	semconv "go.opentelemetry.io/otel/semconv/v1.17.0"
)

// HTTPServerMetrics holds the metrics instruments for REST server monitoring
type HTTPServerMetrics struct {
	// Latency metrics
	serverLatency metric.Float64Histogram

	// Traffic metrics
	requestsTotal    metric.Int64Counter
	requestsInFlight metric.Int64UpDownCounter

	// Error metrics
	errorTotal metric.Int64Counter
}

// NewHTTPServerMetrics creates a new HTTPServerMetrics instance. A nil meter
// uses the global provider.
func NewHTTPServerMetrics(meter metric.Meter) (*HTTPServerMetrics, error) {
	if meter == nil {
		meter = otel.GetMeterProvider().Meter(instrumentationName)
	}

	serverLatency, err := meter.Float64Histogram(
		"http.server.duration",
		metric.WithDescription("Response latency (seconds) of the REST server"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	requestsTotal, err := meter.Int64Counter(
		"http.server.requests.total",
		metric.WithDescription("Total number of HTTP requests started"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	requestsInFlight, err := meter.Int64UpDownCounter(
		"http.server.requests.in_flight",
		metric.WithDescription("Number of HTTP requests currently in flight"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	errorTotal, err := meter.Int64Counter(
		"http.server.errors.total",
		metric.WithDescription("Total number of HTTP responses with status >= 400"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	return &HTTPServerMetrics{
		serverLatency:    serverLatency,
		requestsTotal:    requestsTotal,
		requestsInFlight: requestsInFlight,
		errorTotal:       errorTotal,
	}, nil
}

// RequestStarted counts a request and marks it in flight
func (m *HTTPServerMetrics) RequestStarted(ctx context.Context, method, route string) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(
		semconv.HTTPMethodKey.String(method),
		semconv.HTTPRouteKey.String(route),
	)
	m.requestsTotal.Add(ctx, 1, attrs)
	m.requestsInFlight.Add(ctx, 1)
}

// RequestFinished records latency and status of a completed request
func (m *HTTPServerMetrics) RequestFinished(ctx context.Context, method, route string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	attrs := []attribute.KeyValue{
		semconv.HTTPMethodKey.String(method),
		semconv.HTTPRouteKey.String(route),
		semconv.HTTPStatusCodeKey.Int(status),
	}
	m.requestsInFlight.Add(ctx, -1)
	m.serverLatency.Record(ctx, duration.Seconds(), metric.WithAttributes(attrs...))
	if status >= 400 {
		m.errorTotal.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}
