package otel

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// EngineMetrics holds the instruments recorded by the matching service
type EngineMetrics struct {
	ordersSubmitted     metric.Int64Counter
	ordersRejected      metric.Int64Counter
	tradesExecuted      metric.Int64Counter
	invariantViolations metric.Int64Counter
	matchDuration       metric.Float64Histogram
}

// NewEngineMetrics creates the instruments on meter. A nil meter uses the
// global provider.
func NewEngineMetrics(meter metric.Meter) (*EngineMetrics, error) {
	if meter == nil {
		meter = otel.GetMeterProvider().Meter(instrumentationName)
	}

	ordersSubmitted, err := meter.Int64Counter(
		"orderbook.orders.submitted",
		metric.WithDescription("Orders accepted by the matching engine"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, err
	}

	ordersRejected, err := meter.Int64Counter(
		"orderbook.orders.rejected",
		metric.WithDescription("Orders rejected by validation"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, err
	}

	tradesExecuted, err := meter.Int64Counter(
		"orderbook.trades.executed",
		metric.WithDescription("Trades produced by matching"),
		metric.WithUnit("{trade}"),
	)
	if err != nil {
		return nil, err
	}

	invariantViolations, err := meter.Int64Counter(
		"orderbook.invariant_violations",
		metric.WithDescription("Internal invariant violations detected while matching"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return nil, err
	}

	matchDuration, err := meter.Float64Histogram(
		"orderbook.match.duration",
		metric.WithDescription("Time spent placing one order, lock held"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &EngineMetrics{
		ordersSubmitted:     ordersSubmitted,
		ordersRejected:      ordersRejected,
		tradesExecuted:      tradesExecuted,
		invariantViolations: invariantViolations,
		matchDuration:       matchDuration,
	}, nil
}

// RecordSubmitted counts an accepted order
func (m *EngineMetrics) RecordSubmitted(ctx context.Context, symbol, side, tif string) {
	if m == nil {
		return
	}
	m.ordersSubmitted.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttributeSymbol, symbol),
		attribute.String(AttributeOrderSide, side),
		attribute.String(AttributeOrderTIF, tif),
	))
}

// RecordRejected counts an order that failed validation
func (m *EngineMetrics) RecordRejected(ctx context.Context, symbol string) {
	if m == nil {
		return
	}
	m.ordersRejected.Add(ctx, 1, metric.WithAttributes(attribute.String(AttributeSymbol, symbol)))
}

// RecordTrades counts executed trades
func (m *EngineMetrics) RecordTrades(ctx context.Context, symbol string, count int) {
	if m == nil || count == 0 {
		return
	}
	m.tradesExecuted.Add(ctx, int64(count), metric.WithAttributes(attribute.String(AttributeSymbol, symbol)))
}

// RecordInvariantViolation counts a detected engine inconsistency
func (m *EngineMetrics) RecordInvariantViolation(ctx context.Context, symbol string) {
	if m == nil {
		return
	}
	m.invariantViolations.Add(ctx, 1, metric.WithAttributes(attribute.String(AttributeSymbol, symbol)))
}

// RecordMatchDuration records how long an order held the symbol lock
func (m *EngineMetrics) RecordMatchDuration(ctx context.Context, symbol string, d time.Duration) {
	if m == nil {
		return
	}
	m.matchDuration.Record(ctx, d.Seconds(), metric.WithAttributes(attribute.String(AttributeSymbol, symbol)))
}
