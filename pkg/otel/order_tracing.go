package otel

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	// Span names
	SpanSubmitOrder   = "submit_order"
	SpanMatchOrder    = "match_order"
	SpanSnapshot      = "snapshot"
	SpanGetTrades     = "get_trades"
	SpanPublishTrades = "publish_trades"

	// Attribute keys
	AttributeSymbol            = "orderbook.symbol"
	AttributeOrderID           = "order.id"
	AttributeOrderSide         = "order.side"
	AttributeOrderTIF          = "order.tif"
	AttributeOrderQuantity     = "order.quantity"
	AttributeOrderPrice        = "order.price"
	AttributeOrderStatus       = "order.status"
	AttributeRemainingQuantity = "order.remaining_quantity"
	AttributeTradeCount        = "trade.count"
	AttributeDepth             = "snapshot.depth"
	AttributeLimit             = "trades.limit"
)

// Tracer returns the engine tracer from the global provider. It is a no-op
// tracer until Init installs an exporting provider.
func Tracer() trace.Tracer {
	return otel.Tracer(instrumentationName)
}

// StartSpan starts a span that is always safe to use and End.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return Tracer().Start(ctx, name, trace.WithAttributes(attrs...))
}

// AddAttributes adds attributes to a span
func AddAttributes(span trace.Span, attrs ...attribute.KeyValue) {
	if span == nil {
		return
	}
	span.SetAttributes(attrs...)
}

// RecordError marks span as failed with err
func RecordError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
