package store

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

// instrumentationName names the tracer and meter of this package.
const instrumentationName = "github.com/roach88/litedocs/internal/store"

// Attribute keys.
const (
	attrCollection = "litedocs.collection"
	attrOperation  = "litedocs.operation"
	attrPredicate  = "litedocs.predicate"
	attrExact      = "litedocs.pushdown.exact"
)

type telemetry struct {
	tracer     trace.Tracer
	operations metric.Int64Counter
	errors     metric.Int64Counter
	returned   metric.Int64Histogram
	rechecked  metric.Int64Counter
}

func newTelemetry(tp trace.TracerProvider, mp metric.MeterProvider) *telemetry {
	meter := mp.Meter(instrumentationName)
	t := &telemetry{tracer: tp.Tracer(instrumentationName)}

	var err error
	t.operations, err = meter.Int64Counter(
		"litedocs.store.operations",
		metric.WithDescription("Store operations by kind"),
		metric.WithUnit("{operation}"),
	)
	if err != nil {
		t.operations, _ = meter.Int64Counter("litedocs.store.operations")
	}

	t.errors, err = meter.Int64Counter(
		"litedocs.store.errors",
		metric.WithDescription("Store operations that returned an error"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		t.errors, _ = meter.Int64Counter("litedocs.store.errors")
	}

	t.returned, err = meter.Int64Histogram(
		"litedocs.store.documents",
		metric.WithDescription("Documents returned by Find"),
		metric.WithUnit("{document}"),
	)
	if err != nil {
		t.returned, _ = meter.Int64Histogram("litedocs.store.documents")
	}

	t.rechecked, err = meter.Int64Counter(
		"litedocs.store.recheck.rejected",
		metric.WithDescription("Rows selected by SQL but rejected by the predicate recheck"),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		t.rechecked, _ = meter.Int64Counter("litedocs.store.recheck.rejected")
	}

	return t
}

func (t *telemetry) start(ctx context.Context, op, collection string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs,
		attribute.String(attrOperation, op),
		attribute.String(attrCollection, collection),
	)
	return t.tracer.Start(ctx, "store."+op, trace.WithAttributes(attrs...))
}

// end records the outcome of an operation started with start.
func (t *telemetry) end(ctx context.Context, span trace.Span, op, collection string, err error) {
	attrs := metric.WithAttributes(
		attribute.String(attrOperation, op),
		attribute.String(attrCollection, collection),
	)
	t.operations.Add(ctx, 1, attrs)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		t.errors.Add(ctx, 1, attrs)
	}
	span.End()
}

func metricCollection(collection string) metric.MeasurementOption {
	return metric.WithAttributes(attribute.String(attrCollection, collection))
}
