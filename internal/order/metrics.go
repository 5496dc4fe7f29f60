package order

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Vijay-papanaboina/LGTM-stack/observe"
)

// Metrics tracks order outcomes: completed, declined, or failed.
type Metrics struct {
	processed metric.Int64Counter
	duration  metric.Float64Histogram
}

// NewMetrics creates the order metric series on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	processed, err := meter.Int64Counter(
		"orders.processed",
		metric.WithDescription("Total number of processed orders by outcome"),
		metric.WithUnit("{order}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"order.processing.duration",
		metric.WithDescription("Order processing duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(observe.DurationBucketsMS...),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{processed: processed, duration: duration}, nil
}

// RecordOrder records one processed order with its outcome.
func (m *Metrics) RecordOrder(ctx context.Context, outcome string, d time.Duration) {
	opt := metric.WithAttributes(attribute.String("outcome", outcome))
	m.processed.Add(ctx, 1, opt)
	m.duration.Record(ctx, float64(d)/float64(time.Millisecond), opt)
}
