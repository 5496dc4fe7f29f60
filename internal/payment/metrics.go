package payment

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/Vijay-papanaboina/LGTM-stack/observe"
)

// Metrics tracks payment outcomes. Increments are gated on the business
// outcome, not the transport result.
type Metrics struct {
	processed metric.Int64Counter
	duration  metric.Float64Histogram
}

// NewMetrics creates the payment metric series on the given meter.
func NewMetrics(meter metric.Meter) (*Metrics, error) {
	processed, err := meter.Int64Counter(
		"payments.processed",
		metric.WithDescription("Total number of processed payments by outcome"),
		metric.WithUnit("{payment}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"payment.processing.duration",
		metric.WithDescription("Payment processing duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(observe.DurationBucketsMS...),
	)
	if err != nil {
		return nil, err
	}

	return &Metrics{processed: processed, duration: duration}, nil
}

// RecordPayment records one processed payment with its outcome.
func (m *Metrics) RecordPayment(ctx context.Context, outcome string, d time.Duration) {
	opt := metric.WithAttributes(attribute.String("outcome", outcome))
	m.processed.Add(ctx, 1, opt)
	m.duration.Record(ctx, float64(d)/float64(time.Millisecond), opt)
}
