package fulfill

import (
	"context"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/metric"
)

// Metrics holds the fulfillment counters. The zero value is a no-op, so
// tests and callers without telemetry can skip wiring it.
type Metrics struct {
	committed        metric.Int64Counter
	dispatchFailures metric.Int64Counter
}

// NewMetrics registers the fulfillment counters on the given provider. A nil
// provider falls back to the global one.
func NewMetrics(mp metric.MeterProvider) (Metrics, error) {
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	meter := mp.Meter("pickline.fulfill")

	committed, err := meter.Int64Counter("orders_committed_total",
		metric.WithDescription("Orders committed to the ledger"))
	if err != nil {
		return Metrics{}, errors.Wrap(err, "orders_committed_total")
	}
	dispatchFailures, err := meter.Int64Counter("actuator_dispatch_failures_total",
		metric.WithDescription("Actuator dispatches that failed after a commit"))
	if err != nil {
		return Metrics{}, errors.Wrap(err, "actuator_dispatch_failures_total")
	}

	return Metrics{committed: committed, dispatchFailures: dispatchFailures}, nil
}

func (m Metrics) addCommitted(ctx context.Context) {
	if m.committed != nil {
		m.committed.Add(ctx, 1)
	}
}

func (m Metrics) addDispatchFailure(ctx context.Context) {
	if m.dispatchFailures != nil {
		m.dispatchFailures.Add(ctx, 1)
	}
}
