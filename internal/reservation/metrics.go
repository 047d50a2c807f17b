package reservation

import (
	"context"

	"github.com/DimaBagZ/film-react-nest/internal/domain"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

// InstrumentationName is the scope of the spans and instruments recorded here.
const InstrumentationName = "github.com/DimaBagZ/film-react-nest/internal/reservation"

const (
	OrdersMetric    = "reservation.orders"
	ConflictsMetric = "reservation.conflicts"

	OutcomeAttribute = "outcome"
	KindAttribute    = "kind"
)

const (
	outcomeCreated  = "created"
	outcomePartial  = "partial"
	outcomeRejected = "rejected"
)

type metrics struct {
	orders    metric.Int64Counter
	conflicts metric.Int64Counter
}

func newMetrics(meter metric.Meter) *metrics {
	orders, err := meter.Int64Counter(
		OrdersMetric,
		metric.WithDescription("Orders processed by outcome"),
	)
	if err != nil {
		otel.Handle(err)
		orders = noop.Int64Counter{}
	}

	conflicts, err := meter.Int64Counter(
		ConflictsMetric,
		metric.WithDescription("Rejected seat requests by error kind"),
	)
	if err != nil {
		otel.Handle(err)
		conflicts = noop.Int64Counter{}
	}

	return &metrics{
		orders:    orders,
		conflicts: conflicts,
	}
}

func (m *metrics) recordOutcome(ctx context.Context, outcome string) {
	m.orders.Add(ctx, 1, metric.WithAttributes(attribute.String(OutcomeAttribute, outcome)))
}

func (m *metrics) recordConflict(ctx context.Context, kind domain.OrderErrorKind) {
	m.conflicts.Add(ctx, 1, metric.WithAttributes(attribute.String(KindAttribute, string(kind))))
}
