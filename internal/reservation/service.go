package reservation

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/DimaBagZ/film-react-nest/internal/domain"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Service assembles orders: it validates every session batch before any seat
// is committed and then commits seats one by one in request order.
type Service struct {
	validator *Validator
	committer *Committer
	logger    *slog.Logger
	metrics   *metrics
	tracer    trace.Tracer

	now   func() time.Time
	newID func() string
}

type Option func(*Service)

func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

func WithIDGenerator(newID func() string) Option {
	return func(s *Service) {
		s.newID = newID
	}
}

func NewService(store domain.SessionStore, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		validator: NewValidator(store),
		committer: NewCommitter(store),
		logger:    logger,
		metrics:   newMetrics(otel.Meter(InstrumentationName)),
		tracer:    otel.Tracer(InstrumentationName),
		now:       time.Now,
		newID:     uuid.NewString,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

type sessionGroup struct {
	filmID    string
	sessionID string
	items     []domain.OrderItem
}

// groupBySession keeps groups in the order their first item appears.
func groupBySession(items []domain.OrderItem) []*sessionGroup {
	type groupKey struct{ filmID, sessionID string }

	index := make(map[groupKey]*sessionGroup)
	groups := make([]*sessionGroup, 0)

	for _, item := range items {
		k := groupKey{item.FilmID, item.SessionID}

		g, ok := index[k]
		if !ok {
			g = &sessionGroup{filmID: item.FilmID, sessionID: item.SessionID}
			index[k] = g
			groups = append(groups, g)
		}

		g.items = append(g.items, item)
	}

	return groups
}

// CreateOrder books every item or fails before touching the store, except
// when a commit loses a race after earlier items were committed. In that case
// a *domain.PartialOrderError carrying the committed tickets is returned.
func (s *Service) CreateOrder(ctx context.Context, email, phone string, items []domain.OrderItem) (*domain.Order, error) {
	ctx, span := s.tracer.Start(ctx, "reservation.CreateOrder",
		trace.WithAttributes(attribute.Int("order.items", len(items))))
	defer span.End()

	if len(items) == 0 {
		return nil, domain.ErrEmptyOrder
	}

	for _, g := range groupBySession(items) {
		err := s.validator.Validate(ctx, g.filmID, g.sessionID, g.items)
		if err != nil {
			s.fail(ctx, span, err)
			s.metrics.recordOutcome(ctx, outcomeRejected)
			return nil, err
		}
	}

	order := &domain.Order{
		ID:       s.newID(),
		Email:    email,
		Phone:    phone,
		Tickets:  make([]domain.Ticket, 0, len(items)),
		PlacedAt: s.now(),
	}

	for _, item := range items {
		err := s.committer.Commit(ctx, item.FilmID, item.SessionID, []string{item.SeatKey()})
		if err != nil {
			s.fail(ctx, span, err)

			if len(order.Tickets) == 0 {
				s.metrics.recordOutcome(ctx, outcomeRejected)
				return nil, err
			}

			var orderErr *domain.OrderError
			if !errors.As(err, &orderErr) {
				orderErr = domain.NewStoreUnavailableError(err)
			}

			s.logger.Warn("order partially committed",
				"order_id", order.ID,
				"committed", len(order.Tickets),
				"requested", len(items),
				"kind", orderErr.Kind,
			)
			s.metrics.recordOutcome(ctx, outcomePartial)

			return nil, &domain.PartialOrderError{Order: order, Cause: orderErr}
		}

		order.Tickets = append(order.Tickets, domain.Ticket{
			ID:        s.newID(),
			FilmID:    item.FilmID,
			SessionID: item.SessionID,
			Row:       item.Row,
			Seat:      item.Seat,
			Price:     item.Price,
			BookedAt:  order.PlacedAt,
		})
	}

	s.metrics.recordOutcome(ctx, outcomeCreated)
	span.SetAttributes(attribute.String("order.id", order.ID))

	return order, nil
}

func (s *Service) fail(ctx context.Context, span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	var orderErr *domain.OrderError
	if errors.As(err, &orderErr) {
		s.metrics.recordConflict(ctx, orderErr.Kind)
	}
}
