// Package reservation validates seat requests against a session's occupancy
// and commits the winning seats to the session store.
package reservation

import (
	"context"
	"errors"
	"fmt"

	"github.com/DimaBagZ/film-react-nest/internal/domain"
)

// Validator checks requested seats against a session read from the store.
type Validator struct {
	store domain.SessionStore
}

// NewValidator returns a Validator that reads sessions from store.
func NewValidator(store domain.SessionStore) *Validator {
	return &Validator{store: store}
}

// Validate checks every item of a single session batch in input order and
// returns the first failure as an *domain.OrderError. Nothing is written.
func (v *Validator) Validate(ctx context.Context, filmID, sessionID string, items []domain.OrderItem) error {
	session, err := v.store.GetSession(ctx, filmID, sessionID)
	if err != nil {
		return sessionLookupError(sessionID, err)
	}

	// persisted and requested are kept apart so a repeated seat can be told
	// from one booked by an earlier order.
	persisted := make(map[string]struct{}, len(session.Taken))
	for _, key := range session.Taken {
		persisted[key] = struct{}{}
	}

	requested := make(map[string]struct{}, len(items))

	for _, item := range items {
		if item.FilmID != filmID || item.SessionID != sessionID {
			return fmt.Errorf("%w: %s/%s in batch for %s/%s",
				domain.ErrMixedSessions, item.FilmID, item.SessionID, filmID, sessionID)
		}

		if item.Row < 1 || item.Row > session.Rows {
			return domain.NewRowOutOfRangeError(item.Row, session.Rows)
		}

		if item.Seat < 1 || item.Seat > session.Seats {
			return domain.NewSeatOutOfRangeError(item.Seat, session.Seats)
		}

		key := item.SeatKey()

		if _, ok := persisted[key]; ok {
			return domain.NewSeatTakenError(item.Row, item.Seat)
		}

		if _, ok := requested[key]; ok {
			return domain.NewSeatDuplicatedInOrderError(item.Row, item.Seat)
		}

		requested[key] = struct{}{}
	}

	return nil
}

func sessionLookupError(sessionID string, err error) error {
	if errors.Is(err, domain.ErrRecordNotFound) {
		return domain.NewSessionNotFoundError(sessionID)
	}

	return domain.NewStoreUnavailableError(err)
}
