package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type Film struct {
	ID          string
	Rating      float64
	Director    string
	Tags        []string
	Title       string
	About       string
	Description string
	Image       string
	Cover       string
	Schedule    []Session
}

// Session is a single screening of a film. Taken holds the seat keys already
// reserved; it only ever grows.
type Session struct {
	ID      string
	FilmID  string
	Daytime time.Time
	Hall    int
	Rows    int
	Seats   int
	Price   decimal.Decimal
	Taken   []string
}

// SessionStore is the occupancy contract the reservation core is written against.
type SessionStore interface {
	// GetSession returns ErrRecordNotFound when the film or the session does not exist.
	GetSession(ctx context.Context, filmID, sessionID string) (*Session, error)

	// AddTakenSeats appends keys to the session's taken set in a single atomic
	// step, but only if none of them is already present. It reports false when
	// nothing was written.
	AddTakenSeats(ctx context.Context, filmID, sessionID string, keys []string) (bool, error)
}

type FilmRepository interface {
	SessionStore

	GetAll(ctx context.Context) ([]*Film, error)
	GetSchedule(ctx context.Context, filmID string) ([]Session, error)
	Create(ctx context.Context, film *Film) error
}
