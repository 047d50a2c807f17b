// Package repotest holds behaviour every domain.FilmRepository implementation
// must share. Driver tests call RunFilmRepositoryContract with a constructor
// that returns an empty repository.
package repotest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/DimaBagZ/film-react-nest/internal/domain"
	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	FilmID         = "9b3c0bd2-1f3e-4a5b-9a53-7f3c1d1f0a01"
	OtherFilmID    = "9b3c0bd2-1f3e-4a5b-9a53-7f3c1d1f0a02"
	EarlySessionID = "5a1d7e44-3c1b-4f4e-8f0e-2d9b6c1a0b01"
	LateSessionID  = "5a1d7e44-3c1b-4f4e-8f0e-2d9b6c1a0b02"
)

var (
	earlyDaytime = time.Date(2024, 6, 28, 10, 0, 0, 0, time.UTC)
	lateDaytime  = time.Date(2024, 6, 28, 18, 30, 0, 0, time.UTC)
)

var compareOpts = []cmp.Option{
	cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) }),
	cmpopts.EquateApproxTime(0),
	cmpopts.EquateEmpty(),
}

// Film returns a film whose schedule is deliberately stored out of daytime order.
func Film() *domain.Film {
	return &domain.Film{
		ID:          FilmID,
		Rating:      8.1,
		Director:    "Jane Doe",
		Tags:        []string{"Drama", "Action"},
		Title:       "Beta",
		About:       "About beta",
		Description: "Beta description",
		Image:       "/beta.jpg",
		Cover:       "/beta-cover.jpg",
		Schedule: []domain.Session{
			{
				ID:      LateSessionID,
				FilmID:  FilmID,
				Daytime: lateDaytime,
				Hall:    2,
				Rows:    10,
				Seats:   15,
				Price:   decimal.RequireFromString("450.50"),
				Taken:   []string{},
			},
			{
				ID:      EarlySessionID,
				FilmID:  FilmID,
				Daytime: earlyDaytime,
				Hall:    1,
				Rows:    5,
				Seats:   10,
				Price:   decimal.NewFromInt(350),
				Taken:   []string{"3:7"},
			},
		},
	}
}

func OtherFilm() *domain.Film {
	return &domain.Film{
		ID:       OtherFilmID,
		Rating:   5,
		Director: "John Roe",
		Tags:     []string{"Comedy"},
		Title:    "Alpha",
	}
}

func RunFilmRepositoryContract(t *testing.T, newRepo func(t *testing.T) domain.FilmRepository) {
	ctx := context.Background()

	seeded := func(t *testing.T) domain.FilmRepository {
		repo := newRepo(t)
		require.NoError(t, repo.Create(ctx, Film()))
		require.NoError(t, repo.Create(ctx, OtherFilm()))
		return repo
	}

	t.Run("lists films by title without schedule", func(t *testing.T) {
		repo := seeded(t)

		films, err := repo.GetAll(ctx)
		require.NoError(t, err)

		want := []*domain.Film{OtherFilm(), Film()}
		want[1].Schedule = nil

		if diff := cmp.Diff(want, films, compareOpts...); diff != "" {
			t.Errorf("GetAll() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("rejects duplicate film", func(t *testing.T) {
		repo := seeded(t)

		err := repo.Create(ctx, Film())
		assert.ErrorIs(t, err, domain.ErrFilmAlreadyExists)
	})

	t.Run("returns schedule ordered by daytime", func(t *testing.T) {
		repo := seeded(t)

		sessions, err := repo.GetSchedule(ctx, FilmID)
		require.NoError(t, err)

		schedule := Film().Schedule
		want := []domain.Session{schedule[1], schedule[0]}

		if diff := cmp.Diff(want, sessions, compareOpts...); diff != "" {
			t.Errorf("GetSchedule() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("returns empty schedule for film without sessions", func(t *testing.T) {
		repo := seeded(t)

		sessions, err := repo.GetSchedule(ctx, OtherFilmID)
		require.NoError(t, err)
		assert.Empty(t, sessions)
	})

	t.Run("reports unknown film schedule", func(t *testing.T) {
		repo := seeded(t)

		_, err := repo.GetSchedule(ctx, "missing")
		assert.ErrorIs(t, err, domain.ErrRecordNotFound)
	})

	t.Run("reads a session", func(t *testing.T) {
		repo := seeded(t)

		session, err := repo.GetSession(ctx, FilmID, EarlySessionID)
		require.NoError(t, err)

		if diff := cmp.Diff(Film().Schedule[1], *session, compareOpts...); diff != "" {
			t.Errorf("GetSession() mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("reports unknown session", func(t *testing.T) {
		repo := seeded(t)

		_, err := repo.GetSession(ctx, FilmID, "missing")
		assert.ErrorIs(t, err, domain.ErrRecordNotFound)

		_, err = repo.GetSession(ctx, OtherFilmID, EarlySessionID)
		assert.ErrorIs(t, err, domain.ErrRecordNotFound)
	})

	t.Run("returned session does not alias stored taken seats", func(t *testing.T) {
		repo := seeded(t)

		session, err := repo.GetSession(ctx, FilmID, EarlySessionID)
		require.NoError(t, err)
		session.Taken[0] = "1:1"

		again, err := repo.GetSession(ctx, FilmID, EarlySessionID)
		require.NoError(t, err)
		assert.Equal(t, []string{"3:7"}, again.Taken)
	})

	t.Run("adds free seats and keeps earlier ones", func(t *testing.T) {
		repo := seeded(t)

		modified, err := repo.AddTakenSeats(ctx, FilmID, EarlySessionID, []string{"1:1", "1:2"})
		require.NoError(t, err)
		assert.True(t, modified)

		session, err := repo.GetSession(ctx, FilmID, EarlySessionID)
		require.NoError(t, err)
		assert.ElementsMatch(t, []string{"3:7", "1:1", "1:2"}, session.Taken)
	})

	t.Run("refuses a batch that overlaps taken seats", func(t *testing.T) {
		repo := seeded(t)

		modified, err := repo.AddTakenSeats(ctx, FilmID, EarlySessionID, []string{"2:2", "3:7"})
		require.NoError(t, err)
		assert.False(t, modified)

		session, err := repo.GetSession(ctx, FilmID, EarlySessionID)
		require.NoError(t, err)
		assert.Equal(t, []string{"3:7"}, session.Taken)
	})

	t.Run("reports no modification for unknown session", func(t *testing.T) {
		repo := seeded(t)

		modified, err := repo.AddTakenSeats(ctx, FilmID, "missing", []string{"1:1"})
		require.NoError(t, err)
		assert.False(t, modified)
	})

	t.Run("only one concurrent writer wins a seat", func(t *testing.T) {
		repo := seeded(t)

		const writers = 8

		var (
			wg   sync.WaitGroup
			mu   sync.Mutex
			wins int
		)

		for range writers {
			wg.Add(1)

			go func() {
				defer wg.Done()

				modified, err := repo.AddTakenSeats(ctx, FilmID, LateSessionID, []string{"4:4"})
				assert.NoError(t, err)

				if modified {
					mu.Lock()
					wins++
					mu.Unlock()
				}
			}()
		}

		wg.Wait()

		assert.Equal(t, 1, wins)

		session, err := repo.GetSession(ctx, FilmID, LateSessionID)
		require.NoError(t, err)
		assert.Equal(t, []string{"4:4"}, session.Taken)
	})
}
