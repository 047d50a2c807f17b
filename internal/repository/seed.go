package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/DimaBagZ/film-react-nest/internal/domain"
	"github.com/DimaBagZ/film-react-nest/internal/seatkey"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type seedFilm struct {
	ID          string        `json:"id"`
	Rating      float64       `json:"rating"`
	Director    string        `json:"director"`
	Tags        []string      `json:"tags"`
	Title       string        `json:"title"`
	About       string        `json:"about"`
	Description string        `json:"description"`
	Image       string        `json:"image"`
	Cover       string        `json:"cover"`
	Schedule    []seedSession `json:"schedule"`
}

type seedSession struct {
	ID      string          `json:"id"`
	Daytime time.Time       `json:"daytime"`
	Hall    int             `json:"hall"`
	Rows    int             `json:"rows"`
	Seats   int             `json:"seats"`
	Price   decimal.Decimal `json:"price"`
	Taken   []string        `json:"taken"`
}

// seedNamespace scopes the name-based ids given to seed entries without one.
var seedNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("film-react-nest/seed"))

// LoadFilms reads a JSON array of films with embedded schedules. Missing ids
// are derived from the entry's content so that reloading the same file yields
// the same ids, and every pre-taken seat key is checked against the hall.
func LoadFilms(r io.Reader) ([]*domain.Film, error) {
	var input []seedFilm

	if err := json.NewDecoder(r).Decode(&input); err != nil {
		return nil, fmt.Errorf("decode films: %w", err)
	}

	films := make([]*domain.Film, 0, len(input))

	for _, f := range input {
		film := &domain.Film{
			ID:          f.ID,
			Rating:      f.Rating,
			Director:    f.Director,
			Tags:        nonNilStrings(f.Tags),
			Title:       f.Title,
			About:       f.About,
			Description: f.Description,
			Image:       f.Image,
			Cover:       f.Cover,
		}

		if film.ID == "" {
			film.ID = seedFilmID(f)
		}

		for _, s := range f.Schedule {
			session := domain.Session{
				ID:      s.ID,
				FilmID:  film.ID,
				Daytime: s.Daytime,
				Hall:    s.Hall,
				Rows:    s.Rows,
				Seats:   s.Seats,
				Price:   s.Price,
				Taken:   nonNilStrings(s.Taken),
			}

			if session.ID == "" {
				session.ID = seedSessionID(film.ID, s)
			}

			if err := checkTakenSeats(session); err != nil {
				return nil, fmt.Errorf("film %s: %w", film.ID, err)
			}

			film.Schedule = append(film.Schedule, session)
		}

		films = append(films, film)
	}

	return films, nil
}

func seedFilmID(f seedFilm) string {
	return uuid.NewSHA1(seedNamespace, []byte("film\x00"+f.Title+"\x00"+f.Director)).String()
}

func seedSessionID(filmID string, s seedSession) string {
	name := fmt.Sprintf("session\x00%s\x00%s\x00%d", filmID, s.Daytime.UTC().Format(time.RFC3339Nano), s.Hall)
	return uuid.NewSHA1(seedNamespace, []byte(name)).String()
}

func checkTakenSeats(s domain.Session) error {
	if s.Rows < 1 || s.Seats < 1 {
		return fmt.Errorf("session %s: hall must have at least one row and seat", s.ID)
	}

	seen := make(map[string]struct{}, len(s.Taken))

	for _, key := range s.Taken {
		row, seat, err := seatkey.Decode(key)
		if err != nil {
			return fmt.Errorf("session %s: %w", s.ID, err)
		}

		if row < 1 || row > s.Rows || seat < 1 || seat > s.Seats {
			return fmt.Errorf("session %s: seat %s is outside the %dx%d hall", s.ID, key, s.Rows, s.Seats)
		}

		if _, ok := seen[key]; ok {
			return fmt.Errorf("session %s: seat %s listed twice", s.ID, key)
		}

		seen[key] = struct{}{}
	}

	return nil
}

// Seed creates films that do not exist yet and returns how many were added.
func Seed(ctx context.Context, repo domain.FilmRepository, films []*domain.Film, logger *slog.Logger) (int, error) {
	created := 0

	for _, film := range films {
		err := repo.Create(ctx, film)
		if err != nil {
			if errors.Is(err, domain.ErrFilmAlreadyExists) {
				logger.Debug("film already seeded", "film_id", film.ID)
				continue
			}

			return created, fmt.Errorf("seed film %s: %w", film.ID, err)
		}

		created++
	}

	return created, nil
}
