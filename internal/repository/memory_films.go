package repository

import (
	"cmp"
	"context"
	"slices"
	"sync"

	"github.com/DimaBagZ/film-react-nest/internal/domain"
)

// MemoryFilmRepository keeps films in process memory. A single mutex guards
// all state, which makes AddTakenSeats atomic.
type MemoryFilmRepository struct {
	mu    sync.RWMutex
	films map[string]*domain.Film
}

func NewMemoryFilmRepository() *MemoryFilmRepository {
	return &MemoryFilmRepository{
		films: make(map[string]*domain.Film),
	}
}

func (m *MemoryFilmRepository) GetAll(ctx context.Context) ([]*domain.Film, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	films := make([]*domain.Film, 0, len(m.films))
	for _, f := range m.films {
		film := *f
		film.Tags = slices.Clone(f.Tags)
		film.Schedule = nil
		films = append(films, &film)
	}

	slices.SortFunc(films, compareFilms)

	return films, nil
}

func (m *MemoryFilmRepository) GetSchedule(ctx context.Context, filmID string) ([]domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	film, ok := m.films[filmID]
	if !ok {
		return nil, domain.ErrRecordNotFound
	}

	sessions := make([]domain.Session, len(film.Schedule))
	for i, s := range film.Schedule {
		sessions[i] = cloneSession(s)
	}

	sortSessions(sessions)

	return sessions, nil
}

func (m *MemoryFilmRepository) Create(ctx context.Context, film *domain.Film) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.films[film.ID]; ok {
		return domain.ErrFilmAlreadyExists
	}

	stored := *film
	stored.Tags = slices.Clone(film.Tags)
	stored.Schedule = make([]domain.Session, len(film.Schedule))
	for i, s := range film.Schedule {
		stored.Schedule[i] = cloneSession(s)
		stored.Schedule[i].FilmID = film.ID
	}

	m.films[film.ID] = &stored

	return nil
}

func (m *MemoryFilmRepository) GetSession(ctx context.Context, filmID, sessionID string) (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	session := m.findSession(filmID, sessionID)
	if session == nil {
		return nil, domain.ErrRecordNotFound
	}

	s := cloneSession(*session)

	return &s, nil
}

func (m *MemoryFilmRepository) AddTakenSeats(ctx context.Context, filmID, sessionID string, keys []string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	session := m.findSession(filmID, sessionID)
	if session == nil {
		return false, nil
	}

	for _, key := range keys {
		if slices.Contains(session.Taken, key) {
			return false, nil
		}
	}

	session.Taken = append(session.Taken, keys...)

	return true, nil
}

func (m *MemoryFilmRepository) findSession(filmID, sessionID string) *domain.Session {
	film, ok := m.films[filmID]
	if !ok {
		return nil
	}

	for i := range film.Schedule {
		if film.Schedule[i].ID == sessionID {
			return &film.Schedule[i]
		}
	}

	return nil
}

func cloneSession(s domain.Session) domain.Session {
	s.Taken = slices.Clone(s.Taken)
	if s.Taken == nil {
		s.Taken = []string{}
	}

	return s
}

func compareFilms(a, b *domain.Film) int {
	return cmp.Or(cmp.Compare(a.Title, b.Title), cmp.Compare(a.ID, b.ID))
}

func sortSessions(sessions []domain.Session) {
	slices.SortStableFunc(sessions, func(a, b domain.Session) int {
		return a.Daytime.Compare(b.Daytime)
	})
}
