package mocks

import (
	"context"

	"github.com/DimaBagZ/film-react-nest/internal/domain"
	"github.com/stretchr/testify/mock"
)

type MockFilmRepo struct {
	mock.Mock
}

func (m *MockFilmRepo) GetAll(ctx context.Context) ([]*domain.Film, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*domain.Film), args.Error(1)
}

func (m *MockFilmRepo) GetSchedule(ctx context.Context, filmID string) ([]domain.Session, error) {
	args := m.Called(ctx, filmID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Session), args.Error(1)
}

func (m *MockFilmRepo) Create(ctx context.Context, film *domain.Film) error {
	args := m.Called(ctx, film)
	return args.Error(0)
}

func (m *MockFilmRepo) GetSession(ctx context.Context, filmID, sessionID string) (*domain.Session, error) {
	args := m.Called(ctx, filmID, sessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Session), args.Error(1)
}

func (m *MockFilmRepo) AddTakenSeats(ctx context.Context, filmID, sessionID string, keys []string) (bool, error) {
	args := m.Called(ctx, filmID, sessionID, keys)
	return args.Bool(0), args.Error(1)
}
