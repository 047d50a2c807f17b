package reservation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/DimaBagZ/film-react-nest/internal/domain"
	"github.com/DimaBagZ/film-react-nest/internal/mocks"
	"github.com/DimaBagZ/film-react-nest/internal/repository"
	"github.com/google/go-cmp/cmp"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

const (
	secondSessionID = "session-2"
	testEmail       = "test@example.com"
	testPhone       = "+7 (900) 000-00-00"
)

var testPlacedAt = time.Date(2024, 6, 28, 18, 5, 0, 0, time.UTC)

func sequentialIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

var decimalComparer = cmp.Comparer(func(a, b decimal.Decimal) bool { return a.Equal(b) })

type ServiceTestSuite struct {
	suite.Suite
	repo    *repository.MemoryFilmRepository
	service *Service
}

func (s *ServiceTestSuite) SetupTest() {
	s.repo = repository.NewMemoryFilmRepository()

	second := testSession("3:7")
	second.ID = secondSessionID

	s.Require().NoError(s.repo.Create(context.Background(), &domain.Film{
		ID:       testFilmID,
		Schedule: []domain.Session{*testSession(), *second},
	}))

	s.service = NewService(
		s.repo,
		slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithClock(func() time.Time { return testPlacedAt }),
		WithIDGenerator(sequentialIDs()),
	)
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}

func (s *ServiceTestSuite) taken(sessionID string) []string {
	session, err := s.repo.GetSession(context.Background(), testFilmID, sessionID)
	s.Require().NoError(err)
	return session.Taken
}

func (s *ServiceTestSuite) TestDuplicatedSeatCommitsNothing() {
	_, err := s.service.CreateOrder(context.Background(), testEmail, testPhone,
		[]domain.OrderItem{item(1, 1), item(1, 1)})

	s.Equal(domain.KindSeatDuplicatedInOrder, orderErrorOf(s.T(), err).Kind)
	s.Empty(s.taken(testSessionID))
}

func (s *ServiceTestSuite) TestTakenSeatIsRejected() {
	second := item(3, 7)
	second.SessionID = secondSessionID

	_, err := s.service.CreateOrder(context.Background(), testEmail, testPhone, []domain.OrderItem{second})

	s.Equal(domain.KindSeatTaken, orderErrorOf(s.T(), err).Kind)
	s.Equal([]string{"3:7"}, s.taken(secondSessionID))
}

func (s *ServiceTestSuite) TestRowOutOfRangeCitesLimit() {
	_, err := s.service.CreateOrder(context.Background(), testEmail, testPhone, []domain.OrderItem{item(11, 1)})

	orderErr := orderErrorOf(s.T(), err)
	s.Equal(domain.KindRowOutOfRange, orderErr.Kind)
	s.Contains(orderErr.Message, "10")
}

func (s *ServiceTestSuite) TestFailingSessionBlocksCommitsInValidSession() {
	failing := item(3, 7)
	failing.SessionID = secondSessionID

	_, err := s.service.CreateOrder(context.Background(), testEmail, testPhone,
		[]domain.OrderItem{item(1, 1), item(1, 2), failing})

	s.Equal(domain.KindSeatTaken, orderErrorOf(s.T(), err).Kind)
	s.Empty(s.taken(testSessionID))
	s.Equal([]string{"3:7"}, s.taken(secondSessionID))
}

func (s *ServiceTestSuite) TestValidOrderCreatesTickets() {
	order, err := s.service.CreateOrder(context.Background(), testEmail, testPhone,
		[]domain.OrderItem{item(2, 5), item(2, 6)})
	s.Require().NoError(err)

	want := &domain.Order{
		ID:    "id-1",
		Email: testEmail,
		Phone: testPhone,
		Tickets: []domain.Ticket{
			{ID: "id-2", FilmID: testFilmID, SessionID: testSessionID, Row: 2, Seat: 5, Price: decimal.NewFromInt(350), BookedAt: testPlacedAt},
			{ID: "id-3", FilmID: testFilmID, SessionID: testSessionID, Row: 2, Seat: 6, Price: decimal.NewFromInt(350), BookedAt: testPlacedAt},
		},
		PlacedAt: testPlacedAt,
	}

	if diff := cmp.Diff(want, order, decimalComparer); diff != "" {
		s.T().Errorf("CreateOrder() mismatch (-want +got):\n%s", diff)
	}

	s.ElementsMatch([]string{"2:5", "2:6"}, s.taken(testSessionID))
	s.Equal("28.06.2024", order.Tickets[0].Day())
	s.Equal("18:05", order.Tickets[0].Time())
	s.True(decimal.NewFromInt(700).Equal(order.Amount()))
}

func (s *ServiceTestSuite) TestTicketsFollowInputOrderAcrossSessions() {
	other := item(1, 1)
	other.SessionID = secondSessionID

	order, err := s.service.CreateOrder(context.Background(), testEmail, testPhone,
		[]domain.OrderItem{item(4, 4), other, item(4, 5)})
	s.Require().NoError(err)

	got := make([]string, 0, len(order.Tickets))
	for _, t := range order.Tickets {
		got = append(got, t.SessionID+"/"+domain.OrderItem{Row: t.Row, Seat: t.Seat}.SeatKey())
	}

	s.Equal([]string{"session-1/4:4", "session-2/1:1", "session-1/4:5"}, got)
	s.Equal([]string{"3:7", "1:1"}, s.taken(secondSessionID))
}

func (s *ServiceTestSuite) TestSecondOrderForSameSeatIsRejected() {
	_, err := s.service.CreateOrder(context.Background(), testEmail, testPhone, []domain.OrderItem{item(1, 1)})
	s.Require().NoError(err)

	_, err = s.service.CreateOrder(context.Background(), testEmail, testPhone, []domain.OrderItem{item(1, 1)})
	s.Equal(domain.KindSeatTaken, orderErrorOf(s.T(), err).Kind)
	s.Equal([]string{"1:1"}, s.taken(testSessionID))
}

func (s *ServiceTestSuite) TestEmptyOrder() {
	_, err := s.service.CreateOrder(context.Background(), testEmail, testPhone, nil)
	s.ErrorIs(err, domain.ErrEmptyOrder)
}

func TestCreateOrderReportsPartialCommit(t *testing.T) {
	repo := new(mocks.MockFilmRepo)
	defer repo.AssertExpectations(t)

	repo.On("GetSession", mock.Anything, testFilmID, testSessionID).Return(testSession(), nil)
	repo.On("AddTakenSeats", mock.Anything, testFilmID, testSessionID, []string{"1:1"}).Return(true, nil).Once()
	repo.On("AddTakenSeats", mock.Anything, testFilmID, testSessionID, []string{"1:2"}).Return(false, nil).Once()

	service := NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)),
		WithClock(func() time.Time { return testPlacedAt }),
		WithIDGenerator(sequentialIDs()),
	)

	order, err := service.CreateOrder(context.Background(), testEmail, testPhone,
		[]domain.OrderItem{item(1, 1), item(1, 2)})

	assert.Nil(t, order)

	var partial *domain.PartialOrderError
	require.ErrorAs(t, err, &partial)

	assert.Equal(t, domain.KindCommitRaceLost, partial.Cause.Kind)
	require.Len(t, partial.Order.Tickets, 1)
	assert.Equal(t, 1, partial.Order.Tickets[0].Row)
	assert.Equal(t, 1, partial.Order.Tickets[0].Seat)

	assert.Equal(t, domain.KindCommitRaceLost, orderErrorOf(t, err).Kind)
}

func TestCreateOrderFirstCommitLossIsPlainFailure(t *testing.T) {
	repo := new(mocks.MockFilmRepo)
	defer repo.AssertExpectations(t)

	repo.On("GetSession", mock.Anything, testFilmID, testSessionID).Return(testSession(), nil)
	repo.On("AddTakenSeats", mock.Anything, testFilmID, testSessionID, []string{"1:1"}).Return(false, nil).Once()

	service := NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := service.CreateOrder(context.Background(), testEmail, testPhone,
		[]domain.OrderItem{item(1, 1), item(1, 2)})

	var partial *domain.PartialOrderError
	assert.False(t, errors.As(err, &partial), "first commit loss must not be reported as partial: %v", err)

	assert.Equal(t, domain.KindCommitRaceLost, orderErrorOf(t, err).Kind)
}
