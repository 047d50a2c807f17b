package integration_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type OrderTestSuite struct {
	BaseSuite
}

func TestOrderSuite(t *testing.T) {
	if testing.Short() {
		t.Skip()
	}

	suite.Run(t, new(OrderTestSuite))
}

func orderBody(tickets ...string) string {
	return fmt.Sprintf(`{
		"email": "%s",
		"phone": "%s",
		"tickets": [%s]
	}`, TestCustomerEmail, TestCustomerPhone, strings.Join(tickets, ","))
}

func orderTicket(filmID, sessionID string, row, seat int, price string) string {
	return fmt.Sprintf(`{"film": "%s", "session": "%s", "row": %d, "seat": %d, "price": %s}`,
		filmID, sessionID, row, seat, price)
}

func assertTaken(t testing.TB, app *TestApp, filmID, sessionID string, want ...string) {
	session, err := app.Films.GetSession(context.Background(), filmID, sessionID)
	require.NoError(t, err)
	assert.ElementsMatch(t, want, session.Taken)
}

func (s *OrderTestSuite) TestCreateOrder() {
	scenarios := []Scenario{
		{
			Name:   "books seats across films",
			Method: "POST",
			URL:    "/api/afisha/order",
			Body: strings.NewReader(orderBody(
				orderTicket(ArchivesFilmID, ArchivesAfternoonID, 2, 5, "350"),
				orderTicket(SandsFilmID, SandsEveningID, 10, 15, "450.5"),
			)),
			ExpectedStatus: 201,
			ExpectedResponse: fmt.Sprintf(`{
				"total": 2,
				"items": [
					{"film": "%s", "session": "%s", "row": 2, "seat": 5, "price": 350},
					{"film": "%s", "session": "%s", "row": 10, "seat": 15, "price": 450.5}
				]
			}`, ArchivesFilmID, ArchivesAfternoonID, SandsFilmID, SandsEveningID),
			IgnoreKeys: ticketKeys,
			AfterTestFunc: func(t testing.TB, app *TestApp, res *http.Response) {
				assertTaken(t, app, ArchivesFilmID, ArchivesAfternoonID, "2:5")
				assertTaken(t, app, SandsFilmID, SandsEveningID, "10:15")

				app.App.Wait()
				emails := app.Mailer.GetSentEmails()
				require.NotEmpty(t, emails)
				assert.Equal(t, TestCustomerEmail, emails[len(emails)-1].Recipient)
			},
		},
		{
			Name:   "rejects a taken seat",
			Method: "POST",
			URL:    "/api/afisha/order",
			Body: strings.NewReader(orderBody(
				orderTicket(ArchivesFilmID, ArchivesMorningID, 3, 7, "350"),
			)),
			ExpectedStatus: 400,
			ExpectedResponse: `{
				"code": "SEAT_TAKEN",
				"message": "Row 3, seat 7 is already taken. Please choose another seat."
			}`,
			AfterTestFunc: func(t testing.TB, app *TestApp, res *http.Response) {
				assertTaken(t, app, ArchivesFilmID, ArchivesMorningID, "1:2", "3:7")
			},
		},
		{
			Name:   "rejects a seat selected twice",
			Method: "POST",
			URL:    "/api/afisha/order",
			Body: strings.NewReader(orderBody(
				orderTicket(ArchivesFilmID, ArchivesAfternoonID, 1, 1, "350"),
				orderTicket(ArchivesFilmID, ArchivesAfternoonID, 1, 1, "350"),
			)),
			ExpectedStatus: 400,
			ExpectedResponse: `{
				"code": "SEAT_DUPLICATED_IN_ORDER",
				"message": "Row 1, seat 1 is selected twice in the order."
			}`,
			AfterTestFunc: func(t testing.TB, app *TestApp, res *http.Response) {
				assertTaken(t, app, ArchivesFilmID, ArchivesAfternoonID)
			},
		},
		{
			Name:   "rejects a row outside the hall",
			Method: "POST",
			URL:    "/api/afisha/order",
			Body: strings.NewReader(orderBody(
				orderTicket(SandsFilmID, SandsEveningID, 11, 1, "450.5"),
			)),
			ExpectedStatus: 400,
			ExpectedResponse: `{
				"code": "ROW_OUT_OF_RANGE",
				"message": "Row 11 does not exist. Rows available: 10"
			}`,
		},
		{
			Name:   "rejects an unknown session",
			Method: "POST",
			URL:    "/api/afisha/order",
			Body: strings.NewReader(orderBody(
				orderTicket(SandsFilmID, ArchivesMorningID, 1, 1, "350"),
			)),
			ExpectedStatus: 404,
			ExpectedResponse: fmt.Sprintf(`{
				"code": "SESSION_NOT_FOUND",
				"message": "Session %s not found"
			}`, ArchivesMorningID),
		},
		{
			Name:           "rejects an order without tickets",
			Method:         "POST",
			URL:            "/api/afisha/order",
			Body:           strings.NewReader(orderBody()),
			ExpectedStatus: 422,
			ExpectedResponse: `{
				"message": "One or more fields are invalid",
				"validationErrors": [
					{"field": "tickets", "issue": "must contain at least 1 item(s)"}
				]
			}`,
		},
	}

	for _, scenario := range scenarios {
		scenario.Run(s.T(), s.app)
	}
}

func (s *OrderTestSuite) TestConcurrentOrdersForOneSeat() {
	const buyers = 10

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		statuses = make(map[int]int)
	)

	body := orderBody(orderTicket(SandsFilmID, SandsEveningID, 4, 4, "450.5"))

	for range buyers {
		wg.Add(1)

		go func() {
			defer wg.Done()

			req := httptest.NewRequest(http.MethodPost, "/api/afisha/order", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")

			rec := httptest.NewRecorder()
			s.app.App.Routes().ServeHTTP(rec, req)

			mu.Lock()
			statuses[rec.Code]++
			mu.Unlock()
		}()
	}

	wg.Wait()

	s.Equal(1, statuses[http.StatusCreated], "exactly one buyer gets the seat: %v", statuses)
	s.Equal(buyers-1, statuses[http.StatusBadRequest], "everyone else is rejected: %v", statuses)

	assertTaken(s.T(), s.app, SandsFilmID, SandsEveningID, "4:4")
}
