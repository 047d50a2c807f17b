package app

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DimaBagZ/film-react-nest/api"
	"github.com/DimaBagZ/film-react-nest/internal/domain"
	"github.com/DimaBagZ/film-react-nest/internal/events"
	"github.com/DimaBagZ/film-react-nest/internal/mailer"
	"github.com/DimaBagZ/film-react-nest/internal/repository"
	"github.com/DimaBagZ/film-react-nest/internal/repository/repotest"
)

type testApplication struct {
	*Application
	mailer    *mailer.MockMailer
	publisher *events.MockPublisher
}

// newTestApplication builds an application over an in-memory repository
// seeded with the repotest fixtures, unless filmRepo is given.
func newTestApplication(t *testing.T, filmRepo domain.FilmRepository) *testApplication {
	t.Helper()

	if filmRepo == nil {
		memory := repository.NewMemoryFilmRepository()
		for _, film := range []*domain.Film{repotest.Film(), repotest.OtherFilm()} {
			if err := memory.Create(context.Background(), film); err != nil {
				t.Fatal(err)
			}
		}
		filmRepo = memory
	}

	m := mailer.NewMockMailer()
	p := events.NewMockPublisher()

	cfg := Config{Env: "test", StaticDir: t.TempDir()}

	app, err := NewApp(cfg, slog.New(slog.NewTextHandler(io.Discard, nil)), filmRepo, m, p)
	if err != nil {
		t.Fatal(err)
	}

	return &testApplication{Application: app, mailer: m, publisher: p}
}

func executeRequest(t *testing.T, method, url string, body any) (*httptest.ResponseRecorder, *http.Request) {
	var reader io.Reader = http.NoBody

	switch b := body.(type) {
	case nil:
	case string:
		reader = bytes.NewReader([]byte(b))
	default:
		jsonData, err := json.Marshal(body)
		if err != nil {
			t.Fatal(err)
		}
		reader = bytes.NewReader(jsonData)
	}

	r := httptest.NewRequest(method, url, reader)
	r.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()

	return w, r
}

func checkErrorResponse(t *testing.T, w *httptest.ResponseRecorder, tt struct {
	wantStatus     int
	wantErrMessage string
}) {
	if tt.wantStatus >= 200 && tt.wantStatus < 300 {
		return
	}

	switch tt.wantStatus {
	case http.StatusUnprocessableEntity:
		var validationResp api.ValidationErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&validationResp); err != nil {
			t.Fatalf("Failed to decode validation error response: %v", err)
		}

		errorSet := make(map[string]bool)
		for _, vErr := range validationResp.ValidationErrors {
			errorSet[vErr.Issue] = true
		}

		if !errorSet[tt.wantErrMessage] {
			t.Errorf("Expected validation error message '%s' not found in response", tt.wantErrMessage)
		}

	default:
		var errorResp api.ErrorResponse
		if err := json.NewDecoder(w.Body).Decode(&errorResp); err != nil {
			t.Fatalf("Failed to decode error response: %v", err)
		}

		if tt.wantErrMessage != "" && errorResp.Message != tt.wantErrMessage {
			t.Errorf("Error message = %v, want %v", errorResp.Message, tt.wantErrMessage)
		}
	}
}

func decodeJSON[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()

	var v T
	if err := json.NewDecoder(w.Body).Decode(&v); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}

	return v
}
