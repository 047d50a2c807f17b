package app

import (
	"errors"
	"net/http"

	"github.com/DimaBagZ/film-react-nest/api"
	"github.com/DimaBagZ/film-react-nest/internal/domain"
	"github.com/go-chi/chi/v5"
)

func (app *Application) GetFilms(w http.ResponseWriter, r *http.Request) {
	films, err := app.filmRepo.GetAll(r.Context())
	if err != nil {
		app.serverErrorResponse(w, r, err)
		return
	}

	resp := api.FilmListResponse{
		Total: len(films),
		Items: toApiFilms(films),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) GetFilmSchedule(w http.ResponseWriter, r *http.Request) {
	filmID := chi.URLParam(r, "id")

	sessions, err := app.filmRepo.GetSchedule(r.Context(), filmID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrRecordNotFound):
			app.notFoundResponse(w, r, ErrFilmNotFound)
		default:
			app.serverErrorResponse(w, r, err)
		}
		return
	}

	resp := api.ScheduleResponse{
		Total: len(sessions),
		Items: toApiSessions(sessions),
	}

	err = app.writeJSON(w, http.StatusOK, resp, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func toApiFilms(films []*domain.Film) []api.Film {
	items := make([]api.Film, len(films))

	for i, film := range films {
		items[i] = api.Film{
			Id:          film.ID,
			Rating:      film.Rating,
			Director:    film.Director,
			Tags:        nonNil(film.Tags),
			Title:       film.Title,
			About:       film.About,
			Description: film.Description,
			Image:       film.Image,
			Cover:       film.Cover,
		}
	}

	return items
}

func toApiSessions(sessions []domain.Session) []api.Session {
	items := make([]api.Session, len(sessions))

	for i, s := range sessions {
		items[i] = api.Session{
			Id:      s.ID,
			Daytime: s.Daytime,
			Hall:    s.Hall,
			Rows:    s.Rows,
			Seats:   s.Seats,
			Price:   s.Price,
			Taken:   nonNil(s.Taken),
		}
	}

	return items
}

func nonNil(values []string) []string {
	if values == nil {
		return []string{}
	}
	return values
}
