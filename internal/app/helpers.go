package app

import (
	"fmt"
	"net/http"

	"github.com/DimaBagZ/film-react-nest/internal/jsonutil"
)

func (app *Application) writeJSON(w http.ResponseWriter, status int, data any, headers http.Header) error {
	return jsonutil.WriteJSON(w, status, data, headers)
}

func (app *Application) readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return jsonutil.ReadJSON(w, r, dst)
}

// background runs fn outside the request. Shutdown waits for it and a panic
// is logged instead of crashing the process.
func (app *Application) background(fn func()) {
	app.wg.Add(1)

	go func() {
		defer app.wg.Done()

		defer func() {
			if err := recover(); err != nil {
				app.logger.Error(fmt.Sprintf("%v", err))
			}
		}()

		fn()
	}()
}

// Wait blocks until every background task has finished.
func (app *Application) Wait() {
	app.wg.Wait()
}
