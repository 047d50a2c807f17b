package app

import (
	"net/http"
)

func (app *Application) GetDocs(w http.ResponseWriter, r *http.Request) {
	err := app.writeJSON(w, http.StatusOK, app.swagger, nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}
