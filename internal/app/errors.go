package app

import (
	"errors"
	"net/http"
	"time"

	"github.com/DimaBagZ/film-react-nest/api"
	"github.com/DimaBagZ/film-react-nest/internal/domain"
	appvalidator "github.com/DimaBagZ/film-react-nest/internal/validator"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
)

const (
	ErrInternalServer = "The server encountered a problem and could not process your request"
	ErrFilmNotFound   = "Film not found"
)

func (app *Application) logError(r *http.Request, err error) {
	var (
		method = r.Method
		uri    = r.URL.RequestURI()
	)

	app.logger.Error(err.Error(), "method", method, "uri", uri)
}

func (app *Application) newErrorResponse(r *http.Request, message string) api.ErrorResponse {
	return api.ErrorResponse{
		Message:   message,
		RequestId: middleware.GetReqID(r.Context()),
		Timestamp: time.Now(),
	}
}

// The errorResponse() method is a generic helper for sending JSON-formatted error
// messages to the client with a given status code.
func (app *Application) errorResponse(w http.ResponseWriter, r *http.Request, status int, message string) {
	app.sendError(w, r, status, app.newErrorResponse(r, message))
}

func (app *Application) sendError(w http.ResponseWriter, r *http.Request, status int, resp any) {
	err := app.writeJSON(w, status, resp, nil)
	if err != nil {
		app.logError(r, err)
		w.WriteHeader(500)
	}
}

func (app *Application) serverErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.logError(r, err)
	app.errorResponse(w, r, http.StatusInternalServerError, ErrInternalServer)
}

func (app *Application) notFoundResponse(w http.ResponseWriter, r *http.Request, message string) {
	app.errorResponse(w, r, http.StatusNotFound, message)
}

func (app *Application) badRequestResponse(w http.ResponseWriter, r *http.Request, err error) {
	app.errorResponse(w, r, http.StatusBadRequest, err.Error())
}

func (app *Application) failedValidationResponse(w http.ResponseWriter, r *http.Request, err error) {
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		app.badRequestResponse(w, r, err)
		return
	}

	resp := api.ValidationErrorResponse{
		ErrorResponse:    app.newErrorResponse(r, "One or more fields are invalid"),
		ValidationErrors: make([]api.ValidationError, 0, len(validationErrs)),
	}

	for _, fe := range validationErrs {
		resp.ValidationErrors = append(resp.ValidationErrors, api.ValidationError{
			Field: fieldPath(fe),
			Issue: appvalidator.ValidationMessage(fe),
		})
	}

	app.sendError(w, r, http.StatusUnprocessableEntity, resp)
}

// fieldPath drops the root struct name from the namespace, e.g.
// "CreateOrderRequest.tickets[0].film" becomes "tickets[0].film".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	for i := 0; i < len(ns); i++ {
		if ns[i] == '.' {
			return ns[i+1:]
		}
	}

	return ns
}

// orderErrorResponse presents a reservation failure. A partial order keeps
// the 400 status of its cause and lists the tickets that stay booked.
func (app *Application) orderErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var (
		orderErr   *domain.OrderError
		partialErr *domain.PartialOrderError
		committed  *api.OrderResponse
	)

	if errors.As(err, &partialErr) {
		resp := toOrderResponse(partialErr.Order)
		committed = &resp
	}

	if !errors.As(err, &orderErr) {
		app.serverErrorResponse(w, r, err)
		return
	}

	status := http.StatusBadRequest
	message := orderErr.Message

	switch orderErr.Kind {
	case domain.KindSessionNotFound:
		status = http.StatusNotFound
	case domain.KindStoreUnavailable:
		app.logError(r, err)
		message = ErrInternalServer
		if committed == nil {
			status = http.StatusInternalServerError
		}
	}

	resp := api.OrderErrorResponse{
		ErrorResponse: app.newErrorResponse(r, message),
		Code:          string(orderErr.Kind),
		Committed:     committed,
	}

	app.sendError(w, r, status, resp)
}
