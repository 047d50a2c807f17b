package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/DimaBagZ/film-react-nest/api"
	"github.com/DimaBagZ/film-react-nest/internal/domain"
	"github.com/DimaBagZ/film-react-nest/internal/events"
	"github.com/DimaBagZ/film-react-nest/internal/mailer"
	appvalidator "github.com/DimaBagZ/film-react-nest/internal/validator"
	"github.com/go-chi/chi/v5/middleware"
	openapi_types "github.com/oapi-codegen/runtime/types"
)

const publishTimeout = 5 * time.Second

func (app *Application) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req api.CreateOrderRequest

	err := app.readJSON(w, r, &req)
	if err != nil {
		if errors.Is(err, openapi_types.ErrValidationEmail) {
			app.invalidEmailResponse(w, r)
			return
		}

		app.badRequestResponse(w, r, err)
		return
	}

	err = app.validator.Struct(req)
	if err != nil {
		app.failedValidationResponse(w, r, err)
		return
	}

	order, err := app.orders.CreateOrder(r.Context(), string(req.Email), req.Phone, toOrderItems(req.Tickets))
	if err != nil {
		var partialErr *domain.PartialOrderError

		switch {
		case errors.Is(err, domain.ErrEmptyOrder):
			app.badRequestResponse(w, r, err)
		case errors.As(err, &partialErr):
			app.notifyOrderPlaced(partialErr.Order, middleware.GetReqID(r.Context()))
			app.orderErrorResponse(w, r, err)
		default:
			app.orderErrorResponse(w, r, err)
		}
		return
	}

	app.notifyOrderPlaced(order, middleware.GetReqID(r.Context()))

	err = app.writeJSON(w, http.StatusCreated, toOrderResponse(order), nil)
	if err != nil {
		app.serverErrorResponse(w, r, err)
	}
}

func (app *Application) invalidEmailResponse(w http.ResponseWriter, r *http.Request) {
	resp := api.ValidationErrorResponse{
		ErrorResponse: app.newErrorResponse(r, "One or more fields are invalid"),
		ValidationErrors: []api.ValidationError{
			{Field: "email", Issue: appvalidator.ErrEmail},
		},
	}

	app.sendError(w, r, http.StatusUnprocessableEntity, resp)
}

// notifyOrderPlaced sends the confirmation e-mail and publishes the order
// event in the background. Failures are logged only.
func (app *Application) notifyOrderPlaced(order *domain.Order, requestID string) {
	if app.mailer == nil && app.publisher == nil {
		return
	}

	app.background(func() {
		logger := app.logger.With("order_id", order.ID, "request_id", requestID)

		if app.mailer != nil {
			err := app.mailer.Send(order.Email, mailer.OrderConfirmationTemplate, mailer.NewOrderConfirmation(order))
			if err != nil {
				logger.Error("failed to send order confirmation", "error", err)
			}
		}

		if app.publisher != nil {
			ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
			defer cancel()

			err := app.publisher.PublishOrderPlaced(ctx, events.NewOrderPlaced(order))
			if err != nil {
				logger.Error("failed to publish order event", "error", err)
			}
		}
	})
}

func toOrderItems(tickets []api.OrderTicket) []domain.OrderItem {
	items := make([]domain.OrderItem, len(tickets))

	for i, t := range tickets {
		items[i] = domain.OrderItem{
			FilmID:    t.Film,
			SessionID: t.Session,
			Row:       t.Row,
			Seat:      t.Seat,
			Price:     t.Price,
		}
	}

	return items
}

func toOrderResponse(order *domain.Order) api.OrderResponse {
	items := make([]api.TicketResponse, len(order.Tickets))

	for i, t := range order.Tickets {
		items[i] = api.TicketResponse{
			Id:      t.ID,
			Film:    t.FilmID,
			Session: t.SessionID,
			Row:     t.Row,
			Seat:    t.Seat,
			Price:   t.Price,
			Daytime: t.BookedAt,
			Day:     t.Day(),
			Time:    t.Time(),
		}
	}

	return api.OrderResponse{
		Total: len(items),
		Items: items,
	}
}
