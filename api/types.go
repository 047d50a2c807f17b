// Package api holds the HTTP request and response bodies of the afisha API
// and the OpenAPI document describing them.
package api

import (
	"time"

	openapi_types "github.com/oapi-codegen/runtime/types"
	"github.com/shopspring/decimal"
)

func init() {
	// prices travel as JSON numbers
	decimal.MarshalJSONWithoutQuotes = true
}

// Film defines model for Film.
type Film struct {
	Id          string   `json:"id"`
	Rating      float64  `json:"rating"`
	Director    string   `json:"director"`
	Tags        []string `json:"tags"`
	Title       string   `json:"title"`
	About       string   `json:"about"`
	Description string   `json:"description"`
	Image       string   `json:"image"`
	Cover       string   `json:"cover"`
}

// FilmListResponse defines model for FilmListResponse.
type FilmListResponse struct {
	Total int    `json:"total"`
	Items []Film `json:"items"`
}

// Session defines model for Session.
type Session struct {
	Id      string          `json:"id"`
	Daytime time.Time       `json:"daytime"`
	Hall    int             `json:"hall"`
	Rows    int             `json:"rows"`
	Seats   int             `json:"seats"`
	Price   decimal.Decimal `json:"price"`
	Taken   []string        `json:"taken"`
}

// ScheduleResponse defines model for ScheduleResponse.
type ScheduleResponse struct {
	Total int       `json:"total"`
	Items []Session `json:"items"`
}

// OrderTicket defines model for OrderTicket.
type OrderTicket struct {
	Film    string          `json:"film" validate:"required"`
	Session string          `json:"session" validate:"required"`
	Row     int             `json:"row"`
	Seat    int             `json:"seat"`
	Price   decimal.Decimal `json:"price"`
}

// CreateOrderRequest defines model for CreateOrderRequest.
type CreateOrderRequest struct {
	Email   openapi_types.Email `json:"email" validate:"required,email"`
	Phone   string              `json:"phone" validate:"required,phone"`
	Tickets []OrderTicket       `json:"tickets" validate:"required,min=1,dive"`
}

// TicketResponse defines model for TicketResponse.
type TicketResponse struct {
	Id      string          `json:"id"`
	Film    string          `json:"film"`
	Session string          `json:"session"`
	Row     int             `json:"row"`
	Seat    int             `json:"seat"`
	Price   decimal.Decimal `json:"price"`
	Daytime time.Time       `json:"daytime"`
	Day     string          `json:"day"`
	Time    string          `json:"time"`
}

// OrderResponse defines model for OrderResponse.
type OrderResponse struct {
	Total int              `json:"total"`
	Items []TicketResponse `json:"items"`
}

// ErrorResponse defines model for ErrorResponse.
type ErrorResponse struct {
	Message   string    `json:"message"`
	RequestId string    `json:"requestId"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderErrorResponse is returned when the reservation core rejects an order.
// Committed is set when some tickets were booked before the failure.
type OrderErrorResponse struct {
	ErrorResponse
	Code      string         `json:"code"`
	Committed *OrderResponse `json:"committed,omitempty"`
}

// ValidationError defines model for ValidationError.
type ValidationError struct {
	Field string `json:"field"`
	Issue string `json:"issue"`
}

// ValidationErrorResponse defines model for ValidationErrorResponse.
type ValidationErrorResponse struct {
	ErrorResponse
	ValidationErrors []ValidationError `json:"validationErrors"`
}

// StatusResponse defines model for StatusResponse.
type StatusResponse struct {
	Status    string    `json:"status"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

// SystemInfo defines model for SystemInfo.
type SystemInfo struct {
	Environment string `json:"environment"`
	Version     string `json:"version"`
}

// HealthcheckResponse defines model for HealthcheckResponse.
type HealthcheckResponse struct {
	Status     string     `json:"status"`
	SystemInfo SystemInfo `json:"systemInfo"`
}
