// Package events publishes domain events about placed orders.
package events

import (
	"context"
	"time"

	"github.com/DimaBagZ/film-react-nest/internal/domain"
	"github.com/shopspring/decimal"
)

type TicketPlaced struct {
	ID        string          `json:"id"`
	FilmID    string          `json:"film"`
	SessionID string          `json:"session"`
	Row       int             `json:"row"`
	Seat      int             `json:"seat"`
	Price     decimal.Decimal `json:"price"`
}

// OrderPlaced is published once per order that committed at least one ticket.
type OrderPlaced struct {
	OrderID  string          `json:"orderId"`
	Email    string          `json:"email"`
	Phone    string          `json:"phone"`
	Amount   decimal.Decimal `json:"amount"`
	Tickets  []TicketPlaced  `json:"tickets"`
	PlacedAt time.Time       `json:"placedAt"`
}

func NewOrderPlaced(order *domain.Order) OrderPlaced {
	event := OrderPlaced{
		OrderID:  order.ID,
		Email:    order.Email,
		Phone:    order.Phone,
		Amount:   order.Amount(),
		Tickets:  make([]TicketPlaced, 0, len(order.Tickets)),
		PlacedAt: order.PlacedAt.UTC(),
	}

	for _, t := range order.Tickets {
		event.Tickets = append(event.Tickets, TicketPlaced{
			ID:        t.ID,
			FilmID:    t.FilmID,
			SessionID: t.SessionID,
			Row:       t.Row,
			Seat:      t.Seat,
			Price:     t.Price,
		})
	}

	return event
}

type Publisher interface {
	PublishOrderPlaced(ctx context.Context, event OrderPlaced) error
}
