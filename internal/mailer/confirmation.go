package mailer

import (
	"github.com/DimaBagZ/film-react-nest/internal/domain"
)

type ConfirmationTicket struct {
	Film  string
	Day   string
	Time  string
	Row   int
	Seat  int
	Price string
}

// OrderConfirmation is the data rendered by the order confirmation template.
type OrderConfirmation struct {
	OrderID string
	Tickets []ConfirmationTicket
	Amount  string
}

func NewOrderConfirmation(order *domain.Order) OrderConfirmation {
	data := OrderConfirmation{
		OrderID: order.ID,
		Tickets: make([]ConfirmationTicket, 0, len(order.Tickets)),
		Amount:  order.Amount().StringFixed(2),
	}

	for _, t := range order.Tickets {
		data.Tickets = append(data.Tickets, ConfirmationTicket{
			Film:  t.FilmID,
			Day:   t.Day(),
			Time:  t.Time(),
			Row:   t.Row,
			Seat:  t.Seat,
			Price: t.Price.StringFixed(2),
		})
	}

	return data
}
