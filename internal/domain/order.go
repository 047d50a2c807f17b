package domain

import (
	"time"

	"github.com/DimaBagZ/film-react-nest/internal/seatkey"
	"github.com/shopspring/decimal"
)

const (
	TicketDayLayout  = "02.01.2006"
	TicketTimeLayout = "15:04"
)

type OrderItem struct {
	FilmID    string
	SessionID string
	Row       int
	Seat      int
	Price     decimal.Decimal
}

func (i OrderItem) SeatKey() string {
	return seatkey.Encode(i.Row, i.Seat)
}

type Ticket struct {
	ID        string
	FilmID    string
	SessionID string
	Row       int
	Seat      int
	Price     decimal.Decimal
	BookedAt  time.Time
}

func (t Ticket) Day() string {
	return t.BookedAt.Format(TicketDayLayout)
}

func (t Ticket) Time() string {
	return t.BookedAt.Format(TicketTimeLayout)
}

type Order struct {
	ID       string
	Email    string
	Phone    string
	Tickets  []Ticket
	PlacedAt time.Time
}

func (o *Order) Amount() decimal.Decimal {
	total := decimal.Zero
	for _, t := range o.Tickets {
		total = total.Add(t.Price)
	}

	return total
}
