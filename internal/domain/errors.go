package domain

import (
	"errors"
	"fmt"
)

var (
	ErrRecordNotFound    = errors.New("record not found")
	ErrFilmAlreadyExists = errors.New("film already exists")
	ErrEmptyOrder        = errors.New("order must contain at least one ticket")
	ErrMixedSessions     = errors.New("items belong to different sessions")
)

type OrderErrorKind string

const (
	KindSessionNotFound       OrderErrorKind = "SESSION_NOT_FOUND"
	KindRowOutOfRange         OrderErrorKind = "ROW_OUT_OF_RANGE"
	KindSeatOutOfRange        OrderErrorKind = "SEAT_OUT_OF_RANGE"
	KindSeatTaken             OrderErrorKind = "SEAT_TAKEN"
	KindSeatDuplicatedInOrder OrderErrorKind = "SEAT_DUPLICATED_IN_ORDER"
	KindCommitRaceLost        OrderErrorKind = "COMMIT_RACE_LOST"
	KindStoreUnavailable      OrderErrorKind = "STORE_UNAVAILABLE"
)

// OrderError is a reservation failure with a machine readable kind and a
// message that can be shown to the customer.
type OrderError struct {
	Kind    OrderErrorKind
	Message string
	Err     error
}

func (e *OrderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Kind, e.Message, e.Err)
	}

	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

func (e *OrderError) Unwrap() error {
	return e.Err
}

func NewSessionNotFoundError(sessionID string) *OrderError {
	return &OrderError{
		Kind:    KindSessionNotFound,
		Message: fmt.Sprintf("Session %s not found", sessionID),
	}
}

func NewRowOutOfRangeError(row, rows int) *OrderError {
	return &OrderError{
		Kind:    KindRowOutOfRange,
		Message: fmt.Sprintf("Row %d does not exist. Rows available: %d", row, rows),
	}
}

func NewSeatOutOfRangeError(seat, seats int) *OrderError {
	return &OrderError{
		Kind:    KindSeatOutOfRange,
		Message: fmt.Sprintf("Seat %d does not exist. Seats per row: %d", seat, seats),
	}
}

func NewSeatTakenError(row, seat int) *OrderError {
	return &OrderError{
		Kind:    KindSeatTaken,
		Message: fmt.Sprintf("Row %d, seat %d is already taken. Please choose another seat.", row, seat),
	}
}

func NewSeatDuplicatedInOrderError(row, seat int) *OrderError {
	return &OrderError{
		Kind:    KindSeatDuplicatedInOrder,
		Message: fmt.Sprintf("Row %d, seat %d is selected twice in the order.", row, seat),
	}
}

func NewCommitRaceLostError() *OrderError {
	return &OrderError{
		Kind:    KindCommitRaceLost,
		Message: "Could not book the seats. Please try again.",
	}
}

func NewStoreUnavailableError(err error) *OrderError {
	return &OrderError{
		Kind:    KindStoreUnavailable,
		Message: "session store unavailable",
		Err:     err,
	}
}

// PartialOrderError reports that the order stopped after some of its tickets
// were already committed. Committed seats stay reserved.
type PartialOrderError struct {
	Order *Order
	Cause *OrderError
}

func (e *PartialOrderError) Error() string {
	return fmt.Sprintf("order %s partially committed (%d tickets): %v", e.Order.ID, len(e.Order.Tickets), e.Cause)
}

func (e *PartialOrderError) Unwrap() error {
	return e.Cause
}
