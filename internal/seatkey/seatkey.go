// Package seatkey encodes a (row, seat) pair into the string key stored in a
// session's taken set.
package seatkey

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Separator joins the decimal row and seat. It never appears in a decimal integer.
const Separator = ":"

var ErrMalformedKey = errors.New("malformed seat key")

func Encode(row, seat int) string {
	return strconv.Itoa(row) + Separator + strconv.Itoa(seat)
}

// Decode is the inverse of Encode. Only keys in the exact form Encode produces
// are accepted, so "01:1" or "+1:1" are rejected.
func Decode(key string) (row, seat int, err error) {
	rowPart, seatPart, ok := strings.Cut(key, Separator)
	if !ok {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedKey, key)
	}

	row, err = strconv.Atoi(rowPart)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedKey, key)
	}

	seat, err = strconv.Atoi(seatPart)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedKey, key)
	}

	if Encode(row, seat) != key {
		return 0, 0, fmt.Errorf("%w: %q", ErrMalformedKey, key)
	}

	return row, seat, nil
}
