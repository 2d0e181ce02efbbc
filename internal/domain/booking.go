package domain

import (
	"database/sql/driver"
	"errors"
	"strings"
)

// BookingStatus is the lifecycle state of a booking.
type BookingStatus string

const (
	BookingPending   BookingStatus = "pending"
	BookingConfirmed BookingStatus = "confirmed"
	BookingCancelled BookingStatus = "cancelled"
	BookingCompleted BookingStatus = "completed"
)

// ErrUnknownStatus is returned by ParseBookingStatus for values outside the
// closed set of statuses.
var ErrUnknownStatus = errors.New("unknown booking status")

// transitions lists the legal target states for every non-terminal state.
// Terminal states have no entry.
var transitions = map[BookingStatus][]BookingStatus{
	BookingPending:   {BookingConfirmed, BookingCancelled},
	BookingConfirmed: {BookingCompleted, BookingCancelled},
}

// ParseBookingStatus validates s against the closed set of statuses. Input is
// trimmed but otherwise matched exactly; "Confirmed" is rejected.
func ParseBookingStatus(s string) (BookingStatus, error) {
	st := BookingStatus(strings.TrimSpace(s))
	switch st {
	case BookingPending, BookingConfirmed, BookingCancelled, BookingCompleted:
		return st, nil
	}
	return "", ErrUnknownStatus
}

// Value implements driver.Valuer so the status binds as a plain string.
func (s BookingStatus) Value() (driver.Value, error) { return string(s), nil }

// IsTerminal reports whether no transition leaves s.
func (s BookingStatus) IsTerminal() bool {
	return s == BookingCancelled || s == BookingCompleted
}

// CanTransition reports whether a booking in state from may move to state to.
// Re-entering the current state is not a transition.
func CanTransition(from, to BookingStatus) bool {
	for _, next := range transitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
