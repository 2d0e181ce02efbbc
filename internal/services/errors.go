// Package services implements the business rules of the salon marketplace:
// accounts, salons and their catalog, reviews with the rating aggregate,
// the booking lifecycle and favorites.
//
// This file centralizes the typed service errors. Every predictable failure
// is an *Error carrying one of five kinds, so handlers can map it to an HTTP
// status and a stable machine code without knowing the individual cause.
//
// Callers match either a specific cause or a whole kind:
//
//	errors.Is(err, services.ErrSalonNotFound) // this cause only
//	errors.Is(err, services.ErrNotFound)      // any not-found cause
package services

import (
	"errors"
	"fmt"

	"github.com/tbourn/go-salon-backend/internal/domain"
)

// Kind classifies a service error.
type Kind string

const (
	KindNotFound          Kind = "not_found"
	KindConflict          Kind = "conflict"
	KindForbidden         Kind = "forbidden"
	KindInvalidTransition Kind = "invalid_transition"
	KindValidation        Kind = "validation"
)

// ResourceChanged reports whether the failure stems from the state of the
// store (a missing or clashing record), so a caller may refresh and retry.
// Forbidden, InvalidTransition and Validation failures will not succeed on
// retry without a different request.
func (k Kind) ResourceChanged() bool {
	return k == KindNotFound || k == KindConflict
}

// Error is a typed service failure with a human-readable message.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return string(e.Kind)
	}
	return e.Message
}

// Is matches kind sentinels (no message) against any error of that kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	if t.Message == "" {
		return t.Kind == e.Kind
	}
	return t.Kind == e.Kind && t.Message == e.Message
}

// KindOf extracts the kind of a service error. ok is false for errors that
// did not originate as an *Error (e.g. database failures).
func KindOf(err error) (k Kind, ok bool) {
	var se *Error
	if errors.As(err, &se) {
		return se.Kind, true
	}
	return "", false
}

// Kind sentinels.
var (
	ErrNotFound          = &Error{Kind: KindNotFound}
	ErrConflict          = &Error{Kind: KindConflict}
	ErrForbidden         = &Error{Kind: KindForbidden}
	ErrInvalidTransition = &Error{Kind: KindInvalidTransition}
	ErrValidation        = &Error{Kind: KindValidation}
)

// Not found.
var (
	ErrUserNotFound    = &Error{KindNotFound, "user not found"}
	ErrSalonNotFound   = &Error{KindNotFound, "salon not found"}
	ErrServiceNotFound = &Error{KindNotFound, "service not found"}
	ErrReviewNotFound  = &Error{KindNotFound, "review not found"}
	ErrBookingNotFound = &Error{KindNotFound, "booking not found"}
)

// Conflicts.
var (
	ErrUsernameTaken   = &Error{KindConflict, "username already exists"}
	ErrEmailTaken      = &Error{KindConflict, "email already exists"}
	ErrAccountTaken    = &Error{KindConflict, "username or email already exists"}
	ErrAlreadyFavorite = &Error{KindConflict, "salon already in favorites"}
	ErrServiceInUse    = &Error{KindConflict, "service has bookings and cannot be deleted"}
)

// Forbidden.
var (
	ErrNotSalonOwner         = &Error{KindForbidden, "only the salon owner may do this"}
	ErrNotBookingParty       = &Error{KindForbidden, "booking belongs to another customer and salon"}
	ErrCustomerMayOnlyCancel = &Error{KindForbidden, "customers may only cancel"}
	ErrNotReviewAuthor       = &Error{KindForbidden, "only the author may change a review"}
)

// ErrInvalidCredentials is returned by UserService.Authenticate. It is not a
// typed *Error: handlers answer it with 401.
var ErrInvalidCredentials = errors.New("invalid username or password")

func validationError(format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Message: fmt.Sprintf(format, args...)}
}

func invalidTransition(from, to domain.BookingStatus) *Error {
	return &Error{
		Kind:    KindInvalidTransition,
		Message: fmt.Sprintf("cannot change booking status from %s to %s", from, to),
	}
}
