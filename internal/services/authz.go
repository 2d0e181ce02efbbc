package services

import "github.com/tbourn/go-salon-backend/internal/domain"

// Caller is the authenticated identity a request acts for. It is supplied
// by the HTTP auth middleware; services never check credentials themselves.
type Caller struct {
	ID           string
	IsSalonOwner bool
}

// Action is a capability a caller may hold over a resource.
type Action string

const (
	// ActionManageSalon covers editing a salon and its service catalog.
	ActionManageSalon Action = "salon:manage"
	// ActionViewBooking covers reading a booking.
	ActionViewBooking Action = "booking:view"
	// ActionCancelBooking is a status change to cancelled.
	ActionCancelBooking Action = "booking:cancel"
	// ActionSetBookingStatus is a status change to anything but cancelled.
	ActionSetBookingStatus Action = "booking:set_status"
	// ActionEditReview covers updating and deleting a review.
	ActionEditReview Action = "review:edit"
)

// Resource names the parties holding rights over an entity. Unused fields
// stay empty.
type Resource struct {
	OwnerID    string // owner of the salon involved
	CustomerID string // customer of a booking
	AuthorID   string // author of a review
}

// SalonResource describes a salon (or anything in its catalog).
func SalonResource(s *domain.Salon) Resource {
	return Resource{OwnerID: s.OwnerID}
}

// BookingResource describes a booking together with the salon it references.
func BookingResource(b *domain.Booking, s *domain.Salon) Resource {
	return Resource{OwnerID: s.OwnerID, CustomerID: b.UserID}
}

// ReviewResource describes a review.
func ReviewResource(r *domain.Review) Resource {
	return Resource{AuthorID: r.UserID}
}

// BookingStatusAction returns the capability needed to move a booking to status to.
func BookingStatusAction(to domain.BookingStatus) Action {
	if to == domain.BookingCancelled {
		return ActionCancelBooking
	}
	return ActionSetBookingStatus
}

// Authorize is the single capability check behind every mutating operation.
// It returns nil or a Forbidden *Error.
//
// Booking rules: a caller who is neither the customer nor the salon owner
// holds nothing. The customer may view and cancel. The salon owner may do
// everything; owner rules win when the caller is both.
func Authorize(c Caller, r Resource, a Action) error {
	if c.ID == "" {
		return ErrForbidden
	}
	isOwner := r.OwnerID != "" && c.ID == r.OwnerID
	isCustomer := r.CustomerID != "" && c.ID == r.CustomerID

	switch a {
	case ActionManageSalon:
		if !isOwner {
			return ErrNotSalonOwner
		}
	case ActionViewBooking, ActionCancelBooking:
		if !isOwner && !isCustomer {
			return ErrNotBookingParty
		}
	case ActionSetBookingStatus:
		if !isOwner && !isCustomer {
			return ErrNotBookingParty
		}
		if !isOwner {
			return ErrCustomerMayOnlyCancel
		}
	case ActionEditReview:
		if r.AuthorID == "" || c.ID != r.AuthorID {
			return ErrNotReviewAuthor
		}
	default:
		return ErrForbidden
	}
	return nil
}
