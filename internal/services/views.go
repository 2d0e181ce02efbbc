package services

import "github.com/tbourn/go-salon-backend/internal/domain"

// UserSummary is the public slice of a user shown next to reviews and
// bookings. Email and Phone are only filled for the salon owner's view of
// a booking.
type UserSummary struct {
	ID    string  `json:"id"`
	Name  string  `json:"name"`
	Email string  `json:"email,omitempty"`
	Phone *string `json:"phone,omitempty"`
}

// SalonSummary identifies the salon of a booking.
type SalonSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Location string `json:"location,omitempty"`
}

// ServiceSummary identifies the service of a booking.
type ServiceSummary struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Duration int    `json:"duration"`
}

// ReviewView is a review together with its author. User is nil when the
// author account no longer exists.
type ReviewView struct {
	domain.Review
	User *UserSummary `json:"user"`
}

// BookingView is a booking with the summaries a client needs to render it.
// Customer is only set for the salon owner.
type BookingView struct {
	domain.Booking
	Salon    *SalonSummary   `json:"salon"`
	Service  *ServiceSummary `json:"service"`
	Customer *UserSummary    `json:"user,omitempty"`
}

func userSummary(u *domain.User, withContact bool) *UserSummary {
	if u == nil {
		return nil
	}
	s := &UserSummary{ID: u.ID, Name: u.Name}
	if withContact {
		s.Email = u.Email
		s.Phone = u.Phone
	}
	return s
}
