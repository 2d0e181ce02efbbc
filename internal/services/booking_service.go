// Package services – BookingService
//
// This file implements the booking lifecycle. Bookings start pending and
// move along the state machine in domain.CanTransition. Who may request a
// change is decided by Authorize: the salon owner may set any status, the
// customer may only cancel.
//
// A status change is a single conditional UPDATE on the expected current
// status, so two concurrent requests cannot both apply a transition from
// the same state.
package services

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-salon-backend/internal/domain"
	"github.com/tbourn/go-salon-backend/internal/repo"
)

// maxStatusAttempts bounds re-evaluation when a concurrent writer changed
// the booking between the read and the conditional update.
const maxStatusAttempts = 3

// BookingCreateScope is the idempotency scope of booking creation.
const BookingCreateScope = "POST /bookings"

const defaultIdempotencyTTL = 24 * time.Hour

// CreateBookingInput is what a customer supplies to book a service.
type CreateBookingInput struct {
	SalonID   string
	ServiceID string
	Date      time.Time
}

// BookingService implements creation, reads and status changes of bookings.
type BookingService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
	// IdempotencyTTL is how long a CreateOnce key is honoured (default 24h).
	IdempotencyTTL time.Duration
}

// NewBookingService constructs a BookingService.
func NewBookingService(db *gorm.DB) *BookingService {
	return &BookingService{DB: db}
}

// Create books in.ServiceID at in.SalonID for the caller. The total price
// is the service's effective price at this moment and never follows later
// price changes. The appointment date is taken as supplied; overlapping
// bookings are not detected.
//
// Errors: Validation for missing ids or date; ErrSalonNotFound;
// ErrServiceNotFound when the service is missing or belongs to another salon.
func (s *BookingService) Create(ctx context.Context, caller Caller, in CreateBookingInput) (*domain.Booking, error) {
	tr := otel.Tracer("services/BookingService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(
			attribute.String("user.id", caller.ID),
			attribute.String("salon.id", in.SalonID),
			attribute.String("service.id", in.ServiceID),
		),
	)
	defer span.End()

	if err := validateBookingInput(&in); err != nil {
		return nil, err
	}

	var out *domain.Booking
	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		b, err := s.insert(ctx, tx, caller, in)
		out = b
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CreateOnce is Create guarded by a client idempotency key. The booking and
// the key record commit together; a retry with the same key inside the TTL
// returns the booking created first with replayed set. An empty key behaves
// like Create.
func (s *BookingService) CreateOnce(ctx context.Context, caller Caller, in CreateBookingInput, key string) (b *domain.Booking, replayed bool, err error) {
	key = strings.TrimSpace(key)
	if key == "" {
		b, err = s.Create(ctx, caller, in)
		return b, false, err
	}
	if b, err = s.replay(ctx, caller, key); b != nil || err != nil {
		return b, b != nil, err
	}

	tr := otel.Tracer("services/BookingService")
	ctx, span := tr.Start(ctx, "CreateOnce",
		trace.WithAttributes(
			attribute.String("user.id", caller.ID),
			attribute.String("salon.id", in.SalonID),
		),
	)
	defer span.End()

	if err := validateBookingInput(&in); err != nil {
		return nil, false, err
	}
	err = s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		created, err := s.insert(ctx, tx, caller, in)
		if err != nil {
			return err
		}
		if _, err := repo.CreateIdempotency(ctx, tx, caller.ID, BookingCreateScope, key, created.ID, http.StatusCreated, s.ttl()); err != nil {
			return err
		}
		b = created
		return nil
	})
	if errors.Is(err, repo.ErrDuplicate) {
		// A concurrent request with the same key won.
		b, err = s.replay(ctx, caller, key)
		if b == nil && err == nil {
			err = ErrConflict
		}
		return b, b != nil, err
	}
	if err != nil {
		return nil, false, err
	}
	return b, false, nil
}

func (s *BookingService) replay(ctx context.Context, caller Caller, key string) (*domain.Booking, error) {
	rec, err := repo.GetIdempotency(ctx, s.DB, caller.ID, BookingCreateScope, key, time.Now().UTC())
	if errors.Is(err, repo.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	b, err := repo.GetBooking(ctx, s.DB, rec.ResourceID)
	if errors.Is(err, repo.ErrNotFound) {
		return nil, ErrBookingNotFound
	}
	return b, err
}

func (s *BookingService) ttl() time.Duration {
	if s.IdempotencyTTL > 0 {
		return s.IdempotencyTTL
	}
	return defaultIdempotencyTTL
}

func validateBookingInput(in *CreateBookingInput) error {
	in.SalonID = strings.TrimSpace(in.SalonID)
	in.ServiceID = strings.TrimSpace(in.ServiceID)
	switch {
	case in.SalonID == "":
		return validationError("salon_id is required")
	case in.ServiceID == "":
		return validationError("service_id is required")
	case in.Date.IsZero():
		return validationError("date is required")
	}
	return nil
}

// insert runs inside tx and assumes validated input.
func (s *BookingService) insert(ctx context.Context, tx *gorm.DB, caller Caller, in CreateBookingInput) (*domain.Booking, error) {
	if _, err := repo.GetSalon(ctx, tx, in.SalonID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrSalonNotFound
		}
		return nil, err
	}
	svc, err := repo.GetService(ctx, tx, in.ServiceID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	if svc.SalonID != in.SalonID {
		return nil, ErrServiceNotFound
	}
	b, err := repo.CreateBooking(ctx, tx, domain.Booking{
		UserID:     caller.ID,
		SalonID:    in.SalonID,
		ServiceID:  svc.ID,
		Date:       in.Date.UTC(),
		Status:     domain.BookingPending,
		TotalPrice: svc.EffectivePrice(),
	})
	if err != nil {
		if errors.Is(err, repo.ErrForeignKey) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return b, nil
}

// Get returns a booking visible to the caller (its customer or the owner
// of its salon).
//
// Errors: ErrBookingNotFound; ErrNotBookingParty.
func (s *BookingService) Get(ctx context.Context, caller Caller, id string) (*BookingView, error) {
	tr := otel.Tracer("services/BookingService")
	ctx, span := tr.Start(ctx, "Get",
		trace.WithAttributes(
			attribute.String("booking.id", id),
			attribute.String("user.id", caller.ID),
		),
	)
	defer span.End()

	b, salon, err := s.loadWithSalon(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(caller, BookingResource(b, salon), ActionViewBooking); err != nil {
		return nil, err
	}
	views, err := s.decorate(ctx, []domain.Booking{*b}, caller.ID == salon.OwnerID)
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// UpdateStatus moves a booking to the requested status.
//
// Checks run in this order, and the first failure is returned:
//  1. status is one of the four known values (Validation),
//  2. the booking exists (ErrBookingNotFound),
//  3. the caller may request this status (Forbidden),
//  4. the state machine allows the move from the current status (InvalidTransition).
//
// If another request changed the booking in between, the check in step 4
// is repeated against the fresh status.
func (s *BookingService) UpdateStatus(ctx context.Context, caller Caller, id, status string) (*domain.Booking, error) {
	tr := otel.Tracer("services/BookingService")
	ctx, span := tr.Start(ctx, "UpdateStatus",
		trace.WithAttributes(
			attribute.String("booking.id", id),
			attribute.String("user.id", caller.ID),
			attribute.String("booking.status.to", status),
		),
	)
	defer span.End()

	to, err := domain.ParseBookingStatus(status)
	if err != nil {
		return nil, validationError("invalid status %q", strings.TrimSpace(status))
	}
	b, salon, err := s.loadWithSalon(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(caller, BookingResource(b, salon), BookingStatusAction(to)); err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxStatusAttempts; attempt++ {
		from := b.Status
		if !domain.CanTransition(from, to) {
			return nil, invalidTransition(from, to)
		}
		ok, err := repo.CompareAndSetBookingStatus(ctx, s.DB, b.ID, from, to)
		if err != nil {
			return nil, err
		}
		if ok {
			bookingTransitions.WithLabelValues(string(from), string(to)).Inc()
			span.SetAttributes(attribute.String("booking.status.from", string(from)))
			fresh, err := repo.GetBooking(ctx, s.DB, b.ID)
			if err != nil {
				return nil, err
			}
			return fresh, nil
		}
		if b, err = repo.GetBooking(ctx, s.DB, id); err != nil {
			if errors.Is(err, repo.ErrNotFound) {
				return nil, ErrBookingNotFound
			}
			return nil, err
		}
	}
	return nil, invalidTransition(b.Status, to)
}

// ListForCustomer returns the caller's own bookings with salon and service
// summaries, latest appointment first.
func (s *BookingService) ListForCustomer(ctx context.Context, caller Caller) ([]BookingView, error) {
	tr := otel.Tracer("services/BookingService")
	ctx, span := tr.Start(ctx, "ListForCustomer",
		trace.WithAttributes(attribute.String("user.id", caller.ID)),
	)
	defer span.End()

	bookings, err := repo.GetBookingsByUserID(ctx, s.DB, caller.ID)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, bookings, false)
}

// ListForOwner returns the bookings of every salon the caller owns, with
// customer contact details. It is empty for callers owning no salon.
func (s *BookingService) ListForOwner(ctx context.Context, caller Caller) ([]BookingView, error) {
	tr := otel.Tracer("services/BookingService")
	ctx, span := tr.Start(ctx, "ListForOwner",
		trace.WithAttributes(attribute.String("user.id", caller.ID)),
	)
	defer span.End()

	salons, err := repo.GetSalonsByOwnerID(ctx, s.DB, caller.ID)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(salons))
	for _, sl := range salons {
		ids = append(ids, sl.ID)
	}
	bookings, err := repo.GetBookingsBySalonIDs(ctx, s.DB, ids)
	if err != nil {
		return nil, err
	}
	return s.decorate(ctx, bookings, true)
}

func (s *BookingService) loadWithSalon(ctx context.Context, id string) (*domain.Booking, *domain.Salon, error) {
	b, err := repo.GetBooking(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil, ErrBookingNotFound
		}
		return nil, nil, err
	}
	salon, err := repo.GetSalon(ctx, s.DB, b.SalonID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, nil, ErrSalonNotFound
		}
		return nil, nil, err
	}
	return b, salon, nil
}

// decorate attaches salon, service and (for owners) customer summaries,
// batching the lookups per entity type.
func (s *BookingService) decorate(ctx context.Context, bookings []domain.Booking, forOwner bool) ([]BookingView, error) {
	out := make([]BookingView, 0, len(bookings))
	if len(bookings) == 0 {
		return out, nil
	}

	var salonIDs, serviceIDs, userIDs []string
	for _, b := range bookings {
		salonIDs = append(salonIDs, b.SalonID)
		serviceIDs = append(serviceIDs, b.ServiceID)
		userIDs = append(userIDs, b.UserID)
	}
	salons, err := repo.GetSalonsByIDs(ctx, s.DB, uniq(salonIDs))
	if err != nil {
		return nil, err
	}
	services, err := repo.GetServicesByIDs(ctx, s.DB, uniq(serviceIDs))
	if err != nil {
		return nil, err
	}
	salonByID := make(map[string]*SalonSummary, len(salons))
	for _, sl := range salons {
		sum := &SalonSummary{ID: sl.ID, Name: sl.Name}
		if !forOwner {
			sum.Location = sl.Location
		}
		salonByID[sl.ID] = sum
	}
	serviceByID := make(map[string]*ServiceSummary, len(services))
	for _, sv := range services {
		serviceByID[sv.ID] = &ServiceSummary{ID: sv.ID, Name: sv.Name, Duration: sv.Duration}
	}

	userByID := map[string]*UserSummary{}
	if forOwner {
		users, err := repo.GetUsersByIDs(ctx, s.DB, uniq(userIDs))
		if err != nil {
			return nil, err
		}
		for i := range users {
			userByID[users[i].ID] = userSummary(&users[i], true)
		}
	}

	for _, b := range bookings {
		v := BookingView{
			Booking: b,
			Salon:   salonByID[b.SalonID],
			Service: serviceByID[b.ServiceID],
		}
		if forOwner {
			v.Customer = userByID[b.UserID]
		}
		out = append(out, v)
	}
	return out, nil
}
