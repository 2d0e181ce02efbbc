// Package services – CatalogService
//
// This file implements the service catalog of a salon (the bookable
// offerings). Only the salon owner may add, change or remove entries.
package services

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-salon-backend/internal/domain"
	"github.com/tbourn/go-salon-backend/internal/repo"
)

// ServiceInput carries the fields of a new catalog entry.
type ServiceInput struct {
	SalonID         string
	Name            string
	Description     string
	Price           int
	Duration        int
	Category        string
	Image           *string
	IsPopular       bool
	DiscountedPrice *int
}

// ServicePatch carries catalog changes. Nil fields are left untouched;
// ClearDiscount removes the discounted price.
type ServicePatch struct {
	Name            *string
	Description     *string
	Price           *int
	Duration        *int
	Category        *string
	Image           *string
	IsPopular       *bool
	DiscountedPrice *int
	ClearDiscount   bool
}

// CatalogService implements catalog use-cases.
type CatalogService struct {
	DB *gorm.DB
}

// NewCatalogService constructs a CatalogService.
func NewCatalogService(db *gorm.DB) *CatalogService {
	return &CatalogService{DB: db}
}

// Create adds a service to a salon owned by the caller.
//
// Errors: Validation; ErrSalonNotFound; ErrNotSalonOwner.
func (s *CatalogService) Create(ctx context.Context, caller Caller, in ServiceInput) (*domain.Service, error) {
	tr := otel.Tracer("services/CatalogService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(
			attribute.String("salon.id", in.SalonID),
			attribute.String("user.id", caller.ID),
		),
	)
	defer span.End()

	in.Name = strings.TrimSpace(in.Name)
	switch {
	case strings.TrimSpace(in.SalonID) == "":
		return nil, validationError("salon_id is required")
	case in.Name == "":
		return nil, validationError("name is required")
	}
	if err := validatePricing(in.Price, in.Duration, in.DiscountedPrice); err != nil {
		return nil, err
	}
	if err := s.authorizeSalon(ctx, caller, in.SalonID); err != nil {
		return nil, err
	}

	svc, err := repo.CreateService(ctx, s.DB, domain.Service{
		SalonID:         in.SalonID,
		Name:            in.Name,
		Description:     strings.TrimSpace(in.Description),
		Price:           in.Price,
		Duration:        in.Duration,
		Category:        strings.TrimSpace(in.Category),
		Image:           in.Image,
		IsPopular:       in.IsPopular,
		DiscountedPrice: in.DiscountedPrice,
	})
	if err != nil {
		if errors.Is(err, repo.ErrForeignKey) {
			return nil, ErrSalonNotFound
		}
		return nil, err
	}
	return svc, nil
}

// Get fetches a service.
//
// Errors: ErrServiceNotFound.
func (s *CatalogService) Get(ctx context.Context, id string) (*domain.Service, error) {
	svc, err := repo.GetService(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	return svc, nil
}

// ListForSalon returns a salon's services.
//
// Errors: ErrSalonNotFound.
func (s *CatalogService) ListForSalon(ctx context.Context, salonID string) ([]domain.Service, error) {
	if _, err := repo.GetSalon(ctx, s.DB, salonID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrSalonNotFound
		}
		return nil, err
	}
	return repo.GetServicesBySalonID(ctx, s.DB, salonID)
}

// Update merges patch into a service of a salon owned by the caller.
// Existing bookings keep the price they were made at.
//
// Errors: Validation; ErrServiceNotFound; ErrNotSalonOwner.
func (s *CatalogService) Update(ctx context.Context, caller Caller, id string, patch ServicePatch) (*domain.Service, error) {
	tr := otel.Tracer("services/CatalogService")
	ctx, span := tr.Start(ctx, "Update",
		trace.WithAttributes(
			attribute.String("service.id", id),
			attribute.String("user.id", caller.ID),
		),
	)
	defer span.End()

	current, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.authorizeSalon(ctx, caller, current.SalonID); err != nil {
		return nil, err
	}

	price, duration, discount := current.Price, current.Duration, current.DiscountedPrice
	fields := map[string]any{}
	if patch.Name != nil {
		v := strings.TrimSpace(*patch.Name)
		if v == "" {
			return nil, validationError("name must not be empty")
		}
		fields["name"] = v
	}
	setTrimmed(fields, "description", patch.Description)
	setTrimmed(fields, "category", patch.Category)
	if patch.Price != nil {
		price = *patch.Price
		fields["price"] = price
	}
	if patch.Duration != nil {
		duration = *patch.Duration
		fields["duration"] = duration
	}
	if patch.Image != nil {
		fields["image"] = *patch.Image
	}
	if patch.IsPopular != nil {
		fields["is_popular"] = *patch.IsPopular
	}
	switch {
	case patch.ClearDiscount:
		discount = nil
		fields["discounted_price"] = nil
	case patch.DiscountedPrice != nil:
		discount = patch.DiscountedPrice
		fields["discounted_price"] = *patch.DiscountedPrice
	}
	if err := validatePricing(price, duration, discount); err != nil {
		return nil, err
	}

	svc, err := repo.UpdateService(ctx, s.DB, id, fields)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrServiceNotFound
		}
		return nil, err
	}
	return svc, nil
}

// Delete removes a service of a salon owned by the caller. It reports
// false, without error, when the service does not exist.
//
// Errors: ErrNotSalonOwner; ErrServiceInUse while bookings reference it.
func (s *CatalogService) Delete(ctx context.Context, caller Caller, id string) (bool, error) {
	tr := otel.Tracer("services/CatalogService")
	ctx, span := tr.Start(ctx, "Delete",
		trace.WithAttributes(
			attribute.String("service.id", id),
			attribute.String("user.id", caller.ID),
		),
	)
	defer span.End()

	current, err := s.Get(ctx, id)
	if errors.Is(err, ErrServiceNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := s.authorizeSalon(ctx, caller, current.SalonID); err != nil {
		return false, err
	}
	ok, err := repo.DeleteService(ctx, s.DB, id)
	if errors.Is(err, repo.ErrForeignKey) {
		return false, ErrServiceInUse
	}
	return ok, err
}

func (s *CatalogService) authorizeSalon(ctx context.Context, caller Caller, salonID string) error {
	sl, err := repo.GetSalon(ctx, s.DB, salonID)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return ErrSalonNotFound
		}
		return err
	}
	return Authorize(caller, SalonResource(sl), ActionManageSalon)
}

func validatePricing(price, duration int, discounted *int) error {
	if price < 0 {
		return validationError("price must not be negative")
	}
	if duration <= 0 {
		return validationError("duration must be a positive number of minutes")
	}
	if discounted != nil && (*discounted < 0 || *discounted > price) {
		return validationError("discounted price must be between 0 and price")
	}
	return nil
}
