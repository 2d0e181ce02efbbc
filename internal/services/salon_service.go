// Package services – SalonService
//
// This file implements salon listings. Any authenticated user may create a
// salon and becomes its owner; only the owner may edit it. The rating and
// review count of a salon are never taken from client input.
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

// SalonInput carries the client-writable fields of a salon.
type SalonInput struct {
	Name        string
	Description string
	Location    string
	Address     string
	Phone       string
	Email       string
	Images      []string
	Categories  []string
	Featured    bool
	PriceRange  domain.PriceRange
}

// SalonPatch carries salon changes. Nil fields are left untouched.
type SalonPatch struct {
	Name        *string
	Description *string
	Location    *string
	Address     *string
	Phone       *string
	Email       *string
	Images      *[]string
	Categories  *[]string
	Featured    *bool
	PriceRange  *domain.PriceRange
}

// SalonService implements salon listing use-cases.
type SalonService struct {
	DB *gorm.DB
}

// NewSalonService constructs a SalonService.
func NewSalonService(db *gorm.DB) *SalonService {
	return &SalonService{DB: db}
}

// Create stores a salon owned by the caller.
func (s *SalonService) Create(ctx context.Context, caller Caller, in SalonInput) (*domain.Salon, error) {
	tr := otel.Tracer("services/SalonService")
	ctx, span := tr.Start(ctx, "Create",
		trace.WithAttributes(attribute.String("user.id", caller.ID)),
	)
	defer span.End()

	in.Name = strings.TrimSpace(in.Name)
	if in.Name == "" {
		return nil, validationError("name is required")
	}
	if err := validatePriceRange(in.PriceRange); err != nil {
		return nil, err
	}
	sl, err := repo.CreateSalon(ctx, s.DB, domain.Salon{
		OwnerID:     caller.ID,
		Name:        in.Name,
		Description: strings.TrimSpace(in.Description),
		Location:    strings.TrimSpace(in.Location),
		Address:     strings.TrimSpace(in.Address),
		Phone:       strings.TrimSpace(in.Phone),
		Email:       strings.TrimSpace(in.Email),
		Images:      in.Images,
		Categories:  in.Categories,
		Featured:    in.Featured,
		PriceRange:  in.PriceRange,
	})
	if err != nil {
		if errors.Is(err, repo.ErrForeignKey) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return sl, nil
}

// Get fetches a salon.
//
// Errors: ErrSalonNotFound.
func (s *SalonService) Get(ctx context.Context, id string) (*domain.Salon, error) {
	sl, err := repo.GetSalon(ctx, s.DB, id)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrSalonNotFound
		}
		return nil, err
	}
	return sl, nil
}

// List returns salons matching f.
func (s *SalonService) List(ctx context.Context, f repo.SalonFilter) ([]domain.Salon, error) {
	tr := otel.Tracer("services/SalonService")
	ctx, span := tr.Start(ctx, "List",
		trace.WithAttributes(
			attribute.String("filter.category", f.Category),
			attribute.String("filter.location", f.Location),
		),
	)
	defer span.End()

	return repo.ListSalons(ctx, s.DB, f)
}

// ListOwned returns the caller's salons.
func (s *SalonService) ListOwned(ctx context.Context, caller Caller) ([]domain.Salon, error) {
	return repo.GetSalonsByOwnerID(ctx, s.DB, caller.ID)
}

// Update merges patch into a salon owned by the caller.
//
// Errors: Validation; ErrSalonNotFound; ErrNotSalonOwner.
func (s *SalonService) Update(ctx context.Context, caller Caller, id string, patch SalonPatch) (*domain.Salon, error) {
	tr := otel.Tracer("services/SalonService")
	ctx, span := tr.Start(ctx, "Update",
		trace.WithAttributes(
			attribute.String("salon.id", id),
			attribute.String("user.id", caller.ID),
		),
	)
	defer span.End()

	fields := map[string]any{}
	if patch.Name != nil {
		v := strings.TrimSpace(*patch.Name)
		if v == "" {
			return nil, validationError("name must not be empty")
		}
		fields["name"] = v
	}
	setTrimmed(fields, "description", patch.Description)
	setTrimmed(fields, "location", patch.Location)
	setTrimmed(fields, "address", patch.Address)
	setTrimmed(fields, "phone", patch.Phone)
	setTrimmed(fields, "email", patch.Email)
	if patch.Images != nil {
		fields["images"] = domain.StringList(*patch.Images)
	}
	if patch.Categories != nil {
		fields["categories"] = domain.StringList(*patch.Categories)
	}
	if patch.Featured != nil {
		fields["featured"] = *patch.Featured
	}
	if patch.PriceRange != nil {
		if err := validatePriceRange(*patch.PriceRange); err != nil {
			return nil, err
		}
		fields["price_min"] = patch.PriceRange.Min
		fields["price_max"] = patch.PriceRange.Max
	}

	sl, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := Authorize(caller, SalonResource(sl), ActionManageSalon); err != nil {
		return nil, err
	}
	updated, err := repo.UpdateSalon(ctx, s.DB, id, fields)
	if err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrSalonNotFound
		}
		return nil, err
	}
	return updated, nil
}

func validatePriceRange(p domain.PriceRange) error {
	if p.Min < 0 || p.Max < 0 || (p.Max > 0 && p.Min > p.Max) {
		return validationError("price range must satisfy 0 <= min <= max")
	}
	return nil
}

func setTrimmed(fields map[string]any, column string, v *string) {
	if v != nil {
		fields[column] = strings.TrimSpace(*v)
	}
}
