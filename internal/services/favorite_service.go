// Package services – FavoriteService
//
// This file implements the favorite set: one (user, salon) pair per
// favorite, no payload. Adding an existing pair is a Conflict rather than a
// silent no-op; removing a missing pair reports false.
package services

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/tbourn/go-salon-backend/internal/domain"
	"github.com/tbourn/go-salon-backend/internal/repo"
)

// FavoriteService manages a caller's favorite salons.
type FavoriteService struct {
	DB *gorm.DB
}

// NewFavoriteService constructs a FavoriteService.
func NewFavoriteService(db *gorm.DB) *FavoriteService {
	return &FavoriteService{DB: db}
}

// Add favorites salonID for the caller.
//
// Errors: Validation for an empty salon id; ErrSalonNotFound;
// ErrAlreadyFavorite when the pair exists.
func (s *FavoriteService) Add(ctx context.Context, caller Caller, salonID string) (*domain.Favorite, error) {
	tr := otel.Tracer("services/FavoriteService")
	ctx, span := tr.Start(ctx, "Add",
		trace.WithAttributes(
			attribute.String("user.id", caller.ID),
			attribute.String("salon.id", salonID),
		),
	)
	defer span.End()

	if salonID == "" {
		return nil, validationError("salon_id is required")
	}
	if _, err := repo.GetSalon(ctx, s.DB, salonID); err != nil {
		if errors.Is(err, repo.ErrNotFound) {
			return nil, ErrSalonNotFound
		}
		return nil, err
	}
	f, err := repo.AddFavorite(ctx, s.DB, caller.ID, salonID)
	if err != nil {
		if errors.Is(err, repo.ErrDuplicate) {
			return nil, ErrAlreadyFavorite
		}
		return nil, err
	}
	return f, nil
}

// Remove deletes the pair and reports whether it existed. A favorite whose
// salon was deleted can still be removed.
func (s *FavoriteService) Remove(ctx context.Context, caller Caller, salonID string) (bool, error) {
	return repo.RemoveFavorite(ctx, s.DB, caller.ID, salonID)
}

// IsFavorite reports whether the caller favorited salonID.
func (s *FavoriteService) IsFavorite(ctx context.Context, caller Caller, salonID string) (bool, error) {
	return repo.IsFavorite(ctx, s.DB, caller.ID, salonID)
}

// List returns the caller's favorite salons. Favorites pointing at deleted
// salons are omitted.
func (s *FavoriteService) List(ctx context.Context, caller Caller) ([]domain.Salon, error) {
	tr := otel.Tracer("services/FavoriteService")
	ctx, span := tr.Start(ctx, "List",
		trace.WithAttributes(attribute.String("user.id", caller.ID)),
	)
	defer span.End()

	return repo.ListFavoriteSalons(ctx, s.DB, caller.ID)
}
