// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Service
// model (the bookable offerings of a salon).
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-salon-backend/internal/domain"
)

// CreateService inserts a service. A SalonID that does not reference an
// existing salon yields ErrForeignKey.
func CreateService(ctx context.Context, db *gorm.DB, in domain.Service) (*domain.Service, error) {
	now := time.Now().UTC()
	s := in
	s.ID = uuid.NewString()
	s.CreatedAt = now
	s.UpdatedAt = now
	if err := db.WithContext(ctx).Create(&s).Error; err != nil {
		return nil, mapWriteErr(err)
	}
	return &s, nil
}

// GetService fetches a service by ID or returns ErrNotFound.
func GetService(ctx context.Context, db *gorm.DB, id string) (*domain.Service, error) {
	return getByID[domain.Service](ctx, db, id)
}

// GetServicesByIDs returns the services with the given IDs. Unknown IDs are skipped.
func GetServicesByIDs(ctx context.Context, db *gorm.DB, ids []string) ([]domain.Service, error) {
	out := []domain.Service{}
	if len(ids) == 0 {
		return out, nil
	}
	err := db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error
	return out, err
}

// GetServicesBySalonID lists the services of a salon, popular ones first.
func GetServicesBySalonID(ctx context.Context, db *gorm.DB, salonID string) ([]domain.Service, error) {
	out := []domain.Service{}
	err := db.WithContext(ctx).
		Where("salon_id = ?", salonID).
		Order("is_popular DESC, created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// UpdateService merges fields into the service row. A nil value clears a
// nullable column (e.g. discounted_price).
func UpdateService(ctx context.Context, db *gorm.DB, id string, fields map[string]any) (*domain.Service, error) {
	delete(fields, "salon_id")
	return updateByID[domain.Service](ctx, db, id, fields)
}

// DeleteService removes a service and reports whether it existed. A service
// still referenced by bookings cannot be removed and yields ErrForeignKey.
func DeleteService(ctx context.Context, db *gorm.DB, id string) (bool, error) {
	return deleteByID[domain.Service](ctx, db, id)
}
