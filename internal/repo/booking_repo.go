// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Booking model.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-salon-backend/internal/domain"
)

// CreateBooking inserts a booking. An empty Status defaults to pending.
// Dangling user, salon or service references yield ErrForeignKey.
func CreateBooking(ctx context.Context, db *gorm.DB, in domain.Booking) (*domain.Booking, error) {
	now := time.Now().UTC()
	b := in
	b.ID = uuid.NewString()
	if b.Status == "" {
		b.Status = domain.BookingPending
	}
	b.CreatedAt = now
	b.UpdatedAt = now
	if err := db.WithContext(ctx).Create(&b).Error; err != nil {
		return nil, mapWriteErr(err)
	}
	return &b, nil
}

// GetBooking fetches a booking by ID or returns ErrNotFound.
func GetBooking(ctx context.Context, db *gorm.DB, id string) (*domain.Booking, error) {
	return getByID[domain.Booking](ctx, db, id)
}

// GetBookingsByUserID lists a customer's bookings, latest appointment first.
func GetBookingsByUserID(ctx context.Context, db *gorm.DB, userID string) ([]domain.Booking, error) {
	out := []domain.Booking{}
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC, id ASC").
		Find(&out).Error
	return out, err
}

// GetBookingsBySalonID lists the bookings of one salon, latest appointment first.
func GetBookingsBySalonID(ctx context.Context, db *gorm.DB, salonID string) ([]domain.Booking, error) {
	return GetBookingsBySalonIDs(ctx, db, []string{salonID})
}

// GetBookingsBySalonIDs lists the bookings of several salons at once.
func GetBookingsBySalonIDs(ctx context.Context, db *gorm.DB, salonIDs []string) ([]domain.Booking, error) {
	out := []domain.Booking{}
	if len(salonIDs) == 0 {
		return out, nil
	}
	err := db.WithContext(ctx).
		Where("salon_id IN ?", salonIDs).
		Order("date DESC, id ASC").
		Find(&out).Error
	return out, err
}

// CompareAndSetBookingStatus moves a booking from status from to status to
// in a single conditional UPDATE. It reports false when the row was missing
// or no longer in status from, leaving the row untouched.
func CompareAndSetBookingStatus(ctx context.Context, db *gorm.DB, id string, from, to domain.BookingStatus) (bool, error) {
	res := db.WithContext(ctx).
		Model(&domain.Booking{}).
		Where("id = ? AND status = ?", id, from).
		Updates(map[string]any{"status": to})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
