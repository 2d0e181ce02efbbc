// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Review model.
//
// These functions never touch the salon aggregate. Callers that mutate
// reviews must recompute it in the same transaction (see services.ReviewService).
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-salon-backend/internal/domain"
)

// CreateReview inserts a review. Date defaults to the creation time.
func CreateReview(ctx context.Context, db *gorm.DB, in domain.Review) (*domain.Review, error) {
	now := time.Now().UTC()
	r := in
	r.ID = uuid.NewString()
	if r.Date.IsZero() {
		r.Date = now
	}
	r.UpdatedAt = now
	if err := db.WithContext(ctx).Create(&r).Error; err != nil {
		return nil, mapWriteErr(err)
	}
	return &r, nil
}

// GetReview fetches a review by ID or returns ErrNotFound.
func GetReview(ctx context.Context, db *gorm.DB, id string) (*domain.Review, error) {
	return getByID[domain.Review](ctx, db, id)
}

// GetReviewsBySalonID lists a salon's reviews, newest first.
func GetReviewsBySalonID(ctx context.Context, db *gorm.DB, salonID string) ([]domain.Review, error) {
	out := []domain.Review{}
	err := db.WithContext(ctx).
		Where("salon_id = ?", salonID).
		Order("date DESC, id ASC").
		Find(&out).Error
	return out, err
}

// GetReviewsByUserID lists the reviews written by a user, newest first.
func GetReviewsByUserID(ctx context.Context, db *gorm.DB, userID string) ([]domain.Review, error) {
	out := []domain.Review{}
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("date DESC, id ASC").
		Find(&out).Error
	return out, err
}

// UpdateReview merges fields into the review row. The author and subject
// of a review are fixed.
func UpdateReview(ctx context.Context, db *gorm.DB, id string, fields map[string]any) (*domain.Review, error) {
	delete(fields, "user_id")
	delete(fields, "salon_id")
	return updateByID[domain.Review](ctx, db, id, fields)
}

// DeleteReview removes a review and reports whether it existed.
func DeleteReview(ctx context.Context, db *gorm.DB, id string) (bool, error) {
	return deleteByID[domain.Review](ctx, db, id)
}
