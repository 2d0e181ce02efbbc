// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides aggregate queries over reviews used by
// the rating aggregator.
package repo

import (
	"context"

	"gorm.io/gorm"

	"github.com/tbourn/go-salon-backend/internal/domain"
)

// SalonReviewStats returns the number of reviews of a salon and the sum of
// their ratings, read in a single aggregate statement so both values come
// from the same snapshot. A salon without reviews yields (0, 0).
//
// Return values:
//   - count: number of reviews for salonID
//   - sum:   sum of their ratings
//   - err:   database error, if any
func SalonReviewStats(ctx context.Context, db *gorm.DB, salonID string) (count, sum int64, err error) {
	var row struct {
		Count int64
		Total int64
	}
	err = db.WithContext(ctx).
		Model(&domain.Review{}).
		Select("COUNT(*) AS count, COALESCE(SUM(rating), 0) AS total").
		Where("salon_id = ?", salonID).
		Scan(&row).Error
	if err != nil {
		return 0, 0, err
	}
	return row.Count, row.Total, nil
}
