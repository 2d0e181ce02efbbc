// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Favorite
// set, a (user_id, salon_id) membership table.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-salon-backend/internal/domain"
)

// AddFavorite inserts the (userID, salonID) pair. An existing pair yields
// ErrDuplicate; the store is never silently left unchanged.
func AddFavorite(ctx context.Context, db *gorm.DB, userID, salonID string) (*domain.Favorite, error) {
	f := &domain.Favorite{
		UserID:    userID,
		SalonID:   salonID,
		CreatedAt: time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(f).Error; err != nil {
		return nil, mapWriteErr(err)
	}
	return f, nil
}

// RemoveFavorite deletes the pair and reports whether it existed.
func RemoveFavorite(ctx context.Context, db *gorm.DB, userID, salonID string) (bool, error) {
	res := db.WithContext(ctx).
		Where("user_id = ? AND salon_id = ?", userID, salonID).
		Delete(&domain.Favorite{})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// IsFavorite reports whether the pair exists.
func IsFavorite(ctx context.Context, db *gorm.DB, userID, salonID string) (bool, error) {
	var n int64
	err := db.WithContext(ctx).
		Model(&domain.Favorite{}).
		Where("user_id = ? AND salon_id = ?", userID, salonID).
		Count(&n).Error
	return n > 0, err
}

// ListFavoriteSalons returns the salons a user has favorited, most recently
// favorited first. Favorites whose salon no longer exists drop out of the
// inner join.
func ListFavoriteSalons(ctx context.Context, db *gorm.DB, userID string) ([]domain.Salon, error) {
	out := []domain.Salon{}
	err := db.WithContext(ctx).
		Model(&domain.Salon{}).
		Select("salons.*").
		Joins("JOIN favorites ON favorites.salon_id = salons.id").
		Where("favorites.user_id = ?", userID).
		Order("favorites.created_at DESC, salons.id ASC").
		Find(&out).Error
	return out, err
}
