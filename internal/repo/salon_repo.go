// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Salon model.
package repo

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tbourn/go-salon-backend/internal/domain"
)

// SalonFilter narrows ListSalons. Zero values mean "no constraint".
//   - Category: exact category name, case-insensitive.
//   - Location: substring of the location, case-insensitive.
//   - Featured: when non-nil, only salons with that flag.
type SalonFilter struct {
	Category string
	Location string
	Featured *bool
}

// CreateSalon inserts a salon. Rating and ReviewCount always start at zero;
// they are owned by the rating aggregator.
func CreateSalon(ctx context.Context, db *gorm.DB, in domain.Salon) (*domain.Salon, error) {
	now := time.Now().UTC()
	s := in
	s.ID = uuid.NewString()
	s.Rating = 0
	s.ReviewCount = 0
	if s.Images == nil {
		s.Images = domain.StringList{}
	}
	if s.Categories == nil {
		s.Categories = domain.StringList{}
	}
	s.CreatedAt = now
	s.UpdatedAt = now
	if err := db.WithContext(ctx).Create(&s).Error; err != nil {
		return nil, mapWriteErr(err)
	}
	return &s, nil
}

// GetSalon fetches a salon by ID or returns ErrNotFound.
func GetSalon(ctx context.Context, db *gorm.DB, id string) (*domain.Salon, error) {
	return getByID[domain.Salon](ctx, db, id)
}

// GetSalonsByIDs returns the salons with the given IDs. Unknown IDs are skipped.
func GetSalonsByIDs(ctx context.Context, db *gorm.DB, ids []string) ([]domain.Salon, error) {
	out := []domain.Salon{}
	if len(ids) == 0 {
		return out, nil
	}
	err := db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error
	return out, err
}

// ListSalons returns salons matching f in creation order.
func ListSalons(ctx context.Context, db *gorm.DB, f SalonFilter) ([]domain.Salon, error) {
	out := []domain.Salon{}
	q := db.WithContext(ctx).Model(&domain.Salon{})
	if c := strings.TrimSpace(f.Category); c != "" {
		// categories is stored as a JSON array of strings.
		q = q.Where(`LOWER(categories) LIKE ? ESCAPE '\'`, `%"`+escapeLike(strings.ToLower(c))+`"%`)
	}
	if l := strings.TrimSpace(f.Location); l != "" {
		q = q.Where(`LOWER(location) LIKE ? ESCAPE '\'`, "%"+escapeLike(strings.ToLower(l))+"%")
	}
	if f.Featured != nil {
		q = q.Where("featured = ?", *f.Featured)
	}
	err := q.Order("created_at ASC, id ASC").Find(&out).Error
	return out, err
}

// GetSalonsByOwnerID returns every salon owned by ownerID (empty when none).
func GetSalonsByOwnerID(ctx context.Context, db *gorm.DB, ownerID string) ([]domain.Salon, error) {
	out := []domain.Salon{}
	err := db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at ASC, id ASC").
		Find(&out).Error
	return out, err
}

// UpdateSalon merges fields into the salon row. The derived rating and
// review_count columns are never taken from fields; see SetSalonRating.
func UpdateSalon(ctx context.Context, db *gorm.DB, id string, fields map[string]any) (*domain.Salon, error) {
	delete(fields, "rating")
	delete(fields, "review_count")
	return updateByID[domain.Salon](ctx, db, id, fields)
}

// SetSalonRating persists the aggregate rating and review count of a salon.
// It returns ErrNotFound when the salon does not exist.
func SetSalonRating(ctx context.Context, db *gorm.DB, salonID string, rating float64, count int64) error {
	res := db.WithContext(ctx).
		Model(&domain.Salon{}).
		Where("id = ?", salonID).
		Updates(map[string]any{"rating": rating, "review_count": count})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// LockSalon reads a salon row inside tx and, on dialects that support it,
// holds a row lock (SELECT ... FOR UPDATE) until tx ends. SQLite serializes
// writers on its own and has no row locks.
func LockSalon(ctx context.Context, tx *gorm.DB, salonID string) (*domain.Salon, error) {
	q := tx.WithContext(ctx)
	if tx.Dialector.Name() != "sqlite" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	var s domain.Salon
	if err := q.Where("id = ?", salonID).First(&s).Error; err != nil {
		return nil, err
	}
	return &s, nil
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
