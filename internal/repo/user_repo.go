// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the User model.
//
// Usernames and emails are unique case-insensitively. The folded copies
// (username_key, email_key) carry the unique indexes, so two concurrent
// registrations of "Alice" and "alice" cannot both succeed.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-salon-backend/internal/domain"
)

// CreateUser inserts a new user. A username or email already taken (in any
// letter case) yields ErrDuplicate.
func CreateUser(ctx context.Context, db *gorm.DB, in domain.User) (*domain.User, error) {
	now := time.Now().UTC()
	u := in
	u.ID = uuid.NewString()
	u.UsernameKey = domain.FoldKey(u.Username)
	u.EmailKey = domain.FoldKey(u.Email)
	u.CreatedAt = now
	u.UpdatedAt = now
	if err := db.WithContext(ctx).Create(&u).Error; err != nil {
		return nil, mapWriteErr(err)
	}
	return &u, nil
}

// GetUser fetches a user by ID or returns ErrNotFound.
func GetUser(ctx context.Context, db *gorm.DB, id string) (*domain.User, error) {
	return getByID[domain.User](ctx, db, id)
}

// GetUserByUsername looks a user up ignoring letter case.
func GetUserByUsername(ctx context.Context, db *gorm.DB, username string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).
		Where("username_key = ?", domain.FoldKey(username)).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUserByEmail looks a user up ignoring letter case.
func GetUserByEmail(ctx context.Context, db *gorm.DB, email string) (*domain.User, error) {
	var u domain.User
	err := db.WithContext(ctx).
		Where("email_key = ?", domain.FoldKey(email)).
		First(&u).Error
	if err != nil {
		return nil, err
	}
	return &u, nil
}

// GetUsersByIDs returns the users with the given IDs in no particular order.
// Unknown IDs are skipped.
func GetUsersByIDs(ctx context.Context, db *gorm.DB, ids []string) ([]domain.User, error) {
	out := []domain.User{}
	if len(ids) == 0 {
		return out, nil
	}
	err := db.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error
	return out, err
}

// CountUsers returns the number of registered users.
func CountUsers(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := db.WithContext(ctx).Model(&domain.User{}).Count(&total).Error
	return total, err
}

// UpdateUser merges fields (column name → value) into the user row. Changing
// username or email refreshes the folded key, so uniqueness is re-checked by
// the store and a clash yields ErrDuplicate.
func UpdateUser(ctx context.Context, db *gorm.DB, id string, fields map[string]any) (*domain.User, error) {
	if v, ok := fields["username"].(string); ok {
		fields["username_key"] = domain.FoldKey(v)
	}
	if v, ok := fields["email"].(string); ok {
		fields["email_key"] = domain.FoldKey(v)
	}
	return updateByID[domain.User](ctx, db, id, fields)
}
