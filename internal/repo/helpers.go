package repo

import (
	"context"

	"gorm.io/gorm"
)

// getByID loads a single row by primary key or returns ErrNotFound.
func getByID[T any](ctx context.Context, db *gorm.DB, id string) (*T, error) {
	var out T
	if err := db.WithContext(ctx).Where("id = ?", id).First(&out).Error; err != nil {
		return nil, err
	}
	return &out, nil
}

// updateByID merges fields into the row identified by id and returns the
// fresh row. Absent keys keep their stored values. An empty map is a no-op
// that still reports ErrNotFound for a missing id.
func updateByID[T any](ctx context.Context, db *gorm.DB, id string, fields map[string]any) (*T, error) {
	if len(fields) > 0 {
		var model T
		res := db.WithContext(ctx).Model(&model).Where("id = ?", id).Updates(fields)
		if res.Error != nil {
			return nil, mapWriteErr(res.Error)
		}
		if res.RowsAffected == 0 {
			return nil, ErrNotFound
		}
	}
	return getByID[T](ctx, db, id)
}

// deleteByID removes the row identified by id and reports whether a row
// existed. Restricted references surface as ErrForeignKey.
func deleteByID[T any](ctx context.Context, db *gorm.DB, id string) (bool, error) {
	var model T
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&model)
	if res.Error != nil {
		return false, mapWriteErr(res.Error)
	}
	return res.RowsAffected > 0, nil
}
