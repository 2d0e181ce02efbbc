package repo

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

// ErrNotFound is returned when a requested record does not exist.
// It aliases gorm.ErrRecordNotFound for convenience and consistency
// across the service layer and handlers.
var ErrNotFound = gorm.ErrRecordNotFound

// ErrDuplicate indicates a unique constraint rejected the write
// (username, email, favorite pair or idempotency key).
var ErrDuplicate = errors.New("duplicate")

// ErrForeignKey indicates a write or delete was rejected because of a
// foreign key reference (missing parent or restricted child rows).
var ErrForeignKey = errors.New("foreign key violation")

// mapWriteErr normalizes constraint errors across drivers. glebarez/sqlite
// often returns plain-text errors, so the message is inspected as well.
func mapWriteErr(err error) error {
	if err == nil {
		return nil
	}
	if isDuplicate(err) {
		return ErrDuplicate
	}
	if isForeignKey(err) {
		return ErrForeignKey
	}
	return err
}

func isDuplicate(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "unique constraint failed") ||
		strings.Contains(low, "constraint failed: unique") ||
		strings.Contains(low, "duplicate key")
}

func isForeignKey(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	low := strings.ToLower(err.Error())
	return strings.Contains(low, "foreign key constraint failed") ||
		strings.Contains(low, "violates foreign key constraint")
}
