package store

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// Visible is a GORM scope hiding soft-deleted rows unless includeDeleted is set.
func Visible(includeDeleted bool) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		if includeDeleted {
			return db
		}
		return db.Where("is_deleted = ?", false)
	}
}

// updateVersioned applies fields to the row (id, version) and bumps the
// version. When nothing matched it tells a vanished row (ErrNotFound) from a
// concurrently modified one (ErrConflict).
func updateVersioned(ctx context.Context, db *gorm.DB, model any, id, version uint, fields map[string]any) error {
	fields["version"] = gorm.Expr("version + 1")
	res := db.WithContext(ctx).Model(model).
		Where("id = ? AND version = ?", id, version).
		Updates(fields)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected > 0 {
		return nil
	}

	var count int64
	if err := db.WithContext(ctx).Model(model).Where("id = ?", id).Count(&count).Error; err != nil {
		return fmt.Errorf("checking existence: %w", err)
	}
	if count == 0 {
		return ErrNotFound
	}
	return ErrConflict
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
