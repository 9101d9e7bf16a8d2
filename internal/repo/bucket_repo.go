// Package repo implements the persistence layer for the bucket list overlay,
// backed by GORM. This file provides the repository functions for the
// BucketItem model.
//
// All functions are context-aware and accept a *gorm.DB handle, making them
// usable inside transactions. They follow the thin-repository approach: no
// business rules, only persistence and query composition. Idempotency of
// add/toggle lives in services.BucketService.
//
// Error semantics:
//   - A missing entry is reported as gorm.ErrRecordNotFound (exported here
//     as ErrNotFound); callers translate it to their own taxonomy.
//   - Other DB errors propagate unchanged.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tbourn/go-purchase-insights/internal/domain"
)

// ErrNotFound is returned when a requested bucket entry does not exist.
// It aliases gorm.ErrRecordNotFound for consistency across layers.
var ErrNotFound = gorm.ErrRecordNotFound

// ListBucketItems returns all bucket entries for userID ordered by the time
// they were added (oldest first). An unknown user yields an empty slice.
func ListBucketItems(ctx context.Context, db *gorm.DB, userID string) ([]domain.BucketItem, error) {
	var out []domain.BucketItem
	err := db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("added_at asc, item_name asc").
		Find(&out).Error
	return out, err
}

// GetBucketItem fetches one entry by its (user, item) identity, or
// ErrNotFound when absent.
func GetBucketItem(ctx context.Context, db *gorm.DB, userID, itemName string) (*domain.BucketItem, error) {
	var it domain.BucketItem
	err := db.WithContext(ctx).
		Where("user_id = ? AND item_name = ?", userID, itemName).
		First(&it).Error
	if err != nil {
		return nil, err
	}
	return &it, nil
}

// CreateBucketItem inserts a new entry with a generated UUID and UTC AddedAt.
// The (user_id, item_name) unique index rejects duplicates at the DB level.
func CreateBucketItem(ctx context.Context, db *gorm.DB, userID, itemName, category, source string) (*domain.BucketItem, error) {
	it := &domain.BucketItem{
		ID:       uuid.NewString(),
		UserID:   userID,
		ItemName: itemName,
		Category: category,
		Source:   source,
		AddedAt:  time.Now().UTC(),
	}
	if err := db.WithContext(ctx).Create(it).Error; err != nil {
		return nil, err
	}
	return it, nil
}

// DeleteBucketItem removes an entry. It returns ErrNotFound when nothing was
// deleted so repeated removals surface cleanly to the caller.
func DeleteBucketItem(ctx context.Context, db *gorm.DB, userID, itemName string) error {
	res := db.WithContext(ctx).
		Where("user_id = ? AND item_name = ?", userID, itemName).
		Delete(&domain.BucketItem{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// ToggleBucketItemChecked flips the Checked flag of an entry inside a
// transaction and returns the updated row, or ErrNotFound when absent.
func ToggleBucketItemChecked(ctx context.Context, db *gorm.DB, userID, itemName string) (*domain.BucketItem, error) {
	var out *domain.BucketItem
	err := db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var it domain.BucketItem
		if err := tx.Where("user_id = ? AND item_name = ?", userID, itemName).First(&it).Error; err != nil {
			return err
		}
		it.Checked = !it.Checked
		if err := tx.Model(&it).Update("checked", it.Checked).Error; err != nil {
			return err
		}
		out = &it
		return nil
	})
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return out, nil
}
