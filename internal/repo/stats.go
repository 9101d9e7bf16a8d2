// Package repo — aggregate queries used for conditional HTTP responses.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/tbourn/go-purchase-insights/internal/domain"
)

// BucketStats returns aggregate metadata for a user's bucket list: the row
// count and the greatest UpdatedAt among those rows. The HTTP layer derives
// a weak ETag from the pair so unchanged lists can be answered with 304.
//
// When the user has no entries, count is 0 and maxUpdatedAt is nil.
func BucketStats(ctx context.Context, db *gorm.DB, userID string) (count int64, maxUpdatedAt *time.Time, err error) {
	q := db.WithContext(ctx).Model(&domain.BucketItem{}).Where("user_id = ?", userID)

	if err = q.Count(&count).Error; err != nil {
		return 0, nil, err
	}
	if count == 0 {
		return 0, nil, nil
	}

	// Avoid MAX() collapsing to TEXT in SQLite.
	var row struct {
		UpdatedAt time.Time
	}
	if err = q.Select("updated_at").Order("updated_at DESC").Limit(1).Scan(&row).Error; err != nil {
		return 0, nil, err
	}
	return count, &row.UpdatedAt, nil
}
