// Package domain defines the persistence models for the purchase insights
// service. The purchase dataset itself is immutable and lives in the
// in-memory record store; the only state that survives across requests is
// the per-user bucket list overlay, mapped here with GORM.
package domain

import (
	"time"
)

// Bucket list entry sources. SourceRecommended marks entries saved from the
// recommendation engine; SourceUser marks manually added items.
const (
	SourceRecommended = "recommended"
	SourceUser        = "user"
)

// ValidSource reports whether s is an accepted bucket entry source.
func ValidSource(s string) bool {
	return s == SourceRecommended || s == SourceUser
}

// BucketItem is one entry on a user's persisted bucket list. An item name
// appears at most once per user (enforced by unique index); re-adding an
// existing item is a no-op at the service layer.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - UserID / ItemName: composite identity of the entry.
//   - Category: category copied from the dataset or recommendation.
//   - Source: "recommended" or "user" (enforced by DB constraint).
//   - Checked: whether the user ticked the entry off.
//   - AddedAt: when the entry was added (UTC).
//   - CreatedAt / UpdatedAt: timestamps managed by GORM.
//
// Removal is a hard delete: a removed item must be re-addable without
// tripping the unique index.
type BucketItem struct {
	ID        string    `json:"id"         gorm:"type:char(36);primaryKey"`
	UserID    string    `json:"user_id"    gorm:"type:varchar(64);not null;index;uniqueIndex:ux_bucket_user_item"`
	ItemName  string    `json:"item_name"  gorm:"type:varchar(255);not null;uniqueIndex:ux_bucket_user_item"`
	Category  string    `json:"category"   gorm:"type:varchar(128)"`
	Source    string    `json:"source"     gorm:"type:varchar(16);not null;default:'user';check:source IN ('recommended','user')"`
	Checked   bool      `json:"checked"    gorm:"not null;default:false"`
	AddedAt   time.Time `json:"added_at"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name for BucketItem.
func (BucketItem) TableName() string { return "bucket_items" }
