// Package store implements the purchase record store: it loads the flat
// CSV dataset into an immutable in-memory snapshot and serves filtered,
// date-ordered lookups by user, month, category, and date range.
//
// Design notes:
//   - Records are immutable after load; every query runs against a
//     point-in-time *Snapshot, so reads need no locking.
//   - The Store itself only guards the snapshot pointer (reloadable).
//   - No logging in this package; callers decide how/what to log.
package store

import "time"

// PurchaseRecord is a single row of the purchase dataset. It is the sole
// source of truth for all derived analytics and is never mutated after
// ingestion.
type PurchaseRecord struct {
	// UserID is the opaque customer identifier.
	UserID string `json:"user_id"`
	// ItemName is the purchased product name.
	ItemName string `json:"item_name"`
	// Category is the canonicalized product category.
	Category string `json:"category"`
	// Date is the purchase date at day precision (UTC midnight).
	Date time.Time `json:"purchase_date"`
	// Price is the non-negative amount paid.
	Price float64 `json:"price"`
	// Quantity is the number of units bought (1 when the dataset has
	// no quantity column).
	Quantity int `json:"quantity"`
}

// Filter narrows a user's purchase records. Zero values mean "no filter".
type Filter struct {
	// Month restricts records to a calendar month (1-12) across all years.
	// 0 disables the filter. Range validation happens at the service layer.
	Month int
	// Category restricts records to one category (case-insensitive).
	Category string
	// From / To bound the purchase date (inclusive). Zero time disables.
	From time.Time
	To   time.Time
}

// matches reports whether r passes every set field of f.
func (f Filter) matches(r PurchaseRecord) bool {
	if f.Month != 0 && int(r.Date.Month()) != f.Month {
		return false
	}
	if f.Category != "" && !equalFoldCategory(r.Category, f.Category) {
		return false
	}
	if !f.From.IsZero() && r.Date.Before(f.From) {
		return false
	}
	if !f.To.IsZero() && r.Date.After(f.To) {
		return false
	}
	return true
}
