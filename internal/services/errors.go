// Package services defines the business logic over the record store, the
// analysis engine, and the bucket list persistence. This file centralizes
// service-level error values so they can be consistently returned by service
// methods and mapped to HTTP responses at the handler layer.
package services

import "errors"

// Validation errors (invalid request input; never affect other requests).
var (
	// ErrInvalidMonth is returned when a month filter is outside 1..12.
	ErrInvalidMonth = errors.New("month must be between 1 and 12")

	// ErrInvalidDateRange is returned when a from/to filter is reversed.
	ErrInvalidDateRange = errors.New("from date must not be after to date")

	// ErrInvalidTopN is returned when a requested top_n is negative.
	ErrInvalidTopN = errors.New("top_n must not be negative")

	// ErrEmptyItemName is returned when a bucket mutation carries no item.
	ErrEmptyItemName = errors.New("item name is empty")

	// ErrInvalidSource is returned when a bucket entry source is outside
	// the accepted set (recommended, user).
	ErrInvalidSource = errors.New("source must be 'recommended' or 'user'")
)

// Not-found errors (mutations on absent state; reads return empty instead).
var (
	// ErrBucketItemNotFound indicates a remove/toggle on an entry that does
	// not exist on the user's bucket list.
	ErrBucketItemNotFound = errors.New("bucket list item not found")
)
