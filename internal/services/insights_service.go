// Package services – InsightsService
//
// InsightsService answers the read-only analytics queries: user and category
// listings, filtered purchase lookups, spending summaries, and monthly
// trends. It validates filter input, delegates the scan to the record store,
// and runs the pure aggregation functions over the result. It holds no state
// of its own, so it is safe for concurrent use.
package services

import (
	"context"
	"time"

	"github.com/tbourn/go-purchase-insights/internal/analysis"
	"github.com/tbourn/go-purchase-insights/internal/store"
)

// RecordSource is the record store contract required by the services.
// *store.Store satisfies it; tests substitute fakes.
type RecordSource interface {
	// Query returns a user's records passing the filter, date-ascending.
	Query(userID string, f store.Filter) []store.PurchaseRecord
	// Users returns all user ids, sorted.
	Users() []string
	// Categories returns all categories, sorted.
	Categories() []string
	// LatestDate is the most recent purchase date in the whole dataset;
	// zero when the dataset is empty.
	LatestDate() time.Time
}

// PurchaseFilter is the validated query input for purchase lookups and
// summaries. Zero values disable the corresponding filter.
type PurchaseFilter struct {
	Month    int
	Category string
	From     time.Time
	To       time.Time
}

// InsightsService exposes spending analytics over the record store.
type InsightsService struct {
	Store RecordSource
}

// NewInsightsService constructs an InsightsService over src.
func NewInsightsService(src RecordSource) *InsightsService {
	return &InsightsService{Store: src}
}

// Users lists every user id present in the dataset.
func (s *InsightsService) Users(ctx context.Context) []string {
	return s.Store.Users()
}

// Categories lists every distinct category present in the dataset.
func (s *InsightsService) Categories(ctx context.Context) []string {
	return s.Store.Categories()
}

// Purchases returns the user's records passing f, ordered ascending by date.
// An unknown user yields an empty slice, not an error.
func (s *InsightsService) Purchases(ctx context.Context, userID string, f PurchaseFilter) ([]store.PurchaseRecord, error) {
	sf, err := f.toStoreFilter()
	if err != nil {
		return nil, err
	}
	return s.Store.Query(userID, sf), nil
}

// SpendingSummary aggregates the user's filtered records into the summary
// shape (total, count, average order value, unique items, category totals).
func (s *InsightsService) SpendingSummary(ctx context.Context, userID string, f PurchaseFilter) (analysis.Summary, error) {
	sf, err := f.toStoreFilter()
	if err != nil {
		return analysis.Summary{}, err
	}
	return analysis.Summarize(s.Store.Query(userID, sf)), nil
}

// MonthlyTrends returns the user's chronological month-by-month spend with
// silent months zero-filled.
func (s *InsightsService) MonthlyTrends(ctx context.Context, userID string) ([]analysis.MonthTrend, error) {
	return analysis.MonthlyTrends(s.Store.Query(userID, store.Filter{})), nil
}

// CategoryBreakdown returns each category's total and share of spend for the
// user's filtered records.
func (s *InsightsService) CategoryBreakdown(ctx context.Context, userID string, f PurchaseFilter) (map[string]analysis.CategoryShare, error) {
	sf, err := f.toStoreFilter()
	if err != nil {
		return nil, err
	}
	return analysis.CategoryBreakdown(s.Store.Query(userID, sf)), nil
}

// toStoreFilter validates the filter and converts it to the store's form.
func (f PurchaseFilter) toStoreFilter() (store.Filter, error) {
	if f.Month != 0 && (f.Month < 1 || f.Month > 12) {
		return store.Filter{}, ErrInvalidMonth
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.From.After(f.To) {
		return store.Filter{}, ErrInvalidDateRange
	}
	return store.Filter{
		Month:    f.Month,
		Category: f.Category,
		From:     f.From,
		To:       f.To,
	}, nil
}
