// Package analysis turns an ordered sequence of purchase records into
// spending summaries, monthly trends, per-item purchase histories, and
// ranked replenishment recommendations.
//
// Everything in this package is a pure function (or a method on an immutable
// value): no logging, no I/O, no shared mutable state. Given identical
// inputs and reference date, every function returns identical output, which
// keeps the recommendation pipeline reproducible and trivially testable.
package analysis

import (
	"time"

	"github.com/tbourn/go-purchase-insights/internal/store"
)

// Summary aggregates a set of purchase records into headline figures.
type Summary struct {
	TotalSpent        float64            `json:"total_spent"`
	PurchaseCount     int                `json:"purchase_count"`
	AverageOrderValue float64            `json:"average_order_value"`
	UniqueItems       int                `json:"unique_items"`
	CategoryTotals    map[string]float64 `json:"category_totals"`
}

// MonthTrend is one point on the monthly spending trend line.
type MonthTrend struct {
	// Month in "YYYY-MM" form; lexicographic order equals chronological order.
	Month         string  `json:"month"`
	TotalSpent    float64 `json:"total_spent"`
	PurchaseCount int     `json:"purchase_count"`
}

// CategoryShare is a category's slice of the total spend.
type CategoryShare struct {
	TotalSpent float64 `json:"total_spent"`
	Share      float64 `json:"share_of_total"`
}

// Summarize computes the spending summary over records. AverageOrderValue is
// reported as 0 (not an error) when there are no records.
func Summarize(records []store.PurchaseRecord) Summary {
	s := Summary{CategoryTotals: map[string]float64{}}
	items := make(map[string]struct{})
	for _, r := range records {
		s.TotalSpent += r.Price
		s.PurchaseCount++
		s.CategoryTotals[r.Category] += r.Price
		items[r.ItemName] = struct{}{}
	}
	s.UniqueItems = len(items)
	if s.PurchaseCount > 0 {
		s.AverageOrderValue = s.TotalSpent / float64(s.PurchaseCount)
	}
	return s
}

// MonthlyTrends buckets records by calendar month and returns one entry per
// month of the observed range, chronologically ordered. Months without
// activity inside the range are emitted with zero values so the dashboard
// trend line stays continuous.
func MonthlyTrends(records []store.PurchaseRecord) []MonthTrend {
	if len(records) == 0 {
		return []MonthTrend{}
	}

	type bucket struct {
		total float64
		count int
	}
	buckets := make(map[string]*bucket)
	first, last := records[0].Date, records[0].Date
	for _, r := range records {
		key := r.Date.Format("2006-01")
		b := buckets[key]
		if b == nil {
			b = &bucket{}
			buckets[key] = b
		}
		b.total += r.Price
		b.count++
		if r.Date.Before(first) {
			first = r.Date
		}
		if r.Date.After(last) {
			last = r.Date
		}
	}

	var out []MonthTrend
	cur := time.Date(first.Year(), first.Month(), 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(last.Year(), last.Month(), 1, 0, 0, 0, 0, time.UTC)
	for !cur.After(end) {
		key := cur.Format("2006-01")
		mt := MonthTrend{Month: key}
		if b := buckets[key]; b != nil {
			mt.TotalSpent = b.total
			mt.PurchaseCount = b.count
		}
		out = append(out, mt)
		cur = cur.AddDate(0, 1, 0)
	}
	return out
}

// CategoryBreakdown maps each category to its total and share of the overall
// spend. Shares sum to 1 (within floating tolerance) when the total is
// positive; otherwise every share is 0.
func CategoryBreakdown(records []store.PurchaseRecord) map[string]CategoryShare {
	totals := make(map[string]float64)
	var grand float64
	for _, r := range records {
		totals[r.Category] += r.Price
		grand += r.Price
	}

	out := make(map[string]CategoryShare, len(totals))
	for cat, t := range totals {
		share := 0.0
		if grand > 0 {
			share = t / grand
		}
		out[cat] = CategoryShare{TotalSpent: t, Share: share}
	}
	return out
}
