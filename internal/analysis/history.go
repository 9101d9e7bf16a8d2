package analysis

import (
	"math"
	"sort"
	"time"

	"github.com/tbourn/go-purchase-insights/internal/store"
)

// Occurrence is a single dated purchase of an item.
type Occurrence struct {
	Date  time.Time `json:"date"`
	Price float64   `json:"price"`
}

// ItemHistory is the per-item purchase timeline derived from a user's
// records. It is recomputed on every request, never persisted.
//
// Invariant: Intervals[i] equals the day gap between Occurrences[i+1] and
// Occurrences[i]; len(Intervals) == len(Occurrences)-1 and every gap is >= 0
// because occurrences are sorted ascending by date.
type ItemHistory struct {
	ItemName    string       `json:"item_name"`
	Category    string       `json:"category"`
	Occurrences []Occurrence `json:"occurrences"`
	Intervals   []int        `json:"intervals"`
}

// AverageInterval returns the mean inter-purchase gap in days, or 0 when the
// item was bought fewer than twice (no cadence observable).
func (h *ItemHistory) AverageInterval() float64 {
	if len(h.Intervals) == 0 {
		return 0
	}
	sum := 0
	for _, d := range h.Intervals {
		sum += d
	}
	return float64(sum) / float64(len(h.Intervals))
}

// LastPurchase returns the date of the most recent occurrence; the zero time
// when the history is empty.
func (h *ItemHistory) LastPurchase() time.Time {
	if len(h.Occurrences) == 0 {
		return time.Time{}
	}
	return h.Occurrences[len(h.Occurrences)-1].Date
}

// AveragePrice returns the mean paid price across occurrences, 0 when empty.
func (h *ItemHistory) AveragePrice() float64 {
	if len(h.Occurrences) == 0 {
		return 0
	}
	sum := 0.0
	for _, o := range h.Occurrences {
		sum += o.Price
	}
	return sum / float64(len(h.Occurrences))
}

// BuildHistories groups records by item name, sorts each item's occurrences
// ascending by date, and derives the inter-purchase intervals.
func BuildHistories(records []store.PurchaseRecord) map[string]*ItemHistory {
	out := make(map[string]*ItemHistory)
	for _, r := range records {
		h := out[r.ItemName]
		if h == nil {
			h = &ItemHistory{ItemName: r.ItemName, Category: r.Category}
			out[r.ItemName] = h
		}
		h.Occurrences = append(h.Occurrences, Occurrence{Date: r.Date, Price: r.Price})
	}

	for _, h := range out {
		sort.Slice(h.Occurrences, func(i, j int) bool {
			return h.Occurrences[i].Date.Before(h.Occurrences[j].Date)
		})
		if n := len(h.Occurrences); n > 1 {
			h.Intervals = make([]int, 0, n-1)
			for i := 1; i < n; i++ {
				gap := daysBetween(h.Occurrences[i-1].Date, h.Occurrences[i].Date)
				h.Intervals = append(h.Intervals, gap)
			}
		}
	}
	return out
}

// PriceStability scores how little an item's price varies across purchases:
// 1 minus the coefficient of variation of prices, clamped to [0,1]. Items
// bought fewer than twice score 1.0 (no variance observable).
func PriceStability(h *ItemHistory) float64 {
	n := len(h.Occurrences)
	if n < 2 {
		return 1.0
	}
	mean := h.AveragePrice()
	if mean == 0 {
		return 1.0
	}
	var ss float64
	for _, o := range h.Occurrences {
		d := o.Price - mean
		ss += d * d
	}
	cv := math.Sqrt(ss/float64(n)) / mean
	return clamp01(1 - cv)
}

// daysBetween returns the whole-day gap between two day-precision dates.
func daysBetween(a, b time.Time) int {
	return int(b.Sub(a).Hours() / 24)
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	}
	return v
}
