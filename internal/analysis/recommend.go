package analysis

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/tbourn/go-purchase-insights/internal/store"
)

// Weights configures the composite recommendation score. The three weights
// are a policy knob, not a behavioral contract; they are loaded from
// configuration so the heuristic stays auditable and tunable.
type Weights struct {
	// Overdue weighs how close (or past) the predicted next purchase is.
	Overdue float64
	// PriceStability weighs the price stability signal.
	PriceStability float64
	// Frequency weighs confidence from the number of repeat purchases.
	Frequency float64
}

// DefaultWeights returns the documented default scoring weights.
func DefaultWeights() Weights {
	return Weights{Overdue: 0.5, PriceStability: 0.3, Frequency: 0.2}
}

// Thresholds gates which item histories are replenishment candidates.
type Thresholds struct {
	// MinPurchases is the minimum occurrence count; below it no cadence can
	// be estimated.
	MinPurchases int
	// MinIntervalDays / MaxIntervalDays bound the acceptable mean
	// inter-purchase interval. Items outside the window are not consumables
	// bought on a cadence worth nudging about.
	MinIntervalDays float64
	MaxIntervalDays float64
	// RecencyFactor marks an item abandoned when the days since its last
	// purchase exceed RecencyFactor x the mean interval.
	RecencyFactor float64
}

// DefaultThresholds returns the documented default candidacy gates.
func DefaultThresholds() Thresholds {
	return Thresholds{
		MinPurchases:    2,
		MinIntervalDays: 15,
		MaxIntervalDays: 45,
		RecencyFactor:   3,
	}
}

// Recommendation is one ranked "buy again" suggestion. Computed fresh per
// request; persisted only if the user saves it to their bucket list.
type Recommendation struct {
	ItemName              string    `json:"item_name"`
	Category              string    `json:"category"`
	PurchaseCount         int       `json:"purchase_count"`
	AverageIntervalDays   float64   `json:"average_interval_days"`
	AveragePrice          float64   `json:"average_price"`
	DaysSinceLastPurchase int       `json:"days_since_last_purchase"`
	PredictedNextPurchase time.Time `json:"predicted_next_purchase_date"`
	Score                 float64   `json:"score"`
	Reason                string    `json:"reason"`
}

// Recommender applies the replenishment heuristic to a user's records.
// The zero value is not usable; construct with NewRecommender.
type Recommender struct {
	Weights    Weights
	Thresholds Thresholds
}

// NewRecommender builds a Recommender, substituting documented defaults for
// zero-valued weights or thresholds.
func NewRecommender(w Weights, t Thresholds) Recommender {
	if w == (Weights{}) {
		w = DefaultWeights()
	}
	if t == (Thresholds{}) {
		t = DefaultThresholds()
	}
	return Recommender{Weights: w, Thresholds: t}
}

// Recommend classifies every item in records and returns the ranked
// candidates, capped at topN (<=0 means no cap).
//
// The result is deterministic for identical records and reference date:
// ranking is descending by score with ties broken by item name ascending.
func (rec Recommender) Recommend(records []store.PurchaseRecord, ref time.Time, topN int) []Recommendation {
	histories := BuildHistories(records)

	out := make([]Recommendation, 0, len(histories))
	for _, h := range histories {
		if r, ok := rec.classify(h, ref); ok {
			out = append(out, r)
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].ItemName < out[j].ItemName
	})

	if topN > 0 && len(out) > topN {
		out = out[:topN]
	}
	return out
}

// classify runs one item history through the Ineligible -> Candidate ->
// scored pipeline. ok is false when the item fails any hard gate.
func (rec Recommender) classify(h *ItemHistory, ref time.Time) (Recommendation, bool) {
	t := rec.Thresholds

	n := len(h.Occurrences)
	if n < t.MinPurchases {
		return Recommendation{}, false
	}

	avgInterval := h.AverageInterval()
	if avgInterval < t.MinIntervalDays || avgInterval > t.MaxIntervalDays {
		return Recommendation{}, false
	}

	last := h.LastPurchase()
	daysSince := daysBetween(last, ref)
	if float64(daysSince) > t.RecencyFactor*avgInterval {
		// Clearly abandoned; cadence no longer predictive.
		return Recommendation{}, false
	}

	predicted := last.AddDate(0, 0, int(math.Round(avgInterval)))
	daysUntil := daysBetween(ref, predicted)

	stability := PriceStability(h)
	score := rec.score(daysUntil, stability, n)

	return Recommendation{
		ItemName:              h.ItemName,
		Category:              h.Category,
		PurchaseCount:         n,
		AverageIntervalDays:   avgInterval,
		AveragePrice:          h.AveragePrice(),
		DaysSinceLastPurchase: daysSince,
		PredictedNextPurchase: predicted,
		Score:                 score,
		Reason:                buildReason(n, avgInterval, daysSince, daysUntil, stability),
	}, true
}

// score combines the three signals into the composite ranking score.
//
// Overdue-ness is 1.0 once the predicted date has passed (priority boost)
// and decays as 1/(1+daysUntil) while the purchase is still ahead.
// Frequency confidence saturates at six purchases.
func (rec Recommender) score(daysUntil int, stability float64, purchases int) float64 {
	overdue := 1.0
	if daysUntil > 0 {
		overdue = 1 / (1 + float64(daysUntil))
	}
	freq := math.Min(1, float64(purchases-1)/5)

	w := rec.Weights
	return w.Overdue*overdue + w.PriceStability*stability + w.Frequency*freq
}

// buildReason assembles the human-readable explanation from the signals that
// actually passed, mirroring what the dashboard shows next to a suggestion.
func buildReason(purchases int, avgInterval float64, daysSince, daysUntil int, stability float64) string {
	parts := []string{
		fmt.Sprintf("bought %d times about every %.0f days", purchases, avgInterval),
		fmt.Sprintf("last purchase %d days ago", daysSince),
	}
	switch {
	case daysUntil <= 0:
		parts = append(parts, "due now")
	default:
		parts = append(parts, fmt.Sprintf("due in %d days", daysUntil))
	}
	if stability >= 0.8 {
		parts = append(parts, "price has been steady")
	}
	return strings.Join(parts, "; ")
}
