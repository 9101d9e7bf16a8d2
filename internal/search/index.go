// Package search provides a simple, deterministic, concurrency-safe
// in-memory index over the distinct items of the purchase dataset. The
// dashboard's filter box queries it to autocomplete item names.
//
// Engineering notes:
//   - No logging in the library (callers decide how/what to log)
//   - Unicode-aware tokenization with optional stop-word removal
//   - Immutable, read-only index after construction (safe for concurrent use)
//   - Deterministic scoring and sorting (stable order for ties)
//
// Scoring uses Jaccard similarity between the query token set and each
// item's token set (name plus category): score = |Q ∩ T| / |Q ∪ T|.
package search

import (
	"regexp"
	"sort"
	"strings"

	"github.com/tbourn/go-purchase-insights/internal/store"
)

// Result is one ranked item with its similarity score.
type Result struct {
	ItemName string  `json:"item_name"`
	Category string  `json:"category"`
	Score    float64 `json:"score"`
}

// Index is the minimal interface implemented by all item indices.
type Index interface {
	TopK(query string, k int) []Result
}

// Option customizes index construction.
type Option func(*config)

type config struct {
	stopwords map[string]struct{}
	maxItems  int
}

// WithStopwords removes the given words from item and query token sets.
func WithStopwords(words []string) Option {
	return func(c *config) {
		m := make(map[string]struct{}, len(words))
		for _, w := range words {
			w = strings.ToLower(strings.TrimSpace(w))
			if w != "" {
				m[w] = struct{}{}
			}
		}
		if len(m) > 0 {
			c.stopwords = m
		}
	}
}

// WithMaxItems caps how many items the index holds (0 = unlimited).
func WithMaxItems(n int) Option {
	return func(c *config) {
		if n > 0 {
			c.maxItems = n
		}
	}
}

type entry struct {
	item   store.Item
	tokens map[string]struct{}
	tLen   int
}

type index struct {
	cfg     config
	entries []entry
}

// NewIndex builds a read-only index from the dataset's distinct items.
// Items whose name yields no tokens are dropped.
func NewIndex(items []store.Item, opts ...Option) Index {
	var cfg config
	for _, o := range opts {
		o(&cfg)
	}

	entries := make([]entry, 0, len(items))
	for _, it := range items {
		toks := tokenize(it.Name+" "+it.Category, cfg.stopwords)
		if len(toks) == 0 {
			continue
		}
		entries = append(entries, entry{item: it, tokens: toks, tLen: len(toks)})
		if cfg.maxItems > 0 && len(entries) >= cfg.maxItems {
			break
		}
	}
	return &index{cfg: cfg, entries: entries}
}

// TopK returns up to k best-matching items by Jaccard similarity. Ties are
// broken by higher score, then shorter name, then name ascending, so results
// are stable across runs.
func (i *index) TopK(q string, k int) []Result {
	if len(i.entries) == 0 || strings.TrimSpace(q) == "" {
		return nil
	}
	if k <= 0 {
		k = 5
	}
	qTokens := tokenize(q, i.cfg.stopwords)
	if len(qTokens) == 0 {
		return nil
	}
	qLen := len(qTokens)

	buf := make([]Result, 0, min(k*4, len(i.entries)))
	for _, e := range i.entries {
		over := overlap(qTokens, e.tokens)
		if over == 0 {
			continue
		}
		union := float64(qLen + e.tLen - over)
		if union <= 0 {
			continue
		}
		buf = append(buf, Result{
			ItemName: e.item.Name,
			Category: e.item.Category,
			Score:    float64(over) / union,
		})
	}
	if len(buf) == 0 {
		return nil
	}

	sort.SliceStable(buf, func(a, b int) bool {
		if buf[a].Score != buf[b].Score {
			return buf[a].Score > buf[b].Score
		}
		if len(buf[a].ItemName) != len(buf[b].ItemName) {
			return len(buf[a].ItemName) < len(buf[b].ItemName)
		}
		return buf[a].ItemName < buf[b].ItemName
	})

	if k > len(buf) {
		k = len(buf)
	}
	return buf[:k]
}

var wordRE = regexp.MustCompile(`\p{L}+\p{N}*`)

func tokenize(s string, stop map[string]struct{}) map[string]struct{} {
	words := wordRE.FindAllString(strings.ToLower(s), -1)
	if len(words) == 0 {
		return nil
	}
	out := make(map[string]struct{}, len(words))
	for _, w := range words {
		if stop != nil {
			if _, skip := stop[w]; skip {
				continue
			}
		}
		out[w] = struct{}{}
	}
	return out
}

func overlap(a, b map[string]struct{}) int {
	if len(a) == 0 || len(b) == 0 {
		return 0
	}
	if len(a) > len(b) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
