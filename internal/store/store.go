package store

import (
	"sort"
	"sync"
	"time"
)

// Snapshot is an immutable, fully indexed view of the dataset taken at load
// time. All read paths operate on a Snapshot, so concurrent queries never
// contend with each other or with a reload.
type Snapshot struct {
	records    []PurchaseRecord
	byUser     map[string][]PurchaseRecord
	users      []string
	categories []string

	// Skipped counts malformed rows dropped during load. It is surfaced to
	// the caller so partial failures stay observable.
	Skipped int
	// LatestDate is the most recent purchase date in the dataset; zero when
	// the dataset is empty. Used as the default analysis reference date.
	LatestDate time.Time
}

// newSnapshot sorts, indexes, and caches the derived user/category sets.
func newSnapshot(records []PurchaseRecord, skipped int) *Snapshot {
	sortRecords(records)

	byUser := make(map[string][]PurchaseRecord)
	catSet := make(map[string]struct{})
	var latest time.Time
	for _, r := range records {
		byUser[r.UserID] = append(byUser[r.UserID], r)
		catSet[r.Category] = struct{}{}
		if r.Date.After(latest) {
			latest = r.Date
		}
	}

	users := make([]string, 0, len(byUser))
	for u := range byUser {
		users = append(users, u)
	}
	sort.Strings(users)

	categories := make([]string, 0, len(catSet))
	for c := range catSet {
		categories = append(categories, c)
	}
	sort.Strings(categories)

	return &Snapshot{
		records:    records,
		byUser:     byUser,
		users:      users,
		categories: categories,
		Skipped:    skipped,
		LatestDate: latest,
	}
}

// Len returns the number of loaded records.
func (s *Snapshot) Len() int { return len(s.records) }

// Users returns all user ids, sorted ascending.
func (s *Snapshot) Users() []string { return s.users }

// Categories returns all distinct categories, sorted ascending.
func (s *Snapshot) Categories() []string { return s.categories }

// Query returns the user's records passing f, ordered ascending by date then
// item name. An unknown user yields an empty slice, never an error.
func (s *Snapshot) Query(userID string, f Filter) []PurchaseRecord {
	src := s.byUser[userID]
	out := make([]PurchaseRecord, 0, len(src))
	for _, r := range src {
		if f.matches(r) {
			out = append(out, r)
		}
	}
	return out
}

// Items returns the distinct (item name, category) pairs in the dataset,
// sorted by item name. Used to build the item search index.
func (s *Snapshot) Items() []Item {
	seen := make(map[string]struct{})
	var items []Item
	for _, r := range s.records {
		if _, ok := seen[r.ItemName]; ok {
			continue
		}
		seen[r.ItemName] = struct{}{}
		items = append(items, Item{Name: r.ItemName, Category: r.Category})
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Name < items[j].Name })
	return items
}

// Item is a distinct product observed in the dataset.
type Item struct {
	Name     string `json:"item_name"`
	Category string `json:"category"`
}

// Store owns the current Snapshot and supports explicit reload. It replaces
// the legacy process-wide dataset cache with an explicitly owned instance
// handed to the services that need it.
type Store struct {
	mu   sync.RWMutex
	snap *Snapshot
}

// NewStore returns an empty Store; call Load or Swap before serving queries.
func NewStore() *Store { return &Store{} }

// Load reads the CSV dataset at path and atomically swaps it in.
// It returns the number of skipped rows for load-report logging.
func (s *Store) Load(path string) (skipped int, err error) {
	snap, err := LoadCSVFile(path)
	if err != nil {
		return 0, err
	}
	s.Swap(snap)
	return snap.Skipped, nil
}

// Swap installs a new snapshot. Queries in flight keep the old one.
func (s *Store) Swap(snap *Snapshot) {
	s.mu.Lock()
	s.snap = snap
	s.mu.Unlock()
}

// Snapshot returns the current snapshot, or an empty one when nothing has
// been loaded yet so read paths never have to nil-check.
func (s *Store) Snapshot() *Snapshot {
	s.mu.RLock()
	snap := s.snap
	s.mu.RUnlock()
	if snap == nil {
		return newSnapshot(nil, 0)
	}
	return snap
}

// Loaded reports whether a dataset has been installed.
func (s *Store) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap != nil
}

// Query proxies to the current snapshot.
func (s *Store) Query(userID string, f Filter) []PurchaseRecord {
	return s.Snapshot().Query(userID, f)
}

// Users proxies to the current snapshot.
func (s *Store) Users() []string { return s.Snapshot().Users() }

// Categories proxies to the current snapshot.
func (s *Store) Categories() []string { return s.Snapshot().Categories() }

// LatestDate proxies to the current snapshot.
func (s *Store) LatestDate() time.Time { return s.Snapshot().LatestDate }
