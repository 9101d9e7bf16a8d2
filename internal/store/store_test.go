package store

import (
	"strings"
	"testing"
	"time"
)

func testSnapshot(t *testing.T) *Snapshot {
	t.Helper()
	csv := `user_id,item_name,category,purchase_date,price
u1,Milk,groceries,2024-02-10,3.60
u1,Milk,groceries,2024-01-02,3.50
u1,Shampoo,health & beauty,2024-01-10,7.99
u2,Milk,groceries,2024-01-05,3.40
`
	snap, err := LoadCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	return snap
}

func TestSnapshot_QueryOrderedAscending(t *testing.T) {
	snap := testSnapshot(t)
	recs := snap.Query("u1", Filter{})
	if len(recs) != 3 {
		t.Fatalf("len = %d; want 3", len(recs))
	}
	for i := 1; i < len(recs); i++ {
		if recs[i].Date.Before(recs[i-1].Date) {
			t.Fatalf("records not ascending by date: %v before %v", recs[i].Date, recs[i-1].Date)
		}
	}
}

func TestSnapshot_QueryFilters(t *testing.T) {
	snap := testSnapshot(t)

	if got := snap.Query("u1", Filter{Month: 2}); len(got) != 1 {
		t.Errorf("month=2: len = %d; want 1", len(got))
	}
	if got := snap.Query("u1", Filter{Category: "GROCERIES"}); len(got) != 2 {
		t.Errorf("category filter (case-insensitive): len = %d; want 2", len(got))
	}
	from := time.Date(2024, 1, 6, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 1, 31, 0, 0, 0, 0, time.UTC)
	if got := snap.Query("u1", Filter{From: from, To: to}); len(got) != 1 {
		t.Errorf("date range: len = %d; want 1", len(got))
	}
}

func TestSnapshot_UnknownUserIsEmptyNotError(t *testing.T) {
	snap := testSnapshot(t)
	if got := snap.Query("nobody", Filter{}); len(got) != 0 {
		t.Fatalf("len = %d; want 0", len(got))
	}
}

func TestSnapshot_UsersAndCategoriesSorted(t *testing.T) {
	snap := testSnapshot(t)
	users := snap.Users()
	if len(users) != 2 || users[0] != "u1" || users[1] != "u2" {
		t.Fatalf("users = %v; want [u1 u2]", users)
	}
	cats := snap.Categories()
	if len(cats) != 2 || cats[0] != "Groceries" || cats[1] != "Health & Beauty" {
		t.Fatalf("categories = %v; want [Groceries Health & Beauty]", cats)
	}
}

func TestSnapshot_LatestDate(t *testing.T) {
	snap := testSnapshot(t)
	want := time.Date(2024, 2, 10, 0, 0, 0, 0, time.UTC)
	if !snap.LatestDate.Equal(want) {
		t.Fatalf("LatestDate = %v; want %v", snap.LatestDate, want)
	}
}

func TestSnapshot_ItemsDistinct(t *testing.T) {
	snap := testSnapshot(t)
	items := snap.Items()
	if len(items) != 2 {
		t.Fatalf("items = %v; want 2 distinct", items)
	}
	if items[0].Name != "Milk" || items[1].Name != "Shampoo" {
		t.Fatalf("items = %v; want sorted [Milk Shampoo]", items)
	}
}

func TestStore_EmptyBeforeLoad(t *testing.T) {
	s := NewStore()
	if s.Loaded() {
		t.Fatalf("Loaded() = true before any load")
	}
	if got := s.Query("u1", Filter{}); len(got) != 0 {
		t.Fatalf("query on empty store: len = %d; want 0", len(got))
	}
	if got := s.Users(); len(got) != 0 {
		t.Fatalf("users on empty store: %v; want empty", got)
	}
}

func TestStore_SwapReplacesSnapshot(t *testing.T) {
	s := NewStore()
	s.Swap(testSnapshot(t))
	if !s.Loaded() {
		t.Fatalf("Loaded() = false after swap")
	}
	if got := len(s.Query("u1", Filter{})); got != 3 {
		t.Fatalf("len = %d; want 3", got)
	}

	// Reload with a different dataset; derived sets are rebuilt.
	csv := "user_id,item_name,category,purchase_date,price\nu9,Tea,groceries,2024-05-01,2.00\n"
	snap, err := LoadCSV(strings.NewReader(csv))
	if err != nil {
		t.Fatalf("LoadCSV: %v", err)
	}
	s.Swap(snap)
	if users := s.Users(); len(users) != 1 || users[0] != "u9" {
		t.Fatalf("users after reload = %v; want [u9]", users)
	}
}
