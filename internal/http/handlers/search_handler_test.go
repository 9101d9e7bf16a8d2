package handlers

import (
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/tbourn/go-purchase-insights/internal/search"
	"github.com/tbourn/go-purchase-insights/internal/store"
)

func newSearchTestRouter() *gin.Engine {
	idx := search.NewIndex([]store.Item{
		{Name: "Oat Milk", Category: "Groceries"},
		{Name: "Almond Milk", Category: "Groceries"},
		{Name: "Shampoo", Category: "Health & Beauty"},
	})
	return newTestRouter(New(&fakeInsights{}, &fakeReco{}, &fakeBucket{}, idx))
}

func TestSearchItems_OK(t *testing.T) {
	r := newSearchTestRouter()

	w := doGET(t, r, "/api/v1/items/search?q=milk&k=2")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var resp SearchResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if resp.Query != "milk" {
		t.Fatalf("query=%q", resp.Query)
	}
	if resp.Count == 0 || resp.Count > 2 {
		t.Fatalf("count=%d, want 1..2", resp.Count)
	}
	for _, res := range resp.Results {
		if res.ItemName != "Oat Milk" && res.ItemName != "Almond Milk" {
			t.Fatalf("unexpected hit: %+v", res)
		}
	}
}

func TestSearchItems_MissingQuery(t *testing.T) {
	r := newSearchTestRouter()

	for _, path := range []string{"/api/v1/items/search", "/api/v1/items/search?q=%20"} {
		w := doGET(t, r, path)
		if w.Code != http.StatusBadRequest {
			t.Fatalf("GET %s -> %d, want 400", path, w.Code)
		}
	}
}

func TestSearchItems_BadK(t *testing.T) {
	r := newSearchTestRouter()

	w := doGET(t, r, "/api/v1/items/search?q=milk&k=abc")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status=%d, want 400", w.Code)
	}
}

func TestSearchItems_KClamped(t *testing.T) {
	r := newSearchTestRouter()

	// k far above the cap still succeeds; results bounded by index size.
	w := doGET(t, r, "/api/v1/items/search?q=milk&k=9999")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}

	// k below 1 is clamped up rather than rejected.
	w2 := doGET(t, r, "/api/v1/items/search?q=milk&k=0")
	if w2.Code != http.StatusOK {
		t.Fatalf("status=%d", w2.Code)
	}
	var resp SearchResponse
	if err := json.Unmarshal(w2.Body.Bytes(), &resp); err != nil {
		t.Fatalf("json: %v", err)
	}
	if resp.Count < 1 {
		t.Fatalf("expected at least one hit with clamped k, got %d", resp.Count)
	}
}

func TestSearchItems_NoMatchesEmptyList(t *testing.T) {
	r := newSearchTestRouter()

	w := doGET(t, r, "/api/v1/items/search?q=zzzql")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &raw); err != nil {
		t.Fatalf("json: %v", err)
	}
	if string(raw["results"]) != "[]" {
		t.Fatalf("results should be [], got %s", raw["results"])
	}
}
