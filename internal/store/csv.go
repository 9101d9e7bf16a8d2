package store

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// ErrDataFormat is returned when the dataset cannot be served at all:
// the file is unreadable, the header is missing, or a required column is
// absent. Per-row problems never trigger it; those rows are skipped and
// counted in Snapshot.Skipped instead.
var ErrDataFormat = errors.New("invalid dataset format")

// Column aliases accepted in the CSV header. Keys are header names after
// normalization (lowercase, spaces/underscores stripped), so both the
// canonical snake_case names and the legacy export's column names
// ("CustomerID", "Item Name", "OrderDate", "TotalPrice") resolve.
var headerAliases = map[string]string{
	"userid":       "user_id",
	"customerid":   "user_id",
	"customer":     "user_id",
	"itemname":     "item_name",
	"item":         "item_name",
	"product":      "item_name",
	"productname":  "item_name",
	"category":     "category",
	"purchasedate": "purchase_date",
	"orderdate":    "purchase_date",
	"date":         "purchase_date",
	"price":        "price",
	"totalprice":   "price",
	"baseprice":    "price",
	"amount":       "price",
	"quantity":     "quantity",
	"qty":          "quantity",
}

// requiredColumns must all be present (directly or via alias) in the header.
var requiredColumns = []string{"user_id", "item_name", "category", "purchase_date", "price"}

// dateLayouts are the calendar formats accepted for purchase_date, tried in
// order. All of them are unambiguous in the datasets we ingest.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006/01/02",
	"01/02/2006",
}

// categoryCaser canonicalizes category names so "health & beauty" and
// "HEALTH & BEAUTY" collapse to one bucket.
var categoryCaser = cases.Title(language.English)

// LoadCSVFile reads and parses the dataset at path. The file handle is
// released before returning regardless of outcome.
func LoadCSVFile(path string) (*Snapshot, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataFormat, err)
	}
	defer f.Close()
	return LoadCSV(f)
}

// LoadCSV parses a purchase dataset from r into an immutable Snapshot.
//
// Failure semantics follow the partial-failure contract:
//   - missing header or required columns -> ErrDataFormat (fatal)
//   - rows with an unparsable date/price, a negative price, or blank
//     identity fields are skipped and counted, never fatal.
func LoadCSV(r io.Reader) (*Snapshot, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // ragged rows handled per-row below
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("%w: missing header: %v", ErrDataFormat, err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		if name, ok := headerAliases[normalizeHeader(h)]; ok {
			if _, dup := cols[name]; !dup {
				cols[name] = i
			}
		}
	}
	for _, name := range requiredColumns {
		if _, ok := cols[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrDataFormat, name)
		}
	}

	var (
		records []PurchaseRecord
		skipped int
	)
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Structurally broken row (e.g. bare quote); skip it.
			skipped++
			continue
		}
		rec, ok := parseRow(row, cols)
		if !ok {
			skipped++
			continue
		}
		records = append(records, rec)
	}

	return newSnapshot(records, skipped), nil
}

// parseRow converts one CSV row into a PurchaseRecord. ok is false when any
// required field is blank or unparsable.
func parseRow(row []string, cols map[string]int) (PurchaseRecord, bool) {
	field := func(name string) string {
		i := cols[name]
		if i >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[i])
	}

	userID := field("user_id")
	itemName := field("item_name")
	category := field("category")
	if userID == "" || itemName == "" || category == "" {
		return PurchaseRecord{}, false
	}

	date, ok := parseDate(field("purchase_date"))
	if !ok {
		return PurchaseRecord{}, false
	}
	price, ok := parsePrice(field("price"))
	if !ok {
		return PurchaseRecord{}, false
	}

	qty := 1
	if _, has := cols["quantity"]; has {
		if n, err := strconv.Atoi(field("quantity")); err == nil && n > 0 {
			qty = n
		}
	}

	return PurchaseRecord{
		UserID:   userID,
		ItemName: itemName,
		Category: categoryCaser.String(strings.ToLower(category)),
		Date:     date,
		Price:    price,
		Quantity: qty,
	}, true
}

// parseDate tries the accepted layouts and truncates to day precision UTC.
func parseDate(s string) (time.Time, bool) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), true
		}
	}
	return time.Time{}, false
}

// parsePrice parses a non-negative amount, tolerating currency symbols and
// thousands separators that the legacy export leaks into the price column.
func parsePrice(s string) (float64, bool) {
	var b strings.Builder
	for _, r := range s {
		switch {
		case r >= '0' && r <= '9', r == '.', r == '-':
			b.WriteRune(r)
		}
	}
	p, err := strconv.ParseFloat(b.String(), 64)
	if err != nil || p < 0 {
		return 0, false
	}
	return p, true
}

// normalizeHeader lowercases a header cell and strips spaces, underscores,
// and dashes so alias lookup is layout-insensitive.
func normalizeHeader(h string) string {
	h = strings.ToLower(strings.TrimSpace(h))
	h = strings.Map(func(r rune) rune {
		switch r {
		case ' ', '_', '-':
			return -1
		}
		return r
	}, h)
	return h
}

// equalFoldCategory compares categories ignoring case so filters written by
// hand match the canonicalized stored form.
func equalFoldCategory(a, b string) bool {
	return strings.EqualFold(a, b)
}

// sortRecords orders records ascending by date, then item name, so every
// consumer sees a deterministic sequence.
func sortRecords(records []PurchaseRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		if !records[i].Date.Equal(records[j].Date) {
			return records[i].Date.Before(records[j].Date)
		}
		return records[i].ItemName < records[j].ItemName
	})
}
