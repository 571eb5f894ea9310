package builtin

import (
	"testing"
	"time"

	"listingsetl/internal/records"
)

func fixedNow() time.Time {
	return time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
}

func TestFeaturesPricePerNight(t *testing.T) {
	t.Parallel()

	tbl := records.New([]string{"price", "minimum_nights"})
	tbl.Rows = []records.Record{
		{"price": 300.0, "minimum_nights": 3.0},
		{"price": 100.0, "minimum_nights": 0.0},
		{"price": 100.0, "minimum_nights": nil},
		{"price": nil, "minimum_nights": 2.0},
	}

	out := Features{Requested: []string{"price_per_night"}, Now: fixedNow}.Apply(tbl)

	if !out.HasColumn("price_per_night") {
		t.Fatalf("feature column not added")
	}
	if got := out.Rows[0]["price_per_night"]; got != 100.0 {
		t.Fatalf("300/3 = %v, want 100", got)
	}
	// Divisor floors at 1 for zero and missing stay counts.
	if got := out.Rows[1]["price_per_night"]; got != 100.0 {
		t.Fatalf("zero nights = %v, want 100", got)
	}
	if got := out.Rows[2]["price_per_night"]; got != 100.0 {
		t.Fatalf("nil nights = %v, want 100", got)
	}
	if out.Rows[3]["price_per_night"] != nil {
		t.Fatalf("missing price must yield nil feature")
	}
}

func TestFeaturesReviewRecency(t *testing.T) {
	t.Parallel()

	tbl := records.New([]string{"last_review"})
	tbl.Rows = []records.Record{
		{"last_review": time.Date(2024, 2, 20, 0, 0, 0, 0, time.UTC)},
		{"last_review": nil},
		{"last_review": time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	out := Features{Requested: []string{"days_since_last_review"}, Now: fixedNow}.Apply(tbl)

	if got := out.Rows[0]["days_since_last_review"]; got != int64(10) {
		t.Fatalf("recency = %v, want 10", got)
	}
	if got := out.Rows[1]["days_since_last_review"]; got != int64(-1) {
		t.Fatalf("no review = %v, want -1 sentinel", got)
	}
	if got := out.Rows[2]["days_since_last_review"]; got != int64(0) {
		t.Fatalf("future review = %v, want clamp to 0", got)
	}
}

func TestFeaturesAvailabilityAndSuperhost(t *testing.T) {
	t.Parallel()

	tbl := records.New([]string{"availability_365", "number_of_reviews", "calculated_host_listings_count"})
	tbl.Rows = []records.Record{
		{"availability_365": 120.0, "number_of_reviews": 80.0, "calculated_host_listings_count": 2.0},
		{"availability_365": 0.0, "number_of_reviews": 80.0, "calculated_host_listings_count": 5.0},
		{"availability_365": nil, "number_of_reviews": 10.0, "calculated_host_listings_count": 1.0},
	}

	out := Features{
		Requested: []string{"is_available", "is_superhost"},
		Now:       fixedNow,
	}.Apply(tbl)

	if got := out.Rows[0]["is_available"]; got != true {
		t.Fatalf("row 0 availability = %v, want true", got)
	}
	if got := out.Rows[1]["is_available"]; got != false {
		t.Fatalf("row 1 availability = %v, want false", got)
	}
	if got := out.Rows[2]["is_available"]; got != false {
		t.Fatalf("nil availability = %v, want false", got)
	}

	if got := out.Rows[0]["is_superhost"]; got != true {
		t.Fatalf("row 0 superhost = %v, want true", got)
	}
	if got := out.Rows[1]["is_superhost"]; got != false {
		t.Fatalf("many listings = %v, want false", got)
	}
	if got := out.Rows[2]["is_superhost"]; got != false {
		t.Fatalf("few reviews = %v, want false", got)
	}
}

func TestFeaturesSkipsWhenSourceMissing(t *testing.T) {
	t.Parallel()

	tbl := records.New([]string{"name"})
	tbl.Rows = []records.Record{{"name": "x"}}

	out := Features{
		Requested: []string{"price_per_night", "is_available", "days_since_last_review", "is_superhost"},
		Now:       fixedNow,
	}.Apply(tbl)

	if out.NumCols() != 1 {
		t.Fatalf("columns = %v, want only name", out.Columns)
	}
}
