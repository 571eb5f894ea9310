package builtin

import (
	"time"

	"listingsetl/internal/records"
)

// Features derives new columns from the cleaned table. Each feature is
// produced only when it appears in Requested and its source columns are
// present; a request for an absent source is silently skipped.
//
// Now supplies the reference time for recency features so runs are
// reproducible under a pinned clock.
type Features struct {
	Requested []string
	Now       func() time.Time
}

func (Features) Name() string { return "features" }

func (f Features) Apply(t *records.Table) *records.Table {
	now := time.Now
	if f.Now != nil {
		now = f.Now
	}

	for _, name := range f.Requested {
		switch name {
		case "price_per_night":
			f.pricePerNight(t, name)
		case "has_availability", "is_available":
			f.hasAvailability(t, name)
		case "review_recency", "days_since_last_review":
			f.reviewRecency(t, name, now())
		case "is_superhost":
			f.isSuperhost(t, name)
		}
	}
	return t
}

// pricePerNight divides price by minimum_nights. The divisor is floored at
// one night so zero, negative and missing stay counts cannot blow up the
// ratio.
func (Features) pricePerNight(t *records.Table, as string) {
	if !t.HasColumn("price") || !t.HasColumn("minimum_nights") {
		return
	}
	t.AddColumn(as)
	for _, r := range t.Rows {
		price, ok := r["price"].(float64)
		if !ok {
			r[as] = nil
			continue
		}
		nights := 1.0
		if n, ok := r["minimum_nights"].(float64); ok && n > 1 {
			nights = n
		}
		r[as] = price / nights
	}
}

func (Features) hasAvailability(t *records.Table, as string) {
	if !t.HasColumn("availability_365") {
		return
	}
	t.AddColumn(as)
	for _, r := range t.Rows {
		avail, _ := r["availability_365"].(float64)
		r[as] = avail > 0
	}
}

// reviewRecency is the whole-day distance from last_review to now. Rows
// without a review carry the -1 sentinel rather than nil so the column stays
// uniformly integer. Reviews dated in the future clamp to 0.
func (Features) reviewRecency(t *records.Table, as string, now time.Time) {
	if !t.HasColumn("last_review") {
		return
	}
	t.AddColumn(as)
	for _, r := range t.Rows {
		ts, ok := r["last_review"].(time.Time)
		if !ok {
			r[as] = int64(-1)
			continue
		}
		days := int64(now.Sub(ts).Hours() / 24)
		if days < 0 {
			days = 0
		}
		r[as] = days
	}
}

// isSuperhost is a heuristic: many reviews and few listings.
func (Features) isSuperhost(t *records.Table, as string) {
	if !t.HasColumn("number_of_reviews") || !t.HasColumn("calculated_host_listings_count") {
		return
	}
	t.AddColumn(as)
	for _, r := range t.Rows {
		reviews, _ := r["number_of_reviews"].(float64)
		listings, _ := r["calculated_host_listings_count"].(float64)
		r[as] = reviews > 50 && listings <= 3
	}
}
