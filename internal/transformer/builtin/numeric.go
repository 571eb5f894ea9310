package builtin

import (
	"sort"

	"listingsetl/internal/records"
)

// CleanNumeric coerces the configured columns to float64. Values that fail
// coercion become nil, never an error.
//
// The price column additionally gets a validity filter: rows whose price is
// missing or outside [PriceMin, PriceMax] are removed (not capped). When
// IQRClip is set, every numeric column is then clamped to
// [Q1 - 1.5*IQR, Q3 + 1.5*IQR].
//
// Range filter and IQR clip are two independent policies that intentionally
// layer on the same column: the filter runs first, the clip second.
type CleanNumeric struct {
	Columns  []string
	PriceCol string
	PriceMin float64
	PriceMax float64
	IQRClip  bool
}

func (CleanNumeric) Name() string { return "clean_numeric" }

func (c CleanNumeric) Apply(t *records.Table) *records.Table {
	for _, col := range c.Columns {
		if !t.HasColumn(col) {
			continue
		}

		for _, r := range t.Rows {
			if f, ok := toFloat(r[col]); ok {
				r[col] = f
			} else {
				r[col] = nil
			}
		}

		if col == c.PriceCol {
			kept := t.Rows[:0]
			for _, r := range t.Rows {
				f, ok := r[col].(float64)
				if !ok || f < c.PriceMin || f > c.PriceMax {
					continue
				}
				kept = append(kept, r)
			}
			t.Rows = kept
		}

		if c.IQRClip {
			clipIQR(t, col)
		}
	}
	return t
}

// clipIQR clamps the column's non-nil values to the 1.5*IQR fence.
func clipIQR(t *records.Table, col string) {
	vals := make([]float64, 0, len(t.Rows))
	for _, r := range t.Rows {
		if f, ok := r[col].(float64); ok {
			vals = append(vals, f)
		}
	}
	if len(vals) == 0 {
		return
	}
	sort.Float64s(vals)

	q1 := quantile(vals, 0.25)
	q3 := quantile(vals, 0.75)
	iqr := q3 - q1
	lo, hi := q1-1.5*iqr, q3+1.5*iqr

	for _, r := range t.Rows {
		f, ok := r[col].(float64)
		if !ok {
			continue
		}
		if f < lo {
			r[col] = lo
		} else if f > hi {
			r[col] = hi
		}
	}
}

// quantile returns the q-quantile of sorted values using linear
// interpolation between the two closest ranks.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 1 {
		return sorted[0]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(pos)
	if lo >= len(sorted)-1 {
		return sorted[len(sorted)-1]
	}
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[lo+1]*frac
}
