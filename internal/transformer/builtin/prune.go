package builtin

import "listingsetl/internal/records"

// PruneMissing drops every column whose missing-value fraction exceeds
// Threshold. It runs before per-column cleaning so pruned columns are never
// coerced. A value is missing when it is nil or absent from the row.
type PruneMissing struct {
	Threshold float64
}

func (PruneMissing) Name() string { return "prune_missing" }

func (p PruneMissing) Apply(t *records.Table) *records.Table {
	if t.NumRows() == 0 {
		return t
	}

	var drop []string
	for _, c := range t.Columns {
		missing := 0
		for _, r := range t.Rows {
			if v, ok := r[c]; !ok || v == nil {
				missing++
			}
		}
		if frac := float64(missing) / float64(t.NumRows()); frac > p.Threshold {
			drop = append(drop, c)
		}
	}
	for _, c := range drop {
		t.DropColumn(c)
	}
	return t
}
