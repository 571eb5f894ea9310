package builtin

import "listingsetl/internal/records"

// DropEmptyRows removes rows in which every field is nil or absent.
type DropEmptyRows struct{}

func (DropEmptyRows) Name() string { return "drop_empty_rows" }

func (DropEmptyRows) Apply(t *records.Table) *records.Table {
	out := t.Rows[:0]
	for _, r := range t.Rows {
		empty := true
		for _, c := range t.Columns {
			if v, ok := r[c]; ok && v != nil {
				empty = false
				break
			}
		}
		if !empty {
			out = append(out, r)
		}
	}
	t.Rows = out
	return t
}
