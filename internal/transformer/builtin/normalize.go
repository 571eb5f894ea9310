// Package builtin contains the reusable transformation stages composed by
// the transformer chain.
package builtin

import (
	"fmt"
	"strings"

	"listingsetl/internal/records"
)

// NormalizeColumns canonicalizes every column name: surrounding whitespace
// trimmed, lowercased, internal spaces and hyphens replaced with
// underscores.
//
// When two distinct source columns normalize to the same name, the second
// and later ones get a deterministic "_2", "_3", ... suffix in original
// column order. Nothing is ever silently dropped.
type NormalizeColumns struct{}

func (NormalizeColumns) Name() string { return "normalize_columns" }

func (NormalizeColumns) Apply(t *records.Table) *records.Table {
	oldCols := t.Columns
	taken := make(map[string]int, len(oldCols))
	newCols := make([]string, len(oldCols))
	changed := false

	for i, c := range oldCols {
		n := normalizeName(c)
		taken[n]++
		if taken[n] > 1 {
			n = fmt.Sprintf("%s_%d", n, taken[n])
		}
		newCols[i] = n
		if n != c {
			changed = true
		}
	}
	if !changed {
		return t
	}
	t.Columns = newCols

	// Rebuild each row rather than renaming keys in place: a source column
	// can normalize onto another column's literal name (e.g. "Price" beside
	// "price"), and an in-place rename would overwrite the value that still
	// has to move to its suffixed key. Reading the old record and writing a
	// fresh one keeps every value, in column order, regardless of map
	// iteration order.
	for ri, r := range t.Rows {
		nr := make(records.Record, len(r))
		for i, old := range oldCols {
			if v, ok := r[old]; ok {
				nr[newCols[i]] = v
			}
		}
		t.Rows[ri] = nr
	}
	return t
}

func normalizeName(c string) string {
	n := strings.ToLower(strings.TrimSpace(c))
	n = strings.ReplaceAll(n, " ", "_")
	n = strings.ReplaceAll(n, "-", "_")
	return n
}
