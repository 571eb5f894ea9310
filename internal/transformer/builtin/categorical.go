package builtin

import (
	"strings"

	"golang.org/x/text/unicode/norm"

	"listingsetl/internal/records"
)

// missingMarkers are literal strings treated as missing in categorical
// columns, distinct from the native nil marker.
var missingMarkers = map[string]struct{}{
	"": {}, "nan": {}, "NaN": {}, "None": {},
}

// CleanCategorical coerces the configured columns to text: values are
// rendered as strings, NFC-normalized, and trimmed of surrounding
// whitespace. The markers "", "nan", "NaN" and "None" become nil.
type CleanCategorical struct {
	Columns []string
}

func (CleanCategorical) Name() string { return "clean_categorical" }

func (c CleanCategorical) Apply(t *records.Table) *records.Table {
	for _, col := range c.Columns {
		if !t.HasColumn(col) {
			continue
		}
		for _, r := range t.Rows {
			v, ok := r[col]
			if !ok || v == nil {
				continue
			}
			s := strings.TrimSpace(norm.NFC.String(toString(v)))
			if _, missing := missingMarkers[s]; missing {
				r[col] = nil
				continue
			}
			r[col] = s
		}
	}
	return t
}
