package builtin

import (
	"strings"
	"time"

	"listingsetl/internal/records"
)

// dateLayouts are tried in order. ISO date first since that is what the
// listing exports use.
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339,
	"2006-01-02 15:04:05",
	"01/02/2006",
}

// ParseDates converts the configured columns to time.Time. Values that fail
// every layout become nil. Values already parsed are left alone.
type ParseDates struct {
	Columns []string
}

func (ParseDates) Name() string { return "parse_dates" }

func (p ParseDates) Apply(t *records.Table) *records.Table {
	for _, col := range p.Columns {
		if !t.HasColumn(col) {
			continue
		}
		for _, r := range t.Rows {
			switch v := r[col].(type) {
			case nil:
			case time.Time:
			case string:
				r[col] = parseDate(v)
			default:
				r[col] = nil
			}
		}
	}
	return t
}

// parseDate returns a time.Time or nil, typed as any so it can be stored in
// a record directly.
func parseDate(s string) any {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	for _, layout := range dateLayouts {
		if ts, err := time.Parse(layout, s); err == nil {
			return ts
		}
	}
	return nil
}
