package builtin

import (
	"strconv"
	"strings"
	"time"

	"github.com/zeebo/xxh3"

	"listingsetl/internal/records"
)

// DeDup removes exact duplicate rows, keeping the first occurrence in
// original order. Two rows are duplicates when every column value compares
// equal; nil equals nil for this purpose.
//
// Each row is keyed by a canonical byte encoding over the table's column
// order and hashed with xxh3's 128-bit variant, so the seen-set holds two
// words per row instead of the full encoded key.
type DeDup struct{}

func (DeDup) Name() string { return "dedup" }

func (DeDup) Apply(t *records.Table) *records.Table {
	if len(t.Rows) < 2 {
		return t
	}

	seen := make(map[xxh3.Uint128]struct{}, len(t.Rows))
	out := t.Rows[:0]
	var b strings.Builder

	for _, r := range t.Rows {
		b.Reset()
		for i, c := range t.Columns {
			if i > 0 {
				b.WriteByte('\x1f') // field separator, unlikely in data
			}
			writeCanonical(&b, r[c])
		}
		h := xxh3.HashString128(b.String())
		if _, dup := seen[h]; dup {
			continue
		}
		seen[h] = struct{}{}
		out = append(out, r)
	}
	t.Rows = out
	return t
}

// writeCanonical encodes a value with a type prefix so that e.g. the string
// "1" and the integer 1 never collide, and nil stays distinct from "".
func writeCanonical(b *strings.Builder, v any) {
	switch t := v.(type) {
	case nil:
		b.WriteByte('\x00')
	case string:
		b.WriteString("s:")
		b.WriteString(t)
	case float64:
		b.WriteString("f:")
		b.WriteString(strconv.FormatFloat(t, 'g', -1, 64))
	case int64:
		b.WriteString("i:")
		b.WriteString(strconv.FormatInt(t, 10))
	case int:
		b.WriteString("i:")
		b.WriteString(strconv.Itoa(t))
	case bool:
		if t {
			b.WriteString("b:1")
		} else {
			b.WriteString("b:0")
		}
	case time.Time:
		b.WriteString("t:")
		b.WriteString(t.Format(time.RFC3339Nano))
	default:
		b.WriteString("?:")
	}
}
