// Package csv turns delimited text into a records.Table. It wraps the
// standard library reader with the behaviors the raw listings exports need:
// BOM stripping, configurable source encoding, and soft-fail handling of
// malformed rows (skipped and counted, never fatal).
package csv

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"golang.org/x/text/encoding/ianaindex"
	"golang.org/x/text/transform"

	"listingsetl/internal/records"
)

// Options configures the CSV parser behavior. All fields are optional;
// sensible defaults are applied when a field is zero.
type Options struct {
	// Comma specifies the field delimiter. When zero, ',' is used.
	Comma rune

	// TrimSpace trims leading/trailing spaces from each field value.
	TrimSpace bool

	// Encoding is an IANA charset name (e.g. "utf-8", "latin1",
	// "windows-1252"). Empty or "utf-8" reads the input as-is.
	Encoding string

	// Logger receives skipped-row notices. Nil disables them.
	Logger *slog.Logger
}

// Parser parses CSV input according to Options. It is safe to reuse across
// inputs, but Parser itself is not concurrency-safe.
type Parser struct{ opt Options }

// NewParser constructs a Parser with the provided Options.
func NewParser(opt Options) *Parser { return &Parser{opt: opt} }

// utf8BOM is stripped from the first header cell if present.
const utf8BOM = "\xef\xbb\xbf"

// skipLogLimit caps the number of per-row skip notices emitted for one input.
const skipLogLimit = 50

// Parse consumes CSV records from r and returns the parsed table along with
// the number of rows skipped due to parse errors or field-count mismatches.
// The first row is the header and is required; its cells become the table's
// columns verbatim (column-name normalization is a transform stage, not a
// parsing concern). Empty fields decode to nil.
func (p *Parser) Parse(r io.Reader) (*records.Table, int, error) {
	dec, err := decodingReader(r, p.opt.Encoding)
	if err != nil {
		return nil, 0, err
	}

	cr := csv.NewReader(dec)
	if p.opt.Comma != 0 {
		cr.Comma = p.opt.Comma
	}
	cr.LazyQuotes = true
	cr.FieldsPerRecord = -1 // width enforced after read, soft-fail

	header, err := cr.Read()
	if err != nil {
		return nil, 0, fmt.Errorf("read csv header: %w", err)
	}
	headers := make([]string, len(header))
	for i, h := range header {
		c := strings.TrimSpace(h)
		if i == 0 {
			c = strings.TrimPrefix(c, utf8BOM)
		}
		headers[i] = c
	}

	tab := records.New(headers)
	var skipped int

	for line := 1; ; line++ {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			p.skip(&skipped, "row %d: %v", line, err)
			continue
		}
		if len(row) != len(headers) {
			p.skip(&skipped, "row %d: expected %d fields, got %d", line, len(headers), len(row))
			continue
		}

		rec := make(records.Record, len(row))
		for i, val := range row {
			if p.opt.TrimSpace {
				val = strings.TrimSpace(val)
			}
			rec[headers[i]] = emptyToNil(val)
		}
		tab.Rows = append(tab.Rows, rec)
	}

	return tab, skipped, nil
}

func (p *Parser) skip(skipped *int, format string, args ...any) {
	if p.opt.Logger != nil && *skipped < skipLogLimit {
		p.opt.Logger.Warn("skipping malformed row", "detail", fmt.Sprintf(format, args...))
	}
	*skipped++
}

// emptyToNil converts an empty string to nil; all other values are returned as-is.
func emptyToNil(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// decodingReader wraps r with a charset decoder when the configured encoding
// is not UTF-8. Unknown encodings are an error rather than silently ignored.
func decodingReader(r io.Reader, name string) (io.Reader, error) {
	n := strings.ToLower(strings.TrimSpace(name))
	if n == "" || n == "utf-8" || n == "utf8" {
		return r, nil
	}
	enc, err := ianaindex.IANA.Encoding(name)
	if err != nil || enc == nil {
		return nil, fmt.Errorf("unsupported encoding %q", name)
	}
	return transform.NewReader(r, enc.NewDecoder()), nil
}
