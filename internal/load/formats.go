package load

import (
	"encoding/csv"
	"encoding/json"
	"os"
	"strconv"
	"time"

	"github.com/xuri/excelize/v2"

	"listingsetl/internal/records"
)

// writeCSV renders the table with the column order as header. nil values
// become empty fields.
func writeCSV(t *records.Table, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(t.Columns); err != nil {
		return err
	}
	row := make([]string, len(t.Columns))
	for _, r := range t.Rows {
		for i, c := range t.Columns {
			row[i] = cellString(r[c])
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

// writeJSON renders the table records-oriented: one object per row, indented.
func writeJSON(t *records.Table, path string) error {
	out := make([]map[string]any, len(t.Rows))
	for i, r := range t.Rows {
		obj := make(map[string]any, len(t.Columns))
		for _, c := range t.Columns {
			obj[c] = r[c]
		}
		out[i] = obj
	}
	b, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(b, '\n'), 0o644)
}

// writeXLSX renders the table to a single-sheet workbook.
func writeXLSX(t *records.Table, path string) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Sheet1"
	for i, c := range t.Columns {
		cell, err := excelize.CoordinatesToCellName(i+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheet, cell, c); err != nil {
			return err
		}
	}
	for ri, r := range t.Rows {
		for ci, c := range t.Columns {
			v := r[c]
			if v == nil {
				continue
			}
			cell, err := excelize.CoordinatesToCellName(ci+1, ri+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, v); err != nil {
				return err
			}
		}
	}
	return f.SaveAs(path)
}

// cellString renders a value for positional text output. nil maps to "".
func cellString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	case bool:
		return strconv.FormatBool(t)
	case time.Time:
		return t.Format(time.RFC3339)
	default:
		return ""
	}
}
