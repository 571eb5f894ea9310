package load

import (
	"fmt"
	"os"
	"time"

	"github.com/apache/arrow/go/v14/arrow"
	"github.com/apache/arrow/go/v14/arrow/array"
	"github.com/apache/arrow/go/v14/arrow/memory"
	"github.com/apache/arrow/go/v14/parquet"
	"github.com/apache/arrow/go/v14/parquet/compress"
	"github.com/apache/arrow/go/v14/parquet/pqarrow"

	"listingsetl/internal/records"
)

// writeParquet renders the table as a Snappy-compressed Parquet file. Each
// logical column type maps to an Arrow type; mixed or text columns land as
// strings.
func writeParquet(t *records.Table, path string) error {
	schema := arrowSchema(t)

	mem := memory.NewGoAllocator()
	builder := array.NewRecordBuilder(mem, schema)
	defer builder.Release()

	for i, c := range t.Columns {
		appendColumn(builder.Field(i), t, c)
	}

	rec := builder.NewRecord()
	defer rec.Release()

	tbl := array.NewTableFromRecords(schema, []arrow.Record{rec})
	defer tbl.Release()

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	props := parquet.NewWriterProperties(parquet.WithCompression(compress.Codecs.Snappy))
	if err := pqarrow.WriteTable(tbl, f, int64(t.NumRows())+1, props, pqarrow.DefaultWriterProps()); err != nil {
		return fmt.Errorf("write parquet: %w", err)
	}
	return f.Close()
}

// arrowSchema maps inferred column types onto an Arrow schema. Every field
// is nullable; missing values are real in this data.
func arrowSchema(t *records.Table) *arrow.Schema {
	fields := make([]arrow.Field, len(t.Columns))
	for i, c := range t.Columns {
		var dt arrow.DataType
		switch t.InferType(c) {
		case records.TypeInteger:
			dt = arrow.PrimitiveTypes.Int64
		case records.TypeReal:
			dt = arrow.PrimitiveTypes.Float64
		case records.TypeBoolean:
			dt = arrow.FixedWidthTypes.Boolean
		case records.TypeDate:
			dt = arrow.FixedWidthTypes.Timestamp_us
		default:
			dt = arrow.BinaryTypes.String
		}
		fields[i] = arrow.Field{Name: c, Type: dt, Nullable: true}
	}
	return arrow.NewSchema(fields, nil)
}

// appendColumn feeds one column's values into the matching typed builder.
// Values that do not match the inferred type append as null.
func appendColumn(b array.Builder, t *records.Table, col string) {
	switch fb := b.(type) {
	case *array.Int64Builder:
		for _, r := range t.Rows {
			switch v := r[col].(type) {
			case int64:
				fb.Append(v)
			case int:
				fb.Append(int64(v))
			default:
				fb.AppendNull()
			}
		}
	case *array.Float64Builder:
		for _, r := range t.Rows {
			switch v := r[col].(type) {
			case float64:
				fb.Append(v)
			case int64:
				fb.Append(float64(v))
			case int:
				fb.Append(float64(v))
			default:
				fb.AppendNull()
			}
		}
	case *array.BooleanBuilder:
		for _, r := range t.Rows {
			if v, ok := r[col].(bool); ok {
				fb.Append(v)
			} else {
				fb.AppendNull()
			}
		}
	case *array.TimestampBuilder:
		for _, r := range t.Rows {
			if v, ok := r[col].(time.Time); ok {
				fb.Append(arrow.Timestamp(v.UnixMicro()))
			} else {
				fb.AppendNull()
			}
		}
	case *array.StringBuilder:
		for _, r := range t.Rows {
			v := r[col]
			if v == nil {
				fb.AppendNull()
				continue
			}
			fb.Append(cellString(v))
		}
	}
}
