package records

import (
	"reflect"
	"testing"
	"time"
)

func TestCloneIsIndependent(t *testing.T) {
	t.Parallel()

	orig := &Table{
		Columns: []string{"id", "name"},
		Rows: []Record{
			{"id": int64(1), "name": "a"},
			{"id": int64(2), "name": "b"},
		},
	}
	c := orig.Clone()
	c.Rows[0]["name"] = "mutated"
	c.Columns[0] = "other"

	if orig.Rows[0]["name"] != "a" {
		t.Fatalf("clone mutation leaked into original row: %v", orig.Rows[0])
	}
	if orig.Columns[0] != "id" {
		t.Fatalf("clone mutation leaked into original columns: %v", orig.Columns)
	}
}

func TestDropColumn(t *testing.T) {
	t.Parallel()

	tab := &Table{
		Columns: []string{"a", "b", "c"},
		Rows:    []Record{{"a": "1", "b": "2", "c": "3"}},
	}
	tab.DropColumn("b")

	if want := []string{"a", "c"}; !reflect.DeepEqual(tab.Columns, want) {
		t.Fatalf("columns = %v, want %v", tab.Columns, want)
	}
	if _, ok := tab.Rows[0]["b"]; ok {
		t.Fatalf("dropped column value still present in row")
	}
}

func TestAddColumnIgnoresDuplicates(t *testing.T) {
	t.Parallel()

	tab := New([]string{"a"})
	tab.AddColumn("b")
	tab.AddColumn("a")
	if want := []string{"a", "b"}; !reflect.DeepEqual(tab.Columns, want) {
		t.Fatalf("columns = %v, want %v", tab.Columns, want)
	}
}

func TestInferType(t *testing.T) {
	t.Parallel()

	now := time.Now()
	tab := &Table{
		Columns: []string{"i", "f", "mix", "b", "d", "s", "empty"},
		Rows: []Record{
			{"i": int64(1), "f": 1.5, "mix": int64(2), "b": true, "d": now, "s": "x", "empty": nil},
			{"i": int64(2), "f": 2.5, "mix": 3.5, "b": false, "d": now, "s": "y", "empty": nil},
		},
	}

	cases := map[string]ColumnType{
		"i":     TypeInteger,
		"f":     TypeReal,
		"mix":   TypeReal, // int + float widens to real
		"b":     TypeBoolean,
		"d":     TypeDate,
		"s":     TypeText,
		"empty": TypeText,
	}
	for col, want := range cases {
		if got := tab.InferType(col); got != want {
			t.Errorf("InferType(%q) = %q, want %q", col, got, want)
		}
	}
}
