package csv

import (
	"reflect"
	"strings"
	"testing"
)

func TestParseBasic(t *testing.T) {
	t.Parallel()

	in := "id,name,price\n1,alpha,100\n2,beta,\n"
	tab, skipped, err := NewParser(Options{TrimSpace: true}).Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if skipped != 0 {
		t.Fatalf("skipped = %d, want 0", skipped)
	}
	if want := []string{"id", "name", "price"}; !reflect.DeepEqual(tab.Columns, want) {
		t.Fatalf("columns = %v, want %v", tab.Columns, want)
	}
	if tab.NumRows() != 2 {
		t.Fatalf("rows = %d, want 2", tab.NumRows())
	}
	if tab.Rows[1]["price"] != nil {
		t.Fatalf("empty field should decode to nil, got %v", tab.Rows[1]["price"])
	}
	if tab.Rows[0]["name"] != "alpha" {
		t.Fatalf("name = %v, want alpha", tab.Rows[0]["name"])
	}
}

func TestParseStripsBOM(t *testing.T) {
	t.Parallel()

	in := "\xef\xbb\xbfid,name\n1,x\n"
	tab, _, err := NewParser(Options{}).Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if tab.Columns[0] != "id" {
		t.Fatalf("first column = %q, want %q", tab.Columns[0], "id")
	}
}

func TestParseSkipsWidthMismatch(t *testing.T) {
	t.Parallel()

	in := "a,b\n1,2\n1,2,3\n4,5\n"
	tab, skipped, err := NewParser(Options{}).Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if skipped != 1 {
		t.Fatalf("skipped = %d, want 1", skipped)
	}
	if tab.NumRows() != 2 {
		t.Fatalf("rows = %d, want 2", tab.NumRows())
	}
}

func TestParseHeaderRequired(t *testing.T) {
	t.Parallel()

	if _, _, err := NewParser(Options{}).Parse(strings.NewReader("")); err == nil {
		t.Fatalf("expected error on empty input (missing header)")
	}
}

func TestParseLatin1Encoding(t *testing.T) {
	t.Parallel()

	// 0xE9 is é in latin1.
	in := "name\ncaf\xe9\n"
	tab, _, err := NewParser(Options{Encoding: "latin1"}).Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if got := tab.Rows[0]["name"]; got != "café" {
		t.Fatalf("name = %q, want %q", got, "café")
	}
}

func TestParseUnknownEncoding(t *testing.T) {
	t.Parallel()

	if _, _, err := NewParser(Options{Encoding: "not-a-charset"}).Parse(strings.NewReader("a\n1\n")); err == nil {
		t.Fatalf("expected error for unknown encoding")
	}
}

func TestParseCustomDelimiter(t *testing.T) {
	t.Parallel()

	in := "a;b\n1;2\n"
	tab, _, err := NewParser(Options{Comma: ';'}).Parse(strings.NewReader(in))
	if err != nil {
		t.Fatalf("Parse error: %v", err)
	}
	if tab.Rows[0]["b"] != "2" {
		t.Fatalf("b = %v, want 2", tab.Rows[0]["b"])
	}
}
