package storage

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"listingsetl/internal/records"
)

// fakeRepo is a minimal Repository implementation for tests.
type fakeRepo struct {
	closed bool
}

func (f *fakeRepo) Replace(ctx context.Context, t *records.Table, table string) (int64, error) {
	return int64(t.NumRows()), nil
}
func (f *fakeRepo) Close() { f.closed = true }

func TestRegisterAndNew(t *testing.T) {
	t.Parallel()

	kind := "fake"
	Register(kind, func(ctx context.Context, cfg Config) (Repository, error) {
		return &fakeRepo{}, nil
	})

	repo, err := New(context.Background(), Config{Kind: kind})
	if err != nil {
		t.Fatalf("New error: %v", err)
	}
	if repo == nil {
		t.Fatalf("New returned nil repo")
	}

	found := false
	for _, k := range ListKinds() {
		if k == kind {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("registered kind %q not present in ListKinds: %v", kind, ListKinds())
	}
}

func TestNewUnsupported(t *testing.T) {
	t.Parallel()

	_, err := New(context.Background(), Config{Kind: "does-not-exist"})
	if err == nil {
		t.Fatalf("expected error for unsupported kind")
	}
	if got, want := err.Error(), "unsupported storage.kind=does-not-exist"; got != want {
		t.Fatalf("error = %q, want %q", got, want)
	}
}

func TestRegisterOverride(t *testing.T) {
	t.Parallel()

	kind := "override"
	calls := 0

	Register(kind, func(ctx context.Context, cfg Config) (Repository, error) {
		calls++
		return &fakeRepo{}, nil
	})
	Register(kind, func(ctx context.Context, cfg Config) (Repository, error) {
		calls += 10
		return &fakeRepo{}, nil
	})

	if _, err := New(context.Background(), Config{Kind: kind}); err != nil {
		t.Fatalf("New error: %v", err)
	}
	if calls != 10 { // only the second factory should have been used
		t.Fatalf("factory call count = %d, want 10", calls)
	}
}

func TestListKindsSnapshot(t *testing.T) {
	t.Parallel()

	Register("snap", func(ctx context.Context, cfg Config) (Repository, error) { return &fakeRepo{}, nil })

	a := ListKinds()
	if len(a) == 0 {
		t.Fatalf("ListKinds empty after registration")
	}
	a[0] = "mutated"

	b := ListKinds()
	if reflect.DeepEqual(a, b) {
		t.Fatalf("ListKinds returned same slice; want snapshot copy")
	}
}

func TestRegisterAllowsErrors(t *testing.T) {
	t.Parallel()

	want := errors.New("boom")
	Register("errkind", func(ctx context.Context, cfg Config) (Repository, error) {
		return nil, want
	})

	_, err := New(context.Background(), Config{Kind: "errkind"})
	if !errors.Is(err, want) {
		t.Fatalf("want %v, got %v", want, err)
	}
}

func TestKindFromDSN(t *testing.T) {
	t.Parallel()

	cases := []struct {
		dsn  string
		want string
	}{
		{"postgres://u:p@localhost/db", "postgres"},
		{"postgresql://u:p@localhost/db", "postgres"},
		{"sqlserver://u:p@localhost?database=db", "mssql"},
		{"listings.db", "sqlite"},
		{"file:listings.db?cache=shared", "sqlite"},
	}
	for _, c := range cases {
		if got := KindFromDSN(c.dsn); got != c.want {
			t.Fatalf("KindFromDSN(%q) = %q, want %q", c.dsn, got, c.want)
		}
	}
}

func TestRowValues(t *testing.T) {
	t.Parallel()

	tbl := records.New([]string{"a", "b"})
	tbl.Rows = []records.Record{
		{"a": "x", "b": 1.5},
		{"a": "y"},
	}

	rows := RowValues(tbl)

	want := [][]any{{"x", 1.5}, {"y", nil}}
	if !reflect.DeepEqual(rows, want) {
		t.Fatalf("rows = %v, want %v", rows, want)
	}
}
