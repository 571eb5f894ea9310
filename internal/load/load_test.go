package load

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"listingsetl/internal/config"
	"listingsetl/internal/records"
	"listingsetl/internal/storage"
)

func loaderClock() time.Time {
	return time.Date(2024, 3, 1, 15, 4, 5, 0, time.UTC)
}

func sampleTable() *records.Table {
	tbl := records.New([]string{"id", "price", "name"})
	tbl.Rows = []records.Record{
		{"id": "1", "price": 150.0, "name": "loft"},
		{"id": "2", "price": 80.5, "name": nil},
	}
	return tbl
}

func TestPersistWritesConfiguredFormats(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := config.LoadConfig{OutputFormats: []string{"csv", "json"}}

	res := New(cfg, nil, loaderClock).Persist(context.Background(), sampleTable(), dir, "listings")

	if len(res.Failures) != 0 {
		t.Fatalf("failures: %v", res.Failures)
	}

	csvPath := filepath.Join(dir, "listings_20240301_150405.csv")
	b, err := os.ReadFile(csvPath)
	if err != nil {
		t.Fatalf("read csv: %v", err)
	}
	want := "id,price,name\n1,150,loft\n2,80.5,\n"
	if string(b) != want {
		t.Fatalf("csv = %q, want %q", b, want)
	}

	jsonPath := filepath.Join(dir, "listings_20240301_150405.json")
	jb, err := os.ReadFile(jsonPath)
	if err != nil {
		t.Fatalf("read json: %v", err)
	}
	if !strings.Contains(string(jb), `"price": 150`) {
		t.Fatalf("json missing price: %s", jb)
	}
	if !strings.Contains(string(jb), `"name": null`) {
		t.Fatalf("json missing null name: %s", jb)
	}
}

func TestPersistLatestAliasAndMetadata(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := config.LoadConfig{OutputFormats: []string{"csv"}}

	res := New(cfg, nil, loaderClock).Persist(context.Background(), sampleTable(), dir, "listings")
	if len(res.Failures) != 0 {
		t.Fatalf("failures: %v", res.Failures)
	}

	latest, err := os.ReadFile(filepath.Join(dir, "listings_latest.csv"))
	if err != nil {
		t.Fatalf("read latest alias: %v", err)
	}
	stamped, _ := os.ReadFile(filepath.Join(dir, "listings_20240301_150405.csv"))
	if string(latest) != string(stamped) {
		t.Fatalf("latest alias differs from timestamped output")
	}

	meta, err := os.ReadFile(filepath.Join(dir, "metadata_20240301_150405.txt"))
	if err != nil {
		t.Fatalf("read metadata: %v", err)
	}
	for _, line := range []string{
		"timestamp: 20240301_150405",
		"rows: 2",
		"columns: 3",
		"columns_list: id,price,name",
		"type.price: real",
		"type.id: text",
	} {
		if !strings.Contains(string(meta), line) {
			t.Fatalf("metadata missing %q:\n%s", line, meta)
		}
	}
}

func TestPersistUnknownFormatSkipped(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := config.LoadConfig{OutputFormats: []string{"avro", "csv"}}

	res := New(cfg, nil, loaderClock).Persist(context.Background(), sampleTable(), dir, "listings")

	if len(res.Failures) != 0 {
		t.Fatalf("unknown format must not fail the run: %v", res.Failures)
	}
	entries, _ := os.ReadDir(dir)
	for _, e := range entries {
		if strings.Contains(e.Name(), "avro") {
			t.Fatalf("unexpected file %s", e.Name())
		}
	}
}

func TestPersistParquetAndXLSX(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := config.LoadConfig{OutputFormats: []string{"parquet", "xlsx"}}

	res := New(cfg, nil, loaderClock).Persist(context.Background(), sampleTable(), dir, "listings")
	if len(res.Failures) != 0 {
		t.Fatalf("failures: %v", res.Failures)
	}

	for _, name := range []string{
		"listings_20240301_150405.parquet",
		"listings_20240301_150405.xlsx",
	} {
		info, err := os.Stat(filepath.Join(dir, name))
		if err != nil {
			t.Fatalf("stat %s: %v", name, err)
		}
		if info.Size() == 0 {
			t.Fatalf("%s is empty", name)
		}
	}
}

// mirrorRepo captures Replace calls without a real database.
type mirrorRepo struct {
	table string
	rows  int
}

func (m *mirrorRepo) Replace(ctx context.Context, t *records.Table, table string) (int64, error) {
	m.table = table
	m.rows = t.NumRows()
	return int64(t.NumRows()), nil
}
func (m *mirrorRepo) Close() {}

func TestPersistDatabaseMirror(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := config.LoadConfig{
		OutputFormats: []string{"csv"},
		Database: config.DatabaseConfig{
			Enabled:          true,
			ConnectionString: "postgres://u:p@localhost/db",
			Table:            "listings_processed",
		},
	}

	repo := &mirrorRepo{}
	var gotKind string
	l := New(cfg, nil, loaderClock)
	l.openRepo = func(ctx context.Context, c storage.Config) (storage.Repository, error) {
		gotKind = c.Kind
		return repo, nil
	}

	res := l.Persist(context.Background(), sampleTable(), dir, "listings")

	if len(res.Failures) != 0 {
		t.Fatalf("failures: %v", res.Failures)
	}
	if gotKind != "postgres" {
		t.Fatalf("kind = %q, want postgres", gotKind)
	}
	if repo.table != "listings_processed" || repo.rows != 2 {
		t.Fatalf("mirror call = %+v", repo)
	}
	if res.DBRows != 2 {
		t.Fatalf("DBRows = %d, want 2", res.DBRows)
	}
}

func TestPersistMirrorFailureDoesNotAbort(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfg := config.LoadConfig{
		OutputFormats: []string{"csv"},
		Database: config.DatabaseConfig{
			Enabled:          true,
			ConnectionString: "bad.db",
			Table:            "listings_processed",
		},
	}

	l := New(cfg, nil, loaderClock)
	l.openRepo = func(ctx context.Context, c storage.Config) (storage.Repository, error) {
		return nil, os.ErrPermission
	}

	res := l.Persist(context.Background(), sampleTable(), dir, "listings")

	if len(res.Failures) != 1 {
		t.Fatalf("failures = %v, want exactly the mirror error", res.Failures)
	}
	if _, err := os.Stat(filepath.Join(dir, "listings_20240301_150405.csv")); err != nil {
		t.Fatalf("file sinks must still run: %v", err)
	}
}
