// Package load persists the processed table to the configured sinks. File
// sinks (CSV, Parquet, JSON, XLSX) and the optional database mirror are
// independent: a failing sink is logged and recorded, never fatal, so one
// broken destination cannot lose the others.
package load

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"listingsetl/internal/config"
	"listingsetl/internal/records"
	"listingsetl/internal/storage"
)

// Result reports what one Persist call produced.
type Result struct {
	// Paths lists every file successfully written, in write order.
	Paths []string

	// Failures collects per-sink errors. Empty on a fully clean run.
	Failures []error

	// DBRows is the number of rows mirrored to the database, when enabled.
	DBRows int64
}

// Loader writes a table to every configured sink.
type Loader struct {
	cfg config.LoadConfig
	log *slog.Logger
	now func() time.Time

	// openRepo is a hook for tests; defaults to storage.New.
	openRepo func(ctx context.Context, cfg storage.Config) (storage.Repository, error)
}

// New builds a Loader. now supplies the timestamp embedded in file names;
// tests inject a fixed clock.
func New(cfg config.LoadConfig, log *slog.Logger, now func() time.Time) *Loader {
	if log == nil {
		log = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Loader{cfg: cfg, log: log, now: now, openRepo: storage.New}
}

// Persist writes the table to dir under every configured format, plus the
// un-timestamped "<base>_latest.csv" alias and a metadata side file. When the
// database mirror is enabled the table also replaces the configured DB table.
func (l *Loader) Persist(ctx context.Context, t *records.Table, dir, base string) *Result {
	res := &Result{}
	ts := l.now().Format("20060102_150405")

	if err := os.MkdirAll(dir, 0o755); err != nil {
		res.Failures = append(res.Failures, fmt.Errorf("create output dir %s: %w", dir, err))
		return res
	}

	for _, format := range l.cfg.OutputFormats {
		path, err := l.writeFormat(t, dir, base, ts, format)
		if err != nil {
			l.log.Error("sink failed", "format", format, "error", err)
			res.Failures = append(res.Failures, fmt.Errorf("%s sink: %w", format, err))
			continue
		}
		if path == "" {
			continue // unknown format, already warned
		}
		l.log.Info("wrote output", "format", format, "path", path, "rows", t.NumRows())
		res.Paths = append(res.Paths, path)
	}

	latest := filepath.Join(dir, base+"_latest.csv")
	if err := writeCSV(t, latest); err != nil {
		l.log.Error("latest alias failed", "path", latest, "error", err)
		res.Failures = append(res.Failures, fmt.Errorf("latest alias: %w", err))
	} else {
		res.Paths = append(res.Paths, latest)
	}

	metaPath := filepath.Join(dir, "metadata_"+ts+".txt")
	if err := l.writeMetadata(t, metaPath, ts); err != nil {
		l.log.Error("metadata failed", "path", metaPath, "error", err)
		res.Failures = append(res.Failures, fmt.Errorf("metadata: %w", err))
	} else {
		res.Paths = append(res.Paths, metaPath)
	}

	if l.cfg.Database.Enabled {
		n, err := l.mirror(ctx, t)
		if err != nil {
			l.log.Error("database mirror failed", "error", err)
			res.Failures = append(res.Failures, fmt.Errorf("database mirror: %w", err))
		} else {
			l.log.Info("database mirror complete", "table", l.cfg.Database.Table, "rows", n)
			res.DBRows = n
		}
	}
	return res
}

// writeFormat dispatches one output format. An unknown format returns an
// empty path with no error.
func (l *Loader) writeFormat(t *records.Table, dir, base, ts, format string) (string, error) {
	name := func(ext string) string {
		return filepath.Join(dir, fmt.Sprintf("%s_%s.%s", base, ts, ext))
	}

	switch strings.ToLower(format) {
	case "csv":
		path := name("csv")
		return path, writeCSV(t, path)
	case "json":
		path := name("json")
		return path, writeJSON(t, path)
	case "parquet":
		path := name("parquet")
		return path, writeParquet(t, path)
	case "xlsx", "excel":
		path := name("xlsx")
		return path, writeXLSX(t, path)
	default:
		l.log.Warn("unknown output format, skipping", "format", format)
		return "", nil
	}
}

// writeMetadata renders the run's shape summary as key: value lines.
func (l *Loader) writeMetadata(t *records.Table, path, ts string) error {
	var b strings.Builder
	fmt.Fprintf(&b, "timestamp: %s\n", ts)
	fmt.Fprintf(&b, "rows: %d\n", t.NumRows())
	fmt.Fprintf(&b, "columns: %d\n", t.NumCols())
	fmt.Fprintf(&b, "columns_list: %s\n", strings.Join(t.Columns, ","))
	for _, c := range t.Columns {
		fmt.Fprintf(&b, "type.%s: %s\n", c, t.InferType(c))
	}
	return os.WriteFile(path, []byte(b.String()), 0o644)
}

// mirror replaces the configured database table with the processed rows. The
// backend kind is inferred from the connection string.
func (l *Loader) mirror(ctx context.Context, t *records.Table) (int64, error) {
	dsn := l.cfg.Database.ConnectionString
	repo, err := l.openRepo(ctx, storage.Config{
		Kind: storage.KindFromDSN(dsn),
		DSN:  dsn,
	})
	if err != nil {
		return 0, err
	}
	defer repo.Close()
	return repo.Replace(ctx, t, l.cfg.Database.Table)
}
