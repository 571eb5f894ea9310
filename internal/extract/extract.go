// Package extract locates and parses the raw tabular source. A source is
// either a ZIP archive expected to contain at least one CSV entry, or a flat
// CSV file; "auto" infers the kind from the file extension.
//
// Archive handling: entries are considered in archive-listing order and the
// first CSV-suffixed entry wins. This tie-break is arbitrary but documented
// and pinned by tests; alphabetical order is NOT used.
package extract

import (
	"archive/zip"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"listingsetl/internal/config"
	csvparser "listingsetl/internal/parser/csv"
	"listingsetl/internal/records"
)

// Sentinel errors forming the extraction failure taxonomy.
var (
	// ErrSourceNotFound is returned when the source path does not exist.
	ErrSourceNotFound = errors.New("source not found")

	// ErrUnsupportedSourceType is returned when the source type is unknown
	// or cannot be inferred from the file extension.
	ErrUnsupportedSourceType = errors.New("unsupported source type")

	// ErrNoTabularData is returned when an archive contains no CSV entry.
	ErrNoTabularData = errors.New("no tabular data found in archive")
)

// ParseError wraps a failure to parse tabular content.
type ParseError struct {
	Source string
	Err    error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("parse %s: %v", e.Source, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

// SourceType identifies the container kind of a source path.
type SourceType string

const (
	SourceZip  SourceType = "zip"
	SourceCSV  SourceType = "csv"
	SourceAuto SourceType = "auto"
)

// Extractor reads the raw table out of a source container.
type Extractor struct {
	cfg config.ExtractConfig
	// stagingDir receives a copy of the selected archive entry for
	// traceability. Empty disables staging.
	stagingDir string
	log        *slog.Logger
}

// New returns an Extractor bound to the given configuration and logger.
func New(cfg config.ExtractConfig, stagingDir string, log *slog.Logger) *Extractor {
	if log == nil {
		log = slog.Default()
	}
	return &Extractor{cfg: cfg, stagingDir: stagingDir, log: log}
}

// Extract resolves the source type, reads the tabular payload, and parses it
// into a Table. typ may be SourceAuto (or empty) to infer from the extension.
func (e *Extractor) Extract(ctx context.Context, source string, typ SourceType) (*records.Table, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	if _, err := os.Stat(source); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSourceNotFound, source)
		}
		return nil, fmt.Errorf("stat %s: %w", source, err)
	}

	if typ == "" || typ == SourceAuto {
		switch strings.ToLower(filepath.Ext(source)) {
		case ".zip":
			typ = SourceZip
		case ".csv":
			typ = SourceCSV
		default:
			return nil, fmt.Errorf("%w: cannot infer type from %q", ErrUnsupportedSourceType, filepath.Ext(source))
		}
	}

	switch typ {
	case SourceZip:
		return e.extractFromZip(ctx, source)
	case SourceCSV:
		return e.extractFromCSV(source)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSourceType, typ)
	}
}

// extractFromZip enumerates the archive, selects the first CSV entry in
// listing order, optionally stages it to disk, and parses it.
func (e *Extractor) extractFromZip(ctx context.Context, path string) (*records.Table, error) {
	zr, err := zip.OpenReader(path)
	if err != nil {
		return nil, &ParseError{Source: path, Err: err}
	}
	defer zr.Close()

	names := make([]string, 0, len(zr.File))
	var entry *zip.File
	for _, f := range zr.File {
		names = append(names, f.Name)
		if entry == nil && strings.HasSuffix(strings.ToLower(f.Name), ".csv") {
			entry = f
		}
	}
	e.log.Info("archive listed", "source", path, "entries", names)

	if entry == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoTabularData, path)
	}
	e.log.Info("selected archive entry", "entry", entry.Name)

	rc, err := entry.Open()
	if err != nil {
		return nil, &ParseError{Source: entry.Name, Err: err}
	}
	defer rc.Close()

	var r io.Reader = rc
	if e.stagingDir != "" {
		// Best-effort staging copy: failures are logged, not fatal.
		staged, serr := e.stage(entry.Name, rc)
		if serr != nil {
			e.log.Warn("staging archive entry failed", "entry", entry.Name, "error", serr)
			// rc has been partially consumed; reopen the entry.
			rc2, oerr := entry.Open()
			if oerr != nil {
				return nil, &ParseError{Source: entry.Name, Err: oerr}
			}
			defer rc2.Close()
			r = rc2
		} else {
			e.log.Info("staged archive entry", "path", staged)
			f, oerr := os.Open(staged)
			if oerr != nil {
				return nil, &ParseError{Source: staged, Err: oerr}
			}
			defer f.Close()
			r = f
		}
	}

	return e.parse(entry.Name, r)
}

// extractFromCSV parses a flat CSV file directly.
func (e *Extractor) extractFromCSV(path string) (*records.Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return e.parse(path, f)
}

func (e *Extractor) parse(name string, r io.Reader) (*records.Table, error) {
	p := csvparser.NewParser(csvparser.Options{
		TrimSpace: true,
		Encoding:  e.cfg.Encoding,
		Logger:    e.log,
	})
	tab, skipped, err := p.Parse(r)
	if err != nil {
		return nil, &ParseError{Source: name, Err: err}
	}
	if skipped > 0 {
		e.log.Warn("rows skipped during parse", "source", name, "skipped", skipped)
	}
	e.log.Info("extracted table", "source", name, "rows", tab.NumRows(), "columns", tab.NumCols())
	return tab, nil
}

// stage writes the archive entry to the staging directory and returns the
// written path. The entry name is flattened to its base name to avoid
// creating attacker-controlled directory structures.
func (e *Extractor) stage(name string, r io.Reader) (string, error) {
	if err := os.MkdirAll(e.stagingDir, 0o755); err != nil {
		return "", err
	}
	dst := filepath.Join(e.stagingDir, filepath.Base(name))
	f, err := os.Create(dst)
	if err != nil {
		return "", err
	}
	defer f.Close()
	if _, err := io.Copy(f, r); err != nil {
		os.Remove(dst)
		return "", err
	}
	return dst, nil
}
