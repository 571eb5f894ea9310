// Package sqlite implements a SQLite-backed storage.Repository using
// database/sql. Loads run as batched INSERTs inside one transaction; SQLite
// has no dedicated bulk-load API, but a single transaction keeps performance
// acceptable for the volumes this job sees.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"listingsetl/internal/records"
	"listingsetl/internal/storage"
)

// Repository is a SQLite-backed implementation of storage.Repository.
type Repository struct {
	db *sql.DB
}

func init() {
	storage.Register("sqlite", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return NewRepository(ctx, cfg.DSN)
	})
}

// NewRepository opens a SQLite connection for the given DSN. The DSN is
// passed to database/sql as-is; a bare file path works.
func NewRepository(ctx context.Context, dsn string) (*Repository, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("sqlite: DSN must not be empty")
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("sqlite: open: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		db.Close()
		return nil, fmt.Errorf("sqlite: ping: %w", err)
	}
	return &Repository{db: db}, nil
}

// Close implements storage.Repository.Close.
func (r *Repository) Close() { r.db.Close() }

// Replace drops and recreates the destination table from the source table's
// inferred types, then inserts every row in one transaction.
func (r *Repository) Replace(ctx context.Context, t *records.Table, table string) (int64, error) {
	if len(t.Columns) == 0 {
		return 0, fmt.Errorf("sqlite: replace %s: no columns", table)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("sqlite: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DROP TABLE IF EXISTS "+quoteIdent(table)); err != nil {
		return 0, fmt.Errorf("sqlite: drop %s: %w", table, err)
	}
	if _, err := tx.ExecContext(ctx, CreateTableSQL(table, t)); err != nil {
		return 0, fmt.Errorf("sqlite: create %s: %w", table, err)
	}

	placeholders := make([]string, len(t.Columns))
	for i := range placeholders {
		placeholders[i] = "?"
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES (%s)",
		quoteIdent(table),
		strings.Join(quoteAll(t.Columns), ", "),
		strings.Join(placeholders, ", "),
	))
	if err != nil {
		return 0, fmt.Errorf("sqlite: prepare insert: %w", err)
	}
	defer stmt.Close()

	var inserted int64
	for _, row := range storage.RowValues(t) {
		for i, v := range row {
			row[i] = bindValue(v)
		}
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return inserted, fmt.Errorf("sqlite: insert row %d: %w", inserted, err)
		}
		inserted++
	}

	if err := tx.Commit(); err != nil {
		return inserted, fmt.Errorf("sqlite: commit: %w", err)
	}
	return inserted, nil
}

// CreateTableSQL renders the CREATE TABLE statement for the table's inferred
// column types.
func CreateTableSQL(table string, t *records.Table) string {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = quoteIdent(c) + " " + columnType(t.InferType(c))
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", quoteIdent(table), strings.Join(cols, ", "))
}

// columnType maps a logical column type to a SQLite affinity. Dates are
// stored as ISO-8601 text; booleans as 0/1.
func columnType(ct records.ColumnType) string {
	switch ct {
	case records.TypeInteger, records.TypeBoolean:
		return "INTEGER"
	case records.TypeReal:
		return "REAL"
	default:
		return "TEXT"
	}
}

// bindValue converts logical values into types the driver stores portably.
func bindValue(v any) any {
	switch t := v.(type) {
	case time.Time:
		return t.Format(time.RFC3339)
	case bool:
		if t {
			return int64(1)
		}
		return int64(0)
	default:
		return v
	}
}

func quoteIdent(id string) string {
	return `"` + strings.ReplaceAll(id, `"`, `""`) + `"`
}

func quoteAll(ids []string) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = quoteIdent(id)
	}
	return out
}
