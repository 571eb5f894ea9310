// Package storage defines the backend-agnostic contract for the optional
// relational mirror, plus a registration factory that lets backend packages
// wire themselves in at init time. Callers select a backend by kind and never
// import a concrete driver package directly.
package storage

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"

	"listingsetl/internal/records"
)

// Repository replaces a destination table with the contents of an in-memory
// table. Replace drops and recreates the table from the source's inferred
// column types, then loads every row transactionally; it returns the number
// of rows written.
type Repository interface {
	Replace(ctx context.Context, t *records.Table, table string) (int64, error)
	Close()
}

// Config carries everything a backend factory needs to open a connection.
type Config struct {
	Kind string // postgres | mssql | sqlite
	DSN  string
}

// Factory constructs a Repository for one backend kind.
type Factory func(ctx context.Context, cfg Config) (Repository, error)

var (
	regMu     sync.RWMutex
	factories = map[string]Factory{}
)

// Register adds (or replaces) the factory for a backend kind. Backend
// packages call this from init.
func Register(kind string, fn Factory) {
	regMu.Lock()
	defer regMu.Unlock()
	factories[kind] = fn
}

// New opens a Repository of the configured kind.
func New(ctx context.Context, cfg Config) (Repository, error) {
	regMu.RLock()
	fn, ok := factories[cfg.Kind]
	regMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("unsupported storage.kind=%s", cfg.Kind)
	}
	return fn(ctx, cfg)
}

// ListKinds returns a sorted snapshot of the registered backend kinds.
func ListKinds() []string {
	regMu.RLock()
	defer regMu.RUnlock()
	kinds := make([]string, 0, len(factories))
	for k := range factories {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	return kinds
}

// KindFromDSN infers the backend kind from a connection string. URL schemes
// pick the server backends; anything else is treated as a SQLite path or DSN.
func KindFromDSN(dsn string) string {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "postgres"
	case strings.HasPrefix(dsn, "sqlserver://"):
		return "mssql"
	default:
		return "sqlite"
	}
}

// RowValues flattens the table into driver-ready rows aligned to the
// table's column order. Absent keys become nil.
func RowValues(t *records.Table) [][]any {
	rows := make([][]any, len(t.Rows))
	for i, r := range t.Rows {
		row := make([]any, len(t.Columns))
		for j, c := range t.Columns {
			row[j] = r[c]
		}
		rows[i] = row
	}
	return rows
}
