// Package postgres implements a Postgres-backed storage.Repository using pgx
// v5. The load path drops and recreates the destination table, then streams
// rows with the COPY protocol.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"listingsetl/internal/records"
	"listingsetl/internal/storage"
)

// Repository is a Postgres-backed implementation of storage.Repository.
type Repository struct {
	pool *pgxpool.Pool
}

func init() {
	storage.Register("postgres", func(ctx context.Context, cfg storage.Config) (storage.Repository, error) {
		return NewRepository(ctx, cfg.DSN)
	})
}

// NewRepository opens a pgx pool for the given DSN.
func NewRepository(ctx context.Context, dsn string) (*Repository, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgxpool: %w", err)
	}
	return &Repository{pool: pool}, nil
}

// Close implements storage.Repository.Close.
func (r *Repository) Close() { r.pool.Close() }

// Replace drops and recreates the destination table from the source table's
// inferred types, then COPYs every row in.
func (r *Repository) Replace(ctx context.Context, t *records.Table, table string) (int64, error) {
	if len(t.Columns) == 0 {
		return 0, fmt.Errorf("postgres: replace %s: no columns", table)
	}

	conn, err := r.pool.Acquire(ctx)
	if err != nil {
		return 0, fmt.Errorf("postgres: acquire: %w", err)
	}
	defer conn.Release()

	if _, err := conn.Exec(ctx, "DROP TABLE IF EXISTS "+pgFQN(table)); err != nil {
		return 0, fmt.Errorf("postgres: drop %s: %w", table, err)
	}
	if _, err := conn.Exec(ctx, CreateTableSQL(table, t)); err != nil {
		return 0, fmt.Errorf("postgres: create %s: %w", table, err)
	}

	n, err := conn.CopyFrom(ctx, splitFQN(table), t.Columns, pgx.CopyFromRows(storage.RowValues(t)))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Detail != "" {
			return n, fmt.Errorf("postgres: copy into %s: %s (%s)", table, pgErr.Detail, pgErr.SQLState())
		}
		return n, fmt.Errorf("postgres: copy into %s: %w", table, err)
	}
	return n, nil
}

// CreateTableSQL renders the CREATE TABLE statement for the table's inferred
// column types.
func CreateTableSQL(table string, t *records.Table) string {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = pgIdent(c) + " " + columnType(t.InferType(c))
	}
	return fmt.Sprintf("CREATE TABLE %s (%s)", pgFQN(table), strings.Join(cols, ", "))
}

func columnType(ct records.ColumnType) string {
	switch ct {
	case records.TypeInteger:
		return "BIGINT"
	case records.TypeReal:
		return "DOUBLE PRECISION"
	case records.TypeBoolean:
		return "BOOLEAN"
	case records.TypeDate:
		return "TIMESTAMPTZ"
	default:
		return "TEXT"
	}
}

// pgIdent safely quotes a single identifier segment.
func pgIdent(id string) string { return `"` + strings.ReplaceAll(id, `"`, `""`) + `"` }

// pgFQN quotes a possibly schema-qualified name like "public.listings" to
// "public"."listings".
func pgFQN(name string) string {
	parts := strings.Split(name, ".")
	for i, p := range parts {
		parts[i] = pgIdent(p)
	}
	return strings.Join(parts, ".")
}

// splitFQN converts "schema.table" into a pgx.Identifier.
func splitFQN(fqn string) pgx.Identifier {
	parts := strings.Split(fqn, ".")
	id := make(pgx.Identifier, 0, len(parts))
	for _, p := range parts {
		if p != "" {
			id = append(id, p)
		}
	}
	return id
}
