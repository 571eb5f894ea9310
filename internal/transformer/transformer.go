// Package transformer assembles and runs the cleaning and enrichment chain.
// Stages are ordered and fixed; each one takes a Table and returns a Table,
// and the chain as a whole is pure with respect to its input (the transformer
// clones the table before the first stage).
//
// Transformation has no hard failure modes: per-value problems degrade to
// nil, per-row problems remove the row. Given a pinned clock and a fixed
// configuration the chain is deterministic.
package transformer

import (
	"log/slog"
	"time"

	"listingsetl/internal/config"
	"listingsetl/internal/records"
	"listingsetl/internal/transformer/builtin"
)

// Stage is a single transformation step.
type Stage interface {
	Name() string
	Apply(t *records.Table) *records.Table
}

// Chain is an ordered list of stages.
type Chain []Stage

// Apply runs every stage in order.
func (c Chain) Apply(in *records.Table) *records.Table {
	out := in
	for _, s := range c {
		out = s.Apply(out)
	}
	return out
}

// Transformer runs the configured chain over a table.
type Transformer struct {
	chain Chain
	log   *slog.Logger
}

// New builds the standard chain from configuration. now supplies the
// reference time for time-derived features; tests inject a fixed clock.
func New(cfg config.TransformConfig, log *slog.Logger, now func() time.Time) *Transformer {
	if log == nil {
		log = slog.Default()
	}
	if now == nil {
		now = time.Now
	}

	chain := Chain{
		builtin.NormalizeColumns{},
		builtin.DropEmptyRows{},
		builtin.DeDup{},
		builtin.PruneMissing{Threshold: cfg.MissingThreshold},
		builtin.CleanNumeric{
			Columns:  cfg.NumericCols,
			PriceCol: cfg.PriceCol,
			PriceMin: cfg.PriceMin,
			PriceMax: cfg.PriceMax,
			IQRClip:  cfg.OutlierMethod == "iqr",
		},
		builtin.CleanCategorical{Columns: cfg.CategoricalCols},
		builtin.ParseDates{Columns: cfg.DateCols},
		builtin.Features{Requested: cfg.CreateFeatures, Now: now},
	}
	return &Transformer{chain: chain, log: log}
}

// Transform applies the chain to a copy of in and returns the result. The
// argument is never mutated.
func (tr *Transformer) Transform(in *records.Table) *records.Table {
	out := in.Clone()
	for _, s := range tr.chain {
		rows, cols := out.NumRows(), out.NumCols()
		out = s.Apply(out)
		if out.NumRows() != rows || out.NumCols() != cols {
			tr.log.Info("transform stage changed shape",
				"stage", s.Name(),
				"rows_before", rows, "rows_after", out.NumRows(),
				"cols_before", cols, "cols_after", out.NumCols(),
			)
		} else {
			tr.log.Debug("transform stage applied", "stage", s.Name(), "rows", rows, "cols", cols)
		}
	}
	return out
}
