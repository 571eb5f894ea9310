// Package pipeline orchestrates one batch run: extract, transform, quality
// gate, persist, summary. Phases run synchronously in a fixed order; each is
// timed and recorded against the metrics backend.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"listingsetl/internal/config"
	"listingsetl/internal/extract"
	"listingsetl/internal/load"
	"listingsetl/internal/metrics"
	"listingsetl/internal/quality"
	"listingsetl/internal/records"
	"listingsetl/internal/transformer"
)

// ErrQualityGate is returned when the gate fails and strict mode is on.
var ErrQualityGate = errors.New("quality gate failed")

// Summary captures everything a run produced, for logging and the side file.
type Summary struct {
	Job      string
	Started  time.Time
	Finished time.Time

	RawRows    int
	RawCols    int
	FinalRows  int
	FinalCols  int
	DBRows     int64
	Phases     map[string]time.Duration
	QualityOK  bool
	Findings   int
	Paths      []string
	SinkErrors int
}

// Pipeline wires the phase components together.
type Pipeline struct {
	cfg     *config.Config
	log     *slog.Logger
	now     func() time.Time
	extract *extract.Extractor
	trans   *transformer.Transformer
	gate    *quality.Checker
	loader  *load.Loader
}

// Options carries optional pipeline dependencies; zero value is fine.
type Options struct {
	// Clock overrides time.Now for deterministic runs.
	Clock func() time.Time
}

// New builds a pipeline from configuration.
func New(cfg *config.Config, log *slog.Logger, opt Options) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	now := opt.Clock
	if now == nil {
		now = time.Now
	}
	tc := cfg.Transformation
	return &Pipeline{
		cfg:     cfg,
		log:     log,
		now:     now,
		extract: extract.New(cfg.Extraction, cfg.Paths.RawData, log),
		trans:   transformer.New(tc, log, now),
		gate:    quality.New(cfg.QualityChecks, tc.IDCol, tc.PriceCol, log, now),
		loader:  load.New(cfg.Loading, log, now),
	}
}

// Run executes one batch run end to end. outputDir overrides the configured
// processed-data directory when non-empty. The returned table is the final
// processed data; the summary is populated even when persistence partially
// failed.
func (p *Pipeline) Run(ctx context.Context, source string, sourceType extract.SourceType, outputDir string) (*records.Table, *Summary, error) {
	job := p.cfg.Metrics.Job
	sum := &Summary{
		Job:     job,
		Started: p.now(),
		Phases:  map[string]time.Duration{},
	}

	dir := outputDir
	if dir == "" {
		dir = p.cfg.Paths.ProcessedData
	}

	p.log.Info("run starting", "source", source, "output_dir", dir)

	// Extract.
	start := p.now()
	raw, err := p.extract.Extract(ctx, source, sourceType)
	sum.Phases["extract"] = p.now().Sub(start)
	metrics.RecordPhase(job, "extract", err, sum.Phases["extract"])
	if err != nil {
		return nil, sum, fmt.Errorf("extract: %w", err)
	}
	sum.RawRows, sum.RawCols = raw.NumRows(), raw.NumCols()
	metrics.RecordRows(job, "extracted", int64(sum.RawRows))

	// Transform.
	start = p.now()
	processed := p.trans.Transform(raw)
	sum.Phases["transform"] = p.now().Sub(start)
	metrics.RecordPhase(job, "transform", nil, sum.Phases["transform"])
	sum.FinalRows, sum.FinalCols = processed.NumRows(), processed.NumCols()
	metrics.RecordRows(job, "processed", int64(sum.FinalRows))

	// Quality gate.
	start = p.now()
	rep := p.gate.Check(processed)
	sum.Phases["quality"] = p.now().Sub(start)
	sum.QualityOK = rep.Pass
	sum.Findings = len(rep.Findings)
	var gateErr error
	if !rep.Pass && p.cfg.QualityChecks.Strict {
		gateErr = ErrQualityGate
	}
	metrics.RecordPhase(job, "quality", gateErr, sum.Phases["quality"])
	if gateErr != nil {
		sum.Finished = p.now()
		return processed, sum, fmt.Errorf("%w: %d findings", gateErr, len(rep.Failures()))
	}

	// Persist.
	start = p.now()
	res := p.loader.Persist(ctx, processed, dir, "listings_processed")
	sum.Phases["load"] = p.now().Sub(start)
	var loadErr error
	if len(res.Failures) > 0 {
		loadErr = errors.Join(res.Failures...)
	}
	metrics.RecordPhase(job, "load", loadErr, sum.Phases["load"])
	metrics.RecordRows(job, "db_inserted", res.DBRows)
	sum.Paths = res.Paths
	sum.SinkErrors = len(res.Failures)
	sum.DBRows = res.DBRows

	sum.Finished = p.now()

	if path, err := p.writeSummary(sum, dir); err != nil {
		p.log.Error("summary write failed", "error", err)
	} else {
		sum.Paths = append(sum.Paths, path)
	}

	p.log.Info("run complete",
		"raw_rows", sum.RawRows, "final_rows", sum.FinalRows,
		"quality_pass", sum.QualityOK, "outputs", len(sum.Paths),
		"sink_errors", sum.SinkErrors,
	)
	return processed, sum, nil
}

// writeSummary renders the run summary as a key: value side file next to the
// outputs.
func (p *Pipeline) writeSummary(sum *Summary, dir string) (string, error) {
	ts := sum.Started.Format("20060102_150405")
	path := filepath.Join(dir, "summary_"+ts+".txt")

	var b strings.Builder
	fmt.Fprintf(&b, "job: %s\n", sum.Job)
	fmt.Fprintf(&b, "started: %s\n", sum.Started.Format(time.RFC3339))
	fmt.Fprintf(&b, "finished: %s\n", sum.Finished.Format(time.RFC3339))
	fmt.Fprintf(&b, "duration: %s\n", sum.Finished.Sub(sum.Started))
	fmt.Fprintf(&b, "raw_rows: %d\n", sum.RawRows)
	fmt.Fprintf(&b, "raw_columns: %d\n", sum.RawCols)
	fmt.Fprintf(&b, "final_rows: %d\n", sum.FinalRows)
	fmt.Fprintf(&b, "final_columns: %d\n", sum.FinalCols)
	fmt.Fprintf(&b, "quality_pass: %t\n", sum.QualityOK)
	fmt.Fprintf(&b, "quality_findings: %d\n", sum.Findings)
	fmt.Fprintf(&b, "db_rows: %d\n", sum.DBRows)
	fmt.Fprintf(&b, "sink_errors: %d\n", sum.SinkErrors)
	for _, phase := range []string{"extract", "transform", "quality", "load"} {
		if d, ok := sum.Phases[phase]; ok {
			fmt.Fprintf(&b, "phase.%s: %s\n", phase, d)
		}
	}
	for _, p := range sum.Paths {
		fmt.Fprintf(&b, "output: %s\n", p)
	}

	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", err
	}
	return path, nil
}
