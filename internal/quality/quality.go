// Package quality implements the post-transformation data quality gate. The
// gate inspects the cleaned table and reports findings; it never mutates the
// table and never returns an error. Whether a failing report aborts the run
// is the orchestrator's decision.
package quality

import (
	"fmt"
	"log/slog"
	"time"

	"listingsetl/internal/config"
	"listingsetl/internal/records"
)

// Finding severities. Failures flip Report.Pass; warnings never do.
const (
	SeverityFailure = "failure"
	SeverityWarning = "warning"
)

// Finding is a single quality observation.
type Finding struct {
	Check    string
	Severity string
	Column   string
	Count    int
	Message  string
}

// Report is the outcome of one gate evaluation.
type Report struct {
	Pass     bool
	Findings []Finding
}

// Failures returns only the failure-severity findings.
func (r *Report) Failures() []Finding {
	var out []Finding
	for _, f := range r.Findings {
		if f.Severity == SeverityFailure {
			out = append(out, f)
		}
	}
	return out
}

// Checker evaluates a fixed set of checks against a table.
type Checker struct {
	cfg      config.QualityConfig
	idCol    string
	priceCol string
	log      *slog.Logger
	now      func() time.Time
}

// New builds a checker. idCol and priceCol come from the transformation
// config so the gate checks the same columns the cleaner produced. now
// supplies the reference time for the temporal check.
func New(cfg config.QualityConfig, idCol, priceCol string, log *slog.Logger, now func() time.Time) *Checker {
	if log == nil {
		log = slog.Default()
	}
	if now == nil {
		now = time.Now
	}
	return &Checker{cfg: cfg, idCol: idCol, priceCol: priceCol, log: log, now: now}
}

// Check runs every enabled check and returns the combined report. A disabled
// gate passes unconditionally with no findings.
func (c *Checker) Check(t *records.Table) *Report {
	rep := &Report{Pass: true}
	if !c.cfg.Enabled {
		return rep
	}

	c.checkIdentity(t, rep)
	c.checkPriceRange(t, rep)
	c.checkTemporal(t, rep)

	for _, f := range rep.Findings {
		if f.Severity == SeverityFailure {
			rep.Pass = false
		}
	}

	for _, f := range rep.Findings {
		c.log.Warn("quality finding",
			"check", f.Check, "severity", f.Severity,
			"column", f.Column, "count", f.Count, "message", f.Message,
		)
	}
	return rep
}

// checkIdentity flags rows whose identifier is missing. Each check applies
// only when its column survived the cleaning stages; a table without the
// identifier column (pruned, or never present) is not checked.
func (c *Checker) checkIdentity(t *records.Table, rep *Report) {
	if !t.HasColumn(c.idCol) {
		c.log.Debug("identity check skipped, column absent", "column", c.idCol)
		return
	}
	n := 0
	for _, r := range t.Rows {
		if v, ok := r[c.idCol]; !ok || v == nil {
			n++
		}
	}
	if n > 0 {
		rep.Findings = append(rep.Findings, Finding{
			Check:    "identity",
			Severity: SeverityFailure,
			Column:   c.idCol,
			Count:    n,
			Message:  fmt.Sprintf("%d rows with missing %s", n, c.idCol),
		})
	}
}

// checkPriceRange flags negative prices. The cleaner should have removed
// them already; a hit here means a stage upstream regressed.
func (c *Checker) checkPriceRange(t *records.Table, rep *Report) {
	if !t.HasColumn(c.priceCol) {
		return
	}
	n := 0
	for _, r := range t.Rows {
		if f, ok := r[c.priceCol].(float64); ok && f < 0 {
			n++
		}
	}
	if n > 0 {
		rep.Findings = append(rep.Findings, Finding{
			Check:    "price_range",
			Severity: SeverityFailure,
			Column:   c.priceCol,
			Count:    n,
			Message:  fmt.Sprintf("%d rows with negative %s", n, c.priceCol),
		})
	}
}

// checkTemporal flags date values after the reference time, per column.
func (c *Checker) checkTemporal(t *records.Table, rep *Report) {
	now := c.now()
	for _, col := range t.Columns {
		n := 0
		for _, r := range t.Rows {
			if ts, ok := r[col].(time.Time); ok && ts.After(now) {
				n++
			}
		}
		if n > 0 {
			rep.Findings = append(rep.Findings, Finding{
				Check:    "temporal",
				Severity: SeverityWarning,
				Column:   col,
				Count:    n,
				Message:  fmt.Sprintf("%d future dates in %s", n, col),
			})
		}
	}
}
