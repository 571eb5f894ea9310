// This file adds a lightweight linter for Config values. It performs static
// checks over a loaded Config and returns a list of issues (errors and
// warnings) that callers can surface in a CLI or tests, instead of failing
// piecemeal in the middle of a run.
package config

import (
	"fmt"
	"strings"
)

// IssueSeverity represents the severity of a configuration issue.
type IssueSeverity string

const (
	// SeverityError indicates a configuration error that should block execution.
	SeverityError IssueSeverity = "error"
	// SeverityWarning indicates a configuration warning that should be surfaced
	// to users but does not block execution.
	SeverityWarning IssueSeverity = "warning"
)

// Issue describes a single validation finding.
//
// Path is a dotted path into the config (e.g. "transformation.missing_threshold").
type Issue struct {
	Severity IssueSeverity
	Path     string
	Message  string
}

// Error implements the error interface so an Issue can be treated as a single
// error in contexts that expect one.
func (i Issue) Error() string {
	return fmt.Sprintf("%s at %s: %s", i.Severity, i.Path, i.Message)
}

// knownFormats enumerates the output formats the loader implements. "excel"
// is an accepted alias for xlsx.
var knownFormats = map[string]struct{}{
	"csv": {}, "parquet": {}, "json": {}, "xlsx": {}, "excel": {},
}

// Validate performs static validation of a Config. It does not mutate the
// config; callers decide whether warnings are fatal.
func Validate(cfg *Config) []Issue {
	var issues []Issue

	t := cfg.Transformation
	if t.MissingThreshold < 0 || t.MissingThreshold > 1 {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "transformation.missing_threshold",
			Message:  fmt.Sprintf("must be within [0,1], got %v", t.MissingThreshold),
		})
	}
	if t.PriceMin > t.PriceMax {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "transformation.price_min",
			Message:  fmt.Sprintf("price_min %v exceeds price_max %v", t.PriceMin, t.PriceMax),
		})
	}
	switch strings.ToLower(t.OutlierMethod) {
	case "", "none", "iqr":
	default:
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "transformation.outlier_method",
			Message:  fmt.Sprintf("unknown method %q; expected \"iqr\" or \"none\"", t.OutlierMethod),
		})
	}
	if t.PriceCol != "" && !contains(t.NumericCols, t.PriceCol) {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "transformation.numeric_cols",
			Message:  fmt.Sprintf("price column %q is not listed in numeric_cols; range filtering will not run", t.PriceCol),
		})
	}

	for i, f := range cfg.Loading.OutputFormats {
		if _, ok := knownFormats[strings.ToLower(f)]; !ok {
			issues = append(issues, Issue{
				Severity: SeverityWarning,
				Path:     fmt.Sprintf("loading.output_formats[%d]", i),
				Message:  fmt.Sprintf("unknown format %q will be skipped", f),
			})
		}
	}
	if len(cfg.Loading.OutputFormats) == 0 {
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "loading.output_formats",
			Message:  "no output formats configured; only the latest-copy CSV and side files will be written",
		})
	}

	db := cfg.Loading.Database
	if db.Enabled && strings.TrimSpace(db.ConnectionString) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "loading.database.connection_string",
			Message:  "database persistence is enabled but connection_string is empty",
		})
	}
	if db.Enabled && strings.TrimSpace(db.Table) == "" {
		issues = append(issues, Issue{
			Severity: SeverityError,
			Path:     "loading.database.table",
			Message:  "database persistence is enabled but table is empty",
		})
	}

	switch strings.ToLower(cfg.Logging.Level) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "logging.level",
			Message:  fmt.Sprintf("unknown level %q; falling back to info", cfg.Logging.Level),
		})
	}
	switch strings.ToLower(cfg.Logging.Format) {
	case "", "text", "json":
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "logging.format",
			Message:  fmt.Sprintf("unknown format %q; falling back to text", cfg.Logging.Format),
		})
	}

	switch strings.ToLower(cfg.Metrics.Backend) {
	case "", "none", "pushgateway", "datadog":
	default:
		issues = append(issues, Issue{
			Severity: SeverityWarning,
			Path:     "metrics.backend",
			Message:  fmt.Sprintf("unknown backend %q; metrics will be disabled", cfg.Metrics.Backend),
		})
	}

	return issues
}

// HasErrors reports whether any issue carries error severity.
func HasErrors(issues []Issue) bool {
	for _, i := range issues {
		if i.Severity == SeverityError {
			return true
		}
	}
	return false
}

func contains(ss []string, s string) bool {
	for _, v := range ss {
		if v == s {
			return true
		}
	}
	return false
}
