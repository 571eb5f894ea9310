// Package config defines the typed configuration model for the listings ETL
// job. Every recognized option is an explicit struct field with a YAML tag
// and a documented default; nothing in the pipeline reads configuration
// through string keys.
//
// Loading order: defaults, then the YAML file (when given), then ETL_*
// environment overrides. Validation is a separate lint pass (validate.go)
// that returns issues instead of failing midway through a run.
package config

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the top-level configuration object.
type Config struct {
	Paths          PathsConfig     `yaml:"paths"`
	Extraction     ExtractConfig   `yaml:"extraction"`
	Transformation TransformConfig `yaml:"transformation"`
	Loading        LoadConfig      `yaml:"loading"`
	QualityChecks  QualityConfig   `yaml:"quality_checks"`
	Logging        LoggingConfig   `yaml:"logging"`
	Metrics        MetricsConfig   `yaml:"metrics"`
}

// PathsConfig holds the directories the job reads from and writes to.
type PathsConfig struct {
	// RawData is the staging directory where archive entries are
	// materialized before parsing.
	RawData string `yaml:"raw_data" envconfig:"RAW_DATA"`

	// ProcessedData is the default output directory for all sinks and
	// side files. The CLI -output-dir flag overrides it per run.
	ProcessedData string `yaml:"processed_data" envconfig:"PROCESSED_DATA"`

	// Logs is the directory for run log files when file logging is on.
	Logs string `yaml:"logs" envconfig:"LOGS"`
}

// ExtractConfig controls how the raw source is read.
type ExtractConfig struct {
	// Encoding is the IANA charset name of the tabular source.
	Encoding string `yaml:"encoding" envconfig:"ENCODING"`

	// Compression names the expected container compression ("zip").
	Compression string `yaml:"compression" envconfig:"COMPRESSION"`
}

// TransformConfig parameterizes the cleaning and enrichment stages.
type TransformConfig struct {
	// MissingThreshold is the missing-value fraction above which a whole
	// column is dropped. Must sit in [0,1].
	MissingThreshold float64 `yaml:"missing_threshold" envconfig:"MISSING_THRESHOLD"`

	// NumericCols lists columns coerced to numbers (post-normalization names).
	NumericCols []string `yaml:"numeric_cols"`

	// CategoricalCols lists columns cleaned as free text.
	CategoricalCols []string `yaml:"categorical_cols"`

	// DateCols lists columns parsed as dates.
	DateCols []string `yaml:"date_cols"`

	// OutlierMethod selects numeric outlier handling: "iqr" or "none".
	OutlierMethod string `yaml:"outlier_method" envconfig:"OUTLIER_METHOD"`

	// CreateFeatures gates each derived column by name.
	CreateFeatures []string `yaml:"create_features"`

	// PriceCol names the price-like column that gets range filtering.
	PriceCol string `yaml:"price_col" envconfig:"PRICE_COL"`

	// PriceMin/PriceMax bound the valid price range; rows outside are
	// removed, not capped.
	PriceMin float64 `yaml:"price_min" envconfig:"PRICE_MIN"`
	PriceMax float64 `yaml:"price_max" envconfig:"PRICE_MAX"`

	// IDCol names the primary identifier column used by the quality gate.
	IDCol string `yaml:"id_col" envconfig:"ID_COL"`
}

// LoadConfig selects the output sinks.
type LoadConfig struct {
	// OutputFormats is any subset of: csv, parquet, json, xlsx.
	// Unknown names are skipped with a warning.
	OutputFormats []string `yaml:"output_formats"`

	Database DatabaseConfig `yaml:"database"`
}

// DatabaseConfig enables the optional relational mirror.
type DatabaseConfig struct {
	Enabled          bool   `yaml:"enabled" envconfig:"DB_ENABLED"`
	ConnectionString string `yaml:"connection_string" envconfig:"DB_CONNECTION_STRING"`

	// Table is the destination table name; replaced wholesale each run.
	Table string `yaml:"table" envconfig:"DB_TABLE"`
}

// QualityConfig controls the advisory quality gate.
type QualityConfig struct {
	Enabled bool `yaml:"enabled" envconfig:"QUALITY_ENABLED"`

	// Strict aborts the run before the load phase when the gate fails.
	// The default (false) keeps the gate advisory.
	Strict bool `yaml:"strict" envconfig:"QUALITY_STRICT"`
}

// LoggingConfig configures the run logger.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LOG_LEVEL"`   // debug|info|warn|error
	Format string `yaml:"format" envconfig:"LOG_FORMAT"` // text|json
	Output string `yaml:"output" envconfig:"LOG_OUTPUT"` // stdout|file|both

	// Rotation and Retention are forwarded to the log sink configuration;
	// the core only records them.
	Rotation  string `yaml:"rotation" envconfig:"LOG_ROTATION"`
	Retention string `yaml:"retention" envconfig:"LOG_RETENTION"`
}

// MetricsConfig selects the optional telemetry backend.
type MetricsConfig struct {
	// Backend is one of: none, pushgateway, datadog.
	Backend        string `yaml:"backend" envconfig:"METRICS_BACKEND"`
	PushgatewayURL string `yaml:"pushgateway_url" envconfig:"PUSHGATEWAY_URL"`
	StatsdAddr     string `yaml:"statsd_addr" envconfig:"STATSD_ADDR"`

	// Job labels every metric and names the run in summaries.
	Job string `yaml:"job" envconfig:"METRICS_JOB"`
}

// Default returns the fully-populated default configuration.
func Default() *Config {
	return &Config{
		Paths: PathsConfig{
			RawData:       "data/raw",
			ProcessedData: "data/processed",
			Logs:          "logs",
		},
		Extraction: ExtractConfig{
			Encoding:    "utf-8",
			Compression: "zip",
		},
		Transformation: TransformConfig{
			MissingThreshold: 0.5,
			NumericCols: []string{
				"price", "minimum_nights", "number_of_reviews",
				"reviews_per_month", "calculated_host_listings_count",
				"availability_365",
			},
			CategoricalCols: []string{
				"name", "host_name", "neighbourhood_group",
				"neighbourhood", "room_type",
			},
			DateCols:      []string{"last_review"},
			OutlierMethod: "iqr",
			CreateFeatures: []string{
				"price_per_night", "has_availability",
				"days_since_last_review", "is_superhost",
			},
			PriceCol: "price",
			PriceMin: 0,
			PriceMax: 10000,
			IDCol:    "id",
		},
		Loading: LoadConfig{
			OutputFormats: []string{"csv", "parquet", "json"},
			Database: DatabaseConfig{
				Enabled: false,
				Table:   "listings_processed",
			},
		},
		QualityChecks: QualityConfig{Enabled: true, Strict: false},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stdout",
		},
		Metrics: MetricsConfig{
			Backend: "none",
			Job:     "listings_etl",
		},
	}
}

// Load builds a Config from defaults, the YAML file at path (optional; empty
// path skips the file), and ETL_* environment overrides, in that order.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if err := envconfig.Process("etl", cfg); err != nil {
		return nil, fmt.Errorf("apply env overrides: %w", err)
	}
	return cfg, nil
}
