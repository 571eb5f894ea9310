// Command etl runs one batch of the listings pipeline: extract a raw CSV or
// ZIP source, clean and enrich it, run the quality gate, and persist the
// result to the configured sinks.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"listingsetl/internal/config"
	"listingsetl/internal/extract"
	"listingsetl/internal/logging"
	"listingsetl/internal/metrics"
	"listingsetl/internal/metrics/datadog"
	"listingsetl/internal/metrics/prompush"
	"listingsetl/internal/pipeline"

	// register all backends with the storage factory; config picks one at
	// runtime.
	_ "listingsetl/internal/storage/all"
)

func main() {
	var (
		source         string
		sourceType     string
		cfgPath        string
		outputDir      string
		validate       bool
		metricsBackend string
		pushgatewayURL string
		statsdAddr     string
	)

	flag.StringVar(&source, "source", "", "path to the raw source (zip archive or csv file)")
	flag.StringVar(&sourceType, "source-type", "auto", "source container type: zip, csv, or auto")
	flag.StringVar(&cfgPath, "config", "", "YAML config path (defaults apply when empty)")
	flag.StringVar(&outputDir, "output-dir", "", "output directory (overrides paths.processed_data)")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	flag.StringVar(&metricsBackend, "metrics-backend", "", "metrics backend: none, pushgateway, datadog (overrides config)")
	flag.StringVar(&pushgatewayURL, "pushgateway-url", "", "Pushgateway base URL (overrides config)")
	flag.StringVar(&statsdAddr, "statsd-addr", "", "DogStatsD address (overrides config)")
	verbose := flag.Bool("v", false, "enable debug logging")
	flag.Parse()

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fatalf("load config: %v", err)
	}
	if *verbose {
		cfg.Logging.Level = "debug"
	}

	issues := config.Validate(cfg)
	for _, iss := range issues {
		fmt.Fprintf(os.Stderr, "%s: %s: %s\n", iss.Severity, iss.Path, iss.Message)
	}
	if config.HasErrors(issues) {
		fatalf("configuration is invalid")
	}
	if validate {
		fmt.Println("configuration is valid")
		return
	}

	if source == "" {
		fatalf("-source is required")
	}

	log, closeLog, err := logging.New(cfg.Logging, cfg.Paths.Logs)
	if err != nil {
		fatalf("init logging: %v", err)
	}
	defer func() {
		if err := closeLog(); err != nil {
			fmt.Fprintf(os.Stderr, "close log: %v\n", err)
		}
	}()

	initMetrics(cfg, metricsBackend, pushgatewayURL, statsdAddr, log)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Warn("metrics flush failed", "error", err)
		}
	}()

	start := time.Now()
	p := pipeline.New(cfg, log, pipeline.Options{})
	tbl, sum, err := p.Run(context.Background(), source, extract.SourceType(sourceType), outputDir)
	if err != nil {
		log.Error("run failed", "error", err)
		fatalf("%v", err)
	}

	fmt.Printf("processed %d rows (%d columns) from %d raw rows in %s; quality_pass=%t outputs=%d\n",
		tbl.NumRows(), tbl.NumCols(), sum.RawRows,
		time.Since(start).Truncate(time.Millisecond), sum.QualityOK, len(sum.Paths))

	if sum.SinkErrors > 0 {
		fmt.Fprintf(os.Stderr, "warning: %d sink errors, see log for details\n", sum.SinkErrors)
	}
}

// initMetrics installs the selected metrics backend. Flags override config;
// unknown or failing backends degrade to the nop default.
func initMetrics(cfg *config.Config, backendFlag, pushURL, statsd string, log *slog.Logger) {
	name := backendFlag
	if name == "" {
		name = cfg.Metrics.Backend
	}
	switch name {
	case "pushgateway":
		url := pushURL
		if url == "" {
			url = cfg.Metrics.PushgatewayURL
		}
		b, err := prompush.NewBackend(cfg.Metrics.Job, url)
		if err != nil {
			log.Warn("metrics backend init failed, using nop", "backend", name, "error", err)
			return
		}
		metrics.SetBackend(b)
		log.Info("metrics enabled", "backend", name, "url", url)

	case "datadog":
		addr := statsd
		if addr == "" {
			addr = cfg.Metrics.StatsdAddr
		}
		b, err := datadog.NewBackend(datadog.Config{Addr: addr, Namespace: "etl."})
		if err != nil {
			log.Warn("metrics backend init failed, using nop", "backend", name, "error", err)
			return
		}
		metrics.SetBackend(b)
		log.Info("metrics enabled", "backend", name, "addr", addr)

	case "", "none":
		// nop backend remains

	default:
		log.Warn("unknown metrics backend, metrics disabled", "backend", name)
	}
}

func fatalf(format string, a ...any) {
	fmt.Fprintf(os.Stderr, format+"\n", a...)
	os.Exit(1)
}
