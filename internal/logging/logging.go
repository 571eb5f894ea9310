// Package logging builds the run logger. The logger is an explicit handle
// passed into pipeline construction rather than a process-global singleton:
// New returns the logger together with a closer that flushes and closes the
// underlying log file at the end of the run.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"listingsetl/internal/config"
)

// New constructs a slog.Logger per the logging configuration. The returned
// closer is always non-nil and must be called once the run finishes; it is a
// no-op for stdout-only logging.
func New(cfg config.LoggingConfig, logDir string) (*slog.Logger, func() error, error) {
	level := parseLevel(cfg.Level)
	opts := &slog.HandlerOptions{Level: level}

	var (
		out     io.Writer = os.Stdout
		logFile *os.File
	)

	switch strings.ToLower(cfg.Output) {
	case "file", "both":
		f, err := openLogFile(logDir)
		if err != nil {
			return nil, nil, err
		}
		logFile = f
		if strings.ToLower(cfg.Output) == "both" {
			out = io.MultiWriter(os.Stdout, f)
		} else {
			out = f
		}
	default:
		// stdout only
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "json" {
		handler = slog.NewJSONHandler(out, opts)
	} else {
		handler = slog.NewTextHandler(out, opts)
	}

	closer := func() error {
		if logFile != nil {
			if err := logFile.Sync(); err != nil {
				logFile.Close()
				return err
			}
			return logFile.Close()
		}
		return nil
	}
	return slog.New(handler), closer, nil
}

// openLogFile creates the log directory if needed and opens a per-run log
// file named by start time.
func openLogFile(dir string) (*os.File, error) {
	if dir == "" {
		dir = "logs"
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir %s: %w", dir, err)
	}
	name := fmt.Sprintf("etl_%s.log", time.Now().Format("20060102_150405"))
	f, err := os.OpenFile(filepath.Join(dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	return f, nil
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
