package quality

import (
	"testing"
	"time"

	"listingsetl/internal/config"
	"listingsetl/internal/records"
)

func gateClock() time.Time {
	return time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
}

func enabled() config.QualityConfig {
	return config.QualityConfig{Enabled: true}
}

func TestCheckPassesCleanTable(t *testing.T) {
	t.Parallel()

	tbl := records.New([]string{"id", "price"})
	tbl.Rows = []records.Record{
		{"id": "1", "price": 100.0},
		{"id": "2", "price": 250.0},
	}

	rep := New(enabled(), "id", "price", nil, gateClock).Check(tbl)

	if !rep.Pass || len(rep.Findings) != 0 {
		t.Fatalf("clean table: pass=%v findings=%v", rep.Pass, rep.Findings)
	}
}

func TestCheckNullIdentifierFails(t *testing.T) {
	t.Parallel()

	tbl := records.New([]string{"id", "price"})
	tbl.Rows = []records.Record{
		{"id": "1", "price": 100.0},
		{"id": nil, "price": 90.0},
		{"price": 80.0},
	}

	rep := New(enabled(), "id", "price", nil, gateClock).Check(tbl)

	if rep.Pass {
		t.Fatalf("null identifiers must fail the gate")
	}
	fails := rep.Failures()
	if len(fails) != 1 || fails[0].Check != "identity" || fails[0].Count != 2 {
		t.Fatalf("failures = %+v", fails)
	}
}

func TestCheckNegativePriceFails(t *testing.T) {
	t.Parallel()

	tbl := records.New([]string{"id", "price"})
	tbl.Rows = []records.Record{
		{"id": "1", "price": -5.0},
	}

	rep := New(enabled(), "id", "price", nil, gateClock).Check(tbl)

	if rep.Pass {
		t.Fatalf("negative price must fail the gate")
	}
	fails := rep.Failures()
	if len(fails) != 1 || fails[0].Check != "price_range" {
		t.Fatalf("failures = %+v", fails)
	}
}

func TestCheckFutureDateWarnsOnly(t *testing.T) {
	t.Parallel()

	tbl := records.New([]string{"id", "last_review"})
	tbl.Rows = []records.Record{
		{"id": "1", "last_review": time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC)},
	}

	rep := New(enabled(), "id", "price", nil, gateClock).Check(tbl)

	if !rep.Pass {
		t.Fatalf("warnings must not affect pass: %+v", rep.Findings)
	}
	if len(rep.Findings) != 1 || rep.Findings[0].Severity != SeverityWarning {
		t.Fatalf("findings = %+v", rep.Findings)
	}
}

func TestCheckMissingIdentifierColumnSkipped(t *testing.T) {
	t.Parallel()

	tbl := records.New([]string{"price"})
	tbl.Rows = []records.Record{{"price": 10.0}}

	rep := New(enabled(), "id", "price", nil, gateClock).Check(tbl)

	if !rep.Pass || len(rep.Findings) != 0 {
		t.Fatalf("identity check must be skipped when the column is absent: pass=%v findings=%+v",
			rep.Pass, rep.Findings)
	}
}

func TestCheckDisabled(t *testing.T) {
	t.Parallel()

	tbl := records.New([]string{"id"})
	tbl.Rows = []records.Record{{"id": nil}}

	rep := New(config.QualityConfig{Enabled: false}, "id", "price", nil, gateClock).Check(tbl)

	if !rep.Pass || len(rep.Findings) != 0 {
		t.Fatalf("disabled gate must pass with no findings")
	}
}
