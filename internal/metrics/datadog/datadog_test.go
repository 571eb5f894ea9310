package datadog

import (
	"reflect"
	"testing"

	"listingsetl/internal/metrics"
)

func TestNewBackendRequiresAddr(t *testing.T) {
	t.Parallel()

	if _, err := NewBackend(Config{}); err == nil {
		t.Fatalf("empty Addr must be rejected")
	}
}

func TestStatsdName(t *testing.T) {
	t.Parallel()

	cases := map[string]string{
		"etl_phase_total":            "phase.runs",
		"etl_phase_duration_seconds": "phase.duration",
		"etl_rows_total":             "rows",
		"something_else":             "something_else",
	}
	for in, want := range cases {
		if got := statsdName(in); got != want {
			t.Errorf("statsdName(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLabelsToTags(t *testing.T) {
	t.Parallel()

	if got := labelsToTags(nil); got != nil {
		t.Fatalf("nil labels: tags = %v, want nil", got)
	}
	got := labelsToTags(metrics.Labels{"phase": "extract"})
	if !reflect.DeepEqual(got, []string{"phase:extract"}) {
		t.Fatalf("tags = %v", got)
	}
}

func TestNilClientIsNoop(t *testing.T) {
	t.Parallel()

	var b Backend
	b.IncCounter("etl_rows_total", 1, nil)
	b.ObserveHistogram("etl_phase_duration_seconds", 0.5, nil)
	if err := b.Flush(); err != nil {
		t.Fatalf("Flush on zero backend: %v", err)
	}
}
