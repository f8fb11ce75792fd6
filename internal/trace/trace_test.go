package trace

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/iqrahapp/iqrah-mobile-sub008/internal/gate"
)

func sampleRow(day int) Row {
	return Row{
		Day:                day,
		DueReviews:         7,
		ReviewsDone:        9,
		NewIntroduced:      2,
		TotalIntroduced:    10 + day,
		ActiveCount:        10 + day,
		ClusterEnergy:      0.65,
		GateBlocked:        false,
		GateReason:         gate.BlockNone,
		Threshold:          0.6,
		WorkingSetFactor:   0.8,
		CapacityUsed:       0.35,
		SessionSize:        12,
		DueBudget:          10,
		IntroBudget:        2,
		DueSelected:        7,
		NewSelected:        2,
		NewItemsLimitToday: 4,
	}
}

func TestWriterProducesCSVAndReport(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWriter(dir, "baseline", "v1", true)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	for day := 1; day <= 3; day++ {
		if err := w.Append(sampleRow(day)); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	f, err := os.Open(filepath.Join(dir, "baseline-v1.csv"))
	if err != nil {
		t.Fatalf("opening trace: %v", err)
	}
	defer f.Close()

	records, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatalf("reading trace: %v", err)
	}
	if len(records) != 4 {
		t.Fatalf("got %d records, want header + 3 rows", len(records))
	}
	if records[0][0] != "day" || records[0][len(records[0])-1] != "new_items_limit_today" {
		t.Errorf("unexpected header: %v", records[0])
	}
	if records[1][0] != "1" {
		t.Errorf("first row day = %s, want 1", records[1][0])
	}
	if got := len(records[1]); got != len(columns) {
		t.Errorf("row has %d fields, want %d", got, len(columns))
	}

	report, err := os.ReadFile(filepath.Join(dir, "baseline-v1.report.txt"))
	if err != nil {
		t.Fatalf("reading report: %v", err)
	}
	if !strings.Contains(string(report), "days: 3") {
		t.Errorf("report missing day count:\n%s", report)
	}
	if !strings.Contains(string(report), "cluster_energy") {
		t.Errorf("report missing signal stats:\n%s", report)
	}
}

func TestDisabledWriterProducesZeroFiles(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWriter(dir, "baseline", "", false)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if w != nil {
		t.Fatal("disabled writer is not nil")
	}

	// The nil writer accepts the full lifecycle.
	if err := w.Append(sampleRow(1)); err != nil {
		t.Fatalf("nil Append: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("nil Close: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("disabled tracing left %d files in %s", len(entries), dir)
	}
}

func TestReportHistogram(t *testing.T) {
	rows := []Row{
		{GateReason: gate.BlockNone, ClusterEnergy: 0.2},
		{GateReason: gate.BlockClusterWeak, ClusterEnergy: 0.4},
		{GateReason: gate.BlockClusterWeak, ClusterEnergy: 0.9},
	}
	r := NewReport(rows)

	if r.BlockReasons[gate.BlockClusterWeak] != 2 {
		t.Errorf("ClusterWeak count = %d, want 2", r.BlockReasons[gate.BlockClusterWeak])
	}
	if r.BlockReasons[gate.BlockNone] != 1 {
		t.Errorf("None count = %d, want 1", r.BlockReasons[gate.BlockNone])
	}

	s := r.Signals["cluster_energy"]
	if s.Min != 0.2 || s.Max != 0.9 {
		t.Errorf("cluster_energy min/max = %v/%v, want 0.2/0.9", s.Min, s.Max)
	}
	if diff := s.Mean - 0.5; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("cluster_energy mean = %v, want 0.5", s.Mean)
	}
}

func TestWriterWithoutVariant(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWriter(dir, "solo", "", true)
	if err != nil {
		t.Fatalf("NewWriter: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	if _, err := os.Stat(filepath.Join(dir, "solo.csv")); err != nil {
		t.Errorf("solo.csv missing: %v", err)
	}
	if _, err := os.Stat(filepath.Join(dir, "solo.report.txt")); err != nil {
		t.Errorf("solo.report.txt missing: %v", err)
	}
}
