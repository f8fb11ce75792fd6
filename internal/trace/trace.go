// Package trace records per-day scheduler signals from simulation
// runs. A Writer owns one CSV file per run plus a generated summary
// report; a nil Writer is safe to use and produces no files, which is
// how disabled tracing is expressed everywhere.
package trace

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/iqrahapp/iqrah-mobile-sub008/internal/gate"
)

// Row captures one simulated day.
type Row struct {
	Day                int
	DueReviews         int
	ReviewsDone        int
	NewIntroduced      int
	TotalIntroduced    int
	ActiveCount        int
	ClusterEnergy      float64
	GateBlocked        bool
	GateReason         gate.BlockReason
	Threshold          float64
	WorkingSetFactor   float64
	CapacityUsed       float64
	SessionSize        int
	DueBudget          int
	IntroBudget        int
	DueSelected        int
	NewSelected        int
	NewItemsLimitToday int
}

var columns = []string{
	"day", "due_reviews", "reviews_done", "new_introduced",
	"total_introduced", "active_count", "cluster_energy", "gate_blocked",
	"gate_reason", "threshold", "working_set_factor", "capacity_used",
	"session_size", "due_budget", "intro_budget", "due_selected",
	"new_selected", "new_items_limit_today",
}

func (r Row) record() []string {
	return []string{
		strconv.Itoa(r.Day),
		strconv.Itoa(r.DueReviews),
		strconv.Itoa(r.ReviewsDone),
		strconv.Itoa(r.NewIntroduced),
		strconv.Itoa(r.TotalIntroduced),
		strconv.Itoa(r.ActiveCount),
		formatFloat(r.ClusterEnergy),
		strconv.FormatBool(r.GateBlocked),
		r.GateReason.String(),
		formatFloat(r.Threshold),
		formatFloat(r.WorkingSetFactor),
		formatFloat(r.CapacityUsed),
		strconv.Itoa(r.SessionSize),
		strconv.Itoa(r.DueBudget),
		strconv.Itoa(r.IntroBudget),
		strconv.Itoa(r.DueSelected),
		strconv.Itoa(r.NewSelected),
		strconv.Itoa(r.NewItemsLimitToday),
	}
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

// Writer appends rows to <dir>/<scenario>[-<variant>].csv and, on
// Close, writes <scenario>[-<variant>].report.txt next to it. A nil
// Writer is a no-op: every method checks the receiver, so callers
// never branch on whether tracing is enabled.
type Writer struct {
	file *os.File
	csv  *csv.Writer
	base string
	rows []Row
}

// NewWriter opens a trace file for one run. Variant may be empty.
// When enabled is false it returns nil, and the nil Writer guarantees
// zero files on disk.
func NewWriter(dir, scenario, variant string, enabled bool) (*Writer, error) {
	if !enabled {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("trace: create dir: %w", err)
	}

	name := scenario
	if variant != "" {
		name = scenario + "-" + variant
	}
	base := filepath.Join(dir, name)

	f, err := os.Create(base + ".csv")
	if err != nil {
		return nil, fmt.Errorf("trace: create file: %w", err)
	}
	w := &Writer{file: f, csv: csv.NewWriter(f), base: base}
	if err := w.csv.Write(columns); err != nil {
		f.Close()
		return nil, fmt.Errorf("trace: write header: %w", err)
	}
	return w, nil
}

// Append writes one day's row. Nil-safe.
func (w *Writer) Append(r Row) error {
	if w == nil {
		return nil
	}
	w.rows = append(w.rows, r)
	if err := w.csv.Write(r.record()); err != nil {
		return fmt.Errorf("trace: write row: %w", err)
	}
	return nil
}

// Close flushes the CSV and writes the summary report. Nil-safe.
func (w *Writer) Close() error {
	if w == nil {
		return nil
	}
	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		w.file.Close()
		return fmt.Errorf("trace: flush: %w", err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("trace: close: %w", err)
	}

	report := NewReport(w.rows)
	if err := os.WriteFile(w.base+".report.txt", []byte(report.String()), 0o644); err != nil {
		return fmt.Errorf("trace: write report: %w", err)
	}
	return nil
}
