package trace

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/iqrahapp/iqrah-mobile-sub008/internal/gate"
)

// SignalStats holds min/mean/max for one traced signal.
type SignalStats struct {
	Min, Mean, Max float64
}

// Report aggregates a run's rows into the block-reason histogram and
// per-signal statistics used to diagnose backlog explosions and
// stalls.
type Report struct {
	Days         int
	BlockReasons map[gate.BlockReason]int
	Signals      map[string]SignalStats
}

// NewReport computes a report from a run's rows.
func NewReport(rows []Row) *Report {
	r := &Report{
		Days:         len(rows),
		BlockReasons: make(map[gate.BlockReason]int),
		Signals:      make(map[string]SignalStats),
	}

	series := map[string][]float64{}
	for _, row := range rows {
		r.BlockReasons[row.GateReason]++
		series["cluster_energy"] = append(series["cluster_energy"], row.ClusterEnergy)
		series["active_count"] = append(series["active_count"], float64(row.ActiveCount))
		series["due_reviews"] = append(series["due_reviews"], float64(row.DueReviews))
		series["reviews_done"] = append(series["reviews_done"], float64(row.ReviewsDone))
		series["new_selected"] = append(series["new_selected"], float64(row.NewSelected))
		series["session_size"] = append(series["session_size"], float64(row.SessionSize))
		series["capacity_used"] = append(series["capacity_used"], float64(row.CapacityUsed))
	}
	for name, values := range series {
		r.Signals[name] = stats(values)
	}
	return r
}

func stats(values []float64) SignalStats {
	s := SignalStats{Min: math.Inf(1), Max: math.Inf(-1)}
	var sum float64
	for _, v := range values {
		s.Min = math.Min(s.Min, v)
		s.Max = math.Max(s.Max, v)
		sum += v
	}
	if len(values) > 0 {
		s.Mean = sum / float64(len(values))
	} else {
		s.Min, s.Max = 0, 0
	}
	return s
}

// String renders the report as the text file written next to the CSV.
func (r *Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "days: %d\n\n", r.Days)

	b.WriteString("block reasons:\n")
	reasons := make([]gate.BlockReason, 0, len(r.BlockReasons))
	for reason := range r.BlockReasons {
		reasons = append(reasons, reason)
	}
	sort.Slice(reasons, func(i, j int) bool { return reasons[i] < reasons[j] })
	for _, reason := range reasons {
		fmt.Fprintf(&b, "  %-18s %d\n", reason, r.BlockReasons[reason])
	}

	b.WriteString("\nsignals (min / mean / max):\n")
	names := make([]string, 0, len(r.Signals))
	for name := range r.Signals {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s := r.Signals[name]
		fmt.Fprintf(&b, "  %-18s %.4f / %.4f / %.4f\n", name, s.Min, s.Mean, s.Max)
	}
	return b.String()
}
