package scheduler

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/iqrahapp/iqrah-mobile-sub008/internal/graph"
	"github.com/iqrahapp/iqrah-mobile-sub008/internal/memory"
)

// Candidate is a due or almost-due goal item with its ranking signal.
type Candidate struct {
	Node        graph.Handle
	Urgency     float64
	OverdueDays float64
}

// Candidates partitions a goal's items for one day.
type Candidates struct {
	// Due items, sorted by urgency descending. Includes almost-due
	// items when the lookahead window admits them; those carry a
	// negative OverdueDays.
	Due []Candidate

	// New items in curriculum order: goal members with no memory
	// state yet, waiting on the day's allowance.
	New []graph.Handle
}

// GoalStats are the aggregate signals the gate and the introduction
// policy consume.
type GoalStats struct {
	GoalSize      int
	ActiveCount   int
	DueCount      int
	ClusterEnergy float64
	P90DueAgeDays float64
}

// Selector filters a goal's items into candidate sets.
type Selector struct {
	Graph         *graph.Graph
	Store         memory.Store
	LookaheadDays int
}

// Select walks the goal once, classifying every item and collecting
// the day's aggregate signals. Introduced items are active; active
// items with next_review_at at or before now (or inside the lookahead
// window) are due; items without a memory state are new-eligible.
func (s *Selector) Select(ctx context.Context, userID, goalID string, now time.Time) (Candidates, GoalStats, error) {
	items, err := s.Graph.Goal(goalID)
	if err != nil {
		return Candidates{}, GoalStats{}, err
	}

	var (
		cands    Candidates
		stats    GoalStats
		energies float64
		dueAges  []float64
	)
	stats.GoalSize = len(items)
	lookahead := time.Duration(s.LookaheadDays) * 24 * time.Hour

	for _, h := range items {
		st, err := s.Store.Get(ctx, userID, h)
		if err != nil {
			return Candidates{}, GoalStats{}, fmt.Errorf("scheduler: reading %s: %w", s.Graph.UID(h), err)
		}
		if st == nil || !st.Introduced() {
			cands.New = append(cands.New, h)
			continue
		}

		stats.ActiveCount++
		energies += st.Energy

		if st.NextReviewAt == nil {
			continue
		}
		overdue := now.Sub(*st.NextReviewAt)
		if overdue >= 0 {
			days := overdue.Hours() / 24
			stats.DueCount++
			dueAges = append(dueAges, days)
			cands.Due = append(cands.Due, Candidate{
				Node:        h,
				OverdueDays: days,
				Urgency:     urgency(days, st.Difficulty),
			})
		} else if -overdue <= lookahead {
			days := overdue.Hours() / 24 // negative: not yet due
			cands.Due = append(cands.Due, Candidate{
				Node:        h,
				OverdueDays: days,
				Urgency:     urgency(days, st.Difficulty),
			})
		}
	}

	if stats.ActiveCount == 0 {
		// Empty cluster reads as full strength: bootstrap.
		stats.ClusterEnergy = 1.0
	} else {
		stats.ClusterEnergy = energies / float64(stats.ActiveCount)
	}
	stats.P90DueAgeDays = percentile90(dueAges)

	// Stable sort keeps goal order among equal urgencies, so runs
	// with identical inputs select identical items.
	sort.SliceStable(cands.Due, func(i, j int) bool {
		return cands.Due[i].Urgency > cands.Due[j].Urgency
	})
	return cands, stats, nil
}

// urgency ranks due items: days overdue dominate, with harder items
// pulled forward inside the same day.
func urgency(overdueDays, difficulty float64) float64 {
	return overdueDays + difficulty/10
}

// percentile90 returns the 90th percentile by the nearest-rank
// method, 0 for an empty sample.
func percentile90(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	rank := int(math.Ceil(0.9*float64(len(sorted)))) - 1
	return sorted[rank]
}
