package sim

import (
	"context"
	"testing"

	"github.com/iqrahapp/iqrah-mobile-sub008/internal/gate"
	"github.com/iqrahapp/iqrah-mobile-sub008/internal/graph"
	"github.com/iqrahapp/iqrah-mobile-sub008/internal/memory"
)

// AssertActiveCountNonDecreasing asserts that the working set never
// shrinks: memory states are created on introduction and never
// deleted.
func AssertActiveCountNonDecreasing(t *testing.T, result *Result) {
	t.Helper()
	prev := 0
	for _, row := range result.Rows {
		if row.ActiveCount < prev {
			t.Errorf("AssertActiveCountNonDecreasing: day %d: active_count %d < previous %d", row.Day, row.ActiveCount, prev)
		}
		prev = row.ActiveCount
	}
}

// AssertIntroducedWithinActive asserts total_introduced never exceeds
// active_count.
func AssertIntroducedWithinActive(t *testing.T, result *Result) {
	t.Helper()
	for _, row := range result.Rows {
		if row.TotalIntroduced > row.ActiveCount {
			t.Errorf("AssertIntroducedWithinActive: day %d: total_introduced %d > active_count %d", row.Day, row.TotalIntroduced, row.ActiveCount)
		}
	}
}

// AssertHardCapNeverExceeded asserts the chain
// new_selected ≤ new_items_limit_today ≤ maxWorkingSet − active(t−1)
// holds on every day, floor included.
func AssertHardCapNeverExceeded(t *testing.T, result *Result, maxWorkingSet int) {
	t.Helper()
	prevActive := 0
	for _, row := range result.Rows {
		if row.NewSelected > row.NewItemsLimitToday {
			t.Errorf("AssertHardCapNeverExceeded: day %d: new_selected %d > limit %d", row.Day, row.NewSelected, row.NewItemsLimitToday)
		}
		if headroom := maxWorkingSet - prevActive; row.NewItemsLimitToday > headroom {
			t.Errorf("AssertHardCapNeverExceeded: day %d: limit %d > headroom %d", row.Day, row.NewItemsLimitToday, headroom)
		}
		prevActive = row.ActiveCount
	}
}

// AssertNoIntroductionsWhileConsolidating asserts that with no floor
// configured, Consolidate days admit nothing.
func AssertNoIntroductionsWhileConsolidating(t *testing.T, result *Result) {
	t.Helper()
	for _, row := range result.Rows {
		if row.GateReason == gate.BlockClusterWeak && row.NewSelected != 0 {
			t.Errorf("AssertNoIntroductionsWhileConsolidating: day %d: %d items admitted", row.Day, row.NewSelected)
		}
	}
}

// AssertReviewsWithinSession asserts reviews_done equals
// due_selected+new_selected and never exceeds session_size.
func AssertReviewsWithinSession(t *testing.T, result *Result) {
	t.Helper()
	for _, row := range result.Rows {
		if row.ReviewsDone != row.DueSelected+row.NewSelected {
			t.Errorf("AssertReviewsWithinSession: day %d: reviews_done %d != %d+%d", row.Day, row.ReviewsDone, row.DueSelected, row.NewSelected)
		}
		if row.ReviewsDone > row.SessionSize {
			t.Errorf("AssertReviewsWithinSession: day %d: reviews_done %d > session_size %d", row.Day, row.ReviewsDone, row.SessionSize)
		}
	}
}

// AssertEnergiesBounded asserts every stored energy stays in [0, 1]
// after all propagation.
func AssertEnergiesBounded(t *testing.T, result *Result, userID string) {
	t.Helper()
	err := result.Store.ForEach(context.Background(), userID, func(node graph.Handle, st memory.State) error {
		if st.Energy < 0 || st.Energy > 1 {
			t.Errorf("AssertEnergiesBounded: node %d energy %v outside [0, 1]", node, st.Energy)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("AssertEnergiesBounded: %v", err)
	}
}

// AssertGateNeverFlapsInDeadBand asserts the gate position changes
// only when cluster energy has crossed outside the dead band.
func AssertGateNeverFlapsInDeadBand(t *testing.T, result *Result, threshold, hysteresis float64, bootstrapThreshold int) {
	t.Helper()
	var prevBlocked *bool
	for _, row := range result.Rows {
		if row.ActiveCount < bootstrapThreshold {
			prevBlocked = nil // bootstrap days force Expand
			continue
		}
		blocked := row.GateReason == gate.BlockClusterWeak
		if prevBlocked != nil && blocked != *prevBlocked {
			inBand := row.ClusterEnergy >= threshold-hysteresis && row.ClusterEnergy <= threshold+hysteresis
			if inBand {
				t.Errorf("AssertGateNeverFlapsInDeadBand: day %d: gate flipped at energy %.4f inside [%.4f, %.4f]",
					row.Day, row.ClusterEnergy, threshold-hysteresis, threshold+hysteresis)
			}
		}
		b := blocked
		prevBlocked = &b
	}
}
