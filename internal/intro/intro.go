// Package intro computes the day's new-item allowance through a
// staged clamp pipeline. Each stage can only narrow what the previous
// stage allowed, with one deliberate exception: the final floor can
// lift a gate-zeroed allowance back up to intro_min_per_day, and even
// that lift is re-clamped to the hard working-set cap.
package intro

import (
	"log/slog"
	"math"

	"github.com/iqrahapp/iqrah-mobile-sub008/internal/gate"
)

// CapSource identifies which derivation produced the effective
// working-set cap.
type CapSource int

const (
	CapRaw        CapSource = iota + 1 // The configured max_working_set.
	CapGoalRatio                       // ceil(goal_size * working_set_ratio).
	CapThroughput                      // floor(session_size / target_reviews_per_active).
)

// EffectiveWorkingSetCap returns the binding working-set cap: the
// minimum of the raw configured value and the enabled derivations.
// A derivation with a zero or negative parameter is skipped.
func EffectiveWorkingSetCap(raw, goalSize int, ratio float64, sessionSize int, targetReviewsPerActive float64) (int, CapSource) {
	bound := raw
	source := CapRaw

	if ratio > 0 && goalSize > 0 {
		derived := int(math.Ceil(float64(goalSize) * ratio))
		if derived < bound {
			bound = derived
			source = CapGoalRatio
		}
	}
	if targetReviewsPerActive > 0 && sessionSize > 0 {
		derived := int(math.Floor(float64(sessionSize) / targetReviewsPerActive))
		if derived < bound {
			bound = derived
			source = CapThroughput
		}
	}
	return bound, source
}

// Policy computes daily allowances. One instance per (user, goal).
type Policy struct {
	BatchSize        int     // cluster_expansion_batch_size
	MinPerDay        int     // intro_min_per_day floor; 0 disables it
	MaxWorkingSet    int     // hard cap, already reduced by EffectiveWorkingSetCap
	CapSource        CapSource
	MaxP90DueAgeDays float64 // backlog breaker; 0 disables it
	Damping          DampingFunc
	Logger           *slog.Logger
}

// Inputs are the day's observed signals.
type Inputs struct {
	GateState     gate.State
	ActiveCount   int
	CapacityUsed  float64 // maintenance burden over the soft session budget
	P90DueAgeDays float64 // measured p90 due age, for the backlog breaker
}

// Decision is the pipeline's output, with the intermediate signals
// the trace records.
type Decision struct {
	Allowance        int
	Reason           gate.BlockReason
	WorkingSetFactor float64
	FloorSkipped     bool // backlog override disabled the floor today
}

// Evaluate runs the clamp pipeline.
func (p *Policy) Evaluate(in Inputs) Decision {
	// Stage 0: the configured expansion batch.
	stage0 := p.BatchSize

	// Stage 1: soft throttle. Capacity damping models maintenance
	// burden against a soft budget; the working-set factor decays
	// linearly as the set fills.
	wsFactor := 1.0
	if p.MaxWorkingSet > 0 {
		wsFactor = clamp01(1 - float64(in.ActiveCount)/float64(p.MaxWorkingSet))
	}
	damp := 1.0
	if p.Damping != nil {
		damp = p.Damping(in.CapacityUsed)
	}
	stage1 := int(math.Floor(float64(stage0) * damp * wsFactor))

	// Stage 2: hard cap. Never overridden by anything that follows.
	headroom := p.MaxWorkingSet - in.ActiveCount
	if headroom < 0 {
		headroom = 0
	}
	stage2 := min(stage1, headroom)

	// Stage 3: the gate.
	stage3 := stage2
	if in.GateState != gate.Expand {
		stage3 = 0
	}

	// Stage 4: the floor, re-clamped to stage2. The backlog breaker
	// skips the floor when the p90 due age shows the learner is
	// already drowning.
	floorSkipped := false
	final := stage3
	if p.MinPerDay > 0 {
		if p.MaxP90DueAgeDays > 0 && in.P90DueAgeDays > p.MaxP90DueAgeDays {
			floorSkipped = true
		} else {
			final = min(max(stage3, p.MinPerDay), stage2)
		}
	}

	// The pipeline construction makes this unreachable; a hit means
	// the clamps above were edited into an inconsistent state.
	if final > stage2 {
		if p.Logger != nil {
			p.Logger.Error("introduction floor exceeded hard cap, clamping",
				"final", final, "stage2", stage2, "active_count", in.ActiveCount)
		}
		final = stage2
	}

	return Decision{
		Allowance:        final,
		Reason:           p.reason(in, headroom, damp, stage1, final),
		WorkingSetFactor: wsFactor,
		FloorSkipped:     floorSkipped,
	}
}

// reason names the binding constraint when the allowance fell short
// of the configured batch. Precedence: a full working set beats the
// gate, the gate beats capacity damping.
func (p *Policy) reason(in Inputs, headroom int, damp float64, stage1, final int) gate.BlockReason {
	if final >= p.BatchSize {
		return gate.BlockNone
	}
	switch {
	case headroom == 0:
		if p.CapSource == CapThroughput {
			return gate.BlockRateTooLow
		}
		return gate.BlockWorkingSetFull
	case in.GateState != gate.Expand:
		return gate.BlockClusterWeak
	case damp == 0 || stage1 == 0:
		return gate.BlockCapacityExceeded
	default:
		return gate.BlockNone
	}
}
