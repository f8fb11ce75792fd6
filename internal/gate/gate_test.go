package gate

import (
	"math"
	"testing"
)

func TestClusterEnergyEmptyIsOne(t *testing.T) {
	if got := ClusterEnergy(nil); got != 1.0 {
		t.Errorf("ClusterEnergy(empty) = %v, want 1.0", got)
	}
}

func TestClusterEnergyMean(t *testing.T) {
	got := ClusterEnergy([]float64{0.2, 0.4, 0.9})
	if math.Abs(got-0.5) > 1e-9 {
		t.Errorf("ClusterEnergy = %v, want 0.5", got)
	}
}

func TestGateStartsConsolidated(t *testing.T) {
	g := New(0.6, 0.1, 0)
	if g.State() != Consolidate {
		t.Errorf("initial state = %v, want Consolidate", g.State())
	}
}

func TestGateFlipsOnlyOutsideDeadBand(t *testing.T) {
	// threshold 0.6, hysteresis 0.1: dead band is [0.5, 0.7].
	g := New(0.6, 0.1, 0)

	if got := g.Evaluate(0.65, 10); got != Consolidate {
		t.Errorf("inside dead band flipped to %v", got)
	}
	if got := g.Evaluate(0.69, 10); got != Consolidate {
		t.Errorf("just below upper bound flipped to %v", got)
	}
	if got := g.Evaluate(0.71, 10); got != Expand {
		t.Errorf("above upper bound: %v, want Expand", got)
	}
	// Back inside the band: Expand holds.
	if got := g.Evaluate(0.55, 10); got != Expand {
		t.Errorf("inside dead band dropped to %v", got)
	}
	if got := g.Evaluate(0.49, 10); got != Consolidate {
		t.Errorf("below lower bound: %v, want Consolidate", got)
	}
}

func TestGateNoFlapAcrossSingleBound(t *testing.T) {
	g := New(0.6, 0.1, 0)
	g.Evaluate(0.75, 10) // Expand

	// Oscillating across the threshold but inside the band never flips.
	states := make(map[State]bool)
	for _, e := range []float64{0.58, 0.63, 0.57, 0.66, 0.52} {
		states[g.Evaluate(e, 10)] = true
	}
	if len(states) != 1 || !states[Expand] {
		t.Errorf("gate flapped inside the dead band: %v", states)
	}
}

func TestGateBootstrapForcesExpand(t *testing.T) {
	g := New(0.6, 0.1, 5)

	// Energy far below the band, but only 3 actives: bootstrap wins.
	if got := g.Evaluate(0.1, 3); got != Expand {
		t.Errorf("bootstrap: %v, want Expand", got)
	}
	// Past the bootstrap threshold the energy rules again.
	if got := g.Evaluate(0.1, 5); got != Consolidate {
		t.Errorf("post-bootstrap low energy: %v, want Consolidate", got)
	}
}

func TestBlockReasonMarshalling(t *testing.T) {
	reasons := []BlockReason{BlockNone, BlockClusterWeak, BlockWorkingSetFull, BlockCapacityExceeded, BlockRateTooLow}
	for _, r := range reasons {
		text, err := r.MarshalText()
		if err != nil {
			t.Fatalf("MarshalText(%v): %v", r, err)
		}
		var back BlockReason
		if err := back.UnmarshalText(text); err != nil {
			t.Fatalf("UnmarshalText(%q): %v", text, err)
		}
		if back != r {
			t.Errorf("round trip %v → %q → %v", r, text, back)
		}
	}

	if BlockNone.Blocked() {
		t.Error("None counts as blocked")
	}
	if !BlockWorkingSetFull.Blocked() {
		t.Error("WorkingSetFull not blocked")
	}
	var r BlockReason
	if err := r.UnmarshalText([]byte("Cosmic")); err == nil {
		t.Error("unknown reason accepted")
	}
}
