// Package gate implements the admission control that decides whether
// the working set may grow. A two-state hysteresis machine watches
// the mean energy of the active cluster: only a crossing of
// threshold+hysteresis flips it to Expand, only a crossing of
// threshold-hysteresis flips it back to Consolidate. The dead band
// between the two bounds keeps the gate from flapping when energy
// hovers near the threshold.
package gate

import "fmt"

// State is the gate's position.
type State int

const (
	Consolidate State = iota + 1 // Hold the working set; review what exists.
	Expand                       // The cluster is strong; new items may enter.
)

var stateNames = [...]string{Consolidate: "Consolidate", Expand: "Expand"}

// IsValid reports whether s is a known gate state.
func (s State) IsValid() bool {
	return s == Consolidate || s == Expand
}

// String returns "Consolidate" or "Expand".
func (s State) String() string {
	if s.IsValid() {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// ClusterGate tracks the hysteresis state across days. One instance
// belongs to one (user, goal) pair; simulations own one per run.
type ClusterGate struct {
	Threshold          float64
	Hysteresis         float64
	BootstrapThreshold int

	state State
}

// New creates a gate starting in Consolidate. Threshold and
// hysteresis validity is the config loader's job; the gate assumes
// hysteresis < threshold.
func New(threshold, hysteresis float64, bootstrapThreshold int) *ClusterGate {
	return &ClusterGate{
		Threshold:          threshold,
		Hysteresis:         hysteresis,
		BootstrapThreshold: bootstrapThreshold,
		state:              Consolidate,
	}
}

// ClusterEnergy returns the mean energy over the active cluster.
// An empty cluster reads as 1.0: with nothing to consolidate, the
// learner should be expanding.
func ClusterEnergy(energies []float64) float64 {
	if len(energies) == 0 {
		return 1.0
	}
	var sum float64
	for _, e := range energies {
		sum += e
	}
	return sum / float64(len(energies))
}

// Evaluate advances the machine one step and returns the resulting
// state. Crossing threshold+hysteresis flips to Expand, crossing
// threshold-hysteresis flips to Consolidate; inside the dead band the
// state holds. Bootstrap: a working set smaller than
// BootstrapThreshold forces Expand regardless of energy, so a fresh
// learner is never locked out of their first items.
func (g *ClusterGate) Evaluate(clusterEnergy float64, activeCount int) State {
	if activeCount < g.BootstrapThreshold {
		g.state = Expand
		return g.state
	}

	switch g.state {
	case Expand:
		if clusterEnergy < g.Threshold-g.Hysteresis {
			g.state = Consolidate
		}
	default:
		if clusterEnergy > g.Threshold+g.Hysteresis {
			g.state = Expand
		}
	}
	return g.state
}

// State returns the current position without advancing the machine.
func (g *ClusterGate) State() State {
	return g.state
}
