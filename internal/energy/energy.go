// Package energy implements single-hop propagation of recall-strength
// deltas along outgoing graph edges. When a node's energy changes by
// δ, each already-introduced neighbor across an edge of weight w
// receives δ*w. Propagation never recurses: one hop bounds the cost
// and sidesteps feedback loops in a graph that may contain cycles.
package energy

import (
	"context"
	"fmt"
	"sort"

	"github.com/iqrahapp/iqrah-mobile-sub008/internal/graph"
	"github.com/iqrahapp/iqrah-mobile-sub008/internal/memory"
)

// Clamp bounds an energy value to [0, 1].
func Clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// Propagator stages weighted deltas and applies them in one batch.
// Deltas staged for the same neighbor accumulate, and the clamp runs
// once per neighbor at commit, so the order of Stage calls within a
// batch does not affect the result.
type Propagator struct {
	graph   *graph.Graph
	pending map[graph.Handle]float64
}

// NewPropagator creates a propagator over an immutable graph.
func NewPropagator(g *graph.Graph) *Propagator {
	return &Propagator{
		graph:   g,
		pending: make(map[graph.Handle]float64),
	}
}

// Stage records that the source node's energy changed by delta,
// accumulating delta*weight for each outgoing neighbor. Nothing is
// written until Commit.
func (p *Propagator) Stage(source graph.Handle, delta float64) {
	if delta == 0 {
		return
	}
	for _, edge := range p.graph.Outgoing(source) {
		p.pending[edge.Target] += delta * edge.Weight
	}
}

// Commit applies the staged deltas to the user's store and clears the
// batch. Neighbors without a memory state are skipped: un-introduced
// nodes stay untouched until their own first review. Neighbors are
// visited in handle order so repeated runs write identical states.
func (p *Propagator) Commit(ctx context.Context, store memory.Store, userID string) error {
	if len(p.pending) == 0 {
		return nil
	}

	targets := make([]graph.Handle, 0, len(p.pending))
	for h := range p.pending {
		targets = append(targets, h)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i] < targets[j] })

	for _, h := range targets {
		st, err := store.Get(ctx, userID, h)
		if err != nil {
			return fmt.Errorf("energy: reading neighbor %s: %w", p.graph.UID(h), err)
		}
		if st == nil || !st.Introduced() {
			continue
		}
		st.Energy = Clamp(st.Energy + p.pending[h])
		if err := store.Put(ctx, userID, h, *st); err != nil {
			return fmt.Errorf("energy: writing neighbor %s: %w", p.graph.UID(h), err)
		}
	}

	p.pending = make(map[graph.Handle]float64)
	return nil
}

// PendingCount returns the number of neighbors with staged deltas.
func (p *Propagator) PendingCount() int {
	return len(p.pending)
}
