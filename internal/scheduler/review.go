package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/iqrahapp/iqrah-mobile-sub008/internal/config"
	"github.com/iqrahapp/iqrah-mobile-sub008/internal/energy"
	"github.com/iqrahapp/iqrah-mobile-sub008/internal/graph"
	"github.com/iqrahapp/iqrah-mobile-sub008/internal/memory"
	"github.com/iqrahapp/iqrah-mobile-sub008/internal/srs"
)

// ReviewOutcome reports what one review did.
type ReviewOutcome struct {
	State      memory.State
	Introduced bool // this review was the node's first
}

// Processor applies grades to memory states and propagates the
// resulting energy change to graph neighbors.
type Processor struct {
	Graph  *graph.Graph
	Store  memory.Store
	Update srs.UpdateFunc
	Deltas config.EnergyDeltas
}

// delta returns the energy adjustment for a grade.
func (p *Processor) delta(g srs.Grade) (float64, error) {
	switch g {
	case srs.Again:
		return p.Deltas.Again, nil
	case srs.Hard:
		return p.Deltas.Hard, nil
	case srs.Good:
		return p.Deltas.Good, nil
	case srs.Easy:
		return p.Deltas.Easy, nil
	default:
		return 0, fmt.Errorf("%w: %d", srs.ErrInvalidGrade, int(g))
	}
}

// Process applies one graded review. The first review of a node
// creates its memory state (the introduction). The energy delta is
// applied to the node, then pushed one hop to already-introduced
// neighbors through the propagator before the call returns.
func (p *Processor) Process(ctx context.Context, prop *energy.Propagator, userID string, node graph.Handle, grade srs.Grade, now time.Time) (ReviewOutcome, error) {
	d, err := p.delta(grade)
	if err != nil {
		return ReviewOutcome{}, err
	}

	st, err := p.Store.Get(ctx, userID, node)
	if err != nil {
		return ReviewOutcome{}, fmt.Errorf("scheduler: reading %s: %w", p.Graph.UID(node), err)
	}
	introduced := st == nil || !st.Introduced()
	if st == nil {
		st = &memory.State{}
	}

	res, err := p.Update(grade, st.Stability, st.Difficulty, now)
	if err != nil {
		return ReviewOutcome{}, fmt.Errorf("scheduler: updating %s: %w", p.Graph.UID(node), err)
	}

	st.Stability = res.Stability
	st.Difficulty = res.Difficulty
	st.Energy = energy.Clamp(st.Energy + d)
	st.ReviewCount++
	reviewedAt := now
	nextAt := res.NextReviewAt
	st.LastReviewedAt = &reviewedAt
	st.NextReviewAt = &nextAt

	if err := p.Store.Put(ctx, userID, node, *st); err != nil {
		return ReviewOutcome{}, fmt.Errorf("scheduler: writing %s: %w", p.Graph.UID(node), err)
	}

	prop.Stage(node, d)
	if err := prop.Commit(ctx, p.Store, userID); err != nil {
		return ReviewOutcome{}, err
	}

	return ReviewOutcome{State: st.Clone(), Introduced: introduced}, nil
}
