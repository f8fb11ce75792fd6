// Package scheduler decides, for one learner and one goal, which
// items to review today and how many new items to admit. It combines
// the candidate selector, the hysteresis gate, the introduction
// policy, and the session composer into a single day plan, and
// applies graded reviews back onto the memory store.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"sync"
	"time"

	"github.com/iqrahapp/iqrah-mobile-sub008/internal/config"
	"github.com/iqrahapp/iqrah-mobile-sub008/internal/energy"
	"github.com/iqrahapp/iqrah-mobile-sub008/internal/gate"
	"github.com/iqrahapp/iqrah-mobile-sub008/internal/graph"
	"github.com/iqrahapp/iqrah-mobile-sub008/internal/intro"
	"github.com/iqrahapp/iqrah-mobile-sub008/internal/memory"
	"github.com/iqrahapp/iqrah-mobile-sub008/internal/srs"
)

// Stats is the working-set snapshot exposed to callers.
type Stats struct {
	ActiveCount   int        `json:"active_count"`
	ClusterEnergy float64    `json:"cluster_energy"`
	GateState     gate.State `json:"-"`
}

// DayPlan is one day's scheduling decision with every intermediate
// signal the trace records.
type DayPlan struct {
	Session          SessionPlan
	SessionSize      int
	ActiveCount      int
	DueCount         int
	ClusterEnergy    float64
	P90DueAgeDays    float64
	GateState        gate.State
	Reason           gate.BlockReason
	WorkingSetFactor float64
	CapacityUsed     float64
	Allowance        int
}

// Scheduler is the service facade. One instance serves many users;
// gate state is tracked per (user, goal).
type Scheduler struct {
	graph  *graph.Graph
	store  memory.Store
	params config.StudentParams
	update srs.UpdateFunc
	logger *slog.Logger

	mu    sync.Mutex
	gates map[string]*gate.ClusterGate
	rng   *rand.Rand
}

// Option configures a Scheduler.
type Option func(*Scheduler)

// WithUpdateFunc replaces the default spaced-repetition function.
func WithUpdateFunc(fn srs.UpdateFunc) Option {
	return func(s *Scheduler) { s.update = fn }
}

// WithLogger sets the operational logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Scheduler) { s.logger = l }
}

// WithSeed fixes the session-size sampling seed. Simulations use this
// for reproducible runs.
func WithSeed(seed int64) Option {
	return func(s *Scheduler) { s.rng = rand.New(rand.NewSource(seed)) }
}

// New creates a scheduler over an immutable graph and a memory store.
func New(g *graph.Graph, store memory.Store, params config.StudentParams, opts ...Option) *Scheduler {
	s := &Scheduler{
		graph:  g,
		store:  store,
		params: params,
		update: srs.Default(),
		logger: slog.Default(),
		gates:  make(map[string]*gate.ClusterGate),
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Scheduler) gateFor(userID, goalID string) *gate.ClusterGate {
	s.mu.Lock()
	defer s.mu.Unlock()

	key := userID + "\x00" + goalID
	g, ok := s.gates[key]
	if !ok {
		g = gate.New(s.params.ClusterStabilityThreshold, s.params.ClusterGateHysteresis, s.params.BootstrapThreshold)
		s.gates[key] = g
	}
	return g
}

// SampleSessionSize draws the day's session size from the configured
// bounded uniform distribution.
func (s *Scheduler) SampleSessionSize() int {
	lo, hi := s.params.SessionMin, s.params.SessionMax
	if hi <= lo {
		return lo
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return lo + s.rng.Intn(hi-lo+1)
}

// PlanDay computes the full scheduling decision for one day with an
// explicit session size. NextSession wraps it with a sampled size;
// simulations call it directly so the run owns the sampling.
func (s *Scheduler) PlanDay(ctx context.Context, userID, goalID string, now time.Time, sessionSize int) (*DayPlan, error) {
	sel := &Selector{Graph: s.graph, Store: s.store, LookaheadDays: s.params.AlmostDueLookaheadDays}
	cands, stats, err := sel.Select(ctx, userID, goalID, now)
	if err != nil {
		return nil, err
	}

	gt := s.gateFor(userID, goalID)
	gateState := gt.Evaluate(stats.ClusterEnergy, stats.ActiveCount)

	maxWS, capSource := intro.EffectiveWorkingSetCap(
		s.params.MaxWorkingSet, stats.GoalSize, s.params.WorkingSetRatio,
		sessionSize, s.params.TargetReviewsPerActive)

	capacityUsed := 0.0
	if soft := s.params.EffectiveSoftCapacity(); soft > 0 {
		capacityUsed = float64(stats.DueCount) / float64(soft)
	}

	damping, err := intro.DampingByName(s.params.DampingCurve)
	if err != nil {
		return nil, fmt.Errorf("scheduler: %w", err)
	}
	policy := &intro.Policy{
		BatchSize:        s.params.ClusterExpansionBatchSize,
		MinPerDay:        s.params.IntroMinPerDay,
		MaxWorkingSet:    maxWS,
		CapSource:        capSource,
		MaxP90DueAgeDays: s.params.MaxP90DueAgeDays,
		Damping:          damping,
		Logger:           s.logger,
	}
	decision := policy.Evaluate(intro.Inputs{
		GateState:     gateState,
		ActiveCount:   stats.ActiveCount,
		CapacityUsed:  capacityUsed,
		P90DueAgeDays: stats.P90DueAgeDays,
	})

	session := Compose(s.graph, cands, sessionSize, decision.Allowance)

	s.logger.Debug("day planned",
		"user", userID, "goal", goalID,
		"active", stats.ActiveCount, "cluster_energy", stats.ClusterEnergy,
		"gate", gateState.String(), "allowance", decision.Allowance,
		"due_selected", session.DueSelected, "new_selected", session.NewSelected)

	return &DayPlan{
		Session:          session,
		SessionSize:      sessionSize,
		ActiveCount:      stats.ActiveCount,
		DueCount:         stats.DueCount,
		ClusterEnergy:    stats.ClusterEnergy,
		P90DueAgeDays:    stats.P90DueAgeDays,
		GateState:        gateState,
		Reason:           decision.Reason,
		WorkingSetFactor: decision.WorkingSetFactor,
		CapacityUsed:     capacityUsed,
		Allowance:        decision.Allowance,
	}, nil
}

// NextSession returns the day's ordered session items.
func (s *Scheduler) NextSession(ctx context.Context, userID, goalID string, now time.Time) ([]SessionItem, error) {
	plan, err := s.PlanDay(ctx, userID, goalID, now, s.SampleSessionSize())
	if err != nil {
		return nil, err
	}
	return plan.Session.Items, nil
}

// SubmitReview applies a graded review to a node identified by UID.
// Duration is accepted for API symmetry; scheduling does not consume
// it yet.
func (s *Scheduler) SubmitReview(ctx context.Context, userID, nodeUID string, grade srs.Grade, duration time.Duration, now time.Time) (memory.State, error) {
	h, err := s.graph.Lookup(nodeUID)
	if err != nil {
		return memory.State{}, err
	}

	proc := &Processor{Graph: s.graph, Store: s.store, Update: s.update, Deltas: s.params.EnergyDeltas}
	outcome, err := proc.Process(ctx, energy.NewPropagator(s.graph), userID, h, grade, now)
	if err != nil {
		return memory.State{}, err
	}
	return outcome.State, nil
}

// WorkingSetStats reports the goal's active count, cluster energy,
// and current gate position without advancing the gate.
func (s *Scheduler) WorkingSetStats(ctx context.Context, userID, goalID string) (Stats, error) {
	sel := &Selector{Graph: s.graph, Store: s.store, LookaheadDays: s.params.AlmostDueLookaheadDays}
	_, stats, err := sel.Select(ctx, userID, goalID, time.Now().UTC())
	if err != nil {
		return Stats{}, err
	}
	return Stats{
		ActiveCount:   stats.ActiveCount,
		ClusterEnergy: stats.ClusterEnergy,
		GateState:     s.gateFor(userID, goalID).State(),
	}, nil
}

// HasMemoryState reports whether the node has been introduced for the
// user. External exercise evaluation uses it to separate attempted
// items from unavailable ones when computing availability ratios.
func (s *Scheduler) HasMemoryState(ctx context.Context, userID, nodeUID string) (bool, error) {
	h, err := s.graph.Lookup(nodeUID)
	if err != nil {
		return false, err
	}
	return s.store.Has(ctx, userID, h)
}
