// Package srs provides the pluggable spaced-repetition update
// function consumed by the review processor. The scheduler treats the
// function as opaque: it owns stability, difficulty, and the next due
// date, nothing else. The default implementation uses compact FSRS
// curves with no interval fuzzing, so simulations stay deterministic.
package srs

import (
	"fmt"
	"math"
	"time"
)

// Result is the outcome of applying a grade to a memory state.
type Result struct {
	Stability    float64
	Difficulty   float64
	NextReviewAt time.Time
}

// UpdateFunc maps (grade, stability, difficulty, review time) to the
// next scheduling state. A zero stability means the node has never
// been reviewed.
type UpdateFunc func(grade Grade, stability, difficulty float64, now time.Time) (Result, error)

const (
	minStability  = 0.001
	minDifficulty = 1.0
	maxDifficulty = 10.0
)

// weights are FSRS v6 default parameters (py-fsrs / fsrs4anki wiki).
// Only the subset the compact scheduler needs.
var weights = [21]float64{
	0.212, 1.2931, 2.3065, 8.2956,
	6.4133, 0.8334, 3.0194, 0.001,
	1.8722, 0.1666, 0.796, 1.4835,
	0.0614, 0.2629, 1.6483, 0.6014,
	1.8729, 0.5425, 0.0912, 0.0658,
	0.1542,
}

// Scheduler holds the retention target and interval ceiling for the
// default update function.
type Scheduler struct {
	DesiredRetention float64
	MaximumInterval  int

	decay  float64
	factor float64
}

// NewScheduler creates a default FSRS-style scheduler. retention must
// be in (0, 1); maxInterval caps the computed interval in days.
func NewScheduler(retention float64, maxInterval int) (*Scheduler, error) {
	if retention <= 0 || retention >= 1 {
		return nil, fmt.Errorf("srs: desired retention %v outside (0, 1)", retention)
	}
	if maxInterval < 1 {
		return nil, fmt.Errorf("srs: maximum interval %d < 1", maxInterval)
	}
	decay := -weights[20]
	return &Scheduler{
		DesiredRetention: retention,
		MaximumInterval:  maxInterval,
		decay:            decay,
		factor:           math.Pow(0.9, 1.0/decay) - 1.0,
	}, nil
}

// Default returns the scheduler used when no UpdateFunc is injected:
// 90% retention, one-year interval cap, no fuzz.
func Default() UpdateFunc {
	s, err := NewScheduler(0.9, 365)
	if err != nil {
		panic(err) // static arguments, cannot fail
	}
	return s.Update
}

// Update applies a grade. First reviews (stability == 0) seed
// stability and difficulty from the grade; later reviews move them
// along the recall/forget curves using elapsed time since stability
// was last set.
func (s *Scheduler) Update(grade Grade, stability, difficulty float64, now time.Time) (Result, error) {
	if !grade.IsValid() {
		return Result{}, fmt.Errorf("%w: %d", ErrInvalidGrade, int(grade))
	}

	var nextS, nextD float64
	if stability == 0 {
		nextS = s.initStability(grade)
		nextD = s.initDifficulty(grade, true)
	} else {
		// Elapsed days are not tracked here; the propagating energy
		// signal carries recency, so retrievability is evaluated at
		// the scheduled horizon.
		r := s.retrievability(float64(s.interval(stability)), stability)
		nextS = s.nextStability(difficulty, stability, r, grade)
		nextD = s.nextDifficulty(difficulty, grade)
	}

	days := s.interval(nextS)
	return Result{
		Stability:    nextS,
		Difficulty:   nextD,
		NextReviewAt: now.AddDate(0, 0, days),
	}, nil
}

// retrievability computes R(t, S) = (1 + factor * t / S) ^ decay.
func (s *Scheduler) retrievability(elapsedDays float64, stability float64) float64 {
	return math.Pow(1+s.factor*elapsedDays/stability, s.decay)
}

func (s *Scheduler) initStability(g Grade) float64 {
	return clampS(weights[g-1])
}

// initDifficulty computes D₀(G) = w[4] - e^(w[5]*(G-1)) + 1.
func (s *Scheduler) initDifficulty(g Grade, clamp bool) float64 {
	d := weights[4] - math.Exp(weights[5]*float64(g-1)) + 1
	if clamp {
		return clampD(d)
	}
	return d
}

// nextDifficulty applies linear damping then mean reversion toward
// D₀(Easy).
func (s *Scheduler) nextDifficulty(difficulty float64, g Grade) float64 {
	deltaD := -weights[6] * (float64(g) - 3)
	dPrime := difficulty + (10-difficulty)*deltaD/9
	d0Easy := s.initDifficulty(Easy, false)
	return clampD(weights[7]*d0Easy + (1-weights[7])*dPrime)
}

func (s *Scheduler) nextStability(d, st, r float64, g Grade) float64 {
	if g == Again {
		return clampS(s.nextForgetStability(d, st, r))
	}
	return clampS(s.nextRecallStability(d, st, r, g))
}

// nextRecallStability:
// S' = S * (1 + e^w[8] * (11-D) * S^(-w[9]) * (e^((1-R)*w[10]) - 1) * hardPenalty * easyBonus)
func (s *Scheduler) nextRecallStability(d, st, r float64, g Grade) float64 {
	hardPenalty := 1.0
	if g == Hard {
		hardPenalty = weights[15]
	}
	easyBonus := 1.0
	if g == Easy {
		easyBonus = weights[16]
	}
	return st * (1 + math.Exp(weights[8])*
		(11-d)*
		math.Pow(st, -weights[9])*
		(math.Exp((1-r)*weights[10])-1)*
		hardPenalty*easyBonus)
}

// nextForgetStability:
// S' = min(w[11] * D^(-w[12]) * ((S+1)^w[13] - 1) * e^((1-R)*w[14]), S / e^(w[17]*w[18]))
func (s *Scheduler) nextForgetStability(d, st, r float64) float64 {
	long := weights[11] *
		math.Pow(d, -weights[12]) *
		(math.Pow(st+1, weights[13]) - 1) *
		math.Exp((1-r)*weights[14])
	short := st / math.Exp(weights[17]*weights[18])
	return math.Min(long, short)
}

// interval computes the next review interval in whole days,
// clamped to [1, MaximumInterval]. Deterministic: no fuzz.
func (s *Scheduler) interval(stability float64) int {
	ivl := stability / s.factor * (math.Pow(s.DesiredRetention, 1.0/s.decay) - 1)
	days := int(math.Round(ivl))
	if days < 1 {
		days = 1
	}
	if days > s.MaximumInterval {
		days = s.MaximumInterval
	}
	return days
}

func clampS(v float64) float64 {
	return math.Max(v, minStability)
}

func clampD(v float64) float64 {
	return math.Min(math.Max(v, minDifficulty), maxDifficulty)
}
