package sim

import (
	"math/rand"

	"github.com/iqrahapp/iqrah-mobile-sub008/internal/memory"
	"github.com/iqrahapp/iqrah-mobile-sub008/internal/srs"
)

// Learner is the pluggable synthetic-grading model. It receives the
// run's RNG so grading consumes the shared deterministic stream.
type Learner interface {
	Grade(day int, uid string, st memory.State, rng *rand.Rand) srs.Grade
}

// ProfileLearner grades probabilistically from the node's energy:
// recall probability is BaseRecall + EnergyBoost*energy, successes
// split between Good and Easy by EasyBias.
type ProfileLearner struct {
	BaseRecall  float64
	EnergyBoost float64
	EasyBias    float64
}

// Grade implements Learner.
func (l ProfileLearner) Grade(day int, uid string, st memory.State, rng *rand.Rand) srs.Grade {
	p := l.BaseRecall + l.EnergyBoost*st.Energy
	if p < 0 {
		p = 0
	}
	if p > 1 {
		p = 1
	}
	if rng.Float64() > p {
		return srs.Again
	}
	if rng.Float64() < l.EasyBias {
		return srs.Easy
	}
	return srs.Good
}

// SteadyLearner models a reliable student: high base recall, modest
// energy sensitivity.
func SteadyLearner() Learner {
	return ProfileLearner{BaseRecall: 0.75, EnergyBoost: 0.2, EasyBias: 0.3}
}

// StrugglingLearner models a student who forgets most weak items,
// the profile that historically produced death spirals.
func StrugglingLearner() Learner {
	return ProfileLearner{BaseRecall: 0.3, EnergyBoost: 0.4, EasyBias: 0.1}
}

// FixedLearner always answers with the same grade. Useful for exact
// arithmetic scenarios.
type FixedLearner struct {
	G srs.Grade
}

// Grade implements Learner.
func (l FixedLearner) Grade(day int, uid string, st memory.State, rng *rand.Rand) srs.Grade {
	return l.G
}
