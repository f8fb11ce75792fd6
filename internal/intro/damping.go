package intro

import (
	"fmt"
	"math"
)

// DampingFunc maps capacity_used (0 = idle, 1 = soft budget fully
// consumed, >1 = over budget) to a scale factor in [0, 1]. It must be
// monotonically non-increasing; the policy does not re-check this.
type DampingFunc func(capacityUsed float64) float64

// Named damping curves. The source material references several
// historical formulas, so the curve is configuration, not code.
const (
	DampingLinear      = "linear"
	DampingQuadratic   = "quadratic"
	DampingExponential = "exponential"
)

// DampingByName resolves a configured curve name.
func DampingByName(name string) (DampingFunc, error) {
	switch name {
	case DampingLinear:
		return func(u float64) float64 { return clamp01(1 - u) }, nil
	case DampingQuadratic:
		return func(u float64) float64 {
			v := clamp01(1 - u)
			return v * v
		}, nil
	case DampingExponential:
		return func(u float64) float64 {
			if u <= 0 {
				return 1
			}
			return math.Exp(-2 * u)
		}, nil
	default:
		return nil, fmt.Errorf("intro: unknown damping curve %q", name)
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
