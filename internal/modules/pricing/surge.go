// README: Surge policies mapping the demand/supply ratio to a multiplier.
package pricing

import (
	"math"
	"math/rand/v2"

	"github.com/rotisserie/eris"
)

type SurgePolicy string

const (
	SurgeLogistic SurgePolicy = "logistic"
	SurgeLinear   SurgePolicy = "linear"
)

const (
	maxLogisticSurge = 1.8
	maxLinearSurge   = 3.0
)

func ParseSurgePolicy(s string) (SurgePolicy, error) {
	switch SurgePolicy(s) {
	case SurgeLogistic, SurgeLinear:
		return SurgePolicy(s), nil
	}
	return "", eris.Errorf("pricing: unknown surge policy %q", s)
}

// Jitter returns a multiplicative noise factor.
type Jitter func() float64

// UniformJitter draws from U[0.95, 1.05].
func UniformJitter() float64 {
	return 0.95 + rand.Float64()*0.10
}

// NoJitter always returns 1.
func NoJitter() float64 { return 1.0 }

// LogisticSurge saturates at 1.8. At or below a ratio of 1 it is exactly 1
// and no jitter is drawn.
func LogisticSurge(ratio, threshold float64, jitter Jitter) float64 {
	if ratio <= 1 {
		return 1.0
	}
	x := (ratio - 1) / (threshold - 1)
	s := 1 / (1 + math.Exp(-4*(x-0.5)))
	return clamp((1+0.8*s)*jitter(), 1.0, maxLogisticSurge)
}

// LinearSurge grows by scaling per unit of ratio above threshold, capped at 3.
func LinearSurge(ratio, threshold, scaling float64) float64 {
	if ratio <= threshold {
		return 1.0
	}
	return clamp(1+(ratio-threshold)*scaling, 1.0, maxLinearSurge)
}
