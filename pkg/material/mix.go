package material

import (
	"math"
)

// NewMixture creates a material that picks exactly one component per
// scattering event with probability proportional to its weight
func NewMixture(components []*Material, weights []float64) (*Material, error) {
	if len(components) == 0 {
		return nil, invalidMaterial("mixture has no components")
	}
	if len(components) != len(weights) {
		return nil, invalidMaterial("mixture has %d components but %d weights", len(components), len(weights))
	}

	total := 0.0
	for i, w := range weights {
		if components[i] == nil {
			return nil, invalidMaterial("mixture component %d is nil", i)
		}
		if !(w >= 0) || math.IsInf(w, 0) {
			return nil, invalidMaterial("mixture weight %v is negative", w)
		}
		total += w
	}
	if !(total > 0) {
		return nil, invalidMaterial("mixture weights sum to zero")
	}

	normalized := make([]float64, len(weights))
	cdf := make([]float64, len(weights))
	sum := 0.0
	for i, w := range weights {
		normalized[i] = w / total
		sum += normalized[i]
		cdf[i] = sum
	}
	cdf[len(cdf)-1] = 1

	return &Material{
		kind:       KindMixture,
		components: append([]*Material(nil), components...),
		weights:    normalized,
		cdf:        cdf,
	}, nil
}
