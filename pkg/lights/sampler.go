package lights

import (
	"fmt"
	"math"
	"sort"

	"github.com/df07/go-photon-tracer/pkg/core"
	"github.com/df07/go-photon-tracer/pkg/geometry"
	"github.com/df07/go-photon-tracer/pkg/scene"
)

// Sampler selects emissive entities with fixed probabilities, proportional
// to their radiant power by default. Unbounded emitters such as planes
// cannot be sampled and are left to BSDF sampling.
type Sampler struct {
	scene    *scene.EntityScene
	emitters []int     // entity indices
	power    []float64 // luminance power per emitter
	weights  []float64 // normalized selection probabilities
	cdf      []float64
	slot     map[int]int // entity index to emitter slot
	total    core.Vec3
}

// NewSampler builds a power-weighted sampler over the scene's emitters.
// When every emitter has zero power, selection falls back to uniform.
func NewSampler(s *scene.EntityScene) *Sampler {
	ls := &Sampler{scene: s, slot: make(map[int]int)}
	for _, index := range s.Emitters() {
		entity := s.Entity(index)
		area := entity.Shape.Area()
		if !(area > 0) || math.IsInf(area, 0) {
			continue
		}
		flux := entity.Material.AverageRadiance().Multiply(area * ConeCosineIntegral(entity.Material.CosBeam()))
		ls.slot[index] = len(ls.emitters)
		ls.emitters = append(ls.emitters, index)
		ls.power = append(ls.power, math.Max(0, flux.Luminance()))
		ls.total = ls.total.Add(flux)
	}
	ls.setWeights(ls.power)
	return ls
}

// NewWeightedSampler creates a sampler with user-specified weights, one per
// sampleable emitter in the order the scene lists them
func NewWeightedSampler(s *scene.EntityScene, weights []float64) (*Sampler, error) {
	ls := NewSampler(s)
	if len(weights) != len(ls.emitters) {
		return nil, fmt.Errorf("lights length (%d) must match weights length (%d)", len(ls.emitters), len(weights))
	}
	for _, w := range weights {
		if !(w >= 0) || math.IsInf(w, 0) {
			return nil, fmt.Errorf("weights must be non-negative, got %v", w)
		}
	}
	ls.setWeights(weights)
	return ls, nil
}

func (ls *Sampler) setWeights(weights []float64) {
	n := len(weights)
	ls.weights = make([]float64, n)
	ls.cdf = make([]float64, n)
	if n == 0 {
		return
	}
	total := 0.0
	for _, w := range weights {
		total += w
	}
	sum := 0.0
	for i, w := range weights {
		if total > 0 {
			ls.weights[i] = w / total
		} else {
			ls.weights[i] = 1 / float64(n)
		}
		sum += ls.weights[i]
		ls.cdf[i] = sum
	}
	ls.cdf[n-1] = 1
}

// Count returns the number of sampleable emitters
func (ls *Sampler) Count() int {
	return len(ls.emitters)
}

// TotalPower returns the summed radiant flux of all sampleable emitters
func (ls *Sampler) TotalPower() core.Vec3 {
	return ls.total
}

// Probability returns the selection probability of an entity, zero for
// entities that are not sampleable emitters
func (ls *Sampler) Probability(entity int) float64 {
	slot, ok := ls.slot[entity]
	if !ok {
		return 0
	}
	return ls.weights[slot]
}

// pick selects an emitter slot from a uniform number
func (ls *Sampler) pick(u float64) int {
	slot := sort.SearchFloat64s(ls.cdf, u)
	// Skip zero-probability slots sharing the same cdf value
	for slot < len(ls.cdf)-1 && (ls.cdf[slot] <= u || ls.weights[slot] == 0) {
		slot++
	}
	return slot
}

// SampleDirect picks a light and a point on it as seen from point. Returns
// false when there are no lights or the sampled point faces away.
func (ls *Sampler) SampleDirect(point core.Vec3, sampler core.Sampler) (LightSample, bool) {
	if len(ls.emitters) == 0 {
		return LightSample{}, false
	}
	slot := ls.pick(sampler.Get1D())
	index := ls.emitters[slot]
	entity := ls.scene.Entity(index)

	ps, ok := entity.Shape.SamplePoint(sampler)
	if !ok {
		return LightSample{}, false
	}
	toLight := ps.Point.Subtract(point)
	distance := toLight.Length()
	if distance < 1e-12 {
		return LightSample{}, false
	}
	direction := toLight.Multiply(1 / distance)
	cosLight := -direction.Dot(ps.Normal)
	if cosLight <= 0 {
		return LightSample{}, false
	}

	hit := geometry.Hit{T: distance, Point: ps.Point, Normal: ps.Normal, FrontFace: true}
	emission := entity.Material.Emitted(direction.Negate(), hit)
	pdf := SolidAnglePDF(ps.PDF, distance, cosLight) * ls.weights[slot]
	if pdf <= 0 || emission.IsZero() {
		return LightSample{}, false
	}
	return LightSample{
		Point:     ps.Point,
		Normal:    ps.Normal,
		Direction: direction,
		Distance:  distance,
		Emission:  emission,
		PDF:       pdf,
		Entity:    index,
	}, true
}

// PDF returns the solid angle density with which SampleDirect would have
// produced the emitter hit reached from point. Used to weight BSDF-sampled
// emitter hits.
func (ls *Sampler) PDF(point core.Vec3, entity int, hit geometry.Hit) float64 {
	slot, ok := ls.slot[entity]
	if !ok {
		return 0
	}
	area := ls.scene.Entity(entity).Shape.Area()
	toLight := hit.Point.Subtract(point)
	distance := toLight.Length()
	if distance < 1e-12 {
		return 0
	}
	cosLight := toLight.Multiply(1 / distance).Dot(hit.Normal)
	return SolidAnglePDF(1/area, distance, cosLight) * ls.weights[slot]
}

// SampleEmission picks a light, a point and an emission direction for a
// photon. The power already accounts for every sampling density.
func (ls *Sampler) SampleEmission(sampler core.Sampler) (EmissionSample, bool) {
	if len(ls.emitters) == 0 {
		return EmissionSample{}, false
	}
	slot := ls.pick(sampler.Get1D())
	index := ls.emitters[slot]
	entity := ls.scene.Entity(index)

	ps, ok := entity.Shape.SamplePoint(sampler)
	if !ok || ps.PDF <= 0 {
		return EmissionSample{}, false
	}
	direction, pdfDir := SampleEmissionDirection(ps.Normal, entity.Material.CosBeam(), sampler.Get2D())
	cosTheta := direction.Dot(ps.Normal)
	if pdfDir <= 0 || cosTheta <= 0 {
		return EmissionSample{}, false
	}

	hit := geometry.Hit{Point: ps.Point, Normal: ps.Normal, FrontFace: true}
	emission := entity.Material.Emitted(direction, hit)
	power := emission.Multiply(cosTheta / (ps.PDF * pdfDir * ls.weights[slot]))
	if power.IsZero() || !power.IsFinite() {
		return EmissionSample{}, false
	}
	return EmissionSample{
		Point:     ps.Point,
		Normal:    ps.Normal,
		Direction: direction,
		Power:     power,
		Entity:    index,
	}, true
}

// String returns a string representation for debugging
func (ls *Sampler) String() string {
	if len(ls.emitters) == 0 {
		return "Sampler{no lights}"
	}
	result := fmt.Sprintf("Sampler{%d lights:\n", len(ls.emitters))
	for slot, index := range ls.emitters {
		result += fmt.Sprintf("  [%d] entity %d: %.1f%%\n", slot, index, ls.weights[slot]*100)
	}
	return result + "}"
}
