package photon

import (
	"math"

	"github.com/df07/go-photon-tracer/pkg/core"
)

// Alpha is the fraction of new photons kept by each progressive update
const Alpha = 0.75

// Estimate is one density estimate at a shading point: the BSDF-weighted
// photon flux found inside a disc of the given radius
type Estimate struct {
	Flux   core.Vec3
	Count  float64
	Radius float64
	Valid  bool
}

// AverageEstimates combines the estimates gathered by n samples of the
// same pixel. Estimates are rescaled to the mean squared radius before
// averaging; samples that gathered nothing count as zero.
func AverageEstimates(estimates []Estimate, n int) Estimate {
	if n <= 0 {
		return Estimate{}
	}
	r2 := 0.0
	valid := 0
	for _, e := range estimates {
		if e.Valid {
			r2 += e.Radius * e.Radius
			valid++
		}
	}
	if valid == 0 {
		return Estimate{}
	}
	r2 /= float64(valid)

	result := Estimate{Radius: math.Sqrt(r2), Valid: true}
	for _, e := range estimates {
		if !e.Valid {
			continue
		}
		scale := 1.0
		if ei := e.Radius * e.Radius; ei > 0 {
			scale = r2 / ei
		}
		result.Flux = result.Flux.Add(e.Flux.Multiply(scale))
		result.Count += e.Count * scale
	}
	result.Flux = result.Flux.Multiply(1 / float64(n))
	result.Count /= float64(n)
	return result
}

// Query selects how photons are gathered around a point: the K nearest
// when Radius is zero, otherwise every photon within Radius
type Query struct {
	K      int
	Radius float64
}

// Observation is the progressive photon statistics of one pixel. The
// gather radius only ever shrinks.
type Observation struct {
	Flux   core.Vec3
	N      float64
	Radius float64
	ready  bool
}

// Ready reports whether the observation has received a valid estimate
func (o *Observation) Ready() bool {
	return o.ready
}

// Query returns the search to run for this pixel: k-nearest until a radius
// has been established, a fixed-radius search afterwards
func (o *Observation) Query(k int) Query {
	if !o.ready {
		return Query{K: k}
	}
	return Query{Radius: o.Radius}
}

// Accumulate folds a new estimate in, shrinking the radius by
// sqrt((N+αM)/(N+M)) and scaling the flux by the same ratio
func (o *Observation) Accumulate(e Estimate) {
	if !e.Valid {
		return
	}
	if !o.ready {
		if e.Count <= 0 {
			return
		}
		o.Flux = e.Flux
		o.N = e.Count
		o.Radius = e.Radius
		o.ready = true
		return
	}
	if o.N+e.Count <= 0 {
		return
	}
	total := o.N + Alpha*e.Count
	frac := total / (o.N + e.Count)
	o.Flux = o.Flux.Add(e.Flux).Multiply(frac)
	o.N = total
	o.Radius *= math.Sqrt(frac)
}

// Radiance returns the reflected radiance estimate for the given total
// number of emitted photons
func (o *Observation) Radiance(emitted int) core.Vec3 {
	if !o.ready || emitted <= 0 || !(o.Radius > 0) {
		return core.Vec3{}
	}
	return o.Flux.Multiply(1 / (math.Pi * o.Radius * o.Radius * float64(emitted)))
}
