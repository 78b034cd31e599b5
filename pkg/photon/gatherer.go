package photon

import (
	"math"

	"github.com/df07/go-photon-tracer/pkg/core"
)

// MinRadiusScale sets the smallest k-nearest gather radius relative to the
// magnitude of the query point, so photons coincident with it still give a
// finite density
const MinRadiusScale = 1e-4

// MinRadius returns the floor applied to k-nearest gather radii around p
func MinRadius(p core.Vec3) float64 {
	return MinRadiusScale * max(1, math.Abs(p.X), math.Abs(p.Y), math.Abs(p.Z))
}

// Gather runs a density query around p, summing weight(photon)·power over
// the photons found. A k-nearest query that finds nothing is invalid; a
// radius query that finds nothing is a valid zero estimate.
func (m *Map) Gather(p core.Vec3, query Query, weight func(Photon) core.Vec3) Estimate {
	var found []Neighbor
	var radius float64
	if query.Radius > 0 {
		found = m.WithinRadius(p, query.Radius)
		radius = query.Radius
	} else {
		found = m.Nearest(p, query.K)
		if len(found) == 0 {
			return Estimate{}
		}
		for _, n := range found {
			radius = math.Max(radius, n.Distance2)
		}
		radius = math.Max(math.Sqrt(radius), MinRadius(p))
	}

	estimate := Estimate{Radius: radius, Count: float64(len(found)), Valid: true}
	for _, n := range found {
		if w := weight(n.Photon); !w.IsZero() {
			estimate.Flux = estimate.Flux.Add(w.MultiplyVec(n.Power))
		}
	}
	return estimate
}
