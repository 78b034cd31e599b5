package integrator

import (
	"math"

	"github.com/df07/go-photon-tracer/pkg/core"
	"github.com/df07/go-photon-tracer/pkg/geometry"
	"github.com/df07/go-photon-tracer/pkg/lights"
	"github.com/df07/go-photon-tracer/pkg/material"
	"github.com/df07/go-photon-tracer/pkg/medium"
	"github.com/df07/go-photon-tracer/pkg/photon"
	"github.com/df07/go-photon-tracer/pkg/scene"
)

// Config controls path termination
type Config struct {
	MaxDepth                  int       // Maximum vertices per path
	MaxInvisibleDepth         int       // Vertices after the first diffuse hit before a final gather
	RussianRouletteMinBounces int       // Bounces before Russian roulette may end a path
	Background                core.Vec3 // Radiance of rays that escape the scene
}

// PathTracer implements unidirectional path tracing with next event
// estimation, combined with light sampling by the balance heuristic
type PathTracer struct {
	entities *scene.EntityScene
	volumes  *scene.VolumeScene
	lights   *lights.Sampler
	config   Config
}

// NewPathTracer creates a path tracer. volumes may be nil.
func NewPathTracer(entities *scene.EntityScene, volumes *scene.VolumeScene, l *lights.Sampler, config Config) *PathTracer {
	return &PathTracer{entities: entities, volumes: volumes, lights: l, config: config}
}

// pathState is the bookkeeping carried from one vertex to the next
type pathState struct {
	ray        core.Ray
	throughput core.Vec3

	visible        bool // No diffuse vertex yet
	invisibleDepth int  // Vertices since the first diffuse one

	lastDelta bool      // Previous vertex was the camera or a delta lobe
	lastPDF   float64   // Solid angle pdf of the previous scattering
	lastPoint core.Vec3 // Previous vertex position

	// A caustic gather already accounts for light reaching the gather
	// vertex through delta bounces, so such paths must not count it again
	afterGather      bool
	deltaSinceGather bool
}

// Li traces a camera ray and returns its radiance and photon estimates
func (pt *PathTracer) Li(ray core.Ray, maps Maps, queries Queries, sampler core.Sampler) Result {
	var result Result
	state := pathState{
		ray:        ray,
		throughput: core.Splat(1),
		visible:    true,
		lastDelta:  true,
	}

	for depth := 0; depth < pt.config.MaxDepth; depth++ {
		isect, isHit := pt.entities.NearestHit(state.ray, scene.Epsilon(state.ray.Origin), math.Inf(1))
		tHit := math.Inf(1)
		if isHit {
			tHit = isect.Hit.T
		}

		if pt.interactMedia(&state, &result, tHit, sampler) {
			if !pt.survive(&state, depth, sampler) {
				break
			}
			continue
		}
		if state.throughput.IsZero() {
			break
		}

		if !isHit {
			result.Radiance = result.Radiance.Add(state.throughput.MultiplyVec(pt.config.Background))
			break
		}

		if !pt.shadeSurface(&state, &result, isect, maps, queries, sampler) {
			break
		}
		if !pt.survive(&state, depth, sampler) {
			break
		}
	}

	if !result.Radiance.IsFinite() {
		result.Radiance = core.Vec3{}
	}
	result.Caustic = finite(result.Caustic)
	result.Global = finite(result.Global)
	return result
}

// interactMedia walks the media segments in front of the next surface. It
// returns true when the path scattered inside a medium and the state holds
// the new ray.
func (pt *PathTracer) interactMedia(state *pathState, result *Result, tHit float64, sampler core.Sampler) bool {
	if pt.volumes.Len() == 0 {
		return false
	}
	for _, segment := range pt.volumes.Segments(state.ray, tHit) {
		ds := segment.Medium.SampleDistance(segment.Length(), sampler)
		state.throughput = state.throughput.MultiplyVec(ds.Weight)
		if !ds.Scattered {
			continue
		}

		point := state.ray.At(segment.Start + ds.Distance)
		wo := state.ray.Direction.Negate()
		direct := pt.phaseDirect(point, wo, segment.Medium, sampler)
		result.Radiance = result.Radiance.Add(state.throughput.MultiplyVec(direct))

		wi, pdf := segment.Medium.SampleDirection(wo, sampler)
		if !(pdf > 0) {
			state.throughput = core.Vec3{}
			return true
		}
		// The phase function is sampled exactly, so the throughput is unchanged
		state.ray = core.NewRay(point, wi)
		state.lastDelta = false
		state.lastPDF = pdf
		state.lastPoint = point
		state.afterGather = false
		if !state.visible {
			state.invisibleDepth++
		}
		return true
	}
	return false
}

// shadeSurface handles a surface vertex and prepares the next ray. It
// returns false when the path ends here.
func (pt *PathTracer) shadeSurface(state *pathState, result *Result, isect scene.Intersection, maps Maps, queries Queries, sampler core.Sampler) bool {
	hit := isect.Hit
	entity := pt.entities.Entity(isect.Index)
	wo := state.ray.Direction.Negate()

	if entity.Material.IsEmissive() && !(state.afterGather && state.deltaSinceGather) {
		if le := entity.Material.Emitted(wo, hit); !le.IsZero() {
			weight := 1.0
			if !state.lastDelta {
				lightPDF := pt.lights.PDF(state.lastPoint, isect.Index, hit)
				weight = core.BalanceHeuristic(1, state.lastPDF, 1, lightPDF)
			}
			result.Radiance = result.Radiance.Add(state.throughput.MultiplyVec(le).Multiply(weight))
		}
	}

	mat := entity.Material.SelectComponent(sampler.Get1D())
	if mat.Kind() == material.KindEmissive {
		return false
	}

	if !state.visible {
		state.invisibleDepth++
		if state.invisibleDepth > pt.config.MaxInvisibleDepth {
			return false
		}
	}
	gathered := false
	if mat.IsDiffuse() {
		if state.visible {
			state.visible = false
			if maps.Caustic.Len() > 0 {
				result.Caustic = maps.Caustic.Gather(hit.Point, queries.Caustic, photonWeight(mat, wo, hit, state.throughput))
				gathered = true
			}
		} else if state.invisibleDepth >= pt.config.MaxInvisibleDepth {
			// The path ends here either way; the global map, when there is
			// one, accounts for everything past this vertex
			if maps.Global.Len() > 0 {
				result.Global = maps.Global.Gather(hit.Point, queries.Global, photonWeight(mat, wo, hit, state.throughput))
			}
			return false
		}
	}

	if !mat.IsDelta() {
		direct := pt.surfaceDirect(hit, wo, mat, sampler)
		result.Radiance = result.Radiance.Add(state.throughput.MultiplyVec(direct))
	}

	s, ok := mat.Sample(wo, hit, material.Radiance, sampler)
	if !ok {
		return false
	}
	state.throughput = state.throughput.MultiplyVec(s.Weight)
	state.ray = core.NewRay(hit.Point, s.Direction)
	state.lastDelta = s.Delta
	state.lastPDF = s.PDF
	state.lastPoint = hit.Point
	if s.Delta {
		state.deltaSinceGather = true
	} else {
		state.afterGather = gathered
		state.deltaSinceGather = false
	}
	return !state.throughput.IsZero()
}

// surfaceDirect samples one light for a non-delta surface vertex
func (pt *PathTracer) surfaceDirect(hit geometry.Hit, wo core.Vec3, mat *material.Material, sampler core.Sampler) core.Vec3 {
	ls, ok := pt.lights.SampleDirect(hit.Point, sampler)
	if !ok {
		return core.Vec3{}
	}
	f, pdf := mat.Evaluate(wo, ls.Direction, hit, material.Radiance)
	if f.IsZero() {
		return core.Vec3{}
	}
	tr := pt.transmittance(hit.Point, ls)
	if tr.IsZero() {
		return core.Vec3{}
	}
	cosine := math.Abs(ls.Direction.Dot(hit.Normal))
	weight := core.BalanceHeuristic(1, ls.PDF, 1, pdf)
	return f.MultiplyVec(ls.Emission).MultiplyVec(tr).Multiply(cosine * weight / ls.PDF)
}

// phaseDirect samples one light for a scattering event inside a medium
func (pt *PathTracer) phaseDirect(point, wo core.Vec3, m *medium.Medium, sampler core.Sampler) core.Vec3 {
	ls, ok := pt.lights.SampleDirect(point, sampler)
	if !ok {
		return core.Vec3{}
	}
	phase := m.PhaseValue(wo, ls.Direction)
	if phase <= 0 {
		return core.Vec3{}
	}
	tr := pt.transmittance(point, ls)
	if tr.IsZero() {
		return core.Vec3{}
	}
	weight := core.BalanceHeuristic(1, ls.PDF, 1, phase)
	return ls.Emission.MultiplyVec(tr).Multiply(phase * weight / ls.PDF)
}

// transmittance returns the fraction of light surviving the trip from a
// light sample to point: zero when occluded, the media attenuation otherwise
func (pt *PathTracer) transmittance(point core.Vec3, ls lights.LightSample) core.Vec3 {
	if !pt.entities.Visible(point, ls.Point) {
		return core.Vec3{}
	}
	tr := core.Splat(1)
	if pt.volumes.Len() == 0 {
		return tr
	}
	ray := core.NewRay(point, ls.Direction)
	for _, segment := range pt.volumes.Segments(ray, ls.Distance) {
		tr = tr.MultiplyVec(segment.Medium.Transmittance(segment.Length()))
	}
	return tr
}

// survive applies Russian roulette once the path is deep enough
func (pt *PathTracer) survive(state *pathState, depth int, sampler core.Sampler) bool {
	if state.throughput.IsZero() {
		return false
	}
	if depth+1 < pt.config.RussianRouletteMinBounces {
		return true
	}
	q := math.Min(1, state.throughput.MaxComponent())
	if sampler.Get1D() >= q {
		return false
	}
	state.throughput = state.throughput.Multiply(1 / q)
	return true
}

// photonWeight returns the contribution of a photon to the radiance seen
// along wo at a gather vertex
func photonWeight(mat *material.Material, wo core.Vec3, hit geometry.Hit, throughput core.Vec3) func(photon.Photon) core.Vec3 {
	return func(p photon.Photon) core.Vec3 {
		f, _ := mat.Evaluate(wo, p.Direction, hit, material.Radiance)
		return throughput.MultiplyVec(f)
	}
}

func finite(e photon.Estimate) photon.Estimate {
	if !e.Flux.IsFinite() || math.IsNaN(e.Count) || math.IsNaN(e.Radius) {
		return photon.Estimate{}
	}
	return e
}
