package photon

import (
	"fmt"
	"math"
	"runtime"

	"github.com/df07/go-photon-tracer/pkg/core"
	"github.com/df07/go-photon-tracer/pkg/lights"
	"github.com/df07/go-photon-tracer/pkg/material"
	"github.com/df07/go-photon-tracer/pkg/scene"
)

// Policy selects which photons a trace keeps
type Policy int

const (
	// Global stores a photon at every diffuse bounce and keeps bouncing
	Global Policy = iota
	// Caustic stores only at the first diffuse surface reached through
	// delta bounces, then stops
	Caustic
)

func (p Policy) String() string {
	switch p {
	case Global:
		return "global"
	case Caustic:
		return "caustic"
	default:
		return "unknown"
	}
}

// EmitterOptions configures photon tracing
type EmitterOptions struct {
	MaxDepth  int // Maximum bounces per photon
	BatchSize int // Photons per parallel batch
	Workers   int // Concurrent batches, 0 means runtime.NumCPU()
}

// DefaultEmitterOptions returns the options used by the renderer
func DefaultEmitterOptions() EmitterOptions {
	return EmitterOptions{MaxDepth: 12, BatchSize: 4096}
}

// Emitter traces photons from the scene's lights
type Emitter struct {
	scene   *scene.EntityScene
	lights  *lights.Sampler
	options EmitterOptions
}

// NewEmitter creates an emitter over a scene and its light sampler
func NewEmitter(s *scene.EntityScene, l *lights.Sampler, options EmitterOptions) *Emitter {
	if options.MaxDepth <= 0 {
		options.MaxDepth = DefaultEmitterOptions().MaxDepth
	}
	if options.BatchSize <= 0 {
		options.BatchSize = DefaultEmitterOptions().BatchSize
	}
	if options.Workers <= 0 {
		options.Workers = runtime.NumCPU()
	}
	return &Emitter{scene: s, lights: l, options: options}
}

// Trace emits count photons and returns those stored under the policy.
// Batches run on a worker pool but each owns a random stream derived from
// (seed, policy, batch) and results are joined in batch order, so the
// output does not depend on the worker count.
func (e *Emitter) Trace(policy Policy, count int, seed uint64) ([]Photon, error) {
	if count <= 0 || e.lights.Count() == 0 {
		return nil, nil
	}
	batches := make([]int, (count+e.options.BatchSize-1)/e.options.BatchSize)
	for b := range batches {
		batches[b] = b
	}
	streamSeed := core.MixSeed(seed, uint64(policy))

	results, err := core.RunParallel(batches, e.options.Workers, func(b int) []Photon {
		n := min(e.options.BatchSize, count-b*e.options.BatchSize)
		sampler := core.NewSeededSampler(streamSeed, uint64(b))
		var stored []Photon
		for i := 0; i < n; i++ {
			stored = e.tracePhoton(policy, sampler, stored)
		}
		return stored
	})
	if err != nil {
		return nil, fmt.Errorf("tracing %s photons: %w", policy, err)
	}

	total := 0
	for _, r := range results {
		total += len(r)
	}
	all := make([]Photon, 0, total)
	for _, r := range results {
		all = append(all, r...)
	}
	return all, nil
}

// TraceMap traces photons and builds the map they are stored in
func (e *Emitter) TraceMap(policy Policy, count int, seed uint64) (*Map, error) {
	photons, err := e.Trace(policy, count, seed)
	if err != nil {
		return nil, err
	}
	return NewMap(photons), nil
}

// tracePhoton follows one photon from a light and appends what it deposits
func (e *Emitter) tracePhoton(policy Policy, sampler core.Sampler, stored []Photon) []Photon {
	emission, ok := e.lights.SampleEmission(sampler)
	if !ok {
		return stored
	}
	ray := core.NewRay(emission.Point, emission.Direction)
	power := emission.Power
	onlyDelta := true
	bounces := 0

	for depth := 0; depth < e.options.MaxDepth; depth++ {
		isect, ok := e.scene.NearestHit(ray, scene.Epsilon(ray.Origin), math.Inf(1))
		if !ok {
			return stored
		}
		hit := isect.Hit
		mat := e.scene.Entity(isect.Index).Material.SelectComponent(sampler.Get1D())
		wo := ray.Direction.Negate()

		switch {
		case mat.Kind() == material.KindEmissive:
			return stored
		case mat.IsDiffuse():
			caustic := onlyDelta && bounces > 0
			if policy == Caustic {
				if caustic {
					stored = append(stored, Photon{Position: hit.Point, Direction: wo, Power: power, Caustic: true})
				}
				return stored
			}
			stored = append(stored, Photon{Position: hit.Point, Direction: wo, Power: power, Caustic: caustic})
			onlyDelta = false
		case mat.IsDelta():
		default:
			if policy == Caustic {
				return stored
			}
			onlyDelta = false
		}

		s, ok := mat.Sample(wo, hit, material.Importance, sampler)
		if !ok {
			return stored
		}
		next := power.MultiplyVec(s.Weight)
		survival := math.Min(1, next.MaxComponent()/power.MaxComponent())
		if !(survival > 0) || sampler.Get1D() >= survival {
			return stored
		}
		power = next.Multiply(1 / survival)
		if !power.IsFinite() {
			return stored
		}
		ray = core.NewRay(hit.Point, s.Direction)
		bounces++
	}
	return stored
}
