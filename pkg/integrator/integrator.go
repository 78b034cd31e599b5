// Package integrator estimates the radiance carried along camera rays by
// path tracing, handing caustics and deep indirect light over to photon
// map density estimates.
package integrator

import (
	"github.com/df07/go-photon-tracer/pkg/core"
	"github.com/df07/go-photon-tracer/pkg/photon"
)

// Maps holds the photon maps of the current iteration. Either may be empty.
type Maps struct {
	Global  *photon.Map
	Caustic *photon.Map
}

// Queries selects how each map is searched for the pixel being traced
type Queries struct {
	Global  photon.Query
	Caustic photon.Query
}

// Result is everything one camera sample contributes to its pixel
type Result struct {
	Radiance core.Vec3       // Path traced radiance
	Caustic  photon.Estimate // Caustic map gather at the first diffuse vertex
	Global   photon.Estimate // Global map final gather
}

// Integrator defines the interface for light transport algorithms
type Integrator interface {
	// Li traces a camera ray and returns its radiance and photon estimates
	Li(ray core.Ray, maps Maps, queries Queries, sampler core.Sampler) Result
}
