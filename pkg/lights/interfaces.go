// Package lights selects and samples emissive entities for direct lighting
// and photon emission.
package lights

import "github.com/df07/go-photon-tracer/pkg/core"

// LightSample contains information about a sampled point on a light
type LightSample struct {
	Point     core.Vec3 // Point on the light source
	Normal    core.Vec3 // Outward normal at the light sample point
	Direction core.Vec3 // Unit direction from shading point to light
	Distance  float64   // Distance to light
	Emission  core.Vec3 // Radiance leaving the light toward the shading point
	PDF       float64   // Solid angle density, including the selection probability
	Entity    int       // Index of the emitting entity
}

// EmissionSample is a photon leaving a light surface
type EmissionSample struct {
	Point     core.Vec3 // Point on the light surface
	Normal    core.Vec3 // Outward surface normal
	Direction core.Vec3 // Emission direction away from the surface
	Power     core.Vec3 // Flux carried by the sample, Le·cos/(pdfA·pdfW·pdfSelect)
	Entity    int
}
