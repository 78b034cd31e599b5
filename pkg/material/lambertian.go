package material

import (
	"math"

	"github.com/df07/go-photon-tracer/pkg/core"
	"github.com/df07/go-photon-tracer/pkg/geometry"
)

// NewDiffuse creates a perfectly diffuse (Lambertian) material
func NewDiffuse(albedo *Texture) (*Material, error) {
	if albedo == nil {
		return nil, invalidMaterial("diffuse material needs an albedo")
	}
	return &Material{kind: KindDiffuse, albedo: albedo}, nil
}

func (m *Material) sampleDiffuse(wo core.Vec3, hit geometry.Hit, sampler core.Sampler) (Sample, bool) {
	// Generate cosine-weighted random direction in hemisphere around normal
	wi := core.SampleCosineHemisphere(hit.Normal, sampler.Get2D())

	// Calculate PDF: cos(θ) / π where θ is angle from normal
	cosTheta := wi.Dot(hit.Normal)
	if cosTheta <= 0 {
		return Sample{}, false
	}

	albedo := m.albedo.Evaluate(hit.UV, hit.Point, hit.Normal)
	return Sample{
		Direction: wi,
		F:         albedo.Multiply(1.0 / math.Pi),
		PDF:       cosTheta / math.Pi,
		Weight:    albedo,
	}, true
}

func (m *Material) evaluateDiffuse(wo, wi core.Vec3, hit geometry.Hit) (core.Vec3, float64) {
	// Lambertian BRDF is constant: albedo / π, only in the hemisphere of wo
	cosTheta := wi.Dot(hit.Normal)
	if cosTheta <= 0 || wo.Dot(hit.Normal) <= 0 {
		return core.Vec3{}, 0
	}
	albedo := m.albedo.Evaluate(hit.UV, hit.Point, hit.Normal)
	return albedo.Multiply(1.0 / math.Pi), cosTheta / math.Pi
}
