package material

import (
	"errors"
	"fmt"

	"github.com/df07/go-photon-tracer/pkg/core"
	"github.com/df07/go-photon-tracer/pkg/geometry"
)

// ErrInvalidMaterial is returned by material and texture constructors for
// out-of-range parameters
var ErrInvalidMaterial = errors.New("invalid material")

func invalidMaterial(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidMaterial, fmt.Sprintf(format, args...))
}

// Kind identifies the concrete material variant
type Kind int

const (
	KindDiffuse Kind = iota
	KindSpecular
	KindRefractive
	KindGlossy
	KindBlurry
	KindEmissive
	KindMixture
)

func (k Kind) String() string {
	switch k {
	case KindDiffuse:
		return "diffuse"
	case KindSpecular:
		return "specular"
	case KindRefractive:
		return "refractive"
	case KindGlossy:
		return "glossy"
	case KindBlurry:
		return "blurry"
	case KindEmissive:
		return "emissive"
	case KindMixture:
		return "mixture"
	default:
		return "unknown"
	}
}

// TransportMode indicates whether we're transporting radiance or importance
type TransportMode int

const (
	// Radiance mode: camera paths gathering light
	Radiance TransportMode = iota
	// Importance mode: light paths carrying photon power
	Importance
)

// Sample is a scattered direction drawn from a material
type Sample struct {
	Direction core.Vec3 // Incoming light direction, pointing away from the surface
	F         core.Vec3 // BSDF value for the sampled pair
	PDF       float64   // Solid angle density; the discrete lobe probability for delta lobes
	Weight    core.Vec3 // F·|cos|/PDF, the throughput multiplier
	Delta     bool      // Sampled from a delta distribution
}

// Material is a closed set of surface scattering models. Exactly the fields
// used by the kind are set. Materials are immutable and shared by pointer.
type Material struct {
	kind Kind

	albedo *Texture // diffuse, specular, refractive, blurry
	ior    float64  // refractive, blurry

	r0    core.Vec3 // glossy normal-incidence reflectance
	alpha float64   // glossy, blurry GGX width

	radiance *Texture // emissive
	cosBeam  float64  // emissive, -1 for a full hemisphere

	components []*Material // mixture
	weights    []float64   // mixture, normalized
	cdf        []float64   // mixture
}

// Kind returns the variant held by the material
func (m *Material) Kind() Kind {
	return m.kind
}

// IsDelta reports whether scattering is a delta distribution
func (m *Material) IsDelta() bool {
	return m.kind == KindSpecular || m.kind == KindRefractive
}

// IsDiffuse reports whether photons are stored and gathered on this surface
func (m *Material) IsDiffuse() bool {
	return m.kind == KindDiffuse
}

// IsEmissive reports whether the material, or any mixture component, emits
func (m *Material) IsEmissive() bool {
	if m.kind == KindMixture {
		for _, c := range m.components {
			if c.IsEmissive() {
				return true
			}
		}
		return false
	}
	return m.kind == KindEmissive
}

// Components returns the mixture components and their normalized weights
func (m *Material) Components() ([]*Material, []float64) {
	return m.components, m.weights
}

// SelectComponent resolves a mixture to exactly one component, chosen by
// weight; other kinds return themselves
func (m *Material) SelectComponent(u float64) *Material {
	for m.kind == KindMixture {
		i := 0
		for i < len(m.cdf)-1 && u >= m.cdf[i] {
			i++
		}
		lo := 0.0
		if i > 0 {
			lo = m.cdf[i-1]
		}
		// Reuse the remaining fraction of u for nested mixtures
		if w := m.cdf[i] - lo; w > 0 {
			u = min((u-lo)/w, 1-1e-12)
		}
		m = m.components[i]
	}
	return m
}

// Sample draws an incoming direction for outgoing direction wo. The hit
// normal faces wo. Returns false when the material absorbs.
func (m *Material) Sample(wo core.Vec3, hit geometry.Hit, mode TransportMode, sampler core.Sampler) (Sample, bool) {
	switch m.kind {
	case KindDiffuse:
		return m.sampleDiffuse(wo, hit, sampler)
	case KindSpecular:
		return m.sampleSpecular(wo, hit)
	case KindRefractive:
		return m.sampleRefractive(wo, hit, mode, sampler)
	case KindGlossy:
		return m.sampleGlossy(wo, hit, sampler)
	case KindBlurry:
		return m.sampleBlurry(wo, hit, mode, sampler)
	case KindEmissive:
		return Sample{}, false
	case KindMixture:
		return m.SelectComponent(sampler.Get1D()).Sample(wo, hit, mode, sampler)
	}
	return Sample{}, false
}

// Evaluate returns the BSDF value and solid angle pdf for the direction
// pair. Delta lobes return zero.
func (m *Material) Evaluate(wo, wi core.Vec3, hit geometry.Hit, mode TransportMode) (core.Vec3, float64) {
	switch m.kind {
	case KindDiffuse:
		return m.evaluateDiffuse(wo, wi, hit)
	case KindGlossy:
		return m.evaluateGlossy(wo, wi, hit)
	case KindBlurry:
		return m.evaluateBlurry(wo, wi, hit, mode)
	case KindMixture:
		f, pdf := core.Vec3{}, 0.0
		for i, c := range m.components {
			cf, cpdf := c.Evaluate(wo, wi, hit, mode)
			f = f.Add(cf.Multiply(m.weights[i]))
			pdf += cpdf * m.weights[i]
		}
		return f, pdf
	}
	return core.Vec3{}, 0
}

// Emitted returns the radiance leaving the surface toward wo. Emitters only
// radiate from their front face and, with a beam angle, inside the cone.
func (m *Material) Emitted(wo core.Vec3, hit geometry.Hit) core.Vec3 {
	switch m.kind {
	case KindEmissive:
		if !hit.FrontFace {
			return core.Vec3{}
		}
		if m.cosBeam > -1 && wo.Dot(hit.Normal) < m.cosBeam {
			return core.Vec3{}
		}
		return m.radiance.Evaluate(hit.UV, hit.Point, hit.Normal)
	case KindMixture:
		sum := core.Vec3{}
		for i, c := range m.components {
			sum = sum.Add(c.Emitted(wo, hit).Multiply(m.weights[i]))
		}
		return sum
	}
	return core.Vec3{}
}

// CosBeam returns the cosine of the emission half-angle, -1 for a hemisphere
func (m *Material) CosBeam() float64 {
	switch m.kind {
	case KindEmissive:
		return m.cosBeam
	case KindMixture:
		for _, c := range m.components {
			if c.kind == KindEmissive {
				return c.cosBeam
			}
		}
	}
	return -1
}

// AverageRadiance estimates the emitted radiance, weighted over mixture
// components, for light power estimates
func (m *Material) AverageRadiance() core.Vec3 {
	switch m.kind {
	case KindEmissive:
		return m.radiance.Average()
	case KindMixture:
		sum := core.Vec3{}
		for i, c := range m.components {
			sum = sum.Add(c.AverageRadiance().Multiply(m.weights[i]))
		}
		return sum
	}
	return core.Vec3{}
}
