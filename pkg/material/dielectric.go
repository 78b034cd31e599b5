package material

import (
	"math"

	"github.com/df07/go-photon-tracer/pkg/core"
	"github.com/df07/go-photon-tracer/pkg/geometry"
)

// NewSpecular creates a perfect mirror tinted by albedo
func NewSpecular(albedo *Texture) (*Material, error) {
	if albedo == nil {
		return nil, invalidMaterial("specular material needs an albedo")
	}
	return &Material{kind: KindSpecular, albedo: albedo}, nil
}

// NewRefractive creates a smooth dielectric such as glass
func NewRefractive(albedo *Texture, refractiveIndex float64) (*Material, error) {
	if albedo == nil {
		return nil, invalidMaterial("refractive material needs an albedo")
	}
	if !(refractiveIndex > 0) || math.IsInf(refractiveIndex, 0) {
		return nil, invalidMaterial("refractive index %v is not positive", refractiveIndex)
	}
	return &Material{kind: KindRefractive, albedo: albedo, ior: refractiveIndex}, nil
}

func (m *Material) sampleSpecular(wo core.Vec3, hit geometry.Hit) (Sample, bool) {
	wi := core.Reflect(wo.Negate(), hit.Normal)
	cosTheta := wi.Dot(hit.Normal)
	if cosTheta <= 0 {
		return Sample{}, false
	}
	albedo := m.albedo.Evaluate(hit.UV, hit.Point, hit.Normal)
	return Sample{
		Direction: wi,
		F:         albedo.Multiply(1 / cosTheta),
		PDF:       1,
		Weight:    albedo,
		Delta:     true,
	}, true
}

// relativeIndex returns the ratio of the transmitted side's index over the
// incident side's
func (m *Material) relativeIndex(hit geometry.Hit) float64 {
	if hit.FrontFace {
		return m.ior
	}
	return 1 / m.ior
}

func (m *Material) sampleRefractive(wo core.Vec3, hit geometry.Hit, mode TransportMode, sampler core.Sampler) (Sample, bool) {
	albedo := m.albedo.Evaluate(hit.UV, hit.Point, hit.Normal)
	eta := m.relativeIndex(hit)
	cosI := math.Min(wo.Dot(hit.Normal), 1)
	if cosI <= 0 {
		return Sample{}, false
	}

	reflectance := Reflectance(cosI, eta)
	if reflectance >= 1 || sampler.Get1D() < reflectance {
		wi := core.Reflect(wo.Negate(), hit.Normal)
		return Sample{
			Direction: wi,
			F:         albedo.Multiply(reflectance / cosI),
			PDF:       reflectance,
			Weight:    albedo,
			Delta:     true,
		}, true
	}

	wi, ok := refract(wo, hit.Normal, eta)
	if !ok {
		return Sample{}, false
	}
	weight := albedo
	if mode == Radiance {
		// Radiance is compressed into the smaller solid angle of the denser side
		weight = weight.Multiply(1 / (eta * eta))
	}
	cosT := math.Abs(wi.Dot(hit.Normal))
	transmit := 1 - reflectance
	return Sample{
		Direction: wi,
		F:         weight.Multiply(transmit / cosT),
		PDF:       transmit,
		Weight:    weight,
		Delta:     true,
	}, true
}

// refract bends wo (pointing away from the surface on the normal side)
// through the interface using Snell's law. eta is the transmitted index over
// the incident index. Returns false on total internal reflection.
func refract(wo, n core.Vec3, eta float64) (core.Vec3, bool) {
	cosI := wo.Dot(n)
	sin2T := (1 - cosI*cosI) / (eta * eta)
	if sin2T >= 1 {
		return core.Vec3{}, false
	}
	cosT := math.Sqrt(1 - sin2T)
	return wo.Negate().Multiply(1 / eta).Add(n.Multiply(cosI/eta - cosT)).Normalize(), true
}

// Reflectance calculates the Fresnel reflectance using Schlick's
// approximation. eta is the transmitted index over the incident index; the
// cosine of the larger angle is used so that the curve meets total internal
// reflection continuously.
func Reflectance(cosine, eta float64) float64 {
	r0 := (1 - eta) / (1 + eta)
	r0 = r0 * r0

	if eta < 1 {
		sin2T := (1 - cosine*cosine) / (eta * eta)
		if sin2T >= 1 {
			return 1
		}
		cosine = math.Sqrt(1 - sin2T)
	}
	return r0 + (1-r0)*math.Pow(1-cosine, 5)
}
