package material

import (
	"fmt"
	"math"

	"github.com/df07/go-photon-tracer/pkg/core"
	"github.com/df07/go-photon-tracer/pkg/geometry"
)

// dielectricR0 is the normal-incidence reflectance of common dielectrics
const dielectricR0 = 0.04

func validRoughness(roughness float64) bool {
	return roughness > 0 && roughness <= 1
}

// NewGlossy creates a GGX reflector. metalness blends the normal-incidence
// reflectance from a dielectric's 0.04 toward color.
func NewGlossy(color core.Vec3, metalness, roughness float64) (*Material, error) {
	if !(metalness >= 0 && metalness <= 1) {
		return nil, invalidMaterial("glossy metalness %v is outside [0, 1]", metalness)
	}
	if !validRoughness(roughness) {
		return nil, invalidMaterial("glossy roughness %v is outside (0, 1]", roughness)
	}
	r0 := core.Splat(dielectricR0).Multiply(1 - metalness).Add(color.Multiply(metalness))
	return &Material{kind: KindGlossy, r0: r0, alpha: roughness * roughness}, nil
}

// Metal names a measured conductor for NewGlossyPreset
type Metal int

const (
	Aluminum Metal = iota
	Brass
	Chromium
	Copper
	Gold
	Iron
	Mercury
	Nickel
	Palladium
	Platinum
	Silver
	Titanium
	Zinc
)

// metalReflectance holds the linear normal-incidence reflectance per metal
var metalReflectance = map[Metal]core.Vec3{
	Aluminum:  {X: 0.913, Y: 0.922, Z: 0.924},
	Brass:     {X: 0.910, Y: 0.778, Z: 0.423},
	Chromium:  {X: 0.549, Y: 0.556, Z: 0.554},
	Copper:    {X: 0.955, Y: 0.638, Z: 0.538},
	Gold:      {X: 1.000, Y: 0.782, Z: 0.344},
	Iron:      {X: 0.562, Y: 0.565, Z: 0.578},
	Mercury:   {X: 0.781, Y: 0.780, Z: 0.778},
	Nickel:    {X: 0.660, Y: 0.609, Z: 0.526},
	Palladium: {X: 0.733, Y: 0.697, Z: 0.652},
	Platinum:  {X: 0.673, Y: 0.637, Z: 0.585},
	Silver:    {X: 0.972, Y: 0.960, Z: 0.915},
	Titanium:  {X: 0.542, Y: 0.497, Z: 0.449},
	Zinc:      {X: 0.664, Y: 0.824, Z: 0.850},
}

func (m Metal) String() string {
	names := [...]string{"aluminum", "brass", "chromium", "copper", "gold", "iron", "mercury",
		"nickel", "palladium", "platinum", "silver", "titanium", "zinc"}
	if int(m) < 0 || int(m) >= len(names) {
		return fmt.Sprintf("Metal(%d)", int(m))
	}
	return names[m]
}

// NewGlossyPreset creates a fully metallic glossy material for a named metal
func NewGlossyPreset(metal Metal, roughness float64) (*Material, error) {
	r0, ok := metalReflectance[metal]
	if !ok {
		return nil, invalidMaterial("unknown metal %v", metal)
	}
	return NewGlossy(r0, 1, roughness)
}

// NewBlurry creates a rough dielectric that both reflects and transmits
// through a GGX microsurface
func NewBlurry(albedo *Texture, refractiveIndex, roughness float64) (*Material, error) {
	if albedo == nil {
		return nil, invalidMaterial("blurry material needs an albedo")
	}
	if !(refractiveIndex > 0) || math.IsInf(refractiveIndex, 0) {
		return nil, invalidMaterial("refractive index %v is not positive", refractiveIndex)
	}
	if !validRoughness(roughness) {
		return nil, invalidMaterial("blurry roughness %v is outside (0, 1]", roughness)
	}
	return &Material{kind: KindBlurry, albedo: albedo, ior: refractiveIndex, alpha: roughness * roughness}, nil
}

// finishSample fills the throughput weight from the BSDF value and pdf
func finishSample(wi, n, f core.Vec3, pdf float64) (Sample, bool) {
	if !(pdf > 0) || math.IsInf(pdf, 0) {
		return Sample{}, false
	}
	weight := f.Multiply(math.Abs(wi.Dot(n)) / pdf)
	if !weight.IsFinite() {
		return Sample{}, false
	}
	return Sample{Direction: wi, F: f, PDF: pdf, Weight: weight}, true
}

func (m *Material) sampleGlossy(wo core.Vec3, hit geometry.Hit, sampler core.Sampler) (Sample, bool) {
	frame := core.NewONB(hit.Normal)
	lo := frame.ToLocal(wo)
	if lo.Z <= 0 {
		return Sample{}, false
	}
	dist := ggx{alpha: m.alpha}
	mn := dist.sampleVisible(lo, sampler.Get2D())
	li := core.Reflect(lo.Negate(), mn)
	if li.Z <= 0 {
		return Sample{}, false
	}
	wi := frame.Local(li.X, li.Y, li.Z)
	f, pdf := m.glossyLocal(lo, li)
	return finishSample(wi, hit.Normal, f, pdf)
}

func (m *Material) evaluateGlossy(wo, wi core.Vec3, hit geometry.Hit) (core.Vec3, float64) {
	frame := core.NewONB(hit.Normal)
	lo, li := frame.ToLocal(wo), frame.ToLocal(wi)
	if lo.Z <= 0 || li.Z <= 0 {
		return core.Vec3{}, 0
	}
	return m.glossyLocal(lo, li)
}

// glossyLocal evaluates the GGX reflection lobe in the shading frame
func (m *Material) glossyLocal(lo, li core.Vec3) (core.Vec3, float64) {
	mn := lo.Add(li).Normalize()
	if mn.IsZero() {
		return core.Vec3{}, 0
	}
	dist := ggx{alpha: m.alpha}
	fresnel := schlick(m.r0, li.Dot(mn))
	f := fresnel.Multiply(dist.d(mn) * dist.g2(lo, li) / (4 * lo.Z * li.Z))
	pdf := dist.visiblePDF(lo, mn) / (4 * lo.Dot(mn))
	return f, pdf
}

func (m *Material) sampleBlurry(wo core.Vec3, hit geometry.Hit, mode TransportMode, sampler core.Sampler) (Sample, bool) {
	frame := core.NewONB(hit.Normal)
	lo := frame.ToLocal(wo)
	if lo.Z <= 0 {
		return Sample{}, false
	}
	dist := ggx{alpha: m.alpha}
	eta := m.relativeIndex(hit)
	mn := dist.sampleVisible(lo, sampler.Get2D())
	reflectance := Reflectance(math.Min(1, lo.Dot(mn)), eta)

	var li core.Vec3
	if sampler.Get1D() < reflectance {
		li = core.Reflect(lo.Negate(), mn)
		if li.Z <= 0 {
			return Sample{}, false
		}
	} else {
		var ok bool
		li, ok = refract(lo, mn, eta)
		if !ok || li.Z >= 0 {
			return Sample{}, false
		}
	}

	f, pdf := m.blurryLocal(lo, li, eta, mode)
	albedo := m.albedo.Evaluate(hit.UV, hit.Point, hit.Normal)
	return finishSample(frame.Local(li.X, li.Y, li.Z), hit.Normal, f.MultiplyVec(albedo), pdf)
}

func (m *Material) evaluateBlurry(wo, wi core.Vec3, hit geometry.Hit, mode TransportMode) (core.Vec3, float64) {
	frame := core.NewONB(hit.Normal)
	lo, li := frame.ToLocal(wo), frame.ToLocal(wi)
	if lo.Z <= 0 || li.Z == 0 {
		return core.Vec3{}, 0
	}
	f, pdf := m.blurryLocal(lo, li, m.relativeIndex(hit), mode)
	albedo := m.albedo.Evaluate(hit.UV, hit.Point, hit.Normal)
	return f.MultiplyVec(albedo), pdf
}

// blurryLocal evaluates the rough dielectric lobes in the shading frame.
// lo is on the +Z side; li below the surface selects transmission.
func (m *Material) blurryLocal(lo, li core.Vec3, eta float64, mode TransportMode) (core.Vec3, float64) {
	dist := ggx{alpha: m.alpha}
	reflect := li.Z > 0

	var mn core.Vec3
	if reflect {
		mn = lo.Add(li).Normalize()
	} else {
		mn = lo.Add(li.Multiply(eta)).Normalize()
	}
	if mn.IsZero() {
		return core.Vec3{}, 0
	}
	if mn.Z < 0 {
		mn = mn.Negate()
	}
	// Discard back-facing microfacets
	if lo.Dot(mn) <= 0 || (reflect && li.Dot(mn) <= 0) || (!reflect && li.Dot(mn) >= 0) {
		return core.Vec3{}, 0
	}

	reflectance := Reflectance(math.Min(1, lo.Dot(mn)), eta)
	d := dist.d(mn)
	g := dist.g2(core.NewVec3(li.X, li.Y, math.Abs(li.Z)), lo)

	if reflect {
		f := reflectance * d * g / (4 * lo.Z * li.Z)
		pdf := reflectance * dist.visiblePDF(lo, mn) / (4 * lo.Dot(mn))
		return core.Splat(f), pdf
	}

	denom := li.Dot(mn) + lo.Dot(mn)/eta
	denom *= denom
	transmit := 1 - reflectance
	f := d * g * transmit * math.Abs(li.Dot(mn)*lo.Dot(mn)/(li.Z*lo.Z*denom))
	if mode == Radiance {
		f /= eta * eta
	}
	pdf := transmit * dist.visiblePDF(lo, mn) * math.Abs(li.Dot(mn)) / denom
	return core.Splat(f), pdf
}
