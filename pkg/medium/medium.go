// Package medium models participating media: homogeneous volumes that
// absorb and scatter light according to a phase function.
package medium

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-photon-tracer/pkg/core"
)

// ErrInvalidMedium is returned by medium constructors for out-of-range parameters
var ErrInvalidMedium = errors.New("invalid medium")

func invalidMedium(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidMedium, fmt.Sprintf(format, args...))
}

// Kind identifies the concrete medium variant
type Kind int

const (
	KindVacuum Kind = iota
	KindIsotropic
	KindHenyeyGreenstein
)

func (k Kind) String() string {
	switch k {
	case KindVacuum:
		return "vacuum"
	case KindIsotropic:
		return "isotropic"
	case KindHenyeyGreenstein:
		return "henyey-greenstein"
	default:
		return "unknown"
	}
}

// Medium is a homogeneous participating medium. Directions follow the
// surface convention: wo points back toward where the ray came from and wi
// points toward the next vertex. Media are immutable and shared by pointer.
type Medium struct {
	kind   Kind
	sigmaT core.Vec3 // extinction per unit length, per channel
	sigmaS core.Vec3 // scattering per unit length, per channel
	g      float64   // Henyey-Greenstein asymmetry
}

// NewVacuum returns a medium that neither absorbs nor scatters
func NewVacuum() *Medium {
	return &Medium{kind: KindVacuum}
}

// NewIsotropic creates a medium that scatters uniformly over the sphere.
// albedo is the per-channel single-scattering albedo in [0, 1]; meanFreePath
// is the per-channel average distance between interactions.
func NewIsotropic(albedo, meanFreePath core.Vec3) (*Medium, error) {
	sigmaT, sigmaS, err := coefficients(albedo, meanFreePath)
	if err != nil {
		return nil, err
	}
	return &Medium{kind: KindIsotropic, sigmaT: sigmaT, sigmaS: sigmaS}, nil
}

// NewHenyeyGreenstein creates an anisotropic medium. g in [-1, 1] is the mean
// cosine of the scattering angle: positive values scatter forward.
func NewHenyeyGreenstein(albedo, meanFreePath core.Vec3, g float64) (*Medium, error) {
	if !(g >= -1 && g <= 1) {
		return nil, invalidMedium("asymmetry %v is outside [-1, 1]", g)
	}
	sigmaT, sigmaS, err := coefficients(albedo, meanFreePath)
	if err != nil {
		return nil, err
	}
	return &Medium{kind: KindHenyeyGreenstein, sigmaT: sigmaT, sigmaS: sigmaS, g: g}, nil
}

func coefficients(albedo, meanFreePath core.Vec3) (core.Vec3, core.Vec3, error) {
	for axis := 0; axis < 3; axis++ {
		mfp := meanFreePath.Component(axis)
		if !(mfp > 0) || math.IsInf(mfp, 0) {
			return core.Vec3{}, core.Vec3{}, invalidMedium("mean free path %v must be positive", meanFreePath)
		}
		a := albedo.Component(axis)
		if !(a >= 0 && a <= 1) {
			return core.Vec3{}, core.Vec3{}, invalidMedium("albedo %v is outside [0, 1]", albedo)
		}
	}
	sigmaT := core.NewVec3(1/meanFreePath.X, 1/meanFreePath.Y, 1/meanFreePath.Z)
	return sigmaT, albedo.MultiplyVec(sigmaT), nil
}

// Kind returns the variant held by the medium
func (m *Medium) Kind() Kind {
	return m.kind
}

// IsVacuum reports whether the medium has no effect on light
func (m *Medium) IsVacuum() bool {
	return m.kind == KindVacuum
}

// SigmaT returns the extinction coefficient
func (m *Medium) SigmaT() core.Vec3 {
	return m.sigmaT
}

// SigmaS returns the scattering coefficient
func (m *Medium) SigmaS() core.Vec3 {
	return m.sigmaS
}

// Asymmetry returns the Henyey-Greenstein g, zero for other kinds
func (m *Medium) Asymmetry() float64 {
	return m.g
}

// Transmittance returns the fraction of light surviving distance d
func (m *Medium) Transmittance(d float64) core.Vec3 {
	if m.kind == KindVacuum {
		return core.Splat(1)
	}
	return m.sigmaT.Multiply(-d).Exp()
}

// PhaseValue returns the phase function density for scattering from the
// travel direction -wo into wi
func (m *Medium) PhaseValue(wo, wi core.Vec3) float64 {
	switch m.kind {
	case KindIsotropic:
		return 1 / (4 * math.Pi)
	case KindHenyeyGreenstein:
		return henyeyGreenstein(-wo.Dot(wi), m.g)
	}
	return 0
}

func henyeyGreenstein(cosTheta, g float64) float64 {
	denom := 1 + g*g - 2*g*cosTheta
	return (1 - g*g) / (4 * math.Pi * denom * math.Sqrt(math.Max(denom, 1e-12)))
}

// SampleDirection draws wi from the phase function. The returned pdf equals
// PhaseValue, so the phase weight of a sampled direction is one.
func (m *Medium) SampleDirection(wo core.Vec3, sampler core.Sampler) (core.Vec3, float64) {
	switch m.kind {
	case KindIsotropic:
		return core.SampleOnUnitSphere(sampler.Get2D()), 1 / (4 * math.Pi)
	case KindHenyeyGreenstein:
		u := sampler.Get2D()
		var cosTheta float64
		if math.Abs(m.g) < 1e-3 {
			cosTheta = 1 - 2*u.X
		} else {
			g := m.g
			s := (1 - g*g) / (1 + g - 2*g*u.X)
			cosTheta = (1 + g*g - s*s) / (2 * g)
		}
		cosTheta = math.Max(-1, math.Min(1, cosTheta))
		sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
		phi := 2 * math.Pi * u.Y

		frame := core.NewONB(wo.Negate())
		wi := frame.Local(sinTheta*math.Cos(phi), sinTheta*math.Sin(phi), cosTheta)
		return wi, henyeyGreenstein(cosTheta, m.g)
	}
	return wo.Negate(), 0
}

// DistanceSample is the outcome of free-flight sampling along a segment
type DistanceSample struct {
	Distance  float64   // Scattering distance, or the segment length when passing through
	Scattered bool      // A real scattering event happened inside the segment
	Weight    core.Vec3 // Throughput multiplier, including σs on scattering
}

// SampleDistance samples a free-flight distance up to maxDist. One channel
// is picked uniformly and the pdf averages all three (spectral MIS), which
// keeps chromatic media unbiased.
func (m *Medium) SampleDistance(maxDist float64, sampler core.Sampler) DistanceSample {
	if m.kind == KindVacuum || m.sigmaT.MaxComponent() == 0 {
		return DistanceSample{Distance: maxDist, Weight: core.Splat(1)}
	}

	channel := min(int(sampler.Get1D()*3), 2)
	sigma := m.sigmaT.Component(channel)
	t := -math.Log(1-sampler.Get1D()) / sigma

	if t < maxDist {
		tr := m.Transmittance(t)
		// Averaged over channels: σt·exp(-σt·t)
		pdf := m.sigmaT.MultiplyVec(tr).Average()
		if pdf <= 0 {
			return DistanceSample{Distance: t, Scattered: true}
		}
		return DistanceSample{Distance: t, Scattered: true, Weight: m.sigmaS.MultiplyVec(tr).Multiply(1 / pdf)}
	}

	tr := m.Transmittance(maxDist)
	pass := tr.Average()
	if pass <= 0 {
		return DistanceSample{Distance: maxDist}
	}
	return DistanceSample{Distance: maxDist, Weight: tr.Multiply(1 / pass)}
}
