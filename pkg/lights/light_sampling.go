package lights

import (
	"math"

	"github.com/df07/go-photon-tracer/pkg/core"
)

// SampleEmissionDirection draws a cosine-weighted direction around normal,
// restricted to the cone cos(theta) >= cosBeam (-1 or 0 for the full
// hemisphere). Returns the direction and its solid angle pdf.
func SampleEmissionDirection(normal core.Vec3, cosBeam float64, sample core.Vec2) (core.Vec3, float64) {
	cosMax2 := 0.0
	if cosBeam > 0 {
		cosMax2 = cosBeam * cosBeam
	}
	// cos² is uniform in [cosBeam², 1] for a cosine-weighted cone
	cosTheta := math.Sqrt(1 - sample.X*(1-cosMax2))
	sinTheta := math.Sqrt(math.Max(0, 1-cosTheta*cosTheta))
	phi := 2 * math.Pi * sample.Y

	direction := core.NewONB(normal).Local(sinTheta*math.Cos(phi), sinTheta*math.Sin(phi), cosTheta)
	return direction, cosTheta / (math.Pi * (1 - cosMax2))
}

// ConeCosineIntegral returns ∫cos dω over the cone cos(theta) >= cosBeam,
// which is π for a full hemisphere
func ConeCosineIntegral(cosBeam float64) float64 {
	if cosBeam <= 0 {
		return math.Pi
	}
	return math.Pi * (1 - cosBeam*cosBeam)
}

// SolidAnglePDF converts an area density at a light point into a solid angle
// density seen from a point at the given distance. Grazing samples get zero.
func SolidAnglePDF(areaPDF, distance, cosLight float64) float64 {
	cosLight = math.Abs(cosLight)
	if cosLight < 1e-12 {
		return 0
	}
	return areaPDF * distance * distance / cosLight
}
