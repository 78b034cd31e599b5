package scene

import (
	"math"

	"github.com/df07/go-photon-tracer/pkg/core"
	"github.com/df07/go-photon-tracer/pkg/geometry"
	"github.com/df07/go-photon-tracer/pkg/material"
)

// oklchToRGB converts an OKLCH color to clamped linear RGB.
// L is lightness in [0, 1], C chroma (0 to about 0.4), H hue in degrees.
func oklchToRGB(l, c, h float64) core.Vec3 {
	hRad := h * math.Pi / 180.0
	a := c * math.Cos(hRad)
	b := c * math.Sin(hRad)

	// OKLAB to LMS, then cube
	l_ := l + 0.3963377774*a + 0.2158037573*b
	m_ := l - 0.1055613458*a - 0.0638541728*b
	s_ := l - 0.0894841775*a - 1.2914855480*b
	l_ = l_ * l_ * l_
	m_ = m_ * m_ * m_
	s_ = s_ * s_ * s_

	rgb := core.NewVec3(
		+4.0767416621*l_-3.3077115913*m_+0.2309699292*s_,
		-1.2684380046*l_+2.6097574011*m_-0.3413193965*s_,
		-0.0041960863*l_-0.7034186147*m_+1.7076147010*s_,
	)
	return rgb.Clamp(0, 1)
}

// SphereGridSize is the number of spheres along each side of the grid
const SphereGridSize = 6

// NewSphereGridScene creates a grid of glossy spheres on a diffuse floor.
// Hue varies along x, chroma along z, and roughness grows along the
// diagonal. The last row is frosted glass so the floor picks up caustics
// through rough transmission.
func NewSphereGridScene() (*Scene, error) {
	b := &builder{}

	b.add(b.shape(geometry.NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0))), b.diffuse("gray"))

	light := b.material(material.NewEmissive(material.NewSolidColor(core.NewVec3(12, 11.5, 10))))
	b.add(b.shape(geometry.NewSphere(core.NewVec3(8, 12, -6), 2.5)), light)

	spacing := 1.0
	radius := 0.35
	offset := spacing * float64(SphereGridSize-1) / 2
	for i := 0; i < SphereGridSize; i++ {
		for j := 0; j < SphereGridSize; j++ {
			center := core.NewVec3(float64(i)*spacing-offset, radius, float64(j)*spacing-offset)
			roughness := 0.05 + 0.6*float64(i+j)/float64(2*(SphereGridSize-1))

			var mat *material.Material
			if j == SphereGridSize-1 {
				mat = b.material(material.NewBlurry(material.NewSolidColor(core.Splat(1)), 1.5, roughness))
			} else {
				hue := 360 * float64(i) / float64(SphereGridSize)
				chroma := 0.05 + 0.2*float64(j)/float64(SphereGridSize-1)
				lightness := 0.65 + 0.1*math.Sin(float64(i+j)*0.5)
				mat = b.material(material.NewGlossy(oklchToRGB(lightness, chroma, hue), 1, roughness))
			}
			b.add(b.shape(geometry.NewSphere(center, radius)), mat)
		}
	}

	return b.build(View{
		Position: core.NewVec3(0, 5, -9),
		LookAt:   core.NewVec3(0, 0.3, 0),
		VFov:     40,
	}, core.NewVec3(0.05, 0.06, 0.08))
}
