package material

import (
	"math"
	"strings"

	"golang.org/x/image/colornames"

	"github.com/df07/go-photon-tracer/pkg/core"
)

// NamedColor returns the linear RGB value of an SVG 1.1 color name such as
// "firebrick" or "lightsteelblue"
func NamedColor(name string) (core.Vec3, error) {
	c, ok := colornames.Map[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return core.Vec3{}, invalidMaterial("unknown color name %q", name)
	}
	return core.NewVec3(
		srgbToLinear(float64(c.R)/255),
		srgbToLinear(float64(c.G)/255),
		srgbToLinear(float64(c.B)/255),
	), nil
}

// NamedTexture returns a solid texture for a named color
func NamedTexture(name string) (*Texture, error) {
	c, err := NamedColor(name)
	if err != nil {
		return nil, err
	}
	return NewSolidColor(c), nil
}

// LinearToSRGB applies the sRGB transfer curve to one linear channel
func LinearToSRGB(c float64) float64 {
	if c <= 0.0031308 {
		return 12.92 * c
	}
	return 1.055*math.Pow(c, 1/2.4) - 0.055
}
