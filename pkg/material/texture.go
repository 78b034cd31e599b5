package material

import (
	"math"

	"github.com/df07/go-photon-tracer/pkg/core"
)

// TextureKind identifies the concrete texture variant
type TextureKind int

const (
	TextureConstant TextureKind = iota
	TextureCheckerboard
	TextureImage
	TextureNoise
	TextureNormal
	TextureUV
)

// Texture provides spatially-varying colors for materials. Textures are
// immutable and shared by pointer between materials.
type Texture struct {
	kind    TextureKind
	color   core.Vec3
	checker *checkerboard
	image   *ImageTexture
	noise   *noiseTexture
}

// NewSolidColor creates a texture that returns the same color everywhere
func NewSolidColor(color core.Vec3) *Texture {
	return &Texture{kind: TextureConstant, color: color}
}

// NewNormalTexture visualizes the shading normal, mapped from [-1,1] to [0,1]
func NewNormalTexture() *Texture {
	return &Texture{kind: TextureNormal}
}

// NewUVTexture visualizes texture coordinates: U in red, V in green
func NewUVTexture() *Texture {
	return &Texture{kind: TextureUV}
}

// Kind returns the variant held by the texture
func (t *Texture) Kind() TextureKind {
	return t.kind
}

// Evaluate returns color at given UV coordinates, 3D point and normal.
// UV is used for image textures, point for procedural textures.
func (t *Texture) Evaluate(uv core.Vec2, point, normal core.Vec3) core.Vec3 {
	switch t.kind {
	case TextureConstant:
		return t.color
	case TextureCheckerboard:
		return t.checker.evaluate(uv, point, normal)
	case TextureImage:
		return t.image.evaluate(uv)
	case TextureNoise:
		return t.noise.evaluate(point)
	case TextureNormal:
		return normal.Add(core.Splat(1)).Multiply(0.5)
	case TextureUV:
		return core.NewVec3(uv.X-math.Floor(uv.X), uv.Y-math.Floor(uv.Y), 0)
	}
	return core.Vec3{}
}

// IsConstant reports whether the texture returns one color everywhere
func (t *Texture) IsConstant() bool {
	return t.kind == TextureConstant
}

// Average returns a representative color, used for light power estimates
func (t *Texture) Average() core.Vec3 {
	switch t.kind {
	case TextureConstant:
		return t.color
	case TextureCheckerboard:
		return t.checker.even.Average().Add(t.checker.odd.Average()).Multiply(0.5)
	case TextureImage:
		return t.image.average
	case TextureNoise:
		return t.noise.low.Add(t.noise.high).Multiply(0.5)
	default:
		return core.Splat(0.5)
	}
}
