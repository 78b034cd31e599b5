package material

import (
	"math"

	"github.com/df07/go-photon-tracer/pkg/core"
)

type checkerboard struct {
	even, odd *Texture
	frequency float64
	useUV     bool
}

// NewCheckerboardTexture alternates two textures over 3D cells of size scale
func NewCheckerboardTexture(even, odd *Texture, scale float64) (*Texture, error) {
	return newCheckerboard(even, odd, scale, false)
}

// NewUVCheckerboardTexture alternates two textures over UV cells of size scale
func NewUVCheckerboardTexture(even, odd *Texture, scale float64) (*Texture, error) {
	return newCheckerboard(even, odd, scale, true)
}

func newCheckerboard(even, odd *Texture, scale float64, useUV bool) (*Texture, error) {
	if even == nil || odd == nil {
		return nil, invalidMaterial("checkerboard needs two textures")
	}
	if !(scale > 0) {
		return nil, invalidMaterial("checkerboard scale %v is not positive", scale)
	}
	return &Texture{
		kind:    TextureCheckerboard,
		checker: &checkerboard{even: even, odd: odd, frequency: 1 / scale, useUV: useUV},
	}, nil
}

func (c *checkerboard) evaluate(uv core.Vec2, point, normal core.Vec3) core.Vec3 {
	var sum int64
	if c.useUV {
		sum = int64(math.Floor(uv.X*c.frequency)) + int64(math.Floor(uv.Y*c.frequency))
	} else {
		sum = int64(math.Floor(point.X*c.frequency)) + int64(math.Floor(point.Y*c.frequency)) + int64(math.Floor(point.Z*c.frequency))
	}
	if sum%2 == 0 {
		return c.even.Evaluate(uv, point, normal)
	}
	return c.odd.Evaluate(uv, point, normal)
}

// noiseTexture maps fractal Perlin noise onto a gradient between two colors
type noiseTexture struct {
	frequency  float64
	octaves    int
	lacunarity float64
	gain       float64
	low, high  core.Vec3
}

// NoiseOptions configures the fractal sum of a noise texture
type NoiseOptions struct {
	Scale      float64 // World-space size of a noise cell
	Octaves    int
	Lacunarity float64 // Frequency multiplier per octave, > 1
	Gain       float64 // Amplitude multiplier per octave, in (0, 1)
}

// DefaultNoiseOptions returns a four-octave fBm with unit cells
func DefaultNoiseOptions() NoiseOptions {
	return NoiseOptions{Scale: 1, Octaves: 4, Lacunarity: 2, Gain: 0.5}
}

// NewNoiseTexture creates a Perlin fBm texture blending low and high
func NewNoiseTexture(options NoiseOptions, low, high core.Vec3) (*Texture, error) {
	if !(options.Scale > 0) {
		return nil, invalidMaterial("noise scale %v is not positive", options.Scale)
	}
	if options.Octaves <= 0 {
		return nil, invalidMaterial("noise needs at least one octave")
	}
	if !(options.Lacunarity > 1) {
		return nil, invalidMaterial("noise lacunarity %v must exceed 1", options.Lacunarity)
	}
	if !(options.Gain > 0 && options.Gain < 1) {
		return nil, invalidMaterial("noise gain %v must be in (0, 1)", options.Gain)
	}
	return &Texture{
		kind: TextureNoise,
		noise: &noiseTexture{
			frequency:  1 / options.Scale,
			octaves:    options.Octaves,
			lacunarity: options.Lacunarity,
			gain:       options.Gain,
			low:        low,
			high:       high,
		},
	}, nil
}

func (n *noiseTexture) evaluate(point core.Vec3) core.Vec3 {
	p := point.Multiply(n.frequency)
	value := 0.0
	amplitude := n.gain
	for i := 0; i < n.octaves; i++ {
		value += amplitude * perlin(p)
		p = p.Multiply(n.lacunarity)
		amplitude *= n.gain
	}
	t := math.Max(-1, math.Min(1, value))*0.5 + 0.5
	return n.low.Multiply(1 - t).Add(n.high.Multiply(t))
}

// Ken Perlin's reference permutation
var permutation = [256]int{
	151, 160, 137, 91, 90, 15, 131, 13, 201, 95, 96, 53, 194, 233, 7, 225,
	140, 36, 103, 30, 69, 142, 8, 99, 37, 240, 21, 10, 23, 190, 6, 148,
	247, 120, 234, 75, 0, 26, 197, 62, 94, 252, 219, 203, 117, 35, 11, 32,
	57, 177, 33, 88, 237, 149, 56, 87, 174, 20, 125, 136, 171, 168, 68, 175,
	74, 165, 71, 134, 139, 48, 27, 166, 77, 146, 158, 231, 83, 111, 229, 122,
	60, 211, 133, 230, 220, 105, 92, 41, 55, 46, 245, 40, 244, 102, 143, 54,
	65, 25, 63, 161, 1, 216, 80, 73, 209, 76, 132, 187, 208, 89, 18, 169,
	200, 196, 135, 130, 116, 188, 159, 86, 164, 100, 109, 198, 173, 186, 3, 64,
	52, 217, 226, 250, 124, 123, 5, 202, 38, 147, 118, 126, 255, 82, 85, 212,
	207, 206, 59, 227, 47, 16, 58, 17, 182, 189, 28, 42, 223, 183, 170, 213,
	119, 248, 152, 2, 44, 154, 163, 70, 221, 153, 101, 155, 167, 43, 172, 9,
	129, 22, 39, 253, 19, 98, 108, 110, 79, 113, 224, 232, 178, 185, 112, 104,
	218, 246, 97, 228, 251, 34, 242, 193, 238, 210, 144, 12, 191, 179, 162, 241,
	81, 51, 145, 235, 249, 14, 239, 107, 49, 192, 214, 31, 181, 199, 106, 157,
	184, 84, 204, 176, 115, 121, 50, 45, 127, 4, 150, 254, 138, 236, 205, 93,
	222, 114, 67, 29, 24, 72, 243, 141, 128, 195, 78, 66, 215, 61, 156, 180,
}

func perm(i int) int {
	return permutation[i&255]
}

func fade(t float64) float64 {
	return t * t * t * (t*(t*6-15) + 10)
}

func lerp(t, a, b float64) float64 {
	return a + t*(b-a)
}

func grad(hash int, x, y, z float64) float64 {
	switch hash & 0xf {
	case 0x0, 0xc:
		return x + y
	case 0x1:
		return -x + y
	case 0x2:
		return x - y
	case 0x3:
		return -x - y
	case 0x4:
		return x + z
	case 0x5:
		return -x + z
	case 0x6:
		return x - z
	case 0x7:
		return -x - z
	case 0x8:
		return y + z
	case 0x9, 0xd:
		return -y + z
	case 0xa:
		return y - z
	case 0xe:
		return y - x
	default:
		return -y - z
	}
}

// perlin evaluates improved Perlin noise, roughly in [-1, 1]
func perlin(p core.Vec3) float64 {
	fx, fy, fz := math.Floor(p.X), math.Floor(p.Y), math.Floor(p.Z)
	x, y, z := p.X-fx, p.Y-fy, p.Z-fz
	xi, yi, zi := int(int64(fx)&255), int(int64(fy)&255), int(int64(fz)&255)
	u, v, w := fade(x), fade(y), fade(z)

	a := perm(xi) + yi
	aa, ab := perm(a)+zi, perm(a+1)+zi
	b := perm(xi+1) + yi
	ba, bb := perm(b)+zi, perm(b+1)+zi

	return lerp(w,
		lerp(v,
			lerp(u, grad(perm(aa), x, y, z), grad(perm(ba), x-1, y, z)),
			lerp(u, grad(perm(ab), x, y-1, z), grad(perm(bb), x-1, y-1, z))),
		lerp(v,
			lerp(u, grad(perm(aa+1), x, y, z-1), grad(perm(ba+1), x-1, y, z-1)),
			lerp(u, grad(perm(ab+1), x, y-1, z-1), grad(perm(bb+1), x-1, y-1, z-1))))
}
