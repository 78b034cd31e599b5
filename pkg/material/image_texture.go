package material

import (
	"image"
	"math"

	"github.com/df07/go-photon-tracer/pkg/core"
)

// ImageTexture provides color from a 2D image
type ImageTexture struct {
	Width    int
	Height   int
	Pixels   []core.Vec3 // Row-major: Pixels[y*Width + x], linear RGB
	Bilinear bool        // Interpolate between texels instead of nearest-neighbor
	average  core.Vec3
}

// NewImageTexture creates a new image texture over a linear RGB pixel grid
func NewImageTexture(width, height int, pixels []core.Vec3, bilinear bool) (*Texture, error) {
	if width <= 0 || height <= 0 {
		return nil, invalidMaterial("image texture size %dx%d is empty", width, height)
	}
	if len(pixels) != width*height {
		return nil, invalidMaterial("image texture has %d pixels, expected %d", len(pixels), width*height)
	}

	sum := core.Vec3{}
	for _, p := range pixels {
		sum = sum.Add(p)
	}
	img := &ImageTexture{
		Width:    width,
		Height:   height,
		Pixels:   pixels,
		Bilinear: bilinear,
		average:  sum.Multiply(1 / float64(len(pixels))),
	}
	return &Texture{kind: TextureImage, image: img}, nil
}

// NewImageTextureFromImage converts a decoded sRGB image into a linear texture
func NewImageTextureFromImage(src image.Image, bilinear bool) (*Texture, error) {
	bounds := src.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	pixels := make([]core.Vec3, width*height)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r, g, b, _ := src.At(x+bounds.Min.X, y+bounds.Min.Y).RGBA()
			// RGBA returns uint32 in [0, 65535], convert to [0, 1]
			pixels[y*width+x] = core.NewVec3(
				srgbToLinear(float64(r)/65535.0),
				srgbToLinear(float64(g)/65535.0),
				srgbToLinear(float64(b)/65535.0),
			)
		}
	}

	return NewImageTexture(width, height, pixels, bilinear)
}

func srgbToLinear(c float64) float64 {
	if c <= 0.04045 {
		return c / 12.92
	}
	return math.Pow((c+0.055)/1.055, 2.4)
}

// wrap maps a texture coordinate into [0, 1)
func wrap(x float64) float64 {
	x -= math.Floor(x)
	if x >= 1 {
		return 0
	}
	return x
}

func (t *ImageTexture) texel(x, y int) core.Vec3 {
	x = ((x % t.Width) + t.Width) % t.Width
	y = min(max(y, 0), t.Height-1)
	return t.Pixels[y*t.Width+x]
}

// evaluate samples the texture; V=0 is the bottom row of the image
func (t *ImageTexture) evaluate(uv core.Vec2) core.Vec3 {
	u := wrap(uv.X)
	v := wrap(uv.Y)

	if !t.Bilinear {
		x := min(int(u*float64(t.Width)), t.Width-1)
		y := min(int((1.0-v)*float64(t.Height)), t.Height-1)
		return t.texel(x, y)
	}

	fx := u*float64(t.Width) - 0.5
	fy := (1.0-v)*float64(t.Height) - 0.5
	x0, y0 := int(math.Floor(fx)), int(math.Floor(fy))
	tx, ty := fx-float64(x0), fy-float64(y0)

	top := t.texel(x0, y0).Multiply(1 - tx).Add(t.texel(x0+1, y0).Multiply(tx))
	bottom := t.texel(x0, y0+1).Multiply(1 - tx).Add(t.texel(x0+1, y0+1).Multiply(tx))
	return top.Multiply(1 - ty).Add(bottom.Multiply(ty))
}
