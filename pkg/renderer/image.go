package renderer

import (
	"image"
	"image/color"

	"gonum.org/v1/gonum/stat"

	"github.com/df07/go-photon-tracer/pkg/core"
)

// Image is a linear float RGB pixel buffer, row 0 at the top
type Image struct {
	Width, Height int
	Pix           []core.Vec3
}

// NewImage allocates a black image
func NewImage(width, height int) *Image {
	return &Image{Width: width, Height: height, Pix: make([]core.Vec3, width*height)}
}

// At returns the pixel at (x, y)
func (img *Image) At(x, y int) core.Vec3 {
	return img.Pix[y*img.Width+x]
}

// Set stores the pixel at (x, y)
func (img *Image) Set(x, y int, c core.Vec3) {
	img.Pix[y*img.Width+x] = c
}

// ToRGBA converts to 8-bit color with gamma correction and clamping
func (img *Image) ToRGBA(gamma float64) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, img.Width, img.Height))
	for y := 0; y < img.Height; y++ {
		for x := 0; x < img.Width; x++ {
			out.SetRGBA(x, y, vec3ToColor(img.At(x, y), gamma))
		}
	}
	return out
}

// vec3ToColor converts a Vec3 color to RGBA with proper clamping and gamma correction
func vec3ToColor(colorVec core.Vec3, gamma float64) color.RGBA {
	colorVec = colorVec.Clamp(0.0, 1.0).GammaCorrect(gamma)
	return color.RGBA{
		R: uint8(255 * colorVec.X),
		G: uint8(255 * colorVec.Y),
		B: uint8(255 * colorVec.Z),
		A: 255,
	}
}

// ImageStats summarizes pixel luminance
type ImageStats struct {
	MeanLuminance     float64
	LuminanceVariance float64
}

// Stats returns the mean and variance of pixel luminance
func (img *Image) Stats() ImageStats {
	if len(img.Pix) == 0 {
		return ImageStats{}
	}
	lum := make([]float64, len(img.Pix))
	for i, p := range img.Pix {
		lum[i] = p.Luminance()
	}
	mean, variance := stat.MeanVariance(lum, nil)
	if len(lum) == 1 {
		variance = 0
	}
	return ImageStats{MeanLuminance: mean, LuminanceVariance: variance}
}
