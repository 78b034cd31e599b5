package renderer

import (
	"time"

	"github.com/df07/go-photon-tracer/pkg/core"
	"github.com/df07/go-photon-tracer/pkg/photon"
)

// RenderStats contains statistics about one iteration
type RenderStats struct {
	Iteration      int           // Iterations completed, including this one
	TotalPixels    int           // Total number of pixels rendered
	TotalSamples   int           // Camera samples taken this iteration
	GlobalPhotons  int           // Photons stored in this iteration's global map
	CausticPhotons int           // Photons stored in this iteration's caustic map
	Elapsed        time.Duration // Wall time of the iteration
}

// PixelStats tracks the progressive state of a single pixel
type PixelStats struct {
	ColorAccum       core.Vec3 // Path traced radiance sum
	LuminanceAccum   float64   // Luminance accumulator for variance
	LuminanceSqAccum float64   // Luminance squared for variance
	SampleCount      int       // Number of samples taken

	Global  photon.Observation
	Caustic photon.Observation
}

// AddSample adds a new path traced radiance sample
func (ps *PixelStats) AddSample(color core.Vec3) {
	ps.ColorAccum = ps.ColorAccum.Add(color)
	luminance := color.Luminance()
	ps.LuminanceAccum += luminance
	ps.LuminanceSqAccum += luminance * luminance
	ps.SampleCount++
}

// GetColor returns the current average path traced radiance
func (ps *PixelStats) GetColor() core.Vec3 {
	if ps.SampleCount == 0 {
		return core.Vec3{X: 0, Y: 0, Z: 0}
	}
	return ps.ColorAccum.Multiply(1.0 / float64(ps.SampleCount))
}

// Resolve returns the pixel value: the path traced mean plus both photon
// map radiance estimates
func (ps *PixelStats) Resolve(globalEmitted, causticEmitted int) core.Vec3 {
	return ps.GetColor().
		Add(ps.Global.Radiance(globalEmitted)).
		Add(ps.Caustic.Radiance(causticEmitted))
}

// merge folds one iteration of tile results into the pixel
func (ps *PixelStats) merge(sample pixelSample) {
	ps.ColorAccum = ps.ColorAccum.Add(sample.color)
	ps.LuminanceAccum += sample.luminance
	ps.LuminanceSqAccum += sample.luminanceSq
	ps.SampleCount += sample.count
	ps.Global.Accumulate(sample.global)
	ps.Caustic.Accumulate(sample.caustic)
}

// pixelSample is the tile-local result of one pixel for one iteration
type pixelSample struct {
	color       core.Vec3
	luminance   float64
	luminanceSq float64
	count       int
	global      photon.Estimate
	caustic     photon.Estimate
}
