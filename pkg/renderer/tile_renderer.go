package renderer

import (
	"image"

	"github.com/df07/go-photon-tracer/pkg/core"
	"github.com/df07/go-photon-tracer/pkg/integrator"
	"github.com/df07/go-photon-tracer/pkg/photon"
)

// Tile represents a rectangular region of the image to be rendered
type Tile struct {
	ID     int             // Unique tile identifier
	Bounds image.Rectangle // Pixel bounds (x0,y0,x1,y1)
}

// NewTileGrid creates a grid of tiles covering the entire image
func NewTileGrid(width, height, tileSize int) []*Tile {
	var tiles []*Tile
	tileID := 0

	tilesX := (width + tileSize - 1) / tileSize
	tilesY := (height + tileSize - 1) / tileSize

	for tileY := 0; tileY < tilesY; tileY++ {
		for tileX := 0; tileX < tilesX; tileX++ {
			x0 := tileX * tileSize
			y0 := tileY * tileSize
			x1 := min(x0+tileSize, width)
			y1 := min(y0+tileSize, height)

			tiles = append(tiles, &Tile{ID: tileID, Bounds: image.Rect(x0, y0, x1, y1)})
			tileID++
		}
	}

	return tiles
}

// iterationState is what every tile of one iteration shares read-only
type iterationState struct {
	index   int
	maps    integrator.Maps
	pixels  []PixelStats // Observations as of the start of the iteration
	width   int
	samples int
	seed    uint64
	nearest int
}

// TileRenderer renders the pixels of a tile with an integrator
type TileRenderer struct {
	camera     *Camera
	integrator integrator.Integrator
}

// NewTileRenderer creates a new tile renderer with the given camera and integrator
func NewTileRenderer(camera *Camera, integratorInst integrator.Integrator) *TileRenderer {
	return &TileRenderer{
		camera:     camera,
		integrator: integratorInst,
	}
}

// RenderTile renders one iteration of a tile into a tile-local buffer,
// row-major over the tile bounds
func (tr *TileRenderer) RenderTile(bounds image.Rectangle, state *iterationState) []pixelSample {
	out := make([]pixelSample, 0, bounds.Dx()*bounds.Dy())
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			out = append(out, tr.renderPixel(x, y, state))
		}
	}
	return out
}

// renderPixel takes every sample of one pixel. The random stream depends
// only on the seed, iteration and pixel, never on which worker runs it.
func (tr *TileRenderer) renderPixel(x, y int, state *iterationState) pixelSample {
	ps := &state.pixels[y*state.width+x]
	queries := integrator.Queries{
		Global:  ps.Global.Query(state.nearest),
		Caustic: ps.Caustic.Query(state.nearest),
	}
	sampler := core.NewSeededSampler(core.MixSeed(state.seed, uint64(state.index), uint64(x), uint64(y)), 0)

	var sample pixelSample
	globals := make([]photon.Estimate, 0, state.samples)
	caustics := make([]photon.Estimate, 0, state.samples)
	for s := 0; s < state.samples; s++ {
		ray := tr.camera.GetRay(x, y, sampler)
		result := tr.integrator.Li(ray, state.maps, queries, sampler)

		luminance := result.Radiance.Luminance()
		sample.color = sample.color.Add(result.Radiance)
		sample.luminance += luminance
		sample.luminanceSq += luminance * luminance
		sample.count++
		globals = append(globals, result.Global)
		caustics = append(caustics, result.Caustic)
	}
	sample.global = photon.AverageEstimates(globals, state.samples)
	sample.caustic = photon.AverageEstimates(caustics, state.samples)
	return sample
}
