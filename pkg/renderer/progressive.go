// Package renderer drives progressive rendering: each iteration traces
// fresh photon maps, renders every tile in parallel with the path tracer
// and folds the results into per-pixel progressive statistics.
package renderer

import (
	"context"
	"fmt"
	"runtime"
	"time"

	"github.com/df07/go-photon-tracer/pkg/core"
	"github.com/df07/go-photon-tracer/pkg/integrator"
	"github.com/df07/go-photon-tracer/pkg/lights"
	"github.com/df07/go-photon-tracer/pkg/photon"
	"github.com/df07/go-photon-tracer/pkg/scene"
)

// DefaultLogger implements core.Logger by writing to stdout
type DefaultLogger struct{}

func (dl *DefaultLogger) Printf(format string, args ...interface{}) {
	fmt.Printf(format, args...)
}

// NewDefaultLogger creates a new default logger
func NewDefaultLogger() core.Logger {
	return &DefaultLogger{}
}

// Renderer manages progressive rendering with multiple iterations
type Renderer struct {
	camera *Camera
	config Config
	logger core.Logger

	emitter      *photon.Emitter
	tileRenderer *TileRenderer
	tiles        []*Tile
	pixels       []PixelStats

	iteration      int
	globalEmitted  int // Photons emitted for global maps over all iterations
	causticEmitted int
}

// New creates a renderer. Nil scenes are treated as empty and a nil logger
// discards output.
func New(camera *Camera, entities *scene.EntityScene, volumes *scene.VolumeScene, config Config, logger core.Logger) (*Renderer, error) {
	if camera == nil {
		return nil, invalidCamera("camera is nil")
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}
	if entities == nil {
		var err error
		if entities, err = scene.NewEntityScene(nil); err != nil {
			return nil, err
		}
	}
	if logger == nil {
		logger = core.NopLogger()
	}
	if config.TileSize == 0 {
		config.TileSize = DefaultConfig().TileSize
	}
	if config.NumWorkers == 0 {
		config.NumWorkers = runtime.NumCPU()
	}

	sampler := lights.NewSampler(entities)
	tracer := integrator.NewPathTracer(entities, volumes, sampler, integrator.Config{
		MaxDepth:                  config.MaxDepth,
		MaxInvisibleDepth:         config.MaxInvisibleDepth,
		RussianRouletteMinBounces: config.RussianRouletteMinBounces,
		Background:                config.BackgroundColor,
	})
	emitter := photon.NewEmitter(entities, sampler, photon.EmitterOptions{
		MaxDepth:  config.MaxDepth,
		BatchSize: config.PhotonBatchSize,
		Workers:   config.NumWorkers,
	})

	return &Renderer{
		camera:       camera,
		config:       config,
		logger:       logger,
		emitter:      emitter,
		tileRenderer: NewTileRenderer(camera, tracer),
		tiles:        NewTileGrid(camera.Width(), camera.Height(), config.TileSize),
		pixels:       make([]PixelStats, camera.Width()*camera.Height()),
	}, nil
}

// Iteration returns the number of completed iterations
func (r *Renderer) Iteration() int {
	return r.iteration
}

// Config returns the configuration in use, with defaults filled in
func (r *Renderer) Config() Config {
	return r.config
}

// RenderIteration runs one progressive iteration: photon passes, then every
// tile in parallel, then the merge into the pixel statistics
func (r *Renderer) RenderIteration() (RenderStats, error) {
	startTime := time.Now()
	index := r.iteration
	seed := core.MixSeed(r.config.Seed, uint64(index))

	var maps integrator.Maps
	var err error
	if r.config.PhotonsGlobal > 0 {
		if maps.Global, err = r.emitter.TraceMap(photon.Global, r.config.PhotonsGlobal, seed); err != nil {
			return RenderStats{}, fmt.Errorf("iteration %d: global photons: %w", index+1, err)
		}
	}
	if r.config.PhotonsCaustic > 0 {
		if maps.Caustic, err = r.emitter.TraceMap(photon.Caustic, r.config.PhotonsCaustic, seed); err != nil {
			return RenderStats{}, fmt.Errorf("iteration %d: caustic photons: %w", index+1, err)
		}
	}
	r.logger.Printf("Iteration %d: stored %d global and %d caustic photons\n",
		index+1, maps.Global.Len(), maps.Caustic.Len())

	state := &iterationState{
		index:   index,
		maps:    maps,
		pixels:  r.pixels,
		width:   r.camera.Width(),
		samples: r.config.SamplesPerIteration,
		seed:    r.config.Seed,
		nearest: r.config.InitialNumNearest,
	}

	// Workers read the pixel observations while rendering, so results are
	// only merged once every tile is done
	results, err := core.RunParallel(r.tiles, r.config.NumWorkers, func(tile *Tile) []pixelSample {
		return r.tileRenderer.RenderTile(tile.Bounds, state)
	})
	if err != nil {
		return RenderStats{}, fmt.Errorf("iteration %d: tiles: %w", index+1, err)
	}

	stats := RenderStats{
		Iteration:      index + 1,
		TotalPixels:    len(r.pixels),
		GlobalPhotons:  maps.Global.Len(),
		CausticPhotons: maps.Caustic.Len(),
	}
	for i, pixels := range results {
		r.mergeTile(r.tiles[i], pixels)
		for _, p := range pixels {
			stats.TotalSamples += p.count
		}
	}
	r.globalEmitted += r.config.PhotonsGlobal
	r.causticEmitted += r.config.PhotonsCaustic
	r.iteration++

	stats.Elapsed = time.Since(startTime)
	r.logger.Printf("Iteration %d completed in %v\n", stats.Iteration, stats.Elapsed)
	return stats, nil
}

// mergeTile adds a tile's iteration buffer to the pixel statistics
func (r *Renderer) mergeTile(tile *Tile, pixels []pixelSample) {
	bounds := tile.Bounds
	i := 0
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r.pixels[y*r.camera.Width()+x].merge(pixels[i])
			i++
		}
	}
}

// Snapshot returns the current progressive image
func (r *Renderer) Snapshot() *Image {
	img := NewImage(r.camera.Width(), r.camera.Height())
	for i := range r.pixels {
		img.Pix[i] = r.pixels[i].Resolve(r.globalEmitted, r.causticEmitted)
	}
	return img
}

// Render runs the remaining iterations and returns the final image. The
// context is checked between iterations; on cancellation the image so far
// is returned with the context's error.
func (r *Renderer) Render(ctx context.Context) (*Image, error) {
	r.logger.Printf("Rendering %dx%d: %d iterations of %d samples (using %d workers)...\n",
		r.camera.Width(), r.camera.Height(), r.config.Iterations, r.config.SamplesPerIteration, r.config.NumWorkers)

	for r.iteration < r.config.Iterations {
		select {
		case <-ctx.Done():
			r.logger.Printf("Rendering cancelled before iteration %d\n", r.iteration+1)
			return r.Snapshot(), ctx.Err()
		default:
		}
		if _, err := r.RenderIteration(); err != nil {
			return r.Snapshot(), err
		}
	}
	return r.Snapshot(), nil
}

// PassResult contains the image after one iteration
type PassResult struct {
	Image  *Image
	Stats  RenderStats
	IsLast bool
}

// RenderProgressive renders the remaining iterations in the background and
// sends the image after each one. Both channels are closed when rendering
// ends; the error channel carries at most one error.
func (r *Renderer) RenderProgressive(ctx context.Context) (<-chan PassResult, <-chan error) {
	passChan := make(chan PassResult, 1)
	errChan := make(chan error, 1)

	go func() {
		defer close(passChan)
		defer close(errChan)

		for r.iteration < r.config.Iterations {
			select {
			case <-ctx.Done():
				errChan <- ctx.Err()
				return
			default:
			}

			stats, err := r.RenderIteration()
			if err != nil {
				errChan <- err
				return
			}

			result := PassResult{
				Image:  r.Snapshot(),
				Stats:  stats,
				IsLast: r.iteration == r.config.Iterations,
			}
			select {
			case passChan <- result:
			case <-ctx.Done():
				errChan <- ctx.Err()
				return
			}
		}
	}()

	return passChan, errChan
}
