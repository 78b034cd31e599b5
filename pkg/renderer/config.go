package renderer

import (
	"errors"
	"fmt"

	"github.com/df07/go-photon-tracer/pkg/core"
)

// ErrInvalidConfig is returned when a renderer configuration is rejected
var ErrInvalidConfig = errors.New("invalid renderer config")

func invalidConfig(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// Config contains the rendering configuration
type Config struct {
	Iterations          int // Progressive iterations, each with fresh photon maps
	SamplesPerIteration int // Camera samples per pixel per iteration
	MaxDepth            int // Maximum path vertices
	MaxInvisibleDepth   int // Vertices after the first diffuse hit before the global map is used

	PhotonsGlobal     int // Photons emitted per iteration for the global map, 0 disables it
	PhotonsCaustic    int // Photons emitted per iteration for the caustic map, 0 disables it
	InitialNumNearest int // Photons gathered to pick each pixel's initial radius

	BackgroundColor core.Vec3 // Radiance of escaping rays

	NumWorkers                int    // Parallel workers, 0 uses runtime.NumCPU()
	TileSize                  int    // Tile edge in pixels
	Seed                      uint64 // Base seed for every random stream
	RussianRouletteMinBounces int    // Bounces before Russian roulette applies
	PhotonBatchSize           int    // Photons per parallel tracing batch
}

// DefaultConfig returns sensible default values
func DefaultConfig() Config {
	return Config{
		Iterations:          4,
		SamplesPerIteration: 4,
		MaxDepth:            12,
		MaxInvisibleDepth:   4,

		PhotonsGlobal:     200000,
		PhotonsCaustic:    1000000,
		InitialNumNearest: 100,

		TileSize:                  32,
		RussianRouletteMinBounces: 3,
		PhotonBatchSize:           4096,
	}
}

// Validate reports the first configuration error found
func (c Config) Validate() error {
	switch {
	case c.Iterations <= 0:
		return invalidConfig("iterations must be positive, got %d", c.Iterations)
	case c.SamplesPerIteration <= 0:
		return invalidConfig("samples per iteration must be positive, got %d", c.SamplesPerIteration)
	case c.MaxDepth <= 0:
		return invalidConfig("max depth must be positive, got %d", c.MaxDepth)
	case c.MaxInvisibleDepth <= 0:
		return invalidConfig("max invisible depth must be positive, got %d", c.MaxInvisibleDepth)
	case c.MaxInvisibleDepth > c.MaxDepth:
		return invalidConfig("max invisible depth %d exceeds max depth %d", c.MaxInvisibleDepth, c.MaxDepth)
	case c.PhotonsGlobal < 0 || c.PhotonsCaustic < 0:
		return invalidConfig("photon counts must not be negative, got %d and %d", c.PhotonsGlobal, c.PhotonsCaustic)
	case (c.PhotonsGlobal > 0 || c.PhotonsCaustic > 0) && c.InitialNumNearest <= 0:
		return invalidConfig("initial number of nearest photons must be positive, got %d", c.InitialNumNearest)
	case c.NumWorkers < 0:
		return invalidConfig("worker count must not be negative, got %d", c.NumWorkers)
	case c.TileSize < 0:
		return invalidConfig("tile size must not be negative, got %d", c.TileSize)
	case c.RussianRouletteMinBounces < 0:
		return invalidConfig("russian roulette bounces must not be negative, got %d", c.RussianRouletteMinBounces)
	case c.PhotonBatchSize < 0:
		return invalidConfig("photon batch size must not be negative, got %d", c.PhotonBatchSize)
	case !c.BackgroundColor.IsFinite():
		return invalidConfig("background color %v is not finite", c.BackgroundColor)
	}
	return nil
}
