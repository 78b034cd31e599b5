package renderer

import (
	"errors"
	"math"
	"testing"

	"github.com/df07/go-photon-tracer/pkg/core"
)

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*Config)
		valid  bool
	}{
		{"defaults", func(*Config) {}, true},
		{"zero iterations", func(c *Config) { c.Iterations = 0 }, false},
		{"zero samples", func(c *Config) { c.SamplesPerIteration = 0 }, false},
		{"zero depth", func(c *Config) { c.MaxDepth = 0 }, false},
		{"zero invisible depth", func(c *Config) { c.MaxInvisibleDepth = 0 }, false},
		{"invisible depth above depth", func(c *Config) { c.MaxDepth = 3; c.MaxInvisibleDepth = 4 }, false},
		{"invisible depth equal to depth", func(c *Config) { c.MaxDepth = 4; c.MaxInvisibleDepth = 4 }, true},
		{"negative photons", func(c *Config) { c.PhotonsCaustic = -1 }, false},
		{"no nearest photons", func(c *Config) { c.InitialNumNearest = 0 }, false},
		{"no nearest photons without photon maps", func(c *Config) {
			c.InitialNumNearest = 0
			c.PhotonsGlobal = 0
			c.PhotonsCaustic = 0
		}, true},
		{"negative workers", func(c *Config) { c.NumWorkers = -2 }, false},
		{"negative tile size", func(c *Config) { c.TileSize = -1 }, false},
		{"non-finite background", func(c *Config) { c.BackgroundColor = core.NewVec3(math.NaN(), 0, 0) }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := DefaultConfig()
			tt.modify(&config)
			err := config.Validate()
			if tt.valid && err != nil {
				t.Errorf("Expected valid config, got %v", err)
			}
			if !tt.valid && !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Expected ErrInvalidConfig, got %v", err)
			}
		})
	}
}
