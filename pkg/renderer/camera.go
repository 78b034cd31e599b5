package renderer

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-photon-tracer/pkg/core"
	"github.com/df07/go-photon-tracer/pkg/scene"
)

// ErrInvalidCamera is returned when a camera configuration is rejected
var ErrInvalidCamera = errors.New("invalid camera")

func invalidCamera(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidCamera, fmt.Sprintf(format, args...))
}

// CameraConfig describes a pinhole or thin lens camera. The viewport is a
// rectangle FocalLength in front of Position, ViewportHeight tall, with the
// image's aspect ratio.
type CameraConfig struct {
	Position       core.Vec3
	Direction      core.Vec3 // View direction, need not be normalized
	Width, Height  int       // Resolution in pixels
	ViewportHeight float64
	FocalLength    float64
	Aperture       float64 // Lens radius, 0 for a pinhole
	FocusDistance  float64 // Distance to the plane in focus, 0 uses FocalLength
}

// Camera generates rays for rendering
type Camera struct {
	config     CameraConfig
	forward    core.Vec3
	horizontal core.Vec3 // Viewport edge from left to right
	vertical   core.Vec3 // Viewport edge from top to bottom
}

// NewCamera creates a camera from the given configuration
func NewCamera(config CameraConfig) (*Camera, error) {
	switch {
	case config.Width <= 0 || config.Height <= 0:
		return nil, invalidCamera("resolution %dx%d is empty", config.Width, config.Height)
	case config.Direction.IsZero() || !config.Direction.IsFinite():
		return nil, invalidCamera("direction %v is degenerate", config.Direction)
	case !config.Position.IsFinite():
		return nil, invalidCamera("position %v is not finite", config.Position)
	case !(config.FocalLength > 0) || math.IsInf(config.FocalLength, 0):
		return nil, invalidCamera("focal length %v is not positive", config.FocalLength)
	case !(config.ViewportHeight > 0) || math.IsInf(config.ViewportHeight, 0):
		return nil, invalidCamera("viewport height %v is not positive", config.ViewportHeight)
	case !(config.Aperture >= 0) || math.IsInf(config.Aperture, 0):
		return nil, invalidCamera("aperture %v is negative", config.Aperture)
	case !(config.FocusDistance >= 0) || math.IsInf(config.FocusDistance, 0):
		return nil, invalidCamera("focus distance %v is negative", config.FocusDistance)
	}

	forward := config.Direction.Normalize()
	var right, down core.Vec3
	if math.Abs(forward.X) < 1e-12 && math.Abs(forward.Z) < 1e-12 {
		// Looking straight up or down: keep +x to the right
		right = core.NewVec3(1, 0, 0)
		down = core.NewVec3(0, 0, -math.Copysign(1, forward.Y))
	} else {
		right = core.NewVec3(-forward.Z, 0, forward.X).Normalize()
		down = forward.Cross(right)
	}

	viewportWidth := config.ViewportHeight * float64(config.Width) / float64(config.Height)
	return &Camera{
		config:     config,
		forward:    forward,
		horizontal: right.Multiply(viewportWidth),
		vertical:   down.Multiply(config.ViewportHeight),
	}, nil
}

// NewCameraFromView creates a camera placed as a scene suggests, with a
// unit focal length
func NewCameraFromView(view scene.View, width, height int) (*Camera, error) {
	if !(view.VFov > 0 && view.VFov < 180) {
		return nil, invalidCamera("vertical field of view %v is outside (0, 180)", view.VFov)
	}
	theta := view.VFov * math.Pi / 180
	return NewCamera(CameraConfig{
		Position:       view.Position,
		Direction:      view.LookAt.Subtract(view.Position),
		Width:          width,
		Height:         height,
		ViewportHeight: 2 * math.Tan(theta/2),
		FocalLength:    1,
	})
}

// Width returns the horizontal resolution
func (c *Camera) Width() int { return c.config.Width }

// Height returns the vertical resolution
func (c *Camera) Height() int { return c.config.Height }

// Forward returns the unit view direction
func (c *Camera) Forward() core.Vec3 { return c.forward }

// viewportPoint returns the point on the viewport at fractional image
// coordinates (u, v), with v = 0 at the top row
func (c *Camera) viewportPoint(u, v float64) core.Vec3 {
	return c.config.Position.
		Add(c.forward.Multiply(c.config.FocalLength)).
		Add(c.horizontal.Multiply(u - 0.5)).
		Add(c.vertical.Multiply(v - 0.5))
}

// GetRay generates a ray through a random point of pixel (x, y). Row 0 is
// the top of the image. Pinhole rays start on the viewport.
func (c *Camera) GetRay(x, y int, sampler core.Sampler) core.Ray {
	jitter := sampler.Get2D()
	u := (float64(x) + jitter.X) / float64(c.config.Width)
	v := (float64(y) + jitter.Y) / float64(c.config.Height)
	point := c.viewportPoint(u, v)

	if c.config.Aperture == 0 {
		return core.NewRay(point, point.Subtract(c.config.Position).Normalize())
	}

	focus := c.config.FocusDistance
	if focus == 0 {
		focus = c.config.FocalLength
	}
	target := c.config.Position.Add(point.Subtract(c.config.Position).Multiply(focus / c.config.FocalLength))
	lens := core.SamplePointInUnitDisk(sampler.Get2D()).Multiply(c.config.Aperture)
	origin := c.config.Position.
		Add(c.horizontal.Normalize().Multiply(lens.X)).
		Add(c.vertical.Normalize().Multiply(lens.Y))
	return core.NewRay(origin, target.Subtract(origin).Normalize())
}
