// Package scene holds the entity and volume collections a renderer traces
// against, plus a few built-in demo scenes.
package scene

import (
	"errors"
	"fmt"
	"math"

	"github.com/df07/go-photon-tracer/pkg/core"
	"github.com/df07/go-photon-tracer/pkg/geometry"
	"github.com/df07/go-photon-tracer/pkg/material"
	"github.com/df07/go-photon-tracer/pkg/medium"
)

// ShadowEpsilon is the relative offset used to step off surfaces
const ShadowEpsilon = 1e-6

// Epsilon returns the ray offset used to step off a surface at p, scaled
// with the magnitude of p
func Epsilon(p core.Vec3) float64 {
	return ShadowEpsilon * max(1, math.Abs(p.X), math.Abs(p.Y), math.Abs(p.Z))
}

// ErrInvalidScene is returned when an entity or volume is incomplete
var ErrInvalidScene = errors.New("invalid scene")

func invalidScene(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidScene, fmt.Sprintf(format, args...))
}

// View is the suggested camera placement for a scene
type View struct {
	Position core.Vec3
	LookAt   core.Vec3
	VFov     float64 // Vertical field of view in degrees
}

// Scene bundles everything the built-in scenes provide
type Scene struct {
	Entities   *EntityScene
	Volumes    *VolumeScene
	View       View
	Background core.Vec3
}

// builder collects entities and volumes, remembering the first error so
// scene constructors read as a flat list of additions
type builder struct {
	entities []Entity
	volumes  []Volume
	err      error
}

func (b *builder) fail(err error) {
	if err != nil && b.err == nil {
		b.err = err
	}
}

func (b *builder) shape(s geometry.Shape, err error) geometry.Shape {
	b.fail(err)
	return s
}

func (b *builder) material(m *material.Material, err error) *material.Material {
	b.fail(err)
	return m
}

func (b *builder) medium(m *medium.Medium, err error) *medium.Medium {
	b.fail(err)
	return m
}

func (b *builder) color(name string) core.Vec3 {
	c, err := material.NamedColor(name)
	b.fail(err)
	return c
}

func (b *builder) diffuse(name string) *material.Material {
	return b.material(material.NewDiffuse(material.NewSolidColor(b.color(name))))
}

func (b *builder) add(shape geometry.Shape, mat *material.Material) {
	b.entities = append(b.entities, Entity{Shape: shape, Material: mat})
}

func (b *builder) addVolume(shape geometry.Shape, m *medium.Medium) {
	b.volumes = append(b.volumes, Volume{Shape: shape, Medium: m})
}

// quad returns the polygon through four corners; the front face follows
// the right-hand rule over the vertex order
func quad(a, b, c, d core.Vec3) (geometry.Shape, error) {
	return geometry.NewPolygon([]core.Vec3{a, b, c, d})
}

func (b *builder) build(view View, background core.Vec3) (*Scene, error) {
	if b.err != nil {
		return nil, b.err
	}
	entities, err := NewEntityScene(b.entities)
	if err != nil {
		return nil, err
	}
	volumes, err := NewVolumeScene(b.volumes)
	if err != nil {
		return nil, err
	}
	return &Scene{Entities: entities, Volumes: volumes, View: view, Background: background}, nil
}
