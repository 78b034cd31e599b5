package scene

import (
	"github.com/df07/go-photon-tracer/pkg/core"
	"github.com/df07/go-photon-tracer/pkg/geometry"
	"github.com/df07/go-photon-tracer/pkg/material"
)

// CornellBoxSize is the edge length of the built-in Cornell box
const CornellBoxSize = 555.0

// NewCornellBox creates the classic Cornell box: white floor, ceiling and
// back wall, red left wall, green right wall, a square ceiling light, a
// brushed aluminium sphere and a glass sphere
func NewCornellBox() (*Scene, error) {
	b := &builder{}
	s := CornellBoxSize

	white := b.diffuse("gainsboro")
	red := b.diffuse("firebrick")
	green := b.diffuse("forestgreen")

	// Walls face into the box
	b.add(b.shape(quad(
		core.NewVec3(0, 0, 0), core.NewVec3(0, 0, s), core.NewVec3(s, 0, s), core.NewVec3(s, 0, 0),
	)), white) // floor
	b.add(b.shape(quad(
		core.NewVec3(0, s, 0), core.NewVec3(s, s, 0), core.NewVec3(s, s, s), core.NewVec3(0, s, s),
	)), white) // ceiling
	b.add(b.shape(quad(
		core.NewVec3(0, 0, s), core.NewVec3(0, s, s), core.NewVec3(s, s, s), core.NewVec3(s, 0, s),
	)), white) // back
	b.add(b.shape(quad(
		core.NewVec3(0, 0, 0), core.NewVec3(0, s, 0), core.NewVec3(0, s, s), core.NewVec3(0, 0, s),
	)), red) // left
	b.add(b.shape(quad(
		core.NewVec3(s, 0, 0), core.NewVec3(s, 0, s), core.NewVec3(s, s, s), core.NewVec3(s, s, 0),
	)), green) // right

	// Ceiling light, slightly below the ceiling and facing down
	lightSize := 130.0
	lo := (s - lightSize) / 2
	hi := lo + lightSize
	y := s - 1
	light := b.material(material.NewEmissive(material.NewSolidColor(core.Splat(15))))
	b.add(b.shape(quad(
		core.NewVec3(lo, y, lo), core.NewVec3(hi, y, lo), core.NewVec3(hi, y, hi), core.NewVec3(lo, y, hi),
	)), light)

	metal := b.material(material.NewGlossyPreset(material.Aluminum, 0.25))
	glass := b.material(material.NewRefractive(material.NewSolidColor(core.Splat(1)), 1.5))
	b.add(b.shape(geometry.NewSphere(core.NewVec3(185, 82.5, 169), 82.5)), metal)
	b.add(b.shape(geometry.NewSphere(core.NewVec3(370, 90, 351), 90)), glass)

	return b.build(View{
		Position: core.NewVec3(278, 278, -800),
		LookAt:   core.NewVec3(278, 278, 0),
		VFov:     40,
	}, core.Vec3{})
}
