package scene

import (
	"github.com/df07/go-photon-tracer/pkg/core"
	"github.com/df07/go-photon-tracer/pkg/geometry"
	"github.com/df07/go-photon-tracer/pkg/material"
)

// CausticFocus is where the glass ball of NewCausticScene focuses the light
// on the floor
var CausticFocus = core.NewVec3(0, 0, 0)

// NewCausticScene creates a glass ball hanging over a diffuse floor under a
// small overhead light. A ball lens of index 1.5 and radius r focuses
// parallel light 1.5r from its center, so the ball sits 1.5 above the floor
// and the caustic lands around CausticFocus.
func NewCausticScene() (*Scene, error) {
	b := &builder{}

	floor := b.diffuse("lightgray")
	b.add(b.shape(geometry.NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0))), floor)

	glass := b.material(material.NewRefractive(material.NewSolidColor(core.Splat(1)), 1.5))
	b.add(b.shape(geometry.NewSphere(core.NewVec3(0, 1.5, 0), 1)), glass)

	// Small, bright and far enough away to approximate parallel light
	light := b.material(material.NewEmissive(material.NewSolidColor(core.Splat(400))))
	y, h := 12.0, 0.25
	b.add(b.shape(quad(
		core.NewVec3(-h, y, -h), core.NewVec3(h, y, -h), core.NewVec3(h, y, h), core.NewVec3(-h, y, h),
	)), light)

	return b.build(View{
		Position: core.NewVec3(0, 4, -6),
		LookAt:   core.NewVec3(0, 0.75, 0),
		VFov:     40,
	}, core.Vec3{})
}
