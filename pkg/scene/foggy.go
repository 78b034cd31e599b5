package scene

import (
	"github.com/df07/go-photon-tracer/pkg/core"
	"github.com/df07/go-photon-tracer/pkg/geometry"
	"github.com/df07/go-photon-tracer/pkg/material"
	"github.com/df07/go-photon-tracer/pkg/medium"
)

// NewFoggyScene creates a spot-lit sphere standing in a box of forward
// scattering haze, with a denser isotropic ball of smoke next to it
func NewFoggyScene() (*Scene, error) {
	b := &builder{}

	b.add(b.shape(geometry.NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0))), b.diffuse("darkslategray"))
	b.add(b.shape(geometry.NewSphere(core.NewVec3(-1, 1, 0), 1)), b.diffuse("steelblue"))

	// Spot emitter pointing down at the sphere
	spot := b.material(material.NewSpotEmissive(material.NewSolidColor(core.Splat(60)), 0.8))
	y, h := 5.0, 0.5
	b.add(b.shape(quad(
		core.NewVec3(-1-h, y, -h), core.NewVec3(-1+h, y, -h), core.NewVec3(-1+h, y, h), core.NewVec3(-1-h, y, h),
	)), spot)

	haze := b.medium(medium.NewHenyeyGreenstein(core.Splat(0.9), core.Splat(12), 0.6))
	b.addVolume(b.shape(geometry.NewBox(core.NewVec3(-4, 0, -4), core.NewVec3(4, 6, 4))), haze)

	smoke := b.medium(medium.NewIsotropic(b.color("wheat"), core.Splat(0.6)))
	b.addVolume(b.shape(geometry.NewSphere(core.NewVec3(1.5, 0.8, 0), 0.8)), smoke)

	return b.build(View{
		Position: core.NewVec3(0, 2.5, -9),
		LookAt:   core.NewVec3(0, 1.2, 0),
		VFov:     40,
	}, core.Vec3{})
}
