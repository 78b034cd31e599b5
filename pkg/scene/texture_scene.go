package scene

import (
	"github.com/df07/go-photon-tracer/pkg/core"
	"github.com/df07/go-photon-tracer/pkg/geometry"
	"github.com/df07/go-photon-tracer/pkg/material"
)

// gradientPixels builds a vertical two-color ramp for an image texture
func gradientPixels(width, height int, top, bottom core.Vec3) []core.Vec3 {
	pixels := make([]core.Vec3, width*height)
	for y := 0; y < height; y++ {
		t := float64(y) / float64(height-1)
		c := top.Multiply(1 - t).Add(bottom.Multiply(t))
		for x := 0; x < width; x++ {
			pixels[y*width+x] = c
		}
	}
	return pixels
}

// NewTextureScene lines up shapes showing each texture kind: a 3D
// checkerboard sphere, a noise box, a UV checker quad, an image gradient
// triangle, a normal-visualizing sphere and a sphere of mixed diffuse and
// glossy material, all lit by a spot emitter
func NewTextureScene() (*Scene, error) {
	b := &builder{}
	tex := func(t *material.Texture, err error) *material.Texture {
		b.fail(err)
		return t
	}

	white := tex(material.NamedTexture("whitesmoke"))
	blue := tex(material.NamedTexture("navy"))
	brick := tex(material.NamedTexture("sienna"))
	mortar := tex(material.NamedTexture("saddlebrown"))

	ground := b.material(material.NewDiffuse(tex(material.NewCheckerboardTexture(brick, mortar, 0.5))))
	b.add(b.shape(geometry.NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0))), ground)

	checker := b.material(material.NewDiffuse(tex(material.NewCheckerboardTexture(white, blue, 0.25))))
	b.add(b.shape(geometry.NewSphere(core.NewVec3(-5, 1, 0), 1)), checker)

	marble := b.material(material.NewDiffuse(tex(material.NewNoiseTexture(
		material.DefaultNoiseOptions(), b.color("dimgray"), b.color("ivory")))))
	b.add(b.shape(geometry.NewBox(core.NewVec3(-3.6, 0, -0.6), core.NewVec3(-2.4, 1.2, 0.6))), marble)

	uvChecker := b.material(material.NewDiffuse(tex(material.NewUVCheckerboardTexture(white, blue, 0.125))))
	b.add(b.shape(quad(
		core.NewVec3(-1.5, 0, 0), core.NewVec3(-1.5, 2, 0), core.NewVec3(0.5, 2, 0), core.NewVec3(0.5, 0, 0),
	)), uvChecker)

	ramp := tex(material.NewImageTexture(16, 16, gradientPixels(16, 16, b.color("tomato"), b.color("limegreen")), true))
	b.add(b.shape(geometry.NewTriangle(
		core.NewVec3(1, 0, 0), core.NewVec3(2.5, 2, 0), core.NewVec3(2.5, 0, 0),
	)), b.material(material.NewDiffuse(ramp)))

	normals := b.material(material.NewDiffuse(material.NewNormalTexture()))
	b.add(b.shape(geometry.NewSphere(core.NewVec3(3.8, 0.8, 0), 0.8)), normals)

	glossy := b.material(material.NewGlossy(b.color("goldenrod"), 1, 0.3))
	coated := b.material(material.NewMixture(
		[]*material.Material{b.diffuse("crimson"), glossy}, []float64{0.7, 0.3}))
	b.add(b.shape(geometry.NewSphere(core.NewVec3(5.8, 0.8, 0), 0.8)), coated)

	spot := b.material(material.NewSpotEmissive(material.NewSolidColor(core.Splat(40)), 1.4))
	y, h := 7.0, 1.0
	b.add(b.shape(quad(
		core.NewVec3(-h, y, -2-h), core.NewVec3(h, y, -2-h), core.NewVec3(h, y, -2+h), core.NewVec3(-h, y, -2+h),
	)), spot)

	return b.build(View{
		Position: core.NewVec3(0, 2, -10),
		LookAt:   core.NewVec3(0, 1, 0),
		VFov:     50,
	}, core.NewVec3(0.15, 0.18, 0.25))
}
