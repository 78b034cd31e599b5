package scene

import (
	"math"

	"github.com/df07/go-photon-tracer/pkg/core"
	"github.com/df07/go-photon-tracer/pkg/geometry"
	"github.com/df07/go-photon-tracer/pkg/material"
)

// NewTriangleMeshScene creates a rotated box, a pyramid and a smooth
// icosahedron built as meshes in their own unit frames and placed with
// instance transforms. A second glass icosahedron shares the mesh of the
// first.
func NewTriangleMeshScene() (*Scene, error) {
	b := &builder{}

	b.add(b.shape(geometry.NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0))), b.diffuse("silver"))

	warm := b.material(material.NewEmissive(material.NewSolidColor(core.NewVec3(12, 11, 10))))
	b.add(b.shape(geometry.NewSphere(core.NewVec3(2, 6, -3), 1.5)), warm)
	cool := b.material(material.NewEmissive(material.NewSolidColor(core.NewVec3(6, 7, 8))))
	b.add(b.shape(geometry.NewSphere(core.NewVec3(-3, 4, -2), 0.8)), cool)

	up := core.NewVec3(0, 1, 0)

	box := b.shape(boxMesh())
	copper := b.material(material.NewGlossyPreset(material.Copper, 0.2))
	b.add(b.shape(geometry.NewInstance(box, geometry.NewTransform().
		Rotate(up, math.Pi/6).
		Translate(core.NewVec3(-2, 0.5, 0)))), copper)

	pyramid := b.shape(pyramidMesh())
	b.add(b.shape(geometry.NewInstance(pyramid, geometry.NewTransform().
		Scale(1.5).
		Rotate(up, math.Pi/4).
		Translate(core.NewVec3(0, 0, 0.5)))), b.diffuse("royalblue"))

	ico := b.shape(icosahedronMesh())
	gold := b.material(material.NewGlossyPreset(material.Gold, 0.05))
	b.add(b.shape(geometry.NewInstance(ico, geometry.NewTransform().
		Scale(0.8).
		Rotate(up, math.Pi/3).
		Translate(core.NewVec3(2, 0.8, 0)))), gold)

	glass := b.material(material.NewRefractive(material.NewSolidColor(core.Splat(1)), 1.5))
	b.add(b.shape(geometry.NewInstance(ico, geometry.NewTransform().
		Scale(0.4).
		Translate(core.NewVec3(0.8, 0.4, -1.5)))), glass)

	return b.build(View{
		Position: core.NewVec3(0, 2, -6),
		LookAt:   core.NewVec3(0, 1, 0),
		VFov:     45,
	}, core.NewVec3(0.1, 0.12, 0.15))
}

// boxMesh returns a unit cube centered at the origin
func boxMesh() (geometry.Shape, error) {
	h := 0.5
	vertices := []core.Vec3{
		{X: -h, Y: -h, Z: -h}, {X: h, Y: -h, Z: -h}, {X: h, Y: h, Z: -h}, {X: -h, Y: h, Z: -h},
		{X: -h, Y: -h, Z: h}, {X: h, Y: -h, Z: h}, {X: h, Y: h, Z: h}, {X: -h, Y: h, Z: h},
	}
	faces := [][3]int{
		{0, 2, 1}, {0, 3, 2}, // back (z-)
		{4, 5, 6}, {4, 6, 7}, // front (z+)
		{0, 4, 7}, {0, 7, 3}, // left (x-)
		{1, 2, 6}, {1, 6, 5}, // right (x+)
		{0, 1, 5}, {0, 5, 4}, // bottom (y-)
		{3, 7, 6}, {3, 6, 2}, // top (y+)
	}
	return geometry.NewMesh(vertices, faces, nil)
}

// pyramidMesh returns a square pyramid with unit base standing on y = 0
func pyramidMesh() (geometry.Shape, error) {
	h := 0.5
	vertices := []core.Vec3{
		{X: -h, Y: 0, Z: -h}, {X: h, Y: 0, Z: -h}, {X: h, Y: 0, Z: h}, {X: -h, Y: 0, Z: h},
		{X: 0, Y: 1.2, Z: 0},
	}
	faces := [][3]int{
		{0, 1, 2}, {0, 2, 3},
		{0, 4, 1}, {1, 4, 2}, {2, 4, 3}, {3, 4, 0},
	}
	uvs := []core.Vec2{{X: 0, Y: 0}, {X: 1, Y: 0}, {X: 1, Y: 1}, {X: 0, Y: 1}, {X: 0.5, Y: 0.5}}
	return geometry.NewMesh(vertices, faces, &geometry.MeshOptions{UVs: uvs})
}

// icosahedronMesh returns a unit-radius icosahedron with vertex normals
// pointing away from the center, so it shades like a faceted sphere
func icosahedronMesh() (geometry.Shape, error) {
	p := math.Phi
	raw := []core.Vec3{
		{X: -1, Y: p}, {X: 1, Y: p}, {X: -1, Y: -p}, {X: 1, Y: -p},
		{Y: -1, Z: p}, {Y: 1, Z: p}, {Y: -1, Z: -p}, {Y: 1, Z: -p},
		{X: p, Z: -1}, {X: p, Z: 1}, {X: -p, Z: -1}, {X: -p, Z: 1},
	}
	vertices := make([]core.Vec3, len(raw))
	normals := make([]core.Vec3, len(raw))
	for i, v := range raw {
		normals[i] = v.Normalize()
		vertices[i] = normals[i]
	}
	faces := [][3]int{
		{0, 11, 5}, {0, 5, 1}, {0, 1, 7}, {0, 7, 10}, {0, 10, 11},
		{1, 5, 9}, {5, 11, 4}, {11, 10, 2}, {10, 7, 6}, {7, 1, 8},
		{3, 9, 4}, {3, 4, 2}, {3, 2, 6}, {3, 6, 8}, {3, 8, 9},
		{4, 9, 5}, {2, 4, 11}, {6, 2, 10}, {8, 6, 7}, {9, 8, 1},
	}
	return geometry.NewMesh(vertices, faces, &geometry.MeshOptions{Normals: normals})
}
