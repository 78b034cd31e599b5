package geometry

import (
	"github.com/df07/go-photon-tracer/pkg/core"
)

// Mesh is an indexed triangle mesh with its own BVH over the faces
type Mesh struct {
	triangles []*Triangle
	bvh       *BVH
	bbox      core.AABB
	cdf       []float64 // cumulative triangle areas
	area      float64
}

// MeshOptions carries optional per-vertex attributes
type MeshOptions struct {
	Normals []core.Vec3 // Per-vertex normals, same length as vertices
	UVs     []core.Vec2 // Per-vertex texture coordinates, same length as vertices
}

// NewMesh creates a triangle mesh from shared vertices and face indices.
// Degenerate faces are rejected rather than skipped.
func NewMesh(vertices []core.Vec3, faces [][3]int, options *MeshOptions) (Shape, error) {
	if len(faces) == 0 {
		return Shape{}, invalidShape("mesh has no faces")
	}
	if options != nil {
		if options.Normals != nil && len(options.Normals) != len(vertices) {
			return Shape{}, invalidShape("mesh has %d normals for %d vertices", len(options.Normals), len(vertices))
		}
		if options.UVs != nil && len(options.UVs) != len(vertices) {
			return Shape{}, invalidShape("mesh has %d uvs for %d vertices", len(options.UVs), len(vertices))
		}
	}

	m := &Mesh{
		triangles: make([]*Triangle, len(faces)),
		cdf:       make([]float64, len(faces)),
		bbox:      core.EmptyAABB(),
	}
	boxes := make([]core.AABB, len(faces))
	for i, face := range faces {
		for _, index := range face {
			if index < 0 || index >= len(vertices) {
				return Shape{}, invalidShape("mesh face %d references vertex %d of %d", i, index, len(vertices))
			}
		}
		tri, err := newTriangle(vertices[face[0]], vertices[face[1]], vertices[face[2]])
		if err != nil {
			return Shape{}, invalidShape("mesh face %d: %v", i, err)
		}
		if options != nil && options.Normals != nil {
			tri.Normals = &[3]core.Vec3{options.Normals[face[0]], options.Normals[face[1]], options.Normals[face[2]]}
		}
		if options != nil && options.UVs != nil {
			tri.UVs = &[3]core.Vec2{options.UVs[face[0]], options.UVs[face[1]], options.UVs[face[2]]}
		}

		m.triangles[i] = tri
		boxes[i] = tri.BoundingBox()
		m.bbox = m.bbox.Union(boxes[i])
		m.area += tri.Area()
		m.cdf[i] = m.area
	}
	m.bvh = NewBVH(boxes)

	return Shape{kind: KindMesh, mesh: m}, nil
}

// Hit finds the nearest face hit through the mesh BVH
func (m *Mesh) Hit(ray core.Ray, tMin, tMax float64) (Hit, bool) {
	var best Hit
	_, _, ok := m.bvh.NearestHit(ray, tMin, tMax, func(index int, tMin, tMax float64) (float64, bool) {
		hit, ok := m.triangles[index].Hit(ray, tMin, tMax)
		if ok {
			best = hit
		}
		return hit.T, ok
	})
	return best, ok
}

// BoundingBox returns the box around every face
func (m *Mesh) BoundingBox() core.AABB {
	return m.bbox
}

// Area returns the summed face area
func (m *Mesh) Area() float64 {
	return m.area
}

// TriangleCount returns the number of faces
func (m *Mesh) TriangleCount() int {
	return len(m.triangles)
}

// SamplePoint picks a face by area and a uniform point on it
func (m *Mesh) SamplePoint(sampler core.Sampler) (PointSample, bool) {
	tri := m.triangles[sampleByArea(m.cdf, sampler.Get1D())]
	sample, ok := tri.SamplePoint(sampler)
	if !ok {
		return PointSample{}, false
	}
	sample.PDF = 1.0 / m.area
	return sample, true
}
