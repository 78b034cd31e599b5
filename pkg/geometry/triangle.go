package geometry

import (
	"github.com/df07/go-photon-tracer/pkg/core"
)

// minTriangleArea is the smallest area accepted for a triangle
const minTriangleArea = 1e-12

// Triangle represents a single triangle defined by three vertices
type Triangle struct {
	V0, V1, V2 core.Vec3     // The three vertices
	Normals    *[3]core.Vec3 // Optional per-vertex normals for smooth shading
	UVs        *[3]core.Vec2 // Optional per-vertex texture coordinates
	normal     core.Vec3     // Cached geometric normal
	area       float64
}

// NewTriangle creates a triangle shape; the vertices must span a non-zero area
func NewTriangle(v0, v1, v2 core.Vec3) (Shape, error) {
	t, err := newTriangle(v0, v1, v2)
	if err != nil {
		return Shape{}, err
	}
	return Shape{kind: KindTriangle, triangle: t}, nil
}

func newTriangle(v0, v1, v2 core.Vec3) (*Triangle, error) {
	cross := v1.Subtract(v0).Cross(v2.Subtract(v0))
	area := 0.5 * cross.Length()
	if !(area > minTriangleArea) {
		return nil, invalidShape("triangle %v %v %v has zero area", v0, v1, v2)
	}
	return &Triangle{V0: v0, V1: v1, V2: v2, normal: cross.Normalize(), area: area}, nil
}

// Hit tests if a ray intersects with the triangle using the Möller-Trumbore algorithm
func (t *Triangle) Hit(ray core.Ray, tMin, tMax float64) (Hit, bool) {
	const epsilon = 1e-12

	edge1 := t.V1.Subtract(t.V0)
	edge2 := t.V2.Subtract(t.V0)

	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)

	// If determinant is near zero, ray lies in plane of triangle
	if a > -epsilon && a < epsilon {
		return Hit{}, false
	}

	f := 1.0 / a
	s := ray.Origin.Subtract(t.V0)
	u := f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return Hit{}, false
	}

	q := s.Cross(edge1)
	v := f * ray.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return Hit{}, false
	}

	dist := f * edge2.Dot(q)
	if dist <= tMin || dist >= tMax {
		return Hit{}, false
	}

	hit := Hit{T: dist, Point: ray.At(dist)}
	hit.SetFaceNormal(ray, t.shadingNormal(u, v))
	hit.UV = t.uv(u, v)
	return hit, true
}

// shadingNormal interpolates vertex normals when present
func (t *Triangle) shadingNormal(u, v float64) core.Vec3 {
	if t.Normals == nil {
		return t.normal
	}
	w := 1 - u - v
	n := t.Normals[0].Multiply(w).Add(t.Normals[1].Multiply(u)).Add(t.Normals[2].Multiply(v)).Normalize()
	if n.IsZero() {
		return t.normal
	}
	return n
}

func (t *Triangle) uv(u, v float64) core.Vec2 {
	if t.UVs == nil {
		return core.NewVec2(u, v)
	}
	w := 1 - u - v
	return core.NewVec2(
		t.UVs[0].X*w+t.UVs[1].X*u+t.UVs[2].X*v,
		t.UVs[0].Y*w+t.UVs[1].Y*u+t.UVs[2].Y*v,
	)
}

// BoundingBox returns the padded box around the three vertices
func (t *Triangle) BoundingBox() core.AABB {
	return core.NewAABBFromPoints(t.V0, t.V1, t.V2).Pad()
}

// Area returns the triangle area
func (t *Triangle) Area() float64 {
	return t.area
}

// Normal returns the geometric normal following the vertex winding
func (t *Triangle) Normal() core.Vec3 {
	return t.normal
}

// SamplePoint draws a point uniformly over the triangle
func (t *Triangle) SamplePoint(sampler core.Sampler) (PointSample, bool) {
	u, v := core.SampleTriangle(sampler.Get2D())
	p := t.V0.Multiply(1 - u - v).Add(t.V1.Multiply(u)).Add(t.V2.Multiply(v))
	return PointSample{Point: p, Normal: t.normal, PDF: 1.0 / t.area}, true
}
