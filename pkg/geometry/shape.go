package geometry

import (
	"errors"
	"fmt"

	"github.com/df07/go-photon-tracer/pkg/core"
)

// ErrInvalidShape is returned by shape constructors for degenerate input
var ErrInvalidShape = errors.New("invalid shape")

func invalidShape(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrInvalidShape, fmt.Sprintf(format, args...))
}

// Hit contains information about a ray-shape intersection
type Hit struct {
	T         float64   // Parameter t along the ray
	Point     core.Vec3 // Point of intersection
	Normal    core.Vec3 // Unit surface normal, facing against the incoming ray
	FrontFace bool      // Whether ray hit the outward-facing side
	UV        core.Vec2 // Texture coordinates
}

// SetFaceNormal sets the normal vector and determines front/back face
func (h *Hit) SetFaceNormal(ray core.Ray, outwardNormal core.Vec3) {
	h.FrontFace = ray.Direction.Dot(outwardNormal) < 0
	if h.FrontFace {
		h.Normal = outwardNormal
	} else {
		h.Normal = outwardNormal.Negate()
	}
}

// OutwardNormal returns the geometric normal pointing out of the shape
func (h *Hit) OutwardNormal() core.Vec3 {
	if h.FrontFace {
		return h.Normal
	}
	return h.Normal.Negate()
}

// PointSample is a point drawn on a shape surface with its area density
type PointSample struct {
	Point  core.Vec3
	Normal core.Vec3 // Outward unit normal
	PDF    float64   // Density with respect to surface area
}

// Kind identifies the concrete shape variant
type Kind int

const (
	KindSphere Kind = iota
	KindPlane
	KindPolygon
	KindTriangle
	KindBox
	KindMesh
	KindInstance
)

func (k Kind) String() string {
	switch k {
	case KindSphere:
		return "sphere"
	case KindPlane:
		return "plane"
	case KindPolygon:
		return "polygon"
	case KindTriangle:
		return "triangle"
	case KindBox:
		return "box"
	case KindMesh:
		return "mesh"
	case KindInstance:
		return "instance"
	default:
		return "unknown"
	}
}

// Shape is a closed set of geometric primitives. Exactly one variant
// pointer is set, matching Kind. Shapes are immutable once constructed.
type Shape struct {
	kind     Kind
	sphere   *Sphere
	plane    *Plane
	polygon  *Polygon
	triangle *Triangle
	box      *Box
	mesh     *Mesh
	instance *Instance
}

// Kind returns the variant held by the shape
func (s Shape) Kind() Kind {
	return s.kind
}

// IsValid reports whether the shape was built by a constructor
func (s Shape) IsValid() bool {
	return s.sphere != nil || s.plane != nil || s.polygon != nil || s.triangle != nil ||
		s.box != nil || s.mesh != nil || s.instance != nil
}

// Hit returns the nearest intersection with t in (tMin, tMax)
func (s Shape) Hit(ray core.Ray, tMin, tMax float64) (Hit, bool) {
	switch s.kind {
	case KindSphere:
		return s.sphere.Hit(ray, tMin, tMax)
	case KindPlane:
		return s.plane.Hit(ray, tMin, tMax)
	case KindPolygon:
		return s.polygon.Hit(ray, tMin, tMax)
	case KindTriangle:
		return s.triangle.Hit(ray, tMin, tMax)
	case KindBox:
		return s.box.Hit(ray, tMin, tMax)
	case KindMesh:
		return s.mesh.Hit(ray, tMin, tMax)
	case KindInstance:
		return s.instance.Hit(ray, tMin, tMax)
	}
	return Hit{}, false
}

// BoundingBox returns a box enclosing every point the shape can be hit at
func (s Shape) BoundingBox() core.AABB {
	switch s.kind {
	case KindSphere:
		return s.sphere.BoundingBox()
	case KindPlane:
		return s.plane.BoundingBox()
	case KindPolygon:
		return s.polygon.BoundingBox()
	case KindTriangle:
		return s.triangle.BoundingBox()
	case KindBox:
		return s.box.BoundingBox()
	case KindMesh:
		return s.mesh.BoundingBox()
	case KindInstance:
		return s.instance.BoundingBox()
	}
	return core.AABB{}
}

// Area returns the surface area; infinite for unbounded shapes
func (s Shape) Area() float64 {
	switch s.kind {
	case KindSphere:
		return s.sphere.Area()
	case KindPlane:
		return s.plane.Area()
	case KindPolygon:
		return s.polygon.Area()
	case KindTriangle:
		return s.triangle.Area()
	case KindBox:
		return s.box.Area()
	case KindMesh:
		return s.mesh.Area()
	case KindInstance:
		return s.instance.Area()
	}
	return 0
}

// SamplePoint draws a point uniformly by area. Unbounded shapes cannot be
// sampled and report false.
func (s Shape) SamplePoint(sampler core.Sampler) (PointSample, bool) {
	switch s.kind {
	case KindSphere:
		return s.sphere.SamplePoint(sampler)
	case KindPlane:
		return PointSample{}, false
	case KindPolygon:
		return s.polygon.SamplePoint(sampler)
	case KindTriangle:
		return s.triangle.SamplePoint(sampler)
	case KindBox:
		return s.box.SamplePoint(sampler)
	case KindMesh:
		return s.mesh.SamplePoint(sampler)
	case KindInstance:
		return s.instance.SamplePoint(sampler)
	}
	return PointSample{}, false
}

// sampleByArea picks an index proportionally to a cumulative area table
func sampleByArea(cdf []float64, u float64) int {
	total := cdf[len(cdf)-1]
	target := u * total
	lo, hi := 0, len(cdf)-1
	for lo < hi {
		mid := (lo + hi) / 2
		if cdf[mid] <= target {
			lo = mid + 1
		} else {
			hi = mid
		}
	}
	return lo
}
