package geometry

import (
	"math"

	"github.com/df07/go-photon-tracer/pkg/core"
)

// planeExtent bounds the otherwise infinite plane so that it fits in a BVH
const planeExtent = 1e6

// Plane represents an infinite plane through Point with outward Normal
type Plane struct {
	Point  core.Vec3
	Normal core.Vec3
	u, v   core.Vec3
	bbox   core.AABB
}

// NewPlane creates a plane shape; the normal must be non-zero
func NewPlane(point, normal core.Vec3) (Shape, error) {
	if normal.Length() < 1e-12 || !normal.IsFinite() {
		return Shape{}, invalidShape("plane normal %v is degenerate", normal)
	}
	n := normal.Normalize()
	basis := core.NewONB(n)
	p := &Plane{Point: point, Normal: n, u: basis.U, v: basis.V}
	p.bbox = p.computeBoundingBox()
	return Shape{kind: KindPlane, plane: p}, nil
}

func (p *Plane) computeBoundingBox() core.AABB {
	extent := core.Splat(planeExtent)
	box := core.NewAABB(p.Point.Subtract(extent), p.Point.Add(extent))
	// Collapse the axis the plane is perpendicular to when axis-aligned
	for axis := 0; axis < 3; axis++ {
		if math.Abs(p.Normal.Component(axis)) > 1-1e-12 {
			c := p.Point.Component(axis)
			switch axis {
			case 0:
				box.Min.X, box.Max.X = c, c
			case 1:
				box.Min.Y, box.Max.Y = c, c
			case 2:
				box.Min.Z, box.Max.Z = c, c
			}
		}
	}
	return box.Pad()
}

// Hit tests the ray against the plane, ignoring hits beyond the plane extent
func (p *Plane) Hit(ray core.Ray, tMin, tMax float64) (Hit, bool) {
	denom := p.Normal.Dot(ray.Direction)
	if math.Abs(denom) < 1e-12 {
		return Hit{}, false
	}
	t := p.Point.Subtract(ray.Origin).Dot(p.Normal) / denom
	if t <= tMin || t >= tMax {
		return Hit{}, false
	}
	point := ray.At(t)
	if !p.bbox.Contains(point, 0) {
		return Hit{}, false
	}

	hit := Hit{T: t, Point: point}
	hit.SetFaceNormal(ray, p.Normal)
	local := point.Subtract(p.Point)
	hit.UV = core.NewVec2(local.Dot(p.u), local.Dot(p.v))
	return hit, true
}

// BoundingBox returns the plane bounds clipped to the plane extent
func (p *Plane) BoundingBox() core.AABB {
	return p.bbox
}

// Area is infinite for a plane
func (p *Plane) Area() float64 {
	return math.Inf(1)
}
