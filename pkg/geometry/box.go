package geometry

import (
	"math"

	"github.com/df07/go-photon-tracer/pkg/core"
)

// Box is an axis-aligned box shape
type Box struct {
	Min, Max core.Vec3
}

// NewBox creates an axis-aligned box; min must not exceed max on any axis
func NewBox(min, max core.Vec3) (Shape, error) {
	box := core.NewAABB(min, max)
	if !box.IsValid() || !min.IsFinite() || !max.IsFinite() {
		return Shape{}, invalidShape("box corners %v and %v are inverted", min, max)
	}
	return Shape{kind: KindBox, box: &Box{Min: min, Max: max}}, nil
}

// Hit tests the ray against the six faces using the slab method
func (b *Box) Hit(ray core.Ray, tMin, tMax float64) (Hit, bool) {
	tNear, tFar := math.Inf(-1), math.Inf(1)
	nearAxis, farAxis := -1, -1
	var nearSign, farSign float64

	for axis := 0; axis < 3; axis++ {
		origin := ray.Origin.Component(axis)
		direction := ray.Direction.Component(axis)
		lo := b.Min.Component(axis)
		hi := b.Max.Component(axis)

		if math.Abs(direction) < 1e-12 {
			if origin < lo || origin > hi {
				return Hit{}, false
			}
			continue
		}

		t1 := (lo - origin) / direction
		t2 := (hi - origin) / direction
		sign1, sign2 := -1.0, 1.0
		if direction < 0 {
			t1, t2 = t2, t1
			sign1, sign2 = sign2, sign1
		}
		if t1 > tNear {
			tNear, nearAxis, nearSign = t1, axis, sign1
		}
		if t2 < tFar {
			tFar, farAxis, farSign = t2, axis, sign2
		}
		if tNear > tFar {
			return Hit{}, false
		}
	}

	t, axis, sign := tNear, nearAxis, nearSign
	if t <= tMin || axis < 0 {
		t, axis, sign = tFar, farAxis, farSign
	}
	if t <= tMin || t >= tMax || axis < 0 {
		return Hit{}, false
	}

	hit := Hit{T: t, Point: ray.At(t)}
	var outward core.Vec3
	switch axis {
	case 0:
		outward = core.NewVec3(sign, 0, 0)
	case 1:
		outward = core.NewVec3(0, sign, 0)
	default:
		outward = core.NewVec3(0, 0, sign)
	}
	hit.SetFaceNormal(ray, outward)
	hit.UV = b.faceUV(hit.Point, axis)
	return hit, true
}

func (b *Box) faceUV(p core.Vec3, axis int) core.Vec2 {
	size := b.Max.Subtract(b.Min)
	rel := p.Subtract(b.Min)
	norm := func(v, s float64) float64 {
		if s == 0 {
			return 0
		}
		return v / s
	}
	switch axis {
	case 0:
		return core.NewVec2(norm(rel.Z, size.Z), norm(rel.Y, size.Y))
	case 1:
		return core.NewVec2(norm(rel.X, size.X), norm(rel.Z, size.Z))
	default:
		return core.NewVec2(norm(rel.X, size.X), norm(rel.Y, size.Y))
	}
}

// BoundingBox returns the box itself, padded on flat axes
func (b *Box) BoundingBox() core.AABB {
	return core.NewAABB(b.Min, b.Max).Pad()
}

// Area returns the total surface area of the six faces
func (b *Box) Area() float64 {
	return core.NewAABB(b.Min, b.Max).SurfaceArea()
}

// SamplePoint picks a face by area and draws a uniform point on it
func (b *Box) SamplePoint(sampler core.Sampler) (PointSample, bool) {
	area := b.Area()
	if area <= 0 {
		return PointSample{}, false
	}
	size := b.Max.Subtract(b.Min)
	faceAreas := [3]float64{size.Y * size.Z, size.X * size.Z, size.X * size.Y}
	cdf := []float64{faceAreas[0], faceAreas[0] + faceAreas[1], faceAreas[0] + faceAreas[1] + faceAreas[2]}

	axis := sampleByArea(cdf, sampler.Get1D())
	uv := sampler.Get2D()
	side := sampler.Get1D() < 0.5

	p := b.Min
	normal := core.Vec3{}
	switch axis {
	case 0:
		p = core.NewVec3(b.Min.X, b.Min.Y+uv.X*size.Y, b.Min.Z+uv.Y*size.Z)
		normal = core.NewVec3(-1, 0, 0)
		if side {
			p.X, normal.X = b.Max.X, 1
		}
	case 1:
		p = core.NewVec3(b.Min.X+uv.X*size.X, b.Min.Y, b.Min.Z+uv.Y*size.Z)
		normal = core.NewVec3(0, -1, 0)
		if side {
			p.Y, normal.Y = b.Max.Y, 1
		}
	default:
		p = core.NewVec3(b.Min.X+uv.X*size.X, b.Min.Y+uv.Y*size.Y, b.Min.Z)
		normal = core.NewVec3(0, 0, -1)
		if side {
			p.Z, normal.Z = b.Max.Z, 1
		}
	}
	return PointSample{Point: p, Normal: normal, PDF: 1.0 / area}, true
}
