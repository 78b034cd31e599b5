package geometry

import (
	"math"

	"github.com/df07/go-photon-tracer/pkg/core"
)

// Sphere represents a sphere shape
type Sphere struct {
	Center core.Vec3
	Radius float64
}

// NewSphere creates a sphere shape; the radius must be positive
func NewSphere(center core.Vec3, radius float64) (Shape, error) {
	if !(radius > 0) || math.IsInf(radius, 0) {
		return Shape{}, invalidShape("sphere radius %v is not positive", radius)
	}
	return Shape{kind: KindSphere, sphere: &Sphere{Center: center, Radius: radius}}, nil
}

// Hit tests if a ray intersects with the sphere
func (s *Sphere) Hit(ray core.Ray, tMin, tMax float64) (Hit, bool) {
	// Vector from ray origin to sphere center
	oc := ray.Origin.Subtract(s.Center)

	// Quadratic equation coefficients: at² + bt + c = 0
	a := ray.Direction.Dot(ray.Direction)
	halfB := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 || a == 0 {
		return Hit{}, false
	}
	sqrtD := math.Sqrt(discriminant)

	// Try the closer intersection point first
	root := (-halfB - sqrtD) / a
	if root <= tMin || root >= tMax {
		root = (-halfB + sqrtD) / a
		if root <= tMin || root >= tMax {
			return Hit{}, false
		}
	}

	hit := Hit{T: root, Point: ray.At(root)}
	outwardNormal := hit.Point.Subtract(s.Center).Multiply(1.0 / s.Radius)
	hit.SetFaceNormal(ray, outwardNormal)
	hit.UV = sphereUV(outwardNormal)
	return hit, true
}

// sphereUV maps a unit outward normal to longitude/latitude coordinates
func sphereUV(n core.Vec3) core.Vec2 {
	theta := math.Acos(max(-1, min(1, -n.Y)))
	phi := math.Atan2(-n.Z, n.X) + math.Pi
	return core.NewVec2(phi/(2*math.Pi), theta/math.Pi)
}

// BoundingBox returns the axis-aligned bounding box for this sphere
func (s *Sphere) BoundingBox() core.AABB {
	radius := core.NewVec3(s.Radius, s.Radius, s.Radius)
	return core.NewAABB(
		s.Center.Subtract(radius),
		s.Center.Add(radius),
	).Expand(core.BoxEpsilon)
}

// Area returns the sphere surface area
func (s *Sphere) Area() float64 {
	return 4 * math.Pi * s.Radius * s.Radius
}

// SamplePoint draws a point uniformly over the sphere surface
func (s *Sphere) SamplePoint(sampler core.Sampler) (PointSample, bool) {
	n := core.SampleOnUnitSphere(sampler.Get2D())
	return PointSample{
		Point:  s.Center.Add(n.Multiply(s.Radius)),
		Normal: n,
		PDF:    1.0 / s.Area(),
	}, true
}
