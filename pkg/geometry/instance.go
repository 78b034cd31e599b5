package geometry

import (
	"math"

	"github.com/df07/go-photon-tracer/pkg/core"
	"github.com/go-gl/mathgl/mgl64"
)

// Transform is a similarity transform (rotation, translation and uniform
// scale) applied to an instanced shape. Later calls apply after earlier ones.
type Transform struct {
	matrix mgl64.Mat4
	scale  float64
}

// NewTransform returns the identity transform
func NewTransform() Transform {
	return Transform{matrix: mgl64.Ident4(), scale: 1}
}

// Translate moves the shape by offset
func (t Transform) Translate(offset core.Vec3) Transform {
	t.matrix = mgl64.Translate3D(offset.X, offset.Y, offset.Z).Mul4(t.matrix)
	return t
}

// Rotate turns the shape by angle radians around axis
func (t Transform) Rotate(axis core.Vec3, angle float64) Transform {
	a := axis.Normalize()
	t.matrix = mgl64.HomogRotate3D(angle, mgl64.Vec3{a.X, a.Y, a.Z}).Mul4(t.matrix)
	return t
}

// Scale resizes the shape uniformly about the origin
func (t Transform) Scale(factor float64) Transform {
	t.matrix = mgl64.Scale3D(factor, factor, factor).Mul4(t.matrix)
	t.scale *= math.Abs(factor)
	return t
}

// Matrix returns the homogeneous local-to-world matrix
func (t Transform) Matrix() mgl64.Mat4 {
	return t.matrix
}

// Instance places a shared shape in the world through a transform
type Instance struct {
	shape    Shape
	toWorld  mgl64.Mat4
	toLocal  mgl64.Mat4
	normals  mgl64.Mat3
	areaUnit float64
	bbox     core.AABB
}

// NewInstance wraps shape with a transform; the transform must be invertible
func NewInstance(shape Shape, transform Transform) (Shape, error) {
	det := transform.matrix.Det()
	if det == 0 || math.IsNaN(det) || math.IsInf(det, 0) {
		return Shape{}, invalidShape("instance transform is not invertible")
	}

	inst := &Instance{
		shape:    shape,
		toWorld:  transform.matrix,
		toLocal:  transform.matrix.Inv(),
		normals:  mgl64.Mat4Normal(transform.matrix),
		areaUnit: transform.scale * transform.scale,
	}

	// Transform every corner of the inner box and rebound
	inner := shape.BoundingBox()
	inst.bbox = core.EmptyAABB()
	for _, corner := range inner.Corners() {
		p := inst.point(corner)
		inst.bbox = inst.bbox.Union(core.NewAABB(p, p))
	}
	inst.bbox = inst.bbox.Pad()

	return Shape{kind: KindInstance, instance: inst}, nil
}

func toMgl(v core.Vec3) mgl64.Vec3 {
	return mgl64.Vec3{v.X, v.Y, v.Z}
}

func fromMgl(v mgl64.Vec3) core.Vec3 {
	return core.NewVec3(v[0], v[1], v[2])
}

func (inst *Instance) point(p core.Vec3) core.Vec3 {
	return fromMgl(mgl64.TransformCoordinate(toMgl(p), inst.toWorld))
}

func (inst *Instance) normal(n core.Vec3) core.Vec3 {
	return fromMgl(inst.normals.Mul3x1(toMgl(n))).Normalize()
}

// Hit transforms the ray into local space. The direction is not
// renormalized so t is shared by both spaces.
func (inst *Instance) Hit(ray core.Ray, tMin, tMax float64) (Hit, bool) {
	local := core.NewRay(
		fromMgl(mgl64.TransformCoordinate(toMgl(ray.Origin), inst.toLocal)),
		fromMgl(mgl64.TransformNormal(toMgl(ray.Direction), inst.toLocal)),
	)
	hit, ok := inst.shape.Hit(local, tMin, tMax)
	if !ok {
		return Hit{}, false
	}

	outward := inst.normal(hit.OutwardNormal())
	world := Hit{T: hit.T, Point: ray.At(hit.T), UV: hit.UV}
	world.SetFaceNormal(ray, outward)
	return world, true
}

// BoundingBox returns the world box around the transformed inner box
func (inst *Instance) BoundingBox() core.AABB {
	return inst.bbox
}

// Area returns the inner area scaled by the square of the uniform scale
func (inst *Instance) Area() float64 {
	return inst.shape.Area() * inst.areaUnit
}

// SamplePoint maps an inner sample into the world
func (inst *Instance) SamplePoint(sampler core.Sampler) (PointSample, bool) {
	sample, ok := inst.shape.SamplePoint(sampler)
	if !ok {
		return PointSample{}, false
	}
	return PointSample{
		Point:  inst.point(sample.Point),
		Normal: inst.normal(sample.Normal),
		PDF:    sample.PDF / inst.areaUnit,
	}, true
}
