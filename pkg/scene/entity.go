package scene

import (
	"math"

	"github.com/df07/go-photon-tracer/pkg/core"
	"github.com/df07/go-photon-tracer/pkg/geometry"
	"github.com/df07/go-photon-tracer/pkg/material"
)

// Entity is a visible surface: a shape paired with the material shading it
type Entity struct {
	Shape    geometry.Shape
	Material *material.Material
}

// Intersection is the nearest surface hit along a ray
type Intersection struct {
	Hit   geometry.Hit
	Index int // Entity index
}

// EntityScene is an immutable collection of entities behind a BVH. It is
// safe for concurrent queries.
type EntityScene struct {
	entities []Entity
	bvh      *geometry.BVH
	emitters []int
}

// NewEntityScene builds the acceleration structure over the given entities.
// An empty list is valid and produces a scene every ray misses.
func NewEntityScene(entities []Entity) (*EntityScene, error) {
	boxes := make([]core.AABB, len(entities))
	var emitters []int
	for i, e := range entities {
		if e.Material == nil {
			return nil, invalidScene("entity %d has no material", i)
		}
		if !e.Shape.IsValid() {
			return nil, invalidScene("entity %d has no shape", i)
		}
		boxes[i] = e.Shape.BoundingBox()
		if e.Material.IsEmissive() {
			emitters = append(emitters, i)
		}
	}
	return &EntityScene{
		entities: append([]Entity(nil), entities...),
		bvh:      geometry.NewBVH(boxes),
		emitters: emitters,
	}, nil
}

// Len returns the number of entities
func (s *EntityScene) Len() int {
	return len(s.entities)
}

// Entity returns the entity at index i
func (s *EntityScene) Entity(i int) Entity {
	return s.entities[i]
}

// Emitters returns the indices of entities whose material emits light
func (s *EntityScene) Emitters() []int {
	return s.emitters
}

// Bounds returns the box enclosing all entities, false when empty
func (s *EntityScene) Bounds() (core.AABB, bool) {
	return s.bvh.Bounds()
}

// NearestHit finds the closest entity hit with t in (tMin, tMax)
func (s *EntityScene) NearestHit(ray core.Ray, tMin, tMax float64) (Intersection, bool) {
	var best geometry.Hit
	index, _, ok := s.bvh.NearestHit(ray, tMin, tMax, func(i int, lo, hi float64) (float64, bool) {
		hit, ok := s.entities[i].Shape.Hit(ray, lo, hi)
		if !ok {
			return 0, false
		}
		best = hit
		return hit.T, true
	})
	if !ok {
		return Intersection{}, false
	}
	return Intersection{Hit: best, Index: index}, true
}

// AnyHit reports whether any entity blocks the ray in (tMin, tMax)
func (s *EntityScene) AnyHit(ray core.Ray, tMin, tMax float64) bool {
	return s.bvh.AnyHit(ray, tMin, tMax, func(i int, lo, hi float64) (float64, bool) {
		hit, ok := s.entities[i].Shape.Hit(ray, lo, hi)
		return hit.T, ok
	})
}

// Visible reports whether the segment between two points is unoccluded.
// The endpoints themselves are excluded with a relative epsilon.
func (s *EntityScene) Visible(from, to core.Vec3) bool {
	d := to.Subtract(from)
	dist := d.Length()
	if dist == 0 {
		return true
	}
	eps := ShadowEpsilon * math.Max(1, dist)
	return !s.AnyHit(core.NewRay(from, d.Multiply(1/dist)), eps, dist-eps)
}
