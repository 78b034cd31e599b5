package geometry

import (
	"math"
	"testing"

	"github.com/df07/go-photon-tracer/pkg/core"
)

func randomSpheres(t *testing.T, n int, seed uint64) []Shape {
	t.Helper()
	sampler := core.NewSeededSampler(seed, 0)
	shapes := make([]Shape, n)
	for i := range shapes {
		center := sampler.Get3D().Subtract(core.Splat(0.5)).Multiply(20)
		radius := 0.05 + 0.5*sampler.Get1D()
		shapes[i] = must(NewSphere(center, radius))
	}
	return shapes
}

func boxesOf(shapes []Shape) []core.AABB {
	boxes := make([]core.AABB, len(shapes))
	for i, s := range shapes {
		boxes[i] = s.BoundingBox()
	}
	return boxes
}

func TestBVH_ChildContainedInParent(t *testing.T) {
	shapes := randomSpheres(t, 500, 3)
	bvh := NewBVH(boxesOf(shapes))

	seen := make([]bool, len(shapes))
	var check func(node *BVHNode)
	check = func(node *BVHNode) {
		if node.IsLeaf() {
			for _, index := range node.Items {
				seen[index] = true
				if !node.BoundingBox.ContainsBox(shapes[index].BoundingBox(), 1e-9) {
					t.Errorf("leaf box does not contain item %d", index)
				}
			}
			return
		}
		for _, child := range []*BVHNode{node.Left, node.Right} {
			if !node.BoundingBox.ContainsBox(child.BoundingBox, 1e-9) {
				t.Errorf("child box %v..%v escapes parent %v..%v",
					child.BoundingBox.Min, child.BoundingBox.Max, node.BoundingBox.Min, node.BoundingBox.Max)
			}
			check(child)
		}
	}
	check(bvh.Root)

	for i, ok := range seen {
		if !ok {
			t.Errorf("item %d missing from BVH leaves", i)
		}
	}
}

func TestBVH_NearestHitMatchesLinearScan(t *testing.T) {
	shapes := randomSpheres(t, 200, 5)
	bvh := NewBVH(boxesOf(shapes))
	sampler := core.NewSeededSampler(9, 0)

	hitFn := func(ray core.Ray) HitFunc {
		return func(index int, tMin, tMax float64) (float64, bool) {
			hit, ok := shapes[index].Hit(ray, tMin, tMax)
			return hit.T, ok
		}
	}

	for i := 0; i < 500; i++ {
		origin := sampler.Get3D().Subtract(core.Splat(0.5)).Multiply(30)
		ray := core.NewRay(origin, core.SampleOnUnitSphere(sampler.Get2D()))

		linearIndex, linearT := -1, math.Inf(1)
		for j, s := range shapes {
			if hit, ok := s.Hit(ray, 1e-6, linearT); ok {
				linearIndex, linearT = j, hit.T
			}
		}

		index, tHit, ok := bvh.NearestHit(ray, 1e-6, math.Inf(1), hitFn(ray))
		if ok != (linearIndex >= 0) {
			t.Fatalf("ray %d: BVH hit=%v, linear hit=%v", i, ok, linearIndex >= 0)
		}
		if ok && (index != linearIndex || math.Abs(tHit-linearT) > 1e-9) {
			t.Errorf("ray %d: BVH found %d at %f, linear found %d at %f", i, index, tHit, linearIndex, linearT)
		}
		if occluded := bvh.AnyHit(ray, 1e-6, math.Inf(1), hitFn(ray)); occluded != ok {
			t.Errorf("ray %d: AnyHit=%v but NearestHit=%v", i, occluded, ok)
		}
	}
}

func TestBVH_Empty(t *testing.T) {
	bvh := NewBVH(nil)
	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1))
	never := func(int, float64, float64) (float64, bool) {
		t.Fatal("hit function called on empty BVH")
		return 0, false
	}

	if _, _, ok := bvh.NearestHit(ray, 0, math.Inf(1), never); ok {
		t.Error("Expected empty BVH to miss")
	}
	if bvh.AnyHit(ray, 0, math.Inf(1), never) {
		t.Error("Expected empty BVH to report no occlusion")
	}
	if _, ok := bvh.Bounds(); ok {
		t.Error("Expected empty BVH to have no bounds")
	}
	if stats := bvh.Stats(); stats.TotalNodes != 0 {
		t.Errorf("Expected no nodes, got %d", stats.TotalNodes)
	}
}

func TestBVH_Stats(t *testing.T) {
	shapes := randomSpheres(t, 100, 1)
	stats := NewBVH(boxesOf(shapes)).Stats()

	if stats.TotalItems != 100 {
		t.Errorf("Expected 100 items, got %d", stats.TotalItems)
	}
	if stats.TotalNodes != 2*stats.LeafNodes-1 {
		t.Errorf("Expected a full binary tree, got %d nodes and %d leaves", stats.TotalNodes, stats.LeafNodes)
	}
	if stats.MaxDepth == 0 {
		t.Error("Expected more than one level")
	}
}

func TestBVH_CoincidentItems(t *testing.T) {
	box := core.NewAABB(core.NewVec3(-1, -1, -1), core.NewVec3(1, 1, 1))
	boxes := make([]core.AABB, 50)
	for i := range boxes {
		boxes[i] = box
	}
	bvh := NewBVH(boxes)
	if stats := bvh.Stats(); stats.TotalItems != 50 {
		t.Errorf("Expected 50 items, got %d", stats.TotalItems)
	}
}
