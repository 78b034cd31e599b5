package geometry

import (
	"math"
	"sort"

	"github.com/df07/go-photon-tracer/pkg/core"
)

// BVHNode represents a node in the Bounding Volume Hierarchy
type BVHNode struct {
	BoundingBox core.AABB
	Left        *BVHNode
	Right       *BVHNode
	Items       []int // Item indices for leaf nodes (nil for internal nodes)
}

// IsLeaf reports whether the node stores items directly
func (n *BVHNode) IsLeaf() bool {
	return n.Items != nil
}

// BVH is a static Bounding Volume Hierarchy over indexed bounding boxes.
// It stores only indices; callers resolve them to shapes, entities or
// volumes. A built BVH is read-only and safe for concurrent traversal.
type BVH struct {
	Root  *BVHNode
	count int
}

// HitFunc tests item index against the ray with t in (tMin, tMax) and
// returns the hit distance on success
type HitFunc func(index int, tMin, tMax float64) (float64, bool)

// Leaf threshold: if we have this many or fewer items, store them in a leaf node
const leafThreshold = 4

// Number of buckets evaluated by the surface area heuristic
const sahBuckets = 12

type bvhItem struct {
	index    int
	box      core.AABB
	centroid core.Vec3
}

// NewBVH constructs a BVH over the given boxes; box i is item i
func NewBVH(boxes []core.AABB) *BVH {
	if len(boxes) == 0 {
		return &BVH{Root: nil}
	}

	items := make([]bvhItem, len(boxes))
	for i, box := range boxes {
		box = box.Pad()
		items[i] = bvhItem{index: i, box: box, centroid: box.Center()}
	}

	return &BVH{Root: buildBVH(items), count: len(boxes)}
}

// Len returns the number of items in the hierarchy
func (bvh *BVH) Len() int {
	return bvh.count
}

// Bounds returns the box enclosing every item, or false for an empty BVH
func (bvh *BVH) Bounds() (core.AABB, bool) {
	if bvh.Root == nil {
		return core.AABB{}, false
	}
	return bvh.Root.BoundingBox, true
}

// buildBVH recursively builds the BVH, splitting with the surface area
// heuristic and falling back to a median split
func buildBVH(items []bvhItem) *BVHNode {
	boundingBox := items[0].box
	centroidBox := core.NewAABB(items[0].centroid, items[0].centroid)
	for _, item := range items[1:] {
		boundingBox = boundingBox.Union(item.box)
		centroidBox = centroidBox.Union(core.NewAABB(item.centroid, item.centroid))
	}

	if len(items) <= leafThreshold {
		return newLeaf(boundingBox, items)
	}

	axis := centroidBox.LongestAxis()
	lo := centroidBox.Min.Component(axis)
	hi := centroidBox.Max.Component(axis)
	if hi-lo < 1e-12 {
		// All centroids coincide; nothing to split on
		return newLeaf(boundingBox, items)
	}

	mid := sahSplit(items, axis, lo, hi, boundingBox)
	if mid <= 0 || mid >= len(items) {
		sortItemsByAxis(items, axis)
		mid = len(items) / 2
	}

	return &BVHNode{
		BoundingBox: boundingBox,
		Left:        buildBVH(items[:mid]),
		Right:       buildBVH(items[mid:]),
	}
}

func newLeaf(box core.AABB, items []bvhItem) *BVHNode {
	indices := make([]int, len(items))
	for i, item := range items {
		indices[i] = item.index
	}
	return &BVHNode{BoundingBox: box, Items: indices}
}

// sahSplit partitions items in place at the cheapest bucket boundary and
// returns the partition point
func sahSplit(items []bvhItem, axis int, lo, hi float64, parent core.AABB) int {
	type bucket struct {
		count int
		box   core.AABB
	}
	var buckets [sahBuckets]bucket
	for i := range buckets {
		buckets[i].box = core.EmptyAABB()
	}
	bucketOf := func(item bvhItem) int {
		b := int(sahBuckets * (item.centroid.Component(axis) - lo) / (hi - lo))
		return min(max(b, 0), sahBuckets-1)
	}
	for _, item := range items {
		b := bucketOf(item)
		buckets[b].count++
		buckets[b].box = buckets[b].box.Union(item.box)
	}

	bestCost := math.Inf(1)
	bestSplit := -1
	parentArea := parent.SurfaceArea()
	for split := 0; split < sahBuckets-1; split++ {
		left, right := core.EmptyAABB(), core.EmptyAABB()
		var nLeft, nRight int
		for i := 0; i <= split; i++ {
			left = left.Union(buckets[i].box)
			nLeft += buckets[i].count
		}
		for i := split + 1; i < sahBuckets; i++ {
			right = right.Union(buckets[i].box)
			nRight += buckets[i].count
		}
		if nLeft == 0 || nRight == 0 {
			continue
		}
		cost := 0.125 + (float64(nLeft)*left.SurfaceArea()+float64(nRight)*right.SurfaceArea())/parentArea
		if cost < bestCost {
			bestCost, bestSplit = cost, split
		}
	}
	if bestSplit < 0 {
		return -1
	}

	// Partition items so that buckets <= bestSplit come first
	i, j := 0, len(items)-1
	for i <= j {
		if bucketOf(items[i]) <= bestSplit {
			i++
		} else {
			items[i], items[j] = items[j], items[i]
			j--
		}
	}
	return i
}

// sortItemsByAxis sorts items by their bounding box center along the specified axis
func sortItemsByAxis(items []bvhItem, axis int) {
	sort.Slice(items, func(i, j int) bool {
		return items[i].centroid.Component(axis) < items[j].centroid.Component(axis)
	})
}

// NearestHit returns the item with the nearest hit along the ray. hit is
// called with a shrinking tMax, so the last accepted call is the nearest.
func (bvh *BVH) NearestHit(ray core.Ray, tMin, tMax float64, hit HitFunc) (int, float64, bool) {
	if bvh.Root == nil {
		return -1, 0, false
	}
	best := -1
	closestSoFar := tMax
	bvh.hitNode(bvh.Root, ray, tMin, &closestSoFar, &best, hit)
	return best, closestSoFar, best >= 0
}

// hitNode recursively tests ray intersection with BVH nodes, visiting the
// nearer child first so the far child can be culled by the current best
func (bvh *BVH) hitNode(node *BVHNode, ray core.Ray, tMin float64, closestSoFar *float64, best *int, hit HitFunc) {
	if !node.BoundingBox.Hit(ray, tMin, *closestSoFar) {
		return
	}

	if node.IsLeaf() {
		for _, index := range node.Items {
			if t, ok := hit(index, tMin, *closestSoFar); ok {
				*closestSoFar = t
				*best = index
			}
		}
		return
	}

	first, second := node.Left, node.Right
	leftEntry, leftOK := node.Left.BoundingBox.Entry(ray, tMin, *closestSoFar)
	rightEntry, rightOK := node.Right.BoundingBox.Entry(ray, tMin, *closestSoFar)
	if !leftOK && !rightOK {
		return
	}
	if rightOK && (!leftOK || rightEntry < leftEntry) {
		first, second = node.Right, node.Left
	}
	bvh.hitNode(first, ray, tMin, closestSoFar, best, hit)
	bvh.hitNode(second, ray, tMin, closestSoFar, best, hit)
}

// AnyHit reports whether any item is hit in (tMin, tMax). Traversal stops
// at the first accepted hit.
func (bvh *BVH) AnyHit(ray core.Ray, tMin, tMax float64, hit HitFunc) bool {
	if bvh.Root == nil {
		return false
	}
	return bvh.anyNode(bvh.Root, ray, tMin, tMax, hit)
}

func (bvh *BVH) anyNode(node *BVHNode, ray core.Ray, tMin, tMax float64, hit HitFunc) bool {
	if !node.BoundingBox.Hit(ray, tMin, tMax) {
		return false
	}
	if node.IsLeaf() {
		for _, index := range node.Items {
			if _, ok := hit(index, tMin, tMax); ok {
				return true
			}
		}
		return false
	}
	return bvh.anyNode(node.Left, ray, tMin, tMax, hit) || bvh.anyNode(node.Right, ray, tMin, tMax, hit)
}

// Visit calls fn for every item whose leaf box is crossed by the ray in
// (tMin, tMax)
func (bvh *BVH) Visit(ray core.Ray, tMin, tMax float64, fn func(index int)) {
	if bvh.Root == nil {
		return
	}
	var visit func(node *BVHNode)
	visit = func(node *BVHNode) {
		if !node.BoundingBox.Hit(ray, tMin, tMax) {
			return
		}
		if node.IsLeaf() {
			for _, index := range node.Items {
				fn(index)
			}
			return
		}
		visit(node.Left)
		visit(node.Right)
	}
	visit(bvh.Root)
}

// BVHStats contains statistics about the BVH structure
type BVHStats struct {
	TotalNodes int
	LeafNodes  int
	MaxDepth   int
	AvgDepth   float64
	TotalItems int
}

// Stats returns statistics about the BVH structure
func (bvh *BVH) Stats() BVHStats {
	if bvh.Root == nil {
		return BVHStats{}
	}

	stats := BVHStats{}
	bvh.collectStats(bvh.Root, 0, &stats)

	if stats.LeafNodes > 0 {
		stats.AvgDepth = stats.AvgDepth / float64(stats.LeafNodes)
	}
	return stats
}

// collectStats recursively collects statistics about the BVH
func (bvh *BVH) collectStats(node *BVHNode, depth int, stats *BVHStats) {
	stats.TotalNodes++
	if depth > stats.MaxDepth {
		stats.MaxDepth = depth
	}

	if node.IsLeaf() {
		stats.LeafNodes++
		stats.TotalItems += len(node.Items)
		stats.AvgDepth += float64(depth)
		return
	}
	bvh.collectStats(node.Left, depth+1, stats)
	bvh.collectStats(node.Right, depth+1, stats)
}
