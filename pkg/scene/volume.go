package scene

import (
	"math"
	"slices"

	"github.com/df07/go-photon-tracer/pkg/core"
	"github.com/df07/go-photon-tracer/pkg/geometry"
	"github.com/df07/go-photon-tracer/pkg/medium"
)

// maxBoundaryCrossings caps the crossings collected per volume and ray
const maxBoundaryCrossings = 64

// Volume is a closed boundary filled with a participating medium
type Volume struct {
	Shape  geometry.Shape
	Medium *medium.Medium
}

// Segment is a stretch of a ray inside one medium
type Segment struct {
	Start, End float64
	Medium     *medium.Medium
	Volume     int
}

// Length returns the segment length in ray parameter units
func (s Segment) Length() float64 {
	return s.End - s.Start
}

// VolumeScene resolves which media a ray passes through. Overlapping
// volumes are resolved innermost first: the most recently entered volume
// owns the segment.
type VolumeScene struct {
	volumes []Volume
	bvh     *geometry.BVH
}

// NewVolumeScene builds the volume acceleration structure. A nil or empty
// scene never produces segments.
func NewVolumeScene(volumes []Volume) (*VolumeScene, error) {
	boxes := make([]core.AABB, len(volumes))
	for i, v := range volumes {
		if v.Medium == nil {
			return nil, invalidScene("volume %d has no medium", i)
		}
		if !v.Shape.IsValid() {
			return nil, invalidScene("volume %d has no shape", i)
		}
		boxes[i] = v.Shape.BoundingBox()
	}
	return &VolumeScene{
		volumes: append([]Volume(nil), volumes...),
		bvh:     geometry.NewBVH(boxes),
	}, nil
}

// Len returns the number of volumes
func (s *VolumeScene) Len() int {
	if s == nil {
		return 0
	}
	return len(s.volumes)
}

// Volume returns the volume at index i
func (s *VolumeScene) Volume(i int) Volume {
	return s.volumes[i]
}

type crossing struct {
	t      float64
	volume int
	enter  bool
}

// Segments returns the non-vacuum media segments along the ray in (0, tMax),
// ordered by distance. Whether the ray starts inside a volume is decided by
// the side of the first boundary it crosses.
func (s *VolumeScene) Segments(ray core.Ray, tMax float64) []Segment {
	if s.Len() == 0 {
		return nil
	}

	var events []crossing
	var inside []int
	s.bvh.Visit(ray, 0, math.Inf(1), func(i int) {
		shape := s.volumes[i].Shape
		t := 0.0
		first := true
		for n := 0; n < maxBoundaryCrossings; n++ {
			hit, ok := shape.Hit(ray, t, math.Inf(1))
			if !ok {
				break
			}
			if first {
				if !hit.FrontFace {
					inside = append(inside, i)
				}
				first = false
			}
			if hit.T >= tMax {
				break
			}
			events = append(events, crossing{t: hit.T, volume: i, enter: hit.FrontFace})
			t = hit.T + ShadowEpsilon*math.Max(1, hit.T)
		}
	})
	if len(inside) == 0 && len(events) == 0 {
		return nil
	}

	// Larger volumes first so the smallest enclosing one ends up on top
	slices.SortFunc(inside, func(a, b int) int {
		sa := s.volumes[a].Shape.BoundingBox().SurfaceArea()
		sb := s.volumes[b].Shape.BoundingBox().SurfaceArea()
		switch {
		case sa > sb:
			return -1
		case sa < sb:
			return 1
		}
		return a - b
	})
	slices.SortStableFunc(events, func(a, b crossing) int {
		switch {
		case a.t < b.t:
			return -1
		case a.t > b.t:
			return 1
		}
		return 0
	})

	stack := inside
	var segments []Segment
	emit := func(start, end float64) {
		if len(stack) == 0 || end <= start {
			return
		}
		top := stack[len(stack)-1]
		m := s.volumes[top].Medium
		if m.IsVacuum() {
			return
		}
		segments = append(segments, Segment{Start: start, End: end, Medium: m, Volume: top})
	}

	last := 0.0
	for _, e := range events {
		emit(last, e.t)
		if e.enter {
			stack = append(stack, e.volume)
		} else if k := slices.Index(stack, e.volume); k >= 0 {
			stack = slices.Delete(stack, k, k+1)
		}
		last = e.t
	}
	emit(last, tMax)
	return segments
}
