package photon

import (
	"math"

	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/df07/go-photon-tracer/pkg/core"
)

// Map is an immutable k-d tree of photons. It is safe for concurrent queries.
type Map struct {
	tree  *kdtree.Tree
	count int
}

// Neighbor is a photon found by a query with its squared distance
type Neighbor struct {
	Photon
	Distance2 float64
}

// NewMap builds a photon map. The input slice is reordered.
func NewMap(list []Photon) *Map {
	if len(list) == 0 {
		return &Map{}
	}
	return &Map{tree: kdtree.New(photons(list), false), count: len(list)}
}

// Len returns the number of stored photons
func (m *Map) Len() int {
	if m == nil {
		return 0
	}
	return m.count
}

// Nearest returns up to k photons closest to p, nearest first
func (m *Map) Nearest(p core.Vec3, k int) []Neighbor {
	if m.Len() == 0 || k <= 0 {
		return nil
	}
	keeper := kdtree.NewNKeeper(k)
	m.tree.NearestSet(keeper, Photon{Position: p})
	return neighbors(keeper.Heap)
}

// WithinRadius returns every photon within distance r of p, nearest first
func (m *Map) WithinRadius(p core.Vec3, r float64) []Neighbor {
	if m.Len() == 0 || !(r > 0) || math.IsInf(r, 0) {
		return nil
	}
	keeper := kdtree.NewDistKeeper(r * r)
	m.tree.NearestSet(keeper, Photon{Position: p})
	return neighbors(keeper.Heap)
}

func neighbors(heap kdtree.Heap) []Neighbor {
	result := make([]Neighbor, 0, len(heap))
	for _, c := range heap {
		if c.Comparable == nil {
			continue
		}
		result = append(result, Neighbor{Photon: c.Comparable.(Photon), Distance2: c.Dist})
	}
	return result
}
