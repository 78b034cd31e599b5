// Package photon implements the photon pass of stochastic progressive
// photon mapping: photon emission and tracing, the k-d tree photon map and
// the per-pixel observations that shrink their gather radius over time.
package photon

import (
	"gonum.org/v1/gonum/spatial/kdtree"

	"github.com/df07/go-photon-tracer/pkg/core"
)

// Photon is a packet of flux deposited on a diffuse surface
type Photon struct {
	Position  core.Vec3
	Direction core.Vec3 // Incoming direction, pointing away from the surface
	Power     core.Vec3
	Caustic   bool // Deposited after delta bounces only
}

var (
	_ kdtree.Comparable = Photon{}
	_ kdtree.Interface  = photons(nil)
)

// Compare returns the signed distance of p from the plane through c
// perpendicular to dimension d
func (p Photon) Compare(c kdtree.Comparable, d kdtree.Dim) float64 {
	q := c.(Photon)
	return p.Position.Component(int(d)) - q.Position.Component(int(d))
}

// Dims returns the number of spatial dimensions
func (p Photon) Dims() int { return 3 }

// Distance returns the squared Euclidean distance between photon positions
func (p Photon) Distance(c kdtree.Comparable) float64 {
	return p.Position.Subtract(c.(Photon).Position).LengthSquared()
}

// photons satisfies kdtree.Interface
type photons []Photon

func (p photons) Index(i int) kdtree.Comparable         { return p[i] }
func (p photons) Len() int                              { return len(p) }
func (p photons) Slice(start, end int) kdtree.Interface { return p[start:end] }

// Pivot uses the deterministic median of medians so the same photon list
// always produces the same tree
func (p photons) Pivot(d kdtree.Dim) int {
	plane := photonPlane{photons: p, dim: int(d)}
	return kdtree.Partition(plane, kdtree.MedianOfMedians(plane))
}

// photonPlane sorts photons along one axis
type photonPlane struct {
	photons
	dim int
}

func (p photonPlane) Less(i, j int) bool {
	return p.photons[i].Position.Component(p.dim) < p.photons[j].Position.Component(p.dim)
}
func (p photonPlane) Swap(i, j int) { p.photons[i], p.photons[j] = p.photons[j], p.photons[i] }
func (p photonPlane) Slice(start, end int) kdtree.SortSlicer {
	p.photons = p.photons[start:end]
	return p
}
