package geometry

import (
	"math"

	"github.com/df07/go-photon-tracer/pkg/core"
)

// Polygon is a simple planar polygon. Hits are resolved with a crossing
// test in the polygon plane; sampling uses an ear-clipped triangulation.
type Polygon struct {
	Vertices  []core.Vec3
	Normal    core.Vec3
	origin    core.Vec3
	u, v      core.Vec3
	projected []core.Vec2
	triangles []*Triangle
	cdf       []float64
	bbox      core.AABB
}

// NewPolygon creates a polygon shape from at least three coplanar vertices
// listed in order around the boundary
func NewPolygon(vertices []core.Vec3) (Shape, error) {
	if len(vertices) < 3 {
		return Shape{}, invalidShape("polygon needs at least 3 vertices, got %d", len(vertices))
	}
	for i := range vertices {
		for j := i + 1; j < len(vertices); j++ {
			if vertices[i].Equals(vertices[j], 1e-12) {
				return Shape{}, invalidShape("polygon has duplicated vertex %v", vertices[i])
			}
		}
	}

	// Newell's method gives a robust normal for any simple polygon
	var normal core.Vec3
	for i, cur := range vertices {
		next := vertices[(i+1)%len(vertices)]
		normal.X += (cur.Y - next.Y) * (cur.Z + next.Z)
		normal.Y += (cur.Z - next.Z) * (cur.X + next.X)
		normal.Z += (cur.X - next.X) * (cur.Y + next.Y)
	}
	if normal.Length() < 2*minTriangleArea {
		return Shape{}, invalidShape("polygon has zero area")
	}
	normal = normal.Normalize()

	scale := core.NewAABBFromPoints(vertices...).Size().Length()
	for _, p := range vertices {
		if math.Abs(p.Subtract(vertices[0]).Dot(normal)) > 1e-6*max(1, scale) {
			return Shape{}, invalidShape("polygon vertices are not coplanar")
		}
	}

	basis := core.NewONB(normal)
	poly := &Polygon{
		Vertices: append([]core.Vec3(nil), vertices...),
		Normal:   normal,
		origin:   vertices[0],
		u:        basis.U,
		v:        basis.V,
	}
	for _, p := range vertices {
		poly.projected = append(poly.projected, poly.project(p))
	}

	triangles, err := poly.triangulate()
	if err != nil {
		return Shape{}, err
	}
	poly.triangles = triangles
	var total float64
	for _, tri := range triangles {
		total += tri.Area()
		poly.cdf = append(poly.cdf, total)
	}
	poly.bbox = core.NewAABBFromPoints(vertices...).Pad()

	return Shape{kind: KindPolygon, polygon: poly}, nil
}

func (p *Polygon) project(point core.Vec3) core.Vec2 {
	d := point.Subtract(p.origin)
	return core.NewVec2(d.Dot(p.u), d.Dot(p.v))
}

// triangulate splits the polygon into triangles by ear clipping
func (p *Polygon) triangulate() ([]*Triangle, error) {
	n := len(p.projected)
	idx := make([]int, n)
	for i := range idx {
		idx[i] = i
	}
	// Work in counter-clockwise order relative to the normal
	if signedArea(p.projected) < 0 {
		for i, j := 0, n-1; i < j; i, j = i+1, j-1 {
			idx[i], idx[j] = idx[j], idx[i]
		}
	}

	var triangles []*Triangle
	guard := 0
	for len(idx) > 3 && guard < n*n {
		guard++
		clipped := false
		for i := range idx {
			prev := idx[(i+len(idx)-1)%len(idx)]
			cur := idx[i]
			next := idx[(i+1)%len(idx)]
			if !p.isEar(prev, cur, next, idx) {
				continue
			}
			tri, err := p.orientedTriangle(prev, cur, next)
			if err == nil {
				triangles = append(triangles, tri)
			}
			idx = append(idx[:i], idx[i+1:]...)
			clipped = true
			break
		}
		if !clipped {
			return nil, invalidShape("polygon is self-intersecting")
		}
	}
	tri, err := p.orientedTriangle(idx[0], idx[1], idx[2])
	if err == nil {
		triangles = append(triangles, tri)
	}
	if len(triangles) == 0 {
		return nil, invalidShape("polygon has zero area")
	}
	return triangles, nil
}

func (p *Polygon) isEar(prev, cur, next int, remaining []int) bool {
	a, b, c := p.projected[prev], p.projected[cur], p.projected[next]
	if cross2(a, b, c) <= 0 {
		return false
	}
	for _, k := range remaining {
		if k == prev || k == cur || k == next {
			continue
		}
		if pointInTriangle2(p.projected[k], a, b, c) {
			return false
		}
	}
	return true
}

// orientedTriangle builds a triangle whose winding agrees with the polygon normal
func (p *Polygon) orientedTriangle(i, j, k int) (*Triangle, error) {
	v0, v1, v2 := p.Vertices[i], p.Vertices[j], p.Vertices[k]
	if v1.Subtract(v0).Cross(v2.Subtract(v0)).Dot(p.Normal) < 0 {
		v1, v2 = v2, v1
	}
	return newTriangle(v0, v1, v2)
}

func signedArea(points []core.Vec2) float64 {
	var area float64
	for i, a := range points {
		b := points[(i+1)%len(points)]
		area += a.X*b.Y - b.X*a.Y
	}
	return area / 2
}

func cross2(a, b, c core.Vec2) float64 {
	return (b.X-a.X)*(c.Y-a.Y) - (b.Y-a.Y)*(c.X-a.X)
}

func pointInTriangle2(p, a, b, c core.Vec2) bool {
	return cross2(a, b, p) >= 0 && cross2(b, c, p) >= 0 && cross2(c, a, p) >= 0
}

// contains reports whether a projected point lies inside the polygon
func (p *Polygon) contains(q core.Vec2) bool {
	inside := false
	n := len(p.projected)
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		a, b := p.projected[i], p.projected[j]
		if (a.Y > q.Y) != (b.Y > q.Y) {
			x := (b.X-a.X)*(q.Y-a.Y)/(b.Y-a.Y) + a.X
			if q.X < x {
				inside = !inside
			}
		}
	}
	return inside
}

// Hit tests the ray against the polygon plane and boundary
func (p *Polygon) Hit(ray core.Ray, tMin, tMax float64) (Hit, bool) {
	denom := p.Normal.Dot(ray.Direction)
	if math.Abs(denom) < 1e-12 {
		return Hit{}, false
	}
	t := p.origin.Subtract(ray.Origin).Dot(p.Normal) / denom
	if t <= tMin || t >= tMax {
		return Hit{}, false
	}
	point := ray.At(t)
	local := p.project(point)
	if !p.contains(local) {
		return Hit{}, false
	}

	hit := Hit{T: t, Point: point, UV: local}
	hit.SetFaceNormal(ray, p.Normal)
	return hit, true
}

// BoundingBox returns the padded box around the vertices
func (p *Polygon) BoundingBox() core.AABB {
	return p.bbox
}

// Area returns the polygon area
func (p *Polygon) Area() float64 {
	return p.cdf[len(p.cdf)-1]
}

// Triangles returns the triangulation used for sampling
func (p *Polygon) Triangles() []*Triangle {
	return p.triangles
}

// SamplePoint draws a point uniformly over the polygon
func (p *Polygon) SamplePoint(sampler core.Sampler) (PointSample, bool) {
	tri := p.triangles[sampleByArea(p.cdf, sampler.Get1D())]
	sample, _ := tri.SamplePoint(sampler)
	sample.Normal = p.Normal
	sample.PDF = 1.0 / p.Area()
	return sample, true
}
