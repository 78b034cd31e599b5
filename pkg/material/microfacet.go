package material

import (
	"math"

	"github.com/df07/go-photon-tracer/pkg/core"
)

// ggx is an isotropic Trowbridge-Reitz microfacet distribution. Directions
// are expressed in a local frame whose Z axis is the shading normal.
type ggx struct {
	alpha float64
}

// d is the normal distribution for a microfacet normal m
func (g ggx) d(m core.Vec3) float64 {
	if m.Z <= 0 {
		return 0
	}
	a2 := g.alpha * g.alpha
	c2 := m.Z * m.Z
	denom := c2*(a2-1) + 1
	return a2 / (math.Pi * denom * denom)
}

func (g ggx) lambda(v core.Vec3) float64 {
	c2 := v.Z * v.Z
	if c2 >= 1 {
		return 0
	}
	if c2 == 0 {
		return math.Inf(1)
	}
	tan2 := (1 - c2) / c2
	return (math.Sqrt(1+g.alpha*g.alpha*tan2) - 1) / 2
}

// g1 is the Smith masking term for one direction
func (g ggx) g1(v core.Vec3) float64 {
	return 1 / (1 + g.lambda(v))
}

// g2 is the height-correlated masking-shadowing term
func (g ggx) g2(wo, wi core.Vec3) float64 {
	return 1 / (1 + g.lambda(wo) + g.lambda(wi))
}

// visiblePDF is the density of sampling m from the distribution of normals
// visible from wo
func (g ggx) visiblePDF(wo, m core.Vec3) float64 {
	if wo.Z <= 0 {
		return 0
	}
	return g.g1(wo) * math.Max(0, wo.Dot(m)) * g.d(m) / wo.Z
}

// sampleVisible draws a microfacet normal visible from wo (wo.Z > 0)
func (g ggx) sampleVisible(wo core.Vec3, u core.Vec2) core.Vec3 {
	// Stretch the view direction to the hemisphere configuration
	vh := core.NewVec3(g.alpha*wo.X, g.alpha*wo.Y, wo.Z).Normalize()

	lensq := vh.X*vh.X + vh.Y*vh.Y
	t1 := core.NewVec3(1, 0, 0)
	if lensq > 0 {
		t1 = core.NewVec3(-vh.Y, vh.X, 0).Multiply(1 / math.Sqrt(lensq))
	}
	t2 := vh.Cross(t1)

	r := math.Sqrt(u.X)
	phi := 2 * math.Pi * u.Y
	p1 := r * math.Cos(phi)
	p2 := r * math.Sin(phi)
	s := 0.5 * (1 + vh.Z)
	p2 = (1-s)*math.Sqrt(math.Max(0, 1-p1*p1)) + s*p2

	p3 := math.Sqrt(math.Max(0, 1-p1*p1-p2*p2))
	nh := t1.Multiply(p1).Add(t2.Multiply(p2)).Add(vh.Multiply(p3))

	// Unstretch back to the ellipsoid configuration
	return core.NewVec3(g.alpha*nh.X, g.alpha*nh.Y, math.Max(1e-9, nh.Z)).Normalize()
}

// schlick evaluates Schlick's Fresnel approximation per channel
func schlick(r0 core.Vec3, cosine float64) core.Vec3 {
	f := math.Pow(1-math.Max(0, math.Min(1, cosine)), 5)
	return r0.Add(core.Splat(1).Subtract(r0).Multiply(f))
}
