package geometry

import (
	"errors"
	"math"
	"testing"

	"github.com/df07/go-photon-tracer/pkg/core"
)

// must unwraps a constructor result; fixtures are static so an error is a bug
func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func testShapes(t *testing.T) map[string]Shape {
	t.Helper()
	sphere := must(NewSphere(core.NewVec3(0, 0, 0), 1))
	triangle := must(NewTriangle(core.NewVec3(-1, -1, 0), core.NewVec3(1, -1, 0), core.NewVec3(0, 1, 0)))
	square := []core.Vec3{
		core.NewVec3(-1, 0, -1), core.NewVec3(1, 0, -1), core.NewVec3(1, 0, 1), core.NewVec3(-1, 0, 1),
	}
	lShape := []core.Vec3{
		core.NewVec3(0, 0, 0), core.NewVec3(2, 0, 0), core.NewVec3(2, 1, 0),
		core.NewVec3(1, 1, 0), core.NewVec3(1, 2, 0), core.NewVec3(0, 2, 0),
	}
	tetra := []core.Vec3{
		core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0), core.NewVec3(0, 0, 1),
	}
	faces := [][3]int{{0, 2, 1}, {0, 1, 3}, {0, 3, 2}, {1, 2, 3}}

	shapes := map[string]Shape{
		"sphere":   sphere,
		"plane":    must(NewPlane(core.NewVec3(0, -1, 0), core.NewVec3(0, 1, 0))),
		"tilted":   must(NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(1, 1, 1))),
		"triangle": triangle,
		"square":   must(NewPolygon(square)),
		"concave":  must(NewPolygon(lShape)),
		"box":      must(NewBox(core.NewVec3(-1, -0.5, -2), core.NewVec3(1, 0.5, 2))),
		"flat box": must(NewBox(core.NewVec3(-1, 0, -1), core.NewVec3(1, 0, 1))),
		"mesh":     must(NewMesh(tetra, faces, nil)),
	}
	transform := NewTransform().Scale(2).Rotate(core.NewVec3(1, 1, 0), 0.7).Translate(core.NewVec3(1, 2, 3))
	shapes["instance sphere"] = must(NewInstance(sphere, transform))
	shapes["instance triangle"] = must(NewInstance(triangle, transform))
	return shapes
}

func TestShape_HitPointInsideBoundingBox(t *testing.T) {
	sampler := core.NewSeededSampler(7, 1)

	for name, shape := range testShapes(t) {
		t.Run(name, func(t *testing.T) {
			bbox := shape.BoundingBox()
			center := bbox.Center()
			if shape.Kind() == KindPlane {
				center = core.Vec3{}
			}
			hits := 0
			for i := 0; i < 2000; i++ {
				origin := center.Add(core.SampleOnUnitSphere(sampler.Get2D()).Multiply(10))
				target := center.Add(sampler.Get3D().Subtract(core.Splat(0.5)).Multiply(2))
				ray := core.NewRay(origin, target.Subtract(origin).Normalize())

				hit, ok := shape.Hit(ray, 1e-6, math.Inf(1))
				if !ok {
					continue
				}
				hits++
				if !bbox.Contains(hit.Point, 1e-6) {
					t.Fatalf("hit point %v outside bounding box %v..%v", hit.Point, bbox.Min, bbox.Max)
				}
				if math.Abs(hit.Normal.Length()-1) > 1e-9 {
					t.Errorf("normal %v is not unit length", hit.Normal)
				}
				if hit.Normal.Dot(ray.Direction) > 1e-9 {
					t.Errorf("normal %v does not face the ray", hit.Normal)
				}
			}
			if hits == 0 {
				t.Errorf("expected some rays to hit %s", name)
			}
		})
	}
}

func TestShape_SamplePointOnSurface(t *testing.T) {
	sampler := core.NewSeededSampler(11, 2)

	for name, shape := range testShapes(t) {
		t.Run(name, func(t *testing.T) {
			sample, ok := shape.SamplePoint(sampler)
			if shape.Kind() == KindPlane {
				if ok {
					t.Error("unbounded plane should not be sampleable")
				}
				return
			}
			if !ok {
				t.Fatal("expected a sample")
			}
			if expected := 1 / shape.Area(); math.Abs(sample.PDF-expected) > 1e-9*expected {
				t.Errorf("expected area pdf %f, got %f", expected, sample.PDF)
			}

			// A ray aimed at the sampled point along its normal must hit it
			origin := sample.Point.Add(sample.Normal.Multiply(0.5))
			ray := core.NewRay(origin, sample.Normal.Negate())
			hit, ok := shape.Hit(ray, 1e-6, 0.5+1e-4)
			if !ok {
				t.Fatalf("ray toward sampled point %v missed", sample.Point)
			}
			if !hit.Point.Equals(sample.Point, 1e-6) {
				t.Errorf("expected hit at %v, got %v", sample.Point, hit.Point)
			}
			if !hit.FrontFace {
				t.Error("sample normal should point outward")
			}
		})
	}
}

func TestSphere_Hit_FrontAndBackFace(t *testing.T) {
	sphere := must(NewSphere(core.NewVec3(0, 0, 0), 1.0))

	tests := []struct {
		name           string
		rayOrigin      core.Vec3
		rayDirection   core.Vec3
		expectedT      float64
		expectedFront  bool
		expectedNormal core.Vec3
	}{
		{
			name:           "front face hit",
			rayOrigin:      core.NewVec3(0, 0, 2),
			rayDirection:   core.NewVec3(0, 0, -1),
			expectedT:      1.0,
			expectedFront:  true,
			expectedNormal: core.NewVec3(0, 0, 1),
		},
		{
			name:           "back face hit",
			rayOrigin:      core.NewVec3(0, 0, 0),
			rayDirection:   core.NewVec3(0, 0, 1),
			expectedT:      1.0,
			expectedFront:  false,
			expectedNormal: core.NewVec3(0, 0, -1),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, isHit := sphere.Hit(core.NewRay(tt.rayOrigin, tt.rayDirection), 0.001, 1000.0)
			if !isHit {
				t.Fatal("Expected hit, but got miss")
			}
			if math.Abs(hit.T-tt.expectedT) > 1e-9 {
				t.Errorf("Expected t=%f, got t=%f", tt.expectedT, hit.T)
			}
			if hit.FrontFace != tt.expectedFront {
				t.Errorf("Expected FrontFace=%v, got %v", tt.expectedFront, hit.FrontFace)
			}
			if !hit.Normal.Equals(tt.expectedNormal, 1e-9) {
				t.Errorf("Expected normal %v, got %v", tt.expectedNormal, hit.Normal)
			}
		})
	}
}

func TestPlane_ParallelRayMisses(t *testing.T) {
	plane := must(NewPlane(core.NewVec3(0, 0, 0), core.NewVec3(0, 1, 0)))
	ray := core.NewRay(core.NewVec3(0, 1, 0), core.NewVec3(1, 0, 0))
	if _, ok := plane.Hit(ray, 0.001, 1000); ok {
		t.Error("Expected parallel ray to miss the plane")
	}
}

func TestPolygon_ConcaveNotch(t *testing.T) {
	poly := must(NewPolygon([]core.Vec3{
		core.NewVec3(0, 0, 0), core.NewVec3(2, 0, 0), core.NewVec3(2, 1, 0),
		core.NewVec3(1, 1, 0), core.NewVec3(1, 2, 0), core.NewVec3(0, 2, 0),
	}))

	tests := []struct {
		name   string
		x, y   float64
		inside bool
	}{
		{"lower arm", 1.5, 0.5, true},
		{"upper arm", 0.5, 1.5, true},
		{"notch", 1.5, 1.5, false},
		{"outside", 3, 3, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ray := core.NewRay(core.NewVec3(tt.x, tt.y, 1), core.NewVec3(0, 0, -1))
			_, ok := poly.Hit(ray, 0.001, 10)
			if ok != tt.inside {
				t.Errorf("Expected hit=%v at (%f, %f), got %v", tt.inside, tt.x, tt.y, ok)
			}
		})
	}
	if math.Abs(poly.Area()-3) > 1e-9 {
		t.Errorf("Expected area 3, got %f", poly.Area())
	}
}

func TestBox_RayFromInside(t *testing.T) {
	box := must(NewBox(core.NewVec3(-1, -1, -1), core.NewVec3(1, 1, 1)))
	hit, ok := box.Hit(core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1)), 0.001, 10)
	if !ok {
		t.Fatal("Expected hit from inside the box")
	}
	if math.Abs(hit.T-1) > 1e-9 || hit.FrontFace {
		t.Errorf("Expected back face exit at t=1, got t=%f front=%v", hit.T, hit.FrontFace)
	}
	if !hit.Normal.Equals(core.NewVec3(0, 0, -1), 1e-9) {
		t.Errorf("Expected normal facing the ray, got %v", hit.Normal)
	}
}

func TestTriangle_SmoothNormals(t *testing.T) {
	verts := []core.Vec3{core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(0, 1, 0)}
	up := core.NewVec3(0, 0, 1)
	tilted := core.NewVec3(1, 0, 1).Normalize()
	mesh := must(NewMesh(verts, [][3]int{{0, 1, 2}}, &MeshOptions{
		Normals: []core.Vec3{up, tilted, up},
	}))

	hit, ok := mesh.Hit(core.NewRay(core.NewVec3(0.5, 0.1, 1), core.NewVec3(0, 0, -1)), 0.001, 10)
	if !ok {
		t.Fatal("Expected hit")
	}
	if hit.Normal.X <= 0 {
		t.Errorf("Expected interpolated normal to lean toward +x, got %v", hit.Normal)
	}
}

func TestMesh_NearestFace(t *testing.T) {
	var verts []core.Vec3
	var faces [][3]int
	for i := 0; i < 20; i++ {
		z := float64(i)
		base := len(verts)
		verts = append(verts, core.NewVec3(-1, -1, z), core.NewVec3(1, -1, z), core.NewVec3(0, 1, z))
		faces = append(faces, [3]int{base, base + 1, base + 2})
	}
	mesh := must(NewMesh(verts, faces, nil))

	hit, ok := mesh.Hit(core.NewRay(core.NewVec3(0, 0, 7.5), core.NewVec3(0, 0, 1)), 0.001, 100)
	if !ok || math.Abs(hit.T-0.5) > 1e-9 {
		t.Errorf("Expected nearest face at t=0.5, got %f (hit=%v)", hit.T, ok)
	}
	if math.Abs(mesh.Area()-40) > 1e-9 {
		t.Errorf("Expected area 40, got %f", mesh.Area())
	}
}

func TestInstance_RotatedPolygon(t *testing.T) {
	square := must(NewPolygon([]core.Vec3{
		core.NewVec3(2, 1, 1), core.NewVec3(2, 1, -1), core.NewVec3(2, -1, -1), core.NewVec3(2, -1, 1),
	}))
	// A quarter turn about y maps the -x facing square at x=2 onto z=-1 facing +z
	transform := NewTransform().Rotate(core.NewVec3(0, 1, 0), math.Pi/2).Translate(core.NewVec3(0, 0, 1))
	inst := must(NewInstance(square, transform))

	tests := []struct {
		name      string
		origin    core.Vec3
		direction core.Vec3
		front     bool
	}{
		{"from front", core.NewVec3(0.5, 0.5, 5), core.NewVec3(0, 0, -1), true},
		{"from behind", core.NewVec3(0.5, 0.5, -5), core.NewVec3(0, 0, 1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			hit, ok := inst.Hit(core.NewRay(tt.origin, tt.direction), 0.001, 100)
			if !ok {
				t.Fatal("Expected hit on the rotated square")
			}
			if math.Abs(hit.Point.Z-(-1)) > 1e-9 {
				t.Errorf("Expected hit at z=-1, got %v", hit.Point)
			}
			if hit.FrontFace != tt.front {
				t.Errorf("Expected FrontFace=%v, got %v", tt.front, hit.FrontFace)
			}
			if !hit.OutwardNormal().Equals(core.NewVec3(0, 0, 1), 1e-9) {
				t.Errorf("Expected outward normal +z, got %v", hit.OutwardNormal())
			}
		})
	}

	miss := core.NewRay(core.NewVec3(1.5, 0, 5), core.NewVec3(0, 0, -1))
	if _, ok := inst.Hit(miss, 0.001, 100); ok {
		t.Error("Expected ray outside the square to miss")
	}
	if math.Abs(inst.Area()-4) > 1e-9 {
		t.Errorf("Expected area 4, got %f", inst.Area())
	}
}

func TestConstructors_Validation(t *testing.T) {
	tests := []struct {
		name string
		err  error
	}{
		{"zero radius sphere", second(NewSphere(core.Vec3{}, 0))},
		{"negative radius sphere", second(NewSphere(core.Vec3{}, -1))},
		{"zero plane normal", second(NewPlane(core.Vec3{}, core.Vec3{}))},
		{"degenerate triangle", second(NewTriangle(core.Vec3{}, core.NewVec3(1, 0, 0), core.NewVec3(2, 0, 0)))},
		{"two vertex polygon", second(NewPolygon([]core.Vec3{core.Vec3{}, core.NewVec3(1, 0, 0)}))},
		{"non-planar polygon", second(NewPolygon([]core.Vec3{
			core.NewVec3(0, 0, 0), core.NewVec3(1, 0, 0), core.NewVec3(1, 1, 0), core.NewVec3(0, 1, 1),
		}))},
		{"inverted box", second(NewBox(core.NewVec3(1, 1, 1), core.Vec3{}))},
		{"empty mesh", second(NewMesh(nil, nil, nil))},
		{"mesh index out of range", second(NewMesh([]core.Vec3{core.Vec3{}}, [][3]int{{0, 1, 2}}, nil))},
		{"singular instance", second(NewInstance(must(NewSphere(core.Vec3{}, 1)), NewTransform().Scale(0)))},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !errors.Is(tt.err, ErrInvalidShape) {
				t.Errorf("Expected ErrInvalidShape, got %v", tt.err)
			}
		})
	}
}

func second(_ Shape, err error) error {
	return err
}
