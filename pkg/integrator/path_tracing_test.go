package integrator

import (
	"math"
	"testing"

	"gonum.org/v1/gonum/stat"

	"github.com/df07/go-photon-tracer/pkg/core"
	"github.com/df07/go-photon-tracer/pkg/geometry"
	"github.com/df07/go-photon-tracer/pkg/lights"
	"github.com/df07/go-photon-tracer/pkg/material"
	"github.com/df07/go-photon-tracer/pkg/medium"
	"github.com/df07/go-photon-tracer/pkg/photon"
	"github.com/df07/go-photon-tracer/pkg/scene"
)

func testConfig() Config {
	return Config{MaxDepth: 8, MaxInvisibleDepth: 4, RussianRouletteMinBounces: 3}
}

// must unwraps constructor results in test fixtures
func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func newTracer(t *testing.T, entities []scene.Entity, volumes []scene.Volume, config Config) *PathTracer {
	t.Helper()
	es := must(scene.NewEntityScene(entities))
	vs := must(scene.NewVolumeScene(volumes))
	return NewPathTracer(es, vs, lights.NewSampler(es), config)
}

func diffuseWhite() *material.Material {
	return must(material.NewDiffuse(material.NewSolidColor(core.Splat(1))))
}

// meanRadiance averages the red channel of n samples of the same ray
func meanRadiance(pt *PathTracer, ray core.Ray, maps Maps, n int) (float64, float64) {
	values := make([]float64, n)
	for i := range values {
		sampler := core.NewSeededSampler(core.MixSeed(11, uint64(i)), 0)
		values[i] = pt.Li(ray, maps, Queries{}, sampler).Radiance.X
	}
	return stat.MeanVariance(values, nil)
}

func TestPathTracer_EscapingRayReturnsBackground(t *testing.T) {
	config := testConfig()
	config.Background = core.NewVec3(0.2, 0.3, 0.4)
	pt := newTracer(t, nil, nil, config)

	ray := core.NewRay(core.NewVec3(0, 0, 0), core.NewVec3(0, 0, 1))
	for seed := uint64(0); seed < 100; seed++ {
		got := pt.Li(ray, Maps{}, Queries{}, core.NewSeededSampler(seed, 0))
		if got.Radiance != config.Background {
			t.Fatalf("Seed %d: expected exactly %v, got %v", seed, config.Background, got.Radiance)
		}
		if got.Caustic.Valid || got.Global.Valid {
			t.Fatalf("Seed %d: unexpected photon estimate", seed)
		}
	}
}

// A white floor lit by a spherical emitter of radiance L and radius r at
// height d reflects L·(r/d)² straight back
func TestPathTracer_DiffuseUnderSphereLight(t *testing.T) {
	const radiance, radius, height = 16.0, 0.5, 2.0
	light := must(material.NewEmissive(material.NewSolidColor(core.Splat(radiance))))
	pt := newTracer(t, []scene.Entity{
		{Shape: must(geometry.NewPlane(core.Vec3{}, core.NewVec3(0, 1, 0))), Material: diffuseWhite()},
		{Shape: must(geometry.NewSphere(core.NewVec3(0, height, 0), radius)), Material: light},
	}, nil, testConfig())

	ray := core.NewRay(core.NewVec3(0, 1, -1), core.NewVec3(0, -1, 1).Normalize())
	mean, variance := meanRadiance(pt, ray, Maps{}, 20000)

	want := radiance * (radius / height) * (radius / height)
	stderr := math.Sqrt(variance / 20000)
	if math.Abs(mean-want) > 4*stderr+1e-3 {
		t.Errorf("Mean radiance %v, want %v (stderr %v)", mean, want, stderr)
	}
	if mean > radiance {
		t.Errorf("Reflected radiance %v exceeds the light radiance %v", mean, radiance)
	}
}

// A white sphere under an area light no closer than the light's size: every
// sampled path, direct view of the light included, stays within its radiance
func TestPathTracer_SampledPathsNeverExceedLight(t *testing.T) {
	const radiance, h = 4.0, 0.5
	light := must(geometry.NewPolygon([]core.Vec3{
		core.NewVec3(-h, 3, -h), core.NewVec3(h, 3, -h), core.NewVec3(h, 3, h), core.NewVec3(-h, 3, h),
	}))
	config := testConfig()
	config.RussianRouletteMinBounces = 10
	pt := newTracer(t, []scene.Entity{
		{Shape: must(geometry.NewSphere(core.NewVec3(0, 1, 0), 1)), Material: diffuseWhite()},
		{Shape: light, Material: must(material.NewEmissive(material.NewSolidColor(core.Splat(radiance))))},
	}, nil, config)

	aim := core.NewSeededSampler(5, 0)
	lit := 0
	for i := 0; i < 20000; i++ {
		u, v := aim.Get2D(), aim.Get2D()
		phi := 2 * math.Pi * u.X
		origin := core.NewVec3(4*math.Cos(phi), 4*u.Y, 4*math.Sin(phi))
		target := core.NewVec3(v.X-0.5, 0.2+2.8*v.Y, 0)
		ray := core.NewRay(origin, target.Subtract(origin).Normalize())

		r := pt.Li(ray, Maps{}, Queries{}, core.NewSeededSampler(core.MixSeed(6, uint64(i)), 0))
		if !r.Radiance.IsFinite() || r.Radiance.MinComponent() < 0 || r.Radiance.MaxComponent() > radiance*(1+1e-9) {
			t.Fatalf("Sample %d: radiance %v outside [0, %v]", i, r.Radiance, radiance)
		}
		if r.Radiance.MaxComponent() > 0 {
			lit++
		}
	}
	if lit == 0 {
		t.Error("Expected some paths to reach the light")
	}
}

func TestPathTracer_AbsorbingMedium(t *testing.T) {
	config := testConfig()
	config.Background = core.Splat(1)
	absorber := must(medium.NewIsotropic(core.Splat(0), core.Splat(1)))
	box := must(geometry.NewBox(core.NewVec3(-1, -1, 0), core.NewVec3(1, 1, 2)))
	pt := newTracer(t, nil, []scene.Volume{{Shape: box, Medium: absorber}}, config)

	ray := core.NewRay(core.NewVec3(0, 0, -5), core.NewVec3(0, 0, 1))
	mean, _ := meanRadiance(pt, ray, Maps{}, 20000)
	if want := math.Exp(-2); math.Abs(mean-want) > 0.01 {
		t.Errorf("Transmitted radiance %v, want %v", mean, want)
	}
}

// mirrorScene lights a floor only through a mirror: the emitter faces up
// toward a mirror ceiling that reflects it back down
func mirrorScene(t *testing.T) *PathTracer {
	t.Helper()
	h := 0.5
	light := must(geometry.NewPolygon([]core.Vec3{
		core.NewVec3(-h, 1, -h), core.NewVec3(-h, 1, h), core.NewVec3(h, 1, h), core.NewVec3(h, 1, -h),
	}))
	config := testConfig()
	config.MaxDepth = 3
	config.RussianRouletteMinBounces = 10
	return newTracer(t, []scene.Entity{
		{Shape: must(geometry.NewPlane(core.Vec3{}, core.NewVec3(0, 1, 0))), Material: diffuseWhite()},
		{Shape: must(geometry.NewPlane(core.NewVec3(0, 3, 0), core.NewVec3(0, -1, 0))),
			Material: must(material.NewSpecular(material.NewSolidColor(core.Splat(1))))},
		{Shape: light, Material: must(material.NewEmissive(material.NewSolidColor(core.Splat(10))))},
	}, nil, config)
}

func TestPathTracer_CausticGatherReplacesCausticPaths(t *testing.T) {
	pt := mirrorScene(t)
	floorPoint := core.NewVec3(2, 0, 0)
	ray := core.NewRay(core.NewVec3(2, 0.5, -1), floorPoint.Subtract(core.NewVec3(2, 0.5, -1)).Normalize())

	withoutMap, _ := meanRadiance(pt, ray, Maps{}, 5000)
	if withoutMap <= 0 {
		t.Fatalf("Expected the mirrored light to reach the floor by path tracing, got %v", withoutMap)
	}

	caustics := photon.NewMap([]photon.Photon{
		{Position: floorPoint, Direction: core.NewVec3(0, 1, 0), Power: core.Splat(1), Caustic: true},
	})
	maps := Maps{Caustic: caustics}
	queries := Queries{Caustic: photon.Query{K: 1}}
	for i := uint64(0); i < 2000; i++ {
		r := pt.Li(ray, maps, queries, core.NewSeededSampler(i, 1))
		if !r.Radiance.IsZero() {
			t.Fatalf("Sample %d: path traced caustic %v should be left to the photon map", i, r.Radiance)
		}
		if !r.Caustic.Valid || r.Caustic.Count != 1 {
			t.Fatalf("Sample %d: expected a caustic estimate from one photon, got %+v", i, r.Caustic)
		}
		// Photon from straight above: albedo/π times unit power
		if math.Abs(r.Caustic.Flux.X-1/math.Pi) > 1e-9 {
			t.Fatalf("Sample %d: caustic flux %v, want %v", i, r.Caustic.Flux.X, 1/math.Pi)
		}
	}
}

// A floor lit only by a ceiling that an up-facing light shines on. Paths
// stop MaxInvisibleDepth vertices past the floor even without a global map.
func TestPathTracer_InvisibleDepthEndsPaths(t *testing.T) {
	h := 0.5
	light := must(geometry.NewPolygon([]core.Vec3{
		core.NewVec3(-h, 0.5, -h), core.NewVec3(-h, 0.5, h), core.NewVec3(h, 0.5, h), core.NewVec3(h, 0.5, -h),
	}))
	entities := []scene.Entity{
		{Shape: must(geometry.NewPlane(core.Vec3{}, core.NewVec3(0, 1, 0))), Material: diffuseWhite()},
		{Shape: must(geometry.NewPlane(core.NewVec3(0, 1, 0), core.NewVec3(0, -1, 0))), Material: diffuseWhite()},
		{Shape: light, Material: must(material.NewEmissive(material.NewSolidColor(core.Splat(10))))},
	}
	ray := core.NewRay(core.NewVec3(3, 0.5, -1), core.NewVec3(0, -0.5, 1).Normalize())

	tests := []struct {
		name      string
		invisible int
		lit       bool
	}{
		{"ends at the ceiling", 1, false},
		{"lights the ceiling", 2, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := testConfig()
			config.MaxInvisibleDepth = tt.invisible
			config.RussianRouletteMinBounces = 10
			pt := newTracer(t, entities, nil, config)

			mean, _ := meanRadiance(pt, ray, Maps{}, 2000)
			if tt.lit != (mean > 0) {
				t.Errorf("Mean radiance %v with invisible depth %d, lit = %v", mean, tt.invisible, tt.lit)
			}
		})
	}
}

func TestPathTracer_GlobalFinalGather(t *testing.T) {
	s := must(scene.NewCornellBox())
	sampler := lights.NewSampler(s.Entities)
	emitter := photon.NewEmitter(s.Entities, sampler, photon.DefaultEmitterOptions())
	maps := Maps{Global: must(emitter.TraceMap(photon.Global, 20000, 3))}
	if maps.Global.Len() == 0 {
		t.Fatal("Expected global photons")
	}

	config := testConfig()
	config.MaxInvisibleDepth = 1
	config.RussianRouletteMinBounces = 10
	pt := NewPathTracer(s.Entities, s.Volumes, sampler, config)

	center := core.Splat(scene.CornellBoxSize / 2)
	ray := core.NewRay(s.View.Position, center.Subtract(s.View.Position).Normalize())
	queries := Queries{Global: photon.Query{K: 50}}

	gathered := 0
	for i := uint64(0); i < 200; i++ {
		r := pt.Li(ray, maps, queries, core.NewSeededSampler(i, 2))
		if r.Caustic.Valid {
			t.Fatalf("No caustic map was given, got %+v", r.Caustic)
		}
		if r.Global.Valid {
			gathered++
			if r.Global.Count != 50 || !(r.Global.Radius > 0) {
				t.Fatalf("Unexpected global estimate %+v", r.Global)
			}
		}
		if !r.Radiance.IsFinite() {
			t.Fatalf("Non-finite radiance %v", r.Radiance)
		}
	}
	if gathered == 0 {
		t.Error("Expected final gathers at the second diffuse vertex")
	}

	// Without photon maps the path tracer never produces estimates
	for i := uint64(0); i < 50; i++ {
		if r := pt.Li(ray, Maps{}, queries, core.NewSeededSampler(i, 2)); r.Global.Valid {
			t.Fatal("Unexpected global estimate without a global map")
		}
	}
}
