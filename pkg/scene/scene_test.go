package scene

import (
	"errors"
	"math"
	"testing"

	"github.com/df07/go-photon-tracer/pkg/core"
	"github.com/df07/go-photon-tracer/pkg/geometry"
	"github.com/df07/go-photon-tracer/pkg/material"
	"github.com/df07/go-photon-tracer/pkg/medium"
)

func TestBuiltinScenes(t *testing.T) {
	tests := []struct {
		name        string
		build       func() (*Scene, error)
		entities    int
		emitters    int
		withVolumes bool
	}{
		{"cornell", NewCornellBox, 8, 1, false},
		{"caustic", NewCausticScene, 3, 1, false},
		{"foggy", NewFoggyScene, 3, 1, true},
		{"spheregrid", NewSphereGridScene, 2 + SphereGridSize*SphereGridSize, 1, false},
		{"meshes", NewTriangleMeshScene, 7, 2, false},
		{"textures", NewTextureScene, 8, 1, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, err := tt.build()
			if err != nil {
				t.Fatalf("Failed to build scene: %v", err)
			}
			if s.Entities.Len() != tt.entities {
				t.Errorf("Expected %d entities, got %d", tt.entities, s.Entities.Len())
			}
			if len(s.Entities.Emitters()) != tt.emitters {
				t.Errorf("Expected %d emitters, got %d", tt.emitters, len(s.Entities.Emitters()))
			}
			if (s.Volumes.Len() > 0) != tt.withVolumes {
				t.Errorf("Unexpected volume count %d", s.Volumes.Len())
			}
			if _, ok := s.Entities.Bounds(); !ok {
				t.Error("Expected scene bounds")
			}
		})
	}
}

func TestLoad(t *testing.T) {
	scenes := ListScenes()
	if len(scenes) != 6 {
		t.Fatalf("Expected 6 built-in scenes, got %d", len(scenes))
	}
	for i, info := range scenes {
		if i > 0 && scenes[i-1].ID >= info.ID {
			t.Errorf("Scenes not sorted: %q before %q", scenes[i-1].ID, info.ID)
		}
		s, err := Load(info.ID)
		if err != nil {
			t.Errorf("Load(%q): %v", info.ID, err)
			continue
		}
		if s.Entities.Len() == 0 {
			t.Errorf("Scene %q has no entities", info.ID)
		}
	}
	if _, err := Load("dragon"); !errors.Is(err, ErrInvalidScene) {
		t.Errorf("Unknown scene: expected ErrInvalidScene, got %v", err)
	}
}

func TestOklchToRGB(t *testing.T) {
	// Zero chroma is an achromatic gray
	gray := oklchToRGB(0.6, 0, 123)
	if math.Abs(gray.X-gray.Y) > 1e-6 || math.Abs(gray.Y-gray.Z) > 1e-6 {
		t.Errorf("Expected gray, got %v", gray)
	}
	if white := oklchToRGB(1, 0, 0); !white.Equals(core.Splat(1), 1e-4) {
		t.Errorf("Expected white, got %v", white)
	}
	red := oklchToRGB(0.63, 0.26, 29)
	if red.X < red.Y || red.X < red.Z {
		t.Errorf("Hue 29 should be red-dominant, got %v", red)
	}
}

func TestEntityScene_NearestHitMatchesLinearScan(t *testing.T) {
	s, err := NewCornellBox()
	if err != nil {
		t.Fatalf("Failed to build scene: %v", err)
	}
	sampler := core.NewSeededSampler(5, 0)
	center := core.Splat(CornellBoxSize / 2)

	for i := 0; i < 500; i++ {
		origin := center.Add(sampler.Get3D().Subtract(core.Splat(0.5)).Multiply(400))
		ray := core.NewRay(origin, core.SampleOnUnitSphere(sampler.Get2D()))

		isect, ok := s.Entities.NearestHit(ray, 1e-6, math.Inf(1))

		bestT, bestIndex := math.Inf(1), -1
		for j := 0; j < s.Entities.Len(); j++ {
			if hit, hitOK := s.Entities.Entity(j).Shape.Hit(ray, 1e-6, bestT); hitOK {
				bestT, bestIndex = hit.T, j
			}
		}

		if ok != (bestIndex >= 0) {
			t.Fatalf("Ray %d: BVH hit=%v, linear scan hit=%v", i, ok, bestIndex >= 0)
		}
		if ok && (isect.Index != bestIndex || math.Abs(isect.Hit.T-bestT) > 1e-9) {
			t.Fatalf("Ray %d: BVH found entity %d at %f, linear scan %d at %f",
				i, isect.Index, isect.Hit.T, bestIndex, bestT)
		}
		if ok && !s.Entities.AnyHit(ray, 1e-6, math.Inf(1)) {
			t.Fatalf("Ray %d: AnyHit disagrees with NearestHit", i)
		}
	}
}

func TestEntityScene_Empty(t *testing.T) {
	s, err := NewEntityScene(nil)
	if err != nil {
		t.Fatalf("Empty scene should be valid: %v", err)
	}
	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 0, 1))
	if _, ok := s.NearestHit(ray, 0, math.Inf(1)); ok {
		t.Error("Empty scene should never be hit")
	}
	if s.AnyHit(ray, 0, math.Inf(1)) {
		t.Error("Empty scene should never occlude")
	}
	if len(s.Emitters()) != 0 {
		t.Error("Empty scene has no emitters")
	}
}

func TestEntityScene_Visible(t *testing.T) {
	sphere, _ := geometry.NewSphere(core.Vec3{}, 1)
	white, _ := material.NewDiffuse(material.NewSolidColor(core.Splat(0.5)))
	s, err := NewEntityScene([]Entity{{Shape: sphere, Material: white}})
	if err != nil {
		t.Fatalf("Failed to build scene: %v", err)
	}
	if s.Visible(core.NewVec3(-3, 0, 0), core.NewVec3(3, 0, 0)) {
		t.Error("Segment through the sphere should be blocked")
	}
	if !s.Visible(core.NewVec3(-3, 2, 0), core.NewVec3(3, 2, 0)) {
		t.Error("Segment above the sphere should be clear")
	}
	// Ending exactly on the surface counts as visible
	if !s.Visible(core.NewVec3(-3, 0, 0), core.NewVec3(-1, 0, 0)) {
		t.Error("Segment ending on the surface should be clear")
	}
}

func TestScenes_Validation(t *testing.T) {
	sphere, _ := geometry.NewSphere(core.Vec3{}, 1)
	white, _ := material.NewDiffuse(material.NewSolidColor(core.Splat(0.5)))

	_, err := NewEntityScene([]Entity{{Shape: sphere}})
	if !errors.Is(err, ErrInvalidScene) {
		t.Errorf("Missing material: expected ErrInvalidScene, got %v", err)
	}
	_, err = NewEntityScene([]Entity{{Material: white}})
	if !errors.Is(err, ErrInvalidScene) {
		t.Errorf("Missing shape: expected ErrInvalidScene, got %v", err)
	}
	_, err = NewVolumeScene([]Volume{{Shape: sphere}})
	if !errors.Is(err, ErrInvalidScene) {
		t.Errorf("Missing medium: expected ErrInvalidScene, got %v", err)
	}
}

// nestedVolumes builds a long box of medium 0 holding two smaller boxes of
// media 1 and 2
func nestedVolumes(t *testing.T) (*VolumeScene, []*medium.Medium) {
	t.Helper()
	var media []*medium.Medium
	for _, mfp := range []float64{1, 2, 3} {
		m, err := medium.NewIsotropic(core.Splat(0.5), core.Splat(mfp))
		if err != nil {
			t.Fatalf("Failed to create medium: %v", err)
		}
		media = append(media, m)
	}
	outer, _ := geometry.NewBox(core.NewVec3(0, 0, 0), core.NewVec3(10, 1, 1))
	first, _ := geometry.NewBox(core.NewVec3(1, 0.2, 0.2), core.NewVec3(4, 0.8, 0.8))
	second, _ := geometry.NewBox(core.NewVec3(5, 0.2, 0.2), core.NewVec3(9, 0.8, 0.8))

	s, err := NewVolumeScene([]Volume{
		{Shape: outer, Medium: media[0]},
		{Shape: first, Medium: media[1]},
		{Shape: second, Medium: media[2]},
	})
	if err != nil {
		t.Fatalf("Failed to build volume scene: %v", err)
	}
	return s, media
}

func TestVolumeScene_Segments(t *testing.T) {
	type want struct {
		start, length float64
		medium        int
	}
	tests := []struct {
		name     string
		originX  float64
		tMax     float64
		expected []want
	}{
		{
			name:    "starts outside",
			originX: -0.5,
			tMax:    math.Inf(1),
			expected: []want{
				{0.5, 1, 0}, {1.5, 3, 1}, {4.5, 1, 0}, {5.5, 4, 2}, {9.5, 1, 0},
			},
		},
		{
			name:    "starts inside",
			originX: 0.1,
			tMax:    math.Inf(1),
			expected: []want{
				{0, 0.9, 0}, {0.9, 3, 1}, {3.9, 1, 0}, {4.9, 4, 2}, {8.9, 1, 0},
			},
		},
		{
			name:    "starts in nested volume",
			originX: 2,
			tMax:    math.Inf(1),
			expected: []want{
				{0, 2, 1}, {2, 1, 0}, {3, 4, 2}, {7, 1, 0},
			},
		},
		{
			name:    "clipped by surface",
			originX: -0.5,
			tMax:    3,
			expected: []want{
				{0.5, 1, 0}, {1.5, 1.5, 1},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, media := nestedVolumes(t)
			ray := core.NewRay(core.NewVec3(tt.originX, 0.5, 0.5), core.NewVec3(1, 0, 0))
			segments := s.Segments(ray, tt.tMax)
			if len(segments) != len(tt.expected) {
				t.Fatalf("Expected %d segments, got %d: %+v", len(tt.expected), len(segments), segments)
			}
			for i, w := range tt.expected {
				got := segments[i]
				if math.Abs(got.Start-w.start) > 1e-6 || math.Abs(got.Length()-w.length) > 1e-6 {
					t.Errorf("Segment %d: expected [%f, +%f], got [%f, +%f]", i, w.start, w.length, got.Start, got.Length())
				}
				if got.Medium != media[w.medium] {
					t.Errorf("Segment %d: expected medium %d", i, w.medium)
				}
			}
		})
	}
}

func TestVolumeScene_MissAndVacuum(t *testing.T) {
	s, _ := nestedVolumes(t)
	ray := core.NewRay(core.NewVec3(-1, 5, 0.5), core.NewVec3(1, 0, 0))
	if segments := s.Segments(ray, math.Inf(1)); len(segments) != 0 {
		t.Errorf("Ray missing every volume should have no segments, got %+v", segments)
	}

	box, _ := geometry.NewBox(core.NewVec3(0, 0, 0), core.NewVec3(1, 1, 1))
	vacuum, err := NewVolumeScene([]Volume{{Shape: box, Medium: medium.NewVacuum()}})
	if err != nil {
		t.Fatalf("Failed to build volume scene: %v", err)
	}
	through := core.NewRay(core.NewVec3(-1, 0.5, 0.5), core.NewVec3(1, 0, 0))
	if segments := vacuum.Segments(through, math.Inf(1)); len(segments) != 0 {
		t.Errorf("Vacuum should produce no segments, got %+v", segments)
	}

	var empty *VolumeScene
	if segments := empty.Segments(through, math.Inf(1)); segments != nil {
		t.Error("Nil volume scene should produce no segments")
	}
}
