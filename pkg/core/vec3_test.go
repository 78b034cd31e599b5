package core

import (
	"math"
	"testing"
)

func TestVec3_Arithmetic(t *testing.T) {
	a := NewVec3(1, 2, 3)
	b := NewVec3(4, -5, 6)

	tests := []struct {
		name     string
		result   Vec3
		expected Vec3
	}{
		{"Add", a.Add(b), NewVec3(5, -3, 9)},
		{"Subtract", a.Subtract(b), NewVec3(-3, 7, -3)},
		{"Multiply", a.Multiply(2), NewVec3(2, 4, 6)},
		{"MultiplyVec", a.MultiplyVec(b), NewVec3(4, -10, 18)},
		{"Cross", NewVec3(1, 0, 0).Cross(NewVec3(0, 1, 0)), NewVec3(0, 0, 1)},
		{"Negate", a.Negate(), NewVec3(-1, -2, -3)},
		{"DivideVec by zero", a.DivideVec(NewVec3(2, 0, 3)), NewVec3(0.5, 0, 1)},
		{"Clamp", NewVec3(-1, 0.5, 2).Clamp(0, 1), NewVec3(0, 0.5, 1)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !tt.result.Equals(tt.expected, 1e-12) {
				t.Errorf("Expected %v, got %v", tt.expected, tt.result)
			}
		})
	}
}

func TestVec3_Normalize(t *testing.T) {
	v := NewVec3(3, 4, 0).Normalize()
	if math.Abs(v.Length()-1.0) > 1e-12 {
		t.Errorf("Expected unit length, got %f", v.Length())
	}

	zero := Vec3{}.Normalize()
	if !zero.IsZero() {
		t.Errorf("Normalizing zero vector should stay zero, got %v", zero)
	}
}

func TestVec3_IsFinite(t *testing.T) {
	tests := []struct {
		name     string
		v        Vec3
		expected bool
	}{
		{"finite", NewVec3(1, 2, 3), true},
		{"NaN", NewVec3(math.NaN(), 0, 0), false},
		{"positive infinity", NewVec3(0, math.Inf(1), 0), false},
		{"negative infinity", NewVec3(0, 0, math.Inf(-1)), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.v.IsFinite() != tt.expected {
				t.Errorf("IsFinite(%v): got %v, expected %v", tt.v, tt.v.IsFinite(), tt.expected)
			}
		})
	}
}

func TestReflect(t *testing.T) {
	incoming := NewVec3(1, -1, 0).Normalize()
	reflected := Reflect(incoming, NewVec3(0, 1, 0))
	expected := NewVec3(1, 1, 0).Normalize()
	if !reflected.Equals(expected, 1e-12) {
		t.Errorf("Expected %v, got %v", expected, reflected)
	}
}

func TestAABB_Entry(t *testing.T) {
	box := NewAABB(NewVec3(-1, -1, -1), NewVec3(1, 1, 1))

	tests := []struct {
		name     string
		ray      Ray
		hit      bool
		expected float64
	}{
		{"hit from outside", NewRay(NewVec3(0, 0, -5), NewVec3(0, 0, 1)), true, 4},
		{"origin inside", NewRay(NewVec3(0, 0, 0), NewVec3(0, 0, 1)), true, 0},
		{"miss", NewRay(NewVec3(3, 0, -5), NewVec3(0, 0, 1)), false, 0},
		{"pointing away", NewRay(NewVec3(0, 0, -5), NewVec3(0, 0, -1)), false, 0},
		{"parallel outside slab", NewRay(NewVec3(0, 2, -5), NewVec3(0, 0, 1)), false, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tEntry, hit := box.Entry(tt.ray, 0, math.Inf(1))
			if hit != tt.hit {
				t.Fatalf("Expected hit=%v, got %v", tt.hit, hit)
			}
			if hit && math.Abs(tEntry-tt.expected) > 1e-9 {
				t.Errorf("Entry: got %f, expected %f", tEntry, tt.expected)
			}
		})
	}
}

func TestAABB_PadAndContains(t *testing.T) {
	flat := NewAABB(NewVec3(0, 0, 0), NewVec3(1, 0, 1)).Pad()
	if flat.Size().Y <= 0 {
		t.Errorf("Expected padded Y extent, got %f", flat.Size().Y)
	}
	if !flat.Contains(NewVec3(0.5, 0, 0.5), 0) {
		t.Error("Padded box should contain a point on the original plane")
	}

	outer := NewAABB(NewVec3(-2, -2, -2), NewVec3(2, 2, 2))
	inner := NewAABB(NewVec3(-1, -1, -1), NewVec3(1, 1, 1))
	if !outer.ContainsBox(inner, 0) {
		t.Error("Outer box should contain inner box")
	}
	if inner.ContainsBox(outer, 0) {
		t.Error("Inner box should not contain outer box")
	}

	union := EmptyAABB().Union(inner)
	if !union.Min.Equals(inner.Min, 0) || !union.Max.Equals(inner.Max, 0) {
		t.Errorf("Union with empty box should be identity, got %v-%v", union.Min, union.Max)
	}
}
