package geometry

import (
	"math"
	"testing"
)

func TestRectEdges(t *testing.T) {
	r := NewRect(10, 20, 30, 40)

	if got := r.Right(); got != 40 {
		t.Errorf("Right() = %v, want 40", got)
	}
	if got := r.Bottom(); got != 60 {
		t.Errorf("Bottom() = %v, want 60", got)
	}
	if got := r.CenterX(); got != 25 {
		t.Errorf("CenterX() = %v, want 25", got)
	}
	if got := r.CenterY(); got != 40 {
		t.Errorf("CenterY() = %v, want 40", got)
	}
	if got := r.Area(); got != 1200 {
		t.Errorf("Area() = %v, want 1200", got)
	}
}

func TestRectIntersects(t *testing.T) {
	tests := []struct {
		name string
		a, b Rect
		pad  float64
		want bool
	}{
		{
			name: "overlapping",
			a:    NewRect(0, 0, 100, 100),
			b:    NewRect(50, 50, 100, 100),
			want: true,
		},
		{
			name: "touching edges",
			a:    NewRect(0, 0, 100, 100),
			b:    NewRect(100, 0, 100, 100),
			want: false,
		},
		{
			name: "gap closed by padding",
			a:    NewRect(0, 0, 100, 100),
			b:    NewRect(104, 0, 100, 100),
			pad:  5,
			want: true,
		},
		{
			name: "gap wider than padding",
			a:    NewRect(0, 0, 100, 100),
			b:    NewRect(110, 0, 100, 100),
			pad:  5,
			want: false,
		},
		{
			name: "disjoint vertically",
			a:    NewRect(0, 0, 100, 100),
			b:    NewRect(0, 300, 100, 100),
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Intersects(tt.b, tt.pad); got != tt.want {
				t.Errorf("Intersects() = %v, want %v", got, tt.want)
			}
			if got := tt.b.Intersects(tt.a, tt.pad); got != tt.want {
				t.Errorf("Intersects() not symmetric: got %v", got)
			}
		})
	}
}

func TestRectOverlap(t *testing.T) {
	dx, dy := NewRect(0, 0, 100, 100).Overlap(NewRect(60, 80, 100, 100))
	if dx != 40 || dy != 20 {
		t.Errorf("Overlap() = %v, %v, want 40, 20", dx, dy)
	}

	dx, dy = NewRect(0, 0, 10, 10).Overlap(NewRect(20, 20, 10, 10))
	if dx != 0 || dy != 0 {
		t.Errorf("Overlap() of disjoint = %v, %v, want 0, 0", dx, dy)
	}
}

func TestRectContains(t *testing.T) {
	outer := NewRect(0, 0, 100, 100)
	if !outer.Contains(NewRect(10, 10, 50, 50), 0) {
		t.Error("Contains() should accept inner rect")
	}
	if outer.Contains(NewRect(60, 60, 50, 50), 0) {
		t.Error("Contains() should reject overflowing rect")
	}
	if !outer.Contains(NewRect(60, 60, 41, 41), 1) {
		t.Error("Contains() should accept overflow within tolerance")
	}
}

func TestBoundsAndUnion(t *testing.T) {
	b := Bounds([]Rect{NewRect(10, 10, 10, 10), NewRect(50, 0, 10, 100)})
	want := NewRect(10, 0, 50, 100)
	if b != want {
		t.Errorf("Bounds() = %+v, want %+v", b, want)
	}
	if got := Bounds(nil); got != (Rect{}) {
		t.Errorf("Bounds(nil) = %+v, want zero", got)
	}
}

func TestRectInsetTranslate(t *testing.T) {
	r := NewRect(0, 0, 100, 50).Inset(10)
	if r != NewRect(10, 10, 80, 30) {
		t.Errorf("Inset() = %+v", r)
	}
	if got := r.Translate(5, -5); got != NewRect(15, 5, 80, 30) {
		t.Errorf("Translate() = %+v", got)
	}
}

func TestRectFinite(t *testing.T) {
	if !NewRect(1, 2, 3, 4).Finite() {
		t.Error("Finite() = false for finite rect")
	}
	if NewRect(math.NaN(), 0, 1, 1).Finite() {
		t.Error("Finite() = true for NaN")
	}
	if NewRect(0, 0, math.Inf(1), 1).Finite() {
		t.Error("Finite() = true for Inf")
	}
}

func TestSize(t *testing.T) {
	s := Size{Width: 1600, Height: 900}
	if s.Area() != 1440000 {
		t.Errorf("Area() = %v", s.Area())
	}
	if math.Abs(s.Aspect()-16.0/9.0) > 1e-12 {
		t.Errorf("Aspect() = %v", s.Aspect())
	}
}
