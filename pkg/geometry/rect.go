// Package geometry provides the rectangle and size types shared by the
// scene model, the layout engine and the renderers.
//
// All coordinates are canvas-space pixels with the origin at the top-left
// corner and y growing downwards.
package geometry

import "math"

// Size is a width/height pair.
type Size struct {
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Area returns Width*Height.
func (s Size) Area() float64 { return s.Width * s.Height }

// Aspect returns Width/Height.
func (s Size) Aspect() float64 { return s.Width / s.Height }

// Rect is an axis-aligned rectangle given by its top-left corner and size.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewRect creates a new Rect.
func NewRect(x, y, width, height float64) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// Right returns the x coordinate of the right edge.
func (r Rect) Right() float64 { return r.X + r.Width }

// Bottom returns the y coordinate of the bottom edge.
func (r Rect) Bottom() float64 { return r.Y + r.Height }

// CenterX returns the horizontal center point of the rectangle.
func (r Rect) CenterX() float64 { return r.X + r.Width/2 }

// CenterY returns the vertical center point of the rectangle.
func (r Rect) CenterY() float64 { return r.Y + r.Height/2 }

// Area returns the rectangle's area.
func (r Rect) Area() float64 { return r.Width * r.Height }

// Size returns the rectangle's dimensions.
func (r Rect) Size() Size { return Size{Width: r.Width, Height: r.Height} }

// Inset shrinks the rectangle by p on every side.
func (r Rect) Inset(p float64) Rect {
	return Rect{X: r.X + p, Y: r.Y + p, Width: r.Width - 2*p, Height: r.Height - 2*p}
}

// Translate returns the rectangle moved by (dx, dy).
func (r Rect) Translate(dx, dy float64) Rect {
	r.X += dx
	r.Y += dy
	return r
}

// Intersects reports whether r and o overlap once each is grown by pad.
// Touching edges do not count as an intersection when pad is zero.
func (r Rect) Intersects(o Rect, pad float64) bool {
	return r.X < o.Right()+pad &&
		r.Right()+pad > o.X &&
		r.Y < o.Bottom()+pad &&
		r.Bottom()+pad > o.Y
}

// Overlap returns the width and height of the intersection of r and o.
// Both are zero when the rectangles do not intersect.
func (r Rect) Overlap(o Rect) (dx, dy float64) {
	dx = math.Min(r.Right(), o.Right()) - math.Max(r.X, o.X)
	dy = math.Min(r.Bottom(), o.Bottom()) - math.Max(r.Y, o.Y)
	if dx <= 0 || dy <= 0 {
		return 0, 0
	}
	return dx, dy
}

// Contains reports whether o lies inside r, allowing o to poke out by at
// most tol on any side.
func (r Rect) Contains(o Rect, tol float64) bool {
	return o.X >= r.X-tol &&
		o.Y >= r.Y-tol &&
		o.Right() <= r.Right()+tol &&
		o.Bottom() <= r.Bottom()+tol
}

// Union returns the smallest rectangle containing both r and o.
func (r Rect) Union(o Rect) Rect {
	x0 := math.Min(r.X, o.X)
	y0 := math.Min(r.Y, o.Y)
	x1 := math.Max(r.Right(), o.Right())
	y1 := math.Max(r.Bottom(), o.Bottom())
	return Rect{X: x0, Y: y0, Width: x1 - x0, Height: y1 - y0}
}

// Bounds returns the union of all rects. The zero Rect is returned for an
// empty slice.
func Bounds(rects []Rect) Rect {
	if len(rects) == 0 {
		return Rect{}
	}
	b := rects[0]
	for _, r := range rects[1:] {
		b = b.Union(r)
	}
	return b
}

// Finite reports whether every component of r is a finite number.
func (r Rect) Finite() bool {
	for _, v := range [...]float64{r.X, r.Y, r.Width, r.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
