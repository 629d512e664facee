package layout

import (
	"math"

	"github.com/matzehuels/memeforge/pkg/geometry"
)

const eps = 1e-9

// settle runs collision resolution, falling back to shrink-and-center
// rounds while overlaps remain. It returns the number of passes and of
// fallback rounds that ran.
func (a *arranger) settle(items []*item) (passes, fallbacks int) {
	n, ok := a.resolve(items)
	passes += n
	for !ok && fallbacks < a.opts.MaxFallbacks {
		for _, it := range items {
			it.scale *= FallbackShrink
		}
		a.center(items)
		fallbacks++

		n, ok = a.resolve(items)
		passes += n
	}
	return passes, fallbacks
}

// resolve pushes overlapping pairs apart for up to MaxPasses passes. It
// reports whether the last pass found no collision.
func (a *arranger) resolve(items []*item) (passes int, ok bool) {
	gap := a.padding / 2
	for passes < a.opts.MaxPasses {
		passes++
		clean := true
		for i := 0; i < len(items); i++ {
			for j := i + 1; j < len(items); j++ {
				if !items[i].rect().Intersects(items[j].rect(), gap) {
					continue
				}
				clean = false
				a.push(items[i], items[j], gap)
			}
		}
		if clean {
			return passes, true
		}
	}
	return passes, false
}

// push moves first away from second along the axis of least overlap. When
// the canvas edge stops first short, second is pushed the opposite way.
func (a *arranger) push(first, second *item, gap float64) {
	r1, r2 := first.rect(), second.rect()

	toRight := r2.Right() + gap - r1.X
	toLeft := r1.Right() + gap - r2.X
	toBottom := r2.Bottom() + gap - r1.Y
	toTop := r1.Bottom() + gap - r2.Y

	switch math.Min(math.Min(toRight, toLeft), math.Min(toBottom, toTop)) {
	case toRight:
		first.x += toRight * PushFactor
		a.clamp(first)
		if a.collide(first, second, gap) {
			second.x -= (second.rect().Right() + gap - first.x) * PushFactor
			a.clamp(second)
		}
	case toLeft:
		first.x -= toLeft * PushFactor
		a.clamp(first)
		if a.collide(first, second, gap) {
			second.x += (first.rect().Right() + gap - second.x) * PushFactor
			a.clamp(second)
		}
	case toBottom:
		first.y += toBottom * PushFactor
		a.clamp(first)
		if a.collide(first, second, gap) {
			second.y -= (second.rect().Bottom() + gap - first.y) * PushFactor
			a.clamp(second)
		}
	default:
		first.y -= toTop * PushFactor
		a.clamp(first)
		if a.collide(first, second, gap) {
			second.y += (first.rect().Bottom() + gap - second.y) * PushFactor
			a.clamp(second)
		}
	}
}

func (a *arranger) collide(first, second *item, gap float64) bool {
	return first.rect().Intersects(second.rect(), gap)
}

// clamp keeps an item's position inside the padded canvas. An item larger
// than the padded canvas is pinned to the top-left margin.
func (a *arranger) clamp(it *item) {
	p := a.padding
	it.x = math.Max(p, math.Min(it.x, a.canvas.Width-it.w*it.scale-p))
	it.y = math.Max(p, math.Min(it.y, a.canvas.Height-it.h*it.scale-p))
}

// center translates the group so its bounding box is centered on the
// canvas.
func (a *arranger) center(items []*item) {
	rects := make([]geometry.Rect, len(items))
	for i, it := range items {
		rects[i] = it.rect()
	}
	b := geometry.Bounds(rects)
	dx := (a.canvas.Width-b.Width)/2 - b.X
	dy := (a.canvas.Height-b.Height)/2 - b.Y
	for _, it := range items {
		it.x += dx
		it.y += dy
	}
}

// contain shrinks items larger than the padded canvas about their center
// and moves every item fully inside it.
func (a *arranger) contain(items []*item) {
	avail := geometry.NewRect(0, 0, a.canvas.Width, a.canvas.Height).Inset(a.padding)
	if avail.Width <= 0 || avail.Height <= 0 {
		return
	}
	for _, it := range items {
		if r := it.rect(); r.Width > avail.Width+eps || r.Height > avail.Height+eps {
			it.scale *= math.Min(avail.Width/r.Width, avail.Height/r.Height)
			it.x = r.CenterX() - it.w*it.scale/2
			it.y = r.CenterY() - it.h*it.scale/2
		}
		if !avail.Contains(it.rect(), eps) {
			a.clamp(it)
		}
	}
}
