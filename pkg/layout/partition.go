package layout

import (
	"math"

	"github.com/matzehuels/memeforge/pkg/geometry"
)

// Split scoring weights. Keeping the item counts balanced matters most;
// area and aspect only break near-ties.
const (
	splitAreaWeight   = 0.15
	splitAspectWeight = 0.15
	splitCountWeight  = 0.7

	// ratioCountWeight and ratioAreaWeight blend the share of space given
	// to the first group.
	ratioCountWeight = 0.8
	ratioAreaWeight  = 0.2

	// thinSliceBias penalizes cuts that would make thin slices of an
	// already elongated container, and rewards the other orientation.
	thinSliceBias  = 1.1
	thickSliceBias = 0.9

	// maxGapRatio caps the gap between two groups relative to the smaller
	// side of the container.
	maxGapRatio = 0.05
)

// place recursively partitions r among items. Items are expected in
// descending area order.
func (a *arranger) place(items []*item, r geometry.Rect) {
	switch len(items) {
	case 0:
		return
	case 1:
		a.placeOne(items[0], r)
		return
	}

	mid := findBalancedSplit(items)
	g1, g2 := items[:mid], items[mid:]

	area1, area2 := totalArea(g1), totalArea(g2)
	countRatio := float64(len(g1)) / float64(len(items))
	areaRatio := area1 / (area1 + area2)
	ratio := ratioCountWeight*countRatio + ratioAreaWeight*areaRatio

	r1, r2 := a.split(r, ratio, groupAspect(g1), groupAspect(g2))
	a.place(g1, r1)
	a.place(g2, r2)
}

// placeOne scales an item toward its ideal size, bounded by how well it
// fits r, and centers it in r. The result may overflow r slightly; the
// collision pass cleans that up.
func (a *arranger) placeOne(it *item, r geometry.Rect) {
	var fit float64
	if r.Width > 0 && r.Height > 0 {
		if it.aspect > r.Width/r.Height {
			fit = (r.Width - 2*a.padding) / it.w
		} else {
			fit = (r.Height - 2*a.padding) / it.h
		}
	}

	scale := FitWeight*fit + IdealWeight*it.ideal
	scale = math.Max(scale, MinScaleRatio*a.baseScale)
	if a.opts.MaxUpscale > 0 {
		scale = math.Min(scale, a.opts.MaxUpscale)
	}

	it.scale = scale
	it.x = r.X + (r.Width-it.w*scale)/2
	it.y = r.Y + (r.Height-it.h*scale)/2
}

// split cuts r into two rectangles for groups with the given aspect
// ratios, the first receiving ratio of the space. It picks the
// orientation whose slices best match the group aspects.
func (a *arranger) split(r geometry.Rect, ratio, aspect1, aspect2 float64) (geometry.Rect, geometry.Rect) {
	w, h := r.Width, math.Max(r.Height, 1)
	containerAspect := w / h

	horizontalFit := math.Abs(aspect1-w*ratio/h) + math.Abs(aspect2-w*(1-ratio)/h)
	verticalFit := math.Abs(aspect1-w/(h*ratio)) + math.Abs(aspect2-w/(h*(1-ratio)))

	hScore := horizontalFit * bias(containerAspect < 1)
	vScore := verticalFit * bias(containerAspect > 1)

	gap := math.Min(a.padding, math.Min(r.Width, r.Height)*maxGapRatio)
	p2 := 2 * a.padding

	if hScore <= vScore {
		splitX := r.X + math.Floor((r.Width-gap)*ratio)
		splitX = math.Min(math.Max(splitX, r.X+p2), r.Right()-p2)
		return geometry.NewRect(r.X, r.Y, splitX-r.X-gap/2, r.Height),
			geometry.NewRect(splitX+gap/2, r.Y, r.Right()-splitX-gap/2, r.Height)
	}

	splitY := r.Y + math.Floor((r.Height-gap)*ratio)
	splitY = math.Min(math.Max(splitY, r.Y+p2), r.Bottom()-p2)
	return geometry.NewRect(r.X, r.Y, r.Width, splitY-r.Y-gap/2),
		geometry.NewRect(r.X, splitY+gap/2, r.Width, r.Bottom()-splitY-gap/2)
}

func bias(thin bool) float64 {
	if thin {
		return thinSliceBias
	}
	return thickSliceBias
}

// findBalancedSplit returns the index that divides items into two
// non-empty groups. Up to three items are split at the middle; larger
// sets are scored on area balance, aspect match and count balance.
func findBalancedSplit(items []*item) int {
	n := len(items)
	if n <= 1 {
		return 1
	}
	if n <= 3 {
		return (n + 1) / 2
	}

	total := totalArea(items)
	half := total / 2
	target := groupAspect(items)

	best, bestScore := 1, math.Inf(1)
	var cur float64
	for i := 0; i < n-1; i++ {
		cur += items[i].area

		g1, g2 := items[:i+1], items[i+1:]
		areaScore := math.Abs(cur-half) / total
		aspectScore := math.Abs(groupAspect(g1)-target) + math.Abs(groupAspect(g2)-target)
		countScore := math.Abs(float64(i+1)-float64(n)/2) / float64(n)

		score := splitAreaWeight*areaScore + splitAspectWeight*aspectScore + splitCountWeight*countScore
		if score < bestScore {
			best, bestScore = i+1, score
		}
	}
	return best
}

func totalArea(items []*item) float64 {
	var sum float64
	for _, it := range items {
		sum += it.area
	}
	return sum
}

// groupAspect is the area-weighted mean aspect ratio of items.
func groupAspect(items []*item) float64 {
	var sum, weighted float64
	for _, it := range items {
		sum += it.area
		weighted += it.aspect * it.area
	}
	if sum == 0 {
		return 1
	}
	return weighted / sum
}
