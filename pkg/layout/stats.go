package layout

import (
	"math"

	"gonum.org/v1/gonum/stat"

	"github.com/matzehuels/memeforge/pkg/geometry"
	"github.com/matzehuels/memeforge/pkg/scene"
)

// Stats summarizes the quality of an arrangement.
type Stats struct {
	Images int `json:"images"`

	// AreaMean and AreaCV are the mean and coefficient of variation of
	// the displayed areas. A CV near zero means near-equal visual weight.
	AreaMean float64 `json:"area_mean"`
	AreaCV   float64 `json:"area_cv"`

	// IntrinsicCV is the coefficient of variation of the source areas,
	// for comparison with AreaCV.
	IntrinsicCV float64 `json:"intrinsic_cv"`

	// Coverage is the share of the canvas covered by images, counting
	// overlapping regions once per image.
	Coverage float64 `json:"coverage"`

	// Overlaps counts intersecting pairs; MaxOverlap is the largest
	// intersection area among them.
	Overlaps   int     `json:"overlaps"`
	MaxOverlap float64 `json:"max_overlap"`

	// Outside counts images not fully inside the padded canvas.
	Outside int `json:"outside"`
}

// Measure computes [Stats] for images on a canvas with the given padding.
func Measure(images []scene.ImageElement, canvas geometry.Size, padding float64) Stats {
	s := Stats{Images: len(images)}
	if len(images) == 0 {
		return s
	}

	displayed := make([]float64, len(images))
	intrinsic := make([]float64, len(images))
	rects := make([]geometry.Rect, len(images))
	var covered float64
	for i, img := range images {
		displayed[i] = img.DisplayedArea()
		intrinsic[i] = img.IntrinsicArea()
		rects[i] = img.Bounds()
		covered += displayed[i]
	}

	s.AreaMean = stat.Mean(displayed, nil)
	s.AreaCV = cv(displayed)
	s.IntrinsicCV = cv(intrinsic)
	s.Coverage = covered / canvas.Area()

	inner := geometry.NewRect(0, 0, canvas.Width, canvas.Height).Inset(padding)
	for i, r := range rects {
		if !inner.Contains(r, 1e-6) {
			s.Outside++
		}
		for _, o := range rects[i+1:] {
			if dx, dy := r.Overlap(o); dx > 0 {
				s.Overlaps++
				s.MaxOverlap = math.Max(s.MaxOverlap, dx*dy)
			}
		}
	}
	return s
}

// cv is the population coefficient of variation of xs.
func cv(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	mean := stat.Mean(xs, nil)
	if mean == 0 {
		return 0
	}
	return math.Sqrt(stat.PopVariance(xs, nil)) / mean
}
