package layout

import (
	"math"
	"math/rand/v2"
	"slices"

	"github.com/matzehuels/memeforge/pkg/errors"
	"github.com/matzehuels/memeforge/pkg/geometry"
	"github.com/matzehuels/memeforge/pkg/scene"
)

// Placement is the computed position and scale of one image.
type Placement struct {
	ID          string  `json:"id"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	ScaleFactor float64 `json:"scale_factor"`
}

// TextPlacement is the computed position of one text element.
type TextPlacement struct {
	ID string  `json:"id"`
	X  float64 `json:"x"`
	Y  float64 `json:"y"`
}

// Result is the outcome of [Arrange]. Placements follow the order of the
// input images, which is also their paint order.
type Result struct {
	Canvas     geometry.Size   `json:"canvas"`
	Padding    float64         `json:"padding"`
	Seed       uint64          `json:"seed"`
	Placements []Placement     `json:"placements"`
	Texts      []TextPlacement `json:"texts,omitempty"`

	// Passes counts collision resolution passes over all rounds.
	Passes int `json:"passes"`
	// Fallbacks counts shrink-and-center rounds. FallbackUsed is set when
	// at least one ran.
	Fallbacks    int  `json:"fallbacks"`
	FallbackUsed bool `json:"fallback_used"`
}

// Rects returns the displayed rectangle of every placement, given the
// images the result was computed for. Images are matched by id.
func (r Result) Rects(images []scene.ImageElement) []geometry.Rect {
	return rectsOf(r.Apply(images))
}

// Apply writes the placements into a copy of images, matching by id.
// Images without a placement are returned unchanged.
func (r Result) Apply(images []scene.ImageElement) []scene.ImageElement {
	byID := make(map[string]Placement, len(r.Placements))
	for _, p := range r.Placements {
		byID[p.ID] = p
	}
	out := make([]scene.ImageElement, len(images))
	for i, img := range images {
		out[i] = img.Clone()
		if p, ok := byID[img.ID]; ok {
			out[i].X, out[i].Y, out[i].ScaleFactor = p.X, p.Y, p.ScaleFactor
		}
	}
	return out
}

// ApplyTexts writes the text placements into a copy of texts, matching by
// id.
func (r Result) ApplyTexts(texts []scene.TextElement) []scene.TextElement {
	byID := make(map[string]TextPlacement, len(r.Texts))
	for _, p := range r.Texts {
		byID[p.ID] = p
	}
	out := slices.Clone(texts)
	for i := range out {
		if p, ok := byID[out[i].ID]; ok {
			out[i].X, out[i].Y = p.X, p.Y
		}
	}
	return out
}

// item is the working state of one image during an arrangement.
type item struct {
	idx    int
	w, h   float64
	area   float64
	aspect float64
	ideal  float64

	x, y, scale float64
}

func (it *item) rect() geometry.Rect {
	return geometry.NewRect(it.x, it.y, it.w*it.scale, it.h*it.scale)
}

type arranger struct {
	canvas    geometry.Size
	padding   float64
	baseScale float64
	opts      Options
}

// Arrange places images on a canvas of the given size so that every image
// is visible, images do not overlap and they trend toward equal displayed
// area. Texts are re-homed to the top, middle or bottom of the canvas.
//
// The inputs are not modified; use [Result.Apply] and [Result.ApplyTexts]
// to commit the placements. An empty image list yields an empty result.
func Arrange(images []scene.ImageElement, texts []scene.TextElement, canvas geometry.Size, opts Options) (Result, error) {
	if err := errors.ValidateCanvas(canvas.Width, canvas.Height); err != nil {
		return Result{}, err
	}
	for _, img := range images {
		if err := errors.ValidateDimensions("image "+img.ID, img.Width, img.Height); err != nil {
			return Result{}, err
		}
	}

	opts = opts.withDefaults(len(images))
	if opts.Seed == 0 {
		opts.Seed = rand.Uint64()
	}
	res := Result{Canvas: canvas, Padding: opts.Padding, Seed: opts.Seed}
	if !opts.SkipTexts {
		res.Texts = rehomeTexts(texts, canvas)
	}
	if len(images) == 0 {
		return res, nil
	}

	items := prepare(images, canvas, opts.Seed)
	a := &arranger{
		canvas:    canvas,
		padding:   opts.Padding,
		baseScale: baseScale(items, canvas),
		opts:      opts,
	}

	a.place(items, geometry.NewRect(0, 0, canvas.Width, canvas.Height).Inset(opts.Padding))
	a.contain(items)
	res.Passes, res.Fallbacks = a.settle(items)
	res.FallbackUsed = res.Fallbacks > 0
	a.contain(items)

	res.Placements = make([]Placement, len(images))
	for _, it := range items {
		res.Placements[it.idx] = Placement{
			ID:          images[it.idx].ID,
			X:           it.x,
			Y:           it.y,
			ScaleFactor: it.scale,
		}
	}
	return res, nil
}

// prepare builds the working items in placement order: shuffled with the
// seeded source, then stably sorted by descending intrinsic area so images
// of equal area land in a different order on every seed.
func prepare(images []scene.ImageElement, canvas geometry.Size, seed uint64) []*item {
	idealArea := canvas.Area() * FillRatio / float64(len(images))

	items := make([]*item, len(images))
	for i, img := range images {
		area := img.Width * img.Height
		items[i] = &item{
			idx:    i,
			w:      img.Width,
			h:      img.Height,
			area:   area,
			aspect: img.Width / img.Height,
			ideal:  math.Sqrt(idealArea / area),
		}
	}

	rng := rand.New(rand.NewPCG(seed, seed^0xdeadbeef))
	rng.Shuffle(len(items), func(i, j int) { items[i], items[j] = items[j], items[i] })
	slices.SortStableFunc(items, func(a, b *item) int {
		switch {
		case a.area > b.area:
			return -1
		case a.area < b.area:
			return 1
		}
		return 0
	})
	return items
}

// baseScale is the uniform scale that would make the images cover the
// fill ratio of the canvas.
func baseScale(items []*item, canvas geometry.Size) float64 {
	var total float64
	for _, it := range items {
		total += it.area
	}
	return math.Sqrt(canvas.Area() * FillRatio / total)
}

func rectsOf(images []scene.ImageElement) []geometry.Rect {
	rects := make([]geometry.Rect, len(images))
	for i, img := range images {
		rects[i] = img.Bounds()
	}
	return rects
}
