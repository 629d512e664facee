package render

import (
	"encoding/json"

	"github.com/matzehuels/memeforge/pkg/errors"
	"github.com/matzehuels/memeforge/pkg/fonts"
	"github.com/matzehuels/memeforge/pkg/geometry"
	"github.com/matzehuels/memeforge/pkg/layout"
	"github.com/matzehuels/memeforge/pkg/scene"
)

// JSONOption configures [RenderJSON].
type JSONOption func(*jsonRenderer)

type jsonRenderer struct {
	seed    uint64
	stats   bool
	padding float64
}

// WithJSONSeed records the layout seed, so the arrangement can be
// reproduced with the same shuffle.
func WithJSONSeed(seed uint64) JSONOption { return func(r *jsonRenderer) { r.seed = seed } }

// WithJSONStats includes layout quality statistics measured against the
// canvas inset by padding. A negative padding uses the layout default for
// the number of images.
func WithJSONStats(padding float64) JSONOption {
	return func(r *jsonRenderer) { r.stats = true; r.padding = padding }
}

type jsonOutput struct {
	Width  float64     `json:"width"`
	Height float64     `json:"height"`
	Seed   uint64      `json:"seed,omitempty"`
	Images []jsonImage `json:"images"`
	Texts  []jsonText  `json:"texts"`
	Stats  *jsonStats  `json:"stats,omitempty"`
}

type jsonImage struct {
	ID       string         `json:"id"`
	Source   string         `json:"src"`
	Z        int            `json:"z"`
	X        float64        `json:"x"`
	Y        float64        `json:"y"`
	Width    float64        `json:"width"`
	Height   float64        `json:"height"`
	Scale    float64        `json:"scale"`
	Rotation float64        `json:"rotation,omitempty"`
	Crop     *geometry.Rect `json:"crop,omitempty"`
	// Bounds is the axis-aligned box after rotation.
	Bounds geometry.Rect `json:"bounds"`
}

type jsonText struct {
	ID       string   `json:"id"`
	Content  string   `json:"content"`
	Lines    []string `json:"lines"`
	X        float64  `json:"x"`
	Y        float64  `json:"y"`
	Width    float64  `json:"width"`
	Height   float64  `json:"height"`
	FontSize float64  `json:"font_size"`
	Color    string   `json:"color"`
	Anchor   string   `json:"anchor"`
}

type jsonStats struct {
	Padding float64 `json:"padding"`
	layout.Stats
}

// RenderJSON exports the computed geometry of the scene as a pretty-printed
// JSON document: displayed image rectangles in paint order, wrapped caption
// lines and, optionally, layout statistics. It is meant for external
// tools; use pkg/io for documents that are read back.
func RenderJSON(s scene.Scene, canvas geometry.Size, opts ...JSONOption) ([]byte, error) {
	r := jsonRenderer{}
	for _, opt := range opts {
		opt(&r)
	}
	if err := errors.ValidateCanvas(canvas.Width, canvas.Height); err != nil {
		return nil, err
	}

	out := jsonOutput{
		Width:  canvas.Width,
		Height: canvas.Height,
		Seed:   r.seed,
		Images: make([]jsonImage, len(s.Images)),
		Texts:  make([]jsonText, len(s.Texts)),
	}
	for i, img := range s.Images {
		b := img.Bounds()
		out.Images[i] = jsonImage{
			ID: img.ID, Source: img.Source, Z: i,
			X: b.X, Y: b.Y, Width: b.Width, Height: b.Height,
			Scale:    img.ScaleFactor,
			Rotation: img.Rotation,
			Crop:     img.Clone().Crop,
			Bounds:   img.RotatedBounds(),
		}
	}
	for i, t := range s.Texts {
		face, err := fonts.NewFace(t.FontSize)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInternal, err, "load caption font")
		}
		c := layoutCaption(face, t)
		face.Close()

		out.Texts[i] = jsonText{
			ID: t.ID, Content: t.Content, Lines: c.lines,
			X: t.X, Y: t.Y, Width: t.Width,
			Height:   max(t.Bounds().Height, float64(len(c.lines))*c.lineHeight),
			FontSize: t.FontSize,
			Color:    t.Color,
			Anchor:   layout.AnchorOf(t.Y, canvas.Height).String(),
		}
	}

	if r.stats {
		padding := r.padding
		if padding < 0 {
			padding = layout.PaddingFor(len(s.Images))
		}
		out.Stats = &jsonStats{Padding: padding, Stats: layout.Measure(s.Images, canvas, padding)}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode json")
	}
	return data, nil
}
