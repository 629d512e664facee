package scene

import (
	"math"

	"github.com/matzehuels/memeforge/pkg/geometry"
)

// ImageElement is a bitmap placed on the canvas.
//
// Width and Height are the intrinsic pixel dimensions of the (cropped)
// source and never change except through a crop. X and Y locate the
// top-left corner of the displayed rectangle.
type ImageElement struct {
	ID          string  `json:"id"`
	Source      string  `json:"src"`
	Width       float64 `json:"width"`
	Height      float64 `json:"height"`
	X           float64 `json:"x"`
	Y           float64 `json:"y"`
	ScaleFactor float64 `json:"scale_factor"`
	Rotation    float64 `json:"rotation,omitempty"`

	// Crop selects a sub-rectangle of the decoded source, in source
	// pixels. Nil means the whole source.
	Crop *geometry.Rect `json:"crop,omitempty"`
}

// DisplayedWidth returns Width*ScaleFactor.
func (e ImageElement) DisplayedWidth() float64 { return e.Width * e.ScaleFactor }

// DisplayedHeight returns Height*ScaleFactor.
func (e ImageElement) DisplayedHeight() float64 { return e.Height * e.ScaleFactor }

// DisplayedArea returns the on-canvas area of the image.
func (e ImageElement) DisplayedArea() float64 { return e.DisplayedWidth() * e.DisplayedHeight() }

// IntrinsicArea returns Width*Height.
func (e ImageElement) IntrinsicArea() float64 { return e.Width * e.Height }

// Aspect returns the intrinsic aspect ratio Width/Height.
func (e ImageElement) Aspect() float64 { return e.Width / e.Height }

// Bounds returns the unrotated displayed rectangle.
func (e ImageElement) Bounds() geometry.Rect {
	return geometry.NewRect(e.X, e.Y, e.DisplayedWidth(), e.DisplayedHeight())
}

// RotatedBounds returns the axis-aligned bounding box of the displayed
// rectangle after rotation about its center.
func (e ImageElement) RotatedBounds() geometry.Rect {
	b := e.Bounds()
	if e.Rotation == 0 {
		return b
	}
	rad := e.Rotation * math.Pi / 180
	sin, cos := math.Abs(math.Sin(rad)), math.Abs(math.Cos(rad))
	w := b.Width*cos + b.Height*sin
	h := b.Width*sin + b.Height*cos
	return geometry.NewRect(b.CenterX()-w/2, b.CenterY()-h/2, w, h)
}

// Clone returns a deep copy of the element.
func (e ImageElement) Clone() ImageElement {
	if e.Crop != nil {
		c := *e.Crop
		e.Crop = &c
	}
	return e
}

// TextElement is a caption placed on the canvas.
type TextElement struct {
	ID       string  `json:"id"`
	Content  string  `json:"content"`
	X        float64 `json:"x"`
	Y        float64 `json:"y"`
	FontSize float64 `json:"font_size"`
	Color    string  `json:"color"`
	Width    float64 `json:"width"`
	Height   float64 `json:"height,omitempty"`
}

// Bounds returns the displayed rectangle of the text box.
func (t TextElement) Bounds() geometry.Rect {
	h := t.Height
	if h == 0 {
		h = t.FontSize * LineHeight
	}
	return geometry.NewRect(t.X, t.Y, t.Width, h)
}

// LineHeight is the ratio of line height to font size used when a text's
// rendered height is unknown.
const LineHeight = 1.2

// Text defaults, matching the editor's "add text" control.
const (
	DefaultFontSize  = 36.0
	DefaultTextColor = "#ffffff"
	DefaultTextWidth = 300.0
)

// NormalizeRotation maps deg into [0, 360).
func NormalizeRotation(deg float64) float64 {
	deg = math.Mod(deg, 360)
	if deg < 0 {
		deg += 360
	}
	return deg
}
