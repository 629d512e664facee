package scene

import (
	"math"
	"slices"

	"github.com/matzehuels/memeforge/pkg/errors"
)

// Scene is the full set of elements at a point in time. Paint order is
// slice order: later images are drawn on top of earlier ones, and texts
// are drawn above all images.
type Scene struct {
	Images []ImageElement `json:"images"`
	Texts  []TextElement  `json:"texts"`
}

// Clone returns a structural deep copy of s. The copy shares no memory
// with s, so mutating one never affects the other.
func (s Scene) Clone() Scene {
	out := Scene{
		Images: make([]ImageElement, len(s.Images)),
		Texts:  slices.Clone(s.Texts),
	}
	for i, img := range s.Images {
		out.Images[i] = img.Clone()
	}
	if out.Texts == nil {
		out.Texts = []TextElement{}
	}
	return out
}

// IsEmpty reports whether the scene holds no elements.
func (s Scene) IsEmpty() bool {
	return len(s.Images) == 0 && len(s.Texts) == 0
}

// ImageIndex returns the position of the image with the given id, or -1.
func (s Scene) ImageIndex(id string) int {
	return slices.IndexFunc(s.Images, func(e ImageElement) bool { return e.ID == id })
}

// TextIndex returns the position of the text with the given id, or -1.
func (s Scene) TextIndex(id string) int {
	return slices.IndexFunc(s.Texts, func(e TextElement) bool { return e.ID == id })
}

// Validate checks the scene invariants: ids are non-empty and unique per
// element type, geometry is finite, sizes are positive and every scale
// factor is strictly positive.
func (s Scene) Validate() error {
	seen := make(map[string]bool, len(s.Images))
	for _, img := range s.Images {
		if img.ID == "" {
			return errors.New(errors.ErrCodeInvalidInput, "image without id")
		}
		if seen[img.ID] {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate image id %q", img.ID)
		}
		seen[img.ID] = true

		if err := errors.ValidateDimensions("image "+img.ID, img.Width, img.Height); err != nil {
			return err
		}
		if !(img.ScaleFactor > 0) || math.IsInf(img.ScaleFactor, 0) {
			return errors.New(errors.ErrCodeInvalidImage, "image %s has non-positive scale factor %v", img.ID, img.ScaleFactor)
		}
		if !finite(img.X, img.Y, img.Rotation) {
			return errors.New(errors.ErrCodeInvalidImage, "image %s has non-finite position", img.ID)
		}
		if img.Crop != nil && (!img.Crop.Finite() || img.Crop.Width <= 0 || img.Crop.Height <= 0 || img.Crop.X < 0 || img.Crop.Y < 0) {
			return errors.New(errors.ErrCodeInvalidImage, "image %s has an invalid crop %+v", img.ID, *img.Crop)
		}
	}

	clear(seen)
	for _, txt := range s.Texts {
		if txt.ID == "" {
			return errors.New(errors.ErrCodeInvalidInput, "text without id")
		}
		if seen[txt.ID] {
			return errors.New(errors.ErrCodeInvalidInput, "duplicate text id %q", txt.ID)
		}
		seen[txt.ID] = true

		if !finite(txt.X, txt.Y, txt.FontSize, txt.Width, txt.Height) {
			return errors.New(errors.ErrCodeInvalidInput, "text %s has non-finite geometry", txt.ID)
		}
		if txt.FontSize <= 0 || txt.Width < 0 || txt.Height < 0 {
			return errors.New(errors.ErrCodeInvalidInput, "text %s has a negative size", txt.ID)
		}
	}
	return nil
}

func finite(vs ...float64) bool {
	for _, v := range vs {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
