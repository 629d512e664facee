package layout

import (
	"fmt"
	"strings"

	"github.com/matzehuels/memeforge/pkg/errors"
	"github.com/matzehuels/memeforge/pkg/geometry"
	"github.com/matzehuels/memeforge/pkg/scene"
)

// Anchor is a vertical band a caption is pinned to.
type Anchor int

const (
	AnchorTop Anchor = iota
	AnchorMiddle
	AnchorBottom
)

// Caption placement constants, in pixels.
const (
	// TextMargin is the distance kept from the top or bottom edge.
	TextMargin = 20.0
	// TextBottomOffset places re-homed bottom captions this far above the
	// bottom edge. It allows for a single line at the default font size.
	TextBottomOffset = 70.0
)

var anchorNames = map[Anchor]string{
	AnchorTop:    "top",
	AnchorMiddle: "middle",
	AnchorBottom: "bottom",
}

func (a Anchor) String() string {
	if s, ok := anchorNames[a]; ok {
		return s
	}
	return fmt.Sprintf("anchor(%d)", int(a))
}

// ParseAnchor parses "top", "middle" or "bottom" (case-insensitive).
func ParseAnchor(s string) (Anchor, error) {
	for a, name := range anchorNames {
		if strings.EqualFold(s, name) {
			return a, nil
		}
	}
	return 0, errors.New(errors.ErrCodeInvalidInput, "unknown text position %q (want top, middle or bottom)", s)
}

// AnchorOf classifies a vertical position into the top quarter, bottom
// quarter or the band between them.
func AnchorOf(y, canvasHeight float64) Anchor {
	switch {
	case y < canvasHeight*0.25:
		return AnchorTop
	case y > canvasHeight*0.75:
		return AnchorBottom
	default:
		return AnchorMiddle
	}
}

// rehomeTexts moves every text to its band, horizontally centered with
// the default text width since rendered widths are not known here.
func rehomeTexts(texts []scene.TextElement, canvas geometry.Size) []TextPlacement {
	if len(texts) == 0 {
		return nil
	}
	out := make([]TextPlacement, len(texts))
	for i, t := range texts {
		p := TextPlacement{ID: t.ID, X: (canvas.Width - scene.DefaultTextWidth) / 2}
		switch AnchorOf(t.Y, canvas.Height) {
		case AnchorTop:
			p.Y = TextMargin
		case AnchorBottom:
			p.Y = canvas.Height - TextBottomOffset
		default:
			p.Y = (canvas.Height - scene.DefaultFontSize) / 2
		}
		out[i] = p
	}
	return out
}

// PositionText returns the position of a text box of the given size
// pinned to anchor: horizontally centered, TextMargin from the top or
// bottom edge, or vertically centered.
func PositionText(anchor Anchor, canvas geometry.Size, box geometry.Size) (x, y float64) {
	x = (canvas.Width - box.Width) / 2
	switch anchor {
	case AnchorTop:
		y = TextMargin
	case AnchorBottom:
		y = canvas.Height - box.Height - TextMargin
	default:
		y = (canvas.Height - box.Height) / 2
	}
	return x, y
}
