package render

import (
	"image/color"
	"math"
	"strconv"
	"strings"

	"golang.org/x/image/font"

	"github.com/matzehuels/memeforge/pkg/errors"
	"github.com/matzehuels/memeforge/pkg/fonts"
	"github.com/matzehuels/memeforge/pkg/scene"
)

// OutlineColor is the stroke drawn around captions.
var OutlineColor = color.RGBA{A: 255}

// caption is a text element broken into lines that fit its box.
type caption struct {
	lines      []string
	size       float64
	lineHeight float64
	// baseline is the offset from the top of a line to its baseline.
	baseline float64
	stroke   float64
}

// layoutCaption wraps t's content to its width using face, which must be
// the caption font at t.FontSize.
func layoutCaption(face font.Face, t scene.TextElement) caption {
	m := face.Metrics()
	ascent, descent := float64(m.Ascent)/64, float64(m.Descent)/64
	lh := t.FontSize * scene.LineHeight
	return caption{
		lines:      wrapLines(face, t.Content, t.Width),
		size:       t.FontSize,
		lineHeight: lh,
		baseline:   (lh + ascent - descent) / 2,
		stroke:     strokeWidth(t.FontSize),
	}
}

// wrapLines breaks s into lines no wider than width, splitting at spaces.
// Explicit newlines are kept. A word wider than width gets a line of its
// own.
func wrapLines(face font.Face, s string, width float64) []string {
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := words[0]
		for _, w := range words[1:] {
			if next := line + " " + w; width <= 0 || fonts.Measure(face, next) <= width {
				line = next
				continue
			}
			lines = append(lines, line)
			line = w
		}
		lines = append(lines, line)
	}
	return lines
}

// strokeWidth is the outline width for a caption of the given size.
func strokeWidth(size float64) float64 {
	return math.Max(1, size/18)
}

// ParseColor parses a #rgb or #rrggbb color.
func ParseColor(s string) (color.RGBA, error) {
	if err := errors.ValidateColor(s); err != nil {
		return color.RGBA{}, err
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	v, _ := strconv.ParseUint(hex, 16, 32)
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 255}, nil
}
