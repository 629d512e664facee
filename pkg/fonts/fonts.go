// Package fonts provides the caption font for SVG and PNG rendering.
//
// The font is Go Bold from golang.org/x/image/font/gofont, compiled into
// the binary, so rendering never depends on fonts installed on the host.
package fonts

import (
	"encoding/base64"
	"sync"

	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/opentype"
	"golang.org/x/image/math/fixed"
)

// TTF returns the caption font data.
func TTF() []byte {
	return gobold.TTF
}

// Cache for the base64-encoded font (computed once on first access).
var (
	ttfBase64     string
	ttfBase64Once sync.Once
)

// TTFBase64 returns the caption font data as a base64 string, for
// embedding in SVG @font-face rules.
func TTFBase64() string {
	ttfBase64Once.Do(func() {
		ttfBase64 = base64.StdEncoding.EncodeToString(gobold.TTF)
	})
	return ttfBase64
}

// FontFamily is the CSS font-family name of the embedded caption font.
const FontFamily = "Go Bold"

// FallbackFontFamily lists fallbacks for viewers that ignore @font-face.
const FallbackFontFamily = `'Go Bold', Impact, 'Arial Black', sans-serif`

var (
	parsed    *opentype.Font
	parseErr  error
	parseOnce sync.Once
)

// NewFace returns the caption font at size pixels (72 DPI). A face keeps
// scratch buffers, so it must not be shared between goroutines.
func NewFace(size float64) (font.Face, error) {
	parseOnce.Do(func() {
		parsed, parseErr = opentype.Parse(gobold.TTF)
	})
	if parseErr != nil {
		return nil, parseErr
	}
	return opentype.NewFace(parsed, &opentype.FaceOptions{
		Size:    size,
		DPI:     72,
		Hinting: font.HintingNone,
	})
}

// Measure returns the advance width of s in face, in pixels.
func Measure(face font.Face, s string) float64 {
	return float64(font.MeasureString(face, s)) / 64
}

// Ascent returns the distance from the top of a line to its baseline.
func Ascent(face font.Face) float64 {
	return toFloat(face.Metrics().Ascent)
}

func toFloat(v fixed.Int26_6) float64 { return float64(v) / 64 }
