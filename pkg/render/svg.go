package render

import (
	"bytes"
	"encoding/xml"
	"fmt"

	"github.com/matzehuels/memeforge/pkg/errors"
	"github.com/matzehuels/memeforge/pkg/fonts"
	"github.com/matzehuels/memeforge/pkg/geometry"
	"github.com/matzehuels/memeforge/pkg/scene"
)

// DefaultBackground is the canvas color when none is configured.
const DefaultBackground = "#ffffff"

const selectionCSS = `
    .selected { fill: none; stroke: #3b82f6; stroke-width: 2; stroke-dasharray: 6 4; }`

// SVGOption configures [RenderSVG].
type SVGOption func(*svgRenderer)

type svgRenderer struct {
	background string
	embedFont  bool
	href       func(src string) string
	selected   string
}

// WithBackground sets the canvas color (#rgb or #rrggbb).
func WithBackground(c string) SVGOption { return func(r *svgRenderer) { r.background = c } }

// WithEmbeddedFont embeds the caption font so the SVG renders the same on
// hosts without it.
func WithEmbeddedFont() SVGOption { return func(r *svgRenderer) { r.embedFont = true } }

// WithImageHref maps image sources to the href written for them, e.g. to
// make paths relative to the output file or to inline data URLs.
func WithImageHref(fn func(src string) string) SVGOption {
	return func(r *svgRenderer) { r.href = fn }
}

// WithSelection outlines the element with the given id.
func WithSelection(id string) SVGOption { return func(r *svgRenderer) { r.selected = id } }

// RenderSVG renders the scene as a standalone SVG document the size of
// canvas. Images are referenced, not embedded; rotation and crop are
// expressed with transforms and nested viewports.
func RenderSVG(s scene.Scene, canvas geometry.Size, opts ...SVGOption) ([]byte, error) {
	r := svgRenderer{background: DefaultBackground, href: func(src string) string { return src }}
	for _, opt := range opts {
		opt(&r)
	}
	if err := errors.ValidateCanvas(canvas.Width, canvas.Height); err != nil {
		return nil, err
	}
	if err := errors.ValidateColor(r.background); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.1f %.1f" width="%.0f" height="%.0f">`+"\n",
		canvas.Width, canvas.Height, canvas.Width, canvas.Height)
	r.renderDefs(&buf)
	fmt.Fprintf(&buf, `  <rect width="100%%" height="100%%" fill="%s"/>`+"\n", r.background)

	for _, img := range s.Images {
		r.renderImage(&buf, img)
	}
	for _, t := range s.Texts {
		if err := r.renderText(&buf, t); err != nil {
			return nil, err
		}
	}

	buf.WriteString("</svg>\n")
	return buf.Bytes(), nil
}

func (r *svgRenderer) renderDefs(buf *bytes.Buffer) {
	if !r.embedFont && r.selected == "" {
		return
	}
	buf.WriteString("  <defs>\n    <style>")
	if r.embedFont {
		fmt.Fprintf(buf, "\n    @font-face { font-family: '%s'; src: url(data:font/ttf;base64,%s) format('truetype'); }",
			fonts.FontFamily, fonts.TTFBase64())
	}
	if r.selected != "" {
		buf.WriteString(selectionCSS)
	}
	buf.WriteString("\n    </style>\n  </defs>\n")
}

func (r *svgRenderer) renderImage(buf *bytes.Buffer, img scene.ImageElement) {
	b := img.Bounds()
	fmt.Fprintf(buf, `  <g id="%s"`, escapeXML(img.ID))
	if img.Rotation != 0 {
		fmt.Fprintf(buf, ` transform="rotate(%.2f %.2f %.2f)"`, img.Rotation, b.CenterX(), b.CenterY())
	}
	buf.WriteString(">\n")

	href := escapeXML(r.href(img.Source))
	if c := img.Crop; c != nil {
		fmt.Fprintf(buf, `    <svg x="%.2f" y="%.2f" width="%.2f" height="%.2f" viewBox="%.2f %.2f %.2f %.2f" preserveAspectRatio="none">`+"\n",
			b.X, b.Y, b.Width, b.Height, c.X, c.Y, c.Width, c.Height)
		fmt.Fprintf(buf, `      <image href="%s"/>`+"\n", href)
		buf.WriteString("    </svg>\n")
	} else {
		fmt.Fprintf(buf, `    <image href="%s" x="%.2f" y="%.2f" width="%.2f" height="%.2f" preserveAspectRatio="none"/>`+"\n",
			href, b.X, b.Y, b.Width, b.Height)
	}
	if img.ID == r.selected {
		fmt.Fprintf(buf, `    <rect class="selected" x="%.2f" y="%.2f" width="%.2f" height="%.2f"/>`+"\n",
			b.X, b.Y, b.Width, b.Height)
	}
	buf.WriteString("  </g>\n")
}

func (r *svgRenderer) renderText(buf *bytes.Buffer, t scene.TextElement) error {
	if err := errors.ValidateColor(t.Color); err != nil {
		return err
	}
	face, err := fonts.NewFace(t.FontSize)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "load caption font")
	}
	defer face.Close()
	c := layoutCaption(face, t)

	fmt.Fprintf(buf, `  <g id="%s" font-family="%s" font-size="%.2f" fill="%s" stroke="#000000" stroke-width="%.2f" stroke-linejoin="round" paint-order="stroke" text-anchor="middle">`+"\n",
		escapeXML(t.ID), escapeXML(fonts.FallbackFontFamily), c.size, t.Color, 2*c.stroke)
	cx := t.X + t.Width/2
	for i, line := range c.lines {
		y := t.Y + float64(i)*c.lineHeight + c.baseline
		fmt.Fprintf(buf, `    <text x="%.2f" y="%.2f">%s</text>`+"\n", cx, y, escapeXML(line))
	}
	if t.ID == r.selected {
		b := t.Bounds()
		fmt.Fprintf(buf, `    <rect class="selected" x="%.2f" y="%.2f" width="%.2f" height="%.2f"/>`+"\n",
			b.X, b.Y, b.Width, max(b.Height, float64(len(c.lines))*c.lineHeight))
	}
	buf.WriteString("  </g>\n")
	return nil
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	xml.EscapeText(&buf, []byte(s))
	return buf.String()
}
