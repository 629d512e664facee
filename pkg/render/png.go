package render

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/png"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/math/f64"
	"golang.org/x/image/math/fixed"

	"github.com/matzehuels/memeforge/pkg/errors"
	"github.com/matzehuels/memeforge/pkg/fonts"
	"github.com/matzehuels/memeforge/pkg/geometry"
	"github.com/matzehuels/memeforge/pkg/scene"
)

// Loader decodes the bitmap behind an image source.
type Loader interface {
	Load(ctx context.Context, src string) (image.Image, error)
}

// LoaderFunc adapts a function to [Loader].
type LoaderFunc func(ctx context.Context, src string) (image.Image, error)

func (f LoaderFunc) Load(ctx context.Context, src string) (image.Image, error) { return f(ctx, src) }

// PNGOption configures a [PNGRasterizer].
type PNGOption func(*PNGRasterizer)

// PNGRasterizer flattens scenes into PNG images. It implements the
// editor's Rasterizer.
type PNGRasterizer struct {
	loader     Loader
	background color.Color
	scale      float64
	interp     xdraw.Interpolator
}

// WithPNGBackground sets the canvas color (default white).
func WithPNGBackground(c color.Color) PNGOption {
	return func(r *PNGRasterizer) { r.background = c }
}

// WithScale sets the output scale factor (default 1). A scale of 2 renders
// a 600x600 canvas as a 1200x1200 PNG.
func WithScale(s float64) PNGOption {
	return func(r *PNGRasterizer) {
		if s > 0 && !math.IsInf(s, 0) {
			r.scale = s
		}
	}
}

// WithInterpolator sets the resampling kernel (default CatmullRom).
func WithInterpolator(i xdraw.Interpolator) PNGOption {
	return func(r *PNGRasterizer) { r.interp = i }
}

// NewPNGRasterizer returns a rasterizer that loads image sources through
// loader.
func NewPNGRasterizer(loader Loader, opts ...PNGOption) *PNGRasterizer {
	r := &PNGRasterizer{
		loader:     loader,
		background: color.White,
		scale:      1,
		interp:     xdraw.CatmullRom,
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Flatten draws the scene and encodes it as PNG. Any image that cannot be
// loaded fails the whole export with RASTERIZE_FAILED.
func (r *PNGRasterizer) Flatten(ctx context.Context, s scene.Scene, canvas geometry.Size) ([]byte, error) {
	img, err := r.Draw(ctx, s, canvas)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, errors.Wrap(errors.ErrCodeRasterizeFailed, err, "encode png")
	}
	return buf.Bytes(), nil
}

// Draw paints the scene onto a new RGBA image: background, images in
// paint order, then captions.
func (r *PNGRasterizer) Draw(ctx context.Context, s scene.Scene, canvas geometry.Size) (*image.RGBA, error) {
	if err := errors.ValidateCanvas(canvas.Width, canvas.Height); err != nil {
		return nil, err
	}
	w := int(math.Ceil(canvas.Width * r.scale))
	h := int(math.Ceil(canvas.Height * r.scale))
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.Draw(dst, dst.Bounds(), image.NewUniform(r.background), image.Point{}, xdraw.Src)

	for _, el := range s.Images {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if r.loader == nil {
			return nil, errors.New(errors.ErrCodeRasterizeFailed, "no image loader configured")
		}
		src, err := r.loader.Load(ctx, el.Source)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeRasterizeFailed, err, "load %s", el.Source)
		}
		if err := r.drawImage(dst, src, el); err != nil {
			return nil, err
		}
	}
	for _, t := range s.Texts {
		if err := r.drawText(dst, t); err != nil {
			return nil, err
		}
	}
	return dst, nil
}

// drawImage maps the (cropped) source onto the element's displayed
// rectangle, rotated about its center.
func (r *PNGRasterizer) drawImage(dst *image.RGBA, src image.Image, el scene.ImageElement) error {
	origin := src.Bounds().Min
	sr := src.Bounds()
	if c := el.Crop; c != nil {
		sr = image.Rect(
			origin.X+int(math.Round(c.X)), origin.Y+int(math.Round(c.Y)),
			origin.X+int(math.Round(c.Right())), origin.Y+int(math.Round(c.Bottom())),
		).Intersect(src.Bounds())
	}
	if sr.Empty() {
		return errors.New(errors.ErrCodeRasterizeFailed, "image %s: crop is outside the source", el.ID)
	}

	b := el.Bounds()
	kx := b.Width / float64(sr.Dx())
	ky := b.Height / float64(sr.Dy())
	sin, cos := math.Sincos(el.Rotation * math.Pi / 180)

	// Source point (sx, sy) lands at center + R·(k·(s - sr.Min) - half).
	p := kx*float64(sr.Min.X) + b.Width/2
	q := ky*float64(sr.Min.Y) + b.Height/2
	cx, cy := b.CenterX(), b.CenterY()
	m := r.scale
	aff := f64.Aff3{
		m * cos * kx, -m * sin * ky, m * (cx - cos*p + sin*q),
		m * sin * kx, m * cos * ky, m * (cy - sin*p - cos*q),
	}
	r.interp.Transform(dst, aff, src, sr, xdraw.Over, nil)
	return nil
}

func (r *PNGRasterizer) drawText(dst *image.RGBA, t scene.TextElement) error {
	fill, err := ParseColor(t.Color)
	if err != nil {
		return err
	}
	face, err := fonts.NewFace(t.FontSize * r.scale)
	if err != nil {
		return errors.Wrap(errors.ErrCodeRasterizeFailed, err, "load caption font")
	}
	defer face.Close()

	// Wrap at canvas scale so line breaks match the SVG output.
	unscaled, err := fonts.NewFace(t.FontSize)
	if err != nil {
		return errors.Wrap(errors.ErrCodeRasterizeFailed, err, "load caption font")
	}
	c := layoutCaption(unscaled, t)
	unscaled.Close()

	m := r.scale
	d := font.Drawer{Dst: dst, Face: face}
	for i, line := range c.lines {
		width := fonts.Measure(face, line)
		x := (t.X+t.Width/2)*m - width/2
		y := (t.Y + float64(i)*c.lineHeight + c.baseline) * m

		d.Src = image.NewUniform(OutlineColor)
		for _, off := range outlineOffsets(c.stroke * m) {
			d.Dot = point(x+off[0], y+off[1])
			d.DrawString(line)
		}
		d.Src = image.NewUniform(fill)
		d.Dot = point(x, y)
		d.DrawString(line)
	}
	return nil
}

// outlineOffsets returns the pixel offsets within radius, used to stamp a
// caption outline.
func outlineOffsets(radius float64) []f64.Vec2 {
	n := int(math.Ceil(radius))
	var out []f64.Vec2
	for dy := -n; dy <= n; dy++ {
		for dx := -n; dx <= n; dx++ {
			if (dx != 0 || dy != 0) && float64(dx*dx+dy*dy) <= radius*radius {
				out = append(out, f64.Vec2{float64(dx), float64(dy)})
			}
		}
	}
	return out
}

func point(x, y float64) fixed.Point26_6 {
	return fixed.Point26_6{X: fixed.Int26_6(math.Round(x * 64)), Y: fixed.Int26_6(math.Round(y * 64))}
}
