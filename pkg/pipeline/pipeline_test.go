package pipeline

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/memeforge/pkg/cache"
	"github.com/matzehuels/memeforge/pkg/editor"
	"github.com/matzehuels/memeforge/pkg/errors"
	"github.com/matzehuels/memeforge/pkg/geometry"
	mfio "github.com/matzehuels/memeforge/pkg/io"
	"github.com/matzehuels/memeforge/pkg/layout"
)

// testImages serves solid-color images of fixed sizes by source name.
type testImages struct {
	sizes   map[string][2]int
	version string
	loads   atomic.Int32
}

func newTestImages() *testImages {
	return &testImages{
		sizes:   map[string][2]int{"a.png": {200, 200}, "b.png": {800, 400}, "c.png": {300, 500}},
		version: "v1",
	}
}

func (ti *testImages) Decode(_ context.Context, src string) (editor.DecodedImage, error) {
	wh, ok := ti.sizes[src]
	if !ok {
		return editor.DecodedImage{}, errors.New(errors.ErrCodeFileNotFound, "no such image %s", src)
	}
	return editor.DecodedImage{Source: src, Width: wh[0], Height: wh[1], Format: "png"}, nil
}

func (ti *testImages) Load(_ context.Context, src string) (image.Image, error) {
	wh, ok := ti.sizes[src]
	if !ok {
		return nil, errors.New(errors.ErrCodeFileNotFound, "no such image %s", src)
	}
	ti.loads.Add(1)
	img := image.NewRGBA(image.Rect(0, 0, wh[0], wh[1]))
	draw.Draw(img, img.Bounds(), image.NewUniform(color.RGBA{R: 200, A: 255}), image.Point{}, draw.Src)
	return img, nil
}

func (ti *testImages) Fingerprint(src string) (string, error) {
	return src + "@" + ti.version, nil
}

func quietLogger() *log.Logger {
	return log.NewWithOptions(&bytes.Buffer{}, log.Options{})
}

func testDoc(t *testing.T) mfio.Document {
	t.Helper()
	doc, err := Compose(context.Background(), ComposeOptions{
		Images:  []string{"a.png", "b.png"},
		Texts:   []string{"TOP", "BOTTOM"},
		Canvas:  geometry.Size{Width: 600, Height: 600},
		Decoder: newTestImages(),
		Arrange: true,
		Layout:  layout.Options{Seed: 7},
	})
	if err != nil {
		t.Fatalf("Compose: %v", err)
	}
	return doc
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"svg", false},
		{"png", false},
		{"json", false},
		{"pdf", true},
		{"SVG", true}, // case-sensitive
		{"", true},
	}
	for _, tt := range tests {
		err := ValidateFormat(tt.format)
		if (err != nil) != tt.wantErr {
			t.Errorf("ValidateFormat(%q) error = %v, wantErr %v", tt.format, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, errors.ErrCodeInvalidFormat) {
			t.Errorf("ValidateFormat(%q) code = %s, want INVALID_FORMAT", tt.format, errors.GetCode(err))
		}
	}
	if err := ValidateFormats(nil); err != nil {
		t.Errorf("Empty formats should pass: %v", err)
	}
}

func TestSetRenderDefaults(t *testing.T) {
	opts := Options{}
	opts.SetRenderDefaults()
	if len(opts.Formats) != 1 || opts.Formats[0] != FormatPNG {
		t.Errorf("Formats = %v, want [png]", opts.Formats)
	}
	if opts.Background != DefaultBackground || opts.Scale != DefaultScale || opts.Logger == nil {
		t.Errorf("defaults not applied: %+v", opts)
	}
}

func TestOptionsValidation(t *testing.T) {
	tests := []struct {
		name string
		opts Options
		code errors.Code
	}{
		{"negative upscale", Options{MaxUpscale: -1}, errors.ErrCodeInvalidInput},
		{"negative padding", Options{Padding: -2}, errors.ErrCodeInvalidInput},
		{"bad format", Options{Formats: []string{"gif"}}, errors.ErrCodeInvalidFormat},
		{"bad background", Options{Background: "white"}, errors.ErrCodeInvalidColor},
		{"bad scale", Options{Scale: -1}, errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.opts.ValidateAndSetDefaults(); !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestArtifactKeyOpts(t *testing.T) {
	opts := Options{Scale: 2, EmbedFont: true, Stats: true, Background: "#000"}
	if k := opts.ArtifactKeyOpts(FormatSVG); k.Scale != 0 || !k.EmbedFont || k.Stats {
		t.Errorf("svg key = %+v, want only svg settings", k)
	}
	if k := opts.ArtifactKeyOpts(FormatPNG); k.Scale != 2 || k.EmbedFont {
		t.Errorf("png key = %+v, want only png settings", k)
	}
	if k := opts.ArtifactKeyOpts(FormatJSON); !k.Stats || k.Background != "#000" {
		t.Errorf("json key = %+v", k)
	}
}

func TestCompose(t *testing.T) {
	doc := testDoc(t)
	if len(doc.Images) != 2 || len(doc.Texts) != 2 {
		t.Fatalf("scene = %d images, %d texts", len(doc.Images), len(doc.Texts))
	}
	if doc.Images[0].ID != "img_1" || doc.Texts[1].ID != "txt_2" {
		t.Errorf("ids = %s, %s; want sequential", doc.Images[0].ID, doc.Texts[1].ID)
	}
	if doc.Seed != 7 {
		t.Errorf("Seed = %d, want 7", doc.Seed)
	}
	if got := layout.AnchorOf(doc.Texts[0].Y, 600); got != layout.AnchorTop {
		t.Errorf("first caption anchor = %v, want top", got)
	}
	if got := layout.AnchorOf(doc.Texts[1].Y, 600); got != layout.AnchorBottom {
		t.Errorf("last caption anchor = %v, want bottom", got)
	}
	inner := geometry.NewRect(0, 0, 600, 600)
	for _, img := range doc.Images {
		if !inner.Contains(img.Bounds(), 1e-6) {
			t.Errorf("%s outside canvas: %+v", img.ID, img.Bounds())
		}
	}
	if err := doc.Scene.Validate(); err != nil {
		t.Errorf("composed scene invalid: %v", err)
	}
}

func TestComposeErrors(t *testing.T) {
	ctx := context.Background()
	canvas := geometry.Size{Width: 600, Height: 600}

	_, err := Compose(ctx, ComposeOptions{Images: []string{"missing.png"}, Canvas: canvas, Decoder: newTestImages()})
	if !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("missing image: err = %v", err)
	}
	_, err = Compose(ctx, ComposeOptions{Images: []string{"a.png"}, Canvas: canvas})
	if !errors.Is(err, errors.ErrCodeInternal) {
		t.Errorf("no decoder: err = %v", err)
	}
	_, err = Compose(ctx, ComposeOptions{Canvas: geometry.Size{}})
	if !errors.Is(err, errors.ErrCodeInvalidCanvas) {
		t.Errorf("zero canvas: err = %v", err)
	}

	doc, err := Compose(ctx, ComposeOptions{Texts: []string{"only text"}, Canvas: canvas, Arrange: true})
	if err != nil || len(doc.Texts) != 1 || doc.Seed != 0 {
		t.Errorf("text-only scene: %+v, %v", doc, err)
	}
}

func TestArrange(t *testing.T) {
	doc := testDoc(t)
	arranged, res, err := Arrange(context.Background(), doc, Options{Seed: 99})
	if err != nil {
		t.Fatal(err)
	}
	if arranged.Seed != 99 || res.Seed != 99 {
		t.Errorf("seed = %d/%d, want 99", arranged.Seed, res.Seed)
	}
	if doc.Seed != 7 {
		t.Error("Arrange modified its input")
	}

	_, _, err = Arrange(context.Background(), mfio.Document{Canvas: doc.Canvas}, Options{})
	if !errors.Is(err, errors.ErrCodeEmptyArrangement) {
		t.Errorf("empty scene: err = %v, want EMPTY_ARRANGEMENT", err)
	}
}

func TestRender(t *testing.T) {
	doc := testDoc(t)
	images := newTestImages()
	artifacts, err := Render(context.Background(), doc, Options{
		Formats: []string{FormatPNG, FormatSVG, FormatJSON},
		Loader:  images,
		Scale:   0.5,
		Stats:   true,
	})
	if err != nil {
		t.Fatal(err)
	}

	img, err := png.Decode(bytes.NewReader(artifacts[FormatPNG]))
	if err != nil {
		t.Fatalf("png: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 300 || b.Dy() != 300 {
		t.Errorf("png size = %v, want 300x300", b)
	}
	if !bytes.HasPrefix(artifacts[FormatSVG], []byte("<svg")) {
		t.Error("svg artifact does not start with <svg")
	}
	if !bytes.Contains(artifacts[FormatJSON], []byte(`"stats"`)) {
		t.Error("json artifact misses stats")
	}

	if _, err := Render(context.Background(), doc, Options{Formats: []string{FormatPNG}}); !errors.Is(err, errors.ErrCodeRasterizeFailed) {
		t.Errorf("png without loader: err = %v, want RASTERIZE_FAILED", err)
	}
}

func TestRunnerCachesArtifacts(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil, quietLogger())
	defer runner.Close()

	doc := testDoc(t)
	images := newTestImages()
	opts := Options{Formats: []string{FormatPNG, FormatSVG}, Loader: images}

	first, err := runner.Execute(ctx, doc, opts)
	if err != nil {
		t.Fatal(err)
	}
	if first.CacheInfo.RenderHit {
		t.Error("first run hit the cache")
	}
	loads := images.loads.Load()
	if loads != 2 {
		t.Errorf("loads = %d, want 2", loads)
	}

	second, err := runner.Execute(ctx, doc, opts)
	if err != nil {
		t.Fatal(err)
	}
	if !second.CacheInfo.RenderHit {
		t.Error("second run missed the cache")
	}
	if images.loads.Load() != loads {
		t.Error("cached run loaded images")
	}
	if !bytes.Equal(first.Artifacts[FormatPNG], second.Artifacts[FormatPNG]) || first.SceneHash != second.SceneHash {
		t.Error("cached artifacts differ")
	}

	images.version = "v2"
	third, err := runner.Execute(ctx, doc, opts)
	if err != nil {
		t.Fatal(err)
	}
	if third.CacheInfo.RenderHit || third.SceneHash == first.SceneHash {
		t.Error("changed image file served from cache")
	}

	opts.Refresh = true
	fourth, err := runner.Execute(ctx, doc, opts)
	if err != nil {
		t.Fatal(err)
	}
	if fourth.CacheInfo.RenderHit {
		t.Error("Refresh served from cache")
	}
}

func TestRunnerPartialHit(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, nil, quietLogger())
	doc := testDoc(t)

	if _, err := runner.Render(ctx, doc, Options{Formats: []string{FormatSVG}}); err != nil {
		t.Fatal(err)
	}
	artifacts, hit, err := runner.RenderWithCacheInfo(ctx, doc, Options{Formats: []string{FormatSVG, FormatJSON}})
	if err != nil {
		t.Fatal(err)
	}
	if hit {
		t.Error("partial hit reported as full hit")
	}
	if len(artifacts) != 2 {
		t.Errorf("artifacts = %d, want 2", len(artifacts))
	}
}

func TestRunnerCachesSeededLayout(t *testing.T) {
	ctx := context.Background()
	c, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	runner := NewRunner(c, cache.NewScopedKeyer(nil, "test:"), quietLogger())
	doc := testDoc(t)

	a1, r1, hit, err := runner.ArrangeWithCacheInfo(ctx, doc, Options{Seed: 5})
	if err != nil || hit {
		t.Fatalf("first arrange: hit=%v err=%v", hit, err)
	}
	a2, r2, hit, err := runner.ArrangeWithCacheInfo(ctx, doc, Options{Seed: 5})
	if err != nil || !hit {
		t.Fatalf("second arrange: hit=%v err=%v", hit, err)
	}
	if r1.Seed != r2.Seed || len(r1.Placements) != len(r2.Placements) {
		t.Errorf("cached result differs: %+v vs %+v", r1, r2)
	}
	for i := range a1.Images {
		if a1.Images[i].X != a2.Images[i].X || a1.Images[i].ScaleFactor != a2.Images[i].ScaleFactor {
			t.Errorf("image %d differs after cache hit", i)
		}
	}

	if _, _, hit, _ := runner.ArrangeWithCacheInfo(ctx, doc, Options{}); hit {
		t.Error("unseeded arrangement served from cache")
	}
}

func TestRelativeHref(t *testing.T) {
	dir := t.TempDir()
	href := relativeHref(mfio.ImageDecoder{Root: filepath.Join(dir, "images")}, filepath.Join(dir, "out"))
	if got := href("cat.png"); got != "../images/cat.png" {
		t.Errorf("href = %q, want ../images/cat.png", got)
	}

	doc := testDoc(t)
	artifacts, err := Render(context.Background(), doc, Options{
		Formats:  []string{FormatSVG},
		Loader:   mfio.ImageDecoder{Root: dir},
		HrefBase: dir,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(artifacts[FormatSVG]), `href="a.png"`) {
		t.Errorf("svg hrefs not relative:\n%s", artifacts[FormatSVG])
	}
}
