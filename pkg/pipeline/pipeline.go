// Package pipeline runs the arrange → render pipeline over scene documents.
//
// The CLI and the interactive editor share this code path, so a scene
// rendered by `memeforge render` and one exported from `memeforge edit`
// are produced by the same steps.
//
// # Stages
//
//  1. Compose: build a document from image files and captions (`new`)
//  2. Arrange: run the layout engine and apply the placements
//  3. Render: produce PNG, SVG or JSON artifacts
//
// Each stage can be run on its own. The [Runner] adds caching: arrangements
// with a fixed seed and all rendered artifacts are stored under keys
// derived from the scene contents, so re-rendering an unchanged scene skips
// the resampling work.
//
// # Usage
//
//	runner := pipeline.NewRunner(c, nil, logger)
//	result, err := runner.Execute(ctx, doc, pipeline.Options{
//	    Arrange: true,
//	    Formats: []string{pipeline.FormatPNG, pipeline.FormatSVG},
//	    Loader:  io.ImageDecoder{Root: dir},
//	})
//	png := result.Artifacts[pipeline.FormatPNG]
package pipeline

import (
	"io"
	"math"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/memeforge/pkg/cache"
	"github.com/matzehuels/memeforge/pkg/errors"
	mfio "github.com/matzehuels/memeforge/pkg/io"
	"github.com/matzehuels/memeforge/pkg/layout"
	"github.com/matzehuels/memeforge/pkg/render"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultBackground is the canvas color of rendered output.
	DefaultBackground = render.DefaultBackground

	// DefaultScale is the PNG output scale.
	DefaultScale = 1.0
)

// Format constants for output formats.
const (
	FormatPNG  = "png"
	FormatSVG  = "svg"
	FormatJSON = "json"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatPNG:  true,
	FormatSVG:  true,
	FormatJSON: true,
}

// Extension returns the file extension for format.
func Extension(format string) string {
	return "." + format
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options configures a pipeline run.
type Options struct {
	// Arrange runs the layout engine before rendering.
	Arrange bool `json:"arrange,omitempty"`

	// Seed fixes the arrangement shuffle. Zero draws a fresh seed; the
	// one used is recorded in the result document.
	Seed       uint64  `json:"seed,omitempty"`
	MaxUpscale float64 `json:"max_upscale,omitempty"`
	Padding    float64 `json:"padding,omitempty"`

	// Render options
	Formats    []string `json:"formats,omitempty"`
	Background string   `json:"background,omitempty"`
	Scale      float64  `json:"scale,omitempty"`
	EmbedFont  bool     `json:"embed_font,omitempty"`
	Stats      bool     `json:"stats,omitempty"`

	// HrefBase is the directory the SVG is written to. Image references
	// are made relative to it; empty keeps the sources as they are.
	HrefBase string `json:"href_base,omitempty"`

	// Refresh ignores cached entries and overwrites them.
	Refresh bool `json:"refresh,omitempty"`

	// Runtime options (not serialized)
	Loader render.Loader `json:"-"`
	Logger *log.Logger   `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Document is the scene that was rendered, arranged if requested.
	Document mfio.Document

	// SceneHash is the content hash of Document.
	SceneHash string

	// Layout is the arrangement, when one ran.
	Layout *layout.Result

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	Stats     Stats
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Images     int
	Texts      int
	Fallbacks  int
	LayoutTime time.Duration
	RenderTime time.Duration
}

// CacheInfo tracks cache hits for each stage.
type CacheInfo struct {
	LayoutHit bool // arrangement came from cache
	RenderHit bool // every artifact came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is supported.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: png, svg, json)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are supported.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// SetRenderDefaults fills unset render options.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatPNG}
	}
	if o.Background == "" {
		o.Background = DefaultBackground
	}
	if o.Scale == 0 {
		o.Scale = DefaultScale
	}
	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}
}

// ValidateForLayout checks the arrangement options.
func (o *Options) ValidateForLayout() error {
	if o.MaxUpscale < 0 || math.IsNaN(o.MaxUpscale) {
		return errors.New(errors.ErrCodeInvalidInput, "max upscale must be >= 0, got %v", o.MaxUpscale)
	}
	if o.Padding < 0 || math.IsNaN(o.Padding) {
		return errors.New(errors.ErrCodeInvalidInput, "padding must be >= 0, got %v", o.Padding)
	}
	return nil
}

// ValidateForRender sets defaults and checks the render options.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := errors.ValidateColor(o.Background); err != nil {
		return err
	}
	if !(o.Scale > 0) || math.IsInf(o.Scale, 0) {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be positive, got %v", o.Scale)
	}
	return nil
}

// ValidateAndSetDefaults checks every option of a full run.
func (o *Options) ValidateAndSetDefaults() error {
	if err := o.ValidateForLayout(); err != nil {
		return err
	}
	return o.ValidateForRender()
}

// LayoutOptions returns the layout engine options.
func (o *Options) LayoutOptions() layout.Options {
	return layout.Options{Seed: o.Seed, MaxUpscale: o.MaxUpscale, Padding: o.Padding}
}

// LayoutKeyOpts returns cache key options for arranging doc.
func (o *Options) LayoutKeyOpts(doc mfio.Document) cache.LayoutKeyOpts {
	return cache.LayoutKeyOpts{
		Width:      doc.Canvas.Width,
		Height:     doc.Canvas.Height,
		Seed:       o.Seed,
		MaxUpscale: o.MaxUpscale,
		Padding:    o.Padding,
	}
}

// ArtifactKeyOpts returns cache key options for rendering format.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{Format: format, Background: o.Background}
	switch format {
	case FormatPNG:
		k.Scale = o.Scale
	case FormatSVG:
		k.EmbedFont = o.EmbedFont
		k.HrefBase = o.HrefBase
	case FormatJSON:
		k.Stats = o.Stats
	}
	return k
}
