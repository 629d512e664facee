package pipeline

import (
	"context"
	"path/filepath"
	"time"

	"github.com/matzehuels/memeforge/pkg/errors"
	mfio "github.com/matzehuels/memeforge/pkg/io"
	"github.com/matzehuels/memeforge/pkg/observability"
	"github.com/matzehuels/memeforge/pkg/render"
)

// Render generates output artifacts in the requested formats.
func Render(ctx context.Context, doc mfio.Document, opts Options) (map[string][]byte, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Pipeline().OnRenderStart(ctx, opts.Formats)
	artifacts, err := renderFormats(ctx, doc, opts, opts.Formats)
	observability.Pipeline().OnRenderComplete(ctx, opts.Formats, time.Since(start), err)
	return artifacts, err
}

func renderFormats(ctx context.Context, doc mfio.Document, opts Options, formats []string) (map[string][]byte, error) {
	artifacts := make(map[string][]byte, len(formats))
	for _, format := range formats {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		var data []byte
		var err error

		switch format {
		case FormatPNG:
			data, err = renderPNG(ctx, doc, opts)
		case FormatSVG:
			data, err = render.RenderSVG(doc.Scene, doc.Canvas, buildSVGOptions(opts)...)
		case FormatJSON:
			data, err = render.RenderJSON(doc.Scene, doc.Canvas, buildJSONOptions(doc, opts)...)
		default:
			return nil, errors.New(errors.ErrCodeInvalidFormat, "unsupported format: %s", format)
		}

		if err != nil {
			return nil, err
		}
		opts.Logger.Debug("rendered", "format", format, "bytes", len(data))
		artifacts[format] = data
	}
	return artifacts, nil
}

func renderPNG(ctx context.Context, doc mfio.Document, opts Options) ([]byte, error) {
	bg, err := render.ParseColor(opts.Background)
	if err != nil {
		return nil, err
	}
	r := render.NewPNGRasterizer(opts.Loader,
		render.WithPNGBackground(bg),
		render.WithScale(opts.Scale),
	)
	return r.Flatten(ctx, doc.Scene, doc.Canvas)
}

func buildSVGOptions(opts Options) []render.SVGOption {
	svgOpts := []render.SVGOption{render.WithBackground(opts.Background)}
	if opts.EmbedFont {
		svgOpts = append(svgOpts, render.WithEmbeddedFont())
	}
	if opts.HrefBase != "" {
		svgOpts = append(svgOpts, render.WithImageHref(relativeHref(opts.Loader, opts.HrefBase)))
	}
	return svgOpts
}

// resolver is implemented by loaders that map sources to file paths.
type resolver interface {
	Resolve(src string) string
}

// relativeHref returns an href mapper that rewrites image sources
// relative to base. Sources that cannot be made relative are kept.
func relativeHref(loader render.Loader, base string) func(string) string {
	absBase, baseErr := filepath.Abs(base)
	return func(src string) string {
		path := src
		if r, ok := loader.(resolver); ok {
			path = r.Resolve(src)
		}
		abs, err := filepath.Abs(path)
		if err != nil || baseErr != nil {
			return filepath.ToSlash(path)
		}
		rel, err := filepath.Rel(absBase, abs)
		if err != nil {
			return filepath.ToSlash(path)
		}
		return filepath.ToSlash(rel)
	}
}

func buildJSONOptions(doc mfio.Document, opts Options) []render.JSONOption {
	jsonOpts := []render.JSONOption{render.WithJSONSeed(doc.Seed)}
	if opts.Stats {
		padding := opts.Padding
		if padding == 0 {
			padding = -1
		}
		jsonOpts = append(jsonOpts, render.WithJSONStats(padding))
	}
	return jsonOpts
}
