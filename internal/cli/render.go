package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/memeforge/pkg/errors"
	mfio "github.com/matzehuels/memeforge/pkg/io"
	"github.com/matzehuels/memeforge/pkg/pipeline"
)

// renderOpts holds the command-line flags for the render command that are
// not pipeline options.
type renderOpts struct {
	output  string // output file (single format) or base path (multiple)
	formats string // comma-separated output formats
	noCache bool   // bypass the cache entirely
	save    bool   // write the arranged scene back to its document
}

// renderCommand creates the render command for producing output files.
func (c *CLI) renderCommand() *cobra.Command {
	var (
		ro   renderOpts
		opts pipeline.Options
	)

	cmd := &cobra.Command{
		Use:   "render [scene.json]",
		Short: "Render a scene to PNG, SVG or JSON",
		Long: `Render a scene to PNG, SVG or JSON.

PNG output is the flattened meme. SVG output references the source images
relative to the SVG file; use --embed-font to inline the caption font. JSON
output summarizes the placements, optionally with layout quality figures.

Rendered artifacts are cached locally, keyed by the scene contents and the
source images, so re-rendering an unchanged scene is instant.`,
		Example: `  memeforge render scene.json
  memeforge render scene.json -f png,svg -o out/meme --scale 2
  memeforge render scene.json --arrange --seed 7 --save`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeScenes,
		RunE: func(cmd *cobra.Command, args []string) error {
			merged := c.mergeRenderFlags(cmd, opts)
			merged.Formats = parseFormats(ro.formats, merged.Formats)
			if err := pipeline.ValidateFormats(merged.Formats); err != nil {
				return err
			}
			return c.runRender(cmd.Context(), args[0], merged, ro)
		},
	}

	cmd.Flags().StringVarP(&ro.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&ro.formats, "format", "f", "", "output format(s): png, svg, json (comma-separated, default from config)")
	cmd.Flags().BoolVar(&ro.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&ro.save, "save", false, "write the arranged scene back to its document (with --arrange)")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached entries and re-render")
	cmd.Flags().BoolVar(&opts.Arrange, "arrange", false, "arrange the images before rendering")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "arrangement seed (with --arrange)")
	cmd.Flags().Float64Var(&opts.MaxUpscale, "max-upscale", 0, "largest scale factor an image may reach (with --arrange)")
	cmd.Flags().Float64Var(&opts.Scale, "scale", 0, "PNG output scale (default from config, 1)")
	cmd.Flags().StringVar(&opts.Background, "background", "", "canvas color as #rgb or #rrggbb")
	cmd.Flags().BoolVar(&opts.EmbedFont, "embed-font", false, "embed the caption font in SVG output")
	cmd.Flags().BoolVar(&opts.Stats, "stats", false, "include layout quality figures in JSON output")
	registerFormatCompletion(cmd, "format")

	return cmd
}

// mergeRenderFlags layers the flags the user set over the configured
// pipeline options.
func (c *CLI) mergeRenderFlags(cmd *cobra.Command, flags pipeline.Options) pipeline.Options {
	opts := c.pipelineOptions()
	set := cmd.Flags().Changed
	opts.Arrange = flags.Arrange
	opts.Refresh = flags.Refresh
	opts.Stats = flags.Stats
	if set("seed") {
		opts.Seed = flags.Seed
	}
	if set("max-upscale") {
		opts.MaxUpscale = flags.MaxUpscale
	}
	if set("scale") {
		opts.Scale = flags.Scale
	}
	if set("background") {
		opts.Background = flags.Background
	}
	if set("embed-font") {
		opts.EmbedFont = flags.EmbedFont
	}
	return opts
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.png, .svg, .json), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPath returns the file a format is written to. A JSON render of a
// scene named like its own document gets a ".render.json" suffix so the
// document is never overwritten.
func outputPath(base, format, input string) string {
	path := base + pipeline.Extension(format)
	if format == pipeline.FormatJSON && sameFile(path, input) {
		path = base + ".render" + pipeline.Extension(format)
	}
	return path
}

func sameFile(a, b string) bool {
	absA, errA := filepath.Abs(a)
	absB, errB := filepath.Abs(b)
	return errA == nil && errB == nil && absA == absB
}

// runRender loads the scene, runs the pipeline and writes every artifact.
func (c *CLI) runRender(ctx context.Context, input string, opts pipeline.Options, ro renderOpts) error {
	logger := loggerFromContext(ctx)

	doc, err := mfio.ImportJSON(input)
	if err != nil {
		return fmt.Errorf("load scene %s: %w", input, err)
	}
	logger.Debug("loaded scene", "path", input, "images", len(doc.Images), "texts", len(doc.Texts))

	runner, err := c.newRunner(ro.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	base := basePath(ro.output, input)
	opts.Loader = sceneDecoder(input)
	opts.HrefBase = filepath.Dir(base)

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, "Rendering...")
	spinner.Start()
	result, err := runner.Execute(ctx, doc, opts)
	spinner.Stop()
	if err != nil {
		return err
	}
	prog.done("Rendered", "formats", opts.Formats, "cached", result.CacheInfo.RenderHit)

	if err := os.MkdirAll(filepath.Dir(base), 0o755); err != nil {
		return errors.Wrap(errors.ErrCodeInternal, err, "create %s", filepath.Dir(base))
	}
	var written []string
	for _, format := range opts.Formats {
		path := outputPath(base, format, input)
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return errors.Wrap(errors.ErrCodeInternal, err, "write %s", path)
		}
		written = append(written, path)
	}

	if ro.save && result.Layout != nil {
		if err := mfio.ExportJSON(result.Document, input); err != nil {
			return err
		}
		written = append(written, input)
	}

	printSuccess("Rendered %s", plural(len(opts.Formats), "format"))
	for _, path := range written {
		printFile(path)
	}
	printSceneStats(result.Stats.Images, result.Stats.Texts, result.Document.Canvas, result.CacheInfo.RenderHit)
	if result.Layout != nil {
		printDetail("arranged with seed %d", result.Layout.Seed)
	}
	return nil
}
