package cli

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/matzehuels/memeforge/pkg/config"
	"github.com/matzehuels/memeforge/pkg/errors"
	mfio "github.com/matzehuels/memeforge/pkg/io"
	"github.com/matzehuels/memeforge/pkg/pipeline"
)

// newOpts holds the command-line flags for the new command.
type newOpts struct {
	output    string   // scene document to write
	aspect    string   // canvas preset, empty for the configured one
	texts     []string // captions, top to bottom
	seed      uint64   // arrangement seed
	noArrange bool     // keep images centered instead of arranging them
}

// newCommand creates the new command for composing a scene document.
func (c *CLI) newCommand() *cobra.Command {
	opts := newOpts{output: defaultScene}

	cmd := &cobra.Command{
		Use:   "new [image...]",
		Short: "Compose a scene from images and captions",
		Long: `Compose a scene from images and captions.

Every image is added at the canvas center, fitted to the canvas, and then
the layout engine arranges them so each one carries a similar visual weight.
The first caption is pinned to the top, the last to the bottom and any in
between to the middle.

Image paths are stored relative to the scene document, so the document and
its images can be moved together.`,
		Example: `  memeforge new cat.png dog.jpg --text "ME" --text "ALSO ME"
  memeforge new -o memes/wide.json --aspect 16:9 a.png b.png c.png`,
		ValidArgsFunction: completeImages,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("seed") {
				opts.seed = c.Config.Layout.Seed
			}
			return c.runNew(cmd.Context(), args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.output, "output", "o", opts.output, "scene document to write")
	cmd.Flags().StringVar(&opts.aspect, "aspect", "", "canvas aspect ratio W:H (default from config, 1:1)")
	cmd.Flags().StringArrayVarP(&opts.texts, "text", "t", nil, "caption text (repeatable, top to bottom)")
	cmd.Flags().Uint64Var(&opts.seed, "seed", 0, "arrangement seed (0 draws a fresh one)")
	cmd.Flags().BoolVar(&opts.noArrange, "no-arrange", false, "leave images centered instead of arranging them")
	registerAspectCompletion(cmd, "aspect")

	return cmd
}

// runNew composes the scene and writes it to opts.output.
func (c *CLI) runNew(ctx context.Context, images []string, opts newOpts) error {
	logger := loggerFromContext(ctx)

	if len(images) == 0 && len(opts.texts) == 0 {
		return errors.New(errors.ErrCodeInvalidInput, "nothing to compose: pass image files or --text captions")
	}
	aspect := opts.aspect
	if aspect == "" {
		aspect = c.Config.Canvas.Aspect
	}
	canvas, err := config.CanvasFor(aspect, c.Config.Canvas.BaseWidth)
	if err != nil {
		return err
	}

	outDir := filepath.Dir(opts.output)
	sources, err := sceneSources(images, outDir)
	if err != nil {
		return err
	}

	layoutOpts := c.Config.LayoutOptions()
	layoutOpts.Seed = opts.seed

	prog := newProgress(logger)
	spinner := newSpinnerWithContext(ctx, fmt.Sprintf("Decoding %s...", plural(len(sources), "image")))
	spinner.Start()
	doc, err := pipeline.Compose(ctx, pipeline.ComposeOptions{
		Images:  sources,
		Texts:   opts.texts,
		Canvas:  canvas,
		Decoder: mfio.ImageDecoder{Root: outDir},
		Arrange: !opts.noArrange,
		Layout:  layoutOpts,
		Logger:  logger,
	})
	spinner.Stop()
	if err != nil {
		return err
	}

	if err := mfio.ExportJSON(doc, opts.output); err != nil {
		return err
	}
	prog.done("Composed scene", "images", len(doc.Images), "texts", len(doc.Texts), "seed", doc.Seed)

	printSuccess("Created scene")
	printFile(opts.output)
	printSceneStats(len(doc.Images), len(doc.Texts), doc.Canvas, false)
	printNewline()
	printNextStep("Render it", fmt.Sprintf("%s render %s -f png,svg", appName, opts.output))
	printNextStep("Edit it", fmt.Sprintf("%s edit %s", appName, opts.output))
	return nil
}

// sceneSources rewrites image paths given on the command line so they
// resolve relative to dir, the directory of the scene document.
func sceneSources(images []string, dir string) ([]string, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", dir)
	}
	sources := make([]string, len(images))
	for i, img := range images {
		if err := errors.ValidatePath(img); err != nil {
			return nil, err
		}
		abs, err := filepath.Abs(img)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidPath, err, "resolve %s", img)
		}
		rel, err := filepath.Rel(absDir, abs)
		if err != nil {
			sources[i] = abs
			continue
		}
		sources[i] = filepath.ToSlash(rel)
	}
	return sources, nil
}
