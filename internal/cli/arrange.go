package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	mfio "github.com/matzehuels/memeforge/pkg/io"
	"github.com/matzehuels/memeforge/pkg/layout"
	"github.com/matzehuels/memeforge/pkg/pipeline"
)

// arrangeCommand creates the arrange command for re-running the layout engine.
func (c *CLI) arrangeCommand() *cobra.Command {
	var (
		output  string
		noCache bool
	)
	var opts pipeline.Options

	cmd := &cobra.Command{
		Use:   "arrange [scene.json]",
		Short: "Arrange the images of a scene",
		Long: `Arrange the images of a scene.

The layout engine partitions the canvas so every image gets a similar share
of it, resolves any remaining overlaps and pins captions back to the top,
middle or bottom band. The seed that was used is written to the document;
pass it back with --seed to reproduce an arrangement.

Arrangements with an explicit seed are cached.`,
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeScenes,
		RunE: func(cmd *cobra.Command, args []string) error {
			base := c.pipelineOptions()
			flags := cmd.Flags()
			if flags.Changed("seed") {
				base.Seed = opts.Seed
			}
			if flags.Changed("max-upscale") {
				base.MaxUpscale = opts.MaxUpscale
			}
			if flags.Changed("padding") {
				base.Padding = opts.Padding
			}
			base.Refresh = opts.Refresh
			if output == "" {
				output = args[0]
			}
			return c.runArrange(cmd.Context(), args[0], output, base, noCache)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: overwrite the input)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&opts.Refresh, "refresh", false, "ignore cached arrangements")
	cmd.Flags().Uint64Var(&opts.Seed, "seed", 0, "arrangement seed (0 draws a fresh one)")
	cmd.Flags().Float64Var(&opts.MaxUpscale, "max-upscale", 0, "largest scale factor an image may reach (0 = unlimited)")
	cmd.Flags().Float64Var(&opts.Padding, "padding", 0, "margin around and between images in pixels (0 = by image count)")

	return cmd
}

// runArrange loads the scene, arranges it and writes the result.
func (c *CLI) runArrange(ctx context.Context, input, output string, opts pipeline.Options, noCache bool) error {
	doc, err := mfio.ImportJSON(input)
	if err != nil {
		return fmt.Errorf("load scene %s: %w", input, err)
	}

	runner, err := c.newRunner(noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	arranged, res, cached, err := runner.ArrangeWithCacheInfo(ctx, doc, opts)
	if err != nil {
		return err
	}
	if err := mfio.ExportJSON(arranged, output); err != nil {
		return err
	}

	printSuccess("Arranged %s", plural(len(arranged.Images), "image"))
	printFile(output)
	printSceneStats(len(arranged.Images), len(arranged.Texts), arranged.Canvas, cached)
	printLayoutSummary(res, layout.Measure(arranged.Images, arranged.Canvas, res.Padding))
	return nil
}

// printLayoutSummary prints the seed and quality figures of an arrangement.
func printLayoutSummary(res layout.Result, stats layout.Stats) {
	printDetail("seed %d · padding %.1fpx · %d passes", res.Seed, res.Padding, res.Passes)
	printDetail("area spread %.1f%% (source %.1f%%) · coverage %.0f%%",
		stats.AreaCV*100, stats.IntrinsicCV*100, stats.Coverage*100)
	if res.FallbackUsed {
		printWarning("Overlaps persisted; images were shrunk %d time(s) to fit", res.Fallbacks)
	}
	if stats.Overlaps > 0 {
		printWarning("%d overlapping pair(s) remain", stats.Overlaps)
	}
}
