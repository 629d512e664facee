package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"

	"github.com/matzehuels/memeforge/pkg/geometry"
	mfio "github.com/matzehuels/memeforge/pkg/io"
	"github.com/matzehuels/memeforge/pkg/layout"
	"github.com/matzehuels/memeforge/pkg/render"
	"github.com/matzehuels/memeforge/pkg/scene"
)

// inspectCommand creates the inspect command for summarizing a scene.
func (c *CLI) inspectCommand() *cobra.Command {
	var preview bool

	cmd := &cobra.Command{
		Use:               "inspect [scene.json]",
		Short:             "Show the elements and layout quality of a scene",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeScenes,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runInspect(cmd.Context(), args[0], preview)
		},
	}

	cmd.Flags().BoolVar(&preview, "preview", false, "draw a character preview of the canvas")

	return cmd
}

// runInspect prints the scene summary, the element table and the layout
// quality figures.
func (c *CLI) runInspect(ctx context.Context, input string, preview bool) error {
	doc, err := mfio.ImportJSON(input)
	if err != nil {
		return fmt.Errorf("load scene %s: %w", input, err)
	}
	loggerFromContext(ctx).Debug("inspecting scene", "path", input, "version", doc.Version)

	fmt.Println(StyleTitle.Render(input))
	printKeyValue("Canvas", fmt.Sprintf("%.0f × %.0f", doc.Canvas.Width, doc.Canvas.Height))
	if doc.Seed != 0 {
		printKeyValue("Seed", fmt.Sprintf("%d", doc.Seed))
	}
	printKeyValue("Elements", fmt.Sprintf("%s, %s", plural(len(doc.Images), "image"), plural(len(doc.Texts), "caption")))

	if doc.IsEmpty() {
		printNewline()
		printInfo("Scene is empty")
		return nil
	}

	printNewline()
	fmt.Println(elementTable(doc.Scene, ""))

	if len(doc.Images) > 0 {
		stats := layout.Measure(doc.Images, doc.Canvas, layout.PaddingFor(len(doc.Images)))
		printNewline()
		printKeyValue("Area spread", fmt.Sprintf("%.1f%% (source %.1f%%)", stats.AreaCV*100, stats.IntrinsicCV*100))
		printKeyValue("Coverage", fmt.Sprintf("%.0f%%", stats.Coverage*100))
		printKeyValue("Overlaps", fmt.Sprintf("%d", stats.Overlaps))
		printKeyValue("Outside", fmt.Sprintf("%d", stats.Outside))
		if stats.Overlaps > 0 || stats.Outside > 0 {
			printNewline()
			printNextStep("Fix the layout", fmt.Sprintf("%s arrange %s", appName, input))
		}
	}

	if preview {
		cols := 64
		rows := max(int(float64(cols)*doc.Canvas.Height/doc.Canvas.Width/2), 1)
		printNewline()
		fmt.Println(previewBox(doc.Scene, doc.Canvas, cols, rows, ""))
	}
	return nil
}

// elementTable renders images and captions in paint order. The row of the
// element with id selected is highlighted.
func elementTable(s scene.Scene, selected string) string {
	var ids []string
	var rows [][]string
	for i, img := range s.Images {
		ids = append(ids, img.ID)
		rows = append(rows, []string{
			string(render.Label(i)),
			img.ID,
			truncate(img.Source, 28),
			fmt.Sprintf("%.0f×%.0f", img.DisplayedWidth(), img.DisplayedHeight()),
			fmt.Sprintf("%.0f,%.0f", img.X, img.Y),
			fmt.Sprintf("%.2f", img.ScaleFactor),
			fmt.Sprintf("%.0f°", img.Rotation),
		})
	}
	for _, t := range s.Texts {
		ids = append(ids, t.ID)
		rows = append(rows, []string{
			"T",
			t.ID,
			truncate(fmt.Sprintf("%q", t.Content), 28),
			fmt.Sprintf("%.0fpx", t.FontSize),
			fmt.Sprintf("%.0f,%.0f", t.X, t.Y),
			"",
			"",
		})
	}

	headerStyle := lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers("", "ID", "Content", "Size", "Position", "Scale", "Rotation").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			base := lipgloss.NewStyle().Padding(0, 1)
			if row < len(ids) && ids[row] == selected {
				return base.Foreground(colorCyan).Bold(true)
			}
			if col == 0 || col == 1 {
				return base.Foreground(colorDim)
			}
			return base
		})
	return t.Render()
}

// previewBox renders a bordered character preview of a scene.
func previewBox(s scene.Scene, canvas geometry.Size, cols, rows int, selected string) string {
	grid := render.Preview(s, canvas, cols, rows, selected)
	var b strings.Builder
	for y, row := range grid {
		if y > 0 {
			b.WriteByte('\n')
		}
		for _, cell := range row {
			ch := string(cell.Rune)
			switch {
			case cell.Element != "" && cell.Element == selected:
				b.WriteString(StyleHighlight.Render(ch))
			case cell.Rune == render.CellBorder:
				b.WriteString(StyleDim.Render(ch))
			default:
				b.WriteString(ch)
			}
		}
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorDim).
		Render(b.String())
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
