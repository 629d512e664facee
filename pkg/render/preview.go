package render

import (
	"math"

	"github.com/matzehuels/memeforge/pkg/geometry"
	"github.com/matzehuels/memeforge/pkg/scene"
)

// Preview cell runes.
const (
	CellEmpty    = ' '
	CellBorder   = '·'
	CellSelected = '#'
)

// PreviewCell is one character of a terminal preview. Element is the id
// of the topmost element covering the cell, or empty.
type PreviewCell struct {
	Rune    rune
	Element string
}

// Preview draws a character-grid sketch of the scene, cols wide and rows
// high, for terminal front ends. Images are drawn as outlined boxes filled
// with their paint-order label (1-9, then a-z), captions as their text.
// The element with id selected gets a '#' outline.
func Preview(s scene.Scene, canvas geometry.Size, cols, rows int, selected string) [][]PreviewCell {
	if cols <= 0 || rows <= 0 || canvas.Width <= 0 || canvas.Height <= 0 {
		return nil
	}
	grid := make([][]PreviewCell, rows)
	for y := range grid {
		grid[y] = make([]PreviewCell, cols)
		for x := range grid[y] {
			grid[y][x].Rune = CellEmpty
		}
	}
	sx, sy := float64(cols)/canvas.Width, float64(rows)/canvas.Height

	cellRect := func(r geometry.Rect) (x0, y0, x1, y1 int) {
		x0 = clampInt(int(math.Floor(r.X*sx)), 0, cols-1)
		y0 = clampInt(int(math.Floor(r.Y*sy)), 0, rows-1)
		x1 = clampInt(int(math.Ceil(r.Right()*sx))-1, x0, cols-1)
		y1 = clampInt(int(math.Ceil(r.Bottom()*sy))-1, y0, rows-1)
		return x0, y0, x1, y1
	}

	for i, img := range s.Images {
		r := img.RotatedBounds()
		if r.Right() <= 0 || r.Bottom() <= 0 || r.X >= canvas.Width || r.Y >= canvas.Height {
			continue
		}
		x0, y0, x1, y1 := cellRect(r)
		border := CellBorder
		if img.ID == selected {
			border = CellSelected
		}
		for y := y0; y <= y1; y++ {
			for x := x0; x <= x1; x++ {
				ch := Label(i)
				if y == y0 || y == y1 || x == x0 || x == x1 {
					ch = border
				}
				grid[y][x] = PreviewCell{Rune: ch, Element: img.ID}
			}
		}
	}

	for _, t := range s.Texts {
		x0, y0, x1, _ := cellRect(t.Bounds())
		text := []rune(t.Content)
		if t.ID == selected {
			text = append(append([]rune{'['}, text...), ']')
		}
		width := x1 - x0 + 1
		if len(text) > width {
			text = text[:width]
		}
		start := x0 + (width-len(text))/2
		for i, ch := range text {
			if ch == '\n' {
				ch = ' '
			}
			grid[y0][start+i] = PreviewCell{Rune: ch, Element: t.ID}
		}
	}
	return grid
}

// Label returns the preview label for the image at paint-order index i.
func Label(i int) rune {
	switch {
	case i < 9:
		return rune('1' + i)
	case i < 9+26:
		return rune('a' + i - 9)
	}
	return '*'
}

// PreviewLines flattens a preview grid into strings.
func PreviewLines(grid [][]PreviewCell) []string {
	lines := make([]string, len(grid))
	for y, row := range grid {
		rs := make([]rune, len(row))
		for x, c := range row {
			rs[x] = c.Rune
		}
		lines[y] = string(rs)
	}
	return lines
}

func clampInt(v, lo, hi int) int {
	return max(lo, min(v, hi))
}
