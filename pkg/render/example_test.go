package render_test

import (
	"fmt"
	"strings"

	"github.com/matzehuels/memeforge/pkg/geometry"
	"github.com/matzehuels/memeforge/pkg/render"
	"github.com/matzehuels/memeforge/pkg/scene"
)

func ExamplePreview() {
	s := scene.Scene{
		Images: []scene.ImageElement{
			{ID: "a", Width: 20, Height: 20, ScaleFactor: 1},
			{ID: "b", Width: 16, Height: 12, X: 22, Y: 4, ScaleFactor: 1},
		},
		Texts: []scene.TextElement{
			{ID: "t", Content: "MEME", Y: 16, FontSize: 4, Width: 40},
		},
	}
	grid := render.Preview(s, geometry.Size{Width: 40, Height: 20}, 20, 5, "b")
	for _, line := range render.PreviewLines(grid) {
		fmt.Println(line + "|")
	}
	// Output:
	// ··········          |
	// ·11111111· ######## |
	// ·11111111· #222222# |
	// ·11111111· ######## |
	// ········MEME        |
}

func ExampleRenderSVG() {
	s := scene.Scene{Images: []scene.ImageElement{
		{ID: "img_1", Source: "cat.png", Width: 400, Height: 300, X: 100, Y: 150, ScaleFactor: 1},
	}}
	svg, _ := render.RenderSVG(s, geometry.Size{Width: 600, Height: 600})
	for _, line := range strings.Split(strings.TrimSpace(string(svg)), "\n") {
		fmt.Println(strings.TrimSpace(line))
	}
	// Output:
	// <svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 600.0 600.0" width="600" height="600">
	// <rect width="100%" height="100%" fill="#ffffff"/>
	// <g id="img_1">
	// <image href="cat.png" x="100.00" y="150.00" width="400.00" height="300.00" preserveAspectRatio="none"/>
	// </g>
	// </svg>
}
