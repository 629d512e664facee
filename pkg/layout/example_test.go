package layout_test

import (
	"fmt"

	"github.com/matzehuels/memeforge/pkg/geometry"
	"github.com/matzehuels/memeforge/pkg/layout"
	"github.com/matzehuels/memeforge/pkg/scene"
)

func ExampleArrange() {
	images := []scene.ImageElement{
		{ID: "img_cat", Width: 200, Height: 200, ScaleFactor: 1},
		{ID: "img_dog", Width: 800, Height: 400, ScaleFactor: 1},
	}
	texts := []scene.TextElement{
		{ID: "txt_top", Content: "WHEN THE BUILD PASSES", Y: 10, FontSize: 36, Width: 300},
	}
	canvas := geometry.Size{Width: 600, Height: 600}

	res, err := layout.Arrange(images, texts, canvas, layout.Options{Seed: 1})
	if err != nil {
		fmt.Println("error:", err)
		return
	}

	placed := res.Apply(images)
	stats := layout.Measure(placed, canvas, res.Padding)

	fmt.Printf("Padding: %v\n", res.Padding)
	fmt.Printf("Placements: %d\n", len(res.Placements))
	fmt.Printf("Outside: %d, overlaps: %d\n", stats.Outside, stats.Overlaps)
	fmt.Printf("Caption at y=%v\n", res.ApplyTexts(texts)[0].Y)
	// Output:
	// Padding: 14
	// Placements: 2
	// Outside: 0, overlaps: 0
	// Caption at y=20
}

func ExamplePaddingFor() {
	for _, n := range []int{1, 4, 30} {
		fmt.Printf("%d images: %vpx\n", n, layout.PaddingFor(n))
	}
	// Output:
	// 1 images: 14.5px
	// 4 images: 13px
	// 30 images: 5px
}
