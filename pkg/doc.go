// Package pkg provides the core libraries of memeforge, a meme editor.
//
// # Overview
//
// A meme is a scene: images and captions placed on a fixed-size canvas.
// Images can be arranged automatically so they read as a balanced
// collage, edited by hand with gestures, and exported as PNG, SVG or a
// JSON scene document. The pkg directory is organized into three areas:
//
//  1. Domain - the data model and the algorithms ([scene], [layout], [history])
//  2. Editing - the glue that applies user actions to a scene ([editor])
//  3. Infrastructure - documents, rendering, caching and settings
//     ([io], [render], [pipeline], [cache], [config])
//
// # Architecture
//
// The typical data flow through the CLI:
//
//	image files
//	     ↓
//	[io] package (decode images, read scene documents)
//	     ↓
//	[layout] package (balanced split arrangement)
//	     ↓
//	[render] package (PNG, SVG, JSON)
//
// The interactive editor keeps the scene in a [scene.Store], records a
// snapshot in a [history.Log] after every committed change, and hands the
// current elements to a renderer.
//
// # Quick Start
//
// Arrange two images and render the result:
//
//	import (
//	    "context"
//	    "github.com/matzehuels/memeforge/pkg/geometry"
//	    "github.com/matzehuels/memeforge/pkg/io"
//	    "github.com/matzehuels/memeforge/pkg/pipeline"
//	)
//
//	doc, _ := pipeline.Compose(ctx, pipeline.ComposeOptions{
//	    Images:  []string{"cat.png", "dog.jpg"},
//	    Texts:   []string{"WHEN THE BUILD PASSES"},
//	    Canvas:  geometry.Size{Width: 800, Height: 800},
//	    Decoder: io.ImageDecoder{},
//	    Arrange: true,
//	})
//	out, _ := pipeline.Render(ctx, doc, pipeline.Options{Formats: []string{"png"}})
//
// # Main Packages
//
// [scene] - Image and text elements, selection and the scene store.
//
// [geometry] - Rectangles and sizes shared by every other package.
//
// [layout] - The arrangement engine: recursive balanced splits with a
// seeded random fallback, padding rules and caption bands.
//
// [history] - Bounded linear undo/redo over scene snapshots.
//
// [editor] - Add, edit, transform, reorder and delete elements; pointer
// gestures; debounced text edits; export.
//
// [io] - Scene documents and image decoding.
//
// [render] - PNG rasterization, SVG and JSON output, terminal previews.
//
// [pipeline] - Compose, arrange and render documents with optional caching.
//
// [cache] - File and in-memory caches with scoped keys.
//
// [config] - TOML settings for canvas, layout, history, editor and render.
//
// [errors] - Structured error codes.
//
// [observability] - Hooks for metrics and tracing.
//
// [scene]: https://pkg.go.dev/github.com/matzehuels/memeforge/pkg/scene
// [geometry]: https://pkg.go.dev/github.com/matzehuels/memeforge/pkg/geometry
// [layout]: https://pkg.go.dev/github.com/matzehuels/memeforge/pkg/layout
// [history]: https://pkg.go.dev/github.com/matzehuels/memeforge/pkg/history
// [editor]: https://pkg.go.dev/github.com/matzehuels/memeforge/pkg/editor
// [io]: https://pkg.go.dev/github.com/matzehuels/memeforge/pkg/io
// [render]: https://pkg.go.dev/github.com/matzehuels/memeforge/pkg/render
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/memeforge/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/memeforge/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/memeforge/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/memeforge/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/memeforge/pkg/observability
// [scene.Store]: https://pkg.go.dev/github.com/matzehuels/memeforge/pkg/scene#Store
// [history.Log]: https://pkg.go.dev/github.com/matzehuels/memeforge/pkg/history#Log
package pkg
