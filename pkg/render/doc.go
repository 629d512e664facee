// Package render turns scenes into output formats.
//
// # Formats
//
//   - [RenderSVG]: a vector document that references the image files.
//     Rotation and crop are expressed with SVG transforms and viewports,
//     captions as outlined text. [WithEmbeddedFont] makes it portable.
//   - [PNGRasterizer]: a bitmap, resampled with golang.org/x/image/draw
//     and captioned with the embedded Go Bold font. It implements the
//     editor's Rasterizer, so it backs both `memeforge render` and the
//     editor's export.
//   - [RenderJSON]: the computed geometry (displayed rectangles, wrapped
//     caption lines, optional layout statistics) for external tools.
//   - [Preview]: a character grid for terminal front ends.
//
// Captions wrap to their box width using the font metrics, so SVG, PNG
// and JSON agree on line breaks.
//
// # Usage
//
//	svg, err := render.RenderSVG(doc.Scene, doc.Canvas, render.WithEmbeddedFont())
//
//	r := render.NewPNGRasterizer(io.ImageDecoder{Root: dir}, render.WithScale(2))
//	png, err := r.Flatten(ctx, doc.Scene, doc.Canvas)
package render
