// Package io reads and writes memeforge scene documents and decodes the
// image files they reference.
//
// # JSON Format
//
// A scene document records the canvas and every element of the scene:
//
//	{
//	  "version": 1,
//	  "canvas": {"width": 800, "height": 800},
//	  "images": [
//	    {"id": "img_1", "src": "cat.png", "width": 400, "height": 300,
//	     "x": 200, "y": 250, "scale_factor": 1}
//	  ],
//	  "texts": [
//	    {"id": "txt_1", "content": "TOP TEXT", "x": 250, "y": 20,
//	     "font_size": 36, "color": "#ffffff", "width": 300}
//	  ]
//	}
//
// Image sources are file paths, resolved relative to the document's
// directory when they are not absolute.
//
// # Import
//
// Use [ImportJSON] to read a document from a path, or [ReadJSON] to read
// from any io.Reader. Both validate the canvas and the scene invariants;
// the returned error carries an [errors.Code] from pkg/errors.
//
//	doc, err := io.ImportJSON("meme.json")
//
// # Export
//
// Use [ExportJSON] to write a document to a file, or [WriteJSON] to write
// to any io.Writer. Output is indented and round-trips through ReadJSON.
//
// # Images
//
// [ImageDecoder] implements the editor's decoder by reading only the image
// header, and [ImageDecoder.Load] decodes full bitmaps for rasterizing.
// PNG, JPEG, GIF, WebP, BMP and TIFF are supported.
//
// [errors.Code]: github.com/matzehuels/memeforge/pkg/errors.Code
package io
