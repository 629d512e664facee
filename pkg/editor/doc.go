// Package editor ties the scene store, the layout engine and the history
// log into the flows a meme editor exposes.
//
// # Flows
//
// Every flow follows the same shape: mutate the [scene.Store], record a
// snapshot in the [history.Log], then ask the [Renderer] to repaint.
// Failures are reported through the [Notifier] and never leave a partial
// change behind.
//
//   - Discrete edits ([Editor.AddImage], [Editor.Duplicate], [Editor.Delete], [Editor.Arrange],
//     [Editor.Crop], ...) commit one snapshot each.
//   - Continuous edits ([Editor.UpdateText], [Editor.SetFontSize],
//     [Editor.SetImageScale]) repaint immediately and commit a single
//     snapshot once the edits pause for [DefaultDebounce]. Any discrete
//     edit commits a pending continuous edit first.
//   - Pointer gestures ([Editor.BeginDrag], [Editor.BeginResize],
//     [Editor.BeginRotate]) repaint on every [Gesture.Move] and commit
//     exactly one snapshot on [Gesture.End]; a drag that changed nothing
//     commits none. Dragged images snap to the centers of other images
//     and of the canvas. While a gesture is active other edits fail with
//     GESTURE_ACTIVE.
//
// # Collaborators
//
// Image decoding ([Decoder]) and flattening ([Rasterizer]) are injected.
// The pkg/io and pkg/render packages provide the file-based and PNG
// implementations used by the command line tool.
//
// # Example
//
//	ed, err := editor.New(nil, geometry.Size{Width: 600, Height: 600},
//	    editor.WithDecoder(io.ImageDecoder{}),
//	    editor.WithRasterizer(render.NewPNGRasterizer()),
//	)
//	if err != nil {
//	    return err
//	}
//	defer ed.Close()
//
//	ed.AddImage(ctx, "cat.png")
//	ed.AddImage(ctx, "dog.jpg")
//	ed.Arrange(ctx)
//	png, err := ed.Export(ctx)
package editor
