package editor

import (
	"context"
	"fmt"
	"io"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/memeforge/pkg/errors"
	"github.com/matzehuels/memeforge/pkg/geometry"
	"github.com/matzehuels/memeforge/pkg/history"
	"github.com/matzehuels/memeforge/pkg/layout"
	"github.com/matzehuels/memeforge/pkg/observability"
	"github.com/matzehuels/memeforge/pkg/scene"
)

// FitRatio is the share of the canvas a newly added image may cover.
const FitRatio = 0.8

// Editor drives a scene: every editing flow mutates the store, records
// history and asks the renderer to repaint. It is safe for concurrent use;
// each operation runs to completion under the editor's lock.
type Editor struct {
	mu      sync.Mutex
	store   scene.Store
	history *history.Log
	canvas  geometry.Size

	renderer   Renderer
	notifier   Notifier
	rasterizer Rasterizer
	decoder    Decoder
	logger     *log.Logger

	imageIDs    scene.IDGenerator
	textIDs     scene.IDGenerator
	layoutOpts  layout.Options
	historyOpts []history.Option

	debounceDelay time.Duration
	debounce      *debouncer

	gesture   *Gesture
	listeners *Listeners
}

// New returns an editor over store for a canvas of the given size. A nil
// store starts from an empty scene. The history is seeded with the store's
// current content.
func New(store scene.Store, canvas geometry.Size, opts ...Option) (*Editor, error) {
	if err := errors.ValidateCanvas(canvas.Width, canvas.Height); err != nil {
		return nil, err
	}
	if store == nil {
		store = scene.NewMemoryStore(scene.Scene{})
	}
	if err := store.Snapshot().Validate(); err != nil {
		return nil, err
	}

	e := &Editor{
		store:         store,
		canvas:        canvas,
		renderer:      NopRenderer{},
		notifier:      NopNotifier{},
		logger:        log.New(io.Discard),
		imageIDs:      scene.Prefixed(scene.ImagePrefix, scene.UUIDv7()),
		textIDs:       scene.Prefixed(scene.TextPrefix, scene.UUIDv7()),
		debounceDelay: DefaultDebounce,
		listeners:     &Listeners{},
	}
	for _, opt := range opts {
		opt(e)
	}
	e.history = history.New(store, e.historyOpts...)
	e.debounce = newDebouncer(e.debounceDelay, e.flushFromTimer)
	return e, nil
}

// =============================================================================
// Accessors
// =============================================================================

// Scene returns a copy of the live scene.
func (e *Editor) Scene() scene.Scene { return e.store.Snapshot() }

// Selection returns the selected element.
func (e *Editor) Selection() scene.Selection { return e.store.Selection() }

// History returns the editor's history log.
func (e *Editor) History() *history.Log { return e.history }

// Listeners returns the listener registry used by gestures.
func (e *Editor) Listeners() *Listeners { return e.listeners }

// Canvas returns the canvas size.
func (e *Editor) Canvas() geometry.Size {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.canvas
}

// Pending reports whether a debounced edit waits to be committed.
func (e *Editor) Pending() bool { return e.debounce.isPending() }

// =============================================================================
// Adding elements
// =============================================================================

// AddImage decodes src and places it at the canvas center, scaled down to
// fit [FitRatio] of the canvas. It returns the new element's id.
//
// Decoding runs without holding the editor's lock. A decode failure or a
// zero-area image leaves the scene and history untouched.
func (e *Editor) AddImage(ctx context.Context, src string) (string, error) {
	if e.decoder == nil {
		return "", errors.New(errors.ErrCodeInternal, "no image decoder configured")
	}

	start := time.Now()
	decoded, err := e.decoder.Decode(ctx, src)
	observability.Editor().OnDecode(ctx, src, time.Since(start), err)
	if err != nil {
		if errors.GetCode(err) == "" {
			err = errors.Wrap(errors.ErrCodeDecodeFailed, err, "decode %s", src)
		}
		e.logger.Error("decode failed", "src", src, "err", err)
		e.notify("Error loading image. Please try another file.", LevelError)
		return "", err
	}
	if err := errors.ValidateDimensions("image "+src, float64(decoded.Width), float64(decoded.Height)); err != nil {
		e.notify("Image has no visible area", LevelWarning)
		return "", err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.idleLocked(); err != nil {
		return "", err
	}
	e.flushLocked(ctx)

	w, h := float64(decoded.Width), float64(decoded.Height)
	scale := fitScale(w, h, e.canvas)
	source := decoded.Source
	if source == "" {
		source = src
	}
	img := scene.ImageElement{
		ID:          e.imageIDs(),
		Source:      source,
		Width:       w,
		Height:      h,
		X:           (e.canvas.Width - w*scale) / 2,
		Y:           (e.canvas.Height - h*scale) / 2,
		ScaleFactor: scale,
	}

	e.store.SetImages(append(e.store.Images(), img))
	e.store.Select(scene.Selection{Kind: scene.KindImage, ID: img.ID})
	e.commitLocked(ctx, "add image")
	e.renderLocked()
	e.logger.Debug("image added", "id", img.ID, "src", source, "size", decoded.Width*decoded.Height)
	e.notify("Image added successfully", LevelSuccess)
	return img.ID, nil
}

// AddText adds a caption with the default style at the canvas center and
// returns its id.
func (e *Editor) AddText(content string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.idleLocked(); err != nil {
		return "", err
	}
	ctx := context.Background()
	e.flushLocked(ctx)

	txt := scene.TextElement{
		ID:       e.textIDs(),
		Content:  content,
		FontSize: scene.DefaultFontSize,
		Color:    scene.DefaultTextColor,
		Width:    scene.DefaultTextWidth,
	}
	txt.X, txt.Y = layout.PositionText(layout.AnchorMiddle, e.canvas, txt.Bounds().Size())

	e.store.SetTexts(append(e.store.Texts(), txt))
	e.store.Select(scene.Selection{Kind: scene.KindText, ID: txt.ID})
	e.commitLocked(ctx, "add text")
	e.renderLocked()
	e.notify("Text added", LevelSuccess)
	return txt.ID, nil
}

// =============================================================================
// Continuous edits (debounced)
// =============================================================================

// UpdateText replaces a caption's content. The view updates immediately;
// history records one snapshot after the edits pause.
func (e *Editor) UpdateText(id, content string) error {
	return e.editText(id, "edit text", func(t *scene.TextElement) error {
		t.Content = content
		return nil
	})
}

// SetFontSize sets a caption's font size in pixels (debounced).
func (e *Editor) SetFontSize(id string, px float64) error {
	return e.editText(id, "font size", func(t *scene.TextElement) error {
		if !(px > 0) || math.IsInf(px, 0) {
			return errors.New(errors.ErrCodeInvalidInput, "font size must be positive, got %v", px)
		}
		t.FontSize = px
		return nil
	})
}

// SetImageScale sets an image's scale factor, keeping its center in place
// (debounced).
func (e *Editor) SetImageScale(id string, scale float64) error {
	if !(scale > 0) || math.IsInf(scale, 0) {
		return errors.New(errors.ErrCodeInvalidInput, "scale must be positive, got %v", scale)
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.idleLocked(); err != nil {
		return err
	}
	images, i, err := e.imageLocked(id)
	if err != nil {
		return err
	}

	img := &images[i]
	cx, cy := img.Bounds().CenterX(), img.Bounds().CenterY()
	img.ScaleFactor = scale
	img.X = cx - img.DisplayedWidth()/2
	img.Y = cy - img.DisplayedHeight()/2

	e.store.SetImages(images)
	e.renderLocked()
	e.scheduleLocked("scale image")
	return nil
}

func (e *Editor) editText(id, label string, fn func(*scene.TextElement) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.idleLocked(); err != nil {
		return err
	}
	texts, i, err := e.textLocked(id)
	if err != nil {
		return err
	}
	if err := fn(&texts[i]); err != nil {
		return err
	}

	e.store.SetTexts(texts)
	e.renderLocked()
	e.scheduleLocked(label)
	return nil
}

// =============================================================================
// Discrete edits
// =============================================================================

// SetTextColor sets a caption's color, given as #rgb or #rrggbb.
func (e *Editor) SetTextColor(id, color string) error {
	if err := errors.ValidateColor(color); err != nil {
		return err
	}
	return e.commitText(id, "text color", func(t *scene.TextElement) {
		t.Color = color
	})
}

// PositionText pins a caption to the top, middle or bottom of the canvas,
// horizontally centered.
func (e *Editor) PositionText(id string, anchor layout.Anchor) error {
	canvas := e.Canvas()
	return e.commitText(id, "position text", func(t *scene.TextElement) {
		t.X, t.Y = layout.PositionText(anchor, canvas, t.Bounds().Size())
	})
}

// MoveTo places the top-left corner of an image or caption at (x, y).
func (e *Editor) MoveTo(id string, x, y float64) error {
	if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
		return errors.New(errors.ErrCodeInvalidInput, "position must be finite, got (%v, %v)", x, y)
	}
	return e.commitElement(id, "move",
		func(img *scene.ImageElement) { img.X, img.Y = x, y },
		func(t *scene.TextElement) { t.X, t.Y = x, y },
	)
}

// Rotate turns an image by deg degrees about its center.
func (e *Editor) Rotate(id string, deg float64) error {
	if math.IsNaN(deg) || math.IsInf(deg, 0) {
		return errors.New(errors.ErrCodeInvalidInput, "rotation must be finite, got %v", deg)
	}
	return e.commitImage(id, "rotate", func(img *scene.ImageElement) error {
		img.Rotation = scene.NormalizeRotation(img.Rotation + deg)
		return nil
	})
}

// Crop narrows an image to r, given in the pixels of its current
// (possibly already cropped) source. The visible part stays where it was
// on the canvas.
func (e *Editor) Crop(id string, r geometry.Rect) error {
	err := e.commitImage(id, "crop", func(img *scene.ImageElement) error {
		if !r.Finite() || r.X < 0 || r.Y < 0 || r.Right() > img.Width+1e-9 || r.Bottom() > img.Height+1e-9 {
			return errors.New(errors.ErrCodeInvalidInput, "crop %+v outside image %gx%g", r, img.Width, img.Height)
		}
		if err := errors.ValidateDimensions("crop", r.Width, r.Height); err != nil {
			return err
		}

		crop := r
		if img.Crop != nil {
			crop = r.Translate(img.Crop.X, img.Crop.Y)
		}
		img.X += r.X * img.ScaleFactor
		img.Y += r.Y * img.ScaleFactor
		img.Width, img.Height = r.Width, r.Height
		img.Crop = &crop
		return nil
	})
	if err == nil {
		e.notify("Image cropped successfully", LevelSuccess)
	}
	return err
}

// ResetTransform clears an image's rotation and refits it to the canvas
// around its current center.
func (e *Editor) ResetTransform(id string) error {
	canvas := e.Canvas()
	err := e.commitImage(id, "reset transform", func(img *scene.ImageElement) error {
		cx, cy := img.Bounds().CenterX(), img.Bounds().CenterY()
		img.Rotation = 0
		img.ScaleFactor = fitScale(img.Width, img.Height, canvas)
		img.X = cx - img.DisplayedWidth()/2
		img.Y = cy - img.DisplayedHeight()/2
		return nil
	})
	if err == nil {
		e.notify("Image transform reset", LevelInfo)
	}
	return err
}

// Delete removes an image or caption. Images are looked up first.
func (e *Editor) Delete(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.idleLocked(); err != nil {
		return err
	}
	ctx := context.Background()
	e.flushLocked(ctx)

	msg := "Image deleted"
	if images := e.store.Images(); slices.ContainsFunc(images, byImageID(id)) {
		e.store.SetImages(slices.DeleteFunc(images, byImageID(id)))
	} else if texts := e.store.Texts(); slices.ContainsFunc(texts, byTextID(id)) {
		e.store.SetTexts(slices.DeleteFunc(texts, byTextID(id)))
		msg = "Text deleted"
	} else {
		return e.missing("element", id)
	}

	if e.store.Selection().ID == id {
		e.store.Select(scene.Selection{})
	}
	e.commitLocked(ctx, "delete")
	e.renderLocked()
	e.notify(msg, LevelInfo)
	return nil
}

// DuplicateOffset is how far a duplicate is shifted from its original.
const DuplicateOffset = 20.0

// Duplicate copies an image or caption under a fresh id, shifted by
// [DuplicateOffset] on both axes, and selects the copy. A duplicated image
// is pulled back inside the canvas when the shift pushes it past the right
// or bottom edge. It returns the copy's id.
func (e *Editor) Duplicate(id string) (string, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.idleLocked(); err != nil {
		return "", err
	}
	ctx := context.Background()
	e.flushLocked(ctx)

	var sel scene.Selection
	if images := e.store.Images(); slices.ContainsFunc(images, byImageID(id)) {
		img := images[slices.IndexFunc(images, byImageID(id))].Clone()
		img.ID = e.imageIDs()
		img.X, img.Y = img.X+DuplicateOffset, img.Y+DuplicateOffset
		if img.X+img.DisplayedWidth() > e.canvas.Width {
			img.X = math.Max(0, e.canvas.Width-img.DisplayedWidth())
		}
		if img.Y+img.DisplayedHeight() > e.canvas.Height {
			img.Y = math.Max(0, e.canvas.Height-img.DisplayedHeight())
		}
		e.store.SetImages(append(images, img))
		sel = scene.Selection{Kind: scene.KindImage, ID: img.ID}
	} else if texts := e.store.Texts(); slices.ContainsFunc(texts, byTextID(id)) {
		txt := texts[slices.IndexFunc(texts, byTextID(id))]
		txt.ID = e.textIDs()
		txt.X, txt.Y = txt.X+DuplicateOffset, txt.Y+DuplicateOffset
		e.store.SetTexts(append(texts, txt))
		sel = scene.Selection{Kind: scene.KindText, ID: txt.ID}
	} else {
		return "", e.missing("element", id)
	}

	e.store.Select(sel)
	e.commitLocked(ctx, "duplicate")
	e.renderLocked()
	e.notify("Element duplicated", LevelSuccess)
	return sel.ID, nil
}

// BringToFront moves an element to the end of its paint order.
func (e *Editor) BringToFront(id string) error {
	return e.reorder(id, "bring to front", true)
}

// SendToBack moves an element to the start of its paint order.
func (e *Editor) SendToBack(id string) error {
	return e.reorder(id, "send to back", false)
}

func (e *Editor) reorder(id, label string, front bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.idleLocked(); err != nil {
		return err
	}
	ctx := context.Background()
	e.flushLocked(ctx)

	if images := e.store.Images(); slices.ContainsFunc(images, byImageID(id)) {
		e.store.SetImages(moveTo(images, slices.IndexFunc(images, byImageID(id)), front))
	} else if texts := e.store.Texts(); slices.ContainsFunc(texts, byTextID(id)) {
		e.store.SetTexts(moveTo(texts, slices.IndexFunc(texts, byTextID(id)), front))
	} else {
		return e.missing("element", id)
	}

	e.commitLocked(ctx, label)
	e.renderLocked()
	return nil
}

func moveTo[T any](s []T, i int, front bool) []T {
	v := s[i]
	s = slices.Delete(s, i, i+1)
	if front {
		return append(s, v)
	}
	return slices.Insert(s, 0, v)
}

// Select marks an element as the one being edited. Images are looked up
// first.
func (e *Editor) Select(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	switch {
	case slices.ContainsFunc(e.store.Images(), byImageID(id)):
		e.store.Select(scene.Selection{Kind: scene.KindImage, ID: id})
	case slices.ContainsFunc(e.store.Texts(), byTextID(id)):
		e.store.Select(scene.Selection{Kind: scene.KindText, ID: id})
	default:
		return e.missing("element", id)
	}
	e.renderLocked()
	return nil
}

// Deselect clears the selection.
func (e *Editor) Deselect() {
	e.store.Select(scene.Selection{})
}

// =============================================================================
// Whole-scene operations
// =============================================================================

// Arrange runs the layout engine on the current images, writes the
// placements back by id and records one snapshot. An empty scene is
// rejected with [errors.ErrCodeEmptyArrangement].
func (e *Editor) Arrange(ctx context.Context) (layout.Result, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.idleLocked(); err != nil {
		return layout.Result{}, err
	}
	e.flushLocked(ctx)

	res, err := e.arrangeLocked(ctx)
	if err != nil {
		if errors.Is(err, errors.ErrCodeEmptyArrangement) {
			e.notify("Add some images first", LevelWarning)
		} else {
			e.notify("Could not arrange images", LevelError)
		}
		return layout.Result{}, err
	}
	e.commitLocked(ctx, "arrange")
	e.renderLocked()
	e.notify("Images arranged optimally", LevelSuccess)
	return res, nil
}

func (e *Editor) arrangeLocked(ctx context.Context) (layout.Result, error) {
	images := e.store.Images()
	if len(images) == 0 {
		return layout.Result{}, errors.New(errors.ErrCodeEmptyArrangement, "no images to arrange")
	}
	texts := e.store.Texts()

	start := time.Now()
	observability.Pipeline().OnLayoutStart(ctx, len(images))
	res, err := layout.Arrange(images, texts, e.canvas, e.layoutOpts)
	observability.Pipeline().OnLayoutComplete(ctx, len(images), res.Fallbacks, time.Since(start), err)
	if err != nil {
		e.logger.Error("arrange failed", "images", len(images), "err", err)
		return layout.Result{}, err
	}

	e.store.SetImages(res.Apply(images))
	if res.Texts != nil {
		e.store.SetTexts(res.ApplyTexts(texts))
	}
	e.logger.Info("arranged", "images", len(images), "seed", res.Seed, "passes", res.Passes, "fallback", res.FallbackUsed)
	return res, nil
}

// SetCanvas changes the canvas size and, when the scene has images,
// re-arranges them for the new shape.
func (e *Editor) SetCanvas(ctx context.Context, size geometry.Size) error {
	if err := errors.ValidateCanvas(size.Width, size.Height); err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.idleLocked(); err != nil {
		return err
	}
	e.flushLocked(ctx)

	prev := e.canvas
	e.canvas = size
	if len(e.store.Images()) > 0 {
		if _, err := e.arrangeLocked(ctx); err != nil {
			e.canvas = prev
			return err
		}
		e.commitLocked(ctx, "resize canvas")
	}
	e.renderLocked()
	e.notify(fmtCanvas(size), LevelInfo)
	return nil
}

// Undo steps back one snapshot. It returns false, leaving the scene
// untouched, when there is nothing to undo.
func (e *Editor) Undo() bool {
	return e.step("undo", e.history.Undo, observability.Editor().OnUndo)
}

// Redo steps forward one snapshot. It returns false, leaving the scene
// untouched, when there is nothing to redo.
func (e *Editor) Redo() bool {
	return e.step("redo", e.history.Redo, observability.Editor().OnRedo)
}

func (e *Editor) step(name string, move func() bool, hook func(context.Context, bool)) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.idleLocked(); err != nil {
		return false
	}
	ctx := context.Background()
	e.flushLocked(ctx)

	moved := move()
	hook(ctx, moved)
	if !moved {
		e.notify("Nothing to "+name, LevelInfo)
		return false
	}
	e.renderLocked()
	e.logger.Debug(name, "cursor", e.history.Cursor(), "history", e.history.Len())
	if name == "undo" {
		e.notify("Undo successful", LevelSuccess)
	} else {
		e.notify("Redo successful", LevelSuccess)
	}
	return true
}

// Reset clears the scene and the history. Pending debounced edits are
// dropped.
func (e *Editor) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gesture != nil {
		e.gesture.abortLocked()
	}
	e.debounce.take()

	e.store.Replace(scene.Scene{})
	e.store.Select(scene.Selection{})
	e.history.Reset()
	e.renderLocked()
	e.notify("Canvas reset successfully", LevelSuccess)
}

// Export flattens the scene with the configured rasterizer. A failure
// leaves the scene and history untouched.
func (e *Editor) Export(ctx context.Context) ([]byte, error) {
	if e.rasterizer == nil {
		return nil, errors.New(errors.ErrCodeInternal, "no rasterizer configured")
	}

	e.mu.Lock()
	e.flushLocked(ctx)
	s := e.store.Snapshot()
	canvas := e.canvas
	e.mu.Unlock()

	if len(s.Images) == 0 {
		e.notify("Add an image before exporting", LevelWarning)
		return nil, errors.New(errors.ErrCodeEmptyArrangement, "nothing to export")
	}

	start := time.Now()
	formats := []string{"png"}
	observability.Pipeline().OnRenderStart(ctx, formats)
	data, err := e.rasterizer.Flatten(ctx, s, canvas)
	observability.Pipeline().OnRenderComplete(ctx, formats, time.Since(start), err)
	if err != nil {
		if errors.GetCode(err) == "" {
			err = errors.Wrap(errors.ErrCodeRasterizeFailed, err, "flatten scene")
		}
		e.logger.Error("export failed", "err", err)
		e.notify("Failed to export image", LevelError)
		return nil, err
	}
	e.logger.Debug("exported", "bytes", len(data), "elapsed", time.Since(start).Round(time.Millisecond))
	e.notify("Image exported successfully", LevelSuccess)
	return data, nil
}

// Flush commits a pending debounced edit immediately.
func (e *Editor) Flush() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.flushLocked(context.Background())
}

// Close commits pending edits and releases a gesture still in progress
// by cancelling it.
func (e *Editor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.gesture != nil {
		e.gesture.abortLocked()
	}
	e.flushLocked(context.Background())
	return nil
}

// =============================================================================
// Internal helpers
// =============================================================================

func (e *Editor) commitImage(id, label string, fn func(*scene.ImageElement) error) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.idleLocked(); err != nil {
		return err
	}
	ctx := context.Background()
	e.flushLocked(ctx)

	images, i, err := e.imageLocked(id)
	if err != nil {
		return err
	}
	if err := fn(&images[i]); err != nil {
		return err
	}
	e.store.SetImages(images)
	e.commitLocked(ctx, label)
	e.renderLocked()
	return nil
}

func (e *Editor) commitText(id, label string, fn func(*scene.TextElement)) error {
	return e.commitElement(id, label, nil, fn)
}

func (e *Editor) commitElement(id, label string, onImage func(*scene.ImageElement), onText func(*scene.TextElement)) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.idleLocked(); err != nil {
		return err
	}
	ctx := context.Background()
	e.flushLocked(ctx)

	if onImage != nil {
		if images := e.store.Images(); slices.ContainsFunc(images, byImageID(id)) {
			onImage(&images[slices.IndexFunc(images, byImageID(id))])
			e.store.SetImages(images)
			e.commitLocked(ctx, label)
			e.renderLocked()
			return nil
		}
	}
	texts, i, err := e.textLocked(id)
	if err != nil {
		return err
	}
	onText(&texts[i])
	e.store.SetTexts(texts)
	e.commitLocked(ctx, label)
	e.renderLocked()
	return nil
}

func (e *Editor) imageLocked(id string) ([]scene.ImageElement, int, error) {
	images := e.store.Images()
	i := slices.IndexFunc(images, byImageID(id))
	if i < 0 {
		return nil, -1, e.missing("image", id)
	}
	return images, i, nil
}

func (e *Editor) textLocked(id string) ([]scene.TextElement, int, error) {
	texts := e.store.Texts()
	i := slices.IndexFunc(texts, byTextID(id))
	if i < 0 {
		return nil, -1, e.missing("text", id)
	}
	return texts, i, nil
}

// missing reports a lookup of an id that is not in the scene. It means the
// caller's view of the scene is out of sync, so it is logged loudly.
func (e *Editor) missing(kind, id string) error {
	e.logger.Warn("element not found", "kind", kind, "id", id)
	return errors.New(errors.ErrCodeElementNotFound, "%s %q not found", kind, id)
}

func (e *Editor) idleLocked() error {
	if e.gesture != nil {
		return errors.New(errors.ErrCodeGestureActive, "a %s gesture is in progress", e.gesture.kind)
	}
	return nil
}

func (e *Editor) commitLocked(ctx context.Context, label string) {
	e.history.Save(label)
	n := e.history.Len()
	observability.Editor().OnCommit(ctx, label, n)
	e.logger.Debug("commit", "label", label, "history", n)
}

func (e *Editor) scheduleLocked(label string) {
	if e.debounceDelay <= 0 {
		e.commitLocked(context.Background(), label)
		return
	}
	e.debounce.trigger(label)
}

func (e *Editor) flushLocked(ctx context.Context) {
	if label, ok := e.debounce.take(); ok {
		e.commitLocked(ctx, label)
	}
}

func (e *Editor) flushFromTimer() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.flushLocked(context.Background())
}

func (e *Editor) renderLocked() {
	e.renderer.RenderAll(e.store.Images(), e.store.Texts())
}

func (e *Editor) notify(msg string, level Level) {
	e.notifier.Notify(msg, level)
}

func byImageID(id string) func(scene.ImageElement) bool {
	return func(img scene.ImageElement) bool { return img.ID == id }
}

func byTextID(id string) func(scene.TextElement) bool {
	return func(t scene.TextElement) bool { return t.ID == id }
}

// fitScale is the largest scale up to 1 that keeps a w×h image within
// FitRatio of the canvas.
func fitScale(w, h float64, canvas geometry.Size) float64 {
	return math.Min(1, math.Min(FitRatio*canvas.Width/w, FitRatio*canvas.Height/h))
}

func fmtCanvas(s geometry.Size) string {
	return fmt.Sprintf("Canvas set to %gx%g", s.Width, s.Height)
}
