package editor

import (
	"context"
	"fmt"
	"math"
	"slices"
	"sync"

	"github.com/matzehuels/memeforge/pkg/errors"
	"github.com/matzehuels/memeforge/pkg/geometry"
	"github.com/matzehuels/memeforge/pkg/scene"
)

// GestureKind is the interaction a pointer gesture performs.
type GestureKind int

const (
	GestureDrag GestureKind = iota
	GestureResize
	GestureRotate
)

func (k GestureKind) String() string {
	switch k {
	case GestureDrag:
		return "drag"
	case GestureResize:
		return "resize"
	case GestureRotate:
		return "rotate"
	}
	return fmt.Sprintf("gesture(%d)", int(k))
}

// GestureState is the lifecycle state of a gesture.
type GestureState int

const (
	StateIdle GestureState = iota
	StateActive
	StateCommitting
)

func (s GestureState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateActive:
		return "active"
	case StateCommitting:
		return "committing"
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Handle is the corner a resize gesture grabs. The opposite corner stays
// fixed.
type Handle int

const (
	HandleSE Handle = iota
	HandleSW
	HandleNE
	HandleNW
)

// Gesture constants.
const (
	// MinResizeWidth is the smallest displayed width a resize produces.
	MinResizeWidth = 50.0
	// RotateSnap and RotateSnapThreshold snap rotations within the
	// threshold of a multiple of RotateSnap.
	RotateSnap          = 45.0
	RotateSnapThreshold = 10.0
	// DragSnapThreshold is the distance in pixels within which a dragged
	// image's center snaps to another image's center or the canvas center.
	DragSnapThreshold = 10.0
)

// pointerEvents are the listeners a gesture holds while active.
var pointerEvents = []string{"pointermove", "pointerup"}

// Gesture is one begin, move..., end interaction with an element. Moves
// update the live scene and repaint without touching history; End commits
// exactly one snapshot, except for a drag that changed nothing. A Gesture is obtained from [Editor.BeginDrag],
// [Editor.BeginResize] or [Editor.BeginRotate] and is not reusable.
type Gesture struct {
	e      *Editor
	kind   GestureKind
	handle Handle
	target scene.Selection
	state  GestureState

	startX, startY float64
	startImage     scene.ImageElement
	startText      scene.TextElement
	startAngle     float64
	before         scene.Scene

	release func()
}

// BeginDrag starts moving the element with the given id from pointer
// position (x, y). A dragged image is raised to the top of the paint
// order.
func (e *Editor) BeginDrag(id string, x, y float64) (*Gesture, error) {
	return e.begin(GestureDrag, id, HandleSE, x, y)
}

// BeginResize starts resizing an image by its handle corner from pointer
// position (x, y). The aspect ratio is kept.
func (e *Editor) BeginResize(id string, handle Handle, x, y float64) (*Gesture, error) {
	return e.begin(GestureResize, id, handle, x, y)
}

// BeginRotate starts rotating an image about its center from pointer
// position (x, y).
func (e *Editor) BeginRotate(id string, x, y float64) (*Gesture, error) {
	return e.begin(GestureRotate, id, HandleSE, x, y)
}

// ActiveGesture returns the gesture in progress, or nil.
func (e *Editor) ActiveGesture() *Gesture {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.gesture
}

func (e *Editor) begin(kind GestureKind, id string, handle Handle, x, y float64) (*Gesture, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.idleLocked(); err != nil {
		return nil, err
	}
	e.flushLocked(context.Background())

	g := &Gesture{
		e:      e,
		kind:   kind,
		handle: handle,
		startX: x,
		startY: y,
		before: e.store.Snapshot(),
	}

	images := e.store.Images()
	if i := slices.IndexFunc(images, byImageID(id)); i >= 0 {
		g.target = scene.Selection{Kind: scene.KindImage, ID: id}
		g.startImage = images[i].Clone()
		if kind == GestureDrag && i != len(images)-1 {
			e.store.SetImages(moveTo(images, i, true))
		}
		if kind == GestureRotate {
			b := g.startImage.Bounds()
			g.startAngle = angle(x-b.CenterX(), y-b.CenterY())
		}
	} else if kind != GestureDrag {
		return nil, e.missing("image", id)
	} else {
		texts, i, err := e.textLocked(id)
		if err != nil {
			return nil, err
		}
		g.target = scene.Selection{Kind: scene.KindText, ID: id}
		g.startText = texts[i]
	}

	g.release = e.listeners.Acquire(pointerEvents...)
	g.state = StateActive
	e.gesture = g
	e.store.Select(g.target)
	e.renderLocked()
	e.logger.Debug("gesture begin", "kind", kind, "id", id)
	return g, nil
}

// Kind returns the gesture's kind.
func (g *Gesture) Kind() GestureKind { return g.kind }

// Target returns the element the gesture acts on.
func (g *Gesture) Target() scene.Selection { return g.target }

// State returns the gesture's lifecycle state.
func (g *Gesture) State() GestureState {
	g.e.mu.Lock()
	defer g.e.mu.Unlock()
	return g.state
}

// Move applies the pointer position (x, y) and repaints.
func (g *Gesture) Move(x, y float64) error {
	e := g.e
	e.mu.Lock()
	defer e.mu.Unlock()
	if g.state != StateActive {
		return errors.New(errors.ErrCodeNoActiveGesture, "%s gesture is %s", g.kind, g.state)
	}
	if math.IsNaN(x) || math.IsInf(x, 0) || math.IsNaN(y) || math.IsInf(y, 0) {
		return errors.New(errors.ErrCodeInvalidInput, "pointer position must be finite")
	}
	dx, dy := x-g.startX, y-g.startY

	if g.target.Kind == scene.KindText {
		texts, i, err := e.textLocked(g.target.ID)
		if err != nil {
			return err
		}
		texts[i].X, texts[i].Y = g.startText.X+dx, g.startText.Y+dy
		e.store.SetTexts(texts)
		e.renderLocked()
		return nil
	}

	images, i, err := e.imageLocked(g.target.ID)
	if err != nil {
		return err
	}
	img := &images[i]
	switch g.kind {
	case GestureDrag:
		img.X, img.Y = g.startImage.X+dx, g.startImage.Y+dy
		img.X, img.Y = snapPosition(img.Bounds(), images, img.ID, e.canvas)
	case GestureResize:
		g.resize(img, dx)
	case GestureRotate:
		b := g.startImage.Bounds()
		img.Rotation = snapRotation(g.startImage.Rotation + angle(x-b.CenterX(), y-b.CenterY()) - g.startAngle)
	}
	e.store.SetImages(images)
	e.renderLocked()
	return nil
}

// resize scales img so its displayed width follows the pointer, keeping
// the corner opposite the handle fixed.
func (g *Gesture) resize(img *scene.ImageElement, dx float64) {
	start := g.startImage.Bounds()
	var width float64
	switch g.handle {
	case HandleSW, HandleNW:
		width = math.Max(MinResizeWidth, start.Width-dx)
	default:
		width = math.Max(MinResizeWidth, start.Width+dx)
	}
	img.ScaleFactor = width / img.Width
	height := img.DisplayedHeight()

	img.X, img.Y = start.X, start.Y
	if g.handle == HandleSW || g.handle == HandleNW {
		img.X = start.Right() - width
	}
	if g.handle == HandleNE || g.handle == HandleNW {
		img.Y = start.Bottom() - height
	}
}

// End commits the gesture: it releases the pointer listeners, records one
// snapshot and returns the editor to idle. A drag that left the paint order
// and the element's position as they were records nothing.
func (g *Gesture) End() error {
	e := g.e
	e.mu.Lock()
	defer e.mu.Unlock()
	if g.state != StateActive {
		return errors.New(errors.ErrCodeNoActiveGesture, "%s gesture is %s", g.kind, g.state)
	}

	g.state = StateCommitting
	g.release()
	if g.kind == GestureRotate {
		g.normalizeRotation()
	}
	if g.kind != GestureDrag || g.movedLocked() {
		e.commitLocked(context.Background(), g.kind.String())
	}
	e.gesture = nil
	g.state = StateIdle
	e.renderLocked()
	e.logger.Debug("gesture end", "kind", g.kind, "id", g.target.ID)
	return nil
}

// Cancel restores the scene as it was when the gesture began and releases
// the pointer listeners. Nothing is recorded in history.
func (g *Gesture) Cancel() error {
	e := g.e
	e.mu.Lock()
	defer e.mu.Unlock()
	if g.state != StateActive {
		return errors.New(errors.ErrCodeNoActiveGesture, "%s gesture is %s", g.kind, g.state)
	}
	g.abortLocked()
	e.renderLocked()
	return nil
}

func (g *Gesture) abortLocked() {
	g.release()
	g.e.store.Replace(g.before)
	g.e.gesture = nil
	g.state = StateIdle
}

// movedLocked reports whether a drag changed the image order or the
// target's position.
func (g *Gesture) movedLocked() bool {
	now := g.e.store.Snapshot()
	if !slices.EqualFunc(g.before.Images, now.Images, func(a, b scene.ImageElement) bool { return a.ID == b.ID }) {
		return true
	}
	if g.target.Kind == scene.KindText {
		i := now.TextIndex(g.target.ID)
		return i < 0 || now.Texts[i].X != g.startText.X || now.Texts[i].Y != g.startText.Y
	}
	i := now.ImageIndex(g.target.ID)
	return i < 0 || now.Images[i].X != g.startImage.X || now.Images[i].Y != g.startImage.Y
}

func (g *Gesture) normalizeRotation() {
	images, i, err := g.e.imageLocked(g.target.ID)
	if err != nil {
		return
	}
	images[i].Rotation = scene.NormalizeRotation(images[i].Rotation)
	g.e.store.SetImages(images)
}

// angle returns the direction of (dx, dy) in degrees.
func angle(dx, dy float64) float64 {
	return math.Atan2(dy, dx) * 180 / math.Pi
}

// snapRotation snaps deg to the nearest multiple of RotateSnap when it is
// within RotateSnapThreshold of it.
func snapRotation(deg float64) float64 {
	snapped := math.Round(deg/RotateSnap) * RotateSnap
	if math.Abs(deg-snapped) < RotateSnapThreshold {
		return snapped
	}
	return deg
}

// snapPosition returns the top-left corner for the dragged rectangle b,
// aligning its center with the center of another image or, failing that,
// the canvas center. Each axis snaps independently when within
// DragSnapThreshold.
func snapPosition(b geometry.Rect, images []scene.ImageElement, id string, canvas geometry.Size) (x, y float64) {
	x, y = b.X, b.Y
	var snappedX, snappedY bool
	align := func(cx, cy float64) {
		if !snappedX && math.Abs(b.CenterX()-cx) < DragSnapThreshold {
			x, snappedX = cx-b.Width/2, true
		}
		if !snappedY && math.Abs(b.CenterY()-cy) < DragSnapThreshold {
			y, snappedY = cy-b.Height/2, true
		}
	}
	for _, other := range images {
		if other.ID == id {
			continue
		}
		ob := other.Bounds()
		align(ob.CenterX(), ob.CenterY())
	}
	align(canvas.Width/2, canvas.Height/2)
	return x, y
}

// Listeners tracks the pointer listeners held by gestures. Every
// acquisition must be matched by exactly one release.
type Listeners struct {
	mu   sync.Mutex
	held map[string]int
}

// Acquire registers listeners for events and returns the function that
// releases them. Calling the release function more than once has no
// further effect.
func (l *Listeners) Acquire(events ...string) (release func()) {
	l.mu.Lock()
	if l.held == nil {
		l.held = make(map[string]int)
	}
	for _, ev := range events {
		l.held[ev]++
	}
	l.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			for _, ev := range events {
				if l.held[ev]--; l.held[ev] <= 0 {
					delete(l.held, ev)
				}
			}
		})
	}
}

// Active returns the number of listeners currently held.
func (l *Listeners) Active() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	n := 0
	for _, c := range l.held {
		n += c
	}
	return n
}

// Held returns the number of listeners held for event.
func (l *Listeners) Held(event string) int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.held[event]
}
