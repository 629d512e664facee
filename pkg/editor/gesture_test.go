package editor

import (
	"context"
	"reflect"
	"testing"

	"github.com/matzehuels/memeforge/pkg/errors"
	"github.com/matzehuels/memeforge/pkg/geometry"
	"github.com/matzehuels/memeforge/pkg/scene"
)

// addSquare adds the 200x200 test image, displayed at (200, 200) on the
// 600x600 canvas.
func addSquare(t *testing.T, e *Editor) string {
	t.Helper()
	id, err := e.AddImage(context.Background(), "a.png")
	if err != nil {
		t.Fatal(err)
	}
	return id
}

func imageByID(t *testing.T, e *Editor, id string) scene.ImageElement {
	t.Helper()
	s := e.Scene()
	i := s.ImageIndex(id)
	if i < 0 {
		t.Fatalf("image %s not in scene", id)
	}
	return s.Images[i]
}

func TestDragCommitsOneSnapshot(t *testing.T) {
	e, _ := newTestEditor(t)
	a := addSquare(t, e)
	_, _ = e.AddImage(context.Background(), "b.png")
	base := e.History().Len()

	g, err := e.BeginDrag(a, 250, 250)
	if err != nil {
		t.Fatal(err)
	}
	if g.State() != StateActive || g.Kind() != GestureDrag {
		t.Errorf("gesture = %s/%s", g.Kind(), g.State())
	}
	if got := e.Scene().Images[1].ID; got != a {
		t.Errorf("dragged image not raised: top is %s", got)
	}
	if e.Listeners().Active() != len(pointerEvents) {
		t.Errorf("Active() = %d during gesture", e.Listeners().Active())
	}

	for _, p := range [][2]float64{{260, 255}, {280, 270}, {300, 290}} {
		if err := g.Move(p[0], p[1]); err != nil {
			t.Fatal(err)
		}
	}
	if e.History().Len() != base {
		t.Fatal("Move() recorded history")
	}

	if err := g.End(); err != nil {
		t.Fatal(err)
	}
	img := imageByID(t, e, a)
	if img.X != 250 || img.Y != 240 {
		t.Errorf("position = (%v, %v), want (250, 240)", img.X, img.Y)
	}
	if got := e.History().Len(); got != base+1 {
		t.Errorf("history len = %d, want %d", got, base+1)
	}
	if got := e.History().Current().Label; got != "drag" {
		t.Errorf("label = %q", got)
	}
	if n := e.Listeners().Active(); n != 0 {
		t.Errorf("%d listeners leaked", n)
	}
	if g.State() != StateIdle || e.ActiveGesture() != nil {
		t.Error("editor not idle after End()")
	}

	if err := g.Move(0, 0); !errors.Is(err, errors.ErrCodeNoActiveGesture) {
		t.Errorf("Move() after End() error = %v", err)
	}
	if err := g.End(); !errors.Is(err, errors.ErrCodeNoActiveGesture) {
		t.Errorf("second End() error = %v", err)
	}
}

func TestDragWithoutChange(t *testing.T) {
	tests := []struct {
		name    string
		target  int
		moves   [][2]float64
		commits bool
	}{
		{"click on top image", 1, nil, false},
		{"returned to start", 1, [][2]float64{{300, 300}, {250, 250}}, false},
		{"click raises lower image", 0, nil, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEditor(t)
			addSquare(t, e)
			_, _ = e.AddImage(context.Background(), "b.png")
			before, n := e.Scene(), e.History().Len()

			g, err := e.BeginDrag(before.Images[tt.target].ID, 250, 250)
			if err != nil {
				t.Fatal(err)
			}
			for _, p := range tt.moves {
				_ = g.Move(p[0], p[1])
			}
			if err := g.End(); err != nil {
				t.Fatal(err)
			}

			want := n
			if tt.commits {
				want++
			}
			if got := e.History().Len(); got != want {
				t.Errorf("history len = %d, want %d", got, want)
			}
			if !tt.commits && !reflect.DeepEqual(before, e.Scene()) {
				t.Error("scene changed")
			}
			if e.Listeners().Active() != 0 || e.ActiveGesture() != nil || g.State() != StateIdle {
				t.Error("editor not idle after End()")
			}
		})
	}
}

func TestDragSnapsToCanvasCenter(t *testing.T) {
	e, _ := newTestEditor(t)
	a := addSquare(t, e)
	if err := e.MoveTo(a, 40, 60); err != nil {
		t.Fatal(err)
	}
	n := e.History().Len()

	g, err := e.BeginDrag(a, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	_ = g.Move(100, 100)
	if img := imageByID(t, e, a); img.X != 140 || img.Y != 160 {
		t.Errorf("unsnapped position = (%v, %v), want (140, 160)", img.X, img.Y)
	}
	_ = g.Move(167, 136) // center lands at (307, 296)
	_ = g.End()

	if img := imageByID(t, e, a); img.X != 200 || img.Y != 200 {
		t.Errorf("position = (%v, %v), want centered at (200, 200)", img.X, img.Y)
	}
	if got := e.History().Len(); got != n+1 {
		t.Errorf("history len = %d, want %d", got, n+1)
	}
}

func TestSnapPosition(t *testing.T) {
	images := []scene.ImageElement{
		{ID: "img-1", Width: 100, Height: 100, ScaleFactor: 1},
		{ID: "img-2", X: 255, Y: 255, Width: 100, Height: 100, ScaleFactor: 1},
		{ID: "img-3", X: 194, Y: 192, Width: 200, Height: 200, ScaleFactor: 1},
	}
	tests := []struct {
		name string
		b    geometry.Rect
		x, y float64
	}{
		{"canvas center", geometry.NewRect(194, 192, 200, 200), 200, 200},
		{"other image on one axis", geometry.NewRect(4, 380, 100, 100), 0, 380},
		{"threshold is exclusive", geometry.NewRect(10, 0, 100, 100), 10, 0},
		{"image before canvas", geometry.NewRect(198, 190, 200, 200), 205, 190},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			x, y := snapPosition(tt.b, images, "img-3", canvas600)
			if x != tt.x || y != tt.y {
				t.Errorf("snapPosition() = (%v, %v), want (%v, %v)", x, y, tt.x, tt.y)
			}
		})
	}
}

func TestDragText(t *testing.T) {
	e, _ := newTestEditor(t)
	id, _ := e.AddText("caption")
	start := e.Scene().Texts[0]

	g, err := e.BeginDrag(id, 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	_ = g.Move(-10, 30)
	_ = g.End()

	got := e.Scene().Texts[0]
	if got.X != start.X-10 || got.Y != start.Y+30 {
		t.Errorf("text at (%v, %v)", got.X, got.Y)
	}
	if _, err := e.BeginResize(id, HandleSE, 0, 0); !errors.Is(err, errors.ErrCodeElementNotFound) {
		t.Errorf("BeginResize(text) error = %v", err)
	}
}

func TestCancelRestoresScene(t *testing.T) {
	e, _ := newTestEditor(t)
	a := addSquare(t, e)
	_, _ = e.AddImage(context.Background(), "b.png")
	before, n := e.Scene(), e.History().Len()

	g, _ := e.BeginDrag(a, 0, 0)
	_ = g.Move(120, -40)
	if err := g.Cancel(); err != nil {
		t.Fatal(err)
	}
	if !reflect.DeepEqual(before, e.Scene()) {
		t.Error("Cancel() did not restore the scene")
	}
	if e.History().Len() != n || e.Listeners().Active() != 0 {
		t.Error("Cancel() recorded history or leaked listeners")
	}
}

func TestGestureBlocksOtherEdits(t *testing.T) {
	e, _ := newTestEditor(t)
	a := addSquare(t, e)

	g, err := e.BeginRotate(a, 400, 300)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := e.BeginDrag(a, 0, 0); !errors.Is(err, errors.ErrCodeGestureActive) {
		t.Errorf("second Begin error = %v", err)
	}
	if _, err := e.AddText("x"); !errors.Is(err, errors.ErrCodeGestureActive) {
		t.Errorf("AddText() during gesture error = %v", err)
	}
	if e.Undo() {
		t.Error("Undo() succeeded during gesture")
	}

	_ = e.Close()
	if e.ActiveGesture() != nil || e.Listeners().Active() != 0 {
		t.Error("Close() left the gesture running")
	}
	if g.State() != StateIdle {
		t.Errorf("State() = %s after Close()", g.State())
	}
}

func TestResizeKeepsOppositeCorner(t *testing.T) {
	tests := []struct {
		name   string
		handle Handle
		dx     float64
		want   [3]float64 // x, y, displayed width
	}{
		{"se grow", HandleSE, 100, [3]float64{200, 200, 300}},
		{"sw grow", HandleSW, -100, [3]float64{100, 200, 300}},
		{"ne shrink", HandleNE, -50, [3]float64{200, 250, 150}},
		{"nw grow", HandleNW, -100, [3]float64{100, 100, 300}},
		{"se min width", HandleSE, -1000, [3]float64{200, 200, MinResizeWidth}},
		{"nw min width", HandleNW, 1000, [3]float64{350, 350, MinResizeWidth}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, _ := newTestEditor(t)
			a := addSquare(t, e)

			g, err := e.BeginResize(a, tt.handle, 300, 300)
			if err != nil {
				t.Fatal(err)
			}
			if err := g.Move(300+tt.dx, 300); err != nil {
				t.Fatal(err)
			}
			_ = g.End()

			img := imageByID(t, e, a)
			b := img.Bounds()
			if !near(b.X, tt.want[0]) || !near(b.Y, tt.want[1]) || !near(b.Width, tt.want[2]) {
				t.Errorf("bounds = %+v, want x=%v y=%v w=%v", b, tt.want[0], tt.want[1], tt.want[2])
			}
			if !near(b.Width, b.Height) {
				t.Errorf("aspect ratio changed: %+v", b)
			}
		})
	}
}

func TestRotateSnapsAndNormalizes(t *testing.T) {
	e, _ := newTestEditor(t)
	a := addSquare(t, e) // centered at (300, 300)

	g, err := e.BeginRotate(a, 400, 300)
	if err != nil {
		t.Fatal(err)
	}

	steps := []struct {
		x, y float64
		want float64
	}{
		{300, 400, 90}, // quarter turn
		{400, 308, 0},  // 4.6 degrees snaps back
		{400, 340, 21.80140948635181},
		{300, 200, -90}, // snaps, not yet normalized
	}
	for _, s := range steps {
		_ = g.Move(s.x, s.y)
		if got := imageByID(t, e, a).Rotation; !near(got, s.want) {
			t.Errorf("Move(%v, %v) rotation = %v, want %v", s.x, s.y, got, s.want)
		}
	}

	_ = g.End()
	if got := imageByID(t, e, a).Rotation; got != 270 {
		t.Errorf("rotation after End() = %v, want 270", got)
	}
	if e.History().Current().Label != "rotate" {
		t.Errorf("label = %q", e.History().Current().Label)
	}
}

func TestSnapRotation(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 0},
		{9, 0},
		{11, 11},
		{40, 45},
		{50, 45},
		{-44, -45},
		{67.5, 67.5},
		{181, 180},
	}
	for _, tt := range tests {
		if got := snapRotation(tt.in); got != tt.want {
			t.Errorf("snapRotation(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestListenersReleaseOnce(t *testing.T) {
	var l Listeners
	r1 := l.Acquire("pointermove", "pointerup")
	r2 := l.Acquire("pointermove")
	if l.Held("pointermove") != 2 || l.Active() != 3 {
		t.Fatalf("Held = %d, Active = %d", l.Held("pointermove"), l.Active())
	}
	r1()
	r1()
	if l.Held("pointermove") != 1 || l.Held("pointerup") != 0 {
		t.Errorf("after release: move=%d up=%d", l.Held("pointermove"), l.Held("pointerup"))
	}
	r2()
	if l.Active() != 0 {
		t.Errorf("Active() = %d, want 0", l.Active())
	}
}
