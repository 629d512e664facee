package scene

import (
	"math"
	"reflect"
	"strings"
	"testing"

	"github.com/matzehuels/memeforge/pkg/errors"
	"github.com/matzehuels/memeforge/pkg/geometry"
)

func sampleScene() Scene {
	return Scene{
		Images: []ImageElement{
			{ID: "img_1", Source: "a.png", Width: 200, Height: 100, X: 10, Y: 20, ScaleFactor: 0.5},
			{ID: "img_2", Source: "b.png", Width: 80, Height: 80, ScaleFactor: 2, Crop: &geometry.Rect{X: 1, Y: 2, Width: 80, Height: 80}},
		},
		Texts: []TextElement{
			{ID: "txt_1", Content: "TOP TEXT", X: 250, Y: 20, FontSize: 36, Color: "#ffffff", Width: 300},
		},
	}
}

func TestImageElementDerived(t *testing.T) {
	img := ImageElement{Width: 200, Height: 100, X: 5, Y: 6, ScaleFactor: 1.5}

	if got := img.DisplayedWidth(); got != 300 {
		t.Errorf("DisplayedWidth() = %v, want 300", got)
	}
	if got := img.DisplayedHeight(); got != 150 {
		t.Errorf("DisplayedHeight() = %v, want 150", got)
	}
	if got := img.Bounds(); got != geometry.NewRect(5, 6, 300, 150) {
		t.Errorf("Bounds() = %+v", got)
	}
	if got := img.Aspect(); got != 2 {
		t.Errorf("Aspect() = %v, want 2", got)
	}
}

func TestRotatedBounds(t *testing.T) {
	img := ImageElement{Width: 200, Height: 100, ScaleFactor: 1, Rotation: 90}
	b := img.RotatedBounds()

	if math.Abs(b.Width-100) > 1e-9 || math.Abs(b.Height-200) > 1e-9 {
		t.Errorf("RotatedBounds() size = %vx%v, want 100x200", b.Width, b.Height)
	}
	if math.Abs(b.CenterX()-100) > 1e-9 || math.Abs(b.CenterY()-50) > 1e-9 {
		t.Errorf("RotatedBounds() should keep the center, got %v,%v", b.CenterX(), b.CenterY())
	}
}

func TestNormalizeRotation(t *testing.T) {
	tests := []struct{ in, want float64 }{
		{0, 0},
		{90, 90},
		{360, 0},
		{450, 90},
		{-90, 270},
		{-720, 0},
	}
	for _, tt := range tests {
		if got := NormalizeRotation(tt.in); got != tt.want {
			t.Errorf("NormalizeRotation(%v) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestSceneCloneIsDeep(t *testing.T) {
	orig := sampleScene()
	c := orig.Clone()

	if !reflect.DeepEqual(orig, c) {
		t.Fatalf("Clone() differs from original")
	}

	c.Images[0].X = 999
	c.Images[1].Crop.X = 999
	c.Texts[0].Content = "changed"

	if orig.Images[0].X == 999 {
		t.Error("mutating clone image changed original")
	}
	if orig.Images[1].Crop.X == 999 {
		t.Error("mutating clone crop changed original")
	}
	if orig.Texts[0].Content == "changed" {
		t.Error("mutating clone text changed original")
	}
}

func TestSceneValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Scene)
		code   errors.Code
	}{
		{"valid", func(*Scene) {}, ""},
		{"duplicate image id", func(s *Scene) { s.Images[1].ID = "img_1" }, errors.ErrCodeInvalidInput},
		{"empty image id", func(s *Scene) { s.Images[0].ID = "" }, errors.ErrCodeInvalidInput},
		{"zero scale", func(s *Scene) { s.Images[0].ScaleFactor = 0 }, errors.ErrCodeInvalidImage},
		{"NaN scale", func(s *Scene) { s.Images[0].ScaleFactor = math.NaN() }, errors.ErrCodeInvalidImage},
		{"zero area", func(s *Scene) { s.Images[0].Width = 0 }, errors.ErrCodeInvalidImage},
		{"NaN position", func(s *Scene) { s.Images[0].X = math.NaN() }, errors.ErrCodeInvalidImage},
		{"bad crop", func(s *Scene) { s.Images[1].Crop.Width = 0 }, errors.ErrCodeInvalidImage},
		{"duplicate text id", func(s *Scene) { s.Texts = append(s.Texts, s.Texts[0]) }, errors.ErrCodeInvalidInput},
		{"zero font", func(s *Scene) { s.Texts[0].FontSize = 0 }, errors.ErrCodeInvalidInput},
		{"same id across types", func(s *Scene) { s.Texts[0].ID = "img_1" }, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := sampleScene()
			tt.mutate(&s)
			err := s.Validate()
			if tt.code == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if !errors.Is(err, tt.code) {
				t.Errorf("Validate() = %v, want code %s", err, tt.code)
			}
		})
	}
}

func TestSceneIndexes(t *testing.T) {
	s := sampleScene()
	if got := s.ImageIndex("img_2"); got != 1 {
		t.Errorf("ImageIndex() = %d, want 1", got)
	}
	if got := s.ImageIndex("missing"); got != -1 {
		t.Errorf("ImageIndex(missing) = %d, want -1", got)
	}
	if got := s.TextIndex("txt_1"); got != 0 {
		t.Errorf("TextIndex() = %d, want 0", got)
	}
	if s.IsEmpty() {
		t.Error("IsEmpty() = true for populated scene")
	}
	if !(Scene{}).IsEmpty() {
		t.Error("IsEmpty() = false for zero scene")
	}
}

func TestTextBoundsFallsBackToFontSize(t *testing.T) {
	txt := TextElement{X: 10, Y: 10, FontSize: 40, Width: 300}
	if got := txt.Bounds().Height; got != 48 {
		t.Errorf("Bounds().Height = %v, want 48", got)
	}
	txt.Height = 90
	if got := txt.Bounds().Height; got != 90 {
		t.Errorf("Bounds().Height = %v, want 90", got)
	}
}

func TestMemoryStoreCopies(t *testing.T) {
	store := NewMemoryStore(sampleScene())

	imgs := store.Images()
	imgs[0].X = -1
	if store.Images()[0].X == -1 {
		t.Error("Images() leaked internal slice")
	}

	imgs = append(imgs, ImageElement{ID: "img_3", Width: 1, Height: 1, ScaleFactor: 1})
	store.SetImages(imgs)
	imgs[2].X = 42
	if got := store.Images(); len(got) != 3 || got[2].X == 42 {
		t.Error("SetImages() must store a copy")
	}

	texts := store.Texts()
	texts[0].Content = "mutated"
	if store.Texts()[0].Content == "mutated" {
		t.Error("Texts() leaked internal slice")
	}
	store.SetTexts(nil)
	if got := store.Texts(); got == nil || len(got) != 0 {
		t.Errorf("Texts() after SetTexts(nil) = %#v, want empty slice", got)
	}
}

func TestMemoryStoreReplaceAndSnapshot(t *testing.T) {
	var store MemoryStore
	if !store.Snapshot().IsEmpty() {
		t.Fatal("zero MemoryStore should be empty")
	}

	s := sampleScene()
	store.Replace(s)
	s.Images[0].X = 12345

	snap := store.Snapshot()
	if snap.Images[0].X == 12345 {
		t.Error("Replace() must copy its argument")
	}
	snap.Texts[0].Content = "x"
	if store.Snapshot().Texts[0].Content == "x" {
		t.Error("Snapshot() must return a copy")
	}
}

func TestMemoryStoreSelection(t *testing.T) {
	var store MemoryStore
	if !store.Selection().IsZero() {
		t.Error("new store should have no selection")
	}
	store.Select(Selection{Kind: KindText, ID: "txt_1"})
	if got := store.Selection(); got.Kind != KindText || got.ID != "txt_1" {
		t.Errorf("Selection() = %+v", got)
	}
	if KindImage.String() != "image" || KindNone.String() != "none" {
		t.Error("Kind.String() mismatch")
	}
}

func TestIDGenerators(t *testing.T) {
	seq := Sequential("img_")
	if a, b := seq(), seq(); a != "img_1" || b != "img_2" {
		t.Errorf("Sequential() = %s, %s", a, b)
	}

	gen := Prefixed(TextPrefix, UUIDv7())
	a, b := gen(), gen()
	if !strings.HasPrefix(a, TextPrefix) {
		t.Errorf("Prefixed() id %q lacks prefix", a)
	}
	if a == b {
		t.Error("UUIDv7() produced duplicate ids")
	}
	if len(a) != len(TextPrefix)+36 {
		t.Errorf("unexpected id length %d", len(a))
	}
}
