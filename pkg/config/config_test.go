package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/matzehuels/memeforge/pkg/errors"
	"github.com/matzehuels/memeforge/pkg/geometry"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() = %v", err)
	}
	size, err := cfg.CanvasSize()
	if err != nil {
		t.Fatal(err)
	}
	if size != (geometry.Size{Width: 800, Height: 800}) {
		t.Errorf("canvas = %v, want 800x800", size)
	}
	if cfg.History.MaxStates != 30 {
		t.Errorf("MaxStates = %d, want 30", cfg.History.MaxStates)
	}
	if cfg.Editor.Debounce != 500*time.Millisecond {
		t.Errorf("Debounce = %v, want 500ms", cfg.Editor.Debounce)
	}
	if opts := cfg.LayoutOptions(); opts.Seed != 0 || opts.MaxUpscale != 0 {
		t.Errorf("LayoutOptions = %+v, want random seed and unlimited upscale", opts)
	}
}

func TestCanvasFor(t *testing.T) {
	tests := []struct {
		aspect string
		want   geometry.Size
		code   errors.Code
	}{
		{"1:1", geometry.Size{Width: 800, Height: 800}, ""},
		{"16:9", geometry.Size{Width: 800, Height: 450}, ""},
		{"4:3", geometry.Size{Width: 800, Height: 600}, ""},
		{"9:16", geometry.Size{Width: 800, Height: 1422}, ""},
		{" 2 : 1 ", geometry.Size{Width: 800, Height: 400}, ""},
		{"16x9", geometry.Size{}, errors.ErrCodeInvalidAspect},
		{"0:1", geometry.Size{}, errors.ErrCodeInvalidAspect},
		{"a:b", geometry.Size{}, errors.ErrCodeInvalidAspect},
	}
	for _, tt := range tests {
		t.Run(tt.aspect, func(t *testing.T) {
			got, err := CanvasFor(tt.aspect, 800)
			if tt.code != "" {
				if !errors.Is(err, tt.code) {
					t.Fatalf("err = %v, want %s", err, tt.code)
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if got != tt.want {
				t.Errorf("CanvasFor(%q) = %v, want %v", tt.aspect, got, tt.want)
			}
		})
	}

	if _, err := CanvasFor("1:1", 0); !errors.Is(err, errors.ErrCodeInvalidCanvas) {
		t.Errorf("zero base width: err = %v, want INVALID_CANVAS", err)
	}
}

func TestParse(t *testing.T) {
	cfg, err := Parse([]byte(`
[canvas]
aspect = "16:9"

[layout]
seed = 42
max_upscale = 1.5

[editor]
debounce = "250ms"

[render]
scale = 2
formats = ["svg", "json"]
`))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Canvas.Aspect != "16:9" || cfg.Canvas.BaseWidth != DefaultBaseWidth {
		t.Errorf("Canvas = %+v", cfg.Canvas)
	}
	if cfg.Layout.Seed != 42 || cfg.Layout.MaxUpscale != 1.5 {
		t.Errorf("Layout = %+v", cfg.Layout)
	}
	if cfg.Editor.Debounce != 250*time.Millisecond {
		t.Errorf("Debounce = %v", cfg.Editor.Debounce)
	}
	if cfg.History.MaxStates != 30 {
		t.Errorf("MaxStates = %d, want default 30", cfg.History.MaxStates)
	}
	if cfg.Render.Scale != 2 || len(cfg.Render.Formats) != 2 || cfg.Render.Background != DefaultBackground {
		t.Errorf("Render = %+v", cfg.Render)
	}
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
		code errors.Code
	}{
		{"syntax", `[canvas`, errors.ErrCodeInvalidFormat},
		{"unknown key", "[canvas]\nratio = \"1:1\"", errors.ErrCodeInvalidFormat},
		{"bad aspect", "[canvas]\naspect = \"wide\"", errors.ErrCodeInvalidAspect},
		{"bad color", "[render]\nbackground = \"white\"", errors.ErrCodeInvalidColor},
		{"bad format", "[render]\nformats = [\"gif\"]", errors.ErrCodeInvalidFormat},
		{"bad history", "[history]\nmax_states = 0", errors.ErrCodeInvalidInput},
		{"bad upscale", "[layout]\nmax_upscale = -1.0", errors.ErrCodeInvalidInput},
		{"bad scale", "[render]\nscale = 0", errors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.data))
			if !errors.Is(err, tt.code) {
				t.Errorf("err = %v, want %s", err, tt.code)
			}
		})
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)

	path, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if want := filepath.Join(dir, "memeforge", "config.toml"); path != want {
		t.Errorf("DefaultPath() = %q, want %q", path, want)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load with no file: %v", err)
	}
	if cfg.Canvas.Aspect != DefaultAspect {
		t.Errorf("Aspect = %q, want default", cfg.Canvas.Aspect)
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("[history]\nmax_states = 10\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err = Load("")
	if err != nil {
		t.Fatal(err)
	}
	if cfg.History.MaxStates != 10 {
		t.Errorf("MaxStates = %d, want 10", cfg.History.MaxStates)
	}

	if _, err := Load(filepath.Join(dir, "missing.toml")); !errors.Is(err, errors.ErrCodeFileNotFound) {
		t.Errorf("explicit missing file: err = %v, want FILE_NOT_FOUND", err)
	}
}
