// Package config loads memeforge settings from a TOML file.
//
// Settings live in $XDG_CONFIG_HOME/memeforge/config.toml (falling back to
// ~/.config/memeforge/config.toml). Every key is optional; missing keys
// keep the values of [Default]:
//
//	[canvas]
//	aspect = "16:9"
//	base_width = 800
//
//	[layout]
//	seed = 42          # 0 draws a fresh seed per arrangement
//	max_upscale = 1.5  # 0 means unlimited
//
//	[history]
//	max_states = 30
//
//	[editor]
//	debounce = "500ms"
//
//	[render]
//	background = "#ffffff"
//	scale = 2
//	embed_font = true
//	formats = ["png", "svg"]
package config

import (
	stderrors "errors"
	"io/fs"
	"math"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/memeforge/pkg/errors"
	"github.com/matzehuels/memeforge/pkg/geometry"
	"github.com/matzehuels/memeforge/pkg/history"
	"github.com/matzehuels/memeforge/pkg/layout"
)

const (
	appName  = "memeforge"
	fileName = "config.toml"

	// DefaultAspect is the canvas preset of a new scene.
	DefaultAspect = "1:1"

	// DefaultBaseWidth is the canvas width every aspect preset is derived from.
	DefaultBaseWidth = 800

	// DefaultDebounce is the inactivity period before continuous edits commit.
	DefaultDebounce = 500 * time.Millisecond

	// DefaultBackground is the canvas color of rendered output.
	DefaultBackground = "#ffffff"
)

// Presets are the canvas aspect ratios offered by the CLI. Any other
// "W:H" ratio is accepted too.
var Presets = []string{"1:1", "4:3", "3:4", "16:9", "9:16"}

// Formats are the output formats the renderer understands.
var Formats = []string{"png", "svg", "json"}

// Config is the full set of user settings.
type Config struct {
	Canvas  Canvas  `toml:"canvas"`
	Layout  Layout  `toml:"layout"`
	History History `toml:"history"`
	Editor  Editor  `toml:"editor"`
	Render  Render  `toml:"render"`
}

// Canvas selects the canvas size of new scenes.
type Canvas struct {
	Aspect    string  `toml:"aspect"`
	BaseWidth float64 `toml:"base_width"`
}

// Layout tunes the arrangement engine.
type Layout struct {
	Seed       uint64  `toml:"seed"`
	MaxUpscale float64 `toml:"max_upscale"`
	Padding    float64 `toml:"padding"`
}

// History bounds the undo log.
type History struct {
	MaxStates int `toml:"max_states"`
}

// Editor tunes interactive editing.
type Editor struct {
	Debounce time.Duration `toml:"debounce"`
}

// Render tunes output generation.
type Render struct {
	Background string   `toml:"background"`
	Scale      float64  `toml:"scale"`
	EmbedFont  bool     `toml:"embed_font"`
	Formats    []string `toml:"formats"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Canvas:  Canvas{Aspect: DefaultAspect, BaseWidth: DefaultBaseWidth},
		History: History{MaxStates: history.DefaultMaxStates},
		Editor:  Editor{Debounce: DefaultDebounce},
		Render:  Render{Background: DefaultBackground, Scale: 1, Formats: []string{"png"}},
	}
}

// DefaultPath returns the config file location following the XDG base
// directory convention.
func DefaultPath() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName, fileName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName, fileName), nil
}

// Load reads the config file at path on top of [Default]. An empty path
// means [DefaultPath], and a missing default file yields the defaults.
// An explicitly named file must exist.
func Load(path string) (Config, error) {
	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return Default(), nil
		}
		path = p
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			if explicit {
				return Config{}, errors.New(errors.ErrCodeFileNotFound, "config file not found: %s", path)
			}
			return Default(), nil
		}
		return Config{}, errors.Wrap(errors.ErrCodeInternal, err, "read config %s", path)
	}
	return Parse(data)
}

// Parse decodes TOML settings on top of [Default] and validates them.
// Unknown keys are rejected so typos do not pass silently.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidFormat, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidFormat, "unknown config keys: %s", strings.Join(keys, ", "))
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every setting.
func (c Config) Validate() error {
	if _, err := c.CanvasSize(); err != nil {
		return err
	}
	if c.Layout.MaxUpscale < 0 || math.IsNaN(c.Layout.MaxUpscale) {
		return errors.New(errors.ErrCodeInvalidInput, "layout.max_upscale must be >= 0, got %v", c.Layout.MaxUpscale)
	}
	if c.Layout.Padding < 0 || math.IsNaN(c.Layout.Padding) {
		return errors.New(errors.ErrCodeInvalidInput, "layout.padding must be >= 0, got %v", c.Layout.Padding)
	}
	if c.History.MaxStates < 1 {
		return errors.New(errors.ErrCodeInvalidInput, "history.max_states must be at least 1, got %d", c.History.MaxStates)
	}
	if c.Editor.Debounce < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "editor.debounce must not be negative")
	}
	if err := errors.ValidateColor(c.Render.Background); err != nil {
		return err
	}
	if !(c.Render.Scale > 0) || math.IsInf(c.Render.Scale, 0) {
		return errors.New(errors.ErrCodeInvalidInput, "render.scale must be positive, got %v", c.Render.Scale)
	}
	for _, f := range c.Render.Formats {
		if !slices.Contains(Formats, f) {
			return errors.New(errors.ErrCodeInvalidFormat, "unknown render format %q", f)
		}
	}
	return nil
}

// CanvasSize returns the canvas for the configured aspect and base width.
func (c Config) CanvasSize() (geometry.Size, error) {
	return CanvasFor(c.Canvas.Aspect, c.Canvas.BaseWidth)
}

// LayoutOptions returns the arrangement options for these settings.
func (c Config) LayoutOptions() layout.Options {
	return layout.Options{
		Seed:       c.Layout.Seed,
		MaxUpscale: c.Layout.MaxUpscale,
		Padding:    c.Layout.Padding,
	}
}

// CanvasFor sizes a canvas for a "W:H" aspect ratio. The width stays at
// baseWidth and the height follows the ratio, so "16:9" at 800 yields
// 800x450.
func CanvasFor(aspect string, baseWidth float64) (geometry.Size, error) {
	w, h, err := errors.ValidateAspectRatio(aspect)
	if err != nil {
		return geometry.Size{}, err
	}
	size := geometry.Size{Width: baseWidth, Height: math.Round(baseWidth * h / w)}
	if err := errors.ValidateCanvas(size.Width, size.Height); err != nil {
		return geometry.Size{}, err
	}
	return size, nil
}
