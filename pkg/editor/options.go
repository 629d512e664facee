package editor

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/memeforge/pkg/history"
	"github.com/matzehuels/memeforge/pkg/layout"
	"github.com/matzehuels/memeforge/pkg/scene"
)

// Option configures an [Editor].
type Option func(*Editor)

// WithLogger sets the logger. The default discards everything.
func WithLogger(l *log.Logger) Option {
	return func(e *Editor) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithRenderer sets the renderer called after every change.
func WithRenderer(r Renderer) Option {
	return func(e *Editor) {
		if r != nil {
			e.renderer = r
		}
	}
}

// WithNotifier sets the notification sink.
func WithNotifier(n Notifier) Option {
	return func(e *Editor) {
		if n != nil {
			e.notifier = n
		}
	}
}

// WithRasterizer sets the rasterizer used by [Editor.Export].
func WithRasterizer(r Rasterizer) Option {
	return func(e *Editor) { e.rasterizer = r }
}

// WithDecoder sets the decoder used by [Editor.AddImage].
func WithDecoder(d Decoder) Option {
	return func(e *Editor) { e.decoder = d }
}

// WithDebounce sets the inactivity period before continuous edits are
// committed. Zero or negative values commit immediately.
func WithDebounce(d time.Duration) Option {
	return func(e *Editor) { e.debounceDelay = d }
}

// WithIDs sets the id generators for new images and texts.
func WithIDs(images, texts scene.IDGenerator) Option {
	return func(e *Editor) {
		if images != nil {
			e.imageIDs = images
		}
		if texts != nil {
			e.textIDs = texts
		}
	}
}

// WithLayout sets the options passed to the layout engine on
// [Editor.Arrange].
func WithLayout(opts layout.Options) Option {
	return func(e *Editor) { e.layoutOpts = opts }
}

// WithHistory sets options for the history log.
func WithHistory(opts ...history.Option) Option {
	return func(e *Editor) { e.historyOpts = append(e.historyOpts, opts...) }
}
