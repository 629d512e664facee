package editor

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/memeforge/pkg/geometry"
	"github.com/matzehuels/memeforge/pkg/scene"
)

// Renderer paints the live scene. It is called after every change, once
// per gesture move and once per committed edit.
type Renderer interface {
	RenderAll(images []scene.ImageElement, texts []scene.TextElement)
}

// RendererFunc adapts a function to [Renderer].
type RendererFunc func(images []scene.ImageElement, texts []scene.TextElement)

func (f RendererFunc) RenderAll(images []scene.ImageElement, texts []scene.TextElement) {
	f(images, texts)
}

// NopRenderer discards every render request.
type NopRenderer struct{}

func (NopRenderer) RenderAll([]scene.ImageElement, []scene.TextElement) {}

// Rasterizer flattens a scene into an encoded bitmap.
type Rasterizer interface {
	Flatten(ctx context.Context, s scene.Scene, canvas geometry.Size) ([]byte, error)
}

// DecodedImage describes a decoded image source.
type DecodedImage struct {
	// Source is the reference stored on the element, typically a path.
	Source string
	Width  int
	Height int
	// Format is the codec name reported by the decoder ("png", "jpeg").
	Format string
}

// Decoder resolves an image source to its pixel dimensions.
type Decoder interface {
	Decode(ctx context.Context, src string) (DecodedImage, error)
}

// Level is the severity of a notification.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	}
	return fmt.Sprintf("level(%d)", int(l))
}

// Notifier surfaces short user-facing messages.
type Notifier interface {
	Notify(message string, level Level)
}

// NopNotifier discards every notification.
type NopNotifier struct{}

func (NopNotifier) Notify(string, Level) {}

// LogNotifier writes notifications to a logger, mapping warnings and
// errors to the matching log levels.
type LogNotifier struct {
	Logger *log.Logger
}

func (n LogNotifier) Notify(message string, level Level) {
	l := n.Logger
	if l == nil {
		l = log.Default()
	}
	switch level {
	case LevelWarning:
		l.Warn(message)
	case LevelError:
		l.Error(message)
	default:
		l.Info(message, "level", level)
	}
}

// Notification is one recorded notification.
type Notification struct {
	Message string
	Level   Level
}

// Recorder is a [Notifier] that keeps notifications for later display.
type Recorder struct {
	ch chan Notification
}

// NewRecorder returns a Notifier that buffers up to size notifications,
// dropping the oldest when full. Interactive front ends drain it.
func NewRecorder(size int) *Recorder {
	return &Recorder{ch: make(chan Notification, max(size, 1))}
}

func (r *Recorder) Notify(message string, level Level) {
	n := Notification{Message: message, Level: level}
	for {
		select {
		case r.ch <- n:
			return
		default:
		}
		select {
		case <-r.ch:
		default:
		}
	}
}

// C returns the channel notifications are delivered on.
func (r *Recorder) C() <-chan Notification { return r.ch }

// Drain returns every buffered notification, oldest first.
func (r *Recorder) Drain() []Notification {
	var out []Notification
	for {
		select {
		case n := <-r.ch:
			out = append(out, n)
		default:
			return out
		}
	}
}
